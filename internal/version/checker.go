package version

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"time"
)

const VERSION_URL = "https://raw.githubusercontent.com/bezmoradi/keycycle/main/internal/version/version.go"

const checkTimeout = 3 * time.Second

var versionPattern = regexp.MustCompile(`VERSION\s*=\s*"v(\d+\.\d+\.\d+)"`)

// CheckVersion compares VERSION with the published one. Network problems
// count as up to date.
func CheckVersion(ctx context.Context) (bool, string) {
	return checkVersion(ctx, http.DefaultClient, VERSION_URL)
}

func checkVersion(ctx context.Context, client *http.Client, url string) (bool, string) {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return true, ""
	}
	res, err := client.Do(req)
	if err != nil {
		return true, ""
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return true, ""
	}
	bytes, err := io.ReadAll(res.Body)
	if err != nil {
		return true, ""
	}

	newVersion := extractVersion(string(bytes))
	if newVersion != "" && VERSION != newVersion {
		return false, newVersion
	}

	return true, ""
}

func extractVersion(input string) string {
	matches := versionPattern.FindStringSubmatch(input)
	if len(matches) < 2 {
		return ""
	}
	return "v" + matches[1]
}
