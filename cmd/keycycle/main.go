package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"golang.design/x/hotkey/mainthread"

	"github.com/bezmoradi/keycycle/internal/app"
	"github.com/bezmoradi/keycycle/internal/config"
	"github.com/bezmoradi/keycycle/internal/hotkeys/native"
	"github.com/bezmoradi/keycycle/internal/mapping"
	"github.com/bezmoradi/keycycle/internal/metrics"
	"github.com/bezmoradi/keycycle/internal/remote"
	"github.com/bezmoradi/keycycle/internal/version"
)

func main() {
	// The OS hotkey hooks need the main thread on macOS.
	mainthread.Init(run)
}

func run() {
	var (
		showVersion = flag.Bool("version", false, "Show current version")
		checkUpdate = flag.Bool("check-update", false, "Check whether a newer version is published")
		showConfig  = flag.Bool("show-config", false, "Show current configuration location and contents")
		listMaps    = flag.Bool("list", false, "List the configured mappings and exit")
		checkOnly   = flag.Bool("check", false, "Validate the configured mappings for conflicts and exit")
		dryRun      = flag.Bool("dry-run", false, "Do not hook the keyboard; type combinations on stdin instead")
		switchTo    = flag.String("switch", "", "Ask a running keycycle to activate a mapping")
		remoteAddr  = flag.String("remote", "", "Address of a running keycycle (default: remote.addr from config)")
		showStats   = flag.Bool("stats", false, "Show mapping usage statistics")
		resetStats  = flag.Bool("reset-stats", false, "Clear all usage statistics")
		logFile     = flag.String("log-file", "", "Write debug logs to this file")
		verbose     = flag.Bool("verbose", false, "Write debug logs to stderr")
	)
	flag.Parse()

	closeLog := setupLogging(*logFile, *verbose)
	defer closeLog()

	if *showVersion {
		fmt.Printf("keycycle %s\n", version.VERSION)
		return
	}

	if *checkUpdate {
		handleCheckUpdate()
		return
	}

	if *showConfig {
		handleShowConfig()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Error loading config: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *switchTo != "":
		handleSwitch(cfg, *remoteAddr, *switchTo)
		return
	case *showStats:
		handleShowStats(cfg, *remoteAddr)
		return
	case *resetStats:
		handleResetStats(cfg)
		return
	case *listMaps, *checkOnly:
		daemon := app.NewDaemon(app.Options{Config: cfg, DryRun: true})
		if err := daemon.Initialize(); err != nil {
			fmt.Printf("❌ %v\n", err)
			os.Exit(1)
		}
		if *listMaps {
			daemon.List()
			return
		}
		handleCheck(daemon)
		return
	}

	opts := app.Options{Config: cfg, DryRun: *dryRun}
	if !*dryRun {
		opts.Service = native.NewService()
	}

	daemon := app.NewDaemon(opts)
	if err := daemon.Initialize(); err != nil {
		fmt.Printf("❌ Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	if err := daemon.Run(context.Background()); err != nil {
		fmt.Printf("❌ %v\n", err)
		var ce *mapping.ConflictError
		if errors.As(err, &ce) {
			fmt.Println("💡 Fix the conflicting hotkeys in your config, then run with -check")
		}
		os.Exit(1)
	}
}

func setupLogging(path string, verbose bool) func() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if path == "" {
		if !verbose {
			log.SetOutput(io.Discard)
		}
		return func() {}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Printf("⚠️  Warning: cannot open log file: %v\n", err)
		log.SetOutput(io.Discard)
		return func() {}
	}
	log.SetOutput(f)
	return func() { f.Close() }
}

func handleCheckUpdate() {
	isValid, newVersion := version.CheckVersion(context.Background())
	if isValid {
		fmt.Printf("✅ keycycle %s is up to date\n", version.VERSION)
		return
	}
	fmt.Printf(`The newest version of keycycle is %v but the installed version on your system is %v.

%v

To get the latest features and likely bugfixes, please install the latest version by running 'go install github.com/bezmoradi/keycycle/cmd/keycycle@main'.`+"\n", newVersion, version.VERSION, version.UPDATE_MESSAGE)
}

func handleShowConfig() {
	configPath, err := config.GetConfigPath()
	if err != nil {
		fmt.Printf("❌ Error getting config path: %v\n", err)
		os.Exit(1)
	}

	content, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		fmt.Printf("📝 Config file does not exist yet: %s\n", configPath)
		return
	}
	if err != nil {
		fmt.Printf("❌ Error reading config file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("📁 Config file location: %s\n", configPath)
	fmt.Println()
	fmt.Println("📋 Config file contents:")
	fmt.Println(string(content))
}

func handleCheck(daemon *app.Daemon) {
	if err := daemon.Check(); err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ %d mappings, no conflicts\n", len(daemon.Manager().Aliases()))
}

func dialRemote(cfg *config.Config, addr string) *remote.Client {
	if addr == "" {
		addr = cfg.Remote.Addr
	}
	client, err := remote.Dial(context.Background(), addr)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		fmt.Println("💡 Is keycycle running with remote.enabled: true?")
		os.Exit(1)
	}
	return client
}

func handleSwitch(cfg *config.Config, addr, alias string) {
	client := dialRemote(cfg, addr)
	defer client.Close()

	msg, err := client.Switch(alias)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	if msg.Previous != "" {
		fmt.Printf("✅ Switched %s -> %s\n", msg.Previous, msg.Alias)
		return
	}
	fmt.Printf("✅ Switched to %s\n", msg.Alias)
}

func handleShowStats(cfg *config.Config, addr string) {
	formatter := metrics.NewStatsFormatter()

	if addr != "" {
		client := dialRemote(cfg, addr)
		defer client.Close()

		msg, err := client.Stats()
		if err != nil {
			fmt.Printf("❌ %v\n", err)
			os.Exit(1)
		}
		fmt.Println(strings.Join(formatter.FormatSessionLines(msg.Stats), "\n"))
		fmt.Println()
	}

	storage := openStorage(cfg)
	totalMetrics, err := storage.GetTotalMetrics()
	if err != nil {
		fmt.Printf("❌ Error getting total metrics: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(formatter.FormatTotalStats(totalMetrics))
}

func handleResetStats(cfg *config.Config) {
	if err := openStorage(cfg).ClearAllMetrics(); err != nil {
		fmt.Printf("❌ Error clearing metrics: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("🗑️  All usage statistics have been cleared")
}

func openStorage(cfg *config.Config) *metrics.Storage {
	metricsDir, err := cfg.GetMetricsDir()
	if err != nil {
		fmt.Printf("❌ Error getting metrics directory: %v\n", err)
		os.Exit(1)
	}
	storage, err := metrics.NewStorage(metricsDir)
	if err != nil {
		fmt.Printf("❌ Error initializing metrics: %v\n", err)
		os.Exit(1)
	}
	return storage
}
