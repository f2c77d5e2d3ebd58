package metrics

import (
	"fmt"
	"time"
)

type TimeFormatter struct{}

func NewTimeFormatter() *TimeFormatter {
	return &TimeFormatter{}
}

func (tf *TimeFormatter) FormatDuration(duration time.Duration) string {
	if duration < time.Second {
		return "0 seconds"
	}

	hours := int(duration.Hours())
	minutes := int(duration.Minutes()) % 60
	seconds := int(duration.Seconds()) % 60

	if hours > 0 {
		if minutes > 0 {
			return fmt.Sprintf("%d hours %d minutes", hours, minutes)
		}
		return fmt.Sprintf("%d hours", hours)
	}

	if minutes > 0 {
		if seconds > 0 {
			return fmt.Sprintf("%d minutes %d seconds", minutes, seconds)
		}
		return fmt.Sprintf("%d minutes", minutes)
	}

	return fmt.Sprintf("%d seconds", seconds)
}

func (tf *TimeFormatter) FormatDurationShort(duration time.Duration) string {
	if duration < time.Second {
		return "0s"
	}

	hours := int(duration.Hours())
	minutes := int(duration.Minutes()) % 60
	seconds := int(duration.Seconds()) % 60

	if hours > 0 {
		if minutes > 0 {
			return fmt.Sprintf("%dh %dm", hours, minutes)
		}
		return fmt.Sprintf("%dh", hours)
	}

	if minutes > 0 {
		if seconds > 0 {
			return fmt.Sprintf("%dm %ds", minutes, seconds)
		}
		return fmt.Sprintf("%dm", minutes)
	}

	return fmt.Sprintf("%ds", seconds)
}

type StatsFormatter struct {
	timeFormatter *TimeFormatter
}

func NewStatsFormatter() *StatsFormatter {
	return &StatsFormatter{
		timeFormatter: NewTimeFormatter(),
	}
}

// FormatSessionLines renders per-mapping usage since the daemon started.
func (sf *StatsFormatter) FormatSessionLines(stats []AliasStats) []string {
	if len(stats) == 0 {
		return []string{"📊 No mapping switches yet."}
	}

	lines := []string{"📊 This session:"}
	for _, s := range stats {
		lines = append(lines, fmt.Sprintf("   %s: %d switches, %s active",
			s.Alias, s.Activations, sf.timeFormatter.FormatDurationShort(s.Active)))
	}
	return lines
}

// FormatTotalStats renders activation counts accumulated on disk.
func (sf *StatsFormatter) FormatTotalStats(total *TotalMetrics) string {
	if total.TotalSwitches == 0 {
		return "📊 No usage statistics yet. Switch mappings to start tracking!"
	}

	stats := "📊 Total Statistics:\n"
	stats += fmt.Sprintf("   Switches: %d\n", total.TotalSwitches)
	stats += fmt.Sprintf("   Active days: %d\n", total.ActiveDays)
	for _, alias := range total.Aliases() {
		stats += fmt.Sprintf("   %s: %d\n", alias, total.Activations[alias])
	}
	return stats[:len(stats)-1]
}
