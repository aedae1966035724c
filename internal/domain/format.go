package domain

import (
	"fmt"
	"time"
)

// FormatTimer renders seconds as m:ss, e.g. 65 -> "1:05".
func FormatTimer(totalSeconds int) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	return fmt.Sprintf("%d:%02d", totalSeconds/60, totalSeconds%60)
}

// FormatDate renders <context>_YYYY-MM-DD_HHMMSS in t's location.
func FormatDate(context string, t time.Time) string {
	return fmt.Sprintf("%s_%04d-%02d-%02d_%02d%02d%02d",
		context, t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// ExportFilename names a leaderboard CSV export.
func ExportFilename(context string, now time.Time) string {
	return "leaderboard_" + FormatDate(context, now) + ".csv"
}
