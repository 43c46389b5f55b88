package util

import "fmt"

var sizeUnits = []string{"KB", "MB", "GB", "TB"}

// FormatSize converts bytes to a human-readable string (KB, MB, GB).
func FormatSize(sizeBytes int64) string {
	if sizeBytes < 1024 {
		return fmt.Sprintf("%d B", sizeBytes)
	}
	value := float64(sizeBytes) / 1024
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}
	return fmt.Sprintf("%.1f %s", value, sizeUnits[unit])
}

// FormatSpeed converts bytes per second to a human-readable string (KB/s, MB/s, GB/s).
func FormatSpeed(bytesPerSecond float64) string {
	if bytesPerSecond < 1024 {
		return fmt.Sprintf("%.1f B/s", bytesPerSecond)
	}
	value := bytesPerSecond / 1024
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}
	return fmt.Sprintf("%.1f %s/s", value, sizeUnits[unit])
}

// Percent returns done/total clamped to [0, 1]. A zero total reads as 0.
func Percent(done, total int64) float64 {
	if total <= 0 || done <= 0 {
		return 0
	}
	if done >= total {
		return 1
	}
	return float64(done) / float64(total)
}
