package ui

import (
	"fmt"
	"strings"
	"time"
)

// FormatStatus возвращает иконку, цвет и текст для статуса прогона, сценария или шага
func FormatStatus(status string) (icon, color, text string) {
	switch status {
	case "passed":
		return IconCheckmark, ColorGreen, "пройден"
	case "failed":
		return IconCross, ColorRed, "упал"
	case "running":
		return IconPlay, ColorCyan, "выполняется"
	case "skipped":
		return IconSkip, ColorGray, "пропущен"
	default:
		return IconClock, ColorYellow, status
	}
}

// FormatDuration округляет длительность для вывода в консоль.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	case d < time.Minute:
		return d.Round(10 * time.Millisecond).String()
	default:
		return d.Round(time.Second).String()
	}
}

// Tagged - теги в виде "@smoke @cart".
func Tagged(tags []string) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = "@" + t
	}
	return strings.Join(parts, " ")
}

// Paint оборачивает текст в цвет.
func Paint(color, format string, args ...any) string {
	return color + fmt.Sprintf(format, args...) + ColorReset
}
