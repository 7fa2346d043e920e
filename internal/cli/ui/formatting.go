package ui

import (
	"fmt"
	"strconv"
	"strings"

	"ytAgent/internal/bus"
)

// FormatStatus возвращает иконку, цвет и текст для статуса прогона или задачи
func FormatStatus(status string) (icon, color, text string) {
	switch status {
	case "completed", "done":
		return IconCheckmark, ColorGreen, "завершен"
	case "failed", "error":
		return IconCross, ColorRed, "ошибка"
	case "running":
		return IconPlay, ColorCyan, "выполняется"
	case "stopped":
		return IconStop, ColorYellow, "остановлен"
	default:
		return IconClock, ColorYellow, status
	}
}

// FormatSubscribers сокращает число подписчиков: 14100000 -> 14.1M.
// Строка без цифр дает "0".
func FormatSubscribers(n int64) string {
	switch {
	case n >= 1_000_000:
		return trimZero(fmt.Sprintf("%.1f", float64(n)/1_000_000)) + "M"
	case n >= 1_000:
		return trimZero(fmt.Sprintf("%.1f", float64(n)/1_000)) + "K"
	default:
		return strconv.FormatInt(n, 10)
	}
}

func trimZero(s string) string {
	return strings.TrimSuffix(s, ".0")
}

// FormatProgress строит строку уведомления о ходе прогона.
func FormatProgress(p bus.Progress) string {
	switch p.Phase {
	case "started":
		return fmt.Sprintf(ColorCyan+IconPlay+" Прогон начат, запрошено видео: %d"+ColorReset, p.Total)
	case "discovered":
		return fmt.Sprintf(ColorCyan+IconVideo+" Найдено видео: %d"+ColorReset, p.Total)
	case "task":
		return fmt.Sprintf(ColorGray+"[%d/%d]"+ColorReset+" %s", p.Index, p.Total, p.URL)
	case "task_done":
		icon, color, text := FormatStatus(p.Outcome)
		line := fmt.Sprintf(ColorGray+"[%d/%d]"+ColorReset+" %s%s %s"+ColorReset, p.Index, p.Total, color, icon, text)
		if p.Error != "" {
			line += ColorGray + " (" + p.Error + ")" + ColorReset
		}
		return line
	case "stopped":
		return fmt.Sprintf(ColorYellow+IconStop+" Остановлено, пропущено задач: %d"+ColorReset, p.Total-p.Index)
	case "failed":
		return ColorRed + IconCross + " Прогон прерван: " + p.Error + ColorReset
	case "finished":
		icon, color, text := FormatStatus(p.Outcome)
		return fmt.Sprintf("%s%s Прогон %s"+ColorReset, color, icon, text)
	default:
		return p.Phase
	}
}

// ClearScreen очищает терминал
func ClearScreen() {
	fmt.Print("\033[H\033[2J")
}
