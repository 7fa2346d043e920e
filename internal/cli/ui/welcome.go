package ui

import (
	"fmt"
	"os"
)

// PrintWelcome выводит приветствие и лого
func PrintWelcome() {
	logoBytes, err := os.ReadFile("logo.txt")
	if err == nil {
		fmt.Println(ColorCyan + string(logoBytes) + ColorReset)
	}
	fmt.Println(ColorBold + IconRobot + " YT-Agent v0.1.0" + ColorReset)
	fmt.Println(ColorGray + "Автоматизация YouTube: подписка, лайк и комментарий к последним видео канала" + ColorReset)
	fmt.Println()
	PrintHelp()
	fmt.Println(ColorCyan + IconBulb + " Совет:" + ColorReset + " Откройте " + ColorYellow + "open youtube.com" + ColorReset + " и войдите в аккаунт, затем " + ColorYellow + "search" + ColorReset + " и " + ColorYellow + "start" + ColorReset)
	fmt.Println()
	fmt.Println(ColorGray + "⬆️ ⬇️" + ColorReset + " Используйте стрелки для навигации по истории команд")
	fmt.Println()
}

// PrintHelp выводит список доступных команд
func PrintHelp() {
	fmt.Println(ColorYellow + IconList + " Доступные команды:" + ColorReset)
	fmt.Println("  " + ColorGreen + "search" + ColorReset + " <запрос>     - Найти каналы")
	fmt.Println("  " + ColorGreen + "select" + ColorReset + " <номер>      - Выбрать канал из результатов поиска")
	fmt.Println("  " + ColorGreen + "start" + ColorReset + " [кол-во]      - Запустить автоматизацию выбранного канала")
	fmt.Println("  " + ColorGreen + "stop" + ColorReset + "                - Остановить после текущего видео")
	fmt.Println("  " + ColorGreen + "status" + ColorReset + "              - Состояние прогона")
	fmt.Println("  " + ColorGreen + "videos" + ColorReset + " [кол-во]     - Последние видео канала через API")
	fmt.Println("  " + ColorGreen + "runs" + ColorReset + " [id]           - История прогонов")
	fmt.Println("  " + ColorGreen + "open" + ColorReset + " <url>          - Открыть вкладку в браузере")
	fmt.Println("  " + ColorGreen + "clear" + ColorReset + "               - Очистить экран")
	fmt.Println("  " + ColorGreen + "exit" + ColorReset + "                - Выход")
	fmt.Println()
}
