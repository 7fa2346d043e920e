package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"ytAgent/internal/browser"
	"ytAgent/internal/cli/ui"
)

// Tabs открывает вкладки в запущенном браузере.
type Tabs interface {
	OpenTab(ctx context.Context, url string) (browser.TabID, error)
}

// BrowserHandler обрабатывает команды браузера
type BrowserHandler struct {
	tabs Tabs
	out  io.Writer
}

func NewBrowserHandler(tabs Tabs, out io.Writer) *BrowserHandler {
	return &BrowserHandler{tabs: tabs, out: stdout(out)}
}

// Open открывает URL в новой вкладке, например для входа в аккаунт
func (h *BrowserHandler) Open(ctx context.Context, url string) {
	if h.tabs == nil {
		printErr(h.out, "Браузер не инициализирован", nil)
		return
	}
	url = strings.TrimSpace(url)
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	fmt.Fprintf(h.out, ui.ColorCyan+ui.IconArrow+" Открытие %s..."+ui.ColorReset+"\n", url)
	id, err := h.tabs.OpenTab(ctx, url)
	if err != nil {
		printErr(h.out, "Ошибка открытия вкладки", err)
		return
	}
	fmt.Fprintf(h.out, ui.ColorGreen+ui.IconCheckmark+" Вкладка #%d открыта"+ui.ColorReset+"\n", id)
	fmt.Fprintln(h.out, ui.ColorGray+"Сессия сохраняется в каталоге профиля браузера"+ui.ColorReset)
}
