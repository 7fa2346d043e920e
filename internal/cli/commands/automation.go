package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ytAgent/internal/bus"
	"ytAgent/internal/cli/ui"

	"go.uber.org/zap"
)

// AutomationHandler управляет прогоном через фоновый контекст
type AutomationHandler struct {
	bus          Messenger
	sel          *Selection
	defaultCount int
	log          *zap.Logger
	out          io.Writer
}

func NewAutomationHandler(b Messenger, sel *Selection, defaultCount int, log *zap.Logger, out io.Writer) *AutomationHandler {
	return &AutomationHandler{bus: b, sel: sel, defaultCount: defaultCount, log: log, out: stdout(out)}
}

func (h *AutomationHandler) count(arg string) (int, bool) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return h.defaultCount, true
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Start запускает автоматизацию выбранного канала
func (h *AutomationHandler) Start(ctx context.Context, arg string) {
	ch, ok := h.sel.Selected()
	if !ok {
		printErr(h.out, "Канал не выбран, используйте search и select", nil)
		return
	}
	n, ok := h.count(arg)
	if !ok {
		printErr(h.out, "Неверное количество видео", nil)
		return
	}

	resp, err := h.bus.Send(ctx, bus.EndpointBackground, bus.StartAutomation{Channel: ch, Count: n})
	if err != nil {
		h.log.Error("Ошибка запуска автоматизации", zap.Error(err))
		printErr(h.out, "Ошибка запуска", err)
		return
	}

	switch resp.Status {
	case bus.StatusSuccess:
		fmt.Fprintf(h.out, ui.ColorGreen+ui.IconPlay+" Автоматизация запущена:"+ui.ColorReset+" %s, видео: %d\n", ch.Title, n)
	case bus.StatusAlreadyRunning:
		fmt.Fprintln(h.out, ui.ColorYellow+ui.IconClock+" Автоматизация уже выполняется"+ui.ColorReset)
	default:
		printErr(h.out, "Автоматизация не запущена", errors.New(resp.Error))
	}
}

// Stop останавливает прогон после текущего видео
func (h *AutomationHandler) Stop(ctx context.Context) {
	resp, err := h.bus.Send(ctx, bus.EndpointBackground, bus.StopAutomation{})
	if err != nil {
		printErr(h.out, "Ошибка остановки", err)
		return
	}
	if resp.Status == bus.StatusStopped {
		fmt.Fprintln(h.out, ui.ColorYellow+ui.IconStop+" Остановка запрошена, текущее видео будет обработано до конца"+ui.ColorReset)
	}
}

// Status выводит состояние прогона
func (h *AutomationHandler) Status(ctx context.Context) {
	resp, err := h.bus.Send(ctx, bus.EndpointBackground, bus.AutomationStatus{})
	if err != nil || resp.Run == nil {
		printErr(h.out, "Состояние недоступно", err)
		return
	}

	run := resp.Run
	fmt.Fprintln(h.out)
	if !run.Active {
		fmt.Fprintf(h.out, ui.ColorBold+ui.IconChart+" Прогон:"+ui.ColorReset+" не активен (%s)\n", run.Phase)
	} else {
		fmt.Fprintf(h.out, ui.ColorBold+ui.IconChart+" Прогон:"+ui.ColorReset+" "+ui.ColorCyan+"%s"+ui.ColorReset+"\n", run.Phase)
	}
	if run.Channel != nil {
		fmt.Fprintf(h.out, "  "+ui.ColorGray+"Канал:"+ui.ColorReset+" %s\n", run.Channel.Title)
	}
	if run.Total > 0 {
		fmt.Fprintf(h.out, "  "+ui.ColorGray+"Видео:"+ui.ColorReset+" %d/%d\n", run.Index+1, run.Total)
	}
	fmt.Fprintln(h.out)
}

// Videos выводит последние загруженные видео выбранного канала через API
func (h *AutomationHandler) Videos(ctx context.Context, arg string) {
	ch, ok := h.sel.Selected()
	if !ok {
		printErr(h.out, "Канал не выбран, используйте search и select", nil)
		return
	}
	n, ok := h.count(arg)
	if !ok {
		printErr(h.out, "Неверное количество видео", nil)
		return
	}

	resp, err := h.bus.Send(ctx, bus.EndpointBackground, bus.FetchUploadedVideos{ChannelID: ch.ID, Count: n})
	if err == nil && resp.Error != "" {
		err = errors.New(resp.Error)
	}
	if err != nil {
		printErr(h.out, "Ошибка получения видео", err)
		return
	}

	fmt.Fprintf(h.out, "\n"+ui.ColorBold+ui.IconVideo+" Последние видео %s:"+ui.ColorReset+"\n", ch.Title)
	for i, link := range resp.VideoLinks {
		fmt.Fprintf(h.out, "  "+ui.ColorGray+"%d."+ui.ColorReset+" %s\n", i+1, link)
	}
	fmt.Fprintln(h.out)
}
