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

// ChannelHandler обрабатывает поиск и выбор канала
type ChannelHandler struct {
	bus   Messenger
	sel   *Selection
	limit int
	log   *zap.Logger
	out   io.Writer
}

func NewChannelHandler(b Messenger, sel *Selection, limit int, log *zap.Logger, out io.Writer) *ChannelHandler {
	return &ChannelHandler{bus: b, sel: sel, limit: limit, log: log, out: stdout(out)}
}

// Search ищет каналы и выводит пронумерованный список
func (h *ChannelHandler) Search(ctx context.Context, query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		printErr(h.out, "Укажите запрос для поиска", nil)
		return
	}

	fmt.Fprintf(h.out, ui.ColorCyan+ui.IconSearch+" Поиск каналов: %s..."+ui.ColorReset+"\n", query)
	resp, err := h.bus.Send(ctx, bus.EndpointBackground, bus.FetchChannels{Query: query, Limit: h.limit})
	if err == nil && resp.Error != "" {
		err = errors.New(resp.Error)
	}
	if err != nil {
		h.log.Error("Ошибка поиска каналов", zap.Error(err))
		printErr(h.out, "Ошибка поиска", err)
		return
	}

	h.sel.setResults(resp.Channels)
	if len(resp.Channels) == 0 {
		fmt.Fprintln(h.out, ui.ColorGray+"Каналы не найдены"+ui.ColorReset)
		return
	}

	fmt.Fprintln(h.out)
	for i, ch := range resp.Channels {
		handle := ""
		if ch.Handle != "" {
			handle = " " + ui.ColorGray + "@" + ch.Handle + ui.ColorReset
		}
		fmt.Fprintf(h.out, "  "+ui.ColorBold+"%d."+ui.ColorReset+" %s%s "+ui.ColorCyan+"%s"+ui.ColorReset+"\n",
			i+1, ch.Title, handle, ui.FormatSubscribers(ch.Subscribers()))
	}
	fmt.Fprintln(h.out)
	fmt.Fprintln(h.out, ui.ColorGray+"Выберите канал: "+ui.ColorYellow+"select <номер>"+ui.ColorReset)
}

// Select выбирает канал из последних результатов поиска
func (h *ChannelHandler) Select(arg string) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		printErr(h.out, "Неверный номер канала", nil)
		return
	}
	ch, ok := h.sel.pick(n)
	if !ok {
		printErr(h.out, "Канал с таким номером не найден, выполните search", nil)
		return
	}
	fmt.Fprintf(h.out, ui.ColorGreen+ui.IconCheckmark+" Выбран канал:"+ui.ColorReset+" %s\n", ch.Title)
}
