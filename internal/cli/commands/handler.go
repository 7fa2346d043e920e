package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"ytAgent/internal/bus"
	"ytAgent/internal/cli/ui"
	"ytAgent/internal/model"
)

// Messenger отправляет запросы фоновому контексту.
type Messenger interface {
	Send(ctx context.Context, to bus.Endpoint, req bus.Request) (bus.Response, error)
}

// Selection хранит канал, выбранный пользователем, между командами.
type Selection struct {
	mu       sync.Mutex
	results  []model.Channel
	selected *model.Channel
}

func (s *Selection) setResults(channels []model.Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = channels
}

func (s *Selection) pick(n int) (model.Channel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 1 || n > len(s.results) {
		return model.Channel{}, false
	}
	ch := s.results[n-1]
	s.selected = &ch
	return ch, true
}

// Selected возвращает выбранный канал.
func (s *Selection) Selected() (model.Channel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return model.Channel{}, false
	}
	return *s.selected, true
}

func printErr(out io.Writer, msg string, err error) {
	if err != nil {
		fmt.Fprintf(out, ui.ColorRed+ui.IconCross+" %s:"+ui.ColorReset+" %v\n", msg, err)
		return
	}
	fmt.Fprintln(out, ui.ColorRed+ui.IconCross+" "+msg+ui.ColorReset)
}

func stdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
