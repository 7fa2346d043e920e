package agent

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"ytAgent/internal/browser"
	"ytAgent/internal/bus"
	"ytAgent/internal/discovery"

	"go.uber.org/zap"
)

// StopButtonLabel подпись кнопки остановки на странице канала.
const StopButtonLabel = "Stop Automation"

var listingPathRe = regexp.MustCompile(`^/(@[^/]+|channel/[^/]+)/videos/?$`)

type pageKind int

const (
	kindOther pageKind = iota
	kindWatch
	kindListing
)

func classify(raw string) pageKind {
	u, err := url.Parse(raw)
	if err != nil || !isYouTubeHost(u.Hostname()) {
		return kindOther
	}
	switch {
	case u.Path == "/watch" && u.Query().Get("v") != "":
		return kindWatch
	case listingPathRe.MatchString(u.Path):
		return kindListing
	default:
		return kindOther
	}
}

// isYouTubeHost сообщает, относится ли хост к youtube.com.
func isYouTubeHost(host string) bool {
	host = strings.ToLower(host)
	return host == "youtube.com" || strings.HasSuffix(host, ".youtube.com")
}

// TabPage это страница вкладки, к которой подключается агент.
type TabPage interface {
	VideoPage
	discovery.ListingPage
	InstallStopButton(ctx context.Context, label string, onClick func()) error
}

// Lifecycle это источник событий вкладок.
type Lifecycle interface {
	Subscribe(filter func(browser.LifecycleEvent) bool) *browser.Subscription
}

// PageLookup возвращает страницу открытой вкладки.
type PageLookup func(id browser.TabID) (TabPage, bool)

// BrowserPages строит PageLookup поверх адаптера playwright.
func BrowserPages(b *browser.PlaywrightBrowser) PageLookup {
	return func(id browser.TabID) (TabPage, bool) {
		p, ok := b.Page(id)
		if !ok {
			return nil, false
		}
		return p, true
	}
}

// Host подключает агента к каждой вкладке, загрузившей страницу видео или
// список видео канала, и отключает его при закрытии вкладки или уходе со страницы.
type Host struct {
	bus     *bus.Bus
	events  Lifecycle
	pages   PageLookup
	agent   *VideoAgent
	scanner *discovery.Scanner
	log     *zap.Logger

	stopTimeout time.Duration

	mu       sync.Mutex
	attached map[browser.TabID]func()
}

func NewHost(b *bus.Bus, events Lifecycle, pages PageLookup, agent *VideoAgent, scanner *discovery.Scanner, log *zap.Logger) *Host {
	if log == nil {
		log = zap.NewNop()
	}
	return &Host{
		bus:         b,
		events:      events,
		pages:       pages,
		agent:       agent,
		scanner:     scanner,
		log:         log,
		stopTimeout: 5 * time.Second,
		attached:    make(map[browser.TabID]func()),
	}
}

// Run обрабатывает события вкладок до отмены ctx.
func (h *Host) Run(ctx context.Context) error {
	sub := h.events.Subscribe(func(e browser.LifecycleEvent) bool {
		return e.Status != browser.StatusLoading
	})
	defer sub.Close()
	defer h.detachAll()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-sub.C:
			if !ok {
				return nil
			}
			h.handle(ctx, e)
		}
	}
}

// Attached сообщает, подключен ли агент к вкладке.
func (h *Host) Attached(id browser.TabID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.attached[id]
	return ok
}

func (h *Host) handle(ctx context.Context, e browser.LifecycleEvent) {
	if e.Status == browser.StatusClosed {
		h.detach(e.Tab)
		return
	}

	kind := classify(e.URL)
	if kind == kindOther {
		h.detach(e.Tab)
		return
	}

	page, ok := h.pages(e.Tab)
	if !ok {
		return
	}
	h.attach(ctx, e.Tab, kind, page)
}

func (h *Host) attach(ctx context.Context, id browser.TabID, kind pageKind, page TabPage) {
	log := h.log.With(zap.Int("tab", int(id)))
	var busy atomic.Bool

	mux := bus.NewMux()
	mux.Handle(bus.ActionPing, func(context.Context, bus.Request, bus.Responder) bus.Reply {
		return bus.Respond(bus.Response{Status: bus.StatusReady})
	})

	switch kind {
	case kindWatch:
		mux.Handle(bus.ActionStartVideoAutomation, func(ctx context.Context, _ bus.Request, respond bus.Responder) bus.Reply {
			if !busy.CompareAndSwap(false, true) {
				return bus.Respond(bus.Response{Status: bus.StatusError, Error: ErrBusy.Error()})
			}
			go func() {
				defer busy.Store(false)
				respond(h.runTask(ctx, page, log))
			}()
			return bus.Pending()
		})

	case kindListing:
		mux.Handle(bus.ActionDiscoverVideos, func(ctx context.Context, req bus.Request, respond bus.Responder) bus.Reply {
			n := req.(bus.DiscoverVideos).Count
			if !busy.CompareAndSwap(false, true) {
				return bus.Respond(bus.ErrorResponse(ErrBusy))
			}
			go func() {
				defer busy.Store(false)
				links, err := h.scanner.Discover(ctx, page, n)
				if err != nil {
					log.Error("Ошибка поиска видео", zap.Error(err))
					respond(bus.ErrorResponse(err))
					return
				}
				respond(bus.Response{VideoLinks: links})
			}()
			return bus.Pending()
		})

		if err := page.InstallStopButton(ctx, StopButtonLabel, h.requestStop); err != nil {
			log.Warn("Не удалось добавить кнопку остановки", zap.Error(err))
		}
	}

	unlisten := h.bus.Listen(ctx, bus.TabEndpoint(int(id)), mux.Serve)

	h.mu.Lock()
	prev := h.attached[id]
	h.attached[id] = unlisten
	h.mu.Unlock()

	// Listen уже заменил обработчик, prev только снимает регистрацию.
	if prev != nil {
		prev()
	}
	log.Debug("Агент подключен к вкладке", zap.Bool("watch", kind == kindWatch))
}

func (h *Host) runTask(ctx context.Context, page TabPage, log *zap.Logger) (resp bus.Response) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Паника в задаче", zap.Any("panic", r))
			resp = bus.Response{Status: bus.StatusError, Error: fmt.Sprint(r)}
		}
	}()

	if err := h.agent.Run(ctx, page); err != nil {
		log.Error("Задача завершилась с ошибкой", zap.Error(err))
		return bus.Response{Status: bus.StatusError, Error: err.Error()}
	}
	log.Info("Задача выполнена")
	return bus.Response{Status: bus.StatusDone}
}

// requestStop вызывается кнопкой на странице канала.
func (h *Host) requestStop() {
	ctx, cancel := context.WithTimeout(context.Background(), h.stopTimeout)
	defer cancel()

	resp, err := h.bus.Send(ctx, bus.EndpointBackground, bus.StopAutomation{})
	if err != nil {
		h.log.Warn("Не удалось остановить автоматизацию", zap.Error(err))
		return
	}
	h.log.Info("Остановка запрошена со страницы канала", zap.String("status", string(resp.Status)))
}

func (h *Host) detach(id browser.TabID) {
	h.mu.Lock()
	unlisten, ok := h.attached[id]
	delete(h.attached, id)
	h.mu.Unlock()

	if ok {
		unlisten()
		h.log.Debug("Агент отключен от вкладки", zap.Int("tab", int(id)))
	}
}

func (h *Host) detachAll() {
	h.mu.Lock()
	all := h.attached
	h.attached = make(map[browser.TabID]func())
	h.mu.Unlock()

	for _, unlisten := range all {
		unlisten()
	}
}
