package browser

import "sync"

// TabID идентифицирует вкладку, открытую через адаптер браузера.
type TabID int

// LifecycleStatus это состояние загрузки вкладки.
type LifecycleStatus int

const (
	StatusLoading LifecycleStatus = iota
	StatusComplete
	StatusClosed
)

func (s LifecycleStatus) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusComplete:
		return "complete"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// LifecycleEvent публикуется при каждом переходе состояния вкладки.
type LifecycleEvent struct {
	Tab    TabID
	Status LifecycleStatus
	URL    string
}

// Subscription это одна подписка на события жизненного цикла.
// Close обязателен на каждом пути выхода.
type Subscription struct {
	C <-chan LifecycleEvent

	c      chan LifecycleEvent
	id     int
	filter func(LifecycleEvent) bool
	hub    *LifecycleHub
}

func (s *Subscription) Close() {
	s.hub.unsubscribe(s.id)
}

// LifecycleHub рассылает события вкладок подписчикам и помнит последнее
// состояние каждой вкладки.
type LifecycleHub struct {
	mu     sync.Mutex
	subs   map[int]*Subscription
	nextID int
	last   map[TabID]LifecycleEvent
}

func NewLifecycleHub() *LifecycleHub {
	return &LifecycleHub{
		subs: make(map[int]*Subscription),
		last: make(map[TabID]LifecycleEvent),
	}
}

// Subscribe регистрирует подписчика. filter == nil принимает все события.
func (h *LifecycleHub) Subscribe(filter func(LifecycleEvent) bool) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	c := make(chan LifecycleEvent, 32)
	sub := &Subscription{C: c, c: c, id: h.nextID, filter: filter, hub: h}
	h.subs[sub.id] = sub
	return sub
}

func (h *LifecycleHub) unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sub, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(sub.c)
	}
}

// Subscribers возвращает число активных подписок.
func (h *LifecycleHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Publish запоминает событие и доставляет его подходящим подписчикам.
// Медленный подписчик с полным буфером событие теряет.
func (h *LifecycleHub) Publish(e LifecycleEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if e.Status == StatusClosed {
		delete(h.last, e.Tab)
	} else {
		h.last[e.Tab] = e
	}

	for _, sub := range h.subs {
		if sub.filter != nil && !sub.filter(e) {
			continue
		}
		select {
		case sub.c <- e:
		default:
		}
	}
}

// Status возвращает последнее известное состояние вкладки.
func (h *LifecycleHub) Status(id TabID) (LifecycleEvent, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	e, ok := h.last[id]
	return e, ok
}
