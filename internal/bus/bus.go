// Package bus реализует шину сообщений между изолированными контекстами:
// поверхностью управления, оркестратором и агентами вкладок.
//
// Каждая конечная точка обрабатывает сообщения строго по одному в своей
// горутине. Обработчик явно сообщает, ответил ли он сразу (Respond) или
// ответ придет позже через Responder (Pending).
package bus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNoReceiver: на конечной точке никто не слушает (скрипт еще не внедрен).
	ErrNoReceiver = errors.New("bus: receiving end does not exist")
	// ErrNoResponse: конечная точка закрылась раньше, чем пришел ответ.
	ErrNoResponse = errors.New("bus: endpoint closed before a response was received")
)

// Endpoint адресует контекст исполнения.
type Endpoint string

const (
	EndpointBackground Endpoint = "background"
	EndpointControl    Endpoint = "control"
)

// TabEndpoint возвращает адрес агента вкладки id.
func TabEndpoint(id int) Endpoint {
	return Endpoint(fmt.Sprintf("tab:%d", id))
}

// Responder отправляет ответ. Повторные вызовы игнорируются.
type Responder func(Response)

// Reply это результат синхронной части обработчика.
type Reply struct {
	pending bool
	resp    Response
}

// Respond завершает обработку синхронным ответом.
func Respond(r Response) Reply {
	return Reply{resp: r}
}

// Pending сообщает отправителю, что ответ придет асинхронно и канал нужно держать открытым.
func Pending() Reply {
	return Reply{pending: true}
}

// Handler обрабатывает запрос в контексте конечной точки.
type Handler func(ctx context.Context, req Request, respond Responder) Reply

type envelope struct {
	id    string
	req   Request
	reply chan Response
}

type listener struct {
	inbox     chan envelope
	done      chan struct{}
	cancel    context.CancelFunc
	closeOnce sync.Once
}

type Bus struct {
	mu        sync.RWMutex
	listeners map[Endpoint]*listener
	log       *zap.Logger
}

func New(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{
		listeners: make(map[Endpoint]*listener),
		log:       log,
	}
}

// Listen регистрирует обработчик на конечной точке, заменяя прежний.
// Возвращенная функция снимает регистрацию и отменяет контекст обработчика.
func (b *Bus) Listen(ctx context.Context, ep Endpoint, h Handler) (unlisten func()) {
	lctx, cancel := context.WithCancel(ctx)
	l := &listener{
		inbox:  make(chan envelope, 16),
		done:   make(chan struct{}),
		cancel: cancel,
	}

	b.mu.Lock()
	if old, ok := b.listeners[ep]; ok {
		old.close()
	}
	b.listeners[ep] = l
	b.mu.Unlock()

	go b.serve(lctx, ep, l, h)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			if b.listeners[ep] == l {
				delete(b.listeners, ep)
			}
			b.mu.Unlock()
			l.close()
		})
	}
}

// Listening сообщает, есть ли обработчик на конечной точке.
func (b *Bus) Listening(ep Endpoint) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.listeners[ep]
	return ok
}

func (l *listener) close() {
	l.closeOnce.Do(func() {
		close(l.done)
		l.cancel()
	})
}

func (b *Bus) serve(ctx context.Context, ep Endpoint, l *listener, h Handler) {
	for {
		select {
		case <-l.done:
			return
		case env := <-l.inbox:
			b.dispatch(ctx, ep, env, h)
		}
	}
}

func (b *Bus) dispatch(ctx context.Context, ep Endpoint, env envelope, h Handler) {
	var once sync.Once
	respond := func(r Response) {
		once.Do(func() { env.reply <- r })
	}

	defer func() {
		if r := recover(); r != nil {
			b.log.Error("handler panic",
				zap.String("endpoint", string(ep)),
				zap.String("action", string(env.req.Action())),
				zap.Any("panic", r),
			)
			respond(Response{Status: StatusError, Error: fmt.Sprint(r)})
		}
	}()

	reply := h(ctx, env.req, respond)
	if !reply.pending {
		respond(reply.resp)
	}

	b.log.Debug("message dispatched",
		zap.String("id", env.id),
		zap.String("endpoint", string(ep)),
		zap.String("action", string(env.req.Action())),
		zap.Bool("pending", reply.pending),
	)
}

func (b *Bus) lookup(ep Endpoint) *listener {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.listeners[ep]
}

// Send доставляет запрос и ждет ответа.
func (b *Bus) Send(ctx context.Context, to Endpoint, req Request) (Response, error) {
	l := b.lookup(to)
	if l == nil {
		return Response{}, ErrNoReceiver
	}

	env := envelope{id: uuid.NewString(), req: req, reply: make(chan Response, 1)}

	select {
	case l.inbox <- env:
	case <-l.done:
		return Response{}, ErrNoReceiver
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}

	select {
	case r := <-env.reply:
		return r, nil
	case <-l.done:
		select {
		case r := <-env.reply:
			return r, nil
		default:
			return Response{}, ErrNoResponse
		}
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

// Post доставляет запрос без ожидания ответа. Если очередь получателя
// переполнена, сообщение отбрасывается.
func (b *Bus) Post(to Endpoint, req Request) error {
	l := b.lookup(to)
	if l == nil {
		return ErrNoReceiver
	}

	env := envelope{id: uuid.NewString(), req: req, reply: make(chan Response, 1)}
	select {
	case l.inbox <- env:
		return nil
	case <-l.done:
		return ErrNoReceiver
	default:
		b.log.Warn("inbox full, message dropped",
			zap.String("endpoint", string(to)),
			zap.String("action", string(req.Action())),
		)
		return nil
	}
}
