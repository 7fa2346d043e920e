package bus

import "context"

// Mux маршрутизирует запросы к обработчикам по виду действия.
type Mux struct {
	handlers map[Action]Handler
}

func NewMux() *Mux {
	return &Mux{handlers: make(map[Action]Handler)}
}

func (m *Mux) Handle(a Action, h Handler) {
	m.handlers[a] = h
}

// Serve реализует Handler. Неизвестное действие дает синхронную ошибку.
func (m *Mux) Serve(ctx context.Context, req Request, respond Responder) Reply {
	h, ok := m.handlers[req.Action()]
	if !ok {
		return Respond(Response{Status: StatusError, Message: "unknown action"})
	}
	return h(ctx, req, respond)
}
