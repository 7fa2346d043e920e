package orchestrator

import (
	"context"

	"ytAgent/internal/bus"
	"ytAgent/internal/model"

	"go.uber.org/zap"
)

// Listener регистрирует обработчик на конечной точке шины.
type Listener interface {
	Listen(ctx context.Context, ep bus.Endpoint, h bus.Handler) (unlisten func())
}

// Mux возвращает маршрутизатор запросов фонового контекста. Поиск и
// загрузка списков отвечают асинхронно, управление прогоном сразу.
func (o *Orchestrator) Mux() *bus.Mux {
	mux := bus.NewMux()

	mux.Handle(bus.ActionFetchChannels, func(ctx context.Context, req bus.Request, respond bus.Responder) bus.Reply {
		r := req.(bus.FetchChannels)
		limit := r.Limit
		if limit <= 0 {
			limit = o.cfg.SearchLimit
		}
		go func() {
			channels, err := o.deps.Directory.ResolveChannels(ctx, r.Query, limit)
			if err != nil {
				o.log.Warn("Ошибка поиска каналов", zap.String("query", r.Query), zap.Error(err))
				respond(bus.ErrorResponse(err))
				return
			}
			if channels == nil {
				channels = []model.Channel{}
			}
			respond(bus.Response{Channels: channels})
		}()
		return bus.Pending()
	})

	mux.Handle(bus.ActionStartAutomation, func(ctx context.Context, req bus.Request, _ bus.Responder) bus.Reply {
		r := req.(bus.StartAutomation)
		return bus.Respond(o.Start(ctx, r.Channel, r.Count))
	})

	mux.Handle(bus.ActionStopAutomation, func(context.Context, bus.Request, bus.Responder) bus.Reply {
		return bus.Respond(o.Stop())
	})

	mux.Handle(bus.ActionStatus, func(context.Context, bus.Request, bus.Responder) bus.Reply {
		return bus.Respond(o.Status())
	})

	mux.Handle(bus.ActionFetchUploadedVideos, func(ctx context.Context, req bus.Request, respond bus.Responder) bus.Reply {
		r := req.(bus.FetchUploadedVideos)
		count := r.Count
		if count <= 0 {
			count = o.cfg.DefaultCount
		}
		go func() {
			links, err := o.deps.Directory.UploadedVideos(ctx, r.ChannelID, count)
			if err != nil {
				o.log.Warn("Ошибка получения загруженных видео", zap.String("channel", r.ChannelID), zap.Error(err))
				respond(bus.ErrorResponse(err))
				return
			}
			respond(bus.Response{VideoLinks: links})
		}()
		return bus.Pending()
	})

	return mux
}

// Register подключает оркестратор к фоновой конечной точке шины.
func (o *Orchestrator) Register(ctx context.Context, l Listener) (unlisten func()) {
	return l.Listen(ctx, bus.EndpointBackground, o.Mux().Serve)
}
