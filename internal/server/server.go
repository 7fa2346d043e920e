package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ytAgent/internal/bus"
	"ytAgent/internal/config"
	"ytAgent/internal/database"
	"ytAgent/internal/model"
)

// Messenger отправляет запросы фоновому контексту.
type Messenger interface {
	Send(ctx context.Context, to bus.Endpoint, req bus.Request) (bus.Response, error)
}

// RunStore это история прогонов.
type RunStore interface {
	ListRuns(ctx context.Context, limit, offset int) ([]database.Run, error)
	RunTasks(ctx context.Context, runID uint) ([]database.VideoTask, error)
}

// Server это HTTP поверхность управления. runs может быть nil.
type Server struct {
	cfg      config.App
	log      *zap.Logger
	bus      Messenger
	runs     RunStore
	gatherer prometheus.Gatherer
	timeout  time.Duration
}

func New(cfg config.App, log *zap.Logger, b Messenger, runs RunStore, gatherer prometheus.Gatherer) *Server {
	return &Server{
		cfg:      cfg,
		log:      log,
		bus:      b,
		runs:     runs,
		gatherer: gatherer,
		timeout:  60 * time.Second,
	}
}

// Handler возвращает маршрутизатор со всеми обработчиками.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	// Простейший лог-мидлвар
	r.Use(func(c *gin.Context) {
		s.log.Info("HTTP",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/api")

	// Поиск каналов
	api.GET("/channels", func(c *gin.Context) {
		query := c.Query("q")
		if query == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
			return
		}
		limit, _ := strconv.Atoi(c.Query("limit"))
		s.forward(c, bus.FetchChannels{Query: query, Limit: limit})
	})

	// Последние видео канала через API
	api.GET("/channels/:id/videos", func(c *gin.Context) {
		count, _ := strconv.Atoi(c.Query("count"))
		s.forward(c, bus.FetchUploadedVideos{ChannelID: c.Param("id"), Count: count})
	})

	api.POST("/automation/start", func(c *gin.Context) {
		var req struct {
			Channel model.Channel `json:"selectedChannel"`
			Count   int           `json:"requestedCount"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.forward(c, bus.StartAutomation{Channel: req.Channel, Count: req.Count})
	})

	api.POST("/automation/stop", func(c *gin.Context) {
		s.forward(c, bus.StopAutomation{})
	})

	api.GET("/automation/status", func(c *gin.Context) {
		s.forward(c, bus.AutomationStatus{})
	})

	// История прогонов
	api.GET("/runs", func(c *gin.Context) {
		if s.runs == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run history is disabled"})
			return
		}
		runs, err := s.runs.ListRuns(c.Request.Context(), 50, 0)
		if err != nil {
			s.log.Error("db list runs", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		c.JSON(http.StatusOK, runs)
	})

	api.GET("/runs/:id/tasks", func(c *gin.Context) {
		if s.runs == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run history is disabled"})
			return
		}
		id64, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad id"})
			return
		}
		tasks, err := s.runs.RunTasks(c.Request.Context(), uint(id64))
		if err != nil {
			s.log.Error("db run tasks", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		c.JSON(http.StatusOK, tasks)
	})

	return r
}

// forward отправляет запрос в фоновый контекст и возвращает его ответ как JSON.
func (s *Server) forward(c *gin.Context, req bus.Request) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.timeout)
	defer cancel()

	resp, err := s.bus.Send(ctx, bus.EndpointBackground, req)
	if err != nil {
		s.log.Error("bus send", zap.String("action", string(req.Action())), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusOK
	switch {
	case resp.Status == bus.StatusAlreadyRunning:
		status = http.StatusConflict
	case resp.Error != "":
		status = http.StatusBadGateway
		if resp.Status == bus.StatusError {
			status = http.StatusBadRequest
		}
	case resp.Status == bus.StatusError:
		status = http.StatusBadRequest
	}
	c.JSON(status, resp)
}

// Run обслуживает запросы до отмены ctx.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Сервер запущен", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("Остановка сервера")
		return srv.Shutdown(shutdownCtx)
	}
}
