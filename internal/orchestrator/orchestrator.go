// Package orchestrator ведет прогон автоматизации: открывает страницу канала,
// получает список видео и по одному передает их агентам вкладок.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ytAgent/internal/browser"
	"ytAgent/internal/bus"
	"ytAgent/internal/model"

	"go.uber.org/zap"
)

// Источники списка видео.
const (
	SourcePage = "page"
	SourceAPI  = "api"
)

// Итоги задачи и прогона.
const (
	OutcomeDone  = "done"
	OutcomeError = "error"

	RunCompleted = "completed"
	RunStopped   = "stopped"
	RunFailed    = "failed"
)

// Фазы уведомлений automationProgress.
const (
	ProgressStarted    = "started"
	ProgressDiscovered = "discovered"
	ProgressTask       = "task"
	ProgressTaskDone   = "task_done"
	ProgressStopped    = "stopped"
	ProgressFinished   = "finished"
	ProgressFailed     = "failed"
)

var ErrChannelRequired = errors.New("channel id or handle is required")

// AgentTaskError это ошибка, о которой сообщил агент вкладки.
type AgentTaskError struct {
	URL     string
	Message string
}

func (e *AgentTaskError) Error() string {
	return fmt.Sprintf("agent task %s: %s", e.URL, e.Message)
}

// Tabs открывает, активирует и закрывает вкладки.
type Tabs interface {
	OpenTab(ctx context.Context, url string) (browser.TabID, error)
	FocusTab(ctx context.Context, id browser.TabID) error
	CloseTab(ctx context.Context, id browser.TabID) error
}

type Readiness interface {
	AwaitReady(ctx context.Context, tab browser.TabID) error
	AwaitAgentReady(ctx context.Context, tab browser.TabID, interval, timeout time.Duration) error
}

type Messenger interface {
	Send(ctx context.Context, to bus.Endpoint, req bus.Request) (bus.Response, error)
	Post(to bus.Endpoint, req bus.Request) error
}

// Directory ищет каналы и их загруженные видео.
type Directory interface {
	ResolveChannels(ctx context.Context, query string, limit int) ([]model.Channel, error)
	UploadedVideos(ctx context.Context, channelID string, count int) ([]string, error)
}

// Recorder сохраняет историю прогонов.
type Recorder interface {
	StartRun(ctx context.Context, ch model.Channel, requested int) (uint, error)
	RecordTask(ctx context.Context, runID uint, index int, url, outcome, errText string, duration time.Duration) error
	FinishRun(ctx context.Context, runID uint, status string, discovered int) error
}

type Config struct {
	SiteURL         string
	DiscoverySource string
	DefaultCount    int
	SearchLimit     int
	PingInterval    time.Duration
	PingTimeout     time.Duration
	ReadyTimeout    time.Duration
	TaskTimeout     time.Duration
	CloseDelay      time.Duration
}

func (c *Config) setDefaults() {
	if c.SiteURL == "" {
		c.SiteURL = "https://www.youtube.com"
	}
	if c.DiscoverySource == "" {
		c.DiscoverySource = SourcePage
	}
	if c.DefaultCount <= 0 {
		c.DefaultCount = 5
	}
	if c.SearchLimit <= 0 {
		c.SearchLimit = 5
	}
	if c.PingInterval <= 0 {
		c.PingInterval = 500 * time.Millisecond
	}
	if c.CloseDelay < 0 {
		c.CloseDelay = 0
	}
}

// Deps это внешние компоненты оркестратора. Recorder и Metrics необязательны.
type Deps struct {
	Tabs      Tabs
	Readiness Readiness
	Bus       Messenger
	Directory Directory
	Recorder  Recorder
	Metrics   *Metrics
	Log       *zap.Logger
}

type Orchestrator struct {
	cfg   Config
	deps  Deps
	log   *zap.Logger
	state *RunState
	wg    sync.WaitGroup
}

func New(cfg Config, deps Deps) *Orchestrator {
	cfg.setDefaults()
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		cfg:   cfg,
		deps:  deps,
		log:   log,
		state: newRunState(),
	}
}

// State возвращает состояние прогона.
func (o *Orchestrator) State() *RunState {
	return o.state
}

// Start запускает прогон асинхронно и сразу отвечает. ctx ограничивает
// время жизни прогона, а не только вызов.
func (o *Orchestrator) Start(ctx context.Context, ch model.Channel, count int) bus.Response {
	if ch.ID == "" && ch.Handle == "" {
		return bus.Response{Status: bus.StatusError, Error: ErrChannelRequired.Error()}
	}
	if count <= 0 {
		count = o.cfg.DefaultCount
	}

	if !o.state.tryStart(ch) {
		o.log.Info("Автоматизация уже запущена", zap.String("channel", ch.ID))
		return bus.Response{Status: bus.StatusAlreadyRunning, Message: "Automation already running"}
	}

	o.wg.Add(1)
	go o.run(ctx, ch, count)

	return bus.Response{Status: bus.StatusSuccess, Message: "Automation started"}
}

// Stop сбрасывает флаг активности. Текущая задача дорабатывает, следующая не начнется.
func (o *Orchestrator) Stop() bus.Response {
	was := o.state.stop()
	if o.deps.Metrics != nil {
		o.deps.Metrics.StopRequests.Inc()
	}
	o.log.Info("Запрошена остановка автоматизации", zap.Bool("was_active", was))
	return bus.Response{Status: bus.StatusStopped, Message: "Automation stopped"}
}

func (o *Orchestrator) Status() bus.Response {
	snap := o.state.Snapshot()
	return bus.Response{Status: bus.StatusSuccess, Run: &snap}
}

// Wait ждет завершения текущего прогона.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) run(ctx context.Context, ch model.Channel, count int) {
	defer o.wg.Done()

	log := o.log.With(zap.String("channel", ch.ID), zap.String("handle", ch.Handle))
	if m := o.deps.Metrics; m != nil {
		m.RunActive.Set(1)
		defer m.RunActive.Set(0)
	}

	log.Info("Прогон начат", zap.Int("requested", count))
	o.notify(bus.Progress{Phase: ProgressStarted, Total: count})
	runID := o.startRecord(ctx, ch, count, log)

	status := RunCompleted
	links, err := o.prepare(ctx, ch, count, log)
	if err != nil {
		status = RunFailed
		log.Error("Не удалось получить список видео", zap.Error(err))
		o.notify(bus.Progress{Phase: ProgressFailed, Error: err.Error()})
	} else {
		tasks := model.TasksFromLinks(links)
		log.Info("Видео найдены", zap.Int("count", len(tasks)))
		if m := o.deps.Metrics; m != nil {
			m.DiscoveredVideos.Observe(float64(len(tasks)))
		}
		o.notify(bus.Progress{Phase: ProgressDiscovered, Total: len(tasks)})

		for i, task := range tasks {
			if !o.state.Active() || ctx.Err() != nil {
				status = RunStopped
				log.Info("Прогон остановлен, оставшиеся задачи отброшены",
					zap.Int("done", i), zap.Int("skipped", len(tasks)-i))
				o.notify(bus.Progress{Phase: ProgressStopped, Index: i, Total: len(tasks)})
				break
			}
			o.state.enter(PhaseRunningTask, i, len(tasks))
			o.runTask(ctx, runID, i, len(tasks), task, log)
		}
	}

	o.closeChannelPage(ctx, log)
	o.state.finish()

	o.finishRecord(ctx, runID, status, len(links), log)
	if m := o.deps.Metrics; m != nil {
		m.RunsTotal.WithLabelValues(status).Inc()
	}
	o.notify(bus.Progress{Phase: ProgressFinished, Total: len(links), Outcome: status})
	log.Info("Прогон завершен", zap.String("status", status))
}

// prepare открывает страницу канала, ждет ее загрузки и получает ссылки на видео.
func (o *Orchestrator) prepare(ctx context.Context, ch model.Channel, count int, log *zap.Logger) ([]string, error) {
	url := ch.VideosURL(o.cfg.SiteURL)
	tab, err := o.deps.Tabs.OpenTab(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("открытие страницы канала: %w", err)
	}
	o.state.setChannelTab(tab)
	log.Debug("Страница канала открыта", zap.Int("tab", int(tab)), zap.String("url", url))

	if err := o.awaitReady(ctx, tab); err != nil {
		return nil, fmt.Errorf("загрузка страницы канала: %w", err)
	}

	o.state.enter(PhaseDiscovering, 0, count)

	var links []string
	switch o.cfg.DiscoverySource {
	case SourceAPI:
		links, err = o.deps.Directory.UploadedVideos(ctx, ch.ID, count)
		if err != nil {
			return nil, err
		}
	default:
		if err := o.deps.Readiness.AwaitAgentReady(ctx, tab, o.cfg.PingInterval, o.cfg.PingTimeout); err != nil {
			return nil, fmt.Errorf("агент страницы канала: %w", err)
		}
		resp, err := o.deps.Bus.Send(ctx, bus.TabEndpoint(int(tab)), bus.DiscoverVideos{Count: count})
		if err != nil {
			return nil, fmt.Errorf("discoverVideos: %w", err)
		}
		if resp.Error != "" {
			return nil, fmt.Errorf("discoverVideos: %s", resp.Error)
		}
		links = resp.VideoLinks
	}

	if len(links) > count {
		links = links[:count]
	}
	return links, nil
}

func (o *Orchestrator) awaitReady(ctx context.Context, tab browser.TabID) error {
	if o.cfg.ReadyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.ReadyTimeout)
		defer cancel()
	}
	return o.deps.Readiness.AwaitReady(ctx, tab)
}

func (o *Orchestrator) runTask(ctx context.Context, runID uint, i, total int, task model.Task, log *zap.Logger) {
	log = log.With(zap.Int("task", i+1), zap.Int("total", total), zap.String("url", task.TargetURL))
	o.notify(bus.Progress{Phase: ProgressTask, Index: i + 1, Total: total, URL: task.TargetURL})

	start := time.Now()
	outcome := OutcomeDone
	errText := ""
	if err := o.execTask(ctx, task); err != nil {
		// ошибка задачи не прерывает очередь
		outcome = OutcomeError
		errText = err.Error()
		log.Warn("Задача завершилась с ошибкой", zap.Error(err))
	} else {
		log.Info("Задача выполнена")
	}
	elapsed := time.Since(start)

	if m := o.deps.Metrics; m != nil {
		m.TasksTotal.WithLabelValues(outcome).Inc()
		m.TaskDuration.Observe(elapsed.Seconds())
	}
	if o.deps.Recorder != nil && runID != 0 {
		if err := o.deps.Recorder.RecordTask(context.WithoutCancel(ctx), runID, i, task.TargetURL, outcome, errText, elapsed); err != nil {
			log.Warn("Не удалось сохранить результат задачи", zap.Error(err))
		}
	}
	o.notify(bus.Progress{
		Phase:   ProgressTaskDone,
		Index:   i + 1,
		Total:   total,
		URL:     task.TargetURL,
		Outcome: outcome,
		Error:   errText,
	})
}

// execTask открывает вкладку видео, передает задачу агенту и закрывает вкладку.
func (o *Orchestrator) execTask(ctx context.Context, task model.Task) error {
	if o.cfg.TaskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.TaskTimeout)
		defer cancel()
	}

	tab, err := o.deps.Tabs.OpenTab(ctx, task.TargetURL)
	if err != nil {
		return fmt.Errorf("открытие вкладки: %w", err)
	}
	defer o.closeTab(ctx, tab)

	if err := o.awaitReady(ctx, tab); err != nil {
		return fmt.Errorf("загрузка вкладки: %w", err)
	}
	if err := o.deps.Readiness.AwaitAgentReady(ctx, tab, o.cfg.PingInterval, o.cfg.PingTimeout); err != nil {
		return fmt.Errorf("агент вкладки: %w", err)
	}

	resp, err := o.deps.Bus.Send(ctx, bus.TabEndpoint(int(tab)), bus.StartVideoAutomation{})
	if err != nil {
		return fmt.Errorf("startVideoAutomation: %w", err)
	}
	if resp.Status != bus.StatusDone {
		msg := resp.Error
		if msg == "" {
			msg = resp.Message
		}
		return &AgentTaskError{URL: task.TargetURL, Message: msg}
	}
	return nil
}

func (o *Orchestrator) closeTab(ctx context.Context, tab browser.TabID) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := o.deps.Tabs.CloseTab(ctx, tab); err != nil {
		o.log.Warn("Не удалось закрыть вкладку", zap.Int("tab", int(tab)), zap.Error(err))
	}
}

// closeChannelPage показывает вкладку канала, дает паузу и закрывает ее.
func (o *Orchestrator) closeChannelPage(ctx context.Context, log *zap.Logger) {
	o.state.enter(PhaseClosingChannelPage, 0, 0)

	tab, ok := o.state.channelTabID()
	if !ok {
		return
	}

	cctx := context.WithoutCancel(ctx)
	if err := o.deps.Tabs.FocusTab(cctx, tab); err != nil {
		log.Debug("Не удалось активировать вкладку канала", zap.Error(err))
	}
	if o.cfg.CloseDelay > 0 {
		t := time.NewTimer(o.cfg.CloseDelay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
		}
	}
	o.closeTab(cctx, tab)
	o.state.clearChannelTab()
}

// notify отправляет прогресс поверхности управления без ожидания ответа.
func (o *Orchestrator) notify(p bus.Progress) {
	if err := o.deps.Bus.Post(bus.EndpointControl, p); err != nil && !errors.Is(err, bus.ErrNoReceiver) {
		o.log.Debug("Прогресс не доставлен", zap.Error(err))
	}
}

func (o *Orchestrator) startRecord(ctx context.Context, ch model.Channel, count int, log *zap.Logger) uint {
	if o.deps.Recorder == nil {
		return 0
	}
	id, err := o.deps.Recorder.StartRun(ctx, ch, count)
	if err != nil {
		log.Warn("Не удалось сохранить прогон", zap.Error(err))
		return 0
	}
	return id
}

func (o *Orchestrator) finishRecord(ctx context.Context, runID uint, status string, discovered int, log *zap.Logger) {
	if o.deps.Recorder == nil || runID == 0 {
		return
	}
	if err := o.deps.Recorder.FinishRun(context.WithoutCancel(ctx), runID, status, discovered); err != nil {
		log.Warn("Не удалось завершить запись прогона", zap.Error(err))
	}
}
