package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"ytAgent/internal/browser"
	"ytAgent/internal/bus"
	"ytAgent/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTabs struct {
	mu      sync.Mutex
	next    browser.TabID
	urls    map[browser.TabID]string
	opened  []string
	closed  []browser.TabID
	focused []browser.TabID
}

func newFakeTabs() *fakeTabs {
	return &fakeTabs{urls: map[browser.TabID]string{}}
}

func (t *fakeTabs) OpenTab(ctx context.Context, url string) (browser.TabID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	t.urls[t.next] = url
	t.opened = append(t.opened, url)
	return t.next, nil
}

func (t *fakeTabs) FocusTab(ctx context.Context, id browser.TabID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.focused = append(t.focused, id)
	return nil
}

func (t *fakeTabs) CloseTab(ctx context.Context, id browser.TabID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = append(t.closed, id)
	return nil
}

func (t *fakeTabs) url(ep bus.Endpoint) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, u := range t.urls {
		if bus.TabEndpoint(int(id)) == ep {
			return u
		}
	}
	return ""
}

func (t *fakeTabs) openCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.opened)
}

type readyNow struct{}

func (readyNow) AwaitReady(context.Context, browser.TabID) error { return nil }

func (readyNow) AwaitAgentReady(context.Context, browser.TabID, time.Duration, time.Duration) error {
	return nil
}

// fakeMessenger отвечает за страницу канала и агентов вкладок видео.
type fakeMessenger struct {
	tabs     *fakeTabs
	links    []string
	discErr  string
	onTask   func(n int, url string) bus.Response
	mu       sync.Mutex
	tasks    []string
	progress []bus.Progress
}

func (m *fakeMessenger) Send(ctx context.Context, to bus.Endpoint, req bus.Request) (bus.Response, error) {
	switch req.(type) {
	case bus.DiscoverVideos:
		if m.discErr != "" {
			return bus.Response{Error: m.discErr}, nil
		}
		return bus.Response{VideoLinks: m.links}, nil
	case bus.StartVideoAutomation:
		url := m.tabs.url(to)
		m.mu.Lock()
		m.tasks = append(m.tasks, url)
		n := len(m.tasks)
		m.mu.Unlock()
		if m.onTask != nil {
			return m.onTask(n, url), nil
		}
		return bus.Response{Status: bus.StatusDone}, nil
	}
	return bus.Response{}, bus.ErrNoReceiver
}

func (m *fakeMessenger) Post(to bus.Endpoint, req bus.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := req.(bus.Progress); ok {
		m.progress = append(m.progress, p)
	}
	return nil
}

func (m *fakeMessenger) started() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.tasks...)
}

type fakeDirectory struct {
	channels []model.Channel
	uploads  []string
	err      error
}

func (d *fakeDirectory) ResolveChannels(ctx context.Context, query string, limit int) ([]model.Channel, error) {
	return d.channels, d.err
}

func (d *fakeDirectory) UploadedVideos(ctx context.Context, channelID string, count int) ([]string, error) {
	if d.err != nil {
		return nil, d.err
	}
	if len(d.uploads) > count {
		return d.uploads[:count], nil
	}
	return d.uploads, nil
}

type fakeRecorder struct {
	mu       sync.Mutex
	outcomes []string
	status   string
}

func (r *fakeRecorder) StartRun(ctx context.Context, ch model.Channel, requested int) (uint, error) {
	return 7, nil
}

func (r *fakeRecorder) RecordTask(ctx context.Context, runID uint, index int, url, outcome, errText string, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
	return nil
}

func (r *fakeRecorder) FinishRun(ctx context.Context, runID uint, status string, discovered int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = status
	return nil
}

func videoLinks(n int) []string {
	links := make([]string, n)
	for i := range links {
		links[i] = fmt.Sprintf("https://www.youtube.com/watch?v=vid%d", i+1)
	}
	return links
}

var veritasium = model.Channel{ID: "UCHnyfMqiRRG1u-2MsSQLbXA", Title: "Veritasium", Handle: "veritasium"}

type fixture struct {
	orch    *Orchestrator
	tabs    *fakeTabs
	msg     *fakeMessenger
	dir     *fakeDirectory
	rec     *fakeRecorder
	metrics *Metrics
}

func newFixture(links []string) *fixture {
	tabs := newFakeTabs()
	f := &fixture{
		tabs:    tabs,
		msg:     &fakeMessenger{tabs: tabs, links: links},
		dir:     &fakeDirectory{},
		rec:     &fakeRecorder{},
		metrics: NewMetrics(prometheus.NewRegistry()),
	}
	f.orch = New(Config{CloseDelay: time.Millisecond}, Deps{
		Tabs:      tabs,
		Readiness: readyNow{},
		Bus:       f.msg,
		Directory: f.dir,
		Recorder:  f.rec,
		Metrics:   f.metrics,
	})
	return f
}

func TestStart_RunsQueueInOrder(t *testing.T) {
	f := newFixture(videoLinks(3))

	resp := f.orch.Start(context.Background(), veritasium, 3)
	assert.Equal(t, bus.StatusSuccess, resp.Status)
	f.orch.Wait()

	assert.Equal(t, videoLinks(3), f.msg.started())
	assert.Equal(t, "https://www.youtube.com/@veritasium/videos", f.tabs.opened[0])
	// три вкладки видео и вкладка канала
	assert.Len(t, f.tabs.closed, 4)
	assert.Equal(t, []browser.TabID{1}, f.tabs.focused)
	assert.Equal(t, browser.TabID(1), f.tabs.closed[3])

	snap := f.orch.State().Snapshot()
	assert.False(t, snap.Active)
	assert.Equal(t, string(PhaseIdle), snap.Phase)
	_, ok := f.orch.State().channelTabID()
	assert.False(t, ok)

	assert.Equal(t, RunCompleted, f.rec.status)
	assert.Equal(t, []string{OutcomeDone, OutcomeDone, OutcomeDone}, f.rec.outcomes)
	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.TasksTotal.WithLabelValues(OutcomeDone)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RunsTotal.WithLabelValues(RunCompleted)))
}

func TestStart_AlreadyRunning(t *testing.T) {
	f := newFixture(videoLinks(1))
	release := make(chan struct{})
	f.msg.onTask = func(int, string) bus.Response {
		<-release
		return bus.Response{Status: bus.StatusDone}
	}

	require.Equal(t, bus.StatusSuccess, f.orch.Start(context.Background(), veritasium, 1).Status)
	assert.Equal(t, bus.StatusAlreadyRunning, f.orch.Start(context.Background(), veritasium, 1).Status)

	close(release)
	f.orch.Wait()

	// после завершения новый прогон принимается
	f.msg.onTask = nil
	assert.Equal(t, bus.StatusSuccess, f.orch.Start(context.Background(), veritasium, 1).Status)
	f.orch.Wait()
}

func TestStart_ConcurrentStartsYieldOneRun(t *testing.T) {
	f := newFixture(videoLinks(1))

	var wg sync.WaitGroup
	results := make(chan bus.Status, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- f.orch.Start(context.Background(), veritasium, 1).Status
		}()
	}
	wg.Wait()
	close(results)
	f.orch.Wait()

	success := 0
	for s := range results {
		if s == bus.StatusSuccess {
			success++
		}
	}
	// прогоны могут завершиться между вызовами, но не пересекаться
	assert.GreaterOrEqual(t, success, 1)
	assert.Equal(t, success, f.tabs.openCount()/2)
}

func TestRun_ActiveThroughoutTwoTaskQueue(t *testing.T) {
	f := newFixture(videoLinks(2))
	var seen []bool
	f.msg.onTask = func(int, string) bus.Response {
		seen = append(seen, f.orch.State().Active())
		return bus.Response{Status: bus.StatusDone}
	}

	f.orch.Start(context.Background(), veritasium, 2)
	f.orch.Wait()

	assert.Equal(t, []bool{true, true}, seen)
	assert.False(t, f.orch.State().Active())
}

func TestRun_StopDuringSecondOfThreeTasks(t *testing.T) {
	f := newFixture(videoLinks(3))
	f.msg.onTask = func(n int, _ string) bus.Response {
		if n == 2 {
			assert.Equal(t, bus.StatusStopped, f.orch.Stop().Status)
		}
		return bus.Response{Status: bus.StatusDone}
	}

	f.orch.Start(context.Background(), veritasium, 3)
	f.orch.Wait()

	// вторая задача дорабатывает, третья не начинается
	assert.Equal(t, videoLinks(3)[:2], f.msg.started())
	assert.Equal(t, RunStopped, f.rec.status)
	assert.Contains(t, f.tabs.closed, browser.TabID(1))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.StopRequests))
}

func TestRun_TaskErrorDoesNotAbortQueue(t *testing.T) {
	f := newFixture(videoLinks(3))
	f.msg.onTask = func(n int, _ string) bus.Response {
		if n == 1 {
			return bus.Response{Status: bus.StatusError, Error: "subscribe: element detached"}
		}
		return bus.Response{Status: bus.StatusDone}
	}

	f.orch.Start(context.Background(), veritasium, 3)
	f.orch.Wait()

	assert.Len(t, f.msg.started(), 3)
	assert.Equal(t, []string{OutcomeError, OutcomeDone, OutcomeDone}, f.rec.outcomes)
	assert.Equal(t, RunCompleted, f.rec.status)
}

func TestRun_DiscoveryFailureAbortsRun(t *testing.T) {
	f := newFixture(nil)
	f.msg.discErr = "page crashed"

	f.orch.Start(context.Background(), veritasium, 3)
	f.orch.Wait()

	assert.Empty(t, f.msg.started())
	assert.Equal(t, RunFailed, f.rec.status)
	assert.Equal(t, []browser.TabID{1}, f.tabs.closed)
	assert.False(t, f.orch.State().Active())

	var failed bool
	for _, p := range f.msg.progress {
		if p.Phase == ProgressFailed {
			failed = true
			assert.Contains(t, p.Error, "page crashed")
		}
	}
	assert.True(t, failed)
}

func TestRun_DiscoveryTruncatesToCount(t *testing.T) {
	f := newFixture(videoLinks(5))

	f.orch.Start(context.Background(), veritasium, 2)
	f.orch.Wait()

	assert.Equal(t, videoLinks(2), f.msg.started())
}

func TestRun_APIDiscoverySource(t *testing.T) {
	f := newFixture(nil)
	f.dir.uploads = videoLinks(4)
	f.orch.cfg.DiscoverySource = SourceAPI

	f.orch.Start(context.Background(), veritasium, 2)
	f.orch.Wait()

	assert.Equal(t, videoLinks(2), f.msg.started())
}

func TestRun_ChannelWithoutHandleUsesID(t *testing.T) {
	f := newFixture(nil)

	f.orch.Start(context.Background(), model.Channel{ID: "UC123"}, 1)
	f.orch.Wait()

	assert.Equal(t, "https://www.youtube.com/channel/UC123/videos", f.tabs.opened[0])
}

func TestStart_RequiresChannel(t *testing.T) {
	f := newFixture(nil)
	resp := f.orch.Start(context.Background(), model.Channel{}, 1)
	assert.Equal(t, bus.StatusError, resp.Status)
	assert.False(t, f.orch.State().Active())
}

func TestStop_WhenIdle(t *testing.T) {
	f := newFixture(nil)
	assert.Equal(t, bus.StatusStopped, f.orch.Stop().Status)
	assert.False(t, f.orch.State().Active())
}

func TestAgentTaskError(t *testing.T) {
	var err error = &AgentTaskError{URL: "u", Message: "boom"}
	var target *AgentTaskError
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, "agent task u: boom", err.Error())
}
