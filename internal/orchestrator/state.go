package orchestrator

import (
	"sync"

	"ytAgent/internal/browser"
	"ytAgent/internal/bus"
	"ytAgent/internal/model"
)

// Phase это состояние машины прогона.
type Phase string

const (
	PhaseIdle                Phase = "idle"
	PhaseAwaitingChannelPage Phase = "awaiting_channel_page"
	PhaseDiscovering         Phase = "discovering"
	PhaseRunningTask         Phase = "running_task"
	PhaseClosingChannelPage  Phase = "closing_channel_page"
)

// RunState единственное состояние прогона. Меняется только через методы,
// проверка и установка флага active атомарны.
type RunState struct {
	mu sync.Mutex

	active     bool
	running    bool
	channelTab *browser.TabID
	phase      Phase
	index      int
	total      int
	channel    *model.Channel
}

func newRunState() *RunState {
	return &RunState{phase: PhaseIdle}
}

// tryStart занимает состояние под новый прогон. Возвращает false, если
// прогон уже активен или предыдущий остановленный прогон еще не завершился.
func (s *RunState) tryStart(ch model.Channel) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active || s.running {
		return false
	}
	s.active = true
	s.running = true
	s.phase = PhaseAwaitingChannelPage
	s.index, s.total = 0, 0
	s.channel = &ch
	return true
}

// stop сбрасывает active. Возвращает прежнее значение.
func (s *RunState) stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	was := s.active
	s.active = false
	return was
}

func (s *RunState) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *RunState) enter(p Phase, index, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = p
	s.index = index
	s.total = total
}

func (s *RunState) setChannelTab(id browser.TabID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channelTab = &id
}

func (s *RunState) channelTabID() (browser.TabID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.channelTab == nil {
		return 0, false
	}
	return *s.channelTab, true
}

func (s *RunState) clearChannelTab() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channelTab = nil
}

// finish возвращает состояние в Idle.
func (s *RunState) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
	s.running = false
	s.phase = PhaseIdle
	s.channelTab = nil
}

// Snapshot копирует состояние для ответа на automationStatus.
func (s *RunState) Snapshot() bus.RunSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := bus.RunSnapshot{
		Active: s.active,
		Phase:  string(s.phase),
		Index:  s.index,
		Total:  s.total,
	}
	if s.channel != nil {
		ch := *s.channel
		snap.Channel = &ch
	}
	return snap
}
