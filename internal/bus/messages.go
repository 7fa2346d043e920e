package bus

import "ytAgent/internal/model"

// Action идентифицирует вид сообщения.
type Action string

const (
	ActionFetchChannels        Action = "fetchChannels"
	ActionStartAutomation      Action = "startAutomation"
	ActionStopAutomation       Action = "stopAutomation"
	ActionStatus               Action = "automationStatus"
	ActionFetchUploadedVideos  Action = "fetchUploadedVideos"
	ActionDiscoverVideos       Action = "discoverVideos"
	ActionPing                 Action = "ping"
	ActionStartVideoAutomation Action = "startVideoAutomation"
	ActionProgress             Action = "automationProgress"
)

// Status это значение поля status в ответах.
type Status string

const (
	StatusSuccess        Status = "success"
	StatusAlreadyRunning Status = "already_running"
	StatusStopped        Status = "stopped"
	StatusReady          Status = "ready"
	StatusDone           Status = "done"
	StatusError          Status = "error"
)

// Request это типизированное сообщение одного из видов Action.
type Request interface {
	Action() Action
}

type FetchChannels struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type StartAutomation struct {
	Channel model.Channel `json:"selectedChannel"`
	Count   int           `json:"requestedCount"`
}

type StopAutomation struct{}

type AutomationStatus struct{}

type FetchUploadedVideos struct {
	ChannelID string `json:"channelId"`
	Count     int    `json:"count"`
}

type DiscoverVideos struct {
	Count int `json:"count"`
}

type Ping struct{}

type StartVideoAutomation struct{}

// Progress уведомляет поверхность управления о ходе прогона. Ответ не ожидается.
type Progress struct {
	Phase   string `json:"phase"`
	Index   int    `json:"index"`
	Total   int    `json:"total"`
	URL     string `json:"url,omitempty"`
	Outcome string `json:"outcome,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (FetchChannels) Action() Action        { return ActionFetchChannels }
func (StartAutomation) Action() Action      { return ActionStartAutomation }
func (StopAutomation) Action() Action       { return ActionStopAutomation }
func (AutomationStatus) Action() Action     { return ActionStatus }
func (FetchUploadedVideos) Action() Action  { return ActionFetchUploadedVideos }
func (DiscoverVideos) Action() Action       { return ActionDiscoverVideos }
func (Ping) Action() Action                 { return ActionPing }
func (StartVideoAutomation) Action() Action { return ActionStartVideoAutomation }
func (Progress) Action() Action             { return ActionProgress }

// RunSnapshot описывает состояние прогона для ответа на automationStatus.
type RunSnapshot struct {
	Active  bool           `json:"active"`
	Phase   string         `json:"phase"`
	Index   int            `json:"index"`
	Total   int            `json:"total"`
	Channel *model.Channel `json:"channel,omitempty"`
}

// Response общий конверт ответа. Заполняются только поля, относящиеся к виду запроса.
type Response struct {
	Status     Status          `json:"status,omitempty"`
	Message    string          `json:"message,omitempty"`
	Error      string          `json:"error,omitempty"`
	Channels   []model.Channel `json:"channels,omitempty"`
	VideoLinks []string        `json:"videoLinks,omitempty"`
	Run        *RunSnapshot    `json:"run,omitempty"`
}

// ErrorResponse строит ответ с полем error.
func ErrorResponse(err error) Response {
	return Response{Error: err.Error()}
}
