// Package database хранит историю прогонов автоматизации в PostgreSQL.
// Использует GORM ORM с prepared statements.
package database

import "time"

// Run представляет один прогон автоматизации канала.
// Статусы: running, completed, stopped, failed.
type Run struct {
	ID            uint      `gorm:"primaryKey"`
	ChannelID     string    `gorm:"type:varchar(64);not null;index"`
	ChannelTitle  string    `gorm:"type:text"`
	ChannelHandle string    `gorm:"type:varchar(128)"`
	Requested     int       `gorm:"not null"`
	Discovered    int       `gorm:"not null;default:0"`
	Status        string    `gorm:"type:varchar(32);not null;default:'running'"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	FinishedAt    *time.Time
}

// VideoTask это результат задачи для одного видео.
type VideoTask struct {
	ID         uint   `gorm:"primaryKey"`
	RunID      uint   `gorm:"index;not null"`
	Position   int    `gorm:"not null"`
	URL        string `gorm:"type:text;not null"`
	Outcome    string `gorm:"type:varchar(16);not null"` // done, error
	Error      string `gorm:"type:text"`
	DurationMs int64
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// LlmLog представляет лог запроса к LLM.
type LlmLog struct {
	ID           uint   `gorm:"primaryKey"`
	RunID        *uint  `gorm:"index"`
	Role         string `gorm:"type:varchar(16);not null"`
	PromptText   string `gorm:"type:text;not null"`
	ResponseText string `gorm:"type:text"`
	Model        string `gorm:"type:varchar(64)"`
	TokensUsed   int
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}
