package database

import (
	"context"
	"time"

	"ytAgent/internal/model"

	"gorm.io/gorm"
)

type RunRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) StartRun(ctx context.Context, ch model.Channel, requested int) (uint, error) {
	run := Run{
		ChannelID:     ch.ID,
		ChannelTitle:  ch.Title,
		ChannelHandle: ch.Handle,
		Requested:     requested,
		Status:        "running",
	}
	if err := r.db.WithContext(ctx).Create(&run).Error; err != nil {
		return 0, err
	}
	return run.ID, nil
}

func (r *RunRepository) RecordTask(ctx context.Context, runID uint, index int, url, outcome, errText string, duration time.Duration) error {
	return r.db.WithContext(ctx).Create(&VideoTask{
		RunID:      runID,
		Position:   index + 1,
		URL:        url,
		Outcome:    outcome,
		Error:      errText,
		DurationMs: duration.Milliseconds(),
	}).Error
}

func (r *RunRepository) FinishRun(ctx context.Context, runID uint, status string, discovered int) error {
	return r.db.WithContext(ctx).Model(&Run{}).
		Where("id = ?", runID).
		Updates(map[string]any{
			"status":      status,
			"discovered":  discovered,
			"finished_at": time.Now().UTC(),
		}).Error
}

func (r *RunRepository) ListRuns(ctx context.Context, limit, offset int) ([]Run, error) {
	var runs []Run
	if err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Offset(offset).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *RunRepository) RunTasks(ctx context.Context, runID uint) ([]VideoTask, error) {
	var tasks []VideoTask
	if err := r.db.WithContext(ctx).Where("run_id = ?", runID).Order("position").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// LogLLMRequest реализует llm.Logger.
func (r *RunRepository) LogLLMRequest(ctx context.Context, runID *uint, role, promptText, responseText, modelName string, tokensUsed int) error {
	return r.db.WithContext(ctx).Create(&LlmLog{
		RunID:        runID,
		Role:         role,
		PromptText:   promptText,
		ResponseText: responseText,
		Model:        modelName,
		TokensUsed:   tokensUsed,
	}).Error
}
