package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Zap оборачивает zap.Logger, чтобы пакеты зависели от одного типа.
type Zap struct {
	*zap.Logger
}

// New создает логгер. env "dev" включает консольный вывод с цветными
// уровнями, остальные окружения пишут JSON.
func New(env, level string) (*Zap, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("неверный уровень логирования %q: %w", level, err)
	}

	var cfg zap.Config
	if env == "dev" || env == "development" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("создание логгера: %w", err)
	}
	return &Zap{Logger: l}, nil
}

// Nop возвращает логгер, который ничего не пишет.
func Nop() *Zap {
	return &Zap{Logger: zap.NewNop()}
}
