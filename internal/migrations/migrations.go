package migrations

import (
	"errors"
	"fmt"

	"ytAgent/internal/config"
	"ytAgent/internal/database"
	"ytAgent/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// Run применяет миграции из cfg.Migrations.Path. Без настроенной БД ничего не делает.
func Run(cfg *config.Cfg, log *logger.Zap) error {
	if !cfg.Database.Enabled() {
		log.Debug("БД не настроена, миграции пропущены")
		return nil
	}

	m, err := migrate.New(cfg.Migrations.Path, database.URL(cfg.Database))
	if err != nil {
		return fmt.Errorf("инициализация миграций: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("применение миграций: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return err
	}
	log.Info("Миграции применены", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}
