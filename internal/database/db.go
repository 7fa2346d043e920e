package database

import (
	"fmt"
	"time"

	"ytAgent/internal/config"
	"ytAgent/internal/logger"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type DB struct {
	*gorm.DB
}

// DSN собирает строку подключения PostgreSQL.
func DSN(c config.Database) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		c.Host, c.Port, c.User, c.Password, c.Name)
}

// URL собирает адрес подключения для golang-migrate.
func URL(c config.Database) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", c.User, c.Password, c.Host, c.Port, c.Name)
}

func New(cfg *config.Cfg, log *logger.Zap) (*DB, error) {
	db, err := gorm.Open(postgres.Open(DSN(cfg.Database)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("подключение к БД: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	log.Info("Подключение к БД установлено", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.Name))
	return &DB{DB: db}, nil
}

func (d *DB) Close(log *logger.Zap) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		log.Error("Ошибка получения соединения БД", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error("Ошибка закрытия БД", zap.Error(err))
	}
}
