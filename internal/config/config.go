package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Источники списка видео канала.
const (
	DiscoveryPage = "page"
	DiscoveryAPI  = "api"
)

// Режимы запуска.
const (
	ModeCLI    = "cli"
	ModeServer = "server"
)

type Cfg struct {
	Database   Database
	Logger     Logger
	YouTube    YouTube
	LLM        LLM
	Browser    Browser
	Automation Automation
	Migrations Migrations
	Redis      Redis
	App        App
}

type Database struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

// Enabled сообщает, настроена ли история прогонов в БД.
func (d Database) Enabled() bool {
	return d.Host != ""
}

type Migrations struct {
	Path string
}

type Logger struct {
	Env   string
	Level string
}

type YouTube struct {
	APIKey            string
	APIBase           string
	SiteURL           string
	RequestsPerSecond float64
	SearchLimit       int
}

type LLM struct {
	APIKey            string
	BaseURL           string
	Model             string
	RequestsPerMinute int
	TokensPerHour     int
	MaxFailures       int
	ResetTimeout      time.Duration
}

type Browser struct {
	Engine          string
	Display         string
	Headless        bool
	UserDataDir     string
	BrowsersPath    string
	NavigateTimeout time.Duration
}

type Automation struct {
	DefaultCount     int
	DiscoverySource  string
	PingInterval     time.Duration
	PingTimeout      time.Duration
	ReadyTimeout     time.Duration
	TaskTimeout      time.Duration
	CloseDelay       time.Duration
	DiscoveryTimeout time.Duration
}

type Redis struct {
	URL      string
	CacheTTL time.Duration
}

type App struct {
	Mode string // cli или server
	Host string
	Port int
}

func Load() (*Cfg, error) {
	_ = godotenv.Load()

	cfg := &Cfg{
		Database: Database{
			Host:     os.Getenv("DB_HOST"),
			Port:     env("DB_PORT", "5432"),
			Name:     os.Getenv("DB_NAME"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASS"),
		},
		Logger: Logger{
			Env:   env("ENV", "dev"),
			Level: env("LOG_LEVEL", "info"),
		},
		YouTube: YouTube{
			APIKey:            os.Getenv("YOUTUBE_API_KEY"),
			APIBase:           env("YOUTUBE_API_BASE", "https://www.googleapis.com/youtube/v3"),
			SiteURL:           env("YOUTUBE_SITE_URL", "https://www.youtube.com"),
			RequestsPerSecond: envFloat("YOUTUBE_RPS", 5),
			SearchLimit:       envInt("YOUTUBE_SEARCH_LIMIT", 5),
		},
		LLM: LLM{
			APIKey:            os.Getenv("LLM_API_KEY"),
			BaseURL:           env("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
			Model:             env("LLM_MODEL", "llama-3.3-70b-versatile"),
			RequestsPerMinute: envInt("LLM_RPM", 30),
			TokensPerHour:     envInt("LLM_TPH", 200000),
			MaxFailures:       envInt("LLM_MAX_FAILURES", 3),
			ResetTimeout:      envDuration("LLM_RESET_TIMEOUT", time.Minute),
		},
		Browser: Browser{
			Engine:          env("PW_ENGINE", "chromium"),
			Display:         env("DISPLAY", ":0"),
			Headless:        envBool("PW_HEADLESS"),
			UserDataDir:     env("PW_USER_DATA_DIR", "./userdata"),
			BrowsersPath:    env("PLAYWRIGHT_BROWSERS_PATH", ""),
			NavigateTimeout: envDuration("PW_NAVIGATE_TIMEOUT", 30*time.Second),
		},
		Automation: Automation{
			DefaultCount:     envInt("AUTOMATION_COUNT", 5),
			DiscoverySource:  strings.ToLower(env("DISCOVERY_SOURCE", DiscoveryPage)),
			PingInterval:     envDuration("PING_INTERVAL", 500*time.Millisecond),
			PingTimeout:      envDuration("PING_TIMEOUT", 30*time.Second),
			ReadyTimeout:     envDuration("READY_TIMEOUT", 60*time.Second),
			TaskTimeout:      envDuration("TASK_TIMEOUT", 3*time.Minute),
			CloseDelay:       envDuration("CLOSE_DELAY", 2*time.Second),
			DiscoveryTimeout: envDuration("DISCOVERY_TIMEOUT", 10*time.Second),
		},
		Migrations: Migrations{
			Path: env("MIGRATIONS_PATH", "file://migrations"),
		},
		Redis: Redis{
			URL:      os.Getenv("REDIS_URL"),
			CacheTTL: envDuration("REDIS_CACHE_TTL", 15*time.Minute),
		},
		App: App{
			Mode: env("APP_MODE", ModeCLI),
			Host: env("APP_HOST", "127.0.0.1"),
			Port: envInt("APP_PORT", 8080),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Cfg) validate() error {
	switch c.Automation.DiscoverySource {
	case DiscoveryPage, DiscoveryAPI:
	default:
		return fmt.Errorf("DISCOVERY_SOURCE: неизвестный источник %q", c.Automation.DiscoverySource)
	}
	switch c.App.Mode {
	case ModeCLI, ModeServer:
	default:
		return fmt.Errorf("APP_MODE: неизвестный режим %q", c.App.Mode)
	}
	if c.Automation.DefaultCount <= 0 {
		return fmt.Errorf("AUTOMATION_COUNT должен быть больше нуля")
	}
	return nil
}

func env(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func envInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func envFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func envDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "true" || v == "1" || v == "yes"
}
