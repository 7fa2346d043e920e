// Package browser управляет браузером через Playwright: вкладки, события их
// загрузки и действия со страницей.
package browser

import (
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

type Config struct {
	Engine          string // chromium или firefox
	Headless        bool
	UserDataDir     string
	BrowsersPath    string
	Display         string
	Timeout         time.Duration
	NavigateTimeout time.Duration
}

// PlaywrightBrowser держит один контекст браузера, каждая вкладка это отдельная страница.
type PlaywrightBrowser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	cfg     Config
	log     *zap.Logger
	hub     *LifecycleHub

	mu     sync.RWMutex
	pages  map[TabID]*Page
	nextID TabID
}
