package browser

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

func New(cfg Config, log *zap.Logger) *PlaywrightBrowser {
	// Установка дефолтных таймаутов
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.NavigateTimeout == 0 {
		cfg.NavigateTimeout = 60 * time.Second
	}
	if cfg.Engine == "" {
		cfg.Engine = "chromium"
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &PlaywrightBrowser{
		cfg:   cfg,
		log:   log,
		hub:   NewLifecycleHub(),
		pages: make(map[TabID]*Page),
	}
}

// Lifecycle возвращает источник событий загрузки вкладок.
func (b *PlaywrightBrowser) Lifecycle() *LifecycleHub {
	return b.hub
}

func (b *PlaywrightBrowser) getBrowserArgs() []string {
	return []string{
		"--no-sandbox",
	}
}

func (b *PlaywrightBrowser) getEnvMap() map[string]string {
	if b.cfg.Display != "" {
		return map[string]string{
			"DISPLAY": b.cfg.Display,
		}
	}
	return nil
}

func (b *PlaywrightBrowser) browserType(pw *playwright.Playwright) playwright.BrowserType {
	if strings.EqualFold(b.cfg.Engine, "firefox") {
		return pw.Firefox
	}
	return pw.Chromium
}

func (b *PlaywrightBrowser) launchPersistent(pw *playwright.Playwright) error {
	opts := playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless: playwright.Bool(b.cfg.Headless),
		Args:     b.getBrowserArgs(),
	}

	if env := b.getEnvMap(); env != nil {
		opts.Env = env
	}

	browserContext, err := b.browserType(pw).LaunchPersistentContext(b.cfg.UserDataDir, opts)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.context = browserContext
	b.mu.Unlock()

	browserContext.SetDefaultTimeout(float64(b.cfg.Timeout.Milliseconds()))
	return nil
}

func (b *PlaywrightBrowser) launchStandard(pw *playwright.Playwright) error {
	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(b.cfg.Headless),
		Args:     b.getBrowserArgs(),
	}

	if env := b.getEnvMap(); env != nil {
		opts.Env = env
	}

	browser, err := b.browserType(pw).Launch(opts)
	if err != nil {
		return err
	}

	browserContext, err := browser.NewContext()
	if err != nil {
		browser.Close()
		return err
	}

	b.mu.Lock()
	b.browser = browser
	b.context = browserContext
	b.mu.Unlock()

	browserContext.SetDefaultTimeout(float64(b.cfg.Timeout.Milliseconds()))
	return nil
}

// Launch запускает драйвер Playwright и браузер. С UserDataDir сессия
// (логин на сайте) сохраняется между запусками.
func (b *PlaywrightBrowser) Launch(ctx context.Context) error {
	if b.cfg.BrowsersPath != "" {
		os.Setenv("PLAYWRIGHT_BROWSERS_PATH", b.cfg.BrowsersPath)
	}

	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("запуск playwright: %w", err)
	}
	b.pw = pw

	if b.cfg.UserDataDir != "" {
		return b.launchPersistent(pw)
	}

	return b.launchStandard(pw)
}

func (b *PlaywrightBrowser) getContext() playwright.BrowserContext {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.context
}

// OpenTab открывает новую вкладку и начинает навигацию, не дожидаясь загрузки.
// О завершении загрузки сообщает LifecycleHub.
func (b *PlaywrightBrowser) OpenTab(ctx context.Context, url string) (TabID, error) {
	bc := b.getContext()
	if bc == nil {
		return 0, fmt.Errorf("браузер не запущен")
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	page, err := bc.NewPage()
	if err != nil {
		return 0, fmt.Errorf("создание вкладки: %w", err)
	}

	id := b.register(page)
	b.hub.Publish(LifecycleEvent{Tab: id, Status: StatusLoading, URL: url})

	go func() {
		_, err := page.Goto(url, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateLoad,
			Timeout:   playwright.Float(float64(b.cfg.NavigateTimeout.Milliseconds())),
		})
		if err != nil {
			b.log.Warn("Ошибка навигации", zap.Int("tab", int(id)), zap.String("url", url), zap.Error(err))
		}
	}()

	b.log.Debug("Вкладка открыта", zap.Int("tab", int(id)), zap.String("url", url))
	return id, nil
}

func (b *PlaywrightBrowser) register(page playwright.Page) TabID {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	p := newPage(page, b.log.With(zap.Int("tab", int(id))))
	b.pages[id] = p
	b.mu.Unlock()

	page.OnLoad(func(pg playwright.Page) {
		url := pg.URL()
		if url == "about:blank" {
			return
		}
		b.hub.Publish(LifecycleEvent{Tab: id, Status: StatusComplete, URL: url})
	})
	page.OnClose(func(playwright.Page) {
		b.mu.Lock()
		delete(b.pages, id)
		b.mu.Unlock()
		b.hub.Publish(LifecycleEvent{Tab: id, Status: StatusClosed})
	})

	return id
}

// Page возвращает страницу вкладки, если она еще открыта.
func (b *PlaywrightBrowser) Page(id TabID) (*Page, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.pages[id]
	return p, ok
}

// CloseTab закрывает вкладку. Закрытие уже закрытой вкладки не ошибка.
func (b *PlaywrightBrowser) CloseTab(ctx context.Context, id TabID) error {
	p, ok := b.Page(id)
	if !ok {
		return nil
	}
	return p.page.Close()
}

// FocusTab выводит вкладку на передний план.
func (b *PlaywrightBrowser) FocusTab(ctx context.Context, id TabID) error {
	p, ok := b.Page(id)
	if !ok {
		return fmt.Errorf("вкладка %d не найдена", id)
	}
	return p.page.BringToFront()
}

func (b *PlaywrightBrowser) Close() error {
	// обработчики OnClose берут mu, поэтому закрываем вне блокировки
	b.mu.Lock()
	bc, br, pw := b.context, b.browser, b.pw
	b.context, b.browser, b.pw = nil, nil, nil
	b.mu.Unlock()

	if bc != nil {
		if err := bc.Close(); err != nil {
			return err
		}
	}
	if br != nil {
		if err := br.Close(); err != nil {
			return err
		}
	}
	if pw != nil {
		return pw.Stop()
	}
	return nil
}
