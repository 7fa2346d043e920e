package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ytAgent/internal/agent"
	"ytAgent/internal/browser"
	"ytAgent/internal/bus"
	"ytAgent/internal/cache"
	"ytAgent/internal/cli"
	"ytAgent/internal/cli/commands"
	"ytAgent/internal/config"
	"ytAgent/internal/database"
	"ytAgent/internal/discovery"
	"ytAgent/internal/llm"
	"ytAgent/internal/logger"
	"ytAgent/internal/migrations"
	"ytAgent/internal/orchestrator"
	"ytAgent/internal/readiness"
	"ytAgent/internal/server"
	"ytAgent/internal/youtube"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Logger.Env, cfg.Logger.Level)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := migrations.Run(cfg, log); err != nil {
		log.Fatal("Ошибка миграций", zap.Error(err))
	}

	// История прогонов необязательна
	var (
		recorder orchestrator.Recorder
		runStore commands.RunStore
		httpRuns server.RunStore
		llmLog   llm.Logger
	)
	if cfg.Database.Enabled() {
		db, err := database.New(cfg, log)
		if err != nil {
			log.Fatal("Ошибка подключения к БД", zap.Error(err))
		}
		defer db.Close(log)

		repo := database.NewRunRepository(db.DB)
		recorder, runStore, httpRuns, llmLog = repo, repo, repo, repo
	} else {
		log.Info("БД не настроена, история прогонов отключена")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := orchestrator.NewMetrics(reg)

	yt := youtube.NewClient(youtube.Config{
		APIKey:            cfg.YouTube.APIKey,
		APIBase:           cfg.YouTube.APIBase,
		SiteURL:           cfg.YouTube.SiteURL,
		RequestsPerSecond: cfg.YouTube.RequestsPerSecond,
	}, log.Logger)
	rdb := cache.Connect(ctx, cfg.Redis.URL, log.Logger)
	if rdb != nil {
		defer rdb.Close()
	}
	directory := cache.NewCachedDirectory(yt, rdb, cfg.Redis.CacheTTL, log.Logger)

	var commenter llm.Commenter
	if cfg.LLM.APIKey != "" {
		llmClient := llm.NewClient(llm.Config{
			APIKey:            cfg.LLM.APIKey,
			BaseURL:           cfg.LLM.BaseURL,
			Model:             cfg.LLM.Model,
			RequestsPerMinute: cfg.LLM.RequestsPerMinute,
			TokensPerHour:     cfg.LLM.TokensPerHour,
		}, llmLog)
		commenter = llm.NewBreakingCommenter(llmClient, cfg.LLM.MaxFailures, cfg.LLM.ResetTimeout)
	} else {
		log.Warn("LLM_API_KEY не задан, комментарии отключены")
	}

	br := browser.New(browser.Config{
		Engine:          cfg.Browser.Engine,
		Headless:        cfg.Browser.Headless,
		UserDataDir:     cfg.Browser.UserDataDir,
		BrowsersPath:    cfg.Browser.BrowsersPath,
		Display:         cfg.Browser.Display,
		NavigateTimeout: cfg.Browser.NavigateTimeout,
	}, log.Logger)
	if err := br.Launch(ctx); err != nil {
		log.Fatal("Ошибка запуска браузера", zap.Error(err))
	}
	defer br.Close()

	b := bus.New(log.Logger)

	// Агенты вкладок
	videoAgent := agent.NewVideoAgent(agent.Config{SkipComment: commenter == nil}, commenter, log.Logger)
	scanner := discovery.NewScanner(discovery.Config{LoadTimeout: cfg.Automation.DiscoveryTimeout}, log.Logger)
	host := agent.NewHost(b, br.Lifecycle(), agent.BrowserPages(br), videoAgent, scanner, log.Logger)
	go host.Run(ctx)

	// Фоновый контекст
	orch := orchestrator.New(orchestrator.Config{
		SiteURL:         cfg.YouTube.SiteURL,
		DiscoverySource: cfg.Automation.DiscoverySource,
		DefaultCount:    cfg.Automation.DefaultCount,
		SearchLimit:     cfg.YouTube.SearchLimit,
		PingInterval:    cfg.Automation.PingInterval,
		PingTimeout:     cfg.Automation.PingTimeout,
		ReadyTimeout:    cfg.Automation.ReadyTimeout,
		TaskTimeout:     cfg.Automation.TaskTimeout,
		CloseDelay:      cfg.Automation.CloseDelay,
	}, orchestrator.Deps{
		Tabs:      br,
		Readiness: readiness.New(br.Lifecycle(), b, log.Logger),
		Bus:       b,
		Directory: directory,
		Recorder:  recorder,
		Metrics:   metrics,
		Log:       log.Logger,
	})
	unregister := orch.Register(ctx, b)
	defer unregister()

	switch cfg.App.Mode {
	case config.ModeServer:
		srv := server.New(cfg.App, log.Logger, b, httpRuns, reg)
		if err := srv.Run(ctx); err != nil {
			log.Error("Ошибка сервера", zap.Error(err))
		}
	default:
		console := cli.New(b, runStore, br, log, cli.Config{
			SearchLimit:  cfg.YouTube.SearchLimit,
			DefaultCount: cfg.Automation.DefaultCount,
		})
		console.Run(ctx)
	}

	// Текущий прогон останавливается на границе задачи
	orch.Stop()
	stop()
	orch.Wait()
}
