package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"ytAgent/internal/bus"
	"ytAgent/internal/cli/commands"
	"ytAgent/internal/cli/ui"
	"ytAgent/internal/logger"

	"github.com/chzyer/readline"
)

type Config struct {
	SearchLimit  int
	DefaultCount int
}

// CLI это поверхность управления: команды уходят в фоновый контекст через
// шину, уведомления о ходе прогона приходят на EndpointControl.
type CLI struct {
	bus               *bus.Bus
	log               *logger.Zap
	rl                *readline.Instance
	out               io.Writer
	channelHandler    *commands.ChannelHandler
	automationHandler *commands.AutomationHandler
	runsHandler       *commands.RunsHandler
	browserHandler    *commands.BrowserHandler
}

// New создает консоль. runs и tabs могут быть nil.
func New(b *bus.Bus, runs commands.RunStore, tabs commands.Tabs, log *logger.Zap, cfg Config) *CLI {
	cli := &CLI{
		bus: b,
		log: log,
		out: os.Stdout,
	}

	// Инициализация readline
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     ".yt-agent-history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		log.Warn("Не удалось инициализировать readline, будет использован fallback режим")
	} else {
		cli.rl = rl
		cli.out = rl.Stdout()
	}

	// Инициализация handlers
	sel := &commands.Selection{}
	cli.channelHandler = commands.NewChannelHandler(b, sel, cfg.SearchLimit, log.Logger, cli.out)
	cli.automationHandler = commands.NewAutomationHandler(b, sel, cfg.DefaultCount, log.Logger, cli.out)
	cli.runsHandler = commands.NewRunsHandler(runs, log.Logger, cli.out)
	cli.browserHandler = commands.NewBrowserHandler(tabs, cli.out)

	return cli
}

func (c *CLI) readLine() (string, error) {
	if c.rl != nil {
		return c.rl.Readline()
	}
	// Fallback для работы без readline
	reader := bufio.NewReader(os.Stdin)
	fmt.Print(ui.ColorCyan + "> " + ui.ColorReset)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *CLI) closeReadline() {
	if c.rl != nil {
		c.rl.Close()
	}
}

// listenProgress выводит уведомления оркестратора.
func (c *CLI) listenProgress(ctx context.Context) func() {
	return c.bus.Listen(ctx, bus.EndpointControl, func(_ context.Context, req bus.Request, _ bus.Responder) bus.Reply {
		if p, ok := req.(bus.Progress); ok {
			fmt.Fprintln(c.out, ui.FormatProgress(p))
			if c.rl != nil {
				c.rl.Refresh()
			}
		}
		return bus.Respond(bus.Response{})
	})
}

func (c *CLI) Run(ctx context.Context) {
	ui.PrintWelcome()
	defer c.closeReadline()

	unlisten := c.listenProgress(ctx)
	defer unlisten()

	for {
		// Проверка отмены контекста
		select {
		case <-ctx.Done():
			fmt.Println("\n" + ui.ColorCyan + ui.IconWave + " Получен сигнал завершения..." + ui.ColorReset)
			return
		default:
		}

		line, err := c.readLine()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return
			}
			continue
		} else if err == io.EOF {
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if !c.handleCommand(ctx, line) {
			return
		}
	}
}

// handleCommand выполняет команду. false означает выход.
func (c *CLI) handleCommand(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "exit":
		fmt.Println(ui.ColorCyan + ui.IconWave + " До свидания!" + ui.ColorReset)
		return false

	case "clear":
		ui.ClearScreen()

	case "search":
		c.channelHandler.Search(ctx, arg)

	case "select":
		c.channelHandler.Select(arg)

	case "start":
		c.automationHandler.Start(ctx, arg)

	case "stop":
		c.automationHandler.Stop(ctx)

	case "status":
		c.automationHandler.Status(ctx)

	case "videos":
		c.automationHandler.Videos(ctx, arg)

	case "runs":
		c.runsHandler.Handle(ctx, arg)

	case "open":
		c.browserHandler.Open(ctx, arg)

	default:
		ui.PrintHelp()
	}
	return true
}
