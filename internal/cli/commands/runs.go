package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"ytAgent/internal/cli/ui"
	"ytAgent/internal/database"

	"go.uber.org/zap"
)

// RunStore это история прогонов.
type RunStore interface {
	ListRuns(ctx context.Context, limit, offset int) ([]database.Run, error)
	RunTasks(ctx context.Context, runID uint) ([]database.VideoTask, error)
}

// RunsHandler выводит историю прогонов
type RunsHandler struct {
	repo RunStore
	log  *zap.Logger
	out  io.Writer
}

func NewRunsHandler(repo RunStore, log *zap.Logger, out io.Writer) *RunsHandler {
	return &RunsHandler{repo: repo, log: log, out: stdout(out)}
}

// Handle выводит список прогонов или задачи одного прогона
func (h *RunsHandler) Handle(ctx context.Context, arg string) {
	if h.repo == nil {
		printErr(h.out, "История недоступна: БД не настроена", nil)
		return
	}
	arg = strings.TrimSpace(arg)
	if arg == "" {
		h.list(ctx)
		return
	}
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		printErr(h.out, "Неверный ID прогона", nil)
		return
	}
	h.show(ctx, uint(id))
}

func (h *RunsHandler) list(ctx context.Context) {
	runs, err := h.repo.ListRuns(ctx, 20, 0)
	if err != nil {
		h.log.Error("Ошибка чтения прогонов", zap.Error(err))
		printErr(h.out, "Ошибка чтения прогонов", nil)
		return
	}
	if len(runs) == 0 {
		fmt.Fprintln(h.out, ui.ColorGray+"Прогонов еще не было"+ui.ColorReset)
		return
	}

	fmt.Fprintln(h.out, "\n"+ui.ColorBold+ui.IconList+" Прогоны:"+ui.ColorReset)
	fmt.Fprintln(h.out)
	for _, r := range runs {
		icon, color, text := ui.FormatStatus(r.Status)
		fmt.Fprintf(h.out, "  "+ui.ColorBold+"#%d"+ui.ColorReset+" %s%s %s"+ui.ColorReset+" "+ui.ColorGray+"%s"+ui.ColorReset+"\n",
			r.ID, color, icon, text, r.CreatedAt.Format("2006-01-02 15:04"))
		fmt.Fprintf(h.out, "  "+ui.ColorGray+"└─"+ui.ColorReset+" %s, видео: %d/%d\n", r.ChannelTitle, r.Discovered, r.Requested)
	}
	fmt.Fprintln(h.out)
}

func (h *RunsHandler) show(ctx context.Context, id uint) {
	tasks, err := h.repo.RunTasks(ctx, id)
	if err != nil {
		h.log.Error("Ошибка чтения задач прогона", zap.Error(err))
		printErr(h.out, "Ошибка чтения задач прогона", nil)
		return
	}
	if len(tasks) == 0 {
		fmt.Fprintln(h.out, ui.ColorGray+"Задачи не найдены"+ui.ColorReset)
		return
	}

	fmt.Fprintf(h.out, "\n"+ui.ColorBold+"=== Прогон #%d ==="+ui.ColorReset+"\n", id)
	for _, t := range tasks {
		icon, color, _ := ui.FormatStatus(t.Outcome)
		d := time.Duration(t.DurationMs) * time.Millisecond
		fmt.Fprintf(h.out, "  %s%s"+ui.ColorReset+" "+ui.ColorGray+"[%d]"+ui.ColorReset+" %s "+ui.ColorGray+"%s"+ui.ColorReset+"\n",
			color, icon, t.Position, t.URL, d.Round(time.Second))
		if t.Error != "" {
			fmt.Fprintf(h.out, "    "+ui.ColorRed+"[ОШИБКА]"+ui.ColorReset+" %s\n", t.Error)
		}
	}
	fmt.Fprintln(h.out)
}
