package agent

import (
	"context"
	"regexp"
	"strings"

	"ytAgent/internal/llm"

	"go.uber.org/zap"
)

var subscribedRe = regexp.MustCompile(`(?i)subscribed`)

// VideoAgent выполняет одну задачу на загруженной странице видео.
type VideoAgent struct {
	cfg       Config
	commenter llm.Commenter
	log       *zap.Logger
}

// NewVideoAgent создает агента. commenter может быть nil, тогда шаг
// комментария пропускается.
func NewVideoAgent(cfg Config, commenter llm.Commenter, log *zap.Logger) *VideoAgent {
	cfg.setDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	return &VideoAgent{cfg: cfg, commenter: commenter, log: log}
}

// Run выполняет шаги задачи по порядку. Ошибка комментария не возвращается,
// она только пишется в лог.
func (a *VideoAgent) Run(ctx context.Context, page VideoPage) error {
	if err := sleep(ctx, a.cfg.SettleDelay); err != nil {
		return stepError("settle", err)
	}

	if d, ok := page.(popupDismisser); ok {
		if n, err := d.DismissPopups(ctx); err != nil {
			a.log.Debug("Не удалось закрыть диалоги", zap.Error(err))
		} else if n > 0 {
			a.log.Info("Закрыты диалоги", zap.Int("count", n))
		}
	}

	if !a.cfg.SkipSubscribe {
		if err := a.subscribe(ctx, page); err != nil {
			return stepError("subscribe", err)
		}
	}

	if !a.cfg.SkipLike {
		if err := a.like(ctx, page); err != nil {
			return stepError("like", err)
		}
	}

	for i := 0; i < a.cfg.ScrollTimes; i++ {
		if err := page.ScrollBy(ctx, 0, a.cfg.ScrollStep); err != nil {
			return stepError("scroll", err)
		}
		if err := sleep(ctx, a.cfg.ScrollPause); err != nil {
			return stepError("scroll", err)
		}
	}

	if !a.cfg.SkipComment && a.commenter != nil {
		if err := a.comment(ctx, page); err != nil {
			if ctx.Err() != nil {
				return stepError("comment", ctx.Err())
			}
			a.log.Warn("Не удалось оставить комментарий", zap.Error(err))
		}
	}

	return nil
}

// subscribe кликает по кнопке подписки, если подпись еще не "Subscribed".
func (a *VideoAgent) subscribe(ctx context.Context, page VideoPage) error {
	label, ok, err := page.Text(ctx, a.cfg.Selectors.SubscribeLabel)
	if err != nil {
		return err
	}
	if !ok {
		a.log.Debug("Кнопка подписки не найдена")
		return nil
	}
	if subscribedRe.MatchString(label) {
		a.log.Debug("Уже подписаны", zap.String("label", strings.TrimSpace(label)))
		return nil
	}

	clicked, err := page.Click(ctx, a.cfg.Selectors.SubscribeButton)
	if err != nil || !clicked {
		return err
	}
	a.log.Info("Подписка оформлена")
	return sleep(ctx, a.cfg.ActionDelay)
}

// like ставит лайк, если кнопка еще не нажата.
func (a *VideoAgent) like(ctx context.Context, page VideoPage) error {
	pressed, _, err := page.Attribute(ctx, a.cfg.Selectors.LikeButton, "aria-pressed")
	if err != nil {
		return err
	}
	if pressed == "true" {
		a.log.Debug("Лайк уже стоит")
		return nil
	}

	clicked, err := page.Click(ctx, a.cfg.Selectors.LikeButton)
	if err != nil || !clicked {
		return err
	}
	a.log.Info("Лайк поставлен")
	return sleep(ctx, a.cfg.ActionDelay)
}

func (a *VideoAgent) comment(ctx context.Context, page VideoPage) error {
	title, err := page.Title(ctx)
	if err != nil {
		return err
	}
	title = strings.TrimSpace(strings.Replace(title, a.cfg.TitleSuffix, "", 1))

	text, err := a.commenter.GenerateComment(ctx, title)
	if err != nil {
		return err
	}
	if text == "" {
		a.log.Debug("Пустой комментарий, пропускаем", zap.String("title", title))
		return nil
	}

	if _, err := page.Click(ctx, a.cfg.Selectors.CommentArea); err != nil {
		return err
	}
	if err := sleep(ctx, a.cfg.ComposerDelay); err != nil {
		return err
	}

	filled, err := page.FillEditable(ctx, a.cfg.Selectors.CommentInput, text)
	if err != nil {
		return err
	}
	if !filled {
		a.log.Warn("Поле ввода комментария не найдено")
		return nil
	}
	if err := sleep(ctx, a.cfg.ComposerDelay); err != nil {
		return err
	}

	sent, err := page.ClickMatching(ctx, a.cfg.Selectors.CommentSubmit, "aria-label", "comment")
	if err != nil {
		return err
	}
	if !sent {
		a.log.Warn("Кнопка отправки комментария не найдена")
		return nil
	}
	a.log.Info("Комментарий отправлен", zap.String("title", title), zap.String("comment", text))
	return sleep(ctx, a.cfg.ActionDelay)
}
