// Package agent исполняет задачу на странице видео: подписка, лайк и
// комментарий. Host подключает агентов к вкладкам по мере их загрузки.
package agent

import (
	"context"
	"time"
)

// VideoPage это действия со страницей видео, нужные агенту.
type VideoPage interface {
	Title(ctx context.Context) (string, error)
	Text(ctx context.Context, selector string) (string, bool, error)
	Attribute(ctx context.Context, selector, name string) (string, bool, error)
	Click(ctx context.Context, selector string) (bool, error)
	ClickMatching(ctx context.Context, selector, attr, pattern string) (bool, error)
	FillEditable(ctx context.Context, selector, text string) (bool, error)
	ScrollBy(ctx context.Context, x, y int) error
}

// popupDismisser умеет закрывать диалоги поверх страницы.
type popupDismisser interface {
	DismissPopups(ctx context.Context) (int, error)
}

// Selectors описывает элементы интерфейса страницы видео.
type Selectors struct {
	SubscribeButton string
	SubscribeLabel  string
	LikeButton      string
	CommentArea     string
	CommentInput    string
	CommentSubmit   string
}

// DefaultSelectors соответствуют текущей разметке YouTube.
var DefaultSelectors = Selectors{
	SubscribeButton: "ytd-subscribe-button-renderer button",
	SubscribeLabel:  "ytd-subscribe-button-renderer button span",
	LikeButton:      "button-view-model button",
	CommentArea:     "#placeholder-area",
	CommentInput:    "#contenteditable-root",
	CommentSubmit:   "yt-button-shape button",
}

// Config содержит паузы между действиями агента.
type Config struct {
	Selectors Selectors

	// SettleDelay ожидание после загрузки страницы,
	// ActionDelay пауза после подписки, лайка и отправки комментария.
	SettleDelay time.Duration
	ActionDelay time.Duration

	ScrollStep  int
	ScrollTimes int
	ScrollPause time.Duration

	// ComposerDelay пауза между шагами ввода комментария.
	ComposerDelay time.Duration
	TitleSuffix   string

	SkipSubscribe bool
	SkipLike      bool
	SkipComment   bool
}

func (c *Config) setDefaults() {
	if c.Selectors == (Selectors{}) {
		c.Selectors = DefaultSelectors
	}
	if c.SettleDelay == 0 {
		c.SettleDelay = 5 * time.Second
	}
	if c.ActionDelay == 0 {
		c.ActionDelay = 3 * time.Second
	}
	if c.ScrollStep == 0 {
		c.ScrollStep = 200
	}
	if c.ScrollTimes == 0 {
		c.ScrollTimes = 3
	}
	if c.ScrollPause == 0 {
		c.ScrollPause = 500 * time.Millisecond
	}
	if c.ComposerDelay == 0 {
		c.ComposerDelay = 500 * time.Millisecond
	}
	if c.TitleSuffix == "" {
		c.TitleSuffix = " - YouTube"
	}
}
