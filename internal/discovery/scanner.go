// Package discovery собирает ссылки на видео со страницы канала с
// бесконечной прокруткой.
package discovery

import (
	"context"
	"errors"
	"time"

	"ytAgent/internal/poll"

	"go.uber.org/zap"
)

const (
	DefaultItemSelector = "ytd-rich-item-renderer"
	DefaultLinkSelector = "a#video-title-link, a#thumbnail"
)

// ErrDiscoveryTimeout: за отведенное время новые элементы не появились.
// Наружу не выходит, Discover возвращает частичный результат.
var ErrDiscoveryTimeout = errors.New("discovery: listing stopped growing")

// ListingPage это страница со списком, подгружаемым при прокрутке.
type ListingPage interface {
	Count(ctx context.Context, selector string) (int, error)
	NthLink(ctx context.Context, itemSelector string, index int, linkSelector string) (string, bool, error)
	ScrollBy(ctx context.Context, x, y int) error
}

type Config struct {
	ItemSelector string
	LinkSelector string
	ScrollStep   int           // пикселей за один шаг прокрутки
	ScrollPause  time.Duration // пауза после каждого шага
	LoadTimeout  time.Duration // сколько ждать подгрузки новой порции
}

type Scanner struct {
	cfg Config
	log *zap.Logger
}

func NewScanner(cfg Config, log *zap.Logger) *Scanner {
	if cfg.ItemSelector == "" {
		cfg.ItemSelector = DefaultItemSelector
	}
	if cfg.LinkSelector == "" {
		cfg.LinkSelector = DefaultLinkSelector
	}
	if cfg.ScrollStep == 0 {
		cfg.ScrollStep = 800
	}
	if cfg.ScrollPause == 0 {
		cfg.ScrollPause = 500 * time.Millisecond
	}
	if cfg.LoadTimeout == 0 {
		cfg.LoadTimeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{cfg: cfg, log: log}
}

// Discover возвращает до n ссылок в порядке страницы. Если новые элементы
// перестали подгружаться, возвращается то, что успели собрать.
func (s *Scanner) Discover(ctx context.Context, page ListingPage, n int) ([]string, error) {
	links := make([]string, 0, n)
	seen := make(map[string]struct{}, n)
	cursor := 0
	batch := (n + 1) / 2

	for len(links) < n {
		rendered, err := page.Count(ctx, s.cfg.ItemSelector)
		if err != nil {
			return links, err
		}

		if cursor >= rendered {
			err := s.loadMore(ctx, page, rendered+batch)
			if errors.Is(err, ErrDiscoveryTimeout) {
				s.log.Info("Список перестал подгружаться, возвращаем частичный результат",
					zap.Int("collected", len(links)),
					zap.Int("requested", n),
				)
				break
			}
			if err != nil {
				return links, err
			}
			continue
		}

		link, ok, err := page.NthLink(ctx, s.cfg.ItemSelector, cursor, s.cfg.LinkSelector)
		if err != nil {
			return links, err
		}
		// элемент без ссылки пропускаем, иначе курсор застрянет
		cursor++
		if !ok {
			continue
		}
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}
		links = append(links, link)
	}

	s.log.Debug("Ссылки собраны", zap.Int("count", len(links)), zap.Int("scanned", cursor))
	return links, nil
}

// loadMore прокручивает страницу шагами с паузой после каждого, пока число
// элементов не достигнет target.
func (s *Scanner) loadMore(ctx context.Context, page ListingPage, target int) error {
	err := poll.Until(ctx, s.cfg.ScrollPause, s.cfg.LoadTimeout, func(ctx context.Context) (bool, error) {
		count, err := page.Count(ctx, s.cfg.ItemSelector)
		if err != nil {
			return false, err
		}
		if count >= target {
			return true, nil
		}
		return false, page.ScrollBy(ctx, 0, s.cfg.ScrollStep)
	})
	if errors.Is(err, poll.ErrTimeout) {
		return ErrDiscoveryTimeout
	}
	return err
}
