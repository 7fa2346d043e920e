package browser

import (
	"context"
	"fmt"
)

// ScrollBy прокручивает окно на (x, y) пикселей без анимации.
// Паузы между шагами выдерживает вызывающий код.
func (p *Page) ScrollBy(ctx context.Context, x, y int) error {
	_, err := p.eval(ctx, `(coords) => {
		window.scrollBy({
			top: coords.y,
			left: coords.x,
			behavior: 'instant'
		});
	}`, map[string]int{"x": x, "y": y})

	if err != nil {
		return fmt.Errorf("ошибка прокрутки: %w", err)
	}
	return nil
}

// ScrollToBottom прокручивает страницу до конца.
func (p *Page) ScrollToBottom(ctx context.Context) error {
	_, err := p.eval(ctx, `() => {
		window.scrollTo({
			top: document.documentElement.scrollHeight,
			behavior: 'instant'
		});
	}`, nil)

	if err != nil {
		return fmt.Errorf("ошибка прокрутки вниз: %w", err)
	}
	return nil
}
