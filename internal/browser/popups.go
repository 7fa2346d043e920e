package browser

import (
	"context"
	"fmt"
)

// PopupSelectors это кнопки, закрывающие диалоги YouTube: согласие на
// cookies, предложения Premium и входа в аккаунт.
var PopupSelectors = []string{
	"ytd-consent-bump-v2-lightbox button[aria-label*='Reject' i]",
	"ytd-consent-bump-v2-lightbox button[aria-label*='Отклонить' i]",
	"form[action*='consent.youtube.com'] button",
	"ytd-mealbar-promo-renderer #dismiss-button button",
	"tp-yt-paper-dialog #dismiss-button button",
	"yt-upsell-dialog-renderer #dismiss-button button",
	"[role='dialog'] button[aria-label='Close']",
	"[role='dialog'] button[aria-label='Закрыть']",
}

// DismissPopups кликает по видимым кнопкам закрытия диалогов и возвращает
// число закрытых.
func (p *Page) DismissPopups(ctx context.Context) (int, error) {
	v, err := p.eval(ctx, `(sels) => {
		let closed = 0;
		for (const sel of sels) {
			for (const el of document.querySelectorAll(sel)) {
				const r = el.getBoundingClientRect();
				if (r.width === 0 || r.height === 0) continue;
				el.click();
				closed++;
				break;
			}
		}
		return closed;
	}`, PopupSelectors)
	if err != nil {
		return 0, fmt.Errorf("закрытие диалогов: %w", err)
	}
	return asInt(v), nil
}
