package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

// stopBinding имя функции, через которую кнопка на странице канала
// сообщает об остановке автоматизации.
const stopBinding = "ytAgentStop"

// Page выполняет действия со страницей одной вкладки. Все обращения к DOM
// идут через Evaluate, как это делал бы встроенный в страницу скрипт.
type Page struct {
	page playwright.Page
	log  *zap.Logger

	exposeOnce sync.Once
	exposeErr  error
	onStopMu   sync.Mutex
	onStop     func()
}

func newPage(page playwright.Page, log *zap.Logger) *Page {
	return &Page{page: page, log: log}
}

func (p *Page) URL() string {
	return p.page.URL()
}

func (p *Page) Title(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.page.Title()
}

func (p *Page) eval(ctx context.Context, expr string, arg any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.page.Evaluate(expr, arg)
}

// Count возвращает число элементов, подходящих под селектор.
func (p *Page) Count(ctx context.Context, selector string) (int, error) {
	v, err := p.eval(ctx, `(sel) => document.querySelectorAll(sel).length`, selector)
	if err != nil {
		return 0, fmt.Errorf("подсчет %s: %w", selector, err)
	}
	return asInt(v), nil
}

// NthLink возвращает абсолютный адрес ссылки linkSelector внутри index-го
// элемента itemSelector. ok == false, если ссылки нет.
func (p *Page) NthLink(ctx context.Context, itemSelector string, index int, linkSelector string) (string, bool, error) {
	v, err := p.eval(ctx, `(a) => {
		const item = document.querySelectorAll(a.item)[a.index];
		if (!item) return null;
		const link = item.querySelector(a.link);
		return link && link.href ? link.href : null;
	}`, map[string]any{"item": itemSelector, "index": index, "link": linkSelector})
	if err != nil {
		return "", false, fmt.Errorf("чтение ссылки %d: %w", index, err)
	}
	s, ok := v.(string)
	return s, ok && s != "", nil
}

// Text возвращает textContent первого элемента.
func (p *Page) Text(ctx context.Context, selector string) (string, bool, error) {
	v, err := p.eval(ctx, `(sel) => {
		const el = document.querySelector(sel);
		return el ? (el.textContent || "") : null;
	}`, selector)
	if err != nil {
		return "", false, err
	}
	s, ok := v.(string)
	return s, ok, nil
}

// Attribute возвращает значение атрибута первого элемента.
func (p *Page) Attribute(ctx context.Context, selector, name string) (string, bool, error) {
	v, err := p.eval(ctx, `(a) => {
		const el = document.querySelector(a.sel);
		if (!el) return null;
		return el.getAttribute(a.name);
	}`, map[string]any{"sel": selector, "name": name})
	if err != nil {
		return "", false, err
	}
	s, ok := v.(string)
	return s, ok, nil
}

// Exists сообщает, есть ли на странице элемент.
func (p *Page) Exists(ctx context.Context, selector string) (bool, error) {
	n, err := p.Count(ctx, selector)
	return n > 0, err
}

// Click кликает по первому элементу. found == false, если элемента нет.
func (p *Page) Click(ctx context.Context, selector string) (bool, error) {
	v, err := p.eval(ctx, `(sel) => {
		const el = document.querySelector(sel);
		if (!el) return false;
		el.click();
		return true;
	}`, selector)
	if err != nil {
		return false, fmt.Errorf("клик %s: %w", selector, err)
	}
	return asBool(v), nil
}

// ClickMatching кликает по первому элементу selector, у которого атрибут attr
// подходит под регулярное выражение pattern (без учета регистра).
func (p *Page) ClickMatching(ctx context.Context, selector, attr, pattern string) (bool, error) {
	v, err := p.eval(ctx, `(a) => {
		const re = new RegExp(a.pattern, "i");
		const el = Array.from(document.querySelectorAll(a.sel))
			.find((e) => re.test(e.getAttribute(a.attr) || ""));
		if (!el) return false;
		el.click();
		return true;
	}`, map[string]any{"sel": selector, "attr": attr, "pattern": pattern})
	if err != nil {
		return false, fmt.Errorf("клик %s[%s~%s]: %w", selector, attr, pattern, err)
	}
	return asBool(v), nil
}

// FillEditable записывает текст в contenteditable элемент и генерирует событие input.
func (p *Page) FillEditable(ctx context.Context, selector, text string) (bool, error) {
	v, err := p.eval(ctx, `(a) => {
		const el = document.querySelector(a.sel);
		if (!el) return false;
		el.innerText = a.text;
		el.dispatchEvent(new Event("input", { bubbles: true }));
		return true;
	}`, map[string]any{"sel": selector, "text": text})
	if err != nil {
		return false, fmt.Errorf("ввод текста в %s: %w", selector, err)
	}
	return asBool(v), nil
}

// InstallStopButton добавляет на страницу кнопку остановки. onClick
// вызывается при нажатии. Повторный вызов после перезагрузки страницы
// снова добавляет кнопку.
func (p *Page) InstallStopButton(ctx context.Context, label string, onClick func()) error {
	p.onStopMu.Lock()
	p.onStop = onClick
	p.onStopMu.Unlock()

	p.exposeOnce.Do(func() {
		p.exposeErr = p.page.ExposeFunction(stopBinding, func(args ...interface{}) interface{} {
			p.onStopMu.Lock()
			fn := p.onStop
			p.onStopMu.Unlock()
			if fn != nil {
				fn()
			}
			return true
		})
	})
	if p.exposeErr != nil {
		return fmt.Errorf("регистрация %s: %w", stopBinding, p.exposeErr)
	}

	_, err := p.eval(ctx, `(a) => {
		if (document.getElementById("yt-stop-automation-btn")) return;
		const btn = document.createElement("button");
		btn.id = "yt-stop-automation-btn";
		btn.textContent = a.label;
		Object.assign(btn.style, {
			position: "fixed", top: "56px", right: "28px", zIndex: "9999",
			padding: "12px 28px", borderRadius: "8px", border: "none",
			background: "#2563eb", color: "#fff", fontWeight: "bold", cursor: "pointer",
		});
		btn.addEventListener("click", async () => {
			await window[a.binding]();
			btn.textContent = "Stopped";
			btn.disabled = true;
			btn.style.background = "#888";
		});
		document.body.appendChild(btn);
	}`, map[string]any{"label": label, "binding": stopBinding})
	return err
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}
