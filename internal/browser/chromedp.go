package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// NewCDP создаёт сессию, управляемую напрямую по Chrome DevTools Protocol.
func NewCDP(cfg Config) *CDPBrowser {
	return &CDPBrowser{cfg: cfg.withDefaults()}
}

func (b *CDPBrowser) Launch(ctx context.Context) error {
	var (
		allocCtx    context.Context
		allocCancel context.CancelFunc
	)

	if b.cfg.RemoteURL != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(context.Background(), b.cfg.RemoteURL)
	} else {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", b.cfg.Headless),
			chromedp.NoSandbox,
			chromedp.DisableGPU,
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.WindowSize(1920, 1080),
		)
		if b.cfg.UserDataDir != "" {
			opts = append(opts, chromedp.UserDataDir(b.cfg.UserDataDir))
		}
		if b.cfg.Display != "" {
			opts = append(opts, chromedp.Env("DISPLAY="+b.cfg.Display))
		}
		allocCtx, allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	}

	tabCtx, cancel := chromedp.NewContext(allocCtx)

	// Первый Run поднимает браузер и вкладку; его контекст живёт столько же,
	// сколько сессия, поэтому таймаут запуска ждём через select.
	errChan := make(chan error, 1)
	go func() { errChan <- chromedp.Run(tabCtx) }()

	var err error
	select {
	case err = <-errChan:
	case <-ctx.Done():
		err = ctx.Err()
	case <-time.After(b.cfg.Timeout):
		err = fmt.Errorf("launch timeout after %v", b.cfg.Timeout)
	}
	if err != nil {
		cancel()
		allocCancel()
		return fmt.Errorf("запуск chrome: %w", err)
	}

	b.mu.Lock()
	b.ctx, b.cancel, b.allocCancel = tabCtx, cancel, allocCancel
	b.mu.Unlock()
	return nil
}

// run выполняет действия во вкладке с таймаутом вызова; отмена ctx вызывающего
// прерывает выполнение, не закрывая вкладку.
func (b *CDPBrowser) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	b.mu.RLock()
	tabCtx := b.ctx
	b.mu.RUnlock()
	if tabCtx == nil {
		return fmt.Errorf("браузер не запущен")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(tabCtx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (b *CDPBrowser) node(h NodeHandle) (*cdp.Node, error) {
	n, ok := h.(*cdp.Node)
	if !ok || n == nil {
		return nil, fmt.Errorf("чужой handle %T: %w", h, ErrStaleReference)
	}
	return n, nil
}

func cdpQuery(loc Locator) (string, chromedp.QueryOption) {
	if q, ok := loc.CSSQuery(); ok {
		return q, chromedp.ByQueryAll
	}
	return loc.Selector, chromedp.BySearch
}

func (b *CDPBrowser) Resolve(ctx context.Context, loc Locator) (NodeHandle, error) {
	nodes, err := b.queryAll(ctx, loc)
	if err != nil {
		return nil, err
	}
	if loc.Index >= len(nodes) {
		return nil, fmt.Errorf("%s: %w", loc, ErrElementNotFound)
	}
	return nodes[loc.Index], nil
}

func (b *CDPBrowser) ResolveAll(ctx context.Context, loc Locator) ([]NodeHandle, error) {
	nodes, err := b.queryAll(ctx, loc)
	if err != nil {
		return nil, err
	}
	out := make([]NodeHandle, len(nodes))
	for i, n := range nodes {
		out[i] = n
	}
	return out, nil
}

func (b *CDPBrowser) queryAll(ctx context.Context, loc Locator) ([]*cdp.Node, error) {
	var nodes []*cdp.Node
	sel, by := cdpQuery(loc)
	err := b.run(ctx, b.cfg.CallTimeout, chromedp.Nodes(sel, &nodes, by, chromedp.AtLeast(0)))
	if err != nil {
		return nil, fmt.Errorf("поиск %s: %w", loc, classifyCDPError(err, nil))
	}
	return nodes, nil
}

// Release ничего не делает: узел держится только как NodeID, а объект
// в runtime освобождается в callOn сразу после вызова.
func (b *CDPBrowser) Release(NodeHandle) {}

// callOn вызывает функцию JS с this = узел и возвращает значение результата.
func (b *CDPBrowser) callOn(ctx context.Context, n *cdp.Node, fn string, out any) error {
	return b.run(ctx, b.cfg.CallTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(n.NodeID).Do(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = runtime.ReleaseObject(obj.ObjectID).Do(ctx) }()

		res, exc, err := runtime.CallFunctionOn(fn).
			WithObjectID(obj.ObjectID).
			WithReturnByValue(true).
			Do(ctx)
		if err != nil {
			return err
		}
		if exc != nil {
			return fmt.Errorf("%w: %s", ErrScriptRejected, exc.Text)
		}
		if out == nil || res == nil || len(res.Value) == 0 {
			return nil
		}
		return json.Unmarshal(res.Value, out)
	}))
}

func (b *CDPBrowser) ReadText(ctx context.Context, h NodeHandle) (string, error) {
	n, err := b.node(h)
	if err != nil {
		return "", err
	}
	var text string
	if err := b.callOn(ctx, n, asFunction(`el => el.innerText`), &text); err != nil {
		return "", classifyCDPError(err, nil)
	}
	return text, nil
}

func (b *CDPBrowser) ReadAttribute(ctx context.Context, h NodeHandle, name string) (string, error) {
	n, err := b.node(h)
	if err != nil {
		return "", err
	}
	var v *string
	fn := asFunction(`el => el.getAttribute(` + strconv.Quote(name) + `)`)
	if err := b.callOn(ctx, n, fn, &v); err != nil {
		return "", classifyCDPError(err, nil)
	}
	if v == nil {
		return "", nil
	}
	return *v, nil
}

func (b *CDPBrowser) IsInteractable(ctx context.Context, h NodeHandle) (bool, error) {
	n, err := b.node(h)
	if err != nil {
		return false, err
	}
	var ok bool
	if err := b.callOn(ctx, n, asFunction(jsInteractable), &ok); err != nil {
		return false, classifyCDPError(err, nil)
	}
	return ok, nil
}

// DispatchNativeClick - клик мышью по узлу средствами chromedp после проверки,
// что узел не перекрыт и видим.
func (b *CDPBrowser) DispatchNativeClick(ctx context.Context, h NodeHandle) error {
	ok, err := b.IsInteractable(ctx, h)
	if err != nil {
		return classifyCDPError(err, ErrNotInteractable)
	}
	if !ok {
		return fmt.Errorf("узел перекрыт или невидим: %w", ErrNotInteractable)
	}

	n, _ := b.node(h)
	err = b.run(ctx, b.cfg.CallTimeout, chromedp.MouseClickNode(n))
	return classifyCDPError(err, ErrNotInteractable)
}

func (b *CDPBrowser) DispatchScriptedClick(ctx context.Context, h NodeHandle) error {
	n, err := b.node(h)
	if err != nil {
		return err
	}
	err = b.callOn(ctx, n, asFunction(jsClick), nil)
	return classifyCDPError(err, ErrScriptRejected)
}

// DispatchPointerClick: прокрутка, BoxModel, перемещение курсора в центр и клик.
func (b *CDPBrowser) DispatchPointerClick(ctx context.Context, h NodeHandle) error {
	n, err := b.node(h)
	if err != nil {
		return err
	}

	err = b.run(ctx, b.cfg.CallTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		_ = dom.ScrollIntoViewIfNeeded().WithNodeID(n.NodeID).Do(ctx)

		box, err := dom.GetBoxModel().WithNodeID(n.NodeID).Do(ctx)
		if err != nil {
			return err
		}
		x, y, ok := boxCenter(box)
		if !ok {
			return fmt.Errorf("нулевой размер элемента: %w", ErrGeometryUnavailable)
		}

		if err := input.DispatchMouseEvent(input.MouseMoved, x, y).Do(ctx); err != nil {
			return fmt.Errorf("перемещение курсора: %w", err)
		}
		return chromedp.MouseClickXY(x, y).Do(ctx)
	}))
	return classifyCDPError(err, nil)
}

// boxCenter - центр content-квада BoxModel: [x0,y0, x1,y1, x2,y2, x3,y3].
func boxCenter(box *dom.BoxModel) (float64, float64, bool) {
	if box == nil || len(box.Content) < 8 || box.Width <= 0 || box.Height <= 0 {
		return 0, 0, false
	}
	x := (box.Content[0] + box.Content[2] + box.Content[4] + box.Content[6]) / 4
	y := (box.Content[1] + box.Content[3] + box.Content[5] + box.Content[7]) / 4
	return x, y, true
}

func (b *CDPBrowser) Navigate(ctx context.Context, url string) error {
	if err := b.run(ctx, b.cfg.NavigateTimeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("навигация на %s: %w", url, err)
	}
	return nil
}

func (b *CDPBrowser) Fill(ctx context.Context, loc Locator, value string) error {
	h, err := b.Resolve(ctx, loc)
	if err != nil {
		return fmt.Errorf("ввод в %s: %w", loc, err)
	}
	n, _ := b.node(h)

	clear := asFunction(`el => { el.focus(); el.value = ''; el.dispatchEvent(new Event('input', {bubbles: true})); }`)
	if err := b.callOn(ctx, n, clear, nil); err != nil {
		return fmt.Errorf("очистка %s: %w", loc, classifyCDPError(err, nil))
	}
	err = b.run(ctx, b.cfg.CallTimeout, chromedp.SendKeys([]cdp.NodeID{n.NodeID}, value, chromedp.ByNodeID))
	if err != nil {
		return fmt.Errorf("ввод в %s: %w", loc, classifyCDPError(err, nil))
	}
	return nil
}

func (b *CDPBrowser) CurrentURL(ctx context.Context) (string, error) {
	var u string
	if err := b.run(ctx, b.cfg.CallTimeout, chromedp.Location(&u)); err != nil {
		return "", err
	}
	return u, nil
}

func (b *CDPBrowser) Title(ctx context.Context) (string, error) {
	var t string
	if err := b.run(ctx, b.cfg.CallTimeout, chromedp.Title(&t)); err != nil {
		return "", err
	}
	return t, nil
}

func (b *CDPBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancel != nil {
		b.cancel()
	}
	if b.allocCancel != nil {
		b.allocCancel()
	}
	b.ctx, b.cancel, b.allocCancel = nil, nil, nil
	return nil
}

// classifyCDPError: CDP сообщает об устаревших узлах текстом ошибки.
func classifyCDPError(err error, fallback error) error {
	if err == nil {
		return nil
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "no node with given id"),
		strings.Contains(msg, "could not find node with given id"),
		strings.Contains(msg, "does not belong to the document"),
		strings.Contains(msg, "cannot find context with specified id"),
		strings.Contains(msg, "node is detached"):
		return wrapKind(ErrStaleReference, err)
	case strings.Contains(msg, "could not compute box model"):
		return wrapKind(ErrGeometryUnavailable, err)
	}

	if fallback != nil {
		return wrapKind(fallback, err)
	}
	return err
}
