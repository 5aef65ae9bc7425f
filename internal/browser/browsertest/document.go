// Package browsertest - сессия браузера в памяти для тестов ядра, страниц и сценариев.
package browsertest

import (
	"context"
	"fmt"
	"sync"

	"storefrontE2E/internal/browser"
)

// Node - узел поддельного документа. Поля меняются только до запуска
// или из хуков документа.
type Node struct {
	Text  string
	Attrs map[string]string
	Value string
	// Hidden: узел невидим; нативный клик и клик мышью по нему не проходят.
	Hidden bool

	// Script - очередь значений, которые ReadText отдаст раньше Text.
	Script []string
	// StaleReads - сколько ближайших чтений закончатся ErrStaleReference.
	StaleReads int
	// ReadErr возвращается любым чтением, если задан.
	ReadErr error
	// Fail подменяет результат конкретной стратегии клика.
	Fail map[browser.Strategy]error
	// OnClick вызывается под блокировкой документа после успешного клика.
	OnClick func(n *Node)

	detached bool
}

type handle struct {
	key   browser.Locator
	index int
	node  *Node
	gen   int

	released bool
}

// Document реализует browser.Browser. Любой успешный клик или замена набора
// узлов увеличивает поколение документа, и все выданные ранее ссылки устаревают.
type Document struct {
	mu     sync.Mutex
	nodes  map[browser.Locator][]*Node
	gen    int
	calls  map[string]int
	issued int
	freed  int
	url    string
	title  string
	closed bool

	// DocumentClick вызывается без блокировки после успешного клика.
	DocumentClick func(loc browser.Locator, s browser.Strategy)
	// DocumentNavigate вызывается без блокировки после Navigate.
	DocumentNavigate func(url string)
}

var _ browser.Browser = (*Document)(nil)

func NewDocument() *Document {
	return &Document{
		nodes: make(map[browser.Locator][]*Node),
		calls: make(map[string]int),
		title: "Swag Labs",
	}
}

// key приводит локатор к каноничному CSS, чтобы ByID("x") и CSS("#x") совпадали.
func key(loc browser.Locator) browser.Locator {
	if q, ok := loc.CSSQuery(); ok {
		return browser.CSS(q)
	}
	return browser.XPath(loc.Selector)
}

// Set заменяет все узлы набора. Старые узлы отсоединяются.
func (d *Document) Set(loc browser.Locator, nodes ...*Node) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.setLocked(loc, nodes)
}

func (d *Document) setLocked(loc browser.Locator, nodes []*Node) {
	k := key(loc)
	for _, n := range d.nodes[k] {
		n.detached = true
	}
	if len(nodes) == 0 {
		delete(d.nodes, k)
	} else {
		d.nodes[k] = nodes
	}
	d.gen++
}

// Remove убирает набор узлов из документа.
func (d *Document) Remove(loc browser.Locator) { d.Set(loc) }

// Reset очищает документ целиком.
func (d *Document) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, nodes := range d.nodes {
		for _, n := range nodes {
			n.detached = true
		}
	}
	d.nodes = make(map[browser.Locator][]*Node)
	d.gen++
}

// Node возвращает i-й узел набора или nil.
func (d *Document) Node(loc browser.Locator) *Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	nodes := d.nodes[key(loc)]
	if loc.Index >= len(nodes) {
		return nil
	}
	return nodes[loc.Index]
}

// Calls - число вызовов операции: resolve, resolve_all, read_text, read_attribute,
// interactable, native, scripted, pointer, navigate, fill.
func (d *Document) Calls(op string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[op]
}

// Clicks - суммарное число попыток клика всеми стратегиями.
func (d *Document) Clicks() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls["native"] + d.calls["scripted"] + d.calls["pointer"]
}

func (d *Document) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *Document) SetURL(url string) {
	d.mu.Lock()
	d.url = url
	d.mu.Unlock()
}

func (d *Document) Resolve(ctx context.Context, loc browser.Locator) (browser.NodeHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls["resolve"]++

	k := key(loc)
	nodes := d.nodes[k]
	if loc.Index >= len(nodes) {
		return nil, fmt.Errorf("%s: %w", loc, browser.ErrElementNotFound)
	}
	d.issued++
	return &handle{key: k, index: loc.Index, node: nodes[loc.Index], gen: d.gen}, nil
}

func (d *Document) ResolveAll(ctx context.Context, loc browser.Locator) ([]browser.NodeHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls["resolve_all"]++

	k := key(loc)
	out := make([]browser.NodeHandle, 0, len(d.nodes[k]))
	for i, n := range d.nodes[k] {
		out = append(out, &handle{key: k, index: i, node: n, gen: d.gen})
	}
	d.issued += len(out)
	return out, nil
}

func (d *Document) Release(h browser.NodeHandle) {
	hh, ok := h.(*handle)
	if !ok || hh == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !hh.released {
		hh.released = true
		d.freed++
	}
}

// Outstanding - сколько выданных ссылок ещё не освобождено.
func (d *Document) Outstanding() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.issued - d.freed
}

// live проверяет ссылку; вызывается под блокировкой.
func (d *Document) live(h browser.NodeHandle) (*handle, error) {
	hh, ok := h.(*handle)
	if !ok || hh == nil {
		return nil, fmt.Errorf("чужой handle %T: %w", h, browser.ErrStaleReference)
	}
	if hh.released || hh.node.detached || hh.gen != d.gen {
		return nil, fmt.Errorf("%s[%d]: %w", hh.key, hh.index, browser.ErrStaleReference)
	}
	return hh, nil
}

// read - общая часть чтений: проверка ссылки и инъекции ошибок.
func (d *Document) read(ctx context.Context, op string, h browser.NodeHandle) (*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.calls[op]++

	hh, err := d.live(h)
	if err != nil {
		return nil, err
	}
	n := hh.node
	if n.StaleReads > 0 {
		n.StaleReads--
		return nil, fmt.Errorf("%s[%d]: %w", hh.key, hh.index, browser.ErrStaleReference)
	}
	if n.ReadErr != nil {
		return nil, n.ReadErr
	}
	return n, nil
}

func (d *Document) ReadText(ctx context.Context, h browser.NodeHandle) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, err := d.read(ctx, "read_text", h)
	if err != nil {
		return "", err
	}
	if len(n.Script) > 0 {
		text := n.Script[0]
		n.Script = n.Script[1:]
		return text, nil
	}
	return n.Text, nil
}

func (d *Document) ReadAttribute(ctx context.Context, h browser.NodeHandle, name string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, err := d.read(ctx, "read_attribute", h)
	if err != nil {
		return "", err
	}
	return n.Attrs[name], nil
}

func (d *Document) IsInteractable(ctx context.Context, h browser.NodeHandle) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, err := d.read(ctx, "interactable", h)
	if err != nil {
		return false, err
	}
	return !n.Hidden, nil
}

func (d *Document) DispatchNativeClick(ctx context.Context, h browser.NodeHandle) error {
	return d.click(ctx, h, browser.StrategyNative)
}

func (d *Document) DispatchScriptedClick(ctx context.Context, h browser.NodeHandle) error {
	return d.click(ctx, h, browser.StrategyScripted)
}

func (d *Document) DispatchPointerClick(ctx context.Context, h browser.NodeHandle) error {
	return d.click(ctx, h, browser.StrategyPointer)
}

func (d *Document) click(ctx context.Context, h browser.NodeHandle, s browser.Strategy) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	d.calls[s.String()]++
	hh, err := d.live(h)
	if err != nil {
		d.mu.Unlock()
		return err
	}
	n := hh.node
	if err := n.Fail[s]; err != nil {
		d.mu.Unlock()
		return err
	}
	// el.click() доходит и до скрытого узла, остальные стратегии нет.
	if n.Hidden && s != browser.StrategyScripted {
		d.mu.Unlock()
		if s == browser.StrategyNative {
			return fmt.Errorf("узел скрыт: %w", browser.ErrNotInteractable)
		}
		return fmt.Errorf("нулевой размер: %w", browser.ErrGeometryUnavailable)
	}

	if n.OnClick != nil {
		n.OnClick(n)
	}
	d.gen++
	hook := d.DocumentClick
	loc := hh.key.Nth(hh.index)
	d.mu.Unlock()

	if hook != nil {
		hook(loc, s)
	}
	return nil
}

func (d *Document) Launch(ctx context.Context) error { return ctx.Err() }

func (d *Document) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	d.calls["navigate"]++
	d.url = url
	hook := d.DocumentNavigate
	d.mu.Unlock()

	if hook != nil {
		hook(url)
	}
	return nil
}

func (d *Document) Fill(ctx context.Context, loc browser.Locator, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls["fill"]++

	nodes := d.nodes[key(loc)]
	if loc.Index >= len(nodes) {
		return fmt.Errorf("ввод в %s: %w", loc, browser.ErrElementNotFound)
	}
	nodes[loc.Index].Value = value
	return nil
}

func (d *Document) CurrentURL(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.url, ctx.Err()
}

func (d *Document) Title(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.title, ctx.Err()
}

func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}
