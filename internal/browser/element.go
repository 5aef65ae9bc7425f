package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ElementRef привязан к одному узлу в один момент времени. После любого
// мутирующего действия ссылка считается устаревшей: чтения через неё
// не отправляются в сессию, вызывающий код обязан разрешить локатор заново.
type ElementRef struct {
	gw      SessionGateway
	locator Locator
	handle   NodeHandle
	stale    bool
	released bool
}

// Resolve разрешает локатор в одну ссылку или возвращает ErrElementNotFound.
func Resolve(ctx context.Context, gw SessionGateway, loc Locator) (*ElementRef, error) {
	h, err := gw.Resolve(ctx, loc)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, fmt.Errorf("%s: %w", loc, ErrElementNotFound)
	}
	return &ElementRef{gw: gw, locator: loc, handle: h}, nil
}

// ResolveAll возвращает ссылки на все совпавшие узлы в порядке документа.
func ResolveAll(ctx context.Context, gw SessionGateway, loc Locator) ([]*ElementRef, error) {
	handles, err := gw.ResolveAll(ctx, loc.Group())
	if err != nil {
		return nil, err
	}
	refs := make([]*ElementRef, 0, len(handles))
	for i, h := range handles {
		refs = append(refs, &ElementRef{gw: gw, locator: loc.Group().Nth(i), handle: h})
	}
	return refs, nil
}

func (r *ElementRef) Locator() Locator { return r.locator }

func (r *ElementRef) Stale() bool { return r.stale }

// Invalidate помечает ссылку устаревшей и освобождает узел в сессии.
func (r *ElementRef) Invalidate() {
	r.stale = true
	if !r.released {
		r.released = true
		r.gw.Release(r.handle)
	}
}

// ReleaseAll освобождает все ссылки, например после ResolveAll.
func ReleaseAll(refs []*ElementRef) {
	for _, r := range refs {
		r.Invalidate()
	}
}

// Text возвращает видимый текст узла без краевых пробелов.
func (r *ElementRef) Text(ctx context.Context) (string, error) {
	if r.stale {
		return "", fmt.Errorf("%s: %w", r.locator, ErrStaleReference)
	}
	text, err := r.gw.ReadText(ctx, r.handle)
	if err != nil {
		return "", r.observe(err)
	}
	return strings.TrimSpace(text), nil
}

func (r *ElementRef) Attribute(ctx context.Context, name string) (string, error) {
	if r.stale {
		return "", fmt.Errorf("%s: %w", r.locator, ErrStaleReference)
	}
	v, err := r.gw.ReadAttribute(ctx, r.handle, name)
	if err != nil {
		return "", r.observe(err)
	}
	return v, nil
}

// IsInteractable: видим, включён и не перекрыт.
func (r *ElementRef) IsInteractable(ctx context.Context) (bool, error) {
	if r.stale {
		return false, fmt.Errorf("%s: %w", r.locator, ErrStaleReference)
	}
	ok, err := r.gw.IsInteractable(ctx, r.handle)
	if err != nil {
		return false, r.observe(err)
	}
	return ok, nil
}

// observe запоминает, что сессия сама сообщила об устаревании узла.
func (r *ElementRef) observe(err error) error {
	if errors.Is(err, ErrStaleReference) {
		r.Invalidate()
	}
	return err
}
