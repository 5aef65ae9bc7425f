package browser

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// CartCount - оба сигнала и итоговое значение. Пересчитывается на каждый запрос.
type CartCount struct {
	Badge         int
	BadgePresent  bool
	Predicate     int
	Authoritative int
}

// Reconcile: нулевой бейдж уступает построчному счёту, в остальных случаях
// доверяем бейджу. Бейдж под нагрузкой отстаёт или не рисуется, строка - нет.
func Reconcile(badge, predicate int) int {
	if badge == 0 && predicate > 0 {
		return predicate
	}
	return badge
}

// CountReconciler сводит счётчик корзины и число переключенных строк.
type CountReconciler struct {
	gw          SessionGateway
	badge       Locator
	rows        Locator
	toggledText string
}

func NewCountReconciler(gw SessionGateway, badge, rows Locator, toggledText string) *CountReconciler {
	return &CountReconciler{
		gw:          gw,
		badge:       badge,
		rows:        rows,
		toggledText: toggledText,
	}
}

func (r *CountReconciler) AuthoritativeCartCount(ctx context.Context) (CartCount, error) {
	var cc CartCount

	badge, present, err := r.badgeSignal(ctx)
	if err != nil {
		return cc, err
	}
	cc.Badge, cc.BadgePresent = badge, present

	cc.Predicate, err = r.predicateSignal(ctx)
	if err != nil {
		return cc, err
	}

	cc.Authoritative = max(Reconcile(cc.Badge, cc.Predicate), 0)
	return cc, nil
}

// badgeSignal: отсутствие узла означает пустую корзину, а не «неизвестно».
func (r *CountReconciler) badgeSignal(ctx context.Context) (int, bool, error) {
	ref, err := Resolve(ctx, r.gw, r.badge)
	if errors.Is(err, ErrElementNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("бейдж корзины: %w", err)
	}

	text, err := ref.Text(ctx)
	ref.Invalidate()
	if errors.Is(err, ErrStaleReference) {
		// Бейдж перерисовался между разрешением и чтением, берём свежий.
		ref, err = Resolve(ctx, r.gw, r.badge)
		if errors.Is(err, ErrElementNotFound) {
			return 0, false, nil
		}
		if err == nil {
			text, err = ref.Text(ctx)
			ref.Invalidate()
		}
	}
	if errors.Is(err, ErrStaleReference) {
		return 0, true, nil
	}
	if err != nil {
		return 0, true, fmt.Errorf("бейдж корзины: %w", err)
	}

	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return 0, true, nil
	}
	return n, true, nil
}

// predicateSignal: устаревшая строка не несёт информации и пропускается.
func (r *CountReconciler) predicateSignal(ctx context.Context) (int, error) {
	rows, err := ResolveAll(ctx, r.gw, r.rows)
	if err != nil {
		return 0, fmt.Errorf("строки товаров: %w", err)
	}
	defer ReleaseAll(rows)

	count := 0
	for _, row := range rows {
		text, err := row.Text(ctx)
		if errors.Is(err, ErrStaleReference) || errors.Is(err, ErrElementNotFound) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("строка %s: %w", row.Locator(), err)
		}
		if text == r.toggledText {
			count++
		}
	}
	return count, nil
}
