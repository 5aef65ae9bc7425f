package browser_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefrontE2E/internal/browser"
	"storefrontE2E/internal/browser/browsertest"
)

var (
	badge = browser.CSS(".shopping_cart_badge")
	rows  = browser.CSS(".btn_inventory")
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		badge, predicate, want int
	}{
		{0, 0, 0},
		{0, 2, 2},
		{1, 1, 1},
		{2, 0, 2},
		{3, 1, 3},
		// Ненулевой бейдж главнее строк, даже если строк больше.
		{1, 3, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, browser.Reconcile(tt.badge, tt.predicate), "badge=%d predicate=%d", tt.badge, tt.predicate)
	}
}

func buttons(texts ...string) []*browsertest.Node {
	nodes := make([]*browsertest.Node, len(texts))
	for i, text := range texts {
		nodes[i] = &browsertest.Node{Text: text}
	}
	return nodes
}

func newReconciler(doc *browsertest.Document) *browser.CountReconciler {
	return browser.NewCountReconciler(doc, badge, rows, "Remove")
}

func TestAuthoritativeCartCount(t *testing.T) {
	tests := []struct {
		name  string
		badge *browsertest.Node
		rows  []*browsertest.Node
		want  browser.CartCount
	}{
		{
			name: "badge missing, rows toggled",
			rows: buttons("Remove", "Add to cart", "Remove"),
			want: browser.CartCount{Predicate: 2, Authoritative: 2},
		},
		{
			name:  "badge agrees",
			badge: &browsertest.Node{Text: "1"},
			rows:  buttons("Remove", "Add to cart"),
			want:  browser.CartCount{Badge: 1, BadgePresent: true, Predicate: 1, Authoritative: 1},
		},
		{
			name:  "badge ahead of rows",
			badge: &browsertest.Node{Text: "3"},
			rows:  buttons("Remove"),
			want:  browser.CartCount{Badge: 3, BadgePresent: true, Predicate: 1, Authoritative: 3},
		},
		{
			name:  "unparsable badge",
			badge: &browsertest.Node{Text: "…"},
			rows:  buttons("Remove"),
			want:  browser.CartCount{BadgePresent: true, Predicate: 1, Authoritative: 1},
		},
		{
			name: "empty cart",
			rows: buttons("Add to cart", "Add to cart"),
			want: browser.CartCount{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := browsertest.NewDocument()
			if tt.badge != nil {
				doc.Set(badge, tt.badge)
			}
			doc.Set(rows, tt.rows...)

			got, err := newReconciler(doc).AuthoritativeCartCount(context.Background())

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthoritativeCartCount_SkipsStaleRows(t *testing.T) {
	doc := browsertest.NewDocument()
	nodes := buttons("Remove", "Remove", "Add to cart")
	nodes[0].StaleReads = 1
	doc.Set(rows, nodes...)

	got, err := newReconciler(doc).AuthoritativeCartCount(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, got.Predicate)
	assert.Equal(t, 1, got.Authoritative)
}

func TestAuthoritativeCartCount_StaleBadgeIsReread(t *testing.T) {
	doc := browsertest.NewDocument()
	doc.Set(badge, &browsertest.Node{Text: "2", StaleReads: 1})
	doc.Set(rows, buttons("Remove", "Remove")...)

	got, err := newReconciler(doc).AuthoritativeCartCount(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, got.Badge)
	assert.Equal(t, 2, doc.Calls("resolve"))
}

func TestAuthoritativeCartCount_RowError(t *testing.T) {
	boom := errors.New("session lost")
	doc := browsertest.NewDocument()
	nodes := buttons("Remove")
	nodes[0].ReadErr = boom
	doc.Set(rows, nodes...)

	_, err := newReconciler(doc).AuthoritativeCartCount(context.Background())

	assert.ErrorIs(t, err, boom)
}

func TestAuthoritativeCartCount_HiddenBadgeOnStorefront(t *testing.T) {
	ctx := context.Background()
	shop := browsertest.NewStorefront("https://shop.test")
	shop.Quirks.HideBadge = true
	login(t, shop)

	exec := newExecutor(shop.Document)
	for _, i := range []int{0, 2} {
		_, err := exec.PerformIdempotentToggle(ctx, browsertest.SelItemButton.Nth(i), browsertest.RemoveText)
		require.NoError(t, err)
	}

	rec := browser.NewCountReconciler(shop, browsertest.SelCartBadge, browsertest.SelItemButton, browsertest.RemoveText)
	got, err := rec.AuthoritativeCartCount(ctx)

	require.NoError(t, err)
	assert.False(t, got.BadgePresent)
	assert.Equal(t, 2, got.Authoritative)
}

func TestSessionHandlesAreReleased(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		run  func(doc *browsertest.Document) error
	}{
		{"toggle", func(doc *browsertest.Document) error {
			_, err := newExecutor(doc).PerformIdempotentToggle(ctx, button, "Remove")
			return err
		}},
		{"already in state", func(doc *browsertest.Document) error {
			_, err := newExecutor(doc).PerformIdempotentToggle(ctx, button, "Add to cart")
			return err
		}},
		{"exhausted", func(doc *browsertest.Document) error {
			doc.Node(button).Fail = map[browser.Strategy]error{
				browser.StrategyNative:   browser.ErrNotInteractable,
				browser.StrategyScripted: browser.ErrScriptRejected,
				browser.StrategyPointer:  browser.ErrGeometryUnavailable,
			}
			_, err := newExecutor(doc).PerformIdempotentToggle(ctx, button, "Remove")
			assert.ErrorIs(t, err, browser.ErrAllStrategiesExhausted)
			return nil
		}},
		{"count", func(doc *browsertest.Document) error {
			doc.Set(badge, &browsertest.Node{Text: "1"})
			_, err := browser.NewCountReconciler(doc, badge, rows, "Remove").AuthoritativeCartCount(ctx)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := browsertest.NewDocument()
			doc.Set(button, toggle())

			require.NoError(t, tt.run(doc))
			assert.Equal(t, 0, doc.Outstanding())
		})
	}
}
