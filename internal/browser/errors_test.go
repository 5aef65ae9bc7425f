package browser_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"storefrontE2E/internal/browser"
)

func TestActionError_Is(t *testing.T) {
	cause := fmt.Errorf("native: %w", browser.ErrNotInteractable)
	err := fmt.Errorf("добавление товара: %w", &browser.ActionError{
		Kind:     browser.ErrAllStrategiesExhausted,
		Locator:  browser.CSS(".btn_inventory"),
		Attempts: 3,
		Err:      cause,
	})

	assert.ErrorIs(t, err, browser.ErrAllStrategiesExhausted)
	assert.ErrorIs(t, err, browser.ErrNotInteractable)
	assert.Contains(t, err.Error(), "попыток: 3")

	var ae *browser.ActionError
	assert.True(t, errors.As(err, &ae))
	assert.Equal(t, 3, ae.Attempts)
}

func TestKindOf(t *testing.T) {
	// Вид действия важнее видов отдельных попыток внутри.
	exhausted := &browser.ActionError{
		Kind: browser.ErrAllStrategiesExhausted,
		Err:  errors.Join(browser.ErrElementNotFound, browser.ErrNotInteractable),
	}
	assert.Equal(t, browser.ErrAllStrategiesExhausted, browser.KindOf(exhausted))
	assert.Equal(t, "all_strategies_exhausted", browser.KindName(exhausted))

	assert.Equal(t, browser.ErrStaleReference, browser.KindOf(fmt.Errorf("x: %w", browser.ErrStaleReference)))
	assert.Equal(t, "stale_reference", browser.KindName(fmt.Errorf("x: %w", browser.ErrStaleReference)))

	assert.Nil(t, browser.KindOf(errors.New("boom")))
	assert.Equal(t, "error", browser.KindName(errors.New("boom")))
	assert.Equal(t, "", browser.KindName(nil))
	assert.Equal(t, "timeout", browser.KindName(fmt.Errorf("клик: %w", context.DeadlineExceeded)))
	assert.Equal(t, "canceled", browser.KindName(fmt.Errorf("клик: %w", context.Canceled)))
}
