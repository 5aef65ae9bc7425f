package browser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storefrontE2E/internal/browser"
)

func TestLocator_Queries(t *testing.T) {
	tests := []struct {
		name       string
		loc        browser.Locator
		css        string
		cssOK      bool
		playwright string
	}{
		{"css", browser.CSS(".title"), ".title", true, "css=.title"},
		{"id", browser.ByID("user-name"), "#user-name", true, "css=#user-name"},
		{"data-test", browser.DataTest("add-to-cart"), `[data-test="add-to-cart"]`, true, `css=[data-test="add-to-cart"]`},
		{"xpath", browser.XPath("//button[text()='Remove']"), "", false, "xpath=//button[text()='Remove']"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			css, ok := tt.loc.CSSQuery()
			assert.Equal(t, tt.css, css)
			assert.Equal(t, tt.cssOK, ok)
			assert.Equal(t, tt.playwright, tt.loc.PlaywrightQuery())
		})
	}
}

func TestLocator_NthAndGroup(t *testing.T) {
	loc := browser.CSS(".btn_inventory")

	third := loc.Nth(2)
	assert.Equal(t, 2, third.Index)
	assert.Equal(t, 0, loc.Index, "Nth не меняет исходный локатор")
	assert.Equal(t, loc, third.Group())
	assert.Equal(t, "css=.btn_inventory[2]", third.String())
	assert.Equal(t, "css=.btn_inventory", loc.String())
}

func TestLocator_Validate(t *testing.T) {
	assert.NoError(t, browser.CSS(".title").Validate())
	assert.NoError(t, browser.XPath("//div").Nth(3).Validate())

	assert.Error(t, browser.CSS("  ").Validate())
	assert.Error(t, browser.Locator{Kind: "link-text", Selector: "Logout"}.Validate())
	assert.Error(t, browser.CSS(".title").Nth(-1).Validate())
	assert.Error(t, browser.CSS("https://www.saucedemo.com/cart.html").Validate())
}
