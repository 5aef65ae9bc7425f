package pages_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefrontE2E/internal/browser"
	"storefrontE2E/internal/browser/browsertest"
	"storefrontE2E/internal/pages"
)

const baseURL = "https://shop.test/"

func newSite(t *testing.T, quirks browsertest.Quirks) (*pages.Site, *browsertest.Storefront) {
	t.Helper()
	shop := browsertest.NewStorefront(baseURL)
	shop.Quirks = quirks
	exec := browser.NewActionExecutor(shop, browser.ExecutorConfig{
		ActionTimeout: 5 * time.Second,
		PollAttempts:  5,
		PollInterval:  time.Millisecond,
	})
	return pages.NewSite(shop, exec, pages.DefaultCatalog(), baseURL), shop
}

func loggedIn(t *testing.T, quirks browsertest.Quirks) (*pages.Site, *browsertest.Storefront) {
	t.Helper()
	ctx := context.Background()
	site, shop := newSite(t, quirks)
	login := site.Login()
	require.NoError(t, login.Open(ctx))
	_, err := login.Login(ctx, browsertest.StandardUser, browsertest.Password)
	require.NoError(t, err)
	return site, shop
}

func TestLoginPage_Success(t *testing.T) {
	ctx := context.Background()
	site, _ := newSite(t, browsertest.Quirks{})
	login := site.Login()

	require.NoError(t, login.Open(ctx))
	shown, err := login.IsDisplayed(ctx)
	require.NoError(t, err)
	assert.True(t, shown)

	for _, check := range []func(context.Context) (bool, error){login.IsUsernameFieldDisplayed, login.IsPasswordFieldDisplayed} {
		ok, err := check(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	title, err := login.Title(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Swag Labs", title)

	out, err := login.Login(ctx, browsertest.StandardUser, browsertest.Password)
	require.NoError(t, err)
	assert.Equal(t, browser.StrategyNative, out.StrategyUsed)

	inv := site.Inventory()
	ok, err := inv.IsLoggedIn(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := inv.ItemCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	u, err := inv.CurrentURL(ctx)
	require.NoError(t, err)
	assert.Equal(t, baseURL+"inventory.html", u)
}

func TestLoginPage_Errors(t *testing.T) {
	tests := []struct {
		name, user, pass, want string
	}{
		{"locked out", browsertest.LockedUser, browsertest.Password, "locked out"},
		{"wrong password", browsertest.StandardUser, "nope", "do not match"},
		{"empty username", "", browsertest.Password, "Username is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			site, shop := newSite(t, browsertest.Quirks{})
			login := site.Login()
			require.NoError(t, login.Open(ctx))

			_, err := login.Login(ctx, tt.user, tt.pass)
			require.NoError(t, err)

			shown, err := login.IsErrorDisplayed(ctx)
			require.NoError(t, err)
			assert.True(t, shown)

			msg, err := login.ErrorMessage(ctx)
			require.NoError(t, err)
			assert.Contains(t, msg, tt.want)
			assert.Equal(t, "login", shop.Page())
		})
	}
}

func TestInventoryPage_AddItems(t *testing.T) {
	ctx := context.Background()
	site, shop := loggedIn(t, browsertest.Quirks{})
	inv := site.Inventory()

	_, err := inv.AddItemToCart(ctx, 0)
	require.NoError(t, err)
	_, err = inv.AddItemToCart(ctx, 1)
	require.NoError(t, err)

	cc, err := inv.WaitCartCount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, browser.CartCount{Badge: 2, BadgePresent: true, Predicate: 2, Authoritative: 2}, cc)

	// Повторное добавление не кликает.
	clicks := shop.Clicks()
	out, err := inv.AddItemToCart(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, browser.StrategyNone, out.StrategyUsed)
	assert.Equal(t, clicks, shop.Clicks())
	assert.Equal(t, 2, shop.InCart())

	_, err = inv.RemoveItemFromCart(ctx, 1)
	require.NoError(t, err)
	cc, err = inv.WaitCartCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, cc.Authoritative)
}

func TestInventoryPage_HiddenBadge(t *testing.T) {
	ctx := context.Background()
	site, _ := loggedIn(t, browsertest.Quirks{HideBadge: true, BlockNative: true})
	inv := site.Inventory()

	out, err := inv.AddItemToCart(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, browser.StrategyScripted, out.StrategyUsed)

	cc, err := inv.WaitCartCount(ctx, 1)
	require.NoError(t, err)
	assert.False(t, cc.BadgePresent)
	assert.Equal(t, 1, cc.Authoritative)
}

func TestInventoryPage_WaitCartCountTimeout(t *testing.T) {
	ctx := context.Background()
	site, _ := loggedIn(t, browsertest.Quirks{})

	cc, err := site.Inventory().WaitCartCount(ctx, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, browser.ErrConvergenceTimeout)
	assert.Equal(t, 0, cc.Authoritative)
}

func TestInventoryPage_ItemDetails(t *testing.T) {
	ctx := context.Background()
	site, _ := loggedIn(t, browsertest.Quirks{})
	inv := site.Inventory()

	name, err := inv.ItemName(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "Sauce Labs Backpack", name)

	price, err := inv.ItemPrice(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "$9.99", price)

	name, err = inv.ItemName(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, name)

	title, err := inv.PageTitle(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Products", title)
}

func TestInventoryPage_OpenCart(t *testing.T) {
	ctx := context.Background()
	site, _ := loggedIn(t, browsertest.Quirks{})
	inv := site.Inventory()

	_, err := inv.AddItemToCart(ctx, 2)
	require.NoError(t, err)
	_, err = inv.OpenCart(ctx)
	require.NoError(t, err)

	onCart, err := inv.OnCartPage(ctx)
	require.NoError(t, err)
	assert.True(t, onCart)

	n, err := site.Cart().ItemCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestInventoryPage_Logout(t *testing.T) {
	ctx := context.Background()
	site, shop := loggedIn(t, browsertest.Quirks{})

	_, err := site.Inventory().Logout(ctx)
	require.NoError(t, err)
	assert.Equal(t, "login", shop.Page())

	shown, err := site.Login().IsDisplayed(ctx)
	require.NoError(t, err)
	assert.True(t, shown)
}

func TestInventoryPage_LogoutFallsBackToNavigation(t *testing.T) {
	ctx := context.Background()
	site, shop := loggedIn(t, browsertest.Quirks{})
	// Меню пропало из разметки.
	shop.Remove(browsertest.SelMenu)

	out, err := site.Inventory().Logout(ctx)
	require.NoError(t, err)
	assert.Equal(t, browser.StrategyNone, out.StrategyUsed)
	assert.Equal(t, "login", shop.Page())
}

func TestLoadCatalog_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locators.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
inventory:
  logout: {kind: xpath, selector: "//a[text()='Logout']"}
texts:
  remove: Убрать
`), 0o600))

	cat, err := pages.LoadCatalog(path)
	require.NoError(t, err)

	assert.Equal(t, browser.XPath("//a[text()='Logout']"), cat.Inventory.Logout)
	assert.Equal(t, "Убрать", cat.Texts.Remove)
	// Остальное из встроенного каталога.
	assert.Equal(t, browser.ByID("user-name"), cat.Login.Username)
	assert.Equal(t, "Add to cart", cat.Texts.Add)
}

func TestLoadCatalog_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locators.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
login:
  submit: {kind: link-text, selector: Login}
`), 0o600))

	_, err := pages.LoadCatalog(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login.submit")

	_, err = pages.LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
