package scenario

import (
	"context"
	"strconv"
	"strings"

	"storefrontE2E/internal/browser"
)

// Step - одно предложение сценария и его реализация.
type Step struct {
	Text string
	Run  func(ctx context.Context, w *World) error
}

func step(text string, run func(ctx context.Context, w *World) error) Step {
	return Step{Text: text, Run: run}
}

// action - шаг, итог которого (стратегия, попытки) попадает в отчёт.
func action(text string, run func(ctx context.Context, w *World) (browser.ActionOutcome, error)) Step {
	return step(text, func(ctx context.Context, w *World) error {
		out, err := run(ctx, w)
		w.Record(out)
		return err
	})
}

var ordinals = []string{"first", "second", "third", "fourth", "fifth", "sixth"}

func ordinal(i int) string {
	if i >= 0 && i < len(ordinals) {
		return ordinals[i]
	}
	return "#" + strconv.Itoa(i+1)
}

// Вход.

func OnLoginPage() Step {
	return step("I am on the login page", func(ctx context.Context, w *World) error {
		if err := w.Login.Open(ctx); err != nil {
			return err
		}
		return expectTrue(w.Login.IsDisplayed(ctx))("страница входа не отображается")
	})
}

func EnterValidUsername() Step {
	return step("I enter valid username", func(ctx context.Context, w *World) error {
		return w.Login.EnterUsername(ctx, w.Creds.Username)
	})
}

func EnterValidPassword() Step {
	return step("I enter valid password", func(ctx context.Context, w *World) error {
		return w.Login.EnterPassword(ctx, w.Creds.Password)
	})
}

func EnterUsername(username string) Step {
	return step(`I enter username "`+username+`"`, func(ctx context.Context, w *World) error {
		return w.Login.EnterUsername(ctx, username)
	})
}

func EnterPassword(password string) Step {
	return step(`I enter password "`+password+`"`, func(ctx context.Context, w *World) error {
		return w.Login.EnterPassword(ctx, password)
	})
}

func ClickLogin() Step {
	return action("I click the login button", func(ctx context.Context, w *World) (browser.ActionOutcome, error) {
		return w.Login.Submit(ctx)
	})
}

func LoginWithValidCredentials() Step {
	return action("I login with valid credentials", func(ctx context.Context, w *World) (browser.ActionOutcome, error) {
		return w.Login.Login(ctx, w.Creds.Username, w.Creds.Password)
	})
}

func LoginWith(username, password string) Step {
	return action(`I login with username "`+username+`" and password "`+password+`"`, func(ctx context.Context, w *World) (browser.ActionOutcome, error) {
		return w.Login.Login(ctx, username, password)
	})
}

func ShouldBeLoggedIn() Step {
	return step("I should be logged in successfully", func(ctx context.Context, w *World) error {
		return expectTrue(w.Inventory.IsLoggedIn(ctx))("пользователь не вошёл")
	})
}

func ShouldSeeInventoryPage() Step {
	return step("I should see the inventory page", func(ctx context.Context, w *World) error {
		return expectTrue(w.Inventory.IsDisplayed(ctx))("каталог не отображается")
	})
}

func CartLinkDisplayed() Step {
	return step("the shopping cart should be displayed", func(ctx context.Context, w *World) error {
		return expectTrue(w.Inventory.IsCartLinkDisplayed(ctx))("ссылка на корзину не отображается")
	})
}

func MenuButtonDisplayed() Step {
	return step("the menu button should be displayed", func(ctx context.Context, w *World) error {
		return expectTrue(w.Inventory.IsMenuButtonDisplayed(ctx))("кнопка меню не отображается")
	})
}

func ShouldSeeError() Step {
	return step("I should see an error message", func(ctx context.Context, w *World) error {
		return expectTrue(w.Login.IsErrorDisplayed(ctx))("сообщение об ошибке не отображается")
	})
}

func ErrorShouldContain(want string) Step {
	return step(`the error message should contain "`+want+`"`, func(ctx context.Context, w *World) error {
		msg, err := w.Login.ErrorMessage(ctx)
		if err != nil {
			return err
		}
		if !strings.Contains(msg, want) {
			return assertf("сообщение %q не содержит %q", msg, want)
		}
		return nil
	})
}

func ShouldRemainOnLoginPage() Step {
	return step("I should remain on the login page", func(ctx context.Context, w *World) error {
		return expectTrue(w.Login.IsDisplayed(ctx))("ушли со страницы входа")
	})
}

func ShouldSeeItems(n int) Step {
	return step("I should see "+strconv.Itoa(n)+" inventory items", func(ctx context.Context, w *World) error {
		got, err := w.Inventory.ItemCount(ctx)
		if err != nil {
			return err
		}
		if got != n {
			return assertf("товаров %d, ожидали %d", got, n)
		}
		return nil
	})
}

func PageTitleShouldBe(want string) Step {
	return step(`the page title should be "`+want+`"`, func(ctx context.Context, w *World) error {
		got, err := w.Login.Title(ctx)
		if err != nil {
			return err
		}
		if got != want {
			return assertf("заголовок %q, ожидали %q", got, want)
		}
		return nil
	})
}

func UsernameFieldDisplayed() Step {
	return step("the username field should be displayed", func(ctx context.Context, w *World) error {
		return expectTrue(w.Login.IsUsernameFieldDisplayed(ctx))("поле логина не отображается")
	})
}

func PasswordFieldDisplayed() Step {
	return step("the password field should be displayed", func(ctx context.Context, w *World) error {
		return expectTrue(w.Login.IsPasswordFieldDisplayed(ctx))("поле пароля не отображается")
	})
}

// Каталог и корзина.

func AddItem(i int) Step {
	return action("I add the "+ordinal(i)+" item to cart", func(ctx context.Context, w *World) (browser.ActionOutcome, error) {
		return w.Inventory.AddItemToCart(ctx, i)
	})
}

func RemoveItem(i int) Step {
	return action("I remove the "+ordinal(i)+" item from cart", func(ctx context.Context, w *World) (browser.ActionOutcome, error) {
		return w.Inventory.RemoveItemFromCart(ctx, i)
	})
}

func CartShouldShow(n int) Step {
	noun := "items"
	if n == 1 {
		noun = "item"
	}
	return step("the cart should show "+strconv.Itoa(n)+" "+noun, func(ctx context.Context, w *World) error {
		_, err := w.Inventory.WaitCartCount(ctx, n)
		return err
	})
}

func ClickCart() Step {
	return action("I click on the shopping cart", func(ctx context.Context, w *World) (browser.ActionOutcome, error) {
		return w.Inventory.OpenCart(ctx)
	})
}

func ShouldBeOnCartPage() Step {
	return step("I should be on the cart page", func(ctx context.Context, w *World) error {
		return expectTrue(w.Inventory.OnCartPage(ctx))("открыта не корзина")
	})
}

func CartPageShouldList(n int) Step {
	return step("the cart page should list "+strconv.Itoa(n)+" items", func(ctx context.Context, w *World) error {
		got, err := w.Cart.ItemCount(ctx)
		if err != nil {
			return err
		}
		if got != n {
			return assertf("в корзине %d строк, ожидали %d", got, n)
		}
		return nil
	})
}

func PageTitleShouldContain(want string) Step {
	return step(`the page title should contain "`+want+`"`, func(ctx context.Context, w *World) error {
		got, err := w.Inventory.PageTitle(ctx)
		if err != nil {
			return err
		}
		if !strings.Contains(got, want) {
			return assertf("заголовок %q не содержит %q", got, want)
		}
		return nil
	})
}

// Выход.

func Logout() Step {
	return action("I logout from the application", func(ctx context.Context, w *World) (browser.ActionOutcome, error) {
		return w.Inventory.Logout(ctx)
	})
}

func ShouldBeLoggedOut() Step {
	return step("I should be logged out successfully", func(ctx context.Context, w *World) error {
		return expectTrue(w.Login.IsDisplayed(ctx))("после выхода нет страницы входа")
	})
}

func ShouldBeOnLoginPage() Step {
	return step("I should be on the login page", func(ctx context.Context, w *World) error {
		return expectTrue(w.Login.IsDisplayed(ctx))("открыта не страница входа")
	})
}

// expectTrue превращает (bool, error) проверки в ошибку шага.
func expectTrue(ok bool, err error) func(msg string) error {
	return func(msg string) error {
		if err != nil {
			return err
		}
		if !ok {
			return assertf("%s", msg)
		}
		return nil
	}
}
