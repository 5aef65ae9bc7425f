package scenario

import (
	"fmt"
	"slices"
	"strings"
)

type Scenario struct {
	Name  string
	Tags  []string
	Steps []Step
}

func (s Scenario) HasTag(tag string) bool {
	return slices.ContainsFunc(s.Tags, func(t string) bool { return strings.EqualFold(t, tag) })
}

// Builtin - регрессионный набор магазина.
func Builtin() []Scenario {
	return []Scenario{
		{
			Name: "Successful login with valid credentials",
			Tags: []string{"smoke", "login"},
			Steps: []Step{
				OnLoginPage(),
				EnterValidUsername(),
				EnterValidPassword(),
				ClickLogin(),
				ShouldBeLoggedIn(),
				CartLinkDisplayed(),
				ShouldSeeItems(6),
				PageTitleShouldContain("Products"),
			},
		},
		{
			Name: "Login page elements",
			Tags: []string{"login"},
			Steps: []Step{
				OnLoginPage(),
				PageTitleShouldBe("Swag Labs"),
				UsernameFieldDisplayed(),
				PasswordFieldDisplayed(),
			},
		},
		{
			Name: "Locked out user sees an error",
			Tags: []string{"login", "negative"},
			Steps: []Step{
				OnLoginPage(),
				LoginWith("locked_out_user", "secret_sauce"),
				ShouldSeeError(),
				ErrorShouldContain("locked out"),
				ShouldRemainOnLoginPage(),
			},
		},
		{
			Name: "Invalid password is rejected",
			Tags: []string{"login", "negative"},
			Steps: []Step{
				OnLoginPage(),
				EnterValidUsername(),
				EnterPassword("wrong_password"),
				ClickLogin(),
				ShouldSeeError(),
				ErrorShouldContain("do not match"),
				ShouldRemainOnLoginPage(),
			},
		},
		{
			Name: "Add one item to cart",
			Tags: []string{"smoke", "cart"},
			Steps: []Step{
				OnLoginPage(),
				LoginWithValidCredentials(),
				ShouldSeeInventoryPage(),
				AddItem(0),
				CartShouldShow(1),
			},
		},
		{
			Name: "Add two items to cart",
			Tags: []string{"cart"},
			Steps: []Step{
				OnLoginPage(),
				LoginWithValidCredentials(),
				AddItem(0),
				AddItem(1),
				CartShouldShow(2),
			},
		},
		{
			Name: "Adding the same item twice keeps one in cart",
			Tags: []string{"cart"},
			Steps: []Step{
				OnLoginPage(),
				LoginWithValidCredentials(),
				AddItem(0),
				AddItem(0),
				CartShouldShow(1),
			},
		},
		{
			Name: "Navigate to the shopping cart",
			Tags: []string{"cart"},
			Steps: []Step{
				OnLoginPage(),
				LoginWithValidCredentials(),
				AddItem(0),
				ClickCart(),
				ShouldBeOnCartPage(),
				CartPageShouldList(1),
			},
		},
		{
			Name: "Remove item from cart",
			Tags: []string{"cart"},
			Steps: []Step{
				OnLoginPage(),
				LoginWithValidCredentials(),
				AddItem(0),
				AddItem(1),
				CartShouldShow(2),
				RemoveItem(0),
				CartShouldShow(1),
			},
		},
		{
			Name: "Logout from the application",
			Tags: []string{"smoke", "logout"},
			Steps: []Step{
				OnLoginPage(),
				LoginWithValidCredentials(),
				ShouldSeeInventoryPage(),
				CartLinkDisplayed(),
				MenuButtonDisplayed(),
				Logout(),
				ShouldBeLoggedOut(),
				ShouldBeOnLoginPage(),
			},
		},
	}
}

// Select отбирает сценарии по именам (без учёта регистра) и тегам.
// Без фильтров возвращает всё. Неизвестное имя - ошибка.
func Select(all []Scenario, names, tags []string) ([]Scenario, error) {
	if len(names) == 0 && len(tags) == 0 {
		return all, nil
	}

	for _, name := range names {
		if !slices.ContainsFunc(all, func(s Scenario) bool { return strings.EqualFold(s.Name, name) }) {
			return nil, fmt.Errorf("сценарий %q не найден", name)
		}
	}

	var out []Scenario
	for _, s := range all {
		byName := slices.ContainsFunc(names, func(n string) bool { return strings.EqualFold(s.Name, n) })
		byTag := slices.ContainsFunc(tags, s.HasTag)
		if byName || byTag {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("под теги %v не подходит ни один сценарий", tags)
	}
	return out, nil
}
