package browsertest

import (
	"strconv"
	"strings"
	"sync"

	"storefrontE2E/internal/browser"
)

// Селекторы демо-магазина, как они выглядят в его разметке.
var (
	SelUsername   = browser.CSS("#user-name")
	SelPassword   = browser.CSS("#password")
	SelLogin      = browser.CSS("#login-button")
	SelLoginError = browser.CSS(".error-message-container")
	SelLoginLogo  = browser.CSS(".login_logo")

	SelItems      = browser.CSS(".inventory_list .inventory_item")
	SelItemName   = browser.CSS(".inventory_item_name")
	SelItemPrice  = browser.CSS(".inventory_item_price")
	SelItemButton = browser.CSS(".btn_inventory")
	SelCartLink   = browser.CSS(".shopping_cart_link")
	SelCartBadge  = browser.CSS(".shopping_cart_badge")
	SelTitle      = browser.CSS(".title")
	SelMenu       = browser.CSS(".bm-burger-button")
	SelLogout     = browser.CSS("#logout_sidebar_link")
	SelCartItem   = browser.CSS(".cart_item")
)

const (
	Password     = "secret_sauce"
	StandardUser = "standard_user"
	LockedUser   = "locked_out_user"

	AddText    = "Add to cart"
	RemoveText = "Remove"
)

type Product struct {
	Name  string
	Price string
}

var Products = []Product{
	{"Sauce Labs Backpack", "$29.99"},
	{"Sauce Labs Bike Light", "$9.99"},
	{"Sauce Labs Bolt T-Shirt", "$15.99"},
	{"Sauce Labs Fleece Jacket", "$49.99"},
	{"Sauce Labs Onesie", "$7.99"},
	{"Test.allTheThings() T-Shirt (Red)", "$15.99"},
}

// Quirks - известные капризы магазина под нагрузкой.
type Quirks struct {
	// HideBadge: счётчик корзины не рисуется вовсе.
	HideBadge bool
	// BlockNative: кнопки товаров перекрыты, нативный клик не проходит.
	BlockNative bool
	// ToggleLag: сколько чтений после клика кнопка ещё показывает старый текст.
	ToggleLag int
	// IgnoreClicks: клики по кнопкам товаров не меняют корзину.
	IgnoreClicks bool
}

// Storefront - модель демо-магазина поверх Document: вход, каталог, корзина, меню.
type Storefront struct {
	*Document

	BaseURL string
	Quirks  Quirks

	mu       sync.Mutex
	page     string
	loggedIn bool
	menuOpen bool
	cart     map[int]bool
	errText  string
}

func NewStorefront(baseURL string) *Storefront {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	s := &Storefront{
		Document: NewDocument(),
		BaseURL:  baseURL,
		cart:     make(map[int]bool),
	}
	s.Document.DocumentClick = s.onClick
	s.Document.DocumentNavigate = s.onNavigate
	return s
}

// InCart - число товаров в корзине по данным модели.
func (s *Storefront) InCart() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cart)
}

func (s *Storefront) Page() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

func (s *Storefront) onNavigate(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.errText = ""
	s.menuOpen = false
	switch {
	case s.loggedIn && strings.HasSuffix(url, "inventory.html"):
		s.page = "inventory"
	case s.loggedIn && strings.HasSuffix(url, "cart.html"):
		s.page = "cart"
	default:
		s.page = "login"
	}
	s.render()
}

func (s *Storefront) onClick(loc browser.Locator, _ browser.Strategy) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch loc.Group() {
	case SelLogin:
		s.submitLogin()
	case SelItemButton:
		if !s.Quirks.IgnoreClicks {
			s.cart[loc.Index] = !s.cart[loc.Index]
			if !s.cart[loc.Index] {
				delete(s.cart, loc.Index)
			}
		}
	case SelCartLink:
		s.page = "cart"
		s.menuOpen = false
	case SelMenu:
		s.menuOpen = true
	case SelLogout:
		s.loggedIn = false
		s.menuOpen = false
		s.page = "login"
	default:
		return
	}
	s.render()
}

// submitLogin вызывается под s.mu.
func (s *Storefront) submitLogin() {
	user := s.value(SelUsername)
	pass := s.value(SelPassword)

	switch {
	case user == "":
		s.errText = "Epic sadface: Username is required"
	case pass == "":
		s.errText = "Epic sadface: Password is required"
	case user == LockedUser && pass == Password:
		s.errText = "Epic sadface: Sorry, this user has been locked out."
	case user == StandardUser && pass == Password:
		s.errText = ""
		s.loggedIn = true
		s.page = "inventory"
	default:
		s.errText = "Epic sadface: Username and password do not match any user in this service"
	}
}

func (s *Storefront) value(loc browser.Locator) string {
	if n := s.Document.Node(loc); n != nil {
		return n.Value
	}
	return ""
}

// render перестраивает документ под текущую страницу. Вызывается под s.mu.
func (s *Storefront) render() {
	d := s.Document
	prevButtons := make(map[int]string)
	d.mu.Lock()
	for i, n := range d.nodes[key(SelItemButton)] {
		prevButtons[i] = n.Text
	}
	user, pass := "", ""
	if n := first(d.nodes[key(SelUsername)]); n != nil {
		user = n.Value
	}
	if n := first(d.nodes[key(SelPassword)]); n != nil {
		pass = n.Value
	}
	for k, nodes := range d.nodes {
		for _, n := range nodes {
			n.detached = true
		}
		delete(d.nodes, k)
	}

	switch s.page {
	case "login":
		d.url = s.BaseURL
		d.nodes[key(SelLoginLogo)] = []*Node{{Text: "Swag Labs"}}
		d.nodes[key(SelUsername)] = []*Node{{Value: user}}
		d.nodes[key(SelPassword)] = []*Node{{Value: pass}}
		d.nodes[key(SelLogin)] = []*Node{{Text: "Login"}}
		if s.errText != "" {
			d.nodes[key(SelLoginError)] = []*Node{{Text: s.errText}}
		}

	case "inventory":
		d.url = s.BaseURL + "inventory.html"
		s.renderHeader(d, "Products")

		items := make([]*Node, len(Products))
		names := make([]*Node, len(Products))
		prices := make([]*Node, len(Products))
		buttons := make([]*Node, len(Products))
		for i, p := range Products {
			text := AddText
			if s.cart[i] {
				text = RemoveText
			}
			items[i] = &Node{Text: p.Name + "\n" + p.Price}
			names[i] = &Node{Text: p.Name}
			prices[i] = &Node{Text: p.Price}

			btn := &Node{Text: text, Attrs: map[string]string{
				"data-test": testID(text, p.Name),
			}}
			if old, ok := prevButtons[i]; ok && old != text && s.Quirks.ToggleLag > 0 {
				for range s.Quirks.ToggleLag {
					btn.Script = append(btn.Script, old)
				}
			}
			if s.Quirks.BlockNative {
				btn.Fail = map[browser.Strategy]error{
					browser.StrategyNative: browser.ErrNotInteractable,
				}
			}
			buttons[i] = btn
		}
		d.nodes[key(SelItems)] = items
		d.nodes[key(SelItemName)] = names
		d.nodes[key(SelItemPrice)] = prices
		d.nodes[key(SelItemButton)] = buttons

	case "cart":
		d.url = s.BaseURL + "cart.html"
		s.renderHeader(d, "Your Cart")
		var rows []*Node
		for i, p := range Products {
			if s.cart[i] {
				rows = append(rows, &Node{Text: p.Name})
			}
		}
		if len(rows) > 0 {
			d.nodes[key(SelCartItem)] = rows
		}
	}

	d.gen++
	d.mu.Unlock()
}

// renderHeader: заголовок, корзина, меню. Вызывается под d.mu.
func (s *Storefront) renderHeader(d *Document, title string) {
	d.nodes[key(SelTitle)] = []*Node{{Text: title}}
	d.nodes[key(SelCartLink)] = []*Node{{}}
	d.nodes[key(SelMenu)] = []*Node{{}}
	// Ссылка выхода в DOM всегда, но видна только в открытом меню.
	d.nodes[key(SelLogout)] = []*Node{{Text: "Logout", Hidden: !s.menuOpen}}
	if len(s.cart) > 0 && !s.Quirks.HideBadge {
		d.nodes[key(SelCartBadge)] = []*Node{{Text: strconv.Itoa(len(s.cart))}}
	}
}

func first(nodes []*Node) *Node {
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func testID(text, name string) string {
	prefix := "add-to-cart-"
	if text == RemoveText {
		prefix = "remove-"
	}
	slug := strings.ToLower(strings.NewReplacer(" ", "-", ".", "-", "(", "", ")", "").Replace(name))
	return prefix + slug
}
