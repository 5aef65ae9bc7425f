package pages

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"storefrontE2E/internal/browser"
)

//go:embed locators.yaml
var defaultLocators []byte

type LoginLocators struct {
	Username browser.Locator `yaml:"username"`
	Password browser.Locator `yaml:"password"`
	Submit   browser.Locator `yaml:"submit"`
	Error    browser.Locator `yaml:"error"`
	Logo     browser.Locator `yaml:"logo"`
}

type InventoryLocators struct {
	Title      browser.Locator `yaml:"title"`
	Items      browser.Locator `yaml:"items"`
	ItemNames  browser.Locator `yaml:"item_names"`
	ItemPrices browser.Locator `yaml:"item_prices"`
	Buttons    browser.Locator `yaml:"buttons"`
	CartLink   browser.Locator `yaml:"cart_link"`
	CartBadge  browser.Locator `yaml:"cart_badge"`
	Menu       browser.Locator `yaml:"menu"`
	Logout     browser.Locator `yaml:"logout"`
}

type CartLocators struct {
	Items browser.Locator `yaml:"items"`
}

// Texts - подписи, по которым определяется состояние страницы.
type Texts struct {
	Add           string `yaml:"add"`
	Remove        string `yaml:"remove"`
	ProductsTitle string `yaml:"products_title"`
	CartTitle     string `yaml:"cart_title"`
}

type Catalog struct {
	Login     LoginLocators     `yaml:"login"`
	Inventory InventoryLocators `yaml:"inventory"`
	Cart      CartLocators      `yaml:"cart"`
	Texts     Texts             `yaml:"texts"`
}

// DefaultCatalog - встроенный каталог.
func DefaultCatalog() *Catalog {
	c, err := parseCatalog(defaultLocators, nil)
	if err != nil {
		panic(fmt.Sprintf("встроенный locators.yaml: %v", err))
	}
	return c
}

// LoadCatalog читает встроенный каталог и накладывает поверх файл path, если он задан.
// В файле достаточно указать только изменившиеся локаторы.
func LoadCatalog(path string) (*Catalog, error) {
	c := DefaultCatalog()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение каталога локаторов: %w", err)
	}
	return parseCatalog(data, c)
}

func parseCatalog(data []byte, base *Catalog) (*Catalog, error) {
	c := &Catalog{}
	if base != nil {
		*c = *base
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("разбор каталога локаторов: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) Validate() error {
	var errs []error
	for name, loc := range c.locators() {
		if err := loc.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if c.Texts.Add == "" || c.Texts.Remove == "" {
		errs = append(errs, errors.New("texts: подписи кнопок не заданы"))
	}
	return errors.Join(errs...)
}

func (c *Catalog) locators() map[string]browser.Locator {
	return map[string]browser.Locator{
		"login.username":        c.Login.Username,
		"login.password":        c.Login.Password,
		"login.submit":          c.Login.Submit,
		"login.error":           c.Login.Error,
		"login.logo":            c.Login.Logo,
		"inventory.title":       c.Inventory.Title,
		"inventory.items":       c.Inventory.Items,
		"inventory.item_names":  c.Inventory.ItemNames,
		"inventory.item_prices": c.Inventory.ItemPrices,
		"inventory.buttons":     c.Inventory.Buttons,
		"inventory.cart_link":   c.Inventory.CartLink,
		"inventory.cart_badge":  c.Inventory.CartBadge,
		"inventory.menu":        c.Inventory.Menu,
		"inventory.logout":      c.Inventory.Logout,
		"cart.items":            c.Cart.Items,
	}
}
