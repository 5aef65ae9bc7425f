package browser

import (
	"fmt"
	"strconv"
	"strings"
)

// LocatorKind определяет способ поиска узлов в документе.
type LocatorKind string

const (
	KindCSS      LocatorKind = "css"
	KindID       LocatorKind = "id"
	KindXPath    LocatorKind = "xpath"
	KindDataTest LocatorKind = "data-test"
)

// Locator - неизменяемое описание узла (или набора узлов) в удалённом документе.
// Index выбирает n-й совпавший узел при одиночном разрешении, нулевое значение
// означает первый узел.
type Locator struct {
	Kind     LocatorKind `yaml:"kind" json:"kind"`
	Selector string      `yaml:"selector" json:"selector"`
	Index    int         `yaml:"index,omitempty" json:"index,omitempty"`
}

func CSS(selector string) Locator { return Locator{Kind: KindCSS, Selector: selector} }
func ByID(id string) Locator { return Locator{Kind: KindID, Selector: id} }
func XPath(expr string) Locator { return Locator{Kind: KindXPath, Selector: expr} }
func DataTest(value string) Locator { return Locator{Kind: KindDataTest, Selector: value} }

// Nth возвращает копию локатора, указывающую на i-й узел.
func (l Locator) Nth(i int) Locator {
	l.Index = i
	return l
}

// Group - тот же локатор без индекса; используется как ключ набора узлов.
func (l Locator) Group() Locator {
	l.Index = 0
	return l
}

// CSSQuery возвращает CSS-эквивалент локатора. Для XPath второй результат false.
func (l Locator) CSSQuery() (string, bool) {
	switch l.Kind {
	case KindID:
		return "#" + l.Selector, true
	case KindDataTest:
		return "[data-test=" + strconv.Quote(l.Selector) + "]", true
	case KindXPath:
		return "", false
	default:
		return l.Selector, true
	}
}

// PlaywrightQuery возвращает селектор в синтаксисе движков Playwright.
func (l Locator) PlaywrightQuery() string {
	if l.Kind == KindXPath {
		return "xpath=" + l.Selector
	}
	q, _ := l.CSSQuery()
	return "css=" + q
}

func (l Locator) Validate() error {
	sel := strings.TrimSpace(l.Selector)
	if sel == "" {
		return fmt.Errorf("пустой селектор")
	}
	// Частая ошибка в переопределённом каталоге: адрес страницы вместо селектора.
	if strings.HasPrefix(sel, "http://") || strings.HasPrefix(sel, "https://") {
		return fmt.Errorf("селектор не может быть URL: %s", l.Selector)
	}
	switch l.Kind {
	case KindCSS, KindID, KindXPath, KindDataTest:
	default:
		return fmt.Errorf("неизвестный тип локатора: %q", l.Kind)
	}
	if l.Index < 0 {
		return fmt.Errorf("отрицательный индекс: %d", l.Index)
	}
	return nil
}

func (l Locator) String() string {
	if l.Index > 0 {
		return fmt.Sprintf("%s=%s[%d]", l.Kind, l.Selector, l.Index)
	}
	return fmt.Sprintf("%s=%s", l.Kind, l.Selector)
}
