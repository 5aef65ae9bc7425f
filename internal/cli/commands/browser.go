package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"storefrontE2E/internal/browser"
	"storefrontE2E/internal/cli/ui"
)

// BrowserHandler открывает сессию вручную, чтобы посмотреть на страницу глазами
type BrowserHandler struct {
	factory  browser.Factory
	readLine func(ctx context.Context) (string, error)
	out      io.Writer
}

func NewBrowserHandler(factory browser.Factory, readLine func(ctx context.Context) (string, error), out io.Writer) *BrowserHandler {
	return &BrowserHandler{
		factory:  factory,
		readLine: readLine,
		out:      out,
	}
}

// Open открывает URL в браузере и держит его до Enter
func (h *BrowserHandler) Open(ctx context.Context, url string) error {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	br := h.factory()
	defer br.Close()

	fmt.Fprintln(h.out, ui.ColorCyan+ui.IconGlobe+" Запуск браузера..."+ui.ColorReset)
	if err := br.Launch(ctx); err != nil {
		fmt.Fprintf(h.out, ui.ColorRed+ui.IconCross+" Ошибка запуска:"+ui.ColorReset+" %v\n", err)
		return err
	}

	fmt.Fprintf(h.out, ui.ColorCyan+ui.IconArrow+" Открытие %s..."+ui.ColorReset+"\n", url)
	if err := br.Navigate(ctx, url); err != nil {
		fmt.Fprintf(h.out, ui.ColorRed+ui.IconCross+" Ошибка навигации:"+ui.ColorReset+" %v\n", err)
		return err
	}

	title, err := br.Title(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(h.out, ui.ColorGreen+ui.IconCheckmark+" Страница открыта:"+ui.ColorReset+" %s\n", title)
	fmt.Fprintln(h.out, ui.ColorYellow+"⏎ Нажмите Enter для закрытия браузера..."+ui.ColorReset)
	if _, err := h.readLine(ctx); err != nil && ctx.Err() == nil && !errors.Is(err, io.EOF) {
		return err
	}
	fmt.Fprintln(h.out, ui.ColorGray+"Браузер закрыт"+ui.ColorReset)
	return nil
}
