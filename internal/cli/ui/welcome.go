package ui

import (
	"fmt"
	"io"
)

// Banner - что и где запускается.
type Banner struct {
	BaseURL   string
	Browser   string
	Driver    string
	Headless  bool
	Threads   int
	Scenarios int
	History   bool
}

// PrintBanner выводит шапку прогона
func PrintBanner(w io.Writer, b Banner) {
	mode := "с окном"
	if b.Headless {
		mode = "headless"
	}
	history := "не сохраняется"
	if b.History {
		history = "PostgreSQL"
	}

	fmt.Fprintln(w, ColorBold+IconPlay+" storefront-e2e"+ColorReset)
	fmt.Fprintf(w, ColorGray+"%s Магазин: %s"+ColorReset+"\n", IconGlobe, b.BaseURL)
	fmt.Fprintf(w, ColorGray+"%s Браузер: %s через %s, %s"+ColorReset+"\n", IconCog, b.Browser, b.Driver, mode)
	fmt.Fprintf(w, ColorGray+"%s Сценариев: %d, потоков: %d"+ColorReset+"\n", IconList, b.Scenarios, b.Threads)
	fmt.Fprintf(w, ColorGray+"%s История: %s"+ColorReset+"\n", IconChart, history)
	fmt.Fprintln(w)
}
