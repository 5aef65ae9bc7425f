package commands

import (
	"fmt"
	"io"

	"storefrontE2E/internal/cli/ui"
	"storefrontE2E/internal/scenario"
)

// ListScenarios выводит сценарии набора; с verbose и их шаги
func ListScenarios(out io.Writer, scenarios []scenario.Scenario, verbose bool) {
	fmt.Fprintln(out, "\n"+ui.ColorBold+ui.IconList+" Сценарии:"+ui.ColorReset)
	fmt.Fprintln(out)
	for _, sc := range scenarios {
		fmt.Fprintf(out, "  "+ui.ColorBold+"%s"+ui.ColorReset+" "+ui.ColorGray+"%s"+ui.ColorReset+"\n", sc.Name, ui.Tagged(sc.Tags))
		if !verbose {
			continue
		}
		for _, st := range sc.Steps {
			fmt.Fprintf(out, "  "+ui.ColorGray+"└─"+ui.ColorReset+" %s\n", st.Text)
		}
		fmt.Fprintln(out)
	}
	if !verbose {
		fmt.Fprintln(out)
	}
}
