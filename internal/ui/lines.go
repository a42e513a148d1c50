package ui

import (
	"fmt"
	"strings"

	"amoebot/internal/core"
)

// Line is one row of HUD text.
type Line struct {
	Text   string
	Header bool
}

// PanelLines lays out the HUD text for sim: its title, status and parameter groups.
func PanelLines(sim core.Sim) []Line {
	if sim == nil {
		return nil
	}
	lines := []Line{{Text: title(sim.Name()), Header: true}}
	if r, ok := sim.(core.StatusReporter); ok {
		for _, part := range strings.Fields(r.Status()) {
			lines = append(lines, Line{Text: part})
		}
	}
	if p, ok := sim.(core.ParameterProvider); ok {
		for _, g := range p.Parameters().Groups {
			lines = append(lines, Line{}, Line{Text: g.Name, Header: true})
			for _, param := range g.Params {
				lines = append(lines, Line{Text: fmt.Sprintf("%s: %s", param.Label, param.Value)})
			}
		}
	}
	return lines
}

func title(name string) string {
	if name == "" {
		return "Sim"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
