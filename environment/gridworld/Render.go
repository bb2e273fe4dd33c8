package gridworld

import (
	"fmt"
	"strings"

	"github.com/logrusorgru/aurora"
	"github.com/samuelfneumann/tabular/environment"
)

// Render draws the GridWorld with y increasing upwards. If agent is
// non-nil, its cell is marked with @.
func (g *GridWorld) Render(agent *Coordinates) string {
	return g.render(func(c Coordinates, s State, ok bool) string {
		switch {
		case agent != nil && c == *agent:
			return aurora.Bold(aurora.Cyan("@")).String()
		case !ok:
			return aurora.Gray(12, Wall.Symbol()).String()
		default:
			return colourKind(s.Kind, s.Kind.Symbol())
		}
	})
}

// RenderPolicy draws the glyph of the recommended action of each
// non-terminal state. Actions that are not gridworld Actions are drawn
// as a question mark.
func (g *GridWorld) RenderPolicy(rec map[environment.State]environment.Action) string {
	return g.render(func(c Coordinates, s State, ok bool) string {
		if !ok {
			return aurora.Gray(12, Wall.Symbol()).String()
		}
		if s.Kind == Terminal || s.Kind == Trap {
			return colourKind(s.Kind, s.Kind.Symbol())
		}

		glyph := "?"
		if a, ok := rec[s].(Action); ok {
			glyph = a.Glyph()
		}
		return colourKind(s.Kind, glyph)
	})
}

// RenderValues draws the value of each state with two decimals
func (g *GridWorld) RenderValues(v map[environment.State]float64) string {
	var b strings.Builder
	for y := g.height - 1; y >= 0; y-- {
		for x := 0; x < g.width; x++ {
			s, ok := g.cells[Coordinates{x, y}]
			if !ok {
				b.WriteString(aurora.Gray(12, fmt.Sprintf("%8s", "█")).String())
			} else {
				b.WriteString(colourKind(s.Kind, fmt.Sprintf("%8.2f", v[s])))
			}
			b.WriteString(aurora.White("|").String())
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (g *GridWorld) render(cell func(Coordinates, State, bool) string) string {
	var b strings.Builder
	border := strings.Repeat("─", g.width*2+1)
	b.WriteString(border + "\n")
	for y := g.height - 1; y >= 0; y-- {
		b.WriteString("│")
		for x := 0; x < g.width; x++ {
			c := Coordinates{x, y}
			s, ok := g.cells[c]
			b.WriteString(cell(c, s, ok))
			b.WriteString(" ")
		}
		b.WriteString("│\n")
	}
	b.WriteString(border + "\n")
	return b.String()
}

func (g *GridWorld) String() string {
	return g.Render(nil)
}

func colourKind(k Kind, text string) string {
	switch k {
	case Terminal:
		return aurora.Green(text).String()
	case Trap:
		return aurora.Red(text).String()
	case Initial:
		return aurora.Yellow(text).String()
	default:
		return aurora.Blue(text).String()
	}
}
