package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-lightshow/midi"
	"go-lightshow/theme"
)

// cellWidth is the number of terminal columns one pad takes.
const cellWidth = 2

// RenderPad renders a single colored pad
func RenderPad(color [3]uint8) string {
	return RenderSymbol(color, '■')
}

// RenderSymbol renders sym in color
func RenderSymbol(color [3]uint8, sym rune) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(color)))
	return style.Render(string(sym))
}

// RenderGrid draws the whole surface top row first: the control row, then
// the pads with the selector column on the right. Hollow cells are dimmed
// towards the background. A cursor of 0 draws no cursor.
func RenderGrid(g *Grid, th *theme.Theme, cursor uint8) string {
	var lines []string
	for y := 9; y >= 1; y-- {
		var line strings.Builder
		for x := 1; x <= 9; x++ {
			cell, ok := g.Cell(x, y)
			if !ok {
				line.WriteString(strings.Repeat(" ", cellWidth))
				continue
			}
			sym := renderCell(cell, th)
			if midi.SessionNote(x, y) == cursor {
				sym = lipgloss.NewStyle().Background(th.Cursor()).Render(sym)
			}
			line.WriteString(sym)
			line.WriteString(" ")
		}
		lines = append(lines, strings.TrimRight(line.String(), " "))
	}
	return strings.Join(lines, "\n")
}

func renderCell(c Cell, th *theme.Theme) string {
	if !c.Lit() {
		return RenderSymbol(th.RGB(theme.RoleMuted), th.Symbols.Dark)
	}
	rgb := theme.RGB{c.Colour.R, c.Colour.G, c.Colour.B}
	if c.Hollow {
		return RenderSymbol(theme.Blend(rgb, th.RGB(theme.RoleBG), 0.5), th.Symbols.Hollow)
	}
	return RenderSymbol(rgb, th.Symbols.Lit)
}

// RenderLayout draws which pads of a page hold an animation, with the
// selected pad highlighted and the page marked in the selector column.
func RenderLayout(layout [8][8]bool, selected uint8, page int, th *theme.Theme) string {
	var lines []string
	for y := 8; y >= 1; y-- {
		var line strings.Builder
		for x := 1; x <= 8; x++ {
			exists := layout[x-1][y-1]
			note := midi.SessionNote(x, y)
			switch {
			case note == selected && exists:
				line.WriteString(RenderSymbol(th.RGB(theme.RoleSuccess), th.Symbols.Selected))
			case note == selected:
				line.WriteString(RenderSymbol(th.RGB(theme.RoleCursor), th.Symbols.Cursor))
			case exists:
				line.WriteString(RenderSymbol(th.RGB(theme.RoleFG), th.Symbols.HasAnimation))
			default:
				line.WriteString(RenderSymbol(th.RGB(theme.RoleMuted), th.Symbols.NoAnimation))
			}
			line.WriteString(" ")
		}
		if y == page {
			line.WriteString(RenderSymbol(th.RGB(theme.RoleAccent), th.Symbols.Lit))
		} else {
			line.WriteString(RenderSymbol(th.RGB(theme.RoleMuted), th.Symbols.Dark))
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// HitTest maps a position relative to the top-left of RenderGrid's output
// to the note of the button drawn there.
func HitTest(x, y int) (uint8, bool) {
	if x < 0 || y < 0 {
		return 0, false
	}
	px, py := x/cellWidth+1, 9-y
	if !midi.OnSurface(px, py) {
		return 0, false
	}
	return midi.SessionNote(px, py), true
}

// RenderLegendItem renders a single legend item: "■ Name - description"
func RenderLegendItem(color [3]uint8, name, desc string) string {
	return fmt.Sprintf("  %s %s - %s", RenderPad(color), name, desc)
}

func rgbToHex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
