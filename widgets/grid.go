package widgets

import (
	"go-lightshow/midi"
)

// Cell is what one button of the on-screen Launchpad shows.
type Cell struct {
	Colour midi.RGB
	Hollow bool
	Effect midi.ActionType
}

// Lit reports whether the cell shows any colour.
func (c Cell) Lit() bool {
	return c.Colour != midi.RGB{}
}

// Grid mirrors the Launchpad surface in memory so the TUI can draw what
// the device would show. It receives the same actions as the device.
type Grid struct {
	cells [9][9]Cell // [y-1][x-1]
}

func NewGrid() *Grid {
	return &Grid{}
}

// PerformActions applies actions in order. Region actions cover their
// whole footprint; text is ignored.
func (g *Grid) PerformActions(actions ...midi.Action) {
	for _, action := range actions {
		g.apply(action)
	}
}

func (g *Grid) apply(action midi.Action) {
	switch a := action.(type) {
	case midi.PaletteAction:
		g.setNote(a.Note, Cell{Colour: paletteRGB(a.Colour), Hollow: a.Transparent, Effect: midi.ActionPalette})
	case midi.FlashAction:
		g.setNote(a.Note, Cell{Colour: paletteRGB(a.Colour), Hollow: a.Transparent, Effect: midi.ActionFlash})
	case midi.PulseAction:
		g.setNote(a.Note, Cell{Colour: paletteRGB(a.Colour), Hollow: a.Transparent, Effect: midi.ActionPulse})
	case midi.SysexAction:
		g.setNote(a.Note, Cell{Colour: midi.SysExToRGB(a.R, a.G, a.B), Hollow: a.Transparent, Effect: midi.ActionSysex})
	case midi.ColumnAction:
		for y := 1; y <= 9; y++ {
			g.set(int(a.Column), y, Cell{Colour: paletteRGB(a.Colour), Hollow: a.Transparent, Effect: midi.ActionPalette})
		}
	case midi.RowAction:
		for x := 1; x <= 9; x++ {
			g.set(x, int(a.Row), Cell{Colour: paletteRGB(a.Colour), Hollow: a.Transparent, Effect: midi.ActionPalette})
		}
	case midi.FillAction:
		for y := 1; y <= 9; y++ {
			for x := 1; x <= 9; x++ {
				g.set(x, y, Cell{Colour: paletteRGB(a.Colour), Hollow: a.Transparent, Effect: midi.ActionPalette})
			}
		}
	}
}

func (g *Grid) setNote(note uint8, c Cell) {
	if midi.Addressable(note) {
		x, y := midi.SessionPos(note)
		g.set(x, y, c)
	}
}

func (g *Grid) set(x, y int, c Cell) {
	if midi.OnSurface(x, y) {
		g.cells[y-1][x-1] = c
	}
}

// Cell returns the cell at (x, y), or false for positions with no button.
func (g *Grid) Cell(x, y int) (Cell, bool) {
	if !midi.OnSurface(x, y) {
		return Cell{}, false
	}
	return g.cells[y-1][x-1], true
}

// Clear turns every cell off.
func (g *Grid) Clear() {
	g.cells = [9][9]Cell{}
}

func paletteRGB(i uint8) midi.RGB {
	if int(i) >= len(midi.Palette) {
		return midi.RGB{}
	}
	return midi.Palette[i]
}
