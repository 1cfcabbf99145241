package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Pad grid
	Lit    rune // ■ opaque action on this frame
	Hollow rune // □ carried over from an earlier frame
	Dark   rune // · nothing lit
	Corner rune //   the (9,9) corner that has no button

	// Layout grid
	HasAnimation rune // ● pad has frames
	NoAnimation  rune // · pad is empty
	Selected     rune // ◉ selected pad
	Cursor       rune // ○ selected empty pad
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Lit:    '■',
			Hollow: '□',
			Dark:   '·',
			Corner: ' ',

			HasAnimation: '●',
			NoAnimation:  '·',
			Selected:     '◉',
			Cursor:       '○',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0
	RoleSurface = 0.1
	RoleMuted   = 0.2
	RoleFG      = 0.4
	RoleAccent  = 0.5
	RoleCursor  = 0.6
	RoleActive  = 0.7
	RoleWarning = 0.8
	RoleSuccess = 1.0
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Cursor() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleCursor))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Success() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSuccess))
}

// ModeColor gives each of n editor modes its own colour spread over the
// accent half of the palette.
func (t *Theme) ModeColor(mode, n int) lipgloss.Color {
	if n < 2 {
		return t.Accent()
	}
	return t.Color(RoleAccent + (RoleSuccess-RoleAccent)*float64(mode)/float64(n-1))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

// Swatch cycles through the palette's own colours without blending, for
// telling list entries apart.
func (t *Theme) Swatch(i int) lipgloss.Color {
	if n := len(t.Palette.Colors); n > 0 {
		i %= n
	}
	return rgbToLipgloss(t.Palette.Index(i))
}

// RGB returns raw RGB for any normalized value
func (t *Theme) RGB(norm float64) RGB {
	return t.Palette.Lookup(norm)
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
