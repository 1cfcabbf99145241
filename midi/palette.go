package midi

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	// PaletteSize is the number of colours the Launchpad knows by index.
	PaletteSize = 128
	// SysexMax is the largest value of one sysex RGB channel.
	SysexMax = 63
)

// RGB is an 8-bit-per-channel colour.
type RGB struct {
	R, G, B uint8
}

// Hex formats c as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Colorful converts c for blending and styling.
func (c RGB) Colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// paletteHex is the MK2 velocity colour table, as published by Novation.
var paletteHex = [PaletteSize]string{
	"#000000", "#1c1c1c", "#7c7c7c", "#fcfcfc", "#ff4d47", "#ff0a00", "#5a0100", "#190000",
	"#ffbd62", "#ff5600", "#5a1d00", "#241800", "#fdfd21", "#fdfd00", "#585800", "#181800",
	"#80fd2a", "#40fd00", "#165800", "#132800", "#34fd2b", "#00fd00", "#005800", "#001800",
	"#33fd46", "#00fd00", "#005800", "#001800", "#32fd7e", "#00fd3a", "#005814", "#001c0f",
	"#2ffcb0", "#00fc91", "#005831", "#00180f", "#39bfff", "#00a7ff", "#004051", "#001018",
	"#4186ff", "#0050ff", "#001a5a", "#000719", "#4647ff", "#0000ff", "#00005b", "#000019",
	"#8347ff", "#5000ff", "#160067", "#0b0032", "#ff49ff", "#ff00ff", "#5a005a", "#190019",
	"#ff4d84", "#ff0752", "#5a011b", "#210010", "#ff1900", "#9b3500", "#7a5100", "#3e6400",
	"#003800", "#005432", "#00537e", "#0000ff", "#00444d", "#1b00d2", "#7c7c7c", "#202020",
	"#ff0a00", "#bafd00", "#aaed00", "#56fd00", "#008800", "#00fc7a", "#00a7ff", "#001bff",
	"#3500ff", "#7700ff", "#b4177e", "#412000", "#ff4a00", "#83e100", "#65fd00", "#00fd00",
	"#00fd00", "#45fd61", "#00fcca", "#5086ff", "#274dc9", "#827aed", "#d30cff", "#ff065a",
	"#ff7d00", "#b9b100", "#8afd00", "#825d00", "#392800", "#0d4c05", "#005037", "#131329",
	"#101f5a", "#6a3c17", "#ac0400", "#e15135", "#dc6900", "#ffe100", "#99e100", "#5fb500",
	"#1b1b31", "#dcfd54", "#76fcb8", "#9697ff", "#8b61ff", "#404040", "#747474", "#defcfc",
	"#a40400", "#350000", "#00d100", "#004000", "#b9b100", "#3d3000", "#b45d00", "#4a1400",
}

// Palette holds paletteHex parsed into RGB values.
var Palette [PaletteSize]RGB

func init() {
	for i, h := range paletteHex {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(fmt.Sprintf("palette entry %d: %v", i, err))
		}
		r, g, b := c.RGB255()
		Palette[i] = RGB{r, g, b}
	}
}

// PaletteApprox returns the palette index closest to c by L1 distance and
// that distance. Ties keep the lowest index.
func PaletteApprox(c RGB) (index uint8, dist int) {
	dist = -1
	for i, p := range Palette {
		d := absDiff(c.R, p.R) + absDiff(c.G, p.G) + absDiff(c.B, p.B)
		if dist < 0 || d < dist {
			index, dist = uint8(i), d
		}
	}
	return index, dist
}

// SysExApprox reduces c to the 6-bit channels used by SysexAction.
func SysExApprox(c RGB) [3]uint8 {
	return [3]uint8{c.R >> 2, c.G >> 2, c.B >> 2}
}

// SysExToRGB widens 6-bit sysex channels back to 8 bits.
func SysExToRGB(r, g, b uint8) RGB {
	return RGB{r << 2, g << 2, b << 2}
}

// ParseColour accepts #rgb, #rrggbb and rgb(r, g, b).
func ParseColour(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToLower(s), "rgb") {
		var r, g, b int
		body := strings.ReplaceAll(s[3:], " ", "")
		if _, err := fmt.Sscanf(body, "(%d,%d,%d)", &r, &g, &b); err != nil {
			return RGB{}, fmt.Errorf("parse colour %q: %w", s, err)
		}
		for _, v := range []int{r, g, b} {
			if v < 0 || v > 255 {
				return RGB{}, fmt.Errorf("parse colour %q: channel %d out of range", s, v)
			}
		}
		return RGB{uint8(r), uint8(g), uint8(b)}, nil
	}
	c, err := colorful.Hex(strings.ToLower(s))
	if err != nil {
		return RGB{}, fmt.Errorf("parse colour %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGB{r, g, b}, nil
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
