// Package snapshot draws the surface state as a PNG image.
package snapshot

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"go-lightshow/debug"
	"go-lightshow/midi"
	"go-lightshow/widgets"
)

const (
	cell        = 40.0
	gap         = 6.0
	margin      = 16.0
	labelHeight = 28.0

	Width  = int(2*margin + 9*cell)
	Height = int(2*margin + 9*cell + labelHeight)
)

var (
	faceOnce sync.Once
	face     font.Face
)

func labelFace() font.Face {
	faceOnce.Do(func() {
		f, err := truetype.Parse(goregular.TTF)
		if err != nil {
			debug.Log("snapshot", "font: %v", err)
			return
		}
		face = truetype.NewFace(f, &truetype.Options{Size: 14})
	})
	return face
}

// Render draws g the way the device would show it, with label underneath.
// Pads are square and the selector column and control row are round.
// Hollow cells are drawn as outlines.
func Render(g *widgets.Grid, label string) image.Image {
	dc := gg.NewContext(Width, Height)
	dc.SetRGB(0.08, 0.08, 0.08)
	dc.DrawRectangle(0, 0, float64(Width), float64(Height))
	dc.Fill()

	for y := 1; y <= 9; y++ {
		for x := 1; x <= 9; x++ {
			c, ok := g.Cell(x, y)
			if !ok {
				continue
			}
			drawCell(dc, x, y, c)
		}
	}

	if f := labelFace(); f != nil && label != "" {
		dc.SetFontFace(f)
		dc.SetRGB(0.85, 0.85, 0.85)
		dc.DrawStringAnchored(label, float64(Width)/2, margin+9*cell+labelHeight/2, 0.5, 0.5)
	}
	return dc.Image()
}

// Centre returns the image position of the middle of button (x, y).
func Centre(x, y int) (float64, float64) {
	return margin + float64(x-1)*cell + cell/2, margin + float64(9-y)*cell + cell/2
}

func drawCell(dc *gg.Context, x, y int, c widgets.Cell) {
	cx, cy := Centre(x, y)
	size := cell - gap

	if x == 9 || y == 9 {
		dc.DrawCircle(cx, cy, size/2)
	} else {
		dc.DrawRoundedRectangle(cx-size/2, cy-size/2, size, size, 4)
	}

	switch {
	case !c.Lit():
		dc.SetRGB(0.2, 0.2, 0.2)
		dc.Fill()
	case c.Hollow:
		setRGB(dc, c.Colour)
		dc.SetLineWidth(3)
		dc.Stroke()
	default:
		setRGB(dc, c.Colour)
		dc.Fill()
	}
}

func setRGB(dc *gg.Context, c midi.RGB) {
	dc.SetRGB255(int(c.R), int(c.G), int(c.B))
}

// Save renders g into dir/name.png, creating dir, and returns the path.
func Save(dir, name string, g *widgets.Grid, label string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fault.Wrap(err, fmsg.WithDesc("create snapshot dir", fmt.Sprintf("Could not create %s", dir)))
	}
	path := filepath.Join(dir, name+".png")
	if err := gg.SavePNG(path, Render(g, label)); err != nil {
		return "", fault.Wrap(err, fmsg.WithDesc("write snapshot", fmt.Sprintf("Could not write %s", path)))
	}
	return path, nil
}
