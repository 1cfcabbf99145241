package lightshow

import (
	"fmt"

	"go-lightshow/midi"
)

// Page is the 8x8 grid of pad animations, stored by column then row.
type Page struct {
	animations [8][8]*Animation
}

// NewPage returns a page with an empty animation on every pad
func NewPage() *Page {
	p := &Page{}
	for x := range p.animations {
		for y := range p.animations[x] {
			p.animations[x][y] = NewAnimation()
		}
	}
	return p
}

func validPad(x, y int) bool {
	return x >= 1 && x <= 8 && y >= 1 && y <= 8
}

// Animation returns the animation at logical (x, y); both in [1,8].
func (p *Page) Animation(x, y int) *Animation {
	if !validPad(x, y) {
		panic(fmt.Sprintf("lightshow: pad (%d, %d) off the grid", x, y))
	}
	return p.animations[x-1][y-1]
}

// AnimationAt returns the animation for a session-layout pad note
func (p *Page) AnimationAt(note uint8) (*Animation, error) {
	if !midi.OnPad(note) {
		return nil, fmt.Errorf("note %d: %w", note, midi.ErrOffGrid)
	}
	x, y := midi.SessionPos(note)
	return p.animations[x-1][y-1], nil
}

// SetAnimation replaces the animation at (x, y)
func (p *Page) SetAnimation(x, y int, a *Animation) error {
	if !validPad(x, y) {
		return fmt.Errorf("pad (%d, %d): %w", x, y, midi.ErrOffGrid)
	}
	if a == nil {
		a = NewAnimation()
	}
	p.animations[x-1][y-1] = a
	return nil
}

// ExistsAt reports whether the pad at note has anything authored
func (p *Page) ExistsAt(note uint8) bool {
	a, err := p.AnimationAt(note)
	return err == nil && a.Exists()
}

// Layout returns which pads have animations, indexed [x-1][y-1].
func (p *Page) Layout() [8][8]bool {
	var out [8][8]bool
	for x := range p.animations {
		for y := range p.animations[x] {
			out[x][y] = p.animations[x][y].Exists()
		}
	}
	return out
}
