package lightshow

import (
	"errors"
	"fmt"
	"time"

	"go-lightshow/midi"
)

// ErrNoFrame is returned when an authoring call names a frame that does
// not exist.
var ErrNoFrame = errors.New("no such frame")

// Animation is the ordered frames of one pad. Zero frames means nothing
// has been authored.
type Animation struct {
	frames []*Frame
}

// NewAnimation builds an animation from frames
func NewAnimation(frames ...*Frame) *Animation {
	return &Animation{frames: frames}
}

// Exists reports whether anything has been authored
func (a *Animation) Exists() bool {
	return len(a.frames) > 0
}

func (a *Animation) FrameCount() int {
	return len(a.frames)
}

// Frame returns frame i, or a detached zero-duration empty frame when i is
// out of range.
func (a *Animation) Frame(i int) *Frame {
	if i < 0 || i >= len(a.frames) {
		return NewFrame(0)
	}
	return a.frames[i]
}

func (a *Animation) FrameDuration(i int) time.Duration {
	return a.Frame(i).Duration
}

// SetFrameDuration changes the wait before frame i. Out of range frames
// are ignored.
func (a *Animation) SetFrameDuration(i int, d time.Duration) {
	a.Frame(i).Duration = d
}

// cells is the resolution scratch table over the whole surface, indexed
// [y-1][x-1] so walking it yields row-major order.
type cells [9][9]midi.Action

func (c *cells) set(x, y int, a midi.Action) {
	if midi.OnSurface(x, y) {
		c[y-1][x-1] = a
	}
}

func (c *cells) apply(action midi.Action, opaque bool) {
	transparent := !opaque
	fill := func(x, y int, colour uint8) {
		c.set(x, y, midi.PaletteAction{Note: midi.SessionNote(x, y), Colour: colour, Transparent: transparent})
	}

	switch act := action.(type) {
	case midi.NoteAction:
		x, y := midi.SessionPos(act.At())
		c.set(x, y, midi.WithTransparent(act, transparent))
	case midi.ColumnAction:
		for y := 1; y <= 9; y++ {
			fill(int(act.Column), y, act.Colour)
		}
	case midi.RowAction:
		for x := 1; x <= 9; x++ {
			fill(x, int(act.Row), act.Colour)
		}
	case midi.FillAction:
		for y := 1; y <= 9; y++ {
			for x := 1; x <= 9; x++ {
				fill(x, y, act.Colour)
			}
		}
	}
}

func (c *cells) list() []midi.Action {
	var out []midi.Action
	for y := range c {
		for x := range c[y] {
			if c[y][x] != nil {
				out = append(out, c[y][x])
			}
		}
	}
	return out
}

// FrameDelta resolves the change made by frames start+1 through stop, one
// action per touched cell in row-major order. Only cells written by the
// stop frame itself are opaque. Region actions are expanded into palette
// actions. Frames outside the animation contribute nothing.
func (a *Animation) FrameDelta(start, stop int) []midi.Action {
	var table cells
	for i := max(start+1, 0); i <= stop && i < len(a.frames); i++ {
		for _, action := range a.frames[i].Actions {
			table.apply(action, i == stop)
		}
	}
	return table.list()
}

// FrameState is the full picture at frame n: a hollow black fill followed
// by everything from the first frame up to n.
func (a *Animation) FrameState(n int) []midi.Action {
	return append([]midi.Action{midi.FillAction{Colour: 0, Transparent: true}}, a.FrameDelta(-1, n)...)
}

// resolveAt returns the last action in f that lights note, as an opaque
// action addressed at note.
func resolveAt(f *Frame, note uint8) (midi.Action, bool) {
	x, y := midi.SessionPos(note)
	var result midi.Action
	for _, action := range f.Actions {
		switch act := action.(type) {
		case midi.NoteAction:
			if act.At() == note {
				result = midi.WithTransparent(act, false)
			}
		case midi.FillAction:
			result = midi.PaletteAction{Note: note, Colour: act.Colour}
		case midi.ColumnAction:
			if int(act.Column) == x {
				result = midi.PaletteAction{Note: note, Colour: act.Colour}
			}
		case midi.RowAction:
			if int(act.Row) == y {
				result = midi.PaletteAction{Note: note, Colour: act.Colour}
			}
		}
	}
	return result, result != nil
}

// NoteDelta is FrameDelta restricted to one note. A hit from an earlier
// frame is hollow once a later frame in range has been passed.
func (a *Animation) NoteDelta(note uint8, start, stop int) (midi.Action, bool) {
	var result midi.Action
	for i := max(start+1, 0); i <= stop && i < len(a.frames); i++ {
		if result != nil {
			result = midi.WithTransparent(result, true)
		}
		if hit, ok := resolveAt(a.frames[i], note); ok {
			result = hit
		}
	}
	if result != nil && stop >= len(a.frames) {
		result = midi.WithTransparent(result, true)
	}
	return result, result != nil
}

// NoteState is the absolute state of one note at frame n, hollow black
// when nothing lights it.
func (a *Animation) NoteState(note uint8, n int) midi.Action {
	if action, ok := a.NoteDelta(note, -1, n); ok {
		return action
	}
	return midi.PaletteAction{Note: note, Colour: 0, Transparent: true}
}

// PutActionOnFrame replaces whatever point action frame i holds at the
// action's note.
func (a *Animation) PutActionOnFrame(action midi.NoteAction, i int) error {
	if err := a.RemoveActionOnFrameAt(action.At(), i); err != nil {
		return err
	}
	a.frames[i].Actions = append(a.frames[i].Actions, action)
	return nil
}

// RemoveActionOnFrameAt drops the point actions of frame i at note. Region
// actions are left alone.
func (a *Animation) RemoveActionOnFrameAt(note uint8, i int) error {
	if i < 0 || i >= len(a.frames) {
		return fmt.Errorf("frame %d of %d: %w", i, len(a.frames), ErrNoFrame)
	}
	a.frames[i].removeAt(note)
	return nil
}

// AddFrame appends a frame
func (a *Animation) AddFrame(f *Frame) {
	a.frames = append(a.frames, f)
}

// AddEmptyFrame appends an empty frame with the given wait
func (a *Animation) AddEmptyFrame(d time.Duration) {
	a.AddFrame(NewFrame(d))
}

// RemoveFrame pops the last frame, if any
func (a *Animation) RemoveFrame() {
	if len(a.frames) > 0 {
		a.frames = a.frames[:len(a.frames)-1]
	}
}
