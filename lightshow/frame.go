package lightshow

import (
	"time"

	"go-lightshow/midi"
)

// Frame is one step of an animation: a wait followed by a set of actions.
// Duration is the wait before the frame is shown. Actions keep authoring
// order and later ones win per cell.
type Frame struct {
	Duration time.Duration
	Actions  []midi.Action
}

// NewFrame builds a frame from a duration and its actions
func NewFrame(d time.Duration, actions ...midi.Action) *Frame {
	return &Frame{Duration: d, Actions: actions}
}

// Empty reports whether the frame holds no actions
func (f *Frame) Empty() bool {
	return len(f.Actions) == 0
}

func (f *Frame) removeAt(note uint8) {
	kept := f.Actions[:0:0]
	for _, a := range f.Actions {
		if na, ok := a.(midi.NoteAction); ok && na.At() == note {
			continue
		}
		kept = append(kept, a)
	}
	f.Actions = kept
}
