package midi

import (
	"context"
	"errors"
	"time"
)

// ButtonKind says which part of the surface a button belongs to.
type ButtonKind int

const (
	ButtonPad ButtonKind = iota
	ButtonSelector
	ButtonControl
)

func (k ButtonKind) String() string {
	switch k {
	case ButtonPad:
		return "pad"
	case ButtonSelector:
		return "selector"
	case ButtonControl:
		return "control"
	}
	return "unknown"
}

// ButtonEvent is a press or release of one Launchpad button.
type ButtonEvent struct {
	Kind    ButtonKind
	Note    uint8
	Pressed bool
}

// Classify turns a decoded message into a button event. Note-on with zero
// velocity counts as a release. Messages that are not buttons return false.
func Classify(ev Event) (ButtonEvent, bool) {
	switch ev.Type {
	case NoteOn, NoteOff:
		kind := ButtonPad
		if ev.Note%10 == 9 {
			kind = ButtonSelector
		}
		return ButtonEvent{Kind: kind, Note: ev.Note, Pressed: ev.Type == NoteOn && ev.Velocity > 0}, true
	case ControlChange:
		return ButtonEvent{Kind: ButtonControl, Note: ev.Note, Pressed: ev.Velocity > 0}, true
	}
	return ButtonEvent{}, false
}

// ErrDisconnected is returned by blocking calls on a controller that has
// gone away.
var ErrDisconnected = errors.New("controller disconnected")

// Controller is a connected light-show surface.
type Controller interface {
	ID() string

	// Buttons delivers presses and releases until Done is closed.
	Buttons() <-chan ButtonEvent
	// Done is closed when the controller is closed or unplugged.
	Done() <-chan struct{}

	PerformActions(actions ...Action)
	PerformActionsAt(at time.Time, actions ...Action)
	// WriteTextAndWait scrolls text once and returns when the device
	// reports that the scroll has finished.
	WriteTextAndWait(ctx context.Context, colour uint8, text string) error

	Close() error
}
