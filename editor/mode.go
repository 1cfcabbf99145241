package editor

import "go-lightshow/midi"

// Mode decides what the Launchpad shows and how its buttons are read.
type Mode int

const (
	ModeLayout Mode = iota
	ModeEditor
	ModePreview
	modeCycle // modes below this are reachable by cycling
	ModeColourPicker
)

func (m Mode) String() string {
	switch m {
	case ModeLayout:
		return "LAYOUT"
	case ModeEditor:
		return "EDITOR"
	case ModePreview:
		return "PREVIEW"
	case ModeColourPicker:
		return "COLOUR PICKER"
	}
	return "UNKNOWN"
}

func (m Mode) next() Mode {
	return (m + 1) % modeCycle
}

func (m Mode) prev() Mode {
	return (m + modeCycle - 1) % modeCycle
}

// Held is the set of control-row buttons currently held down.
type Held uint8

const (
	HeldMixer Held = 1 << iota
	HeldUserTwo
	HeldUserOne
	HeldSession
	HeldRight
	HeldLeft
	HeldDown
	HeldUp
)

// heldBit maps a control button to its bit; MIXER is the lowest.
func heldBit(note midi.ControlNote) Held {
	if note < midi.ControlUp || note > midi.ControlMixer {
		return 0
	}
	return 1 << (midi.ControlMixer - note)
}

// Command is what a recognised chord does.
type Command int

const (
	CommandNone Command = iota
	CommandModeForward
	CommandModeBackward
	CommandShiftUp
	CommandShiftDown
	CommandShiftLeft
	CommandShiftRight
	CommandFrameBack
	CommandFrameForward
	CommandColourPicker
)

var chords = map[Held]Command{
	HeldSession | HeldUserTwo: CommandModeForward,
	HeldSession | HeldUserOne: CommandModeBackward,
	HeldUp | HeldSession:      CommandShiftUp,
	HeldDown | HeldSession:    CommandShiftDown,
	HeldLeft | HeldSession:    CommandShiftLeft,
	HeldRight | HeldSession:   CommandShiftRight,
	HeldLeft | HeldMixer:      CommandFrameBack,
	HeldRight | HeldMixer:     CommandFrameForward,
	HeldSession | HeldMixer:   CommandColourPicker,
}

// Command returns the command for exactly this set of held buttons.
func (h Held) Command() Command {
	return chords[h]
}

// direction is the grid vector of an arrow button.
func direction(note midi.ControlNote) (dx, dy int, ok bool) {
	switch note {
	case midi.ControlUp:
		return 0, 1, true
	case midi.ControlDown:
		return 0, -1, true
	case midi.ControlLeft:
		return -1, 0, true
	case midi.ControlRight:
		return 1, 0, true
	}
	return 0, 0, false
}
