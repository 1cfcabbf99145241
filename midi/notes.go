package midi

import "errors"

// Launchpad MK2 note mapping, session layout (programmer-style numbering)
// Grid:      (x, y) in [1,8]x[1,8] -> 10*y + x, bottom-left = 11
// Selectors: x = 9 -> 19, 29 ... 89 (note messages)
// Top row:   y = 9 -> 104-111 (control change messages)

// TopRow is the offset of the control row: control x has note TopRow+x.
const TopRow = 103

// ErrOffGrid is returned when a note or position is outside the surface
// that an operation accepts.
var ErrOffGrid = errors.New("off the playable grid")

// ControlNote identifies a round button in the top control row.
type ControlNote uint8

const (
	ControlUp ControlNote = iota + TopRow + 1
	ControlDown
	ControlLeft
	ControlRight
	ControlSession
	ControlUserOne
	ControlUserTwo
	ControlMixer
)

func (c ControlNote) String() string {
	switch c {
	case ControlUp:
		return "UP"
	case ControlDown:
		return "DOWN"
	case ControlLeft:
		return "LEFT"
	case ControlRight:
		return "RIGHT"
	case ControlSession:
		return "SESSION"
	case ControlUserOne:
		return "USER_ONE"
	case ControlUserTwo:
		return "USER_TWO"
	case ControlMixer:
		return "MIXER"
	}
	return "CONTROL?"
}

// SelectorNote identifies a round button in the right selector column.
type SelectorNote uint8

const (
	SelectorRecordArm SelectorNote = 19
	SelectorSolo      SelectorNote = 29
	SelectorMute      SelectorNote = 39
	SelectorStop      SelectorNote = 49
	SelectorSendB     SelectorNote = 59
	SelectorSendA     SelectorNote = 69
	SelectorPan       SelectorNote = 79
	SelectorVolume    SelectorNote = 89
)

// Row returns the 1-8 row of the selector, bottom first.
func (s SelectorNote) Row() int {
	return (int(s) - 9) / 10
}

// SessionNote maps a logical position to its session-layout note.
// y = 9 addresses the control row.
func SessionNote(x, y int) uint8 {
	if y < 9 {
		return uint8(10*y + x)
	}
	return uint8(TopRow + x)
}

// SessionPos is the inverse of SessionNote.
func SessionPos(note uint8) (x, y int) {
	if note >= TopRow {
		return int(note) - TopRow, 9
	}
	return int(note % 10), int(note / 10)
}

// UserOneNote maps a logical position to the User 1 (drum rack) layout:
// the left half of the grid is notes 36-67, the right half 68-99, the
// selector column 100-107 top-down and the control row CC 104-111.
func UserOneNote(x, y int) uint8 {
	if y < 9 {
		switch {
		case x <= 4:
			return uint8(31 + x + 4*y)
		case x <= 8:
			return uint8(59 + x + 4*y)
		default:
			return uint8(108 - y)
		}
	}
	return uint8(TopRow + x)
}

// UserOnePos is the inverse of UserOneNote. The selector column and the
// control row share note numbers 104-107, so control must say whether the
// number arrived as a control change.
func UserOnePos(note uint8, control bool) (x, y int) {
	n := int(note)
	switch {
	case control:
		return n - TopRow, 9
	case n >= 36 && n <= 67:
		return (n-32)%4 + 1, (n - 32) / 4
	case n >= 68 && n <= 99:
		return (n-64)%4 + 5, (n - 64) / 4
	case n >= 100 && n <= 107:
		return 9, 108 - n
	}
	return 0, 0
}

// OnPad reports whether note is one of the 64 grid pads.
func OnPad(note uint8) bool {
	return note >= 11 && note < 89 && note%10 != 9 && note%10 != 0
}

// OnSurface reports whether (x, y) is a real button: the grid, the
// selector column or the control row. The (9, 9) corner has no button.
func OnSurface(x, y int) bool {
	return x >= 1 && x <= 9 && y >= 1 && y <= 9 && !(x == 9 && y == 9)
}

// Addressable reports whether note names a real button in the session
// layout.
func Addressable(note uint8) bool {
	x, y := SessionPos(note)
	return OnSurface(x, y) && SessionNote(x, y) == note
}

// AddVector moves note by (dx, dy) in the session layout without any
// bounds checking; callers check the result with OnPad.
func AddVector(note uint8, dx, dy int) uint8 {
	return uint8(int(note) + dx + 10*dy)
}
