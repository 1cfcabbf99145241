package midi

import (
	"encoding/json"
	"fmt"
)

// ActionType tags an Action in its JSON form.
type ActionType string

const (
	ActionPalette ActionType = "PALETTE"
	ActionSysex   ActionType = "SYSEX"
	ActionFlash   ActionType = "FLASH"
	ActionPulse   ActionType = "PULSE"
	ActionColumn  ActionType = "COLUMN"
	ActionRow     ActionType = "ROW"
	ActionFill    ActionType = "FILL"
	ActionText    ActionType = "TYPE"
)

// Action is one instantaneous lighting change on the Launchpad.
//
// The set of implementations is closed: PaletteAction, SysexAction,
// FlashAction, PulseAction, ColumnAction, RowAction, FillAction and
// TextAction. Transparent marks the pad indicator as hollow; it is a
// display hint and never changes the colour sent to the device.
type Action interface {
	Type() ActionType
	IsTransparent() bool
	withTransparent(t bool) Action
}

// NoteAction is an Action addressed at a single note.
type NoteAction interface {
	Action
	At() uint8
}

// WithTransparent returns a copy of a with its transparency set to t.
// TextAction has no transparency and is returned unchanged.
func WithTransparent(a Action, t bool) Action {
	return a.withTransparent(t)
}

// PaletteAction lights a note with a palette colour.
type PaletteAction struct {
	Note        uint8
	Colour      uint8
	Transparent bool
}

// SysexAction lights a note with a 6-bit-per-channel RGB colour.
type SysexAction struct {
	Note        uint8
	R, G, B     uint8
	Transparent bool
}

// FlashAction flashes a note. When Alt is set the pad alternates between
// Colour and *Alt, otherwise between Colour and off.
type FlashAction struct {
	Note        uint8
	Colour      uint8
	Alt         *uint8
	Transparent bool
}

// PulseAction pulses a note with a palette colour.
type PulseAction struct {
	Note        uint8
	Colour      uint8
	Transparent bool
}

// ColumnAction lights column 1-9 with a palette colour.
type ColumnAction struct {
	Column      uint8
	Colour      uint8
	Transparent bool
}

// RowAction lights row 1-9 with a palette colour.
type RowAction struct {
	Row         uint8
	Colour      uint8
	Transparent bool
}

// FillAction lights every LED with a palette colour.
type FillAction struct {
	Colour      uint8
	Transparent bool
}

// TextAction scrolls text across the grid.
type TextAction struct {
	Colour  uint8
	Text    string
	Looping bool
}

func (PaletteAction) Type() ActionType { return ActionPalette }
func (SysexAction) Type() ActionType   { return ActionSysex }
func (FlashAction) Type() ActionType   { return ActionFlash }
func (PulseAction) Type() ActionType   { return ActionPulse }
func (ColumnAction) Type() ActionType  { return ActionColumn }
func (RowAction) Type() ActionType     { return ActionRow }
func (FillAction) Type() ActionType    { return ActionFill }
func (TextAction) Type() ActionType    { return ActionText }

func (a PaletteAction) IsTransparent() bool { return a.Transparent }
func (a SysexAction) IsTransparent() bool   { return a.Transparent }
func (a FlashAction) IsTransparent() bool   { return a.Transparent }
func (a PulseAction) IsTransparent() bool   { return a.Transparent }
func (a ColumnAction) IsTransparent() bool  { return a.Transparent }
func (a RowAction) IsTransparent() bool     { return a.Transparent }
func (a FillAction) IsTransparent() bool    { return a.Transparent }
func (TextAction) IsTransparent() bool      { return false }

func (a PaletteAction) withTransparent(t bool) Action {
	a.Transparent = t
	return a
}
func (a SysexAction) withTransparent(t bool) Action {
	a.Transparent = t
	return a
}
func (a FlashAction) withTransparent(t bool) Action {
	a.Transparent = t
	return a
}
func (a PulseAction) withTransparent(t bool) Action {
	a.Transparent = t
	return a
}
func (a ColumnAction) withTransparent(t bool) Action {
	a.Transparent = t
	return a
}
func (a RowAction) withTransparent(t bool) Action {
	a.Transparent = t
	return a
}
func (a FillAction) withTransparent(t bool) Action {
	a.Transparent = t
	return a
}
func (a TextAction) withTransparent(bool) Action { return a }

func (a PaletteAction) At() uint8 { return a.Note }
func (a SysexAction) At() uint8   { return a.Note }
func (a FlashAction) At() uint8   { return a.Note }
func (a PulseAction) At() uint8   { return a.Note }

// wireAction is the JSON shape shared by every action type. Pointer fields
// let the decoder tell a missing field from a zero value.
type wireAction struct {
	Type        ActionType `json:"type"`
	Note        *uint8     `json:"note,omitempty"`
	Colour      *uint8     `json:"colour,omitempty"`
	Colour2     *uint8     `json:"colour2,omitempty"`
	R           *uint8     `json:"r,omitempty"`
	G           *uint8     `json:"g,omitempty"`
	B           *uint8     `json:"b,omitempty"`
	Column      *uint8     `json:"column,omitempty"`
	Row         *uint8     `json:"row,omitempty"`
	Text        *string    `json:"text,omitempty"`
	Looping     *bool      `json:"looping,omitempty"`
	Transparent bool       `json:"transparent,omitempty"`
}

func u8(v uint8) *uint8 { return &v }

func (a PaletteAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireAction{Type: ActionPalette, Note: u8(a.Note), Colour: u8(a.Colour), Transparent: a.Transparent})
}

func (a SysexAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireAction{Type: ActionSysex, Note: u8(a.Note), R: u8(a.R), G: u8(a.G), B: u8(a.B), Transparent: a.Transparent})
}

func (a FlashAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireAction{Type: ActionFlash, Note: u8(a.Note), Colour: u8(a.Colour), Colour2: a.Alt, Transparent: a.Transparent})
}

func (a PulseAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireAction{Type: ActionPulse, Note: u8(a.Note), Colour: u8(a.Colour), Transparent: a.Transparent})
}

func (a ColumnAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireAction{Type: ActionColumn, Column: u8(a.Column), Colour: u8(a.Colour), Transparent: a.Transparent})
}

func (a RowAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireAction{Type: ActionRow, Row: u8(a.Row), Colour: u8(a.Colour), Transparent: a.Transparent})
}

func (a FillAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireAction{Type: ActionFill, Colour: u8(a.Colour), Transparent: a.Transparent})
}

func (a TextAction) MarshalJSON() ([]byte, error) {
	looping := a.Looping
	return json.Marshal(wireAction{Type: ActionText, Colour: u8(a.Colour), Text: &a.Text, Looping: &looping})
}

// ParseAction decodes one JSON action object. Every field the action type
// needs must be present and in range.
func ParseAction(data []byte) (Action, error) {
	var w wireAction
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}

	switch w.Type {
	case ActionPalette, ActionFlash, ActionPulse:
		if err := requireNote(w.Note); err != nil {
			return nil, fmt.Errorf("%s: %w", w.Type, err)
		}
		if err := requireColour(w.Colour); err != nil {
			return nil, fmt.Errorf("%s: %w", w.Type, err)
		}
		switch w.Type {
		case ActionPalette:
			return PaletteAction{Note: *w.Note, Colour: *w.Colour, Transparent: w.Transparent}, nil
		case ActionPulse:
			return PulseAction{Note: *w.Note, Colour: *w.Colour, Transparent: w.Transparent}, nil
		}
		if w.Colour2 != nil && *w.Colour2 >= PaletteSize {
			return nil, fmt.Errorf("FLASH: colour2 %d out of range", *w.Colour2)
		}
		return FlashAction{Note: *w.Note, Colour: *w.Colour, Alt: w.Colour2, Transparent: w.Transparent}, nil

	case ActionSysex:
		if err := requireNote(w.Note); err != nil {
			return nil, fmt.Errorf("SYSEX: %w", err)
		}
		for _, c := range []*uint8{w.R, w.G, w.B} {
			if c == nil {
				return nil, fmt.Errorf("SYSEX: missing channel")
			}
			if *c > SysexMax {
				return nil, fmt.Errorf("SYSEX: channel %d out of range", *c)
			}
		}
		return SysexAction{Note: *w.Note, R: *w.R, G: *w.G, B: *w.B, Transparent: w.Transparent}, nil

	case ActionColumn:
		if w.Column == nil || *w.Column < 1 || *w.Column > 9 {
			return nil, fmt.Errorf("COLUMN: bad column")
		}
		if err := requireColour(w.Colour); err != nil {
			return nil, fmt.Errorf("COLUMN: %w", err)
		}
		return ColumnAction{Column: *w.Column, Colour: *w.Colour, Transparent: w.Transparent}, nil

	case ActionRow:
		if w.Row == nil || *w.Row < 1 || *w.Row > 9 {
			return nil, fmt.Errorf("ROW: bad row")
		}
		if err := requireColour(w.Colour); err != nil {
			return nil, fmt.Errorf("ROW: %w", err)
		}
		return RowAction{Row: *w.Row, Colour: *w.Colour, Transparent: w.Transparent}, nil

	case ActionFill:
		if err := requireColour(w.Colour); err != nil {
			return nil, fmt.Errorf("FILL: %w", err)
		}
		return FillAction{Colour: *w.Colour, Transparent: w.Transparent}, nil

	case ActionText:
		if err := requireColour(w.Colour); err != nil {
			return nil, fmt.Errorf("TYPE: %w", err)
		}
		if w.Text == nil || w.Looping == nil {
			return nil, fmt.Errorf("TYPE: missing text or looping")
		}
		return TextAction{Colour: *w.Colour, Text: *w.Text, Looping: *w.Looping}, nil
	}

	return nil, fmt.Errorf("unknown action type %q", w.Type)
}

func requireNote(n *uint8) error {
	if n == nil {
		return fmt.Errorf("missing note")
	}
	if !Addressable(*n) {
		return fmt.Errorf("note %d: %w", *n, ErrOffGrid)
	}
	return nil
}

func requireColour(c *uint8) error {
	if c == nil {
		return fmt.Errorf("missing colour")
	}
	if *c >= PaletteSize {
		return fmt.Errorf("colour %d out of range", *c)
	}
	return nil
}
