package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"
)

// Launchpad MK2 sysex framing: F0 00 20 29 02 18 <command> <payload> F7
var sysexHeader = []byte{0xF0, 0x00, 0x20, 0x29, 0x02, 0x18}

const sysexFooter byte = 0xF7

// Sysex commands
const (
	cmdRGB      byte = 0x0B
	cmdColumn   byte = 0x0C
	cmdRow      byte = 0x0D
	cmdFill     byte = 0x0E
	cmdText     byte = 0x14
	cmdTextDone byte = 0x15
	cmdLayout   byte = 0x22
)

// LED channels (1-based, as the MK2 manual numbers them)
const (
	ChannelPalette uint8 = 1
	ChannelFlash   uint8 = 2
	ChannelPulse   uint8 = 3
)

// textDone is what the device sends back once a non-looping text scroll
// has finished.
var textDone = sysex(cmdTextDone)

func sysex(cmd byte, payload ...byte) gomidi.Message {
	msg := make([]byte, 0, len(sysexHeader)+len(payload)+2)
	msg = append(msg, sysexHeader...)
	msg = append(msg, cmd)
	msg = append(msg, payload...)
	return gomidi.Message(append(msg, sysexFooter))
}

// PaletteMessage builds the three-byte LED message for note on the given
// 1-based channel. Control row notes use a control change status, every
// other note a note-on.
func PaletteMessage(channel, note, colour uint8) gomidi.Message {
	status := byte(0x90)
	if note > TopRow {
		status = 0xB0
	}
	return gomidi.Message{status + (channel - 1), note, colour}
}

// Encode translates one action into the messages that realise it on the
// device.
func Encode(a Action) []gomidi.Message {
	switch a := a.(type) {
	case PaletteAction:
		return []gomidi.Message{PaletteMessage(ChannelPalette, a.Note, a.Colour)}
	case FlashAction:
		if a.Alt != nil {
			return []gomidi.Message{
				PaletteMessage(ChannelPalette, a.Note, a.Colour),
				PaletteMessage(ChannelFlash, a.Note, *a.Alt),
			}
		}
		return []gomidi.Message{PaletteMessage(ChannelFlash, a.Note, a.Colour)}
	case PulseAction:
		return []gomidi.Message{PaletteMessage(ChannelPulse, a.Note, a.Colour)}
	case SysexAction:
		return []gomidi.Message{sysex(cmdRGB, a.Note, a.R, a.G, a.B)}
	case ColumnAction:
		return []gomidi.Message{sysex(cmdColumn, a.Column, a.Colour)}
	case RowAction:
		return []gomidi.Message{sysex(cmdRow, a.Row, a.Colour)}
	case FillAction:
		return []gomidi.Message{sysex(cmdFill, a.Colour)}
	case TextAction:
		return []gomidi.Message{sysex(cmdText, textPayload(a)...)}
	}
	return nil
}

func textPayload(a TextAction) []byte {
	payload := []byte{a.Colour, 0}
	if a.Looping {
		payload[1] = 1
	}
	for _, r := range a.Text {
		if r > 0x7F {
			r = '?'
		}
		payload = append(payload, byte(r))
	}
	return payload
}

// selectSessionLayout puts the device in the session layout that
// SessionNote describes.
func selectSessionLayout() gomidi.Message {
	return sysex(cmdLayout, 0x00)
}
