package midi

import "fmt"

// MessageType is the high nibble of a MIDI status byte.
type MessageType uint8

const (
	NoteOff         MessageType = 0x8
	NoteOn          MessageType = 0x9
	KeyPressure     MessageType = 0xA
	ControlChange   MessageType = 0xB
	ProgramChange   MessageType = 0xC
	ChannelPressure MessageType = 0xD
	PitchBend       MessageType = 0xE
	System          MessageType = 0xF
)

func (t MessageType) String() string {
	switch t {
	case NoteOff:
		return "note-off"
	case NoteOn:
		return "note-on"
	case KeyPressure:
		return "key-pressure"
	case ControlChange:
		return "cc"
	case ProgramChange:
		return "program-change"
	case ChannelPressure:
		return "channel-pressure"
	case PitchBend:
		return "pitch-bend"
	case System:
		return "system"
	}
	return fmt.Sprintf("type(%#x)", uint8(t))
}

// Event is one decoded incoming channel message. Note and Velocity hold the
// two data bytes whatever the message type, so for a control change they are
// the controller number and its value.
type Event struct {
	Type     MessageType
	Channel  uint8 // 0-based
	Note     uint8
	Velocity uint8
}

// ProtocolError reports bytes that do not form a MIDI message.
type ProtocolError struct {
	Data   []byte
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("midi protocol: %s (% x)", e.Reason, e.Data)
}

// Decode splits a raw message into its type, channel and data bytes.
// System messages decode with only their Type set.
func Decode(b []byte) (Event, error) {
	if len(b) == 0 {
		return Event{}, &ProtocolError{Data: b, Reason: "empty message"}
	}
	t := MessageType(b[0] >> 4)
	if t < NoteOff {
		return Event{}, &ProtocolError{Data: b, Reason: "illegal message type"}
	}
	if t == System {
		return Event{Type: System}, nil
	}

	need := 3
	if t == ProgramChange || t == ChannelPressure {
		need = 2
	}
	if len(b) < need {
		return Event{}, &ProtocolError{Data: b, Reason: "short message"}
	}

	ev := Event{Type: t, Channel: b[0] & 0x0F, Note: b[1]}
	if need == 3 {
		ev.Velocity = b[2]
	}
	return ev, nil
}
