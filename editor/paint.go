package editor

import (
	"fmt"
	"time"

	"go-lightshow/debug"
	"go-lightshow/lightshow"
	"go-lightshow/midi"
)

// Paint applies the current colour, or erases, at note on the selected
// frame. Painting on the empty frame after the last one appends a frame
// first; erasing there does nothing.
func (m *Manager) Paint(note uint8) error {
	if !midi.Addressable(note) {
		return fmt.Errorf("paint note %d: %w", note, midi.ErrOffGrid)
	}
	m.paint(note)
	return nil
}

func (m *Manager) paint(note uint8) {
	a := m.animation()
	if m.erase {
		m.eraseAt(a, note)
		return
	}

	if m.frame == a.FrameCount() {
		a.AddEmptyFrame(m.frameDelay)
	}

	var action midi.NoteAction
	if m.useSysex {
		c := m.sysexColour
		action = midi.SysexAction{Note: note, R: c[0], G: c[1], B: c[2]}
	} else {
		action = midi.PaletteAction{Note: note, Colour: m.paletteColour}
	}
	if err := a.PutActionOnFrame(action, m.frame); err != nil {
		debug.Log("editor", "paint %d: %v", note, err)
		return
	}
	m.updateFrameAtNote(note)
}

func (m *Manager) eraseAt(a *lightshow.Animation, note uint8) {
	frame := m.frame
	if frame >= a.FrameCount() {
		return
	}
	if err := a.RemoveActionOnFrameAt(note, frame); err != nil {
		debug.Log("editor", "erase %d: %v", note, err)
		return
	}

	// a row, column or fill in this frame still lights the cell
	if _, covered := a.NoteDelta(note, frame-1, frame); covered {
		if err := a.PutActionOnFrame(midi.PaletteAction{Note: note, Colour: 0, Transparent: true}, frame); err != nil {
			debug.Log("editor", "erase %d: %v", note, err)
		}
	}

	if frame != a.FrameCount()-1 {
		m.updateFrameAtNote(note)
		return
	}

	// trailing empty frames are dropped
	for a.Frame(frame).Empty() {
		a.RemoveFrame()
		frame--
		if frame < 0 {
			frame = 0
			break
		}
	}
	m.setFrame(frame)
}

// updateFrame shows the selected frame. The empty frame after the last one
// shows the last frame hollowed out.
func (m *Manager) updateFrame() {
	a := m.animation()
	count := a.FrameCount()
	frame := min(m.frame, count-1)
	actions := a.FrameState(frame)
	if m.frame == count {
		for i, action := range actions {
			actions[i] = midi.WithTransparent(action, true)
		}
	} else {
		m.frameDelay = a.FrameDuration(m.frame)
	}

	m.toPreview(actions...)
	if m.mode == ModeEditor {
		m.toDevice(actions...)
	}
}

func (m *Manager) updateFrameAtNote(note uint8) {
	action := m.animation().NoteState(note, m.frame)
	m.toPreview(action)
	if m.mode == ModeEditor {
		m.toDevice(action)
	}
}

// PlayAnimation schedules the change made by each frame of the animation at
// note on the device. Waits accumulate, so frame i shows after the sum of
// the durations of frames 0 through i.
func (m *Manager) PlayAnimation(note uint8) error {
	a, err := m.currentPage().AnimationAt(note)
	if err != nil {
		return fmt.Errorf("play: %w", err)
	}
	if m.device == nil {
		return nil
	}
	start := m.now()
	var offset time.Duration
	for i := 0; i < a.FrameCount(); i++ {
		offset += a.FrameDuration(i)
		m.device.PerformActionsAt(start.Add(offset), a.FrameDelta(i-1, i)...)
	}
	return nil
}

func (m *Manager) toDevice(actions ...midi.Action) {
	if m.device != nil && len(actions) > 0 {
		m.device.PerformActions(actions...)
	}
}

func (m *Manager) toPreview(actions ...midi.Action) {
	if m.preview != nil && len(actions) > 0 {
		m.preview.PerformActions(actions...)
	}
}
