package editor

import "go-lightshow/midi"

// Palette indices used for the editor's own indicators
const (
	arrowColour         uint8 = 14
	selectedFullColour  uint8 = 14
	selectedEmptyColour uint8 = 73
	populatedColour     uint8 = 127
	selectedPageColour  uint8 = 127
	pickerExitColour    uint8 = 127
	pickerWindow              = 64
)

// updateDevice redraws the device for the current mode.
func (m *Manager) updateDevice() {
	switch m.mode {
	case ModeLayout:
		actions := []midi.Action{midi.FillAction{Colour: 0}}
		actions = append(actions, m.layoutArrows()...)
		actions = append(actions, m.layoutPads()...)
		actions = append(actions, midi.PaletteAction{Note: midi.SessionNote(9, m.page), Colour: selectedPageColour})
		m.toDevice(actions...)
	case ModeEditor:
		m.updateFrame()
	case ModePreview:
		m.toDevice(midi.FillAction{Colour: 0})
	case ModeColourPicker:
		m.toDevice(m.pickerActions()...)
	}
}

// layoutArrows lights each arrow whose direction the selection can move in.
func (m *Manager) layoutArrows() []midi.Action {
	arrows := []midi.ControlNote{midi.ControlUp, midi.ControlDown, midi.ControlLeft, midi.ControlRight}
	actions := make([]midi.Action, 0, len(arrows))
	for _, arrow := range arrows {
		dx, dy, _ := direction(arrow)
		var colour uint8
		if m.CanShiftSelectedPad(dx, dy) {
			colour = arrowColour
		}
		actions = append(actions, midi.PaletteAction{Note: uint8(arrow), Colour: colour})
	}
	return actions
}

// layoutPads is the existence map of the selected page in row-major order.
func (m *Manager) layoutPads() []midi.Action {
	actions := make([]midi.Action, 0, 64)
	for y := 1; y <= 8; y++ {
		for x := 1; x <= 8; x++ {
			actions = append(actions, m.layoutPadAction(midi.SessionNote(x, y)))
		}
	}
	return actions
}

func (m *Manager) layoutPadAction(note uint8) midi.Action {
	exists := m.currentPage().ExistsAt(note)
	var colour uint8
	switch {
	case note == m.pad && exists:
		colour = selectedFullColour
	case note == m.pad:
		colour = selectedEmptyColour
	case exists:
		colour = populatedColour
	}
	return midi.PaletteAction{Note: note, Colour: colour}
}

// pickerActions shows a 64 colour window of the palette starting at bias,
// the exit button and the arrows that can still move the window.
func (m *Manager) pickerActions() []midi.Action {
	actions := []midi.Action{midi.FillAction{Colour: 0}}
	for y := 1; y <= 8; y++ {
		for x := 1; x <= 8; x++ {
			actions = append(actions, midi.PaletteAction{
				Note:   midi.SessionNote(x, y),
				Colour: uint8((y-1)*8 + x - 1 + m.bias),
			})
		}
	}
	actions = append(actions, midi.PaletteAction{Note: uint8(midi.SelectorVolume), Colour: pickerExitColour})

	var back, forward uint8
	if m.bias > 0 {
		back = arrowColour
	}
	if m.bias < pickerWindow {
		forward = arrowColour
	}
	return append(actions,
		midi.PaletteAction{Note: uint8(midi.ControlLeft), Colour: back},
		midi.PaletteAction{Note: uint8(midi.ControlDown), Colour: back},
		midi.PaletteAction{Note: uint8(midi.ControlRight), Colour: forward},
		midi.PaletteAction{Note: uint8(midi.ControlUp), Colour: forward},
	)
}
