package editor

import (
	"fmt"
	"time"

	"go-lightshow/debug"
	"go-lightshow/lightshow"
	"go-lightshow/midi"
)

// DefaultFrameDelay is the wait given to new frames until SetFrameDelay is
// called.
const DefaultFrameDelay = 100 * time.Millisecond

// Surface is anything that can show actions: the device or an on-screen
// grid.
type Surface interface {
	PerformActions(actions ...midi.Action)
}

// Device is the Launchpad as the editor needs it.
type Device interface {
	Surface
	PerformActionsAt(at time.Time, actions ...midi.Action)
}

// Manager is the editor state machine. It owns the project and the
// selection and drives the device and the preview surface. It is not safe
// for concurrent use.
type Manager struct {
	project *lightshow.Project
	device  Device
	preview Surface

	mode  Mode
	page  int
	pad   uint8
	frame int

	held       Held
	chordFired bool // a chord fired since all controls were last released
	firedNote  uint8 // point button whose press changed mode, 0 if none

	erase         bool
	useSysex      bool
	paletteColour uint8
	sysexColour   [3]uint8
	frameDelay    time.Duration
	bias          int

	now func() time.Time
}

// NewManager returns an editor on an empty project, in layout mode with
// the bottom-left pad selected. preview may be nil.
func NewManager(preview Surface) *Manager {
	m := &Manager{
		project:    lightshow.NewProject(),
		preview:    preview,
		mode:       ModeLayout,
		page:       1,
		pad:        midi.SessionNote(1, 1),
		frameDelay: DefaultFrameDelay,
		now:        time.Now,
	}
	m.updateFrame()
	return m
}

func (m *Manager) Mode() Mode                      { return m.mode }
func (m *Manager) Page() int                       { return m.page }
func (m *Manager) SelectedPad() uint8              { return m.pad }
func (m *Manager) Frame() int                      { return m.frame }
func (m *Manager) FrameCount() int                 { return m.animation().FrameCount() }
func (m *Manager) FrameDelay() time.Duration       { return m.frameDelay }
func (m *Manager) Erase() bool                     { return m.erase }
func (m *Manager) UseSysex() bool                  { return m.useSysex }
func (m *Manager) PaletteColour() uint8            { return m.paletteColour }
func (m *Manager) SysexColour() [3]uint8           { return m.sysexColour }
func (m *Manager) Bias() int                       { return m.bias }
func (m *Manager) Held() Held                      { return m.held }
func (m *Manager) Project() *lightshow.Project     { return m.project }
func (m *Manager) Layout() [8][8]bool              { return m.currentPage().Layout() }
func (m *Manager) Animation() *lightshow.Animation { return m.animation() }

// Colour is the colour new actions are painted with.
func (m *Manager) Colour() midi.RGB {
	if m.useSysex {
		return midi.SysExToRGB(m.sysexColour[0], m.sysexColour[1], m.sysexColour[2])
	}
	return midi.Palette[m.paletteColour]
}

func (m *Manager) currentPage() *lightshow.Page {
	return m.project.Page(m.page)
}

func (m *Manager) animation() *lightshow.Animation {
	a, err := m.currentPage().AnimationAt(m.pad)
	if err != nil {
		// pad is only ever set to grid notes
		panic(err)
	}
	return a
}

// SetDevice attaches a new device, or detaches with nil. The device is
// cleared and redrawn for the current mode and held buttons are forgotten.
func (m *Manager) SetDevice(d Device) {
	m.device = d
	m.held = 0
	m.chordFired = false
	m.firedNote = 0
	if d == nil {
		return
	}
	d.PerformActions(midi.FillAction{Colour: 0})
	m.updateDevice()
}

// SetProject replaces the whole project and returns to frame 0.
func (m *Manager) SetProject(p *lightshow.Project) {
	m.project = p
	m.updateDevice()
	m.setFrame(0)
}

// LoadJSON replaces the project with a persisted one. Malformed data is
// ignored entirely and reported as false.
func (m *Manager) LoadJSON(data []byte) bool {
	p, err := lightshow.ParseProject(data)
	if err != nil {
		debug.Log("editor", "load ignored: %v", err)
		return false
	}
	m.SetProject(p)
	return true
}

// HandleButton routes one device button event.
func (m *Manager) HandleButton(ev midi.ButtonEvent) {
	switch ev.Kind {
	case midi.ButtonControl:
		if ev.Pressed {
			m.ControlPress(midi.ControlNote(ev.Note))
		} else {
			m.ControlRelease(midi.ControlNote(ev.Note))
		}
	case midi.ButtonSelector:
		if ev.Pressed {
			m.SelectorPress(midi.SelectorNote(ev.Note))
		} else {
			m.SelectorRelease(midi.SelectorNote(ev.Note))
		}
	case midi.ButtonPad:
		if ev.Pressed {
			m.PadPress(ev.Note)
		} else {
			m.PadRelease(ev.Note)
		}
	}
}

// ControlPress records the held button and fires a chord if the held set
// matches one. Otherwise arrows move the selected pad in layout mode and
// the colour window in the picker.
func (m *Manager) ControlPress(note midi.ControlNote) {
	m.held |= heldBit(note)

	if m.mode == ModeColourPicker {
		m.shiftBias(note)
		return
	}

	if cmd := m.held.Command(); cmd != CommandNone {
		m.chordFired = true
		m.run(cmd)
		return
	}

	if m.mode == ModeLayout {
		m.defaultShift(note)
	}
}

// ControlRelease clears the held button. In editor mode a release that is
// not part of a chord paints at the control's own LED.
func (m *Manager) ControlRelease(note midi.ControlNote) {
	m.held &^= heldBit(note)
	if m.mode == ModeEditor && !m.chordFired {
		m.paint(uint8(note))
	}
	if m.held == 0 {
		m.chordFired = false
	}
}

func (m *Manager) run(cmd Command) {
	switch cmd {
	case CommandModeForward:
		m.setMode(m.mode.next())
	case CommandModeBackward:
		m.setMode(m.mode.prev())
	case CommandShiftUp:
		m.defaultShift(midi.ControlUp)
	case CommandShiftDown:
		m.defaultShift(midi.ControlDown)
	case CommandShiftLeft:
		m.defaultShift(midi.ControlLeft)
	case CommandShiftRight:
		m.defaultShift(midi.ControlRight)
	case CommandFrameBack:
		m.setFrame(max(m.frame-1, 0))
	case CommandFrameForward:
		m.setFrame(min(m.frame+1, m.FrameCount()))
	case CommandColourPicker:
		m.setMode(ModeColourPicker)
	}
}

// SetMode switches mode directly, as the on-screen controls do.
func (m *Manager) SetMode(mode Mode) {
	m.setMode(mode)
}

func (m *Manager) setMode(mode Mode) {
	if mode == m.mode {
		return
	}
	debug.Log("editor", "mode %s -> %s", m.mode, mode)
	m.mode = mode
	m.updateDevice()
}

// SelectorPress switches page in layout and preview mode. VOLUME leaves
// the colour picker with erasing switched on.
func (m *Manager) SelectorPress(note midi.SelectorNote) {
	switch m.mode {
	case ModeLayout, ModePreview:
		m.switchPage(note.Row())
	case ModeColourPicker:
		if note == midi.SelectorVolume {
			m.erase = true
			m.firedNote = uint8(note)
			m.setMode(ModeEditor)
		}
	}
}

// SelectorRelease paints at the selector in editor mode.
func (m *Manager) SelectorRelease(note midi.SelectorNote) {
	m.pointReleased(uint8(note))
}

// PadPress selects, enters the editor, plays or picks a colour depending
// on the mode.
func (m *Manager) PadPress(note uint8) {
	if !midi.OnPad(note) {
		return
	}
	switch m.mode {
	case ModeLayout:
		if note == m.pad {
			m.firedNote = note
			m.setMode(ModeEditor)
			return
		}
		m.switchPad(note)
	case ModePreview:
		m.PlayAnimation(note)
	case ModeColourPicker:
		x, y := midi.SessionPos(note)
		m.SetPaletteColour(uint8((y-1)*8 + (x - 1) + m.bias))
		m.erase = false
		m.firedNote = note
		m.setMode(ModeEditor)
	}
}

// PadRelease paints at the pad in editor mode.
func (m *Manager) PadRelease(note uint8) {
	m.pointReleased(note)
}

// pointReleased paints at note unless note's own press changed mode.
func (m *Manager) pointReleased(note uint8) {
	if note == m.firedNote {
		m.firedNote = 0
		return
	}
	if m.mode == ModeEditor {
		m.paint(note)
	}
}

func (m *Manager) shiftBias(note midi.ControlNote) {
	switch note {
	case midi.ControlDown:
		m.bias = max(0, m.bias-8)
	case midi.ControlUp:
		m.bias = min(pickerWindow, m.bias+8)
	case midi.ControlLeft:
		m.bias = 0
	case midi.ControlRight:
		m.bias = pickerWindow
	default:
		return
	}
	m.updateDevice()
}

func (m *Manager) defaultShift(note midi.ControlNote) {
	dx, dy, ok := direction(note)
	if ok && m.CanShiftSelectedPad(dx, dy) {
		m.switchPad(midi.AddVector(m.pad, dx, dy))
	}
}

// CanShiftSelectedPad reports whether moving the selection by (dx, dy)
// stays on the grid.
func (m *Manager) CanShiftSelectedPad(dx, dy int) bool {
	return midi.OnPad(midi.AddVector(m.pad, dx, dy))
}

// ShiftSelectedPad moves the selection by (dx, dy).
func (m *Manager) ShiftSelectedPad(dx, dy int) error {
	if !m.CanShiftSelectedPad(dx, dy) {
		return fmt.Errorf("shift pad %d by (%d, %d): %w", m.pad, dx, dy, midi.ErrOffGrid)
	}
	m.switchPad(midi.AddVector(m.pad, dx, dy))
	return nil
}

// SelectPad selects a grid pad.
func (m *Manager) SelectPad(note uint8) error {
	if !midi.OnPad(note) {
		return fmt.Errorf("select pad %d: %w", note, midi.ErrOffGrid)
	}
	m.switchPad(note)
	return nil
}

// SelectPage selects page n, 1-based.
func (m *Manager) SelectPage(n int) error {
	if n < 1 || n > lightshow.PageCount {
		return fmt.Errorf("select page %d: %w", n, midi.ErrOffGrid)
	}
	m.switchPage(n)
	return nil
}

func (m *Manager) switchPad(note uint8) {
	old := m.pad
	m.pad = note
	if m.mode == ModeLayout {
		actions := []midi.Action{m.layoutPadAction(old)}
		actions = append(actions, m.layoutArrows()...)
		actions = append(actions, m.layoutPadAction(note))
		m.toDevice(actions...)
	}
	m.setFrame(0)
}

func (m *Manager) switchPage(n int) {
	old := m.page
	m.page = n
	if m.mode == ModeLayout {
		actions := []midi.Action{midi.PaletteAction{Note: midi.SessionNote(9, old), Colour: 0}}
		actions = append(actions, midi.PaletteAction{Note: midi.SessionNote(9, n), Colour: selectedPageColour})
		actions = append(actions, m.layoutPads()...)
		m.toDevice(actions...)
	}
	m.setFrame(0)
}

// SetFrame moves to frame n, clamped to [0, FrameCount]. FrameCount is the
// empty frame after the last one.
func (m *Manager) SetFrame(n int) {
	m.setFrame(min(max(n, 0), m.FrameCount()))
}

func (m *Manager) setFrame(n int) {
	m.frame = n
	m.updateFrame()
}

// SetFrameDelay sets the wait used for new frames and for the selected
// frame if it exists.
func (m *Manager) SetFrameDelay(d time.Duration) {
	if d < 0 {
		d = 0
	}
	m.frameDelay = d
	if a := m.animation(); m.frame < a.FrameCount() {
		a.SetFrameDuration(m.frame, d)
	}
}

func (m *Manager) SetErase(erase bool) {
	m.erase = erase
}

// SetUseSysex switches between palette and RGB painting, carrying the
// current colour over as closely as the new form allows.
func (m *Manager) SetUseSysex(use bool) {
	c := m.Colour()
	m.useSysex = use
	m.SetColour(c)
}

// SetColour picks the closest paintable colour to c.
func (m *Manager) SetColour(c midi.RGB) {
	if m.useSysex {
		m.sysexColour = midi.SysExApprox(c)
		return
	}
	if midi.Palette[m.paletteColour] == c {
		return
	}
	m.paletteColour, _ = midi.PaletteApprox(c)
}

// SetPaletteColour picks palette entry i.
func (m *Manager) SetPaletteColour(i uint8) {
	if i >= midi.PaletteSize {
		return
	}
	if m.useSysex {
		m.sysexColour = midi.SysExApprox(midi.Palette[i])
		return
	}
	m.paletteColour = i
}
