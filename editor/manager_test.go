package editor

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-lightshow/lightshow"
	"go-lightshow/midi"
)

type surface struct {
	batches [][]midi.Action
}

func (s *surface) PerformActions(actions ...midi.Action) {
	s.batches = append(s.batches, append([]midi.Action(nil), actions...))
}

func (s *surface) last() []midi.Action {
	if len(s.batches) == 0 {
		return nil
	}
	return s.batches[len(s.batches)-1]
}

func (s *surface) reset() {
	s.batches = nil
}

type scheduled struct {
	at      time.Time
	actions []midi.Action
}

type device struct {
	surface
	scheduled []scheduled
}

func (d *device) PerformActionsAt(at time.Time, actions ...midi.Action) {
	d.scheduled = append(d.scheduled, scheduled{at: at, actions: actions})
}

var epoch = time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)

func newTestManager(t *testing.T) (*Manager, *device, *surface) {
	t.Helper()
	preview := &surface{}
	m := NewManager(preview)
	m.now = func() time.Time { return epoch }
	dev := &device{}
	m.SetDevice(dev)
	dev.reset()
	preview.reset()
	return m, dev, preview
}

func press(m *Manager, kind midi.ButtonKind, note uint8) {
	m.HandleButton(midi.ButtonEvent{Kind: kind, Note: note, Pressed: true})
}

func release(m *Manager, kind midi.ButtonKind, note uint8) {
	m.HandleButton(midi.ButtonEvent{Kind: kind, Note: note})
}

func tap(m *Manager, kind midi.ButtonKind, note uint8) {
	press(m, kind, note)
	release(m, kind, note)
}

func chord(m *Manager, a, b midi.ControlNote) {
	press(m, midi.ButtonControl, uint8(a))
	press(m, midi.ButtonControl, uint8(b))
	release(m, midi.ButtonControl, uint8(b))
	release(m, midi.ButtonControl, uint8(a))
}

// enterEditor opens the selected pad by pressing it a second time.
func enterEditor(t *testing.T, m *Manager) {
	t.Helper()
	tap(m, midi.ButtonPad, m.SelectedPad())
	require.Equal(t, ModeEditor, m.Mode())
}

func TestNewManager(t *testing.T) {
	preview := &surface{}
	m := NewManager(preview)

	assert.Equal(t, ModeLayout, m.Mode())
	assert.Equal(t, 1, m.Page())
	assert.Equal(t, uint8(11), m.SelectedPad())
	assert.Equal(t, 0, m.Frame())
	assert.Equal(t, DefaultFrameDelay, m.FrameDelay())
	assert.Equal(t, [][]midi.Action{{midi.FillAction{Colour: 0, Transparent: true}}}, preview.batches)
}

func TestPaintOnEmptyAnimation(t *testing.T) {
	m, dev, preview := newTestManager(t)
	enterEditor(t, m)
	m.SetFrameDelay(200 * time.Millisecond)
	m.SetPaletteColour(5)
	dev.reset()

	tap(m, midi.ButtonPad, 21)

	a := m.Animation()
	require.Equal(t, 1, a.FrameCount())
	assert.Equal(t, 200*time.Millisecond, a.FrameDuration(0))
	assert.Equal(t, []midi.Action{midi.PaletteAction{Note: 21, Colour: 5}}, a.Frame(0).Actions)
	assert.Equal(t, []midi.Action{
		midi.FillAction{Colour: 0, Transparent: true},
		midi.PaletteAction{Note: 21, Colour: 5},
	}, a.FrameState(0))

	assert.Equal(t, [][]midi.Action{{midi.PaletteAction{Note: 21, Colour: 5}}}, dev.batches)
	assert.Equal(t, []midi.Action{midi.PaletteAction{Note: 21, Colour: 5}}, preview.last())
}

func TestPaintOnlyOnRelease(t *testing.T) {
	m, _, _ := newTestManager(t)
	enterEditor(t, m)

	press(m, midi.ButtonPad, 21)
	assert.False(t, m.Animation().Exists())
	release(m, midi.ButtonPad, 21)
	assert.True(t, m.Animation().Exists())
}

func TestPaintWithSysex(t *testing.T) {
	m, _, _ := newTestManager(t)
	enterEditor(t, m)
	m.SetUseSysex(true)
	m.SetColour(midi.RGB{R: 255, G: 0, B: 0})

	tap(m, midi.ButtonPad, 21)
	assert.Equal(t, []midi.Action{midi.SysexAction{Note: 21, R: 63, G: 0, B: 0}}, m.Animation().Frame(0).Actions)
}

func TestPaintReplacesOnSameNote(t *testing.T) {
	m, _, _ := newTestManager(t)
	enterEditor(t, m)

	m.SetPaletteColour(5)
	tap(m, midi.ButtonPad, 21)
	m.SetPaletteColour(6)
	tap(m, midi.ButtonPad, 21)

	assert.Equal(t, []midi.Action{midi.PaletteAction{Note: 21, Colour: 6}}, m.Animation().Frame(0).Actions)
}

func TestPaintControlAndSelector(t *testing.T) {
	m, _, _ := newTestManager(t)
	enterEditor(t, m)
	m.SetPaletteColour(9)

	tap(m, midi.ButtonControl, uint8(midi.ControlUp))
	tap(m, midi.ButtonSelector, uint8(midi.SelectorRecordArm))

	assert.Equal(t, []midi.Action{
		midi.PaletteAction{Note: 104, Colour: 9},
		midi.PaletteAction{Note: 19, Colour: 9},
	}, m.Animation().Frame(0).Actions)
}

func TestModeEntryPressNeverPaints(t *testing.T) {
	m, _, _ := newTestManager(t)
	m.SetPaletteColour(5)

	press(m, midi.ButtonPad, 11)
	require.Equal(t, ModeEditor, m.Mode())
	tap(m, midi.ButtonSelector, uint8(midi.SelectorSolo))
	release(m, midi.ButtonPad, 11)

	assert.Equal(t, []midi.Action{midi.PaletteAction{Note: 29, Colour: 5}}, m.Animation().Frame(0).Actions)
}

func TestPaintRejectsCorner(t *testing.T) {
	m, _, _ := newTestManager(t)
	require.ErrorIs(t, m.Paint(99), midi.ErrOffGrid)
	require.NoError(t, m.Paint(11))
}

func TestEraseVirtualFrameIsNoop(t *testing.T) {
	m, dev, _ := newTestManager(t)
	enterEditor(t, m)
	m.SetErase(true)
	dev.reset()

	tap(m, midi.ButtonPad, 21)
	assert.False(t, m.Animation().Exists())
	assert.Empty(t, dev.batches)
}

func TestErasePrunesTrailingFrames(t *testing.T) {
	m, _, _ := newTestManager(t)
	enterEditor(t, m)

	tap(m, midi.ButtonPad, 21)
	m.SetFrame(1)
	tap(m, midi.ButtonPad, 22)
	m.SetFrame(2)
	tap(m, midi.ButtonPad, 23)
	require.Equal(t, 3, m.FrameCount())

	// clearing a middle frame leaves it in place
	m.SetErase(true)
	m.SetFrame(1)
	tap(m, midi.ButtonPad, 22)
	assert.Equal(t, 3, m.FrameCount())
	assert.Equal(t, 1, m.Frame())

	// clearing the last frame drops it and the empty one before it
	m.SetFrame(2)
	tap(m, midi.ButtonPad, 23)
	assert.Equal(t, 1, m.FrameCount())
	assert.Equal(t, 0, m.Frame())

	tap(m, midi.ButtonPad, 21)
	assert.Equal(t, 0, m.FrameCount())
	assert.Equal(t, 0, m.Frame())
	assert.False(t, m.Animation().Exists())
}

func TestEraseUnderRegionLeavesOverride(t *testing.T) {
	m, _, _ := newTestManager(t)
	p := lightshow.NewProject()
	require.NoError(t, p.Page(1).SetAnimation(1, 1, lightshow.NewAnimation(
		lightshow.NewFrame(0, midi.FillAction{Colour: 3}, midi.PaletteAction{Note: 21, Colour: 5}),
	)))
	m.SetProject(p)
	enterEditor(t, m)
	m.SetErase(true)

	tap(m, midi.ButtonPad, 21)

	assert.Equal(t, []midi.Action{
		midi.FillAction{Colour: 3},
		midi.PaletteAction{Note: 21, Colour: 0, Transparent: true},
	}, m.Animation().Frame(0).Actions)
	assert.Equal(t, 1, m.FrameCount())
}

func TestChordsDoNotPaint(t *testing.T) {
	m, _, _ := newTestManager(t)

	chord(m, midi.ControlSession, midi.ControlUserTwo)
	assert.Equal(t, ModeEditor, m.Mode())
	assert.False(t, m.Animation().Exists())
	assert.Zero(t, m.Held())

	chord(m, midi.ControlSession, midi.ControlUserTwo)
	assert.Equal(t, ModePreview, m.Mode())
	chord(m, midi.ControlSession, midi.ControlUserTwo)
	assert.Equal(t, ModeLayout, m.Mode())
	chord(m, midi.ControlSession, midi.ControlUserOne)
	assert.Equal(t, ModePreview, m.Mode())
}

func TestChordFiresOnce(t *testing.T) {
	m, _, _ := newTestManager(t)
	m.SelectPad(44)

	press(m, midi.ButtonControl, uint8(midi.ControlSession))
	press(m, midi.ButtonControl, uint8(midi.ControlUp))
	assert.Equal(t, uint8(54), m.SelectedPad())

	// releasing one half leaves a held set that is not a chord
	release(m, midi.ButtonControl, uint8(midi.ControlUp))
	assert.Equal(t, uint8(54), m.SelectedPad())
	release(m, midi.ButtonControl, uint8(midi.ControlSession))
	assert.Zero(t, m.Held())
}

func TestFrameChords(t *testing.T) {
	m, _, _ := newTestManager(t)
	enterEditor(t, m)
	tap(m, midi.ButtonPad, 21)

	chord(m, midi.ControlMixer, midi.ControlRight)
	assert.Equal(t, 1, m.Frame())
	chord(m, midi.ControlMixer, midi.ControlRight)
	assert.Equal(t, 1, m.Frame(), "stops at the empty frame after the last")

	chord(m, midi.ControlMixer, midi.ControlLeft)
	assert.Equal(t, 0, m.Frame())
	chord(m, midi.ControlMixer, midi.ControlLeft)
	assert.Equal(t, 0, m.Frame())
	assert.Equal(t, 1, m.FrameCount())
}

func TestEmptyFrameShowsHollowState(t *testing.T) {
	m, dev, _ := newTestManager(t)
	enterEditor(t, m)
	tap(m, midi.ButtonPad, 21)
	dev.reset()

	m.SetFrame(1)
	assert.Equal(t, []midi.Action{
		midi.FillAction{Colour: 0, Transparent: true},
		midi.PaletteAction{Note: 21, Colour: 0, Transparent: true},
	}, dev.last())
}

func TestFrameDelayFollowsFrame(t *testing.T) {
	m, _, _ := newTestManager(t)
	enterEditor(t, m)
	m.SetFrameDelay(300 * time.Millisecond)
	tap(m, midi.ButtonPad, 21)

	m.SetFrame(1)
	m.SetFrameDelay(50 * time.Millisecond)
	m.SetFrame(0)
	assert.Equal(t, 300*time.Millisecond, m.FrameDelay())

	m.SetFrameDelay(400 * time.Millisecond)
	assert.Equal(t, 400*time.Millisecond, m.Animation().FrameDuration(0))
}

func TestLayoutArrowsMovePad(t *testing.T) {
	m, dev, _ := newTestManager(t)

	tap(m, midi.ButtonControl, uint8(midi.ControlLeft))
	assert.Equal(t, uint8(11), m.SelectedPad())
	assert.Empty(t, dev.batches)

	tap(m, midi.ButtonControl, uint8(midi.ControlUp))
	assert.Equal(t, uint8(21), m.SelectedPad())
	assert.Equal(t, []midi.Action{
		midi.PaletteAction{Note: 11, Colour: 0},
		midi.PaletteAction{Note: 104, Colour: 14},
		midi.PaletteAction{Note: 105, Colour: 14},
		midi.PaletteAction{Note: 106, Colour: 0},
		midi.PaletteAction{Note: 107, Colour: 14},
		midi.PaletteAction{Note: 21, Colour: 73},
	}, dev.batches[0])
}

func TestShiftSelectedPad(t *testing.T) {
	m, _, _ := newTestManager(t)

	assert.False(t, m.CanShiftSelectedPad(-1, 0))
	assert.True(t, m.CanShiftSelectedPad(7, 7))
	require.ErrorIs(t, m.ShiftSelectedPad(0, -1), midi.ErrOffGrid)
	assert.Equal(t, uint8(11), m.SelectedPad())

	require.NoError(t, m.ShiftSelectedPad(7, 7))
	assert.Equal(t, uint8(88), m.SelectedPad())
	assert.False(t, m.CanShiftSelectedPad(1, 0))
}

func TestSelectPage(t *testing.T) {
	m, dev, _ := newTestManager(t)

	tap(m, midi.ButtonSelector, uint8(midi.SelectorMute))
	assert.Equal(t, 3, m.Page())

	batch := dev.batches[0]
	require.Len(t, batch, 66)
	assert.Equal(t, midi.PaletteAction{Note: 19, Colour: 0}, batch[0])
	assert.Equal(t, midi.PaletteAction{Note: 39, Colour: 127}, batch[1])
	assert.Equal(t, midi.PaletteAction{Note: 11, Colour: 73}, batch[2])
	assert.Equal(t, midi.PaletteAction{Note: 88, Colour: 0}, batch[65])

	require.ErrorIs(t, m.SelectPage(9), midi.ErrOffGrid)
	require.NoError(t, m.SelectPage(8))
	assert.Equal(t, 8, m.Page())
}

func TestLayoutShowsExistingAnimations(t *testing.T) {
	m, dev, _ := newTestManager(t)
	enterEditor(t, m)
	tap(m, midi.ButtonPad, 21)
	chord(m, midi.ControlSession, midi.ControlUserOne)
	require.Equal(t, ModeLayout, m.Mode())

	batch := dev.last()
	require.Len(t, batch, 1+4+64+1)
	assert.Equal(t, midi.FillAction{Colour: 0}, batch[0])
	assert.Equal(t, midi.PaletteAction{Note: 11, Colour: 14}, batch[5])
	assert.Equal(t, midi.PaletteAction{Note: 12, Colour: 0}, batch[6])
	assert.Equal(t, midi.PaletteAction{Note: 19, Colour: 127}, batch[69])
	assert.Equal(t, [8][8]bool{0: {0: true}}, m.Layout())

	m.SelectPad(12)
	assert.Equal(t, midi.PaletteAction{Note: 11, Colour: 127}, dev.last()[0])
}

func TestColourPicker(t *testing.T) {
	m, dev, _ := newTestManager(t)
	enterEditor(t, m)

	chord(m, midi.ControlSession, midi.ControlMixer)
	require.Equal(t, ModeColourPicker, m.Mode())

	batch := dev.last()
	require.Len(t, batch, 1+64+1+4)
	assert.Equal(t, midi.PaletteAction{Note: 11, Colour: 0}, batch[1])
	assert.Equal(t, midi.PaletteAction{Note: 88, Colour: 63}, batch[64])
	assert.Equal(t, midi.PaletteAction{Note: 89, Colour: 127}, batch[65])
	assert.Equal(t, midi.PaletteAction{Note: 106, Colour: 0}, batch[66])
	assert.Equal(t, midi.PaletteAction{Note: 104, Colour: 14}, batch[69])

	tap(m, midi.ButtonControl, uint8(midi.ControlUp))
	assert.Equal(t, 8, m.Bias())
	tap(m, midi.ButtonControl, uint8(midi.ControlRight))
	assert.Equal(t, 64, m.Bias())
	tap(m, midi.ButtonControl, uint8(midi.ControlUp))
	assert.Equal(t, 64, m.Bias())
	tap(m, midi.ButtonControl, uint8(midi.ControlDown))
	assert.Equal(t, 56, m.Bias())
	assert.False(t, m.Animation().Exists(), "arrows in the picker do not paint")

	m.SetErase(true)
	tap(m, midi.ButtonPad, 23)
	assert.Equal(t, ModeEditor, m.Mode())
	assert.Equal(t, uint8(56+10), m.PaletteColour())
	assert.False(t, m.Erase())
	assert.False(t, m.Animation().Exists(), "the picking press does not paint")
}

func TestColourPickerExitToErase(t *testing.T) {
	m, _, _ := newTestManager(t)
	enterEditor(t, m)
	chord(m, midi.ControlSession, midi.ControlMixer)

	tap(m, midi.ButtonSelector, uint8(midi.SelectorSolo))
	assert.Equal(t, ModeColourPicker, m.Mode())

	tap(m, midi.ButtonSelector, uint8(midi.SelectorVolume))
	assert.Equal(t, ModeEditor, m.Mode())
	assert.True(t, m.Erase())
	assert.False(t, m.Animation().Exists())
}

func TestPreviewPlaysAnimation(t *testing.T) {
	m, dev, _ := newTestManager(t)
	p := lightshow.NewProject()
	require.NoError(t, p.Page(1).SetAnimation(2, 3, lightshow.NewAnimation(
		lightshow.NewFrame(0, midi.PaletteAction{Note: 11, Colour: 1}),
		lightshow.NewFrame(100*time.Millisecond, midi.PaletteAction{Note: 11, Colour: 2}),
		lightshow.NewFrame(50*time.Millisecond, midi.RowAction{Row: 1, Colour: 3}),
	)))
	m.SetProject(p)
	chord(m, midi.ControlSession, midi.ControlUserOne)
	require.Equal(t, ModePreview, m.Mode())
	assert.Equal(t, []midi.Action{midi.FillAction{Colour: 0}}, dev.last())

	tap(m, midi.ButtonPad, 32)

	require.Len(t, dev.scheduled, 3)
	assert.Equal(t, epoch, dev.scheduled[0].at)
	assert.Equal(t, []midi.Action{midi.PaletteAction{Note: 11, Colour: 1}}, dev.scheduled[0].actions)
	assert.Equal(t, epoch.Add(100*time.Millisecond), dev.scheduled[1].at)
	assert.Equal(t, []midi.Action{midi.PaletteAction{Note: 11, Colour: 2}}, dev.scheduled[1].actions)
	assert.Equal(t, epoch.Add(150*time.Millisecond), dev.scheduled[2].at)
	assert.Len(t, dev.scheduled[2].actions, 9)

	tap(m, midi.ButtonPad, 33)
	assert.Len(t, dev.scheduled, 3, "empty pads play nothing")
}

func TestPreviewSwitchesPage(t *testing.T) {
	m, _, _ := newTestManager(t)
	chord(m, midi.ControlSession, midi.ControlUserOne)

	tap(m, midi.ButtonSelector, uint8(midi.SelectorVolume))
	assert.Equal(t, 8, m.Page())
}

func TestSetDeviceRedraws(t *testing.T) {
	m, _, _ := newTestManager(t)
	press(m, midi.ButtonControl, uint8(midi.ControlSession))
	require.NotZero(t, m.Held())

	dev := &device{}
	m.SetDevice(dev)
	assert.Zero(t, m.Held())
	require.Len(t, dev.batches, 2)
	assert.Equal(t, []midi.Action{midi.FillAction{Colour: 0}}, dev.batches[0])
	assert.Equal(t, midi.FillAction{Colour: 0}, dev.batches[1][0])

	m.SetDevice(nil)
	tap(m, midi.ButtonControl, uint8(midi.ControlUp))
	assert.Equal(t, uint8(21), m.SelectedPad())
}

func TestLoadJSON(t *testing.T) {
	m, _, _ := newTestManager(t)
	enterEditor(t, m)
	tap(m, midi.ButtonPad, 21)

	assert.False(t, m.LoadJSON([]byte(`[[]]`)))
	assert.True(t, m.Animation().Exists(), "a bad load changes nothing")

	p := lightshow.NewProject()
	require.NoError(t, p.Page(1).SetAnimation(1, 1, lightshow.NewAnimation(
		lightshow.NewFrame(0, midi.PaletteAction{Note: 55, Colour: 7}),
	)))
	data, err := json.Marshal(p)
	require.NoError(t, err)

	assert.True(t, m.LoadJSON(data))
	assert.Equal(t, []midi.Action{midi.PaletteAction{Note: 55, Colour: 7}}, m.Animation().Frame(0).Actions)
	assert.Equal(t, 0, m.Frame())
}

func TestSetUseSysexKeepsColour(t *testing.T) {
	m, _, _ := newTestManager(t)
	m.SetColour(midi.RGB{R: 255, G: 0, B: 0})
	palette := m.PaletteColour()

	m.SetUseSysex(true)
	assert.Equal(t, midi.SysExApprox(midi.Palette[palette]), m.SysexColour())

	m.SetUseSysex(false)
	assert.Equal(t, palette, m.PaletteColour())
}

func TestSetModeRedrawsOnce(t *testing.T) {
	m, dev, _ := newTestManager(t)

	m.SetMode(ModeLayout)
	assert.Empty(t, dev.batches)

	m.SetMode(ModePreview)
	assert.Equal(t, [][]midi.Action{{midi.FillAction{Colour: 0}}}, dev.batches)
}
