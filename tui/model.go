package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Southclaws/fault/fmsg"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-lightshow/config"
	"go-lightshow/debug"
	"go-lightshow/editor"
	"go-lightshow/lightshow"
	"go-lightshow/midi"
	"go-lightshow/snapshot"
	"go-lightshow/theme"
	"go-lightshow/widgets"
)

const (
	greetingColour  uint8 = 13
	greetingTimeout       = 15 * time.Second
	delayStep             = 10 * time.Millisecond
)

// layoutBounds holds cached layout info
type layoutBounds struct {
	gridTop int
}

type inputKind int

const (
	inputNone inputKind = iota
	inputColour
	inputSaveName
	inputProject
	inputRenameProject
	inputRenameSave
)

type Model struct {
	Editor    *editor.Manager
	DeviceMgr *midi.DeviceManager
	Store     *lightshow.Store
	Config    *config.Config
	Theme     *theme.Theme

	preview    *widgets.Grid
	keys       keyMap
	help       help.Model
	input      textinput.Model
	inputKind  inputKind
	project    string
	cursor     uint8
	status     string
	tooltip    string
	quitting   bool
	bounds     *layoutBounds
	controller midi.Controller // current controller (may be nil)
	browser    *browser        // open project browser (may be nil)
}

// ButtonMsg is a button event from the controller with the given ID.
type ButtonMsg struct {
	ID    string
	Event midi.ButtonEvent
}

type DeviceEventMsg midi.DeviceEvent

type controllerDoneMsg struct{ ID string }

type greetedMsg struct {
	Controller midi.Controller
	Err        error
}

// NewModel wires the editor to an on-screen preview grid. The returned
// model owns preview; pass it as the editor's preview surface.
func NewModel(preview *widgets.Grid, ed *editor.Manager, deviceMgr *midi.DeviceManager, store *lightshow.Store, cfg *config.Config, th *theme.Theme) Model {
	ti := textinput.New()
	ti.CharLimit = 40
	ti.Width = 30

	project := cfg.UI.LastProject
	if project == "" {
		project = "untitled"
	}

	return Model{
		Editor:    ed,
		DeviceMgr: deviceMgr,
		Store:     store,
		Config:    cfg,
		Theme:     th,
		preview:   preview,
		keys:      defaultKeyMap(),
		help:      help.New(),
		input:     ti,
		project:   project,
		cursor:    ed.SelectedPad(),
		bounds:    &layoutBounds{},
	}
}

// ProjectName is the project that saves go to.
func (m Model) ProjectName() string {
	return m.project
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func ListenForButtons(c midi.Controller) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-c.Buttons():
			return ButtonMsg{ID: c.ID(), Event: ev}
		case <-c.Done():
			return controllerDoneMsg{ID: c.ID()}
		}
	}
}

// Greet scrolls text across c once before handing it to the editor.
func Greet(c midi.Controller, text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), greetingTimeout)
		defer cancel()
		return greetedMsg{Controller: c, Err: c.WriteTextAndWait(ctx, greetingColour, text)}
	}
}

func (m Model) Init() tea.Cmd {
	if m.DeviceMgr == nil {
		return nil
	}
	return ListenForDevices(m.DeviceMgr)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.inputKind != inputNone {
			return m.updateInput(msg)
		}
		if m.browser != nil {
			return m.handleBrowserKey(msg)
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		note, onGrid := widgets.HitTest(msg.X, msg.Y-m.bounds.gridTop)
		m.tooltip = ""
		if onGrid {
			m.tooltip = describe(note)
			if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
				m.cursor = note
				m.tap(note)
			}
		}

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		cmds := []tea.Cmd{ListenForDevices(m.DeviceMgr)}
		switch event.Type {
		case midi.DeviceConnected:
			m.controller = event.Controller
			m.status = "connected " + event.ID
			if greeting := m.Config.Device.Greeting; greeting != "" {
				cmds = append(cmds, Greet(event.Controller, greeting))
			} else {
				cmds = append(cmds, m.attach(event.Controller))
			}
		case midi.DeviceDisconnected:
			if m.controller != nil && m.controller.ID() == event.ID {
				m.detach()
				m.status = "disconnected " + event.ID
			}
		}
		return m, tea.Batch(cmds...)

	case greetedMsg:
		if msg.Err != nil {
			debug.Log("tui", "greeting: %v", msg.Err)
		}
		if m.controller == nil || m.controller != msg.Controller {
			return m, nil
		}
		return m, m.attach(msg.Controller)

	case ButtonMsg:
		if m.controller == nil || m.controller.ID() != msg.ID {
			return m, nil
		}
		m.Editor.HandleButton(msg.Event)
		m.followSelection()
		return m, ListenForButtons(m.controller)

	case controllerDoneMsg:
		if m.controller != nil && m.controller.ID() == msg.ID {
			m.detach()
		}
	}

	return m, nil
}

func (m *Model) attach(c midi.Controller) tea.Cmd {
	m.Editor.SetDevice(c)
	return ListenForButtons(c)
}

func (m *Model) detach() {
	m.controller = nil
	m.Editor.SetDevice(nil)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ed := m.Editor
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Up):
		m.move(0, 1)
	case key.Matches(msg, m.keys.Down):
		m.move(0, -1)
	case key.Matches(msg, m.keys.Left):
		m.move(-1, 0)
	case key.Matches(msg, m.keys.Right):
		m.move(1, 0)

	case key.Matches(msg, m.keys.ModeNext):
		ed.SetMode(nextMode(ed.Mode(), 1))
	case key.Matches(msg, m.keys.ModePrev):
		ed.SetMode(nextMode(ed.Mode(), -1))

	case key.Matches(msg, m.keys.Enter):
		switch ed.Mode() {
		case editor.ModeLayout:
			ed.SetMode(editor.ModeEditor)
		case editor.ModeEditor, editor.ModeColourPicker:
			ed.SetMode(editor.ModeLayout)
		case editor.ModePreview:
			m.report(ed.PlayAnimation(m.cursor))
		}

	case key.Matches(msg, m.keys.Paint):
		if ed.Mode() == editor.ModeEditor {
			m.report(ed.Paint(m.cursor))
		} else {
			m.tap(m.cursor)
		}

	case key.Matches(msg, m.keys.Page):
		m.report(ed.SelectPage(int(msg.String()[0] - '0')))
		m.followSelection()

	case key.Matches(msg, m.keys.FramePrev):
		ed.SetFrame(ed.Frame() - 1)
	case key.Matches(msg, m.keys.FrameNext):
		ed.SetFrame(ed.Frame() + 1)
	case key.Matches(msg, m.keys.DelayUp):
		ed.SetFrameDelay(ed.FrameDelay() + delayStep)
	case key.Matches(msg, m.keys.DelayDown):
		ed.SetFrameDelay(ed.FrameDelay() - delayStep)

	case key.Matches(msg, m.keys.Erase):
		ed.SetErase(!ed.Erase())
	case key.Matches(msg, m.keys.Sysex):
		ed.SetUseSysex(!ed.UseSysex())
	case key.Matches(msg, m.keys.ColourPrev):
		ed.SetPaletteColour(ed.PaletteColour() - 1)
	case key.Matches(msg, m.keys.ColourNext):
		ed.SetPaletteColour(ed.PaletteColour() + 1)

	case key.Matches(msg, m.keys.ColourInput):
		return m.prompt(inputColour, "colour> ", ed.Colour().Hex())
	case key.Matches(msg, m.keys.Save):
		return m.prompt(inputSaveName, "save as> ", "")
	case key.Matches(msg, m.keys.SwitchProject):
		return m.prompt(inputProject, "project> ", m.project)
	case key.Matches(msg, m.keys.Load):
		m.load()
	case key.Matches(msg, m.keys.Browse):
		b, err := newBrowser(m.Store, m.project)
		if err != nil {
			m.report(err)
			break
		}
		m.browser = b
	case key.Matches(msg, m.keys.Snapshot):
		m.snapshot()
	case key.Matches(msg, m.keys.ExportMIDI):
		m.exportMIDI()
	}
	return m, nil
}

func nextMode(mode editor.Mode, step int) editor.Mode {
	cycle := []editor.Mode{editor.ModeLayout, editor.ModeEditor, editor.ModePreview}
	for i, c := range cycle {
		if c == mode {
			return cycle[(i+step+len(cycle))%len(cycle)]
		}
	}
	return editor.ModeLayout
}

// move shifts the selected pad in layout mode and the cursor otherwise.
func (m *Model) move(dx, dy int) {
	if m.Editor.Mode() == editor.ModeLayout {
		if m.Editor.CanShiftSelectedPad(dx, dy) {
			m.report(m.Editor.ShiftSelectedPad(dx, dy))
		}
		m.followSelection()
		return
	}
	x, y := midi.SessionPos(m.cursor)
	x, y = x+dx, y+dy
	if midi.OnSurface(x, y) {
		m.cursor = midi.SessionNote(x, y)
	}
}

// tap presses and releases note as if on the device.
func (m *Model) tap(note uint8) {
	kind := midi.ButtonPad
	switch {
	case note > midi.TopRow:
		kind = midi.ButtonControl
	case note%10 == 9:
		kind = midi.ButtonSelector
	}
	m.Editor.HandleButton(midi.ButtonEvent{Kind: kind, Note: note, Pressed: true})
	m.Editor.HandleButton(midi.ButtonEvent{Kind: kind, Note: note})
	m.followSelection()
}

func (m *Model) followSelection() {
	if m.Editor.Mode() == editor.ModeLayout {
		m.cursor = m.Editor.SelectedPad()
	}
}

func (m Model) prompt(kind inputKind, prompt, value string) (tea.Model, tea.Cmd) {
	m.inputKind = kind
	m.input.Prompt = prompt
	m.input.SetValue(value)
	return m, m.input.Focus()
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.inputKind = inputNone
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		kind := m.inputKind
		m.inputKind = inputNone
		m.input.Blur()
		m.submit(kind, value)
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submit(kind inputKind, value string) {
	switch kind {
	case inputColour:
		c, err := midi.ParseColour(value)
		if err != nil {
			m.status = err.Error()
			return
		}
		m.Editor.SetColour(c)
	case inputSaveName:
		info, err := m.Store.Save(m.project, value, m.Editor.Project())
		if err != nil {
			m.report(err)
			return
		}
		m.status = "saved " + info.Filename
	case inputProject:
		if value != "" {
			m.project = value
			m.status = "project " + value
		}
	case inputRenameProject, inputRenameSave:
		m.renameSelected(kind, value)
	}
}

func (m *Model) load() {
	m.loadSave(m.project, "")
}

// loadSave loads filename from project, or its newest save if filename is
// empty.
func (m *Model) loadSave(project, filename string) bool {
	data, err := m.Store.Read(project, filename)
	if err != nil {
		m.report(err)
		return false
	}
	if !m.Editor.LoadJSON(data) {
		m.status = "The save file is not a valid light show"
		return false
	}
	m.followSelection()
	m.status = "loaded " + project
	if filename != "" {
		m.status += "/" + filename
	}
	return true
}

// exportDir is where snapshots and midi files are written.
func (m *Model) exportDir() (string, error) {
	if dir := m.Config.UI.SnapshotDir; dir != "" {
		return dir, nil
	}
	base, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "snapshots"), nil
}

func (m *Model) snapshot() {
	dir, err := m.exportDir()
	if err != nil {
		m.report(err)
		return
	}
	ed := m.Editor
	name := fmt.Sprintf("%s_p%d_%d_f%d", m.project, ed.Page(), ed.SelectedPad(), ed.Frame())
	label := fmt.Sprintf("%s  page %d  pad %d  frame %d/%d", m.project, ed.Page(), ed.SelectedPad(), ed.Frame(), ed.FrameCount())
	path, err := snapshot.Save(dir, name, m.preview, label)
	if err != nil {
		m.report(err)
		return
	}
	m.status = "wrote " + path
}

// exportMIDI writes the selected pad's animation as a Standard MIDI File.
func (m *Model) exportMIDI() {
	ed := m.Editor
	if !ed.Animation().Exists() {
		m.status = fmt.Sprintf("pad %d has no animation", ed.SelectedPad())
		return
	}
	dir, err := m.exportDir()
	if err != nil {
		m.report(err)
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.report(err)
		return
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_p%d_%d.mid", m.project, ed.Page(), ed.SelectedPad()))
	if err := ed.Animation().ExportSMF(path); err != nil {
		m.report(err)
		return
	}
	m.status = "wrote " + path
}

// report shows err in the status line, preferring its user-facing message.
func (m *Model) report(err error) {
	if err == nil {
		return
	}
	debug.Log("tui", "%v", err)
	if issue := fmsg.GetIssue(err); issue != "" {
		m.status = issue
		return
	}
	if errors.Is(err, midi.ErrOffGrid) {
		m.status = "not on the grid"
		return
	}
	m.status = err.Error()
}

func describe(note uint8) string {
	x, y := midi.SessionPos(note)
	switch {
	case note > midi.TopRow:
		return fmt.Sprintf("%s (%d)", midi.ControlNote(note), note)
	case x == 9:
		return fmt.Sprintf("selector row %d (%d)", y, note)
	}
	return fmt.Sprintf("pad %d,%d (%d)", x, y, note)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	ed := m.Editor

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	modeStyle := lipgloss.NewStyle().Foreground(m.Theme.ModeColor(int(ed.Mode()), 4)).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	statusStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())
	tooltipStyle := lipgloss.NewStyle().
		Foreground(m.Theme.FG()).
		Background(m.Theme.Muted()).
		Padding(0, 1)

	deviceStatus := ""
	if m.controller != nil {
		deviceStatus = "  LP"
	}
	header := headerStyle.Render(fmt.Sprintf("go-lightshow  %s  page %d  pad %d%s",
		m.project, ed.Page(), ed.SelectedPad(), deviceStatus))
	header += "  " + modeStyle.Render(ed.Mode().String())

	c := ed.Colour()
	flags := []string{
		fmt.Sprintf("frame %d/%d", ed.Frame(), ed.FrameCount()),
		fmt.Sprintf("delay %dms", ed.FrameDelay().Milliseconds()),
		widgets.RenderPad([3]uint8{c.R, c.G, c.B}) + " " + colourLabel(ed),
	}
	if ed.Erase() {
		flags = append(flags, "ERASE")
	}
	if ed.Mode() == editor.ModeColourPicker {
		flags = append(flags, fmt.Sprintf("bias %d", ed.Bias()))
	}
	info := dimStyle.Render(strings.Join(flags[:2], "  ")) + "  " + strings.Join(flags[2:], "  ")

	grid := widgets.RenderGrid(m.preview, m.Theme, m.cursor)
	layout := widgets.RenderLayout(ed.Layout(), ed.SelectedPad(), ed.Page(), m.Theme)
	body := lipgloss.JoinHorizontal(lipgloss.Top, grid, "    ", layout)
	if m.browser != nil {
		body = m.browser.view(m.Theme, m.project)
	}

	m.bounds.gridTop = 1 + lipgloss.Height(header) + lipgloss.Height(info) + 1

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n")
	out.WriteString(info)
	out.WriteString("\n\n")
	out.WriteString(body)
	out.WriteString("\n\n")
	if m.inputKind != inputNone {
		out.WriteString(m.input.View())
		out.WriteString("\n")
	}
	out.WriteString(m.help.View(m.keys))

	if m.status != "" {
		out.WriteString("\n")
		out.WriteString(statusStyle.Render(m.status))
	}
	if m.tooltip != "" {
		out.WriteString("\n")
		out.WriteString(tooltipStyle.Render(m.tooltip))
	}

	return out.String()
}

func colourLabel(ed *editor.Manager) string {
	if ed.UseSysex() {
		s := ed.SysexColour()
		return fmt.Sprintf("rgb %d,%d,%d", s[0], s[1], s[2])
	}
	return fmt.Sprintf("#%d", ed.PaletteColour())
}
