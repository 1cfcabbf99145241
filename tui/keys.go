package tui

import "github.com/charmbracelet/bubbles/key"

func Key(help string, keyboardKey ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keyboardKey...), key.WithHelp(keyboardKey[0], help))
}

type keyMap struct {
	Up, Down, Left, Right key.Binding

	ModeNext, ModePrev key.Binding
	Enter              key.Binding
	Paint              key.Binding
	Page               key.Binding

	FramePrev, FrameNext key.Binding
	DelayUp, DelayDown   key.Binding

	Erase         key.Binding
	Sysex         key.Binding
	ColourPrev    key.Binding
	ColourNext    key.Binding
	ColourInput   key.Binding
	Save, Load    key.Binding
	SwitchProject key.Binding
	Browse        key.Binding
	Snapshot      key.Binding
	ExportMIDI    key.Binding

	Help key.Binding
	Quit key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:    Key("up", "up", "k"),
		Down:  Key("down", "down", "j"),
		Left:  Key("left", "left", "h"),
		Right: Key("right", "right", "l"),

		ModeNext: Key("next mode", "tab"),
		ModePrev: Key("prev mode", "shift+tab"),
		Enter:    Key("edit / play", "enter"),
		Paint:    Key("paint", " "),
		Page:     Key("page", "1", "2", "3", "4", "5", "6", "7", "8"),

		FramePrev: Key("prev frame", "["),
		FrameNext: Key("next frame", "]"),
		DelayUp:   Key("delay +10ms", "+", "="),
		DelayDown: Key("delay -10ms", "-", "_"),

		Erase:         Key("erase", "e"),
		Sysex:         Key("rgb", "x"),
		ColourPrev:    Key("prev colour", ","),
		ColourNext:    Key("next colour", "."),
		ColourInput:   Key("colour", "c"),
		Save:          Key("save", "ctrl+s"),
		Load:          Key("load latest", "ctrl+o"),
		SwitchProject: Key("project", "ctrl+n"),
		Browse:        Key("browse saves", "b"),
		Snapshot:      Key("png", "p"),
		ExportMIDI:    Key("midi file", "m"),

		Help: Key("help", "?"),
		Quit: Key("quit", "q", "ctrl+c"),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ModeNext, k.Enter, k.Paint, k.FrameNext, k.Erase, k.Save, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Page},
		{k.ModeNext, k.ModePrev, k.Enter, k.Paint},
		{k.FramePrev, k.FrameNext, k.DelayUp, k.DelayDown},
		{k.Erase, k.Sysex, k.ColourPrev, k.ColourNext, k.ColourInput},
		{k.Save, k.Load, k.SwitchProject, k.Browse, k.Snapshot, k.ExportMIDI, k.Help, k.Quit},
	}
}
