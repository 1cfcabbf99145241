package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-lightshow/lightshow"
	"go-lightshow/theme"
)

const browserRows = 12

// browser lists projects and their saves for loading, renaming and
// deleting.
type browser struct {
	store *lightshow.Store

	projects []string
	saves    []lightshow.SaveInfo

	projectIdx int
	saveIdx    int
	column     int // 0=projects, 1=saves

	confirmMsg    string
	confirmAction func() error
}

// newBrowser opens the store with current selected if it exists.
func newBrowser(store *lightshow.Store, current string) (*browser, error) {
	b := &browser{store: store}
	if err := b.refresh(); err != nil {
		return nil, err
	}
	for i, p := range b.projects {
		if p == current {
			b.projectIdx = i
			break
		}
	}
	return b, b.refresh()
}

// refresh reloads both lists and clamps the selection.
func (b *browser) refresh() error {
	projects, err := b.store.ListProjects()
	if err != nil {
		return err
	}
	b.projects = projects
	if b.projectIdx >= len(b.projects) {
		b.projectIdx = max(0, len(b.projects)-1)
	}

	b.saves = nil
	if len(b.projects) > 0 {
		saves, err := b.store.ListSaves(b.projects[b.projectIdx])
		if err != nil {
			return err
		}
		b.saves = saves
	}
	if b.saveIdx >= len(b.saves) {
		b.saveIdx = max(0, len(b.saves)-1)
	}
	if len(b.saves) == 0 {
		b.column = 0
	}
	return nil
}

func (b *browser) project() (string, bool) {
	if len(b.projects) == 0 {
		return "", false
	}
	return b.projects[b.projectIdx], true
}

// save is the selected save, only when the saves column is focused.
func (b *browser) save() (lightshow.SaveInfo, bool) {
	if b.column != 1 || len(b.saves) == 0 {
		return lightshow.SaveInfo{}, false
	}
	return b.saves[b.saveIdx], true
}

func (b *browser) move(step int) error {
	if b.column == 0 {
		next := min(max(b.projectIdx+step, 0), max(0, len(b.projects)-1))
		if next != b.projectIdx {
			b.projectIdx = next
			b.saveIdx = 0
			return b.refresh()
		}
		return nil
	}
	b.saveIdx = min(max(b.saveIdx+step, 0), max(0, len(b.saves)-1))
	return nil
}

func (b *browser) focusSaves() {
	if len(b.saves) > 0 {
		b.column = 1
	}
}

// askDelete queues deletion of the selection until it is confirmed.
func (b *browser) askDelete() {
	project, ok := b.project()
	if !ok {
		return
	}
	if save, ok := b.save(); ok {
		b.confirmMsg = fmt.Sprintf("Delete save '%s'?", save.Timestamp.Format("2006-01-02 15:04:05"))
		b.confirmAction = func() error { return b.store.DeleteSave(project, save.Filename) }
		return
	}
	b.confirmMsg = fmt.Sprintf("Delete project '%s' and all saves?", project)
	b.confirmAction = func() error { return b.store.DeleteProject(project) }
}

func (b *browser) confirming() bool {
	return b.confirmAction != nil
}

// resolve runs or drops the pending confirmation.
func (b *browser) resolve(yes bool) error {
	action := b.confirmAction
	b.confirmAction = nil
	b.confirmMsg = ""
	if !yes {
		return nil
	}
	if err := action(); err != nil {
		return err
	}
	return b.refresh()
}

func (b *browser) view(th *theme.Theme, current string) string {
	dim := lipgloss.NewStyle().Foreground(th.Muted())
	sel := lipgloss.NewStyle().Foreground(th.Cursor()).Bold(true)

	var out strings.Builder
	out.WriteString(fmt.Sprintf("PROJECTS  current: %s\n\n", current))

	if b.confirming() {
		out.WriteString(b.confirmMsg + "\n\n  [y] yes    [n] no\n")
		return out.String()
	}

	out.WriteString(dim.Render(fmt.Sprintf("%-24s    %s", "Projects", "Saves")) + "\n")

	rows := min(browserRows, max(1, len(b.projects), len(b.saves)))
	for row := 0; row < rows; row++ {
		if row < len(b.projects) {
			prefix := marker(row == b.projectIdx, b.column == 0)
			name := b.projects[row]
			if len(name) > 20 {
				name = name[:17] + "..."
			}
			swatch := lipgloss.NewStyle().Foreground(th.Swatch(row)).Render("●")
			line := fmt.Sprintf("%s%-20s", prefix, name)
			if row == b.projectIdx {
				line = sel.Render(line)
			}
			out.WriteString(swatch + " " + line)
		} else {
			out.WriteString(strings.Repeat(" ", 24))
		}

		out.WriteString("    ")

		if row < len(b.saves) {
			save := b.saves[row]
			display := save.Timestamp.Format("01-02 15:04")
			if save.Name != "" {
				display += " " + save.Name
			}
			if len(display) > 24 {
				display = display[:21] + "..."
			}
			line := marker(row == b.saveIdx, b.column == 1) + display
			if row == b.saveIdx && b.column == 1 {
				line = sel.Render(line)
			}
			out.WriteString(line)
		}
		out.WriteString("\n")
	}

	if len(b.projects) == 0 {
		out.WriteString(dim.Render("  (no projects yet)") + "\n")
	}
	out.WriteString("\n" + dim.Render("h/l column  j/k move  enter load  n new  r rename  d delete  esc close"))
	return out.String()
}

func marker(selected, focused bool) string {
	switch {
	case selected && focused:
		return "> "
	case selected:
		return "* "
	}
	return "  "
}

// handleBrowserKey drives the open browser.
func (m Model) handleBrowserKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	b := m.browser
	if b.confirming() {
		switch msg.String() {
		case "y", "Y":
			m.report(b.resolve(true))
		case "n", "N", "esc", "q":
			m.report(b.resolve(false))
		}
		return m, nil
	}

	switch msg.String() {
	case "esc", "q", "b":
		m.browser = nil
	case "h", "left":
		b.column = 0
	case "l", "right":
		b.focusSaves()
	case "j", "down":
		m.report(b.move(1))
	case "k", "up":
		m.report(b.move(-1))
	case "enter", " ":
		project, ok := b.project()
		if !ok {
			return m, nil
		}
		filename := ""
		if save, ok := b.save(); ok {
			filename = save.Filename
		}
		if m.loadSave(project, filename) {
			m.project = project
			m.browser = nil
		}
	case "n":
		return m.prompt(inputProject, "new project> ", "")
	case "r":
		if save, ok := b.save(); ok {
			return m.prompt(inputRenameSave, "rename save> ", save.Name)
		}
		if project, ok := b.project(); ok {
			return m.prompt(inputRenameProject, "rename project> ", project)
		}
	case "d":
		b.askDelete()
	}
	return m, nil
}

// renameSelected applies a rename typed into the prompt to the browser
// selection.
func (m *Model) renameSelected(kind inputKind, value string) {
	b := m.browser
	if b == nil {
		return
	}
	project, ok := b.project()
	if !ok {
		return
	}

	switch kind {
	case inputRenameProject:
		if value == "" || value == project {
			return
		}
		if err := m.Store.RenameProject(project, value); err != nil {
			m.report(err)
			return
		}
		if m.project == project {
			m.project = value
		}
		m.status = "renamed " + project
	case inputRenameSave:
		save, ok := b.save()
		if !ok {
			return
		}
		filename, err := m.Store.RenameSave(project, save.Filename, value)
		if err != nil {
			m.report(err)
			return
		}
		m.status = "renamed to " + filename
	}
	m.report(b.refresh())
}
