package lightshow

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

const saveStamp = "2006-01-02_15-04-05"

// SaveInfo represents a saved project file (for listing)
type SaveInfo struct {
	Filename  string
	Name      string // parsed from filename (empty if unnamed)
	Timestamp time.Time
}

// Store keeps named projects on disk, one folder per project and one
// timestamped JSON file per save.
type Store struct {
	root string
	now  func() time.Time
}

// NewStore opens a store rooted at dir
func NewStore(dir string) *Store {
	return &Store{root: dir, now: time.Now}
}

// DefaultStore is rooted at ~/.config/go-lightshow/projects
func DefaultStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("home directory"))
	}
	return NewStore(filepath.Join(home, ".config", "go-lightshow", "projects")), nil
}

// Dir returns the path to a specific project
func (s *Store) Dir(project string) string {
	return filepath.Join(s.root, sanitizeFilename(project))
}

// ListProjects returns all project folder names
func (s *Store) ListProjects() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fault.Wrap(err, fmsg.WithDesc("list projects", "Could not read the projects folder"))
	}

	var projects []string
	for _, entry := range entries {
		if entry.IsDir() {
			projects = append(projects, entry.Name())
		}
	}

	sort.Strings(projects)
	return projects, nil
}

// ListSaves returns timestamped saves for a project, newest first
func (s *Store) ListSaves(project string) ([]SaveInfo, error) {
	entries, err := os.ReadDir(s.Dir(project))
	if err != nil {
		if os.IsNotExist(err) {
			return []SaveInfo{}, nil
		}
		return nil, fault.Wrap(err, fmsg.WithDesc("list saves", fmt.Sprintf("Could not read project %s", project)))
	}

	var saves []SaveInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if info, ok := parseSaveName(entry.Name()); ok {
			saves = append(saves, info)
		}
	}

	sort.Slice(saves, func(i, j int) bool {
		if saves[i].Timestamp.Equal(saves[j].Timestamp) {
			return saves[i].Filename > saves[j].Filename
		}
		return saves[i].Timestamp.After(saves[j].Timestamp)
	})

	return saves, nil
}

// parseSaveName reads 2024-01-15_14-30-00.json or 2024-01-15_14-30-00_name.json
func parseSaveName(filename string) (SaveInfo, bool) {
	if !strings.HasSuffix(filename, ".json") {
		return SaveInfo{}, false
	}
	base := strings.TrimSuffix(filename, ".json")
	if len(base) < len(saveStamp) {
		return SaveInfo{}, false
	}

	ts, err := time.Parse(saveStamp, base[:len(saveStamp)])
	if err != nil {
		return SaveInfo{}, false
	}

	name := ""
	if len(base) > len(saveStamp)+1 && base[len(saveStamp)] == '_' {
		name = base[len(saveStamp)+1:]
	}
	return SaveInfo{Filename: filename, Name: name, Timestamp: ts}, true
}

// Save writes p into the project folder under a new timestamped file
func (s *Store) Save(project, name string, p *Project) (SaveInfo, error) {
	if project == "" {
		project = "untitled"
	}
	project = sanitizeFilename(project)

	dir := s.Dir(project)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return SaveInfo{}, fault.Wrap(err, fmsg.WithDesc("create project dir", fmt.Sprintf("Could not create project %s", project)))
	}

	data, err := json.Marshal(p)
	if err != nil {
		return SaveInfo{}, fault.Wrap(err, fmsg.With("encode project"))
	}

	ts := s.now()
	filename := ts.Format(saveStamp)
	if name != "" {
		filename += "_" + sanitizeFilename(name)
	}
	filename += ".json"

	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		return SaveInfo{}, fault.Wrap(err, fmsg.WithDesc("write save", fmt.Sprintf("Could not write %s", filename)))
	}

	info, _ := parseSaveName(filename)
	return info, nil
}

// Read returns the raw bytes of a save (or the most recent if filename is
// empty)
func (s *Store) Read(project, filename string) ([]byte, error) {
	if filename == "" {
		saves, err := s.ListSaves(project)
		if err != nil {
			return nil, err
		}
		if len(saves) == 0 {
			return nil, fault.New("no saves",
				ftag.With(ftag.NotFound),
				fmsg.WithDesc("no saves", fmt.Sprintf("No saves found in project %s", project)))
		}
		filename = saves[0].Filename
	}

	data, err := os.ReadFile(filepath.Join(s.Dir(project), filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fault.Wrap(err, ftag.With(ftag.NotFound), fmsg.WithDesc("read save", fmt.Sprintf("%s/%s does not exist", project, filename)))
		}
		return nil, fault.Wrap(err, fmsg.WithDesc("read save", fmt.Sprintf("Could not read %s", filename)))
	}
	return data, nil
}

// Load reads and parses a save (or the most recent if filename is empty)
func (s *Store) Load(project, filename string) (*Project, error) {
	data, err := s.Read(project, filename)
	if err != nil {
		return nil, err
	}
	p, err := ParseProject(data)
	if err != nil {
		return nil, fault.Wrap(err, ftag.With(ftag.InvalidArgument), fmsg.WithDesc("parse save", "The save file is not a valid light show"))
	}
	return p, nil
}

// DeleteSave deletes a specific save file
func (s *Store) DeleteSave(project, filename string) error {
	if err := os.Remove(filepath.Join(s.Dir(project), filename)); err != nil {
		return fault.Wrap(err, fmsg.WithDesc("delete save", fmt.Sprintf("Could not delete %s", filename)))
	}
	return nil
}

// RenameSave changes the name part of a save, keeping its timestamp
func (s *Store) RenameSave(project, oldFilename, newName string) (string, error) {
	info, ok := parseSaveName(oldFilename)
	if !ok {
		return "", fault.New("invalid save filename", ftag.With(ftag.InvalidArgument), fmsg.WithDesc("rename save", fmt.Sprintf("%s is not a save file", oldFilename)))
	}

	newFilename := info.Timestamp.Format(saveStamp)
	if newName != "" {
		newFilename += "_" + sanitizeFilename(newName)
	}
	newFilename += ".json"

	dir := s.Dir(project)
	if err := os.Rename(filepath.Join(dir, oldFilename), filepath.Join(dir, newFilename)); err != nil {
		return "", fault.Wrap(err, fmsg.WithDesc("rename save", fmt.Sprintf("Could not rename %s", oldFilename)))
	}
	return newFilename, nil
}

// DeleteProject deletes entire project folder
func (s *Store) DeleteProject(project string) error {
	if err := os.RemoveAll(s.Dir(project)); err != nil {
		return fault.Wrap(err, fmsg.WithDesc("delete project", fmt.Sprintf("Could not delete project %s", project)))
	}
	return nil
}

// RenameProject renames a project folder
func (s *Store) RenameProject(oldName, newName string) error {
	if err := os.Rename(s.Dir(oldName), s.Dir(newName)); err != nil {
		return fault.Wrap(err, fmsg.WithDesc("rename project", fmt.Sprintf("Could not rename project %s", oldName)))
	}
	return nil
}

// sanitizeFilename removes/replaces characters that are problematic in filenames
func sanitizeFilename(name string) string {
	name = strings.NewReplacer(" ", "-", "/", "-", "\\", "-", ":", "-").Replace(name)
	return strings.NewReplacer("*", "", "?", "", "\"", "", "<", "", ">", "", "|", "").Replace(name)
}
