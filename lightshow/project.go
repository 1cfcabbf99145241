package lightshow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"go-lightshow/midi"
)

// maxDurationMs is the longest frame wait a time.Duration can hold.
const maxDurationMs = float64(math.MaxInt64 / int64(time.Millisecond))

// PageCount is the number of pages in every project.
const PageCount = 8

// Project is a complete light show: exactly eight pages.
type Project struct {
	pages [PageCount]*Page
}

// NewProject returns a project of empty pages
func NewProject() *Project {
	p := &Project{}
	for i := range p.pages {
		p.pages[i] = NewPage()
	}
	return p
}

// Page returns page n, 1-based
func (p *Project) Page(n int) *Page {
	if n < 1 || n > PageCount {
		panic(fmt.Sprintf("lightshow: page %d out of range", n))
	}
	return p.pages[n-1]
}

// Persisted form:
//   project   = [page x8]
//   page      = [column x8]        (x = 1..8)
//   column    = [animation x8]     (y = 1..8)
//   animation = [frame...]
//   frame     = [durationMs, action...]

func (f *Frame) MarshalJSON() ([]byte, error) {
	out := make([]any, 0, len(f.Actions)+1)
	out = append(out, float64(f.Duration)/float64(time.Millisecond))
	for _, a := range f.Actions {
		out = append(out, a)
	}
	return json.Marshal(out)
}

func (a *Animation) MarshalJSON() ([]byte, error) {
	if a.frames == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a.frames)
}

func (p *Page) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.animations)
}

func (p *Project) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.pages)
}

// ParseProject decodes a persisted project. The shape must be exact at
// every level and every action well formed; on any error nothing is
// returned.
func ParseProject(data []byte) (*Project, error) {
	pages, err := array(data, PageCount)
	if err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}

	p := &Project{}
	for i, raw := range pages {
		page, err := parsePage(raw)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		p.pages[i] = page
	}
	return p, nil
}

func parsePage(data json.RawMessage) (*Page, error) {
	columns, err := array(data, 8)
	if err != nil {
		return nil, err
	}

	page := &Page{}
	for x, col := range columns {
		anims, err := array(col, 8)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", x+1, err)
		}
		for y, raw := range anims {
			a, err := parseAnimation(raw)
			if err != nil {
				return nil, fmt.Errorf("pad (%d, %d): %w", x+1, y+1, err)
			}
			page.animations[x][y] = a
		}
	}
	return page, nil
}

func parseAnimation(data json.RawMessage) (*Animation, error) {
	frames, err := array(data, -1)
	if err != nil {
		return nil, err
	}

	a := NewAnimation()
	for i, raw := range frames {
		f, err := parseFrame(raw)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		a.AddFrame(f)
	}
	return a, nil
}

func parseFrame(data json.RawMessage) (*Frame, error) {
	items, err := array(data, -1)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("missing duration")
	}

	var ms float64
	if err := json.Unmarshal(items[0], &ms); err != nil {
		return nil, fmt.Errorf("duration: %w", err)
	}
	if ms < 0 || math.IsNaN(ms) || ms > maxDurationMs {
		return nil, fmt.Errorf("duration %v out of range", ms)
	}

	f := NewFrame(time.Duration(ms * float64(time.Millisecond)))
	for i, raw := range items[1:] {
		if !isObject(raw) {
			return nil, fmt.Errorf("action %d: not an object", i)
		}
		action, err := midi.ParseAction(raw)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		f.Actions = append(f.Actions, action)
	}
	return f, nil
}

// array decodes a JSON array, requiring exactly n elements unless n < 0.
func array(data []byte, n int) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("expected an array")
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, err
	}
	if n >= 0 && len(items) != n {
		return nil, fmt.Errorf("expected %d entries, got %d", n, len(items))
	}
	return items, nil
}

func isObject(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
