// Package prefs persists the board's UI state slot: theme, open panels, list
// filters, pagination and the assessment builder selection. The slot is
// written on every change and read back at startup. Stored in
// ~/.config/hireboard/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs is the persisted UI state.
type Prefs struct {
	Theme      string          `toml:"theme"`
	Panels     []string        `toml:"panels"`
	Jobs       JobFilter       `toml:"jobs"`
	Candidates CandidateFilter `toml:"candidates"`
	Page       Page            `toml:"page"`
	Builder    Builder         `toml:"builder"`
}

// JobFilter narrows the jobs list.
type JobFilter struct {
	Status string `toml:"status"`
	Search string `toml:"search"`
}

// CandidateFilter narrows the candidate pipeline.
type CandidateFilter struct {
	Stage  string `toml:"stage"`
	Search string `toml:"search"`
	JobID  string `toml:"job_id"`
}

// Page is the jobs list pagination.
type Page struct {
	Number int `toml:"number"`
	Size   int `toml:"size"`
}

// Builder remembers the selected assessment and section; Expanded lists the
// assessments whose sections are shown.
type Builder struct {
	AssessmentID string   `toml:"assessment_id"`
	SectionID    string   `toml:"section_id"`
	Expanded     []string `toml:"expanded"`
}

const (
	defaultPrefsPath = "~/.config/hireboard/prefs.toml"
	defaultTheme     = "Nightfox"
	defaultPageSize  = 25
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Default returns the slot used when nothing valid is stored.
func Default() Prefs {
	return Prefs{
		Theme:   defaultTheme,
		Panels:  []string{},
		Page:    Page{Number: 1, Size: defaultPageSize},
		Builder: Builder{Expanded: []string{}},
	}
}

// Load reads preferences from the given path. A missing or unreadable file
// yields defaults; fields of the wrong shape are coerced individually so one
// corrupted array does not discard the rest of the slot.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Default(), nil
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), nil // Graceful degradation
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Default(), nil // Graceful degradation
	}

	p := Default()
	if err := toml.Unmarshal(bytes, &p); err != nil {
		var raw map[string]any
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Default(), nil // Graceful degradation
		}
		p = coerce(raw)
	}
	return p.normalized(), nil
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p.normalized())
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	tmp := resolved + ".tmp"
	if err := os.WriteFile(tmp, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmp, resolved); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

// TogglePanel opens name when closed and closes it when open.
func (p Prefs) TogglePanel(name string) Prefs {
	next := make([]string, 0, len(p.Panels)+1)
	found := false
	for _, panel := range p.Panels {
		if panel == name {
			found = true
			continue
		}
		next = append(next, panel)
	}
	if !found {
		next = append(next, name)
	}
	p.Panels = next
	return p
}

// PanelOpen reports whether name is in the open panel list.
func (p Prefs) PanelOpen(name string) bool {
	for _, panel := range p.Panels {
		if panel == name {
			return true
		}
	}
	return false
}

func (p Prefs) normalized() Prefs {
	if strings.TrimSpace(p.Theme) == "" {
		p.Theme = defaultTheme
	}
	if p.Panels == nil {
		p.Panels = []string{}
	}
	if p.Builder.Expanded == nil {
		p.Builder.Expanded = []string{}
	}
	if p.Page.Number < 1 {
		p.Page.Number = 1
	}
	if p.Page.Size < 1 {
		p.Page.Size = defaultPageSize
	}
	return p
}

// coerce rebuilds a slot from a loosely typed document, keeping every field
// that has the expected shape and defaulting the rest.
func coerce(raw map[string]any) Prefs {
	p := Default()
	p.Theme = str(raw["theme"])
	p.Panels = strs(raw["panels"])

	jobs := table(raw["jobs"])
	p.Jobs = JobFilter{Status: str(jobs["status"]), Search: str(jobs["search"])}

	cands := table(raw["candidates"])
	p.Candidates = CandidateFilter{
		Stage:  str(cands["stage"]),
		Search: str(cands["search"]),
		JobID:  str(cands["job_id"]),
	}

	page := table(raw["page"])
	p.Page = Page{Number: num(page["number"]), Size: num(page["size"])}

	builder := table(raw["builder"])
	p.Builder = Builder{
		AssessmentID: str(builder["assessment_id"]),
		SectionID:    str(builder["section_id"]),
		Expanded:     strs(builder["expanded"]),
	}
	return p
}

func table(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func num(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// strs returns v as a string list, or empty when any element is not a
// string.
func strs(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return []string{}
		}
		out = append(out, s)
	}
	return out
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
