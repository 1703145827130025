package templates

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// DefaultName is the template used when a requested one is unknown.
const DefaultName = "default.pptx"

// Store lists and resolves presentation templates kept in a directory.
type Store struct {
	dir         string
	defaultName string
}

// NewStore returns a Store over dir. An empty defaultName means DefaultName.
func NewStore(dir, defaultName string) *Store {
	if defaultName == "" {
		defaultName = DefaultName
	}
	return &Store{dir: dir, defaultName: defaultName}
}

// Dir returns the template directory.
func (s *Store) Dir() string { return s.dir }

// Default returns the fallback template name.
func (s *Store) Default() string { return s.defaultName }

// List returns the .ppt and .pptx file names in the store, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if IsTemplateName(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// IsTemplateName reports whether name has a .ppt or .pptx extension.
func IsTemplateName(name string) bool {
	return strings.HasSuffix(name, ".ppt") || strings.HasSuffix(name, ".pptx")
}

// Resolve maps a requested template to a name in the store. A missing
// .pptx extension is appended; anything not present falls back to the
// default template.
func (s *Store) Resolve(name string) string {
	if !strings.HasSuffix(name, ".pptx") {
		name += ".pptx"
	}
	names, err := s.List()
	if err != nil {
		log.Warn().Err(err).Str("template", name).Msg("Template listing failed, using default")
		return s.defaultName
	}
	for _, n := range names {
		if n == name {
			return name
		}
	}
	log.Debug().Str("template", name).Str("default", s.defaultName).Msg("Template not found, using default")
	return s.defaultName
}

// Path returns the file path of a template name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}
