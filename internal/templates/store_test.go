package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, files ...string) *Store {
	t.Helper()
	dir := t.TempDir()
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.pptx"), 0o755))
	return NewStore(dir, "")
}

func TestList_OnlyPresentationFiles(t *testing.T) {
	s := newTestStore(t, "default.pptx", "old.ppt", "notes.txt", "logo.png", "report.pptx.bak", "brand.pptx")

	got, err := s.List()

	require.NoError(t, err)
	assert.Equal(t, []string{"brand.pptx", "default.pptx", "old.ppt"}, got)
	for _, name := range got {
		assert.True(t, IsTemplateName(name), name)
	}
}

func TestList_MissingDir(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nope"), "")

	_, err := s.List()
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	s := newTestStore(t, "default.pptx", "brand.pptx", "old.ppt")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"exact", "brand.pptx", "brand.pptx"},
		{"extension appended", "brand", "brand.pptx"},
		{"unknown without extension", "report", "default.pptx"},
		{"unknown with extension", "report.pptx", "default.pptx"},
		{"ppt gets pptx appended", "old.ppt", "default.pptx"},
		{"directory is not a template", "archive", "default.pptx"},
		{"empty", "", "default.pptx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Resolve(tt.in))
		})
	}
}

func TestResolve_ListingFailsFallsBack(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nope"), "corporate.pptx")

	assert.Equal(t, "corporate.pptx", s.Resolve("brand"))
}

func TestPath(t *testing.T) {
	s := NewStore("templates", "")

	assert.Equal(t, filepath.Join("templates", "brand.pptx"), s.Path("brand.pptx"))
	assert.Equal(t, filepath.Join("templates", "x.pptx"), s.Path("../../x.pptx"))
}
