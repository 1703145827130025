package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snappy-loop/decks/internal/imagefetch"
	"github.com/snappy-loop/decks/internal/pptx"
	"github.com/snappy-loop/decks/internal/pptx/pptxtest"
	"github.com/snappy-loop/decks/internal/templates"
)

// fakeFetcher serves images from a map; unknown URLs return 404.
type fakeFetcher struct {
	images map[string][]byte
	calls  []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.calls = append(f.calls, url)
	if data, ok := f.images[url]; ok {
		return data, nil
	}
	return nil, &imagefetch.StatusError{URL: url, StatusCode: 404}
}

type fakePublisher struct {
	key  string
	data []byte
	err  error
}

func (p *fakePublisher) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.key, p.data = key, data
	return "https://cdn.example.com/" + key, nil
}

func newTestService(t *testing.T, fetcher imagefetch.Fetcher, publisher Publisher) (*PresentationService, string) {
	t.Helper()
	dir := t.TempDir()
	tplDir := filepath.Join(dir, "templates")
	require.NoError(t, os.Mkdir(tplDir, 0o755))
	pptxtest.WriteTemplate(t, tplDir, "default.pptx")
	pptxtest.WriteTemplate(t, tplDir, "brand.pptx")

	out := filepath.Join(dir, "presentation.pptx")
	if fetcher == nil {
		fetcher = &fakeFetcher{}
	}
	return NewPresentationService(templates.NewStore(tplDir, ""), fetcher, publisher, out, ""), out
}

func slideXML(t *testing.T, path string, n int) string {
	t.Helper()
	deck, err := pptx.Open(path)
	require.NoError(t, err)
	parts := deck.SlideParts()
	require.Greater(t, len(parts), n)
	data, ok := deck.Part(parts[n])
	require.True(t, ok)
	return string(data)
}

func TestCreate_WritesSlides(t *testing.T) {
	png := pptxtest.PNG()
	fetcher := &fakeFetcher{images: map[string][]byte{"http://a/img.png": png}}
	svc, out := newTestService(t, fetcher, nil)

	res, err := svc.Create(context.Background(), CreateRequest{
		Title:    "T1",
		Subtitle: "Sub",
		Content:  "T1\nSub\n#T2\nline with ![x](http://a/img.png) and more\nplain line\n# T3\nclosing",
	})

	require.NoError(t, err)
	assert.Equal(t, out, res.Path)
	assert.Equal(t, "default.pptx", res.Template)
	assert.Equal(t, 3, res.Slides)
	assert.Equal(t, 1, res.ImagesPlaced)
	assert.Zero(t, res.ImagesSkipped)
	assert.Equal(t, []string{"http://a/img.png"}, fetcher.calls)

	deck, err := pptx.Open(out)
	require.NoError(t, err)
	assert.Len(t, deck.SlideParts(), 3)

	title := slideXML(t, out, 0)
	assert.Contains(t, title, "<a:t>T1</a:t>")
	assert.Contains(t, title, "<a:t>Sub</a:t>")

	second := slideXML(t, out, 1)
	assert.Contains(t, second, "<a:t>T2</a:t>")
	assert.Contains(t, second, "<a:t>plain line</a:t>")
	assert.NotContains(t, second, "line with")
	assert.Contains(t, second, fmt.Sprintf(`<a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/>`,
		pptxtest.SlideWidth/2, pptxtest.SlideHeight/2+20, pptxtest.SlideWidth/2, pptxtest.SlideHeight/2))

	third := slideXML(t, out, 2)
	assert.Contains(t, third, "<a:t>closing</a:t>")
	assert.NotContains(t, third, "<p:pic>")
}

func TestCreate_ImageNotFoundSkipped(t *testing.T) {
	svc, out := newTestService(t, &fakeFetcher{}, nil)

	res, err := svc.Create(context.Background(), CreateRequest{
		Title:   "Deck",
		Content: "# Cats\nCats sleep a lot\n![cat](http://a/missing.png)",
	})

	require.NoError(t, err)
	assert.Equal(t, 2, res.Slides)
	assert.Zero(t, res.ImagesPlaced)
	assert.Equal(t, 1, res.ImagesSkipped)

	xml := slideXML(t, out, 1)
	assert.Contains(t, xml, "<a:t>Cats sleep a lot</a:t>")
	assert.NotContains(t, xml, "<p:pic>")
}

func TestCreate_NonImageBytesSkipped(t *testing.T) {
	fetcher := &fakeFetcher{images: map[string][]byte{"http://a/page": []byte("<html>login</html>")}}
	svc, _ := newTestService(t, fetcher, nil)

	res, err := svc.Create(context.Background(), CreateRequest{
		Title:   "Deck",
		Content: "# A\n![x](http://a/page)\ntext",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, res.ImagesSkipped)
}

func TestCreate_StackedImages(t *testing.T) {
	png := pptxtest.PNG()
	fetcher := &fakeFetcher{images: map[string][]byte{"http://a/1.png": png, "http://a/2.png": png}}
	svc, out := newTestService(t, fetcher, nil)

	res, err := svc.Create(context.Background(), CreateRequest{
		Title:   "Deck",
		Content: "# A\n![one](http://a/1.png)\n![two](http://a/2.png)\n![gone](http://a/3.png)\nbody",
	})

	require.NoError(t, err)
	assert.Equal(t, 2, res.ImagesPlaced)
	assert.Equal(t, 1, res.ImagesSkipped)
	xml := slideXML(t, out, 1)
	assert.Equal(t, 2, strings.Count(xml, "<p:pic>"))
}

func TestCreate_TemplateResolution(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)

	tests := []struct {
		template string
		want     string
	}{
		{"", "default.pptx"},
		{"brand", "brand.pptx"},
		{"brand.pptx", "brand.pptx"},
		{"report", "default.pptx"},
	}
	for _, tt := range tests {
		res, err := svc.Create(context.Background(), CreateRequest{Title: "Deck", Template: tt.template})
		require.NoError(t, err)
		assert.Equal(t, tt.want, res.Template, "template %q", tt.template)
	}
}

func TestCreate_MissingDefaultTemplate(t *testing.T) {
	store := templates.NewStore(t.TempDir(), "")
	svc := NewPresentationService(store, &fakeFetcher{}, nil, filepath.Join(t.TempDir(), "out.pptx"), "")

	_, err := svc.Create(context.Background(), CreateRequest{Title: "Deck"})
	assert.True(t, errors.Is(err, os.ErrNotExist), "got %v", err)
}

func TestCreate_UnwritableOutput(t *testing.T) {
	dir := t.TempDir()
	pptxtest.WriteTemplate(t, dir, "default.pptx")
	svc := NewPresentationService(templates.NewStore(dir, ""), &fakeFetcher{}, nil, filepath.Join(dir, "no", "such", "out.pptx"), "")

	_, err := svc.Create(context.Background(), CreateRequest{Title: "Deck"})
	assert.Error(t, err)
}

func TestCreate_OverwritesOutput(t *testing.T) {
	svc, out := newTestService(t, nil, nil)

	_, err := svc.Create(context.Background(), CreateRequest{Title: "First", Content: "# A\n# B\n# C"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateRequest{Title: "Second"})
	require.NoError(t, err)

	deck, err := pptx.Open(out)
	require.NoError(t, err)
	assert.Len(t, deck.SlideParts(), 1)

	latest, err := svc.Latest()
	require.NoError(t, err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, data, latest)
}

func TestCreate_Publish(t *testing.T) {
	pub := &fakePublisher{}
	svc, out := newTestService(t, nil, pub)

	res, err := svc.Create(context.Background(), CreateRequest{Title: "Deck"})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(pub.key, "decks/"))
	assert.True(t, strings.HasSuffix(pub.key, ".pptx"))
	assert.Equal(t, "https://cdn.example.com/"+pub.key, res.URL)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, data, pub.data)
}

func TestCreate_PublishFailureNotFatal(t *testing.T) {
	svc, out := newTestService(t, nil, &fakePublisher{err: errors.New("bucket gone")})

	res, err := svc.Create(context.Background(), CreateRequest{Title: "Deck"})

	require.NoError(t, err)
	assert.Empty(t, res.URL)
	assert.FileExists(t, out)
}

func TestCreate_CustomMarker(t *testing.T) {
	dir := t.TempDir()
	pptxtest.WriteTemplate(t, dir, "default.pptx")
	svc := NewPresentationService(templates.NewStore(dir, ""), &fakeFetcher{}, nil, filepath.Join(dir, "out.pptx"), "@")

	res, err := svc.Create(context.Background(), CreateRequest{Title: "Deck", Content: "@ A\n# not a slide\n@ B"})

	require.NoError(t, err)
	assert.Equal(t, 3, res.Slides)
}

func TestListTemplates(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)

	got, err := svc.ListTemplates(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"brand.pptx", "default.pptx"}, got)
}
