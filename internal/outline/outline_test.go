package outline

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_ImageLineRemoved(t *testing.T) {
	content := "T1\nbody1\n#T2\nline with ![x](http://a/img.png) and more\nplain line"

	got := Compile("T1", "", content, Options{})

	want := []SlideSpec{
		{Title: "T1", Body: ""},
		{
			Title:  "T2",
			Body:   "plain line",
			Images: []ImageRef{{Label: "x", URL: "http://a/img.png"}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Compile() mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_TitleSlide(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"leading marker", "# Agenda\nitem"},
		{"leading prose", "intro text that is dropped\n# Agenda\nitem"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compile("Quarterly Review", "Q3 2024", tt.content, Options{})
			require.NotEmpty(t, got)
			assert.Equal(t, SlideSpec{Title: "Quarterly Review", Body: "Q3 2024"}, got[0])
		})
	}
}

func TestCompile_SlideCount(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"no sections", "just text", 1},
		{"one section", "# A\nbody", 2},
		{"empty sections skipped", "# A\nx\n#\n#   \n\n# B\ny", 3},
		{"trailing marker", "# A\nx\n#", 2},
		{"three sections", "# A\n# B\n# C", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compile("Deck", "", tt.content, Options{})
			assert.Len(t, got, tt.want)
		})
	}
}

func TestCompile_BodyWithoutImages(t *testing.T) {
	content := "# Goals\n  grow revenue\nhire two engineers  \n"

	got := Compile("Plan", "", content, Options{})

	require.Len(t, got, 2)
	assert.Equal(t, "Goals", got[1].Title)
	assert.Equal(t, "grow revenue\nhire two engineers", got[1].Body)
	assert.Empty(t, got[1].Images)
}

func TestCompile_StripsTitleEverywhere(t *testing.T) {
	content := "# Why Acme\nAcme Widgets sells widgets"

	got := Compile("Acme Widgets", "", content, Options{})

	require.Len(t, got, 2)
	assert.Equal(t, "Why Acme", got[1].Title)
	assert.Equal(t, "sells widgets", got[1].Body)
}

func TestCompile_Images(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantBody   string
		wantImages []ImageRef
	}{
		{
			name:       "image on own line",
			content:    "# Cats\nCats are great\n![cat](https://img/cat.png)\nThe end",
			wantBody:   "Cats are great\nThe end",
			wantImages: []ImageRef{{Label: "cat", URL: "https://img/cat.png"}},
		},
		{
			name:     "two images in order",
			content:  "# Pets\n![a](https://img/a.png)\ntext\n![b](https://img/b.png)",
			wantBody: "text",
			wantImages: []ImageRef{
				{Label: "a", URL: "https://img/a.png"},
				{Label: "b", URL: "https://img/b.png"},
			},
		},
		{
			name:       "second image on same line is lost",
			content:    "# Pets\n![a](https://img/a.png) ![b](https://img/b.png)\nkept",
			wantBody:   "kept",
			wantImages: []ImageRef{{Label: "a", URL: "https://img/a.png"}},
		},
		{
			name:       "empty label",
			content:    "# Pets\n![](https://img/a.png)",
			wantBody:   "",
			wantImages: []ImageRef{{Label: "", URL: "https://img/a.png"}},
		},
		{
			name:     "malformed markup passes through",
			content:  "# Pets\n![a](https://img/a.png\n[b](https://img/b.png)",
			wantBody: "![a](https://img/a.png\n[b](https://img/b.png)",
		},
		{
			name:       "url with query string",
			content:    "# Pets\n![gen](https://x.blob.core.windows.net/g.png?se=2025&sig=a%3D)\nbody",
			wantBody:   "body",
			wantImages: []ImageRef{{Label: "gen", URL: "https://x.blob.core.windows.net/g.png?se=2025&sig=a%3D"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compile("Deck", "", tt.content, Options{})
			require.Len(t, got, 2)
			assert.Equal(t, tt.wantBody, got[1].Body)
			assert.Equal(t, tt.wantImages, got[1].Images)
			for _, img := range got[1].Images {
				assert.Contains(t, tt.content, "("+img.URL+")")
			}
		})
	}
}

func TestCompile_CustomMarker(t *testing.T) {
	content := "@ One\nfirst\n@ Two\nsecond # not a slide"

	got := Compile("Deck", "", content, Options{Marker: "@"})

	require.Len(t, got, 3)
	assert.Equal(t, "One", got[1].Title)
	assert.Equal(t, "second # not a slide", got[2].Body)
}

func TestCompile_TitleOnlySection(t *testing.T) {
	got := Compile("Deck", "", "# Questions?", Options{})

	require.Len(t, got, 2)
	assert.Equal(t, "Questions?", got[1].Title)
	assert.Equal(t, "", got[1].Body)
}

func TestStrip_Idempotent(t *testing.T) {
	tests := []struct {
		content, title, subtitle string
	}{
		{"Deck\nSub\n# A\nDeck again", "Deck", "Sub"},
		{"# A\nbody", "Title", ""},
		{"", "Title", "Sub"},
		{"Sub Sub Sub", "", "Sub"},
	}
	for _, tt := range tests {
		once := Strip(tt.content, tt.title, tt.subtitle)
		twice := Strip(once, tt.title, tt.subtitle)
		assert.Equal(t, once, twice, "Strip(%q)", tt.content)
		if tt.title != "" {
			assert.False(t, strings.Contains(once, tt.title))
		}
	}
}

func TestFindImage(t *testing.T) {
	ref, ok := FindImage("see ![chart](http://c/1.png) and ![x](http://c/2.png)")
	require.True(t, ok)
	assert.Equal(t, ImageRef{Label: "chart", URL: "http://c/1.png"}, ref)

	_, ok = FindImage("no images [here](http://c)")
	assert.False(t, ok)
}
