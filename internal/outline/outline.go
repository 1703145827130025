// Package outline compiles a flat text outline into slide descriptors.
//
// An outline is plain text in which a marker character (by default '#') starts
// every slide. The presentation title and subtitle are stripped from the text
// before splitting, the first section always becomes the title slide, and
// inline markdown images (![label](url)) are lifted out of the body so a
// renderer can replace them with real pictures.
package outline

import (
	"regexp"
	"strings"
)

// DefaultMarker separates slides in an outline.
const DefaultMarker = "#"

// imageRegex matches inline markdown images; label and url are non-greedy.
var imageRegex = regexp.MustCompile(`!\[(.*?)\]\((.*?)\)`)

// ImageRef is a markdown image reference waiting to be downloaded and placed.
type ImageRef struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// SlideSpec describes one slide before rendering.
type SlideSpec struct {
	Title  string     `json:"title"`
	Body   string     `json:"body"`
	Images []ImageRef `json:"images,omitempty"`
}

// Options tunes Compile.
type Options struct {
	// Marker starts a new slide. Empty means DefaultMarker.
	Marker string
}

func (o Options) marker() string {
	if o.Marker == "" {
		return DefaultMarker
	}
	return o.Marker
}

// Compile turns content into an ordered list of slides. The first slide is
// always the title slide (title + subtitle, no images); every following
// non-empty section yields exactly one slide.
func Compile(title, subtitle, content string, opts Options) []SlideSpec {
	stripped := Strip(content, title, subtitle)
	sections := strings.Split(stripped, opts.marker())

	slides := make([]SlideSpec, 0, len(sections))
	slides = append(slides, SlideSpec{Title: title, Body: subtitle})

	for _, section := range sections[1:] {
		if strings.TrimSpace(section) == "" {
			continue
		}
		slides = append(slides, compileSection(section))
	}
	return slides
}

// Strip removes every occurrence of title and subtitle from content.
// This is plain substring removal: the title is also removed from prose that
// happens to contain it.
func Strip(content, title, subtitle string) string {
	if title != "" {
		content = strings.ReplaceAll(content, title, "")
	}
	if subtitle != "" {
		content = strings.ReplaceAll(content, subtitle, "")
	}
	return content
}

func compileSection(section string) SlideSpec {
	titleLine := section
	if i := strings.IndexByte(section, '\n'); i >= 0 {
		titleLine = section[:i]
	}
	body := strings.TrimSpace(strings.Replace(section, titleLine, "", 1))

	var images []ImageRef
	for {
		ref, loc, ok := findImage(body)
		if !ok {
			break
		}
		images = append(images, ref)
		body = removeLineAt(body, loc)
	}

	return SlideSpec{
		Title:  strings.TrimSpace(titleLine),
		Body:   strings.TrimSpace(body),
		Images: images,
	}
}

// FindImage returns the first markdown image in text.
func FindImage(text string) (ImageRef, bool) {
	ref, _, ok := findImage(text)
	return ref, ok
}

func findImage(text string) (ImageRef, int, bool) {
	m := imageRegex.FindStringSubmatchIndex(text)
	if m == nil {
		return ImageRef{}, 0, false
	}
	return ImageRef{
		Label: text[m[2]:m[3]],
		URL:   text[m[4]:m[5]],
	}, m[0], true
}

// removeLineAt deletes the whole line containing byte offset pos, together
// with one adjacent line break.
func removeLineAt(text string, pos int) string {
	start := strings.LastIndexByte(text[:pos], '\n') + 1
	end := len(text)
	if i := strings.IndexByte(text[pos:], '\n'); i >= 0 {
		end = pos + i + 1
	} else if start > 0 {
		start--
	}
	return text[:start] + text[end:]
}
