// Package pptx appends slides to PowerPoint (OOXML) templates.
//
// A Deck is loaded fully into memory. Slides are created from the layouts of
// the first slide master, their placeholders are copied from the layout, and
// pictures are embedded as media parts. Existing slides in the template are
// kept.
package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// Default slide size (4:3) used when presentation.xml has no sldSz.
const (
	defaultSlideWidth  int64 = 9144000
	defaultSlideHeight int64 = 6858000
)

// ErrLayoutNotFound is returned by AddSlide for an out-of-range layout index.
var ErrLayoutNotFound = errors.New("pptx: slide layout not found")

// Deck is an in-memory presentation package.
type Deck struct {
	parts map[string][]byte
	order []string

	presPart string
	pres     string
	presRels *relationships
	types    *typeRegistry

	width, height int64
	layouts       []string

	slides       []*Slide
	nextSlideNum int
	nextSlideID  int
	nextMediaNum int
}

type presentationXML struct {
	Masters []struct {
		RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sldMasterIdLst>sldMasterId"`
	Size *struct {
		Cx int64 `xml:"cx,attr"`
		Cy int64 `xml:"cy,attr"`
	} `xml:"sldSz"`
}

type masterXML struct {
	Layouts []struct {
		RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sldLayoutIdLst>sldLayoutId"`
}

// Open reads a .pptx file.
func Open(path string) (*Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	return Read(data)
}

// Read parses a .pptx package from memory.
func Read(data []byte) (*Deck, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open package: %w", err)
	}

	d := &Deck{parts: make(map[string][]byte, len(zr.File))}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open part %s: %w", f.Name, err)
		}
		body, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read part %s: %w", f.Name, err)
		}
		d.parts[f.Name] = body
		d.order = append(d.order, f.Name)
	}

	if err := d.load(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Deck) load() error {
	ct, ok := d.parts[contentTypesPart]
	if !ok {
		return fmt.Errorf("pptx: missing %s", contentTypesPart)
	}
	types, err := newTypeRegistry(ct)
	if err != nil {
		return err
	}
	d.types = types

	rootRels, err := parseRels(d.parts["_rels/.rels"])
	if err != nil {
		return err
	}
	d.presPart = "ppt/presentation.xml"
	if rel, ok := rootRels.byType(relTypeOfficeDocument); ok {
		d.presPart = resolveTarget("", rel.Target)
	}
	pres, ok := d.parts[d.presPart]
	if !ok {
		return fmt.Errorf("pptx: missing %s", d.presPart)
	}
	d.pres = string(pres)

	if d.presRels, err = parseRels(d.parts[relsPartFor(d.presPart)]); err != nil {
		return err
	}

	var p presentationXML
	if err := xml.Unmarshal(pres, &p); err != nil {
		return fmt.Errorf("parse presentation: %w", err)
	}
	d.width, d.height = defaultSlideWidth, defaultSlideHeight
	if p.Size != nil && p.Size.Cx > 0 && p.Size.Cy > 0 {
		d.width, d.height = p.Size.Cx, p.Size.Cy
	}

	if len(p.Masters) > 0 {
		if err := d.loadLayouts(p.Masters[0].RID); err != nil {
			return err
		}
	}

	d.nextSlideNum = maxPartNumber(d.parts, "ppt/slides/slide") + 1
	d.nextMediaNum = maxPartNumber(d.parts, "ppt/media/image") + 1
	d.nextSlideID = 256
	for _, m := range slideIDRegex.FindAllStringSubmatch(d.pres, -1) {
		if n, _ := strconv.Atoi(m[1]); n >= d.nextSlideID {
			d.nextSlideID = n + 1
		}
	}
	return nil
}

func (d *Deck) loadLayouts(masterRID string) error {
	rel, ok := d.presRels.byID(masterRID)
	if !ok {
		return fmt.Errorf("pptx: slide master %s not found", masterRID)
	}
	masterPart := resolveTarget(d.presPart, rel.Target)

	var m masterXML
	if err := xml.Unmarshal(d.parts[masterPart], &m); err != nil {
		return fmt.Errorf("parse slide master: %w", err)
	}
	masterRels, err := parseRels(d.parts[relsPartFor(masterPart)])
	if err != nil {
		return err
	}
	for _, l := range m.Layouts {
		lr, ok := masterRels.byID(l.RID)
		if !ok {
			continue
		}
		d.layouts = append(d.layouts, resolveTarget(masterPart, lr.Target))
	}
	return nil
}

// SlideWidth is the slide width in EMU.
func (d *Deck) SlideWidth() int64 { return d.width }

// SlideHeight is the slide height in EMU.
func (d *Deck) SlideHeight() int64 { return d.height }

// Layouts returns the number of slide layouts in the first master.
func (d *Deck) Layouts() int { return len(d.layouts) }

var (
	slideIDRegex    = regexp.MustCompile(`<p:sldId\b[^>]*?\bid="(\d+)"`)
	slideRIDRegex   = regexp.MustCompile(`<p:sldId\b[^>]*?\br:id="([^"]+)"`)
	sldIDListOpen   = "<p:sldIdLst>"
	sldIDListClose  = "</p:sldIdLst>"
	sldIDListEmpty  = "<p:sldIdLst/>"
	sldSizeOpen     = "<p:sldSz"
	masterListClose = "</p:sldMasterIdLst>"
)

// AddSlide appends a slide based on the layout at index layout.
func (d *Deck) AddSlide(layout int) (*Slide, error) {
	if layout < 0 || layout >= len(d.layouts) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrLayoutNotFound, layout, len(d.layouts))
	}
	layoutPart := d.layouts[layout]
	placeholders, err := layoutPlaceholders(d.parts[layoutPart])
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", layoutPart, err)
	}

	part := "ppt/slides/slide" + strconv.Itoa(d.nextSlideNum) + ".xml"
	d.nextSlideNum++

	rID := d.presRels.add(relTypeSlide, relativeTarget(d.presPart, part))
	if err := d.insertSlideID(d.nextSlideID, rID); err != nil {
		return nil, err
	}
	d.nextSlideID++
	d.types.addOverride(part, contentTypeSlide)

	s := &Slide{deck: d, part: part, nextShapeID: 2}
	s.rels.add(relTypeSlideLayout, relativeTarget(part, layoutPart))
	for _, ph := range placeholders {
		s.addPlaceholder(ph)
	}
	d.slides = append(d.slides, s)
	return s, nil
}

func (d *Deck) insertSlideID(id int, rID string) error {
	entry := `<p:sldId id="` + strconv.Itoa(id) + `" r:id="` + rID + `"/>`
	switch {
	case strings.Contains(d.pres, sldIDListClose):
		d.pres = strings.Replace(d.pres, sldIDListClose, entry+sldIDListClose, 1)
	case strings.Contains(d.pres, sldIDListEmpty):
		d.pres = strings.Replace(d.pres, sldIDListEmpty, sldIDListOpen+entry+sldIDListClose, 1)
	case strings.Contains(d.pres, sldSizeOpen):
		d.pres = strings.Replace(d.pres, sldSizeOpen, sldIDListOpen+entry+sldIDListClose+sldSizeOpen, 1)
	case strings.Contains(d.pres, masterListClose):
		d.pres = strings.Replace(d.pres, masterListClose, masterListClose+sldIDListOpen+entry+sldIDListClose, 1)
	default:
		return fmt.Errorf("pptx: cannot place slide list in %s", d.presPart)
	}
	return nil
}

// SlideParts lists slide part names in presentation order.
func (d *Deck) SlideParts() []string {
	var out []string
	for _, m := range slideRIDRegex.FindAllStringSubmatch(d.pres, -1) {
		if rel, ok := d.presRels.byID(m[1]); ok {
			out = append(out, resolveTarget(d.presPart, rel.Target))
		}
	}
	return out
}

// Part returns the current content of a package part.
func (d *Deck) Part(name string) ([]byte, bool) {
	if err := d.flush(); err != nil {
		return nil, false
	}
	data, ok := d.parts[name]
	return data, ok
}

func (d *Deck) setPart(name string, data []byte) {
	if _, ok := d.parts[name]; !ok {
		d.order = append(d.order, name)
	}
	d.parts[name] = data
}

// flush renders pending slides and bookkeeping parts into d.parts.
func (d *Deck) flush() error {
	for _, s := range d.slides {
		d.setPart(s.part, s.render())
		rels, err := s.rels.marshal()
		if err != nil {
			return fmt.Errorf("slide rels: %w", err)
		}
		d.setPart(relsPartFor(s.part), rels)
	}
	presRels, err := d.presRels.marshal()
	if err != nil {
		return fmt.Errorf("presentation rels: %w", err)
	}
	d.setPart(relsPartFor(d.presPart), presRels)
	d.setPart(d.presPart, []byte(d.pres))

	ct, err := d.types.apply(d.parts[contentTypesPart])
	if err != nil {
		return err
	}
	d.types.additions = nil
	d.setPart(contentTypesPart, ct)
	return nil
}

// Write encodes the package as a zip archive.
func (d *Deck) Write(w io.Writer) error {
	if err := d.flush(); err != nil {
		return err
	}
	zw := zip.NewWriter(w)
	for _, name := range d.order {
		fw, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("create part %s: %w", name, err)
		}
		if _, err := fw.Write(d.parts[name]); err != nil {
			return fmt.Errorf("write part %s: %w", name, err)
		}
	}
	return zw.Close()
}

// Save writes the package to path, replacing any existing file.
func (d *Deck) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := d.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
