package pptx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// ErrUnsupportedImage is returned by AddPicture for bytes that are not a
// PNG, JPEG, GIF, BMP or WebP image.
var ErrUnsupportedImage = errors.New("pptx: unsupported image format")

// ErrPlaceholderNotFound is returned when a slide has no placeholder with the
// requested index.
var ErrPlaceholderNotFound = errors.New("pptx: placeholder not found")

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/gif":  "gif",
	"image/bmp":  "bmp",
	"image/webp": "webp",
}

// Slide is a slide added to a Deck. Its XML is produced when the deck is
// written.
type Slide struct {
	deck        *Deck
	part        string
	rels        relationships
	shapes      []*shape
	nextShapeID int
}

type shape struct {
	id   int
	name string

	// placeholder
	ph   *placeholder
	text string

	// picture
	relID               string
	x, y, width, height int64
}

type placeholder struct {
	Type string `xml:"type,attr"`
	Idx  string `xml:"idx,attr"`
}

// index is the placeholder idx; title placeholders default to 0.
func (p *placeholder) index() int {
	n, err := strconv.Atoi(p.Idx)
	if err != nil {
		return 0
	}
	return n
}

func (p *placeholder) isTitle() bool {
	return p.Type == "title" || p.Type == "ctrTitle"
}

type layoutXML struct {
	Shapes []struct {
		NvSpPr struct {
			CNvPr struct {
				Name string `xml:"name,attr"`
			} `xml:"cNvPr"`
			NvPr struct {
				Ph *placeholder `xml:"ph"`
			} `xml:"nvPr"`
		} `xml:"nvSpPr"`
	} `xml:"cSld>spTree>sp"`
}

type layoutPlaceholder struct {
	name string
	ph   placeholder
}

// layoutPlaceholders lists the placeholders a new slide inherits from a
// layout. Date, footer and slide-number placeholders are not copied.
func layoutPlaceholders(data []byte) ([]layoutPlaceholder, error) {
	var l layoutXML
	if err := xml.Unmarshal(data, &l); err != nil {
		return nil, err
	}
	var out []layoutPlaceholder
	for _, sp := range l.Shapes {
		ph := sp.NvSpPr.NvPr.Ph
		if ph == nil {
			continue
		}
		switch ph.Type {
		case "dt", "ftr", "sldNum":
			continue
		}
		out = append(out, layoutPlaceholder{name: sp.NvSpPr.CNvPr.Name, ph: *ph})
	}
	return out, nil
}

func (s *Slide) addPlaceholder(lp layoutPlaceholder) {
	id := s.nextShapeID
	s.nextShapeID++
	name := lp.name
	if name == "" {
		name = "Placeholder " + strconv.Itoa(id-1)
	}
	ph := lp.ph
	s.shapes = append(s.shapes, &shape{id: id, name: name, ph: &ph})
}

// SetTitle sets the text of the title placeholder.
func (s *Slide) SetTitle(text string) error {
	for _, sh := range s.shapes {
		if sh.ph != nil && sh.ph.isTitle() {
			sh.text = text
			return nil
		}
	}
	return fmt.Errorf("%w: title", ErrPlaceholderNotFound)
}

// SetPlaceholderText sets the text of the placeholder with the given idx.
// Lines become separate paragraphs.
func (s *Slide) SetPlaceholderText(idx int, text string) error {
	for _, sh := range s.shapes {
		if sh.ph != nil && !sh.ph.isTitle() && sh.ph.index() == idx {
			sh.text = text
			return nil
		}
	}
	return fmt.Errorf("%w: idx %d", ErrPlaceholderNotFound, idx)
}

// AddPicture embeds an image at the given position and size (EMU).
func (s *Slide) AddPicture(data []byte, left, top, width, height int64) error {
	ext, ok := imageExtensions[http.DetectContentType(data)]
	if !ok {
		return ErrUnsupportedImage
	}
	d := s.deck
	media := "ppt/media/image" + strconv.Itoa(d.nextMediaNum) + "." + ext
	d.nextMediaNum++
	d.setPart(media, data)
	d.types.addDefault(ext, "image/"+ext)

	id := s.nextShapeID
	s.nextShapeID++
	s.shapes = append(s.shapes, &shape{
		id:     id,
		name:   "Picture " + strconv.Itoa(id-1),
		relID:  s.rels.add(relTypeImage, relativeTarget(s.part, media)),
		x:      left,
		y:      top,
		width:  width,
		height: height,
	})
	return nil
}

// Pictures returns the number of pictures on the slide.
func (s *Slide) Pictures() int {
	n := 0
	for _, sh := range s.shapes {
		if sh.ph == nil {
			n++
		}
	}
	return n
}

func (s *Slide) render() []byte {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"`)
	b.WriteString(` xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`)
	b.WriteString(` xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">`)
	b.WriteString(`<p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>`)
	b.WriteString(`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`)
	for _, sh := range s.shapes {
		if sh.ph != nil {
			writePlaceholder(&b, sh)
		} else {
			writePicture(&b, sh)
		}
	}
	b.WriteString(`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`)
	return []byte(b.String())
}

func writePlaceholder(b *strings.Builder, sh *shape) {
	fmt.Fprintf(b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/>`, sh.id, escape(sh.name))
	b.WriteString(`<p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph`)
	if sh.ph.Type != "" {
		b.WriteString(` type="` + escape(sh.ph.Type) + `"`)
	}
	if sh.ph.Idx != "" {
		b.WriteString(` idx="` + escape(sh.ph.Idx) + `"`)
	}
	b.WriteString(`/></p:nvPr></p:nvSpPr><p:spPr/><p:txBody><a:bodyPr/><a:lstStyle/>`)
	writeParagraphs(b, sh.text)
	b.WriteString(`</p:txBody></p:sp>`)
}

func writeParagraphs(b *strings.Builder, text string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			b.WriteString(`<a:p/>`)
			continue
		}
		b.WriteString(`<a:p><a:r><a:rPr lang="en-US" dirty="0"/><a:t>`)
		b.WriteString(escape(line))
		b.WriteString(`</a:t></a:r></a:p>`)
	}
}

func writePicture(b *strings.Builder, sh *shape) {
	fmt.Fprintf(b, `<p:pic><p:nvPicPr><p:cNvPr id="%d" name="%s"/>`, sh.id, escape(sh.name))
	b.WriteString(`<p:cNvPicPr><a:picLocks noChangeAspect="1"/></p:cNvPicPr><p:nvPr/></p:nvPicPr>`)
	fmt.Fprintf(b, `<p:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>`, escape(sh.relID))
	fmt.Fprintf(b, `<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`, sh.x, sh.y, sh.width, sh.height)
	b.WriteString(`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr></p:pic>`)
}

func escape(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}
