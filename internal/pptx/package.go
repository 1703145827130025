package pptx

import (
	"encoding/xml"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// Relationship types and content types used when appending slides.
const (
	relTypeOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeSlide          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	relTypeSlideLayout    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	relTypeImage          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"

	contentTypeSlide = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
)

const contentTypesPart = "[Content_Types].xml"

type relationships struct {
	XMLName xml.Name       `xml:"http://schemas.openxmlformats.org/package/2006/relationships Relationships"`
	Rels    []relationship `xml:"Relationship"`
}

type relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

func parseRels(data []byte) (*relationships, error) {
	rels := &relationships{}
	if len(data) == 0 {
		return rels, nil
	}
	if err := xml.Unmarshal(data, rels); err != nil {
		return nil, fmt.Errorf("parse relationships: %w", err)
	}
	return rels, nil
}

func (r *relationships) marshal() ([]byte, error) {
	out, err := xml.Marshal(r)
	if err != nil {
		return nil, err
	}
	return append([]byte(xmlHeader), out...), nil
}

func (r *relationships) byID(id string) (relationship, bool) {
	for _, rel := range r.Rels {
		if rel.ID == id {
			return rel, true
		}
	}
	return relationship{}, false
}

func (r *relationships) byType(relType string) (relationship, bool) {
	for _, rel := range r.Rels {
		if rel.Type == relType {
			return rel, true
		}
	}
	return relationship{}, false
}

var relIDRegex = regexp.MustCompile(`^rId(\d+)$`)

// add appends a relationship with a fresh rIdN and returns the id.
func (r *relationships) add(relType, target string) string {
	next := 1
	for _, rel := range r.Rels {
		if m := relIDRegex.FindStringSubmatch(rel.ID); m != nil {
			if n, _ := strconv.Atoi(m[1]); n >= next {
				next = n + 1
			}
		}
	}
	id := "rId" + strconv.Itoa(next)
	r.Rels = append(r.Rels, relationship{ID: id, Type: relType, Target: target})
	return id
}

// relsPartFor returns the relationships part that belongs to part,
// e.g. ppt/slides/slide1.xml -> ppt/slides/_rels/slide1.xml.rels.
func relsPartFor(part string) string {
	dir, file := path.Split(part)
	return dir + "_rels/" + file + ".rels"
}

// resolveTarget resolves a relationship target relative to the source part.
func resolveTarget(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join(path.Dir(source), target)
}

// relativeTarget is the inverse of resolveTarget.
func relativeTarget(source, part string) string {
	from := strings.Split(path.Dir(source), "/")
	if path.Dir(source) == "." {
		from = nil
	}
	to := strings.Split(part, "/")
	common := 0
	for common < len(from) && common < len(to)-1 && from[common] == to[common] {
		common++
	}
	var b strings.Builder
	for i := common; i < len(from); i++ {
		b.WriteString("../")
	}
	b.WriteString(strings.Join(to[common:], "/"))
	return b.String()
}

type contentTypes struct {
	Defaults []struct {
		Extension   string `xml:"Extension,attr"`
		ContentType string `xml:"ContentType,attr"`
	} `xml:"Default"`
	Overrides []struct {
		PartName    string `xml:"PartName,attr"`
		ContentType string `xml:"ContentType,attr"`
	} `xml:"Override"`
}

// typeRegistry tracks content-type entries appended to [Content_Types].xml.
type typeRegistry struct {
	defaults  map[string]bool
	additions []string
}

func newTypeRegistry(data []byte) (*typeRegistry, error) {
	var ct contentTypes
	if err := xml.Unmarshal(data, &ct); err != nil {
		return nil, fmt.Errorf("parse content types: %w", err)
	}
	reg := &typeRegistry{defaults: make(map[string]bool)}
	for _, d := range ct.Defaults {
		reg.defaults[strings.ToLower(d.Extension)] = true
	}
	return reg, nil
}

func (t *typeRegistry) addDefault(ext, contentType string) {
	ext = strings.ToLower(ext)
	if t.defaults[ext] {
		return
	}
	t.defaults[ext] = true
	t.additions = append(t.additions,
		`<Default Extension="`+escape(ext)+`" ContentType="`+escape(contentType)+`"/>`)
}

func (t *typeRegistry) addOverride(part, contentType string) {
	t.additions = append(t.additions,
		`<Override PartName="/`+escape(part)+`" ContentType="`+escape(contentType)+`"/>`)
}

// apply inserts the pending entries before the closing Types tag.
func (t *typeRegistry) apply(data []byte) ([]byte, error) {
	if len(t.additions) == 0 {
		return data, nil
	}
	doc := string(data)
	i := strings.LastIndex(doc, "</Types>")
	if i < 0 {
		return nil, fmt.Errorf("content types: missing </Types>")
	}
	return []byte(doc[:i] + strings.Join(t.additions, "") + doc[i:]), nil
}

// maxPartNumber returns the highest N among parts named prefix+N+suffix.
func maxPartNumber(parts map[string][]byte, prefix string) int {
	max := 0
	for name := range parts {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		rest := strings.TrimPrefix(name, prefix)
		if dot := strings.IndexByte(rest, '.'); dot > 0 {
			rest = rest[:dot]
		}
		if n, err := strconv.Atoi(rest); err == nil && n > max {
			max = n
		}
	}
	return max
}
