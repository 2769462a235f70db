// Package xmp extracts descriptive fields from an embedded XMP (RDF/XML)
// packet. Real-world XMP varies wildly in shape, so extraction is a
// tolerant pattern cascade rather than a strict XML parse: each field is
// tried against an ordered list of matchers until one hits.
package xmp

import (
	"bytes"
	"regexp"
	"strings"
)

// Data is the extracted field map. Empty string means absent.
type Data struct {
	Title       string
	Description string
	Headline    string
	Credit      string
	Creator     string
	Keywords    []string
}

// Empty reports whether no field was extracted.
func (d *Data) Empty() bool {
	return len(d.Keywords) == 0 &&
		d.Title == "" && d.Description == "" && d.Headline == "" &&
		d.Credit == "" && d.Creator == ""
}

// matcher is one alternative shape a field can take. Matchers for a field
// are tried in order; the first submatch wins.
type matcher struct {
	re *regexp.Regexp
}

func (m matcher) find(doc string) (string, bool) {
	if sub := m.re.FindStringSubmatch(doc); sub != nil {
		return cleanValue(sub[1]), true
	}
	return "", false
}

// alt builds the matcher cascade for a namespaced element: the bare
// element, then the element wrapping an rdf:Alt/Bag/Seq list, then the
// attribute form.
func alt(name string) []matcher {
	return []matcher{
		{regexp.MustCompile(`(?is)<` + name + `[^>]*>\s*<rdf:(?:Alt|Bag|Seq)[^>]*>\s*<rdf:li[^>]*>(.*?)</rdf:li>`)},
		{regexp.MustCompile(`(?is)<` + name + `[^>]*>([^<]+)</` + name + `>`)},
		{regexp.MustCompile(`(?is)\b` + name + `="([^"]+)"`)},
	}
}

var (
	titleMatchers       = alt("dc:title")
	descriptionMatchers = alt("dc:description")
	headlineMatchers    = alt("photoshop:Headline")
	creditMatchers      = alt("photoshop:Credit")
	creatorMatchers     = alt("dc:creator")

	subjectRe    = regexp.MustCompile(`(?is)<dc:subject[^>]*>\s*<rdf:(?:Bag|Seq)[^>]*>(.*?)</rdf:(?:Bag|Seq)>`)
	subjectAnyRe = regexp.MustCompile(`(?is)<dc:subject[^>]*>(.*?)</dc:subject>`)
	liRe         = regexp.MustCompile(`(?is)<rdf:li[^>]*>(.*?)</rdf:li>`)

	tagRe = regexp.MustCompile(`<[^>]*>`)
)

// Parse extracts XMP fields from a segment. The embedded document starts
// at the literal "<?xm" of its XML declaration (or the segment start when
// no declaration is present) and ends at the first NUL byte or the end of
// the segment.
func Parse(segment []byte) *Data {
	doc := document(segment)
	d := &Data{}
	if doc == "" {
		return d
	}

	d.Title = firstMatch(doc, titleMatchers)
	d.Description = firstMatch(doc, descriptionMatchers)
	d.Headline = firstMatch(doc, headlineMatchers)
	d.Credit = firstMatch(doc, creditMatchers)
	d.Creator = firstMatch(doc, creatorMatchers)
	d.Keywords = keywords(doc)
	return d
}

// document slices the XML text out of the segment and sanitises it to
// valid UTF-8.
func document(segment []byte) string {
	start := bytes.Index(segment, []byte("<?xm"))
	if start < 0 {
		if i := bytes.Index(segment, []byte("<x:xmpmeta")); i >= 0 {
			start = i
		} else if i := bytes.Index(segment, []byte("<rdf:RDF")); i >= 0 {
			start = i
		} else {
			return ""
		}
	}
	doc := segment[start:]
	if end := bytes.IndexByte(doc, 0); end >= 0 {
		doc = doc[:end]
	}
	return strings.ToValidUTF8(string(doc), "�")
}

func firstMatch(doc string, matchers []matcher) string {
	for _, m := range matchers {
		if v, ok := m.find(doc); ok && v != "" {
			return v
		}
	}
	return ""
}

// keywords collects every rdf:li inside a dc:subject bag or sequence,
// falling back to any rdf:li list when dc:subject has no wrapper.
func keywords(doc string) []string {
	var scope string
	if sub := subjectRe.FindStringSubmatch(doc); sub != nil {
		scope = sub[1]
	} else if sub := subjectAnyRe.FindStringSubmatch(doc); sub != nil {
		scope = sub[1]
	} else {
		return nil
	}

	var out []string
	for _, li := range liRe.FindAllStringSubmatch(scope, -1) {
		v := cleanValue(li[1])
		if v == "" {
			continue
		}
		dup := false
		for _, seen := range out {
			if seen == v {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return out
}

// cleanValue strips nested tags and unescapes the five standard XML
// entities.
func cleanValue(v string) string {
	v = tagRe.ReplaceAllString(v, "")
	v = strings.ReplaceAll(v, "&lt;", "<")
	v = strings.ReplaceAll(v, "&gt;", ">")
	v = strings.ReplaceAll(v, "&quot;", `"`)
	v = strings.ReplaceAll(v, "&apos;", "'")
	v = strings.ReplaceAll(v, "&amp;", "&")
	return strings.TrimSpace(v)
}
