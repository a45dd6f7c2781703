package document

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"
)

const (
	nsCoreProperties = "http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
	nsDublinCore     = "http://purl.org/dc/elements/1.1/"
)

// carrierKind identifies one of the two metadata fields holding envelope tokens.
type carrierKind int

const (
	// signatureCarrier is dc:description.
	signatureCarrier carrierKind = iota
	// publicKeyCarrier is cp:keywords.
	publicKeyCarrier
	carrierCount
)

var carriers = [carrierCount]struct {
	space  string
	local  string
	prefix string
}{
	signatureCarrier: {space: nsDublinCore, local: "description", prefix: "dc"},
	publicKeyCarrier: {space: nsCoreProperties, local: "keywords", prefix: "cp"},
}

// element records byte offsets of an element within core.xml.
type element struct {
	qname       string
	start       int // '<' of the start tag
	startEnd    int // past the start tag
	endStart    int // '<' of the end tag
	end         int // past the end tag
	selfClosing bool
}

type coreProperties struct {
	raw      []byte
	root     element
	rootNS   map[string]string
	carriers [carrierCount]*element
}

func parseCoreProperties(raw []byte) (*coreProperties, error) {
	props := &coreProperties{raw: raw}
	d := xml.NewDecoder(bytes.NewReader(raw))

	depth := 0
	rootSeen := false
	var current *element

	for {
		offset := int(d.InputOffset())
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformed("%s: %v", CorePropertiesPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			tagEnd := int(d.InputOffset())
			el := element{
				qname:       rawQName(raw[offset:tagEnd]),
				start:       offset,
				startEnd:    tagEnd,
				selfClosing: bytes.HasSuffix(raw[offset:tagEnd], []byte("/>")),
			}

			switch depth {
			case 0:
				if rootSeen {
					return nil, malformed("%s: multiple root elements", CorePropertiesPart)
				}
				if t.Name.Local != "coreProperties" {
					return nil, malformed("%s: unexpected root element %q", CorePropertiesPart, t.Name.Local)
				}
				rootSeen = true
				props.root = el
				props.rootNS = namespaceDecls(t.Attr)
			case 1:
				if kind, ok := carrierFor(t.Name); ok && props.carriers[kind] == nil {
					props.carriers[kind] = &el
					current = &el
				}
			}
			depth++

		case xml.EndElement:
			depth--
			switch depth {
			case 0:
				props.root.endStart = offset
				props.root.end = int(d.InputOffset())
			case 1:
				if current != nil {
					current.endStart = offset
					current.end = int(d.InputOffset())
					current = nil
				}
			}
		}
	}

	if !rootSeen {
		return nil, malformed("%s: no root element", CorePropertiesPart)
	}
	return props, nil
}

func carrierFor(name xml.Name) (carrierKind, bool) {
	for kind, c := range carriers {
		if name.Space == c.space && name.Local == c.local {
			return carrierKind(kind), true
		}
	}
	return 0, false
}

// namespaceDecls returns prefix -> URI bindings declared by attrs. The default
// namespace is keyed by the empty prefix.
func namespaceDecls(attrs []xml.Attr) map[string]string {
	decls := make(map[string]string)
	for _, a := range attrs {
		switch {
		case a.Name.Space == "xmlns":
			decls[a.Name.Local] = a.Value
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			decls[""] = a.Value
		}
	}
	return decls
}

// rawQName returns the element name as written in a start tag.
func rawQName(tag []byte) string {
	name := bytes.TrimPrefix(tag, []byte("<"))
	if i := bytes.IndexAny(name, " \t\r\n/>"); i >= 0 {
		name = name[:i]
	}
	return string(name)
}

type edit struct {
	at     int
	delete int
	insert string
}

func applyEdits(raw []byte, edits []edit) []byte {
	sort.SliceStable(edits, func(i, j int) bool { return edits[i].at < edits[j].at })

	var out bytes.Buffer
	out.Grow(len(raw))
	pos := 0
	for _, e := range edits {
		out.Write(raw[pos:e.at])
		out.WriteString(e.insert)
		pos = e.at + e.delete
	}
	out.Write(raw[pos:])
	return out.Bytes()
}

// openTag rewrites a self-closing start tag as an open one.
func openTag(tag []byte) string {
	body := bytes.TrimSuffix(tag, []byte("/>"))
	return string(bytes.TrimRight(body, " \t\r\n")) + ">"
}

// normalizeCoreProperties ensures both carriers exist as explicit
// <x></x> children of the root. Anything else is left byte for byte.
func normalizeCoreProperties(raw []byte) (*coreProperties, error) {
	props, err := parseCoreProperties(raw)
	if err != nil {
		return nil, err
	}

	var edits []edit
	var decls, inserted strings.Builder

	for kind, el := range props.carriers {
		switch {
		case el == nil:
			c := carriers[kind]
			prefix, declare := props.prefixFor(c.space, c.prefix)
			if declare {
				decls.WriteString(" xmlns:" + prefix + "=" + strconv.Quote(c.space))
			}
			qname := c.local
			if prefix != "" {
				qname = prefix + ":" + c.local
			}
			inserted.WriteString("<" + qname + "></" + qname + ">")
		case el.selfClosing:
			edits = append(edits, edit{
				at:     el.start,
				delete: el.startEnd - el.start,
				insert: openTag(raw[el.start:el.startEnd]) + "</" + el.qname + ">",
			})
		}
	}

	if decls.Len() == 0 && inserted.Len() == 0 && len(edits) == 0 {
		return props, nil
	}

	root := props.root
	if root.selfClosing {
		// No children at all, so no carrier edits can overlap.
		tag := openTag(raw[root.start:root.startEnd])
		edits = []edit{{
			at:     root.start,
			delete: root.startEnd - root.start,
			insert: tag[:len(tag)-1] + decls.String() + ">" + inserted.String() + "</" + root.qname + ">",
		}}
	} else {
		if decls.Len() > 0 {
			edits = append(edits, edit{at: root.startEnd - 1, insert: decls.String()})
		}
		if inserted.Len() > 0 {
			edits = append(edits, edit{at: root.endStart, insert: inserted.String()})
		}
	}

	normalized, err := parseCoreProperties(applyEdits(raw, edits))
	if err != nil {
		return nil, err
	}
	for _, el := range normalized.carriers {
		if el == nil || el.selfClosing {
			return nil, malformed("%s: failed to normalize metadata fields", CorePropertiesPart)
		}
	}
	return normalized, nil
}

// prefixFor returns a prefix bound to space on the root element. When none is
// bound it picks an unused prefix derived from preferred, records the binding
// and reports that a declaration must be added.
func (p *coreProperties) prefixFor(space, preferred string) (string, bool) {
	if uri, ok := p.rootNS[preferred]; ok && uri == space {
		return preferred, false
	}
	prefixes := make([]string, 0, len(p.rootNS))
	for prefix := range p.rootNS {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)
	for _, prefix := range prefixes {
		if p.rootNS[prefix] == space {
			return prefix, false
		}
	}

	prefix := preferred
	for i := 1; ; i++ {
		if _, taken := p.rootNS[prefix]; !taken {
			break
		}
		prefix = preferred + strconv.Itoa(i)
	}
	p.rootNS[prefix] = space
	return prefix, true
}

// content returns the raw text of a normalized carrier.
func (p *coreProperties) content(kind carrierKind) []byte {
	el := p.carriers[kind]
	return p.raw[el.startEnd:el.endStart]
}

// withContents returns core.xml with both carrier contents replaced.
func (p *coreProperties) withContents(contents [carrierCount][]byte) []byte {
	edits := make([]edit, 0, carrierCount)
	for kind, el := range p.carriers {
		edits = append(edits, edit{
			at:     el.startEnd,
			delete: el.endStart - el.startEnd,
			insert: string(contents[kind]),
		})
	}
	return applyEdits(p.raw, edits)
}
