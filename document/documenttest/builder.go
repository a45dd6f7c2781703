// Package documenttest builds small OOXML packages for tests.
package documenttest

import (
	"archive/zip"
	"bytes"
	"time"
)

// DefaultCoreXML has empty, explicit carrier fields.
const DefaultCoreXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:dcmitype="http://purl.org/dc/dcmitype/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"><dc:title>Quarterly report</dc:title><dc:creator>Alice</dc:creator><cp:keywords></cp:keywords><dc:description></dc:description><cp:lastModifiedBy>Alice</cp:lastModifiedBy><cp:revision>2</cp:revision><dcterms:created xsi:type="dcterms:W3CDTF">2024-01-01T10:00:00Z</dcterms:created><dcterms:modified xsi:type="dcterms:W3CDTF">2024-01-02T10:00:00Z</dcterms:modified></cp:coreProperties>`

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/><Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/></Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/><Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/></Relationships>`

// DocumentXML returns a minimal WordprocessingML body holding text.
func DocumentXML(text string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`
}

// Part is a named archive entry.
type Part struct {
	Name string
	Data []byte
}

// Builder assembles a package. The zero value is not useful, use New.
type Builder struct {
	parts    []Part
	modified time.Time
	deflate  bool
	comment  string
}

// New returns a builder for a minimal word document with DefaultCoreXML.
// Entries are deflated with a non-canonical timestamp so that canonicalization
// has work to do.
func New() *Builder {
	return &Builder{
		parts: []Part{
			{Name: "[Content_Types].xml", Data: []byte(contentTypesXML)},
			{Name: "_rels/.rels", Data: []byte(relsXML)},
			{Name: "word/document.xml", Data: []byte(DocumentXML("Hello, world"))},
			{Name: "docProps/core.xml", Data: []byte(DefaultCoreXML)},
		},
		modified: time.Date(2024, 3, 14, 15, 9, 26, 0, time.UTC),
		deflate:  true,
		comment:  "built by documenttest",
	}
}

// WithPart replaces the named part or appends it when absent.
func (b *Builder) WithPart(name string, data []byte) *Builder {
	for i := range b.parts {
		if b.parts[i].Name == name {
			b.parts[i].Data = data
			return b
		}
	}
	b.parts = append(b.parts, Part{Name: name, Data: data})
	return b
}

// Append adds a part even when one with the same name exists.
func (b *Builder) Append(name string, data []byte) *Builder {
	b.parts = append(b.parts, Part{Name: name, Data: data})
	return b
}

// WithCoreXML replaces docProps/core.xml.
func (b *Builder) WithCoreXML(coreXML string) *Builder {
	return b.WithPart("docProps/core.xml", []byte(coreXML))
}

// WithText replaces the body text of word/document.xml.
func (b *Builder) WithText(text string) *Builder {
	return b.WithPart("word/document.xml", []byte(DocumentXML(text)))
}

// Without drops the named part.
func (b *Builder) Without(name string) *Builder {
	kept := b.parts[:0]
	for _, p := range b.parts {
		if p.Name != name {
			kept = append(kept, p)
		}
	}
	b.parts = kept
	return b
}

// WithModified sets the entry timestamp.
func (b *Builder) WithModified(t time.Time) *Builder {
	b.modified = t
	return b
}

// Stored disables compression.
func (b *Builder) Stored() *Builder {
	b.deflate = false
	return b
}

// Build writes the archive. It panics on writer errors, which only happen on
// invalid builder input.
func (b *Builder) Build() []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	method := zip.Store
	if b.deflate {
		method = zip.Deflate
	}

	for _, p := range b.parts {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     p.Name,
			Method:   method,
			Modified: b.modified,
			Comment:  "entry " + p.Name,
		})
		if err != nil {
			panic(err)
		}
		if _, err := w.Write(p.Data); err != nil {
			panic(err)
		}
	}

	if err := zw.SetComment(b.comment); err != nil {
		panic(err)
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Entries returns the parts of an archive by name, in archive order.
func Entries(data []byte) ([]Part, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	parts := make([]Part, 0, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		var content bytes.Buffer
		_, err = content.ReadFrom(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		parts = append(parts, Part{Name: f.Name, Data: content.Bytes()})
	}
	return parts, nil
}

// PartData returns the content of the named entry, or nil.
func PartData(data []byte, name string) []byte {
	parts, err := Entries(data)
	if err != nil {
		return nil
	}
	for _, p := range parts {
		if p.Name == name {
			return p.Data
		}
	}
	return nil
}
