package document

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/ruteri/doc-signing-backend/document/documenttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const coreNamespaces = `xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/"`

func coreXML(children string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<cp:coreProperties ` + coreNamespaces + `>` + children + `</cp:coreProperties>`
}

func TestCanonicalizeNormalizesArchive(t *testing.T) {
	raw := documenttest.New().Build()

	canonical, err := Canonicalize(raw)
	require.NoError(t, err)
	require.NotEqual(t, raw, canonical)

	zr, err := zip.NewReader(bytes.NewReader(canonical), int64(len(canonical)))
	require.NoError(t, err)
	require.Empty(t, zr.Comment)

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
		assert.Equal(t, zip.Store, f.Method, f.Name)
		assert.Empty(t, f.Comment, f.Name)
		assert.True(t, f.Modified.Equal(canonicalModTime), f.Name)
	}
	// Original archive order is kept
	require.Equal(t, []string{"[Content_Types].xml", "_rels/.rels", "word/document.xml", "docProps/core.xml"}, names)

	// Part contents are preserved
	original, err := documenttest.Entries(raw)
	require.NoError(t, err)
	for _, p := range original {
		assert.Equal(t, p.Data, documenttest.PartData(canonical, p.Name), p.Name)
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{name: "default document", raw: documenttest.New().Build()},
		{name: "stored entries", raw: documenttest.New().Stored().Build()},
		{name: "self-closing carriers", raw: documenttest.New().WithCoreXML(coreXML(`<dc:title>t</dc:title><cp:keywords/><dc:description />`)).Build()},
		{name: "missing carriers", raw: documenttest.New().WithCoreXML(coreXML(`<dc:title>t</dc:title>`)).Build()},
		{name: "extra parts", raw: documenttest.New().WithPart("word/media/image1.png", []byte{0x89, 'P', 'N', 'G'}).WithPart("word/media/", nil).Build()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once, err := Canonicalize(tt.raw)
			require.NoError(t, err)
			twice, err := Canonicalize(once)
			require.NoError(t, err)
			require.Equal(t, once, twice)
		})
	}
}

func TestCanonicalizeIgnoresArchiveEncoding(t *testing.T) {
	a := documenttest.New().Build()
	b := documenttest.New().Stored().WithModified(time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)).Build()
	require.NotEqual(t, a, b)

	ca, err := Canonicalize(a)
	require.NoError(t, err)
	cb, err := Canonicalize(b)
	require.NoError(t, err)

	require.Equal(t, ca, cb)
	require.Equal(t, Digest(ca), Digest(cb))
}

func TestCanonicalizePreservesModifiedTimestamp(t *testing.T) {
	canonical, err := Canonicalize(documenttest.New().Build())
	require.NoError(t, err)

	core := string(documenttest.PartData(canonical, CorePropertiesPart))
	require.Contains(t, core, `<dcterms:modified xsi:type="dcterms:W3CDTF">2024-01-02T10:00:00Z</dcterms:modified>`)
}

func TestCanonicalizeCarriers(t *testing.T) {
	tests := []struct {
		name     string
		core     string
		expected string
	}{
		{
			name:     "explicit carriers unchanged",
			core:     coreXML(`<cp:keywords>a, b</cp:keywords><dc:description>notes</dc:description>`),
			expected: coreXML(`<cp:keywords>a, b</cp:keywords><dc:description>notes</dc:description>`),
		},
		{
			name:     "self-closing carriers expanded",
			core:     coreXML(`<cp:keywords/><dc:description xml:lang="en" />`),
			expected: coreXML(`<cp:keywords></cp:keywords><dc:description xml:lang="en"></dc:description>`),
		},
		{
			name:     "missing carriers inserted before root end",
			core:     coreXML(`<dc:title>t</dc:title>`),
			expected: coreXML(`<dc:title>t</dc:title><dc:description></dc:description><cp:keywords></cp:keywords>`),
		},
		{
			name: "undeclared namespace added to root",
			core: `<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"><cp:revision>1</cp:revision></cp:coreProperties>`,
			expected: `<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/">` +
				`<cp:revision>1</cp:revision><dc:description></dc:description><cp:keywords></cp:keywords></cp:coreProperties>`,
		},
		{
			name: "taken prefix gets a suffix",
			core: `<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="urn:other"></cp:coreProperties>`,
			expected: `<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="urn:other" xmlns:dc1="http://purl.org/dc/elements/1.1/">` +
				`<dc1:description></dc1:description><cp:keywords></cp:keywords></cp:coreProperties>`,
		},
		{
			name: "self-closing root expanded",
			core: `<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/"/>`,
			expected: `<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/">` +
				`<dc:description></dc:description><cp:keywords></cp:keywords></cp:coreProperties>`,
		},
		{
			name:     "nested lookalikes ignored",
			core:     coreXML(`<cp:keywords></cp:keywords><dc:subject><dc:description/></dc:subject><dc:description></dc:description>`),
			expected: coreXML(`<cp:keywords></cp:keywords><dc:subject><dc:description/></dc:subject><dc:description></dc:description>`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			canonical, err := Canonicalize(documenttest.New().WithCoreXML(tt.core).Build())
			require.NoError(t, err)
			require.Equal(t, tt.expected, string(documenttest.PartData(canonical, CorePropertiesPart)))
		})
	}
}

func TestCanonicalizeMalformed(t *testing.T) {
	encrypted := func() []byte {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		for _, name := range []string{ContentTypesPart, CorePropertiesPart} {
			w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store, Flags: 0x1})
			require.NoError(t, err)
			_, err = w.Write([]byte("opaque"))
			require.NoError(t, err)
		}
		require.NoError(t, zw.Close())
		return buf.Bytes()
	}

	tests := []struct {
		name string
		raw  []byte
	}{
		{name: "empty input", raw: nil},
		{name: "not a zip", raw: []byte("%PDF-1.7 definitely not a package")},
		{name: "truncated zip", raw: documenttest.New().Build()[:100]},
		{name: "encrypted entries", raw: encrypted()},
		{name: "duplicate entries", raw: documenttest.New().Append("word/document.xml", []byte("again")).Build()},
		{name: "missing content types", raw: documenttest.New().Without(ContentTypesPart).Build()},
		{name: "missing core properties", raw: documenttest.New().Without(CorePropertiesPart).Build()},
		{name: "core properties not xml", raw: documenttest.New().WithCoreXML("not xml at all <").Build()},
		{name: "core properties unbalanced", raw: documenttest.New().WithCoreXML(coreXML(`<dc:title>t`)).Build()},
		{name: "core properties empty", raw: documenttest.New().WithCoreXML("").Build()},
		{name: "unexpected root", raw: documenttest.New().WithCoreXML(`<properties><dc:title>t</dc:title></properties>`).Build()},
		{name: "multiple roots", raw: documenttest.New().WithCoreXML(coreXML("") + coreXML("")).Build()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Canonicalize(tt.raw)
			require.ErrorIs(t, err, ErrMalformedContainer)
		})
	}
}

func TestReadPartLimit(t *testing.T) {
	raw := documenttest.New().WithText(strings.Repeat("x", 4096)).Build()
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		_, err := readPart(f, 1024)
		require.ErrorIs(t, err, errTooLarge)

		data, err := readPart(f, 1<<20)
		require.NoError(t, err)
		require.Contains(t, string(data), strings.Repeat("x", 4096))
	}
}

func TestDigest(t *testing.T) {
	// SHA-256 of the empty string
	require.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Digest(nil).String())
	require.NotEqual(t, Digest([]byte("a")), Digest([]byte("b")))
}
