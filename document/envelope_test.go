package document

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ruteri/doc-signing-backend/document/documenttest"
	"github.com/ruteri/doc-signing-backend/interfaces"
	"github.com/stretchr/testify/require"
)

func testEnvelope() (interfaces.Signature, interfaces.PublicKey) {
	var sig interfaces.Signature
	var key interfaces.PublicKey
	for i := range sig {
		sig[i] = byte(i)
	}
	for i := range key {
		key[i] = byte(0xff - i)
	}
	return sig, key
}

func canonicalDoc(t *testing.T, b *documenttest.Builder) []byte {
	t.Helper()
	canonical, err := Canonicalize(b.Build())
	require.NoError(t, err)
	return canonical
}

func TestEmbedExtractRoundTrip(t *testing.T) {
	sig, key := testEnvelope()

	tests := []struct {
		name string
		doc  *documenttest.Builder
	}{
		{name: "empty carriers", doc: documenttest.New()},
		{name: "existing carrier content", doc: documenttest.New().WithCoreXML(coreXML(`<cp:keywords>finance; q3</cp:keywords><dc:description>Reviewed &amp; approved</dc:description>`))},
		{name: "missing carriers", doc: documenttest.New().WithCoreXML(coreXML(`<dc:title>t</dc:title>`))},
		{name: "unrelated token-like text", doc: documenttest.New().WithCoreXML(coreXML(`<cp:keywords>||KEY:zz</cp:keywords><dc:description>||SIG:</dc:description>`))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			canonical := canonicalDoc(t, tt.doc)

			signed, err := Embed(canonical, sig, key)
			require.NoError(t, err)
			require.NotEqual(t, canonical, signed)
			require.True(t, HasEnvelope(signed))
			require.False(t, HasEnvelope(canonical))

			env, stripped, err := ExtractAndStrip(signed)
			require.NoError(t, err)
			require.Equal(t, sig, env.Signature)
			require.Equal(t, key, env.PublicKey)
			require.Equal(t, canonical, stripped)
		})
	}
}

func TestEmbedTokenSyntax(t *testing.T) {
	sig, key := testEnvelope()
	canonical := canonicalDoc(t, documenttest.New().WithCoreXML(
		coreXML(`<cp:keywords>draft</cp:keywords><dc:description>Signed copy</dc:description><dcterms:modified>2024-01-02T10:00:00Z</dcterms:modified>`)))

	signed, err := Embed(canonical, sig, key)
	require.NoError(t, err)

	core := string(documenttest.PartData(signed, CorePropertiesPart))
	require.Contains(t, core, "<dc:description>Signed copy||SIG:"+sig.String()+"</dc:description>")
	require.Contains(t, core, "<cp:keywords>draft||KEY:"+key.String()+"</cp:keywords>")
	require.Contains(t, core, "<dcterms:modified>2024-01-02T10:00:00Z</dcterms:modified>")

	// Other parts are untouched
	require.Equal(t, documenttest.PartData(canonical, "word/document.xml"), documenttest.PartData(signed, "word/document.xml"))
}

func TestExtractAcceptsUppercaseHex(t *testing.T) {
	sig, key := testEnvelope()
	core := coreXML(`<cp:keywords>k||KEY:` + strings.ToUpper(key.String()) + `</cp:keywords>` +
		`<dc:description>d||SIG:` + strings.ToUpper(sig.String()) + `</dc:description>`)

	env, stripped, err := ExtractAndStrip(documenttest.New().WithCoreXML(core).Build())
	require.NoError(t, err)
	require.Equal(t, sig, env.Signature)
	require.Equal(t, key, env.PublicKey)

	strippedCore := string(documenttest.PartData(stripped, CorePropertiesPart))
	require.Equal(t, coreXML(`<cp:keywords>k</cp:keywords><dc:description>d</dc:description>`), strippedCore)
}

func TestExtractUsesLastToken(t *testing.T) {
	sig, key := testEnvelope()
	var older interfaces.Signature
	older[0] = 0xaa

	core := coreXML(`<cp:keywords>||KEY:` + key.String() + `</cp:keywords>` +
		`<dc:description>a||SIG:` + older.String() + `b||SIG:` + sig.String() + `c</dc:description>`)

	env, stripped, err := ExtractAndStrip(documenttest.New().WithCoreXML(core).Build())
	require.NoError(t, err)
	require.Equal(t, sig, env.Signature)

	// Only the matched token is removed, surrounding text is kept
	strippedCore := string(documenttest.PartData(stripped, CorePropertiesPart))
	require.Contains(t, strippedCore, `<dc:description>a||SIG:`+older.String()+`bc</dc:description>`)
	require.Contains(t, strippedCore, `<cp:keywords></cp:keywords>`)
}

func TestExtractNotSigned(t *testing.T) {
	sig, key := testEnvelope()

	tests := []struct {
		name string
		core string
	}{
		{name: "no tokens", core: coreXML(`<cp:keywords>a</cp:keywords><dc:description>b</dc:description>`)},
		{name: "signature only", core: coreXML(`<dc:description>||SIG:` + sig.String() + `</dc:description>`)},
		{name: "key only", core: coreXML(`<cp:keywords>||KEY:` + key.String() + `</cp:keywords>`)},
		{name: "tokens in swapped fields", core: coreXML(`<cp:keywords>||SIG:` + sig.String() + `</cp:keywords><dc:description>||KEY:` + key.String() + `</dc:description>`)},
		{name: "truncated signature", core: coreXML(`<cp:keywords>||KEY:` + key.String() + `</cp:keywords><dc:description>||SIG:` + sig.String()[:100] + `</dc:description>`)},
		{name: "tokens in other fields", core: coreXML(`<dc:title>||SIG:` + sig.String() + `</dc:title><dc:subject>||KEY:` + key.String() + `</dc:subject>`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := documenttest.New().WithCoreXML(tt.core).Build()
			require.False(t, HasEnvelope(raw))

			_, _, err := ExtractAndStrip(raw)
			require.ErrorIs(t, err, ErrNotSigned)
		})
	}
}

func TestEnvelopeMalformedInput(t *testing.T) {
	sig, key := testEnvelope()
	junk := []byte("not a package")

	_, err := Embed(junk, sig, key)
	require.ErrorIs(t, err, ErrMalformedContainer)

	_, _, err = ExtractAndStrip(junk)
	require.ErrorIs(t, err, ErrMalformedContainer)

	require.False(t, HasEnvelope(junk))
	require.False(t, HasEnvelope(nil))
}

func TestHasEnvelopeDoesNotMutate(t *testing.T) {
	sig, key := testEnvelope()
	signed, err := Embed(canonicalDoc(t, documenttest.New()), sig, key)
	require.NoError(t, err)

	before := bytes.Clone(signed)
	require.True(t, HasEnvelope(signed))
	require.Equal(t, before, signed)
}

func TestTamperedContentChangesDigest(t *testing.T) {
	sig, key := testEnvelope()
	canonical := canonicalDoc(t, documenttest.New())
	signed, err := Embed(canonical, sig, key)
	require.NoError(t, err)

	// Re-pack with one changed body character
	body := documenttest.PartData(signed, "word/document.xml")
	altered := bytes.Replace(body, []byte("Hello"), []byte("Jello"), 1)
	tampered := documenttest.New().
		WithPart("word/document.xml", altered).
		WithCoreXML(string(documenttest.PartData(signed, CorePropertiesPart))).
		Build()

	_, stripped, err := ExtractAndStrip(tampered)
	require.NoError(t, err)

	recanonical, err := Canonicalize(stripped)
	require.NoError(t, err)
	require.NotEqual(t, Digest(canonical), Digest(recanonical))
}
