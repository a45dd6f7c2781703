package document

import (
	"bytes"
	"regexp"

	"github.com/ruteri/doc-signing-backend/interfaces"
)

// Envelope tags. They are persisted inside signed documents and must not change.
const (
	SignatureTag = "||SIG:"
	PublicKeyTag = "||KEY:"
)

var (
	signatureToken = regexp.MustCompile(`\|\|SIG:([0-9A-Fa-f]{128})`)
	publicKeyToken = regexp.MustCompile(`\|\|KEY:([0-9A-Fa-f]{64})`)
)

// Envelope is the signature and signer key embedded in a signed document.
type Envelope struct {
	Signature interfaces.Signature
	PublicKey interfaces.PublicKey
}

// Embed appends the envelope tokens to the carrier fields of a canonical
// document: ||SIG:<hex> to dc:description and ||KEY:<hex> to cp:keywords.
// Existing field content is kept in front of the tokens.
func Embed(canonical []byte, signature interfaces.Signature, publicKey interfaces.PublicKey) ([]byte, error) {
	c, props, err := load(canonical)
	if err != nil {
		return nil, err
	}

	var contents [carrierCount][]byte
	contents[signatureCarrier] = appendToken(props.content(signatureCarrier), SignatureTag, signature.String())
	contents[publicKeyCarrier] = appendToken(props.content(publicKeyCarrier), PublicKeyTag, publicKey.String())

	c.parts[c.core].data = props.withContents(contents)
	return c.bytes()
}

func appendToken(field []byte, tag, payload string) []byte {
	out := make([]byte, 0, len(field)+len(tag)+len(payload))
	out = append(out, field...)
	out = append(out, tag...)
	return append(out, payload...)
}

// ExtractAndStrip reads the envelope of a signed document and returns it with
// the document stripped of exactly the two tokens. For any canonical c,
// ExtractAndStrip(Embed(c, s, k)) returns s, k and c.
//
// Returns ErrNotSigned when either token is missing.
func ExtractAndStrip(signed []byte) (*Envelope, []byte, error) {
	c, props, err := load(signed)
	if err != nil {
		return nil, nil, err
	}

	sigField := props.content(signatureCarrier)
	keyField := props.content(publicKeyCarrier)

	sigLoc := lastMatch(signatureToken, sigField)
	keyLoc := lastMatch(publicKeyToken, keyField)
	if sigLoc == nil || keyLoc == nil {
		return nil, nil, ErrNotSigned
	}

	env := &Envelope{}
	if env.Signature, err = interfaces.NewSignatureFromHex(string(sigField[sigLoc[2]:sigLoc[3]])); err != nil {
		return nil, nil, err
	}
	if env.PublicKey, err = interfaces.NewPublicKeyFromHex(string(keyField[keyLoc[2]:keyLoc[3]])); err != nil {
		return nil, nil, err
	}

	var contents [carrierCount][]byte
	contents[signatureCarrier] = cut(sigField, sigLoc[0], sigLoc[1])
	contents[publicKeyCarrier] = cut(keyField, keyLoc[0], keyLoc[1])
	c.parts[c.core].data = props.withContents(contents)

	stripped, err := c.bytes()
	if err != nil {
		return nil, nil, err
	}
	return env, stripped, nil
}

// HasEnvelope reports whether data is a well-formed package carrying both
// envelope tokens. It does not modify or reserialize the input.
func HasEnvelope(data []byte) bool {
	c, err := readContainer(data)
	if err != nil {
		return false
	}
	props, err := normalizeCoreProperties(c.parts[c.core].data)
	if err != nil {
		return false
	}
	return signatureToken.Match(props.content(signatureCarrier)) &&
		publicKeyToken.Match(props.content(publicKeyCarrier))
}

func lastMatch(re *regexp.Regexp, field []byte) []int {
	matches := re.FindAllSubmatchIndex(field, -1)
	if len(matches) == 0 {
		return nil
	}
	return matches[len(matches)-1]
}

func cut(field []byte, from, to int) []byte {
	var out bytes.Buffer
	out.Grow(len(field) - (to - from))
	out.Write(field[:from])
	out.Write(field[to:])
	return out.Bytes()
}
