package document

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"
)

const (
	// ContentTypesPart is required in every OOXML package.
	ContentTypesPart = "[Content_Types].xml"

	// CorePropertiesPart holds the metadata carrier fields.
	CorePropertiesPart = "docProps/core.xml"

	// MaxUnpackedSize bounds the total decompressed size of a package.
	MaxUnpackedSize int64 = 256 << 20
)

// Fixed entry timestamp of the canonical form, the earliest MS-DOS date.
var canonicalModTime = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

var errTooLarge = errors.New("unpacked size exceeds limit")

type part struct {
	name string
	data []byte
}

// container is a parsed package: its parts in archive order and the index of
// the core properties part.
type container struct {
	parts []part
	core  int
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedContainer, fmt.Sprintf(format, args...))
}

func readContainer(raw []byte) (*container, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, malformed("not a zip archive: %v", err)
	}

	c := &container{core: -1, parts: make([]part, 0, len(zr.File))}
	seen := make(map[string]struct{}, len(zr.File))
	hasContentTypes := false
	var total int64

	for _, f := range zr.File {
		if f.Flags&0x1 != 0 {
			return nil, malformed("entry %q is encrypted", f.Name)
		}
		if _, dup := seen[f.Name]; dup {
			return nil, malformed("duplicate entry %q", f.Name)
		}
		seen[f.Name] = struct{}{}

		remaining := MaxUnpackedSize - total
		if f.UncompressedSize64 > uint64(remaining) {
			return nil, malformed("entry %q: %v", f.Name, errTooLarge)
		}

		data, err := readPart(f, remaining)
		if err != nil {
			return nil, malformed("entry %q: %v", f.Name, err)
		}
		total += int64(len(data))

		switch f.Name {
		case ContentTypesPart:
			hasContentTypes = true
		case CorePropertiesPart:
			c.core = len(c.parts)
		}
		c.parts = append(c.parts, part{name: f.Name, data: data})
	}

	if !hasContentTypes {
		return nil, malformed("missing %s", ContentTypesPart)
	}
	if c.core < 0 {
		return nil, malformed("missing %s", CorePropertiesPart)
	}
	return c, nil
}

// readPart reads an entry without trusting its declared size.
func readPart(f *zip.File, limit int64) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errTooLarge
	}
	return data, nil
}

// bytes serializes the container in canonical form: original order, stored
// entries, fixed timestamps and no comments or attributes.
func (c *container) bytes() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, p := range c.parts {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     p.name,
			Method:   zip.Store,
			Modified: canonicalModTime,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to write entry %q: %w", p.name, err)
		}
		if len(p.data) == 0 {
			continue
		}
		if _, err := w.Write(p.data); err != nil {
			return nil, fmt.Errorf("failed to write entry %q: %w", p.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

// load parses raw into a container with normalized core properties.
func load(raw []byte) (*container, *coreProperties, error) {
	c, err := readContainer(raw)
	if err != nil {
		return nil, nil, err
	}

	props, err := normalizeCoreProperties(c.parts[c.core].data)
	if err != nil {
		return nil, nil, err
	}
	c.parts[c.core].data = props.raw
	return c, props, nil
}
