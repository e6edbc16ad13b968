package pbitdoc

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// SchemaEntry is the archive entry holding the data model.
const SchemaEntry = "DataModelSchema"

// ReadSchema opens data as a zip archive and returns the DataModelSchema
// entry decoded to UTF-8. Power BI writes this entry as UTF-16LE; UTF-8 with
// or without a byte order mark is accepted too.
func ReadSchema(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, newProcessError(OpRead, ErrMalformedArchive, err)
	}

	for _, f := range zr.File {
		if f.Name != SchemaEntry {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, newProcessError(OpRead, ErrMalformedArchive, err)
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, newProcessError(OpRead, ErrMalformedArchive, err)
		}
		text, err := decodeText(raw)
		if err != nil {
			return nil, newProcessError(OpRead, ErrMalformedSchema, err)
		}
		return text, nil
	}
	return nil, newProcessError(OpRead, ErrSchemaNotFound, nil)
}

// decodeText converts raw entry bytes to UTF-8. A byte order mark selects the
// encoding; without one, a zero byte in either of the first two positions
// marks BOM-less UTF-16.
func decodeText(raw []byte) ([]byte, error) {
	fallback := unicode.UTF8
	if len(raw) >= 2 && !hasBOM(raw) {
		switch {
		case raw[0] != 0 && raw[1] == 0:
			fallback = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
		case raw[0] == 0 && raw[1] != 0:
			fallback = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
		}
	}

	out, _, err := transform.Bytes(unicode.BOMOverride(fallback.NewDecoder()), raw)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", SchemaEntry, err)
	}
	return out, nil
}

func hasBOM(raw []byte) bool {
	return bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}) ||
		bytes.HasPrefix(raw, []byte{0xFF, 0xFE}) ||
		bytes.HasPrefix(raw, []byte{0xFE, 0xFF})
}
