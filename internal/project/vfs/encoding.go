package vfs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrInvalidEncoding is returned when content cannot be decoded as text.
var ErrInvalidEncoding = errors.New("invalid text encoding")

// Encoding represents a character encoding.
type Encoding string

const (
	// EncodingUTF8 is UTF-8 encoding (default).
	EncodingUTF8 Encoding = "utf-8"

	// EncodingUTF8BOM is UTF-8 encoding with BOM.
	EncodingUTF8BOM Encoding = "utf-8-bom"

	// EncodingUTF16LE is UTF-16 Little Endian with BOM.
	EncodingUTF16LE Encoding = "utf-16le"

	// EncodingUTF16BE is UTF-16 Big Endian with BOM.
	EncodingUTF16BE Encoding = "utf-16be"
)

// LineEnding represents the line ending style.
type LineEnding string

const (
	// LineEndingLF is Unix-style line ending (\n).
	LineEndingLF LineEnding = "lf"

	// LineEndingCRLF is Windows-style line ending (\r\n).
	LineEndingCRLF LineEnding = "crlf"

	// LineEndingCR is old Mac-style line ending (\r).
	LineEndingCR LineEnding = "cr"

	// LineEndingMixed indicates mixed line endings.
	LineEndingMixed LineEnding = "mixed"
)

// BOM (Byte Order Mark) constants
var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DetectEncoding reports the encoding signalled by a BOM, or EncodingUTF8
// when there is none.
func DetectEncoding(content []byte) Encoding {
	switch {
	case bytes.HasPrefix(content, bomUTF8):
		return EncodingUTF8BOM
	case bytes.HasPrefix(content, bomUTF16LE):
		return EncodingUTF16LE
	case bytes.HasPrefix(content, bomUTF16BE):
		return EncodingUTF16BE
	default:
		return EncodingUTF8
	}
}

// textEncoding returns the x/text codec for enc. UTF-16 variants read and
// write their BOM; UTF-8 with BOM is handled by UTF8BOM.
func textEncoding(enc Encoding) encoding.Encoding {
	switch enc {
	case EncodingUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case EncodingUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	case EncodingUTF8BOM:
		return unicode.UTF8BOM
	default:
		return unicode.UTF8
	}
}

// NewReader returns a reader yielding content as UTF-8, honouring a
// leading BOM, which is not part of the output. Content without a BOM must
// be valid UTF-8; anything else returns an error wrapping
// ErrInvalidEncoding.
func NewReader(content []byte) (io.Reader, Encoding, error) {
	enc := DetectEncoding(content)
	switch enc {
	case EncodingUTF8, EncodingUTF8BOM:
		body := bytes.TrimPrefix(content, bomUTF8)
		if !utf8.Valid(body) {
			return nil, enc, fmt.Errorf("%w: content is not valid UTF-8", ErrInvalidEncoding)
		}
		return bytes.NewReader(body), enc, nil
	}

	if len(content)%2 != 0 {
		return nil, enc, fmt.Errorf("%w: odd byte count for %s", ErrInvalidEncoding, enc)
	}
	return transform.NewReader(bytes.NewReader(content), textEncoding(enc).NewDecoder()), enc, nil
}

// Decode is NewReader collected into a string.
func Decode(content []byte) (string, Encoding, error) {
	r, enc, err := NewReader(content)
	if err != nil {
		return "", enc, err
	}
	text, err := io.ReadAll(r)
	if err != nil {
		return "", enc, fmt.Errorf("%w: %s: %v", ErrInvalidEncoding, enc, err)
	}
	return string(text), enc, nil
}

// Encode converts UTF-8 text to enc, writing a BOM for the BOM-carrying
// encodings.
func Encode(text string, enc Encoding) ([]byte, error) {
	if enc == EncodingUTF8 || enc == "" {
		return []byte(text), nil
	}
	out, _, err := transform.Bytes(textEncoding(enc).NewEncoder(), []byte(text))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", enc, err)
	}
	return out, nil
}

// DetectLineEnding detects the dominant line ending in text.
// Returns LineEndingMixed if multiple styles are found with similar frequency.
func DetectLineEnding(text string) LineEnding {
	var lf, crlf, cr int

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				crlf++
				i++
			} else {
				cr++
			}
		case '\n':
			lf++
		}
	}

	total := lf + crlf + cr
	if total == 0 {
		return LineEndingLF
	}

	// Mixed when more than one style holds at least 10% of the endings.
	threshold := max(total/10, 1)
	styles := 0
	for _, n := range []int{lf, crlf, cr} {
		if n >= threshold {
			styles++
		}
	}
	if styles > 1 {
		return LineEndingMixed
	}

	if crlf >= lf && crlf >= cr {
		return LineEndingCRLF
	}
	if cr > lf {
		return LineEndingCR
	}
	return LineEndingLF
}
