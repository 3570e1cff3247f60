package vfs

import (
	"bytes"
	"errors"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		want    string
		enc     Encoding
	}{
		{"empty", nil, "", EncodingUTF8},
		{"ascii", []byte("Hello"), "Hello", EncodingUTF8},
		{"utf8", []byte("Hello, 世界!"), "Hello, 世界!", EncodingUTF8},
		{"utf8 bom", append([]byte{0xEF, 0xBB, 0xBF}, "Hi"...), "Hi", EncodingUTF8BOM},
		{"utf16le", []byte{0xFF, 0xFE, 'H', 0, 'i', 0, '\n', 0}, "Hi\n", EncodingUTF16LE},
		{"utf16be", []byte{0xFE, 0xFF, 0, 'H', 0, 'i'}, "Hi", EncodingUTF16BE},
		{"utf16le surrogate pair", []byte{0xFF, 0xFE, 0x3C, 0xD8, 0x0D, 0xDF}, "🌍", EncodingUTF16LE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, enc, err := Decode(tt.content)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if got != tt.want || enc != tt.enc {
				t.Errorf("Decode = %q, %s; want %q, %s", got, enc, tt.want, tt.enc)
			}
		})
	}
}

func TestDecodeInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{"invalid utf8", []byte{'a', 0xFF, 'b'}},
		{"truncated sequence", []byte{0xE4, 0xB8}},
		{"invalid after bom", []byte{0xEF, 0xBB, 0xBF, 0xC0}},
		{"odd utf16", []byte{0xFF, 0xFE, 'H'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := Decode(tt.content); !errors.Is(err, ErrInvalidEncoding) {
				t.Errorf("Decode error = %v, want ErrInvalidEncoding", err)
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, enc := range []Encoding{EncodingUTF8, EncodingUTF8BOM, EncodingUTF16LE, EncodingUTF16BE} {
		t.Run(string(enc), func(t *testing.T) {
			text := "line one\nzwei 世界 🌍\n"
			raw, err := Encode(text, enc)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if DetectEncoding(raw) != enc {
				t.Errorf("DetectEncoding = %s, want %s", DetectEncoding(raw), enc)
			}
			got, gotEnc, err := Decode(raw)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if got != text || gotEnc != enc {
				t.Errorf("round trip = %q, %s", got, gotEnc)
			}
		})
	}

	raw, _ := Encode("Hi", EncodingUTF16LE)
	if !bytes.Equal(raw, []byte{0xFF, 0xFE, 'H', 0, 'i', 0}) {
		t.Errorf("UTF-16LE bytes = % x", raw)
	}
}

func TestDetectLineEnding(t *testing.T) {
	tests := []struct {
		text string
		want LineEnding
	}{
		{"", LineEndingLF},
		{"no newline", LineEndingLF},
		{"a\nb\nc", LineEndingLF},
		{"a\r\nb\r\nc", LineEndingCRLF},
		{"a\rb\rc", LineEndingCR},
		{"a\nb\r\nc\nd\r\n", LineEndingMixed},
	}
	for _, tt := range tests {
		if got := DetectLineEnding(tt.text); got != tt.want {
			t.Errorf("DetectLineEnding(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}
}
