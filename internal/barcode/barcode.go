// Package barcode cleans raw barcode strings coming from scanners and forms.
package barcode

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxLength bounds accepted barcodes; GS1 element strings stay well below it.
const MaxLength = 128

// Normalize strips surrounding whitespace and any control characters
// (scanners commonly append CR/LF or emit a GS1 group separator prefix).
func Normalize(code string) string {
	code = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, code)
	return strings.TrimSpace(code)
}

// Valid reports whether a normalized barcode may be stored: at most
// MaxLength bytes of valid UTF-8 with only printable characters or spaces.
func Valid(code string) bool {
	if code == "" || len(code) > MaxLength || !utf8.ValidString(code) {
		return false
	}
	for _, r := range code {
		if r != ' ' && !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
