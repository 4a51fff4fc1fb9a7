package util

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gosimple/slug"
)

const maxFilenameLength = 250

// filesystem-reserved characters replaced during sanitization
const reservedChars = "<>:\"/\\\n?*"

// SanitizeFilename makes an arbitrary title safe to use as a file or
// directory name: leading/trailing whitespace is trimmed, each reserved
// character becomes an underscore, and the result is capped at 250 bytes.
// Total and idempotent; an empty input stays empty.
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if strings.ContainsRune(reservedChars, r) {
			b.WriteByte('_')
		} else {
			b.WriteRune(r)
		}
	}

	s := b.String()
	if len(s) > maxFilenameLength {
		// the cut must not split a rune or leave trailing whitespace
		cut := maxFilenameLength
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = strings.TrimSpace(s[:cut])
	}
	return s
}

// SlugifyName turns a user-supplied export name into a lowercase
// url/filesystem-friendly slug.
func SlugifyName(name string, maxLength int) string {
	s := slug.Make(name)
	if maxLength > 0 && len(s) > maxLength {
		s = s[:maxLength]
	}
	return s
}

// ExportTimestamp formats t the way timestamped export filenames expect.
func ExportTimestamp(t time.Time) string {
	return t.Format("20060102_150405")
}
