package domain

import (
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// NamingMode selects how extracted attachment files are named.
type NamingMode string

const (
	// NameBySubject names files after the item's sanitized subject,
	// keeping the attachment's extension.
	NameBySubject NamingMode = "subject"

	// NameByFilename keeps the attachment's original filename.
	NameByFilename NamingMode = "filename"
)

// IsValid returns true if the naming mode is recognised.
func (m NamingMode) IsValid() bool {
	switch m {
	case NameBySubject, NameByFilename:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m NamingMode) String() string {
	return string(m)
}

// receivedTimestamp is the layout for the received-time prefix on
// extracted attachment names.
const receivedTimestamp = "2006-01-02_1504"

// SanitizeName reduces free text to a filesystem-safe token. Whitespace
// runs become single underscores; every other rune outside letters,
// digits, '-' and '_' is dropped.
func SanitizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	space := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			space = true
		case r == '-' || r == '_' ||
			unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte('_')
			}
			space = false
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MatchesExtension reports whether filename passes the extension
// filter: a case-insensitive suffix match. An empty filter accepts all.
// A filter given without its leading dot ("pdf") gains one, so it can
// only ever match a real extension boundary.
func MatchesExtension(filename, filter string) bool {
	if filter == "" {
		return true
	}
	if !strings.HasPrefix(filter, ".") {
		filter = "." + filter
	}
	return strings.HasSuffix(strings.ToLower(filename), strings.ToLower(filter))
}

// AttachmentName renders the output filename for one attachment under
// the given naming mode.
func AttachmentName(mode NamingMode, received time.Time, subject, attachmentFilename string) string {
	prefix := received.Format(receivedTimestamp)
	if mode == NameByFilename {
		return prefix + "-" + attachmentFilename
	}
	return prefix + "-" + SanitizeName(subject) + filepath.Ext(attachmentFilename)
}
