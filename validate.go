package tapsdk

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Limits documented by the cloud-save header, in bytes after NFC
// normalization.
const (
	MaxNameBytes    = 60
	MaxSummaryBytes = 500
	MaxExtraBytes   = 1000
)

type requestFields struct {
	name, summary, extra *byte
	dataPath, coverPath  *byte
}

// wellFormed rejects a NUL byte or invalid UTF-8 in any field.
func (r CreateRequest) wellFormed() error {
	for _, f := range []struct{ field, value string }{
		{"name", r.Name},
		{"summary", r.Summary},
		{"extra", r.Extra},
		{"data file path", r.DataFilePath},
		{"cover file path", r.CoverFilePath},
	} {
		if err := checkText(f.field, f.value); err != nil {
			return err
		}
	}
	return nil
}

func checkText(field, s string) error {
	if !utf8.ValidString(s) || strings.IndexByte(s, 0) >= 0 {
		return malformed(field, nil)
	}
	return nil
}

// fields validates the request and converts it for the C boundary.
func (r CreateRequest) fields() (requestFields, error) {
	var f requestFields
	if err := r.wellFormed(); err != nil {
		return f, err
	}

	name, err := normalized("name", r.Name)
	if err != nil {
		return f, err
	}
	switch {
	case name == "":
		return f, invalidArgument("name must not be empty")
	case len(name) > MaxNameBytes:
		return f, invalidArgument("name is %d bytes, limit is %d", len(name), MaxNameBytes)
	case strings.IndexFunc(name, isHan) >= 0:
		return f, invalidArgument("name must not contain Han characters")
	}

	summary, err := normalized("summary", r.Summary)
	if err != nil {
		return f, err
	}
	switch {
	case summary == "":
		return f, invalidArgument("summary must not be empty")
	case len(summary) > MaxSummaryBytes:
		return f, invalidArgument("summary is %d bytes, limit is %d", len(summary), MaxSummaryBytes)
	}

	extra, err := normalized("extra", r.Extra)
	if err != nil {
		return f, err
	}
	if len(extra) > MaxExtraBytes {
		return f, invalidArgument("extra is %d bytes, limit is %d", len(extra), MaxExtraBytes)
	}

	if r.DataFilePath == "" {
		return f, invalidArgument("data file path is required")
	}

	if f.name, err = cstring("name", name); err != nil {
		return f, err
	}
	if f.summary, err = cstring("summary", summary); err != nil {
		return f, err
	}
	if extra != "" {
		if f.extra, err = cstring("extra", extra); err != nil {
			return f, err
		}
	}
	if f.dataPath, err = cstring("data file path", r.DataFilePath); err != nil {
		return f, err
	}
	if r.CoverFilePath != "" {
		if f.coverPath, err = cstring("cover file path", r.CoverFilePath); err != nil {
			return f, err
		}
	}
	return f, nil
}

func normalized(field, s string) (string, error) {
	if !utf8.ValidString(s) {
		return "", malformed(field, nil)
	}
	return norm.NFC.String(s), nil
}

func requiredID(field, s string) (*byte, error) {
	if s == "" {
		return nil, invalidArgument("%s must not be empty", field)
	}
	return cstring(field, s)
}

func isHan(r rune) bool {
	return unicode.Is(unicode.Han, r)
}
