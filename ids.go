package panther

import (
	"regexp"
	"strings"
)

// Panther is inconsistent about identifier formats: some entities, like
// alerts, must be referenced by compact hexadecimal IDs (no hyphens), while
// others, like data lake query results, require the hyphenated UUID form.
// Callers may supply either form anywhere; the conversion functions below
// produce whichever encoding the invoked operation needs.
//
// Encoding required per operation:
//
//	alerts get/comment/update    compact
//	data lake query results      hyphenated
//	cloud accounts               hyphenated
//
// idPattern accepts 32 hex digits with an optional hyphen at each group
// boundary, so both encodings (and partially hyphenated values) validate.
var idPattern = regexp.MustCompile(
	`^[0-9a-fA-F]{8}-?[0-9a-fA-F]{4}-?[0-9a-fA-F]{4}-?[0-9a-fA-F]{4}-?[0-9a-fA-F]{12}$`,
)

// IDEncoding selects one of the two textual encodings of an identifier.
type IDEncoding int

const (
	// IDHyphenated is the 8-4-4-4-12 UUID form.
	IDHyphenated IDEncoding = iota
	// IDCompact is the 32-character hexadecimal form without hyphens.
	IDCompact
)

// HyphenatedID converts an identifier to the hyphenated UUID form. Inputs
// already containing hyphens are returned unchanged. Returns *InvalidIDError
// if the value is not a valid identifier in either form.
func HyphenatedID(value string) (string, error) {
	if !idPattern.MatchString(value) {
		return "", &InvalidIDError{Value: value}
	}
	if !strings.Contains(value, "-") {
		value = strings.Join([]string{
			value[0:8], value[8:12], value[12:16], value[16:20], value[20:],
		}, "-")
	}
	return value, nil
}

// CompactID converts an identifier to the compact hexadecimal form, removing
// any hyphens. Returns *InvalidIDError if the value is not a valid
// identifier in either form.
func CompactID(value string) (string, error) {
	if !idPattern.MatchString(value) {
		return "", &InvalidIDError{Value: value}
	}
	return strings.ReplaceAll(value, "-", ""), nil
}

// NormalizeID converts an identifier to the requested encoding.
func NormalizeID(value string, enc IDEncoding) (string, error) {
	switch enc {
	case IDCompact:
		return CompactID(value)
	default:
		return HyphenatedID(value)
	}
}
