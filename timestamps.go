package panther

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// wireTimeLayout is the single timestamp format Panther accepts on input:
// UTC, second precision, literal Z suffix.
const wireTimeLayout = "2006-01-02T15:04:05Z"

// decodeTimeLayout parses backend timestamps after their fractional part has
// been normalized to microsecond precision.
const decodeTimeLayout = "2006-01-02T15:04:05.000000Z"

var wireTimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z$`)

type timestampKind int

const (
	timestampUnset timestampKind = iota
	timestampUnix
	timestampString
	timestampTime
)

// Timestamp is a point in time supplied by the caller in one of three
// admissible forms: Unix epoch seconds, a wire-format string, or a
// time.Time. The zero value is unset and fails to normalize.
type Timestamp struct {
	kind timestampKind
	unix int64
	str  string
	t    time.Time
}

// TimestampFromUnix builds a Timestamp from Unix epoch seconds (UTC).
func TimestampFromUnix(sec int64) Timestamp {
	return Timestamp{kind: timestampUnix, unix: sec}
}

// TimestampFromString builds a Timestamp from a string already in the wire
// format "2006-01-02T15:04:05Z".
func TimestampFromString(s string) Timestamp {
	return Timestamp{kind: timestampString, str: s}
}

// TimestampFromTime builds a Timestamp from a time.Time. The instant is
// converted to UTC during normalization.
func TimestampFromTime(t time.Time) Timestamp {
	return Timestamp{kind: timestampTime, t: t}
}

// Normalize converts the timestamp to the wire format. Epoch values must be
// greater than zero; strings must already match the wire format exactly and
// are returned unchanged. Returns *InvalidTimestampError on bad input.
func (ts Timestamp) Normalize() (string, error) {
	switch ts.kind {
	case timestampUnix:
		if ts.unix <= 0 {
			return "", &InvalidTimestampError{
				Value:  fmt.Sprintf("%d", ts.unix),
				Reason: "UNIX timestamps must be greater than zero",
			}
		}
		return time.Unix(ts.unix, 0).UTC().Format(wireTimeLayout), nil
	case timestampTime:
		if ts.t.IsZero() {
			return "", &InvalidTimestampError{Value: "", Reason: "time value is zero"}
		}
		return ts.t.UTC().Format(wireTimeLayout), nil
	case timestampString:
		if !wireTimePattern.MatchString(ts.str) {
			return "", &InvalidTimestampError{
				Value:  ts.str,
				Reason: "must match YYYY-MM-DDTHH:MM:SSZ",
			}
		}
		// The pattern does not catch impossible dates like month 13.
		if _, err := time.Parse(wireTimeLayout, ts.str); err != nil {
			return "", &InvalidTimestampError{Value: ts.str, Reason: "not a valid date"}
		}
		return ts.str, nil
	default:
		return "", &InvalidTimestampError{Value: "", Reason: "no timestamp value set"}
	}
}

// DecodeTimestamp parses a timestamp string returned by the backend. The
// backend emits fractional seconds of varying precision (anywhere from none
// to nanoseconds); the fraction is right-padded or truncated to microsecond
// precision before parsing. The result is always UTC.
func DecodeTimestamp(value string) (time.Time, error) {
	parts := strings.Split(value, ".")
	switch len(parts) {
	case 1:
		t, err := time.Parse(wireTimeLayout, value)
		if err != nil {
			return time.Time{}, &InvalidTimestampError{Value: value, Reason: "not in wire format"}
		}
		return t.UTC(), nil
	case 2:
		frac, ok := strings.CutSuffix(parts[1], "Z")
		if !ok || frac == "" {
			return time.Time{}, &InvalidTimestampError{Value: value, Reason: "missing Z suffix"}
		}
		if len(frac) < 6 {
			frac += strings.Repeat("0", 6-len(frac))
		}
		frac = frac[:6]
		t, err := time.Parse(decodeTimeLayout, parts[0]+"."+frac+"Z")
		if err != nil {
			return time.Time{}, &InvalidTimestampError{Value: value, Reason: "not in wire format"}
		}
		return t.UTC(), nil
	default:
		return time.Time{}, &InvalidTimestampError{Value: value, Reason: "too many fractional parts"}
	}
}
