// Package spwire parses the scalar encodings SharePoint uses in REST and
// client object model (CSOM) JSON payloads.
package spwire

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	guidWrapper = regexp.MustCompile(`^/?Guid\(([^)]*)\)/?$`)
	dateTicks   = regexp.MustCompile(`^/?Date\((-?\d+)([+-]\d{4})?\)/?$`)
	dateParts   = regexp.MustCompile(`^/?Date\((\d+(?:,\d+)*)\)/?$`)
)

// localLayouts are tried in order after RFC 3339. Values without a zone are
// taken as UTC.
var localLayouts = []string{
	"2006-01-02T15:04:05.9999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseGuid parses a GUID in bare, braced, or CSOM "/Guid(...)/" form.
func ParseGuid(s string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if m := guidWrapper.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("spwire: guid %q: %w", s, err)
	}
	return id, nil
}

// NormalizeGuid returns the canonical lower-case form of a GUID, or the
// trimmed input unchanged when it is not a GUID.
func NormalizeGuid(s string) string {
	id, err := ParseGuid(s)
	if err != nil {
		return strings.TrimSpace(s)
	}
	return id.String()
}

// ParseDate parses an ISO 8601 timestamp or a CSOM "/Date(...)/" value.
// An empty string yields the zero time and no error.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if m := dateTicks.FindStringSubmatch(s); m != nil {
		ms, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("spwire: date %q: %w", s, err)
		}
		return time.UnixMilli(ms).UTC(), nil
	}
	if m := dateParts.FindStringSubmatch(s); m != nil {
		return parseDateParts(s, strings.Split(m[1], ","))
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("spwire: unrecognized date %q", s)
}

// parseDateParts handles the CSOM "/Date(y,m,d,h,mi,s,ms)/" form. The month
// is zero-based, as in the JavaScript Date constructor.
func parseDateParts(raw string, parts []string) (time.Time, error) {
	if len(parts) < 3 {
		return time.Time{}, fmt.Errorf("spwire: date %q: need at least year, month, day", raw)
	}
	v := make([]int, 7)
	for i, p := range parts {
		if i >= len(v) {
			break
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, fmt.Errorf("spwire: date %q: %w", raw, err)
		}
		v[i] = n
	}
	return time.Date(v[0], time.Month(v[1]+1), v[2], v[3], v[4], v[5], v[6]*int(time.Millisecond), time.UTC), nil
}
