// Package datatype implements the typed payload grammars from spec §4.3:
// each type parses from and serializes back to its canonical GEDCOM text
// form, and exposes an "empty" predicate. Diagnostics on mismatch go
// through a caller-supplied diag.Sink rather than a panic or a bare error,
// mirroring how the rest of the core threads diagnostics explicitly
// (spec §9 Design Notes) instead of through teacher's decoder-local
// reporting (decoder/entity.go's diagnosticCollector).
package datatype

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"github.com/cacack/ged7/diag"
)

// NonNegativeInteger parses "[0-9]+"; on mismatch it reports and yields 0.
func NonNegativeInteger(s string, loc diag.Locator, sink diag.Sinker) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		sink.Err(loc, fmt.Sprintf("invalid non-negative integer %q", s))
		return 0
	}
	return n
}

var namePattern = regexp.MustCompile(`^[^\x00-\x1F/]*(/[^\x00-\x1F/]*/[^\x00-\x1F/]*)?$`)

// Name enforces the personal-name grammar, replacing stray "/" with U+2044
// (FRACTION SLASH) and reporting when the surname-delimiter shape is
// violated.
func Name(s string, loc diag.Locator, sink diag.Sinker) string {
	if namePattern.MatchString(s) {
		return s
	}
	sink.Err(loc, fmt.Sprintf("malformed name payload %q", s))
	return strings.ReplaceAll(s, "/", "⁄")
}

// NameEmpty reports whether a Name payload carries no informative content.
func NameEmpty(s string) bool { return strings.Trim(s, "/") == "" }

// Language validates s as a BCP-47 tag via golang.org/x/text/language,
// substituting "und" and reporting on mismatch (spec §4.3).
func Language(s string, loc diag.Locator, sink diag.Sinker) string {
	if s == "" {
		return ""
	}
	tag, err := language.Parse(s)
	if err != nil {
		sink.Err(loc, fmt.Sprintf("invalid language tag %q: %v", s, err))
		return "und"
	}
	return tag.String()
}

var mediaTypePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9!#$&^_.+-]*/[A-Za-z0-9][A-Za-z0-9!#$&^_.+-]*(\s*;.*)?$`)

// MediaType validates s against the RFC 6838 media-type grammar,
// substituting "application/octet-stream" and reporting on mismatch. The
// grammar check is a regex rather than mime.ParseMediaType:
// ParseMediaType rejects bare "type/subtype" forms with no
// parameters in some Go versions' strict mode and normalizes case, which
// would lose the caller's original casing on round-trip.
func MediaType(s string, loc diag.Locator, sink diag.Sinker) string {
	if s == "" {
		return ""
	}
	if mediaTypePattern.MatchString(s) {
		return s
	}
	sink.Err(loc, fmt.Sprintf("invalid media type %q", s))
	return "application/octet-stream"
}

// YesOrEmpty implements the `Y|<NULL>` datatype: only "" or "Y" are legal.
func YesOrEmpty(s string, loc diag.Locator, sink diag.Sinker) string {
	if s == "" || s == "Y" {
		return s
	}
	sink.Err(loc, fmt.Sprintf("expected \"Y\" or empty, got %q", s))
	return s
}

// Age is the parsed form of the GEDCOM age datatype: an optional </>
// bound modifier plus any ordered subset of {years, months, weeks, days}.
type Age struct {
	Modifier           byte // '<', '>', or 0
	Years, Months, Weeks, Days int
	HasYears, HasMonths, HasWeeks, HasDays bool
}

// Empty reports whether no unit was present at all (the payload was "").
func (a Age) Empty() bool {
	return !a.HasYears && !a.HasMonths && !a.HasWeeks && !a.HasDays && a.Modifier == 0
}

var ageUnitRe = regexp.MustCompile(`^(\d+)([ymwd])$`)

// ParseAge parses the GEDCOM age grammar; on mismatch it reports and
// returns the sentinel ">0y" (spec §4.3).
func ParseAge(s string, loc diag.Locator, sink diag.Sinker) Age {
	if s == "" {
		return Age{}
	}
	rest := s
	var mod byte
	if rest[0] == '<' || rest[0] == '>' {
		mod = rest[0]
		rest = rest[1:]
	}
	if rest == "" {
		sink.Err(loc, fmt.Sprintf("invalid age %q: no units", s))
		return sentinelAge()
	}

	a := Age{Modifier: mod}
	parts := strings.Split(rest, " ")
	for _, p := range parts {
		m := ageUnitRe.FindStringSubmatch(p)
		if m == nil {
			sink.Err(loc, fmt.Sprintf("invalid age %q: bad unit %q", s, p))
			return sentinelAge()
		}
		n, _ := strconv.Atoi(m[1])
		switch m[2] {
		case "y":
			a.Years, a.HasYears = n, true
		case "m":
			a.Months, a.HasMonths = n, true
		case "w":
			a.Weeks, a.HasWeeks = n, true
		case "d":
			a.Days, a.HasDays = n, true
		}
	}
	return a
}

func sentinelAge() Age {
	return Age{Modifier: '>', Years: 0, HasYears: true}
}

// String renders the canonical text form.
func (a Age) String() string {
	if a.Empty() {
		return ""
	}
	var b strings.Builder
	if a.Modifier != 0 {
		b.WriteByte(a.Modifier)
	}
	first := true
	write := func(has bool, n int, unit byte) {
		if !has {
			return
		}
		if !first {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d%c", n, unit)
		first = false
	}
	write(a.HasYears, a.Years, 'y')
	write(a.HasMonths, a.Months, 'm')
	write(a.HasWeeks, a.Weeks, 'w')
	write(a.HasDays, a.Days, 'd')
	return b.String()
}

// Time is the parsed GEDCOM time-of-day datatype.
type Time struct {
	Hour, Minute, Second int
	Fraction              string // digits after the decimal point, if any
	UTC                   bool
}

var timeRe = regexp.MustCompile(`^([0-9]{1,2}):([0-9]{2})(?::([0-9]{2})(?:\.([0-9]+))?)?(Z)?$`)

// ParseTime parses "HH:MM(:SS(.fff)?)?(Z)?"; on mismatch it reports and
// yields midnight (spec §4.3).
func ParseTime(s string, loc diag.Locator, sink diag.Sinker) Time {
	if s == "" {
		return Time{}
	}
	m := timeRe.FindStringSubmatch(s)
	if m == nil {
		sink.Err(loc, fmt.Sprintf("invalid time %q", s))
		return Time{}
	}
	hh, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	ss := 0
	if m[3] != "" {
		ss, _ = strconv.Atoi(m[3])
	}
	if hh > 23 || mm > 59 || ss > 59 {
		sink.Err(loc, fmt.Sprintf("time %q out of 24-hour range", s))
		return Time{}
	}
	return Time{Hour: hh, Minute: mm, Second: ss, Fraction: m[4], UTC: m[5] == "Z"}
}

// Empty reports whether t is the zero value with no fraction/UTC marker,
// i.e. was parsed from an empty payload.
func (t Time) Empty() bool {
	return t.Hour == 0 && t.Minute == 0 && t.Second == 0 && t.Fraction == "" && !t.UTC
}

func (t Time) String() string {
	if t.Empty() {
		return ""
	}
	s := fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
	if t.Second != 0 || t.Fraction != "" {
		s += fmt.Sprintf(":%02d", t.Second)
		if t.Fraction != "" {
			s += "." + t.Fraction
		}
	}
	if t.UTC {
		s += "Z"
	}
	return s
}

// List splits a comma-separated List#Text/List#Enum payload into its
// elements, trimming surrounding whitespace from each (spec §4.3).
func List(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

// JoinList renders elements back into a List#Text/List#Enum payload.
func JoinList(elems []string) string {
	return strings.Join(elems, ", ")
}
