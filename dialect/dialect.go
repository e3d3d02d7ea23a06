// Package dialect parameterizes the tag-layer grammar (package tagtree) so
// the same parser/serializer can read and write both GEDCOM 5.x and GEDCOM 7
// text, per spec §4.1. It also detects which dialect a document claims to
// be, adapting the teacher's version package (version/detect.go) to operate
// on dialect-agnostic line records instead of a fixed parser.Line type.
package dialect

import "regexp"

// LineLength is the dialect's line-length wrapping policy.
type LineLength int

const (
	// Wrapped means lines longer than the dialect's Len are split with CONC.
	Wrapped LineLength = iota
	// Unlimited means lines are never wrapped, but CONC is still legal.
	Unlimited
	// UnlimitedNoConc means lines are never wrapped and CONC is illegal.
	UnlimitedNoConc
)

// Config parameterizes the tag-layer grammar. The zero value is invalid;
// use GEDCOM55 or GEDCOM7, or build a custom Config from one of them.
type Config struct {
	// Name identifies the dialect for diagnostics, e.g. "5.5.1" or "7.0".
	Name string

	// Len is the line-length wrapping policy. Positive values wrap at that
	// many characters with CONC; zero means Unlimited; negative means
	// UnlimitedNoConc (spec §4.1).
	Len int

	// Tag, XRef, LineSep, Delim, Payload further constrain grammar tokens
	// beyond the universal minima. A nil field falls back to the universal
	// minimum for that token.
	Tag, XRef, LineSep, Delim, Payload *regexp.Regexp

	// Zeros: if false, leading zeros on level numbers are reported.
	Zeros bool

	// Escapes: if true, payloads beginning with "@#" serialize as "@#…";
	// if false they serialize as "@@#…". Both decode identically.
	Escapes bool
}

// Universal minima enforced regardless of dialect (spec §4.1).
var (
	universalTag     = regexp.MustCompile(`^[^@\p{Cc}\p{Z}][^\p{Cc}\p{Z}]*$`)
	universalXRef    = regexp.MustCompile(`^([^@#\p{Cc}]|\t)([^@\p{Cc}]|\t)*$`)
	universalDelim   = regexp.MustCompile(`[ \t\p{Zs}]+`)
	universalLineSep = regexp.MustCompile(`^[\n\r]\p{White_Space}*$`)
)

// TagPattern returns the dialect's tag regex, falling back to the universal
// minimum.
func (c *Config) TagPattern() *regexp.Regexp {
	if c.Tag != nil {
		return c.Tag
	}
	return universalTag
}

// XRefPattern returns the dialect's xref regex, falling back to the
// universal minimum.
func (c *Config) XRefPattern() *regexp.Regexp {
	if c.XRef != nil {
		return c.XRef
	}
	return universalXRef
}

// DelimPattern returns the dialect's delimiter regex, falling back to the
// universal minimum.
func (c *Config) DelimPattern() *regexp.Regexp {
	if c.Delim != nil {
		return c.Delim
	}
	return universalDelim
}

// LineSepPattern returns the dialect's line-separator regex, falling back
// to the universal minimum.
func (c *Config) LineSepPattern() *regexp.Regexp {
	if c.LineSep != nil {
		return c.LineSep
	}
	return universalLineSep
}

// LineLengthPolicy classifies Len into the three wrapping regimes described
// in spec §4.1.
func (c *Config) LineLengthPolicy() LineLength {
	switch {
	case c.Len > 0:
		return Wrapped
	case c.Len == 0:
		return Unlimited
	default:
		return UnlimitedNoConc
	}
}

// GEDCOM55 returns the GEDCOM 5.5/5.5.1 preset: line length 255, a limited
// alphabet for tags/xrefs, escapes on, leading zeros allowed.
func GEDCOM55() *Config {
	return &Config{
		Name:    "5.5.1",
		Len:     255,
		Tag:     regexp.MustCompile(`^[A-Za-z0-9_]+$`),
		XRef:    regexp.MustCompile(`^[A-Za-z0-9_]+$`),
		Zeros:   true,
		Escapes: true,
	}
}

// GEDCOM7 returns the GEDCOM 7.0 preset: no length limit (CONC forbidden),
// stricter tag/xref alphabets, escapes off.
func GEDCOM7() *Config {
	return &Config{
		Name:    "7.0",
		Len:     -1,
		Tag:     regexp.MustCompile(`^(_?[A-Z][A-Z0-9_]*)$`),
		XRef:    regexp.MustCompile(`^[A-Z0-9_]+$`),
		Zeros:   false,
		Escapes: false,
	}
}

// DetectVersion inspects HEAD.GEDC.VERS among lines shaped like (level, tag,
// value) and returns the matching preset. It falls back to GEDCOM55 when no
// version is found, mirroring the teacher's version.DetectVersion default.
func DetectVersion(lines []VersionLine) *Config {
	inHead, inGedc := false, false
	for _, l := range lines {
		switch {
		case l.Level == 0 && l.Tag == "HEAD":
			inHead, inGedc = true, false
		case l.Level == 0:
			inHead, inGedc = false, false
		case inHead && l.Level == 1 && l.Tag == "GEDC":
			inGedc = true
		case inHead && l.Level == 1:
			inGedc = false
		case inHead && inGedc && l.Level == 2 && l.Tag == "VERS":
			return fromVersionString(l.Value)
		}
	}
	return GEDCOM55()
}

// VersionLine is the minimal shape DetectVersion needs from a parsed line.
type VersionLine struct {
	Level int
	Tag   string
	Value string
}

func fromVersionString(v string) *Config {
	switch {
	case len(v) >= 1 && v[0] == '7':
		return GEDCOM7()
	default:
		return GEDCOM55()
	}
}
