package datatype

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cacack/ged7/diag"
)

// MonthResolver is the slice of schema.Lookup that date parsing needs: the
// calendar-month datatype defers to the schema lookup for month-tag
// resolution (spec §4.3 "Month is resolved via schema lookup for the
// chosen calendar"). Defined here, rather than importing package schema
// directly, to keep datatype a leaf package with no dependency on the
// schema-loading machinery built on top of it.
type MonthResolver interface {
	// Month resolves tag within calendar, returning its canonical URI. ok
	// is false when the calendar is unrecognized and the tag should be
	// accepted as-is (spec: "unknown month-tag in an unrecognized calendar
	// is accepted as tag").
	Month(calendar, tag string) (uri string, ok bool)
	// KnownCalendar reports whether calendar is present in the schema at
	// all.
	KnownCalendar(calendar string) bool
	// Epochs returns the calendar's legal epoch keywords, or nil if the
	// calendar declares none.
	Epochs(calendar string) []string
}

// Date is the parsed `date` production (spec §4.3): an optional calendar
// keyword, optional day, optional month, a required year, and an optional
// epoch.
type Date struct {
	Calendar string // "GREGORIAN" when omitted
	Day      int
	HasDay   bool
	Month    string // schema URI, or the bare tag if unresolved
	HasMonth bool
	Year     int
	Epoch    string
}

// Empty reports whether no fields at all were set (Year is always required
// for a non-empty date, so Year==0 && Calendar=="" identifies the zero
// value).
func (d Date) Empty() bool {
	return d.Calendar == "" && !d.HasDay && !d.HasMonth && d.Year == 0 && d.Epoch == ""
}

// ParseDate parses the `date` production, consulting resolver for
// month-tag resolution and epoch validation. On mismatch it reports and
// returns the zero Date.
func ParseDate(s string, resolver MonthResolver, loc diag.Locator, sink diag.Sinker) Date {
	if strings.TrimSpace(s) == "" {
		return Date{}
	}
	fields := strings.Fields(s)
	d := Date{Calendar: "GREGORIAN"}
	i := 0

	if i < len(fields) && isCalendarKeyword(fields[i]) {
		d.Calendar = strings.TrimPrefix(fields[i], "@#D")
		d.Calendar = strings.TrimSuffix(d.Calendar, "@")
		i++
	}

	// Optional day: a bare small integer ahead of a month token.
	if i < len(fields)-1 {
		if n, err := strconv.Atoi(fields[i]); err == nil {
			d.Day, d.HasDay = n, true
			i++
		}
	}

	if i < len(fields)-1 {
		month := fields[i]
		known := resolver != nil && resolver.KnownCalendar(d.Calendar)
		if known {
			if uri, ok := resolver.Month(d.Calendar, month); ok {
				d.Month = uri
			} else {
				sink.Err(loc, fmt.Sprintf("unknown month %q for calendar %q", month, d.Calendar))
				d.Month = month
			}
		} else {
			d.Month = month
		}
		d.HasMonth = true
		i++
	}

	if i >= len(fields) {
		sink.Err(loc, fmt.Sprintf("invalid date %q: missing year", s))
		return Date{}
	}
	yearTok := fields[i]
	i++
	year, epoch := splitEpoch(yearTok)
	n, err := strconv.Atoi(year)
	if err != nil {
		sink.Err(loc, fmt.Sprintf("invalid date %q: bad year %q", s, year))
		return Date{}
	}
	d.Year = n
	if epoch != "" {
		if resolver != nil && len(resolver.Epochs(d.Calendar)) > 0 && !contains(resolver.Epochs(d.Calendar), epoch) {
			sink.Err(loc, fmt.Sprintf("epoch %q not valid for calendar %q", epoch, d.Calendar))
		}
		d.Epoch = epoch
	}

	if i < len(fields) {
		sink.Err(loc, fmt.Sprintf("invalid date %q: unexpected trailing tokens", s))
	}
	return d
}

func isCalendarKeyword(tok string) bool {
	return strings.HasPrefix(tok, "@#D") && strings.HasSuffix(tok, "@")
}

func splitEpoch(tok string) (year, epoch string) {
	parts := strings.SplitN(tok, "(", 2)
	if len(parts) == 2 {
		return parts[0], strings.TrimSuffix(parts[1], ")")
	}
	return tok, ""
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

func (d Date) String() string {
	if d.Empty() {
		return ""
	}
	var b strings.Builder
	if d.Calendar != "" && d.Calendar != "GREGORIAN" {
		fmt.Fprintf(&b, "@#D%s@ ", d.Calendar)
	}
	if d.HasDay {
		fmt.Fprintf(&b, "%d ", d.Day)
	}
	if d.HasMonth {
		fmt.Fprintf(&b, "%s ", d.Month)
	}
	fmt.Fprintf(&b, "%d", d.Year)
	if d.Epoch != "" {
		fmt.Fprintf(&b, "(%s)", d.Epoch)
	}
	return b.String()
}

// DateValueKind discriminates the disjoint union making up DateValue
// (spec §4.3).
type DateValueKind int

const (
	DVEmpty DateValueKind = iota
	DVDate
	DVAbout
	DVCalculated
	DVEstimated
	DVRange
	DVPeriod
)

// DateValue is the `…/type-Date` (and, when constrained, `…/type-Date#period`)
// datatype: approximate/calculated/estimated single dates, BET/BEF/AFT
// ranges, and FROM/TO periods.
type DateValue struct {
	Kind     DateValueKind
	Date     Date // DVDate, DVAbout, DVCalculated, DVEstimated
	From, To Date // DVRange (From=BET lower bound or AFT date, To=AND upper bound or BEF date), DVPeriod
	HasFrom  bool
	HasTo    bool
}

// ParseDateValue parses the full DateValue grammar. When period is true,
// only DatePeriod and empty are acceptable; other shapes are downgraded to
// empty and reported (spec §4.3 "#period subtype").
func ParseDateValue(s string, resolver MonthResolver, period bool, loc diag.Locator, sink diag.Sinker) DateValue {
	s = strings.TrimSpace(s)
	if s == "" {
		return DateValue{Kind: DVEmpty}
	}

	dv := parseDateValueUnconstrained(s, resolver, loc, sink)
	if period && dv.Kind != DVPeriod && dv.Kind != DVEmpty {
		sink.Err(loc, fmt.Sprintf("date value %q is not a period; downgraded to empty", s))
		return DateValue{Kind: DVEmpty}
	}
	return dv
}

func parseDateValueUnconstrained(s string, resolver MonthResolver, loc diag.Locator, sink diag.Sinker) DateValue {
	switch {
	case strings.HasPrefix(s, "ABT "):
		return DateValue{Kind: DVAbout, Date: ParseDate(s[4:], resolver, loc, sink)}
	case strings.HasPrefix(s, "CAL "):
		return DateValue{Kind: DVCalculated, Date: ParseDate(s[4:], resolver, loc, sink)}
	case strings.HasPrefix(s, "EST "):
		return DateValue{Kind: DVEstimated, Date: ParseDate(s[4:], resolver, loc, sink)}
	case strings.HasPrefix(s, "BET "):
		rest := s[4:]
		idx := strings.Index(rest, " AND ")
		if idx < 0 {
			sink.Err(loc, fmt.Sprintf("invalid BET/AND date value %q", s))
			return DateValue{Kind: DVEmpty}
		}
		from := ParseDate(rest[:idx], resolver, loc, sink)
		to := ParseDate(rest[idx+5:], resolver, loc, sink)
		return DateValue{Kind: DVRange, From: from, HasFrom: true, To: to, HasTo: true}
	case strings.HasPrefix(s, "BEF "):
		return DateValue{Kind: DVRange, To: ParseDate(s[4:], resolver, loc, sink), HasTo: true}
	case strings.HasPrefix(s, "AFT "):
		return DateValue{Kind: DVRange, From: ParseDate(s[4:], resolver, loc, sink), HasFrom: true}
	case strings.HasPrefix(s, "FROM "):
		rest := s[5:]
		if idx := strings.Index(rest, " TO "); idx >= 0 {
			from := ParseDate(rest[:idx], resolver, loc, sink)
			to := ParseDate(rest[idx+4:], resolver, loc, sink)
			return DateValue{Kind: DVPeriod, From: from, HasFrom: true, To: to, HasTo: true}
		}
		return DateValue{Kind: DVPeriod, From: ParseDate(rest, resolver, loc, sink), HasFrom: true}
	case strings.HasPrefix(s, "TO "):
		return DateValue{Kind: DVPeriod, To: ParseDate(s[3:], resolver, loc, sink), HasTo: true}
	default:
		return DateValue{Kind: DVDate, Date: ParseDate(s, resolver, loc, sink)}
	}
}

func (dv DateValue) String() string {
	switch dv.Kind {
	case DVEmpty:
		return ""
	case DVDate:
		return dv.Date.String()
	case DVAbout:
		return "ABT " + dv.Date.String()
	case DVCalculated:
		return "CAL " + dv.Date.String()
	case DVEstimated:
		return "EST " + dv.Date.String()
	case DVRange:
		switch {
		case dv.HasFrom && dv.HasTo:
			return "BET " + dv.From.String() + " AND " + dv.To.String()
		case dv.HasFrom:
			return "AFT " + dv.From.String()
		case dv.HasTo:
			return "BEF " + dv.To.String()
		}
	case DVPeriod:
		switch {
		case dv.HasFrom && dv.HasTo:
			return "FROM " + dv.From.String() + " TO " + dv.To.String()
		case dv.HasFrom:
			return "FROM " + dv.From.String()
		case dv.HasTo:
			return "TO " + dv.To.String()
		}
	}
	return ""
}

// Empty reports whether the DateValue was parsed from an empty payload.
func (dv DateValue) Empty() bool { return dv.Kind == DVEmpty }
