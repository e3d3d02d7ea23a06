package tagtree

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/cacack/ged7/diag"
	"github.com/cacack/ged7/dialect"
	"github.com/cacack/ged7/internal/encio"
)

// lineRe captures LEVEL, an optional @XREF@, TAG, and an optional trailing
// payload/pointer, per the line grammar in spec §4.2:
//
//	LEVEL DELIM (@XREF@ DELIM)? TAG (DELIM (@POINTER@ | PAYLOAD))? LINESEP
//
// Implemented as a single scan-per-physical-line regex (grounded on the
// teacher's parser.ParseLine, parser/parser.go) rather than one regex over
// the whole byte stream.
var lineRe = regexp.MustCompile(`^[ \t]*([0-9]+)[ \t]+(?:@([^@]*)@[ \t]+)?(\S+)(?:[ \t]+(.*))?$`)

// ParseString parses GEDC text into a Forest using cfg's grammar. Ill-formed
// lines are skipped and reported through sink; a Fatal diagnostic on empty
// or wholly-unparseable input also returns a non-nil error, per spec §7.
func ParseString(src string, cfg *dialect.Config, sink *diag.Sink) (*Forest, error) {
	return Parse(strings.NewReader(src), cfg, sink)
}

// ParseReader parses like Parse, but tees every byte read from r through
// progress before it reaches the scanner, letting a caller drive a
// progress indicator (e.g. a schollz/progressbar/v3 bar, which implements
// io.Writer) off real read progress on a large file without this package
// depending on any terminal/progress library itself (spec §4.2 "added").
// progress may be nil, in which case ParseReader behaves exactly like Parse.
func ParseReader(r io.Reader, progress io.Writer, cfg *dialect.Config, sink *diag.Sink) (*Forest, error) {
	if progress == nil {
		return Parse(r, cfg, sink)
	}
	return Parse(io.TeeReader(r, progress), cfg, sink)
}

// Parse is the io.Reader counterpart of ParseString.
func Parse(r io.Reader, cfg *dialect.Config, sink *diag.Sink) (*Forest, error) {
	if cfg == nil {
		cfg = dialect.GEDCOM7()
	}

	scanner := bufio.NewScanner(encio.NewReader(r))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	scanner.Split(splitAnyLineEnding)

	f := NewForest()
	var path []Handle // path[i] is the handle at level i
	lineNo := 0
	sawAnyLine := false
	var lastStruct Handle = NoHandle

	for scanner.Scan() {
		lineNo++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}

		m := lineRe.FindStringSubmatch(text)
		if m == nil {
			sink.Err(diag.AtLine(lineNo), fmt.Sprintf("unparseable line: %q", text))
			continue
		}
		sawAnyLine = true

		levelStr, xref, tag, rest := m[1], m[2], m[3], m[4]
		level, err := strconv.Atoi(levelStr)
		if err != nil {
			sink.Err(diag.AtLine(lineNo), "invalid level number")
			continue
		}
		if !cfg.Zeros && len(levelStr) > 1 && levelStr[0] == '0' {
			sink.Warn(diag.AtLine(lineNo), "leading zero on level number")
		}

		if !cfg.TagPattern().MatchString(tag) {
			sink.Err(diag.AtLine(lineNo), fmt.Sprintf("tag %q does not match the %s grammar", tag, cfg.Name))
			continue
		}
		if xref != "" && !cfg.XRefPattern().MatchString(xref) {
			sink.Err(diag.AtLine(lineNo), fmt.Sprintf("cross-reference identifier %q does not match the %s grammar", xref, cfg.Name))
			continue
		}

		if tag == "CONT" || tag == "CONC" {
			if err := spliceContinuation(f, lastStruct, tag, rest, cfg); err != nil {
				sink.Err(diag.AtLine(lineNo), err.Error())
			}
			continue
		}

		depth := len(path) - 1
		if level > depth+1 {
			sink.Err(diag.AtLine(lineNo), fmt.Sprintf("level %d may not follow level %d", level, depth))
			continue
		}
		path = path[:level]

		var parent Handle = NoHandle
		if level > 0 {
			parent = path[level-1]
		}

		h := f.New(tag, parent)
		f.Get(h).Line = lineNo
		path = append(path, h)
		lastStruct = h

		if xref != "" {
			if _, dup := f.ByXRef("@" + xref + "@"); dup {
				sink.Err(diag.AtLine(lineNo), fmt.Sprintf("duplicate cross-reference identifier @%s@", xref))
			} else {
				f.SetXRef(h, "@"+xref+"@")
			}
		}

		assignPayload(f, h, rest, cfg)
	}
	if err := scanner.Err(); err != nil {
		sink.Fatal(diag.AtLine(lineNo), err.Error())
		return nil, fmt.Errorf("tagtree: read error: %w", err)
	}
	if !sawAnyLine {
		sink.Fatal(diag.AtLine(0), "empty input")
		return nil, fmt.Errorf("tagtree: empty input")
	}

	resolvePointers(f, sink)
	return f, nil
}

// assignPayload classifies rest as absent, a pointer (@XREF@ or @VOID@), or
// a string payload (decoding the leading-@ escape per spec §4.2).
func assignPayload(f *Forest, h Handle, rest string, cfg *dialect.Config) {
	if rest == "" {
		return
	}
	if ptr, ok := asPointerPayload(rest); ok {
		if ptr == "@VOID@" {
			f.SetNullPointer(h)
			return
		}
		f.Get(h).Payload = Payload{Kind: PayloadPointer, Str: ptr} // temp: Str holds unresolved xref text
		return
	}
	f.SetString(h, decodeLeadingAt(rest))
}

// asPointerPayload reports whether rest is exactly "@...@" with no internal
// "@@" escape, i.e. a pointer rather than escaped text.
func asPointerPayload(rest string) (string, bool) {
	if len(rest) < 2 || rest[0] != '@' || rest[len(rest)-1] != '@' {
		return "", false
	}
	if strings.HasPrefix(rest, "@@") {
		return "", false
	}
	inner := rest[1 : len(rest)-1]
	if inner == "" || strings.Contains(inner, "@") {
		return "", false
	}
	return rest, true
}

// decodeLeadingAt drops one leading "@" from a doubled escape: "@@#..."
// decodes to "@#...", "@@@#..." decodes to "@@#...".
func decodeLeadingAt(s string) string {
	if strings.HasPrefix(s, "@@") {
		return s[1:]
	}
	return s
}

// spliceContinuation implements CONT/CONC folding into the enclosing
// structure's string payload (spec §4.2).
func spliceContinuation(f *Forest, target Handle, tag, rest string, cfg *dialect.Config) error {
	if target == NoHandle {
		return fmt.Errorf("%s with no enclosing structure", tag)
	}
	s := f.Get(target)
	if s.Payload.Kind == PayloadPointer || s.Payload.Kind == PayloadNullPointer || len(s.Children) > 0 {
		return fmt.Errorf("%s on a structure with a pointer payload or substructures", tag)
	}
	if tag == "CONC" && cfg.LineLengthPolicy() == dialect.UnlimitedNoConc {
		return fmt.Errorf("CONC is not permitted by this dialect")
	}
	switch tag {
	case "CONT":
		s.Payload = Payload{Kind: PayloadString, Str: s.Payload.Str + "\n" + decodeLeadingAt(rest)}
	case "CONC":
		s.Payload = Payload{Kind: PayloadString, Str: s.Payload.Str + decodeLeadingAt(rest)}
	}
	return nil
}

// resolvePointers is the parser's second pass: every temporary pointer
// string is resolved against the xref table, "@VOID@" becomes the
// null-pointer sentinel, and unresolved references are reported and become
// null-pointer too (spec §4.2, §8 boundary cases).
func resolvePointers(f *Forest, sink *diag.Sink) {
	for i := range f.nodes {
		h := Handle(i)
		s := f.Get(h)
		if s.Payload.Kind != PayloadPointer || s.Payload.Str == "" {
			continue // not a pointer, or already resolved (built via SetPointer)
		}
		raw := s.Payload.Str
		target, ok := f.ByXRef(raw)
		if !ok {
			sink.Err(diag.AtLine(s.Line), fmt.Sprintf("pointer to undefined xref_id %s", raw))
			f.SetNullPointer(h)
			continue
		}
		f.Get(h).Payload = Payload{Kind: PayloadAbsent}
		f.SetPointer(h, target)
	}
}

// splitAnyLineEnding is a bufio.SplitFunc that splits on "\r\n", lone "\r",
// or lone "\n" (spec §6: "CRLF/LF/CR line endings").
func splitAnyLineEnding(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\r' && i+1 < len(data) && data[i+1] == '\n' {
			return i + 2, data[:i], nil
		}
		if data[i] == '\r' && i+1 == len(data) && !atEOF {
			return 0, nil, nil // need more data to know if \n follows
		}
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
