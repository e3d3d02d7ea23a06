package tagtree

import (
	"fmt"
	"strings"

	"github.com/cacack/ged7/dialect"
)

// Serialize writes f back to GEDC text using cfg's grammar (spec §4.2
// "Serialization"). Top-level TRLR structures in f are not written; a single
// "0 TRLR" is always appended.
func Serialize(f *Forest, cfg *dialect.Config) (string, error) {
	if cfg == nil {
		cfg = dialect.GEDCOM7()
	}
	ids := mintIdentifiers(f)

	var b strings.Builder
	for _, h := range f.TopLevel() {
		if f.Get(h).Tag == "TRLR" {
			continue
		}
		if err := writeStructure(&b, f, h, 0, cfg, ids); err != nil {
			return "", err
		}
	}
	b.WriteString("0 TRLR\n")
	return b.String(), nil
}

// mintIdentifiers assigns a stable identifier to every structure that is
// pointed to, reusing a caller-supplied XRefID when it is free and otherwise
// minting "X1", "X2", … skipping identifiers already claimed or reserved
// ("VOID"), per spec §4.2 and §9 Design Notes.
func mintIdentifiers(f *Forest) map[Handle]string {
	used := map[string]bool{"VOID": true}
	ids := make(map[Handle]string)

	for i := 0; i < f.Len(); i++ {
		h := Handle(i)
		s := f.Get(h)
		if s.HasXRef() {
			name := strings.Trim(s.XRefID, "@")
			if !used[name] {
				used[name] = true
				ids[h] = name
			}
		}
	}

	counter := 1
	nextID := func() string {
		for {
			cand := fmt.Sprintf("X%d", counter)
			counter++
			if !used[cand] {
				used[cand] = true
				return cand
			}
		}
	}

	for i := 0; i < f.Len(); i++ {
		h := Handle(i)
		s := f.Get(h)
		if s.IsPointedTo() {
			if _, ok := ids[h]; !ok {
				ids[h] = nextID()
			}
		}
	}
	return ids
}

func writeStructure(b *strings.Builder, f *Forest, h Handle, level int, cfg *dialect.Config, ids map[Handle]string) error {
	s := f.Get(h)

	var head strings.Builder
	fmt.Fprintf(&head, "%d ", level)
	if id, ok := ids[h]; ok {
		fmt.Fprintf(&head, "@%s@ ", id)
	}
	head.WriteString(s.Tag)

	payload, err := renderPayload(s, f, cfg, ids)
	if err != nil {
		return err
	}

	if err := writeLineWrapped(b, head.String(), payload, level, cfg); err != nil {
		return err
	}

	for _, c := range s.Children {
		if err := writeStructure(b, f, c, level+1, cfg, ids); err != nil {
			return err
		}
	}
	return nil
}

func renderPayload(s *Structure, f *Forest, cfg *dialect.Config, ids map[Handle]string) (string, error) {
	switch s.Payload.Kind {
	case PayloadAbsent:
		return "", nil
	case PayloadNullPointer:
		return "@VOID@", nil
	case PayloadPointer:
		target := f.Get(s.Payload.Ptr)
		id, ok := ids[s.Payload.Ptr]
		if !ok {
			return "", fmt.Errorf("tagtree: pointer target has no identifier")
		}
		_ = target
		return "@" + id + "@", nil
	case PayloadString:
		return escapeLeadingAt(s.Payload.Str, cfg), nil
	default:
		return "", fmt.Errorf("tagtree: unknown payload kind")
	}
}

// escapeLeadingAt doubles a leading "@" per the dialect's Escapes flag
// (spec §4.1, §4.2): with escapes on, "@#…" payloads serialize literally;
// with escapes off, they gain an extra "@".
func escapeLeadingAt(s string, cfg *dialect.Config) string {
	if !strings.HasPrefix(s, "@") {
		return s
	}
	if cfg.Escapes && strings.HasPrefix(s, "@#") {
		return s
	}
	return "@" + s
}

// writeLineWrapped emits head+payload as one or more physical lines,
// splitting the payload on embedded newlines into CONT directives and, when
// the dialect wraps at a positive length, splicing CONC boundaries so no
// physical line exceeds cfg.Len characters (spec §4.2, §8 boundary cases).
func writeLineWrapped(b *strings.Builder, head, payload string, level int, cfg *dialect.Config) error {
	segments := strings.Split(payload, "\n")
	for segIdx, seg := range segments {
		prefix := head
		if segIdx > 0 {
			prefix = fmt.Sprintf("%d CONT", level+1)
		}
		if err := writeWrappedSegment(b, prefix, seg, level, cfg); err != nil {
			return err
		}
	}
	return nil
}

func writeWrappedSegment(b *strings.Builder, prefix, seg string, level int, cfg *dialect.Config) error {
	line := prefix
	if seg != "" {
		line += " " + seg
	}

	if cfg.LineLengthPolicy() != dialect.Wrapped || len(line) <= cfg.Len {
		b.WriteString(line)
		b.WriteString("\n")
		return nil
	}

	// Wrap with CONC continuations at level+1.
	headLen := len(prefix) + 1 // prefix + separating space
	rest := seg
	concHead := fmt.Sprintf("%d CONC", level+1)
	first := true
	for {
		budget := cfg.Len - headLen
		if !first {
			budget = cfg.Len - len(concHead) - 1
		}
		if budget <= 0 {
			return fmt.Errorf("tagtree: line length %d too small for CONC wrapping", cfg.Len)
		}
		if len(rest) <= budget {
			if first {
				b.WriteString(prefix)
				if rest != "" {
					b.WriteString(" " + rest)
				}
			} else {
				b.WriteString(concHead)
				if rest != "" {
					b.WriteString(" " + rest)
				}
			}
			b.WriteString("\n")
			break
		}
		cut := budget
		for cut > 0 && rest[cut-1] == '@' && !evenAtRuns(rest, cut) {
			cut-- // never split inside an "@" escape run
		}
		chunk := rest[:cut]
		if first {
			b.WriteString(prefix + " " + chunk + "\n")
		} else {
			b.WriteString(concHead + " " + chunk + "\n")
		}
		rest = rest[cut:]
		first = false
	}
	return nil
}

// evenAtRuns reports whether the run of trailing "@" characters ending at
// rest[:cut] has even length, meaning a split there would not separate a
// doubled "@@" escape.
func evenAtRuns(rest string, cut int) bool {
	n := 0
	for i := cut - 1; i >= 0 && rest[i] == '@'; i-- {
		n++
	}
	return n%2 == 0
}
