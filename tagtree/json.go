package tagtree

import (
	"encoding/json"
	"fmt"

	"github.com/cacack/ged7/diag"
)

// jsonNode mirrors the wire shape from spec §4.2/§6:
// {tag, id?, (href|text)?, sub?}. href is the identifier of the pointed-to
// structure, or explicit JSON null for void.
type jsonNode struct {
	Tag  string      `json:"tag"`
	ID   string      `json:"id,omitempty"`
	Href *string     `json:"href,omitempty"`
	Text *string     `json:"text,omitempty"`
	Sub  []*jsonNode `json:"sub,omitempty"`

	isVoid     bool // marshal: payload is the null-pointer sentinel
	hrefIsNull bool // unmarshal: "href" key was present and JSON null
}

// ToJSON renders f as the tag-layer intermediate JSON array described in
// spec §6.
func ToJSON(f *Forest) ([]byte, error) {
	ids := mintIdentifiers(f)
	var roots []*jsonNode
	for _, h := range f.TopLevel() {
		roots = append(roots, toJSONNode(f, h, ids))
	}
	return json.Marshal(roots)
}

func toJSONNode(f *Forest, h Handle, ids map[Handle]string) *jsonNode {
	s := f.Get(h)
	n := &jsonNode{Tag: s.Tag}
	if id, ok := ids[h]; ok {
		n.ID = id
	}
	switch s.Payload.Kind {
	case PayloadString:
		text := s.Payload.Str
		n.Text = &text
	case PayloadPointer:
		href := ids[s.Payload.Ptr]
		n.Href = &href
	case PayloadNullPointer:
		n.isVoid = true
	}
	for _, c := range s.Children {
		n.Sub = append(n.Sub, toJSONNode(f, c, ids))
	}
	return n
}

// MarshalJSON special-cases the null-pointer sentinel so it serializes as an
// explicit JSON null for "href" rather than omitting the key.
func (n *jsonNode) MarshalJSON() ([]byte, error) {
	type alias jsonNode
	if n.Href == nil && n.isVoid {
		aux := struct {
			*alias
			Href json.RawMessage `json:"href"`
		}{alias: (*alias)(n), Href: json.RawMessage("null")}
		return json.Marshal(aux)
	}
	return json.Marshal((*alias)(n))
}

// UnmarshalJSON distinguishes an explicit "href": null (void pointer) from
// an absent "href" key (no pointer at all), which json.Unmarshal alone
// cannot: both decode a *string field to nil.
func (n *jsonNode) UnmarshalJSON(data []byte) error {
	type alias jsonNode
	raw := struct {
		*alias
		Href json.RawMessage `json:"href"`
	}{alias: (*alias)(n)}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Href) > 0 && string(raw.Href) != "null" {
		var s string
		if err := json.Unmarshal(raw.Href, &s); err != nil {
			return err
		}
		n.Href = &s
	} else if string(raw.Href) == "null" {
		n.hrefIsNull = true
	}
	return nil
}

// FromJSON parses the tag-layer intermediate JSON back into a Forest,
// mirroring fromString's two-pass pointer resolution (spec §4.2).
func FromJSON(data []byte, sink *diag.Sink) (*Forest, error) {
	var roots []*jsonNode
	if err := json.Unmarshal(data, &roots); err != nil {
		sink.Fatal(diag.AtLine(0), err.Error())
		return nil, fmt.Errorf("tagtree: invalid JSON: %w", err)
	}

	f := NewForest()
	type pending struct {
		h    Handle
		href string
	}
	var pendingPtrs []pending
	var build func(n *jsonNode, parent Handle)
	build = func(n *jsonNode, parent Handle) {
		h := f.New(n.Tag, parent)
		if n.ID != "" {
			f.SetXRef(h, "@"+n.ID+"@")
		}
		switch {
		case n.Text != nil:
			f.SetString(h, *n.Text)
		case n.hrefIsNull:
			f.SetNullPointer(h)
		case n.Href != nil:
			pendingPtrs = append(pendingPtrs, pending{h: h, href: *n.Href})
		}
		for _, c := range n.Sub {
			build(c, h)
		}
	}
	for _, r := range roots {
		build(r, NoHandle)
	}

	for _, p := range pendingPtrs {
		if p.href == "VOID" {
			f.SetNullPointer(p.h)
			continue
		}
		target, ok := f.ByXRef("@" + p.href + "@")
		if !ok {
			sink.Err(diag.AtLine(0), fmt.Sprintf("pointer to undefined xref_id @%s@", p.href))
			f.SetNullPointer(p.h)
			continue
		}
		f.SetPointer(p.h, target)
	}
	return f, nil
}
