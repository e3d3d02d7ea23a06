package typed

import (
	"encoding/json"
	"fmt"

	"github.com/cacack/ged7/diag"
	"github.com/cacack/ged7/schema"
)

// jsonDoc and jsonChild mirror the typed-layer wire shape from spec
// §4.5: "{id?, (xref|payload)?, sub?} where xref is "#"+id of the
// pointed-to record; the top-level JSON is {header, records} with
// records keyed by URI."
type jsonDoc struct {
	Header  *jsonChild                `json:"header,omitempty"`
	Records map[string][]*jsonChild `json:"records,omitempty"`
}

type jsonChild struct {
	ID      string                  `json:"id,omitempty"`
	XRef    *string                 `json:"xref,omitempty"`
	Payload *string                 `json:"payload,omitempty"`
	Sub     map[string][]*jsonChild `json:"sub,omitempty"`
}

// ToJSON renders the dataset as the typed-layer JSON document described
// in spec §4.5.
func (d *Dataset) ToJSON() ([]byte, error) {
	ids := d.mintIdentifiers()
	doc := jsonDoc{Records: make(map[string][]*jsonChild)}

	for _, h := range d.TopLevel() {
		s := d.Get(h)
		jc := d.toJSONChild(h, ids)
		if s.Type == "https://gedcom.io/terms/v7/HEAD" || s.Type == "HEAD" {
			doc.Header = jc
			continue
		}
		doc.Records[s.Type] = append(doc.Records[s.Type], jc)
	}
	return json.Marshal(doc)
}

func (d *Dataset) toJSONChild(h Handle, ids map[Handle]string) *jsonChild {
	s := d.Get(h)
	jc := &jsonChild{}
	if id, ok := ids[h]; ok {
		jc.ID = id
	}
	switch s.Payload.Kind {
	case PayloadString:
		p := s.Payload.Str
		jc.Payload = &p
	case PayloadPointer:
		ref := "#" + ids[s.Payload.Ptr]
		jc.XRef = &ref
	case PayloadNullPointer:
		null := "#VOID"
		jc.XRef = &null
	}
	if len(s.Children) > 0 {
		jc.Sub = make(map[string][]*jsonChild, len(s.Children))
		for typ, hs := range s.Children {
			for _, c := range hs {
				jc.Sub[typ] = append(jc.Sub[typ], d.toJSONChild(c, ids))
			}
		}
	}
	return jc
}

func (d *Dataset) mintIdentifiers() map[Handle]string {
	ids := make(map[Handle]string)
	used := map[string]bool{"VOID": true}
	for i := 0; i < d.Len(); i++ {
		h := Handle(i)
		s := d.Get(h)
		if s.HasXRef() {
			name := s.XRefID
			if !used[name] {
				used[name] = true
				ids[h] = name
			}
		}
	}
	counter := 1
	for i := 0; i < d.Len(); i++ {
		h := Handle(i)
		if d.Get(h).IsPointedTo() {
			if _, ok := ids[h]; !ok {
				for {
					cand := fmt.Sprintf("X%d", counter)
					counter++
					if !used[cand] {
						used[cand] = true
						ids[h] = cand
						break
					}
				}
			}
		}
	}
	return ids
}

// FromJSON constructs a Dataset from the typed-layer JSON document
// (construction path (d), spec §4.5).
func FromJSON(data []byte, lookup *schema.Lookup, sink *diag.Sink) (*Dataset, error) {
	var doc jsonDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		sink.Fatal(diag.AtLine(0), err.Error())
		return nil, fmt.Errorf("typed: invalid JSON: %w", err)
	}

	d := NewDataset(lookup, sink)
	type pending struct {
		h   Handle
		ref string
	}
	var pendingRefs []pending

	var build func(jc *jsonChild, typ string, parent Handle) Handle
	build = func(jc *jsonChild, typ string, parent Handle) Handle {
		var h Handle
		if parent == NoHandle {
			h = d.NewRecord(typ)
		} else {
			h = d.NewChild(parent, typ)
		}
		if jc.ID != "" {
			d.SetXRef(h, jc.ID)
		}
		switch {
		case jc.Payload != nil:
			assignTypedPayload(d, h, d.Get(h).Type, *jc.Payload)
		case jc.XRef != nil:
			pendingRefs = append(pendingRefs, pending{h: h, ref: *jc.XRef})
		}
		for childTyp, children := range jc.Sub {
			for _, c := range children {
				build(c, childTyp, h)
			}
		}
		return h
	}

	if doc.Header != nil {
		build(doc.Header, "HEAD", NoHandle)
	}
	for typ, records := range doc.Records {
		for _, r := range records {
			build(r, typ, NoHandle)
		}
	}

	for _, p := range pendingRefs {
		if p.ref == "#VOID" {
			d.SetNullPointer(p.h)
			continue
		}
		id := p.ref
		if len(id) > 0 && id[0] == '#' {
			id = id[1:]
		}
		target, ok := d.ByXRef(id)
		if !ok {
			sink.Err(diag.AtLine(d.Get(p.h).Line), "pointer to undefined id "+id)
			d.SetNullPointer(p.h)
			continue
		}
		d.SetPointer(p.h, target)
	}

	return d, nil
}
