package typed

import "fmt"

// Find descends from h alternating (childType, childPayload) argument
// pairs; -1 (as a string or an integer) matches any payload. Payload
// comparison is by string coercion against Payload.Str (spec §4.5
// "Find / findOrCreate").
func (d *Dataset) Find(h Handle, pairs ...any) (Handle, bool) {
	cur := h
	for i := 0; i+1 < len(pairs); i += 2 {
		tagOrURI, _ := pairs[i].(string)
		typ := d.resolveType(d.Get(cur).Type, tagOrURI)
		payload := pairs[i+1]

		var next Handle = NoHandle
		for _, c := range d.Get(cur).ChildrenOf(typ) {
			if matchesPayload(d.Get(c).Payload, payload) {
				next = c
				break
			}
		}
		if next == NoHandle {
			return NoHandle, false
		}
		cur = next
	}
	return cur, true
}

func matchesPayload(p Payload, want any) bool {
	if want == nil {
		return true
	}
	s := fmt.Sprint(want)
	return s == "-1" || p.Str == s
}

// FindOrCreate returns the first structure matching the (childType,
// payload) chain from h, creating any missing link in the chain (reusing
// every matched ancestor) and setting each created link's payload when a
// concrete (non-wildcard) value was given.
func (d *Dataset) FindOrCreate(h Handle, pairs ...any) Handle {
	cur := h
	for i := 0; i+1 < len(pairs); i += 2 {
		tagOrURI, _ := pairs[i].(string)
		typ := d.resolveType(d.Get(cur).Type, tagOrURI)
		payload := pairs[i+1]

		var next Handle = NoHandle
		for _, c := range d.Get(cur).ChildrenOf(typ) {
			if matchesPayload(d.Get(c).Payload, payload) {
				next = c
				break
			}
		}
		if next == NoHandle {
			next = d.NewChild(cur, tagOrURI)
			if s := fmt.Sprint(payload); payload != nil && s != "-1" {
				d.SetString(next, s, nil)
			}
		}
		cur = next
	}
	return cur
}
