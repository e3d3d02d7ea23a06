package typed

import (
	"sort"

	"github.com/cacack/ged7/tagtree"
)

// ToForest serializes the dataset back to a tag forest (spec §4.5
// "Serialization to tag forest"): populateSchema mints tags for every
// used extension URI first, then each typed structure emits a
// tag-structure using the standard-in-context tag, the schema-minted
// extension tag, or the relocated-extension form of its tag. Pointer
// payloads are resolved through an identity map in a final pass; the
// forest is closed with a TRLR structure by tagtree.Serialize itself.
func (d *Dataset) ToForest() *tagtree.Forest {
	f := tagtree.NewForest()
	identity := make(map[Handle]tagtree.Handle)

	var pendingPointers []struct {
		targetTyped Handle
		th          tagtree.Handle
	}

	var walk func(h Handle, parent tagtree.Handle)
	walk = func(h Handle, parent tagtree.Handle) {
		s := d.Get(h)
		tag := d.tagFor(s)
		th := f.New(tag, parent)
		identity[h] = th

		if s.HasXRef() {
			f.SetXRef(th, "@"+s.XRefID+"@")
		}

		switch s.Payload.Kind {
		case PayloadString:
			f.SetString(th, s.Payload.Str)
		case PayloadNullPointer:
			f.SetNullPointer(th)
		case PayloadPointer:
			pendingPointers = append(pendingPointers, struct {
				targetTyped Handle
				th          tagtree.Handle
			}{s.Payload.Ptr, th})
		}

		for _, hs := range s.Children {
			for _, c := range hs {
				walk(c, th)
			}
		}
	}

	for _, h := range d.TopLevel() {
		walk(h, tagtree.NoHandle)
	}

	for _, p := range pendingPointers {
		if target, ok := identity[p.targetTyped]; ok {
			f.SetPointer(p.th, target)
		} else {
			f.SetNullPointer(p.th)
		}
	}

	d.attachSchema(f)

	return f
}

// attachSchema adds the HEAD.SCHMA block listing every extension tag minted
// or registered during this serialization (spec §3 Data Model invariant,
// §8 round-trip law (b)), once tagFor has finished reserving tags for every
// structure. A no-op when nothing used an extension tag, or when there is
// no HEAD record to hang SCHMA off of.
func (d *Dataset) attachSchema(f *tagtree.Forest) {
	if d.Lookup == nil {
		return
	}
	tags := d.Lookup.UsedExtensionTags()
	if len(tags) == 0 {
		return
	}

	head := tagtree.NoHandle
	for _, h := range f.TopLevel() {
		if f.Get(h).Tag == "HEAD" {
			head = h
			break
		}
	}
	if head == tagtree.NoHandle {
		return
	}

	names := make([]string, 0, len(tags))
	for tag := range tags {
		names = append(names, tag)
	}
	sort.Strings(names)

	schma := f.New("SCHMA", head)
	for _, tag := range names {
		tagH := f.New("TAG", schma)
		f.SetString(tagH, tag+" "+tags[tag])
	}
}

// tagFor picks the tag a structure should serialize under: the schema's
// standard tag, or (when the type is an undocumented/extension URI) a
// schema-minted extension tag via SchemaPrep.
func (d *Dataset) tagFor(s *Structure) string {
	if d.Lookup == nil {
		return s.Type
	}
	containerURI := ""
	if s.Parent != NoHandle {
		containerURI = d.Get(s.Parent).Type
	}
	if !looksLikeURI(s.Type) {
		return s.Type
	}
	return d.Lookup.SchemaPrep(s.Type, "struct", containerURI)
}
