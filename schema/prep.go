package schema

import "fmt"

// SchemaPrep auto-populates extension-tag registrations ahead of
// serialization (spec §4.4 "Schema auto-population for serialization"):
// it reserves a tag for every used URI, minting a "_"-prefixed tag when
// the URI is not a standard child of within, disambiguating collisions
// with existing extensions by suffixing a counter.
func (l *Lookup) SchemaPrep(uri, kind, within string) string {
	if tag := l.schema.Tag[uri]; tag != "" {
		if _, standard := l.schema.Substructure[within][tag]; standard {
			return tag
		}
	}

	for tag, u := range l.extensions {
		if u == uri {
			return tag
		}
	}

	base := baseTagFor(uri, kind)
	tag := base
	suffix := 1
	for {
		if existingURI, taken := l.extensions[tag]; !taken || existingURI == uri {
			break
		}
		suffix++
		tag = fmt.Sprintf("%s%d", base, suffix)
	}
	l.extensions[tag] = uri
	return tag
}

func baseTagFor(uri, kind string) string {
	name := uri
	for i := len(uri) - 1; i >= 0; i-- {
		if uri[i] == '/' || uri[i] == '-' {
			name = uri[i+1:]
			break
		}
	}
	tag := "_"
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
			tag += string(r - 32)
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			tag += string(r)
		}
	}
	if tag == "_" {
		tag = "_" + kind
	}
	return tag
}

// UsedExtensionTags returns every tag registered through AddExtension or
// SchemaPrep, for emitting a HEAD.SCHMA block.
func (l *Lookup) UsedExtensionTags() map[string]string {
	out := make(map[string]string, len(l.extensions))
	for k, v := range l.extensions {
		out[k] = v
	}
	return out
}
