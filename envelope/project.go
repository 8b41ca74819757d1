package envelope

import "encoding/json"

// FieldValues holds the wire values of an envelope's catalog fields, keyed
// by wire name. Values are raw JSON carried verbatim; ordering on the wire
// comes from the catalog, never from the map.
type FieldValues map[string]json.RawMessage

// ProjectedField pairs a wire name with its serialized value.
type ProjectedField struct {
	Name  string
	Value json.RawMessage
}

// Project selects the catalog fields to emit for a schema version and a
// caller predicate, in catalog declaration order.
//
// A field is included iff its minimum version is at most version, the
// predicate admits it, and a value is present for it. The predicate composes
// conjunctively with the version gate, so callers can narrow the projection
// (for example to Special fields only) without the catalog knowing. An empty
// result is valid and yields an empty object.
func Project(c *Catalog, version int, pred Predicate, values FieldValues) []ProjectedField {
	if pred == nil {
		pred = All
	}

	var out []ProjectedField
	for _, fd := range c.fields {
		if fd.MinVersion > version || !pred(fd) {
			continue
		}
		value, ok := values[fd.Name]
		if !ok {
			continue
		}
		out = append(out, ProjectedField{Name: fd.Name, Value: value})
	}
	return out
}
