package envelope

// CatalogSchema generates a JSON Schema (draft-07) for the wire objects of
// a definition at a schema version. The schema covers the unconditional
// members (type tag, status, entity id) and every catalog field visible at
// that version; fields above the version are rejected through
// additionalProperties.
func CatalogSchema(def *Definition, version int) map[string]any {
	statuses := def.variants.LegalStatuses()
	statusEnum := make([]any, len(statuses))
	for i, s := range statuses {
		statusEnum[i] = int(s)
	}

	properties := map[string]any{
		typeTagMember:     map[string]any{"const": def.typeTag},
		statusMember:      map[string]any{"enum": statusEnum},
		def.entityIDField: map[string]any{"type": "string"},
	}
	required := []any{typeTagMember, statusMember, def.entityIDField}

	payloadField, hasPayloadField := def.catalog.PayloadField()
	for _, fd := range def.catalog.Fields() {
		if fd.MinVersion > version {
			continue
		}
		properties[fd.Name] = kindSchema(fd.Kind)
		// The payload field's presence depends on the variant; it is
		// never schema-required.
		if !fd.Optional && !(hasPayloadField && fd.Name == payloadField.Name) {
			required = append(required, fd.Name)
		}
	}

	return map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

func kindSchema(k Kind) map[string]any {
	switch k {
	case KindScalar:
		return map[string]any{"type": []any{"string", "number", "boolean"}}
	case KindObject:
		return map[string]any{"type": "object"}
	default:
		return map[string]any{}
	}
}
