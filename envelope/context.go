package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/haoxiangmiao/ditto/errors"
)

// DecodeContext wraps the raw parsed wire object plus ambient headers and
// the already-resolved status and variant. Registered factories rebuild
// envelopes through its accessors only, isolating every concrete type from
// the underlying JSON representation.
type DecodeContext struct {
	object  map[string]json.RawMessage
	headers Headers
	status  Status
	variant Variant
}

// RequireField extracts a catalog field, failing with ErrMissingField
// naming the field when absent, or ErrWrongFieldKind when the value does
// not match the declared kind.
func (dc *DecodeContext) RequireField(fd FieldDef) (json.RawMessage, error) {
	value, ok := dc.object[fd.Name]
	if !ok || isJSONNull(value) {
		return nil, errors.WrapInvalid(errors.ErrMissingField, "DecodeContext", "RequireField",
			fmt.Sprintf("field %q", fd.Name))
	}
	if err := checkKind(fd, value); err != nil {
		return nil, err
	}
	return value, nil
}

// OptionalField extracts a catalog field if present. Absence is not an
// error; a present value of the wrong kind still is.
func (dc *DecodeContext) OptionalField(fd FieldDef) (json.RawMessage, bool, error) {
	value, ok := dc.object[fd.Name]
	if !ok || isJSONNull(value) {
		return nil, false, nil
	}
	if err := checkKind(fd, value); err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// ResolvedStatus returns the status validated against the type's legal set.
func (dc *DecodeContext) ResolvedStatus() Status {
	return dc.status
}

// ResolvedVariant returns the variant derived from the resolved status.
func (dc *DecodeContext) ResolvedVariant() Variant {
	return dc.variant
}

// Headers returns the ambient header bag supplied by the transport.
func (dc *DecodeContext) Headers() Headers {
	return dc.headers
}

// requireString extracts a top-level member that must be a JSON string,
// such as the entity id.
func (dc *DecodeContext) requireString(name string) (string, error) {
	value, ok := dc.object[name]
	if !ok || isJSONNull(value) {
		return "", errors.WrapInvalid(errors.ErrMissingField, "DecodeContext", "requireString",
			fmt.Sprintf("field %q", name))
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return "", errors.WrapInvalid(errors.ErrWrongFieldKind, "DecodeContext", "requireString",
			fmt.Sprintf("field %q is not a string", name))
	}
	return s, nil
}

// checkKind validates a raw JSON value against a field's declared kind.
func checkKind(fd FieldDef, value json.RawMessage) error {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 {
		return errors.WrapInvalid(errors.ErrWrongFieldKind, "DecodeContext", "checkKind",
			fmt.Sprintf("field %q is empty", fd.Name))
	}

	switch fd.Kind {
	case KindScalar:
		if trimmed[0] == '{' || trimmed[0] == '[' {
			return errors.WrapInvalid(errors.ErrWrongFieldKind, "DecodeContext", "checkKind",
				fmt.Sprintf("field %q must be a JSON primitive", fd.Name))
		}
	case KindObject:
		if trimmed[0] != '{' {
			return errors.WrapInvalid(errors.ErrWrongFieldKind, "DecodeContext", "checkKind",
				fmt.Sprintf("field %q must be a JSON object", fd.Name))
		}
	case KindRaw:
		// Any well-formed value is acceptable.
	}
	return nil
}

// isJSONNull reports whether a raw value is the JSON null literal. Absent
// and null members are treated alike, as the wire format never
// distinguishes them.
func isJSONNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}
