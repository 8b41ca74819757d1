package envelope

import (
	"bytes"
	"encoding/json"
)

// Envelope is an immutable command-response value: a wire type tag, the
// entity the command addressed, the resolved variant and status, the
// catalog-described field values, and an opaque header bag.
//
// Envelopes are constructed either through a Definition's per-variant path
// (domain call sites, after a mutation) or by Codec.Decode (wire call
// sites), and never change afterwards. Replacing headers produces a new
// Envelope sharing everything else.
type Envelope struct {
	def      *Definition
	entityID string
	variant  Variant
	status   Status
	fields   FieldValues
	headers  Headers
}

// TypeTag returns the stable wire tag used for decode-time dispatch,
// for example "things.responses:modifyAttribute".
func (e *Envelope) TypeTag() string {
	return e.def.typeTag
}

// Definition returns the immutable type definition this envelope was built
// from.
func (e *Envelope) Definition() *Definition {
	return e.def
}

// EntityID returns the declared entity identifier. Non-empty by
// construction.
func (e *Envelope) EntityID() string {
	return e.entityID
}

// Variant returns the resolved variant.
func (e *Envelope) Variant() Variant {
	return e.variant
}

// Status returns the outcome code derived from the variant.
func (e *Envelope) Status() Status {
	return e.status
}

// Field returns the raw wire value of a catalog field.
func (e *Envelope) Field(name string) (json.RawMessage, bool) {
	v, ok := e.fields[name]
	return v, ok
}

// Payload returns the variant payload value, if this envelope's variant
// carries one. Pure acknowledgements return false.
func (e *Envelope) Payload() (json.RawMessage, bool) {
	fd, ok := e.def.catalog.PayloadField()
	if !ok {
		return nil, false
	}
	v, ok := e.fields[fd.Name]
	return v, ok
}

// Headers returns the header bag carried by this envelope.
func (e *Envelope) Headers() Headers {
	return e.headers
}

// WithHeaders returns a copy of the envelope carrying the given headers.
// All other observable fields are unchanged; the operation allocates only
// the new envelope value.
func (e *Envelope) WithHeaders(h Headers) *Envelope {
	out := *e
	out.headers = h
	return &out
}

// ResourcePath returns the addressing suffix for the mutated resource,
// for example "/attributes/color". Empty when the type declares no
// resource-path rule.
func (e *Envelope) ResourcePath() string {
	if e.def.resourcePath == nil {
		return ""
	}
	return e.def.resourcePath(e)
}

// Equal compares two envelopes on every observable field: type tag, entity
// id, variant, status, catalog field values and headers.
func (e *Envelope) Equal(other *Envelope) bool {
	if other == nil {
		return false
	}
	if e.def.typeTag != other.def.typeTag ||
		e.entityID != other.entityID ||
		e.variant != other.variant ||
		e.status != other.status {
		return false
	}
	if len(e.fields) != len(other.fields) {
		return false
	}
	for name, v := range e.fields {
		ov, ok := other.fields[name]
		if !ok || !bytes.Equal(v, ov) {
			return false
		}
	}
	return e.headers.Equal(other.headers)
}
