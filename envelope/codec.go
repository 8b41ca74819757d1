package envelope

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strconv"

	"github.com/haoxiangmiao/ditto/errors"
)

// Wire object members emitted for every envelope, outside the projectable
// catalog. These names are part of the wire contract and never change.
const (
	typeTagMember = "type"
	statusMember  = "status"
)

// Observer receives codec events. Implementations must be safe for
// concurrent use; the metric package provides a prometheus-backed one.
type Observer interface {
	EnvelopeEncoded(typeTag string)
	EnvelopeDecoded(typeTag string)
	DecodeFailed(kind string)
}

type noopObserver struct{}

func (noopObserver) EnvelopeEncoded(string) {}
func (noopObserver) EnvelopeDecoded(string) {}
func (noopObserver) DecodeFailed(string)    {}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithObserver attaches an observer for encode/decode events.
func WithObserver(o Observer) CodecOption {
	return func(c *Codec) {
		if o != nil {
			c.observer = o
		}
	}
}

// Codec orchestrates the wire round trip: encode projects an envelope's
// catalog onto a flat JSON object, decode dispatches the tag through the
// registry and rebuilds an envelope via the registered factory.
//
// Both directions are pure and synchronous - no I/O, no blocking - so a
// single Codec may be shared by any number of goroutines.
type Codec struct {
	registry *Registry
	observer Observer
}

// NewCodec creates a codec over a registry.
func NewCodec(registry *Registry, opts ...CodecOption) *Codec {
	c := &Codec{registry: registry, observer: noopObserver{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Registry returns the registry this codec dispatches through.
func (c *Codec) Registry() *Registry {
	return c.registry
}

// Encode serializes an envelope at a schema version under a predicate.
//
// The wire object always carries the type tag, the status and the entity
// id; the remaining members are the projected catalog fields in declaration
// order, names exactly as declared. Headers are not part of the object
// body - they travel out-of-band with the transport.
func (c *Codec) Encode(e *Envelope, version int, pred Predicate) ([]byte, error) {
	if e == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidData, "Codec", "Encode",
			"envelope cannot be nil")
	}

	var buf bytes.Buffer
	buf.WriteByte('{')

	writeStringMember(&buf, typeTagMember, e.TypeTag())
	buf.WriteByte(',')
	writeRawMember(&buf, statusMember, []byte(strconv.Itoa(int(e.status))))
	buf.WriteByte(',')
	writeStringMember(&buf, e.def.entityIDField, e.entityID)

	for _, pf := range Project(e.def.catalog, version, pred, e.fields) {
		buf.WriteByte(',')
		writeRawMember(&buf, pf.Name, pf.Value)
	}

	buf.WriteByte('}')
	c.observer.EnvelopeEncoded(e.TypeTag())
	return buf.Bytes(), nil
}

// Decode parses a wire object and rebuilds its envelope. The status is
// taken from the object's "status" member; transports that learn the status
// out-of-band use DecodeWithStatus instead. The supplied headers are the
// ambient bag from the transport and end up unchanged on the envelope.
func (c *Codec) Decode(data []byte, headers Headers) (*Envelope, error) {
	object, tag, err := c.parse(data)
	if err != nil {
		c.observer.DecodeFailed(ErrorKind(err))
		return nil, err
	}

	rawStatus, ok := object[statusMember]
	if !ok {
		err := errors.WrapInvalid(errors.ErrIllegalStatus, "Codec", "Decode",
			fmt.Sprintf("object for %q carries no status member", tag))
		c.observer.DecodeFailed(ErrorKind(err))
		return nil, err
	}
	var status int
	if err := json.Unmarshal(rawStatus, &status); err != nil {
		err := errors.WrapInvalid(errors.ErrIllegalStatus, "Codec", "Decode",
			fmt.Sprintf("status member of %q is not a number", tag))
		c.observer.DecodeFailed(ErrorKind(err))
		return nil, err
	}

	return c.dispatch(object, tag, Status(status), headers)
}

// DecodeWithStatus is Decode for transports that supply the status
// out-of-band, such as an HTTP status line or a message header. The
// explicit status takes precedence over any "status" member in the body.
func (c *Codec) DecodeWithStatus(data []byte, status Status, headers Headers) (*Envelope, error) {
	object, tag, err := c.parse(data)
	if err != nil {
		c.observer.DecodeFailed(ErrorKind(err))
		return nil, err
	}
	return c.dispatch(object, tag, status, headers)
}

// parse turns wire bytes into the generic object and extracts the tag.
func (c *Codec) parse(data []byte) (map[string]json.RawMessage, string, error) {
	var object map[string]json.RawMessage
	if err := json.Unmarshal(data, &object); err != nil {
		return nil, "", errors.WrapInvalid(errors.ErrMalformedInput, "Codec", "parse",
			"wire object parse")
	}

	rawTag, ok := object[typeTagMember]
	if !ok {
		return nil, "", errors.WrapInvalid(errors.ErrMissingTypeTag, "Codec", "parse",
			"object carries no type member")
	}
	var tag string
	if err := json.Unmarshal(rawTag, &tag); err != nil || tag == "" {
		return nil, "", errors.WrapInvalid(errors.ErrMissingTypeTag, "Codec", "parse",
			"type member is not a non-empty string")
	}

	return object, tag, nil
}

// dispatch resolves the factory, validates the status and invokes the
// factory with a fresh decode context.
func (c *Codec) dispatch(object map[string]json.RawMessage, tag string, status Status, headers Headers) (*Envelope, error) {
	factory, err := c.registry.Resolve(tag)
	if err != nil {
		c.observer.DecodeFailed(ErrorKind(err))
		return nil, err
	}

	variant, err := c.registry.ResolveVariant(tag, status)
	if err != nil {
		c.observer.DecodeFailed(ErrorKind(err))
		return nil, err
	}

	e, err := factory(&DecodeContext{
		object:  object,
		headers: headers,
		status:  status,
		variant: variant,
	})
	if err != nil {
		c.observer.DecodeFailed(ErrorKind(err))
		return nil, err
	}

	c.observer.EnvelopeDecoded(tag)
	return e, nil
}

// ErrorKind maps a decode error to its taxonomy name, for metrics and logs.
func ErrorKind(err error) string {
	switch {
	case stderrors.Is(err, errors.ErrMalformedInput):
		return "malformed_input"
	case stderrors.Is(err, errors.ErrMissingTypeTag):
		return "missing_type_tag"
	case stderrors.Is(err, errors.ErrUnknownType):
		return "unknown_type"
	case stderrors.Is(err, errors.ErrMissingField):
		return "missing_field"
	case stderrors.Is(err, errors.ErrWrongFieldKind):
		return "wrong_field_kind"
	case stderrors.Is(err, errors.ErrIllegalStatus):
		return "illegal_status"
	default:
		return "invalid"
	}
}

// writeStringMember appends `"name":"value"` with full JSON escaping.
func writeStringMember(buf *bytes.Buffer, name, value string) {
	encoded, _ := json.Marshal(value)
	writeRawMember(buf, name, encoded)
}

// writeRawMember appends `"name":<raw>` without touching the value bytes,
// preserving deterministic output for round trips and golden files.
func writeRawMember(buf *bytes.Buffer, name string, raw []byte) {
	key, _ := json.Marshal(name)
	buf.Write(key)
	buf.WriteByte(':')
	buf.Write(raw)
}
