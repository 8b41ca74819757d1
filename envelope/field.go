package envelope

import (
	"fmt"

	"github.com/haoxiangmiao/ditto/errors"
)

// Schema versions gate field visibility for backward compatibility. A field
// is only emitted when the requested schema version is at least the field's
// minimum version.
const (
	SchemaVersionV1 = 1
	SchemaVersionV2 = 2

	// LatestSchemaVersion is the version new call sites should request.
	LatestSchemaVersion = SchemaVersionV2
)

// Kind describes the JSON shape a catalog field carries on the wire.
type Kind int

const (
	// KindScalar is a JSON primitive: string, number or boolean
	KindScalar Kind = iota
	// KindObject is a JSON object
	KindObject
	// KindRaw is any well-formed JSON value, carried verbatim
	KindRaw
)

// String returns the string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindObject:
		return "object"
	case KindRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// Visibility classifies catalog fields for predicate-based filtering.
type Visibility int

const (
	// Regular fields are part of the ordinary payload surface
	Regular Visibility = iota
	// Special fields are framework-level and only emitted when a caller
	// explicitly asks for them
	Special
)

// String returns the string representation of Visibility
func (v Visibility) String() string {
	switch v {
	case Regular:
		return "regular"
	case Special:
		return "special"
	default:
		return "unknown"
	}
}

// FieldDef describes a single wire field of an envelope type.
//
// Fields are declared once per type, collected into a Catalog, and shared
// across every instance of that type.
type FieldDef struct {
	// Name is the wire name, emitted exactly as declared
	Name string
	// Kind is the JSON shape the field carries
	Kind Kind
	// MinVersion is the lowest schema version that includes this field
	MinVersion int
	// Visibility classifies the field for predicate filtering
	Visibility Visibility
	// Optional fields may be absent on decode without error
	Optional bool
	// Payload marks the field that carries the variant payload. At most
	// one field per catalog may set it.
	Payload bool
}

// Predicate narrows a projection to a subset of catalog fields. Predicates
// compose conjunctively with the schema version gate.
type Predicate func(FieldDef) bool

// All admits every field.
func All(FieldDef) bool { return true }

// RegularOnly admits fields with Regular visibility.
func RegularOnly(fd FieldDef) bool { return fd.Visibility == Regular }

// SpecialOnly admits fields with Special visibility.
func SpecialOnly(fd FieldDef) bool { return fd.Visibility == Special }

// And composes predicates conjunctively. The empty composition admits
// every field; nil members are skipped.
func And(preds ...Predicate) Predicate {
	return func(fd FieldDef) bool {
		for _, p := range preds {
			if p != nil && !p(fd) {
				return false
			}
		}
		return true
	}
}

// Catalog is the immutable, ordered collection of an envelope type's wire
// fields. Built once per type and shared across all instances.
type Catalog struct {
	fields  []FieldDef
	index   map[string]int
	payload int // index of the payload field, -1 if none
}

// NewCatalog builds a catalog from field definitions, preserving declaration
// order. Wire names must be unique and at most one field may be marked as
// the payload field.
func NewCatalog(fields ...FieldDef) (*Catalog, error) {
	c := &Catalog{
		fields:  make([]FieldDef, len(fields)),
		index:   make(map[string]int, len(fields)),
		payload: -1,
	}
	copy(c.fields, fields)

	for i, fd := range c.fields {
		if fd.Name == "" {
			return nil, errors.WrapFatal(errors.ErrInvalidConfig, "Catalog", "NewCatalog",
				fmt.Sprintf("field %d has empty wire name", i))
		}
		if _, exists := c.index[fd.Name]; exists {
			return nil, errors.WrapFatal(errors.ErrInvalidConfig, "Catalog", "NewCatalog",
				fmt.Sprintf("duplicate wire name %q", fd.Name))
		}
		if fd.MinVersion < SchemaVersionV1 {
			return nil, errors.WrapFatal(errors.ErrInvalidConfig, "Catalog", "NewCatalog",
				fmt.Sprintf("field %q has minimum version %d below %d", fd.Name, fd.MinVersion, SchemaVersionV1))
		}
		if fd.Payload {
			if c.payload != -1 {
				return nil, errors.WrapFatal(errors.ErrInvalidConfig, "Catalog", "NewCatalog",
					fmt.Sprintf("field %q marked as payload but %q already is", fd.Name, c.fields[c.payload].Name))
			}
			c.payload = i
		}
		c.index[fd.Name] = i
	}

	return c, nil
}

// Fields returns the field definitions in declaration order.
// Returns a copy to preserve catalog immutability.
func (c *Catalog) Fields() []FieldDef {
	out := make([]FieldDef, len(c.fields))
	copy(out, c.fields)
	return out
}

// Field returns the definition for a wire name.
func (c *Catalog) Field(name string) (FieldDef, bool) {
	i, ok := c.index[name]
	if !ok {
		return FieldDef{}, false
	}
	return c.fields[i], true
}

// Len returns the number of declared fields.
func (c *Catalog) Len() int {
	return len(c.fields)
}

// PayloadField returns the field marked as carrying the variant payload.
func (c *Catalog) PayloadField() (FieldDef, bool) {
	if c.payload == -1 {
		return FieldDef{}, false
	}
	return c.fields[c.payload], true
}
