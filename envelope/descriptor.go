package envelope

import (
	"fmt"

	"github.com/haoxiangmiao/ditto/errors"
)

// Descriptor is the declarative description of one envelope type. Concrete
// response types are nothing but a Descriptor plus thin per-variant
// constructors; the framework generates serialization, deserialization and
// status resolution from it.
type Descriptor struct {
	// TypeTag is the stable wire tag, "<domain>.responses:<verb><Noun>".
	// Never renamed; the sole decoding key.
	TypeTag string

	// EntityIDField is the wire name of the entity-id member. Emitted
	// unconditionally, outside the projectable catalog.
	EntityIDField string

	// Fields declares the projectable catalog in wire order.
	Fields []FieldDef

	// Variants declares the legal (variant, status) pairs.
	Variants VariantSet

	// PayloadVariants lists the variants that carry the payload field.
	// For every other variant the payload field must be absent.
	PayloadVariants []Variant

	// ResourcePath derives the addressing suffix for an envelope.
	// Optional.
	ResourcePath func(e *Envelope) string

	// ValidateEntityID rejects malformed entity identifiers at
	// construction and decode time. Optional.
	ValidateEntityID func(id string) error
}

// Definition is the immutable runtime form of a Descriptor: the shared
// catalog, the variant set, and the generated construction and decode
// paths. Built once per type, typically as a package-level variable, and
// shared across all instances and goroutines.
type Definition struct {
	typeTag          string
	entityIDField    string
	catalog          *Catalog
	variants         VariantSet
	payloadVariants  map[Variant]bool
	resourcePath     func(e *Envelope) string
	validateEntityID func(id string) error
}

// NewDefinition validates a descriptor and builds its definition.
func NewDefinition(d Descriptor) (*Definition, error) {
	if d.TypeTag == "" {
		return nil, errors.WrapFatal(errors.ErrInvalidConfig, "Definition", "NewDefinition",
			"type tag cannot be empty")
	}
	if d.EntityIDField == "" {
		return nil, errors.WrapFatal(errors.ErrInvalidConfig, "Definition", "NewDefinition",
			fmt.Sprintf("type %q declares no entity-id field", d.TypeTag))
	}
	if err := d.Variants.validate(); err != nil {
		return nil, err
	}

	catalog, err := NewCatalog(d.Fields...)
	if err != nil {
		return nil, err
	}
	if _, exists := catalog.Field(d.EntityIDField); exists {
		return nil, errors.WrapFatal(errors.ErrInvalidConfig, "Definition", "NewDefinition",
			fmt.Sprintf("entity-id field %q must stay outside the catalog", d.EntityIDField))
	}

	payloadVariants := make(map[Variant]bool, len(d.PayloadVariants))
	for _, v := range d.PayloadVariants {
		if _, declared := d.Variants[v]; !declared {
			return nil, errors.WrapFatal(errors.ErrInvalidConfig, "Definition", "NewDefinition",
				fmt.Sprintf("payload variant %q is not declared for type %q", v, d.TypeTag))
		}
		payloadVariants[v] = true
	}
	if _, hasPayloadField := catalog.PayloadField(); !hasPayloadField && len(payloadVariants) > 0 {
		return nil, errors.WrapFatal(errors.ErrInvalidConfig, "Definition", "NewDefinition",
			fmt.Sprintf("type %q declares payload variants but no payload field", d.TypeTag))
	}

	return &Definition{
		typeTag:          d.TypeTag,
		entityIDField:    d.EntityIDField,
		catalog:          catalog,
		variants:         d.Variants.clone(),
		payloadVariants:  payloadVariants,
		resourcePath:     d.ResourcePath,
		validateEntityID: d.ValidateEntityID,
	}, nil
}

// MustDefine builds a definition and panics on a malformed descriptor.
// Descriptors are static, so a failure here is a programmer error caught at
// process startup.
func MustDefine(d Descriptor) *Definition {
	def, err := NewDefinition(d)
	if err != nil {
		panic(err)
	}
	return def
}

// TypeTag returns the wire tag.
func (d *Definition) TypeTag() string {
	return d.typeTag
}

// EntityIDField returns the wire name of the entity-id member.
func (d *Definition) EntityIDField() string {
	return d.entityIDField
}

// Catalog returns the shared field catalog.
func (d *Definition) Catalog() *Catalog {
	return d.catalog
}

// Variants returns a copy of the legal (variant, status) pairs.
func (d *Definition) Variants() VariantSet {
	return d.variants.clone()
}

// CarriesPayload reports whether a variant carries the payload field.
func (d *Definition) CarriesPayload(v Variant) bool {
	return d.payloadVariants[v]
}

// RequiredVersion returns the lowest schema version whose encoding of the
// given variant still carries every field a decoder will demand. Encoding
// below it projects required members away and yields undecodable output.
func (d *Definition) RequiredVersion(v Variant) int {
	version := SchemaVersionV1
	payloadField, hasPayload := d.catalog.PayloadField()
	for _, fd := range d.catalog.Fields() {
		required := !fd.Optional
		if hasPayload && fd.Name == payloadField.Name {
			required = d.CarriesPayload(v)
		}
		if required && fd.MinVersion > version {
			version = fd.MinVersion
		}
	}
	return version
}

// New constructs an envelope for a variant. The status is derived from the
// variant, never caller-supplied. Field values are validated against the
// catalog: unknown names, wrong JSON kinds, missing required fields and a
// payload that disagrees with the variant are all rejected. A JSON null
// value counts as absent, same as on decode.
func (d *Definition) New(variant Variant, entityID string, values FieldValues, headers Headers) (*Envelope, error) {
	status, err := d.variants.DeriveStatus(variant)
	if err != nil {
		return nil, err
	}
	if entityID == "" {
		return nil, errors.WrapInvalid(errors.ErrInvalidData, "Definition", "New",
			fmt.Sprintf("type %q requires an entity id", d.typeTag))
	}
	if d.validateEntityID != nil {
		if err := d.validateEntityID(entityID); err != nil {
			return nil, errors.WrapInvalid(err, "Definition", "New", "entity id validation")
		}
	}

	// Null members are absent everywhere on the wire, so drop them here
	// before the presence checks; construction and decode must agree on
	// what counts as present.
	fields := make(FieldValues, len(values))
	for name, value := range values {
		fd, ok := d.catalog.Field(name)
		if !ok {
			return nil, errors.WrapInvalid(errors.ErrInvalidData, "Definition", "New",
				fmt.Sprintf("field %q is not in the catalog of %q", name, d.typeTag))
		}
		if isJSONNull(value) {
			continue
		}
		if err := checkKind(fd, value); err != nil {
			return nil, err
		}
		fields[name] = value
	}

	payloadField, hasPayloadField := d.catalog.PayloadField()
	for _, fd := range d.catalog.Fields() {
		_, present := fields[fd.Name]
		if hasPayloadField && fd.Name == payloadField.Name {
			if d.CarriesPayload(variant) && !present {
				return nil, errors.WrapInvalid(errors.ErrMissingField, "Definition", "New",
					fmt.Sprintf("variant %q of %q requires payload field %q", variant, d.typeTag, fd.Name))
			}
			if !d.CarriesPayload(variant) && present {
				return nil, errors.WrapInvalid(errors.ErrInvalidData, "Definition", "New",
					fmt.Sprintf("variant %q of %q does not carry payload field %q", variant, d.typeTag, fd.Name))
			}
			continue
		}
		if !fd.Optional && !present {
			return nil, errors.WrapInvalid(errors.ErrMissingField, "Definition", "New",
				fmt.Sprintf("field %q of %q is required", fd.Name, d.typeTag))
		}
	}

	return &Envelope{
		def:      d,
		entityID: entityID,
		variant:  variant,
		status:   status,
		fields:   fields,
		headers:  headers,
	}, nil
}

// Register adds this definition's generated decode factory to a registry.
func (d *Definition) Register(r *Registry) error {
	return r.Register(d.typeTag, d.variants, d.decode)
}

// decode is the generated factory: it rebuilds an envelope from a
// DecodeContext using only the context accessors, never the raw object.
func (d *Definition) decode(dc *DecodeContext) (*Envelope, error) {
	entityID, err := dc.requireString(d.entityIDField)
	if err != nil {
		return nil, err
	}

	variant := dc.ResolvedVariant()
	values := make(FieldValues, d.catalog.Len())
	payloadField, hasPayloadField := d.catalog.PayloadField()

	for _, fd := range d.catalog.Fields() {
		required := !fd.Optional
		if hasPayloadField && fd.Name == payloadField.Name {
			// Payload presence follows the resolved variant, not the
			// field's own optionality.
			if !d.CarriesPayload(variant) {
				if _, present, _ := dc.OptionalField(fd); present {
					return nil, errors.WrapInvalid(errors.ErrInvalidData, "Definition", "decode",
						fmt.Sprintf("variant %q of %q does not carry payload field %q", variant, d.typeTag, fd.Name))
				}
				continue
			}
			required = true
		}

		if required {
			value, err := dc.RequireField(fd)
			if err != nil {
				return nil, err
			}
			values[fd.Name] = value
			continue
		}

		value, present, err := dc.OptionalField(fd)
		if err != nil {
			return nil, err
		}
		if present {
			values[fd.Name] = value
		}
	}

	return d.New(variant, entityID, values, dc.Headers())
}
