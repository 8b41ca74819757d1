package things

import (
	"encoding/json"

	"github.com/haoxiangmiao/ditto/envelope"
	"github.com/haoxiangmiao/ditto/errors"
)

// TypePrefix is the wire tag prefix of every things response.
const TypePrefix = "things.responses:"

// Wire field names shared by the things definitions.
const (
	fieldThingID    = "thingId"
	fieldAttribute  = "attribute"
	fieldValue      = "value"
	fieldAttributes = "attributes"
	fieldFeatureID  = "featureId"
)

// ModifyAttribute answers a modify-attribute command: Created when the
// attribute did not exist before and carries the new value, Modified when
// it did and carries none.
var ModifyAttribute = envelope.MustDefine(envelope.Descriptor{
	TypeTag:       TypePrefix + "modifyAttribute",
	EntityIDField: fieldThingID,
	Fields: []envelope.FieldDef{
		{Name: fieldAttribute, Kind: envelope.KindScalar, MinVersion: envelope.SchemaVersionV2},
		{Name: fieldValue, Kind: envelope.KindRaw, MinVersion: envelope.SchemaVersionV2, Payload: true},
	},
	Variants: envelope.VariantSet{
		envelope.Created:  envelope.StatusCreated,
		envelope.Modified: envelope.StatusNoContent,
	},
	PayloadVariants:  []envelope.Variant{envelope.Created},
	ResourcePath:     attributePointerPath,
	ValidateEntityID: validateThingID,
})

// ModifyAttributes answers a modify-attributes command replacing the whole
// attributes object.
var ModifyAttributes = envelope.MustDefine(envelope.Descriptor{
	TypeTag:       TypePrefix + "modifyAttributes",
	EntityIDField: fieldThingID,
	Fields: []envelope.FieldDef{
		{Name: fieldAttributes, Kind: envelope.KindObject, MinVersion: envelope.SchemaVersionV2, Payload: true},
	},
	Variants: envelope.VariantSet{
		envelope.Created:  envelope.StatusCreated,
		envelope.Modified: envelope.StatusNoContent,
	},
	PayloadVariants:  []envelope.Variant{envelope.Created},
	ResourcePath:     func(*envelope.Envelope) string { return "/attributes" },
	ValidateEntityID: validateThingID,
})

// DeleteAttribute acknowledges the deletion of a single attribute.
var DeleteAttribute = envelope.MustDefine(envelope.Descriptor{
	TypeTag:       TypePrefix + "deleteAttribute",
	EntityIDField: fieldThingID,
	Fields: []envelope.FieldDef{
		{Name: fieldAttribute, Kind: envelope.KindScalar, MinVersion: envelope.SchemaVersionV2},
	},
	Variants: envelope.VariantSet{
		envelope.Deleted: envelope.StatusNoContent,
	},
	ResourcePath:     attributePointerPath,
	ValidateEntityID: validateThingID,
})

// RetrieveAttributes carries the full attributes object of a thing.
var RetrieveAttributes = envelope.MustDefine(envelope.Descriptor{
	TypeTag:       TypePrefix + "retrieveAttributes",
	EntityIDField: fieldThingID,
	Fields: []envelope.FieldDef{
		{Name: fieldAttributes, Kind: envelope.KindObject, MinVersion: envelope.SchemaVersionV2, Payload: true},
	},
	Variants: envelope.VariantSet{
		envelope.Retrieved: envelope.StatusOK,
	},
	PayloadVariants:  []envelope.Variant{envelope.Retrieved},
	ResourcePath:     func(*envelope.Envelope) string { return "/attributes" },
	ValidateEntityID: validateThingID,
})

// DeleteFeatureDefinition acknowledges the deletion of a feature's
// definition.
var DeleteFeatureDefinition = envelope.MustDefine(envelope.Descriptor{
	TypeTag:       TypePrefix + "deleteFeatureDefinition",
	EntityIDField: fieldThingID,
	Fields: []envelope.FieldDef{
		{Name: fieldFeatureID, Kind: envelope.KindScalar, MinVersion: envelope.SchemaVersionV2},
	},
	Variants: envelope.VariantSet{
		envelope.Deleted: envelope.StatusNoContent,
	},
	ResourcePath: func(e *envelope.Envelope) string {
		return "/features/" + stringField(e, fieldFeatureID) + "/definition"
	},
	ValidateEntityID: validateThingID,
})

// NewModifyAttributeCreated builds the Created response for a freshly
// created attribute, carrying the created value.
func NewModifyAttributeCreated(thingID ThingID, pointer Pointer, value json.RawMessage,
	headers envelope.Headers) (*envelope.Envelope, error) {

	values, err := attributeValues(pointer)
	if err != nil {
		return nil, err
	}
	values[fieldValue] = value
	return ModifyAttribute.New(envelope.Created, thingID.String(), values, headers)
}

// NewModifyAttributeModified builds the Modified acknowledgement for an
// overwritten attribute. No payload is carried.
func NewModifyAttributeModified(thingID ThingID, pointer Pointer,
	headers envelope.Headers) (*envelope.Envelope, error) {

	values, err := attributeValues(pointer)
	if err != nil {
		return nil, err
	}
	return ModifyAttribute.New(envelope.Modified, thingID.String(), values, headers)
}

// NewModifyAttributesCreated builds the Created response carrying the new
// attributes object.
func NewModifyAttributesCreated(thingID ThingID, attributes json.RawMessage,
	headers envelope.Headers) (*envelope.Envelope, error) {

	return ModifyAttributes.New(envelope.Created, thingID.String(),
		envelope.FieldValues{fieldAttributes: attributes}, headers)
}

// NewModifyAttributesModified builds the Modified acknowledgement for a
// replaced attributes object.
func NewModifyAttributesModified(thingID ThingID, headers envelope.Headers) (*envelope.Envelope, error) {
	return ModifyAttributes.New(envelope.Modified, thingID.String(), envelope.FieldValues{}, headers)
}

// NewDeleteAttribute builds the Deleted acknowledgement for an attribute.
func NewDeleteAttribute(thingID ThingID, pointer Pointer, headers envelope.Headers) (*envelope.Envelope, error) {
	values, err := attributeValues(pointer)
	if err != nil {
		return nil, err
	}
	return DeleteAttribute.New(envelope.Deleted, thingID.String(), values, headers)
}

// NewRetrieveAttributes builds the Retrieved response carrying a thing's
// attributes object.
func NewRetrieveAttributes(thingID ThingID, attributes json.RawMessage,
	headers envelope.Headers) (*envelope.Envelope, error) {

	return RetrieveAttributes.New(envelope.Retrieved, thingID.String(),
		envelope.FieldValues{fieldAttributes: attributes}, headers)
}

// NewDeleteFeatureDefinition builds the Deleted acknowledgement for a
// feature definition.
func NewDeleteFeatureDefinition(thingID ThingID, featureID string,
	headers envelope.Headers) (*envelope.Envelope, error) {

	if featureID == "" {
		return nil, errors.WrapInvalid(errors.ErrInvalidData, "DeleteFeatureDefinition",
			"NewDeleteFeatureDefinition", "feature id cannot be empty")
	}
	encoded, err := json.Marshal(featureID)
	if err != nil {
		return nil, errors.WrapInvalid(err, "DeleteFeatureDefinition",
			"NewDeleteFeatureDefinition", "feature id encoding")
	}
	return DeleteFeatureDefinition.New(envelope.Deleted, thingID.String(),
		envelope.FieldValues{fieldFeatureID: encoded}, headers)
}

// attributeValues validates a pointer and encodes it as the "attribute"
// field.
func attributeValues(pointer Pointer) (envelope.FieldValues, error) {
	normalized, err := ParsePointer(string(pointer))
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(normalized.String())
	if err != nil {
		return nil, errors.WrapInvalid(err, "things", "attributeValues", "pointer encoding")
	}
	return envelope.FieldValues{fieldAttribute: encoded}, nil
}

// attributePointerPath derives "/attributes<pointer>" from the attribute
// field.
func attributePointerPath(e *envelope.Envelope) string {
	return "/attributes" + stringField(e, fieldAttribute)
}

// stringField decodes a scalar string field, empty on absence.
func stringField(e *envelope.Envelope, name string) string {
	raw, ok := e.Field(name)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
