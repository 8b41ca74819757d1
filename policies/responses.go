package policies

import (
	"encoding/json"

	"github.com/haoxiangmiao/ditto/envelope"
	"github.com/haoxiangmiao/ditto/errors"
)

// TypePrefix is the wire tag prefix of every policies response.
const TypePrefix = "policies.responses:"

// Wire field names shared by the policies definitions.
const (
	fieldPolicyID    = "policyId"
	fieldLabel       = "label"
	fieldResourceKey = "resourceKey"
	fieldResource    = "resource"
	fieldSubjectID   = "subjectId"
	fieldSubject     = "subject"
)

// ModifyResource answers a modify-resource command on a policy entry.
var ModifyResource = envelope.MustDefine(envelope.Descriptor{
	TypeTag:       TypePrefix + "modifyResource",
	EntityIDField: fieldPolicyID,
	Fields: []envelope.FieldDef{
		{Name: fieldLabel, Kind: envelope.KindScalar, MinVersion: envelope.SchemaVersionV2},
		{Name: fieldResourceKey, Kind: envelope.KindScalar, MinVersion: envelope.SchemaVersionV2},
		{Name: fieldResource, Kind: envelope.KindRaw, MinVersion: envelope.SchemaVersionV2, Payload: true},
	},
	Variants: envelope.VariantSet{
		envelope.Created:  envelope.StatusCreated,
		envelope.Modified: envelope.StatusNoContent,
	},
	PayloadVariants:  []envelope.Variant{envelope.Created},
	ResourcePath:     resourceKeyPath,
	ValidateEntityID: validatePolicyID,
})

// DeleteResource acknowledges the deletion of a resource from a policy
// entry.
var DeleteResource = envelope.MustDefine(envelope.Descriptor{
	TypeTag:       TypePrefix + "deleteResource",
	EntityIDField: fieldPolicyID,
	Fields: []envelope.FieldDef{
		{Name: fieldLabel, Kind: envelope.KindScalar, MinVersion: envelope.SchemaVersionV2},
		{Name: fieldResourceKey, Kind: envelope.KindScalar, MinVersion: envelope.SchemaVersionV2},
	},
	Variants: envelope.VariantSet{
		envelope.Deleted: envelope.StatusNoContent,
	},
	ResourcePath:     resourceKeyPath,
	ValidateEntityID: validatePolicyID,
})

// ModifySubject answers a modify-subject command on a policy entry.
var ModifySubject = envelope.MustDefine(envelope.Descriptor{
	TypeTag:       TypePrefix + "modifySubject",
	EntityIDField: fieldPolicyID,
	Fields: []envelope.FieldDef{
		{Name: fieldLabel, Kind: envelope.KindScalar, MinVersion: envelope.SchemaVersionV2},
		{Name: fieldSubjectID, Kind: envelope.KindScalar, MinVersion: envelope.SchemaVersionV2},
		{Name: fieldSubject, Kind: envelope.KindRaw, MinVersion: envelope.SchemaVersionV2, Payload: true},
	},
	Variants: envelope.VariantSet{
		envelope.Created:  envelope.StatusCreated,
		envelope.Modified: envelope.StatusNoContent,
	},
	PayloadVariants:  []envelope.Variant{envelope.Created},
	ResourcePath:     subjectIDPath,
	ValidateEntityID: validatePolicyID,
})

// DeleteSubject acknowledges the deletion of a subject from a policy
// entry.
var DeleteSubject = envelope.MustDefine(envelope.Descriptor{
	TypeTag:       TypePrefix + "deleteSubject",
	EntityIDField: fieldPolicyID,
	Fields: []envelope.FieldDef{
		{Name: fieldLabel, Kind: envelope.KindScalar, MinVersion: envelope.SchemaVersionV2},
		{Name: fieldSubjectID, Kind: envelope.KindScalar, MinVersion: envelope.SchemaVersionV2},
	},
	Variants: envelope.VariantSet{
		envelope.Deleted: envelope.StatusNoContent,
	},
	ResourcePath:     subjectIDPath,
	ValidateEntityID: validatePolicyID,
})

// NewModifyResourceCreated builds the Created response carrying the
// created resource value.
func NewModifyResourceCreated(policyID PolicyID, label Label, key ResourceKey,
	resource json.RawMessage, headers envelope.Headers) (*envelope.Envelope, error) {

	values, err := entryValues(label, fieldResourceKey, key.String())
	if err != nil {
		return nil, err
	}
	values[fieldResource] = resource
	return ModifyResource.New(envelope.Created, policyID.String(), values, headers)
}

// NewModifyResourceModified builds the Modified acknowledgement for an
// overwritten resource.
func NewModifyResourceModified(policyID PolicyID, label Label, key ResourceKey,
	headers envelope.Headers) (*envelope.Envelope, error) {

	values, err := entryValues(label, fieldResourceKey, key.String())
	if err != nil {
		return nil, err
	}
	return ModifyResource.New(envelope.Modified, policyID.String(), values, headers)
}

// NewDeleteResource builds the Deleted acknowledgement for a resource.
func NewDeleteResource(policyID PolicyID, label Label, key ResourceKey,
	headers envelope.Headers) (*envelope.Envelope, error) {

	values, err := entryValues(label, fieldResourceKey, key.String())
	if err != nil {
		return nil, err
	}
	return DeleteResource.New(envelope.Deleted, policyID.String(), values, headers)
}

// NewModifySubjectCreated builds the Created response carrying the created
// subject value.
func NewModifySubjectCreated(policyID PolicyID, label Label, subjectID SubjectID,
	subject json.RawMessage, headers envelope.Headers) (*envelope.Envelope, error) {

	values, err := entryValues(label, fieldSubjectID, subjectID.String())
	if err != nil {
		return nil, err
	}
	values[fieldSubject] = subject
	return ModifySubject.New(envelope.Created, policyID.String(), values, headers)
}

// NewModifySubjectModified builds the Modified acknowledgement for an
// overwritten subject.
func NewModifySubjectModified(policyID PolicyID, label Label, subjectID SubjectID,
	headers envelope.Headers) (*envelope.Envelope, error) {

	values, err := entryValues(label, fieldSubjectID, subjectID.String())
	if err != nil {
		return nil, err
	}
	return ModifySubject.New(envelope.Modified, policyID.String(), values, headers)
}

// NewDeleteSubject builds the Deleted acknowledgement for a subject.
func NewDeleteSubject(policyID PolicyID, label Label, subjectID SubjectID,
	headers envelope.Headers) (*envelope.Envelope, error) {

	values, err := entryValues(label, fieldSubjectID, subjectID.String())
	if err != nil {
		return nil, err
	}
	return DeleteSubject.New(envelope.Deleted, policyID.String(), values, headers)
}

// entryValues validates the entry label and encodes it together with one
// scalar companion field.
func entryValues(label Label, companionField, companionValue string) (envelope.FieldValues, error) {
	validated, err := ParseLabel(label.String())
	if err != nil {
		return nil, err
	}

	encodedLabel, err := json.Marshal(validated.String())
	if err != nil {
		return nil, errors.WrapInvalid(err, "policies", "entryValues", "label encoding")
	}
	encodedCompanion, err := json.Marshal(companionValue)
	if err != nil {
		return nil, errors.WrapInvalid(err, "policies", "entryValues", companionField+" encoding")
	}

	return envelope.FieldValues{
		fieldLabel:     encodedLabel,
		companionField: encodedCompanion,
	}, nil
}

// resourceKeyPath derives "/entries/<label>/resources/<key>".
func resourceKeyPath(e *envelope.Envelope) string {
	return "/entries/" + stringField(e, fieldLabel) + "/resources/" + stringField(e, fieldResourceKey)
}

// subjectIDPath derives "/entries/<label>/subjects/<subjectId>".
func subjectIDPath(e *envelope.Envelope) string {
	return "/entries/" + stringField(e, fieldLabel) + "/subjects/" + stringField(e, fieldSubjectID)
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
