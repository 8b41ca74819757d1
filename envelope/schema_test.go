package envelope

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"
)

func validateAgainstSchema(t *testing.T, def *Definition, version int, document []byte) *gojsonschema.Result {
	t.Helper()
	schemaBytes, err := json.Marshal(CatalogSchema(def, version))
	require.NoError(t, err)

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaBytes),
		gojsonschema.NewBytesLoader(document),
	)
	require.NoError(t, err)
	return result
}

func TestCatalogSchema_AcceptsEncodedEnvelopes(t *testing.T) {
	codec, def := widgetCodec(t)

	created := createdWidget(t, def, Headers{})
	data, err := codec.Encode(created, SchemaVersionV2, All)
	require.NoError(t, err)

	result := validateAgainstSchema(t, def, SchemaVersionV2, data)
	assert.True(t, result.Valid(), "schema errors: %v", result.Errors())

	modified, err := def.New(Modified, "acme:widget-1", FieldValues{
		"slot": json.RawMessage(`"/color"`),
	}, Headers{})
	require.NoError(t, err)
	data, err = codec.Encode(modified, SchemaVersionV2, All)
	require.NoError(t, err)

	result = validateAgainstSchema(t, def, SchemaVersionV2, data)
	assert.True(t, result.Valid(), "schema errors: %v", result.Errors())
}

func TestCatalogSchema_RejectsForeignMembers(t *testing.T) {
	_, def := widgetCodec(t)

	document := []byte(`{"type":"test.responses:mutateWidget","status":204,` +
		`"widgetId":"acme:widget-1","slot":"/color","intruder":true}`)

	result := validateAgainstSchema(t, def, SchemaVersionV2, document)
	assert.False(t, result.Valid())
}

func TestCatalogSchema_VersionGatesProperties(t *testing.T) {
	_, def := widgetCodec(t)

	// "detail" is a version-2 field, so a version-1 schema rejects it.
	document := []byte(`{"type":"test.responses:mutateWidget","status":204,` +
		`"widgetId":"acme:widget-1","slot":"/color","detail":{"hue":"dark"}}`)

	result := validateAgainstSchema(t, def, SchemaVersionV1, document)
	assert.False(t, result.Valid())

	result = validateAgainstSchema(t, def, SchemaVersionV2, document)
	assert.True(t, result.Valid(), "schema errors: %v", result.Errors())
}

func TestCatalogSchema_StatusEnum(t *testing.T) {
	_, def := widgetCodec(t)

	document := []byte(`{"type":"test.responses:mutateWidget","status":500,` +
		`"widgetId":"acme:widget-1","slot":"/color"}`)

	result := validateAgainstSchema(t, def, SchemaVersionV2, document)
	assert.False(t, result.Valid())
}
