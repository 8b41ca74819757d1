package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haoxiangmiao/ditto/envelope"
	pkgerrors "github.com/haoxiangmiao/ditto/errors"
	"github.com/haoxiangmiao/ditto/things"
)

func testAdapter(t *testing.T, opts ...Option) *Adapter {
	t.Helper()
	registry := envelope.NewRegistry()
	require.NoError(t, things.Register(registry))

	adapter, err := NewAdapter(envelope.NewCodec(registry), opts...)
	require.NoError(t, err)
	return adapter
}

func testThingID(t *testing.T) things.ThingID {
	t.Helper()
	id, err := things.ParseThingID("org.acme:thing-1")
	require.NoError(t, err)
	return id
}

func TestNewAdapter_Validation(t *testing.T) {
	_, err := NewAdapter(nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsFatal(err))

	registry := envelope.NewRegistry()
	_, err = NewAdapter(envelope.NewCodec(registry), WithSchemaVersion(9))
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidConfig)

	_, err = NewAdapter(envelope.NewCodec(registry), WithMaxResponseSize(0))
	require.Error(t, err)
}

func TestWriteEnvelope_Created(t *testing.T) {
	adapter := testAdapter(t)
	headers := envelope.NewHeaders("Correlation-Id", "cmd-42")

	env, err := things.NewModifyAttributeCreated(testThingID(t), "/color",
		json.RawMessage(`"red"`), headers)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, adapter.WriteEnvelope(rec, env))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "cmd-42", rec.Header().Get("Correlation-Id"))
	assert.JSONEq(t,
		`{"type":"things.responses:modifyAttribute","status":201,`+
			`"thingId":"org.acme:thing-1","attribute":"/color","value":"red"}`,
		rec.Body.String())
}

func TestWriteEnvelope_SchemaVersionTooLow(t *testing.T) {
	adapter := testAdapter(t, WithSchemaVersion(envelope.SchemaVersionV1))

	env, err := things.NewModifyAttributeCreated(testThingID(t), "/color",
		json.RawMessage(`"red"`), envelope.Headers{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = adapter.WriteEnvelope(rec, env)
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidConfig)
}

func TestWriteEnvelope_NoContentUsesHeader(t *testing.T) {
	adapter := testAdapter(t)

	env, err := things.NewModifyAttributeModified(testThingID(t), "/color", envelope.Headers{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, adapter.WriteEnvelope(rec, env))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, rec.Body.Len(), "204 responses carry no body")
	assert.Contains(t, rec.Header().Get(EnvelopeHeader), `"things.responses:modifyAttribute"`)
}

func TestReadResponse_RoundTrip(t *testing.T) {
	adapter := testAdapter(t)

	sent, err := things.NewModifyAttributeCreated(testThingID(t), "/color",
		json.RawMessage(`"red"`), envelope.Headers{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, adapter.WriteEnvelope(rec, sent))

	received, err := adapter.ReadResponse(rec.Result())
	require.NoError(t, err)

	assert.Equal(t, sent.TypeTag(), received.TypeTag())
	assert.Equal(t, envelope.StatusCreated, received.Status())
	assert.Equal(t, sent.EntityID(), received.EntityID())

	payload, ok := received.Payload()
	require.True(t, ok)
	assert.Equal(t, `"red"`, string(payload))
}

func TestReadResponse_NoContentRoundTrip(t *testing.T) {
	adapter := testAdapter(t)

	sent, err := things.NewModifyAttributeModified(testThingID(t), "/color", envelope.Headers{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, adapter.WriteEnvelope(rec, sent))

	received, err := adapter.ReadResponse(rec.Result())
	require.NoError(t, err)

	assert.Equal(t, envelope.Modified, received.Variant())
	assert.Equal(t, envelope.StatusNoContent, received.Status())
	_, ok := received.Payload()
	assert.False(t, ok)
}

func TestReadResponse_StatusLineWins(t *testing.T) {
	adapter := testAdapter(t)

	// Body claims 201 but the status line says 204; the transport wins.
	resp := &http.Response{
		StatusCode: http.StatusNoContent,
		Header:     http.Header{},
		Body: stringBody(`{"type":"things.responses:modifyAttribute","status":201,` +
			`"thingId":"org.acme:thing-1","attribute":"/color"}`),
	}

	received, err := adapter.ReadResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, envelope.Modified, received.Variant())
}

func TestReadResponse_EmptyBodyWithoutHeader(t *testing.T) {
	adapter := testAdapter(t)

	resp := &http.Response{
		StatusCode: http.StatusNoContent,
		Header:     http.Header{},
		Body:       stringBody(""),
	}

	_, err := adapter.ReadResponse(resp)
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrMalformedInput)
}

func TestReadResponse_SizeLimit(t *testing.T) {
	adapter := testAdapter(t, WithMaxResponseSize(8))

	resp := &http.Response{
		StatusCode: http.StatusCreated,
		Header:     http.Header{},
		Body:       stringBody(`{"type":"things.responses:modifyAttribute"}`),
	}

	_, err := adapter.ReadResponse(resp)
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrMalformedInput)
}

func TestWriteError(t *testing.T) {
	adapter := testAdapter(t)

	rec := httptest.NewRecorder()
	adapter.WriteError(rec, pkgerrors.WrapInvalid(pkgerrors.ErrUnknownType,
		"Codec", "Decode", "type resolution"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"unknown_type","status":400}`, rec.Body.String())
}

func TestServerIntegration(t *testing.T) {
	adapter := testAdapter(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		env, err := things.NewModifyAttributesCreated(testThingID(t),
			json.RawMessage(`{"color":"red"}`), envelope.Headers{})
		if err != nil {
			adapter.WriteError(w, err)
			return
		}
		if err := adapter.WriteEnvelope(w, env); err != nil {
			adapter.WriteError(w, err)
		}
	}))
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)

	received, err := adapter.ReadResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, "things.responses:modifyAttributes", received.TypeTag())
	assert.Equal(t, envelope.StatusCreated, received.Status())
	assert.Equal(t, "/attributes", received.ResourcePath())
}

// stringBody builds a response body from a string literal.
func stringBody(s string) *bodyReader {
	return &bodyReader{Reader: strings.NewReader(s)}
}

type bodyReader struct {
	*strings.Reader
}

func (*bodyReader) Close() error { return nil }
