package policies

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haoxiangmiao/ditto/envelope"
	pkgerrors "github.com/haoxiangmiao/ditto/errors"
)

func policiesCodec(t *testing.T) *envelope.Codec {
	t.Helper()
	registry := envelope.NewRegistry()
	require.NoError(t, Register(registry))
	return envelope.NewCodec(registry)
}

func testPolicyID(t *testing.T) PolicyID {
	t.Helper()
	id, err := ParsePolicyID("org.acme:policy-1")
	require.NoError(t, err)
	return id
}

func testResourceKey(t *testing.T) ResourceKey {
	t.Helper()
	key, err := ParseResourceKey("thing:/attributes")
	require.NoError(t, err)
	return key
}

func TestRegister(t *testing.T) {
	registry := envelope.NewRegistry()
	require.NoError(t, Register(registry))

	assert.Equal(t, []string{
		"policies.responses:deleteResource",
		"policies.responses:deleteSubject",
		"policies.responses:modifyResource",
		"policies.responses:modifySubject",
	}, registry.Types())

	err := Register(registry)
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrDuplicateType)
}

func TestRegister_NilRegistry(t *testing.T) {
	err := Register(nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsFatal(err))
}

func TestModifyResource_LegalStatuses(t *testing.T) {
	registry := envelope.NewRegistry()
	require.NoError(t, Register(registry))

	statuses, err := registry.LegalStatuses("policies.responses:modifyResource")
	require.NoError(t, err)
	assert.Equal(t, []envelope.Status{envelope.StatusCreated, envelope.StatusNoContent}, statuses)
}

func TestModifyResource_CreatedRoundTrip(t *testing.T) {
	codec := policiesCodec(t)
	headers := envelope.NewHeaders("correlation-id", "cmd-17")
	resource := json.RawMessage(`{"grant":["READ","WRITE"],"revoke":[]}`)

	created, err := NewModifyResourceCreated(testPolicyID(t), "owner", testResourceKey(t),
		resource, headers)
	require.NoError(t, err)

	assert.Equal(t, envelope.Created, created.Variant())
	assert.Equal(t, envelope.StatusCreated, created.Status())
	assert.Equal(t, "/entries/owner/resources/thing:/attributes", created.ResourcePath())

	data, err := codec.Encode(created, envelope.LatestSchemaVersion, envelope.All)
	require.NoError(t, err)

	decoded, err := codec.Decode(data, headers)
	require.NoError(t, err)
	assert.True(t, created.Equal(decoded))

	payload, ok := decoded.Payload()
	require.True(t, ok)
	assert.JSONEq(t, string(resource), string(payload))
}

func TestModifyResource_ModifiedRoundTrip(t *testing.T) {
	codec := policiesCodec(t)

	modified, err := NewModifyResourceModified(testPolicyID(t), "owner", testResourceKey(t),
		envelope.Headers{})
	require.NoError(t, err)

	assert.Equal(t, envelope.Modified, modified.Variant())
	assert.Equal(t, envelope.StatusNoContent, modified.Status())

	data, err := codec.Encode(modified, envelope.LatestSchemaVersion, envelope.All)
	require.NoError(t, err)

	decoded, err := codec.Decode(data, envelope.Headers{})
	require.NoError(t, err)
	assert.True(t, modified.Equal(decoded))

	_, ok := decoded.Payload()
	assert.False(t, ok, "a modified acknowledgement carries no payload")
}

func TestModifyResource_InvalidConstruction(t *testing.T) {
	_, err := NewModifyResourceCreated(PolicyID{}, "owner", testResourceKey(t),
		json.RawMessage(`{}`), envelope.Headers{})
	require.Error(t, err)

	_, err = NewModifyResourceCreated(testPolicyID(t), "", testResourceKey(t),
		json.RawMessage(`{}`), envelope.Headers{})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsInvalid(err))
}

func TestDeleteResource_RoundTrip(t *testing.T) {
	codec := policiesCodec(t)

	deleted, err := NewDeleteResource(testPolicyID(t), "owner", testResourceKey(t),
		envelope.Headers{})
	require.NoError(t, err)

	assert.Equal(t, envelope.Deleted, deleted.Variant())
	assert.Equal(t, envelope.StatusNoContent, deleted.Status())
	assert.Equal(t, "/entries/owner/resources/thing:/attributes", deleted.ResourcePath())

	data, err := codec.Encode(deleted, envelope.LatestSchemaVersion, envelope.All)
	require.NoError(t, err)

	decoded, err := codec.Decode(data, envelope.Headers{})
	require.NoError(t, err)
	assert.True(t, deleted.Equal(decoded))
}

func TestModifySubject_RoundTrip(t *testing.T) {
	codec := policiesCodec(t)
	subject := json.RawMessage(`{"type":"generated"}`)

	created, err := NewModifySubjectCreated(testPolicyID(t), "owner", "google:alice",
		subject, envelope.Headers{})
	require.NoError(t, err)

	assert.Equal(t, envelope.StatusCreated, created.Status())
	assert.Equal(t, "/entries/owner/subjects/google:alice", created.ResourcePath())

	data, err := codec.Encode(created, envelope.LatestSchemaVersion, envelope.All)
	require.NoError(t, err)

	decoded, err := codec.Decode(data, envelope.Headers{})
	require.NoError(t, err)
	assert.True(t, created.Equal(decoded))

	payload, ok := decoded.Payload()
	require.True(t, ok)
	assert.JSONEq(t, string(subject), string(payload))

	modified, err := NewModifySubjectModified(testPolicyID(t), "owner", "google:alice",
		envelope.Headers{})
	require.NoError(t, err)
	assert.Equal(t, envelope.StatusNoContent, modified.Status())

	data, err = codec.Encode(modified, envelope.LatestSchemaVersion, envelope.All)
	require.NoError(t, err)
	decoded, err = codec.Decode(data, envelope.Headers{})
	require.NoError(t, err)
	assert.True(t, modified.Equal(decoded))
}

func TestDeleteSubject_RoundTrip(t *testing.T) {
	codec := policiesCodec(t)

	deleted, err := NewDeleteSubject(testPolicyID(t), "owner", "google:alice", envelope.Headers{})
	require.NoError(t, err)

	assert.Equal(t, envelope.Deleted, deleted.Variant())
	assert.Equal(t, "/entries/owner/subjects/google:alice", deleted.ResourcePath())

	data, err := codec.Encode(deleted, envelope.LatestSchemaVersion, envelope.All)
	require.NoError(t, err)

	decoded, err := codec.Decode(data, envelope.Headers{})
	require.NoError(t, err)
	assert.True(t, deleted.Equal(decoded))
}

func TestDecode_UnknownPolicyVerb(t *testing.T) {
	codec := policiesCodec(t)

	data := []byte(`{"type":"policies.responses:unknownVerb","status":204,"policyId":"org.acme:policy-1"}`)
	_, err := codec.Decode(data, envelope.Headers{})
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrUnknownType)
}

func TestDecode_IllegalPolicyStatus(t *testing.T) {
	codec := policiesCodec(t)

	data := []byte(`{"type":"policies.responses:deleteSubject","status":200,` +
		`"policyId":"org.acme:policy-1","label":"owner","subjectId":"google:alice"}`)
	_, err := codec.Decode(data, envelope.Headers{})
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrIllegalStatus)
}

func TestDecode_MalformedPolicyID(t *testing.T) {
	codec := policiesCodec(t)

	data := []byte(`{"type":"policies.responses:deleteResource","status":204,` +
		`"policyId":"no-separator","label":"owner","resourceKey":"thing:/attributes"}`)
	_, err := codec.Decode(data, envelope.Headers{})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsInvalid(err))
}

func TestPoliciesEncoding_Golden(t *testing.T) {
	codec := policiesCodec(t)
	g := goldie.New(t)

	created, err := NewModifyResourceCreated(testPolicyID(t), "owner", testResourceKey(t),
		json.RawMessage(`{"grant":["READ","WRITE"],"revoke":[]}`), envelope.Headers{})
	require.NoError(t, err)
	data, err := codec.Encode(created, envelope.LatestSchemaVersion, envelope.All)
	require.NoError(t, err)
	g.Assert(t, "modify_resource_created", data)

	deleted, err := NewDeleteSubject(testPolicyID(t), "owner", "google:alice", envelope.Headers{})
	require.NoError(t, err)
	data, err = codec.Encode(deleted, envelope.LatestSchemaVersion, envelope.All)
	require.NoError(t, err)
	g.Assert(t, "delete_subject", data)
}
