// Package ditto provides a command-response envelope framework for
// digital twin services, built around a schema-versioned JSON codec.
//
// # Architecture
//
// The module is organized in three layers:
//
//	┌─────────────────────────────────────┐
//	│       Domain packages               │  things, policies
//	│  (typed response definitions)       │
//	└─────────────────────────────────────┘
//	           ↓ declare via descriptors
//	┌─────────────────────────────────────┐
//	│       Envelope core                 │  catalog, registry,
//	│  (envelope, codec, status model)    │  projection, codec
//	└─────────────────────────────────────┘
//	           ↓ moves over
//	┌─────────────────────────────────────┐
//	│       Transports                    │  natsbridge,
//	│  (NATS subjects, HTTP responses)    │  gateway/http
//	└─────────────────────────────────────┘
//
// A domain package declares each response type once, as a descriptor: its
// wire tag, entity-id field, field catalog, and the mapping between
// semantic variants (Created, Modified, Deleted, Retrieved) and HTTP-style
// status codes. The envelope core turns descriptors into definitions that
// construct, validate, encode and decode envelopes; the type registry
// dispatches inbound wire objects to the right definition by tag.
//
// Decoding failures form a closed taxonomy in the errors package
// (malformed input, missing type tag, unknown type, missing field, wrong
// field kind, illegal status), so transports and metrics can classify
// failures without string matching.
//
// The cmd/dittod binary subscribes to a NATS subject tree, decodes every
// response envelope, and exposes codec metrics over HTTP.
package ditto
