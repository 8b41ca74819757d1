// Package envelope provides the generic command-response envelope framework.
//
// # Architecture
//
// The package replaces a per-type inheritance hierarchy with a small set of
// cooperating pieces:
//
//  1. Catalog - immutable, per-type description of serializable wire fields
//     (name, kind, minimum schema version, visibility)
//  2. Project - schema-version-gated, predicate-filtered field projection in
//     catalog declaration order
//  3. VariantSet - the closed set of legal (variant, status) pairs a type
//     declares at registration time
//  4. Envelope - immutable wire-representable command-response value
//  5. Registry - process-wide append-only table mapping a wire type tag to a
//     decode factory
//  6. Codec - orchestrates encode/decode through the registry and catalogs
//
// Concrete response types do not subclass anything. Each one is a Descriptor:
// a declarative ~20-line description of its tag, fields and variants. The
// Definition built from a Descriptor generates the decode factory and the
// per-variant construction path, so a new response type needs no hand-written
// serialization code at all.
//
// # Wire shape
//
// Encode emits a flat JSON object: the "type" tag, the "status" code, the
// entity-id field, then the projected catalog fields in declaration order.
// Field names are emitted exactly as declared. The tag, status and entity id
// are unconditional members outside the projectable catalog, so they survive
// any predicate.
//
// # Concurrency
//
// A Registry is written only during an initialization phase and is read-only
// afterwards. Encode and decode are pure, synchronous, allocation-bound
// operations with no I/O; they are safe to call concurrently on distinct
// Envelope instances. Catalogs and Definitions are immutable after
// construction and freely shared.
package envelope
