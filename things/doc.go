// Package things declares the command-response types of the things domain.
//
// Each response type is a declarative envelope.Descriptor plus thin
// per-variant constructors; the envelope framework generates the wire codec
// and status resolution. Register wires every definition into a registry
// during process initialization:
//
//	registry := envelope.NewRegistry()
//	if err := things.Register(registry); err != nil {
//	    log.Fatal(err)
//	}
package things
