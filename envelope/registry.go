package envelope

import (
	"fmt"
	"sort"
	"sync"

	"github.com/haoxiangmiao/ditto/errors"
)

// Factory rebuilds an envelope from a decode context. Factories use only
// the context accessors; they never see the raw parsed object.
type Factory func(dc *DecodeContext) (*Envelope, error)

// Registry is the process-wide table mapping wire type tags to decode
// factories and their legal status sets. It is the explicit, inspectable
// substitute for reflection-based type discovery: every decodable type is
// registered by an auditable call during process initialization.
//
// The registry is append-only. It is written only during an initialization
// phase before concurrent use begins and read-only thereafter; the embedded
// lock keeps even misuse safe.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*registration
}

type registration struct {
	variants VariantSet
	factory  Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*registration)}
}

// Register adds a type tag with its legal variant set and decode factory.
// Re-registering an existing tag fails with ErrDuplicateType; that is a
// programmer error surfaced at startup, fatal to initialization.
func (r *Registry) Register(typeTag string, variants VariantSet, factory Factory) error {
	if typeTag == "" {
		return errors.WrapFatal(errors.ErrInvalidConfig, "Registry", "Register",
			"type tag cannot be empty")
	}
	if factory == nil {
		return errors.WrapFatal(errors.ErrInvalidConfig, "Registry", "Register",
			fmt.Sprintf("type %q has no factory", typeTag))
	}
	if err := variants.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[typeTag]; exists {
		return errors.WrapFatal(errors.ErrDuplicateType, "Registry", "Register",
			fmt.Sprintf("type %q is already registered", typeTag))
	}

	r.entries[typeTag] = &registration{variants: variants.clone(), factory: factory}
	return nil
}

// Resolve returns the decode factory for a tag. An unregistered tag fails
// with ErrUnknownType - a recoverable decode-time condition, distinguishable
// from corrupt input so callers can log unsupported types separately.
func (r *Registry) Resolve(typeTag string) (Factory, error) {
	r.mu.RLock()
	entry, exists := r.entries[typeTag]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.WrapInvalid(errors.ErrUnknownType, "Registry", "Resolve",
			fmt.Sprintf("type %q is not registered", typeTag))
	}
	return entry.factory, nil
}

// LegalStatuses returns the declared statuses of a tag in ascending order.
func (r *Registry) LegalStatuses(typeTag string) ([]Status, error) {
	r.mu.RLock()
	entry, exists := r.entries[typeTag]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.WrapInvalid(errors.ErrUnknownType, "Registry", "LegalStatuses",
			fmt.Sprintf("type %q is not registered", typeTag))
	}
	return entry.variants.LegalStatuses(), nil
}

// ResolveVariant validates a decoded status against a tag's legal set and
// returns the matching variant.
func (r *Registry) ResolveVariant(typeTag string, s Status) (Variant, error) {
	r.mu.RLock()
	entry, exists := r.entries[typeTag]
	r.mu.RUnlock()

	if !exists {
		return "", errors.WrapInvalid(errors.ErrUnknownType, "Registry", "ResolveVariant",
			fmt.Sprintf("type %q is not registered", typeTag))
	}
	return entry.variants.ResolveVariant(s)
}

// Types returns all registered tags in lexical order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.entries))
	for tag := range r.entries {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
