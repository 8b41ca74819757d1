package envelope

import (
	"fmt"
	"sort"

	"github.com/haoxiangmiao/ditto/errors"
)

// Status is an HTTP-status-like outcome code accompanying a response.
// On the encode path it is always derived from the variant, never
// user-supplied; only decode-side statuses coming from untrusted input are
// checked against a type's legal set.
type Status int

// Outcome codes used by the stock response types.
const (
	StatusOK        Status = 200
	StatusCreated   Status = 201
	StatusNoContent Status = 204
)

// String returns the numeric representation of the status.
func (s Status) String() string {
	return fmt.Sprintf("%d", int(s))
}

// Variant names one alternative payload/status shape within an envelope
// type. The set of variants is closed per type but open across the
// framework: descriptors may declare variants beyond the stock ones.
type Variant string

// Stock variants covering the common command-response shapes.
const (
	Created   Variant = "created"
	Modified  Variant = "modified"
	Deleted   Variant = "deleted"
	Retrieved Variant = "retrieved"
)

// VariantSet declares the legal (variant, status) pairs of one envelope
// type. Every constructible variant has exactly one status and no two
// variants share a status, so status resolution is a bijection.
type VariantSet map[Variant]Status

// validate checks the bijection invariant at registration time.
func (vs VariantSet) validate() error {
	if len(vs) == 0 {
		return errors.WrapFatal(errors.ErrInvalidConfig, "VariantSet", "validate",
			"at least one variant is required")
	}
	seen := make(map[Status]Variant, len(vs))
	for v, s := range vs {
		if v == "" {
			return errors.WrapFatal(errors.ErrInvalidConfig, "VariantSet", "validate",
				"variant name cannot be empty")
		}
		if prev, dup := seen[s]; dup {
			return errors.WrapFatal(errors.ErrInvalidConfig, "VariantSet", "validate",
				fmt.Sprintf("status %d claimed by both %q and %q", int(s), prev, v))
		}
		seen[s] = v
	}
	return nil
}

// clone returns an independent copy of the set.
func (vs VariantSet) clone() VariantSet {
	out := make(VariantSet, len(vs))
	for v, s := range vs {
		out[v] = s
	}
	return out
}

// DeriveStatus returns the status for a variant. Total for every variant in
// the set; unknown variants are a construction error.
func (vs VariantSet) DeriveStatus(v Variant) (Status, error) {
	s, ok := vs[v]
	if !ok {
		return 0, errors.WrapInvalid(errors.ErrInvalidData, "VariantSet", "DeriveStatus",
			fmt.Sprintf("variant %q is not declared for this type", v))
	}
	return s, nil
}

// ResolveVariant maps a decoded status back to its variant. Fails with
// ErrIllegalStatus when the status is outside the type's legal set.
func (vs VariantSet) ResolveVariant(s Status) (Variant, error) {
	for v, declared := range vs {
		if declared == s {
			return v, nil
		}
	}
	return "", errors.WrapInvalid(errors.ErrIllegalStatus, "VariantSet", "ResolveVariant",
		fmt.Sprintf("status %d is not in the legal set %v", int(s), vs.LegalStatuses()))
}

// LegalStatuses returns the declared statuses in ascending order.
func (vs VariantSet) LegalStatuses() []Status {
	out := make([]Status, 0, len(vs))
	for _, s := range vs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Contains reports whether the status is in the legal set.
func (vs VariantSet) Contains(s Status) bool {
	for _, declared := range vs {
		if declared == s {
			return true
		}
	}
	return false
}
