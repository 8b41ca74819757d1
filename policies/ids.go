package policies

import (
	"fmt"
	"strings"

	"github.com/haoxiangmiao/ditto/errors"
)

// PolicyID identifies a policy entity, wire form "namespace:name".
type PolicyID struct {
	Namespace string
	Name      string
}

// String returns the wire form "namespace:name".
func (id PolicyID) String() string {
	return fmt.Sprintf("%s:%s", id.Namespace, id.Name)
}

// IsValid checks if the PolicyID has a non-empty name.
func (id PolicyID) IsValid() bool {
	return id.Name != ""
}

// ParsePolicyID creates a PolicyID from its wire form.
func ParsePolicyID(s string) (PolicyID, error) {
	sep := strings.Index(s, ":")
	if sep < 0 {
		return PolicyID{}, errors.WrapInvalid(errors.ErrInvalidData, "PolicyID", "ParsePolicyID",
			fmt.Sprintf("%q has no namespace separator", s))
	}

	id := PolicyID{Namespace: s[:sep], Name: s[sep+1:]}
	if id.Name == "" {
		return PolicyID{}, errors.WrapInvalid(errors.ErrInvalidData, "PolicyID", "ParsePolicyID",
			fmt.Sprintf("%q has an empty name part", s))
	}
	return id, nil
}

// validatePolicyID is the entity-id hook shared by every policies
// definition.
func validatePolicyID(s string) error {
	_, err := ParsePolicyID(s)
	return err
}

// Label names a policy entry, for example "owner" or "observer".
type Label string

// String returns the label text.
func (l Label) String() string {
	return string(l)
}

// ParseLabel validates an entry label.
func ParseLabel(s string) (Label, error) {
	if s == "" {
		return "", errors.WrapInvalid(errors.ErrInvalidData, "Label", "ParseLabel",
			"entry label cannot be empty")
	}
	if strings.ContainsAny(s, "/") {
		return "", errors.WrapInvalid(errors.ErrInvalidData, "Label", "ParseLabel",
			fmt.Sprintf("label %q contains a path separator", s))
	}
	return Label(s), nil
}

// ResourceKey addresses a guarded resource within a policy entry, wire
// form "type:/path", for example "thing:/attributes".
type ResourceKey struct {
	Type string
	Path string
}

// String returns the wire form "type:/path".
func (rk ResourceKey) String() string {
	return fmt.Sprintf("%s:%s", rk.Type, rk.Path)
}

// ParseResourceKey creates a ResourceKey from its wire form. The type part
// must be non-empty and the path part must start with a slash.
func ParseResourceKey(s string) (ResourceKey, error) {
	sep := strings.Index(s, ":")
	if sep <= 0 {
		return ResourceKey{}, errors.WrapInvalid(errors.ErrInvalidData, "ResourceKey", "ParseResourceKey",
			fmt.Sprintf("%q has no type separator", s))
	}

	rk := ResourceKey{Type: s[:sep], Path: s[sep+1:]}
	if !strings.HasPrefix(rk.Path, "/") {
		return ResourceKey{}, errors.WrapInvalid(errors.ErrInvalidData, "ResourceKey", "ParseResourceKey",
			fmt.Sprintf("path part of %q must start with a slash", s))
	}
	return rk, nil
}

// SubjectID identifies an authorization subject, wire form
// "issuer:subject", for example "google:alice".
type SubjectID string

// String returns the subject id text.
func (sid SubjectID) String() string {
	return string(sid)
}

// ParseSubjectID validates a subject id.
func ParseSubjectID(s string) (SubjectID, error) {
	sep := strings.Index(s, ":")
	if sep <= 0 || sep == len(s)-1 {
		return "", errors.WrapInvalid(errors.ErrInvalidData, "SubjectID", "ParseSubjectID",
			fmt.Sprintf("%q is not of the form issuer:subject", s))
	}
	return SubjectID(s), nil
}
