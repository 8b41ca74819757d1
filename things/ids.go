package things

import (
	"fmt"
	"strings"

	"github.com/haoxiangmiao/ditto/errors"
)

// ThingID identifies a thing entity. The wire form is
// "namespace:name", for example "org.acme:thing-1". The namespace may be
// empty ("" before the separator) for unnamespaced things; the name part
// never is.
type ThingID struct {
	Namespace string
	Name      string
}

// String returns the wire form "namespace:name".
func (id ThingID) String() string {
	return fmt.Sprintf("%s:%s", id.Namespace, id.Name)
}

// IsValid checks if the ThingID has a non-empty name.
func (id ThingID) IsValid() bool {
	return id.Name != ""
}

// ParseThingID creates a ThingID from its wire form.
// Returns an error if the separator is absent or the name part is empty.
func ParseThingID(s string) (ThingID, error) {
	sep := strings.Index(s, ":")
	if sep < 0 {
		return ThingID{}, errors.WrapInvalid(errors.ErrInvalidData, "ThingID", "ParseThingID",
			fmt.Sprintf("%q has no namespace separator", s))
	}

	id := ThingID{Namespace: s[:sep], Name: s[sep+1:]}
	if id.Name == "" {
		return ThingID{}, errors.WrapInvalid(errors.ErrInvalidData, "ThingID", "ParseThingID",
			fmt.Sprintf("%q has an empty name part", s))
	}
	return id, nil
}

// validateThingID is the entity-id hook shared by every things definition.
func validateThingID(s string) error {
	_, err := ParseThingID(s)
	return err
}
