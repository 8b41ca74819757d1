package things

import (
	"fmt"
	"strings"

	"github.com/haoxiangmiao/ditto/errors"
)

// Pointer addresses a single attribute inside a thing, in JSON pointer
// notation: "/color", "/location/latitude". Always normalized to a leading
// slash and never empty.
type Pointer string

// String returns the normalized pointer.
func (p Pointer) String() string {
	return string(p)
}

// ParsePointer validates and normalizes an attribute pointer. An empty
// pointer is rejected, as are empty keys and control characters inside
// keys.
func ParsePointer(s string) (Pointer, error) {
	trimmed := strings.TrimPrefix(s, "/")
	if trimmed == "" {
		return "", errors.WrapInvalid(errors.ErrInvalidData, "Pointer", "ParsePointer",
			"attribute pointer cannot be empty")
	}

	for _, key := range strings.Split(trimmed, "/") {
		if key == "" {
			return "", errors.WrapInvalid(errors.ErrInvalidData, "Pointer", "ParsePointer",
				fmt.Sprintf("pointer %q contains an empty key", s))
		}
		for _, r := range key {
			if r < 0x20 || r == 0x7f {
				return "", errors.WrapInvalid(errors.ErrInvalidData, "Pointer", "ParsePointer",
					fmt.Sprintf("pointer key %q contains a control character", key))
			}
		}
	}

	return Pointer("/" + trimmed), nil
}
