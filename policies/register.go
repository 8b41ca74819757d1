package policies

import (
	"github.com/haoxiangmiao/ditto/envelope"
	pkgerrors "github.com/haoxiangmiao/ditto/errors"
)

// Register adds every policies response definition to the registry. Called
// once during process initialization, before any decoding starts.
func Register(registry *envelope.Registry) error {
	if registry == nil {
		return pkgerrors.WrapFatal(pkgerrors.ErrInvalidConfig, "policies", "Register",
			"registry cannot be nil")
	}

	for _, def := range Definitions() {
		if err := def.Register(registry); err != nil {
			return pkgerrors.WrapFatal(err, "policies", "Register", def.TypeTag()+" registration")
		}
	}
	return nil
}

// Definitions returns every policies response definition in registration
// order.
func Definitions() []*envelope.Definition {
	return []*envelope.Definition{
		ModifyResource,
		DeleteResource,
		ModifySubject,
		DeleteSubject,
	}
}
