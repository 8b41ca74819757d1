package things

import (
	"github.com/haoxiangmiao/ditto/envelope"
	pkgerrors "github.com/haoxiangmiao/ditto/errors"
)

// Register adds every things response definition to the registry. Called
// once during process initialization, before any decoding starts.
func Register(registry *envelope.Registry) error {
	if registry == nil {
		return pkgerrors.WrapFatal(pkgerrors.ErrInvalidConfig, "things", "Register",
			"registry cannot be nil")
	}

	for _, def := range Definitions() {
		if err := def.Register(registry); err != nil {
			return pkgerrors.WrapFatal(err, "things", "Register", def.TypeTag()+" registration")
		}
	}
	return nil
}

// Definitions returns every things response definition in registration
// order.
func Definitions() []*envelope.Definition {
	return []*envelope.Definition{
		ModifyAttribute,
		ModifyAttributes,
		DeleteAttribute,
		RetrieveAttributes,
		DeleteFeatureDefinition,
	}
}
