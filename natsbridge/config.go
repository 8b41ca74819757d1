package natsbridge

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/haoxiangmiao/ditto/envelope"
	"github.com/haoxiangmiao/ditto/errors"
)

// Config holds the bridge settings, typically loaded from a YAML file.
type Config struct {
	// URL of the NATS server, e.g. "nats://localhost:4222".
	URL string `yaml:"url"`

	// SubjectPrefix is prepended to every published subject,
	// e.g. "ditto.responses".
	SubjectPrefix string `yaml:"subjectPrefix"`

	// SchemaVersion selects which declared fields are emitted on publish.
	// It must be at least the RequiredVersion of every envelope the bridge
	// will publish; Publish rejects envelopes whose required fields would
	// be projected away. The stock response definitions all need version 2.
	SchemaVersion int `yaml:"schemaVersion"`
}

// DefaultConfig returns a Config with working defaults for a local
// server.
func DefaultConfig() Config {
	return Config{
		URL:           "nats://localhost:4222",
		SubjectPrefix: "ditto.responses",
		SchemaVersion: envelope.LatestSchemaVersion,
	}
}

// ParseConfig decodes YAML configuration data, filling unset values from
// DefaultConfig and validating the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.WrapFatal(err, "Config", "ParseConfig", "yaml decoding")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration before a bridge is built from it.
func (c Config) Validate() error {
	if c.URL == "" {
		return errors.WrapFatal(errors.ErrMissingConfig, "Config", "Validate",
			"url is required")
	}
	if c.SubjectPrefix == "" {
		return errors.WrapFatal(errors.ErrMissingConfig, "Config", "Validate",
			"subjectPrefix is required")
	}
	if strings.ContainsAny(c.SubjectPrefix, " \t") {
		return errors.WrapFatal(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("subjectPrefix %q contains whitespace", c.SubjectPrefix))
	}
	if c.SchemaVersion < envelope.SchemaVersionV1 || c.SchemaVersion > envelope.LatestSchemaVersion {
		return errors.WrapFatal(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("schemaVersion %d is not supported", c.SchemaVersion))
	}
	return nil
}
