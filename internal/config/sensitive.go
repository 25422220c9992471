package config

import (
	"reflect"

	"github.com/google/go-cmp/cmp"
	"github.com/mitchellh/hashstructure/v2"
	"gopkg.in/yaml.v3"
)

const redacted = "<redacted>"

// Anonymized returns a copy of c with every non-empty field tagged
// `sensitive:"true"` replaced.
func (c *Config) Anonymized() *Config {
	out := *c
	out.Logging.MarkersToLog = append([]string(nil), c.Logging.MarkersToLog...)
	maskSensitive(reflect.ValueOf(&out).Elem())
	return &out
}

func maskSensitive(v reflect.Value) {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		switch {
		case field.Kind() == reflect.Struct:
			maskSensitive(field)
		case field.Kind() == reflect.String && t.Field(i).Tag.Get("sensitive") == "true":
			if field.String() != "" {
				field.SetString(redacted)
			}
		}
	}
}

// AnonymizedYAML serializes the anonymized config.
func (c *Config) AnonymizedYAML() (string, error) {
	b, err := yaml.Marshal(c.Anonymized())
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Diff describes how c differs from the defaults; empty when identical.
// Sensitive values are masked on both sides.
func (c *Config) Diff() string {
	return cmp.Diff(Default().Anonymized(), c.Anonymized())
}

// Fingerprint is a stable hash of the anonymized config.
func (c *Config) Fingerprint() (uint64, error) {
	return hashstructure.Hash(c.Anonymized(), hashstructure.FormatV2, nil)
}
