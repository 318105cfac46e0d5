// Package yamlformat is a thin block-style YAML serializer over the output
// formatter's ItemEntry rows, kept deliberately minimal per the non-goal of
// building a general pretty-printer.
package yamlformat

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// Marshal renders v as block-style YAML with two-space indentation,
// matching the quoting conventions the rest of this module already follows
// for its own config and override files.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
