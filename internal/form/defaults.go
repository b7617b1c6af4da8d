package form

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ApplyDefaults fills top-level keys missing from doc with their schema
// defaults. Keys already present are left as they are, including null.
func ApplyDefaults(doc []byte) ([]byte, error) {
	if len(doc) == 0 {
		doc = []byte("{}")
	}
	if !gjson.ValidBytes(doc) || !gjson.ParseBytes(doc).IsObject() {
		return nil, fmt.Errorf("apply defaults: document is not a JSON object")
	}

	out := append([]byte(nil), doc...)
	for _, spec := range Schema {
		if gjson.GetBytes(out, spec.Key).Exists() {
			continue
		}
		var err error
		out, err = sjson.SetBytes(out, spec.Key, spec.Default)
		if err != nil {
			return nil, fmt.Errorf("apply default %s: %w", spec.Key, err)
		}
	}
	return out, nil
}
