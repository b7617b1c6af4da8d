package form

import (
	"fmt"
	"strings"

	"github.com/tidwall/sjson"

	"github.com/gravitrone/balance-console/internal/collection"
	"github.com/gravitrone/balance-console/internal/masking"
)

// Serialize builds the save payload: the loaded document with every schema
// key replaced by its control's value. Sensitive controls contribute their
// recovered true value, never the sentinel.
func (f *Form) Serialize() ([]byte, error) {
	return f.overlay(f.values)
}

// Redacted is Serialize for display: sensitive values are replaced by the
// sentinel and collection keys are shortened. It must never be saved.
func (f *Form) Redacted() ([]byte, error) {
	return f.overlay(func(spec FieldSpec) any {
		switch spec.Kind {
		case KindSensitive:
			if v, _ := f.store.Value(spec.Key); v != "" {
				return masking.Sentinel
			}
			return ""
		case KindSensitiveList:
			out := []string{}
			for range f.listValues(spec.Key) {
				out = append(out, masking.Sentinel)
			}
			return out
		case KindKeyCollection:
			out := []string{}
			for _, k := range f.editors[spec.Key].Master() {
				out = append(out, collection.Redact(k))
			}
			return out
		}
		return f.values(spec)
	})
}

func (f *Form) overlay(value func(FieldSpec) any) ([]byte, error) {
	out := append([]byte(nil), f.doc...)
	for _, spec := range Schema {
		var err error
		out, err = sjson.SetBytes(out, spec.Key, value(spec))
		if err != nil {
			return nil, fmt.Errorf("serialize %s: %w", spec.Key, err)
		}
	}
	return out, nil
}

func (f *Form) values(spec FieldSpec) any {
	switch spec.Kind {
	case KindBool:
		return f.bools[spec.Key]
	case KindNumber:
		return parseNumber(f.scalars[spec.Key])
	case KindSensitive:
		v, _ := f.store.Value(spec.Key)
		return v
	case KindKeyCollection:
		return f.editors[spec.Key].Master()
	case KindList, KindSensitiveList:
		return f.listValues(spec.Key)
	case KindPairs:
		out := make(map[string]string)
		for _, p := range f.pairs[spec.Key] {
			k := strings.TrimSpace(p.Key)
			if k == "" {
				continue
			}
			out[k] = strings.TrimSpace(p.Value)
		}
		return out
	case KindBudgetMap:
		out := make(map[string]int)
		for _, b := range f.budgets[spec.Key] {
			model := strings.TrimSpace(b.Model)
			if model == "" {
				continue
			}
			out[model] = b.Value
		}
		return out
	}
	return f.scalars[spec.Key]
}

// listValues returns the non-blank true values of a list in row order.
func (f *Form) listValues(key string) []string {
	out := []string{}
	for _, row := range f.lists[key] {
		v := row.Value
		if tv, ok := f.store.Value(row.ID); ok {
			v = tv
		}
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
