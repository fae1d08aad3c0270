package crm

import (
	"encoding/json"
	"fmt"
)

// CustomFieldSet normalizes the vendor's two custom-field wire shapes.
// The v1 API serves a nested key->value object ("customField") while the
// v2 API serves an array of {id, value} pairs ("customFields"); responses
// have been observed mixing the two. The set always holds the array form
// internally so the ambiguity stops at this package.
type CustomFieldSet []CustomField

// UnmarshalJSON accepts either an array of {id, value} pairs or a
// key->value object and normalizes to the array form. Anything else
// yields an empty set rather than an error.
func (s *CustomFieldSet) UnmarshalJSON(data []byte) error {
	var asArray []CustomField
	if err := json.Unmarshal(data, &asArray); err == nil {
		*s = asArray
		return nil
	}

	var asMap map[string]interface{}
	if err := json.Unmarshal(data, &asMap); err == nil {
		fields := make([]CustomField, 0, len(asMap))
		for id, value := range asMap {
			fields = append(fields, CustomField{ID: id, Value: value})
		}
		*s = fields
		return nil
	}

	*s = nil
	return nil
}

// StringValue returns the value of the field with the given id rendered
// as a string, or "" when the field is absent or null.
func (s CustomFieldSet) StringValue(id string) string {
	for _, f := range s {
		if f.ID != id {
			continue
		}
		switch v := f.Value.(type) {
		case string:
			return v
		case nil:
			return ""
		default:
			return fmt.Sprintf("%v", v)
		}
	}
	return ""
}

// NormalizeCustomFields converts whichever custom-field representation the
// caller holds into the array shape the v2 API requires. Nil input yields
// an empty array; this function never fails.
func NormalizeCustomFields(fields interface{}) []CustomField {
	switch v := fields.(type) {
	case nil:
		return []CustomField{}
	case []CustomField:
		return v
	case CustomFieldSet:
		return []CustomField(v)
	case map[string]interface{}:
		out := make([]CustomField, 0, len(v))
		for id, value := range v {
			out = append(out, CustomField{ID: id, Value: value})
		}
		return out
	case map[string]string:
		out := make([]CustomField, 0, len(v))
		for id, value := range v {
			out = append(out, CustomField{ID: id, Value: value})
		}
		return out
	default:
		return []CustomField{}
	}
}

// CustomFieldMap converts the array shape back into the nested object the
// v1 API expects.
func CustomFieldMap(fields []CustomField) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		out[f.ID] = f.Value
	}
	return out
}
