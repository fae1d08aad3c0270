package crm

import (
	"encoding/json"
	"testing"
)

func TestNormalizeCustomFields_Map(t *testing.T) {
	fields := NormalizeCustomFields(map[string]interface{}{"a": "1", "b": "2"})
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}

	byID := map[string]interface{}{}
	for _, f := range fields {
		byID[f.ID] = f.Value
	}
	if byID["a"] != "1" || byID["b"] != "2" {
		t.Errorf("expected entries for a and b, got %v", byID)
	}
}

func TestNormalizeCustomFields_ArrayPassthrough(t *testing.T) {
	in := []CustomField{{ID: "a", Value: "1"}}
	out := NormalizeCustomFields(in)
	if len(out) != 1 || out[0].ID != "a" || out[0].Value != "1" {
		t.Errorf("expected array passed through unchanged, got %v", out)
	}
}

func TestNormalizeCustomFields_Nil(t *testing.T) {
	out := NormalizeCustomFields(nil)
	if out == nil || len(out) != 0 {
		t.Errorf("expected empty array, got %v", out)
	}
}

func TestCustomFieldSet_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected map[string]string
	}{
		{
			name:     "array shape",
			input:    `[{"id":"a","value":"1"},{"id":"b","value":"2"}]`,
			expected: map[string]string{"a": "1", "b": "2"},
		},
		{
			name:     "object shape",
			input:    `{"a":"1","b":"2"}`,
			expected: map[string]string{"a": "1", "b": "2"},
		},
		{
			name:     "unexpected scalar yields empty set",
			input:    `"nope"`,
			expected: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var set CustomFieldSet
			if err := json.Unmarshal([]byte(tt.input), &set); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(set) != len(tt.expected) {
				t.Fatalf("expected %d fields, got %d", len(tt.expected), len(set))
			}
			for id, value := range tt.expected {
				if got := set.StringValue(id); got != value {
					t.Errorf("expected %s=%q, got %q", id, value, got)
				}
			}
		})
	}
}

func TestCustomFieldSet_StringValue(t *testing.T) {
	set := CustomFieldSet{
		{ID: "text", Value: "hello"},
		{ID: "number", Value: float64(1200)},
		{ID: "null", Value: nil},
	}

	if got := set.StringValue("text"); got != "hello" {
		t.Errorf("expected hello, got %q", got)
	}
	if got := set.StringValue("number"); got != "1200" {
		t.Errorf("expected 1200, got %q", got)
	}
	if got := set.StringValue("null"); got != "" {
		t.Errorf("expected empty for null value, got %q", got)
	}
	if got := set.StringValue("missing"); got != "" {
		t.Errorf("expected empty for missing field, got %q", got)
	}
}

func TestCustomFieldMap(t *testing.T) {
	m := CustomFieldMap([]CustomField{{ID: "a", Value: "1"}, {ID: "b", Value: float64(2)}})
	if m["a"] != "1" || m["b"] != float64(2) {
		t.Errorf("expected inverse mapping, got %v", m)
	}
}
