// Package model defines the data models for the application.
// This file contains unit tests for model types.
package model

import (
	"encoding/json"
	"testing"
)

// TestStringArrayValue tests StringArray.Value() method
func TestStringArrayValue(t *testing.T) {
	tests := []struct {
		name    string
		input   StringArray
		want    string
		wantErr bool
	}{
		{
			name:  "empty array",
			input: StringArray{},
			want:  "[]",
		},
		{
			name:  "nil array",
			input: nil,
			want:  "[]",
		},
		{
			name:  "single element",
			input: StringArray{"hello"},
			want:  `["hello"]`,
		},
		{
			name:  "multiple elements",
			input: StringArray{"a", "b", "c"},
			want:  `["a","b","c"]`,
		},
		{
			name:  "elements with special characters",
			input: StringArray{"hello world", "foo\"bar", "test\nline"},
			want:  `["hello world","foo\"bar","test\nline"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.input.Value()
			if (err != nil) != tt.wantErr {
				t.Errorf("StringArray.Value() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("StringArray.Value() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestStringArrayScan tests StringArray.Scan() method
func TestStringArrayScan(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		want    StringArray
		wantErr bool
	}{
		{
			name:  "nil value",
			input: nil,
			want:  StringArray{},
		},
		{
			name:  "empty array as string",
			input: "[]",
			want:  StringArray{},
		},
		{
			name:  "empty array as bytes",
			input: []byte("[]"),
			want:  StringArray{},
		},
		{
			name:  "single element as string",
			input: `["hello"]`,
			want:  StringArray{"hello"},
		},
		{
			name:  "multiple elements as string",
			input: `["a","b","c"]`,
			want:  StringArray{"a", "b", "c"},
		},
		{
			name:  "multiple elements as bytes",
			input: []byte(`["a","b","c"]`),
			want:  StringArray{"a", "b", "c"},
		},
		{
			name:    "invalid JSON",
			input:   "not json",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s StringArray
			err := s.Scan(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("StringArray.Scan() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && len(s) != len(tt.want) {
				t.Errorf("StringArray.Scan() length = %d, want %d", len(s), len(tt.want))
				return
			}
			for i := range tt.want {
				if s[i] != tt.want[i] {
					t.Errorf("StringArray.Scan()[%d] = %v, want %v", i, s[i], tt.want[i])
				}
			}
		})
	}
}

// TestJSONMapValue tests JSONMap.Value() method
func TestJSONMapValue(t *testing.T) {
	tests := []struct {
		name    string
		input   JSONMap
		wantErr bool
	}{
		{
			name:  "nil map",
			input: nil,
		},
		{
			name:  "empty map",
			input: JSONMap{},
		},
		{
			name: "simple map",
			input: JSONMap{
				"key": "value",
			},
		},
		{
			name: "nested map",
			input: JSONMap{
				"key1": "value1",
				"key2": 42,
				"key3": true,
				"nested": map[string]interface{}{
					"inner": "value",
				},
			},
		},
		{
			name: "map with array",
			input: JSONMap{
				"items": []interface{}{"a", "b", "c"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.input.Value()
			if (err != nil) != tt.wantErr {
				t.Errorf("JSONMap.Value() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			// Value should be a valid JSON string
			if got != nil {
				if str, ok := got.(string); ok {
					var m map[string]interface{}
					if err := json.Unmarshal([]byte(str), &m); err != nil {
						t.Errorf("JSONMap.Value() returned invalid JSON: %v", err)
					}
				}
			}
		})
	}
}

// TestJSONMapScan tests JSONMap.Scan() method
func TestJSONMapScan(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		wantKeys []string
		wantErr  bool
	}{
		{
			name:     "nil value",
			input:    nil,
			wantKeys: []string{},
		},
		{
			name:     "empty object as string",
			input:    "{}",
			wantKeys: []string{},
		},
		{
			name:     "empty object as bytes",
			input:    []byte("{}"),
			wantKeys: []string{},
		},
		{
			name:     "simple object as string",
			input:    `{"key":"value"}`,
			wantKeys: []string{"key"},
		},
		{
			name:     "simple object as bytes",
			input:    []byte(`{"key":"value"}`),
			wantKeys: []string{"key"},
		},
		{
			name:     "nested object",
			input:    `{"key1":"value1","nested":{"inner":"value"}}`,
			wantKeys: []string{"key1", "nested"},
		},
		{
			name:    "invalid JSON",
			input:   "not json",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m JSONMap
			err := m.Scan(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("JSONMap.Scan() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr {
				for _, key := range tt.wantKeys {
					if _, ok := m[key]; !ok {
						t.Errorf("JSONMap.Scan() missing key: %s", key)
					}
				}
			}
		})
	}
}

// TestAllModels tests the AllModels function
func TestAllModels(t *testing.T) {
	models := AllModels()
	if len(models) == 0 {
		t.Error("AllModels() returned empty slice")
	}

	found := map[string]bool{}
	for _, m := range models {
		switch m.(type) {
		case *IdempotencyRecord:
			found["idempotency"] = true
		case *CacheRecord:
			found["cache"] = true
		case *FeedbackRecord:
			found["feedback"] = true
		case *ReviewHistoryRecord:
			found["reviewhistory"] = true
		}
	}
	for _, name := range []string{"idempotency", "cache", "feedback", "reviewhistory"} {
		if !found[name] {
			t.Errorf("AllModels() missing %s record", name)
		}
	}
}
