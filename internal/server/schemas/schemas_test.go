package schemas

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

const laptopSchema = `{
	"type": "object",
	"properties": {
		"ram_gb": {"type": "integer", "minimum": 1},
		"colour": {"type": "string"}
	},
	"required": ["ram_gb"]
}`

func TestCompile(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"valid schema", laptopSchema, false},
		{"not json", `{"type":`, true},
		{"invalid keyword value", `{"type": 12}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile("urn:test:"+tt.name, json.RawMessage(tt.doc))
			if (err != nil) != tt.wantErr {
				t.Errorf("Compile() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	cache := NewCache()
	categoryID := uuid.New()

	tests := []struct {
		name       string
		schema     string
		attributes string
		wantErr    bool
	}{
		{"matches schema", laptopSchema, `{"ram_gb": 16, "colour": "grey"}`, false},
		{"missing required property", laptopSchema, `{"colour": "grey"}`, true},
		{"wrong type", laptopSchema, `{"ram_gb": "sixteen"}`, true},
		{"no schema accepts any object", "", `{"anything": true}`, false},
		{"empty attributes without schema", "", "", false},
		{"null attributes are an empty object", "", "null", false},
		{"null attributes still checked against schema", laptopSchema, "null", true},
		{"attributes must be an object", "", `[1, 2]`, true},
		{"invalid attribute json", "", `{"a":`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cache.Validate(categoryID, json.RawMessage(tt.schema), json.RawMessage(tt.attributes))
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCacheRecompilesChangedSchema(t *testing.T) {
	cache := NewCache()
	categoryID := uuid.New()

	if err := cache.Validate(categoryID, json.RawMessage(laptopSchema), json.RawMessage(`{"colour": "red"}`)); err == nil {
		t.Fatal("expected ram_gb to be required")
	}

	relaxed := `{"type": "object"}`
	if err := cache.Validate(categoryID, json.RawMessage(relaxed), json.RawMessage(`{"colour": "red"}`)); err != nil {
		t.Fatalf("updated schema should be used, got %v", err)
	}

	cache.Invalidate(categoryID)
	cache.mu.RLock()
	defer cache.mu.RUnlock()
	if _, ok := cache.entries[categoryID]; ok {
		t.Error("Invalidate() should remove the entry")
	}
}
