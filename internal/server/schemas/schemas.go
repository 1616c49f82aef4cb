// Package schemas validates product attributes against the JSON schema of their category.
package schemas

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Compile checks that doc is a valid JSON schema and returns the compiled schema
func Compile(resourceName string, doc json.RawMessage) (*jsonschema.Schema, error) {
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("schema content is not valid JSON: %v", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(resourceName, parsed); err != nil {
		return nil, fmt.Errorf("invalid JSON Schema: %w", err)
	}

	schema, err := compiler.Compile(resourceName)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON Schema format: %w", err)
	}
	return schema, nil
}

// Cache stores compiled category schemas indexed by category id.
//
// Entries are keyed on the schema text as well as the id so an updated category is recompiled on next use.
// The cache is shared by the http handlers and protected by a mutex.
type Cache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]cacheEntry
}

type cacheEntry struct {
	source string
	schema *jsonschema.Schema
}

func NewCache() *Cache {
	return &Cache{entries: make(map[uuid.UUID]cacheEntry)}
}

// Validate checks attributes against the category schema. A category without a schema accepts any JSON object.
func (c *Cache) Validate(categoryID uuid.UUID, schemaDoc json.RawMessage, attributes json.RawMessage) error {
	if len(bytes.TrimSpace(attributes)) == 0 || string(bytes.TrimSpace(attributes)) == "null" {
		attributes = json.RawMessage(`{}`)
	}

	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(attributes))
	if err != nil {
		return fmt.Errorf("invalid JSON format: %v", err)
	}
	if _, ok := instance.(map[string]any); !ok {
		return fmt.Errorf("attributes must be a JSON object")
	}

	if len(schemaDoc) == 0 || string(schemaDoc) == "null" {
		return nil
	}

	schema, err := c.get(categoryID, schemaDoc)
	if err != nil {
		return err
	}

	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// Invalidate removes a category from the cache (used when a category is updated or deleted)
func (c *Cache) Invalidate(categoryID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, categoryID)
}

func (c *Cache) get(categoryID uuid.UUID, schemaDoc json.RawMessage) (*jsonschema.Schema, error) {
	c.mu.RLock()
	entry, ok := c.entries[categoryID]
	c.mu.RUnlock()
	if ok && entry.source == string(schemaDoc) {
		return entry.schema, nil
	}

	schema, err := Compile(resourceName(categoryID), schemaDoc)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[categoryID] = cacheEntry{source: string(schemaDoc), schema: schema}
	return schema, nil
}

func resourceName(categoryID uuid.UUID) string {
	return fmt.Sprintf("urn:shopfront:category:%s", categoryID)
}
