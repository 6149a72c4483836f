package protocol

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// Schema names.
const (
	SchemaSettings  = "settings.schema.json"
	SchemaSubscribe = "subscribe.schema.json"
	SchemaFrame     = "frame.schema.json"
	SchemaError     = "error.schema.json"
)

var (
	schemaOnce sync.Once
	schemas    map[string]*jsonschema.Schema
	schemaErr  error
)

func loadSchemas() {
	c := jsonschema.NewCompiler()
	names := []string{SchemaSettings, SchemaSubscribe, SchemaFrame, SchemaError}
	for _, name := range names {
		b, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			schemaErr = err
			return
		}
		if err := c.AddResource(name, bytes.NewReader(b)); err != nil {
			schemaErr = fmt.Errorf("%s: %w", name, err)
			return
		}
	}
	out := make(map[string]*jsonschema.Schema, len(names))
	for _, name := range names {
		s, err := c.Compile(name)
		if err != nil {
			schemaErr = fmt.Errorf("%s: %w", name, err)
			return
		}
		out[name] = s
	}
	schemas = out
}

// Schema returns the compiled schema for name.
func Schema(name string) (*jsonschema.Schema, error) {
	schemaOnce.Do(loadSchemas)
	if schemaErr != nil {
		return nil, schemaErr
	}
	s, ok := schemas[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema: %s", name)
	}
	return s, nil
}

// ValidateJSON checks raw against the named schema.
func ValidateJSON(name string, raw []byte) error {
	s, err := Schema(name)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return s.Validate(v)
}

// Validate checks msg against the named schema after a JSON round trip.
func Validate(name string, msg any) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return ValidateJSON(name, b)
}
