// Package schema validates upstream payloads against declared shapes before
// anything is decoded or persisted. Which schemas are critical is decided by
// the orchestrators, not here.
package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema names, matching the embedded schema files.
const (
	AuthToken              = "auth_token"
	Equipment              = "equipment"
	CharacterProfile       = "character_profile"
	Media                  = "media"
	PvPSummary             = "pvp_summary"
	SpecializationsClassic = "specializations_classic"
	SpecializationsModern  = "specializations_modern"
	GuildRoster            = "guild_roster"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// ValidationError wraps a structural failure of one named payload.
type ValidationError struct {
	Schema string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("payload failed %s schema: %v", e.Schema, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

type Validator struct {
	schemas map[string]*jsonschema.Schema
}

func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	entries, err := fs.ReadDir(schemaFS, "schemas")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded schemas: %w", err)
	}

	schemas := make(map[string]*jsonschema.Schema, len(entries))
	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), ".json")
		raw, err := schemaFS.ReadFile("schemas/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", name, err)
		}
		url := fmt.Sprintf("https://classic-armory.schemas.local/%s.schema.json", name)
		if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("failed to load schema %s: %w", name, err)
		}
		sch, err := compiler.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
		}
		schemas[name] = sch
	}

	return &Validator{schemas: schemas}, nil
}

// Decode validates data against the named schema and unmarshals it into out.
// A *ValidationError is returned when the payload is not valid JSON or does
// not match the declared shape.
func (v *Validator) Decode(name string, data []byte, out any) error {
	sch, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return &ValidationError{Schema: name, Err: err}
	}
	if err := sch.Validate(doc); err != nil {
		return &ValidationError{Schema: name, Err: err}
	}
	return json.Unmarshal(data, out)
}
