package generator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
	"github.com/google/jsonschema-go/jsonschema"
	santhosh "github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "oagen-config.json"

// FileConfig is the shape of a YAML or TOML config file. Unknown keys are
// allowed.
type FileConfig struct {
	Aliases    map[string]string         `json:"aliases,omitempty"`
	Processors map[string]map[string]any `json:"processors,omitempty"`
	Strict     *bool                     `json:"strict,omitempty"`
	Jobs       *int                      `json:"jobs,omitempty"`
	Version    string                    `json:"version,omitempty"`
	Namespaces []string                  `json:"namespaces,omitempty"`
	Exclude    []string                  `json:"exclude,omitempty"`
	Pattern    []string                  `json:"pattern,omitempty"`
}

// ConfigSchema returns the JSON Schema of [FileConfig].
func ConfigSchema() *jsonschema.Schema {
	stringList := &jsonschema.Schema{
		Type:  "array",
		Items: &jsonschema.Schema{Type: "string"},
	}

	minJobs := 0.0

	return &jsonschema.Schema{
		Schema:      "http://json-schema.org/draft-07/schema#",
		Title:       "oagen configuration",
		Description: "Settings for generating an OpenAPI document from annotated sources.",
		Type:        "object",
		Properties: map[string]*jsonschema.Schema{
			"aliases": {
				Description:          "Tag aliases mapping a short name to a namespace.",
				Type:                 "object",
				AdditionalProperties: &jsonschema.Schema{Type: "string", MinLength: ptr(1)},
			},
			"namespaces": withDescription(stringList, "Namespaces searched for bare tag names, in order."),
			"exclude":    withDescription(stringList, "File and directory patterns to skip."),
			"pattern":    withDescription(stringList, "File name patterns scanned in directories."),
			"processors": {
				Description: "Pass options keyed by pass name, then option name.",
				Type:        "object",
				AdditionalProperties: &jsonschema.Schema{
					Type: "object",
				},
			},
			"strict": {
				Description: "Fail on the first unresolvable constant.",
				Type:        "boolean",
			},
			"version": {
				Description: "OpenAPI version of the document.",
				Type:        "string",
			},
			"jobs": {
				Description: "Files parsed concurrently; 0 for one per CPU.",
				Type:        "integer",
				Minimum:     &minJobs,
			},
		},
	}
}

func withDescription(s *jsonschema.Schema, desc string) *jsonschema.Schema {
	cp := *s
	cp.Description = desc

	return &cp
}

func ptr[T any](v T) *T {
	return &v
}

var compiledSchema = sync.OnceValues(func() (*santhosh.Schema, error) {
	data, err := json.Marshal(ConfigSchema())
	if err != nil {
		return nil, err
	}

	compiler := santhosh.NewCompiler()
	compiler.Draft = santhosh.Draft7

	err = compiler.AddResource(schemaURL, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	return compiler.Compile(schemaURL)
})

// LoadFile reads a config file. Files ending in .toml are TOML; anything
// else is YAML (which includes JSON). The content is validated against
// [ConfigSchema].
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
	}

	return ParseFile(path, data)
}

// ParseFile parses config file content; path selects the syntax.
func ParseFile(path string, data []byte) (*FileConfig, error) {
	var raw map[string]any

	var err error

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidOption, path, err)
	}

	if raw == nil {
		raw = map[string]any{}
	}

	// Round-trip through JSON so YAML and TOML values share one shape.
	normalized, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidOption, path, err)
	}

	var doc any

	err = json.Unmarshal(normalized, &doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidOption, path, err)
	}

	schema, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("compile config schema: %w", err)
	}

	err = schema.Validate(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidOption, path, err)
	}

	var fc FileConfig

	err = json.Unmarshal(normalized, &fc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidOption, path, err)
	}

	return &fc, nil
}
