package datapack

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/*.json
var schemaFiles embed.FS

const schemaBase = "mem://worldgen/"

// document is a kind of datapack file, named after the schema it is checked
// against.
type document string

const (
	docNoiseSettings   document = "noise_settings"
	docDensityFunction document = "density_function"
	docNoise           document = "noise"
	docSpline          document = "spline"
)

var schemas = sync.OnceValues(func() (map[document]*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	entries, err := schemaFiles.ReadDir("schema")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		data, err := schemaFiles.ReadFile("schema/" + e.Name())
		if err != nil {
			return nil, err
		}
		if err := c.AddResource(schemaBase+e.Name(), bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("add schema %v: %w", e.Name(), err)
		}
	}
	m := make(map[document]*jsonschema.Schema, 4)
	for _, d := range []document{docNoiseSettings, docDensityFunction, docNoise, docSpline} {
		s, err := c.Compile(schemaBase + string(d) + ".schema.json")
		if err != nil {
			return nil, fmt.Errorf("compile schema %v: %w", d, err)
		}
		m[d] = s
	}
	return m, nil
})

// validate checks data against the schema of the document kind passed.
func validate(d document, data []byte) error {
	m, err := schemas()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if err := m[d].Validate(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return nil
}
