package ospackage

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
	k8syaml "sigs.k8s.io/yaml"
)

//go:embed schema/build.schema.json
var buildSchemaJSON string

var buildSchema = jsonschema.MustCompileString("build.schema.json", buildSchemaJSON)

// LoadBuild reads and validates a YAML build descriptor.
func LoadBuild(path string) (*Build, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading build descriptor %s: %w", path, err)
	}
	build, err := parseBuild(data)
	if err != nil {
		return nil, fmt.Errorf("build descriptor %s: %w", path, err)
	}
	return build, nil
}

func parseBuild(data []byte) (*Build, error) {
	if err := validateBuild(data); err != nil {
		return nil, err
	}

	var build Build
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&build); err != nil {
		return nil, fmt.Errorf("decoding YAML: %w", err)
	}
	build.Name = strings.TrimSpace(build.Name)
	build.Version = strings.TrimSpace(build.Version)
	return &build, nil
}

// validateBuild checks the raw YAML against the embedded JSON schema.
func validateBuild(data []byte) error {
	jsonData, err := k8syaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("converting YAML to JSON: %w", err)
	}

	var doc interface{}
	dec := json.NewDecoder(bytes.NewReader(jsonData))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("decoding JSON: %w", err)
	}

	if err := buildSchema.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
