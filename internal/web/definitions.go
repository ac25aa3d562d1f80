package web

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/drsite/drsite-web/internal/forms"
	"gopkg.in/yaml.v3"
)

//go:embed forms.yaml
var formsYAML []byte

type definitionsFile struct {
	Forms []forms.Definition `yaml:"forms"`
}

var (
	defsOnce sync.Once
	defs     []forms.Definition
	defsErr  error
)

// Definitions returns the form definitions embedded in the binary.
// They are parsed once and shared read-only by every page session.
func Definitions() ([]forms.Definition, error) {
	defsOnce.Do(func() {
		defs, defsErr = ParseDefinitions(formsYAML)
	})
	return defs, defsErr
}

// ParseDefinitions decodes and checks a YAML list of form definitions.
func ParseDefinitions(data []byte) ([]forms.Definition, error) {
	var file definitionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse form definitions: %w", err)
	}

	seen := make(map[string]bool, len(file.Forms))
	for _, def := range file.Forms {
		if err := def.Validate(); err != nil {
			return nil, err
		}
		if seen[def.ID] {
			return nil, fmt.Errorf("duplicate form id %q", def.ID)
		}
		seen[def.ID] = true
	}
	return file.Forms, nil
}

// FindDefinition returns the definition with the given id.
func FindDefinition(defs []forms.Definition, id string) (forms.Definition, bool) {
	for _, def := range defs {
		if def.ID == id {
			return def, true
		}
	}
	return forms.Definition{}, false
}
