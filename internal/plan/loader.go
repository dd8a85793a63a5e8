package plan

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a plan document.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

//go:embed schema.json
var schemaDoc []byte

const schemaURL = "schema://plan.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func planSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaDoc))
		if err != nil {
			compileErr = fmt.Errorf("parse plan schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

type moduleDoc struct {
	ID        string       `json:"id" yaml:"id"`
	Name      string       `json:"name" yaml:"name"`
	Render    *bool        `json:"render" yaml:"render"`
	Electivas int          `json:"electivas" yaml:"electivas"`
	Subjects  []subjectDoc `json:"subjects" yaml:"subjects"`
}

type planDoc struct {
	Name    string      `json:"name" yaml:"name"`
	Title   string      `json:"title" yaml:"title"`
	Version string      `json:"version" yaml:"version"`
	Modules []moduleDoc `json:"modules" yaml:"modules"`
}

// Load parses, schema-checks and validates a plan document.
func Load(data []byte, format Format) (*Plan, error) {
	var doc planDoc
	var canonical []byte

	switch format {
	case FormatYAML:
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse plan yaml: %w", err)
		}
		b, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("convert plan yaml: %w", err)
		}
		canonical = b
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode plan yaml: %w", err)
		}
	default:
		canonical = data
	}

	if err := validateDocument(canonical); err != nil {
		return nil, err
	}

	if format != FormatYAML {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode plan json: %w", err)
		}
	}

	p := doc.plan()
	if err := Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadFile reads a plan from disk, picking the format from the extension.
func LoadFile(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	p, err := Load(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("load plan %s: %w", path, err)
	}
	return p, nil
}

func validateDocument(data []byte) error {
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid plan JSON: %w", err)
	}
	sch, err := planSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(parsed); err != nil {
		return fmt.Errorf("plan schema validation failed: %w", err)
	}
	return nil
}

func (d planDoc) plan() *Plan {
	modules := make([]Module, 0, len(d.Modules))
	for _, md := range d.Modules {
		m := Module{
			ID:        md.ID,
			Name:      md.Name,
			Render:    md.Render == nil || *md.Render,
			Electivas: md.Electivas,
		}
		for _, sd := range md.Subjects {
			m.Subjects = append(m.Subjects, sd.subject(false))
		}
		modules = append(modules, m)
	}
	return newPlan(d.Name, d.Title, d.Version, modules)
}
