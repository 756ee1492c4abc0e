// Package yaml loads document schemas and the supervisor directory from
// YAML files. All configuration is read once at startup; the resulting
// registry and directory are immutable and safe for concurrent use.
package yaml

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JimmyYuu29/cartarev"
	"github.com/JimmyYuu29/cartarev/expr"
)

var _ cartarev.SchemaRegistry = (*Registry)(nil)

// Registry is a SchemaRegistry backed by a directory of YAML schema files.
// Every *.yaml and *.yml file in the directory defines one document type.
type Registry struct {
	schemas map[string]*cartarev.DocumentSchema
}

// NewRegistry loads all schema files from dir. Block definitions get their
// defaults filled in and conditional expressions are parsed so syntax errors
// surface at startup rather than at render time.
func NewRegistry(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading schema dir: %w", err)
	}

	r := &Registry{schemas: make(map[string]*cartarev.DocumentSchema)}
	for _, entry := range entries {
		name := entry.Name()
		ext := filepath.Ext(name)
		if entry.IsDir() || ext != ".yaml" && ext != ".yml" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading schema %s: %w", name, err)
		}

		var schema cartarev.DocumentSchema
		if err := yaml.Unmarshal(data, &schema); err != nil {
			return nil, fmt.Errorf("parsing schema %s: %w", name, err)
		}

		if schema.DocType == "" {
			schema.DocType = strings.TrimSuffix(name, ext)
		}
		applyDefaults(&schema)

		if err := schema.Validate(); err != nil {
			return nil, fmt.Errorf("schema %s: %w", name, err)
		}
		for varName, src := range schema.Conditionals {
			if _, err := expr.Parse(src); err != nil {
				return nil, fmt.Errorf("schema %s: conditional %q: %w", name, varName, err)
			}
		}
		if _, ok := r.schemas[schema.DocType]; ok {
			return nil, cartarev.Errorf(cartarev.EINVALID, "duplicate document type %q", schema.DocType)
		}
		r.schemas[schema.DocType] = &schema
	}
	return r, nil
}

// Schema returns the schema for a document type.
func (r *Registry) Schema(docType string) (*cartarev.DocumentSchema, error) {
	schema, ok := r.schemas[docType]
	if !ok {
		return nil, cartarev.Errorf(cartarev.ENOTFOUND, "unknown document type %q", docType)
	}
	return schema, nil
}

// DocTypes returns all registered document types, sorted.
func (r *Registry) DocTypes() []string {
	types := make([]string, 0, len(r.schemas))
	for docType := range r.schemas {
		types = append(types, docType)
	}
	sort.Strings(types)
	return types
}

func applyDefaults(schema *cartarev.DocumentSchema) {
	schema.Formats = schema.Formats.WithDefaults()
	for i := range schema.Blocks {
		b := &schema.Blocks[i]
		if b.CustomField == "" {
			b.CustomField = b.Key + "_custom"
		}
		if b.AppendMode == "" {
			b.AppendMode = cartarev.AppendNewline
		}
		if b.CustomType == "" {
			b.CustomType = cartarev.CustomText
		}
		if b.MaxLength == 0 {
			b.MaxLength = cartarev.DefaultMaxCustomLength
		}
		if b.Label == "" && b.AppendMode == cartarev.AppendLabelled {
			b.Label = cartarev.DefaultBlockLabel
		}
	}
}
