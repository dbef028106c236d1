package data

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrTemplateNotFound is returned when resources/actor_templates/<name>.yaml
// does not exist.
var ErrTemplateNotFound = errors.New("actor template not found")

// Template is a parsed resources/actor_templates/<name>.yaml.
type Template struct {
	Name       string
	Components []ComponentDef // key order
}

type templateDoc struct {
	Name       string                    `yaml:"name"`
	Components map[string]map[string]any `yaml:"components"`
}

// Template returns the named template, parsing it on first use.
func (c *Catalog) Template(name string) (*Template, error) {
	if t, ok := c.templates[name]; ok {
		return t, nil
	}
	path := filepath.Join(c.root, "actor_templates", name+".yaml")
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
		}
		return nil, fmt.Errorf("read template %s: %w", name, err)
	}
	var doc templateDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse template %s: %w", path, err)
	}
	t := &Template{Name: doc.Name, Components: componentDefs(doc.Components)}
	if t.Name == "" {
		t.Name = name
	}
	for _, cd := range t.Components {
		if !c.KnownType(cd.Type) {
			return nil, fmt.Errorf("template %s component %q: %w %q",
				name, cd.Key, ErrUnknownComponentType, cd.Type)
		}
	}
	c.templates[name] = t
	return t, nil
}

// TemplateCount returns how many templates have been parsed so far.
func (c *Catalog) TemplateCount() int { return len(c.templates) }
