package data

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrUnknownComponentType is returned when a document names a component type
// that has neither a script file nor a native implementation.
var ErrUnknownComponentType = errors.New("unknown component type")

// ComponentDef is one component entry of a scene actor or a template.
// Type is empty for an entry that only overrides properties of a template
// component with the same key.
type ComponentDef struct {
	Key        string
	Type       string
	Properties map[string]any
}

// PropertyNames returns the override names in lexicographic order.
func (d ComponentDef) PropertyNames() []string {
	names := make([]string, 0, len(d.Properties))
	for n := range d.Properties {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ActorDef describes one actor of a scene.
type ActorDef struct {
	Name       string
	Template   string
	Components []ComponentDef // key order
}

// Scene is a parsed resources/scenes/<name>.yaml.
type Scene struct {
	Name   string
	Actors []ActorDef
}

type sceneDoc struct {
	Actors []actorDoc `yaml:"actors"`
}

type actorDoc struct {
	Name       string                    `yaml:"name"`
	Template   string                    `yaml:"template"`
	Components map[string]map[string]any `yaml:"components"`
}

// Catalog resolves scene and template documents below one resources
// directory. Templates are parsed once and cached.
type Catalog struct {
	root      string
	native    map[string]bool
	templates map[string]*Template
}

// NewCatalog returns a catalog rooted at dir. native lists component types
// implemented in Go, which need no script file.
func NewCatalog(dir string, native ...string) *Catalog {
	c := &Catalog{
		root:      dir,
		native:    make(map[string]bool, len(native)),
		templates: make(map[string]*Template),
	}
	for _, n := range native {
		c.native[n] = true
	}
	return c
}

// Root returns the resources directory.
func (c *Catalog) Root() string { return c.root }

// ScriptPath returns where the script for component type typ lives.
func (c *Catalog) ScriptPath(typ string) string {
	return filepath.Join(c.root, "component_types", typ+".lua")
}

// KnownType reports whether typ is native or has a script file.
func (c *Catalog) KnownType(typ string) bool {
	if typ == "" {
		return false
	}
	if c.native[typ] {
		return true
	}
	_, err := os.Stat(c.ScriptPath(typ))
	return err == nil
}

// SceneExists reports whether resources/scenes/<name>.yaml exists.
func (c *Catalog) SceneExists(name string) bool {
	_, err := os.Stat(c.scenePath(name))
	return err == nil
}

func (c *Catalog) scenePath(name string) string {
	return filepath.Join(c.root, "scenes", name+".yaml")
}

// LoadScene parses and validates a scene. Every component type referenced,
// directly or through a template, must be known.
func (c *Catalog) LoadScene(name string) (*Scene, error) {
	path := c.scenePath(name)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene %s: %w", name, err)
	}
	var doc sceneDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse scene %s: %w", path, err)
	}

	s := &Scene{Name: name, Actors: make([]ActorDef, 0, len(doc.Actors))}
	for i, ad := range doc.Actors {
		def := ActorDef{
			Name:       ad.Name,
			Template:   ad.Template,
			Components: componentDefs(ad.Components),
		}
		var tpl *Template
		if def.Template != "" {
			if tpl, err = c.Template(def.Template); err != nil {
				return nil, fmt.Errorf("scene %s actor %d: %w", name, i, err)
			}
		}
		for _, cd := range def.Resolve(tpl) {
			if !c.KnownType(cd.Type) {
				return nil, fmt.Errorf("scene %s actor %q component %q: %w %q",
					name, def.Name, cd.Key, ErrUnknownComponentType, cd.Type)
			}
		}
		s.Actors = append(s.Actors, def)
	}
	return s, nil
}

// Resolve merges the actor's entries over tpl. An entry with a type replaces
// the template component under the same key; an entry without one only
// overrides properties. The result is in key order.
func (d ActorDef) Resolve(tpl *Template) []ComponentDef {
	merged := make(map[string]ComponentDef)
	if tpl != nil {
		for _, cd := range tpl.Components {
			merged[cd.Key] = cd
		}
	}
	for _, cd := range d.Components {
		base, ok := merged[cd.Key]
		if cd.Type != "" || !ok {
			merged[cd.Key] = cd
			continue
		}
		props := make(map[string]any, len(base.Properties)+len(cd.Properties))
		for k, v := range base.Properties {
			props[k] = v
		}
		for k, v := range cd.Properties {
			props[k] = v
		}
		merged[cd.Key] = ComponentDef{Key: cd.Key, Type: base.Type, Properties: props}
	}
	return sortedDefs(merged)
}

// DisplayName returns the actor name, falling back to the template's.
func (d ActorDef) DisplayName(tpl *Template) string {
	if d.Name == "" && tpl != nil {
		return tpl.Name
	}
	return d.Name
}

func componentDefs(raw map[string]map[string]any) []ComponentDef {
	defs := make(map[string]ComponentDef, len(raw))
	for key, body := range raw {
		cd := ComponentDef{Key: key, Properties: make(map[string]any, len(body))}
		for name, v := range body {
			if name == "type" {
				cd.Type, _ = v.(string)
				continue
			}
			if scalar(v) {
				cd.Properties[name] = v
			}
		}
		defs[key] = cd
	}
	return sortedDefs(defs)
}

func sortedDefs(m map[string]ComponentDef) []ComponentDef {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]ComponentDef, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

// scalar keeps the override kinds scripts can receive: bool, int, float and
// string. Nested maps and lists are dropped.
func scalar(v any) bool {
	switch v.(type) {
	case bool, int, int64, float64, string:
		return true
	}
	return false
}
