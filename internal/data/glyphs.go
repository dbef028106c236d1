package data

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Glyph is how the terminal presenter draws one image.
type Glyph struct {
	Symbol string `yaml:"symbol"`
	Color  string `yaml:"color"` // tcell color name, e.g. "yellow" or "#ff8800"
}

// GlyphTable maps image names to glyphs.
type GlyphTable struct {
	glyphs map[string]Glyph
}

// LoadGlyphTable loads resources/glyphs.yaml. A missing file yields an empty
// table; images then fall back to their first letter.
func LoadGlyphTable(path string) (*GlyphTable, error) {
	t := &GlyphTable{glyphs: make(map[string]Glyph)}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return t, nil
		}
		return nil, fmt.Errorf("read glyph table: %w", err)
	}
	if err := yaml.Unmarshal(raw, &t.glyphs); err != nil {
		return nil, fmt.Errorf("parse glyph table: %w", err)
	}
	return t, nil
}

// Get returns the glyph for image, or false if none is configured.
func (t *GlyphTable) Get(image string) (Glyph, bool) {
	if t == nil {
		return Glyph{}, false
	}
	g, ok := t.glyphs[image]
	return g, ok
}

// Count returns the number of configured glyphs.
func (t *GlyphTable) Count() int {
	if t == nil {
		return 0
	}
	return len(t.glyphs)
}
