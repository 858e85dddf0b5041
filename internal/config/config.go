// Package config merges global defaults with per-design overrides into
// fully-resolved parameter sets.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Corner handling modes.
const (
	CornerRounded = "rounded"
	CornerSharp   = "sharp"
)

// Defaults, matching the shop's standing die-cut setup:
// 1/16 in cut offset and bleed, 1/32 in minimum corner radius, 300 DPI
// artwork, stock squares from 1 to 10 inches in half-inch steps.
const (
	DefaultDensity      = 300.0
	DefaultUnit         = "in"
	DefaultBleedWidth   = 0.0625
	DefaultCutOffset    = 0.0625
	DefaultCornerRadius = 0.03125
)

// DefaultSizes returns the default stock size list.
func DefaultSizes() []float64 {
	sizes := make([]float64, 0, 19)
	for s := 1.0; s <= 10.0; s += 0.5 {
		sizes = append(sizes, s)
	}
	return sizes
}

// Resolved is one design's fully-resolved parameter set. Every field holds
// a concrete value; resolution fails rather than leaving gaps.
type Resolved struct {
	DesignID     string
	Density      float64   // pixels per unit
	Unit         string    // physical unit name, reporting only
	BleedWidth   float64   // physical, >= 0
	CutOffset    float64   // physical, signed; negative = kiss-cut inset
	Corner       string    // CornerRounded or CornerSharp
	CornerRadius float64   // physical, rounded mode minimum corner radius
	Width        float64   // target physical width, 0 = auto
	Height       float64   // target physical height, 0 = auto
	AspectLock   bool
	Sizes        []float64 // stock sizes for auto snapping
	ArtFile      string    // artwork filename override, "" = convention
	MaskFile     string    // mask filename override, "" = convention
}

// settings-scope keys. The designs scope accepts the same keys minus
// design_dir, plus per-design file overrides.
var settingsKeys = map[string]bool{
	"density":       true,
	"unit":          true,
	"bleed_width":   true,
	"cut_offset":    true,
	"corner":        true,
	"corner_radius": true,
	"width":         true,
	"height":        true,
	"aspect_lock":   true,
	"sizes":         true,
	"design_dir":    true,
}

var designKeys = map[string]bool{
	"density":       true,
	"unit":          true,
	"bleed_width":   true,
	"cut_offset":    true,
	"corner":        true,
	"corner_radius": true,
	"width":         true,
	"height":        true,
	"aspect_lock":   true,
	"sizes":         true,
	"art":           true,
	"mask":          true,
}

// Document is a parsed configuration file: global settings plus per-design
// override blocks keyed by design identifier.
type Document struct {
	// DesignDir is the root directory holding one subdirectory per design.
	DesignDir string

	settings map[string]json.RawMessage
	designs  map[string]map[string]json.RawMessage
}

type rawDocument struct {
	Settings map[string]json.RawMessage            `json:"settings"`
	Designs  map[string]map[string]json.RawMessage `json:"designs"`
}

// Load reads and validates a configuration document. Unknown keys in
// either scope are an error. Relative design_dir is resolved against the
// config file's directory.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, filepath.Dir(path))
}

// Parse validates a configuration document against baseDir.
func Parse(data []byte, baseDir string) (*Document, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	for key := range raw.Settings {
		if !settingsKeys[key] {
			return nil, &Error{Kind: ErrUnknownField, Field: "settings." + key}
		}
	}
	for id, block := range raw.Designs {
		for key := range block {
			if !designKeys[key] {
				return nil, &Error{Kind: ErrUnknownField, Field: "designs." + id + "." + key}
			}
		}
	}

	doc := &Document{
		DesignDir: baseDir,
		settings:  raw.Settings,
		designs:   raw.Designs,
	}
	if rawDir, ok := raw.Settings["design_dir"]; ok {
		var dir string
		if err := json.Unmarshal(rawDir, &dir); err != nil {
			return nil, invalidf("design_dir", "%v", err)
		}
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(baseDir, dir)
		}
		doc.DesignDir = dir
	}
	return doc, nil
}

// DesignIDs returns every design identifier in the document, sorted.
func (d *Document) DesignIDs() []string {
	ids := make([]string, 0, len(d.designs))
	for id := range d.designs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Has reports whether the document defines the design.
func (d *Document) Has(id string) bool {
	_, ok := d.designs[id]
	return ok
}

// Resolve overlays a design's overrides onto the global defaults,
// field-by-field, and validates the result. Resolution is pure: it reads
// no shared mutable state, so designs resolve identically in any order.
func (d *Document) Resolve(id string) (Resolved, error) {
	r := Resolved{
		DesignID:     id,
		Density:      DefaultDensity,
		Unit:         DefaultUnit,
		BleedWidth:   DefaultBleedWidth,
		CutOffset:    DefaultCutOffset,
		Corner:       CornerRounded,
		CornerRadius: DefaultCornerRadius,
		AspectLock:   true,
		Sizes:        DefaultSizes(),
	}

	if err := apply(&r, d.settings); err != nil {
		return Resolved{}, err
	}
	if block, ok := d.designs[id]; ok {
		if err := apply(&r, block); err != nil {
			return Resolved{}, err
		}
	}
	if err := validate(&r); err != nil {
		return Resolved{}, err
	}
	return r, nil
}

func apply(r *Resolved, block map[string]json.RawMessage) error {
	for key, raw := range block {
		var err error
		switch key {
		case "density":
			err = json.Unmarshal(raw, &r.Density)
		case "unit":
			err = json.Unmarshal(raw, &r.Unit)
		case "bleed_width":
			err = json.Unmarshal(raw, &r.BleedWidth)
		case "cut_offset":
			err = json.Unmarshal(raw, &r.CutOffset)
		case "corner":
			err = json.Unmarshal(raw, &r.Corner)
		case "corner_radius":
			err = json.Unmarshal(raw, &r.CornerRadius)
		case "width":
			err = json.Unmarshal(raw, &r.Width)
		case "height":
			err = json.Unmarshal(raw, &r.Height)
		case "aspect_lock":
			err = json.Unmarshal(raw, &r.AspectLock)
		case "sizes":
			err = json.Unmarshal(raw, &r.Sizes)
		case "art":
			err = json.Unmarshal(raw, &r.ArtFile)
		case "mask":
			err = json.Unmarshal(raw, &r.MaskFile)
		case "design_dir":
			// Handled at document scope.
		}
		if err != nil {
			return invalidf(key, "%v", err)
		}
	}
	return nil
}

func validate(r *Resolved) error {
	if r.Density <= 0 {
		return invalidf("density", "must be positive, got %g", r.Density)
	}
	if r.BleedWidth < 0 {
		return invalidf("bleed_width", "must be non-negative, got %g", r.BleedWidth)
	}
	if r.CornerRadius < 0 {
		return invalidf("corner_radius", "must be non-negative, got %g", r.CornerRadius)
	}
	if r.Corner != CornerRounded && r.Corner != CornerSharp {
		return invalidf("corner", "must be %q or %q, got %q", CornerRounded, CornerSharp, r.Corner)
	}
	if r.Width < 0 {
		return invalidf("width", "must be positive, got %g", r.Width)
	}
	if r.Height < 0 {
		return invalidf("height", "must be positive, got %g", r.Height)
	}
	if r.Height > 0 && r.Width == 0 {
		return invalidf("height", "height without width")
	}
	for _, s := range r.Sizes {
		if s <= 0 {
			return invalidf("sizes", "must be positive, got %g", s)
		}
	}
	if r.Unit == "" {
		return invalidf("unit", "must not be empty")
	}
	return nil
}
