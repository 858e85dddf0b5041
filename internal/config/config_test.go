package config

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestResolveDefaults(t *testing.T) {
	doc, err := Parse([]byte(`{"designs": {"frog": {}}}`), "/orders")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	r, err := doc.Resolve("frog")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if r.Density != DefaultDensity {
		t.Errorf("density = %g, want %g", r.Density, DefaultDensity)
	}
	if r.BleedWidth != DefaultBleedWidth || r.CutOffset != DefaultCutOffset {
		t.Errorf("bleed/cut = %g/%g", r.BleedWidth, r.CutOffset)
	}
	if r.Corner != CornerRounded || r.CornerRadius != DefaultCornerRadius {
		t.Errorf("corner = %s radius %g", r.Corner, r.CornerRadius)
	}
	if !r.AspectLock {
		t.Error("aspect lock should default on")
	}
	if r.Unit != "in" {
		t.Errorf("unit = %q, want in", r.Unit)
	}
	if len(r.Sizes) != 19 || r.Sizes[0] != 1 || r.Sizes[18] != 10 {
		t.Errorf("sizes = %v", r.Sizes)
	}
}

func TestResolveOverrides(t *testing.T) {
	data := []byte(`{
		"settings": {"density": 600, "bleed_width": 0.1, "corner": "sharp"},
		"designs": {
			"frog": {"density": 150, "width": 2.5, "art": "frog_final.png"},
			"newt": {}
		}
	}`)
	doc, err := Parse(data, ".")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	frog, err := doc.Resolve("frog")
	if err != nil {
		t.Fatalf("Resolve frog: %v", err)
	}
	if frog.Density != 150 {
		t.Errorf("design override lost: density = %g", frog.Density)
	}
	if frog.BleedWidth != 0.1 || frog.Corner != CornerSharp {
		t.Errorf("settings not inherited: bleed %g corner %s", frog.BleedWidth, frog.Corner)
	}
	if frog.Width != 2.5 || frog.ArtFile != "frog_final.png" {
		t.Errorf("width %g art %q", frog.Width, frog.ArtFile)
	}

	newt, err := doc.Resolve("newt")
	if err != nil {
		t.Fatalf("Resolve newt: %v", err)
	}
	if newt.Density != 600 {
		t.Errorf("newt density = %g, want settings value 600", newt.Density)
	}
	if newt.ArtFile != "" {
		t.Errorf("newt art = %q, want convention default", newt.ArtFile)
	}
}

func TestResolveOrderIndependent(t *testing.T) {
	data := []byte(`{
		"settings": {"density": 450},
		"designs": {"a": {"density": 100}, "b": {}}
	}`)
	doc, err := Parse(data, ".")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	// Resolving a must not leak its override into b, in either order.
	if _, err := doc.Resolve("a"); err != nil {
		t.Fatal(err)
	}
	b1, _ := doc.Resolve("b")
	b2, _ := doc.Resolve("b")
	if b1.Density != 450 || b2.Density != 450 {
		t.Errorf("b density = %g/%g, want 450", b1.Density, b2.Density)
	}
}

func TestUnknownFields(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"settings scope", `{"settings": {"densty": 300}}`},
		{"design scope", `{"designs": {"frog": {"bleed": 0.1}}}`},
		{"design_dir in design", `{"designs": {"frog": {"design_dir": "x"}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), ".")
			if !errors.Is(err, ErrUnknownField) {
				t.Errorf("err = %v, want ErrUnknownField", err)
			}
		})
	}
}

func TestInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"zero density", `{"designs": {"x": {"density": 0}}}`},
		{"negative density", `{"designs": {"x": {"density": -300}}}`},
		{"negative bleed", `{"designs": {"x": {"bleed_width": -0.1}}}`},
		{"bad corner", `{"designs": {"x": {"corner": "bevel"}}}`},
		{"negative width", `{"designs": {"x": {"width": -2}}}`},
		{"height without width", `{"designs": {"x": {"height": 2}}}`},
		{"bad size entry", `{"designs": {"x": {"sizes": [1, -2]}}}`},
		{"wrong type", `{"designs": {"x": {"density": "fast"}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.data), ".")
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if _, err := doc.Resolve("x"); !errors.Is(err, ErrInvalidValue) {
				t.Errorf("err = %v, want ErrInvalidValue", err)
			}
		})
	}
}

func TestNegativeCutOffsetIsKissCut(t *testing.T) {
	doc, err := Parse([]byte(`{"designs": {"x": {"cut_offset": -0.03}}}`), ".")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	r, err := doc.Resolve("x")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r.CutOffset != -0.03 {
		t.Errorf("cut offset = %g, want -0.03", r.CutOffset)
	}
}

func TestDesignDirResolution(t *testing.T) {
	doc, err := Parse([]byte(`{"settings": {"design_dir": "art"}}`), "/orders/june")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := filepath.Join("/orders/june", "art")
	if doc.DesignDir != want {
		t.Errorf("design dir = %q, want %q", doc.DesignDir, want)
	}

	doc, err = Parse([]byte(`{"settings": {"design_dir": "/absolute"}}`), "/orders/june")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.DesignDir != "/absolute" {
		t.Errorf("design dir = %q, want /absolute", doc.DesignDir)
	}
}

func TestDesignIDsSorted(t *testing.T) {
	doc, err := Parse([]byte(`{"designs": {"newt": {}, "axolotl": {}, "frog": {}}}`), ".")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ids := doc.DesignIDs()
	want := []string{"axolotl", "frog", "newt"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
}
