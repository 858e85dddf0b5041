package offset

import (
	"errors"
	"testing"

	"sticker-press/internal/mask"
	"sticker-press/pkg/geometry"
)

// circleMask builds a canonical mask with a filled circle.
func circleMask(t *testing.T, canvas, cx, cy, r int) *mask.Canonical {
	t.Helper()
	bm := mask.NewBitmap(canvas, canvas)
	for y := 0; y < canvas; y++ {
		for x := 0; x < canvas; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				bm.Set(x, y, true)
			}
		}
	}
	return canonical(t, bm)
}

func rectMask(t *testing.T, canvas int, r geometry.RectInt) *mask.Canonical {
	t.Helper()
	bm := mask.NewBitmap(canvas, canvas)
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			bm.Set(x, y, true)
		}
	}
	return canonical(t, bm)
}

func canonical(t *testing.T, bm *mask.Bitmap) *mask.Canonical {
	t.Helper()
	b := bm.Bounds()
	if b.Empty() {
		t.Fatal("mask fixture is empty")
	}
	return &mask.Canonical{Bitmap: bm, Bounds: b}
}

// subset reports whether every set pixel of a is set in b.
func subset(a, b *Boundary) bool {
	for i, v := range a.Bitmap.Pix {
		if v && !b.Bitmap.Pix[i] {
			return false
		}
	}
	return true
}

func TestOffsetZeroIsIdentity(t *testing.T) {
	c := circleMask(t, 100, 50, 50, 30)
	b, err := Offset(c, 0, Options{})
	if err != nil {
		t.Fatalf("Offset: %v", err)
	}
	for i, v := range b.Bitmap.Pix {
		if v != c.Bitmap.Pix[i] {
			t.Fatalf("pixel %d changed under zero offset", i)
		}
	}
}

func TestCircleBleedScenario(t *testing.T) {
	// 600x600 circular mask, radius 250, centered; bleed 37.5px must give
	// a 575px bleed bounding box (radius 287.5 truncated to the pixel
	// grid), the 300 DPI / 0.125in scenario.
	c := circleMask(t, 600, 300, 300, 250)
	b, err := Offset(c, 37.5, Options{})
	if err != nil {
		t.Fatalf("Offset: %v", err)
	}
	if b.Bounds.Width != 575 || b.Bounds.Height != 575 {
		t.Errorf("bleed bounds = %dx%d, want 575x575", b.Bounds.Width, b.Bounds.Height)
	}
}

func TestOffsetMonotonic(t *testing.T) {
	c := circleMask(t, 200, 100, 100, 40)
	dists := []float64{-10, -5, 0, 5, 10, 20}

	var prev *Boundary
	for _, d := range dists {
		b, err := Offset(c, d, Options{})
		if err != nil {
			t.Fatalf("Offset(%g): %v", d, err)
		}
		if prev != nil && !subset(prev, b) {
			t.Errorf("offset region shrank between distances, at %g", d)
		}
		prev = b
	}
}

func TestOffsetContainment(t *testing.T) {
	c := circleMask(t, 200, 100, 100, 40)
	for _, d := range []float64{0, 1, 7.5, 25} {
		b, err := Offset(c, d, Options{})
		if err != nil {
			t.Fatalf("Offset(%g): %v", d, err)
		}
		for i, v := range c.Bitmap.Pix {
			if v && !b.Bitmap.Pix[i] {
				t.Fatalf("mask escapes its own bleed boundary at %g", d)
			}
		}
	}
}

func TestErosion(t *testing.T) {
	// A 21px square eroded by 3 keeps pixels at least 3 from the
	// background: a 17px square.
	c := rectMask(t, 50, geometry.RectInt{X: 10, Y: 10, Width: 21, Height: 21})
	b, err := Offset(c, -3, Options{})
	if err != nil {
		t.Fatalf("Offset: %v", err)
	}
	want := geometry.RectInt{X: 12, Y: 12, Width: 17, Height: 17}
	if b.Bounds != want {
		t.Errorf("eroded bounds = %+v, want %+v", b.Bounds, want)
	}
}

func TestInsufficientMargin(t *testing.T) {
	c := rectMask(t, 20, geometry.RectInt{X: 8, Y: 8, Width: 4, Height: 4})
	_, err := Offset(c, 10, Options{})
	if !errors.Is(err, geometry.ErrInsufficientMargin) {
		t.Errorf("err = %v, want ErrInsufficientMargin", err)
	}
}

func TestSharpCornersStaySharp(t *testing.T) {
	r := geometry.RectInt{X: 20, Y: 20, Width: 20, Height: 20}
	c := rectMask(t, 60, r)

	rounded, err := Offset(c, 5, Options{Corner: CornerRounded})
	if err != nil {
		t.Fatalf("rounded: %v", err)
	}
	sharp, err := Offset(c, 5, Options{Corner: CornerSharp})
	if err != nil {
		t.Fatalf("sharp: %v", err)
	}

	// A pixel diagonally off the corner: distance 4*sqrt(2) > 5 from the
	// nearest mask pixel, so the disk offset rounds it away, but the
	// mitered offset of the rectangle covers it.
	px, py := r.X-4, r.Y-4
	if rounded.Bitmap.At(px, py) {
		t.Error("disk offset should round off the corner pixel")
	}
	if !sharp.Bitmap.At(px, py) {
		t.Error("sharp mode should keep the corner pixel")
	}

	// The sharp offset of a rectangle is exactly the rectangle grown by 5.
	want := r.Expand(5)
	if sharp.Bounds != want {
		t.Errorf("sharp bounds = %+v, want %+v", sharp.Bounds, want)
	}
	if !subset(rounded, sharp) {
		t.Error("sharp region must contain the rounded region")
	}
}

func TestRoundedCornerRadius(t *testing.T) {
	// With a minimum corner radius, a square's offset corners pull in:
	// the extreme corner pixel of the mitered expansion must be absent,
	// while the edge midpoints still reach the full offset.
	r := geometry.RectInt{X: 20, Y: 20, Width: 20, Height: 20}
	c := rectMask(t, 64, r)

	b, err := Offset(c, 5, Options{Corner: CornerRounded, CornerRadius: 4})
	if err != nil {
		t.Fatalf("Offset: %v", err)
	}
	if b.Bitmap.At(r.X-5, r.Y-5) {
		t.Error("corner pixel should be rounded away")
	}
	if !b.Bitmap.At(r.X+10, r.Y-5) {
		t.Error("edge midpoint should reach the full offset")
	}
}

func TestOffsetFillsHoles(t *testing.T) {
	bm := mask.NewBitmap(60, 60)
	for y := 15; y < 45; y++ {
		for x := 15; x < 45; x++ {
			bm.Set(x, y, true)
		}
	}
	for y := 25; y < 35; y++ {
		for x := 25; x < 35; x++ {
			bm.Set(x, y, false)
		}
	}
	c := canonical(t, bm)

	b, err := Offset(c, 2, Options{FillHoles: true})
	if err != nil {
		t.Fatalf("Offset: %v", err)
	}
	if !b.Bitmap.At(30, 30) {
		t.Error("enclosed hole should be filled")
	}
}

func TestNearestInside(t *testing.T) {
	// Columns of distinct parity: nearest site for a pixel just left of
	// the mask must be the mask's left edge at the same row.
	c := rectMask(t, 40, geometry.RectInt{X: 15, Y: 10, Width: 10, Height: 20})
	n := NearestInside(c, geometry.RectInt{X: 5, Y: 5, Width: 30, Height: 30})

	sx, sy := n.At(10, 20)
	if sx != 15 || sy != 20 {
		t.Errorf("nearest of (10,20) = (%d,%d), want (15,20)", sx, sy)
	}

	// Inside the mask a pixel is its own nearest site.
	sx, sy = n.At(18, 12)
	if sx != 18 || sy != 12 {
		t.Errorf("nearest of (18,12) = (%d,%d), want itself", sx, sy)
	}

}

func TestNearestInsideTieBreak(t *testing.T) {
	bm := mask.NewBitmap(30, 30)
	bm.Set(10, 10, true)
	bm.Set(20, 10, true)
	bm.Set(10, 20, true)
	c := canonical(t, bm)
	n := NearestInside(c, geometry.RectInt{Width: 30, Height: 30})

	// Equidistant columns: the smaller column wins.
	sx, sy := n.At(15, 10)
	if sx != 10 || sy != 10 {
		t.Errorf("nearest of (15,10) = (%d,%d), want (10,10)", sx, sy)
	}

	// Equidistant rows in one column: the smaller row wins.
	sx, sy = n.At(10, 15)
	if sx != 10 || sy != 10 {
		t.Errorf("nearest of (10,15) = (%d,%d), want (10,10)", sx, sy)
	}
}

func TestOffsetDeterministic(t *testing.T) {
	c := circleMask(t, 120, 60, 60, 35)
	a, err := Offset(c, 12.5, Options{})
	if err != nil {
		t.Fatalf("Offset: %v", err)
	}
	b, err := Offset(c, 12.5, Options{})
	if err != nil {
		t.Fatalf("Offset: %v", err)
	}
	for i := range a.Bitmap.Pix {
		if a.Bitmap.Pix[i] != b.Bitmap.Pix[i] {
			t.Fatalf("pixel %d differs between identical runs", i)
		}
	}
}
