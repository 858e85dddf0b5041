package offset

import (
	"gonum.org/v1/gonum/mat"
)

// unreachable is larger than any squared pixel distance in a real image.
const unreachable = float64(1 << 52)

// field holds an exact squared Euclidean distance transform over a local
// grid, along with the seed pixel realizing each distance.
type field struct {
	w, h  int
	dist2 *mat.Dense // squared distance to nearest seed
	siteX []int32    // local coords of nearest seed, row-major
	siteY []int32
}

// transform computes the exact squared Euclidean distance from every grid
// cell to the nearest seed cell, using the two-pass lower-envelope method
// (Felzenszwalb & Huttenlocher). All intermediate values are integers held
// exactly in float64, so results are bit-reproducible.
//
// Ties between equidistant seeds resolve to the smaller column index, then
// the smaller row index. This is the fixed tie rule relied on by the bleed
// compositor.
func transform(w, h int, seed func(x, y int) bool) *field {
	f := &field{
		w:     w,
		h:     h,
		dist2: mat.NewDense(h, w, nil),
		siteX: make([]int32, w*h),
		siteY: make([]int32, w*h),
	}

	// Vertical pass: per column, distance to the nearest seed in that
	// column and its row. A downward then upward sweep; the upward sweep
	// replaces only on strict improvement, so ties keep the smaller row.
	colD := mat.NewDense(h, w, nil)
	colY := make([]int32, w*h)
	for x := 0; x < w; x++ {
		d := unreachable
		var sy int32 = -1
		for y := 0; y < h; y++ {
			if seed(x, y) {
				d = 0
				sy = int32(y)
			} else if d < unreachable {
				d++
			}
			colD.Set(y, x, d)
			colY[y*w+x] = sy
		}
		d = unreachable
		sy = -1
		for y := h - 1; y >= 0; y-- {
			if seed(x, y) {
				d = 0
				sy = int32(y)
			} else if d < unreachable {
				d++
			}
			if d < colD.At(y, x) {
				colD.Set(y, x, d)
				colY[y*w+x] = sy
			}
		}
	}

	// Horizontal pass: per row, minimize (x-x')^2 + colD(x')^2 over x'
	// with a lower envelope of parabolas. Scanning resumes from the
	// leftmost parabola, so equal-height candidates keep the smaller
	// column.
	v := make([]int, w)
	z := make([]float64, w+1)
	fRow := make([]float64, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := colD.At(y, x)
			if d >= unreachable {
				fRow[x] = unreachable
			} else {
				fRow[x] = d * d
			}
		}

		k := 0
		v[0] = 0
		z[0] = -unreachable
		z[1] = unreachable
		for q := 1; q < w; q++ {
			fq := fRow[q] + float64(q*q)
			for {
				p := v[k]
				s := (fq - (fRow[p] + float64(p*p))) / float64(2*q-2*p)
				if s <= z[k] {
					k--
					continue
				}
				k++
				v[k] = q
				z[k] = s
				z[k+1] = unreachable
				break
			}
		}

		k = 0
		for x := 0; x < w; x++ {
			for z[k+1] < float64(x) {
				k++
			}
			p := v[k]
			dx := float64(x - p)
			d2 := dx*dx + fRow[p]
			if d2 >= unreachable {
				d2 = unreachable
			}
			f.dist2.Set(y, x, d2)
			f.siteX[y*w+x] = int32(p)
			f.siteY[y*w+x] = colY[y*w+p]
		}
	}

	return f
}

// at returns the squared distance at a local grid cell.
func (f *field) at(x, y int) float64 {
	return f.dist2.At(y, x)
}

// site returns the local coordinates of the nearest seed to a cell.
// Valid only when at least one seed exists.
func (f *field) site(x, y int) (int, int) {
	i := y*f.w + x
	return int(f.siteX[i]), int(f.siteY[i])
}
