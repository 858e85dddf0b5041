package geometry

import "math"

// cross returns the z component of (a-o) x (b-o).
func cross(o, a, b PointInt) int {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// ConvexHull computes the convex hull of a set of pixel points using the
// monotone chain algorithm. Points are sorted by (x, y) so the result is
// fully determined by the input set, independent of input order.
// Returns the hull in counter-clockwise order without repeating the first
// point. Collinear points on the hull edges are dropped.
func ConvexHull(points []PointInt) []PointInt {
	if len(points) < 3 {
		out := make([]PointInt, len(points))
		copy(out, points)
		return out
	}

	pts := make([]PointInt, len(points))
	copy(pts, points)
	sortPoints(pts)

	// Lower hull
	var lower []PointInt
	for _, p := range pts {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	// Upper hull
	var upper []PointInt
	for i := len(pts) - 1; i >= 0; i-- {
		p := pts[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	// Concatenate, dropping the duplicated endpoints.
	hull := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	return hull
}

// sortPoints sorts by x, then y (insertion sort; hull inputs are boundary
// pixels, already nearly sorted by construction).
func sortPoints(pts []PointInt) {
	for i := 1; i < len(pts); i++ {
		p := pts[i]
		j := i - 1
		for j >= 0 && (pts[j].X > p.X || (pts[j].X == p.X && pts[j].Y > p.Y)) {
			pts[j+1] = pts[j]
			j--
		}
		pts[j+1] = p
	}
}

// MiterPolygon is a convex polygon produced by offsetting another convex
// polygon outward with mitered (sharp) corners.
type MiterPolygon struct {
	Vertices []Point2D
	// Reach holds, per source vertex, the distance from the source vertex
	// to its mitered corner. Pixels farther than Reach from every source
	// vertex cannot belong to a miter spike.
	Reach []float64
}

// OffsetConvexMiter offsets a counter-clockwise convex polygon outward by
// dist, keeping corners sharp. Miter spikes are clamped at dist*miterLimit
// measured from the source vertex, matching the usual stroke miter rule.
func OffsetConvexMiter(hull []PointInt, dist, miterLimit float64) MiterPolygon {
	n := len(hull)
	out := MiterPolygon{
		Vertices: make([]Point2D, 0, n),
		Reach:    make([]float64, 0, n),
	}
	if n == 0 || dist <= 0 {
		for _, p := range hull {
			out.Vertices = append(out.Vertices, p.ToFloat())
			out.Reach = append(out.Reach, 0)
		}
		return out
	}
	if n == 1 {
		// Degenerate hull; no edges to offset.
		out.Vertices = append(out.Vertices, hull[0].ToFloat())
		out.Reach = append(out.Reach, dist)
		return out
	}

	maxReach := dist * miterLimit
	for i := 0; i < n; i++ {
		prev := hull[(i+n-1)%n].ToFloat()
		cur := hull[i].ToFloat()
		next := hull[(i+1)%n].ToFloat()

		n1 := outwardNormal(prev, cur)
		n2 := outwardNormal(cur, next)

		// Intersection of the two offset edge lines:
		// cur + dist*(n1+n2)/(1+n1.n2) for unit normals.
		denom := 1 + n1.X*n2.X + n1.Y*n2.Y
		var miter Point2D
		if denom < 1e-9 {
			// Near-reversal; fall back to the bisector at the clamp length.
			miter = n1.Add(n2).Normalized()
			if miter.Norm() == 0 {
				miter = n1
			}
			miter = cur.Add(miter.Scale(maxReach))
		} else {
			miter = cur.Add(n1.Add(n2).Scale(dist / denom))
		}

		reach := miter.Distance(cur)
		if reach > maxReach {
			miter = cur.Add(miter.Sub(cur).Normalized().Scale(maxReach))
			reach = maxReach
		}

		out.Vertices = append(out.Vertices, miter)
		out.Reach = append(out.Reach, reach)
	}
	return out
}

// outwardNormal returns the unit normal of edge a->b pointing away from the
// interior of a counter-clockwise polygon.
func outwardNormal(a, b Point2D) Point2D {
	d := b.Sub(a)
	return Point2D{X: d.Y, Y: -d.X}.Normalized()
}

// Contains reports whether p lies inside or on the polygon boundary.
func (m MiterPolygon) Contains(p Point2D) bool {
	n := len(m.Vertices)
	if n < 3 {
		return false
	}
	const eps = 1e-9
	for i := 0; i < n; i++ {
		a := m.Vertices[i]
		b := m.Vertices[(i+1)%n]
		// Counter-clockwise polygon: interior is on the left of each edge.
		c := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
		if c < -eps {
			return false
		}
	}
	return true
}

// BoundingBox returns the tight pixel bounding box of the polygon.
func (m MiterPolygon) BoundingBox() RectInt {
	if len(m.Vertices) == 0 {
		return RectInt{}
	}
	minX, minY := m.Vertices[0].X, m.Vertices[0].Y
	maxX, maxY := minX, minY
	for _, v := range m.Vertices[1:] {
		minX = math.Min(minX, v.X)
		minY = math.Min(minY, v.Y)
		maxX = math.Max(maxX, v.X)
		maxY = math.Max(maxY, v.Y)
	}
	x := int(math.Floor(minX))
	y := int(math.Floor(minY))
	return RectInt{
		X:      x,
		Y:      y,
		Width:  int(math.Ceil(maxX)) - x + 1,
		Height: int(math.Ceil(maxY)) - y + 1,
	}
}
