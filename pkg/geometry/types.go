// Package geometry provides basic geometric types used throughout the application.
package geometry

import "math"

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Sub returns the difference of two points.
func (p Point2D) Sub(other Point2D) Point2D {
	return Point2D{X: p.X - other.X, Y: p.Y - other.Y}
}

// Add returns the sum of two points.
func (p Point2D) Add(other Point2D) Point2D {
	return Point2D{X: p.X + other.X, Y: p.Y + other.Y}
}

// Scale returns the point scaled by a factor.
func (p Point2D) Scale(factor float64) Point2D {
	return Point2D{X: p.X * factor, Y: p.Y * factor}
}

// Norm returns the Euclidean length of the point treated as a vector.
func (p Point2D) Norm() float64 {
	return math.Hypot(p.X, p.Y)
}

// Normalized returns the unit vector in the direction of p.
// Returns the zero vector if p has zero length.
func (p Point2D) Normalized() Point2D {
	n := p.Norm()
	if n == 0 {
		return Point2D{}
	}
	return Point2D{X: p.X / n, Y: p.Y / n}
}

// PointInt represents a 2D point with integer pixel coordinates.
type PointInt struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ToFloat converts to Point2D.
func (p PointInt) ToFloat() Point2D {
	return Point2D{X: float64(p.X), Y: float64(p.Y)}
}

// RectInt represents a rectangle with integer pixel coordinates.
type RectInt struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty returns true if the rectangle has no area.
func (r RectInt) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains returns true if the pixel is inside the rectangle.
func (r RectInt) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Expand returns the rectangle grown by margin pixels on every side.
func (r RectInt) Expand(margin int) RectInt {
	return RectInt{
		X:      r.X - margin,
		Y:      r.Y - margin,
		Width:  r.Width + 2*margin,
		Height: r.Height + 2*margin,
	}
}

// Intersect returns the overlap of two rectangles. The result may be empty.
func (r RectInt) Intersect(other RectInt) RectInt {
	x1 := max(r.X, other.X)
	y1 := max(r.Y, other.Y)
	x2 := min(r.X+r.Width, other.X+other.Width)
	y2 := min(r.Y+r.Height, other.Y+other.Height)
	return RectInt{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Union returns the smallest rectangle containing both rectangles.
func (r RectInt) Union(other RectInt) RectInt {
	if r.Empty() {
		return other
	}
	if other.Empty() {
		return r
	}
	x1 := min(r.X, other.X)
	y1 := min(r.Y, other.Y)
	x2 := max(r.X+r.Width, other.X+other.Width)
	y2 := max(r.Y+r.Height, other.Y+other.Height)
	return RectInt{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// In returns true if r lies fully inside other.
func (r RectInt) In(other RectInt) bool {
	if r.Empty() {
		return true
	}
	return r.X >= other.X && r.Y >= other.Y &&
		r.X+r.Width <= other.X+other.Width &&
		r.Y+r.Height <= other.Y+other.Height
}

// Size represents a 2D physical size.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Aspect returns the width/height ratio, or 0 for a degenerate size.
func (s Size) Aspect() float64 {
	if s.Height == 0 {
		return 0
	}
	return s.Width / s.Height
}
