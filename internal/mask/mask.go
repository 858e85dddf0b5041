// Package mask reduces a design's boundary mask to a canonical binary form.
package mask

import (
	"image"

	"sticker-press/pkg/geometry"
)

// Threshold is the fixed binarization threshold: a pixel is foreground when
// its alpha (or luma, for masks without an alpha channel) is strictly
// greater than this value out of 255.
const Threshold = 100

// Bitmap is a binary pixel grid. Pixels outside the grid read as background.
type Bitmap struct {
	Width  int
	Height int
	Pix    []bool // row-major, len Width*Height
}

// NewBitmap creates a cleared bitmap.
func NewBitmap(width, height int) *Bitmap {
	return &Bitmap{Width: width, Height: height, Pix: make([]bool, width*height)}
}

// At returns the pixel value, with out-of-range coordinates reading false.
func (b *Bitmap) At(x, y int) bool {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return false
	}
	return b.Pix[y*b.Width+x]
}

// Set sets the pixel value. Out-of-range coordinates are ignored.
func (b *Bitmap) Set(x, y int, v bool) {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return
	}
	b.Pix[y*b.Width+x] = v
}

// Count returns the number of foreground pixels.
func (b *Bitmap) Count() int {
	n := 0
	for _, v := range b.Pix {
		if v {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (b *Bitmap) Clone() *Bitmap {
	out := NewBitmap(b.Width, b.Height)
	copy(out.Pix, b.Pix)
	return out
}

// Bounds returns the tight bounding box of foreground pixels,
// or an empty rectangle if there are none.
func (b *Bitmap) Bounds() geometry.RectInt {
	minX, minY := b.Width, b.Height
	maxX, maxY := -1, -1
	for y := 0; y < b.Height; y++ {
		row := b.Pix[y*b.Width : (y+1)*b.Width]
		for x, v := range row {
			if !v {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if maxX < 0 {
		return geometry.RectInt{}
	}
	return geometry.RectInt{X: minX, Y: minY, Width: maxX - minX + 1, Height: maxY - minY + 1}
}

// Canonical is the binarized boundary mask plus its tight bounding box.
type Canonical struct {
	Bitmap *Bitmap
	Bounds geometry.RectInt
}

// Normalize binarizes a raw mask image. Foreground is alpha > Threshold,
// falling back to luma > Threshold for fully-opaque images with no alpha
// information. Fails if the mask has no foreground, or if foreground pixels
// touch the image border (no room for any outward offset).
func Normalize(img image.Image) (*Canonical, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, &Error{Kind: ErrEmpty, Msg: "zero-sized mask image"}
	}

	bm := NewBitmap(w, h)
	opaque := true
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			_, _, _, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			if a>>8 != 255 {
				opaque = false
			}
			bm.Pix[y*w+x] = a>>8 > Threshold
		}
	}

	// A mask with no transparency carries its shape in intensity instead.
	if opaque {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				luma := (299*(r>>8) + 587*(g>>8) + 114*(b>>8)) / 1000
				bm.Pix[y*w+x] = luma > Threshold
			}
		}
	}

	rect := bm.Bounds()
	if rect.Empty() {
		return nil, &Error{Kind: ErrEmpty, Msg: "mask has no foreground pixels"}
	}
	if rect.X == 0 || rect.Y == 0 || rect.X+rect.Width == w || rect.Y+rect.Height == h {
		return nil, &Error{Kind: ErrTouchesEdge, Msg: "mask foreground touches the image border"}
	}

	return &Canonical{Bitmap: bm, Bounds: rect}, nil
}

// FillHoles sets every background region not connected to the image border,
// so fully-enclosed transparent areas cut as solid sticker. Returns the
// number of pixels filled. Connectivity is 4-way on the background.
func (b *Bitmap) FillHoles() int {
	w, h := b.Width, b.Height
	outside := make([]bool, w*h)
	queue := make([]int, 0, 2*(w+h))

	push := func(x, y int) {
		i := y*w + x
		if !outside[i] && !b.Pix[i] {
			outside[i] = true
			queue = append(queue, i)
		}
	}
	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}

	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		x, y := i%w, i/w
		if x > 0 {
			push(x-1, y)
		}
		if x < w-1 {
			push(x+1, y)
		}
		if y > 0 {
			push(x, y-1)
		}
		if y < h-1 {
			push(x, y+1)
		}
	}

	filled := 0
	for i := range b.Pix {
		if !b.Pix[i] && !outside[i] {
			b.Pix[i] = true
			filled++
		}
	}
	return filled
}
