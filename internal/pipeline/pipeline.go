// Package pipeline runs the per-design processing chain and the batch
// driver that orchestrates it.
package pipeline

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"path/filepath"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"sticker-press/internal/bleed"
	"sticker-press/internal/config"
	"sticker-press/internal/mask"
	"sticker-press/internal/offset"
	"sticker-press/internal/scale"
	"sticker-press/pkg/geometry"
)

// File naming convention shared with the artists' upload folders.
const (
	SuffixArt       = "_art.png"
	SuffixMask      = "_mask.png"
	SuffixFullBleed = "_full_bleed.png"
	SuffixCutMask   = "_cut_mask.png"
	SuffixPreview   = "_preview.png"
	SuffixInfo      = "_info.json"
)

// Info is the machine-readable sidecar carrying a design's resolved
// physical size, so the design tool and the order summary can import at
// correct scale without manual measurement.
type Info struct {
	Name        string  `json:"name"`
	Unit        string  `json:"unit"`
	Density     float64 `json:"density"`
	SizeWidth   float64 `json:"size_width"`
	SizeHeight  float64 `json:"size_height"`
	PixelWidth  int     `json:"pixel_width"`
	PixelHeight int     `json:"pixel_height"`
}

// Result holds one design's computed artifacts before they are written.
type Result struct {
	DesignID  string
	Physical  geometry.Size
	Unit      string
	FullBleed *image.RGBA
	CutMask   *image.RGBA
	Preview   *image.RGBA
	Info      Info
}

// Process runs the full computation for one design: load, normalize,
// offset, composite, scale. It touches nothing durable; writing is the
// driver's job.
func Process(res config.Resolved, designDir string) (*Result, error) {
	art, maskImg, err := loadInputs(res, designDir)
	if err != nil {
		return nil, err
	}
	if !art.Rect.Size().Eq(maskImg.Rect.Size()) {
		return nil, fmt.Errorf("artwork %v and mask %v are not pixel-aligned",
			art.Rect.Size(), maskImg.Rect.Size())
	}

	canonical, err := mask.Normalize(maskImg)
	if err != nil {
		return nil, err
	}

	cutPx := res.CutOffset * res.Density
	bleedPx := res.BleedWidth * res.Density
	opts := offset.Options{
		Corner:       offset.CornerRounded,
		CornerRadius: res.CornerRadius * res.Density,
		FillHoles:    true,
	}
	if res.Corner == config.CornerSharp {
		opts.Corner = offset.CornerSharp
	}

	cutB, err := offset.Offset(canonical, cutPx, opts)
	if err != nil {
		return nil, err
	}
	// The bleed must clear the cut line, not just the artwork: dilate past
	// any outward cut offset by the full bleed width.
	bleedB, err := offset.Offset(canonical, math.Max(cutPx, 0)+bleedPx, opts)
	if err != nil {
		return nil, err
	}

	full, err := bleed.Composite(art, canonical, bleedB)
	if err != nil {
		return nil, err
	}
	cutRaster := bleed.CutRaster(cutB)
	preview := bleed.PreviewRaster(art, bleedB, cutB)

	result := &Result{DesignID: res.DesignID, Unit: res.Unit}
	if err := result.applySizing(res, bleedB.Bounds, full, cutRaster, preview); err != nil {
		return nil, err
	}

	result.Info = Info{
		Name:        res.DesignID,
		Unit:        res.Unit,
		Density:     res.Density,
		SizeWidth:   result.Physical.Width,
		SizeHeight:  result.Physical.Height,
		PixelWidth:  result.FullBleed.Rect.Dx(),
		PixelHeight: result.FullBleed.Rect.Dy(),
	}
	return result, nil
}

// applySizing crops the rasters to the bleed bounding box and sizes them to
// the configured physical target.
//
// Auto mode (no target size) snaps the bleed extent up to the next stock
// square and pads, copying pixels byte-exact. An explicit target resamples
// with the one fixed Catmull-Rom filter.
func (r *Result) applySizing(res config.Resolved, bbox geometry.RectInt, full, cut, preview *image.RGBA) error {
	bw, bh := bbox.Width, bbox.Height

	if res.Width == 0 {
		long := max(bw, bh)
		size, err := scale.SnapSize(scale.ToPhysical(long, res.Density), res.Sizes)
		if err != nil {
			return err
		}
		targetPx := scale.PixelExtent(size, res.Density)
		r.Physical = geometry.Size{Width: size, Height: size}
		r.FullBleed = scale.FitToCanvas(full, bbox, targetPx, targetPx)
		r.CutMask = scale.FitToCanvas(cut, bbox, targetPx, targetPx)
		r.Preview = scale.FitToCanvas(preview, bbox, targetPx, targetPx)
		return nil
	}

	crop := func(img *image.RGBA) *image.RGBA {
		return scale.FitToCanvas(img, bbox, bw, bh)
	}

	tw := scale.PixelExtent(res.Width, res.Density)
	th := tw
	switch {
	case res.Height > 0:
		th = scale.PixelExtent(res.Height, res.Density)
		r.Physical = geometry.Size{Width: res.Width, Height: res.Height}
	case res.AspectLock:
		// Single target length: width fixed, height follows the content.
		th = int(math.Round(float64(tw) * float64(bh) / float64(bw)))
		r.Physical = geometry.Size{Width: res.Width, Height: res.Width * float64(bh) / float64(bw)}
	default:
		r.Physical = geometry.Size{Width: res.Width, Height: res.Width}
	}

	if res.AspectLock && res.Height > 0 {
		// Fit the content inside the target box without distortion.
		s := math.Min(float64(tw)/float64(bw), float64(th)/float64(bh))
		rw := int(math.Round(float64(bw) * s))
		rh := int(math.Round(float64(bh) * s))
		pad := func(img *image.RGBA) *image.RGBA {
			scaled := scale.Resample(crop(img), rw, rh)
			return scale.FitToCanvas(scaled, geometry.RectInt{Width: rw, Height: rh}, tw, th)
		}
		r.FullBleed = pad(full)
		r.CutMask = rebinarize(pad(cut))
		r.Preview = pad(preview)
		return nil
	}

	if !res.AspectLock {
		if err := scale.CheckAspect(bw, bh, tw, th); err != nil {
			return err
		}
	}
	r.FullBleed = scale.Resample(crop(full), tw, th)
	r.CutMask = rebinarize(scale.Resample(crop(cut), tw, th))
	r.Preview = scale.Resample(crop(preview), tw, th)
	return nil
}

// rebinarize restores a resampled cut raster to pure black-on-transparent;
// the vector trace downstream needs a binary image, not kernel fringe.
func rebinarize(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y).A > mask.Threshold {
				img.SetRGBA(x, y, color.RGBA{0, 0, 0, 255})
			} else {
				img.SetRGBA(x, y, color.RGBA{255, 255, 255, 0})
			}
		}
	}
	return img
}

// loadInputs opens the design's artwork and mask rasters. A design without
// its own mask file falls back to the artwork's alpha channel.
func loadInputs(res config.Resolved, designDir string) (art, maskImg *image.RGBA, err error) {
	artPath := filepath.Join(designDir, res.DesignID+SuffixArt)
	if res.ArtFile != "" {
		artPath = filepath.Join(designDir, res.ArtFile)
	}
	maskPath := filepath.Join(designDir, res.DesignID+SuffixMask)
	if res.MaskFile != "" {
		maskPath = filepath.Join(designDir, res.MaskFile)
	} else if _, statErr := os.Stat(maskPath); statErr != nil {
		maskPath = artPath
	}

	artImg, err := decodeImage(artPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load artwork: %w", err)
	}
	if maskPath == artPath {
		return artImg, artImg, nil
	}
	m, err := decodeImage(maskPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load mask: %w", err)
	}
	return artImg, m, nil
}

func decodeImage(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return toRGBA(img), nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	out := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(out, out.Rect, img, img.Bounds().Min, draw.Src)
	return out
}
