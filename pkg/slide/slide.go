// Package slide exposes one whole-slide image file for batch processing:
// native dimensions, down-scaled renditions and deterministic output paths.
package slide

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/ajinkya-kulkarni/histolab/internal/utils"
	"github.com/ajinkya-kulkarni/histolab/pkg/wsi"
)

const (
	// DefaultScaleFactor is the down-scaling factor applied when callers
	// do not choose one.
	DefaultScaleFactor = 32

	// ThumbnailSize bounds both sides of saved thumbnails.
	ThumbnailSize = 300

	imgExt = "png"

	thumbnailsDir = "thumbnails"
)

// Slide wraps one on-disk whole-slide image path plus the directory where
// processed renditions are written. It holds no open resources; every read
// acquires the container, uses it, and releases it.
type Slide struct {
	path          string
	processedPath string
}

// New returns a Slide for the container at path writing renditions under
// processedPath.
func New(path, processedPath string) *Slide {
	return &Slide{path: path, processedPath: processedPath}
}

// Path returns the slide container path.
func (s *Slide) Path() string {
	return s.path
}

// Name returns the base filename with the extension stripped. It is stable
// across calls and independent of the host path separator.
func (s *Slide) Name() string {
	base := filepath.Base(s.path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Dimensions reads the native (width, height) of the slide. Each call reads
// fresh from disk; failures surface as wsi.ErrNotFound or wsi.ErrCorrupt.
func (s *Slide) Dimensions() (width, height int, err error) {
	c, err := wsi.Open(s.path)
	if err != nil {
		return 0, 0, err
	}
	defer c.Close()

	width, height = c.Dimensions()
	return width, height, nil
}

// ResampledDimensions returns the native dimensions together with the
// dimensions scaled down by scaleFactor using floor division. Scaled
// dimensions of 0 are valid for scale factors exceeding the native size.
func (s *Slide) ResampledDimensions(scaleFactor int) (largeW, largeH, newW, newH int, err error) {
	if scaleFactor <= 0 {
		return 0, 0, 0, 0, fmt.Errorf("slide: scale factor must be positive, got %d", scaleFactor)
	}
	largeW, largeH, err = s.Dimensions()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return largeW, largeH, largeW / scaleFactor, largeH / scaleFactor, nil
}

// Resampled is a down-scaled rendition of a slide.
type Resampled struct {
	// Image is the scaled rendition with any alpha channel discarded.
	Image *image.NRGBA

	// Pix holds the RGB pixel data in row-major order, Height×Width×3 bytes.
	Pix []uint8

	Width  int
	Height int
}

// Resample produces a down-scaled rendition of the slide. It opens the
// container once, selects the best level whose downsample factor does not
// exceed scaleFactor, reads the full region at that level, drops the alpha
// channel and resizes bilinearly to the floor-divided target dimensions.
func (s *Slide) Resample(scaleFactor int) (*Resampled, error) {
	if scaleFactor <= 0 {
		return nil, fmt.Errorf("slide: scale factor must be positive, got %d", scaleFactor)
	}

	c, err := wsi.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	largeW, largeH := c.Dimensions()
	newW, newH := largeW/scaleFactor, largeH/scaleFactor

	level := c.BestLevelForDownsample(float64(scaleFactor))
	levelW, levelH, err := c.LevelDimensions(level)
	if err != nil {
		return nil, err
	}

	region, err := c.ReadRegion(0, 0, level, levelW, levelH)
	if err != nil {
		return nil, err
	}

	var img *image.NRGBA
	if newW < 1 || newH < 1 {
		img = image.NewNRGBA(image.Rect(0, 0, newW, newH))
	} else {
		img = imaging.Resize(dropAlpha(region), newW, newH, imaging.Linear)
	}

	return &Resampled{Image: img, Pix: flattenRGB(img), Width: newW, Height: newH}, nil
}

// ResampledArray returns only the RGB byte array of Resample.
func (s *Slide) ResampledArray(scaleFactor int) ([]uint8, error) {
	r, err := s.Resample(scaleFactor)
	if err != nil {
		return nil, err
	}
	return r.Pix, nil
}

// ScaledImagePath returns the deterministic output path for the rendition
// at scaleFactor:
//
//	<processedPath>/<name>-<scaleFactor>x-<origW>x<origH>-<newW>x<newH>.png
//
// It performs no filesystem writes and may be called before the output
// directory exists. When the slide dimensions cannot be read the returned
// path degrades to the wildcard pattern <processedPath>/<name>*.png.
func (s *Slide) ScaledImagePath(scaleFactor int) string {
	largeW, largeH, newW, newH, err := s.ResampledDimensions(scaleFactor)
	if err != nil {
		return filepath.Join(s.processedPath, fmt.Sprintf("%s*.%s", s.Name(), imgExt))
	}
	name := fmt.Sprintf("%s-%dx-%dx%d-%dx%d.%s",
		s.Name(), scaleFactor, largeW, largeH, newW, newH, imgExt)
	return filepath.Join(s.processedPath, name)
}

// ThumbnailPath returns the fixed thumbnail output path:
//
//	<processedPath>/thumbnails/<name>.png
func (s *Slide) ThumbnailPath() string {
	return filepath.Join(s.processedPath, thumbnailsDir, fmt.Sprintf("%s.%s", s.Name(), imgExt))
}

// SaveScaledImage resamples the slide at scaleFactor and writes the result
// to ScaledImagePath(scaleFactor), creating the output directory when
// missing and overwriting any existing file at that path.
func (s *Slide) SaveScaledImage(scaleFactor int) error {
	if err := utils.EnsureDir(s.processedPath); err != nil {
		return fmt.Errorf("slide %s: %w", s.Name(), err)
	}

	r, err := s.Resample(scaleFactor)
	if err != nil {
		return err
	}

	if err := imaging.Save(r.Image, s.ScaledImagePath(scaleFactor)); err != nil {
		return fmt.Errorf("slide %s: save scaled image: %w", s.Name(), err)
	}
	return nil
}

// SaveThumbnail writes an aspect-preserving thumbnail bounded by
// ThumbnailSize×ThumbnailSize to ThumbnailPath, creating the thumbnails
// directory when missing.
func (s *Slide) SaveThumbnail() error {
	if err := utils.EnsureDir(s.processedPath); err != nil {
		return fmt.Errorf("slide %s: %w", s.Name(), err)
	}

	c, err := wsi.Open(s.path)
	if err != nil {
		return err
	}
	defer c.Close()

	thumb, err := c.Thumbnail(ThumbnailSize, ThumbnailSize)
	if err != nil {
		return err
	}

	path := s.ThumbnailPath()
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("slide %s: %w", s.Name(), err)
	}
	if err := imaging.Save(thumb, path); err != nil {
		return fmt.Errorf("slide %s: save thumbnail: %w", s.Name(), err)
	}
	return nil
}

// dropAlpha clones the image into NRGBA and forces every pixel opaque.
func dropAlpha(img image.Image) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}

// flattenRGB extracts the RGB triplets of an NRGBA image in row-major order.
func flattenRGB(img *image.NRGBA) []uint8 {
	b := img.Bounds()
	out := make([]uint8, 0, b.Dx()*b.Dy()*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[(y-b.Min.Y)*img.Stride:]
		for x := 0; x < b.Dx(); x++ {
			out = append(out, row[x*4], row[x*4+1], row[x*4+2])
		}
	}
	return out
}
