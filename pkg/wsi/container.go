// Package wsi provides read access to whole-slide image containers.
//
// A Container exposes the multi-resolution geometry of one slide file:
// native dimensions, the available downsample levels, region reads and
// bounded thumbnails. The default implementation wraps any image format
// with a registered decoder as a single-level container, the same way a
// plain image is handled when no pyramid metadata is present.
package wsi

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrNotFound reports that the container path does not resolve to a file.
	ErrNotFound = errors.New("wsi: container not found")

	// ErrCorrupt reports that the file exists but is not a readable container.
	ErrCorrupt = errors.New("wsi: corrupt container")

	// ErrClosed reports a read on a closed container.
	ErrClosed = errors.New("wsi: container is closed")
)

// Container is the read capability over one whole-slide image file.
type Container interface {
	// Dimensions returns the native (level 0) pixel dimensions.
	Dimensions() (width, height int)

	// LevelCount returns the number of downsample levels.
	LevelCount() int

	// LevelDimensions returns the pixel dimensions of the given level.
	LevelDimensions(level int) (width, height int, err error)

	// LevelDownsample returns the downsample factor of the given level
	// relative to level 0.
	LevelDownsample(level int) (float64, error)

	// BestLevelForDownsample returns the highest level whose downsample
	// factor does not exceed the requested factor.
	BestLevelForDownsample(factor float64) int

	// ReadRegion decodes the rectangle (x, y, width, height) at the given
	// level. Coordinates are in level pixel space.
	ReadRegion(x, y, level, width, height int) (image.Image, error)

	// Thumbnail returns an aspect-preserving rendition bounded by
	// maxWidth × maxHeight.
	Thumbnail(maxWidth, maxHeight int) (image.Image, error)

	// Close releases any decoded pixel data. The container must not be
	// read after Close.
	Close() error
}

// imageContainer adapts a plain raster file to the Container interface.
// It holds a single level at downsample 1; pixel data is decoded lazily
// on the first region or thumbnail read.
type imageContainer struct {
	path   string
	width  int
	height int
	img    image.Image
	closed bool
}

// Open validates the file at path and returns a container over it.
// It fails with ErrNotFound when the path does not resolve to a regular
// file and with ErrCorrupt when the file cannot be decoded.
func Open(path string) (Container, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}

	return &imageContainer{path: path, width: cfg.Width, height: cfg.Height}, nil
}

func (c *imageContainer) Dimensions() (int, int) {
	return c.width, c.height
}

func (c *imageContainer) LevelCount() int {
	return 1
}

func (c *imageContainer) LevelDimensions(level int) (int, int, error) {
	if level != 0 {
		return 0, 0, fmt.Errorf("wsi: level %d out of range [0, %d)", level, c.LevelCount())
	}
	return c.width, c.height, nil
}

func (c *imageContainer) LevelDownsample(level int) (float64, error) {
	if level != 0 {
		return 0, fmt.Errorf("wsi: level %d out of range [0, %d)", level, c.LevelCount())
	}
	return 1.0, nil
}

func (c *imageContainer) BestLevelForDownsample(factor float64) int {
	best := 0
	for level := 0; level < c.LevelCount(); level++ {
		ds, err := c.LevelDownsample(level)
		if err != nil {
			break
		}
		if ds <= factor {
			best = level
		}
	}
	return best
}

func (c *imageContainer) ReadRegion(x, y, level, width, height int) (image.Image, error) {
	if c.closed {
		return nil, ErrClosed
	}
	if level != 0 {
		return nil, fmt.Errorf("wsi: level %d out of range [0, %d)", level, c.LevelCount())
	}

	img, err := c.decode()
	if err != nil {
		return nil, err
	}

	rect := image.Rect(x, y, x+width, y+height)
	if !rect.In(img.Bounds()) {
		return nil, fmt.Errorf("wsi: region %v outside level %d bounds %v", rect, level, img.Bounds())
	}
	return imaging.Crop(img, rect), nil
}

func (c *imageContainer) Thumbnail(maxWidth, maxHeight int) (image.Image, error) {
	if c.closed {
		return nil, ErrClosed
	}
	img, err := c.decode()
	if err != nil {
		return nil, err
	}
	return imaging.Fit(img, maxWidth, maxHeight, imaging.Linear), nil
}

func (c *imageContainer) Close() error {
	c.img = nil
	c.closed = true
	return nil
}

// decode loads the full pixel data once and keeps it until Close.
func (c *imageContainer) decode() (image.Image, error) {
	if c.img != nil {
		return c.img, nil
	}

	img, err := imaging.Open(c.path)
	if err == nil {
		c.img = img
		return img, nil
	}

	// Some webp encodings are not handled by the registered decoder.
	if strings.EqualFold(filepath.Ext(c.path), ".webp") {
		f, ferr := os.Open(c.path)
		if ferr == nil {
			defer f.Close()
			if wimg, werr := webp.Decode(f); werr == nil {
				c.img = wimg
				return wimg, nil
			}
		}
	}

	return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, c.path, err)
}
