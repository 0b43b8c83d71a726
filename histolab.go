// Package histolab provides batch processing for whole-slide microscopy
// images (WSI): scaled-down renditions, thumbnails and collection-level
// geometry statistics.
//
// Basic usage:
//
//	package main
//
//	import (
//		"fmt"
//		"log"
//
//		"github.com/ajinkya-kulkarni/histolab"
//	)
//
//	func main() {
//		lab := histolab.New("/data/wsi", "/data/processed")
//
//		// Collection statistics plus a width/height scatter chart.
//		stats, chart, err := lab.SlidesStats()
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Printf("%d slides, avg size %.0f px\n", stats.TotalSlides, stats.AvgSize)
//		_ = chart
//
//		// Down-scale every slide by 32 and write thumbnails.
//		if err := lab.SaveScaledImages(32, 0); err != nil {
//			log.Fatal(err)
//		}
//		if err := lab.SaveThumbnails(0); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// The package consists of three main components:
//
// 1. Slide (pkg/slide): one slide file, its resampling and output paths
// 2. SlideSet (pkg/slideset): a directory of slides and its aggregate statistics
// 3. Container (pkg/wsi): read access to the underlying image container
//
// Scaled renditions land at deterministic paths of the form
// <processed>/<name>-<factor>x-<origW>x<origH>-<newW>x<newH>.png and
// thumbnails under <processed>/thumbnails/<name>.png.
package histolab

import (
	"image"

	"github.com/ajinkya-kulkarni/histolab/pkg/slide"
	"github.com/ajinkya-kulkarni/histolab/pkg/slideset"
)

// Version of the histolab library
const Version = "0.1.0"

// DefaultExtensions is the slide file allow-set used by New.
var DefaultExtensions = []string{".svs", ".tif", ".tiff", ".png", ".jpg", ".jpeg", ".bmp", ".webp"}

// Histolab is a high-level interface over one slide directory and its
// processed output directory.
type Histolab struct {
	processedPath string
	set           *slideset.SlideSet
}

// New creates a Histolab over slidesPath writing renditions under
// processedPath, admitting the default slide extensions.
func New(slidesPath, processedPath string) *Histolab {
	return NewWithConfig(slideset.Config{
		SlidesPath:      slidesPath,
		ProcessedPath:   processedPath,
		ValidExtensions: DefaultExtensions,
	})
}

// NewWithConfig creates a Histolab with custom collection configuration.
func NewWithConfig(cfg slideset.Config) *Histolab {
	return &Histolab{
		processedPath: cfg.ProcessedPath,
		set:           slideset.NewWithConfig(cfg),
	}
}

// OpenSlide returns the accessor for one slide file, wired to this
// Histolab's processed path.
func (h *Histolab) OpenSlide(path string) *slide.Slide {
	return slide.New(path, h.processedPath)
}

// Slides enumerates the collection in deterministic (lexicographic) order.
func (h *Histolab) Slides() ([]*slide.Slide, error) {
	return h.set.Slides()
}

// TotalSlides returns the current collection size.
func (h *Histolab) TotalSlides() (int, error) {
	return h.set.TotalSlides()
}

// SlidesDimensions returns one geometry record per slide.
func (h *Histolab) SlidesDimensions() ([]slideset.SlideDimensions, error) {
	return h.set.SlidesDimensions()
}

// SlidesStats returns the aggregate statistics of the collection and a
// scatter chart of slide widths against heights.
func (h *Histolab) SlidesStats() (slideset.Stats, image.Image, error) {
	return h.set.SlidesStats()
}

// SaveScaledImages writes scaled renditions for the first n slides;
// n == 0 processes the whole collection.
func (h *Histolab) SaveScaledImages(scaleFactor, n int) error {
	return h.set.SaveScaledImages(scaleFactor, n)
}

// SaveThumbnails writes thumbnails for the first n slides; n == 0
// processes the whole collection.
func (h *Histolab) SaveThumbnails(n int) error {
	return h.set.SaveThumbnails(n)
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
