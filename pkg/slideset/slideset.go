// Package slideset aggregates a directory of whole-slide images: it
// enumerates the slide files, collects their geometry and computes summary
// statistics over the collection.
package slideset

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/ajinkya-kulkarni/histolab/internal/utils"
	"github.com/ajinkya-kulkarni/histolab/pkg/plot"
	"github.com/ajinkya-kulkarni/histolab/pkg/slide"
)

// ErrEmptySet reports statistics requested over a collection with no slides.
var ErrEmptySet = errors.New("slideset: empty slide collection")

// Config holds the construction parameters of a SlideSet.
type Config struct {
	// SlidesPath is the directory holding the slide files.
	SlidesPath string

	// ProcessedPath is where renditions and thumbnails are written.
	ProcessedPath string

	// ValidExtensions is the dotted-extension allow-set (e.g. ".svs").
	ValidExtensions []string

	// Workers bounds the pool used by the batch save operations.
	// Zero or negative selects runtime.NumCPU().
	Workers int
}

// SlideSet is a view over the slide files in one directory. It owns no
// slides and caches nothing: every accessor re-reads the filesystem so
// results reflect its state at call time.
type SlideSet struct {
	slidesPath      string
	processedPath   string
	validExtensions []string
	workers         int
}

// New returns a SlideSet over slidesPath writing under processedPath,
// admitting files whose extension is in validExtensions.
func New(slidesPath, processedPath string, validExtensions []string) *SlideSet {
	return NewWithConfig(Config{
		SlidesPath:      slidesPath,
		ProcessedPath:   processedPath,
		ValidExtensions: validExtensions,
	})
}

// NewWithConfig returns a SlideSet built from cfg.
func NewWithConfig(cfg Config) *SlideSet {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &SlideSet{
		slidesPath:      cfg.SlidesPath,
		processedPath:   cfg.ProcessedPath,
		validExtensions: cfg.ValidExtensions,
		workers:         workers,
	}
}

// Slides enumerates the matching files and returns one slide per file.
// Results are ordered lexicographically by filename, so "first n" slicing
// is deterministic across platforms.
func (ss *SlideSet) Slides() ([]*slide.Slide, error) {
	files, err := utils.ListSlideFiles(ss.slidesPath, ss.validExtensions)
	if err != nil {
		return nil, err
	}

	slides := make([]*slide.Slide, 0, len(files))
	for _, name := range files {
		slides = append(slides, slide.New(filepath.Join(ss.slidesPath, name), ss.processedPath))
	}
	return slides, nil
}

// TotalSlides returns the number of slides currently in the collection.
func (ss *SlideSet) TotalSlides() (int, error) {
	slides, err := ss.Slides()
	if err != nil {
		return 0, err
	}
	return len(slides), nil
}

// SlideDimensions describes the native geometry of one slide.
type SlideDimensions struct {
	Slide  string
	Width  int
	Height int
	Size   int // Width × Height
}

// SlidesDimensions reads the geometry of every slide in the collection.
// Aggregation is all-or-nothing: the first unreadable container aborts the
// whole scan so statistics are never silently skewed.
func (ss *SlideSet) SlidesDimensions() ([]SlideDimensions, error) {
	slides, err := ss.Slides()
	if err != nil {
		return nil, err
	}

	dims := make([]SlideDimensions, 0, len(slides))
	for _, s := range slides {
		w, h, err := s.Dimensions()
		if err != nil {
			return nil, fmt.Errorf("slide %s: %w", s.Name(), err)
		}
		dims = append(dims, SlideDimensions{Slide: s.Name(), Width: w, Height: h, Size: w * h})
	}
	return dims, nil
}

// Extreme tags an extremal measurement with the slide that owns it.
type Extreme struct {
	Slide string
	Value int
}

// Stats summarizes the geometry of a slide collection.
type Stats struct {
	TotalSlides int

	MaxWidth  Extreme
	MaxHeight Extreme
	MaxSize   Extreme
	MinWidth  Extreme
	MinHeight Extreme
	MinSize   Extreme

	AvgWidth  float64
	AvgHeight float64
	AvgSize   float64
}

// SlidesStats scans the collection and returns its summary statistics plus
// a scatter chart of width against height. It fails with ErrEmptySet when
// the collection holds no slides.
func (ss *SlideSet) SlidesStats() (Stats, image.Image, error) {
	dims, err := ss.SlidesDimensions()
	if err != nil {
		return Stats{}, nil, err
	}
	if len(dims) == 0 {
		return Stats{}, nil, ErrEmptySet
	}

	widths := make([]float64, len(dims))
	heights := make([]float64, len(dims))
	sizes := make([]float64, len(dims))
	points := make([]plot.Point, len(dims))
	for i, d := range dims {
		widths[i] = float64(d.Width)
		heights[i] = float64(d.Height)
		sizes[i] = float64(d.Size)
		points[i] = plot.Point{X: float64(d.Width), Y: float64(d.Height)}
	}

	stats := Stats{
		TotalSlides: len(dims),
		MaxWidth:    maxBy(dims, func(d SlideDimensions) int { return d.Width }),
		MaxHeight:   maxBy(dims, func(d SlideDimensions) int { return d.Height }),
		MaxSize:     maxBy(dims, func(d SlideDimensions) int { return d.Size }),
		MinWidth:    minBy(dims, func(d SlideDimensions) int { return d.Width }),
		MinHeight:   minBy(dims, func(d SlideDimensions) int { return d.Height }),
		MinSize:     minBy(dims, func(d SlideDimensions) int { return d.Size }),
		AvgWidth:    stat.Mean(widths, nil),
		AvgHeight:   stat.Mean(heights, nil),
		AvgSize:     stat.Mean(sizes, nil),
	}

	chart, err := plot.Scatter(points, plot.Options{})
	if err != nil {
		return Stats{}, nil, fmt.Errorf("slideset: render stats chart: %w", err)
	}

	return stats, chart, nil
}

// SaveScaledImages resamples and saves the first n slides in enumeration
// order at scaleFactor. n == 0 or n exceeding the collection size means
// the whole collection. Slides are processed by a bounded worker pool;
// the first failure is reported after all workers drain.
func (ss *SlideSet) SaveScaledImages(scaleFactor, n int) error {
	return ss.forEachSlide(n, func(s *slide.Slide) error {
		return s.SaveScaledImage(scaleFactor)
	})
}

// SaveThumbnails saves thumbnails for the first n slides in enumeration
// order, with the same n semantics as SaveScaledImages.
func (ss *SlideSet) SaveThumbnails(n int) error {
	return ss.forEachSlide(n, func(s *slide.Slide) error {
		return s.SaveThumbnail()
	})
}

// forEachSlide applies fn to the first n slides using the configured
// worker pool. Every selected slide is attempted even when one fails.
func (ss *SlideSet) forEachSlide(n int, fn func(*slide.Slide) error) error {
	slides, err := ss.Slides()
	if err != nil {
		return err
	}
	if n <= 0 || n > len(slides) {
		n = len(slides)
	}

	if err := utils.EnsureDir(ss.processedPath); err != nil {
		return err
	}

	jobs := make(chan *slide.Slide)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	workers := ss.workers
	if workers > n && n > 0 {
		workers = n
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range jobs {
				if err := fn(s); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
				}
			}
		}()
	}

	for _, s := range slides[:n] {
		jobs <- s
	}
	close(jobs)
	wg.Wait()

	return firstErr
}

// maxBy returns the first record with the maximal key, tagged by slide name.
func maxBy(dims []SlideDimensions, key func(SlideDimensions) int) Extreme {
	best := dims[0]
	for _, d := range dims[1:] {
		if key(d) > key(best) {
			best = d
		}
	}
	return Extreme{Slide: best.Slide, Value: key(best)}
}

// minBy returns the first record with the minimal key, tagged by slide name.
func minBy(dims []SlideDimensions, key func(SlideDimensions) int) Extreme {
	best := dims[0]
	for _, d := range dims[1:] {
		if key(d) < key(best) {
			best = d
		}
	}
	return Extreme{Slide: best.Slide, Value: key(best)}
}
