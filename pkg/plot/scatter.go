// Package plot renders simple charts for slide collection statistics.
//
// Rendering happens on a fresh software drawing context per call; no
// process-global plotting state is touched.
package plot

import (
	"errors"
	"image"
	"math"
	"math/rand"

	"github.com/gogpu/gg"
)

// Point is one sample in a scatter chart.
type Point struct {
	X float64
	Y float64
}

// Options control scatter rendering. The zero value selects sane defaults.
type Options struct {
	// Width and Height are the canvas size in pixels; 640×480 when zero.
	Width  int
	Height int

	// PointRadius overrides the marker radius derived from the sample count.
	PointRadius float64

	// Seed drives the arbitrary marker colors. A fixed default keeps
	// output deterministic unless callers ask otherwise.
	Seed int64
}

const (
	defaultWidth  = 640
	defaultHeight = 480
	margin        = 48.0
)

// Scatter renders the points as filled circles over white with x/y axes.
// Marker size grows with the sample count, mirroring how the source data
// set scales its scatter markers.
func Scatter(points []Point, opts Options) (image.Image, error) {
	if len(points) == 0 {
		return nil, errors.New("plot: no points to render")
	}

	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}

	radius := opts.PointRadius
	if radius <= 0 {
		radius = 2 + math.Sqrt(float64(len(points)))
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	// Degenerate ranges still need a nonzero span to map onto the canvas.
	if maxX == minX {
		maxX = minX + 1
	}
	if maxY == minY {
		maxY = minY + 1
	}

	plotW := float64(width) - 2*margin
	plotH := float64(height) - 2*margin
	toCanvas := func(p Point) (float64, float64) {
		cx := margin + (p.X-minX)/(maxX-minX)*plotW
		cy := float64(height) - margin - (p.Y-minY)/(maxY-minY)*plotH
		return cx, cy
	}

	dc := gg.NewContext(width, height)
	defer dc.Close()

	dc.ClearWithColor(gg.White)

	// Axes.
	dc.SetRGB(0.25, 0.25, 0.25)
	dc.SetLineWidth(1.5)
	dc.DrawLine(margin, float64(height)-margin, float64(width)-margin, float64(height)-margin)
	dc.DrawLine(margin, margin, margin, float64(height)-margin)
	if err := dc.Stroke(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	for _, p := range points {
		cx, cy := toCanvas(p)
		dc.SetRGBA(rng.Float64(), rng.Float64(), rng.Float64(), 0.7)
		dc.DrawCircle(cx, cy, radius)
		if err := dc.Fill(); err != nil {
			return nil, err
		}
	}

	return dc.Image(), nil
}
