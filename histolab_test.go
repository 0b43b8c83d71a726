package histolab

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/ajinkya-kulkarni/histolab/pkg/slideset"
)

// writeSlide writes a uniform test container into dir.
func writeSlide(t *testing.T, dir, name string, width, height int) {
	t.Helper()
	img := imaging.New(width, height, color.NRGBA{190, 110, 70, 255})
	if err := imaging.Save(img, filepath.Join(dir, name)); err != nil {
		t.Fatalf("failed to write test slide: %v", err)
	}
}

func TestNew(t *testing.T) {
	lab := New("/data/wsi", "/data/processed")
	if lab == nil {
		t.Fatal("New() returned nil")
	}
	if lab.set == nil {
		t.Error("slide set component is nil")
	}
}

func TestOpenSlideUsesProcessedPath(t *testing.T) {
	lab := New("/data/wsi", "/data/processed")

	s := lab.OpenSlide("/data/wsi/biopsy.svs")
	want := filepath.Join("/data/processed", "thumbnails", "biopsy.png")
	if got := s.ThumbnailPath(); got != want {
		t.Errorf("ThumbnailPath = %q, want %q", got, want)
	}
}

func TestFacadeEndToEnd(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "processed")
	writeSlide(t, dir, "alpha.png", 100, 100)
	writeSlide(t, dir, "beta.png", 200, 50)
	writeSlide(t, dir, "gamma.png", 50, 300)

	lab := New(dir, out)

	n, err := lab.TotalSlides()
	if err != nil {
		t.Fatalf("TotalSlides failed: %v", err)
	}
	if n != 3 {
		t.Fatalf("TotalSlides = %d, want 3", n)
	}

	stats, chart, err := lab.SlidesStats()
	if err != nil {
		t.Fatalf("SlidesStats failed: %v", err)
	}
	if stats.MaxSize.Slide != "gamma" || stats.MaxSize.Value != 15000 {
		t.Errorf("MaxSize = %+v, want gamma/15000", stats.MaxSize)
	}
	if chart == nil {
		t.Error("expected a rendered chart")
	}

	if err := lab.SaveScaledImages(2, 0); err != nil {
		t.Fatalf("SaveScaledImages failed: %v", err)
	}
	if err := lab.SaveThumbnails(0); err != nil {
		t.Fatalf("SaveThumbnails failed: %v", err)
	}

	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatal(err)
	}
	// Three renditions plus the thumbnails directory.
	if len(entries) != 4 {
		t.Errorf("processed directory holds %d entries, want 4", len(entries))
	}

	thumbs, err := os.ReadDir(filepath.Join(out, "thumbnails"))
	if err != nil {
		t.Fatal(err)
	}
	if len(thumbs) != 3 {
		t.Errorf("thumbnails directory holds %d entries, want 3", len(thumbs))
	}
}

func TestFacadeEmptyStats(t *testing.T) {
	lab := New(t.TempDir(), t.TempDir())

	_, _, err := lab.SlidesStats()
	if !errors.Is(err, slideset.ErrEmptySet) {
		t.Errorf("expected slideset.ErrEmptySet, got %v", err)
	}
}

func TestGetVersion(t *testing.T) {
	if GetVersion() != Version {
		t.Errorf("GetVersion() = %s, want %s", GetVersion(), Version)
	}
}
