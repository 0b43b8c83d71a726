package wsi

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

// writeImage writes a uniform test image and returns its path.
func writeImage(t *testing.T, dir, name string, width, height int) string {
	t.Helper()
	img := imaging.New(width, height, color.NRGBA{180, 100, 60, 255})
	path := filepath.Join(dir, name)
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("failed to write test image: %v", err)
	}
	return path
}

func TestOpenNotFound(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.png"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestOpenDirectory(t *testing.T) {
	_, err := Open(t.TempDir())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for directory, got %v", err)
	}
}

func TestOpenCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.png")
	if err := os.WriteFile(path, []byte("not an image at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Open(path)
	if err == nil {
		t.Fatal("expected error for corrupt file")
	}
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}
}

func TestDimensions(t *testing.T) {
	path := writeImage(t, t.TempDir(), "slide.png", 320, 160)

	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer c.Close()

	w, h := c.Dimensions()
	if w != 320 || h != 160 {
		t.Errorf("Dimensions = (%d, %d), want (320, 160)", w, h)
	}
}

func TestLevels(t *testing.T) {
	path := writeImage(t, t.TempDir(), "slide.png", 100, 80)

	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer c.Close()

	if c.LevelCount() != 1 {
		t.Errorf("LevelCount = %d, want 1", c.LevelCount())
	}

	w, h, err := c.LevelDimensions(0)
	if err != nil {
		t.Fatalf("LevelDimensions(0) failed: %v", err)
	}
	if w != 100 || h != 80 {
		t.Errorf("LevelDimensions(0) = (%d, %d), want (100, 80)", w, h)
	}

	if _, _, err := c.LevelDimensions(1); err == nil {
		t.Error("expected error for out-of-range level")
	}

	ds, err := c.LevelDownsample(0)
	if err != nil {
		t.Fatalf("LevelDownsample(0) failed: %v", err)
	}
	if ds != 1.0 {
		t.Errorf("LevelDownsample(0) = %f, want 1.0", ds)
	}
}

func TestBestLevelForDownsample(t *testing.T) {
	path := writeImage(t, t.TempDir(), "slide.png", 64, 64)

	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer c.Close()

	for _, factor := range []float64{1, 2, 32, 1024} {
		if level := c.BestLevelForDownsample(factor); level != 0 {
			t.Errorf("BestLevelForDownsample(%v) = %d, want 0", factor, level)
		}
	}
}

func TestReadRegion(t *testing.T) {
	path := writeImage(t, t.TempDir(), "slide.png", 120, 90)

	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer c.Close()

	region, err := c.ReadRegion(10, 20, 0, 50, 40)
	if err != nil {
		t.Fatalf("ReadRegion failed: %v", err)
	}

	b := region.Bounds()
	if b.Dx() != 50 || b.Dy() != 40 {
		t.Errorf("region size = (%d, %d), want (50, 40)", b.Dx(), b.Dy())
	}
}

func TestReadRegionOutOfBounds(t *testing.T) {
	path := writeImage(t, t.TempDir(), "slide.png", 30, 30)

	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer c.Close()

	if _, err := c.ReadRegion(0, 0, 0, 31, 31); err == nil {
		t.Error("expected error for region outside bounds")
	}
	if _, err := c.ReadRegion(0, 0, 1, 10, 10); err == nil {
		t.Error("expected error for out-of-range level")
	}
}

func TestThumbnailFitsBox(t *testing.T) {
	path := writeImage(t, t.TempDir(), "slide.png", 600, 300)

	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer c.Close()

	thumb, err := c.Thumbnail(300, 300)
	if err != nil {
		t.Fatalf("Thumbnail failed: %v", err)
	}

	b := thumb.Bounds()
	if b.Dx() > 300 || b.Dy() > 300 {
		t.Errorf("thumbnail size = (%d, %d), exceeds 300x300", b.Dx(), b.Dy())
	}
	if b.Dx() != 300 || b.Dy() != 150 {
		t.Errorf("thumbnail size = (%d, %d), want (300, 150)", b.Dx(), b.Dy())
	}
}

func TestReadAfterClose(t *testing.T) {
	path := writeImage(t, t.TempDir(), "slide.png", 20, 20)

	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := c.ReadRegion(0, 0, 0, 10, 10); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed after Close, got %v", err)
	}
	if _, err := c.Thumbnail(100, 100); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed after Close, got %v", err)
	}
}
