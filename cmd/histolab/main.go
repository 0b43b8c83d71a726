package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/ajinkya-kulkarni/histolab"
	"github.com/ajinkya-kulkarni/histolab/internal/config"
	"github.com/ajinkya-kulkarni/histolab/internal/utils"
	"github.com/ajinkya-kulkarni/histolab/pkg/slideset"
)

func main() {
	var in, out, ext, configPath, plotPath string
	var cmd string
	var scale, n, workers int

	flag.StringVar(&cmd, "cmd", "stats", "command to run: stats|rescale|thumbnails")
	flag.StringVar(&in, "in", "", "input directory of slide files")
	flag.StringVar(&out, "out", "", "output directory for processed renditions")
	flag.StringVar(&ext, "ext", "", "comma-separated slide extensions (e.g. .svs,.tiff)")
	flag.StringVar(&configPath, "config", "", "optional JSON config file")
	flag.StringVar(&plotPath, "plot", "", "write the stats scatter chart to this PNG path")
	flag.IntVar(&scale, "scale", 0, "image scaling factor for rescale")
	flag.IntVar(&n, "n", 0, "process only the first n slides (0 = all)")
	flag.IntVar(&workers, "workers", 0, "worker pool size (0 = one per CPU)")

	flag.Parse()

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	// Flags override the config file.
	if in != "" {
		cfg.Slides.Path = in
	}
	if out != "" {
		cfg.Output.ProcessedPath = out
	}
	if ext != "" {
		cfg.Slides.ValidExtensions = splitExtensions(ext)
	}
	if scale > 0 {
		cfg.Output.ScaleFactor = scale
	}
	if workers > 0 {
		cfg.Output.Workers = workers
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if !utils.DirExists(cfg.Slides.Path) {
		log.Fatalf("usage: %s -cmd stats|rescale|thumbnails -in slides_dir [-out outdir] [-ext .svs,.tiff] [-scale 32] [-n 5]",
			filepath.Base(os.Args[0]))
	}

	lab := histolab.NewWithConfig(slideset.Config{
		SlidesPath:      cfg.Slides.Path,
		ProcessedPath:   cfg.Output.ProcessedPath,
		ValidExtensions: cfg.Slides.ValidExtensions,
		Workers:         cfg.Output.Workers,
	})

	switch cmd {
	case "stats":
		runStats(lab, plotPath)
	case "rescale":
		total, err := lab.TotalSlides()
		if err != nil {
			log.Fatalf("Failed to enumerate slides: %v", err)
		}
		if err := lab.SaveScaledImages(cfg.Output.ScaleFactor, n); err != nil {
			log.Fatalf("Failed to save scaled images: %v", err)
		}
		fmt.Printf("Saved scaled images (factor %dx) for %s into %s\n",
			cfg.Output.ScaleFactor, countLabel(n, total), cfg.Output.ProcessedPath)
	case "thumbnails":
		total, err := lab.TotalSlides()
		if err != nil {
			log.Fatalf("Failed to enumerate slides: %v", err)
		}
		if err := lab.SaveThumbnails(n); err != nil {
			log.Fatalf("Failed to save thumbnails: %v", err)
		}
		fmt.Printf("Saved thumbnails for %s into %s\n",
			countLabel(n, total), filepath.Join(cfg.Output.ProcessedPath, "thumbnails"))
	default:
		log.Fatalf("Unknown command: %s (use 'stats', 'rescale' or 'thumbnails')", cmd)
	}
}

func runStats(lab *histolab.Histolab, plotPath string) {
	stats, chart, err := lab.SlidesStats()
	if err != nil {
		log.Fatalf("Failed to compute slide statistics: %v", err)
	}

	fmt.Printf("Slides: %d\n", stats.TotalSlides)
	fmt.Printf("Width : max %d (%s), min %d (%s), avg %.1f\n",
		stats.MaxWidth.Value, stats.MaxWidth.Slide,
		stats.MinWidth.Value, stats.MinWidth.Slide, stats.AvgWidth)
	fmt.Printf("Height: max %d (%s), min %d (%s), avg %.1f\n",
		stats.MaxHeight.Value, stats.MaxHeight.Slide,
		stats.MinHeight.Value, stats.MinHeight.Slide, stats.AvgHeight)
	fmt.Printf("Size  : max %d (%s), min %d (%s), avg %.1f\n",
		stats.MaxSize.Value, stats.MaxSize.Slide,
		stats.MinSize.Value, stats.MinSize.Slide, stats.AvgSize)

	if plotPath != "" {
		if err := imaging.Save(chart, plotPath); err != nil {
			log.Fatalf("Failed to save scatter chart: %v", err)
		}
		fmt.Printf("Scatter chart written to %s\n", plotPath)
	}
}

func splitExtensions(s string) []string {
	var exts []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.HasPrefix(part, ".") {
			part = "." + part
		}
		exts = append(exts, part)
	}
	return exts
}

func countLabel(n, total int) string {
	if n <= 0 || n > total {
		return fmt.Sprintf("all %d slides", total)
	}
	return fmt.Sprintf("first %d of %d slides", n, total)
}
