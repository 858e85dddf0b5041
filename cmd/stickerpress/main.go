// Command stickerpress prepares raster artwork for die-cut sticker
// manufacturing: full-bleed composites, cut-line masks, and a physical
// size report.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"sticker-press/internal/config"
	"sticker-press/internal/pipeline"
)

const appVersion = "0.1.0"

func main() {
	configPath := flag.String("config", "./config.json", "Path to config JSON file")
	preview := flag.Bool("preview", false, "Compute sizes without writing artifacts")
	workers := flag.Int("workers", 0, "Parallel designs (0 = number of CPUs)")
	reportPath := flag.String("report", "", "Optional path to save the run report JSON")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("stickerpress v%s\n", appVersion)
		return
	}

	log.SetFlags(log.LstdFlags)

	fmt.Printf("Loading config: %s\n", *configPath)
	doc, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	opts := pipeline.Options{Mode: pipeline.ModeCommit, Workers: *workers}
	if *preview {
		opts.Mode = pipeline.ModePreview
	}

	// Positional args name the designs to process; none means all.
	report := pipeline.Run(context.Background(), flag.Args(), doc, opts)

	fmt.Printf("\nRun %s (%s mode):\n", report.RunID, report.Mode)
	report.Print(os.Stdout)

	if *reportPath != "" {
		if err := report.WriteFile(*reportPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save report: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Report saved to %s\n", *reportPath)
	}

	if n := report.Failed(); n > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d designs failed\n", n, len(report.Entries))
		os.Exit(1)
	}
}
