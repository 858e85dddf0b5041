package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/google/uuid"

	"sticker-press/internal/config"
)

// Mode selects whether a run writes artifacts.
type Mode int

const (
	// ModeCommit writes artifacts and sidecars into the design directories.
	ModeCommit Mode = iota
	// ModePreview performs every computational step but writes nothing
	// durable; only the size report is produced.
	ModePreview
)

func (m Mode) String() string {
	if m == ModePreview {
		return "preview"
	}
	return "commit"
}

// Options configures a batch run.
type Options struct {
	Mode    Mode
	Workers int // 0 means GOMAXPROCS
}

// Run processes the requested designs. Designs are independent, so they run
// on a bounded worker pool; report entries are appended under a single
// mutex and re-sorted into request order. A failure in one design is
// recorded and does not stop the others.
func Run(ctx context.Context, designs []string, doc *config.Document, opts Options) *Report {
	if len(designs) == 0 {
		designs = doc.DesignIDs()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(designs) {
		workers = len(designs)
	}

	report := &Report{RunID: uuid.NewString(), Mode: opts.Mode.String()}
	var mu sync.Mutex
	var wg sync.WaitGroup

	jobs := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				entry := runDesign(designs[i], doc, opts.Mode)
				entry.order = i
				mu.Lock()
				report.Entries = append(report.Entries, entry)
				mu.Unlock()
			}
		}()
	}

dispatch:
	for i := range designs {
		select {
		case <-ctx.Done():
			// Stop handing out work; in-flight designs finish whole.
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	report.sortEntries()
	return report
}

// runDesign resolves, processes, and (in commit mode) writes one design,
// converting any failure into a report entry.
func runDesign(id string, doc *config.Document, mode Mode) ReportEntry {
	entry := ReportEntry{DesignID: id}

	if !doc.Has(id) {
		entry.Reason = "design not found in configuration"
		return entry
	}
	res, err := doc.Resolve(id)
	if err != nil {
		entry.Reason = err.Error()
		return entry
	}

	designDir := filepath.Join(doc.DesignDir, id)
	log.Printf("Processing design %s (%s)", id, designDir)

	result, err := Process(res, designDir)
	if err != nil {
		entry.Reason = err.Error()
		return entry
	}

	if mode == ModeCommit {
		if err := writeArtifacts(result, designDir); err != nil {
			entry.Reason = err.Error()
			return entry
		}
	}

	entry.Width = result.Physical.Width
	entry.Height = result.Physical.Height
	entry.Unit = result.Unit
	entry.OK = true
	return entry
}

// writeArtifacts persists a design's outputs atomically: every file is
// written to a temporary name first and renamed into place only after all
// of them encoded cleanly, so a failed design leaves no partial artifacts.
func writeArtifacts(r *Result, designDir string) error {
	files := []struct {
		name   string
		encode func(*os.File) error
	}{
		{r.DesignID + SuffixFullBleed, func(f *os.File) error { return png.Encode(f, r.FullBleed) }},
		{r.DesignID + SuffixCutMask, func(f *os.File) error { return png.Encode(f, r.CutMask) }},
		{r.DesignID + SuffixPreview, func(f *os.File) error { return png.Encode(f, r.Preview) }},
		{r.DesignID + SuffixInfo, func(f *os.File) error {
			enc := json.NewEncoder(f)
			enc.SetIndent("", "  ")
			return enc.Encode(r.Info)
		}},
	}

	temps := make([]string, 0, len(files))
	cleanup := func() {
		for _, t := range temps {
			os.Remove(t)
		}
	}

	for _, file := range files {
		f, err := os.CreateTemp(designDir, ".tmp-"+file.name+"-*")
		if err != nil {
			cleanup()
			return fmt.Errorf("write %s: %w", file.name, err)
		}
		temps = append(temps, f.Name())
		if err := file.encode(f); err != nil {
			f.Close()
			cleanup()
			return fmt.Errorf("write %s: %w", file.name, err)
		}
		if err := f.Close(); err != nil {
			cleanup()
			return fmt.Errorf("write %s: %w", file.name, err)
		}
	}

	for i, file := range files {
		if err := os.Rename(temps[i], filepath.Join(designDir, file.name)); err != nil {
			cleanup()
			return fmt.Errorf("write %s: %w", file.name, err)
		}
	}
	return nil
}
