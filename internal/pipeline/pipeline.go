// Package pipeline orchestrates the policy document scan: it walks a
// directory of PDFs, extracts their text, splits it into sections, tags
// each section and writes one JSON artifact per document.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Anubothu-Aravind/PolicyScraper/internal/pdf"
	"github.com/Anubothu-Aravind/PolicyScraper/internal/sections"
	"github.com/Anubothu-Aravind/PolicyScraper/internal/utils"
)

// Extractor turns a PDF file into plain text.
type Extractor interface {
	Extract(ctx context.Context, path string) (*pdf.ExtractResult, error)
}

// Sink receives processed documents, typically backed by a database.
type Sink interface {
	SaveDocument(ctx context.Context, filePath string, wasScanned bool, secs []TaggedSection) error
}

// Pipeline processes a directory of policy PDFs into JSON artifacts.
type Pipeline struct {
	extractor Extractor
	sink      Sink
	logger    *utils.Logger
	outputDir string
	workers   int
}

// New creates a pipeline. sink may be nil to skip database persistence.
func New(extractor Extractor, sink Sink, logger *utils.Logger, outputDir string, workers int) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		extractor: extractor,
		sink:      sink,
		logger:    logger,
		outputDir: outputDir,
		workers:   workers,
	}
}

// Run processes every PDF in inputDir. A failure on one document is
// logged and does not stop the others. Results are returned in path
// order regardless of worker scheduling.
func (p *Pipeline) Run(ctx context.Context, inputDir string) ([]FileResult, error) {
	paths, err := ListPDFs(inputDir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		p.logger.Warn("no PDF files found", "dir", inputDir)
		return nil, nil
	}

	jobs := make(chan string)
	var (
		mu      sync.Mutex
		results []FileResult
	)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				result, err := p.processFile(ctx, path)
				if err != nil {
					p.logger.Error("failed to process document", "file", path, "error", err)
					continue
				}
				mu.Lock()
				results = append(results, *result)
				mu.Unlock()
			}
		}()
	}

	var runErr error
	for _, path := range paths {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
		case jobs <- path:
			continue
		}
		break
	}
	close(jobs)
	wg.Wait()

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})
	return results, runErr
}

// processFile runs the extract/split/tag stages for one document and
// writes its artifact.
func (p *Pipeline) processFile(ctx context.Context, path string) (*FileResult, error) {
	extracted, err := p.extractor.Extract(ctx, path)
	if err != nil {
		return nil, err
	}

	secs := sections.Split(extracted.Text)
	tagged := make([]TaggedSection, 0, len(secs))
	for _, sec := range secs {
		tagged = append(tagged, NewTaggedSection(sec))
	}

	artifactPath := filepath.Join(p.outputDir, filepath.Base(path)+".json")
	if err := writeArtifact(artifactPath, tagged); err != nil {
		return nil, err
	}

	if p.sink != nil {
		if err := p.sink.SaveDocument(ctx, path, extracted.WasScanned, tagged); err != nil {
			p.logger.Error("failed to persist document", "file", path, "error", err)
		}
	}

	p.logger.Info("processed document",
		"file", path,
		"sections", len(tagged),
		"scanned", extracted.WasScanned,
	)

	return &FileResult{
		Path:         path,
		ArtifactPath: artifactPath,
		Sections:     len(tagged),
		WasScanned:   extracted.WasScanned,
	}, nil
}

// writeArtifact serializes tagged sections as indented JSON. An empty
// document still produces a valid artifact holding an empty array.
func writeArtifact(path string, tagged []TaggedSection) error {
	if tagged == nil {
		tagged = []TaggedSection{}
	}
	data, err := json.MarshalIndent(tagged, "", "  ")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// ListPDFs returns the PDF files directly inside dir, sorted by path.
// Matching is case-insensitive and subdirectories are not descended.
func ListPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
