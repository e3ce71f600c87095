// Package dataset flattens scan artifacts into a labeled CSV for
// training section classifiers.
package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Anubothu-Aravind/PolicyScraper/internal/pipeline"
	"github.com/Anubothu-Aravind/PolicyScraper/internal/utils"
)

// minTextLength drops noise rows: sections whose sample text trims to
// fewer characters than this carry no usable training signal.
const minTextLength = 30

// Section labels, in precedence order.
const (
	LabelExclusion     = "Exclusion"
	LabelDeductible    = "Deductible"
	LabelWaitingPeriod = "WaitingPeriod"
	LabelOther         = "Other"
)

// Row is one labeled training example.
type Row struct {
	Text  string
	Label string
}

// Builder turns scan artifacts into a CSV dataset.
type Builder struct {
	logger *utils.Logger
}

// NewBuilder creates a dataset builder.
func NewBuilder(logger *utils.Logger) *Builder {
	return &Builder{logger: logger}
}

// Build reads every artifact in artifactsDir and writes the labeled
// rows to outPath as CSV with a text,label header. Corrupt artifacts
// are logged and skipped.
func (b *Builder) Build(artifactsDir, outPath string) (int, error) {
	entries, err := os.ReadDir(artifactsDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read artifacts directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".report.json") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var rows []Row
	for _, name := range names {
		path := filepath.Join(artifactsDir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			b.logger.Error("failed to read artifact", "artifact", path, "error", err)
			continue
		}

		var secs []pipeline.TaggedSection
		if err := json.Unmarshal(data, &secs); err != nil {
			b.logger.Error("failed to parse artifact", "artifact", path, "error", err)
			continue
		}
		rows = append(rows, Rows(secs)...)
	}

	if err := writeCSV(outPath, rows); err != nil {
		return 0, err
	}

	b.logger.Info("dataset written", "path", outPath, "rows", len(rows))
	return len(rows), nil
}

// Rows converts tagged sections to labeled rows, dropping those too
// short to be useful.
func Rows(secs []pipeline.TaggedSection) []Row {
	var rows []Row
	for _, sec := range secs {
		text := strings.TrimSpace(sec.SampleText)
		if len([]rune(text)) < minTextLength {
			continue
		}
		rows = append(rows, Row{Text: text, Label: Label(sec)})
	}
	return rows
}

// Label assigns the training label for a section. A section matching
// several signals takes the highest-precedence one: exclusions trump
// deductibles, which trump waiting periods.
func Label(sec pipeline.TaggedSection) string {
	switch {
	case sec.IsExclusion:
		return LabelExclusion
	case sec.Deductible != nil:
		return LabelDeductible
	case sec.WaitingPeriod != nil:
		return LabelWaitingPeriod
	default:
		return LabelOther
	}
}

func writeCSV(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dataset file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"text", "label"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write([]string{row.Text, row.Label}); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
