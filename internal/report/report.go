// Package report condenses scan artifacts into review reports listing
// only the sections that carry a deductible, a waiting period or an
// exclusion flag.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Anubothu-Aravind/PolicyScraper/internal/pipeline"
	"github.com/Anubothu-Aravind/PolicyScraper/internal/tagging"
	"github.com/Anubothu-Aravind/PolicyScraper/internal/utils"
)

const reportSuffix = ".report.json"

// Report summarizes the flagged sections of one scanned document.
type Report struct {
	Source           string                   `json:"source"`
	TotalSections    int                      `json:"total_sections"`
	DeductibleCount  int                      `json:"deductible_sections"`
	WaitingCount     int                      `json:"waiting_period_sections"`
	ExclusionCount   int                      `json:"exclusion_sections"`
	CurrencyMentions []string                 `json:"currency_mentions"`
	Flagged          []pipeline.TaggedSection `json:"flagged_sections"`
}

// Generator turns a directory of scan artifacts into review reports.
type Generator struct {
	logger    *utils.Logger
	reportDir string
}

// NewGenerator creates a generator writing reports into reportDir.
func NewGenerator(logger *utils.Logger, reportDir string) *Generator {
	return &Generator{
		logger:    logger,
		reportDir: reportDir,
	}
}

// Generate builds one report per artifact in artifactsDir. Artifacts
// that cannot be read or parsed are logged and skipped.
func (g *Generator) Generate(artifactsDir string) ([]Report, error) {
	paths, err := listArtifacts(artifactsDir)
	if err != nil {
		return nil, err
	}

	var reports []Report
	for _, path := range paths {
		report, err := g.generateOne(path)
		if err != nil {
			g.logger.Error("failed to build report", "artifact", path, "error", err)
			continue
		}
		reports = append(reports, *report)
	}
	return reports, nil
}

func (g *Generator) generateOne(artifactPath string) (*Report, error) {
	data, err := os.ReadFile(artifactPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	var secs []pipeline.TaggedSection
	if err := json.Unmarshal(data, &secs); err != nil {
		return nil, fmt.Errorf("failed to parse artifact: %w", err)
	}

	report := Build(filepath.Base(artifactPath), secs)

	name := strings.TrimSuffix(filepath.Base(artifactPath), ".json") + reportSuffix
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(g.reportDir, name), out, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}

	g.logger.Info("report written",
		"artifact", artifactPath,
		"flagged", len(report.Flagged),
	)
	return report, nil
}

// Build computes the report for one document's tagged sections.
func Build(source string, secs []pipeline.TaggedSection) *Report {
	report := &Report{
		Source:        source,
		TotalSections: len(secs),
		Flagged:       []pipeline.TaggedSection{},
	}

	seen := make(map[string]bool)
	for _, sec := range secs {
		if sec.Deductible != nil {
			report.DeductibleCount++
		}
		if sec.WaitingPeriod != nil {
			report.WaitingCount++
		}
		if sec.IsExclusion {
			report.ExclusionCount++
		}
		if sec.Deductible != nil || sec.WaitingPeriod != nil || sec.IsExclusion {
			report.Flagged = append(report.Flagged, sec)
		}
		for _, mention := range tagging.FindAllCurrency(sec.SampleText) {
			if !seen[mention] {
				seen[mention] = true
				report.CurrencyMentions = append(report.CurrencyMentions, mention)
			}
		}
	}
	sort.Strings(report.CurrencyMentions)
	return report
}

// listArtifacts returns the scan artifacts in dir, skipping reports the
// generator itself produced on earlier runs.
func listArtifacts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifacts directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") || strings.HasSuffix(name, reportSuffix) {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}
