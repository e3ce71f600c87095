package pipeline

import (
	"fmt"

	"github.com/Anubothu-Aravind/PolicyScraper/internal/sections"
	"github.com/Anubothu-Aravind/PolicyScraper/internal/tagging"
)

// sampleTextLimit bounds the text excerpt stored in scan artifacts.
const sampleTextLimit = 600

// TaggedSection is one section of a policy document together with the
// features found in it. This is the artifact record consumed by the
// report and dataset tools, so field names and types are load-bearing.
type TaggedSection struct {
	Title         string  `json:"title"`
	Deductible    *string `json:"deductible"`
	WaitingPeriod *string `json:"waiting_period"`
	IsExclusion   bool    `json:"is_exclusion"`
	SampleText    string  `json:"sample_text"`
}

// NewTaggedSection tags a section and builds its artifact record.
func NewTaggedSection(sec sections.Section) TaggedSection {
	features := tagging.Tag(sec.Title, sec.Body)
	return TaggedSection{
		Title:         sec.Title,
		Deductible:    nullable(features.Deductible),
		WaitingPeriod: nullable(features.WaitingPeriod),
		IsExclusion:   features.IsExclusion,
		SampleText:    tagging.Truncate(sec.Body, sampleTextLimit),
	}
}

// nullable maps an empty match to JSON null.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// FileResult summarizes the processing of a single document.
type FileResult struct {
	Path         string
	ArtifactPath string
	Sections     int
	WasScanned   bool
}

// WriteError indicates an artifact could not be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write artifact %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
