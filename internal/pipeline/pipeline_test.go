package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Anubothu-Aravind/PolicyScraper/internal/pdf"
	"github.com/Anubothu-Aravind/PolicyScraper/internal/utils"
)

type fakeExtractor struct {
	texts map[string]string
	fail  map[string]bool
}

func (f *fakeExtractor) Extract(ctx context.Context, path string) (*pdf.ExtractResult, error) {
	if f.fail[filepath.Base(path)] {
		return nil, errors.New("extraction failed")
	}
	return &pdf.ExtractResult{
		Path: path,
		Text: f.texts[filepath.Base(path)],
	}, nil
}

type fakeSink struct {
	saved map[string][]TaggedSection
	err   error
}

func (f *fakeSink) SaveDocument(ctx context.Context, filePath string, wasScanned bool, secs []TaggedSection) error {
	if f.err != nil {
		return f.err
	}
	if f.saved == nil {
		f.saved = make(map[string][]TaggedSection)
	}
	f.saved[filepath.Base(filePath)] = secs
	return nil
}

func testLogger() *utils.Logger {
	return utils.NewLoggerTo(os.Stderr, "error")
}

func writePDFStub(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("%PDF-stub"), 0o644); err != nil {
		t.Fatal(err)
	}
}

const policyText = `1. INTRODUCTION
This policy covers hospitalization expenses for the insured person
as described in the schedule of benefits attached to this document.
2. EXCLUSIONS
We will not pay for cosmetic surgery. A deductible of INR 10,000
applies and a waiting period of 24 months covers named illnesses.
`

func TestPipeline_Run(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()

	writePDFStub(t, inputDir, "health.pdf")
	writePDFStub(t, inputDir, "travel.PDF")
	writePDFStub(t, inputDir, "notes.txt")

	extractor := &fakeExtractor{texts: map[string]string{
		"health.pdf": policyText,
		"travel.PDF": "GENERAL CONDITIONS\nCover applies worldwide for trips up to 90 days.\n",
	}}
	sink := &fakeSink{}

	p := New(extractor, sink, testLogger(), outputDir, 2)
	results, err := p.Run(context.Background(), inputDir)
	assert.NoError(t, err)
	assert.Len(t, results, 2)

	// Results come back sorted by path, not worker completion order.
	assert.Equal(t, filepath.Join(inputDir, "health.pdf"), results[0].Path)
	assert.Equal(t, filepath.Join(inputDir, "travel.PDF"), results[1].Path)
	assert.Equal(t, 2, results[0].Sections)

	// Artifact is named after the source file with a .json suffix.
	data, err := os.ReadFile(filepath.Join(outputDir, "health.pdf.json"))
	assert.NoError(t, err)

	var tagged []TaggedSection
	assert.NoError(t, json.Unmarshal(data, &tagged))
	assert.Len(t, tagged, 2)
	assert.Equal(t, "1.", tagged[0].Title)
	assert.False(t, tagged[0].IsExclusion)
	assert.Equal(t, "2.", tagged[1].Title)
	assert.True(t, tagged[1].IsExclusion)
	assert.NotNil(t, tagged[1].Deductible)
	assert.NotNil(t, tagged[1].WaitingPeriod)
	assert.Equal(t, "24 months", *tagged[1].WaitingPeriod)

	// Sections without a match serialize the feature as null.
	var raw []map[string]json.RawMessage
	assert.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "null", string(raw[0]["deductible"]))

	assert.Len(t, sink.saved["health.pdf"], 2)
}

func TestPipeline_FailedDocumentDoesNotStopBatch(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()

	writePDFStub(t, inputDir, "good.pdf")
	writePDFStub(t, inputDir, "bad.pdf")

	extractor := &fakeExtractor{
		texts: map[string]string{"good.pdf": policyText},
		fail:  map[string]bool{"bad.pdf": true},
	}

	p := New(extractor, nil, testLogger(), outputDir, 1)
	results, err := p.Run(context.Background(), inputDir)
	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, filepath.Join(inputDir, "good.pdf"), results[0].Path)

	_, statErr := os.Stat(filepath.Join(outputDir, "bad.pdf.json"))
	assert.True(t, os.IsNotExist(statErr), "failed document must not leave an artifact")
}

func TestPipeline_EmptyDirectory(t *testing.T) {
	p := New(&fakeExtractor{}, nil, testLogger(), t.TempDir(), 2)
	results, err := p.Run(context.Background(), t.TempDir())
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestPipeline_EmptyDocumentWritesEmptyArray(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	writePDFStub(t, inputDir, "blank.pdf")

	extractor := &fakeExtractor{texts: map[string]string{"blank.pdf": ""}}
	p := New(extractor, nil, testLogger(), outputDir, 1)

	results, err := p.Run(context.Background(), inputDir)
	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, 0, results[0].Sections)

	data, err := os.ReadFile(filepath.Join(outputDir, "blank.pdf.json"))
	assert.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestPipeline_SinkFailureIsNotFatal(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	writePDFStub(t, inputDir, "health.pdf")

	extractor := &fakeExtractor{texts: map[string]string{"health.pdf": policyText}}
	sink := &fakeSink{err: errors.New("db unavailable")}

	p := New(extractor, sink, testLogger(), outputDir, 1)
	results, err := p.Run(context.Background(), inputDir)
	assert.NoError(t, err)
	assert.Len(t, results, 1)

	_, statErr := os.Stat(results[0].ArtifactPath)
	assert.NoError(t, statErr)
}

func TestListPDFs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.PDF", "c.txt"} {
		writePDFStub(t, dir, name)
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.pdf"), 0o755); err != nil {
		t.Fatal(err)
	}

	paths, err := ListPDFs(dir)
	assert.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.PDF"),
		filepath.Join(dir, "b.pdf"),
	}, paths)
}

func TestSampleTextTruncation(t *testing.T) {
	long := ""
	for i := 0; i < 100; i++ {
		long += fmt.Sprintf("sentence %02d. ", i)
	}

	inputDir := t.TempDir()
	outputDir := t.TempDir()
	writePDFStub(t, inputDir, "long.pdf")

	extractor := &fakeExtractor{texts: map[string]string{
		"long.pdf": "LONG SECTION\n" + long,
	}}
	p := New(extractor, nil, testLogger(), outputDir, 1)

	_, err := p.Run(context.Background(), inputDir)
	assert.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outputDir, "long.pdf.json"))
	assert.NoError(t, err)

	var tagged []TaggedSection
	assert.NoError(t, json.Unmarshal(data, &tagged))
	assert.Len(t, tagged, 1)
	assert.Equal(t, 600, len([]rune(tagged[0].SampleText)))
}
