package mcp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Anubothu-Aravind/PolicyScraper/internal/config"
	"github.com/Anubothu-Aravind/PolicyScraper/internal/pdf"
)

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) Extract(ctx context.Context, path string) (*pdf.ExtractResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &pdf.ExtractResult{Path: path, Text: f.text, Pages: 1}, nil
}

func testConfig(inputDir string) *config.Config {
	return &config.Config{
		Mode:       config.ModeStdio,
		InputDir:   inputDir,
		Version:    "1.0.0",
		ServerName: "test-server",
		LogLevel:   "info",
	}
}

func TestNewServer(t *testing.T) {
	server, err := NewServer(testConfig("/tmp"), &fakeExtractor{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if server == nil {
		t.Fatal("server should not be nil")
	}

	if _, err := NewServer(testConfig("/tmp"), nil); err == nil {
		t.Error("expected error for nil extractor")
	}
}

func TestServer_HandleScanFile(t *testing.T) {
	extractor := &fakeExtractor{text: "EXCLUSIONS\nWe will not pay for cosmetic surgery under any circumstances.\n"}
	server, err := NewServer(testConfig("/tmp"), extractor)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{
				"path": "policy.pdf",
			},
		},
	}

	result, err := server.handleScanFile(context.Background(), request)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	resultText := extractTextFromResult(result)
	if !strings.Contains(resultText, "Sections: 1") {
		t.Errorf("expected one section, got: %s", resultText)
	}
	if !strings.Contains(resultText, `"is_exclusion": true`) {
		t.Errorf("expected exclusion flag in artifact, got: %s", resultText)
	}
}

func TestServer_HandleScanFile_ExtractionError(t *testing.T) {
	server, err := NewServer(testConfig("/tmp"), &fakeExtractor{err: errors.New("unreadable")})
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{
				"path": "broken.pdf",
			},
		},
	}

	result, err := server.handleScanFile(context.Background(), request)
	if err != nil {
		t.Fatalf("handler should report tool errors in the result: %v", err)
	}
	if !result.IsError {
		t.Error("expected error result")
	}
}

func TestServer_HandleTagText(t *testing.T) {
	server, err := NewServer(testConfig("/tmp"), &fakeExtractor{})
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{
				"text":  "A deductible of INR 5,000 applies after a waiting period of 24 months.",
				"title": "GENERAL CONDITIONS",
			},
		},
	}

	result, err := server.handleTagText(context.Background(), request)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	resultText := extractTextFromResult(result)
	if !strings.Contains(resultText, "Deductible:") {
		t.Errorf("expected deductible in result, got: %s", resultText)
	}
	if !strings.Contains(resultText, "Waiting period: 24 months") {
		t.Errorf("expected waiting period in result, got: %s", resultText)
	}
	if !strings.Contains(resultText, "First currency mention: INR 5,000") {
		t.Errorf("expected currency mention in result, got: %s", resultText)
	}
}

func TestServer_HandleSplitText(t *testing.T) {
	server, err := NewServer(testConfig("/tmp"), &fakeExtractor{})
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{
				"text": "intro line\n1. SCOPE\nbody text\n",
			},
		},
	}

	result, err := server.handleSplitText(context.Background(), request)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	resultText := extractTextFromResult(result)
	if !strings.Contains(resultText, "Found 2 section(s)") {
		t.Errorf("expected two sections, got: %s", resultText)
	}
	if !strings.Contains(resultText, "start") {
		t.Errorf("expected start sentinel section, got: %s", resultText)
	}
}

func TestServer_HandleSearchDirectory(t *testing.T) {
	tempDir := t.TempDir()
	for _, filename := range []string{"doc1.pdf", "doc2.pdf", "report.txt"} {
		if err := os.WriteFile(filepath.Join(tempDir, filename), make([]byte, 1024), 0o644); err != nil {
			t.Fatalf("failed to create test file %s: %v", filename, err)
		}
	}

	server, err := NewServer(testConfig(tempDir), &fakeExtractor{})
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	// Empty directory argument falls back to the configured input dir.
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{},
		},
	}

	result, err := server.handleSearchDirectory(context.Background(), request)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	resultText := extractTextFromResult(result)
	if !strings.Contains(resultText, "Found 2 PDF file(s)") {
		t.Errorf("expected two PDFs, got: %s", resultText)
	}
	if strings.Contains(resultText, "report.txt") {
		t.Errorf("non-PDF file should not be listed, got: %s", resultText)
	}
}

func TestServer_HandleValidateFile(t *testing.T) {
	tempDir := t.TempDir()
	bogus := filepath.Join(tempDir, "bogus.pdf")
	if err := os.WriteFile(bogus, []byte("not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig(tempDir)
	cfg.MaxFileSize = 1024 * 1024
	server, err := NewServer(cfg, &fakeExtractor{})
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{
				"path": bogus,
			},
		},
	}

	result, err := server.handleValidateFile(context.Background(), request)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	resultText := extractTextFromResult(result)
	if !strings.Contains(resultText, "PDF validation failed") {
		t.Errorf("expected validation to fail, got: %s", resultText)
	}
}

func TestServer_HandleStatsFile_InvalidPDF(t *testing.T) {
	tempDir := t.TempDir()
	bogus := filepath.Join(tempDir, "bogus.pdf")
	if err := os.WriteFile(bogus, []byte("not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	server, err := NewServer(testConfig(tempDir), &fakeExtractor{})
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{
				"path": bogus,
			},
		},
	}

	result, err := server.handleStatsFile(context.Background(), request)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !result.IsError {
		t.Error("expected error result for bogus PDF")
	}
}

func TestServer_MissingRequiredArguments(t *testing.T) {
	server, err := NewServer(testConfig("/tmp"), &fakeExtractor{})
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	emptyRequest := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{},
		},
	}

	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"policy_scan_file":     server.handleScanFile,
		"policy_tag_text":      server.handleTagText,
		"policy_split_text":    server.handleSplitText,
		"policy_stats_file":    server.handleStatsFile,
		"policy_validate_file": server.handleValidateFile,
	}

	for name, handler := range handlers {
		t.Run(name, func(t *testing.T) {
			result, err := handler(context.Background(), emptyRequest)
			if err != nil {
				t.Fatalf("handler should not fail outright: %v", err)
			}
			if !result.IsError {
				t.Error("expected error result for missing argument")
			}
		})
	}
}

func extractTextFromResult(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
		if textContentPtr, ok := content.(*mcp.TextContent); ok {
			return textContentPtr.Text
		}
	}
	return ""
}
