// Package mcp exposes the policy scanning toolchain as MCP tools over
// stdio, so assistants can scan and tag policy documents interactively.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Anubothu-Aravind/PolicyScraper/internal/config"
	"github.com/Anubothu-Aravind/PolicyScraper/internal/pdf"
	"github.com/Anubothu-Aravind/PolicyScraper/internal/pipeline"
	"github.com/Anubothu-Aravind/PolicyScraper/internal/sections"
	"github.com/Anubothu-Aravind/PolicyScraper/internal/tagging"
)

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	extractor pipeline.Extractor
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, extractor pipeline.Extractor) (*Server, error) {
	if extractor == nil {
		return nil, fmt.Errorf("extractor cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:    cfg,
		extractor: extractor,
		mcpServer: mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	scanFileTool := mcp.NewTool(
		"policy_scan_file",
		mcp.WithDescription("Extract, split and tag a policy PDF, returning its sections with detected features as JSON"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(scanFileTool, s.handleScanFile)

	tagTextTool := mcp.NewTool(
		"policy_tag_text",
		mcp.WithDescription("Detect deductible, waiting period and exclusion signals in a block of policy text"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Policy text to analyze"),
		),
		mcp.WithString("title",
			mcp.Description("Optional section title, also checked for exclusion headings"),
		),
	)
	s.mcpServer.AddTool(tagTextTool, s.handleTagText)

	splitTextTool := mcp.NewTool(
		"policy_split_text",
		mcp.WithDescription("Split policy text into titled sections using the heading heuristic"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Policy text to split"),
		),
	)
	s.mcpServer.AddTool(splitTextTool, s.handleSplitText)

	validateFileTool := mcp.NewTool(
		"policy_validate_file",
		mcp.WithDescription("Validate that a file is a readable PDF within the size limit"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(validateFileTool, s.handleValidateFile)

	statsFileTool := mcp.NewTool(
		"policy_stats_file",
		mcp.WithDescription("Get structural statistics about a policy PDF, including whether it likely needs OCR"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(statsFileTool, s.handleStatsFile)

	searchDirectoryTool := mcp.NewTool(
		"policy_search_directory",
		mcp.WithDescription("List the PDF files available for scanning in a directory"),
		mcp.WithString("directory",
			mcp.Description("Directory path to search (uses the configured input directory if empty)"),
		),
	)
	s.mcpServer.AddTool(searchDirectoryTool, s.handleSearchDirectory)
}

// Handler functions
func (s *Server) handleScanFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	extracted, err := s.extractor.Extract(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	secs := sections.Split(extracted.Text)
	tagged := make([]pipeline.TaggedSection, 0, len(secs))
	for _, sec := range secs {
		tagged = append(tagged, pipeline.NewTaggedSection(sec))
	}

	data, err := json.MarshalIndent(tagged, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Scanned %s\n", path)
	responseText += fmt.Sprintf("Pages: %d\n", extracted.Pages)
	responseText += fmt.Sprintf("Sections: %d\n", len(tagged))
	if extracted.WasScanned {
		responseText += fmt.Sprintf("OCR pages: %v\n", extracted.ScannedPages)
	}
	responseText += "\nSections:\n"
	responseText += string(data)

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleTagText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	title := ""
	if v, ok := request.GetArguments()["title"].(string); ok {
		title = v
	}

	features := tagging.Tag(title, text)

	responseText := "Detected features:\n"
	if features.Deductible != "" {
		responseText += fmt.Sprintf("Deductible: %s\n", features.Deductible)
	}
	if features.WaitingPeriod != "" {
		responseText += fmt.Sprintf("Waiting period: %s\n", features.WaitingPeriod)
	}
	responseText += fmt.Sprintf("Exclusion section: %t\n", features.IsExclusion)
	if currency := tagging.FindCurrency(text); currency != "" {
		responseText += fmt.Sprintf("First currency mention: %s\n", currency)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleSplitText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	secs := sections.Split(text)
	if len(secs) == 0 {
		return mcp.NewToolResultText("No sections found"), nil
	}

	responseText := fmt.Sprintf("Found %d section(s):\n", len(secs))
	for i, sec := range secs {
		responseText += fmt.Sprintf("%d. %s (%d characters)\n", i+1, sec.Title, len(sec.Body))
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	validator := pdf.NewValidator(s.config.MaxFileSize)
	if err := validator.Validate(path); err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("PDF validation failed for %s: %v", path, err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("PDF file %s is valid and readable", path)), nil
}

func (s *Server) handleStatsFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	stats, err := pdf.Stats(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := "Policy PDF Statistics\n"
	responseText += fmt.Sprintf("File: %s\n", stats.Path)
	responseText += fmt.Sprintf("Size: %d bytes\n", stats.Size)
	responseText += fmt.Sprintf("Pages: %d\n", stats.PageCount)
	responseText += fmt.Sprintf("Has Images: %t\n", stats.HasImages)
	if stats.HasImages {
		responseText += fmt.Sprintf("Image Count: %d\n", stats.ImageCount)
		responseText += "\nImage-heavy documents are usually scanned; pages with little native text go through OCR automatically during a scan.\n"
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleSearchDirectory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	directory := s.config.InputDir // default
	if dir, ok := request.GetArguments()["directory"].(string); ok && dir != "" {
		directory = dir
	}

	paths, err := pipeline.ListPDFs(directory)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(paths) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No PDF files found in directory: %s", directory)), nil
	}

	responseText := fmt.Sprintf("Found %d PDF file(s) in directory: %s\n", len(paths), directory)
	for i, path := range paths {
		responseText += fmt.Sprintf("%d. %s", i+1, path)
		if info, err := os.Stat(path); err == nil {
			responseText += fmt.Sprintf(" (%d bytes)", info.Size())
		}
		responseText += "\n"
	}

	return mcp.NewToolResultText(responseText), nil
}

// Run starts the MCP server over stdio
func (s *Server) Run(_ context.Context) error {
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
