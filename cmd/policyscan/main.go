package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/Anubothu-Aravind/PolicyScraper/internal/config"
	"github.com/Anubothu-Aravind/PolicyScraper/internal/mcp"
	"github.com/Anubothu-Aravind/PolicyScraper/internal/pdf"
	"github.com/Anubothu-Aravind/PolicyScraper/internal/pdf/ocr"
	"github.com/Anubothu-Aravind/PolicyScraper/internal/pipeline"
	"github.com/Anubothu-Aravind/PolicyScraper/internal/store"
	"github.com/Anubothu-Aravind/PolicyScraper/internal/utils"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.LogLevel)

	if version != "dev" {
		cfg.Version = version
	}

	extractor := pdf.NewExtractor(
		pdf.NewReader(cfg.MaxFileSize),
		ocr.NewPopplerRasterizer(cfg.RasterizeBinary, cfg.OCRDPI),
		ocr.NewTesseractRecognizer(cfg.OCRBinary),
		cfg.OCRTimeout,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsStdioMode() {
		runStdioMode(ctx, cfg, extractor, logger)
		return
	}
	runBatchMode(ctx, cancel, cfg, extractor, logger)
}

// runBatchMode processes the input directory once and exits.
func runBatchMode(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, extractor pipeline.Extractor, logger *utils.Logger) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		sig := <-signalCh
		logger.Info("received signal, stopping", "signal", sig.String())
		cancel()
	}()

	var sink pipeline.Sink
	if cfg.DBPath != "" {
		db, err := store.Open(cfg.DBPath)
		if err != nil {
			logger.Fatal("failed to open database", "path", cfg.DBPath, "error", err)
		}
		defer db.Close()
		sink = db
	}

	p := pipeline.New(extractor, sink, logger, cfg.OutputDir, cfg.Workers)
	results, err := p.Run(ctx, cfg.InputDir)
	if err != nil {
		logger.Fatal("pipeline failed", "error", err)
	}

	logger.Info("pipeline finished",
		"documents", len(results),
		"output", cfg.OutputDir,
	)
}

// runStdioMode serves the scanning tools over MCP stdio. The parent
// process controls our lifecycle.
func runStdioMode(ctx context.Context, cfg *config.Config, extractor pipeline.Extractor, logger *utils.Logger) {
	server, err := mcp.NewServer(cfg, extractor)
	if err != nil {
		logger.Fatal("failed to create MCP server", "error", err)
	}

	if err := server.Run(ctx); err != nil {
		logger.Fatal("server error", "error", err)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("PolicyScraper Scanner\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
