package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/Anubothu-Aravind/PolicyScraper/internal/config"
	"github.com/Anubothu-Aravind/PolicyScraper/internal/report"
	"github.com/Anubothu-Aravind/PolicyScraper/internal/utils"
)

var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
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

	gen := report.NewGenerator(logger, cfg.ReportDir)
	reports, err := gen.Generate(cfg.OutputDir)
	if err != nil {
		logger.Fatal("report generation failed", "error", err)
	}

	var flagged, currency int
	for _, r := range reports {
		flagged += len(r.Flagged)
		currency += len(r.CurrencyMentions)
	}
	logger.Info("reports written",
		"documents", len(reports),
		"flagged_sections", flagged,
		"currency_mentions", currency,
		"dir", cfg.ReportDir,
	)
}

func printVersion() {
	fmt.Printf("PolicyScraper Report Generator\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
