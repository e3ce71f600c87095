package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/Anubothu-Aravind/PolicyScraper/internal/config"
	"github.com/Anubothu-Aravind/PolicyScraper/internal/dataset"
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

	builder := dataset.NewBuilder(logger)
	rows, err := builder.Build(cfg.OutputDir, cfg.DatasetFile)
	if err != nil {
		logger.Fatal("dataset build failed", "error", err)
	}

	logger.Info("dataset written", "rows", rows, "path", cfg.DatasetFile)
}

func printVersion() {
	fmt.Printf("PolicyScraper Dataset Builder\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
