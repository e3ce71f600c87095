package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/Anubothu-Aravind/PolicyScraper/internal/config"
	"github.com/Anubothu-Aravind/PolicyScraper/internal/crawler"
	"github.com/Anubothu-Aravind/PolicyScraper/internal/store"
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

	if len(cfg.Seeds) == 0 {
		logger.Fatal("no seed URLs configured, pass --seeds or set POLICY_SEEDS")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-signalCh
		logger.Info("received signal, stopping", "signal", sig.String())
		cancel()
	}()

	var recorder crawler.Recorder
	if cfg.DBPath != "" {
		db, err := store.Open(cfg.DBPath)
		if err != nil {
			logger.Fatal("failed to open database", "path", cfg.DBPath, "error", err)
		}
		defer db.Close()
		recorder = db

		for _, seed := range cfg.Seeds {
			u, err := url.Parse(seed)
			if err != nil || u.Host == "" {
				logger.Warn("skipping malformed seed", "url", seed)
				continue
			}
			if _, err := db.SaveInsurer(ctx, u.Host, seed); err != nil {
				logger.Error("failed to register insurer", "host", u.Host, "error", err)
			}
		}
	}

	c, err := crawler.New(logger, recorder, crawler.Options{
		RawDir:      cfg.InputDir,
		MetaDir:     cfg.MetaDir,
		UserAgent:   cfg.UserAgent,
		MaxSubpages: cfg.MaxSubpages,
		Delay:       cfg.CrawlDelay,
		Parallelism: cfg.CrawlParallel,
	})
	if err != nil {
		logger.Fatal("failed to create crawler", "error", err)
	}

	saved, err := c.Run(ctx, cfg.Seeds)
	if err != nil {
		logger.Fatal("crawl failed", "error", err)
	}

	logger.Info("crawl finished", "documents", saved, "dir", cfg.InputDir)
}

func printVersion() {
	fmt.Printf("PolicyScraper Crawler\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
