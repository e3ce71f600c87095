package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeBatch = "batch"
	ModeStdio = "stdio"

	// Default values
	DefaultInputDir    = "data/raw_pdfs"
	DefaultOutputDir   = "data/parsed"
	DefaultReportDir   = "data/reports"
	DefaultMetaDir     = "data/meta"
	DefaultDatasetFile = "data/training_dataset.csv"
	DefaultLogLevel    = "info"
	DefaultWorkers     = 1
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB
	DefaultOCRDPI      = 200
	DefaultOCRTimeout  = 2 * time.Minute

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the policy document pipeline
type Config struct {
	// Execution mode: "batch" runs the pipeline once, "stdio" serves MCP tools
	Mode string

	// Directory layout
	InputDir  string
	OutputDir string
	ReportDir string
	MetaDir   string

	// Dataset builder output
	DatasetFile string

	// Optional SQLite sink; empty disables persistence
	DBPath string

	// Pipeline tuning
	Workers     int
	MaxFileSize int64

	// OCR fallback
	OCRBinary       string
	RasterizeBinary string
	OCRDPI          int
	OCRTimeout      time.Duration

	// Crawler
	Seeds         []string
	MaxSubpages   int
	CrawlDelay    time.Duration
	CrawlParallel int
	UserAgent     string

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Mode:            ModeBatch,
		InputDir:        DefaultInputDir,
		OutputDir:       DefaultOutputDir,
		ReportDir:       DefaultReportDir,
		MetaDir:         DefaultMetaDir,
		DatasetFile:     DefaultDatasetFile,
		DBPath:          "",
		Workers:         DefaultWorkers,
		MaxFileSize:     DefaultMaxFileSize,
		OCRBinary:       "tesseract",
		RasterizeBinary: "pdftoppm",
		OCRDPI:          DefaultOCRDPI,
		OCRTimeout:      DefaultOCRTimeout,
		MaxSubpages:     6,
		CrawlDelay:      time.Second,
		CrawlParallel:   2,
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
			"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
		Version:    "1.0.0",
		ServerName: "policyscraper",
		LogLevel:   DefaultLogLevel,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()

	pflag.Parse()

	if file := viper.GetString("config"); file != "" {
		viper.SetConfigFile(file)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	populateConfigFromViper(cfg)

	// Expand directory paths
	for _, dir := range []*string{&cfg.InputDir, &cfg.OutputDir, &cfg.ReportDir, &cfg.MetaDir} {
		if *dir != "" {
			if expanded, err := filepath.Abs(*dir); err == nil {
				*dir = expanded
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("POLICY")
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("indir", cfg.InputDir)
	viper.SetDefault("outdir", cfg.OutputDir)
	viper.SetDefault("reportdir", cfg.ReportDir)
	viper.SetDefault("metadir", cfg.MetaDir)
	viper.SetDefault("dataset", cfg.DatasetFile)
	viper.SetDefault("db", cfg.DBPath)
	viper.SetDefault("workers", cfg.Workers)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("ocrbinary", cfg.OCRBinary)
	viper.SetDefault("rasterizebinary", cfg.RasterizeBinary)
	viper.SetDefault("ocrdpi", cfg.OCRDPI)
	viper.SetDefault("ocrtimeout", cfg.OCRTimeout)
	viper.SetDefault("seeds", cfg.Seeds)
	viper.SetDefault("maxsubpages", cfg.MaxSubpages)
	viper.SetDefault("crawldelay", cfg.CrawlDelay)
	viper.SetDefault("crawlparallel", cfg.CrawlParallel)
	viper.SetDefault("useragent", cfg.UserAgent)
	viper.SetDefault("loglevel", cfg.LogLevel)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("config", "", "Optional config file (YAML) with the same keys as the flags")
	pflag.String("mode", cfg.Mode, "Execution mode: 'batch' to process a directory once, 'stdio' to serve MCP tools")
	pflag.String("indir", cfg.InputDir, "Directory containing source PDF files")
	pflag.String("outdir", cfg.OutputDir, "Directory for per-document JSON artifacts")
	pflag.String("reportdir", cfg.ReportDir, "Directory for flagged-section reports")
	pflag.String("metadir", cfg.MetaDir, "Directory for crawler metadata sidecars")
	pflag.String("dataset", cfg.DatasetFile, "Output CSV file for the training dataset")
	pflag.String("db", cfg.DBPath, "SQLite database file for the optional persistence sink (empty disables)")
	pflag.Int("workers", cfg.Workers, "Number of concurrent document workers")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.String("ocrbinary", cfg.OCRBinary, "Path to the tesseract binary used for scanned pages")
	pflag.String("rasterizebinary", cfg.RasterizeBinary, "Path to the pdftoppm binary used for page rasterization")
	pflag.Int("ocrdpi", cfg.OCRDPI, "Rasterization DPI for OCR")
	pflag.Duration("ocrtimeout", cfg.OCRTimeout, "Per-file timeout for OCR work")
	pflag.StringSlice("seeds", cfg.Seeds, "Seed URLs for the crawler")
	pflag.Int("maxsubpages", cfg.MaxSubpages, "Maximum product-like subpages followed per seed")
	pflag.Duration("crawldelay", cfg.CrawlDelay, "Delay between crawler requests")
	pflag.Int("crawlparallel", cfg.CrawlParallel, "Crawler request parallelism")
	pflag.String("useragent", cfg.UserAgent, "User agent for crawler requests")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range []string{
		"config", "mode", "indir", "outdir", "reportdir", "metadir", "dataset", "db",
		"workers", "maxfilesize", "ocrbinary", "rasterizebinary", "ocrdpi", "ocrtimeout",
		"seeds", "maxsubpages", "crawldelay", "crawlparallel", "useragent", "loglevel",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.InputDir = viper.GetString("indir")
	cfg.OutputDir = viper.GetString("outdir")
	cfg.ReportDir = viper.GetString("reportdir")
	cfg.MetaDir = viper.GetString("metadir")
	cfg.DatasetFile = viper.GetString("dataset")
	cfg.DBPath = viper.GetString("db")
	cfg.Workers = viper.GetInt("workers")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.OCRBinary = viper.GetString("ocrbinary")
	cfg.RasterizeBinary = viper.GetString("rasterizebinary")
	cfg.OCRDPI = viper.GetInt("ocrdpi")
	cfg.OCRTimeout = viper.GetDuration("ocrtimeout")
	cfg.Seeds = viper.GetStringSlice("seeds")
	cfg.MaxSubpages = viper.GetInt("maxsubpages")
	cfg.CrawlDelay = viper.GetDuration("crawldelay")
	cfg.CrawlParallel = viper.GetInt("crawlparallel")
	cfg.UserAgent = viper.GetString("useragent")
	cfg.LogLevel = viper.GetString("loglevel")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeBatch && c.Mode != ModeStdio {
		return errors.New("mode must be either 'batch' or 'stdio'")
	}

	if c.InputDir == "" {
		return errors.New("input directory cannot be empty")
	}

	// Pipeline directories are created on demand
	for _, dir := range []string{c.InputDir, c.OutputDir, c.ReportDir, c.MetaDir} {
		if dir == "" {
			continue
		}
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, DefaultDirPerm); err != nil {
				return fmt.Errorf("cannot create directory %s: %w", dir, err)
			}
		} else if err != nil {
			return fmt.Errorf("cannot access directory %s: %w", dir, err)
		}
	}

	if c.Workers < 1 {
		return errors.New("workers must be at least 1")
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.OCRDPI < 72 || c.OCRDPI > 1200 {
		return fmt.Errorf("ocr dpi %d out of range (72-1200)", c.OCRDPI)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// IsBatchMode returns true when the pipeline runs once over the input directory
func (c *Config) IsBatchMode() bool {
	return c.Mode == ModeBatch
}

// IsStdioMode returns true when serving MCP tools over stdio
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, InputDir: %s, OutputDir: %s, Workers: %d, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.InputDir, c.OutputDir, c.Workers, c.LogLevel, c.MaxFileSize)
}
