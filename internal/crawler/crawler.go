// Package crawler downloads policy PDFs from insurer websites. Seed
// pages are scanned for direct PDF links and for product subpages,
// which are followed one level deep and scanned the same way.
package crawler

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly"

	"github.com/Anubothu-Aravind/PolicyScraper/internal/utils"
)

// Recorder persists crawl results, typically backed by the SQLite store.
type Recorder interface {
	SaveCrawledDocument(ctx context.Context, url, filePath, fileHash string, meta map[string]string) (int64, error)
}

// Options configure a crawl run.
type Options struct {
	RawDir      string
	MetaDir     string
	UserAgent   string
	MaxSubpages int
	Delay       time.Duration
	Parallelism int
}

// Crawler fetches seed pages and downloads the policy documents they
// link to.
type Crawler struct {
	collector *colly.Collector
	logger    *utils.Logger
	recorder  Recorder
	opts      Options

	mu       sync.Mutex
	subpages map[string]int
	saved    int
}

// New creates a crawler. recorder may be nil to skip database
// persistence.
func New(logger *utils.Logger, recorder Recorder, opts Options) (*Crawler, error) {
	if opts.MaxSubpages <= 0 {
		opts.MaxSubpages = 6
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = 2
	}

	collector := colly.NewCollector(
		colly.UserAgent(opts.UserAgent),
		colly.Async(true),
	)
	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: opts.Parallelism,
		Delay:       opts.Delay,
	}); err != nil {
		return nil, fmt.Errorf("failed to configure rate limit: %w", err)
	}

	c := &Crawler{
		collector: collector,
		logger:    logger,
		recorder:  recorder,
		opts:      opts,
		subpages:  make(map[string]int),
	}
	c.register()
	return c, nil
}

// Run crawls every seed URL and blocks until all requests finish.
// Returns the number of documents saved.
func (c *Crawler) Run(ctx context.Context, seeds []string) (int, error) {
	for _, seed := range seeds {
		reqCtx := colly.NewContext()
		reqCtx.Put("depth", "0")
		reqCtx.Put("seed", seed)
		if err := c.collector.Request("GET", seed, nil, reqCtx, nil); err != nil {
			c.logger.Error("failed to request seed", "url", seed, "error", err)
		}
	}
	c.collector.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saved, ctx.Err()
}

func (c *Crawler) register() {
	c.collector.OnResponse(func(r *colly.Response) {
		pageURL := r.Request.URL.String()
		contentType := strings.ToLower(r.Headers.Get("Content-Type"))

		if IsPDFLink(pageURL) || strings.Contains(contentType, "application/pdf") {
			c.handlePDF(pageURL, r.Body)
			return
		}
		c.handlePage(r)
	})

	c.collector.OnError(func(r *colly.Response, err error) {
		c.logger.Error("request failed", "url", r.Request.URL.String(), "error", err)
	})
}

func (c *Crawler) handlePDF(pageURL string, body []byte) {
	meta, err := SaveDocument(c.opts.RawDir, c.opts.MetaDir, pageURL, body)
	if err != nil {
		c.logger.Error("failed to save document", "url", pageURL, "error", err)
		return
	}

	if c.recorder != nil {
		_, err := c.recorder.SaveCrawledDocument(context.Background(), pageURL, meta.Path, meta.Hash, map[string]string{
			"file_name":     meta.FileName,
			"downloaded_at": meta.DownloadedAt,
		})
		if err != nil {
			c.logger.Error("failed to record document", "url", pageURL, "error", err)
		}
	}

	c.mu.Lock()
	c.saved++
	c.mu.Unlock()
	c.logger.Info("document saved", "url", pageURL, "file", meta.FileName)
}

func (c *Crawler) handlePage(r *colly.Response) {
	pageURL := r.Request.URL.String()
	depth, _ := strconv.Atoi(r.Ctx.Get("depth"))
	seed := r.Ctx.Get("seed")

	links, err := ExtractLinks(bytes.NewReader(r.Body), r.Request.URL)
	if err != nil {
		c.logger.Error("failed to parse page", "url", pageURL, "error", err)
		return
	}

	for _, pdfURL := range links.PDFs {
		c.enqueue(pdfURL, depth+1, seed)
	}

	// Product subpages are only followed from seed pages, capped per
	// seed so one link-heavy index cannot flood the crawl.
	if depth > 0 {
		return
	}
	for _, page := range links.Pages {
		if !IsProductLike(page) {
			continue
		}
		c.mu.Lock()
		if c.subpages[seed] >= c.opts.MaxSubpages {
			c.mu.Unlock()
			break
		}
		c.subpages[seed]++
		c.mu.Unlock()
		c.enqueue(page, depth+1, seed)
	}
}

func (c *Crawler) enqueue(target string, depth int, seed string) {
	reqCtx := colly.NewContext()
	reqCtx.Put("depth", strconv.Itoa(depth))
	reqCtx.Put("seed", seed)
	if err := c.collector.Request("GET", target, nil, reqCtx, nil); err != nil && err != colly.ErrAlreadyVisited {
		c.logger.Debug("skipping link", "url", target, "error", err)
	}
}
