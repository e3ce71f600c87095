package pdf

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Anubothu-Aravind/PolicyScraper/internal/pdf/ocr"
)

// nativeTextThreshold is the minimum number of characters of trimmed
// native text a page must yield before it is considered digital. Pages
// below the threshold are treated as scanned and sent through OCR.
const nativeTextThreshold = 50

// PageSource yields the native text layer of each page of a PDF.
type PageSource interface {
	PageTexts(path string) ([]string, error)
}

// Extractor extracts text from PDF documents, falling back to OCR on
// pages with little or no native text.
type Extractor struct {
	reader     PageSource
	rasterizer ocr.Rasterizer
	recognizer ocr.Recognizer
	ocrTimeout time.Duration
}

// NewExtractor creates an extractor with the given OCR capabilities.
// Either OCR dependency may be nil, in which case scanned pages
// contribute empty text instead of failing.
func NewExtractor(reader PageSource, rasterizer ocr.Rasterizer, recognizer ocr.Recognizer, ocrTimeout time.Duration) *Extractor {
	return &Extractor{
		reader:     reader,
		rasterizer: rasterizer,
		recognizer: recognizer,
		ocrTimeout: ocrTimeout,
	}
}

// Extract returns the full text of the document at path. Pages whose
// native text layer is below the threshold are rasterized and OCRed. An
// OCR failure on any page fails the whole document: partial text from a
// scanned document would silently corrupt everything downstream.
func (e *Extractor) Extract(ctx context.Context, path string) (*ExtractResult, error) {
	pageTexts, err := e.reader.PageTexts(path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}

	result := &ExtractResult{
		Path:  path,
		Pages: len(pageTexts),
	}

	var sb strings.Builder
	for i, text := range pageTexts {
		pageNum := i + 1
		if utf8.RuneCountInString(strings.TrimSpace(text)) < nativeTextThreshold {
			ocrText, err := e.ocrPage(ctx, path, pageNum)
			if err != nil {
				return nil, err
			}
			text = ocrText
			result.WasScanned = true
			result.ScannedPages = append(result.ScannedPages, pageNum)
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(text)
	}

	result.Text = sb.String()
	return result, nil
}

// ocrPage renders a single page and runs recognition on it.
func (e *Extractor) ocrPage(ctx context.Context, path string, pageNum int) (string, error) {
	if e.rasterizer == nil || e.recognizer == nil {
		return "", nil
	}

	if e.ocrTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.ocrTimeout)
		defer cancel()
	}

	image, err := e.rasterizer.RenderPage(ctx, path, pageNum)
	if err != nil {
		return "", &RenderError{Path: path, Page: pageNum, Err: err}
	}

	text, err := e.recognizer.Recognize(ctx, image)
	if err != nil {
		return "", &OCRError{Path: path, Page: pageNum, Err: err}
	}
	return text, nil
}
