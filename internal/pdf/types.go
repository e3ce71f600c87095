package pdf

// ExtractResult represents the outcome of extracting one document's text
type ExtractResult struct {
	Path string `json:"path"`
	// Text is the concatenation of per-page texts, native or OCR, joined by
	// newlines in page order.
	Text string `json:"text"`
	// WasScanned is true when at least one page fell back to OCR.
	WasScanned bool `json:"was_scanned"`
	Pages      int  `json:"pages"`
	// ScannedPages lists the 1-based page numbers that required OCR.
	ScannedPages []int `json:"scanned_pages,omitempty"`
}

// DocumentStats holds pdfcpu-derived diagnostics about a PDF file
type DocumentStats struct {
	Path       string `json:"path"`
	PageCount  int    `json:"page_count"`
	HasImages  bool   `json:"has_images"`
	ImageCount int    `json:"image_count"`
	Size       int64  `json:"size"`
}
