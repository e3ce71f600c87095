package pdf

import "fmt"

// OpenError indicates the input file is missing, unreadable, or not a valid
// PDF. Fatal for the document, never for the batch.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// RenderError indicates a page could not be rasterized for OCR.
type RenderError struct {
	Path string
	Page int
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s page %d: %v", e.Path, e.Page, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// OCRError indicates text recognition failed on a rasterized page.
type OCRError struct {
	Path string
	Page int
	Err  error
}

func (e *OCRError) Error() string {
	return fmt.Sprintf("ocr %s page %d: %v", e.Path, e.Page, e.Err)
}

func (e *OCRError) Unwrap() error { return e.Err }
