// Package ocr provides optical character recognition for scanned PDF
// pages. Rasterization and recognition are separate capabilities so the
// extraction pipeline can be tested without the external tools installed.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
)

// Rasterizer renders a single PDF page to an image.
type Rasterizer interface {
	// RenderPage renders page pageNum (1-based) of the PDF at the given
	// path to PNG bytes at the configured resolution.
	RenderPage(ctx context.Context, path string, pageNum int) ([]byte, error)
}

// Recognizer extracts text from a rendered page image.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// PopplerRasterizer renders pages by invoking pdftoppm.
type PopplerRasterizer struct {
	binary string
	dpi    int
}

// NewPopplerRasterizer creates a rasterizer that shells out to the given
// pdftoppm binary at the specified DPI.
func NewPopplerRasterizer(binary string, dpi int) *PopplerRasterizer {
	return &PopplerRasterizer{
		binary: binary,
		dpi:    dpi,
	}
}

// RenderPage renders a single page to PNG bytes.
func (r *PopplerRasterizer) RenderPage(ctx context.Context, path string, pageNum int) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "policyscraper-ocr-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	outPrefix := filepath.Join(tmpDir, "page")
	cmd := exec.CommandContext(ctx, r.binary,
		"-f", strconv.Itoa(pageNum),
		"-l", strconv.Itoa(pageNum),
		"-r", strconv.Itoa(r.dpi),
		"-png",
		path,
		outPrefix,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w: %s", err, stderr.String())
	}

	// pdftoppm names the output page-N.png with zero padding that depends
	// on the document's page count, so glob for whatever it produced.
	matches, err := filepath.Glob(outPrefix + "-*.png")
	if err != nil || len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no output for page %d", pageNum)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered page: %w", err)
	}
	return data, nil
}

// TesseractRecognizer extracts text by invoking the tesseract binary.
type TesseractRecognizer struct {
	binary string
}

// NewTesseractRecognizer creates a recognizer that shells out to the
// given tesseract binary.
func NewTesseractRecognizer(binary string) *TesseractRecognizer {
	return &TesseractRecognizer{
		binary: binary,
	}
}

// Recognize runs OCR over PNG image bytes and returns the extracted text.
func (t *TesseractRecognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	cmd := exec.CommandContext(ctx, t.binary, "stdin", "stdout")
	cmd.Stdin = bytes.NewReader(image)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract failed: %w: %s", err, stderr.String())
	}
	return stdout.String(), nil
}
