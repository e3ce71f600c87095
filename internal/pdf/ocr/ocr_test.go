package ocr

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// writeScript drops an executable shell script standing in for an
// external tool.
func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tool scripts need a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPopplerRasterizer_RenderPage(t *testing.T) {
	// pdftoppm is invoked as: -f N -l N -r DPI -png <input> <prefix>;
	// the fake writes a page image under the prefix like the real tool.
	script := writeScript(t, "pdftoppm", `
for last; do :; done
printf 'fake png bytes' > "$last-1.png"
`)

	r := NewPopplerRasterizer(script, 200)
	data, err := r.RenderPage(context.Background(), "input.pdf", 1)
	assert.NoError(t, err)
	assert.Equal(t, []byte("fake png bytes"), data)
}

func TestPopplerRasterizer_NoOutput(t *testing.T) {
	script := writeScript(t, "pdftoppm", "exit 0\n")

	r := NewPopplerRasterizer(script, 200)
	_, err := r.RenderPage(context.Background(), "input.pdf", 1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no output")
}

func TestPopplerRasterizer_BinaryFailure(t *testing.T) {
	script := writeScript(t, "pdftoppm", "echo 'Syntax Error' >&2\nexit 1\n")

	r := NewPopplerRasterizer(script, 200)
	_, err := r.RenderPage(context.Background(), "input.pdf", 3)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Syntax Error")
}

func TestPopplerRasterizer_MissingBinary(t *testing.T) {
	r := NewPopplerRasterizer(filepath.Join(t.TempDir(), "nope"), 200)
	_, err := r.RenderPage(context.Background(), "input.pdf", 1)
	assert.Error(t, err)
}

func TestTesseractRecognizer_Recognize(t *testing.T) {
	// tesseract is invoked as: <binary> stdin stdout; the fake echoes
	// the image bytes back as "recognized" text.
	script := writeScript(t, "tesseract", "cat\n")

	rec := NewTesseractRecognizer(script)
	text, err := rec.Recognize(context.Background(), []byte("EXCLUSIONS apply"))
	assert.NoError(t, err)
	assert.Equal(t, "EXCLUSIONS apply", text)
}

func TestTesseractRecognizer_BinaryFailure(t *testing.T) {
	script := writeScript(t, "tesseract", "echo 'bad image' >&2\nexit 1\n")

	rec := NewTesseractRecognizer(script)
	_, err := rec.Recognize(context.Background(), []byte("not an image"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "bad image")
}

func TestContextCancellation(t *testing.T) {
	script := writeScript(t, "tesseract", "sleep 10\n")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	rec := NewTesseractRecognizer(script)
	_, err := rec.Recognize(ctx, []byte("image"))
	assert.Error(t, err)
}
