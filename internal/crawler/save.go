package crawler

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"
)

// hashPrefixLen bounds the URL-hash prefix prepended to saved file
// names. Ten hex characters keep names short while still separating
// same-named documents from different URLs.
const hashPrefixLen = 10

// DocumentMeta is the sidecar record written next to every downloaded
// document.
type DocumentMeta struct {
	URL          string `json:"url"`
	FileName     string `json:"file_name"`
	Path         string `json:"path"`
	Hash         string `json:"hash"`
	DownloadedAt string `json:"downloaded_at"`
}

// SaveDocument writes a downloaded PDF into rawDir under a hash-prefixed
// name and drops a JSON metadata sidecar into metaDir. The same URL
// always maps to the same file name, so re-crawls overwrite in place
// instead of piling up duplicates.
func SaveDocument(rawDir, metaDir, rawURL string, body []byte) (*DocumentMeta, error) {
	hash := hashURL(rawURL)
	fileName := hash + "_" + baseName(rawURL)
	filePath := filepath.Join(rawDir, fileName)

	if err := os.WriteFile(filePath, body, 0o644); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	meta := &DocumentMeta{
		URL:          rawURL,
		FileName:     fileName,
		Path:         filePath,
		Hash:         hash,
		DownloadedAt: time.Now().UTC().Format(time.RFC3339),
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, err
	}
	metaPath := filepath.Join(metaDir, fileName+".json")
	if err := os.WriteFile(metaPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to save metadata: %w", err)
	}

	return meta, nil
}

// hashURL returns a short stable identifier for a URL.
func hashURL(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:])[:hashPrefixLen]
}

// baseName extracts a safe file name from a URL, falling back to
// "document.pdf" when the path carries none.
func baseName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "document.pdf"
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "document.pdf"
	}
	return name
}
