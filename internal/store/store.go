// Package store persists crawled and scanned policy documents in SQLite.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/Anubothu-Aravind/PolicyScraper/internal/pipeline"
)

const schema = `
CREATE TABLE IF NOT EXISTS insurers (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	name    TEXT NOT NULL UNIQUE,
	website TEXT
);

CREATE TABLE IF NOT EXISTS policy_documents (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	insurer_id INTEGER REFERENCES insurers(id),
	url        TEXT,
	file_path  TEXT NOT NULL,
	file_hash  TEXT,
	scraped_at TIMESTAMP,
	meta       TEXT
);

CREATE TABLE IF NOT EXISTS policy_sections (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	document_id     INTEGER NOT NULL REFERENCES policy_documents(id),
	section_title   TEXT,
	section_text    TEXT,
	extracted_items TEXT
);
`

// Store wraps the SQLite database holding insurers, documents and
// their tagged sections.
type Store struct {
	db *sqlx.DB
}

// Open connects to the SQLite database at dbPath, creating the file,
// its parent directory and the schema as needed.
func Open(dbPath string) (*Store, error) {
	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute database path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sqlx.Connect("sqlite", absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// modernc.org/sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under the worker pool.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveInsurer inserts an insurer if it is not already known and returns
// its id.
func (s *Store) SaveInsurer(ctx context.Context, name, website string) (int64, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO insurers (name, website) VALUES ($1, $2)
		 ON CONFLICT(name) DO NOTHING`,
		name, website,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save insurer: %w", err)
	}

	var id int64
	err = s.db.QueryRowContext(ctx,
		`SELECT id FROM insurers WHERE name = $1`, name,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to look up insurer: %w", err)
	}
	return id, nil
}

// SaveCrawledDocument records a downloaded document and its crawl
// metadata. meta is stored as JSON.
func (s *Store) SaveCrawledDocument(ctx context.Context, url, filePath, fileHash string, meta map[string]string) (int64, error) {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO policy_documents (url, file_path, file_hash, scraped_at, meta)
		 VALUES ($1, $2, $3, $4, $5)`,
		url, filePath, fileHash, time.Now().UTC(), string(metaJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save document: %w", err)
	}
	return res.LastInsertId()
}

// SaveDocument records a scanned document and its tagged sections. It
// satisfies the scan pipeline's sink contract.
func (s *Store) SaveDocument(ctx context.Context, filePath string, wasScanned bool, secs []pipeline.TaggedSection) error {
	fileHash, err := hashFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to hash document: %w", err)
	}

	metaJSON, err := json.Marshal(map[string]any{
		"was_scanned": wasScanned,
		"sections":    len(secs),
	})
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO policy_documents (url, file_path, file_hash, scraped_at, meta)
		 VALUES ('', $1, $2, $3, $4)`,
		filePath, fileHash, time.Now().UTC(), string(metaJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}

	docID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for _, sec := range secs {
		items, err := json.Marshal(map[string]any{
			"deductible":     sec.Deductible,
			"waiting_period": sec.WaitingPeriod,
			"is_exclusion":   sec.IsExclusion,
		})
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO policy_sections (document_id, section_title, section_text, extracted_items)
			 VALUES ($1, $2, $3, $4)`,
			docID, sec.Title, sec.SampleText, string(items),
		)
		if err != nil {
			return fmt.Errorf("failed to save section: %w", err)
		}
	}

	return tx.Commit()
}

// SectionCount reports how many sections are stored for the document
// with the given file path, or 0 when the document is unknown.
func (s *Store) SectionCount(ctx context.Context, filePath string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM policy_sections ps
		 JOIN policy_documents pd ON pd.id = ps.document_id
		 WHERE pd.file_path = $1`,
		filePath,
	).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return count, err
}

// hashFile returns the hex SHA-256 of a file's contents.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
