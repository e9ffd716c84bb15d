// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package relstore persists extracted relations in SQLite and exports them.
// Extraction results arrive as [doc-id]-relations.yaml files; ingestion is
// incremental by file modification time.
package relstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/minmax/pkg/types"
)

const (
	dbFile       = "minmax.db"
	resultSuffix = "-relations.yaml"
)

// Store manages the relation database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// NewStore opens or creates the database at cfg.StoreDir/minmax.db and
// creates the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.StoreDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	dbPath := filepath.Join(cfg.StoreDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = types.DefaultMaxResults
	}

	s := &Store{db: db, dir: cfg.StoreDir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			relation_count INTEGER NOT NULL DEFAULT 0,
			error TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS relations (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			type TEXT NOT NULL,
			document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			start_offset INTEGER NOT NULL,
			end_offset INTEGER NOT NULL,
			text TEXT NOT NULL,
			normalized_text TEXT,
			unit TEXT,
			properties TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_relations_document_id ON relations(document_id)`,
		`CREATE INDEX IF NOT EXISTS idx_relations_type ON relations(type)`,
		`CREATE INDEX IF NOT EXISTS idx_relations_unit ON relations(unit)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			document_id TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save replaces the stored relations of result's document.
func (s *Store) Save(ctx context.Context, result types.ExtractionResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := saveResult(ctx, tx, result); err != nil {
		return err
	}
	return tx.Commit()
}

func saveResult(ctx context.Context, tx *sql.Tx, result types.ExtractionResult) error {
	if result.DocumentID == "" {
		return fmt.Errorf("saving result: empty document id")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM relations WHERE document_id = ?`, result.DocumentID); err != nil {
		return fmt.Errorf("deleting old relations: %w", err)
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO documents (id, relation_count, error) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET relation_count=excluded.relation_count, error=excluded.error`,
		result.DocumentID, len(result.Relations), result.Error,
	)
	if err != nil {
		return fmt.Errorf("upserting document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO relations (id, type, document_id, start_offset, end_offset, text, normalized_text, unit, properties)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range result.Relations {
		propsJSON, err := json.Marshal(r.Properties)
		if err != nil {
			return fmt.Errorf("encoding properties of %s: %w", r.ID, err)
		}
		_, err = stmt.ExecContext(ctx,
			r.ID, r.Type, result.DocumentID, r.Start, r.End,
			r.Text, r.NormalizedText, r.Properties[types.PropUnitOfMeasure], string(propsJSON),
		)
		if err != nil {
			return fmt.Errorf("inserting relation %s: %w", r.ID, err)
		}
	}
	return nil
}

// IngestSummary holds counts from an ingestion run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of result files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest loads every [doc-id]-relations.yaml file in dir. Files unchanged
// since their last ingestion are skipped. On success it writes
// export.yaml.
func (s *Store) Ingest(ctx context.Context, dir string, w io.Writer) (IngestSummary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading results directory %s: %w", dir, err)
	}

	var summary IngestSummary
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), resultSuffix) {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		docID := strings.TrimSuffix(entry.Name(), resultSuffix)
		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE document_id = ?`, docID,
		).Scan(&storedModTime)
		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", docID)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		result, err := ReadResult(filepath.Join(dir, entry.Name()))
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			summary.Failed++
			continue
		}
		if result.DocumentID == "" {
			result.DocumentID = docID
		}

		if err := s.ingestResult(ctx, result, modTime); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d relations)\n", docID, len(result.Relations))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d relations)\n", docID, len(result.Relations))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	if summary.Indexed > 0 || summary.Updated > 0 {
		if _, err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}
	return summary, nil
}

func (s *Store) ingestResult(ctx context.Context, result types.ExtractionResult, modTime string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := saveResult(ctx, tx, result); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (document_id, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(document_id) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		result.DocumentID, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}
	return tx.Commit()
}
