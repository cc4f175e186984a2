// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists resolved papers and complete relation listings
// in a local SQLite database so repeated runs against unchanged API
// state do not re-crawl.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Ayden-Zhou/Scholar-Tool/pkg/types"
)

const dbFile = "scholar.db"

// Store manages the cache SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens or creates the cache database at dir/scholar.db,
// creating the schema if it does not exist.
func NewStore(cfg types.CacheConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			title TEXT,
			year INTEGER,
			citation_count INTEGER,
			authors TEXT,
			fetched_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS resolutions (
			query TEXT PRIMARY KEY,
			paper_id TEXT NOT NULL REFERENCES papers(id)
		)`,
		`CREATE TABLE IF NOT EXISTS listings (
			paper_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			filter_key TEXT NOT NULL,
			entries TEXT NOT NULL,
			fetched_at TEXT,
			PRIMARY KEY (paper_id, kind, filter_key)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// PutResolved records that query resolved to node, upserting the paper
// record alongside the mapping.
func (s *Store) PutResolved(ctx context.Context, query string, node types.PaperNode) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := upsertPaper(ctx, tx, node); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO resolutions (query, paper_id) VALUES (?, ?)
		 ON CONFLICT(query) DO UPDATE SET paper_id=excluded.paper_id`,
		query, node.PaperID,
	)
	if err != nil {
		return fmt.Errorf("recording resolution: %w", err)
	}
	return tx.Commit()
}

// GetResolved returns the cached resolution for query, if any.
func (s *Store) GetResolved(ctx context.Context, query string) (types.PaperNode, bool, error) {
	var node types.PaperNode
	var authorsJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT p.id, p.title, p.year, p.citation_count, p.authors
		 FROM resolutions r JOIN papers p ON p.id = r.paper_id
		 WHERE r.query = ?`, query,
	).Scan(&node.PaperID, &node.Title, &node.Year, &node.CitationCount, &authorsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return types.PaperNode{}, false, nil
	}
	if err != nil {
		return types.PaperNode{}, false, fmt.Errorf("reading resolution: %w", err)
	}
	if authorsJSON != "" {
		if err := json.Unmarshal([]byte(authorsJSON), &node.Authors); err != nil {
			return types.PaperNode{}, false, fmt.Errorf("parsing cached authors: %w", err)
		}
	}
	return node, true, nil
}

// PutListing stores the complete relation listing for (paperID, kind)
// under the filter's cache key.
func (s *Store) PutListing(ctx context.Context, paperID string, kind types.RelationKind, filter types.RelationFilter, entries []types.RelationEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding listing: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO listings (paper_id, kind, filter_key, entries, fetched_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(paper_id, kind, filter_key) DO UPDATE SET
			entries=excluded.entries, fetched_at=excluded.fetched_at`,
		paperID, string(kind), filter.FilterKey(), string(data),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("storing listing: %w", err)
	}
	return nil
}

// GetListing returns the cached relation listing for (paperID, kind,
// filter), if any. A cached empty listing is a hit: papers with no
// references exist and re-fetching them every run defeats the cache.
func (s *Store) GetListing(ctx context.Context, paperID string, kind types.RelationKind, filter types.RelationFilter) ([]types.RelationEntry, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT entries FROM listings WHERE paper_id = ? AND kind = ? AND filter_key = ?`,
		paperID, string(kind), filter.FilterKey(),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading listing: %w", err)
	}

	var entries []types.RelationEntry
	if err := json.Unmarshal([]byte(data), &entries); err != nil {
		return nil, false, fmt.Errorf("parsing cached listing: %w", err)
	}
	return entries, true, nil
}

// Stats summarizes cache contents.
type Stats struct {
	Papers      int
	Resolutions int
	Listings    int
}

// Stats returns row counts per table.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	for _, q := range []struct {
		table string
		dst   *int
	}{
		{"papers", &st.Papers},
		{"resolutions", &st.Resolutions},
		{"listings", &st.Listings},
	} {
		if err := s.db.QueryRowContext(ctx,
			fmt.Sprintf(`SELECT count(*) FROM %s`, q.table),
		).Scan(q.dst); err != nil {
			return Stats{}, fmt.Errorf("counting %s: %w", q.table, err)
		}
	}
	return st, nil
}

// Clear removes all cached rows.
func (s *Store) Clear(ctx context.Context) error {
	for _, table := range []string{"resolutions", "listings", "papers"} {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

func upsertPaper(ctx context.Context, tx *sql.Tx, node types.PaperNode) error {
	authorsJSON, _ := json.Marshal(node.Authors)
	_, err := tx.ExecContext(ctx,
		`INSERT INTO papers (id, title, year, citation_count, authors, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, year=excluded.year,
			citation_count=excluded.citation_count, authors=excluded.authors,
			fetched_at=excluded.fetched_at`,
		node.PaperID, node.Title, node.Year, node.CitationCount,
		string(authorsJSON), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting paper %s: %w", node.PaperID, err)
	}
	return nil
}
