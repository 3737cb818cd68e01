package embed

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Cache is the SQLite-backed embedding cache of SPEC_FULL.md §4.12: a
// content_hash -> vector lookup the indexer coordinator consults before
// calling the embedder, so unchanged chunks never re-pay an embedding
// call. It is pure performance optimization (spec §6: "No local on-disk
// state is required for correctness") and can be deleted and rebuilt
// from the vector store's own content_hash payload field at any time.
type Cache struct {
	db *sql.DB
}

// OpenCache opens or creates the cache database at path, grounded on the
// teacher's cache package's sql.Open("sqlite3", ...) + schema-on-open
// pattern (internal/cache/settings.go, internal/cache/migration.go).
func OpenCache(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating embedding cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening embedding cache: %w", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS embeddings (
	content_hash TEXT PRIMARY KEY,
	model        TEXT NOT NULL,
	vector       BLOB NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating embedding cache schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Get returns the cached vector for (contentHash, model), and whether it
// was found. A cache entry is scoped to the model that produced it so a
// model change (spec §3 invariant I2: "re-indexing is required on model
// change") never serves a stale vector under the new model's name.
func (c *Cache) Get(ctx context.Context, contentHash, model string) ([]float32, bool, error) {
	var blob []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT vector FROM embeddings WHERE content_hash = ? AND model = ?`,
		contentHash, model,
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading embedding cache: %w", err)
	}

	var v []float32
	if err := json.Unmarshal(blob, &v); err != nil {
		return nil, false, fmt.Errorf("decoding cached vector: %w", err)
	}
	return v, true, nil
}

// Put stores vector under (contentHash, model), overwriting any prior entry.
func (c *Cache) Put(ctx context.Context, contentHash, model string, vector []float32) error {
	blob, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("encoding vector for cache: %w", err)
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO embeddings (content_hash, model, vector) VALUES (?, ?, ?)
		 ON CONFLICT(content_hash) DO UPDATE SET model = excluded.model, vector = excluded.vector`,
		contentHash, model, blob,
	)
	if err != nil {
		return fmt.Errorf("writing embedding cache: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}
