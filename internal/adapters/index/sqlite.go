// Package index persists the merged covering as a SQLite artifact.
package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/ArnCarveris/geocore/internal/domain"
)

// schema holds the cell-to-object table and a metadata table. The cell index
// is what lets a consumer answer "which objects cover this location".
const schema = `
CREATE TABLE locality_cells (
	cell_id   INTEGER NOT NULL,
	object_id INTEGER NOT NULL
);
CREATE INDEX locality_cells_by_cell ON locality_cells (cell_id);
CREATE TABLE metadata (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

const dataVersionKey = "data_version"

// DataVersion stamps the artifact with the generator version, build time and
// source file.
type DataVersion struct {
	Version string    `json:"version"`
	BuiltAt time.Time `json:"built_at"`
}

// Builder implements the output.IndexBuilder port on SQLite.
type Builder struct {
	version string
	logger  *slog.Logger
}

// NewBuilder creates a builder. The version string ends up in the artifact's
// data version stamp.
func NewBuilder(version string, logger *slog.Logger) *Builder {
	return &Builder{version: version, logger: logger}
}

// Build writes the covering to outPath, replacing any previous artifact.
// There are no partial-success semantics: on any error the output must be
// considered invalid.
func (b *Builder) Build(ctx context.Context, covering *domain.Covering, outPath string) error {
	// Always rebuild from scratch.
	if err := os.Remove(outPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing previous index %s: %w", outPath, err)
	}

	db, err := sql.Open("sqlite3", outPath)
	if err != nil {
		return fmt.Errorf("opening index %s: %w", outPath, err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	if err := b.writeEntries(ctx, db, covering); err != nil {
		return err
	}
	if err := b.writeDataVersion(ctx, db); err != nil {
		return err
	}

	b.logger.Info("persisted locality index", "path", outPath, "entries", covering.Len())
	return nil
}

// writeEntries inserts all covering entries in one transaction.
func (b *Builder) writeEntries(ctx context.Context, db *sql.DB, covering *domain.Covering) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO locality_cells (cell_id, object_id) VALUES (?, ?)")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, entry := range covering.Entries() {
		if _, err := stmt.ExecContext(ctx, int64(entry.Cell), int64(entry.Object)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("inserting entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing entries: %w", err)
	}
	return nil
}

// writeDataVersion stores the data version stamp in the metadata table.
func (b *Builder) writeDataVersion(ctx context.Context, db *sql.DB) error {
	stamp, err := json.Marshal(DataVersion{Version: b.version, BuiltAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encoding data version: %w", err)
	}

	_, err = db.ExecContext(ctx,
		"INSERT INTO metadata (key, value) VALUES (?, ?)", dataVersionKey, string(stamp))
	if err != nil {
		return fmt.Errorf("writing data version: %w", err)
	}
	return nil
}
