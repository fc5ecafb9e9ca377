package dirindex

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/asabya/fdp-storage/account"
)

// DBTX is the subset of database/sql used by the SQLite index. Both *sql.DB
// and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteIndex implements Index on top of a SQLite database, for embedders
// that keep their directory namespace locally.
type SQLiteIndex struct {
	db DBTX
}

// NewSQLiteIndex returns an index bound to the given DBTX.
func NewSQLiteIndex(db DBTX) *SQLiteIndex {
	return &SQLiteIndex{db: db}
}

// Init creates the backing table if it does not exist yet.
func (r *SQLiteIndex) Init(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS dir_entries (
		owner    TEXT NOT NULL,
		dir_path TEXT NOT NULL,
		name     TEXT NOT NULL,
		is_file  INTEGER NOT NULL DEFAULT 1,
		PRIMARY KEY (owner, dir_path, name)
	)`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create dir_entries table: %w", err)
	}
	return nil
}

// AddEntry upserts an entry; re-adding an existing name updates its kind.
func (r *SQLiteIndex) AddEntry(ctx context.Context, owner account.Address, dirPath, name string, isFile bool) error {
	query := `INSERT INTO dir_entries (owner, dir_path, name, is_file)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(owner, dir_path, name) DO UPDATE SET is_file = excluded.is_file`
	_, err := r.db.ExecContext(ctx, query, owner.String(), dirPath, name, isFile)
	if err != nil {
		return fmt.Errorf("failed to upsert directory entry: %w", err)
	}
	return nil
}

// RemoveEntry deletes an entry. Removing an absent entry is a no-op.
func (r *SQLiteIndex) RemoveEntry(ctx context.Context, owner account.Address, dirPath, name string, isFile bool) error {
	query := `DELETE FROM dir_entries WHERE owner = ? AND dir_path = ? AND name = ?`
	_, err := r.db.ExecContext(ctx, query, owner.String(), dirPath, name)
	if err != nil {
		return fmt.Errorf("failed to delete directory entry: %w", err)
	}
	return nil
}

// List returns the entries under dirPath in name order.
func (r *SQLiteIndex) List(ctx context.Context, owner account.Address, dirPath string) ([]Entry, error) {
	query := `SELECT name, is_file FROM dir_entries
		WHERE owner = ? AND dir_path = ? ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, owner.String(), dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to select directory entries: %w", err)
	}
	defer rows.Close()

	var result []Entry
	for rows.Next() {
		var item Entry
		if err := rows.Scan(&item.Name, &item.IsFile); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
