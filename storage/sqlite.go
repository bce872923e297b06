// Package storage provides a SQLite-based implementation of the Collection interface.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/CreativeUnicorns/usersettings"
)

const (
	sqliteCreateTableSQL = `
		CREATE TABLE IF NOT EXISTS "user" (
			id INTEGER PRIMARY KEY,
			doc TEXT NOT NULL
		);
	`

	sqliteInsertSQL = `INSERT INTO "user" (id, doc) VALUES (?, ?)`

	sqliteSelectSQL = `SELECT doc FROM "user" WHERE id = ?`

	sqliteSelectAllSQL = `SELECT doc FROM "user" ORDER BY id`

	sqliteUpdateSQL = `UPDATE "user" SET doc = ? WHERE id = ?`

	sqliteDeleteSQL = `DELETE FROM "user" WHERE id = ?`

	sqliteCountSQL = `SELECT COUNT(*) FROM "user"`
)

// SQLiteCollection implements usersettings.Collection as a table of JSON documents in SQLite.
type SQLiteCollection struct {
	db *sql.DB
}

// NewSQLiteCollection opens the SQLite database at dbPath, pings it and creates the table.
func NewSQLiteCollection(ctx context.Context, dbPath string) (*SQLiteCollection, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}
	// A single connection serializes the read-modify-write of UpdateFields.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: failed to ping database: %w", err)
	}

	c := &SQLiteCollection{db: db}
	if err := c.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: failed to run migrations: %w", err)
	}
	return c, nil
}

func (c *SQLiteCollection) migrate(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, sqliteCreateTableSQL)
	return err
}

func (c *SQLiteCollection) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// FindOne returns usersettings.ErrNotFound if no document has the id.
func (c *SQLiteCollection) FindOne(ctx context.Context, id int64) (*usersettings.UserRecord, error) {
	var doc []byte
	err := c.db.QueryRowContext(ctx, sqliteSelectSQL, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, usersettings.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to get user: %w", err)
	}

	var rec usersettings.UserRecord
	if err := decodeDocument(doc, &rec); err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	return &rec, nil
}

func (c *SQLiteCollection) InsertOne(ctx context.Context, rec *usersettings.UserRecord) error {
	doc, err := encodeDocument(rec)
	if err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}

	if _, err := c.db.ExecContext(ctx, sqliteInsertSQL, rec.ID, string(doc)); err != nil {
		var se sqlite3.Error
		if errors.As(err, &se) && (se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || se.ExtendedCode == sqlite3.ErrConstraintUnique) {
			return usersettings.ErrDuplicate
		}
		return fmt.Errorf("sqlite: failed to insert user: %w", err)
	}
	return nil
}

// UpdateFields merges fields into the stored document inside a transaction.
func (c *SQLiteCollection) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) (matched bool, err error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("sqlite: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil || !matched {
			_ = tx.Rollback()
		}
	}()

	var doc []byte
	if err := tx.QueryRowContext(ctx, sqliteSelectSQL, id).Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("sqlite: failed to get user: %w", err)
	}

	merged, err := mergeDocument(doc, fields)
	if err != nil {
		return false, fmt.Errorf("sqlite: %w", err)
	}
	if _, err := tx.ExecContext(ctx, sqliteUpdateSQL, string(merged), id); err != nil {
		return false, fmt.Errorf("sqlite: failed to update user: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("sqlite: failed to commit update: %w", err)
	}
	return true, nil
}

func (c *SQLiteCollection) DeleteMany(ctx context.Context, id int64) (int64, error) {
	result, err := c.db.ExecContext(ctx, sqliteDeleteSQL, id)
	if err != nil {
		return 0, fmt.Errorf("sqlite: failed to delete user: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: failed to get affected rows: %w", err)
	}
	return n, nil
}

func (c *SQLiteCollection) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := c.db.QueryRowContext(ctx, sqliteCountSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: failed to count users: %w", err)
	}
	return n, nil
}

// Find returns a cursor over all documents ordered by id. The rows are read up front and
// released before returning, so the single connection stays free for writes during iteration.
func (c *SQLiteCollection) Find(ctx context.Context) (usersettings.Cursor, error) {
	rows, err := c.db.QueryContext(ctx, sqliteSelectAllSQL)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to query users: %w", err)
	}
	defer rows.Close()

	var docs [][]byte
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: failed to read users: %w", err)
	}
	return &sliceCursor{docs: docs}, nil
}

// Close closes the SQLite database connection.
func (c *SQLiteCollection) Close(_ context.Context) error {
	return c.db.Close()
}
