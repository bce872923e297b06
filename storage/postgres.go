// Package storage provides a PostgreSQL-based implementation of the Collection interface.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq" // PostgreSQL driver

	"github.com/CreativeUnicorns/usersettings"
)

// sqlOpenFunc is a package-level variable that can be overridden for testing.
var sqlOpenFunc = sql.Open

const pgUniqueViolation = "23505"

const (
	createTableSQL = `
		CREATE TABLE IF NOT EXISTS "user" (
			id BIGINT PRIMARY KEY,
			doc JSONB NOT NULL
		);
	`

	insertSQL = `INSERT INTO "user" (id, doc) VALUES ($1, $2)`

	selectSQL = `SELECT doc FROM "user" WHERE id = $1`

	selectAllSQL = `SELECT doc FROM "user" ORDER BY id`

	// jsonb || replaces top-level keys and keeps the rest, like a $set.
	updateSQL = `UPDATE "user" SET doc = doc || $2::jsonb WHERE id = $1`

	deleteSQL = `DELETE FROM "user" WHERE id = $1`

	countSQL = `SELECT COUNT(*) FROM "user"`
)

// PostgresCollection implements usersettings.Collection as a JSONB document table.
type PostgresCollection struct {
	db *sql.DB
}

// NewPostgresCollection connects using connString, pings the server and creates the table.
func NewPostgresCollection(ctx context.Context, connString string) (*PostgresCollection, error) {
	db, err := sqlOpenFunc("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to open database connection: %w", err)
	}

	c, err := NewPostgresCollectionFromDB(ctx, db)
	if err != nil {
		db.Close() // Attempt to close if ping or migration fails
		return nil, err
	}
	return c, nil
}

// NewPostgresCollectionFromDB wraps an open database handle, pings it and creates the table.
func NewPostgresCollectionFromDB(ctx context.Context, db *sql.DB) (*PostgresCollection, error) {
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("postgres: failed to ping database: %w", err)
	}

	c := &PostgresCollection{db: db}
	if err := c.migrate(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *PostgresCollection) migrate(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("postgres: failed to execute create table statement: %w", err)
	}
	return nil
}

func (c *PostgresCollection) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// FindOne returns usersettings.ErrNotFound if no document has the id.
func (c *PostgresCollection) FindOne(ctx context.Context, id int64) (*usersettings.UserRecord, error) {
	var doc []byte
	err := c.db.QueryRowContext(ctx, selectSQL, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, usersettings.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to get user: %w", err)
	}

	var rec usersettings.UserRecord
	if err := decodeDocument(doc, &rec); err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	return &rec, nil
}

func (c *PostgresCollection) InsertOne(ctx context.Context, rec *usersettings.UserRecord) error {
	doc, err := encodeDocument(rec)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}

	if _, err := c.db.ExecContext(ctx, insertSQL, rec.ID, string(doc)); err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return usersettings.ErrDuplicate
		}
		return fmt.Errorf("postgres: failed to insert user: %w", err)
	}
	return nil
}

// UpdateFields merges fields into the stored document in a single statement.
func (c *PostgresCollection) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) (bool, error) {
	patch, err := encodeFields(fields)
	if err != nil {
		return false, fmt.Errorf("postgres: %w", err)
	}
	patchJSON, err := marshalPatch(patch)
	if err != nil {
		return false, fmt.Errorf("postgres: %w", err)
	}

	result, err := c.db.ExecContext(ctx, updateSQL, id, string(patchJSON))
	if err != nil {
		return false, fmt.Errorf("postgres: failed to update user: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("postgres: failed to get affected rows: %w", err)
	}
	return rows > 0, nil
}

func (c *PostgresCollection) DeleteMany(ctx context.Context, id int64) (int64, error) {
	result, err := c.db.ExecContext(ctx, deleteSQL, id)
	if err != nil {
		return 0, fmt.Errorf("postgres: failed to delete user: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("postgres: failed to get affected rows: %w", err)
	}
	return rows, nil
}

func (c *PostgresCollection) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := c.db.QueryRowContext(ctx, countSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: failed to count users: %w", err)
	}
	return n, nil
}

func (c *PostgresCollection) Find(ctx context.Context) (usersettings.Cursor, error) {
	rows, err := c.db.QueryContext(ctx, selectAllSQL)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query users: %w", err)
	}
	return &rowsCursor{rows: rows}, nil
}

// Close closes the PostgreSQL database connection.
func (c *PostgresCollection) Close(_ context.Context) error {
	return c.db.Close()
}
