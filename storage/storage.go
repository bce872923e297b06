// Package storage provides Collection implementations for the settings store.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/CreativeUnicorns/usersettings"
)

var (
	_ usersettings.Collection = (*MemoryCollection)(nil)
	_ usersettings.Collection = (*SQLiteCollection)(nil)
	_ usersettings.Collection = (*PostgresCollection)(nil)
	_ usersettings.Collection = (*MongoCollection)(nil)
)

// encodeDocument renders a record as the JSON document stored by the SQL and memory backends.
func encodeDocument(rec *usersettings.UserRecord) ([]byte, error) {
	doc, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return doc, nil
}

func decodeDocument(doc []byte, rec *usersettings.UserRecord) error {
	if err := json.Unmarshal(doc, rec); err != nil {
		return fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return nil
}

// mergeDocument replaces the top-level keys of doc with fields, keeping every other key as stored.
func mergeDocument(doc []byte, fields map[string]interface{}) ([]byte, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(doc, &top); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	if top == nil {
		top = make(map[string]json.RawMessage, len(fields))
	}
	patch, err := encodeFields(fields)
	if err != nil {
		return nil, err
	}
	for k, v := range patch {
		top[k] = v
	}
	return marshalPatch(top)
}

// marshalPatch renders encoded fields as one JSON object with sorted keys.
func marshalPatch(fields map[string]json.RawMessage) ([]byte, error) {
	out, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return out, nil
}

func encodeFields(fields map[string]interface{}) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal field %s: %w", k, err)
		}
		out[k] = raw
	}
	return out, nil
}

// rowsCursor adapts a single-column result of JSON documents to usersettings.Cursor.
type rowsCursor struct {
	rows *sql.Rows
	doc  []byte
	err  error
}

func (c *rowsCursor) Next(_ context.Context) bool {
	if c.err != nil || !c.rows.Next() {
		return false
	}
	if err := c.rows.Scan(&c.doc); err != nil {
		c.err = fmt.Errorf("failed to scan document: %w", err)
		return false
	}
	return true
}

func (c *rowsCursor) Decode(rec *usersettings.UserRecord) error {
	return decodeDocument(c.doc, rec)
}

func (c *rowsCursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.rows.Err()
}

func (c *rowsCursor) Close(_ context.Context) error {
	return c.rows.Close()
}

// sliceCursor iterates documents captured up front.
type sliceCursor struct {
	docs [][]byte
	pos  int
}

func (c *sliceCursor) Next(_ context.Context) bool {
	if c.pos >= len(c.docs) {
		return false
	}
	c.pos++
	return true
}

func (c *sliceCursor) Decode(rec *usersettings.UserRecord) error {
	if c.pos == 0 || c.pos > len(c.docs) {
		return fmt.Errorf("cursor is not positioned on a document")
	}
	return decodeDocument(c.docs[c.pos-1], rec)
}

func (c *sliceCursor) Err() error { return nil }

func (c *sliceCursor) Close(_ context.Context) error {
	c.docs = nil
	return nil
}
