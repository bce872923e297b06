package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/CreativeUnicorns/usersettings"
)

// MemoryCollection implements usersettings.Collection with an in-memory map of JSON documents.
// This is useful for testing or for local runs where persistence is not required.
type MemoryCollection struct {
	mu     sync.RWMutex
	docs   map[int64][]byte
	closed bool
}

// NewMemoryCollection creates an empty MemoryCollection.
func NewMemoryCollection() *MemoryCollection {
	return &MemoryCollection{
		docs: make(map[int64][]byte),
	}
}

// Ping fails once the collection is closed.
func (c *MemoryCollection) Ping(_ context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return usersettings.ErrStorageUnavailable
	}
	return nil
}

func (c *MemoryCollection) FindOne(_ context.Context, id int64) (*usersettings.UserRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, usersettings.ErrStorageUnavailable
	}
	doc, ok := c.docs[id]
	if !ok {
		return nil, usersettings.ErrNotFound
	}

	var rec usersettings.UserRecord
	if err := decodeDocument(doc, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *MemoryCollection) InsertOne(_ context.Context, rec *usersettings.UserRecord) error {
	doc, err := encodeDocument(rec)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return usersettings.ErrStorageUnavailable
	}
	if _, exists := c.docs[rec.ID]; exists {
		return usersettings.ErrDuplicate
	}
	c.docs[rec.ID] = doc
	return nil
}

func (c *MemoryCollection) UpdateFields(_ context.Context, id int64, fields map[string]interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false, usersettings.ErrStorageUnavailable
	}
	doc, ok := c.docs[id]
	if !ok {
		return false, nil
	}
	merged, err := mergeDocument(doc, fields)
	if err != nil {
		return false, err
	}
	c.docs[id] = merged
	return true, nil
}

func (c *MemoryCollection) DeleteMany(_ context.Context, id int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, usersettings.ErrStorageUnavailable
	}
	if _, ok := c.docs[id]; !ok {
		return 0, nil
	}
	delete(c.docs, id)
	return 1, nil
}

func (c *MemoryCollection) Count(_ context.Context) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return 0, usersettings.ErrStorageUnavailable
	}
	return int64(len(c.docs)), nil
}

// Find returns a snapshot cursor ordered by id.
func (c *MemoryCollection) Find(_ context.Context) (usersettings.Cursor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, usersettings.ErrStorageUnavailable
	}
	ids := make([]int64, 0, len(c.docs))
	for id := range c.docs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	docs := make([][]byte, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, c.docs[id])
	}
	return &sliceCursor{docs: docs}, nil
}

// PutRaw stores a raw JSON document, replacing any document with the same id. It lets callers
// seed documents in shapes the current UserRecord would not produce, such as legacy records.
func (c *MemoryCollection) PutRaw(id int64, doc []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[id] = append([]byte(nil), doc...)
}

// Close marks the collection unavailable. It is idempotent.
func (c *MemoryCollection) Close(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
