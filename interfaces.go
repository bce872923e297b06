// Package usersettings defines the interfaces for the document collection and the registration notifier.
package usersettings

import (
	"context"
	"time"
)

// Collection is the document collection holding one UserRecord per user id.
// Implementations must make each single-document write atomic.
type Collection interface {
	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
	// FindOne returns ErrNotFound when no document has the id.
	FindOne(ctx context.Context, id int64) (*UserRecord, error)
	// InsertOne returns ErrDuplicate when a document with the same id exists.
	InsertOne(ctx context.Context, rec *UserRecord) error
	// UpdateFields sets the given top-level fields on an existing document, leaving the others
	// untouched. It never inserts; matched is false when no document has the id.
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) (matched bool, err error)
	// DeleteMany removes every document with the id and returns how many were removed.
	DeleteMany(ctx context.Context, id int64) (int64, error)
	Count(ctx context.Context) (int64, error)
	// Find returns a cursor over all documents.
	Find(ctx context.Context) (Cursor, error)
	Close(ctx context.Context) error
}

// Cursor iterates documents lazily, in the style of mongo.Cursor.
type Cursor interface {
	Next(ctx context.Context) bool
	Decode(rec *UserRecord) error
	Err() error
	Close(ctx context.Context) error
}

// Registration describes a newly created user record.
type Registration struct {
	User     Registrant
	JoinDate string
	At       time.Time
}

// Notifier is told about every user registered by Store.AddUser.
type Notifier interface {
	NotifyNewUser(ctx context.Context, reg Registration) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, reg Registration) error

func (f NotifierFunc) NotifyNewUser(ctx context.Context, reg Registration) error {
	return f(ctx, reg)
}
