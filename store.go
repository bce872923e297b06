// store.go
package usersettings

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"
)

// Store reads and writes per-user settings documents. It holds one long-lived Collection handle
// and is safe for concurrent use; concurrent writes to the same field are last-write-wins.
type Store struct {
	coll     Collection
	notifier Notifier
	logger   Logger
	defaults Defaults
	now      func() time.Time
}

// New builds a Store and probes the collection. It fails when no collection is configured or
// the backend cannot be reached.
func New(ctx context.Context, opts ...Option) (*Store, error) {
	cfg := &Config{
		defaults: DefaultValues(),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = NewDefaultLogger()
	}
	if cfg.collection == nil {
		return nil, fmt.Errorf("%w: collection is required", ErrInvalidInput)
	}

	if err := cfg.collection.Ping(ctx); err != nil {
		cfg.logger.Error("Failed to connect to document store", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	cfg.logger.Info("Connected to document store", "collection", CollectionName)

	return &Store{
		coll:     cfg.collection,
		notifier: cfg.notifier,
		logger:   cfg.logger,
		defaults: cfg.defaults,
		now:      cfg.now,
	}, nil
}

// Ping probes the backing collection.
func (s *Store) Ping(ctx context.Context) error {
	return s.coll.Ping(ctx)
}

// Close releases the collection handle.
func (s *Store) Close(ctx context.Context) error {
	return s.coll.Close(ctx)
}

// Defaults returns the literal defaults in effect.
func (s *Store) Defaults() Defaults {
	return s.defaults
}

// Exists reports whether a record exists for id. On failure it returns false with the error.
func (s *Store) Exists(ctx context.Context, id int64) (bool, error) {
	rec, err := s.lookup(ctx, "is_user_exist", id)
	if err != nil {
		return false, err
	}
	return rec != nil, nil
}

// AddUser creates the record of u unless one already exists, then notifies the configured
// Notifier. Notification failures are logged and never returned.
func (s *Store) AddUser(ctx context.Context, u Registrant) error {
	exists, err := s.Exists(ctx, u.ID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	now := s.now()
	rec := NewUserRecord(u.ID, now, s.defaults)
	if err := s.coll.InsertOne(ctx, rec); err != nil {
		if errors.Is(err, ErrDuplicate) {
			// Lost a race with a concurrent registration of the same user.
			s.logger.Debug("User registered concurrently", "user_id", u.ID)
			return nil
		}
		return s.fail("add_user", u.ID, err)
	}
	s.logger.Info("Registered new user", "user_id", u.ID, "username", u.Username)

	if s.notifier != nil {
		reg := Registration{User: u, JoinDate: rec.JoinDate, At: now}
		if err := s.notifier.NotifyNewUser(ctx, reg); err != nil {
			s.logger.Warn("Failed to send new user log", "user_id", u.ID, "error", err)
		}
	}
	return nil
}

// GetUser returns the full record of id, or ErrNotFound.
func (s *Store) GetUser(ctx context.Context, id int64) (*UserRecord, error) {
	rec, err := s.lookup(ctx, "get_user", id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

// TotalUsersCount returns the number of records, or 0 with the error.
func (s *Store) TotalUsersCount(ctx context.Context) (int64, error) {
	n, err := s.coll.Count(ctx)
	if err != nil {
		return 0, s.fail("total_users_count", 0, err)
	}
	return n, nil
}

// AllUsers lazily iterates every record. A failure is yielded as the error value; decode
// failures of single documents do not stop the iteration.
func (s *Store) AllUsers(ctx context.Context) iter.Seq2[*UserRecord, error] {
	return func(yield func(*UserRecord, error) bool) {
		cur, err := s.coll.Find(ctx)
		if err != nil {
			yield(nil, s.fail("get_all_users", 0, err))
			return
		}
		defer func() {
			if cerr := cur.Close(ctx); cerr != nil {
				s.logger.Warn("Failed to close cursor", "error", cerr)
			}
		}()

		for cur.Next(ctx) {
			var rec UserRecord
			if err := cur.Decode(&rec); err != nil {
				if !yield(nil, s.fail("get_all_users", 0, err)) {
					return
				}
				continue
			}
			if !yield(&rec, nil) {
				return
			}
		}
		if err := cur.Err(); err != nil {
			yield(nil, s.fail("get_all_users", 0, err))
		}
	}
}

// DeleteUser removes every record with id.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	if err := validateID(id); err != nil {
		return err
	}
	n, err := s.coll.DeleteMany(ctx, id)
	if err != nil {
		return s.fail("delete_user", id, err)
	}
	s.logger.Info("Deleted user", "user_id", id, "deleted", n)
	return nil
}

// lookup returns (nil, nil) when the record does not exist.
func (s *Store) lookup(ctx context.Context, op string, id int64) (*UserRecord, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	rec, err := s.coll.FindOne(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, s.fail(op, id, err)
	}
	return rec, nil
}

// update sets fields on an existing record. A missing record is not an error.
func (s *Store) update(ctx context.Context, op string, id int64, fields map[string]interface{}) error {
	if err := validateID(id); err != nil {
		return err
	}
	matched, err := s.coll.UpdateFields(ctx, id, fields)
	if err != nil {
		return s.fail(op, id, err)
	}
	if !matched {
		s.logger.Debug("Update matched no user", "op", op, "user_id", id)
	}
	return nil
}

func (s *Store) fail(op string, id int64, err error) error {
	if id == 0 {
		s.logger.Error("Store operation failed", "op", op, "error", err)
		return fmt.Errorf("%s: %w", op, err)
	}
	s.logger.Error("Store operation failed", "op", op, "user_id", id, "error", err)
	return fmt.Errorf("%s for user %d: %w", op, id, err)
}
