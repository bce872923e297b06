package usersettings_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/CreativeUnicorns/usersettings"
	"github.com/CreativeUnicorns/usersettings/storage"
)

var errBackend = errors.New("connection reset by peer")

var fixedNow = time.Date(2024, 3, 15, 14, 30, 0, 0, time.Local)

// failingCollection fails every operation except Ping, so New succeeds.
type failingCollection struct {
	pingErr error
}

func (f *failingCollection) Ping(context.Context) error { return f.pingErr }

func (f *failingCollection) FindOne(context.Context, int64) (*usersettings.UserRecord, error) {
	return nil, errBackend
}

func (f *failingCollection) InsertOne(context.Context, *usersettings.UserRecord) error {
	return errBackend
}

func (f *failingCollection) UpdateFields(context.Context, int64, map[string]interface{}) (bool, error) {
	return false, errBackend
}

func (f *failingCollection) DeleteMany(context.Context, int64) (int64, error) { return 0, errBackend }

func (f *failingCollection) Count(context.Context) (int64, error) { return 0, errBackend }

func (f *failingCollection) Find(context.Context) (usersettings.Cursor, error) {
	return nil, errBackend
}

func (f *failingCollection) Close(context.Context) error { return nil }

// raceCollection reports a record as absent but rejects the insert, as when another
// process registers the same user in between.
type raceCollection struct {
	*storage.MemoryCollection
}

func (r raceCollection) InsertOne(context.Context, *usersettings.UserRecord) error {
	return usersettings.ErrDuplicate
}

// recordingNotifier captures every registration it is told about.
type recordingNotifier struct {
	mu   sync.Mutex
	regs []usersettings.Registration
	err  error
}

func (n *recordingNotifier) NotifyNewUser(_ context.Context, reg usersettings.Registration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.regs = append(n.regs, reg)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.regs)
}

type logEntry struct {
	level string
	msg   string
	args  []any
}

// recordingLogger keeps log calls for assertions.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) add(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l *recordingLogger) Debug(msg string, args ...any)  { l.add("debug", msg, args) }
func (l *recordingLogger) Info(msg string, args ...any)   { l.add("info", msg, args) }
func (l *recordingLogger) Warn(msg string, args ...any)   { l.add("warn", msg, args) }
func (l *recordingLogger) Error(msg string, args ...any)  { l.add("error", msg, args) }
func (l *recordingLogger) SetLevel(usersettings.LogLevel) {}

// find returns the first entry at level whose args contain key=value.
func (l *recordingLogger) find(level, key string, value any) (logEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.level != level {
			continue
		}
		for i := 0; i+1 < len(e.args); i += 2 {
			if e.args[i] == key && fmt.Sprint(e.args[i+1]) == fmt.Sprint(value) {
				return e, true
			}
		}
	}
	return logEntry{}, false
}

func newTestStore(t *testing.T, opts ...usersettings.Option) (*usersettings.Store, *storage.MemoryCollection) {
	t.Helper()
	coll := storage.NewMemoryCollection()
	base := []usersettings.Option{
		usersettings.WithCollection(coll),
		usersettings.WithLogger(usersettings.NewNopLogger()),
		usersettings.WithClock(func() time.Time { return fixedNow }),
	}
	store, err := usersettings.New(context.Background(), append(base, opts...)...)
	require.NoError(t, err)
	return store, coll
}

func newFailingStore(t *testing.T) (*usersettings.Store, *recordingLogger) {
	t.Helper()
	logger := &recordingLogger{}
	store, err := usersettings.New(context.Background(),
		usersettings.WithCollection(&failingCollection{}),
		usersettings.WithLogger(logger),
	)
	require.NoError(t, err)
	return store, logger
}
