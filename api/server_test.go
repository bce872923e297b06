package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CreativeUnicorns/usersettings"
	"github.com/CreativeUnicorns/usersettings/storage"
)

var fixedNow = time.Date(2024, 3, 15, 14, 30, 0, 0, time.Local)

func newTestServer(t *testing.T) (*Server, *usersettings.Store, *storage.MemoryCollection) {
	t.Helper()
	coll := storage.NewMemoryCollection()
	store, err := usersettings.New(context.Background(),
		usersettings.WithCollection(coll),
		usersettings.WithLogger(usersettings.NewNopLogger()),
		usersettings.WithClock(func() time.Time { return fixedNow }),
	)
	require.NoError(t, err)

	srv, err := NewServer(Config{Store: store, Logger: usersettings.NewNopLogger()})
	require.NoError(t, err)
	return srv, store, coll
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func TestNewServer_RequiresStore(t *testing.T) {
	_, err := NewServer(Config{})
	assert.Error(t, err)
}

func TestNewServer_Timeouts(t *testing.T) {
	store, err := usersettings.New(context.Background(),
		usersettings.WithCollection(storage.NewMemoryCollection()),
		usersettings.WithLogger(usersettings.NewNopLogger()),
	)
	require.NoError(t, err)

	srv, err := NewServer(Config{Store: store, Logger: usersettings.NewNopLogger()})
	require.NoError(t, err)
	assert.Equal(t, defaultReadTimeout, srv.httpServer.ReadTimeout)
	assert.Equal(t, defaultIdleTimeout, srv.httpServer.IdleTimeout)
	assert.Equal(t, defaultShutdownTimeout, srv.shutdownTimeout)

	srv, err = NewServer(Config{
		Store:           store,
		Logger:          usersettings.NewNopLogger(),
		ReadTimeout:     2 * time.Second,
		WriteTimeout:    3 * time.Second,
		IdleTimeout:     4 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, srv.httpServer.ReadTimeout)
	assert.Equal(t, 3*time.Second, srv.httpServer.WriteTimeout)
	assert.Equal(t, 4*time.Second, srv.httpServer.IdleTimeout)
	assert.Equal(t, 5*time.Second, srv.shutdownTimeout)
}

func TestStop_NotStarted(t *testing.T) {
	srv, _, _ := newTestServer(t)
	assert.NoError(t, srv.Stop(context.Background()))
}

func TestHealth(t *testing.T) {
	srv, _, coll := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])

	require.NoError(t, coll.Close(context.Background()))
	rec = do(t, srv, http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUsers(t *testing.T) {
	srv, store, _ := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, store.AddUser(ctx, usersettings.Registrant{ID: 42, FirstName: "Neo"}))

	t.Run("count", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, "/api/v1/users/count", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(1), decodeBody(t, rec)["count"])
	})

	t.Run("get", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, "/api/v1/users/42", "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, float64(42), body["_id"])
		assert.Equal(t, "2024-03-15", body["join_date"])
		assert.Equal(t, true, body["metadata"])
	})

	t.Run("get missing", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, "/api/v1/users/43", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		errBody := decodeBody(t, rec)["error"].(map[string]interface{})
		assert.Equal(t, "User not found", errBody["message"])
	})

	t.Run("bad id", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, "/api/v1/users/abc", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = do(t, srv, http.MethodGet, "/api/v1/users/0", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.AddUser(ctx, usersettings.Registrant{ID: 7}))

		rec := do(t, srv, http.MethodDelete, "/api/v1/users/7", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)

		exists, err := store.Exists(ctx, 7)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestSettings(t *testing.T) {
	srv, store, _ := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, store.AddUser(ctx, usersettings.Registrant{ID: 42}))

	t.Run("get defaults", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, "/api/v1/users/42/settings", "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, false, body["upload_as_document"])
		assert.Equal(t, "", body["caption"])
		assert.Equal(t, true, body["metadata"])
		assert.Nil(t, body["upload_destination"])
	})

	t.Run("patch", func(t *testing.T) {
		rec := do(t, srv, http.MethodPatch, "/api/v1/users/42/settings",
			`{"caption":"{filename}","upload_as_document":true,"upload_destination":{"chat_id":-100123}}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		body := decodeBody(t, rec)
		assert.Equal(t, "{filename}", body["caption"])
		assert.Equal(t, true, body["upload_as_document"])

		caption, err := store.Caption(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, "{filename}", caption)

		dest, err := store.UploadDestination(ctx, 42)
		require.NoError(t, err)
		chatID, ok := dest.ChatID()
		assert.True(t, ok)
		assert.Equal(t, int64(-100123), chatID)
	})

	t.Run("patch immutable field", func(t *testing.T) {
		rec := do(t, srv, http.MethodPatch, "/api/v1/users/42/settings", `{"join_date":"2000-01-01"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("patch wrong type", func(t *testing.T) {
		rec := do(t, srv, http.MethodPatch, "/api/v1/users/42/settings", `{"upload_as_document":"yes"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("patch invalid json", func(t *testing.T) {
		rec := do(t, srv, http.MethodPatch, "/api/v1/users/42/settings", `{`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing user", func(t *testing.T) {
		rec := do(t, srv, http.MethodPatch, "/api/v1/users/99/settings", `{"caption":"x"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		exists, err := store.Exists(ctx, 99)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestBan(t *testing.T) {
	srv, store, _ := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, store.AddUser(ctx, usersettings.Registrant{ID: 42}))

	rec := do(t, srv, http.MethodPut, "/api/v1/users/42/ban", `{"duration":7,"reason":"spam"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["is_banned"])
	assert.Equal(t, float64(7), body["ban_duration"])
	assert.Equal(t, "spam", body["ban_reason"])
	assert.Equal(t, fixedNow.Format(usersettings.BannedOnLayout), body["banned_on"])

	banned, err := store.IsBanned(ctx, 42)
	require.NoError(t, err)
	assert.True(t, banned)

	rec = do(t, srv, http.MethodGet, "/api/v1/users/42/ban", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodPut, "/api/v1/users/42/ban", `{"duration":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPut, "/api/v1/users/42/ban", `{"until":"never"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodDelete, "/api/v1/users/42/ban", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	status, err := store.BanStatus(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, usersettings.UnbannedStatus(), status)

	rec = do(t, srv, http.MethodGet, "/api/v1/users/5/ban", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoggerMiddleware(t *testing.T) {
	var (
		level string
		args  []any
	)
	logger := &captureLogger{fn: func(l string, a []any) { level, args = l, a }}

	coll := storage.NewMemoryCollection()
	store, err := usersettings.New(context.Background(),
		usersettings.WithCollection(coll),
		usersettings.WithLogger(usersettings.NewNopLogger()),
	)
	require.NoError(t, err)
	srv, err := NewServer(Config{Store: store, Logger: logger})
	require.NoError(t, err)

	do(t, srv, http.MethodGet, "/api/v1/users/42", "")
	assert.Equal(t, "info", level)
	assert.Contains(t, args, "user_id")
	assert.Contains(t, args, "42")
	assert.Contains(t, args, http.StatusNotFound)

	do(t, srv, http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, "debug", level)
}

// captureLogger forwards "Served request" entries to fn.
type captureLogger struct {
	fn func(level string, args []any)
}

func (c *captureLogger) log(level, msg string, args []any) {
	if msg == "Served request" {
		c.fn(level, args)
	}
}

func (c *captureLogger) Debug(msg string, args ...any)  { c.log("debug", msg, args) }
func (c *captureLogger) Info(msg string, args ...any)   { c.log("info", msg, args) }
func (c *captureLogger) Warn(msg string, args ...any)   { c.log("warn", msg, args) }
func (c *captureLogger) Error(msg string, args ...any)  { c.log("error", msg, args) }
func (c *captureLogger) SetLevel(usersettings.LogLevel) {}
