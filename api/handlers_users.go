// Package api provides HTTP handlers, middleware, and routing for the admin API of the settings store.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/CreativeUnicorns/usersettings"
)

const maxBodyBytes = 1024 * 1024

type banRequest struct {
	Duration int    `json:"duration"`
	Reason   string `json:"reason"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.respondWithError(w, r, http.StatusServiceUnavailable, "Document store unavailable", err)
		return
	}
	s.respondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCountUsers(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.TotalUsersCount(r.Context())
	if err != nil {
		s.respondWithStoreError(w, r, "Failed to count users", err)
		return
	}
	s.respondWithJSON(w, r, http.StatusOK, map[string]int64{"count": n})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.userID(w, r)
	if !ok {
		return
	}
	rec, err := s.store.GetUser(r.Context(), id)
	if err != nil {
		s.respondWithStoreError(w, r, "Failed to get user", err)
		return
	}
	s.respondWithJSON(w, r, http.StatusOK, rec)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.userID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteUser(r.Context(), id); err != nil {
		s.respondWithStoreError(w, r, "Failed to delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	id, ok := s.existingUser(w, r)
	if !ok {
		return
	}
	settings, err := s.store.UserSettings(r.Context(), id)
	if err != nil {
		s.respondWithStoreError(w, r, "Failed to get settings", err)
		return
	}
	s.respondWithJSON(w, r, http.StatusOK, settings)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	id, ok := s.existingUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var fields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		s.respondWithError(w, r, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	if err := s.store.UpdateUserSettings(r.Context(), id, fields); err != nil {
		s.respondWithStoreError(w, r, "Failed to update settings", err)
		return
	}

	settings, err := s.store.UserSettings(r.Context(), id)
	if err != nil {
		s.respondWithStoreError(w, r, "Failed to get settings", err)
		return
	}
	s.respondWithJSON(w, r, http.StatusOK, settings)
}

func (s *Server) handleGetBan(w http.ResponseWriter, r *http.Request) {
	id, ok := s.existingUser(w, r)
	if !ok {
		return
	}
	status, err := s.store.BanStatus(r.Context(), id)
	if err != nil {
		s.respondWithStoreError(w, r, "Failed to get ban status", err)
		return
	}
	s.respondWithJSON(w, r, http.StatusOK, status)
}

func (s *Server) handleBan(w http.ResponseWriter, r *http.Request) {
	id, ok := s.existingUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req banRequest
	if err := decoder.Decode(&req); err != nil {
		s.respondWithError(w, r, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	if err := s.store.Ban(r.Context(), id, req.Duration, req.Reason); err != nil {
		s.respondWithStoreError(w, r, "Failed to ban user", err)
		return
	}
	status, err := s.store.BanStatus(r.Context(), id)
	if err != nil {
		s.respondWithStoreError(w, r, "Failed to get ban status", err)
		return
	}
	s.respondWithJSON(w, r, http.StatusOK, status)
}

func (s *Server) handleUnban(w http.ResponseWriter, r *http.Request) {
	id, ok := s.existingUser(w, r)
	if !ok {
		return
	}
	if err := s.store.Unban(r.Context(), id); err != nil {
		s.respondWithStoreError(w, r, "Failed to unban user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// userID parses the {userID} path parameter and writes a 400 when it is not a non-zero integer.
func (s *Server) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "userID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id == 0 {
		s.respondWithError(w, r, http.StatusBadRequest, "Invalid user id", err)
		return 0, false
	}
	return id, true
}

// existingUser is userID plus a 404 for users without a record. Setters on missing users
// are silent no-ops in the store, so the API checks first.
func (s *Server) existingUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := s.userID(w, r)
	if !ok {
		return 0, false
	}
	exists, err := s.store.Exists(r.Context(), id)
	if err != nil {
		s.respondWithStoreError(w, r, "Failed to look up user", err)
		return 0, false
	}
	if !exists {
		s.respondWithError(w, r, http.StatusNotFound, "User not found", nil)
		return 0, false
	}
	return id, true
}

// respondWithStoreError maps store errors to status codes.
func (s *Server) respondWithStoreError(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case errors.Is(err, usersettings.ErrNotFound):
		s.respondWithError(w, r, http.StatusNotFound, "User not found", err)
	case errors.Is(err, usersettings.ErrInvalidInput),
		errors.Is(err, usersettings.ErrInvalidField),
		errors.Is(err, usersettings.ErrInvalidValue):
		s.respondWithError(w, r, http.StatusBadRequest, message, err)
	case errors.Is(err, usersettings.ErrStorageUnavailable):
		s.respondWithError(w, r, http.StatusServiceUnavailable, message, err)
	default:
		s.respondWithError(w, r, http.StatusInternalServerError, message, err)
	}
}

// respondWithError is a helper to send JSON error responses.
func (s *Server) respondWithError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	resp := map[string]interface{}{
		"error": map[string]string{
			"message": message,
		},
	}
	if err != nil {
		resp["error"].(map[string]string)["details"] = err.Error()
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("API Error", "status", status, "message", message, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("API client error", "status", status, "message", message, "path", r.URL.Path, "error", err)
	}
	respondWithJSONRaw(w, status, resp)
}

// respondWithJSON is a helper to send JSON responses.
func (s *Server) respondWithJSON(w http.ResponseWriter, _ *http.Request, status int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("Failed to marshal JSON response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"Failed to marshal response"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// respondWithJSONRaw is a lower-level helper for error payloads.
func respondWithJSONRaw(w http.ResponseWriter, status int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"Critical: Failed to marshal error response"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
