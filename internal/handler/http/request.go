package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/attendly/attendly-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
)

// decodeJSON reads the request body into dst, answering 400 itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, op string, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		slog.Error(op+" decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

// urlID parses the {id} path parameter, answering 400 itself on failure.
func urlID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "Invalid ID", nil)
		return 0, false
	}
	return id, true
}

func queryString(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}

func queryInt(r *http.Request, key string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(key))
	return v
}

func queryIntPtr(r *http.Request, key string) *int {
	if v, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil {
		return &v
	}
	return nil
}

func queryInt64Ptr(r *http.Request, key string) *int64 {
	if v, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 64); err == nil {
		return &v
	}
	return nil
}
