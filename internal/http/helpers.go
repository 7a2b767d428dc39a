package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// queryInt reads an integer query parameter, clamped to [min, max].
// Missing or malformed values fall back to the default.
func queryInt(r *http.Request, name string, def, min, max int) int {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

// queryYear reads a year parameter, defaulting to the current year.
func queryYear(r *http.Request, now time.Time) int {
	return queryInt(r, "year", now.Year(), 1900, 2999)
}

// queryAccountIDs parses the accounts parameter, a comma-separated list of
// account IDs. Malformed entries are dropped.
func queryAccountIDs(r *http.Request) []int64 {
	v := strings.TrimSpace(r.URL.Query().Get("accounts"))
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || id < 1 {
			continue
		}
		out = append(out, id)
	}
	return out
}
