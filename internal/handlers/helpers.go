// File: internal/handlers/helpers.go
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/yuin/goldmark"

	"github.com/healthadvisor/advisor-server/internal/services/chat"
)

// writeJSON is a helper for sending JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError is a helper for sending JSON error responses.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeChatError maps the chat error taxonomy onto HTTP statuses. Anything
// unclassified is an internal error with a generic message.
func writeChatError(w http.ResponseWriter, err error) {
	var chatErr *chat.ChatError
	if errors.As(err, &chatErr) {
		switch chatErr.Type {
		case chat.ErrTypeValidation:
			writeError(w, chatErr.Message, http.StatusBadRequest)
			return
		case chat.ErrTypeNotFound:
			writeError(w, "Conversation not found", http.StatusNotFound)
			return
		}
	}
	writeError(w, "Internal server error", http.StatusInternalServerError)
}

// renderMarkdown converts assistant markdown to HTML for web clients. On
// render failure the raw text is still available, so an empty string is fine.
func renderMarkdown(markdown string) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return ""
	}
	return buf.String()
}

// queryInt parses an integer query parameter, falling back to zero so the
// service layer applies its own defaults.
func queryInt(r *http.Request, name string) int {
	value, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return value
}
