// File: internal/handlers/chat_handler.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/healthadvisor/advisor-server/internal/domain"
	"github.com/healthadvisor/advisor-server/internal/middleware"
	"github.com/healthadvisor/advisor-server/internal/services"
)

type ChatHandler struct {
	ChatService *services.ChatService
}

func NewChatHandler(cs *services.ChatService) *ChatHandler {
	return &ChatHandler{ChatService: cs}
}

// SendMessage handles one chat turn. conversation_id is optional; omitting
// it starts a new conversation.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Message        string `json:"message"`
		ConversationID uint   `json:"conversation_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}

	result, err := h.ChatService.SendMessage(r.Context(), userID, req.ConversationID, req.Message)
	if err != nil {
		writeChatError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reply":           result.Reply,
		"conversation_id": result.Conversation.ID,
		"fallback":        result.Fallback,
	})
}

// CreateConversation starts a new conversation with its first message and
// returns both the new id and the assistant's first reply.
func (h *ChatHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Title   string `json:"title"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}

	result, err := h.ChatService.CreateConversation(r.Context(), userID, req.Title, req.Message)
	if err != nil {
		writeChatError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"conversation_id": result.Conversation.ID,
		"title":           result.Conversation.Title,
		"reply":           result.Reply,
		"fallback":        result.Fallback,
	})
}

// GetConversations lists the user's conversations, most recently active first.
func (h *ChatHandler) GetConversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	page, err := h.ChatService.GetConversations(r.Context(), userID, queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

type historyItem struct {
	domain.Message
	ContentHTML string `json:"content_html,omitempty"`
}

// GetHistory returns one transcript page, oldest first. Assistant markdown
// is additionally rendered to HTML for web clients.
func (h *ChatHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conversationID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		writeError(w, "Invalid conversation ID", http.StatusBadRequest)
		return
	}

	history, err := h.ChatService.GetHistory(r.Context(), userID, uint(conversationID), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		writeChatError(w, err)
		return
	}

	items := make([]historyItem, 0, len(history.Items))
	for _, m := range history.Items {
		item := historyItem{Message: m}
		if m.Role == domain.RoleAssistant {
			item.ContentHTML = renderMarkdown(m.Content)
		}
		items = append(items, item)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"total": history.Total,
		"page":  history.Page,
	})
}

// RenameConversation updates a conversation title.
func (h *ChatHandler) RenameConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conversationID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		writeError(w, "Invalid conversation ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}

	conv, err := h.ChatService.RenameConversation(r.Context(), userID, uint(conversationID), req.Title)
	if err != nil {
		writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}
