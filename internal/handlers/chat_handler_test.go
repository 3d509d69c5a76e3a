// File: internal/handlers/chat_handler_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/healthadvisor/advisor-server/internal/domain"
	"github.com/healthadvisor/advisor-server/internal/middleware"
	"github.com/healthadvisor/advisor-server/internal/repository/conversation"
	"github.com/healthadvisor/advisor-server/internal/repository/healthrecord"
	"github.com/healthadvisor/advisor-server/internal/repository/message"
	"github.com/healthadvisor/advisor-server/internal/repository/tx"
	"github.com/healthadvisor/advisor-server/internal/repository/user"
	"github.com/healthadvisor/advisor-server/internal/services"
	"github.com/healthadvisor/advisor-server/internal/services/ai"
	"github.com/healthadvisor/advisor-server/internal/services/chat"
	"github.com/healthadvisor/advisor-server/internal/services/health"
	"github.com/healthadvisor/advisor-server/internal/services/user_services"
)

type stubLLM struct {
	reply string
	err   error
}

func (s *stubLLM) Invoke(ctx context.Context, messages []ai.Message) (string, *ai.Usage, error) {
	if s.err != nil {
		return "", nil, s.err
	}
	return s.reply, &ai.Usage{TotalTokens: 12, Model: "gpt-4o-mini"}, nil
}

type testApp struct {
	router *mux.Router
	llm    *stubLLM
	token  string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Conversation{}, &domain.Message{}, &domain.HealthRecord{}))

	logger := &services.NoOpLogger{}
	userRepo := user.NewGormUserRepository(db)
	convRepo := conversation.NewConversationRepository(db)
	msgRepo := message.NewMessageRepository(db)
	healthRepo := healthrecord.NewHealthRecordRepository(db)

	llm := &stubLLM{reply: "Try **smaller portions** in the evening."}
	chatService, err := services.NewChatService(chat.DefaultConfig(), convRepo, msgRepo, tx.NewGormManager(db), llm, health.NewStoreProvider(healthRepo), logger)
	require.NoError(t, err)

	authService := user_services.NewAuthService(userRepo, "handler-test-secret", logger)
	healthService := services.NewHealthService(healthRepo, logger)

	chatHandler := NewChatHandler(chatService)
	healthHandler := NewHealthRecordHandler(healthService)
	authHandler := NewAuthHandler(authService, false)

	router := mux.NewRouter()
	router.HandleFunc("/register", authHandler.Register).Methods("POST")
	router.HandleFunc("/login", authHandler.Login).Methods("POST")

	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.NewJWTMiddleware(authService))
	api.HandleFunc("/chat", chatHandler.SendMessage).Methods("POST")
	api.HandleFunc("/conversations", chatHandler.CreateConversation).Methods("POST")
	api.HandleFunc("/conversations", chatHandler.GetConversations).Methods("GET")
	api.HandleFunc("/conversations/{id:[0-9]+}/messages", chatHandler.GetHistory).Methods("GET")
	api.HandleFunc("/conversations/{id:[0-9]+}", chatHandler.RenameConversation).Methods("PUT")
	api.HandleFunc("/health-records", healthHandler.AddRecord).Methods("POST")
	api.HandleFunc("/health-records", healthHandler.ListRecords).Methods("GET")

	app := &testApp{router: router, llm: llm}
	app.registerAndLogin(t, "tester@example.com")
	return app
}

func (a *testApp) registerAndLogin(t *testing.T, email string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"name":"Tester","password":"longenough"}`, email)
	rec := a.do(t, "POST", "/register", body, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(t, "POST", "/login", fmt.Sprintf(`{"email":%q,"password":"longenough"}`, email), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	a.token = resp.Token
}

func (a *testApp) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestChatEndpoint_FullTurn(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, "POST", "/api/chat", `{"message":"how do I stop late-night snacking?"}`, app.token)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Contains(t, body["reply"], "smaller portions")
	assert.Contains(t, body["reply"], "not a medical professional")
	assert.NotZero(t, body["conversation_id"])
	assert.Equal(t, false, body["fallback"])
}

func TestChatEndpoint_RequiresAuth(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, "POST", "/api/chat", `{"message":"hi"}`, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChatEndpoint_EmptyMessageIs400(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, "POST", "/api/chat", `{"message":"   "}`, app.token)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatEndpoint_UnknownConversationIs404(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, "POST", "/api/chat", `{"message":"hi","conversation_id":424242}`, app.token)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatEndpoint_FallbackOnLLMFailure(t *testing.T) {
	app := newTestApp(t)
	app.llm.err = &ai.AIError{Type: ai.ErrTypeUnavailable, Operation: "completion", Message: "provider unavailable after retries"}

	rec := app.do(t, "POST", "/api/chat", `{"message":"anyone there?"}`, app.token)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["fallback"])
	assert.Equal(t, chat.DefaultConfig().FallbackReply, body["reply"])
}

func TestConversationEndpoints_CreateListHistoryRename(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, "POST", "/api/conversations", `{"title":"Snacking","message":"first question"}`, app.token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody(t, rec)
	convID := int(created["conversation_id"].(float64))
	assert.Equal(t, "Snacking", created["title"])

	rec = app.do(t, "GET", "/api/conversations", "", app.token)
	require.Equal(t, http.StatusOK, rec.Code)
	listing := decodeBody(t, rec)
	assert.Equal(t, float64(1), listing["total"])

	rec = app.do(t, "GET", fmt.Sprintf("/api/conversations/%d/messages", convID), "", app.token)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decodeBody(t, rec)
	items := history["items"].([]interface{})
	require.Len(t, items, 2)
	userMsg := items[0].(map[string]interface{})
	assistantMsg := items[1].(map[string]interface{})
	assert.Equal(t, "first question", userMsg["content"])
	assert.NotContains(t, userMsg, "content_html")
	// assistant markdown is rendered to HTML
	assert.Contains(t, assistantMsg["content_html"], "<strong>smaller portions</strong>")

	rec = app.do(t, "PUT", fmt.Sprintf("/api/conversations/%d", convID), `{"title":"Evening habits"}`, app.token)
	require.Equal(t, http.StatusOK, rec.Code)
	renamed := decodeBody(t, rec)
	assert.Equal(t, "Evening habits", renamed["title"])
}

func TestHistoryEndpoint_OtherUsersConversationIs404(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, "POST", "/api/conversations", `{"message":"private"}`, app.token)
	require.Equal(t, http.StatusCreated, rec.Code)
	convID := int(decodeBody(t, rec)["conversation_id"].(float64))

	app.registerAndLogin(t, "intruder@example.com")
	rec = app.do(t, "GET", fmt.Sprintf("/api/conversations/%d/messages", convID), "", app.token)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthRecordEndpoints(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, "POST", "/api/health-records",
		`{"category":"meal","meal":{"description":"salmon bowl","calories":540,"meal_time":"dinner"}}`, app.token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = app.do(t, "POST", "/api/health-records",
		`{"category":"lab_result","lab_result":{"test_name":"HbA1c","value":"5.4","unit":"%"}}`, app.token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// mismatched variant is rejected
	rec = app.do(t, "POST", "/api/health-records",
		`{"category":"meal","symptom":{"description":"nope"}}`, app.token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, "GET", "/api/health-records", "", app.token)
	require.Equal(t, http.StatusOK, rec.Code)
	listing := decodeBody(t, rec)
	assert.Equal(t, float64(2), listing["total"])
}
