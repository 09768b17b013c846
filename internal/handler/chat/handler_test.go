package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahtabthestranger/Mdilink/internal/model/chat"
	assistantService "github.com/mahtabthestranger/Mdilink/internal/service/assistant"
	"github.com/mahtabthestranger/Mdilink/internal/store/chatlog"
)

func setupRouter(responder assistantService.Responder) *chi.Mux {
	svc := assistantService.NewService(responder, chatlog.NewMemoryStore(), zerolog.Nop())
	handler := New(svc, zerolog.Nop())

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func postChat(r http.Handler, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func decode(t *testing.T, resp *httptest.ResponseRecorder) chat.ChatResponse {
	t.Helper()
	var out chat.ChatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestChatReturnsResponse(t *testing.T) {
	r := setupRouter(nil)
	resp := postChat(r, `{"message":"what are your hours"}`, nil)

	require.Equal(t, http.StatusOK, resp.Code)
	body := decode(t, resp)
	assert.Contains(t, body.Response, "open 24/7")
	assert.NotEmpty(t, body.Timestamp)
	assert.Empty(t, body.Error)
}

func TestChatRequiresMessage(t *testing.T) {
	r := setupRouter(nil)
	resp := postChat(r, `{"message":"   "}`, nil)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Message is required", decode(t, resp).Error)
}

func TestChatInvalidBody(t *testing.T) {
	r := setupRouter(nil)
	resp := postChat(r, `not json`, nil)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

type failingResponder struct{}

func (failingResponder) Respond(context.Context, string, *assistantService.UserContext) (string, error) {
	return "", errors.New("model offline")
}

func TestChatResponderFailure(t *testing.T) {
	r := setupRouter(failingResponder{})
	resp := postChat(r, `{"message":"hi"}`, nil)

	require.Equal(t, http.StatusInternalServerError, resp.Code)
	body := decode(t, resp)
	assert.Equal(t, "Failed to process message", body.Error)
	assert.Empty(t, body.Response)
}

func TestChatHistoryForSignedInUser(t *testing.T) {
	r := setupRouter(nil)
	headers := map[string]string{HeaderUserID: "5", HeaderUserType: "patient", HeaderUserName: "Mahtab"}

	resp := postChat(r, `{"message":"hello"}`, headers)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Hello Mahtab! How can I help you today?", decode(t, resp).Response)

	rec := getHistory(r, "/chat/history?limit=5", headers)
	require.Equal(t, http.StatusOK, rec.Code)
	var history []chat.Exchange
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&history))
	require.Len(t, history, 1)
	assert.Equal(t, "hello", history[0].Message)

	rec = getHistory(r, "/chat/history?userId=5&userType=patient", headers)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func getHistory(r http.Handler, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestChatHistoryRequiresSignedInUser(t *testing.T) {
	r := setupRouter(nil)
	resp := postChat(r, `{"message":"my prescription"}`, map[string]string{HeaderUserID: "7", HeaderUserType: "patient"})
	require.Equal(t, http.StatusOK, resp.Code)

	rec := getHistory(r, "/chat/history?userId=7&userType=patient", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotContains(t, rec.Body.String(), "my prescription")
}

func TestChatHistoryIsScopedToCaller(t *testing.T) {
	r := setupRouter(nil)
	resp := postChat(r, `{"message":"my prescription"}`, map[string]string{HeaderUserID: "7", HeaderUserType: "patient"})
	require.Equal(t, http.StatusOK, resp.Code)

	other := map[string]string{HeaderUserID: "99", HeaderUserType: "patient"}
	rec := getHistory(r, "/chat/history?userId=7&userType=patient", other)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NotContains(t, rec.Body.String(), "my prescription")

	rec = getHistory(r, "/chat/history?userType=doctor", other)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = getHistory(r, "/chat/history", other)
	require.Equal(t, http.StatusOK, rec.Code)
	var history []chat.Exchange
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&history))
	assert.Empty(t, history)
}

func TestChatHistoryValidation(t *testing.T) {
	r := setupRouter(nil)
	rec := getHistory(r, "/chat/history?limit=x", map[string]string{HeaderUserID: "1", HeaderUserType: "patient"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
