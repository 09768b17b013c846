package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/mahtabthestranger/Mdilink/internal/model/chat"
	assistantService "github.com/mahtabthestranger/Mdilink/internal/service/assistant"
	"github.com/mahtabthestranger/Mdilink/pkg/utils"
)

// Headers an upstream auth layer sets for signed-in users.
const (
	HeaderUserID   = "X-User-Id"
	HeaderUserType = "X-User-Type"
	HeaderUserName = "X-User-Name"
)

// Handler serves the assistant endpoint the widget posts to.
type Handler struct {
	svc    *assistantService.Service
	logger zerolog.Logger
}

// New creates the chat handler.
func New(svc *assistantService.Service, logger zerolog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger,
	}
}

// RegisterRoutes registers the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/chat/history", h.handleHistory)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chat.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.svc.Reply(r.Context(), payload.Message, userFromRequest(r))
	if err != nil {
		if errors.Is(err, assistantService.ErrMessageRequired) {
			utils.RespondError(w, http.StatusBadRequest, "Message is required")
			return
		}
		h.logger.Error().Err(err).Msg("chat reply failed")
		utils.RespondError(w, http.StatusInternalServerError, "Failed to process message")
		return
	}

	utils.RespondJSON(w, http.StatusOK, chat.ChatResponse{
		Response:  reply,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	user := userFromRequest(r)
	if user == nil || user.UserID == "" {
		utils.RespondError(w, http.StatusUnauthorized, "sign in to view chat history")
		return
	}
	userID, userType := user.UserID, user.UserType

	// 查询参数只能指向当前登录用户自己。
	query := r.URL.Query()
	if id := strings.TrimSpace(query.Get("userId")); id != "" && id != userID {
		utils.RespondError(w, http.StatusForbidden, "history is only available for the signed-in user")
		return
	}
	if kind := strings.TrimSpace(query.Get("userType")); kind != "" && kind != userType {
		utils.RespondError(w, http.StatusForbidden, "history is only available for the signed-in user")
		return
	}

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			utils.RespondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	history, err := h.svc.History(r.Context(), userID, userType, limit)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("load chat history failed")
		utils.RespondError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	utils.RespondJSON(w, http.StatusOK, history)
}

func userFromRequest(r *http.Request) *assistantService.UserContext {
	userType := strings.TrimSpace(r.Header.Get(HeaderUserType))
	if userType == "" {
		return nil
	}
	name := strings.TrimSpace(r.Header.Get(HeaderUserName))
	if name == "" {
		name = "User"
	}
	return &assistantService.UserContext{
		UserID:   strings.TrimSpace(r.Header.Get(HeaderUserID)),
		UserType: userType,
		UserName: name,
	}
}
