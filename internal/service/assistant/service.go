// Package assistant is the reference implementation of the chat endpoint the
// widget talks to. It answers from a keyword table, or from a chat model when
// one is configured, and keeps a log of exchanges for signed-in users.
package assistant

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mahtabthestranger/Mdilink/internal/model/chat"
	"github.com/mahtabthestranger/Mdilink/internal/store/chatlog"
)

// ErrMessageRequired is returned for blank messages.
var ErrMessageRequired = errors.New("message is required")

// Responder produces a reply for one user message.
type Responder interface {
	Respond(ctx context.Context, message string, user *UserContext) (string, error)
}

// Service answers chat messages and records them.
type Service struct {
	responder Responder
	log       chatlog.Store
	logger    zerolog.Logger
}

// NewService wires a responder and an optional chat log.
func NewService(responder Responder, log chatlog.Store, logger zerolog.Logger) *Service {
	if responder == nil {
		responder = RuleResponder{}
	}
	return &Service{
		responder: responder,
		log:       log,
		logger:    logger,
	}
}

// Reply answers message. Exchanges of signed-in users are logged; a logging
// failure does not fail the reply.
func (s *Service) Reply(ctx context.Context, message string, user *UserContext) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrMessageRequired
	}

	reply, err := s.responder.Respond(ctx, message, user)
	if err != nil {
		return "", err
	}

	if user != nil && user.UserID != "" && s.log != nil {
		exchange := chat.Exchange{
			UserID:    user.UserID,
			UserType:  user.UserType,
			Message:   message,
			Response:  reply,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.log.Save(ctx, exchange); err != nil {
			s.logger.Warn().Err(err).Str("user_id", user.UserID).Msg("failed to save chat exchange")
		}
	}

	return reply, nil
}

// History returns the latest exchanges of a user, oldest first.
func (s *Service) History(ctx context.Context, userID, userType string, limit int) ([]chat.Exchange, error) {
	if s.log == nil {
		return []chat.Exchange{}, nil
	}
	return s.log.History(ctx, userID, userType, limit)
}
