package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
)

const systemPrompt = `You are the Medilink Hospital assistant embedded in the hospital website.
Help visitors with appointments, finding doctors, medical records, password resets,
opening hours and contact details. Keep answers short. You may use simple HTML
(<a>, <br>, <ul>, <li>) in replies. Never give a diagnosis; direct medical
questions to a doctor.`

// LLMResponder answers through a chat model chain and falls back to another
// responder when the model fails or returns nothing.
type LLMResponder struct {
	chain    compose.Runnable[map[string]any, *schema.Message]
	fallback Responder
	logger   zerolog.Logger
}

// NewLLMResponder compiles the prompt chain around chatModel.
func NewLLMResponder(ctx context.Context, chatModel model.ChatModel, fallback Responder, logger zerolog.Logger) (*LLMResponder, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile assistant chain: %w", err)
	}

	return &LLMResponder{
		chain:    runnable,
		fallback: fallback,
		logger:   logger,
	}, nil
}

// Respond asks the model and uses the fallback on failure.
func (r *LLMResponder) Respond(ctx context.Context, message string, user *UserContext) (string, error) {
	input := map[string]any{
		"system": buildSystemPrompt(user),
		"query":  message,
	}

	response, err := r.chain.Invoke(ctx, input)
	if err == nil && response != nil && strings.TrimSpace(response.Content) != "" {
		r.logger.Debug().Int("length", len(response.Content)).Msg("model reply generated")
		return response.Content, nil
	}

	if err != nil {
		r.logger.Warn().Err(err).Msg("model invoke failed, using fallback")
	} else {
		r.logger.Warn().Msg("model returned empty reply, using fallback")
	}
	if r.fallback == nil {
		if err == nil {
			err = fmt.Errorf("model returned an empty reply")
		}
		return "", err
	}
	return r.fallback.Respond(ctx, message, user)
}

func buildSystemPrompt(user *UserContext) string {
	if user == nil {
		return systemPrompt + "\nThe visitor is not signed in; point them to the login or registration pages for personal tasks."
	}

	var builder strings.Builder
	builder.WriteString(systemPrompt)
	builder.WriteString("\nThe visitor is signed in")
	if user.UserName != "" {
		builder.WriteString(" as ")
		builder.WriteString(user.UserName)
	}
	if user.UserType != "" {
		builder.WriteString(" (")
		builder.WriteString(user.UserType)
		builder.WriteString(")")
	}
	builder.WriteString(".")
	return builder.String()
}
