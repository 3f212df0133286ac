package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ragchat/internal/conversation"
	"ragchat/internal/domain"
	"ragchat/internal/tools"
)

// Options configure an Orchestrator.
type Options struct {
	Settings          Settings
	MaxMessages       int
	UnknownToolPolicy UnknownToolPolicy
	ToolMarker        bool
}

// Orchestrator runs a single chat turn against the model.
type Orchestrator struct {
	model       domain.ChatModel
	registry    *tools.Registry
	resolver    *Resolver
	settings    Settings
	maxMessages int
}

func NewOrchestrator(model domain.ChatModel, registry *tools.Registry, opts Options) *Orchestrator {
	if opts.MaxMessages <= 0 {
		opts.MaxMessages = conversation.DefaultMaxMessages
	}
	return &Orchestrator{
		model:       model,
		registry:    registry,
		resolver:    NewResolver(model, registry, opts.Settings, opts.UnknownToolPolicy, opts.ToolMarker),
		settings:    opts.Settings,
		maxMessages: opts.MaxMessages,
	}
}

// Chat appends newText (if any) to history, asks the model, resolves tool
// requests and returns the answer. Failures are reported as the answer text.
// The caller appends the answer to history.
func (o *Orchestrator) Chat(ctx context.Context, history *conversation.History, newText string) (answer string) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "Chat turn panicked", "panic", r)
			answer = fmt.Sprintf("An unexpected error occurred: %v", r)
		}
	}()

	out, err := o.turn(ctx, history, newText)
	if err != nil {
		return errorAnswer(ctx, err)
	}
	return out
}

func (o *Orchestrator) turn(ctx context.Context, history *conversation.History, newText string) (string, error) {
	if newText != "" {
		history.Append(domain.Message{Role: domain.RoleUser, Text: newText})
	}
	slog.DebugContext(ctx, "Chat turn", "messages", history.Len())
	if removed := history.Truncate(o.maxMessages); removed > 0 {
		slog.DebugContext(ctx, "Truncated history", "removed", removed, "messages", history.Len())
	}

	messages := history.ToModelMessages()
	resp, err := o.model.Converse(ctx, domain.ConverseRequest{
		ModelID:   o.settings.ModelID,
		Messages:  messages,
		Inference: o.settings.Inference,
		Tools:     o.registry.Specs(),
	})
	if err != nil {
		return "", err
	}

	used, out, err := o.resolver.Resolve(ctx, resp.Message, &messages)
	if err != nil {
		return "", err
	}
	if !used {
		slog.DebugContext(ctx, "No tool used")
		out = resp.Message.FirstText()
	}
	return out, nil
}

func errorAnswer(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		slog.ErrorContext(ctx, "Parameter validation error", "error", err)
		return fmt.Sprintf("An error occurred: %v", err)
	case errors.Is(err, domain.ErrProvider):
		slog.ErrorContext(ctx, "Provider client error", "error", err)
		return fmt.Sprintf("An error occurred: %v", err)
	default:
		slog.ErrorContext(ctx, "Unexpected error", "error", err)
		return fmt.Sprintf("An unexpected error occurred: %v", err)
	}
}
