package service

import (
	"context"
	"fmt"
	"log/slog"

	"ragchat/internal/domain"
	"ragchat/internal/tools"
)

// UnknownToolPolicy decides what happens when the model requests a tool
// that is not registered.
type UnknownToolPolicy string

const (
	UnknownToolIgnore UnknownToolPolicy = "ignore"
	UnknownToolError  UnknownToolPolicy = "error"
)

// ParseUnknownToolPolicy maps a config value to a policy. Empty means ignore.
func ParseUnknownToolPolicy(s string) (UnknownToolPolicy, error) {
	switch UnknownToolPolicy(s) {
	case "", UnknownToolIgnore:
		return UnknownToolIgnore, nil
	case UnknownToolError:
		return UnknownToolError, nil
	default:
		return "", fmt.Errorf("unknown tool policy %q", s)
	}
}

// ToolMarkerFormat prefixes the final answer when a tool ran.
const ToolMarkerFormat = "[RAG] - Tool Config: %s\n\n"

// Settings are the per-call parameters shared by the first and follow-up calls.
type Settings struct {
	ModelID   string
	Inference domain.InferenceConfig
}

// Resolver runs the tools a model response asks for and obtains the
// follow-up answer.
type Resolver struct {
	model    domain.ChatModel
	registry *tools.Registry
	settings Settings
	policy   UnknownToolPolicy
	marker   bool
}

// NewResolver creates a resolver. When marker is set, answers produced after
// a tool ran are prefixed with ToolMarkerFormat.
func NewResolver(model domain.ChatModel, registry *tools.Registry, settings Settings, policy UnknownToolPolicy, marker bool) *Resolver {
	if policy == "" {
		policy = UnknownToolIgnore
	}
	return &Resolver{model: model, registry: registry, settings: settings, policy: policy, marker: marker}
}

// Resolve inspects response for tool-use blocks. If at least one resolves,
// response and a user message with all tool results are appended to
// messages, the model is called again, and its text is returned with
// used set. Otherwise messages is left untouched and used is false.
func (r *Resolver) Resolve(ctx context.Context, response domain.ModelMessage, messages *[]domain.ModelMessage) (bool, string, error) {
	var results []domain.ContentBlock
	var last string
	for _, block := range response.Content {
		use := block.ToolUse
		if use == nil {
			continue
		}
		tool, ok := r.registry.Lookup(use.Name)
		if !ok {
			if r.policy == UnknownToolError {
				return false, "", fmt.Errorf("%w: %q", domain.ErrUnknownTool, use.Name)
			}
			slog.WarnContext(ctx, "Ignoring unknown tool", "tool", use.Name, "tool_use_id", use.ID)
			continue
		}
		slog.InfoContext(ctx, "Using tool", "tool", use.Name, "tool_use_id", use.ID)
		content, err := tool.Invoke(ctx, use.Input)
		if err != nil {
			return false, "", fmt.Errorf("tool %s: %w", use.Name, err)
		}
		results = append(results, domain.ContentBlock{ToolResult: &domain.ToolResult{
			ToolUseID: use.ID,
			Content:   []domain.ToolResultContent{content},
		}})
		last = use.Name
	}
	if len(results) == 0 {
		return false, "", nil
	}

	*messages = append(*messages, response, domain.ModelMessage{Role: domain.RoleUser, Content: results})

	resp, err := r.model.Converse(ctx, domain.ConverseRequest{
		ModelID:   r.settings.ModelID,
		Messages:  *messages,
		Inference: r.settings.Inference,
		Tools:     r.registry.Specs(),
	})
	if err != nil {
		return false, "", err
	}
	slog.DebugContext(ctx, "Follow-up response", "stop_reason", resp.StopReason, "blocks", len(resp.Message.Content))

	text := resp.Message.FirstText()
	if r.marker {
		text = fmt.Sprintf(ToolMarkerFormat, last) + text
	}
	return true, text, nil
}
