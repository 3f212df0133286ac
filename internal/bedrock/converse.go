package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"

	"ragchat/internal/domain"
)

// DefaultRegion is used when no region is configured.
const DefaultRegion = "eu-central-1"

// ConverseAPI is the part of the Bedrock runtime client used for chat.
type ConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// NewRuntimeClient builds a Bedrock runtime client from the default AWS
// credential chain (AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, profiles...).
func NewRuntimeClient(ctx context.Context, region string) (*bedrockruntime.Client, error) {
	if region == "" {
		region = DefaultRegion
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return bedrockruntime.NewFromConfig(cfg), nil
}

// ChatClient implements domain.ChatModel over the Converse API.
type ChatClient struct {
	api ConverseAPI
}

func NewChatClient(api ConverseAPI) *ChatClient { return &ChatClient{api: api} }

// Converse sends req and returns the model's message.
func (c *ChatClient) Converse(ctx context.Context, req domain.ConverseRequest) (*domain.ConverseResponse, error) {
	input, err := toConverseInput(req)
	if err != nil {
		return nil, err
	}
	out, err := c.api.Converse(ctx, input)
	if err != nil {
		return nil, classify(err)
	}
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected converse output %T", domain.ErrProvider, out.Output)
	}
	converted, err := fromMessage(msg.Value)
	if err != nil {
		return nil, err
	}
	return &domain.ConverseResponse{Message: converted, StopReason: string(out.StopReason)}, nil
}

func toConverseInput(req domain.ConverseRequest) (*bedrockruntime.ConverseInput, error) {
	messages, err := toMessages(req.Messages)
	if err != nil {
		return nil, err
	}
	stop := req.Inference.StopSequences
	if stop == nil {
		stop = []string{}
	}
	input := &bedrockruntime.ConverseInput{
		ModelId:  aws.String(req.ModelID),
		Messages: messages,
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:     aws.Int32(req.Inference.MaxTokens),
			Temperature:   aws.Float32(req.Inference.Temperature),
			TopP:          aws.Float32(req.Inference.TopP),
			StopSequences: stop,
		},
	}
	if len(req.Tools) > 0 {
		specs := make([]types.Tool, 0, len(req.Tools))
		for _, t := range req.Tools {
			specs = append(specs, &types.ToolMemberToolSpec{Value: types.ToolSpecification{
				Name:        aws.String(t.Name),
				Description: aws.String(t.Description),
				InputSchema: &types.ToolInputSchemaMemberJson{Value: document.NewLazyDocument(t.InputSchema)},
			}})
		}
		input.ToolConfig = &types.ToolConfiguration{Tools: specs}
	}
	return input, nil
}

func toMessages(msgs []domain.ModelMessage) ([]types.Message, error) {
	out := make([]types.Message, 0, len(msgs))
	for _, m := range msgs {
		blocks := make([]types.ContentBlock, 0, len(m.Content))
		for _, b := range m.Content {
			block, err := toContentBlock(b)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, block)
		}
		out = append(out, types.Message{Role: types.ConversationRole(m.Role), Content: blocks})
	}
	return out, nil
}

func toContentBlock(b domain.ContentBlock) (types.ContentBlock, error) {
	switch {
	case b.ToolUse != nil:
		input := map[string]any{}
		if len(b.ToolUse.Input) > 0 {
			if err := json.Unmarshal(b.ToolUse.Input, &input); err != nil {
				return nil, fmt.Errorf("tool use %s input: %w", b.ToolUse.ID, err)
			}
		}
		return &types.ContentBlockMemberToolUse{Value: types.ToolUseBlock{
			ToolUseId: aws.String(b.ToolUse.ID),
			Name:      aws.String(b.ToolUse.Name),
			Input:     document.NewLazyDocument(input),
		}}, nil
	case b.ToolResult != nil:
		content := make([]types.ToolResultContentBlock, 0, len(b.ToolResult.Content))
		for _, c := range b.ToolResult.Content {
			if c.JSON != nil {
				content = append(content, &types.ToolResultContentBlockMemberJson{Value: document.NewLazyDocument(c.JSON)})
			} else {
				content = append(content, &types.ToolResultContentBlockMemberText{Value: c.Text})
			}
		}
		return &types.ContentBlockMemberToolResult{Value: types.ToolResultBlock{
			ToolUseId: aws.String(b.ToolResult.ToolUseID),
			Content:   content,
		}}, nil
	default:
		return &types.ContentBlockMemberText{Value: b.Text}, nil
	}
}

func fromMessage(m types.Message) (domain.ModelMessage, error) {
	out := domain.ModelMessage{Role: domain.Role(m.Role)}
	for _, block := range m.Content {
		switch b := block.(type) {
		case *types.ContentBlockMemberText:
			out.Content = append(out.Content, domain.ContentBlock{Text: b.Value})
		case *types.ContentBlockMemberToolUse:
			input, err := documentJSON(b.Value.Input)
			if err != nil {
				return domain.ModelMessage{}, fmt.Errorf("decode tool use input: %w", err)
			}
			out.Content = append(out.Content, domain.ContentBlock{ToolUse: &domain.ToolUse{
				ID:    aws.ToString(b.Value.ToolUseId),
				Name:  aws.ToString(b.Value.Name),
				Input: input,
			}})
		}
	}
	return out, nil
}

func documentJSON(doc document.Interface) (json.RawMessage, error) {
	if doc == nil {
		return json.RawMessage(`{}`), nil
	}
	data, err := doc.MarshalSmithyDocument()
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// classify maps SDK errors onto the domain taxonomy.
func classify(err error) error {
	var params smithy.InvalidParamsError
	var validation *types.ValidationException
	var api smithy.APIError
	var op *smithy.OperationError
	switch {
	case errors.As(err, &params), errors.As(err, &validation):
		return fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	case errors.As(err, &api), errors.As(err, &op):
		return fmt.Errorf("%w: %w", domain.ErrProvider, err)
	default:
		return err
	}
}
