package agent

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/opencua/gateway/internal/shared/errdefs"
	"github.com/opencua/gateway/internal/shared/types"
)

const computerToolName = "computer"

const systemPrompt = "You are a computer-use agent operating a remote machine. " +
	"After each of your actions you receive a fresh screenshot of the screen. " +
	"Use the computer tool to interact with the machine, one action per call. " +
	"When the task is complete, reply with a plain message and no tool calls."

// OpenAIConfig configures the chat-completions stepper.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAIStepper implements Stepper on any OpenAI-compatible
// chat-completions API. Actions come back as calls to a single
// "computer" function tool whose arguments are the action payload.
type OpenAIStepper struct {
	client openai.Client
	model  string
}

// NewOpenAIStepper creates a stepper backed by the configured model.
func NewOpenAIStepper(cfg OpenAIConfig) *OpenAIStepper {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o"
	}
	return &OpenAIStepper{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// Step sends the conversation and the current screenshot to the model
// and converts the reply into response items. No retries are attempted;
// a failed call surfaces as a *errdefs.ProviderError.
func (s *OpenAIStepper) Step(ctx context.Context, history []types.Item, screenshot string) ([]types.Item, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(s.model),
		Messages: buildMessages(history, screenshot),
		Tools:    computerTools(),
	}

	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, &errdefs.ProviderError{Op: "agent_step", Message: err.Error()}
	}
	if len(resp.Choices) == 0 {
		return nil, &errdefs.ProviderError{Op: "agent_step", Message: "model returned no choices"}
	}

	msg := resp.Choices[0].Message
	var items []types.Item
	if msg.Content != "" {
		items = append(items, types.AssistantMessage(msg.Content))
	}
	for _, tc := range msg.ToolCalls {
		if tc.Function.Name != computerToolName {
			return nil, &errdefs.InvalidActionError{
				Reason: fmt.Sprintf("model called unknown tool %q", tc.Function.Name),
			}
		}
		items = append(items, types.ActionRequest([]byte(tc.Function.Arguments)))
	}
	return items, nil
}

// buildMessages flattens the session history into chat messages and
// attaches the current screenshot as the final user turn. Past action
// requests are replayed as assistant text so the model sees what it
// already did without re-sending stale tool call ids.
func buildMessages(history []types.Item, screenshot string) []openai.ChatCompletionMessageParamUnion {
	msgs := []openai.ChatCompletionMessageParamUnion{openai.SystemMessage(systemPrompt)}

	for _, item := range history {
		switch {
		case item.IsAction():
			msgs = append(msgs, openai.AssistantMessage("Executed action: "+string(item.Action)))
		case item.Role == types.RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(item.Content))
		default:
			msgs = append(msgs, openai.UserMessage(item.Content))
		}
	}

	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart("Current screen:"),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: fmt.Sprintf("data:image/png;base64,%s", screenshot),
		}),
	}
	msgs = append(msgs, openai.ChatCompletionMessageParamUnion{
		OfUser: &openai.ChatCompletionUserMessageParam{
			Content: openai.ChatCompletionUserMessageParamContentUnion{
				OfArrayOfContentParts: parts,
			},
		},
	})
	return msgs
}

func computerTools() []openai.ChatCompletionToolParam {
	return []openai.ChatCompletionToolParam{{
		Type: "function",
		Function: shared.FunctionDefinitionParam{
			Name: computerToolName,
			Description: openai.String("Perform one input action on the remote machine. " +
				"Coordinates are screen pixels with the origin at the top left."),
			Parameters: shared.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"type": map[string]any{
						"type": "string",
						"enum": []string{"click", "double_click", "scroll", "type", "wait", "move", "keypress", "goto"},
					},
					"x":       map[string]any{"type": "number", "description": "Horizontal coordinate for click, double_click, scroll and move."},
					"y":       map[string]any{"type": "number", "description": "Vertical coordinate for click, double_click, scroll and move."},
					"button":  map[string]any{"type": "string", "enum": []string{"left", "right", "middle"}, "description": "Mouse button for click, defaults to left."},
					"delta_x": map[string]any{"type": "number", "description": "Horizontal scroll amount."},
					"delta_y": map[string]any{"type": "number", "description": "Vertical scroll amount."},
					"text":    map[string]any{"type": "string", "description": "Text to type."},
					"keys":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Key names to press together, e.g. [\"ctrl\", \"c\"]."},
					"ms":      map[string]any{"type": "number", "description": "Milliseconds to wait, defaults to 1000."},
					"url":     map[string]any{"type": "string", "description": "URL to open. Browser sessions only."},
				},
				"required": []string{"type"},
			},
		},
	}}
}
