package llm

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/charliek/wip/internal/domain"
)

const (
	anthropicDefaultModel = "claude-sonnet-4-5-20250929"
	anthropicBaseURL      = "https://api.anthropic.com"
	anthropicVersion      = "2023-06-01"

	// maxResponseTokens bounds briefing length; a briefing that needs
	// more than this is not a briefing.
	maxResponseTokens = 1024
)

type anthropicProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func newAnthropic(apiKey, model string) *anthropicProvider {
	if model == "" {
		model = anthropicDefaultModel
	}
	return &anthropicProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: anthropicBaseURL,
		client:  newHTTPClient(),
	}
}

func (p *anthropicProvider) Name() string { return "anthropic" }

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
	Stream    bool               `json:"stream,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (p *anthropicProvider) request(system, user string, stream bool) anthropicRequest {
	return anthropicRequest{
		Model:     p.model,
		MaxTokens: maxResponseTokens,
		System:    system,
		Messages:  []anthropicMessage{{Role: "user", Content: user}},
		Stream:    stream,
	}
}

func (p *anthropicProvider) headers() map[string]string {
	return map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": anthropicVersion,
	}
}

func (p *anthropicProvider) Complete(ctx context.Context, system, user string) (Response, error) {
	resp, err := postJSON(ctx, p.client, p.baseURL+"/v1/messages", p.headers(), p.request(system, user, false))
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Response{}, apiError(p.Name(), resp)
	}

	var body struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Usage struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Response{}, domain.Errorf(domain.ErrLLMError, "decode anthropic response: %v", err)
	}

	var text string
	for _, block := range body.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return Response{
		Text:         text,
		InputTokens:  body.Usage.InputTokens,
		OutputTokens: body.Usage.OutputTokens,
		Model:        p.model,
	}, nil
}

func (p *anthropicProvider) Stream(ctx context.Context, system, user string, fn func(string)) error {
	resp, err := postJSON(ctx, p.client, p.baseURL+"/v1/messages", p.headers(), p.request(system, user, true))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError(p.Name(), resp)
	}

	return readSSE(resp.Body, func(data string) error {
		var event struct {
			Type  string `json:"type"`
			Delta struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"delta"`
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			// Unknown event payloads are forward compatibility, not failures
			return nil
		}
		switch event.Type {
		case "content_block_delta":
			if event.Delta.Type == "text_delta" {
				fn(event.Delta.Text)
			}
		case "error":
			return domain.Errorf(domain.ErrLLMError, "anthropic: %s", event.Error.Message)
		case "message_stop":
			return errStopStream
		}
		return nil
	})
}
