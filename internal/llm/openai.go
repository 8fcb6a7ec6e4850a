package llm

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/charliek/wip/internal/domain"
)

const (
	openaiDefaultModel = "gpt-4o"
	openaiBaseURL      = "https://api.openai.com"
)

type openaiProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func newOpenAI(apiKey, model string) *openaiProvider {
	if model == "" {
		model = openaiDefaultModel
	}
	return &openaiProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: openaiBaseURL,
		client:  newHTTPClient(),
	}
}

func (p *openaiProvider) Name() string { return "openai" }

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiRequest struct {
	Model    string          `json:"model"`
	Messages []openaiMessage `json:"messages"`
	Stream   bool            `json:"stream,omitempty"`
}

func (p *openaiProvider) request(system, user string, stream bool) openaiRequest {
	return openaiRequest{
		Model: p.model,
		Messages: []openaiMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream: stream,
	}
}

func (p *openaiProvider) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + p.apiKey}
}

func (p *openaiProvider) Complete(ctx context.Context, system, user string) (Response, error) {
	resp, err := postJSON(ctx, p.client, p.baseURL+"/v1/chat/completions", p.headers(), p.request(system, user, false))
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Response{}, apiError(p.Name(), resp)
	}

	var body struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Response{}, domain.Errorf(domain.ErrLLMError, "decode openai response: %v", err)
	}
	if len(body.Choices) == 0 {
		return Response{}, domain.Errorf(domain.ErrLLMError, "openai returned no choices")
	}

	return Response{
		Text:         body.Choices[0].Message.Content,
		InputTokens:  body.Usage.PromptTokens,
		OutputTokens: body.Usage.CompletionTokens,
		Model:        p.model,
	}, nil
}

func (p *openaiProvider) Stream(ctx context.Context, system, user string, fn func(string)) error {
	resp, err := postJSON(ctx, p.client, p.baseURL+"/v1/chat/completions", p.headers(), p.request(system, user, true))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError(p.Name(), resp)
	}

	return readSSE(resp.Body, func(data string) error {
		if data == "[DONE]" {
			return errStopStream
		}
		var chunk struct {
			Choices []struct {
				Delta struct {
					Content string `json:"content"`
				} `json:"delta"`
			} `json:"choices"`
		}
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return nil
		}
		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			fn(chunk.Choices[0].Delta.Content)
		}
		return nil
	})
}
