package llm

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/charliek/wip/internal/domain"
)

const (
	geminiDefaultModel = "gemini-2.0-flash"
	geminiBaseURL      = "https://generativelanguage.googleapis.com"
)

type geminiProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func newGemini(apiKey, model string) *geminiProvider {
	if model == "" {
		model = geminiDefaultModel
	}
	return &geminiProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: geminiBaseURL,
		client:  newHTTPClient(),
	}
}

func (p *geminiProvider) Name() string { return "gemini" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

// geminiResponse covers both the unary response and each streamed chunk.
type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

func (r geminiResponse) text() string {
	var text string
	for _, c := range r.Candidates {
		for _, part := range c.Content.Parts {
			text += part.Text
		}
	}
	return text
}

func (p *geminiProvider) request(system, user string) geminiRequest {
	req := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: user}}}},
	}
	if system != "" {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: system}}}
	}
	return req
}

func (p *geminiProvider) headers() map[string]string {
	return map[string]string{"x-goog-api-key": p.apiKey}
}

func (p *geminiProvider) Complete(ctx context.Context, system, user string) (Response, error) {
	url := p.baseURL + "/v1beta/models/" + p.model + ":generateContent"
	resp, err := postJSON(ctx, p.client, url, p.headers(), p.request(system, user))
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Response{}, apiError(p.Name(), resp)
	}

	var body geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Response{}, domain.Errorf(domain.ErrLLMError, "decode gemini response: %v", err)
	}

	return Response{
		Text:         body.text(),
		InputTokens:  body.UsageMetadata.PromptTokenCount,
		OutputTokens: body.UsageMetadata.CandidatesTokenCount,
		Model:        p.model,
	}, nil
}

func (p *geminiProvider) Stream(ctx context.Context, system, user string, fn func(string)) error {
	url := p.baseURL + "/v1beta/models/" + p.model + ":streamGenerateContent?alt=sse"
	resp, err := postJSON(ctx, p.client, url, p.headers(), p.request(system, user))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError(p.Name(), resp)
	}

	return readSSE(resp.Body, func(data string) error {
		var chunk geminiResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return nil
		}
		if text := chunk.text(); text != "" {
			fn(text)
		}
		return nil
	})
}
