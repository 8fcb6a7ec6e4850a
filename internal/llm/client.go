package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charliek/wip/internal/domain"
	"github.com/charliek/wip/internal/version"
)

// maxErrorBody caps how much of an error response is carried into the
// error message.
const maxErrorBody = 512

// errStopStream signals a clean end-of-stream marker from inside an SSE
// callback.
var errStopStream = errors.New("stop stream")

// newHTTPClient returns the client shared by all providers. There is no
// overall timeout: streamed responses stay open as long as the model is
// talking, and the command context bounds the call.
func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			ResponseHeaderTimeout: 30 * time.Second,
		},
	}
}

// postJSON sends a JSON POST and returns the raw response. Transport
// failures are wrapped; HTTP error statuses are the caller's to map.
func postJSON(ctx context.Context, client *http.Client, url string, header map[string]string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, domain.Errorf(domain.ErrLLMError, "encode request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, domain.Errorf(domain.ErrLLMError, "build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	for k, v := range header {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, domain.Errorf(domain.ErrLLMError, "request failed: %v", err)
	}
	return resp, nil
}

// apiError drains an HTTP error response and maps its status onto the
// LLM error taxonomy: auth, rate limit, or other.
func apiError(provider string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = resp.Status
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.Errorf(domain.ErrLLMAuth, "%s: %s", provider, msg)
	case http.StatusTooManyRequests:
		return domain.Errorf(domain.ErrLLMRateLimit, "%s: %s", provider, msg)
	default:
		return domain.Errorf(domain.ErrLLMError, "%s returned HTTP %d: %s", provider, resp.StatusCode, msg)
	}
}

// readSSE consumes a text/event-stream body, calling fn once per data
// payload. Event names, comments, and keep-alive blanks are skipped; a
// callback returning errStopStream ends the stream without error.
func readSSE(r io.Reader, fn func(data string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "" {
			continue
		}
		if err := fn(data); err != nil {
			if errors.Is(err, errStopStream) {
				return nil
			}
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return domain.Errorf(domain.ErrLLMError, "read stream: %v", err)
	}
	return nil
}
