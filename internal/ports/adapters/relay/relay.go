// Package relay is a raw net/http client for OpenAI-compatible
// chat-completion endpoints, including third-party proxy relays that
// forward to upstream model providers.
package relay

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/dkrasnov/tvcut/internal/ports"
)

const requestTimeout = 90 * time.Second

type Client struct {
	key     string
	baseURL string
	headers map[string]string
	hc      *http.Client
}

func New(apiKey, baseURL string, extraHeaders map[string]string) *Client {
	return &Client{
		key:     apiKey,
		baseURL: normalizeBaseURL(baseURL),
		headers: extraHeaders,
		hc:      &http.Client{Timeout: 5 * time.Minute},
	}
}

// wire types for the OpenAI chat convention.

type wireMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type wirePart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *wireImageURL `json:"image_url,omitempty"`
}

type wireImageURL struct {
	URL string `json:"url"`
}

type wireRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	Stream      bool          `json:"stream"`
}

type wireResponse struct {
	Choices []struct {
		Message struct {
			Content   any    `json:"content"`
			Reasoning string `json:"reasoning_content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type wireChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (c *Client) Complete(ctx context.Context, req ports.ChatRequest) (ports.ChatResponse, error) {
	resp, err := c.post(ctx, req, false)
	if err != nil {
		return ports.ChatResponse{}, err
	}
	defer resp.Body.Close()

	var raw wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return ports.ChatResponse{}, fmt.Errorf("decode response: %w", err)
	}
	if len(raw.Choices) == 0 {
		return ports.ChatResponse{}, errors.New("relay: response has no choices")
	}

	content, err := contentToString(raw.Choices[0].Message.Content)
	if err != nil {
		return ports.ChatResponse{}, err
	}
	return ports.ChatResponse{
		Content:      content,
		Reasoning:    raw.Choices[0].Message.Reasoning,
		FinishReason: raw.Choices[0].FinishReason,
		PromptTokens: raw.Usage.PromptTokens,
		OutputTokens: raw.Usage.CompletionTokens,
	}, nil
}

func (c *Client) Stream(ctx context.Context, req ports.ChatRequest, onDelta func(delta string) error) error {
	resp, err := c.post(ctx, req, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return consumeSSE(resp.Body, onDelta)
}

func (c *Client) post(ctx context.Context, req ports.ChatRequest, stream bool) (*http.Response, error) {
	body, err := json.Marshal(wireRequest{
		Model:       req.Model,
		Messages:    toWireMessages(req.Messages),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Stream:      stream,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	reqCtx := ctx
	var cancel context.CancelFunc
	if !stream {
		reqCtx, cancel = context.WithTimeout(ctx, requestTimeout)
	}

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		if cancel != nil {
			cancel()
		}
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.key)
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		if cancel != nil {
			cancel()
		}
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("relay timeout after %s (model=%s)", requestTimeout, req.Model)
		}
		return nil, err
	}
	if cancel != nil {
		// Tie the timeout to the body lifetime for non-streaming calls.
		resp.Body = &cancelReadCloser{rc: resp.Body, cancel: cancel}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("relay status %d and read body failed: %v", resp.StatusCode, readErr)
		}
		return nil, fmt.Errorf("relay status %d: %s", resp.StatusCode, truncate(redactSecrets(string(rb), c.key), 400))
	}
	return resp, nil
}

type cancelReadCloser struct {
	rc     io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelReadCloser) Read(p []byte) (int, error) { return c.rc.Read(p) }
func (c *cancelReadCloser) Close() error {
	c.cancel()
	return c.rc.Close()
}

func toWireMessages(msgs []ports.Message) []wireMessage {
	out := make([]wireMessage, 0, len(msgs))
	for _, m := range msgs {
		if len(m.Parts) == 0 {
			out = append(out, wireMessage{Role: m.Role, Content: m.Text})
			continue
		}
		parts := make([]wirePart, 0, len(m.Parts))
		for _, p := range m.Parts {
			switch p.Type {
			case "image_url":
				parts = append(parts, wirePart{Type: "image_url", ImageURL: &wireImageURL{URL: p.ImageURL}})
			default:
				parts = append(parts, wirePart{Type: "text", Text: p.Text})
			}
		}
		out = append(out, wireMessage{Role: m.Role, Content: parts})
	}
	return out
}

// contentToString flattens message content: providers return either a
// plain string or an array of {type,text} parts.
func contentToString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []any:
		var b strings.Builder
		for _, it := range x {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			if t, ok := m["text"].(string); ok {
				b.WriteString(t)
			}
		}
		s := b.String()
		if strings.TrimSpace(s) == "" {
			return "", errors.New("relay: empty content")
		}
		return s, nil
	default:
		return "", fmt.Errorf("relay: unexpected content type %T", v)
	}
}

// consumeSSE reads "data:" events until [DONE] or EOF, forwarding
// content deltas.
func consumeSSE(r io.Reader, onDelta func(string) error) error {
	sc := newLineScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "[DONE]" {
			return nil
		}

		var chunk wireChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return fmt.Errorf("decode stream chunk: %w", err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			if err := onDelta(delta); err != nil {
				return err
			}
		}
	}
	return sc.Err()
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	// SSE data lines can carry whole JSON chunks; default 64K is tight.
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return sc
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	bearerTokenRE = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`)
	authHeaderRE  = regexp.MustCompile(`(?i)(authorization\s*[:=]\s*)([^\n\r,;]+)`)
	apiKeyFieldRE = regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)([^\n\r,;]+)`)
)

// redactSecrets scrubs key material from provider error bodies before
// they reach logs or wrapped errors.
func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	out := s
	if apiKey != "" {
		out = strings.ReplaceAll(out, apiKey, "[REDACTED]")
	}
	out = bearerTokenRE.ReplaceAllString(out, "Bearer [REDACTED]")
	out = authHeaderRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = apiKeyFieldRE.ReplaceAllString(out, "${1}[REDACTED]")
	return out
}
