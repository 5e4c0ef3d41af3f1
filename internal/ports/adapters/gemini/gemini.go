// Package gemini adapts the official Gemini API to the ChatCompleter
// port. Gemini has no role-tagged message list, so chat turns are
// flattened into a single prompt.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/dkrasnov/tvcut/internal/ports"
)

type Client struct {
	api *genai.Client
}

func New(ctx context.Context, apiKey string) (*Client, error) {
	api, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{api: api}, nil
}

func (c *Client) Complete(ctx context.Context, req ports.ChatRequest) (ports.ChatResponse, error) {
	result, err := c.api.Models.GenerateContent(ctx, req.Model, genai.Text(flatten(req.Messages)), nil)
	if err != nil {
		return ports.ChatResponse{}, fmt.Errorf("gemini generate: %w", err)
	}
	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return ports.ChatResponse{}, errors.New("gemini: empty response")
	}
	return ports.ChatResponse{Content: text, FinishReason: "stop"}, nil
}

func (c *Client) Stream(ctx context.Context, req ports.ChatRequest, onDelta func(delta string) error) error {
	for chunk, err := range c.api.Models.GenerateContentStream(ctx, req.Model, genai.Text(flatten(req.Messages)), nil) {
		if err != nil {
			return fmt.Errorf("gemini stream: %w", err)
		}
		if delta := chunk.Text(); delta != "" {
			if err := onDelta(delta); err != nil {
				return err
			}
		}
	}
	return nil
}

// flatten joins system and user turns into one prompt; image parts are
// dropped (subtitle analysis is text-only on this path).
func flatten(msgs []ports.Message) string {
	var parts []string
	for _, m := range msgs {
		text := m.Text
		if text == "" && len(m.Parts) > 0 {
			var b strings.Builder
			for _, p := range m.Parts {
				if p.Type != "image_url" {
					b.WriteString(p.Text)
				}
			}
			text = b.String()
		}
		if strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}
