// Package openaisdk adapts the go-openai client to the ChatCompleter
// port. Used for the official OpenAI API and any endpoint the SDK's
// wire format matches exactly.
package openaisdk

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/dkrasnov/tvcut/internal/ports"
)

type Client struct {
	api *openai.Client
}

func New(apiKey, baseURL string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{api: openai.NewClientWithConfig(cfg)}
}

func (c *Client) Complete(ctx context.Context, req ports.ChatRequest) (ports.ChatResponse, error) {
	resp, err := c.api.CreateChatCompletion(ctx, toSDKRequest(req, false))
	if err != nil {
		return ports.ChatResponse{}, fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return ports.ChatResponse{}, errors.New("openai: response has no choices")
	}
	return ports.ChatResponse{
		Content:      resp.Choices[0].Message.Content,
		FinishReason: string(resp.Choices[0].FinishReason),
		PromptTokens: resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

func (c *Client) Stream(ctx context.Context, req ports.ChatRequest, onDelta func(delta string) error) error {
	stream, err := c.api.CreateChatCompletionStream(ctx, toSDKRequest(req, true))
	if err != nil {
		return fmt.Errorf("openai stream: %w", err)
	}
	defer stream.Close()

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("openai stream recv: %w", err)
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
}

func toSDKRequest(req ports.ChatRequest, stream bool) openai.ChatCompletionRequest {
	out := openai.ChatCompletionRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
		Stream:      stream,
	}
	for _, m := range req.Messages {
		msg := openai.ChatCompletionMessage{Role: m.Role}
		if len(m.Parts) == 0 {
			msg.Content = m.Text
		} else {
			for _, p := range m.Parts {
				switch p.Type {
				case "image_url":
					msg.MultiContent = append(msg.MultiContent, openai.ChatMessagePart{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: p.ImageURL},
					})
				default:
					msg.MultiContent = append(msg.MultiContent, openai.ChatMessagePart{
						Type: openai.ChatMessagePartTypeText,
						Text: p.Text,
					})
				}
			}
		}
		out.Messages = append(out.Messages, msg)
	}
	return out
}
