// Package claude implements the reagent stream client on top of the
// Anthropic Messages API.
package claude

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/m-mizutani/goerr/v2"

	"github.com/reagent-go/reagent"
)

// Client is a streaming client for the Claude API.
type Client struct {
	client *anthropic.Client

	defaultModel string
	maxTokens    int64
	temperature  float64
}

// Option is a function that configures a Client.
type Option func(*Client)

// WithModel sets the model to use for completions.
// Default: anthropic.ModelClaude3_5SonnetLatest
func WithModel(modelName string) Option {
	return func(c *Client) {
		c.defaultModel = modelName
	}
}

// WithMaxTokens sets the maximum number of tokens to generate.
// Default: 4096
func WithMaxTokens(maxTokens int64) Option {
	return func(c *Client) {
		c.maxTokens = maxTokens
	}
}

// WithTemperature sets the sampling temperature. Default: 0.7
func WithTemperature(temp float64) Option {
	return func(c *Client) {
		c.temperature = temp
	}
}

// New creates a new client for the Claude API.
func New(ctx context.Context, apiKey string, options ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, goerr.New("API key is required")
	}

	client := &Client{
		defaultModel: anthropic.ModelClaude3_5SonnetLatest,
		maxTokens:    4096,
		temperature:  0.7,
	}
	for _, opt := range options {
		opt(client)
	}

	newClient := anthropic.NewClient(option.WithAPIKey(apiKey))
	client.client = &newClient

	return client, nil
}

// convertTurns maps conversation turns onto Claude messages. System turns
// are collected into the request's system blocks.
func convertTurns(current reagent.Turn, history []reagent.Turn) ([]anthropic.TextBlockParam, []anthropic.MessageParam) {
	var system []anthropic.TextBlockParam
	var messages []anthropic.MessageParam

	for _, turn := range append(append([]reagent.Turn{}, history...), current) {
		switch turn.Role {
		case reagent.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: turn.Content})
		case reagent.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(turn.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(turn.Content)))
		}
	}

	return system, messages
}

// StreamComplete issues one streaming completion call and delivers text
// deltas in arrival order.
func (c *Client) StreamComplete(ctx context.Context, current reagent.Turn, history []reagent.Turn) (<-chan reagent.StreamChunk, error) {
	system, messages := convertTurns(current, history)

	params := anthropic.MessageNewParams{
		Model:       c.defaultModel,
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(c.temperature),
		System:      system,
		Messages:    messages,
	}

	stream := c.client.Messages.NewStreaming(ctx, params)
	if stream == nil {
		return nil, goerr.New("failed to create message stream")
	}

	chunks := make(chan reagent.StreamChunk)

	go func() {
		defer close(chunks)

		for stream.Next() {
			event := stream.Current()
			if event.Type != "content_block_delta" {
				continue
			}
			delta := event.AsContentBlockDeltaEvent().Delta
			if delta.Type != "text_delta" {
				continue
			}
			text := delta.AsTextContentBlockDelta().Text
			if text == "" {
				continue
			}
			select {
			case chunks <- reagent.StreamChunk{Text: text}:
			case <-ctx.Done():
				return
			}
		}

		if err := stream.Err(); err != nil {
			select {
			case chunks <- reagent.StreamChunk{Err: goerr.Wrap(err, "claude stream failed")}:
			case <-ctx.Done():
			}
		}
	}()

	return chunks, nil
}
