// Package openai implements the reagent stream client on top of the OpenAI
// chat completion API.
package openai

import (
	"context"
	"errors"
	"io"

	"github.com/m-mizutani/goerr/v2"
	openai "github.com/sashabaranov/go-openai"

	"github.com/reagent-go/reagent"
)

// Client is a streaming client for the OpenAI API.
type Client struct {
	client *openai.Client

	defaultModel string
	temperature  float32
}

// Option is a function that configures a Client.
type Option func(*Client)

// WithModel sets the model to use for completions. Default: gpt-4o
func WithModel(modelName string) Option {
	return func(c *Client) {
		c.defaultModel = modelName
	}
}

// WithTemperature sets the sampling temperature. Default: 0.7
func WithTemperature(temp float32) Option {
	return func(c *Client) {
		c.temperature = temp
	}
}

// New creates a new client for the OpenAI API.
func New(ctx context.Context, apiKey string, options ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, goerr.New("API key is required")
	}

	client := &Client{
		defaultModel: openai.GPT4o,
		temperature:  0.7,
	}
	for _, opt := range options {
		opt(client)
	}

	client.client = openai.NewClient(apiKey)

	return client, nil
}

func convertTurns(current reagent.Turn, history []reagent.Turn) []openai.ChatCompletionMessage {
	turns := append(append([]reagent.Turn{}, history...), current)
	messages := make([]openai.ChatCompletionMessage, 0, len(turns))

	for _, turn := range turns {
		role := openai.ChatMessageRoleUser
		switch turn.Role {
		case reagent.RoleSystem:
			role = openai.ChatMessageRoleSystem
		case reagent.RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: turn.Content,
		})
	}

	return messages
}

// StreamComplete issues one streaming completion call and delivers content
// deltas in arrival order.
func (c *Client) StreamComplete(ctx context.Context, current reagent.Turn, history []reagent.Turn) (<-chan reagent.StreamChunk, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.defaultModel,
		Temperature: c.temperature,
		Messages:    convertTurns(current, history),
		Stream:      true,
	}

	stream, err := c.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create chat completion stream")
	}

	chunks := make(chan reagent.StreamChunk)

	go func() {
		defer close(chunks)
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				select {
				case chunks <- reagent.StreamChunk{Err: goerr.Wrap(err, "openai stream failed")}:
				case <-ctx.Done():
				}
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			text := resp.Choices[0].Delta.Content
			if text == "" {
				continue
			}
			select {
			case chunks <- reagent.StreamChunk{Text: text}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return chunks, nil
}
