// Package gemini implements the reagent stream client on top of the Gemini
// API via the google.golang.org/genai SDK.
package gemini

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"

	"github.com/reagent-go/reagent"
)

// Client is a streaming client for the Gemini API.
type Client struct {
	client *genai.Client

	defaultModel string
	temperature  float32
}

// Option is a function that configures a Client.
type Option func(*Client)

// WithModel sets the model to use for completions. Default: gemini-2.0-flash
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

// New creates a new client for the Gemini API.
func New(ctx context.Context, apiKey string, options ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, goerr.New("API key is required")
	}

	client := &Client{
		defaultModel: "gemini-2.0-flash",
		temperature:  0.7,
	}
	for _, opt := range options {
		opt(client)
	}

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client")
	}
	client.client = genaiClient

	return client, nil
}

// convertTurns maps conversation turns onto genai contents. System turns
// become the system instruction.
func convertTurns(current reagent.Turn, history []reagent.Turn) (*genai.Content, []*genai.Content) {
	var system *genai.Content
	var contents []*genai.Content

	for _, turn := range append(append([]reagent.Turn{}, history...), current) {
		switch turn.Role {
		case reagent.RoleSystem:
			if system == nil {
				system = &genai.Content{}
			}
			system.Parts = append(system.Parts, genai.NewPartFromText(turn.Content))
		case reagent.RoleAssistant:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{genai.NewPartFromText(turn.Content)},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{genai.NewPartFromText(turn.Content)},
			})
		}
	}

	return system, contents
}

// StreamComplete issues one streaming completion call and delivers text
// fragments in arrival order.
func (c *Client) StreamComplete(ctx context.Context, current reagent.Turn, history []reagent.Turn) (<-chan reagent.StreamChunk, error) {
	system, contents := convertTurns(current, history)

	cfg := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(c.temperature),
		SystemInstruction: system,
	}

	chunks := make(chan reagent.StreamChunk)

	go func() {
		defer close(chunks)

		for resp, err := range c.client.Models.GenerateContentStream(ctx, c.defaultModel, contents, cfg) {
			if err != nil {
				select {
				case chunks <- reagent.StreamChunk{Err: goerr.Wrap(err, "gemini stream failed")}:
				case <-ctx.Done():
				}
				return
			}
			text := resp.Text()
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
