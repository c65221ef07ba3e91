// Package mock provides scripted implementations of the reagent model and
// tool seams for tests and examples.
package mock

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/reagent-go/reagent"
)

// StreamClient replays scripted responses, one per StreamComplete call,
// split into fixed-size chunks to exercise arbitrary chunk boundaries.
type StreamClient struct {
	// Responses are the full response texts, consumed in order.
	Responses []string

	// ChunkSize is the size in bytes of each delivered chunk. 0 delivers the
	// whole response as a single chunk.
	ChunkSize int

	// Err, when set, is delivered instead of any response text.
	Err error

	mu    sync.Mutex
	calls int

	// Requests records the turns of every call for assertions.
	Requests [][]reagent.Turn
}

func (x *StreamClient) StreamComplete(ctx context.Context, current reagent.Turn, history []reagent.Turn) (<-chan reagent.StreamChunk, error) {
	x.mu.Lock()
	x.Requests = append(x.Requests, append(append([]reagent.Turn{}, history...), current))
	call := x.calls
	x.calls++
	x.mu.Unlock()

	if x.Err != nil {
		out := make(chan reagent.StreamChunk, 1)
		out <- reagent.StreamChunk{Err: x.Err}
		close(out)
		return out, nil
	}

	if call >= len(x.Responses) {
		return nil, goerr.New("no scripted response left", goerr.V("call", call))
	}
	response := x.Responses[call]

	out := make(chan reagent.StreamChunk)
	go func() {
		defer close(out)
		size := x.ChunkSize
		if size <= 0 {
			size = len(response)
		}
		for i := 0; i < len(response); i += size {
			end := i + size
			if end > len(response) {
				end = len(response)
			}
			select {
			case out <- reagent.StreamChunk{Text: response[i:end]}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Calls returns how many times StreamComplete was invoked.
func (x *StreamClient) Calls() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.calls
}

// Invoker forwards tool calls to InvokeFunc and records every call.
type Invoker struct {
	InvokeFunc func(ctx context.Context, call reagent.ToolCall) (map[string]any, error)

	mu    sync.Mutex
	calls []reagent.ToolCall
}

func (x *Invoker) Invoke(ctx context.Context, call reagent.ToolCall) (map[string]any, error) {
	x.mu.Lock()
	x.calls = append(x.calls, call)
	x.mu.Unlock()

	if x.InvokeFunc == nil {
		return map[string]any{}, nil
	}
	return x.InvokeFunc(ctx, call)
}

// ToolCalls returns a copy of the recorded calls.
func (x *Invoker) ToolCalls() []reagent.ToolCall {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]reagent.ToolCall{}, x.calls...)
}
