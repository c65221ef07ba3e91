package reagent

import (
	"context"
)

// StreamChunk is one fragment of a streamed model response. A non-nil Err
// terminates the stream; the concatenation of all Text fields is the full
// response for the round.
type StreamChunk struct {
	Text string
	Err  error
}

// StreamClient issues one streaming completion call against a language
// model. The transport is the implementation's concern; the agent requires
// only ordered, incremental delivery of text chunks and a closed channel
// once the response is complete.
//
// The current turn is the round's prompt (the user request on the first
// round, a continuation cue afterwards); history holds the preceding turns
// including the synthesized system turn.
type StreamClient interface {
	StreamComplete(ctx context.Context, current Turn, history []Turn) (<-chan StreamChunk, error)
}
