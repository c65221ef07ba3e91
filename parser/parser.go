// Package parser implements an incremental recognizer for the structured
// output protocol emitted by a language model: a thought, an optional tool
// action with a JSON input payload, and an optional final answer.
//
// The parser accepts arbitrarily chunked text, accumulates it in a
// session-lifetime buffer, and emits only the new typed events implied by
// each chunk. Field delimiters may be split across chunks; the parser
// re-derives its state from the full buffer on every call, so chunk
// boundaries never change the final state.
package parser

import (
	"github.com/m-mizutani/goerr/v2"
)

// Format selects the wire format of the structured output protocol. The
// format is chosen once per session; callers only ever see Events, never
// format-specific syntax.
type Format string

const (
	// FormatReact is the single-keyword line format:
	// THOUGHT:, ACTION:, ACTION_INPUT:, FINAL_ANSWER: (or ANSWER:).
	FormatReact Format = "react"

	// FormatTagged is the nested-tag format:
	// <thought>, <action>, <action_input>, <final_answer> elements.
	FormatTagged Format = "tagged"
)

// ErrUnknownFormat is returned by New for an unrecognized format name.
var ErrUnknownFormat = goerr.New("unknown parser format")

// Parser consumes successive text fragments and produces typed parse events.
// Implementations are pure state machines: no I/O, no side effects.
//
// Finalize must be called when the model stream closes. End of buffer is
// ambiguous with "more is coming" while streaming, so the terminal answer
// field and a dangling action payload are only resolved on the finalize pass,
// where end of buffer becomes a true field boundary.
type Parser interface {
	// ParseChunk appends chunk to the session buffer and returns the events
	// newly implied by the transition. Already emitted completions never repeat.
	ParseChunk(chunk string) []Event

	// Finalize runs one more derivation pass treating end of buffer as a
	// field boundary. It is idempotent.
	Finalize() []Event

	// Reset fully clears the buffer and state so the parser can be reused
	// across rounds without cross-round contamination.
	Reset()

	// State returns a snapshot of the current parser state.
	State() *State
}

// New returns a parser for the given format.
func New(format Format) (Parser, error) {
	switch format {
	case FormatReact:
		return NewReact(), nil
	case FormatTagged:
		return NewTagged(), nil
	default:
		return nil, goerr.Wrap(ErrUnknownFormat, "failed to create parser", goerr.V("format", format))
	}
}

// NewReact returns a parser for the single-keyword line format.
func NewReact() Parser {
	return newReactParser()
}

// NewTagged returns a parser for the nested-tag format.
func NewTagged() Parser {
	return newTaggedParser()
}
