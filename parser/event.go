package parser

import "time"

// EventKind identifies the type of a parse event.
type EventKind string

const (
	// ThoughtStart is emitted when the first non-empty thought content is recognized.
	ThoughtStart EventKind = "thought_start"

	// ThoughtDelta carries newly appended thought content. Content holds only
	// the appended suffix, never the full accumulated text.
	ThoughtDelta EventKind = "thought_delta"

	// ThoughtEnd is emitted once when the thought field is bounded by a
	// subsequent field. Content holds the full accumulated thought.
	ThoughtEnd EventKind = "thought_end"

	// AnswerStart is emitted when the first non-empty answer content is recognized.
	AnswerStart EventKind = "answer_start"

	// AnswerDelta carries newly appended answer content.
	AnswerDelta EventKind = "answer_delta"

	// AnswerEnd is emitted once when the answer field completes. Content holds
	// the full accumulated answer.
	AnswerEnd EventKind = "answer_end"

	// ActionComplete is emitted once when both the action name and a
	// syntactically valid input payload have been recognized.
	ActionComplete EventKind = "action_complete"

	// Error is emitted when an action input payload is still malformed at a
	// field boundary. Content holds a diagnostic.
	Error EventKind = "error"
)

// Event is an immutable parse event. The parser never mutates an event after
// emission.
type Event struct {
	Kind      EventKind
	Content   string
	Action    string
	Input     map[string]any
	Timestamp time.Time
}

func newEvent(kind EventKind, content string) Event {
	return Event{
		Kind:      kind,
		Content:   content,
		Timestamp: time.Now(),
	}
}
