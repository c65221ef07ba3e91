package parser

import (
	"strings"
)

// candidate is the view of the full buffer derived on one pass. Each format
// parser produces a candidate; the session diffs it against the accumulated
// state to decide which events are new.
type candidate struct {
	section Section

	thought     string
	thoughtDone bool

	answer     string
	answerDone bool

	actionName     string
	actionNameDone bool

	// actionRaw is the raw input payload text recognized so far.
	actionRaw string
	// actionSeen reports whether the input payload field itself has appeared.
	actionSeen bool
	// actionBounded reports whether the payload is bounded by a subsequent
	// field (or by end of buffer on the finalize pass).
	actionBounded bool
}

// session holds the cumulative buffer and accumulated state shared by the
// format parsers, and turns candidate states into events.
type session struct {
	buf       strings.Builder
	state     State
	finalized bool

	// actionErrored is set once a malformed payload has been reported, so the
	// diagnostic is emitted at most once per session.
	actionErrored bool
}

func (s *session) reset() {
	s.buf.Reset()
	s.state = State{}
	s.finalized = false
	s.actionErrored = false
}

func (s *session) snapshot() *State {
	return s.state.Clone()
}

// diff compares the candidate against the accumulated state and returns the
// newly implied events, in buffer order: thought, action, answer. Completion
// flags never revert and completion events never repeat.
func (s *session) diff(c candidate) []Event {
	var events []Event

	s.state.Section = c.section

	events = append(events, s.diffText(c.thought, c.thoughtDone,
		&s.state.Thought, &s.state.ThoughtComplete,
		ThoughtStart, ThoughtDelta, ThoughtEnd)...)

	events = append(events, s.diffAction(c)...)

	events = append(events, s.diffText(c.answer, c.answerDone,
		&s.state.Answer, &s.state.AnswerComplete,
		AnswerStart, AnswerDelta, AnswerEnd)...)

	return events
}

// diffText handles the start/delta/end lifecycle of a streamed text field.
// Deltas carry only the appended suffix.
func (s *session) diffText(content string, done bool, acc *string, complete *bool, start, delta, end EventKind) []Event {
	if *complete {
		return nil
	}

	var events []Event

	if len(content) > len(*acc) && strings.HasPrefix(content, *acc) {
		if *acc == "" && content != "" {
			events = append(events, newEvent(start, ""))
		}
		events = append(events, newEvent(delta, content[len(*acc):]))
		*acc = content
	}

	if done {
		*complete = true
		events = append(events, newEvent(end, *acc))
	}

	return events
}

// diffAction recognizes a completed action: name bounded and payload
// syntactically valid. A payload that is still invalid at a field boundary is
// a genuine error, reported once; an invalid payload at end of buffer is
// merely incomplete.
func (s *session) diffAction(c candidate) []Event {
	if s.state.ActionComplete || s.actionErrored {
		return nil
	}
	if !c.actionNameDone || c.actionName == "" || !c.actionSeen {
		return nil
	}

	input, err := decodeActionInput(c.actionRaw, c.actionBounded)
	if err != nil {
		if !c.actionBounded {
			// Truncated payload: more chunks may still arrive.
			return nil
		}
		s.actionErrored = true
		return []Event{newEvent(Error, "malformed action input for "+c.actionName+": "+err.Error())}
	}

	s.state.ActionName = c.actionName
	s.state.ActionInput = input
	s.state.ActionComplete = true

	ev := newEvent(ActionComplete, "")
	ev.Action = c.actionName
	ev.Input = input
	return []Event{ev}
}
