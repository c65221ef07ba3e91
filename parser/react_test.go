package parser_test

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/reagent-go/reagent/parser"
)

func feed(t *testing.T, p parser.Parser, text string, chunkSize int) []parser.Event {
	t.Helper()
	var events []parser.Event
	for i := 0; i < len(text); i += chunkSize {
		end := i + chunkSize
		if end > len(text) {
			end = len(text)
		}
		events = append(events, p.ParseChunk(text[i:end])...)
	}
	events = append(events, p.Finalize()...)
	return events
}

func kinds(events []parser.Event) []parser.EventKind {
	out := make([]parser.EventKind, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Kind)
	}
	return out
}

func concatDeltas(events []parser.Event, kind parser.EventKind) string {
	var b strings.Builder
	for _, ev := range events {
		if ev.Kind == kind {
			b.WriteString(ev.Content)
		}
	}
	return b.String()
}

func countKind(events []parser.Event, kind parser.EventKind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

const actionResponse = "THOUGHT: check file\nACTION: read_file\nACTION_INPUT: {\"path\":\"a.txt\"}"

func TestReactActionScenario(t *testing.T) {
	for _, chunkSize := range []int{1, 3, 7, len(actionResponse)} {
		p, err := parser.New(parser.FormatReact)
		gt.NoError(t, err)

		events := feed(t, p, actionResponse, chunkSize)

		gt.Equal(t, countKind(events, parser.ThoughtStart), 1)
		gt.Equal(t, countKind(events, parser.ThoughtEnd), 1)
		gt.Equal(t, countKind(events, parser.ActionComplete), 1)
		gt.Equal(t, countKind(events, parser.Error), 0)
		gt.Equal(t, concatDeltas(events, parser.ThoughtDelta), "check file")

		for _, ev := range events {
			if ev.Kind == parser.ThoughtEnd {
				gt.Equal(t, ev.Content, "check file")
			}
			if ev.Kind == parser.ActionComplete {
				gt.Equal(t, ev.Action, "read_file")
				gt.Equal(t, ev.Input, map[string]any{"path": "a.txt"})
			}
		}

		state := p.State()
		gt.True(t, state.ThoughtComplete)
		gt.True(t, state.ActionComplete)
		gt.Equal(t, state.ActionName, "read_file")
		gt.Equal(t, state.ActionInput, map[string]any{"path": "a.txt"})
	}
}

func TestReactAnswerScenario(t *testing.T) {
	p, err := parser.New(parser.FormatReact)
	gt.NoError(t, err)

	text := "THOUGHT: hi\nANSWER: hello"
	events := feed(t, p, text, len(text))

	gt.Equal(t, kinds(events), []parser.EventKind{
		parser.ThoughtStart, parser.ThoughtDelta, parser.ThoughtEnd,
		parser.AnswerStart, parser.AnswerDelta, parser.AnswerEnd,
	})
	gt.Equal(t, concatDeltas(events, parser.ThoughtDelta), "hi")
	gt.Equal(t, concatDeltas(events, parser.AnswerDelta), "hello")
	gt.Equal(t, p.State().Answer, "hello")
	gt.True(t, p.State().AnswerComplete)
}

func TestReactFinalAnswerKeyword(t *testing.T) {
	p, err := parser.New(parser.FormatReact)
	gt.NoError(t, err)

	feed(t, p, "THOUGHT: done thinking\nFINAL_ANSWER: the answer is 42", 5)

	state := p.State()
	gt.True(t, state.AnswerComplete)
	gt.Equal(t, state.Answer, "the answer is 42")
}

func TestChunkBoundaryInvariance(t *testing.T) {
	responses := []string{
		actionResponse,
		"THOUGHT: hi\nANSWER: hello",
		"THOUGHT: multi\nline thought\nACTION: search\nACTION_INPUT: {\"query\": \"foo bar\", \"limit\": 3}",
		"THOUGHT: no tools needed\nFINAL_ANSWER: use a slice\nacross two lines",
	}

	rng := rand.New(rand.NewSource(42))
	for _, response := range responses {
		whole, err := parser.New(parser.FormatReact)
		gt.NoError(t, err)
		whole.ParseChunk(response)
		whole.Finalize()
		want := whole.State()

		for trial := 0; trial < 30; trial++ {
			p, err := parser.New(parser.FormatReact)
			gt.NoError(t, err)

			var events []parser.Event
			rest := response
			for len(rest) > 0 {
				n := 1 + rng.Intn(len(rest))
				events = append(events, p.ParseChunk(rest[:n])...)
				rest = rest[n:]
			}
			events = append(events, p.Finalize()...)

			gt.Equal(t, p.State(), want)

			// Delta concatenation law for every trial.
			gt.Equal(t, concatDeltas(events, parser.ThoughtDelta), want.Thought)
			gt.Equal(t, concatDeltas(events, parser.AnswerDelta), want.Answer)
		}
	}
}

func TestAtMostOnceCompletion(t *testing.T) {
	p, err := parser.New(parser.FormatReact)
	gt.NoError(t, err)

	events := feed(t, p, actionResponse, 3)
	events = append(events, p.Finalize()...)
	events = append(events, p.Finalize()...)

	gt.Equal(t, countKind(events, parser.ThoughtEnd), 1)
	gt.Equal(t, countKind(events, parser.ActionComplete), 1)
}

func TestTruncatedActionInputWaits(t *testing.T) {
	p, err := parser.New(parser.FormatReact)
	gt.NoError(t, err)

	events := p.ParseChunk("THOUGHT: x\nACTION: read_file\nACTION_INPUT: {\"path\": \"a")
	gt.Equal(t, countKind(events, parser.Error), 0)
	gt.Equal(t, countKind(events, parser.ActionComplete), 0)
	gt.False(t, p.State().ActionComplete)

	events = p.ParseChunk(".txt\"}")
	gt.Equal(t, countKind(events, parser.ActionComplete), 1)
	gt.Equal(t, p.State().ActionInput, map[string]any{"path": "a.txt"})
}

func TestRepairableActionInput(t *testing.T) {
	// Models routinely emit single-quoted pseudo-JSON; the payload is
	// bounded by the next field, so the repair pass should rescue it.
	p, err := parser.New(parser.FormatReact)
	gt.NoError(t, err)

	text := "THOUGHT: x\nACTION: read_file\nACTION_INPUT: {'path': 'a.txt'}\nFINAL_ANSWER: done"
	events := feed(t, p, text, 6)

	gt.Equal(t, countKind(events, parser.Error), 0)
	gt.Equal(t, countKind(events, parser.ActionComplete), 1)
	gt.Equal(t, p.State().ActionInput, map[string]any{"path": "a.txt"})
}

func TestMalformedActionInputAtBoundary(t *testing.T) {
	p, err := parser.New(parser.FormatReact)
	gt.NoError(t, err)

	text := "THOUGHT: x\nACTION: read_file\nACTION_INPUT: [1, 2, 3]\nFINAL_ANSWER: done"
	events := feed(t, p, text, len(text))

	gt.Equal(t, countKind(events, parser.Error), 1)
	gt.Equal(t, countKind(events, parser.ActionComplete), 0)
	gt.False(t, p.State().ActionComplete)

	// The error is reported once even if finalize runs again.
	gt.Equal(t, countKind(p.Finalize(), parser.Error), 0)
}

func TestKeywordSplitAcrossChunks(t *testing.T) {
	p, err := parser.New(parser.FormatReact)
	gt.NoError(t, err)

	var events []parser.Event
	events = append(events, p.ParseChunk("THOUGHT: check file\nACT")...)
	// The partial keyword must not leak into the thought.
	gt.Equal(t, concatDeltas(events, parser.ThoughtDelta), "check file")

	events = append(events, p.ParseChunk("ION: read_file\nACTION_INPUT: {\"path\":\"a.txt\"}")...)
	events = append(events, p.Finalize()...)

	gt.Equal(t, concatDeltas(events, parser.ThoughtDelta), "check file")
	gt.Equal(t, countKind(events, parser.ActionComplete), 1)
}

func TestOnlyFirstActionRecognized(t *testing.T) {
	p, err := parser.New(parser.FormatReact)
	gt.NoError(t, err)

	text := "THOUGHT: x\n" +
		"ACTION: read_file\nACTION_INPUT: {\"path\":\"a.txt\"}\n" +
		"ACTION: delete_file\nACTION_INPUT: {\"path\":\"b.txt\"}\n" +
		"FINAL_ANSWER: done"
	events := feed(t, p, text, 9)

	gt.Equal(t, countKind(events, parser.ActionComplete), 1)
	gt.Equal(t, p.State().ActionName, "read_file")
	gt.Equal(t, p.State().ActionInput, map[string]any{"path": "a.txt"})
}

func TestResetClearsState(t *testing.T) {
	p, err := parser.New(parser.FormatReact)
	gt.NoError(t, err)

	feed(t, p, actionResponse, 5)
	gt.True(t, p.State().ActionComplete)

	p.Reset()
	gt.Equal(t, p.State(), &parser.State{})

	events := feed(t, p, "THOUGHT: again\nANSWER: ok", 4)
	gt.Equal(t, countKind(events, parser.ThoughtEnd), 1)
	gt.Equal(t, p.State().Answer, "ok")
}

func TestUnknownFormat(t *testing.T) {
	_, err := parser.New(parser.Format("yaml"))
	gt.Error(t, err)
}
