package reagent_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/reagent-go/reagent"
	"github.com/reagent-go/reagent/parser"
)

func TestEmitterLifecycle(t *testing.T) {
	em := reagent.NewStreamEmitter()

	start := em.Emit(parser.Event{Kind: parser.ThoughtStart})
	gt.Equal(t, len(start), 1)
	gt.Equal(t, start[0].Status, reagent.MessageStatusStart)
	gt.Equal(t, start[0].Type, reagent.MessageTypeThought)
	gt.Equal(t, start[0].Role, reagent.MessageRoleAssistant)
	gt.Equal(t, start[0].Content, "")
	id := start[0].ID

	delta := em.Emit(parser.Event{Kind: parser.ThoughtDelta, Content: "check "})
	gt.Equal(t, len(delta), 1)
	gt.Equal(t, delta[0].Status, reagent.MessageStatusDelta)
	gt.Equal(t, delta[0].Content, "check ")
	gt.Equal(t, delta[0].ID, id)

	end := em.Emit(parser.Event{Kind: parser.ThoughtEnd, Content: "check file"})
	gt.Equal(t, len(end), 1)
	gt.Equal(t, end[0].Status, reagent.MessageStatusEnd)
	gt.Equal(t, end[0].Content, "check file")
	gt.Equal(t, end[0].ID, id)

	// A later stream gets a fresh id.
	again := em.Emit(parser.Event{Kind: parser.AnswerStart})
	gt.Equal(t, len(again), 1)
	gt.True(t, again[0].ID != id)
}

func TestEmitterImplicitEnd(t *testing.T) {
	em := reagent.NewStreamEmitter()

	em.Emit(parser.Event{Kind: parser.ThoughtStart})
	em.Emit(parser.Event{Kind: parser.ThoughtDelta, Content: "thinking"})

	// The answer starts while the thought stream is still open: the emitter
	// must close the thought first so no dangling stream reaches the UI.
	msgs := em.Emit(parser.Event{Kind: parser.AnswerStart})
	gt.Equal(t, len(msgs), 2)
	gt.Equal(t, msgs[0].Type, reagent.MessageTypeThought)
	gt.Equal(t, msgs[0].Status, reagent.MessageStatusEnd)
	gt.Equal(t, msgs[0].Content, "thinking")
	gt.Equal(t, msgs[1].Type, reagent.MessageTypeAnswer)
	gt.Equal(t, msgs[1].Status, reagent.MessageStatusStart)
	gt.True(t, msgs[0].ID != msgs[1].ID)
}

func TestEmitterErrorEvent(t *testing.T) {
	em := reagent.NewStreamEmitter()

	msgs := em.Emit(parser.Event{Kind: parser.Error, Content: "malformed action input"})
	gt.Equal(t, len(msgs), 1)
	gt.Equal(t, msgs[0].Type, reagent.MessageTypeError)
	gt.Equal(t, msgs[0].Status, reagent.MessageStatusEnd)
	gt.Equal(t, msgs[0].Content, "malformed action input")
}

func TestEmitterActionCompleteIsSilent(t *testing.T) {
	em := reagent.NewStreamEmitter()

	msgs := em.Emit(parser.Event{Kind: parser.ActionComplete, Action: "read_file"})
	gt.Equal(t, len(msgs), 0)
}

func TestEmitterEndWithoutStart(t *testing.T) {
	em := reagent.NewStreamEmitter()

	// An empty field can complete without ever opening; the receiver still
	// gets a well-formed start/end pair under one id.
	msgs := em.Emit(parser.Event{Kind: parser.ThoughtEnd, Content: ""})
	gt.Equal(t, len(msgs), 2)
	gt.Equal(t, msgs[0].Status, reagent.MessageStatusStart)
	gt.Equal(t, msgs[1].Status, reagent.MessageStatusEnd)
	gt.Equal(t, msgs[0].ID, msgs[1].ID)
}
