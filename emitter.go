package reagent

import (
	"github.com/google/uuid"

	"github.com/reagent-go/reagent/parser"
)

// StreamEmitter converts parse events into role-tagged stream messages with
// a start/delta/end lifecycle. At most one field stream is open at a time:
// if a new field starts while another is still open, the emitter synthesizes
// the missing end first so no dangling open stream reaches the UI boundary.
type StreamEmitter struct {
	openID      string
	openType    MessageType
	openContent string
}

func NewStreamEmitter() *StreamEmitter {
	return &StreamEmitter{}
}

// Emit returns the stream messages implied by the event: usually zero or
// one, or two when an implicit end must be synthesized. Action completions
// produce no message; the agent brackets tool execution with its own
// tool messages.
func (x *StreamEmitter) Emit(ev parser.Event) []*Message {
	switch ev.Kind {
	case parser.ThoughtStart:
		return x.open(MessageTypeThought)
	case parser.AnswerStart:
		return x.open(MessageTypeAnswer)
	case parser.ThoughtDelta:
		return x.delta(MessageTypeThought, ev.Content)
	case parser.AnswerDelta:
		return x.delta(MessageTypeAnswer, ev.Content)
	case parser.ThoughtEnd:
		return x.end(MessageTypeThought, ev.Content)
	case parser.AnswerEnd:
		return x.end(MessageTypeAnswer, ev.Content)
	case parser.Error:
		return []*Message{{
			ID:      uuid.NewString(),
			Role:    MessageRoleAssistant,
			Type:    MessageTypeError,
			Status:  MessageStatusEnd,
			Content: ev.Content,
		}}
	default:
		return nil
	}
}

func (x *StreamEmitter) open(t MessageType) []*Message {
	msgs := x.closeOpen()
	x.openID = uuid.NewString()
	x.openType = t
	x.openContent = ""
	return append(msgs, &Message{
		ID:     x.openID,
		Role:   MessageRoleAssistant,
		Type:   t,
		Status: MessageStatusStart,
	})
}

func (x *StreamEmitter) delta(t MessageType, content string) []*Message {
	var msgs []*Message
	if x.openID == "" || x.openType != t {
		msgs = x.open(t)
	}
	x.openContent += content
	return append(msgs, &Message{
		ID:      x.openID,
		Role:    MessageRoleAssistant,
		Type:    t,
		Status:  MessageStatusDelta,
		Content: content,
	})
}

func (x *StreamEmitter) end(t MessageType, content string) []*Message {
	// An empty field can complete without ever opening; give its end a
	// fresh id so the triplet invariant still holds for the receiver.
	var msgs []*Message
	if x.openID == "" || x.openType != t {
		msgs = x.open(t)
	}
	msg := &Message{
		ID:      x.openID,
		Role:    MessageRoleAssistant,
		Type:    t,
		Status:  MessageStatusEnd,
		Content: content,
	}
	x.openID = ""
	x.openContent = ""
	return append(msgs, msg)
}

// closeOpen synthesizes an end for the currently open stream, if any,
// carrying the content accumulated so far.
func (x *StreamEmitter) closeOpen() []*Message {
	if x.openID == "" {
		return nil
	}
	msg := &Message{
		ID:      x.openID,
		Role:    MessageRoleAssistant,
		Type:    x.openType,
		Status:  MessageStatusEnd,
		Content: x.openContent,
	}
	x.openID = ""
	x.openContent = ""
	return []*Message{msg}
}
