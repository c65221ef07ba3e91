package reagent

// MessageRole tags the origin of a stream message at the UI boundary.
type MessageRole string

const (
	MessageRoleAssistant MessageRole = "assistant"
	MessageRoleTool      MessageRole = "tool"
)

// MessageType identifies what kind of content a stream message carries.
type MessageType string

const (
	MessageTypeThought MessageType = "thought"
	MessageTypeAnswer  MessageType = "answer"
	MessageTypeToolUse MessageType = "tool_use"
	MessageTypeError   MessageType = "error"
)

// MessageStatus is the phase of a streamed field: a start with empty
// content, any number of deltas carrying only appended text, and an end
// carrying the full accumulated content.
type MessageStatus string

const (
	MessageStatusStart MessageStatus = "start"
	MessageStatusDelta MessageStatus = "delta"
	MessageStatusEnd   MessageStatus = "end"
)

// Message is one externally visible stream message. ID ties together the
// start/delta/end triplet of one streamed field so the receiver can
// accumulate content correctly. Messages are never mutated after emission.
type Message struct {
	ID       string         `json:"id"`
	Role     MessageRole    `json:"role"`
	Type     MessageType    `json:"type"`
	Status   MessageStatus  `json:"status"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}
