package parser

// Section identifies which logical field is currently being accumulated.
type Section int

const (
	SectionNone Section = iota
	SectionThought
	SectionAction
	SectionAnswer
)

// String returns the string representation of the section.
func (x Section) String() string {
	return []string{"none", "thought", "action", "answer"}[x]
}

// State is the accumulated state of one parsing session. Field contents grow
// monotonically, and each completion flag transitions false to true at most
// once per session.
type State struct {
	Section Section

	Thought string
	Answer  string

	ActionName string

	// ActionInput stays nil while the payload is incomplete or invalid.
	ActionInput map[string]any

	ThoughtComplete bool
	AnswerComplete  bool
	ActionComplete  bool
}

// Clone returns a shallow copy of the state. The ActionInput map is shared;
// callers must treat it as read-only.
func (x *State) Clone() *State {
	c := *x
	return &c
}
