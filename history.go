// Package reagent drives a language model in a reason-and-act loop: it
// streams each model response through an incremental structured-output
// parser, executes the tool the model asked for, feeds the observation back
// as a new turn, and repeats until the model produces a final answer or the
// round budget runs out.
package reagent

import (
	"github.com/m-mizutani/goerr/v2"
)

// Role is the role of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (x Role) valid() bool {
	switch x {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Turn is one conversation turn. Turns are immutable once appended to a History.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Validate checks that the turn has a known role and non-empty content.
func (x Turn) Validate() error {
	if !x.Role.valid() {
		return goerr.Wrap(ErrInvalidHistory, "unknown role", goerr.V("role", x.Role))
	}
	if x.Content == "" {
		return goerr.Wrap(ErrInvalidHistory, "empty content", goerr.V("role", x.Role))
	}
	return nil
}

// History is the ordered, append-only turn sequence of one request. It is
// exclusively owned by the agent for the duration of the request and
// discarded when the request completes.
type History struct {
	turns []Turn
}

// NewHistory creates a history, optionally seeded with prior turns to resume
// a conversation. Seed turns are validated before being folded in.
func NewHistory(seed []Turn) (*History, error) {
	for i, t := range seed {
		if err := t.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid seed turn", goerr.V("index", i))
		}
	}
	return &History{turns: append([]Turn{}, seed...)}, nil
}

func (x *History) Append(t Turn) {
	x.turns = append(x.turns, t)
}

func (x *History) Len() int {
	return len(x.turns)
}

// Turns returns a copy of all turns.
func (x *History) Turns() []Turn {
	return append([]Turn{}, x.turns...)
}

// Window returns a copy of the trailing n turns. n <= 0 means all turns.
func (x *History) Window(n int) []Turn {
	if n <= 0 || n >= len(x.turns) {
		return x.Turns()
	}
	return append([]Turn{}, x.turns[len(x.turns)-n:]...)
}

func (x *History) Clone() *History {
	if x == nil {
		return nil
	}
	return &History{turns: x.Turns()}
}
