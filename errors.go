package reagent

import "errors"

var (
	// ErrProtocolViolation is returned when a round yields neither a tool
	// action nor a final answer. This is fatal for the request: retrying
	// silently risks an unbounded loop.
	ErrProtocolViolation = errors.New("model response contained neither an action nor a final answer")

	// ErrInvalidHistory is returned when a seed turn lacks a known role or
	// non-empty content.
	ErrInvalidHistory = errors.New("invalid conversation turn")

	// ErrInvalidTool is returned for a malformed tool specification.
	ErrInvalidTool = errors.New("invalid tool specification")

	// ErrToolNotFound is returned by the registry invoker for an unknown tool name.
	ErrToolNotFound = errors.New("tool not found")

	// ErrAgentStopped is returned when Stop aborted the request.
	ErrAgentStopped = errors.New("agent stopped")

	// ErrRequestInFlight is returned when Execute is called while another
	// request is still running on the same agent.
	ErrRequestInFlight = errors.New("another request is in flight")
)
