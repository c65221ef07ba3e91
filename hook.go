package reagent

import "context"

type (
	// LoopHook is called at the start of each round with the round index and
	// the round's prompt text.
	LoopHook func(ctx context.Context, round int, input string) error

	// MessageHook receives every stream message in arrival order. Returning
	// an error aborts the request immediately.
	MessageHook func(ctx context.Context, msg *Message) error

	// ToolRequestHook is called just before a tool is invoked.
	ToolRequestHook func(ctx context.Context, call ToolCall) error

	// ToolResponseHook is called with the data of a successful tool invocation.
	ToolResponseHook func(ctx context.Context, call ToolCall, response map[string]any) error

	// ToolErrorHook is called when a tool invocation fails. Returning an
	// error aborts the request; returning nil lets the failure flow back to
	// the model as an observation.
	ToolErrorHook func(ctx context.Context, err error, call ToolCall) error
)

func defaultLoopHook(ctx context.Context, round int, input string) error {
	return nil
}

func defaultMessageHook(ctx context.Context, msg *Message) error {
	return nil
}

func defaultToolRequestHook(ctx context.Context, call ToolCall) error {
	return nil
}

func defaultToolResponseHook(ctx context.Context, call ToolCall, response map[string]any) error {
	return nil
}

func defaultToolErrorHook(ctx context.Context, err error, call ToolCall) error {
	return nil
}
