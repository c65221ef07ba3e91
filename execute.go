package reagent

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/reagent-go/reagent/parser"
)

// apologyAnswer is the degraded result used when the round budget runs out
// or a round is abandoned after a structural parse error. A degraded but
// valid answer is preferable to silence.
const apologyAnswer = "I'm sorry, but I wasn't able to complete this request. Please try rephrasing it or breaking it into smaller steps."

// Execute runs one user request to completion and returns the final answer.
// Per-call options apply to this request only.
//
// Round-local failures (tool errors, malformed action payloads) never abort
// the loop; only protocol violations and model or hook errors do. Reaching
// the round budget returns an apology answer with a nil error.
func (x *Agent) Execute(ctx context.Context, prompt string, options ...Option) (string, error) {
	cfg := x.agentConfig.Clone()
	for _, opt := range options {
		opt(cfg)
	}

	logger := cfg.logger.With("reagent.request_id", uuid.NewString())
	ctx = ctxWithLogger(ctx, logger)

	x.mu.Lock()
	if x.stopped {
		x.mu.Unlock()
		return "", goerr.Wrap(ErrAgentStopped, "agent is no longer active")
	}
	if x.cancel != nil {
		x.mu.Unlock()
		return "", goerr.Wrap(ErrRequestInFlight, "agent handles one request at a time")
	}
	ctx, cancel := context.WithCancel(ctx)
	x.cancel = cancel
	x.mu.Unlock()

	defer func() {
		cancel()
		x.mu.Lock()
		x.cancel = nil
		x.mu.Unlock()
	}()

	logger.Info("starting execution", "prompt", prompt, "loop_limit", cfg.loopLimit)

	invoker, catalogue, err := cfg.setupTools()
	if err != nil {
		return "", err
	}

	history, err := NewHistory(cfg.seed)
	if err != nil {
		return "", err
	}

	p, err := parser.New(cfg.format)
	if err != nil {
		return "", err
	}

	systemPrompt := buildSystemPrompt(cfg.format, catalogue, cfg.systemPrompt)
	current := Turn{Role: RoleUser, Content: prompt}

	for round := 0; round < cfg.loopLimit; round++ {
		if err := x.callback("LoopHook", func() error {
			return cfg.loopHook(ctx, round, current.Content)
		}); err != nil {
			return "", err
		}

		p.Reset()
		emitter := NewStreamEmitter()
		parseFailed := false

		dispatch := func(events []parser.Event) error {
			for _, ev := range events {
				if ev.Kind == parser.Error {
					parseFailed = true
					logger.Warn("structured output parse error", "diagnostic", ev.Content)
				}
				for _, msg := range emitter.Emit(ev) {
					if err := x.emit(ctx, cfg, msg); err != nil {
						return err
					}
				}
			}
			return nil
		}

		turns := append([]Turn{{Role: RoleSystem, Content: systemPrompt}}, history.Window(cfg.historyWindow)...)

		stream, err := x.llm.StreamComplete(ctx, current, turns)
		if err != nil {
			if x.isStopped() {
				return "", goerr.Wrap(ErrAgentStopped, "request aborted")
			}
			return "", goerr.Wrap(err, "failed to start model stream", goerr.V("round", round))
		}

		var raw strings.Builder
		for chunk := range stream {
			if chunk.Err != nil {
				if x.isStopped() {
					return "", goerr.Wrap(ErrAgentStopped, "request aborted")
				}
				return "", goerr.Wrap(chunk.Err, "model stream failed", goerr.V("round", round))
			}
			raw.WriteString(chunk.Text)
			if err := dispatch(p.ParseChunk(chunk.Text)); err != nil {
				return "", err
			}
		}
		if err := dispatch(p.Finalize()); err != nil {
			return "", err
		}

		if x.isStopped() {
			return "", goerr.Wrap(ErrAgentStopped, "request aborted")
		}

		if round == 0 {
			history.Append(current)
		}
		history.Append(Turn{Role: RoleAssistant, Content: raw.String()})

		state := p.State()
		logger.Debug("round complete",
			"round", round,
			"section", state.Section.String(),
			"action_complete", state.ActionComplete,
			"answer_complete", state.AnswerComplete,
		)

		switch {
		case state.ActionComplete:
			call := ToolCall{Name: state.ActionName, Arguments: state.ActionInput}
			observation, err := x.executeTool(ctx, cfg, invoker, call)
			if err != nil {
				return "", err
			}
			history.Append(Turn{Role: RoleUser, Content: observation})
			current = Turn{Role: RoleUser, Content: continuationCue}

		case state.AnswerComplete:
			logger.Info("final answer produced", "rounds", round+1)
			return state.Answer, nil

		case parseFailed:
			// The round surfaced a structural parse error and produced
			// nothing usable; degrade to a generic result instead of failing.
			logger.Warn("round abandoned after parse error", "round", round)
			if err := x.emitAnswer(ctx, cfg, apologyAnswer); err != nil {
				return "", err
			}
			return apologyAnswer, nil

		default:
			return "", goerr.Wrap(ErrProtocolViolation, "round produced no action and no answer",
				goerr.V("round", round), goerr.V("response", raw.String()))
		}
	}

	logger.Warn("round budget exhausted", "loop_limit", cfg.loopLimit)
	if err := x.emitAnswer(ctx, cfg, apologyAnswer); err != nil {
		return "", err
	}
	return apologyAnswer, nil
}

// callback runs one caller-facing hook. The stopped check and the
// invocation share a lock with Stop, so no callback starts after Stop has
// returned.
func (x *Agent) callback(name string, fn func() error) error {
	x.cbMu.Lock()
	defer x.cbMu.Unlock()
	if x.isStopped() {
		return goerr.Wrap(ErrAgentStopped, "request aborted")
	}
	if err := fn(); err != nil {
		return goerr.Wrap(err, "failed to call "+name)
	}
	return nil
}

// emit forwards one stream message to the caller, unless the agent has been
// stopped, in which case no further callbacks may fire.
func (x *Agent) emit(ctx context.Context, cfg *agentConfig, msg *Message) error {
	return x.callback("MessageHook", func() error {
		return cfg.messageHook(ctx, msg)
	})
}

// emitAnswer sends a synthetic single-message answer stream for degraded
// terminations.
func (x *Agent) emitAnswer(ctx context.Context, cfg *agentConfig, answer string) error {
	return x.emit(ctx, cfg, &Message{
		ID:      uuid.NewString(),
		Role:    MessageRoleAssistant,
		Type:    MessageTypeAnswer,
		Status:  MessageStatusEnd,
		Content: answer,
	})
}

// executeTool invokes the tool exactly once and renders the observation.
// Start and end tool messages bracket the call, tied by a shared id.
func (x *Agent) executeTool(ctx context.Context, cfg *agentConfig, invoker Invoker, call ToolCall) (string, error) {
	logger := LoggerFromContext(ctx)
	logger.Info("executing tool", "name", call.Name, "arguments", call.Arguments)

	if err := x.callback("ToolRequestHook", func() error {
		return cfg.toolRequestHook(ctx, call)
	}); err != nil {
		return "", err
	}

	msgID := uuid.NewString()
	if err := x.emit(ctx, cfg, &Message{
		ID:      msgID,
		Role:    MessageRoleTool,
		Type:    MessageTypeToolUse,
		Status:  MessageStatusStart,
		Content: call.Name,
		Metadata: map[string]any{
			"name":      call.Name,
			"arguments": call.Arguments,
		},
	}); err != nil {
		return "", err
	}

	data, invokeErr := invoker.Invoke(ctx, call)
	if invokeErr != nil {
		logger.Info("tool failed", "name", call.Name, "error", invokeErr)
		if cbErr := x.callback("ToolErrorHook", func() error {
			return cfg.toolErrorHook(ctx, invokeErr, call)
		}); cbErr != nil {
			return "", cbErr
		}
	} else {
		if cbErr := x.callback("ToolResponseHook", func() error {
			return cfg.toolResponseHook(ctx, call, data)
		}); cbErr != nil {
			return "", cbErr
		}
	}

	endMeta := map[string]any{
		"name":    call.Name,
		"success": invokeErr == nil,
	}
	if invokeErr != nil {
		endMeta["error"] = invokeErr.Error()
	}
	if err := x.emit(ctx, cfg, &Message{
		ID:       msgID,
		Role:     MessageRoleTool,
		Type:     MessageTypeToolUse,
		Status:   MessageStatusEnd,
		Content:  call.Name,
		Metadata: endMeta,
	}); err != nil {
		return "", err
	}

	return renderObservation(call, data, invokeErr), nil
}
