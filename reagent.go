package reagent

import (
	"context"
	"log/slog"
	"sync"

	"github.com/reagent-go/reagent/parser"
)

// DefaultLoopLimit bounds the number of rounds (one model call plus at most
// one tool execution) per request.
const DefaultLoopLimit = 16

// Agent orchestrates one user request at a time: it repeatedly calls the
// model, streams the response through the chunk parser, executes the
// recognized tool action, and appends the observation, until a final answer
// is produced or the round budget is reached.
//
// An Agent must not be shared between concurrent requests; independent chat
// sessions need independent Agent instances.
type Agent struct {
	llm StreamClient

	agentConfig

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool

	// cbMu serializes caller-facing hook invocations with Stop.
	cbMu sync.Mutex
}

type agentConfig struct {
	loopLimit     int
	historyWindow int
	format        parser.Format
	systemPrompt  string

	tools     []Tool
	invoker   Invoker
	catalogue []ToolSpec

	seed []Turn

	loopHook         LoopHook
	messageHook      MessageHook
	toolRequestHook  ToolRequestHook
	toolResponseHook ToolResponseHook
	toolErrorHook    ToolErrorHook

	logger *slog.Logger
}

func (c *agentConfig) Clone() *agentConfig {
	clone := *c
	clone.tools = c.tools[:]
	clone.catalogue = c.catalogue[:]
	clone.seed = c.seed[:]
	return &clone
}

// setupTools resolves the invoker and the catalogue for one request. An
// explicitly injected invoker wins over registered in-process tools.
func (c *agentConfig) setupTools() (Invoker, []ToolSpec, error) {
	if c.invoker != nil {
		for _, spec := range c.catalogue {
			if err := spec.Validate(); err != nil {
				return nil, nil, err
			}
		}
		return c.invoker, c.catalogue, nil
	}

	registry, err := NewRegistry(c.tools...)
	if err != nil {
		return nil, nil, err
	}
	return registry, registry.Specs(), nil
}

// New creates an agent on top of a streaming model client.
func New(llm StreamClient, options ...Option) *Agent {
	agent := &Agent{
		llm: llm,
		agentConfig: agentConfig{
			loopLimit: DefaultLoopLimit,
			format:    parser.FormatReact,

			loopHook:         defaultLoopHook,
			messageHook:      defaultMessageHook,
			toolRequestHook:  defaultToolRequestHook,
			toolResponseHook: defaultToolResponseHook,
			toolErrorHook:    defaultToolErrorHook,

			logger: slog.New(slog.DiscardHandler),
		},
	}

	for _, opt := range options {
		opt(&agent.agentConfig)
	}

	agent.logger.Info("reagent agent created",
		"loop_limit", agent.loopLimit,
		"format", agent.format,
		"history_window", agent.historyWindow,
		"tools_count", len(agent.tools),
		"has_invoker", agent.invoker != nil,
		"seed_turns", len(agent.seed),
	)

	return agent
}

// Option configures an agent. Options may also be passed per Execute call,
// where they apply to that request only.
type Option func(*agentConfig)

// WithLoopLimit sets the maximum number of rounds per request. Reaching the
// limit without a final answer terminates the request with a generic apology
// answer rather than an error.
func WithLoopLimit(loopLimit int) Option {
	return func(c *agentConfig) {
		c.loopLimit = loopLimit
	}
}

// WithHistoryWindow bounds how many trailing turns are included in each
// round's prompt. 0 means unbounded. The full history is still accumulated.
func WithHistoryWindow(n int) Option {
	return func(c *agentConfig) {
		c.historyWindow = n
	}
}

// WithFormat selects the wire format of the structured output protocol.
// Default is parser.FormatReact.
func WithFormat(format parser.Format) Option {
	return func(c *agentConfig) {
		c.format = format
	}
}

// WithSystemPrompt appends extra instructions to the synthesized system turn.
func WithSystemPrompt(systemPrompt string) Option {
	return func(c *agentConfig) {
		c.systemPrompt = systemPrompt
	}
}

// WithTools registers in-process tools behind the registry invoker.
func WithTools(tools ...Tool) Option {
	return func(c *agentConfig) {
		c.tools = append(c.tools, tools...)
	}
}

// WithInvoker injects an external tool invoker together with the catalogue
// of tools it serves. It takes precedence over WithTools.
func WithInvoker(invoker Invoker, catalogue ...ToolSpec) Option {
	return func(c *agentConfig) {
		c.invoker = invoker
		c.catalogue = append(c.catalogue, catalogue...)
	}
}

// WithSeedTurns resumes a conversation from prior turns. The turns are
// validated when Execute starts.
func WithSeedTurns(turns ...Turn) Option {
	return func(c *agentConfig) {
		c.seed = append(c.seed, turns...)
	}
}

// WithLoopHook sets a callback invoked at the start of each round.
func WithLoopHook(hook LoopHook) Option {
	return func(c *agentConfig) {
		c.loopHook = hook
	}
}

// WithMessageHook sets the callback receiving every stream message in
// arrival order.
func WithMessageHook(hook MessageHook) Option {
	return func(c *agentConfig) {
		c.messageHook = hook
	}
}

// WithToolRequestHook sets a callback invoked just before tool execution.
func WithToolRequestHook(hook ToolRequestHook) Option {
	return func(c *agentConfig) {
		c.toolRequestHook = hook
	}
}

// WithToolResponseHook sets a callback invoked with successful tool output.
func WithToolResponseHook(hook ToolResponseHook) Option {
	return func(c *agentConfig) {
		c.toolResponseHook = hook
	}
}

// WithToolErrorHook sets a callback invoked when a tool fails. Return the
// error to abort the request; return nil to feed the failure back to the
// model as an observation.
func WithToolErrorHook(hook ToolErrorHook) Option {
	return func(c *agentConfig) {
		c.toolErrorHook = hook
	}
}

// WithLogger sets the logger. Default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(c *agentConfig) {
		c.logger = logger
	}
}

// Stop aborts the in-flight model call, if any, and prevents any further
// round from starting. Stop waits for the currently running hook, if any,
// to return; once Stop returns, no further callbacks fire. Because of that
// wait, Stop must not be called from inside a hook — return an error from
// the hook to abort the request instead. Stop is idempotent and safe to
// call on an idle agent.
func (x *Agent) Stop() {
	x.mu.Lock()
	x.stopped = true
	if x.cancel != nil {
		x.cancel()
		x.cancel = nil
	}
	x.mu.Unlock()

	// Starting a hook rechecks the stopped flag under cbMu, so acquiring it
	// here means no hook is running and none can start.
	x.cbMu.Lock()
	x.cbMu.Unlock()
}

func (x *Agent) isStopped() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.stopped
}
