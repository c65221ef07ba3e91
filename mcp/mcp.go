// Package mcp exposes a Model Context Protocol server as a reagent tool
// invoker: the server's tools become catalogue entries and tool calls are
// forwarded over stdio or HTTP SSE.
package mcp

import (
	"context"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/reagent-go/reagent"
)

// Invoker is a reagent.Invoker backed by one MCP server.
type Invoker struct {
	// For a local MCP server executable
	path    string
	args    []string
	envVars []string

	// For a remote MCP server
	baseURL string
	headers map[string]string

	client     *client.Client
	initResult *mcp.InitializeResult

	initMutex sync.Mutex
}

// StdioOption is the option for a local MCP executable server via stdio.
type StdioOption func(*Invoker)

// WithEnvVars appends environment variables for the MCP server process.
func WithEnvVars(envVars []string) StdioOption {
	return func(x *Invoker) {
		x.envVars = append(x.envVars, envVars...)
	}
}

// SSEOption is the option for a remote MCP server via HTTP SSE.
type SSEOption func(*Invoker)

// WithHeaders sets the headers sent to the MCP server.
func WithHeaders(headers map[string]string) SSEOption {
	return func(x *Invoker) {
		x.headers = headers
	}
}

// NewStdio creates an invoker for a local MCP server started as a child
// process.
func NewStdio(ctx context.Context, path string, args []string, options ...StdioOption) (*Invoker, error) {
	x := &Invoker{path: path, args: args}
	for _, opt := range options {
		opt(x)
	}
	if err := x.start(ctx); err != nil {
		return nil, err
	}
	return x, nil
}

// NewSSE creates an invoker for a remote MCP server reached via HTTP SSE.
func NewSSE(ctx context.Context, baseURL string, options ...SSEOption) (*Invoker, error) {
	x := &Invoker{baseURL: baseURL}
	for _, opt := range options {
		opt(x)
	}
	if err := x.start(ctx); err != nil {
		return nil, err
	}
	return x, nil
}

func (x *Invoker) start(ctx context.Context) error {
	x.initMutex.Lock()
	defer x.initMutex.Unlock()

	if x.initResult != nil {
		return nil
	}

	var tp transport.Interface
	if x.path != "" {
		tp = transport.NewStdio(x.path, x.envVars, x.args...)
	}
	if x.baseURL != "" {
		sse, err := transport.NewSSE(x.baseURL, transport.WithHeaders(x.headers))
		if err != nil {
			return goerr.Wrap(err, "failed to create SSE transport")
		}
		tp = sse
	}
	if tp == nil {
		return goerr.New("no transport")
	}

	x.client = client.NewClient(tp)

	if err := x.client.Start(ctx); err != nil {
		return goerr.Wrap(err, "failed to start MCP client")
	}

	var initRequest mcp.InitializeRequest
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    "reagent",
		Version: "0.0.1",
	}

	resp, err := x.client.Initialize(ctx, initRequest)
	if err != nil {
		return goerr.Wrap(err, "failed to initialize MCP client")
	}
	x.initResult = resp

	return nil
}

// Close shuts down the underlying MCP client.
func (x *Invoker) Close() error {
	if x.client == nil {
		return nil
	}
	if err := x.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close MCP client")
	}
	return nil
}

// Specs lists the server's tools as catalogue entries.
func (x *Invoker) Specs(ctx context.Context) ([]reagent.ToolSpec, error) {
	if x.initResult == nil {
		return nil, goerr.New("MCP client not initialized")
	}

	resp, err := x.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list tools")
	}

	specs := make([]reagent.ToolSpec, 0, len(resp.Tools))
	for _, tool := range resp.Tools {
		spec, err := toolToSpec(tool)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// Invoke forwards one tool call to the MCP server. A tool-level failure is
// returned as an error so the agent can feed it back as an observation.
func (x *Invoker) Invoke(ctx context.Context, call reagent.ToolCall) (map[string]any, error) {
	if x.initResult == nil {
		return nil, goerr.New("MCP client not initialized")
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = call.Name
	req.Params.Arguments = call.Arguments

	resp, err := x.client.CallTool(ctx, req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to call tool", goerr.V("call", call))
	}

	text := contentToText(resp.Content)
	if resp.IsError {
		return nil, goerr.New("tool reported an error", goerr.V("name", call.Name), goerr.V("detail", text))
	}

	return map[string]any{"result": text}, nil
}

func contentToText(content []mcp.Content) string {
	var parts []string
	for _, c := range content {
		if tc, ok := c.(mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}
