package reagent

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ToolSpec describes a tool for the catalogue rendered into the system
// prompt. The agent never validates calls against the schema itself; that is
// the invoker's responsibility.
type ToolSpec struct {
	// Name is the unique identifier for the tool.
	Name string

	// Description tells the model what the tool does.
	Description string

	// Parameters defines the input parameters the tool accepts.
	Parameters map[string]*Parameter

	// Required lists the parameter names that must be provided.
	Required []string
}

// ParameterType is the JSON type of a tool parameter.
type ParameterType string

const (
	TypeString  ParameterType = "string"
	TypeNumber  ParameterType = "number"
	TypeInteger ParameterType = "integer"
	TypeBoolean ParameterType = "boolean"
	TypeArray   ParameterType = "array"
	TypeObject  ParameterType = "object"
)

// Parameter is a single input parameter of a tool.
type Parameter struct {
	Type        ParameterType
	Description string
	Enum        []string
	Properties  map[string]*Parameter
	Items       *Parameter
	Required    []string
}

func (p *Parameter) schema() map[string]any {
	s := map[string]any{"type": string(p.Type)}
	if p.Description != "" {
		s["description"] = p.Description
	}
	if len(p.Enum) > 0 {
		s["enum"] = p.Enum
	}
	if len(p.Properties) > 0 {
		props := map[string]any{}
		for name, prop := range p.Properties {
			props[name] = prop.schema()
		}
		s["properties"] = props
	}
	if p.Items != nil {
		s["items"] = p.Items.schema()
	}
	if len(p.Required) > 0 {
		s["required"] = p.Required
	}
	return s
}

// Schema renders the parameter set as a JSON schema object.
func (s ToolSpec) Schema() map[string]any {
	props := map[string]any{}
	for name, p := range s.Parameters {
		props[name] = p.schema()
	}
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(s.Required) > 0 {
		schema["required"] = s.Required
	}
	return schema
}

// Validate checks the spec: the name must be present and the parameter set
// must compile as a JSON schema.
func (s ToolSpec) Validate() error {
	eb := goerr.NewBuilder(goerr.V("tool", s.Name))
	if s.Name == "" {
		return eb.Wrap(ErrInvalidTool, "name is required")
	}

	raw, err := json.Marshal(s.Schema())
	if err != nil {
		return eb.Wrap(err, "failed to marshal parameter schema")
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return eb.Wrap(ErrInvalidTool, "invalid parameter schema")
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("tool.json", doc); err != nil {
		return eb.Wrap(ErrInvalidTool, "failed to add parameter schema")
	}
	if _, err := compiler.Compile("tool.json"); err != nil {
		return eb.Wrap(ErrInvalidTool, "failed to compile parameter schema")
	}
	return nil
}

// Tool is an in-process tool usable through the registry invoker.
type Tool interface {
	Spec() ToolSpec
	Run(ctx context.Context, args map[string]any) (map[string]any, error)
}

// ToolCall is a single recognized tool invocation request.
type ToolCall struct {
	Name      string
	Arguments map[string]any
}

// Invoker executes a named action with structured arguments. It must be safe
// to call with model-influenced name and arguments; validation and
// sandboxing are the implementation's responsibility. The agent never
// retries an invocation.
type Invoker interface {
	Invoke(ctx context.Context, call ToolCall) (map[string]any, error)
}

// Registry is an Invoker backed by a set of in-process tools.
type Registry struct {
	tools map[string]Tool
	specs []ToolSpec
}

// NewRegistry validates the specs of all tools and builds a registry.
// Duplicate tool names are rejected.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{tools: map[string]Tool{}}
	for _, tool := range tools {
		spec := tool.Spec()
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		if _, ok := r.tools[spec.Name]; ok {
			return nil, goerr.Wrap(ErrInvalidTool, "duplicate tool name", goerr.V("name", spec.Name))
		}
		r.tools[spec.Name] = tool
		r.specs = append(r.specs, spec)
	}
	return r, nil
}

// Specs returns the catalogue of registered tools.
func (r *Registry) Specs() []ToolSpec {
	return append([]ToolSpec{}, r.specs...)
}

func (r *Registry) Invoke(ctx context.Context, call ToolCall) (map[string]any, error) {
	tool, ok := r.tools[call.Name]
	if !ok {
		return nil, goerr.Wrap(ErrToolNotFound, call.Name+" is not available", goerr.V("call", call))
	}
	return tool.Run(ctx, call.Arguments)
}
