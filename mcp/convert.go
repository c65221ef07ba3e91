package mcp

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/reagent-go/reagent"
)

// ErrInvalidInputSchema is returned when a server advertises a tool input
// schema this adapter cannot represent.
var ErrInvalidInputSchema = goerr.New("invalid input schema")

func toolToSpec(tool mcp.Tool) (reagent.ToolSpec, error) {
	parameters, err := inputSchemaToParameters(tool.InputSchema)
	if err != nil {
		return reagent.ToolSpec{}, goerr.Wrap(err, "invalid tool", goerr.V("name", tool.Name))
	}

	return reagent.ToolSpec{
		Name:        tool.Name,
		Description: tool.Description,
		Parameters:  parameters,
		Required:    tool.InputSchema.Required,
	}, nil
}

func inputSchemaToParameters(inputSchema mcp.ToolInputSchema) (map[string]*reagent.Parameter, error) {
	parameters := map[string]*reagent.Parameter{}

	for name, property := range inputSchema.Properties {
		prop, ok := property.(map[string]any)
		if !ok {
			return nil, goerr.Wrap(ErrInvalidInputSchema, "invalid property", goerr.V("property", property))
		}

		parameter, err := propertyToParameter(name, prop)
		if err != nil {
			return nil, err
		}
		parameters[name] = parameter
	}

	return parameters, nil
}

func propertyToParameter(name string, prop map[string]any) (*reagent.Parameter, error) {
	var properties map[string]*reagent.Parameter
	var items *reagent.Parameter
	propType := valueOrEmpty[string](prop["type"])

	if propType == "object" {
		properties = map[string]*reagent.Parameter{}
		for k, v := range valueOrEmpty[map[string]any](prop["properties"]) {
			nested, ok := v.(map[string]any)
			if !ok {
				return nil, goerr.Wrap(ErrInvalidInputSchema, "invalid nested property", goerr.V("name", k))
			}
			parameter, err := propertyToParameter(k, nested)
			if err != nil {
				return nil, err
			}
			properties[k] = parameter
		}
	}

	if propType == "array" {
		nested, ok := prop["items"].(map[string]any)
		if !ok {
			return nil, goerr.Wrap(ErrInvalidInputSchema, "invalid items", goerr.V("name", name))
		}
		parameter, err := propertyToParameter(name, nested)
		if err != nil {
			return nil, err
		}
		items = parameter
	}

	var enum []string
	for _, v := range valueOrEmpty[[]any](prop["enum"]) {
		if s, ok := v.(string); ok {
			enum = append(enum, s)
		}
	}

	var required []string
	for _, v := range valueOrEmpty[[]any](prop["required"]) {
		if s, ok := v.(string); ok {
			required = append(required, s)
		}
	}

	return &reagent.Parameter{
		Type:        reagent.ParameterType(propType),
		Description: valueOrEmpty[string](prop["description"]),
		Enum:        enum,
		Properties:  properties,
		Items:       items,
		Required:    required,
	}, nil
}

func valueOrEmpty[T any](v any) T {
	var empty T
	if v == nil {
		return empty
	}
	if v, ok := v.(T); ok {
		return v
	}
	return empty
}
