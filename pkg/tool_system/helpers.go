package toolsystem

import "fmt"

// ToolBuilder helps create tools with a fluent interface
type ToolBuilder struct {
	name        string
	description string
	properties  map[string]any
	required    []string
	handler     ToolHandler
}

// NewToolBuilder creates a new tool builder
func NewToolBuilder(name, description string) *ToolBuilder {
	return &ToolBuilder{
		name:        name,
		description: description,
		properties:  make(map[string]any),
		required:    make([]string, 0),
	}
}

// AddParameter adds a parameter to the tool
func (tb *ToolBuilder) AddParameter(name string, paramType JSONType, description string, required bool, enum ...string) *ToolBuilder {
	prop := map[string]any{
		"type": string(paramType),
	}
	if description != "" {
		prop["description"] = description
	}
	if len(enum) > 0 {
		prop["enum"] = enum
	}
	tb.properties[name] = prop
	if required {
		tb.required = append(tb.required, name)
	}
	return tb
}

// AddStringParameter adds a string parameter
func (tb *ToolBuilder) AddStringParameter(name, description string, required bool, enum ...string) *ToolBuilder {
	return tb.AddParameter(name, JSONString, description, required, enum...)
}

// AddNumberParameter adds a number parameter
func (tb *ToolBuilder) AddNumberParameter(name, description string, required bool) *ToolBuilder {
	return tb.AddParameter(name, JSONNumber, description, required)
}

// AddIntegerParameter adds an integer parameter
func (tb *ToolBuilder) AddIntegerParameter(name, description string, required bool) *ToolBuilder {
	prop := map[string]any{"type": "integer"}
	if description != "" {
		prop["description"] = description
	}
	tb.properties[name] = prop
	if required {
		tb.required = append(tb.required, name)
	}
	return tb
}

// AddBooleanParameter adds a boolean parameter
func (tb *ToolBuilder) AddBooleanParameter(name, description string, required bool) *ToolBuilder {
	return tb.AddParameter(name, JSONBool, description, required)
}

// SetHandler sets the tool handler function
func (tb *ToolBuilder) SetHandler(handler ToolHandler) *ToolBuilder {
	tb.handler = handler
	return tb
}

// Build creates the final Tool
func (tb *ToolBuilder) Build() (Tool, error) {
	if tb.handler == nil {
		return Tool{}, fmt.Errorf("handler is required for tool %s", tb.name)
	}

	required := tb.required
	if required == nil {
		required = []string{}
	}

	return Tool{
		Name:        tb.name,
		Description: tb.description,
		Parameters: map[string]any{
			"type":                 "object",
			"properties":           tb.properties,
			"required":             required,
			"additionalProperties": false,
		},
		Handler: tb.handler,
	}, nil
}

// BuildAndRegister creates the tool and registers it to the registry
func (tb *ToolBuilder) BuildAndRegister(registry Registry) error {
	tool, err := tb.Build()
	if err != nil {
		return err
	}
	registry.Register(tool)
	return nil
}
