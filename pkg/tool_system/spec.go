package toolsystem

import "context"

type JSONType string

const (
	JSONString JSONType = "string"
	JSONNumber JSONType = "number"
	JSONObject JSONType = "object"
	JSONArray  JSONType = "array"
	JSONBool   JSONType = "boolean"
)

// ToolHandler executes a tool with the arguments the model supplied.
// The returned value may be any JSON-serializable shape; strings are
// forwarded upstream as-is.
type ToolHandler func(ctx context.Context, args map[string]any) (any, error)

// Tool is a named capability the realtime model may request.
type Tool struct {
	Name        string
	Description string
	// Parameters is a JSON-Schema object describing the arguments.
	Parameters map[string]any
	Handler    ToolHandler
}

// ToolSchema is the wire projection published in session negotiation.
type ToolSchema struct {
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Schema projects the tool into the realtime function-tool wire format.
func (t Tool) Schema() ToolSchema {
	return ToolSchema{
		Type:        "function",
		Name:        t.Name,
		Description: t.Description,
		Parameters:  t.Parameters,
	}
}
