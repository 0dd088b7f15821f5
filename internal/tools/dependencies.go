package tools

import (
	"fmt"
	"net/http"

	"github.com/vegalabs/voicegate/internal/config"
	"github.com/vegalabs/voicegate/pkg/Logger"
	toolsystem "github.com/vegalabs/voicegate/pkg/tool_system"
)

// ToolDependencies holds everything the catalog tools need access to
type ToolDependencies struct {
	Logger     *Logger.Logger
	HTTPClient *http.Client

	// Knowledge search backend
	Search config.ToolsConfig
}

// ToolFactory creates tools with dependencies injected
type ToolFactory struct {
	deps     *ToolDependencies
	builders map[string]ToolBuilder
}

// ToolBuilder interface for tools that need dependencies
type ToolBuilder interface {
	Build(deps *ToolDependencies) (toolsystem.Tool, error)
}

// NewToolFactory creates a new tool factory with dependencies
func NewToolFactory(deps *ToolDependencies) *ToolFactory {
	if deps.HTTPClient == nil {
		deps.HTTPClient = http.DefaultClient
	}
	return &ToolFactory{
		deps:     deps,
		builders: make(map[string]ToolBuilder),
	}
}

// RegisterBuilder registers a tool builder with a name
func (tf *ToolFactory) RegisterBuilder(name string, builder ToolBuilder) error {
	if _, exists := tf.builders[name]; exists {
		return fmt.Errorf("tool builder '%s' already registered", name)
	}
	tf.builders[name] = builder
	return nil
}

// BuildInto builds every registered tool and registers it with the realtime
// tool registry.
func (tf *ToolFactory) BuildInto(registry toolsystem.Registry) error {
	for name, builder := range tf.builders {
		tool, err := builder.Build(tf.deps)
		if err != nil {
			return fmt.Errorf("failed to build tool '%s': %w", name, err)
		}
		registry.Register(tool)
	}
	return nil
}
