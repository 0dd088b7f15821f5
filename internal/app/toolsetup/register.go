package toolsetup

import (
	"fmt"

	"github.com/vegalabs/voicegate/internal/tools"
	"github.com/vegalabs/voicegate/internal/tools/catalog"
	toolsystem "github.com/vegalabs/voicegate/pkg/tool_system"
)

// RegisterCatalog registers every catalog tool builder and builds the tools
// into the realtime registry. This lives in its own package to avoid import
// cycles between tools and catalog.
func RegisterCatalog(registry toolsystem.Registry, deps *tools.ToolDependencies) error {
	factory := tools.NewToolFactory(deps)

	if err := factory.RegisterBuilder("get_weather", &catalog.GetWeatherToolBuilder{}); err != nil {
		return fmt.Errorf("failed to register weather tool: %w", err)
	}

	if err := factory.RegisterBuilder("show_map", &catalog.ShowMapToolBuilder{}); err != nil {
		return fmt.Errorf("failed to register map tool: %w", err)
	}

	if err := factory.RegisterBuilder("search_products_text", &catalog.ProductSearchToolBuilder{}); err != nil {
		return fmt.Errorf("failed to register product search tool: %w", err)
	}

	return factory.BuildInto(registry)
}
