package catalog

import (
	"context"
	"fmt"

	"github.com/vegalabs/voicegate/internal/tools"
	toolsystem "github.com/vegalabs/voicegate/pkg/tool_system"
)

// GetWeatherToolBuilder builds the current-conditions lookup tool
type GetWeatherToolBuilder struct{}

func (w *GetWeatherToolBuilder) Build(deps *tools.ToolDependencies) (toolsystem.Tool, error) {
	return toolsystem.NewToolBuilder("get_weather", "Get current temperature for provided coordinates in Celsius.").
		AddStringParameter("location", "", true).
		SetHandler(func(ctx context.Context, args map[string]any) (any, error) {
			location, ok := args["location"].(string)
			if !ok {
				return nil, fmt.Errorf("location parameter is required and must be a string")
			}

			// Canned conditions until a weather provider is wired in.
			temperatureC := 20
			conditions := "Sunny"

			return fmt.Sprintf("Current temperature in %s is %d°C and the weather is %s.",
				location, temperatureC, conditions), nil
		}).
		Build()
}
