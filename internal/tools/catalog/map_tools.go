package catalog

import (
	"context"
	"fmt"

	"github.com/vegalabs/voicegate/internal/tools"
	toolsystem "github.com/vegalabs/voicegate/pkg/tool_system"
)

// ShowMapToolBuilder builds the site-map selector tool. The returned map id
// drives which floor plan the frontend renders; "limpiar" clears it.
type ShowMapToolBuilder struct{}

var mapIDs = []string{
	"ia",
	"banos",
	"salon360",
	"ciberseguridad",
	"conectividad",
	"showroom",
	"cafeteria",
	"limpiar",
}

func (m *ShowMapToolBuilder) Build(deps *tools.ToolDependencies) (toolsystem.Tool, error) {
	return toolsystem.NewToolBuilder("show_map",
		"Devuelve el identificador del mapa para una ubicación dada, o la palabra |limpiar| para borrar el mapa actual.").
		AddStringParameter("map_id", "", true, mapIDs...).
		SetHandler(func(ctx context.Context, args map[string]any) (any, error) {
			mapID, ok := args["map_id"].(string)
			if !ok {
				return nil, fmt.Errorf("map_id parameter is required and must be a string")
			}
			return mapID, nil
		}).
		Build()
}
