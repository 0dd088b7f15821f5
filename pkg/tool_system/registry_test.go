package toolsystem

import (
	"context"
	"testing"
)

func stubTool(name, description string) Tool {
	return Tool{
		Name:        name,
		Description: description,
		Parameters:  map[string]any{"type": "object"},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			return name, nil
		},
	}
}

func TestRegistryLookup(t *testing.T) {
	reg := NewMemoryRegistry()
	reg.Register(stubTool("get_weather", "weather"))

	tool, ok := reg.Lookup("get_weather")
	if !ok {
		t.Fatal("expected get_weather to be registered")
	}
	if tool.Description != "weather" {
		t.Errorf("expected description 'weather', got %q", tool.Description)
	}

	if _, ok := reg.Lookup("does_not_exist"); ok {
		t.Error("expected lookup miss for unregistered tool")
	}

	if reg.Len() != 1 {
		t.Errorf("expected 1 tool, got %d", reg.Len())
	}
}

func TestRegistryReplaceIsDeterministic(t *testing.T) {
	reg := NewMemoryRegistry()
	reg.Register(stubTool("a", "first"))
	reg.Register(stubTool("b", "second"))
	reg.Register(stubTool("a", "replaced"))

	if reg.Len() != 2 {
		t.Fatalf("expected 2 tools after replace, got %d", reg.Len())
	}

	tool, _ := reg.Lookup("a")
	if tool.Description != "replaced" {
		t.Errorf("expected last registration to win, got %q", tool.Description)
	}

	// The replaced tool keeps its original schema position.
	schemas := reg.Schemas()
	if len(schemas) != 2 {
		t.Fatalf("expected 2 schemas, got %d", len(schemas))
	}
	if schemas[0].Name != "a" || schemas[1].Name != "b" {
		t.Errorf("unexpected schema order: %s, %s", schemas[0].Name, schemas[1].Name)
	}
	if schemas[0].Description != "replaced" {
		t.Errorf("expected replaced description in schema, got %q", schemas[0].Description)
	}
}

func TestSchemaProjection(t *testing.T) {
	reg := NewMemoryRegistry()
	reg.Register(stubTool("show_map", "maps"))

	schemas := reg.Schemas()
	if len(schemas) != 1 {
		t.Fatalf("expected 1 schema, got %d", len(schemas))
	}
	s := schemas[0]
	if s.Type != "function" {
		t.Errorf("expected type 'function', got %q", s.Type)
	}
	if s.Name != "show_map" {
		t.Errorf("expected name 'show_map', got %q", s.Name)
	}
	if s.Parameters == nil {
		t.Error("expected parameters to be projected")
	}
}

func TestToolBuilder(t *testing.T) {
	tool, err := NewToolBuilder("get_weather", "Get current weather").
		AddStringParameter("location", "City name", true).
		AddIntegerParameter("k", "result count", false).
		SetHandler(func(ctx context.Context, args map[string]any) (any, error) {
			return "ok", nil
		}).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	params := tool.Parameters
	if params["type"] != "object" {
		t.Errorf("expected object schema, got %v", params["type"])
	}
	props, ok := params["properties"].(map[string]any)
	if !ok {
		t.Fatal("expected properties map")
	}
	if _, exists := props["location"]; !exists {
		t.Error("expected location property")
	}
	required, ok := params["required"].([]string)
	if !ok || len(required) != 1 || required[0] != "location" {
		t.Errorf("unexpected required list: %v", params["required"])
	}
	if params["additionalProperties"] != false {
		t.Error("expected additionalProperties false")
	}
}

func TestToolBuilderRequiresHandler(t *testing.T) {
	if _, err := NewToolBuilder("broken", "no handler").Build(); err == nil {
		t.Error("expected error when handler is missing")
	}
}
