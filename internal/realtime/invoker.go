package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vegalabs/voicegate/pkg/Logger"
	toolsystem "github.com/vegalabs/voicegate/pkg/tool_system"
)

// Invoker resolves model-issued function calls against the tool registry.
// Every failure mode is normalized into a result payload so the model can
// react conversationally instead of the session dying.
type Invoker struct {
	registry toolsystem.Registry
	logger   *Logger.Logger
}

func NewInvoker(registry toolsystem.Registry, logger *Logger.Logger) *Invoker {
	return &Invoker{registry: registry, logger: logger}
}

// Invoke parses the model-supplied arguments, runs the named tool and
// returns its result. Unknown tools and tool failures come back as
// {"error": ...} payloads, never as Go errors.
func (inv *Invoker) Invoke(ctx context.Context, name, rawArgs string) any {
	args := make(map[string]any)
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			// The tool decides whether missing args are fatal.
			inv.logger.Warnf("unparseable arguments for tool %s, invoking with empty args: %v", name, err)
			args = make(map[string]any)
		}
	}

	tool, ok := inv.registry.Lookup(name)
	if !ok {
		return map[string]any{"error": fmt.Sprintf("Unknown tool: %s", name)}
	}

	out, err := inv.call(ctx, tool, args)
	if err != nil {
		inv.logger.Errorf("tool %s failed: %v", name, err)
		return map[string]any{"error": fmt.Sprintf("tool '%s' failed: %s", name, err)}
	}
	return out
}

func (inv *Invoker) call(ctx context.Context, tool toolsystem.Tool, args map[string]any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return tool.Handler(ctx, args)
}

// Stringify renders a tool result for the function_call_output item.
// Strings pass through; everything else becomes compact JSON with non-ASCII
// characters kept intact.
func Stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return strings.TrimRight(buf.String(), "\n")
}
