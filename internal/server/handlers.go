package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/png"
	"maps"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/mj1618/uiloc/internal/batch"
	"github.com/mj1618/uiloc/internal/element"
	"github.com/mj1618/uiloc/internal/interact"
	"github.com/mj1618/uiloc/internal/output"
)

// resultToText serializes a tool result to YAML for the MCP response.
func resultToText(v any) string {
	text, err := output.Sprint(output.FormatYAML, v)
	if err != nil {
		return fmt.Sprintf("ok: false\nerror: %s", err)
	}
	return text
}

func stepResultToTool(res batch.StepResult, err error) *mcp.CallToolResult {
	if err != nil {
		res.OK = false
		res.Error = err.Error()
		return mcp.NewToolResultError(resultToText(res))
	}
	res.OK = true
	return mcp.NewToolResultText(resultToText(res))
}

func arguments(request mcp.CallToolRequest) batch.Params {
	args := request.GetArguments()
	if args == nil {
		return batch.Params{}
	}
	return batch.Params(maps.Clone(args))
}

// hasTarget reports whether the arguments name a control.
func hasTarget(params batch.Params) bool {
	return params["locator"] != nil || params["ref"] != nil
}

// stepHandler runs one batch action with the tool arguments plus extra.
func (s *Server) stepHandler(action string, extra map[string]any) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := arguments(request)
		maps.Copy(params, extra)

		s.providerMu.Lock()
		defer s.providerMu.Unlock()

		if action == "find" {
			s.registry.Prune()
		}
		return stepResultToTool(s.runner.Exec(ctx, action, params)), nil
	}
}

func (s *Server) handleClick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := arguments(request)
	var action string
	switch kind, _ := params["kind"].(string); kind {
	case "", "click", "left":
		action = interact.Click.String()
	case "double", "double-click":
		action = interact.DoubleClick.String()
	case "right", "right-click":
		action = interact.RightClick.String()
	case "middle", "middle-click":
		action = interact.MiddleClick.String()
	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid kind %q: use click, double, right or middle", kind)), nil
	}

	s.providerMu.Lock()
	defer s.providerMu.Unlock()
	return stepResultToTool(s.runner.Exec(ctx, action, params)), nil
}

// target resolves the control named by the arguments, or the desktop when
// none is named.
func (s *Server) target(ctx context.Context, params batch.Params) (*element.Handle, error) {
	if !hasTarget(params) {
		params["locator"] = ""
	}
	return s.runner.Target(ctx, params, "")
}

func (s *Server) handleTree(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := arguments(request)
	opts := output.TreeOptions{}
	if v, ok := params["max-depth"].(float64); ok {
		opts.Depth = int(v)
	}
	opts.Text, _ = params["text"].(string)
	opts.Control, _ = params["control"].(string)
	format, _ := params["format"].(string)

	s.providerMu.Lock()
	defer s.providerMu.Unlock()

	h, err := s.target(ctx, params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	switch format {
	case "", "lines":
		text, err := output.FormatTree(h, opts)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(h.String() + "\n" + text), nil
	case "yaml", "json":
		v, err := output.BuildTree(h, opts)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		text, err := output.Sprint(output.Format(format), v)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(text), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid format %q: use lines, yaml or json", format)), nil
	}
}

func (s *Server) handleScreenshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := arguments(request)
	opts := interact.ScreenshotOptions{}
	opts.Scale, _ = params["scale"].(float64)
	opts.Label, _ = params["label"].(bool)

	s.providerMu.Lock()
	defer s.providerMu.Unlock()

	var h *element.Handle
	if hasTarget(params) {
		var err error
		if h, err = s.runner.Target(ctx, params, ""); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	img, err := s.dispatcher.Screenshot(h, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode png: %v", err)), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.ImageContent{
				Type:     "image",
				Data:     base64.StdEncoding.EncodeToString(buf.Bytes()),
				MIMEType: "image/png",
			},
		},
	}, nil
}

// durationSettings take a duration; numeric arguments are milliseconds.
var durationSettings = map[string]bool{"wait_time": true, "timeout": true, "poll_interval": true}

func (s *Server) handleConfigure(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := arguments(request)

	s.providerMu.Lock()
	defer s.providerMu.Unlock()

	for key, v := range params {
		if n, ok := v.(float64); ok && durationSettings[key] {
			v = time.Duration(n * float64(time.Millisecond)).String()
		}
		if err := s.settings.Set(key, v); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	return mcp.NewToolResultText(resultToText(s.settings.Settings())), nil
}

func (s *Server) handleDo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := arguments(request)
	stopOnError := true
	if v, ok := params["stop-on-error"].(bool); ok {
		stopOnError = v
	}

	stepsRaw, ok := params["steps"]
	if !ok {
		return mcp.NewToolResultError("steps parameter is required"), nil
	}
	arr, ok := stepsRaw.([]any)
	if !ok {
		return mcp.NewToolResultError("steps must be an array"), nil
	}
	steps, err := batch.StepsFromList(arr)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.providerMu.Lock()
	defer s.providerMu.Unlock()

	runner := *s.runner
	runner.StopOnError = stopOnError
	res := runner.Run(ctx, steps)
	if !res.OK {
		return mcp.NewToolResultError(resultToText(res)), nil
	}
	return mcp.NewToolResultText(resultToText(res)), nil
}

func (s *Server) handleRelease(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := arguments(request)
	refs, _ := params["refs"].([]any)

	s.providerMu.Lock()
	defer s.providerMu.Unlock()

	if len(refs) == 0 {
		s.registry.Clear()
	}
	for _, r := range refs {
		s.registry.Remove(fmt.Sprint(r))
	}
	return mcp.NewToolResultText(fmt.Sprintf("handles: %d\n", s.registry.Len())), nil
}
