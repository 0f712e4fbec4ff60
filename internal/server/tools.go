package server

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// targetOptions are the arguments shared by tools that act on one control.
func targetOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("locator", mcp.Description(`Locator of the control, e.g. 'name:"File name:" type:Edit' or 'id:Save'. Steps separated by '>' search under the previous match`)),
		mcp.WithString("ref", mcp.Description("Handle id returned by find or find_many; used instead of locator")),
		mcp.WithString("root", mcp.Description("Handle id to search under instead of the desktop")),
		mcp.WithNumber("timeout", mcp.Description("Search timeout in ms (0 = single attempt, default from settings)")),
		mcp.WithNumber("depth", mcp.Description("Max search depth (default from settings)")),
	}
}

func tool(name, description string, opts ...mcp.ToolOption) mcp.Tool {
	return mcp.NewTool(name, append([]mcp.ToolOption{mcp.WithDescription(description)}, opts...)...)
}

func withTarget(opts ...mcp.ToolOption) []mcp.ToolOption {
	return append(targetOptions(), opts...)
}

func (s *Server) registerTools() {
	s.addTool(
		tool("find", "Find one control by locator. Returns its attributes and a handle id usable as ref or root in later calls.",
			mcp.WithString("locator", mcp.Description("Locator of the control"), mcp.Required()),
			mcp.WithString("root", mcp.Description("Handle id to search under instead of the desktop")),
			mcp.WithNumber("timeout", mcp.Description("Search timeout in ms (0 = single attempt)")),
			mcp.WithNumber("depth", mcp.Description("Max search depth")),
		),
		s.stepHandler("find", nil),
	)

	s.addTool(
		tool("find_many", "Find every control matching a locator. Each result carries a handle id.",
			mcp.WithString("locator", mcp.Description("Locator of the controls"), mcp.Required()),
			mcp.WithString("root", mcp.Description("Handle id to search under instead of the desktop")),
			mcp.WithString("strategy", mcp.Description("siblings (first match and its later siblings, default) or all (whole subtree)")),
			mcp.WithBoolean("wait", mcp.Description("Poll until at least one control matches")),
			mcp.WithNumber("timeout", mcp.Description("Search timeout in ms when waiting")),
			mcp.WithNumber("depth", mcp.Description("Max search depth")),
		),
		s.stepHandler("find", map[string]any{"many": true}),
	)

	s.addTool(
		tool("click", "Click a control at its center, or at the offset given by an offset:x,y locator predicate.",
			withTarget(
				mcp.WithString("kind", mcp.Description("click (default), double, right or middle")),
				mcp.WithNumber("wait", mcp.Description("Settle time after the click in ms (default from settings)")),
			)...,
		),
		s.handleClick,
	)

	s.addTool(
		tool("select", "Select an item in a selection control such as a combo box.",
			withTarget(
				mcp.WithString("value", mcp.Description("Item to select"), mcp.Required()),
				mcp.WithNumber("wait", mcp.Description("Settle time in ms")),
			)...,
		),
		s.stepHandler("select", nil),
	)

	s.addTool(
		tool("send_keys", "Send keys to a control, or to the focused control when no locator or ref is given. Syntax: {Ctrl}a{Del}, {Enter 3}, {{} for a literal brace.",
			withTarget(
				mcp.WithString("keys", mcp.Description("Keys to send")),
				mcp.WithBoolean("enter", mcp.Description("Press Enter afterwards")),
				mcp.WithNumber("interval", mcp.Description("Pause between strokes in ms (default 10)")),
				mcp.WithNumber("wait", mcp.Description("Settle time in ms")),
			)...,
		),
		s.stepHandler("send-keys", nil),
	)

	s.addTool(
		tool("get_text", "Read the window text of a control.", targetOptions()...),
		s.stepHandler("get-text", nil),
	)

	s.addTool(
		tool("get_value", "Read the value of a control through its value or legacy accessibility pattern.", targetOptions()...),
		s.stepHandler("get-value", nil),
	)

	s.addTool(
		tool("set_value", "Set the value of a control. Uses the value pattern when available and otherwise types the value, then reads it back.",
			withTarget(
				mcp.WithString("value", mcp.Description("Value to set"), mcp.Required()),
				mcp.WithBoolean("append", mcp.Description("Keep the current content and append")),
				mcp.WithBoolean("enter", mcp.Description("Press Ctrl+End then Enter afterwards")),
				mcp.WithBoolean("newline", mcp.Description("Add a line break to the value (value pattern only)")),
				mcp.WithBoolean("keys-fallback", mcp.Description("Type the value when there is no value pattern (default true)")),
				mcp.WithBoolean("validate", mcp.Description("Read the value back and compare (default true)")),
			)...,
		),
		s.stepHandler("set-value", nil),
	)

	s.addTool(
		tool("drag_and_drop", "Drag one control onto another.",
			mcp.WithString("from-locator", mcp.Description("Locator of the source")),
			mcp.WithString("from-ref", mcp.Description("Handle id of the source")),
			mcp.WithString("to-locator", mcp.Description("Locator of the target")),
			mcp.WithString("to-ref", mcp.Description("Handle id of the target")),
			mcp.WithString("root", mcp.Description("Handle id to search both locators under")),
			mcp.WithBoolean("copy", mcp.Description("Hold Ctrl during the drag")),
			mcp.WithNumber("speed", mcp.Description("Gesture speed (default 1)")),
			mcp.WithNumber("timeout", mcp.Description("Search timeout in ms")),
		),
		s.stepHandler("drag", nil),
	)

	s.addTool(
		tool("set_focus", "Move keyboard focus to a control.", targetOptions()...),
		s.stepHandler("focus", nil),
	)

	s.addTool(
		tool("tree", "Print the control tree under a control (or the desktop) in locator syntax.",
			withTarget(
				mcp.WithNumber("max-depth", mcp.Description("Levels to print (0 = all)")),
				mcp.WithString("text", mcp.Description("Keep controls whose name, id or class contain this text")),
				mcp.WithString("control", mcp.Description("Keep controls of this type, e.g. Button")),
				mcp.WithString("format", mcp.Description("lines (default), yaml or json")),
			)...,
		),
		s.handleTree,
	)

	s.addTool(
		tool("screenshot", "Capture a control, or the desktop when no locator or ref is given, as PNG.",
			withTarget(
				mcp.WithNumber("scale", mcp.Description("Scale factor (default 1, max 4)")),
				mcp.WithBoolean("label", mcp.Description("Stamp the control's locator in the corner")),
			)...,
		),
		s.handleScreenshot,
	)

	s.addTool(
		tool("configure", "Change settings for the following calls. Returns the current settings.",
			mcp.WithString("wait_time", mcp.Description("Settle time after actions, e.g. 500ms")),
			mcp.WithBoolean("simulate_mouse_movement", mcp.Description("Move the pointer before clicking")),
			mcp.WithBoolean("verbose_errors", mcp.Description("Include the visited tree in not-found errors")),
			mcp.WithString("timeout", mcp.Description("Default search timeout, e.g. 4s")),
			mcp.WithNumber("search_depth", mcp.Description("Default search depth")),
			mcp.WithString("poll_interval", mcp.Description("Pause between search attempts, e.g. 100ms")),
		),
		s.handleConfigure,
	)

	s.addTool(
		tool("do", "Execute several steps in order. Supports find, click, double-click, right-click, middle-click, select, send-keys, get-text, get-value, set-value, drag, focus, sleep, if-exists and try.",
			mcp.WithArray("steps", mcp.Description("Array of {action: {params}} objects"), mcp.Required()),
			mcp.WithBoolean("stop-on-error", mcp.Description("Stop on first error (default: true)")),
		),
		s.handleDo,
	)

	s.addTool(
		tool("release", "Forget handle ids so the controls can be garbage collected.",
			mcp.WithArray("refs", mcp.Description("Handle ids to release; empty releases all")),
		),
		s.handleRelease,
	)
}
