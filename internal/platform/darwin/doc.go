//go:build darwin

// Package darwin provides the macOS accessibility provider. Nodes wrap
// AXUIElement references; input goes through CoreGraphics events.
// Everything except the screenshotter requires CGo. Without CGo the provider
// is not registered and uiloc only runs against --tree fixtures.
package darwin
