package cmd

// Registers the macOS accessibility provider.
import _ "github.com/mj1618/uiloc/internal/platform/darwin"
