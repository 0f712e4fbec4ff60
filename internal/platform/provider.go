package platform

import (
	"errors"
	"fmt"
	"runtime"
)

// Provider bundles the accessibility tree and input backends.
type Provider struct {
	Desktop       Node
	Inputter      Inputter
	Screenshotter Screenshotter
}

// ErrUnsupported is returned on platforms without a registered provider.
var ErrUnsupported = fmt.Errorf("uiloc has no accessibility provider for %s/%s; use --tree to load a fixture", runtime.GOOS, runtime.GOARCH)

// ErrDisposed is returned by node accessors once the underlying control has
// been destroyed by its application.
var ErrDisposed = errors.New("control is disposed")

// NewProviderFunc is set by platform-specific packages via init().
var NewProviderFunc func() (*Provider, error)

// NewProvider returns a Provider for the current OS.
func NewProvider() (*Provider, error) {
	if NewProviderFunc == nil {
		return nil, ErrUnsupported
	}
	return NewProviderFunc()
}
