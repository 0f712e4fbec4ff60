//go:build darwin && cgo

package darwin

import "github.com/mj1618/uiloc/internal/platform"

func init() {
	platform.NewProviderFunc = func() (*platform.Provider, error) {
		if err := CheckAccessibilityPermission(); err != nil {
			return nil, err
		}
		inputter := NewInputter()
		desktop := newDesktop(inputter)
		return &platform.Provider{
			Desktop:       desktop,
			Inputter:      inputter,
			Screenshotter: NewScreenshotter(desktop),
		}, nil
	}
}
