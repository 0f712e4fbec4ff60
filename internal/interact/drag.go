package interact

import (
	"errors"
	"fmt"
	"time"

	"github.com/mj1618/uiloc/internal/element"
	"github.com/mj1618/uiloc/internal/platform"
)

// DragOptions tune DragAndDrop.
type DragOptions struct {
	// Speed of the gesture; 0 means 1. Higher is faster.
	Speed float64
	// Copy holds Ctrl during the gesture.
	Copy bool
	// WaitTime overrides the settle time after the drop.
	WaitTime *time.Duration
}

// DragAndDrop drags from the center of src to the center of dst. In copy
// mode Ctrl is held for the gesture; afterwards the source is clicked and
// Ctrl released even when the drag failed.
func (d *Dispatcher) DragAndDrop(src, dst *element.Handle, opts DragOptions) (err error) {
	if d.Inputter == nil {
		return errors.New("no input backend for drag and drop")
	}
	if src.XCenter() < 0 || dst.XCenter() < 0 {
		return &ActionNotPossibleError{Action: "drag", Element: src.String(), Reason: "source or target has no geometry"}
	}
	speed := opts.Speed
	if speed <= 0 {
		speed = 1
	}

	if opts.Copy {
		if err := d.Inputter.PressKey(platform.KeyCtrl); err != nil {
			return fmt.Errorf("failed to press ctrl: %w", err)
		}
		defer func() {
			clickErr := d.click(src, Click)
			releaseErr := d.Inputter.ReleaseKey(platform.KeyCtrl)
			if releaseErr != nil {
				releaseErr = fmt.Errorf("failed to release ctrl: %w", releaseErr)
			}
			err = errors.Join(err, clickErr, releaseErr)
		}()
	}

	d.log().Info("dragging", "from", src.Name(), "to", dst.Name(), "copy", opts.Copy)
	if err := d.Inputter.Drag(src.XCenter(), src.YCenter(), dst.XCenter(), dst.YCenter(), speed); err != nil {
		return fmt.Errorf("failed to drag %s to %s: %w", src.Name(), dst.Name(), err)
	}
	d.wait(opts.WaitTime)
	return nil
}
