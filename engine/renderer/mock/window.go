package mock

import (
	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
)

// Window is a scriptable window. WaitEvents runs the queued event hooks in
// order, one per call.
type Window struct {
	extent    metadata.Extent2D
	listeners []func(width, height uint32)
	events    []func(w *Window)
	waits     int
}

func NewWindow(width, height uint32) *Window {
	return &Window{extent: metadata.Extent2D{Width: width, Height: height}}
}

func (w *Window) Extent() metadata.Extent2D {
	return w.extent
}

func (w *Window) OnResize(fn func(width, height uint32)) {
	w.listeners = append(w.listeners, fn)
}

// Resize changes the extent and notifies every resize listener.
func (w *Window) Resize(width, height uint32) {
	w.extent = metadata.Extent2D{Width: width, Height: height}
	for _, fn := range w.listeners {
		fn(width, height)
	}
}

// QueueEvent schedules fn to run on a later WaitEvents call.
func (w *Window) QueueEvent(fn func(w *Window)) {
	w.events = append(w.events, fn)
}

// WaitEvents delivers the next queued event. With none queued it returns
// immediately.
func (w *Window) WaitEvents() {
	w.waits++
	if len(w.events) == 0 {
		return
	}
	fn := w.events[0]
	w.events = w.events[1:]
	fn(w)
}

func (w *Window) Waits() int {
	return w.waits
}
