package renderer

import (
	"fmt"

	"github.com/vstokstad/vulkan-eng/engine/core"
	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
)

// Fence tracks the host side state of a device fence. A fence that has never
// been handed to a queue submission is never waited on.
type Fence struct {
	Handle     metadata.Fence
	IsSignaled bool

	submitted bool
	device    SyncDevice
}

func NewFence(device SyncDevice, createSignaled bool) (*Fence, error) {
	handle, err := device.CreateFence(createSignaled)
	if err != nil {
		err = fmt.Errorf("failed to create fence: %w", err)
		core.LogError(err.Error())
		return nil, err
	}
	return &Fence{
		Handle:     handle,
		IsSignaled: createSignaled,
		device:     device,
	}, nil
}

// Submitted reports whether the fence was ever passed to a queue submission.
func (f *Fence) Submitted() bool {
	return f.submitted
}

// MarkSubmitted records that the fence was passed to a queue submission.
func (f *Fence) MarkSubmitted() {
	f.submitted = true
	f.IsSignaled = false
}

// clearSubmitted forgets a submission that never reached the queue, so the
// unsignaled fence is not waited on.
func (f *Fence) clearSubmitted() {
	f.submitted = false
}

func (f *Fence) Wait(timeoutNs uint64) error {
	if !f.submitted {
		return nil
	}
	result := f.device.WaitForFences([]metadata.Fence{f.Handle}, true, timeoutNs)
	switch result {
	case metadata.RESULT_SUCCESS:
		f.IsSignaled = true
		return nil
	case metadata.RESULT_TIMEOUT:
		core.LogWarn("fence wait - timed out")
	case metadata.RESULT_ERROR_DEVICE_LOST:
		core.LogError("fence wait - ERROR_DEVICE_LOST.")
	case metadata.RESULT_ERROR_OUT_OF_HOST_MEMORY:
		core.LogError("fence wait - ERROR_OUT_OF_HOST_MEMORY.")
	case metadata.RESULT_ERROR_OUT_OF_DEVICE_MEMORY:
		core.LogError("fence wait - ERROR_OUT_OF_DEVICE_MEMORY.")
	default:
		core.LogError("fence wait - an unknown error has occurred.")
	}
	return fmt.Errorf("fence wait failed: %w", result)
}

func (f *Fence) Reset() error {
	if !f.IsSignaled {
		return nil
	}
	if res := f.device.ResetFences([]metadata.Fence{f.Handle}); !res.IsSuccess() {
		err := fmt.Errorf("failed to reset fence: %w", res)
		core.LogError(err.Error())
		return err
	}
	f.IsSignaled = false
	return nil
}

func (f *Fence) Destroy() {
	if !f.Handle.IsNull() {
		f.device.DestroyFence(f.Handle)
		f.Handle = metadata.NullHandle
	}
	f.IsSignaled = false
	f.submitted = false
}
