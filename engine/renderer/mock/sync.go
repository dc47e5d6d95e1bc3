package mock

import (
	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
)

// fence is pending between a queue submission and the wait or WaitIdle that
// retires it.
type fence struct {
	signaled  bool
	pending   bool
	submitted bool
}

type semaphore struct {
	signaled bool
}

func (d *Device) CreateSemaphore() (metadata.Semaphore, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call("CreateSemaphore") {
		return metadata.NullHandle, metadata.RESULT_ERROR_OUT_OF_HOST_MEMORY
	}
	h := d.alloc(KindSemaphore)
	d.semaphores[h] = &semaphore{}
	return h, nil
}

func (d *Device) DestroySemaphore(s metadata.Semaphore) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.release(s, KindSemaphore) {
		delete(d.semaphores, s)
	}
}

func (d *Device) CreateFence(signaled bool) (metadata.Fence, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call("CreateFence") {
		return metadata.NullHandle, metadata.RESULT_ERROR_OUT_OF_HOST_MEMORY
	}
	h := d.alloc(KindFence)
	d.fences[h] = &fence{signaled: signaled}
	return h, nil
}

func (d *Device) DestroyFence(f metadata.Fence) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if fe, ok := d.fences[f]; ok && fe.pending {
		d.violate("fence %d destroyed while pending", f)
	}
	if d.release(f, KindFence) {
		delete(d.fences, f)
	}
}

// WaitForFences retires every pending fence in fences. Waiting on a fence
// that no submission ever used is a violation.
func (d *Device) WaitForFences(fences []metadata.Fence, waitAll bool, timeout uint64) metadata.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call("WaitForFences") {
		return metadata.RESULT_ERROR_DEVICE_LOST
	}
	for _, h := range fences {
		d.fenceWaits[h]++
		f, ok := d.fences[h]
		if !ok {
			d.violate("wait on dead fence %d", h)
			return metadata.RESULT_ERROR_UNKNOWN
		}
		if !f.submitted {
			d.violate("wait on never submitted fence %d", h)
		} else if !f.pending && !f.signaled {
			d.violate("wait on fence %d that nothing will signal", h)
		}
		if f.pending {
			f.pending = false
			f.signaled = true
		}
	}
	return metadata.RESULT_SUCCESS
}

func (d *Device) ResetFences(fences []metadata.Fence) metadata.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call("ResetFences") {
		return metadata.RESULT_ERROR_OUT_OF_DEVICE_MEMORY
	}
	for _, h := range fences {
		f, ok := d.fences[h]
		if !ok {
			d.violate("reset of dead fence %d", h)
			continue
		}
		if f.pending {
			d.violate("reset of pending fence %d", h)
		}
		f.signaled = false
	}
	return metadata.RESULT_SUCCESS
}

// FenceWaits returns how many times f was waited on.
func (d *Device) FenceWaits(f metadata.Fence) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fenceWaits[f]
}

// FenceSignaled reports the device side state of f.
func (d *Device) FenceSignaled(f metadata.Fence) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	fe, ok := d.fences[f]
	return ok && fe.signaled
}
