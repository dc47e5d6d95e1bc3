// Package mock provides an in-memory device and window that track every
// object they hand out and record protocol violations instead of crashing.
package mock

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
)

type Kind string

const (
	KindBuffer              Kind = "buffer"
	KindMemory              Kind = "memory"
	KindImage               Kind = "image"
	KindImageView           Kind = "image view"
	KindSwapchain           Kind = "swapchain"
	KindSemaphore           Kind = "semaphore"
	KindFence               Kind = "fence"
	KindRenderPass          Kind = "render pass"
	KindFramebuffer         Kind = "framebuffer"
	KindCommandBuffer       Kind = "command buffer"
	KindDescriptorSetLayout Kind = "descriptor set layout"
	KindDescriptorPool      Kind = "descriptor pool"
	KindDescriptorSet       Kind = "descriptor set"
	KindPipelineLayout      Kind = "pipeline layout"
)

// Device is a scriptable stand in for a graphics device. The exported
// surface fields may be changed between swapchain builds.
type Device struct {
	mu sync.Mutex

	DeviceLimits  metadata.DeviceLimits
	Capabilities  metadata.SurfaceCapabilities
	Formats       []metadata.SurfaceFormat
	PresentModes  []metadata.PresentMode
	Families      metadata.QueueFamilies
	DepthFormats  []metadata.Format
	AcquireScript []metadata.Result
	PresentScript []metadata.Result

	next       metadata.Handle
	live       map[metadata.Handle]Kind
	failures   map[string]int
	calls      map[string]int
	violations []string

	memories    map[metadata.Handle]*memory
	buffers     map[metadata.Handle]metadata.DeviceMemory
	fences      map[metadata.Handle]*fence
	semaphores  map[metadata.Handle]*semaphore
	swapchains  map[metadata.Handle]*swapchain
	layouts     map[metadata.Handle][]metadata.DescriptorSetLayoutBinding
	pools       map[metadata.Handle]*pool
	sets        map[metadata.Handle]*set
	commands    map[metadata.Handle]*commandBuffer
	fenceWaits  map[metadata.Handle]int
	acquired    []uint32
	writes      []metadata.WriteDescriptorSet
	swapInfos   []metadata.SwapchainCreateInfo
	passInfos   []metadata.RenderPassCreateInfo
	fbInfos     []metadata.FramebufferCreateInfo
	imageInfos  []metadata.ImageCreateInfo
	recorded    []Command
	submits     int
	presents    int
	waitIdles   int
	waitIdleErr error
}

// NewDevice returns a device with a 1280x720 surface offering three images,
// B8G8R8A8_SRGB, FIFO and MAILBOX, every depth format and up to 8 samples.
func NewDevice() *Device {
	return &Device{
		DeviceLimits: metadata.DeviceLimits{
			MinUniformBufferOffsetAlignment: 256,
			MinStorageBufferOffsetAlignment: 64,
			NonCoherentAtomSize:             64,
			MaxPushConstantsSize:            128,
			FramebufferColorSampleCounts:    metadata.SAMPLE_COUNT_1 | metadata.SAMPLE_COUNT_2 | metadata.SAMPLE_COUNT_4 | metadata.SAMPLE_COUNT_8,
			FramebufferDepthSampleCounts:    metadata.SAMPLE_COUNT_1 | metadata.SAMPLE_COUNT_2 | metadata.SAMPLE_COUNT_4 | metadata.SAMPLE_COUNT_8,
		},
		Capabilities: metadata.SurfaceCapabilities{
			MinImageCount:  2,
			MaxImageCount:  3,
			CurrentExtent:  metadata.Extent2D{Width: 1280, Height: 720},
			MinImageExtent: metadata.Extent2D{Width: 1, Height: 1},
			MaxImageExtent: metadata.Extent2D{Width: 4096, Height: 4096},
		},
		Formats: []metadata.SurfaceFormat{
			{Format: metadata.FORMAT_B8G8R8A8_UNORM, ColorSpace: metadata.COLOR_SPACE_SRGB_NONLINEAR},
			{Format: metadata.FORMAT_B8G8R8A8_SRGB, ColorSpace: metadata.COLOR_SPACE_SRGB_NONLINEAR},
		},
		PresentModes: []metadata.PresentMode{metadata.PRESENT_MODE_FIFO, metadata.PRESENT_MODE_MAILBOX},
		DepthFormats: append([]metadata.Format(nil), metadata.DepthFormatCandidates...),

		live:       make(map[metadata.Handle]Kind),
		failures:   make(map[string]int),
		calls:      make(map[string]int),
		memories:   make(map[metadata.Handle]*memory),
		buffers:    make(map[metadata.Handle]metadata.DeviceMemory),
		fences:     make(map[metadata.Handle]*fence),
		semaphores: make(map[metadata.Handle]*semaphore),
		swapchains: make(map[metadata.Handle]*swapchain),
		layouts:    make(map[metadata.Handle][]metadata.DescriptorSetLayoutBinding),
		pools:      make(map[metadata.Handle]*pool),
		sets:       make(map[metadata.Handle]*set),
		commands:   make(map[metadata.Handle]*commandBuffer),
		fenceWaits: make(map[metadata.Handle]int),
	}
}

// FailOn makes the ordinal-th call (counting from 1) of op fail.
func (d *Device) FailOn(op string, ordinal int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[op] = d.calls[op] + ordinal
}

// call counts op and reports whether it was scheduled to fail.
func (d *Device) call(op string) bool {
	d.calls[op]++
	if n, ok := d.failures[op]; ok && n == d.calls[op] {
		delete(d.failures, op)
		return true
	}
	return false
}

// Calls returns how many times op was invoked.
func (d *Device) Calls(op string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[op]
}

func (d *Device) violate(format string, args ...interface{}) {
	d.violations = append(d.violations, fmt.Sprintf(format, args...))
}

// Violations returns every protocol error observed so far.
func (d *Device) Violations() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.violations...)
}

func (d *Device) alloc(kind Kind) metadata.Handle {
	d.next++
	d.live[d.next] = kind
	return d.next
}

func (d *Device) release(h metadata.Handle, kind Kind) bool {
	if h.IsNull() {
		return false
	}
	k, ok := d.live[h]
	if !ok {
		d.violate("destroy of dead %s %d", kind, h)
		return false
	}
	if k != kind {
		d.violate("destroy of %s %d as %s", k, h, kind)
		return false
	}
	delete(d.live, h)
	return true
}

func (d *Device) isLive(h metadata.Handle, kind Kind) bool {
	k, ok := d.live[h]
	return ok && k == kind
}

// IsLive reports whether h has been created and not yet destroyed.
func (d *Device) IsLive(h metadata.Handle) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.live[h]
	return ok
}

// Live returns the number of live objects of kind.
func (d *Device) Live(kind Kind) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, k := range d.live {
		if k == kind {
			n++
		}
	}
	return n
}

// LiveCounts returns the number of live objects per kind.
func (d *Device) LiveCounts() map[Kind]int {
	d.mu.Lock()
	defer d.mu.Unlock()
	counts := make(map[Kind]int)
	for _, k := range d.live {
		counts[k]++
	}
	return counts
}

// LiveHandles returns the live handles of kind in creation order.
func (d *Device) LiveHandles(kind Kind) []metadata.Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []metadata.Handle
	for h, k := range d.live {
		if k == kind {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (d *Device) Limits() metadata.DeviceLimits {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.DeviceLimits
}

// SetWaitIdleError makes every later WaitIdle fail with err.
func (d *Device) SetWaitIdleError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.waitIdleErr = err
}

// WaitIdle retires all pending work.
func (d *Device) WaitIdle() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.waitIdles++
	if d.waitIdleErr != nil {
		return d.waitIdleErr
	}
	for _, f := range d.fences {
		if f.pending {
			f.pending = false
			f.signaled = true
		}
	}
	return nil
}

func (d *Device) WaitIdles() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.waitIdles
}

func (d *Device) CreatePipelineLayout(info metadata.PipelineLayoutCreateInfo) (metadata.PipelineLayout, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call("CreatePipelineLayout") {
		return metadata.NullHandle, metadata.RESULT_ERROR_OUT_OF_HOST_MEMORY
	}
	for _, l := range info.SetLayouts {
		if !d.isLive(l, KindDescriptorSetLayout) {
			d.violate("pipeline layout references dead set layout %d", l)
		}
	}
	var total uint32
	for _, r := range info.PushConstantRanges {
		total += r.Size
	}
	if total > d.DeviceLimits.MaxPushConstantsSize {
		d.violate("push constant ranges of %d bytes exceed %d", total, d.DeviceLimits.MaxPushConstantsSize)
	}
	return d.alloc(KindPipelineLayout), nil
}

func (d *Device) DestroyPipelineLayout(layout metadata.PipelineLayout) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.release(layout, KindPipelineLayout)
}
