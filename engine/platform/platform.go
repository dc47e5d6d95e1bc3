package platform

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
	"github.com/vstokstad/vulkan-eng/engine/core"
	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

// Platform owns the GLFW window. It is the renderer's Window and the
// Vulkan context's Surface.
type Platform struct {
	Window *glfw.Window

	events *core.EventBus

	mu      sync.Mutex
	resizes []func(width, height uint32)
}

func New(events *core.EventBus) *Platform {
	return &Platform{
		Window: nil,
		events: events,
	}
}

func (p *Platform) Startup(applicationName string, x uint32, y uint32, width uint32, height uint32) error {
	if err := glfw.Init(); err != nil {
		err = fmt.Errorf("failed to initialize glfw: %w", err)
		core.LogError(err.Error())
		return err
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		err := fmt.Errorf("glfw reports no Vulkan loader")
		core.LogError(err.Error())
		return err
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		glfw.Terminate()
		err = fmt.Errorf("failed to create window: %w", err)
		core.LogError(err.Error())
		return err
	}
	p.Window = window

	p.Window.SetKeyCallback(p.keyCallback)
	p.Window.SetFramebufferSizeCallback(p.framebufferSizeCallback)
	p.Window.SetPos(int(x), int(y))
	p.Window.Show()

	return nil
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

// PumpMessages processes pending window events. It returns false once the
// window has been asked to close.
func (p *Platform) PumpMessages() bool {
	glfw.PollEvents()
	return !p.Window.ShouldClose()
}

func (p *Platform) GetAbsoluteTime() float64 {
	return glfw.GetTime()
}

func (p *Platform) Extent() metadata.Extent2D {
	w, h := p.Window.GetFramebufferSize()
	return metadata.Extent2D{Width: uint32(w), Height: uint32(h)}
}

func (p *Platform) WaitEvents() {
	glfw.WaitEvents()
}

func (p *Platform) OnResize(fn func(width, height uint32)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resizes = append(p.resizes, fn)
}

func (p *Platform) RequiredInstanceExtensions() []string {
	return p.Window.GetRequiredInstanceExtensions()
}

func (p *Platform) InstanceProcAddr() unsafe.Pointer {
	return glfw.GetVulkanGetInstanceProcAddress()
}

func (p *Platform) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	surfPtr, err := p.Window.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, err
	}
	return vk.SurfaceFromPointer(surfPtr), nil
}

func (p *Platform) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if key == glfw.KeyUnknown || p.events == nil {
		return
	}
	var code core.SystemEventCode
	switch action {
	case glfw.Press, glfw.Repeat:
		code = core.EVENT_CODE_KEY_PRESSED
	case glfw.Release:
		code = core.EVENT_CODE_KEY_RELEASED
	default:
		return
	}
	ctx := core.EventContext{}
	ctx.Data.U16[0] = uint16(key)
	p.events.Fire(code, p, ctx)
}

func (p *Platform) framebufferSizeCallback(w *glfw.Window, width, height int) {
	p.mu.Lock()
	observers := make([]func(width, height uint32), len(p.resizes))
	copy(observers, p.resizes)
	p.mu.Unlock()

	for _, fn := range observers {
		fn(uint32(width), uint32(height))
	}
	if p.events != nil {
		ctx := core.EventContext{}
		ctx.Data.U32[0] = uint32(width)
		ctx.Data.U32[1] = uint32(height)
		p.events.Fire(core.EVENT_CODE_RESIZED, p, ctx)
	}
}
