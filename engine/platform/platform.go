package platform

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/wobble/engine/core"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

type Platform struct {
	Window *glfw.Window
	events *core.EventQueue
}

func New(events *core.EventQueue) *Platform {
	return &Platform{
		Window: nil,
		events: events,
	}
}

func (p *Platform) Startup(applicationName string, x, y, width, height uint32) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize glfw: %w", err)
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return fmt.Errorf("glfw reports no Vulkan loader")
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create window: %w", err)
	}
	p.Window = window

	p.Window.SetCursorPosCallback(p.cursorPosCallback)
	p.Window.SetFramebufferSizeCallback(p.framebufferSizeCallback)
	p.Window.SetCloseCallback(p.closeCallback)
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

// PumpMessages polls the OS for window events. Callbacks fire on the calling
// thread and push onto the event queue.
func (p *Platform) PumpMessages() {
	glfw.PollEvents()
}

// WaitMessages blocks until a window event arrives or timeout seconds pass.
func (p *Platform) WaitMessages(timeout float64) {
	glfw.WaitEventsTimeout(timeout)
}

// Wake unblocks a pending WaitMessages. Safe to call from any goroutine.
func (p *Platform) Wake() {
	glfw.PostEmptyEvent()
}

// FramebufferSize is the drawable size of the window in pixels.
func (p *Platform) FramebufferSize() (int, int) {
	if p.Window == nil {
		return 0, 0
	}
	return p.Window.GetFramebufferSize()
}

func (p *Platform) GetRequiredExtensionNames() []string {
	return p.Window.GetRequiredInstanceExtensions()
}

// CreateWindowSurface creates a VkSurfaceKHR for the window and returns its
// raw handle.
func (p *Platform) CreateWindowSurface(instance interface{}) (uintptr, error) {
	surface, err := p.Window.CreateWindowSurface(instance, nil)
	if err != nil {
		return 0, fmt.Errorf("vulkan surface creation failed: %w", err)
	}
	return surface, nil
}

func (p *Platform) cursorPosCallback(w *glfw.Window, xpos, ypos float64) {
	width, height := w.GetSize()
	p.events.Fire(core.Event{
		Code:   core.EVENT_CODE_MOUSE_MOVED,
		X:      xpos,
		Y:      ypos,
		Width:  width,
		Height: height,
	})
}

func (p *Platform) framebufferSizeCallback(w *glfw.Window, width, height int) {
	p.events.Fire(core.Event{
		Code:   core.EVENT_CODE_RESIZED,
		Width:  width,
		Height: height,
	})
}

func (p *Platform) closeCallback(w *glfw.Window) {
	p.events.Fire(core.Event{Code: core.EVENT_CODE_APPLICATION_QUIT})
}
