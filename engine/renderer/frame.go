package renderer

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/wobble/engine/core"
)

// LoopState is everything the frame loop carries from one iteration to the
// next. It is passed by value into DrawFrame and HandleEvent and the updated
// copy is returned.
type LoopState struct {
	Running           bool
	RecreateSwapchain bool
	Mouse             core.MousePosition
	// PreviousFrameEnd is the marker of the last submitted frame, or a
	// completed marker after a failure.
	PreviousFrameEnd FrameEnd
	// Width and Height are the extent of the current swapchain.
	Width  uint32
	Height uint32
	// FramesSubmitted counts successful submissions.
	FramesSubmitted uint64
}

// NewLoopState returns the state of a loop whose swapchain was just created
// with the given extent.
func NewLoopState(device Device, width, height uint32) LoopState {
	return LoopState{
		Running:          true,
		PreviousFrameEnd: device.Now(),
		Width:            width,
		Height:           height,
	}
}

// HandleEvent applies one window event to the loop state.
func HandleEvent(state LoopState, event core.Event) LoopState {
	switch event.Code {
	case core.EVENT_CODE_APPLICATION_QUIT:
		state.Running = false
	case core.EVENT_CODE_RESIZED:
		state.RecreateSwapchain = true
	case core.EVENT_CODE_MOUSE_MOVED:
		state.Mouse = core.NormalizeCursor(event.X, event.Y, event.Width, event.Height)
	}
	return state
}

// DrawFrame runs one iteration of the render loop. Stale swapchains, sizes
// the surface rejects and failed presentations are absorbed into the
// returned state; only unrecoverable device errors are returned.
func DrawFrame(state LoopState, window Window, device Device, elapsed float32) (LoopState, error) {
	width, height := window.FramebufferSize()
	if width <= 0 || height <= 0 {
		// minimized
		return state, nil
	}

	state.PreviousFrameEnd.CleanupFinished()

	if state.RecreateSwapchain {
		w, h := uint32(width), uint32(height)
		if err := device.RecreateSwapchain(w, h); err != nil {
			if errors.Is(err, core.ErrExtentNotSupported) {
				core.LogDebug("swapchain extent %dx%d not supported yet, retrying next frame", w, h)
				return state, nil
			}
			return state, fmt.Errorf("failed to recreate swapchain: %w", err)
		}
		state.Width, state.Height = w, h
		state.RecreateSwapchain = false
	}

	image, err := device.AcquireNextImage()
	if err != nil {
		if errors.Is(err, core.ErrSwapchainOutOfDate) {
			state.RecreateSwapchain = true
			return state, nil
		}
		return state, fmt.Errorf("failed to acquire next image: %w", err)
	}
	if image.Suboptimal {
		state.RecreateSwapchain = true
	}

	frame, err := device.RecordFrame(image, NewPushConstants(elapsed, state.Mouse))
	if err != nil {
		return state, fmt.Errorf("failed to record frame: %w", err)
	}

	end, err := device.SubmitAndPresent(state.PreviousFrameEnd, image, frame)
	switch {
	case err == nil:
		state.PreviousFrameEnd = end
		state.FramesSubmitted++
	case errors.Is(err, core.ErrSwapchainOutOfDate):
		state.RecreateSwapchain = true
		state.PreviousFrameEnd = device.Now()
	default:
		core.LogError("failed to flush future: %v", err)
		state.PreviousFrameEnd = device.Now()
	}
	return state, nil
}
