package renderer

// FrameEnd marks the completion of the GPU work of a submitted frame.
type FrameEnd interface {
	// CleanupFinished releases whatever the completed part of the chain still
	// holds. It never blocks.
	CleanupFinished()
	// Done reports whether every frame up to and including this one has
	// finished on the GPU.
	Done() bool
}

// AcquiredImage is a swapchain image handed out by Device.AcquireNextImage.
type AcquiredImage struct {
	Index uint32
	// Suboptimal is set when the image is usable but the swapchain no longer
	// matches the surface exactly.
	Suboptimal bool
}

// RecordedFrame is a command sequence that has been recorded but not submitted.
type RecordedFrame interface {
	ImageIndex() uint32
}

// Device is the graphics device collaborator driven by the frame loop.
type Device interface {
	// Now returns a marker that is already complete.
	Now() FrameEnd
	// RecreateSwapchain rebuilds the swapchain, its framebuffers and the
	// viewport for the given drawable size. It returns
	// core.ErrExtentNotSupported when the surface cannot take that size yet.
	RecreateSwapchain(width, height uint32) error
	// AcquireNextImage blocks until a swapchain image is free. It returns
	// core.ErrSwapchainOutOfDate when the swapchain must be recreated first.
	AcquireNextImage() (AcquiredImage, error)
	// RecordFrame records the draw commands for one frame into a single-use
	// command buffer.
	RecordFrame(image AcquiredImage, constants PushConstants) (RecordedFrame, error)
	// SubmitAndPresent joins the previous frame end with the image-acquired
	// signal, executes the frame on the graphics queue, presents the image on
	// the same queue and signals a fence. It returns
	// core.ErrSwapchainOutOfDate when presentation found the swapchain stale.
	SubmitAndPresent(previous FrameEnd, image AcquiredImage, frame RecordedFrame) (FrameEnd, error)
}

// Window is the windowing collaborator.
type Window interface {
	// FramebufferSize is the current drawable size in pixels.
	FramebufferSize() (width, height int)
}
