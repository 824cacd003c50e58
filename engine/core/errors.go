package core

import (
	"errors"
)

var (
	// No physical device exposes a graphics queue that can also present to the surface.
	ErrNoSuitableDevice = errors.New("no suitable physical device found")
	// The swapchain no longer matches the surface and must be recreated.
	ErrSwapchainOutOfDate = errors.New("swapchain out of date")
	// The surface cannot currently back a swapchain of the requested size.
	ErrExtentNotSupported = errors.New("swapchain image extent not supported")
)
