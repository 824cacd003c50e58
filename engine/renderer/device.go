package renderer

import (
	"fmt"

	"github.com/spaghettifunk/wobble/engine/core"
)

type DeviceType uint8

const (
	DeviceTypeOther DeviceType = iota
	DeviceTypeIntegratedGPU
	DeviceTypeDiscreteGPU
	DeviceTypeVirtualGPU
	DeviceTypeCPU
)

func (t DeviceType) String() string {
	switch t {
	case DeviceTypeIntegratedGPU:
		return "IntegratedGpu"
	case DeviceTypeDiscreteGPU:
		return "DiscreteGpu"
	case DeviceTypeVirtualGPU:
		return "VirtualGpu"
	case DeviceTypeCPU:
		return "Cpu"
	default:
		return "Other"
	}
}

// rank orders device types by preference, lower is better.
func (t DeviceType) rank() int {
	switch t {
	case DeviceTypeDiscreteGPU:
		return 0
	case DeviceTypeIntegratedGPU:
		return 1
	case DeviceTypeVirtualGPU:
		return 2
	case DeviceTypeCPU:
		return 3
	default:
		return 4
	}
}

// DeviceCandidate describes one physical device as seen during enumeration.
type DeviceCandidate struct {
	// Index of the device in enumeration order.
	Index int
	Name  string
	Type  DeviceType
	// SupportsSwapchain is true when the device exposes VK_KHR_swapchain.
	SupportsSwapchain bool
	// QueueFamily is the first family that supports graphics and can present
	// to the surface, or -1 when there is none.
	QueueFamily int
}

// SelectDevice picks the best qualifying candidate: discrete, then integrated,
// virtual, cpu and anything else. Ties keep enumeration order.
func SelectDevice(candidates []DeviceCandidate) (DeviceCandidate, error) {
	best := -1
	for i, c := range candidates {
		if !c.SupportsSwapchain || c.QueueFamily < 0 {
			core.LogDebug("Skipping device '%s': swapchain=%t queue family=%d", c.Name, c.SupportsSwapchain, c.QueueFamily)
			continue
		}
		if best < 0 || c.Type.rank() < candidates[best].Type.rank() {
			best = i
		}
	}
	if best < 0 {
		return DeviceCandidate{}, fmt.Errorf("%d devices enumerated: %w", len(candidates), core.ErrNoSuitableDevice)
	}
	return candidates[best], nil
}

// ChooseImageCount clamps the requested swapchain image count to what the
// surface supports. A max of zero means the surface sets no upper bound.
func ChooseImageCount(requested, min, max uint32) uint32 {
	if max == 0 {
		if requested < min {
			return min
		}
		return requested
	}
	return core.Clamp(requested, min, max)
}
