package renderer

import (
	"testing"

	"github.com/spaghettifunk/wobble/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectDevicePrefersDiscrete(t *testing.T) {
	candidates := []DeviceCandidate{
		{Index: 0, Name: "llvmpipe", Type: DeviceTypeCPU, SupportsSwapchain: true, QueueFamily: 0},
		{Index: 1, Name: "intel", Type: DeviceTypeIntegratedGPU, SupportsSwapchain: true, QueueFamily: 0},
		{Index: 2, Name: "nvidia", Type: DeviceTypeDiscreteGPU, SupportsSwapchain: true, QueueFamily: 2},
		{Index: 3, Name: "virtio", Type: DeviceTypeVirtualGPU, SupportsSwapchain: true, QueueFamily: 0},
	}

	selected, err := SelectDevice(candidates)
	require.NoError(t, err)
	assert.Equal(t, "nvidia", selected.Name)
	assert.Equal(t, 2, selected.QueueFamily)
}

func TestSelectDeviceSkipsUnqualified(t *testing.T) {
	candidates := []DeviceCandidate{
		{Index: 0, Name: "no-swapchain", Type: DeviceTypeDiscreteGPU, SupportsSwapchain: false, QueueFamily: 0},
		{Index: 1, Name: "no-present", Type: DeviceTypeDiscreteGPU, SupportsSwapchain: true, QueueFamily: -1},
		{Index: 2, Name: "other", Type: DeviceTypeOther, SupportsSwapchain: true, QueueFamily: 1},
		{Index: 3, Name: "cpu", Type: DeviceTypeCPU, SupportsSwapchain: true, QueueFamily: 0},
	}

	selected, err := SelectDevice(candidates)
	require.NoError(t, err)
	assert.Equal(t, "cpu", selected.Name)
}

func TestSelectDeviceKeepsEnumerationOrderOnTies(t *testing.T) {
	candidates := []DeviceCandidate{
		{Index: 0, Name: "first", Type: DeviceTypeIntegratedGPU, SupportsSwapchain: true, QueueFamily: 0},
		{Index: 1, Name: "second", Type: DeviceTypeIntegratedGPU, SupportsSwapchain: true, QueueFamily: 0},
	}

	selected, err := SelectDevice(candidates)
	require.NoError(t, err)
	assert.Equal(t, 0, selected.Index)
}

func TestSelectDeviceNoneSuitable(t *testing.T) {
	_, err := SelectDevice(nil)
	assert.ErrorIs(t, err, core.ErrNoSuitableDevice)

	_, err = SelectDevice([]DeviceCandidate{{Name: "headless", Type: DeviceTypeDiscreteGPU, QueueFamily: -1}})
	assert.ErrorIs(t, err, core.ErrNoSuitableDevice)
}

func TestChooseImageCount(t *testing.T) {
	tests := []struct {
		name                string
		requested, min, max uint32
		want                uint32
	}{
		{"within range", 3, 2, 8, 3},
		{"raised to min", 3, 4, 8, 4},
		{"capped to max", 3, 1, 2, 2},
		{"unbounded max", 3, 2, 0, 3},
		{"unbounded max raised to min", 3, 5, 0, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChooseImageCount(tt.requested, tt.min, tt.max))
		})
	}
}

func TestDeviceTypeString(t *testing.T) {
	assert.Equal(t, "DiscreteGpu", DeviceTypeDiscreteGPU.String())
	assert.Equal(t, "Cpu", DeviceTypeCPU.String())
	assert.Equal(t, "Other", DeviceType(42).String())
}
