package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
)

func TestVulkanResultString(t *testing.T) {
	assert.Equal(t, "VK_SUCCESS", VulkanResultString(vk.Success))
	assert.Equal(t, "VK_ERROR_OUT_OF_DATE_KHR", VulkanResultString(vk.ErrorOutOfDate))
	assert.Equal(t, "VkResult(-12345)", VulkanResultString(vk.Result(-12345)))
}

func TestVulkanResultIsSuccess(t *testing.T) {
	assert.True(t, VulkanResultIsSuccess(vk.Success))
	assert.True(t, VulkanResultIsSuccess(vk.Suboptimal))
	assert.False(t, VulkanResultIsSuccess(vk.ErrorOutOfDate))
	assert.False(t, VulkanResultIsSuccess(vk.ErrorDeviceLost))
}

func TestVulkanSafeString(t *testing.T) {
	assert.Equal(t, "\x00", VulkanSafeString(""))
	assert.Equal(t, "main\x00", VulkanSafeString("main"))
	assert.Equal(t, "main\x00", VulkanSafeString("main\x00"))

	in := []string{"VK_KHR_surface", "VK_KHR_swapchain\x00"}
	out := VulkanSafeStrings(in)
	assert.Equal(t, []string{"VK_KHR_surface\x00", "VK_KHR_swapchain\x00"}, out)
	assert.Equal(t, "VK_KHR_surface", in[0])
}

func TestDeviceTypeFromVulkan(t *testing.T) {
	tests := []struct {
		in   vk.PhysicalDeviceType
		want string
	}{
		{vk.PhysicalDeviceTypeDiscreteGpu, "DiscreteGpu"},
		{vk.PhysicalDeviceTypeIntegratedGpu, "IntegratedGpu"},
		{vk.PhysicalDeviceTypeVirtualGpu, "VirtualGpu"},
		{vk.PhysicalDeviceTypeCpu, "Cpu"},
		{vk.PhysicalDeviceTypeOther, "Other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, deviceTypeFromVulkan(tt.in).String())
	}
}

func TestChooseCompositeAlpha(t *testing.T) {
	supported := vk.CompositeAlphaFlags(vk.CompositeAlphaPreMultipliedBit | vk.CompositeAlphaInheritBit)
	assert.Equal(t, vk.CompositeAlphaPreMultipliedBit, chooseCompositeAlpha(supported))
	assert.Equal(t, vk.CompositeAlphaOpaqueBit, chooseCompositeAlpha(vk.CompositeAlphaFlags(vk.CompositeAlphaOpaqueBit)))
	assert.Equal(t, vk.CompositeAlphaOpaqueBit, chooseCompositeAlpha(0))
}

func TestExtentSupported(t *testing.T) {
	caps := vk.SurfaceCapabilities{
		MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
	}
	assert.True(t, extentSupported(caps, 800, 600))
	assert.False(t, extentSupported(caps, 0, 600))
	assert.False(t, extentSupported(caps, 8000, 600))
}
