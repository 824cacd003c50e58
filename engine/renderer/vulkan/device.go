package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/wobble/engine/core"
	"github.com/spaghettifunk/wobble/engine/renderer"
)

const portabilitySubsetExtensionName = "VK_KHR_portability_subset"

type VulkanDevice struct {
	PhysicalDevice     vk.PhysicalDevice
	LogicalDevice      vk.Device
	SwapchainSupport   VulkanSwapchainSupportInfo
	GraphicsQueueIndex int32

	// Graphics and presentation share this queue.
	GraphicsQueue vk.Queue

	GraphicsCommandPool vk.CommandPool

	Name string
	Type renderer.DeviceType

	Properties vk.PhysicalDeviceProperties
	Memory     vk.PhysicalDeviceMemoryProperties
}

type VulkanSwapchainSupportInfo struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

func deviceTypeFromVulkan(t vk.PhysicalDeviceType) renderer.DeviceType {
	switch t {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return renderer.DeviceTypeDiscreteGPU
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return renderer.DeviceTypeIntegratedGPU
	case vk.PhysicalDeviceTypeVirtualGpu:
		return renderer.DeviceTypeVirtualGPU
	case vk.PhysicalDeviceTypeCpu:
		return renderer.DeviceTypeCPU
	default:
		return renderer.DeviceTypeOther
	}
}

func enumerateDeviceExtensions(device vk.PhysicalDevice) ([]vk.ExtensionProperties, error) {
	var count uint32
	if res := vk.EnumerateDeviceExtensionProperties(device, "", &count, nil); res != vk.Success {
		return nil, vulkanError("vkEnumerateDeviceExtensionProperties", res)
	}
	if count == 0 {
		return nil, nil
	}
	extensions := make([]vk.ExtensionProperties, count)
	if res := vk.EnumerateDeviceExtensionProperties(device, "", &count, extensions); res != vk.Success {
		return nil, vulkanError("vkEnumerateDeviceExtensionProperties", res)
	}
	return extensions[:count], nil
}

// presentableGraphicsFamily returns the first queue family that supports
// graphics and can present to surface, or -1.
func presentableGraphicsFamily(device vk.PhysicalDevice, surface vk.Surface) (int, error) {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &count, nil)
	families := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &count, families)

	for i := 0; i < int(count); i++ {
		families[i].Deref()
		if vk.QueueFlagBits(families[i].QueueFlags)&vk.QueueGraphicsBit == 0 {
			continue
		}
		var supportsPresent vk.Bool32 = vk.False
		if res := vk.GetPhysicalDeviceSurfaceSupport(device, uint32(i), surface, &supportsPresent); res != vk.Success {
			return -1, vulkanError("vkGetPhysicalDeviceSurfaceSupport", res)
		}
		if supportsPresent == vk.True {
			return i, nil
		}
	}
	return -1, nil
}

func enumeratePhysicalDevices(context *VulkanContext) ([]vk.PhysicalDevice, []renderer.DeviceCandidate, error) {
	var physicalDeviceCount uint32
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, nil); res != vk.Success {
		return nil, nil, vulkanError("vkEnumeratePhysicalDevices", res)
	}
	if physicalDeviceCount == 0 {
		return nil, nil, nil
	}
	physicalDevices := make([]vk.PhysicalDevice, physicalDeviceCount)
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, physicalDevices); res != vk.Success {
		return nil, nil, vulkanError("vkEnumeratePhysicalDevices", res)
	}

	candidates := make([]renderer.DeviceCandidate, 0, physicalDeviceCount)
	for i := 0; i < int(physicalDeviceCount); i++ {
		var properties vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(physicalDevices[i], &properties)
		properties.Deref()

		extensions, err := enumerateDeviceExtensions(physicalDevices[i])
		if err != nil {
			return nil, nil, err
		}
		family, err := presentableGraphicsFamily(physicalDevices[i], context.Surface)
		if err != nil {
			return nil, nil, err
		}

		candidate := renderer.DeviceCandidate{
			Index:             i,
			Name:              vk.ToString(properties.DeviceName[:]),
			Type:              deviceTypeFromVulkan(properties.DeviceType),
			SupportsSwapchain: hasExtension(extensions, vk.KhrSwapchainExtensionName),
			QueueFamily:       family,
		}
		core.LogDebug("Found device '%s' (%s), queue family %d", candidate.Name, candidate.Type, candidate.QueueFamily)
		candidates = append(candidates, candidate)
	}
	return physicalDevices[:physicalDeviceCount], candidates, nil
}

func DeviceCreate(context *VulkanContext) error {
	physicalDevices, candidates, err := enumeratePhysicalDevices(context)
	if err != nil {
		return err
	}
	selected, err := renderer.SelectDevice(candidates)
	if err != nil {
		return err
	}

	device := &VulkanDevice{
		PhysicalDevice:     physicalDevices[selected.Index],
		GraphicsQueueIndex: int32(selected.QueueFamily),
		Name:               selected.Name,
		Type:               selected.Type,
	}
	vk.GetPhysicalDeviceProperties(device.PhysicalDevice, &device.Properties)
	device.Properties.Deref()
	vk.GetPhysicalDeviceMemoryProperties(device.PhysicalDevice, &device.Memory)
	device.Memory.Deref()
	context.Device = device

	core.LogInfo("Using device: %s (type: %s)", device.Name, device.Type)
	core.LogDebug(
		"Vulkan API version: %d.%d.%d",
		vk.Version(device.Properties.ApiVersion).Major(),
		vk.Version(device.Properties.ApiVersion).Minor(),
		vk.Version(device.Properties.ApiVersion).Patch(),
	)

	core.LogDebug("Creating logical device...")

	extensionNames := []string{vk.KhrSwapchainExtensionName}
	available, err := enumerateDeviceExtensions(device.PhysicalDevice)
	if err != nil {
		return err
	}
	if hasExtension(available, portabilitySubsetExtensionName) {
		core.LogDebug("Adding required extension '%s'.", portabilitySubsetExtensionName)
		extensionNames = append(extensionNames, portabilitySubsetExtensionName)
	}

	queueCreateInfos := []vk.DeviceQueueCreateInfo{{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: uint32(device.GraphicsQueueIndex),
		QueueCount:       1,
		PQueuePriorities: []float32{0.5},
	}}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueCreateInfos)),
		PQueueCreateInfos:       queueCreateInfos,
		EnabledExtensionCount:   uint32(len(extensionNames)),
		PpEnabledExtensionNames: VulkanSafeStrings(extensionNames),
	}

	var logicalDevice vk.Device
	if res := vk.CreateDevice(device.PhysicalDevice, &deviceCreateInfo, context.Allocator, &logicalDevice); res != vk.Success {
		err := vulkanError("vkCreateDevice", res)
		core.LogError(err.Error())
		return err
	}
	device.LogicalDevice = logicalDevice
	core.LogDebug("Logical device created.")

	var queue vk.Queue
	vk.GetDeviceQueue(device.LogicalDevice, uint32(device.GraphicsQueueIndex), 0, &queue)
	device.GraphicsQueue = queue

	// Command buffers are recorded once per frame and freed when the frame completes.
	poolCreateInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: uint32(device.GraphicsQueueIndex),
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateTransientBit),
	}
	var pool vk.CommandPool
	if res := vk.CreateCommandPool(device.LogicalDevice, &poolCreateInfo, context.Allocator, &pool); res != vk.Success {
		err := vulkanError("vkCreateCommandPool", res)
		core.LogError(err.Error())
		return err
	}
	device.GraphicsCommandPool = pool
	core.LogDebug("Graphics command pool created.")

	return nil
}

func DeviceDestroy(context *VulkanContext) {
	if context.Device == nil {
		return
	}
	context.Device.GraphicsQueue = nil

	core.LogDebug("Destroying command pools...")
	if context.Device.GraphicsCommandPool != nil {
		vk.DestroyCommandPool(context.Device.LogicalDevice, context.Device.GraphicsCommandPool, context.Allocator)
		context.Device.GraphicsCommandPool = nil
	}

	core.LogDebug("Destroying logical device...")
	if context.Device.LogicalDevice != nil {
		vk.DestroyDevice(context.Device.LogicalDevice, context.Allocator)
		context.Device.LogicalDevice = nil
	}

	// Physical devices are not destroyed.
	context.Device.PhysicalDevice = nil
	context.Device.SwapchainSupport = VulkanSwapchainSupportInfo{}
	context.Device.GraphicsQueueIndex = -1
}

func DeviceQuerySwapchainSupport(physicalDevice vk.PhysicalDevice, surface vk.Surface, supportInfo *VulkanSwapchainSupportInfo) error {
	// Surface capabilities
	if res := vk.GetPhysicalDeviceSurfaceCapabilities(physicalDevice, surface, &supportInfo.Capabilities); res != vk.Success {
		return vulkanError("vkGetPhysicalDeviceSurfaceCapabilitiesKHR", res)
	}
	supportInfo.Capabilities.Deref()
	supportInfo.Capabilities.CurrentExtent.Deref()
	supportInfo.Capabilities.MinImageExtent.Deref()
	supportInfo.Capabilities.MaxImageExtent.Deref()

	// Surface formats
	var formatCount uint32
	if res := vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &formatCount, nil); res != vk.Success {
		return vulkanError("vkGetPhysicalDeviceSurfaceFormatsKHR", res)
	}
	supportInfo.Formats = make([]vk.SurfaceFormat, formatCount)
	if formatCount != 0 {
		if res := vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &formatCount, supportInfo.Formats); res != vk.Success {
			return vulkanError("vkGetPhysicalDeviceSurfaceFormatsKHR", res)
		}
		for i := range supportInfo.Formats {
			supportInfo.Formats[i].Deref()
		}
	}

	// Present modes
	var presentModeCount uint32
	if res := vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &presentModeCount, nil); res != vk.Success {
		return vulkanError("vkGetPhysicalDeviceSurfacePresentModesKHR", res)
	}
	supportInfo.PresentModes = make([]vk.PresentMode, presentModeCount)
	if presentModeCount != 0 {
		if res := vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &presentModeCount, supportInfo.PresentModes); res != vk.Success {
			return vulkanError("vkGetPhysicalDeviceSurfacePresentModesKHR", res)
		}
	}

	if len(supportInfo.Formats) == 0 || len(supportInfo.PresentModes) == 0 {
		return fmt.Errorf("surface reports %d formats and %d present modes", len(supportInfo.Formats), len(supportInfo.PresentModes))
	}
	return nil
}
