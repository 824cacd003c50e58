package vulkan

import (
	"fmt"
	"math"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/wobble/engine/core"
	"github.com/spaghettifunk/wobble/engine/renderer"
)

type VulkanSwapchain struct {
	ImageFormat vk.SurfaceFormat
	Handle      vk.Swapchain
	Extent      vk.Extent2D
	ImageCount  uint32
	Images      []vk.Image
	Views       []vk.ImageView

	// framebuffers used for on-screen rendering.
	Framebuffers []*VulkanFramebuffer
}

var compositeAlphaPreference = []vk.CompositeAlphaFlagBits{
	vk.CompositeAlphaOpaqueBit,
	vk.CompositeAlphaPreMultipliedBit,
	vk.CompositeAlphaPostMultipliedBit,
	vk.CompositeAlphaInheritBit,
}

// chooseCompositeAlpha returns the first supported composite alpha mode.
func chooseCompositeAlpha(supported vk.CompositeAlphaFlags) vk.CompositeAlphaFlagBits {
	for _, bit := range compositeAlphaPreference {
		if supported&vk.CompositeAlphaFlags(bit) != 0 {
			return bit
		}
	}
	return vk.CompositeAlphaOpaqueBit
}

func extentSupported(caps vk.SurfaceCapabilities, width, height uint32) bool {
	return width >= caps.MinImageExtent.Width && width <= caps.MaxImageExtent.Width &&
		height >= caps.MinImageExtent.Height && height <= caps.MaxImageExtent.Height
}

func SwapchainCreate(context *VulkanContext, width, height uint32) (*VulkanSwapchain, error) {
	sc, err := createSwapchain(context, width, height, vk.NullSwapchain)
	if err != nil {
		return nil, err
	}
	core.LogInfo("Swapchain buffers count: %d/%d", sc.ImageCount, context.Device.SwapchainSupport.Capabilities.MaxImageCount)
	return sc, nil
}

// SwapchainRecreate builds a replacement swapchain from vs and destroys vs
// once nothing on the device uses it anymore. On error vs is left intact.
func (vs *VulkanSwapchain) SwapchainRecreate(context *VulkanContext, width, height uint32) (*VulkanSwapchain, error) {
	sc, err := createSwapchain(context, width, height, vs.Handle)
	if err != nil {
		return nil, err
	}
	vs.destroySwapchain(context)
	return sc, nil
}

func (vs *VulkanSwapchain) SwapchainDestroy(context *VulkanContext) {
	vs.destroySwapchain(context)
}

// SwapchainAcquireNextImageIndex blocks until an image is available and
// signals imageAvailableSemaphore when it can be rendered to.
func (vs *VulkanSwapchain) SwapchainAcquireNextImageIndex(context *VulkanContext, imageAvailableSemaphore vk.Semaphore) (uint32, bool, error) {
	var imageIndex uint32
	result := vk.AcquireNextImage(context.Device.LogicalDevice, vs.Handle, math.MaxUint64, imageAvailableSemaphore, vk.NullFence, &imageIndex)

	switch result {
	case vk.Success:
		return imageIndex, false, nil
	case vk.Suboptimal:
		return imageIndex, true, nil
	case vk.ErrorOutOfDate:
		return 0, false, core.ErrSwapchainOutOfDate
	default:
		return 0, false, vulkanError("vkAcquireNextImageKHR", result)
	}
}

// SwapchainPresent queues the image for presentation once renderCompleteSemaphore
// is signaled. A suboptimal swapchain still presents and is not an error.
func (vs *VulkanSwapchain) SwapchainPresent(queue vk.Queue, renderCompleteSemaphore vk.Semaphore, presentImageIndex uint32) error {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{renderCompleteSemaphore},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{vs.Handle},
		PImageIndices:      []uint32{presentImageIndex},
	}

	result := vk.QueuePresent(queue, &presentInfo)
	switch result {
	case vk.Success, vk.Suboptimal:
		return nil
	case vk.ErrorOutOfDate:
		return core.ErrSwapchainOutOfDate
	default:
		return vulkanError("vkQueuePresentKHR", result)
	}
}

func createSwapchain(context *VulkanContext, width, height uint32, oldSwapchain vk.Swapchain) (*VulkanSwapchain, error) {
	support := &context.Device.SwapchainSupport
	if err := DeviceQuerySwapchainSupport(context.Device.PhysicalDevice, context.Surface, support); err != nil {
		return nil, fmt.Errorf("failed to query swapchain support: %w", err)
	}
	caps := support.Capabilities

	if !extentSupported(caps, width, height) {
		return nil, fmt.Errorf("%dx%d outside [%dx%d, %dx%d]: %w",
			width, height,
			caps.MinImageExtent.Width, caps.MinImageExtent.Height,
			caps.MaxImageExtent.Width, caps.MaxImageExtent.Height,
			core.ErrExtentNotSupported)
	}

	swapchain := &VulkanSwapchain{
		// The first format the surface reports is used as is.
		ImageFormat: support.Formats[0],
		Extent:      vk.Extent2D{Width: width, Height: height},
	}

	imageCount := renderer.ChooseImageCount(renderer.SwapchainBufferCount, caps.MinImageCount, caps.MaxImageCount)

	swapchainCreateInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          context.Surface,
		MinImageCount:    imageCount,
		ImageFormat:      swapchain.ImageFormat.Format,
		ImageColorSpace:  swapchain.ImageFormat.ColorSpace,
		ImageExtent:      swapchain.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		// Graphics and present share a queue family.
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   chooseCompositeAlpha(caps.SupportedCompositeAlpha),
		PresentMode:      vk.PresentModeFifo,
		Clipped:          vk.True,
		OldSwapchain:     oldSwapchain,
	}

	var swapchainHandle vk.Swapchain
	if res := vk.CreateSwapchain(context.Device.LogicalDevice, &swapchainCreateInfo, context.Allocator, &swapchainHandle); res != vk.Success {
		err := vulkanError("vkCreateSwapchainKHR", res)
		core.LogError(err.Error())
		return nil, err
	}
	swapchain.Handle = swapchainHandle

	// Images
	if res := vk.GetSwapchainImages(context.Device.LogicalDevice, swapchain.Handle, &swapchain.ImageCount, nil); res != vk.Success {
		swapchain.destroySwapchain(context)
		return nil, vulkanError("vkGetSwapchainImagesKHR", res)
	}
	swapchain.Images = make([]vk.Image, swapchain.ImageCount)
	swapchain.Views = make([]vk.ImageView, swapchain.ImageCount)
	if res := vk.GetSwapchainImages(context.Device.LogicalDevice, swapchain.Handle, &swapchain.ImageCount, swapchain.Images); res != vk.Success {
		swapchain.destroySwapchain(context)
		return nil, vulkanError("vkGetSwapchainImagesKHR", res)
	}

	// Views
	for i := 0; i < int(swapchain.ImageCount); i++ {
		viewInfo := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    swapchain.Images[i],
			ViewType: vk.ImageViewType2d,
			Format:   swapchain.ImageFormat.Format,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		}

		if res := vk.CreateImageView(context.Device.LogicalDevice, &viewInfo, context.Allocator, &swapchain.Views[i]); res != vk.Success {
			swapchain.destroySwapchain(context)
			return nil, vulkanError("vkCreateImageView", res)
		}
	}

	core.LogDebug("Swapchain created (%dx%d, %d images).", width, height, swapchain.ImageCount)
	return swapchain, nil
}

func (vs *VulkanSwapchain) destroySwapchain(context *VulkanContext) {
	// In-flight frames may still reference the views and framebuffers.
	vk.DeviceWaitIdle(context.Device.LogicalDevice)

	for _, fb := range vs.Framebuffers {
		if fb != nil {
			fb.Destroy(context)
		}
	}
	vs.Framebuffers = nil

	// Only destroy the views, not the images, since those are owned by the swapchain and are thus
	// destroyed when it is.
	for i := range vs.Views {
		if vs.Views[i] != nil {
			vk.DestroyImageView(context.Device.LogicalDevice, vs.Views[i], context.Allocator)
		}
	}
	vs.Views = nil
	vs.Images = nil

	if vs.Handle != vk.NullSwapchain {
		vk.DestroySwapchain(context.Device.LogicalDevice, vs.Handle, context.Allocator)
		vs.Handle = vk.NullSwapchain
	}
}

// RegenerateFramebuffers creates one framebuffer per swapchain image for renderpass.
func (vs *VulkanSwapchain) RegenerateFramebuffers(context *VulkanContext, renderpass *VulkanRenderpass) error {
	vs.Framebuffers = make([]*VulkanFramebuffer, vs.ImageCount)
	for i := 0; i < int(vs.ImageCount); i++ {
		attachments := []vk.ImageView{vs.Views[i]}
		fb, err := FramebufferCreate(context, renderpass, vs.Extent.Width, vs.Extent.Height, attachments)
		if err != nil {
			core.LogError("failed to execute framebuffer create function")
			return err
		}
		vs.Framebuffers[i] = fb
	}
	return nil
}
