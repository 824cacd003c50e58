package vulkan

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/wobble/engine/core"
	"github.com/spaghettifunk/wobble/engine/platform"
	"github.com/spaghettifunk/wobble/engine/renderer"
	"github.com/spaghettifunk/wobble/engine/renderer/shaders"
)

const (
	validationLayerName                 = "VK_LAYER_KHRONOS_validation"
	portabilityEnumerationExtensionName = "VK_KHR_portability_enumeration"
	physicalDeviceProperties2Name       = "VK_KHR_get_physical_device_properties2"
	// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
	instanceCreateEnumeratePortability vk.InstanceCreateFlags = 0x00000001
)

// VulkanRenderer drives a single window with one graphics pipeline. It
// implements renderer.Device.
type VulkanRenderer struct {
	platform    *platform.Platform
	FrameNumber uint64
	context     *VulkanContext

	// Semaphore signaled by the last successful acquire. RecordFrame hands it
	// over to the recorded frame.
	pendingAcquire vk.Semaphore

	debug bool
}

var _ renderer.Device = (*VulkanRenderer)(nil)

func New(p *platform.Platform, debug bool) *VulkanRenderer {
	return &VulkanRenderer{
		platform: p,
		context: &VulkanContext{
			Allocator:  nil,
			Semaphores: NewVulkanSemaphorePool(),
		},
		pendingAcquire: vk.NullSemaphore,
		debug:          debug,
	}
}

func (vr *VulkanRenderer) Initialize(appName string, width, height uint32) error {
	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		return fmt.Errorf("GetInstanceProcAddress is nil")
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		return fmt.Errorf("failed to initialize vk: %w", err)
	}

	if err := vr.createInstance(appName); err != nil {
		return err
	}
	core.LogDebug("Vulkan Instance created.")

	if vr.debug {
		if err := vr.createDebugCallback(); err != nil {
			return err
		}
	}

	// Surface
	core.LogDebug("Creating Vulkan surface...")
	surface, err := vr.platform.CreateWindowSurface(vr.context.Instance)
	if err != nil {
		return fmt.Errorf("failed to create platform surface: %w", err)
	}
	vr.context.Surface = vk.SurfaceFromPointer(surface)
	core.LogDebug("Vulkan surface created.")

	// Device creation
	if err := DeviceCreate(vr.context); err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}

	// Swapchain
	sc, err := SwapchainCreate(vr.context, width, height)
	if err != nil {
		return fmt.Errorf("failed to create swapchain: %w", err)
	}
	vr.context.Swapchain = sc
	vr.context.FramebufferWidth = width
	vr.context.FramebufferHeight = height

	rp, err := RenderpassCreate(vr.context, sc.ImageFormat.Format, renderer.ClearColor)
	if err != nil {
		return err
	}
	vr.context.MainRenderpass = rp

	// Swapchain framebuffers.
	if err := sc.RegenerateFramebuffers(vr.context, rp); err != nil {
		return err
	}

	if err := vr.createPipeline(); err != nil {
		return err
	}

	vb, err := NewVertexBuffer(vr.context, renderer.VertexBytes(renderer.Triangle[:]))
	if err != nil {
		return err
	}
	vr.context.VertexBuffer = vb

	core.LogInfo("Vulkan renderer initialized successfully.")
	return nil
}

func (vr *VulkanRenderer) createInstance(appName string) error {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(appName),
		PEngineName:        VulkanSafeString("Wobble"),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	// Obtain a list of required extensions
	requiredExtensions := vr.platform.GetRequiredExtensionNames()

	var availableCount uint32
	if res := vk.EnumerateInstanceExtensionProperties("", &availableCount, nil); res != vk.Success {
		return vulkanError("vkEnumerateInstanceExtensionProperties", res)
	}
	available := make([]vk.ExtensionProperties, availableCount)
	if res := vk.EnumerateInstanceExtensionProperties("", &availableCount, available); res != vk.Success {
		return vulkanError("vkEnumerateInstanceExtensionProperties", res)
	}

	// Portability drivers such as MoltenVK are only listed when asked for.
	if hasExtension(available, portabilityEnumerationExtensionName) {
		requiredExtensions = append(requiredExtensions, portabilityEnumerationExtensionName)
		if hasExtension(available, physicalDeviceProperties2Name) {
			requiredExtensions = append(requiredExtensions, physicalDeviceProperties2Name)
		}
		createInfo.Flags |= instanceCreateEnumeratePortability
	}

	var layers []string
	if vr.debug {
		requiredExtensions = append(requiredExtensions, vk.ExtDebugReportExtensionName)

		core.LogDebug("Validation layers enabled. Enumerating...")
		var layerCount uint32
		if res := vk.EnumerateInstanceLayerProperties(&layerCount, nil); res != vk.Success {
			return vulkanError("vkEnumerateInstanceLayerProperties", res)
		}
		availableLayers := make([]vk.LayerProperties, layerCount)
		if res := vk.EnumerateInstanceLayerProperties(&layerCount, availableLayers); res != vk.Success {
			return vulkanError("vkEnumerateInstanceLayerProperties", res)
		}
		if hasLayer(availableLayers, validationLayerName) {
			layers = append(layers, validationLayerName)
		} else {
			core.LogWarn("Validation layer %s is missing, continuing without it.", validationLayerName)
		}
	}

	core.LogDebug("Required extensions: %v", requiredExtensions)

	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)
	createInfo.EnabledLayerCount = uint32(len(layers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(layers)

	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, vr.context.Allocator, &instance); res != vk.Success {
		err := fmt.Errorf("failed in creating the Vulkan Instance with error `%s`", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	vr.context.Instance = instance

	if err := vk.InitInstance(vr.context.Instance); err != nil {
		core.LogError(err.Error())
		return err
	}
	return nil
}

func (vr *VulkanRenderer) createDebugCallback() error {
	core.LogDebug("Creating Vulkan debugger...")
	debugCreateInfo := vk.DebugReportCallbackCreateInfo{
		SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
		PfnCallback: dbgCallbackFunc,
	}

	var dbg vk.DebugReportCallback
	if err := vk.Error(vk.CreateDebugReportCallback(vr.context.Instance, &debugCreateInfo, vr.context.Allocator, &dbg)); err != nil {
		core.LogError("vk.CreateDebugReportCallback failed with %s", err)
		return err
	}
	vr.context.debugMessenger = dbg
	core.LogDebug("Vulkan debugger created.")
	return nil
}

func (vr *VulkanRenderer) createPipeline() error {
	module, err := NewShaderModule(vr.context, shaders.TriangleSource(), []VulkanShaderStage{
		{Stage: vk.ShaderStageVertexBit, EntryPoint: shaders.VertexEntryPoint},
		{Stage: vk.ShaderStageFragmentBit, EntryPoint: shaders.FragmentEntryPoint},
	})
	if err != nil {
		return err
	}
	// The pipeline keeps what it needs from the module.
	defer module.Destroy(vr.context)

	pipeline, err := NewGraphicsPipeline(vr.context, &VulkanPipelineConfig{
		Renderpass: vr.context.MainRenderpass,
		Stride:     renderer.VertexStride,
		Attributes: []vk.VertexInputAttributeDescription{
			{
				Location: 0,
				Binding:  0,
				Format:   vk.FormatR32g32Sfloat,
				Offset:   renderer.VertexPositionOffset,
			},
			{
				Location: 1,
				Binding:  0,
				Format:   vk.FormatR32g32b32a32Sfloat,
				Offset:   renderer.VertexColorOffset,
			},
		},
		Stages: module.Stages,
		PushConstantRanges: []vk.PushConstantRange{{
			StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit),
			Offset:     0,
			Size:       renderer.PushConstantsSize,
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to create graphics pipeline: %w", err)
	}
	vr.context.Pipeline = pipeline
	return nil
}

// Now returns a frame end that is already complete.
func (vr *VulkanRenderer) Now() renderer.FrameEnd {
	return completedFrameEnd()
}

// RecreateSwapchain replaces the swapchain and its framebuffers with ones of
// the given size.
func (vr *VulkanRenderer) RecreateSwapchain(width, height uint32) error {
	sc, err := vr.context.Swapchain.SwapchainRecreate(vr.context, width, height)
	if err != nil {
		return err
	}
	vr.context.Swapchain = sc
	if err := sc.RegenerateFramebuffers(vr.context, vr.context.MainRenderpass); err != nil {
		return err
	}

	// Sync the framebuffer size with the swapchain.
	vr.context.FramebufferWidth = width
	vr.context.FramebufferHeight = height
	core.LogDebug("Swapchain recreated at %dx%d.", width, height)
	return nil
}

func (vr *VulkanRenderer) AcquireNextImage() (renderer.AcquiredImage, error) {
	ctx := vr.context
	semaphore, err := ctx.Semaphores.Get(ctx)
	if err != nil {
		return renderer.AcquiredImage{}, err
	}

	imageIndex, suboptimal, err := ctx.Swapchain.SwapchainAcquireNextImageIndex(ctx, semaphore)
	if err != nil {
		// Nothing will signal the semaphore.
		ctx.Semaphores.Put(semaphore)
		return renderer.AcquiredImage{}, err
	}

	if vr.pendingAcquire != vk.NullSemaphore {
		core.LogWarn("Previous acquired image was never recorded, dropping its semaphore.")
		vk.DeviceWaitIdle(ctx.Device.LogicalDevice)
		ctx.Semaphores.Discard(ctx, vr.pendingAcquire)
	}
	vr.pendingAcquire = semaphore

	return renderer.AcquiredImage{Index: imageIndex, Suboptimal: suboptimal}, nil
}

// recordedFrame is a command buffer ready to be submitted for one image.
type recordedFrame struct {
	commands       *VulkanCommandBuffer
	imageAvailable vk.Semaphore
	imageIndex     uint32
}

func (rf *recordedFrame) ImageIndex() uint32 {
	return rf.imageIndex
}

func (vr *VulkanRenderer) RecordFrame(image renderer.AcquiredImage, constants renderer.PushConstants) (renderer.RecordedFrame, error) {
	ctx := vr.context
	sc := ctx.Swapchain
	if int(image.Index) >= len(sc.Framebuffers) {
		return nil, fmt.Errorf("image index %d out of range of %d framebuffers", image.Index, len(sc.Framebuffers))
	}

	cb, err := AllocateAndBeginSingleUse(ctx, ctx.Device.GraphicsCommandPool)
	if err != nil {
		return nil, err
	}

	ctx.MainRenderpass.RenderpassBegin(cb, sc.Framebuffers[image.Index].Handle, sc.Extent)

	viewport := vk.Viewport{
		X:        0.0,
		Y:        0.0,
		Width:    float32(sc.Extent.Width),
		Height:   float32(sc.Extent.Height),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
	vk.CmdSetViewport(cb.Handle, 0, 1, []vk.Viewport{viewport})

	ctx.Pipeline.Bind(cb, vk.PipelineBindPointGraphics)
	vk.CmdBindVertexBuffers(cb.Handle, 0, 1, []vk.Buffer{ctx.VertexBuffer.Handle}, []vk.DeviceSize{0})
	vk.CmdPushConstants(cb.Handle, ctx.Pipeline.PipelineLayout, ctx.Pipeline.PushConstantStages, 0, renderer.PushConstantsSize, unsafe.Pointer(&constants))
	vk.CmdDraw(cb.Handle, uint32(len(renderer.Triangle)), renderer.InstanceCount, 0, 0)

	ctx.MainRenderpass.RenderpassEnd(cb)
	if err := cb.End(); err != nil {
		cb.Free(ctx, ctx.Device.GraphicsCommandPool)
		return nil, err
	}

	frame := &recordedFrame{
		commands:       cb,
		imageAvailable: vr.pendingAcquire,
		imageIndex:     image.Index,
	}
	vr.pendingAcquire = vk.NullSemaphore
	return frame, nil
}

// SubmitAndPresent chains the frame after previous, executes it once the
// image is available, presents the image on the same queue and returns a
// frame end whose fence signals when the GPU is done.
func (vr *VulkanRenderer) SubmitAndPresent(previous renderer.FrameEnd, image renderer.AcquiredImage, frame renderer.RecordedFrame) (renderer.FrameEnd, error) {
	ctx := vr.context
	rf, ok := frame.(*recordedFrame)
	if !ok {
		return nil, fmt.Errorf("unexpected recorded frame type %T", frame)
	}

	end := &frameEnd{
		context:    ctx,
		commands:   rf.commands,
		semaphores: []vk.Semaphore{rf.imageAvailable},
	}
	if prev, ok := previous.(*frameEnd); ok && !prev.Done() {
		end.previous = prev
	}

	renderFinished, err := ctx.Semaphores.Get(ctx)
	if err != nil {
		vr.abandon(end)
		return nil, err
	}
	end.semaphores = append(end.semaphores, renderFinished)

	fence, err := NewFence(ctx, false)
	if err != nil {
		vr.abandon(end)
		return nil, err
	}
	end.fence = fence

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{rf.imageAvailable},
		// Color writes wait until the image is available.
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{rf.commands.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{renderFinished},
	}
	if res := vk.QueueSubmit(ctx.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, fence.Handle); res != vk.Success {
		vr.abandon(end)
		return nil, vulkanError("vkQueueSubmit", res)
	}
	rf.commands.UpdateSubmitted()
	vr.FrameNumber++

	if err := ctx.Swapchain.SwapchainPresent(ctx.Device.GraphicsQueue, renderFinished, image.Index); err != nil {
		// The frame executed but was not shown. Its semaphores are in an
		// unknown state, so they are dropped once the queue drains.
		vk.QueueWaitIdle(ctx.Device.GraphicsQueue)
		end.release(false)
		end.releaseChain()
		return nil, err
	}
	return end, nil
}

// abandon releases a frame that never reached the queue.
func (vr *VulkanRenderer) abandon(end *frameEnd) {
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)
	end.release(false)
	end.releaseChain()
}

// WaitIdle blocks until the device has finished all submitted work.
func (vr *VulkanRenderer) WaitIdle() error {
	if vr.context.Device == nil || vr.context.Device.LogicalDevice == nil {
		return nil
	}
	if res := vk.DeviceWaitIdle(vr.context.Device.LogicalDevice); res != vk.Success {
		return vulkanError("vkDeviceWaitIdle", res)
	}
	return nil
}

// Shutdown waits for the device, releases the last frame chain and destroys
// everything in the opposite order of creation.
func (vr *VulkanRenderer) Shutdown(last renderer.FrameEnd) error {
	ctx := vr.context
	if ctx.Device == nil || ctx.Device.LogicalDevice == nil {
		vr.destroyInstance()
		return nil
	}
	if err := vr.WaitIdle(); err != nil {
		core.LogWarn("failed to wait for device idle: %s", err)
	}

	if last != nil {
		last.CleanupFinished()
	}
	if vr.pendingAcquire != vk.NullSemaphore {
		ctx.Semaphores.Discard(ctx, vr.pendingAcquire)
		vr.pendingAcquire = vk.NullSemaphore
	}
	ctx.Semaphores.Destroy(ctx)

	if ctx.VertexBuffer != nil {
		ctx.VertexBuffer.Destroy(ctx)
		ctx.VertexBuffer = nil
	}
	if ctx.Pipeline != nil {
		ctx.Pipeline.Destroy(ctx)
		ctx.Pipeline = nil
	}
	if ctx.Swapchain != nil {
		ctx.Swapchain.SwapchainDestroy(ctx)
		ctx.Swapchain = nil
	}
	if ctx.MainRenderpass != nil {
		ctx.MainRenderpass.RenderpassDestroy(ctx)
		ctx.MainRenderpass = nil
	}

	core.LogDebug("Destroying Vulkan device...")
	DeviceDestroy(ctx)

	vr.destroyInstance()
	return nil
}

func (vr *VulkanRenderer) destroyInstance() {
	ctx := vr.context
	if ctx.Instance == nil {
		return
	}
	core.LogDebug("Destroying Vulkan surface...")
	if ctx.Surface != vk.NullSurface {
		vk.DestroySurface(ctx.Instance, ctx.Surface, ctx.Allocator)
		ctx.Surface = vk.NullSurface
	}

	if ctx.debugMessenger != vk.NullDebugReportCallback {
		core.LogDebug("Destroying Vulkan debugger...")
		vk.DestroyDebugReportCallback(ctx.Instance, ctx.debugMessenger, ctx.Allocator)
		ctx.debugMessenger = vk.NullDebugReportCallback
	}

	core.LogDebug("Destroying Vulkan instance...")
	vk.DestroyInstance(ctx.Instance, ctx.Allocator)
	ctx.Instance = nil
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("ERROR: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("PERFORMANCE WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogDebug("INFORMATION: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
