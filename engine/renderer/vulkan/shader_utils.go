package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/wobble/engine/core"
	"github.com/spaghettifunk/wobble/engine/renderer/shaders"
)

// VulkanShaderModule is a compiled SPIR-V module and the pipeline stages
// that use its entry points.
type VulkanShaderModule struct {
	// The internal shader module Handle.
	Handle vk.ShaderModule
	Stages []vk.PipelineShaderStageCreateInfo
}

type VulkanShaderStage struct {
	Stage      vk.ShaderStageFlagBits
	EntryPoint string
}

// NewShaderModule compiles WGSL source and creates one pipeline stage per
// entry point.
func NewShaderModule(context *VulkanContext, source string, stages []VulkanShaderStage) (*VulkanShaderModule, error) {
	code, err := shaders.Compile(source)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code) * 4),
		PCode:    code,
	}

	var handle vk.ShaderModule
	if res := vk.CreateShaderModule(context.Device.LogicalDevice, &createInfo, context.Allocator, &handle); res != vk.Success {
		err := vulkanError("vkCreateShaderModule", res)
		core.LogError(err.Error())
		return nil, err
	}

	module := &VulkanShaderModule{
		Handle: handle,
		Stages: make([]vk.PipelineShaderStageCreateInfo, len(stages)),
	}
	for i, stage := range stages {
		module.Stages[i] = vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  stage.Stage,
			Module: handle,
			PName:  VulkanSafeString(stage.EntryPoint),
		}
	}
	return module, nil
}

func (sm *VulkanShaderModule) Destroy(context *VulkanContext) {
	if sm.Handle != nil {
		vk.DestroyShaderModule(context.Device.LogicalDevice, sm.Handle, context.Allocator)
		sm.Handle = nil
	}
	sm.Stages = nil
}
