package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/wobble/engine/core"
)

// VulkanBuffer is a host visible buffer with its backing memory.
type VulkanBuffer struct {
	Handle vk.Buffer
	Memory vk.DeviceMemory
	Size   vk.DeviceSize
	Usage  vk.BufferUsageFlags
}

func NewBuffer(context *VulkanContext, size vk.DeviceSize, usage vk.BufferUsageFlags) (*VulkanBuffer, error) {
	buffer := &VulkanBuffer{
		Size:  size,
		Usage: usage,
	}

	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}
	var handle vk.Buffer
	if res := vk.CreateBuffer(context.Device.LogicalDevice, &bufferInfo, context.Allocator, &handle); res != vk.Success {
		return nil, vulkanError("vkCreateBuffer", res)
	}
	buffer.Handle = handle

	var memRequirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(context.Device.LogicalDevice, buffer.Handle, &memRequirements)
	memRequirements.Deref()

	memoryIndex, err := context.FindMemoryIndex(
		memRequirements.MemoryTypeBits,
		uint32(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
	)
	if err != nil {
		buffer.Destroy(context)
		return nil, err
	}

	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memRequirements.Size,
		MemoryTypeIndex: memoryIndex,
	}
	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(context.Device.LogicalDevice, &allocInfo, context.Allocator, &memory); res != vk.Success {
		buffer.Destroy(context)
		return nil, vulkanError("vkAllocateMemory", res)
	}
	buffer.Memory = memory

	if res := vk.BindBufferMemory(context.Device.LogicalDevice, buffer.Handle, buffer.Memory, 0); res != vk.Success {
		buffer.Destroy(context)
		return nil, vulkanError("vkBindBufferMemory", res)
	}
	return buffer, nil
}

// NewVertexBuffer creates a buffer holding data for vertex input.
func NewVertexBuffer(context *VulkanContext, data []byte) (*VulkanBuffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("vertex buffer needs at least one vertex")
	}
	buffer, err := NewBuffer(context, vk.DeviceSize(len(data)), vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit))
	if err != nil {
		core.LogError("failed to create vertex buffer: %s", err)
		return nil, err
	}
	if err := buffer.Upload(context, data); err != nil {
		buffer.Destroy(context)
		return nil, err
	}
	return buffer, nil
}

// Upload copies data to the start of the buffer.
func (vb *VulkanBuffer) Upload(context *VulkanContext, data []byte) error {
	if vk.DeviceSize(len(data)) > vb.Size {
		return fmt.Errorf("upload of %d bytes exceeds buffer size %d", len(data), vb.Size)
	}
	var pData unsafe.Pointer
	if res := vk.MapMemory(context.Device.LogicalDevice, vb.Memory, 0, vk.DeviceSize(len(data)), 0, &pData); res != vk.Success {
		return vulkanError("vkMapMemory", res)
	}
	vk.Memcopy(pData, data)
	vk.UnmapMemory(context.Device.LogicalDevice, vb.Memory)
	return nil
}

func (vb *VulkanBuffer) Destroy(context *VulkanContext) {
	if vb.Handle != nil {
		vk.DestroyBuffer(context.Device.LogicalDevice, vb.Handle, context.Allocator)
		vb.Handle = nil
	}
	if vb.Memory != nil {
		vk.FreeMemory(context.Device.LogicalDevice, vb.Memory, context.Allocator)
		vb.Memory = nil
	}
}
