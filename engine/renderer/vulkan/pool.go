package vulkan

import (
	"sync"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/wobble/engine/core"
)

// VulkanSemaphorePool recycles binary semaphores between frames. A
// semaphore may only be put back once no pending GPU operation waits on or
// signals it.
type VulkanSemaphorePool struct {
	mu   sync.Mutex
	free []vk.Semaphore
	// every semaphore the pool ever created, for teardown
	all []vk.Semaphore
}

func NewVulkanSemaphorePool() *VulkanSemaphorePool {
	return &VulkanSemaphorePool{}
}

func (sp *VulkanSemaphorePool) Get(context *VulkanContext) (vk.Semaphore, error) {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	if n := len(sp.free); n > 0 {
		s := sp.free[n-1]
		sp.free = sp.free[:n-1]
		return s, nil
	}

	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	var s vk.Semaphore
	if res := vk.CreateSemaphore(context.Device.LogicalDevice, &semaphoreCreateInfo, context.Allocator, &s); res != vk.Success {
		err := vulkanError("vkCreateSemaphore", res)
		core.LogError(err.Error())
		return vk.NullSemaphore, err
	}
	sp.all = append(sp.all, s)
	return s, nil
}

func (sp *VulkanSemaphorePool) Put(s vk.Semaphore) {
	if s == vk.NullSemaphore {
		return
	}
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.free = append(sp.free, s)
}

// Discard destroys a semaphore whose state is unknown so it is never reused.
func (sp *VulkanSemaphorePool) Discard(context *VulkanContext, s vk.Semaphore) {
	if s == vk.NullSemaphore {
		return
	}
	sp.mu.Lock()
	defer sp.mu.Unlock()
	for i := range sp.all {
		if sp.all[i] == s {
			sp.all = append(sp.all[:i], sp.all[i+1:]...)
			break
		}
	}
	vk.DestroySemaphore(context.Device.LogicalDevice, s, context.Allocator)
}

func (sp *VulkanSemaphorePool) Len() int {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return len(sp.all)
}

// Destroy releases every semaphore created by the pool. The device must be idle.
func (sp *VulkanSemaphorePool) Destroy(context *VulkanContext) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	for _, s := range sp.all {
		vk.DestroySemaphore(context.Device.LogicalDevice, s, context.Allocator)
	}
	sp.all = nil
	sp.free = nil
}
