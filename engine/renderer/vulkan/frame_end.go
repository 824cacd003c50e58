package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/wobble/engine/renderer"
)

// frameEnd tracks one submitted frame until its fence signals. It owns the
// resources the GPU reads while executing the frame and keeps the frame
// submitted before it alive.
type frameEnd struct {
	context  *VulkanContext
	fence    *VulkanFence
	commands *VulkanCommandBuffer
	// image acquired and render finished
	semaphores []vk.Semaphore
	previous   *frameEnd
	finished   bool
}

var _ renderer.FrameEnd = (*frameEnd)(nil)

func completedFrameEnd() *frameEnd {
	return &frameEnd{finished: true}
}

func (f *frameEnd) CleanupFinished() {
	if f.previous != nil {
		f.previous.CleanupFinished()
		if f.previous.finished && f.previous.previous == nil {
			f.previous = nil
		}
	}
	if !f.finished && f.fence.FenceStatus(f.context) {
		f.release(true)
	}
}

func (f *frameEnd) Done() bool {
	for node := f; node != nil; node = node.previous {
		if !node.finished {
			return false
		}
	}
	return true
}

// releaseChain frees every frame submitted before f. The queue must be idle.
func (f *frameEnd) releaseChain() {
	for node := f.previous; node != nil; node = node.previous {
		if !node.finished {
			node.release(true)
		}
	}
	f.previous = nil
}

// release frees the frame's resources. Semaphores are only recycled when
// reusable is set.
func (f *frameEnd) release(reusable bool) {
	ctx := f.context
	if f.commands != nil {
		f.commands.Free(ctx, ctx.Device.GraphicsCommandPool)
		f.commands = nil
	}
	for _, s := range f.semaphores {
		if reusable {
			ctx.Semaphores.Put(s)
		} else {
			ctx.Semaphores.Discard(ctx, s)
		}
	}
	f.semaphores = nil
	if f.fence != nil {
		f.fence.FenceDestroy(ctx)
		f.fence = nil
	}
	f.finished = true
}
