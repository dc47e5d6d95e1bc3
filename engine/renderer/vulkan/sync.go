package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/vstokstad/vulkan-eng/engine/core"
	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
)

func (c *Context) CreateSemaphore() (metadata.Semaphore, error) {
	info := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	var semaphore vk.Semaphore
	if res := vk.CreateSemaphore(c.logical(), &info, c.Allocator, &semaphore); res != vk.Success {
		return metadata.NullHandle, toResult(res)
	}
	h := c.newHandle()
	c.semaphores.put(h, semaphore)
	return h, nil
}

func (c *Context) DestroySemaphore(semaphore metadata.Semaphore) {
	if s, ok := c.semaphores.take(semaphore); ok {
		vk.DestroySemaphore(c.logical(), s, c.Allocator)
	}
}

func (c *Context) CreateFence(signaled bool) (metadata.Fence, error) {
	info := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if signaled {
		info.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var fence vk.Fence
	if res := vk.CreateFence(c.logical(), &info, c.Allocator, &fence); res != vk.Success {
		return metadata.NullHandle, toResult(res)
	}
	h := c.newHandle()
	c.fences.put(h, fence)
	return h, nil
}

func (c *Context) DestroyFence(fence metadata.Fence) {
	if f, ok := c.fences.take(fence); ok {
		vk.DestroyFence(c.logical(), f, c.Allocator)
	}
}

func (c *Context) WaitForFences(fences []metadata.Fence, waitAll bool, timeout uint64) metadata.Result {
	all := vk.Bool32(vk.False)
	if waitAll {
		all = vk.True
	}
	result := toResult(vk.WaitForFences(c.logical(), uint32(len(fences)), c.fences.getAll(fences), all, timeout))
	switch result {
	case metadata.RESULT_SUCCESS:
	case metadata.RESULT_TIMEOUT:
		core.LogWarn("vk_fence_wait - Timed out")
	default:
		core.LogError("vk_fence_wait - %s", VulkanResultString(vk.Result(result), true))
	}
	return result
}

func (c *Context) ResetFences(fences []metadata.Fence) metadata.Result {
	var result metadata.Result
	_ = c.locks.SafeCall(SynchronizationManagement, func() error {
		result = toResult(vk.ResetFences(c.logical(), uint32(len(fences)), c.fences.getAll(fences)))
		return nil
	})
	return result
}
