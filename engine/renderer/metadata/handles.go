package metadata

// Handle is an opaque device object reference. Zero is the null handle.
type Handle uint64

const NullHandle Handle = 0

func (h Handle) IsNull() bool {
	return h == NullHandle
}

type (
	Buffer              = Handle
	DeviceMemory        = Handle
	Image               = Handle
	ImageView           = Handle
	Sampler             = Handle
	RenderPass          = Handle
	Framebuffer         = Handle
	Swapchain           = Handle
	Semaphore           = Handle
	Fence               = Handle
	CommandBuffer       = Handle
	DescriptorSetLayout = Handle
	DescriptorPool      = Handle
	DescriptorSet       = Handle
	PipelineLayout      = Handle
	Pipeline            = Handle
)
