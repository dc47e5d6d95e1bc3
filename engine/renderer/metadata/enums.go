package metadata

// The numeric values below match the device API so the backend can convert
// them with a plain cast.

type Format uint32

const (
	FORMAT_UNDEFINED          Format = 0
	FORMAT_R8G8B8A8_UNORM     Format = 37
	FORMAT_R8G8B8A8_SRGB      Format = 43
	FORMAT_B8G8R8A8_UNORM     Format = 44
	FORMAT_B8G8R8A8_SRGB      Format = 50
	FORMAT_R32G32B32_SFLOAT   Format = 106
	FORMAT_D32_SFLOAT         Format = 126
	FORMAT_D24_UNORM_S8_UINT  Format = 129
	FORMAT_D32_SFLOAT_S8_UINT Format = 130
)

// DepthFormatCandidates lists depth formats in order of preference.
var DepthFormatCandidates = []Format{
	FORMAT_D32_SFLOAT,
	FORMAT_D32_SFLOAT_S8_UINT,
	FORMAT_D24_UNORM_S8_UINT,
}

func (f Format) HasStencil() bool {
	return f == FORMAT_D32_SFLOAT_S8_UINT || f == FORMAT_D24_UNORM_S8_UINT
}

type ColorSpace uint32

const COLOR_SPACE_SRGB_NONLINEAR ColorSpace = 0

type PresentMode uint32

const (
	PRESENT_MODE_IMMEDIATE                 PresentMode = 0
	PRESENT_MODE_MAILBOX                   PresentMode = 1
	PRESENT_MODE_FIFO                      PresentMode = 2
	PRESENT_MODE_FIFO_RELAXED              PresentMode = 3
	PRESENT_MODE_SHARED_DEMAND_REFRESH     PresentMode = 1000111000
	PRESENT_MODE_SHARED_CONTINUOUS_REFRESH PresentMode = 1000111001
)

var presentModeNames = map[PresentMode]string{
	PRESENT_MODE_IMMEDIATE:                 "immediate",
	PRESENT_MODE_MAILBOX:                   "mailbox",
	PRESENT_MODE_FIFO:                      "fifo",
	PRESENT_MODE_FIFO_RELAXED:              "fifo_relaxed",
	PRESENT_MODE_SHARED_DEMAND_REFRESH:     "shared_demand_refresh",
	PRESENT_MODE_SHARED_CONTINUOUS_REFRESH: "shared_continuous_refresh",
}

func (p PresentMode) String() string {
	if s, ok := presentModeNames[p]; ok {
		return s
	}
	return "unknown"
}

// ParsePresentMode maps a config name such as "mailbox" to its PresentMode.
func ParsePresentMode(name string) (PresentMode, bool) {
	for mode, n := range presentModeNames {
		if n == name {
			return mode, true
		}
	}
	return 0, false
}

type DescriptorType uint32

const (
	DESCRIPTOR_TYPE_SAMPLER                DescriptorType = 0
	DESCRIPTOR_TYPE_COMBINED_IMAGE_SAMPLER DescriptorType = 1
	DESCRIPTOR_TYPE_SAMPLED_IMAGE          DescriptorType = 2
	DESCRIPTOR_TYPE_STORAGE_IMAGE          DescriptorType = 3
	DESCRIPTOR_TYPE_UNIFORM_TEXEL_BUFFER   DescriptorType = 4
	DESCRIPTOR_TYPE_STORAGE_TEXEL_BUFFER   DescriptorType = 5
	DESCRIPTOR_TYPE_UNIFORM_BUFFER         DescriptorType = 6
	DESCRIPTOR_TYPE_STORAGE_BUFFER         DescriptorType = 7
	DESCRIPTOR_TYPE_UNIFORM_BUFFER_DYNAMIC DescriptorType = 8
	DESCRIPTOR_TYPE_STORAGE_BUFFER_DYNAMIC DescriptorType = 9
	DESCRIPTOR_TYPE_INPUT_ATTACHMENT       DescriptorType = 10
)

// IsImage reports whether descriptors of this type reference images.
func (t DescriptorType) IsImage() bool {
	switch t {
	case DESCRIPTOR_TYPE_SAMPLER, DESCRIPTOR_TYPE_COMBINED_IMAGE_SAMPLER, DESCRIPTOR_TYPE_SAMPLED_IMAGE,
		DESCRIPTOR_TYPE_STORAGE_IMAGE, DESCRIPTOR_TYPE_INPUT_ATTACHMENT:
		return true
	}
	return false
}

type ShaderStageFlags uint32

const (
	SHADER_STAGE_VERTEX       ShaderStageFlags = 0x00000001
	SHADER_STAGE_FRAGMENT     ShaderStageFlags = 0x00000010
	SHADER_STAGE_COMPUTE      ShaderStageFlags = 0x00000020
	SHADER_STAGE_ALL_GRAPHICS ShaderStageFlags = 0x0000001F
)

type BufferUsageFlags uint32

const (
	BUFFER_USAGE_TRANSFER_SRC   BufferUsageFlags = 0x00000001
	BUFFER_USAGE_TRANSFER_DST   BufferUsageFlags = 0x00000002
	BUFFER_USAGE_UNIFORM_BUFFER BufferUsageFlags = 0x00000010
	BUFFER_USAGE_STORAGE_BUFFER BufferUsageFlags = 0x00000020
	BUFFER_USAGE_INDEX_BUFFER   BufferUsageFlags = 0x00000040
	BUFFER_USAGE_VERTEX_BUFFER  BufferUsageFlags = 0x00000080
)

type MemoryPropertyFlags uint32

const (
	MEMORY_PROPERTY_DEVICE_LOCAL  MemoryPropertyFlags = 0x00000001
	MEMORY_PROPERTY_HOST_VISIBLE  MemoryPropertyFlags = 0x00000002
	MEMORY_PROPERTY_HOST_COHERENT MemoryPropertyFlags = 0x00000004
	MEMORY_PROPERTY_HOST_CACHED   MemoryPropertyFlags = 0x00000008
)

type DescriptorPoolCreateFlags uint32

const DESCRIPTOR_POOL_CREATE_FREE_DESCRIPTOR_SET DescriptorPoolCreateFlags = 0x00000001

type SampleCountFlags uint32

const (
	SAMPLE_COUNT_1  SampleCountFlags = 0x01
	SAMPLE_COUNT_2  SampleCountFlags = 0x02
	SAMPLE_COUNT_4  SampleCountFlags = 0x04
	SAMPLE_COUNT_8  SampleCountFlags = 0x08
	SAMPLE_COUNT_16 SampleCountFlags = 0x10
	SAMPLE_COUNT_32 SampleCountFlags = 0x20
	SAMPLE_COUNT_64 SampleCountFlags = 0x40
)

// MaxSampleCount returns the highest single sample count contained in flags
// that does not exceed want.
func MaxSampleCount(flags SampleCountFlags, want uint32) SampleCountFlags {
	for c := SAMPLE_COUNT_64; c > SAMPLE_COUNT_1; c >>= 1 {
		if uint32(c) <= want && flags&c != 0 {
			return c
		}
	}
	return SAMPLE_COUNT_1
}

type ImageLayout uint32

const (
	IMAGE_LAYOUT_UNDEFINED                        ImageLayout = 0
	IMAGE_LAYOUT_COLOR_ATTACHMENT_OPTIMAL         ImageLayout = 2
	IMAGE_LAYOUT_DEPTH_STENCIL_ATTACHMENT_OPTIMAL ImageLayout = 3
	IMAGE_LAYOUT_SHADER_READ_ONLY_OPTIMAL         ImageLayout = 5
	IMAGE_LAYOUT_PRESENT_SRC                      ImageLayout = 1000001002
)

type ImageAspectFlags uint32

const (
	IMAGE_ASPECT_COLOR   ImageAspectFlags = 0x00000001
	IMAGE_ASPECT_DEPTH   ImageAspectFlags = 0x00000002
	IMAGE_ASPECT_STENCIL ImageAspectFlags = 0x00000004
)

type ImageUsageFlags uint32

const (
	IMAGE_USAGE_TRANSFER_SRC             ImageUsageFlags = 0x00000001
	IMAGE_USAGE_TRANSFER_DST             ImageUsageFlags = 0x00000002
	IMAGE_USAGE_SAMPLED                  ImageUsageFlags = 0x00000004
	IMAGE_USAGE_COLOR_ATTACHMENT         ImageUsageFlags = 0x00000010
	IMAGE_USAGE_DEPTH_STENCIL_ATTACHMENT ImageUsageFlags = 0x00000020
	IMAGE_USAGE_TRANSIENT_ATTACHMENT     ImageUsageFlags = 0x00000040
)

type AttachmentLoadOp uint32

const (
	ATTACHMENT_LOAD_OP_LOAD      AttachmentLoadOp = 0
	ATTACHMENT_LOAD_OP_CLEAR     AttachmentLoadOp = 1
	ATTACHMENT_LOAD_OP_DONT_CARE AttachmentLoadOp = 2
)

type AttachmentStoreOp uint32

const (
	ATTACHMENT_STORE_OP_STORE     AttachmentStoreOp = 0
	ATTACHMENT_STORE_OP_DONT_CARE AttachmentStoreOp = 1
)

type PipelineStageFlags uint32

const (
	PIPELINE_STAGE_TOP_OF_PIPE             PipelineStageFlags = 0x00000001
	PIPELINE_STAGE_EARLY_FRAGMENT_TESTS    PipelineStageFlags = 0x00000100
	PIPELINE_STAGE_COLOR_ATTACHMENT_OUTPUT PipelineStageFlags = 0x00000400
	PIPELINE_STAGE_TRANSFER                PipelineStageFlags = 0x00001000
)

type AccessFlags uint32

const (
	ACCESS_COLOR_ATTACHMENT_WRITE         AccessFlags = 0x00000100
	ACCESS_DEPTH_STENCIL_ATTACHMENT_WRITE AccessFlags = 0x00000400
)

type SharingMode uint32

const (
	SHARING_MODE_EXCLUSIVE  SharingMode = 0
	SHARING_MODE_CONCURRENT SharingMode = 1
)

const (
	SUBPASS_EXTERNAL uint32 = ^uint32(0)
	WHOLE_SIZE       uint64 = ^uint64(0)
	// TIMEOUT_INFINITE is the maximum fence wait timeout in nanoseconds.
	TIMEOUT_INFINITE uint64 = ^uint64(0)
)
