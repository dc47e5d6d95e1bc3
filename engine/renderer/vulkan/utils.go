package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
)

var resultDescriptions = map[vk.Result]string{
	vk.Success:                   "Command successfully completed",
	vk.NotReady:                  "A fence or query has not yet completed",
	vk.Timeout:                   "A wait operation has not completed in the specified time",
	vk.Incomplete:                "A return array was too small for the result",
	vk.Suboptimal:                "A swapchain no longer matches the surface properties exactly, but can still be used to present to the surface successfully.",
	vk.ErrorOutOfHostMemory:      "A host memory allocation has failed.",
	vk.ErrorOutOfDeviceMemory:    "A device memory allocation has failed.",
	vk.ErrorInitializationFailed: "Initialization of an object could not be completed for implementation-specific reasons.",
	vk.ErrorDeviceLost:           "The logical or physical device has been lost.",
	vk.ErrorMemoryMapFailed:      "Mapping of a memory object has failed.",
	vk.ErrorLayerNotPresent:      "A requested layer is not present or could not be loaded.",
	vk.ErrorExtensionNotPresent:  "A requested extension is not supported.",
	vk.ErrorFeatureNotPresent:    "A requested feature is not supported.",
	vk.ErrorIncompatibleDriver:   "The requested version of Vulkan is not supported by the driver.",
	vk.ErrorTooManyObjects:       "Too many objects of the type have already been created.",
	vk.ErrorFormatNotSupported:   "A requested format is not supported on this device.",
	vk.ErrorFragmentedPool:       "A pool allocation has failed due to fragmentation of the pool's memory.",
	vk.ErrorSurfaceLost:          "A surface is no longer available.",
	vk.ErrorNativeWindowInUse:    "The requested window is already in use by Vulkan or another API.",
	vk.ErrorOutOfDate:            "A surface has changed in such a way that it is no longer compatible with the swapchain.",
	vk.ErrorOutOfPoolMemory:      "A pool memory allocation has failed.",
	vk.ErrorUnknown:              "An unknown error has occurred.",
}

// VulkanResultString names result, with a description when getExtended is set.
func VulkanResultString(result vk.Result, getExtended bool) string {
	name := "VK_" + toResult(result).String()
	if !getExtended {
		return name
	}
	if desc, ok := resultDescriptions[result]; ok {
		return name + " " + desc
	}
	return name
}

// VulkanResultIsSuccess reports whether result is a success code. Every
// error code is negative.
func VulkanResultIsSuccess(result vk.Result) bool {
	return result >= 0
}

func toResult(result vk.Result) metadata.Result {
	return metadata.Result(int32(result))
}

const end = "\x00"
const endChar byte = '\x00'

func VulkanSafeString(s string) string {
	if len(s) == 0 {
		return end
	}
	if s[len(s)-1] != endChar {
		return s + end
	}
	return s
}

func VulkanSafeStrings(list []string) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = VulkanSafeString(list[i])
	}
	return out
}

func FindFirstZeroInByteArray(arr []byte) int {
	for i, b := range arr {
		if b == 0 {
			return i
		}
	}
	return len(arr)
}
