package core

import (
	"errors"
)

var (
	ErrSwapchainBooting        = errors.New("swapchain resized or recreated, booting")
	ErrSwapchainOutOfDate      = errors.New("swapchain out of date")
	ErrSwapchainFormatMismatch = errors.New("swapchain image or depth format has changed")
	ErrNoSuitableFormat        = errors.New("no suitable surface or depth format")
	ErrDeviceObjectCreation    = errors.New("failed to create device object")
	ErrPoolExhausted           = errors.New("descriptor pool exhausted")
	ErrPoolNotFreeable         = errors.New("descriptor pool was not created with the free descriptor set flag")
	ErrBufferNotMapped         = errors.New("buffer is not mapped")
	ErrOutOfRange              = errors.New("range outside of buffer")
	ErrUnknown                 = errors.New("unknown")
)
