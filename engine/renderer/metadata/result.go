package metadata

import "fmt"

// Result mirrors the device API result codes. Negative values are errors.
type Result int32

const (
	RESULT_SUCCESS                     Result = 0
	RESULT_NOT_READY                   Result = 1
	RESULT_TIMEOUT                     Result = 2
	RESULT_INCOMPLETE                  Result = 5
	RESULT_SUBOPTIMAL                  Result = 1000001003
	RESULT_ERROR_OUT_OF_HOST_MEMORY    Result = -1
	RESULT_ERROR_OUT_OF_DEVICE_MEMORY  Result = -2
	RESULT_ERROR_INITIALIZATION_FAILED Result = -3
	RESULT_ERROR_DEVICE_LOST           Result = -4
	RESULT_ERROR_MEMORY_MAP_FAILED     Result = -5
	RESULT_ERROR_FORMAT_NOT_SUPPORTED  Result = -11
	RESULT_ERROR_FRAGMENTED_POOL       Result = -12
	RESULT_ERROR_UNKNOWN               Result = -13
	RESULT_ERROR_OUT_OF_POOL_MEMORY    Result = -1000069000
	RESULT_ERROR_SURFACE_LOST          Result = -1000000000
	RESULT_ERROR_NATIVE_WINDOW_IN_USE  Result = -1000000001
	RESULT_ERROR_OUT_OF_DATE           Result = -1000001004
	RESULT_ERROR_VALIDATION_FAILED     Result = -1000011001
)

var resultNames = map[Result]string{
	RESULT_SUCCESS:                     "SUCCESS",
	RESULT_NOT_READY:                   "NOT_READY",
	RESULT_TIMEOUT:                     "TIMEOUT",
	RESULT_INCOMPLETE:                  "INCOMPLETE",
	RESULT_SUBOPTIMAL:                  "SUBOPTIMAL",
	RESULT_ERROR_OUT_OF_HOST_MEMORY:    "ERROR_OUT_OF_HOST_MEMORY",
	RESULT_ERROR_OUT_OF_DEVICE_MEMORY:  "ERROR_OUT_OF_DEVICE_MEMORY",
	RESULT_ERROR_INITIALIZATION_FAILED: "ERROR_INITIALIZATION_FAILED",
	RESULT_ERROR_DEVICE_LOST:           "ERROR_DEVICE_LOST",
	RESULT_ERROR_MEMORY_MAP_FAILED:     "ERROR_MEMORY_MAP_FAILED",
	RESULT_ERROR_FORMAT_NOT_SUPPORTED:  "ERROR_FORMAT_NOT_SUPPORTED",
	RESULT_ERROR_FRAGMENTED_POOL:       "ERROR_FRAGMENTED_POOL",
	RESULT_ERROR_UNKNOWN:               "ERROR_UNKNOWN",
	RESULT_ERROR_OUT_OF_POOL_MEMORY:    "ERROR_OUT_OF_POOL_MEMORY",
	RESULT_ERROR_SURFACE_LOST:          "ERROR_SURFACE_LOST",
	RESULT_ERROR_NATIVE_WINDOW_IN_USE:  "ERROR_NATIVE_WINDOW_IN_USE",
	RESULT_ERROR_OUT_OF_DATE:           "ERROR_OUT_OF_DATE",
	RESULT_ERROR_VALIDATION_FAILED:     "ERROR_VALIDATION_FAILED",
}

func (r Result) String() string {
	if s, ok := resultNames[r]; ok {
		return s
	}
	return fmt.Sprintf("RESULT(%d)", int32(r))
}

func (r Result) Error() string {
	return r.String()
}

func (r Result) IsSuccess() bool {
	return r >= 0
}

// Err returns nil for success codes and the Result itself otherwise.
func (r Result) Err() error {
	if r.IsSuccess() {
		return nil
	}
	return r
}
