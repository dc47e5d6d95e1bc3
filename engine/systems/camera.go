package systems

import (
	"fmt"

	"github.com/vstokstad/vulkan-eng/engine/core"
	"github.com/vstokstad/vulkan-eng/engine/renderer/components"
)

type cameraLookup struct {
	camera         *components.Camera
	referenceCount uint16
}

// CameraSystem hands out reference counted cameras by name. The default
// camera always exists and is never released.
type CameraSystem struct {
	maxCameraCount uint16
	cameras        map[string]*cameraLookup
	defaultCamera  *components.Camera
}

func NewCameraSystem(maxCameraCount uint16) (*CameraSystem, error) {
	if maxCameraCount == 0 {
		err := fmt.Errorf("func NewCameraSystem - maxCameraCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	return &CameraSystem{
		maxCameraCount: maxCameraCount,
		cameras:        make(map[string]*cameraLookup, maxCameraCount),
		defaultCamera:  components.NewCamera(),
	}, nil
}

// Acquire returns the camera registered under name, creating it on first
// use. Each call must be paired with a Release.
func (cs *CameraSystem) Acquire(name string) (*components.Camera, error) {
	if name == components.DEFAULT_CAMERA_NAME {
		return cs.defaultCamera, nil
	}
	lookup, ok := cs.cameras[name]
	if !ok {
		if len(cs.cameras) >= int(cs.maxCameraCount) {
			err := fmt.Errorf("func Acquire - no free camera slot for `%s`, max is %d", name, cs.maxCameraCount)
			core.LogError(err.Error())
			return nil, err
		}
		core.LogDebug("Creating new camera named '%s'...", name)
		lookup = &cameraLookup{camera: components.NewCamera()}
		cs.cameras[name] = lookup
	}
	lookup.referenceCount++
	return lookup.camera, nil
}

// Release drops one reference. The camera is forgotten when none are left.
func (cs *CameraSystem) Release(name string) {
	if name == components.DEFAULT_CAMERA_NAME {
		core.LogDebug("Cannot release default camera. Nothing was done.")
		return
	}
	lookup, ok := cs.cameras[name]
	if !ok {
		core.LogWarn("camera `%s` is not registered. Nothing was done.", name)
		return
	}
	lookup.referenceCount--
	if lookup.referenceCount == 0 {
		lookup.camera.Reset()
		delete(cs.cameras, name)
	}
}

func (cs *CameraSystem) GetDefault() *components.Camera {
	return cs.defaultCamera
}

// SetAspect updates the projection of every live camera.
func (cs *CameraSystem) SetAspect(aspect float32) {
	cs.defaultCamera.SetAspect(aspect)
	for _, l := range cs.cameras {
		l.camera.SetAspect(aspect)
	}
}

func (cs *CameraSystem) Count() int {
	return len(cs.cameras)
}
