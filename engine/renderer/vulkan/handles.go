package vulkan

import (
	"sync"

	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
)

// handleTable maps opaque handles to the objects behind them.
type handleTable[T any] struct {
	mu      sync.Mutex
	objects map[metadata.Handle]T
}

func newHandleTable[T any]() *handleTable[T] {
	return &handleTable[T]{objects: make(map[metadata.Handle]T)}
}

func (t *handleTable[T]) put(h metadata.Handle, obj T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.objects[h] = obj
}

// get returns the zero value for unknown handles, which is the device API's
// null object.
func (t *handleTable[T]) get(h metadata.Handle) T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.objects[h]
}

func (t *handleTable[T]) lookup(h metadata.Handle) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	obj, ok := t.objects[h]
	return obj, ok
}

func (t *handleTable[T]) take(h metadata.Handle) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	obj, ok := t.objects[h]
	if ok {
		delete(t.objects, h)
	}
	return obj, ok
}

func (t *handleTable[T]) getAll(hs []metadata.Handle) []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]T, len(hs))
	for i, h := range hs {
		out[i] = t.objects[h]
	}
	return out
}

func (t *handleTable[T]) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.objects)
}
