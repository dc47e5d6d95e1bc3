package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventBusFiresInRegistrationOrder(t *testing.T) {
	bus := NewEventBus()
	var order []string
	a, b := "a", "b"

	assert.True(t, bus.Register(EVENT_CODE_RESIZED, &a, func(code SystemEventCode, sender, listener interface{}, data EventContext) bool {
		order = append(order, "a")
		return false
	}))
	assert.True(t, bus.Register(EVENT_CODE_RESIZED, &b, func(code SystemEventCode, sender, listener interface{}, data EventContext) bool {
		order = append(order, "b")
		assert.Equal(t, uint32(800), data.Data.U32[0])
		return true
	}))

	ctx := EventContext{}
	ctx.Data.U32[0] = 800
	assert.True(t, bus.Fire(EVENT_CODE_RESIZED, nil, ctx))
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestEventBusHandledStopsPropagation(t *testing.T) {
	bus := NewEventBus()
	a, b := 1, 2
	called := false
	bus.Register(EVENT_CODE_APPLICATION_QUIT, &a, func(SystemEventCode, interface{}, interface{}, EventContext) bool { return true })
	bus.Register(EVENT_CODE_APPLICATION_QUIT, &b, func(SystemEventCode, interface{}, interface{}, EventContext) bool {
		called = true
		return true
	})
	assert.True(t, bus.Fire(EVENT_CODE_APPLICATION_QUIT, nil, EventContext{}))
	assert.False(t, called)
}

func TestEventBusRejectsDuplicateListener(t *testing.T) {
	bus := NewEventBus()
	l := 1
	fn := func(SystemEventCode, interface{}, interface{}, EventContext) bool { return false }
	assert.True(t, bus.Register(EVENT_CODE_KEY_PRESSED, &l, fn))
	assert.False(t, bus.Register(EVENT_CODE_KEY_PRESSED, &l, fn))
}

func TestEventBusUnregister(t *testing.T) {
	bus := NewEventBus()
	l := 1
	bus.Register(EVENT_CODE_KEY_PRESSED, &l, func(SystemEventCode, interface{}, interface{}, EventContext) bool { return true })
	assert.True(t, bus.Unregister(EVENT_CODE_KEY_PRESSED, &l))
	assert.False(t, bus.Unregister(EVENT_CODE_KEY_PRESSED, &l))
	assert.False(t, bus.Fire(EVENT_CODE_KEY_PRESSED, nil, EventContext{}))
}
