package editor

import (
	"canvas-loom/internal/core/ecs"
)

// Core singleton names. Plugins read these through the world.
const (
	SingletonFrame    = "frame"
	SingletonMouse    = "mouse"
	SingletonPointer  = "pointer"
	SingletonKeyboard = "keyboard"
	SingletonScreen   = "screen"
	SingletonCamera   = "camera"
)

// MaxHeldKeys bounds the keyboard singleton's key buffer.
const MaxHeldKeys = 16

// Mouse button bits within the mouse singleton's buttons field.
const (
	ButtonLeft   = 1 << 0
	ButtonRight  = 1 << 1
	ButtonMiddle = 1 << 2
)

// Keyboard modifier bits.
const (
	ModShift = 1 << 0
	ModCtrl  = 1 << 1
	ModAlt   = 1 << 2
	ModMeta  = 1 << 3
)

// coreSingletons builds fresh definitions for the editor's input state.
// Definitions seal at world construction, so every editor gets its own set.
func coreSingletons() []*ecs.SingletonDef {
	frame := ecs.NewSingleton(SingletonFrame)
	frame.U32("tick", 0).F64("dt", 0)

	mouse := ecs.NewSingleton(SingletonMouse)
	mouse.F32("x", 0).F32("y", 0).U8("buttons", 0).F32("wheel_x", 0).F32("wheel_y", 0)

	pointer := ecs.NewSingleton(SingletonPointer)
	pointer.F32("x", 0).F32("y", 0).F32("pressure", 0).Bool("down", false)

	keyboard := ecs.NewSingleton(SingletonKeyboard)
	keyboard.Buffer("keys", ecs.FieldU16, MaxHeldKeys).U8("count", 0).U8("mods", 0)

	screen := ecs.NewSingleton(SingletonScreen)
	screen.F32("width", 0).F32("height", 0).F32("scale", 1)

	camera := ecs.NewSingleton(SingletonCamera)
	camera.F32("x", 0).F32("y", 0).F32("zoom", 1)

	return []*ecs.SingletonDef{frame, mouse, pointer, keyboard, screen, camera}
}
