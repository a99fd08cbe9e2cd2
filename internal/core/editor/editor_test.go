package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvas-loom/internal/core/ecs"
)

// probePlugin records composition order and exposes its handles.
type probePlugin struct {
	name       string
	registered *bool
	order      *[]string
}

func (p *probePlugin) Name() string { return p.name }

func (p *probePlugin) Register(reg *ecs.Registry) error {
	if p.registered != nil {
		*p.registered = true
	}
	return nil
}

func (p *probePlugin) Setup(e *Editor, w *ecs.World) error {
	*p.order = append(*p.order, p.name)
	return nil
}

func newStartedEditor(t *testing.T, plugins ...Plugin) *Editor {
	t.Helper()
	cfg := DefaultConfig()
	cfg.World.MaxEntities = 16
	e := New(cfg)
	for _, p := range plugins {
		e.Use(p)
	}
	require.NoError(t, e.Start())
	t.Cleanup(e.Close)
	return e
}

func Test_Editor_StartComposesPluginsInAttachOrder(t *testing.T) {
	// Arrange
	var order []string
	registered := false
	a := &probePlugin{name: "a", registered: &registered, order: &order}
	b := &probePlugin{name: "b", order: &order}

	// Act
	newStartedEditor(t, a, b)

	// Assert
	assert.True(t, registered)
	assert.Equal(t, []string{"a", "b"}, order)
}

func Test_Editor_CoreSingletonsRegistered(t *testing.T) {
	// Arrange
	e := newStartedEditor(t)

	// Act & Assert
	for _, name := range []string{
		SingletonFrame, SingletonMouse, SingletonPointer,
		SingletonKeyboard, SingletonScreen, SingletonCamera,
	} {
		_, err := e.World().Singleton(name)
		assert.NoError(t, err, name)
	}
}

func Test_Editor_StepAdvancesFrameSingleton(t *testing.T) {
	// Arrange
	e := newStartedEditor(t)
	frame := e.World().MustSingleton(SingletonFrame)

	// Act
	require.NoError(t, e.Step(1.0 / 60))
	require.NoError(t, e.Step(1.0 / 60))

	// Assert
	row := frame.Read()
	assert.Equal(t, uint32(2), row.U32("tick"))
	assert.InDelta(t, 1.0/60, row.F64("dt"), 1e-9)
}

func Test_Editor_DrainsPointerIntoMouseSingleton(t *testing.T) {
	// Arrange
	e := newStartedEditor(t)
	mouse := e.World().MustSingleton(SingletonMouse)
	pointer := e.World().MustSingleton(SingletonPointer)

	e.Queue().Push(HostEvent{Kind: EventPointerMove, X: 120, Y: 80})
	e.Queue().Push(HostEvent{Kind: EventPointerDown, X: 120, Y: 80, Button: ButtonLeft, Pressure: 0.5})

	// Act
	require.NoError(t, e.Step(0))

	// Assert
	m := mouse.Read()
	assert.Equal(t, float32(120), m.F32("x"))
	assert.Equal(t, float32(80), m.F32("y"))
	assert.Equal(t, uint32(ButtonLeft), m.U32("buttons"))
	p := pointer.Read()
	assert.True(t, p.Bool("down"))
	assert.Equal(t, float32(0.5), p.F32("pressure"))

	// Release clears the button state on the next step.
	e.Queue().Push(HostEvent{Kind: EventPointerUp, X: 121, Y: 81, Button: ButtonLeft})
	require.NoError(t, e.Step(0))
	assert.Equal(t, uint32(0), mouse.Read().U32("buttons"))
	assert.False(t, pointer.Read().Bool("down"))
}

func Test_Editor_WheelAccumulatesWithinTickAndResets(t *testing.T) {
	// Arrange
	e := newStartedEditor(t)
	mouse := e.World().MustSingleton(SingletonMouse)
	e.Queue().Push(HostEvent{Kind: EventWheel, X: 0, Y: 1})
	e.Queue().Push(HostEvent{Kind: EventWheel, X: 0, Y: 2})

	// Act
	require.NoError(t, e.Step(0))

	// Assert
	assert.Equal(t, float32(3), mouse.Read().F32("wheel_y"))

	// A wheel-less tick resets the delta.
	require.NoError(t, e.Step(0))
	assert.Equal(t, float32(0), mouse.Read().F32("wheel_y"))
}

func Test_Editor_KeyboardTracksHeldKeys(t *testing.T) {
	// Arrange
	e := newStartedEditor(t)
	keyboard := e.World().MustSingleton(SingletonKeyboard)
	e.Queue().Push(HostEvent{Kind: EventKeyDown, Key: 42, Mods: ModShift})
	e.Queue().Push(HostEvent{Kind: EventKeyDown, Key: 7, Mods: ModShift})

	// Act
	require.NoError(t, e.Step(0))

	// Assert
	row := keyboard.Read()
	assert.Equal(t, 2.0, row.Num("count"))
	assert.Equal(t, 42.0, row.NumAt("keys", 0))
	assert.Equal(t, 7.0, row.NumAt("keys", 1))
	assert.Equal(t, float64(ModShift), row.Num("mods"))

	// Releasing one key shifts the buffer.
	e.Queue().Push(HostEvent{Kind: EventKeyUp, Key: 42, Mods: 0})
	require.NoError(t, e.Step(0))
	row = keyboard.Read()
	assert.Equal(t, 1.0, row.Num("count"))
	assert.Equal(t, 7.0, row.NumAt("keys", 0))
	assert.Equal(t, []int{7}, e.HeldKeys())
}

func Test_Editor_ResizeUpdatesScreenSingleton(t *testing.T) {
	// Arrange
	e := newStartedEditor(t)
	screen := e.World().MustSingleton(SingletonScreen)
	e.Queue().Push(HostEvent{Kind: EventResize, Width: 1920, Height: 1080, Scale: 2})

	// Act
	require.NoError(t, e.Step(0))

	// Assert
	row := screen.Read()
	assert.Equal(t, float32(1920), row.F32("width"))
	assert.Equal(t, float32(1080), row.F32("height"))
	assert.Equal(t, float32(2), row.F32("scale"))
}

func Test_Editor_InputVisibleToSameTickSystems(t *testing.T) {
	// Arrange: a plugin system in the update phase reads the mouse state
	// drained at the start of the same tick.
	var seenX float32
	plugin := &systemPlugin{setup: func(e *Editor, w *ecs.World) error {
		mouse := w.MustSingleton(SingletonMouse)
		return w.AddSystem("probe", ecs.PhaseUpdate, ecs.PriorityNormal, func(*ecs.Context) error {
			seenX = mouse.Read().F32("x")
			return nil
		})
	}}
	e := newStartedEditor(t, plugin)
	e.Queue().Push(HostEvent{Kind: EventPointerMove, X: 55, Y: 0})

	// Act
	require.NoError(t, e.Step(0))

	// Assert
	assert.Equal(t, float32(55), seenX)
}

func Test_Editor_UseAfterStartPanics(t *testing.T) {
	// Arrange
	e := newStartedEditor(t)

	// Act & Assert
	assert.Panics(t, func() { e.Use(&probePlugin{name: "late", order: &[]string{}}) })
}

// systemPlugin wires an arbitrary setup function.
type systemPlugin struct {
	setup func(e *Editor, w *ecs.World) error
}

func (p *systemPlugin) Name() string                  { return "system" }
func (p *systemPlugin) Register(*ecs.Registry) error  { return nil }
func (p *systemPlugin) Setup(e *Editor, w *ecs.World) error {
	return p.setup(e, w)
}
