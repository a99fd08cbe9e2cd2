// Package editor composes the ECS runtime into a host-facing layer: it owns
// the phase registry, assembles plugins into one world, converts host UI
// signals into input singletons at the start of each tick, and drives the
// scheduler.
package editor

import (
	"fmt"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"canvas-loom/internal/core/ecs"
)

// ==============================================
// Configuration
// ==============================================

// Config configures one editor instance.
type Config struct {
	World ecs.WorldConfig `json:"world"`

	// LogLevel is a zerolog level name ("debug", "info", ...). Empty
	// disables logging.
	LogLevel string `json:"log_level"`
	// LogFormat selects "console" or "json" output.
	LogFormat string `json:"log_format"`

	// Metrics, when set, receives the world's Prometheus instruments.
	Metrics prometheus.Registerer `json:"-"`
}

// DefaultConfig returns an editor configuration with logging disabled.
func DefaultConfig() Config {
	return Config{World: ecs.DefaultWorldConfig()}
}

// newLogger builds the zerolog logger the runtime shares.
func newLogger(cfg Config) zerolog.Logger {
	if cfg.LogLevel == "" {
		return zerolog.Nop()
	}
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr)
	if strings.ToLower(cfg.LogFormat) != "json" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return logger.Level(level).With().Timestamp().Logger()
}

// ==============================================
// Plugins
// ==============================================

// Plugin is one composable unit of editor functionality. Register runs
// before world construction and contributes definitions; Setup runs after
// and registers systems and queries.
type Plugin interface {
	Name() string
	Register(reg *ecs.Registry) error
	Setup(e *Editor, w *ecs.World) error
}

// ==============================================
// Editor
// ==============================================

// Editor owns one world plus the host-facing plumbing around it.
type Editor struct {
	cfg     Config
	log     zerolog.Logger
	world   *ecs.World
	plugins []Plugin
	queue   *InputQueue
	adapter ecs.StoreAdapter
	started bool

	// Singleton handles, resolved at Start.
	frame    *ecs.SingletonStore
	mouse    *ecs.SingletonStore
	pointer  *ecs.SingletonStore
	keyboard *ecs.SingletonStore
	screen   *ecs.SingletonStore

	// Input state folded across drained events.
	buttons  uint8
	held     []int // key codes in press order, oldest first
	mods     int
	wheelX   float64
	wheelY   float64
	mouseX   float64
	mouseY   float64
	pressure float64
	down     bool
}

// New creates an editor. Plugins attach with Use before Start.
func New(cfg Config) *Editor {
	log := newLogger(cfg)
	cfg.World.Logger = log
	return &Editor{cfg: cfg, log: log, queue: NewInputQueue()}
}

// Use attaches a plugin. Panics after Start: composition is construction-time.
func (e *Editor) Use(p Plugin) *Editor {
	if e.started {
		panic("editor: Use after Start")
	}
	e.plugins = append(e.plugins, p)
	return e
}

// SetAdapter installs the external store adapter. Must precede Start.
func (e *Editor) SetAdapter(a ecs.StoreAdapter) {
	e.adapter = a
}

// Queue returns the host input queue.
func (e *Editor) Queue() *InputQueue { return e.queue }

// World returns the composed world; nil before Start.
func (e *Editor) World() *ecs.World { return e.world }

// Start builds the world from the core singletons plus every plugin's
// definitions, wires the input drain into the input phase, and runs each
// plugin's setup in attach order.
func (e *Editor) Start() error {
	if e.started {
		return fmt.Errorf("editor: started twice")
	}

	reg := ecs.NewRegistry()
	reg.AddSingleton(coreSingletons()...)
	for _, p := range e.plugins {
		if err := p.Register(reg); err != nil {
			return fmt.Errorf("plugin %q register: %w", p.Name(), err)
		}
	}

	world, err := ecs.NewWorld(e.cfg.World, reg)
	if err != nil {
		return err
	}
	e.world = world

	e.frame = world.MustSingleton(SingletonFrame)
	e.mouse = world.MustSingleton(SingletonMouse)
	e.pointer = world.MustSingleton(SingletonPointer)
	e.keyboard = world.MustSingleton(SingletonKeyboard)
	e.screen = world.MustSingleton(SingletonScreen)

	if err := world.AddSystem("editor.input", ecs.PhaseInput, ecs.PriorityHighest, e.drainInput); err != nil {
		return err
	}
	for _, p := range e.plugins {
		if err := p.Setup(e, world); err != nil {
			return fmt.Errorf("plugin %q setup: %w", p.Name(), err)
		}
	}

	if e.adapter != nil {
		if err := world.SetAdapter(e.adapter); err != nil {
			return err
		}
	}
	if e.cfg.Metrics != nil {
		if err := world.RegisterMetrics(e.cfg.Metrics); err != nil {
			return err
		}
	}

	e.started = true
	e.log.Info().Int("plugins", len(e.plugins)).Msg("editor started")
	return nil
}

// Step runs one tick with the given delta time.
func (e *Editor) Step(dt float64) error {
	if !e.started {
		return fmt.Errorf("editor: Step before Start")
	}
	return e.world.Tick(dt)
}

// Close stops worker replicas and releases the world.
func (e *Editor) Close() {
	if e.world != nil {
		e.world.Close()
	}
}

// ==============================================
// Input Drain
// ==============================================

// drainInput folds every queued host event into the input singletons. It is
// the only work of the input phase for main systems; it runs at the highest
// priority so every later system of the tick sees this tick's input.
func (e *Editor) drainInput(ctx *ecs.Context) error {
	e.wheelX, e.wheelY = 0, 0
	resized := false
	var width, height, scale float64

	for _, ev := range e.queue.Drain() {
		switch ev.Kind {
		case EventPointerMove:
			e.mouseX, e.mouseY = ev.X, ev.Y
			e.pressure = ev.Pressure
		case EventPointerDown:
			e.buttons |= uint8(ev.Button)
			e.down = true
			e.mouseX, e.mouseY = ev.X, ev.Y
			e.pressure = ev.Pressure
		case EventPointerUp:
			e.buttons &^= uint8(ev.Button)
			e.down = e.buttons != 0
			e.mouseX, e.mouseY = ev.X, ev.Y
		case EventWheel:
			e.wheelX += ev.X
			e.wheelY += ev.Y
		case EventKeyDown:
			e.mods = ev.Mods
			e.holdKey(ev.Key)
		case EventKeyUp:
			e.mods = ev.Mods
			e.releaseKey(ev.Key)
		case EventResize:
			resized = true
			width, height, scale = ev.Width, ev.Height, ev.Scale
		}
	}

	if err := e.frame.Copy(ecs.Data{"tick": ctx.Tick(), "dt": ctx.DT()}); err != nil {
		return err
	}
	if err := e.mouse.Copy(ecs.Data{
		"x": e.mouseX, "y": e.mouseY, "buttons": e.buttons,
		"wheel_x": e.wheelX, "wheel_y": e.wheelY,
	}); err != nil {
		return err
	}
	if err := e.pointer.Copy(ecs.Data{
		"x": e.mouseX, "y": e.mouseY, "pressure": e.pressure, "down": e.down,
	}); err != nil {
		return err
	}
	if err := e.writeKeyboard(); err != nil {
		return err
	}
	if resized {
		if scale == 0 {
			scale = 1
		}
		if err := e.screen.Copy(ecs.Data{"width": width, "height": height, "scale": scale}); err != nil {
			return err
		}
	}
	return nil
}

func (e *Editor) holdKey(code int) {
	for _, k := range e.held {
		if k == code {
			return
		}
	}
	e.held = append(e.held, code)
}

func (e *Editor) releaseKey(code int) {
	for i, k := range e.held {
		if k == code {
			e.held = append(e.held[:i], e.held[i+1:]...)
			return
		}
	}
}

// writeKeyboard publishes the held-key set. The buffer is bounded; when
// more keys are held than fit, the most recent presses win.
func (e *Editor) writeKeyboard() error {
	keys := e.held
	if len(keys) > MaxHeldKeys {
		keys = keys[len(keys)-MaxHeldKeys:]
	}
	row := e.keyboard.Write()
	for i := 0; i < MaxHeldKeys; i++ {
		v := 0.0
		if i < len(keys) {
			v = float64(keys[i])
		}
		row.SetNumAt("keys", i, v)
	}
	row.SetNum("count", float64(len(keys)))
	row.SetNum("mods", float64(e.mods))
	return nil
}

// HeldKeys returns the current held key codes, oldest press first.
func (e *Editor) HeldKeys() []int {
	out := make([]int, len(e.held))
	copy(out, e.held)
	return out
}
