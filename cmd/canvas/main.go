package main

import (
	"log"

	"canvas-loom/internal/core/ecs"
	"canvas-loom/internal/core/editor"
)

// trailPlugin spawns a short-lived dot at the pointer whenever a button is
// held, and ages dots out on a worker system. It exists to exercise the
// editor wiring end to end; drawing is left to the host.
type trailPlugin struct {
	dot   *ecs.ComponentStore
	query *ecs.Query
}

func (p *trailPlugin) Name() string { return "trail" }

func (p *trailPlugin) Register(reg *ecs.Registry) error {
	dot := ecs.NewComponent("dot")
	dot.Tuple("pos", ecs.FieldF32, 2).F32("ttl", 1.5)
	reg.AddComponent(dot)
	return nil
}

func (p *trailPlugin) Setup(e *editor.Editor, w *ecs.World) error {
	p.dot = w.MustComponent("dot")
	p.query = w.NewQuery(ecs.Q().With(p.dot))
	mouse := w.MustSingleton(editor.SingletonMouse)

	if err := w.AddSystem("trail.spawn", ecs.PhaseUpdate, ecs.PriorityNormal, func(ctx *ecs.Context) error {
		m := mouse.Read()
		if m.U32("buttons") == 0 {
			return nil
		}
		id, err := ctx.CreateEntity()
		if err != nil {
			return err
		}
		return p.dot.Add(id, ecs.Data{"pos": []float64{m.F64("x"), m.F64("y")}})
	}); err != nil {
		return err
	}

	if err := w.AddWorkerSystem(ecs.WorkerSystemConfig{
		Name:     "trail.age",
		Phase:    ecs.PhasePostUpdate,
		Priority: ecs.PriorityNormal,
		Threads:  2,
		Entry: func(wc *ecs.WorkerContext) error {
			dot, err := wc.Component("dot")
			if err != nil {
				return err
			}
			wc.EachAlive(func(id ecs.EntityID) {
				// Partition by replica so two goroutines never write the
				// same entity.
				if int(id)%wc.Replicas() != wc.Replica() {
					return
				}
				if !dot.Has(id) {
					return
				}
				row := dot.Write(id)
				row.SetF32("ttl", row.F32("ttl")-1.0/60.0)
			})
			return nil
		},
	}); err != nil {
		return err
	}

	return w.AddSystem("trail.reap", ecs.PhaseEpilogue, ecs.PriorityNormal, func(ctx *ecs.Context) error {
		for _, id := range p.query.Current(ctx) {
			if p.dot.Read(id).F32("ttl") <= 0 {
				ctx.RemoveEntity(id)
			}
		}
		return nil
	})
}

func main() {
	cfg := editor.DefaultConfig()
	cfg.LogLevel = "info"

	e := editor.New(cfg)
	e.Use(&editor.CameraPlugin{})
	e.Use(&trailPlugin{})
	if err := e.Start(); err != nil {
		log.Fatal(err)
	}
	defer e.Close()

	if err := editor.NewHost(e, 1280, 720).Run("Canvas Loom"); err != nil {
		log.Fatal(err)
	}
}
