package editor

import (
	"math"

	"canvas-loom/internal/core/ecs"
)

// ==============================================
// Camera Plugin
// ==============================================

// CameraPlugin folds wheel and drag input into the camera singleton during
// the capture phase: wheel zooms around the cursor, middle-drag pans.
// It maintains state only; rendering consumes the singleton elsewhere.
type CameraPlugin struct {
	// ZoomStep scales one wheel notch. Defaults to 1.1.
	ZoomStep float64
	// MinZoom / MaxZoom clamp the zoom factor. Defaults: 0.1 and 32.
	MinZoom float64
	MaxZoom float64

	camera *ecs.SingletonStore
	mouse  *ecs.SingletonStore

	dragging    bool
	lastX, lastY float64
}

// Name implements Plugin.
func (p *CameraPlugin) Name() string { return "camera" }

// Register implements Plugin; the camera singleton is a core definition.
func (p *CameraPlugin) Register(reg *ecs.Registry) error { return nil }

// Setup implements Plugin.
func (p *CameraPlugin) Setup(e *Editor, w *ecs.World) error {
	if p.ZoomStep == 0 {
		p.ZoomStep = 1.1
	}
	if p.MinZoom == 0 {
		p.MinZoom = 0.1
	}
	if p.MaxZoom == 0 {
		p.MaxZoom = 32
	}
	p.camera = w.MustSingleton(SingletonCamera)
	p.mouse = w.MustSingleton(SingletonMouse)
	return w.AddSystem("camera.capture", ecs.PhaseCapture, ecs.PriorityHigh, p.capture)
}

func (p *CameraPlugin) capture(ctx *ecs.Context) error {
	m := p.mouse.Read()
	x := m.F64("x")
	y := m.F64("y")
	wheel := m.F64("wheel_y")
	middle := m.U32("buttons")&ButtonMiddle != 0

	cam := p.camera.Read()
	camX := cam.F64("x")
	camY := cam.F64("y")
	zoom := cam.F64("zoom")

	changed := false

	if wheel != 0 {
		next := clamp(zoom*math.Pow(p.ZoomStep, wheel), p.MinZoom, p.MaxZoom)
		if next != zoom {
			// Keep the world point under the cursor fixed while zooming.
			camX += x/zoom - x/next
			camY += y/zoom - y/next
			zoom = next
			changed = true
		}
	}

	if middle {
		if p.dragging {
			camX -= (x - p.lastX) / zoom
			camY -= (y - p.lastY) / zoom
			changed = changed || x != p.lastX || y != p.lastY
		}
		p.dragging = true
		p.lastX, p.lastY = x, y
	} else {
		p.dragging = false
	}

	if !changed {
		return nil
	}
	return p.camera.Copy(ecs.Data{"x": camX, "y": camY, "zoom": zoom})
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
