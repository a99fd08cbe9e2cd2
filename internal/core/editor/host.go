package editor

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// ==============================================
// Ebiten Host
// ==============================================

// Host drives an editor from the Ebiten game loop: every host update polls
// input and steps one tick. Drawing stays on the host side; the runtime
// never touches the screen.
type Host struct {
	editor *Editor
	width  int
	height int
}

// NewHost wraps a started editor for the given logical screen size.
func NewHost(e *Editor, width, height int) *Host {
	return &Host{editor: e, width: width, height: height}
}

// Update implements ebiten.Game.
func (h *Host) Update() error {
	PollEbiten(h.editor.Queue())
	dt := 1.0 / float64(ebiten.TPS())
	return h.editor.Step(dt)
}

// Draw implements ebiten.Game. The host clears its surface; rendering is a
// plugin concern layered on top.
func (h *Host) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{24, 24, 28, 255})
}

// Layout implements ebiten.Game and reports size changes as resize events.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != h.width || outsideHeight != h.height {
		h.width, h.height = outsideWidth, outsideHeight
		h.editor.Queue().Push(HostEvent{
			Kind:   EventResize,
			Width:  float64(outsideWidth),
			Height: float64(outsideHeight),
			Scale:  ebiten.Monitor().DeviceScaleFactor(),
		})
	}
	return h.width, h.height
}

// Run opens the window and blocks until the host exits.
func (h *Host) Run(title string) error {
	ebiten.SetWindowSize(h.width, h.height)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(h)
}
