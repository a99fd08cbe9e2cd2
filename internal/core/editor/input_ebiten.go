package editor

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// ==============================================
// Ebiten Host Adapter
// ==============================================

// ebitenButtons maps host mouse buttons to singleton button bits.
var ebitenButtons = map[ebiten.MouseButton]int{
	ebiten.MouseButtonLeft:   ButtonLeft,
	ebiten.MouseButtonRight:  ButtonRight,
	ebiten.MouseButtonMiddle: ButtonMiddle,
}

// currentMods folds the held modifier keys into singleton modifier bits.
func currentMods() int {
	mods := 0
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= ModMeta
	}
	return mods
}

// PollEbiten reads the host's input state for the current frame and feeds
// the queue. Call once per host update, before stepping the editor.
func PollEbiten(q *InputQueue) {
	x, y := ebiten.CursorPosition()
	fx, fy := float64(x), float64(y)
	mods := currentMods()

	q.Push(HostEvent{Kind: EventPointerMove, X: fx, Y: fy})

	for button, bit := range ebitenButtons {
		if inpututil.IsMouseButtonJustPressed(button) {
			q.Push(HostEvent{Kind: EventPointerDown, X: fx, Y: fy, Button: bit})
		}
		if inpututil.IsMouseButtonJustReleased(button) {
			q.Push(HostEvent{Kind: EventPointerUp, X: fx, Y: fy, Button: bit})
		}
	}

	if wx, wy := ebiten.Wheel(); wx != 0 || wy != 0 {
		q.Push(HostEvent{Kind: EventWheel, X: wx, Y: wy})
	}

	for _, k := range inpututil.AppendJustPressedKeys(nil) {
		q.Push(HostEvent{Kind: EventKeyDown, Key: int(k), Mods: mods})
	}
	for _, k := range inpututil.AppendJustReleasedKeys(nil) {
		q.Push(HostEvent{Kind: EventKeyUp, Key: int(k), Mods: mods})
	}
}
