package internal

import (
	"image"

	"gocv.io/x/gocv"
)

// Key bindings, compared on the low byte of the polled key
const (
	KeySelect = 's'
	KeyQuit   = 'q'
)

// Display shows frames and collects keyboard and mouse input
type Display interface {
	Show(frame gocv.Mat)
	PollKey(delayMs int) int
	SelectBox(frame gocv.Mat) image.Rectangle
	Close() error
}

// WindowDisplay is a Display backed by a highgui window
type WindowDisplay struct {
	window *gocv.Window
}

func NewWindowDisplay(name string) *WindowDisplay {
	return &WindowDisplay{window: gocv.NewWindow(name)}
}

func (d *WindowDisplay) Show(frame gocv.Mat) {
	d.window.IMShow(frame)
}

func (d *WindowDisplay) PollKey(delayMs int) int {
	return d.window.WaitKey(delayMs)
}

// SelectBox blocks until the user drags a rectangle and confirms it with
// space or enter. Cancelling with c returns an empty rectangle.
func (d *WindowDisplay) SelectBox(frame gocv.Mat) image.Rectangle {
	return d.window.SelectROI(frame)
}

func (d *WindowDisplay) Close() error {
	return d.window.Close()
}

// keyCode masks the polled key to its low byte; no key (-1) maps to 0xFF
func keyCode(key int) int {
	return key & 0xFF
}
