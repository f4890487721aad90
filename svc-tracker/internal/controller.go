package internal

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	api "github.com/etesami/multi-object-tracking/api"
	"github.com/etesami/multi-object-tracking/pkg/logger"
	mt "github.com/etesami/multi-object-tracking/pkg/metric"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

type State int

const (
	StateRunning State = iota
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var boxColor = color.RGBA{0, 255, 0, 0}

// BoxPublisher exports frame results downstream and reports the RTT in ms
type BoxPublisher interface {
	Publish(ctx context.Context, frame api.FrameResult) (float64, error)
}

// Controller runs the frame loop. It owns the source, the display and every
// tracked object and releases all of them when it terminates.
type Controller struct {
	Config  *Config
	Source  FrameSource
	Display Display
	Factory TrackerFactory

	// optional
	Sink   BoxPublisher
	Metric *mt.Metric

	state   State
	objects []*TrackedObject
	frameId int64
	last    api.FrameResult

	raw    gocv.Mat // frame as read
	frame  gocv.Mat // resized, what the trackers see
	canvas gocv.Mat // resized with overlays, what the user sees
}

func NewController(cfg *Config, source FrameSource, display Display, factory TrackerFactory) *Controller {
	return &Controller{
		Config:  cfg,
		Source:  source,
		Display: display,
		Factory: factory,
		state:   StateRunning,
		raw:     gocv.NewMat(),
		frame:   gocv.NewMat(),
		canvas:  gocv.NewMat(),
	}
}

func (c *Controller) State() State {
	return c.state
}

// Objects returns the active set in the order the objects were marked
func (c *Controller) Objects() []*TrackedObject {
	return c.objects
}

// LastResult returns the tracker outcomes of the last rendered frame
func (c *Controller) LastResult() api.FrameResult {
	return c.last
}

// Run loops until end-of-stream, the quit key or ctx cancellation. Resources
// are released on every exit path.
func (c *Controller) Run(ctx context.Context) error {
	if c.state == StateTerminated {
		return errors.New("controller already terminated")
	}
	defer c.Close()

	for {
		if err := ctx.Err(); err != nil {
			logger.S().Infow("tracking loop interrupted", "reason", err, "frames", c.frameId)
			return nil
		}
		if !c.step(ctx) {
			return nil
		}
	}
}

// step runs one iteration and reports whether the loop keeps running
func (c *Controller) step(ctx context.Context) bool {
	st := time.Now()

	if ok := c.Source.Read(&c.raw); !ok || c.raw.Empty() {
		logger.S().Infow("end of stream", "frames", c.frameId)
		increaseEndFrames(c.Metric)
		return false
	}
	c.frameId++
	increaseReadFrames(c.Metric)

	ResizeToWidth(c.raw, &c.frame, c.Config.ImageWidth)

	res := c.updateTrackers()
	c.frame.CopyTo(&c.canvas)
	drawBoxes(&c.canvas, res, c.Config.ShowLabels)
	c.last = res

	c.publish(ctx, res)
	c.Display.Show(c.canvas)
	addProcessingTime(c.Metric, st)

	switch keyCode(c.Display.PollKey(c.Config.KeyDelayMs)) {
	case KeySelect:
		c.markObject()
	case KeyQuit:
		logger.S().Infow("quit requested", "frames", c.frameId)
		return false
	}
	return true
}

func (c *Controller) updateTrackers() api.FrameResult {
	res := api.FrameResult{
		Timestamp: time.Now(),
		SourceId:  c.Config.SourceId,
		FrameId:   c.frameId,
		Width:     c.frame.Cols(),
		Height:    c.frame.Rows(),
		Boxes:     make([]api.TrackedBox, 0, len(c.objects)),
	}
	for _, obj := range c.objects {
		box, ok := obj.Update(c.frame)
		addTrackerUpdate(c.Metric, ok)
		if !ok {
			logger.S().Debugw("tracker lost object", "id", obj.Id, "frame", c.frameId)
		}
		res.Boxes = append(res.Boxes, api.TrackedBox{
			ObjectId: obj.Id,
			Index:    obj.Index,
			Box:      box,
			Success:  ok,
		})
	}
	return res
}

// markObject lets the user drag a box over the displayed frame and starts a
// tracker on it. The tracker is initialised on the frame without overlays.
func (c *Controller) markObject() {
	box := c.Display.SelectBox(c.canvas)
	box = box.Intersect(image.Rect(0, 0, c.frame.Cols(), c.frame.Rows()))
	if box.Empty() {
		logger.S().Info("box selection cancelled")
		return
	}

	for _, other := range overlapping(c.objects, box) {
		logger.S().Warnw("marked box overlaps a tracked object", "index", other.Index, "iou", getIoU(other.Box, box))
	}

	obj, err := NewTrackedObject(c.Factory(), c.Config.Tracker, len(c.objects), c.frameId, c.frame, box)
	if err != nil {
		logger.S().Warnw("could not add tracker", "frame", c.frameId, "error", err)
		return
	}
	c.objects = append(c.objects, obj)
	setActiveTrackers(c.Metric, len(c.objects))
	logger.S().Infow("tracker added",
		"id", obj.Id,
		"index", obj.Index,
		"algorithm", obj.Algorithm,
		"box", box.String(),
		"frame", c.frameId,
	)
}

func (c *Controller) publish(ctx context.Context, res api.FrameResult) {
	if c.Sink == nil {
		return
	}
	rtt, err := c.Sink.Publish(ctx, res)
	addPublished(c.Metric, rtt, err)
	if err != nil {
		logger.S().Warnw("error publishing frame", "frame", res.FrameId, "error", err)
	}
}

// drawBoxes renders every successful box and returns how many were drawn
func drawBoxes(img *gocv.Mat, res api.FrameResult, labels bool) int {
	drawn := res.Drawn()
	for _, b := range drawn {
		gocv.Rectangle(img, b.Box, boxColor, 2)
		if labels {
			gocv.PutText(img, fmt.Sprintf("#%d", b.Index), image.Pt(b.Box.Min.X, b.Box.Min.Y-5), gocv.FontHersheyPlain, 1.0, boxColor, 1)
		}
	}
	return len(drawn)
}

// Close terminates the controller. It is safe to call more than once.
func (c *Controller) Close() {
	if c.state == StateTerminated {
		return
	}
	c.state = StateTerminated

	for _, obj := range c.objects {
		obj.Close()
	}
	if c.Source != nil {
		if err := c.Source.Close(); err != nil {
			logger.S().Warnw("error closing video source", "error", err)
		}
	}
	if c.Display != nil {
		if err := c.Display.Close(); err != nil {
			logger.S().Warnw("error closing display", "error", err)
		}
	}
	c.raw.Close()
	c.frame.Close()
	c.canvas.Close()
	setActiveTrackers(c.Metric, 0)
}
