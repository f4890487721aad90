package internal

import (
	"image"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"gocv.io/x/gocv/contrib"
)

const DefaultAlgorithm = "kcf"

// marks overlapping an existing object above this IoU are reported
const overlapWarnIoU = 0.5

// Tracker is a single-object tracker. Every gocv tracker implements it.
type Tracker interface {
	Init(frame gocv.Mat, box image.Rectangle) bool
	Update(frame gocv.Mat) (image.Rectangle, bool)
	Close() error
}

type TrackerFactory func() Tracker

// trackers available in the gocv build (core + contrib)
var algorithms = map[string]TrackerFactory{
	"csrt": func() Tracker { return contrib.NewTrackerCSRT() },
	"kcf":  func() Tracker { return contrib.NewTrackerKCF() },
	"mil":  func() Tracker { return gocv.NewTrackerMIL() },
}

// Algorithms returns the supported tracker names, sorted
func Algorithms() []string {
	names := make([]string, 0, len(algorithms))
	for n := range algorithms {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func NewTrackerFactory(name string) (TrackerFactory, error) {
	f, ok := algorithms[name]
	if !ok {
		return nil, errors.Errorf("unknown tracker %q (supported: %s)", name, strings.Join(Algorithms(), ", "))
	}
	return f, nil
}

// TrackedObject couples a tracker with the box it last reported
type TrackedObject struct {
	Id        string
	Index     int
	Algorithm string
	FrameId   int64
	Box       image.Rectangle
	Success   bool
	Updates   int

	tracker Tracker
}

// NewTrackedObject initialises tracker on frame with box. A failed init closes
// the tracker and returns an error.
func NewTrackedObject(tracker Tracker, algorithm string, index int, frameId int64, frame gocv.Mat, box image.Rectangle) (*TrackedObject, error) {
	if tracker == nil {
		return nil, errors.New("nil tracker")
	}
	if box.Empty() {
		tracker.Close()
		return nil, errors.New("empty bounding box")
	}
	if ok := tracker.Init(frame, box); !ok {
		tracker.Close()
		return nil, errors.Errorf("could not initialize %s tracker with %v", algorithm, box)
	}
	return &TrackedObject{
		Id:        uuid.New().String(),
		Index:     index,
		Algorithm: algorithm,
		FrameId:   frameId,
		Box:       box,
		Success:   true,
		tracker:   tracker,
	}, nil
}

// Update runs the tracker against frame. The stored box is only replaced when
// the tracker succeeds.
func (to *TrackedObject) Update(frame gocv.Mat) (image.Rectangle, bool) {
	if to.tracker == nil {
		to.Success = false
		return to.Box, false
	}
	to.Updates++
	rec, ok := to.tracker.Update(frame)
	to.Success = ok
	if ok {
		to.Box = rec
		return rec, true
	}
	return to.Box, false
}

func (to *TrackedObject) Close() {
	if to.tracker != nil {
		to.tracker.Close() // release native resources
		to.tracker = nil
	}
}

func getIoU(bb1, bb2 image.Rectangle) float64 {
	intersect := bb1.Intersect(bb2)
	if intersect.Empty() {
		return 0.0
	}
	interArea := float64(intersect.Dx() * intersect.Dy())
	unionArea := float64(bb1.Dx()*bb1.Dy() + bb2.Dx()*bb2.Dy() - int(interArea))
	return interArea / unionArea
}

// overlapping returns the objects whose last box overlaps box above overlapWarnIoU
func overlapping(objects []*TrackedObject, box image.Rectangle) []*TrackedObject {
	var out []*TrackedObject
	for _, obj := range objects {
		if getIoU(obj.Box, box) > overlapWarnIoU {
			out = append(out, obj)
		}
	}
	return out
}
