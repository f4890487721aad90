package internal

import (
	"context"
	"image"

	api "github.com/etesami/multi-object-tracking/api"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// fakeSource yields frames blank frames of cols x rows, then end-of-stream
type fakeSource struct {
	frames int
	cols   int
	rows   int
	reads  int
	closed int
}

func (s *fakeSource) Read(m *gocv.Mat) bool {
	s.reads++
	if s.reads > s.frames {
		return false
	}
	img := gocv.NewMatWithSize(s.rows, s.cols, gocv.MatTypeCV8UC3)
	defer img.Close()
	img.CopyTo(m)
	return true
}

func (s *fakeSource) Close() error {
	s.closed++
	return nil
}

// fakeDisplay answers the n-th key poll with keys[n] (1-based), -1 otherwise
type fakeDisplay struct {
	keys      map[int]int
	selection image.Rectangle
	shows     int
	polls     int
	selects   int
	shownSize image.Point
	// lit pixels of the frame offered for the last selection
	selectLit int
	closed    int
}

func (d *fakeDisplay) Show(frame gocv.Mat) {
	d.shows++
	d.shownSize = image.Pt(frame.Cols(), frame.Rows())
}

func (d *fakeDisplay) PollKey(delayMs int) int {
	d.polls++
	if k, ok := d.keys[d.polls]; ok {
		return k
	}
	return -1
}

func (d *fakeDisplay) SelectBox(frame gocv.Mat) image.Rectangle {
	d.selects++
	d.selectLit = litPixels(frame)
	return d.selection
}

func (d *fakeDisplay) Close() error {
	d.closed++
	return nil
}

// fakeTracker moves its box one pixel right per successful update. results
// scripts the success flag of each update; missing entries succeed.
type fakeTracker struct {
	initOk  bool
	results []bool
	box     image.Rectangle
	initLit int
	inits   int
	updates int
	closed  int
}

func (t *fakeTracker) Init(frame gocv.Mat, box image.Rectangle) bool {
	t.inits++
	t.initLit = litPixels(frame)
	t.box = box
	return t.initOk
}

func (t *fakeTracker) Update(frame gocv.Mat) (image.Rectangle, bool) {
	t.updates++
	ok := true
	if t.updates <= len(t.results) {
		ok = t.results[t.updates-1]
	}
	if !ok {
		return image.Rectangle{}, false
	}
	t.box = t.box.Add(image.Pt(1, 0))
	return t.box, true
}

func (t *fakeTracker) Close() error {
	t.closed++
	return nil
}

// trackerPool hands out the given trackers in order and records how many were made
type trackerPool struct {
	trackers []*fakeTracker
	made     int
}

func (p *trackerPool) factory() TrackerFactory {
	return func() Tracker {
		t := p.trackers[p.made]
		p.made++
		return t
	}
}

// fakeSink records every published frame result
type fakeSink struct {
	frames []api.FrameResult
	fail   bool
}

func (s *fakeSink) Publish(_ context.Context, frame api.FrameResult) (float64, error) {
	s.frames = append(s.frames, frame)
	if s.fail {
		return -1, errors.New("sink unreachable")
	}
	return 1.5, nil
}

// litPixels counts the non-black pixels of a BGR frame
func litPixels(frame gocv.Mat) int {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
	return gocv.CountNonZero(gray)
}
