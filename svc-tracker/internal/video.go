package internal

import (
	"context"
	"image"
	"math"
	"time"

	"github.com/etesami/multi-object-tracking/pkg/logger"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// FrameSource is a sequential source of frames. *gocv.VideoCapture satisfies it.
type FrameSource interface {
	Read(m *gocv.Mat) bool
	Close() error
}

// OpenFrameSource opens the video file in cfg.VideoSource, or the camera
// cfg.Device when no file is given. Cancelling ctx cuts the camera warm-up
// short and closes the capture.
func OpenFrameSource(ctx context.Context, cfg *Config) (FrameSource, error) {
	var (
		capture *gocv.VideoCapture
		err     error
	)
	if cfg.VideoSource == "" {
		logger.S().Infof("starting video stream from camera [%d]", cfg.Device)
		capture, err = gocv.OpenVideoCapture(cfg.Device)
	} else {
		logger.S().Infof("opening video file [%s]", cfg.VideoSource)
		capture, err = gocv.VideoCaptureFile(cfg.VideoSource)
	}
	if err != nil {
		return nil, errors.Wrap(err, "opening video source")
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, errors.Errorf("video source [%s] is not opened", sourceName(cfg))
	}
	if cfg.VideoSource == "" {
		// give the camera sensor time to settle
		if err := warmUp(ctx, time.Duration(cfg.WarmUpMs)*time.Millisecond); err != nil {
			capture.Close()
			return nil, err
		}
	}
	return capture, nil
}

// warmUp waits for d or until ctx is done, whichever comes first
func warmUp(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func sourceName(cfg *Config) string {
	if cfg.VideoSource != "" {
		return cfg.VideoSource
	}
	return "camera"
}

// ScaledSize returns the size of a cols x rows frame resized to width with
// the aspect ratio preserved.
func ScaledSize(cols, rows, width int) image.Point {
	if width <= 0 || cols <= 0 || rows <= 0 {
		return image.Pt(cols, rows)
	}
	height := int(math.Round(float64(rows) * float64(width) / float64(cols)))
	return image.Pt(width, height)
}

// ResizeToWidth writes src resized to width into dst. A non-positive width or
// an empty src copies src as is.
func ResizeToWidth(src gocv.Mat, dst *gocv.Mat, width int) {
	if width <= 0 || src.Empty() {
		src.CopyTo(dst)
		return
	}
	size := ScaledSize(src.Cols(), src.Rows(), width)
	if size.X == src.Cols() && size.Y == src.Rows() {
		src.CopyTo(dst)
		return
	}
	gocv.Resize(src, dst, size, 0, 0, gocv.InterpolationArea)
}
