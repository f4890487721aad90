package api

import (
	"image"
	"net"
	"time"

	"github.com/pkg/errors"
)

// TrackedBox is the per-frame outcome of a single tracker update
type TrackedBox struct {
	ObjectId string
	Index    int
	Box      image.Rectangle
	Success  bool
}

// FrameResult collects the tracker outcomes for one displayed frame
type FrameResult struct {
	Timestamp time.Time
	SourceId  string
	FrameId   int64
	Width     int
	Height    int
	Boxes     []TrackedBox
}

// Drawn returns the boxes whose tracker reported success for this frame.
func (f FrameResult) Drawn() []TrackedBox {
	var drawn []TrackedBox
	for _, b := range f.Boxes {
		if b.Success {
			drawn = append(drawn, b)
		}
	}
	return drawn
}

type Service struct {
	Address string
	Port    string
}

func (s *Service) Target() string {
	return net.JoinHostPort(s.Address, s.Port)
}

func (s *Service) ServiceReachable() error {
	if s.Address == "" || s.Port == "" {
		return errors.New("service address or port is not set")
	}
	conn, err := net.DialTimeout("tcp", s.Target(), 3*time.Second)
	if err != nil {
		return errors.Wrapf(err, "dialing %s", s.Target())
	}
	defer conn.Close()
	return nil
}

// ParseService splits a host:port string into a Service
func ParseService(addr string) (Service, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return Service{}, errors.Wrapf(err, "invalid service address %q", addr)
	}
	return Service{Address: host, Port: port}, nil
}
