package api

import (
	"image"
	"net"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseService(t *testing.T) {
	svc, err := ParseService("127.0.0.1:50051")
	require.NoError(t, err)
	assert.Equal(t, Service{Address: "127.0.0.1", Port: "50051"}, svc)
	assert.Equal(t, "127.0.0.1:50051", svc.Target())

	_, err = ParseService("no-port")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid service address "no-port"`)
	var addrErr *net.AddrError
	assert.True(t, errors.As(err, &addrErr), "cause is kept")
}

func TestServiceReachable(t *testing.T) {
	assert.Error(t, (&Service{}).ServiceReachable())

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	svc, err := ParseService(l.Addr().String())
	require.NoError(t, err)
	assert.NoError(t, svc.ServiceReachable())

	l.Close()
	assert.Error(t, svc.ServiceReachable())
}

func TestDrawn(t *testing.T) {
	f := FrameResult{Boxes: []TrackedBox{
		{Index: 0, Box: image.Rect(0, 0, 10, 10), Success: true},
		{Index: 1, Success: false},
		{Index: 2, Box: image.Rect(5, 5, 20, 20), Success: true},
	}}
	drawn := f.Drawn()
	require.Len(t, drawn, 2)
	assert.Equal(t, 0, drawn[0].Index)
	assert.Equal(t, 2, drawn[1].Index)
	assert.Empty(t, FrameResult{}.Drawn())
}
