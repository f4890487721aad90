package boxsink

import (
	"context"
	"time"

	api "github.com/etesami/multi-object-tracking/api"
	utils "github.com/etesami/multi-object-tracking/pkg/utils"

	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

const DefaultTimeout = 200 * time.Millisecond

// Client publishes frame results to a remote BoxSink
type Client struct {
	conn    *grpc.ClientConn
	timeout time.Duration
}

// Dial creates a client for addr. The connection is established lazily on the
// first publish.
func Dial(addr string, timeout time.Duration) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, errors.Wrapf(err, "creating box sink client for %s", addr)
	}
	return NewClient(conn, timeout), nil
}

func NewClient(conn *grpc.ClientConn, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{conn: conn, timeout: timeout}
}

// Publish sends one frame result and returns the round-trip time in ms
func (c *Client) Publish(ctx context.Context, frame api.FrameResult) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	sent := time.Now()
	req, err := EncodeFrame(frame, sent)
	if err != nil {
		return -1, err
	}
	ack := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, PublishMethod, req, ack); err != nil {
		return -1, errors.Wrapf(err, "publishing frame [%d]", frame.FrameId)
	}
	ackRec := time.Now()

	f := ack.GetFields()
	if status := f["status"].GetStringValue(); status != StatusOk {
		return -1, errors.Errorf("box sink rejected frame [%d]: status %q", frame.FrameId, status)
	}
	ts, err := utils.ParseTimestamps(f["received_timestamp"].GetStringValue(), f["ack_sent_timestamp"].GetStringValue())
	if err != nil {
		return -1, errors.Wrap(err, "reading ack timestamps")
	}
	return utils.CalculateRtt(sent, ts[0], ts[1], ackRec)
}

func (c *Client) Close() error {
	return c.conn.Close()
}
