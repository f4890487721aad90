package boxsink

import (
	"context"
	"time"

	api "github.com/etesami/multi-object-tracking/api"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName   = "multitrack.BoxSink"
	PublishMethod = "/multitrack.BoxSink/Publish"

	StatusOk = "ok"
)

// Handler consumes the frame results pushed by a tracker
type Handler interface {
	HandleFrame(ctx context.Context, frame api.FrameResult) error
}

// HandlerFunc adapts a plain function to Handler
type HandlerFunc func(ctx context.Context, frame api.FrameResult) error

func (f HandlerFunc) HandleFrame(ctx context.Context, frame api.FrameResult) error {
	return f(ctx, frame)
}

// BoxSinkServer is the server API for the BoxSink service
type BoxSinkServer interface {
	Publish(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type server struct {
	handler Handler
}

// Publish decodes the frame, hands it to the handler and acks with the
// timestamps needed for the sender's RTT calculation.
func (s *server) Publish(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	recTime := time.Now()
	frame, sent, err := DecodeFrame(in)
	if err != nil {
		return nil, err
	}
	if err := s.handler.HandleFrame(ctx, frame); err != nil {
		return nil, err
	}
	return structpb.NewStruct(map[string]interface{}{
		"status":                  StatusOk,
		"original_sent_timestamp": sent.Format(time.RFC3339Nano),
		"received_timestamp":      recTime.Format(time.RFC3339Nano),
		"ack_sent_timestamp":      time.Now().Format(time.RFC3339Nano),
	})
}

func RegisterBoxSinkServer(s grpc.ServiceRegistrar, h Handler) {
	s.RegisterService(&BoxSink_ServiceDesc, &server{handler: h})
}

func _BoxSink_Publish_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BoxSinkServer).Publish(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: PublishMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BoxSinkServer).Publish(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var BoxSink_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BoxSinkServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Publish",
			Handler:    _BoxSink_Publish_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "boxsink",
}
