package boxsink

import (
	"image"
	"time"

	api "github.com/etesami/multi-object-tracking/api"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/types/known/structpb"
)

// EncodeFrame converts a frame result into the wire message. sentAt is stamped
// into the message so the receiver can echo it back in the ack.
func EncodeFrame(frame api.FrameResult, sentAt time.Time) (*structpb.Struct, error) {
	boxes := make([]interface{}, 0, len(frame.Boxes))
	for _, b := range frame.Boxes {
		boxes = append(boxes, map[string]interface{}{
			"object_id": b.ObjectId,
			"index":     b.Index,
			"x":         b.Box.Min.X,
			"y":         b.Box.Min.Y,
			"w":         b.Box.Dx(),
			"h":         b.Box.Dy(),
			"success":   b.Success,
		})
	}
	s, err := structpb.NewStruct(map[string]interface{}{
		"source_id":      frame.SourceId,
		"frame_id":       frame.FrameId,
		"timestamp":      frame.Timestamp.Format(time.RFC3339Nano),
		"sent_timestamp": sentAt.Format(time.RFC3339Nano),
		"width":          frame.Width,
		"height":         frame.Height,
		"boxes":          boxes,
	})
	if err != nil {
		return nil, errors.Wrap(err, "encoding frame result")
	}
	return s, nil
}

// DecodeFrame is the inverse of EncodeFrame. The sent timestamp is returned
// separately because it is not part of the frame result.
func DecodeFrame(s *structpb.Struct) (api.FrameResult, time.Time, error) {
	var frame api.FrameResult
	if s == nil {
		return frame, time.Time{}, errors.New("empty frame message")
	}
	f := s.GetFields()

	ts, err := time.Parse(time.RFC3339Nano, f["timestamp"].GetStringValue())
	if err != nil {
		return frame, time.Time{}, errors.Wrap(err, "decoding frame timestamp")
	}
	sent, err := time.Parse(time.RFC3339Nano, f["sent_timestamp"].GetStringValue())
	if err != nil {
		return frame, time.Time{}, errors.Wrap(err, "decoding sent timestamp")
	}

	frame.Timestamp = ts
	frame.SourceId = f["source_id"].GetStringValue()
	frame.FrameId = int64(f["frame_id"].GetNumberValue())
	frame.Width = int(f["width"].GetNumberValue())
	frame.Height = int(f["height"].GetNumberValue())

	for i, v := range f["boxes"].GetListValue().GetValues() {
		bs := v.GetStructValue()
		if bs == nil {
			return frame, time.Time{}, errors.Errorf("box %d is not an object", i)
		}
		bf := bs.GetFields()
		x := int(bf["x"].GetNumberValue())
		y := int(bf["y"].GetNumberValue())
		w := int(bf["w"].GetNumberValue())
		h := int(bf["h"].GetNumberValue())
		frame.Boxes = append(frame.Boxes, api.TrackedBox{
			ObjectId: bf["object_id"].GetStringValue(),
			Index:    int(bf["index"].GetNumberValue()),
			Box:      image.Rect(x, y, x+w, y+h),
			Success:  bf["success"].GetBoolValue(),
		})
	}
	return frame, sent, nil
}
