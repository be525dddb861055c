package walknode

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// Output is everything a node produces on one tick.
type Output struct {
	Seq             uint64             `msgpack:"seq"`
	Stamp           time.Time          `msgpack:"stamp"`
	State           string             `msgpack:"state"`
	Phase           float64            `msgpack:"phase"`
	TrajsTime       float64            `msgpack:"trajs_time"`
	Moving          bool               `msgpack:"moving"`
	IsLeftSupport   bool               `msgpack:"is_left_support"`
	IsDoubleSupport bool               `msgpack:"is_double_support"`
	TrunkPos        r3.Vector          `msgpack:"trunk_pos"`
	TrunkAxis       r3.Vector          `msgpack:"trunk_axis"`
	FootPos         r3.Vector          `msgpack:"foot_pos"`
	FootAxis        r3.Vector          `msgpack:"foot_axis"`
	Joints          map[string]float64 `msgpack:"joints,omitempty"`
	// set when the solver could not reach the target
	Unreachable bool `msgpack:"unreachable"`
}

// A Sink receives node outputs, one call per tick, from a single goroutine.
type Sink interface {
	Publish(ctx context.Context, out Output) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(ctx context.Context, out Output) error

// Publish calls f.
func (f SinkFunc) Publish(ctx context.Context, out Output) error {
	return f(ctx, out)
}

// LogSink writes every output to a logger at debug level.
type LogSink struct {
	Logger golog.Logger
}

// Publish implements Sink.
func (s LogSink) Publish(ctx context.Context, out Output) error {
	s.Logger.Debugw("walk output",
		"seq", out.Seq,
		"state", out.State,
		"phase", out.Phase,
		"left_support", out.IsLeftSupport,
		"trunk_pos", out.TrunkPos,
		"foot_pos", out.FootPos,
		"unreachable", out.Unreachable,
	)
	return nil
}

// RecorderSink streams outputs to a writer as consecutive msgpack values.
type RecorderSink struct {
	mu  sync.Mutex
	w   io.Writer
	enc *msgpack.Encoder
}

// NewRecorderSink returns a sink encoding to w.
func NewRecorderSink(w io.Writer) *RecorderSink {
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("msgpack")
	return &RecorderSink{w: w, enc: enc}
}

// Publish implements Sink.
func (s *RecorderSink) Publish(ctx context.Context, out Output) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enc == nil {
		return errors.New("recorder is closed")
	}
	return errors.Wrap(s.enc.Encode(&out), "cannot record output")
}

// Close stops recording and closes the writer if it is an io.Closer.
func (s *RecorderSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enc = nil
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// ReadRecording decodes every output written by a RecorderSink.
func ReadRecording(r io.Reader) ([]Output, error) {
	dec := msgpack.NewDecoder(r)
	dec.SetCustomStructTag("msgpack")
	var outs []Output
	for {
		var out Output
		if err := dec.Decode(&out); err != nil {
			if errors.Is(err, io.EOF) {
				return outs, nil
			}
			return outs, errors.Wrapf(err, "cannot decode output %d", len(outs))
		}
		outs = append(outs, out)
	}
}
