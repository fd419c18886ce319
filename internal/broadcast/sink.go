package broadcast

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/gridveil/server/internal/world"
)

// Sink receives per-observer interest events from the visibility sweep.
// Implementations own the actual transport; the engine only decides who is
// told what.
type Sink interface {
	// EntityEntered tells the observer about a target that just became
	// visible, with its full wire snapshot.
	EntityEntered(observer string, snap *world.Snapshot)
	// EntityMoved tells the observer a known target changed cell.
	EntityMoved(observer, target string, x, y int32)
	// EntityLeft tells the observer a known target is no longer visible.
	EntityLeft(observer, target string)
}

// LogSink is a transport-less Sink that emits the event stream through zap,
// snapshots as their canonical JSON. Used by the daemon and in soak runs.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) EntityEntered(observer string, snap *world.Snapshot) {
	raw, err := json.Marshal(snap)
	if err != nil {
		s.log.Error("marshal snapshot", zap.String("target", snap.ID), zap.Error(err))
		return
	}
	s.log.Info("entity entered",
		zap.String("observer", observer),
		zap.ByteString("snapshot", raw),
	)
}

func (s *LogSink) EntityMoved(observer, target string, x, y int32) {
	s.log.Info("entity moved",
		zap.String("observer", observer),
		zap.String("target", target),
		zap.Int32("x", x),
		zap.Int32("y", y),
	)
}

func (s *LogSink) EntityLeft(observer, target string) {
	s.log.Info("entity left",
		zap.String("observer", observer),
		zap.String("target", target),
	)
}
