package observe

import (
	"context"
	"log/slog"
	"time"

	"github.com/vango-dev/reactive/pkg/reactive"
	"github.com/vango-dev/reactive/pkg/scope"
)

// Logger is an observer that writes one slog record per event at Level.
type Logger struct {
	logger *slog.Logger
	level  slog.Level
}

var _ Observer = (*Logger)(nil)

// NewLogger logs events to l at debug level. If l is nil, slog.Default()
// is used.
func NewLogger(l *slog.Logger) *Logger {
	if l == nil {
		l = slog.Default()
	}
	return &Logger{logger: l, level: slog.LevelDebug}
}

// WithLevel returns a copy of lg that logs at level.
func (lg *Logger) WithLevel(level slog.Level) *Logger {
	return &Logger{logger: lg.logger, level: level}
}

func (lg *Logger) log(msg string, args ...any) {
	ctx := context.Background()
	if !lg.logger.Enabled(ctx, lg.level) {
		return
	}
	lg.logger.Log(ctx, lg.level, msg, args...)
}

func cellGroup(info reactive.CellInfo) slog.Attr {
	return slog.Group("cell",
		slog.Uint64("id", info.ID),
		slog.String("name", info.Name),
		slog.String("kind", info.Kind.String()),
	)
}

func (lg *Logger) CellCreated(info reactive.CellInfo) {
	lg.log("cell created", cellGroup(info))
}

func (lg *Logger) CellWritten(info reactive.CellInfo, gen reactive.Generation) {
	lg.log("cell written", cellGroup(info), "generation", uint64(gen))
}

func (lg *Logger) Notified(info reactive.CellInfo, gen reactive.Generation, callbacks int) {
	lg.log("cell notified", cellGroup(info), "generation", uint64(gen), "callbacks", callbacks)
}

func (lg *Logger) Recomputed(info reactive.CellInfo, took time.Duration) {
	lg.log("cell recomputed", cellGroup(info), "took", took)
}

func (lg *Logger) Coalesced(info reactive.CellInfo, skipped uint64) {
	lg.log("generations coalesced", cellGroup(info), "skipped", skipped)
}

func (lg *Logger) CellDisconnected(info reactive.CellInfo) {
	lg.log("cell disconnected", cellGroup(info))
}

func (lg *Logger) ScopeOpened(info scope.Info) {
	lg.log("scope opened", "scope", info.ID.String(), "widget", info.Widget, "depth", info.Depth)
}

func (lg *Logger) ScopeClosed(info scope.Info) {
	lg.log("scope closed", "scope", info.ID.String(), "widget", info.Widget,
		"cells", info.Cells, "tracked", info.Tracked, "cleanups", info.Cleanups)
}
