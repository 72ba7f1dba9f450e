// Copyright (c) 2024 The RNT StakeLedger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
)

// Verbosity levels, most to least verbose.
const (
	LevelTrace = slog.Level(-8)
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
	LevelCrit  = slog.Level(12)
)

// FromLegacyLevel converts the 0-5 CLI verbosity scale to slog levels.
func FromLegacyLevel(lvl int) slog.Level {
	switch lvl {
	case 0:
		return LevelCrit
	case 1:
		return LevelError
	case 2:
		return LevelWarn
	case 3:
		return LevelInfo
	case 4:
		return LevelDebug
	default:
		return LevelTrace
	}
}

// LevelString returns a 4-character aligned string containing the name of a
// level, for terminal output.
func LevelString(l slog.Level) string {
	switch l {
	case LevelTrace:
		return "TRCE"
	case LevelDebug:
		return "DBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "EROR"
	case LevelCrit:
		return "CRIT"
	default:
		return l.String()
	}
}

// Logger is the logging interface handed to packages via WithContext.
type Logger interface {
	With(ctx ...any) Logger

	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
}

// rootHandler is swapped by SetDefault. Loggers resolve it at write time,
// so package-level loggers created before CLI setup still honor it.
var rootHandler atomic.Pointer[slog.Handler]

func init() {
	var h slog.Handler = NewTerminalHandler(os.Stderr, false)
	rootHandler.Store(&h)
}

// SetDefault sets the handler of the process-wide root logger.
func SetDefault(h slog.Handler) {
	rootHandler.Store(&h)
}

type logger struct {
	ctx []any
}

func (l *logger) With(ctx ...any) Logger {
	merged := make([]any, 0, len(l.ctx)+len(ctx))
	merged = append(merged, l.ctx...)
	merged = append(merged, ctx...)
	return &logger{merged}
}

func (l *logger) write(level slog.Level, msg string, ctx []any) {
	h := *rootHandler.Load()
	if !h.Enabled(context.Background(), level) {
		return
	}
	inner := slog.New(h)
	if len(l.ctx) > 0 {
		inner = inner.With(l.ctx...)
	}
	inner.Log(context.Background(), level, msg, ctx...)
}

func (l *logger) Trace(msg string, ctx ...any) { l.write(LevelTrace, msg, ctx) }
func (l *logger) Debug(msg string, ctx ...any) { l.write(LevelDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...any)  { l.write(LevelInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...any)  { l.write(LevelWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...any) { l.write(LevelError, msg, ctx) }

// WithContext returns a logger deriving the root logger with the given
// context attached. Packages typically call this once at var scope.
func WithContext(ctx ...any) Logger {
	return &logger{ctx}
}

// Root returns the process-wide root logger.
func Root() Logger {
	return &logger{}
}
