// Copyright (c) 2024 The RNT StakeLedger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/holiman/uint256"
)

const timeFormat = "01-02|15:04:05.000"

const (
	escapeReset  = "\x1b[0m"
	escapeRed    = "\x1b[31m"
	escapeGreen  = "\x1b[32m"
	escapeYellow = "\x1b[33m"
	escapePurple = "\x1b[35m"
	escapeCyan   = "\x1b[36m"
)

func levelColor(l slog.Level) string {
	switch {
	case l >= LevelCrit:
		return escapePurple
	case l >= LevelError:
		return escapeRed
	case l >= LevelWarn:
		return escapeYellow
	case l >= LevelInfo:
		return escapeGreen
	case l >= LevelDebug:
		return escapeCyan
	default:
		return escapePurple
	}
}

// DiscardHandler returns a no-op handler.
func DiscardHandler() slog.Handler {
	return &discardHandler{}
}

type discardHandler struct{}

func (h *discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h *discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (h *discardHandler) WithGroup(string) slog.Handler             { return h }
func (h *discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }

// TerminalHandler formats records optimized for human readability on a
// terminal, with optional color-coded level output:
//
//	[LEVEL] [TIME] MESSAGE key=value key=value ...
type TerminalHandler struct {
	mu       sync.Mutex
	wr       io.Writer
	lvl      *slog.LevelVar
	useColor bool
	attrs    []slog.Attr

	buf []byte
}

// NewTerminalHandler returns a terminal handler writing all levels.
func NewTerminalHandler(wr io.Writer, useColor bool) *TerminalHandler {
	var level slog.LevelVar
	level.Set(LevelTrace)
	return NewTerminalHandlerWithLevel(wr, &level, useColor)
}

// NewTerminalHandlerWithLevel is like NewTerminalHandler but only outputs
// records at or above the given verbosity level.
func NewTerminalHandlerWithLevel(wr io.Writer, lvl *slog.LevelVar, useColor bool) *TerminalHandler {
	return &TerminalHandler{
		wr:       wr,
		lvl:      lvl,
		useColor: useColor,
	}
}

func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	buf := h.buf[:0]
	if h.useColor {
		buf = append(buf, levelColor(r.Level)...)
	}
	buf = append(buf, '[')
	buf = append(buf, LevelString(r.Level)...)
	buf = append(buf, ']')
	if h.useColor {
		buf = append(buf, escapeReset...)
	}
	buf = append(buf, " ["...)
	buf = r.Time.AppendFormat(buf, timeFormat)
	buf = append(buf, "] "...)
	buf = append(buf, r.Message...)

	for _, attr := range h.attrs {
		buf = h.appendAttr(buf, attr)
	}
	r.Attrs(func(attr slog.Attr) bool {
		buf = h.appendAttr(buf, attr)
		return true
	})
	buf = append(buf, '\n')

	_, err := h.wr.Write(buf)
	h.buf = buf[:0]
	return err
}

func (h *TerminalHandler) appendAttr(buf []byte, attr slog.Attr) []byte {
	buf = append(buf, ' ')
	if h.useColor {
		buf = append(buf, escapeCyan...)
		buf = append(buf, attr.Key...)
		buf = append(buf, escapeReset...)
	} else {
		buf = append(buf, attr.Key...)
	}
	buf = append(buf, '=')
	return appendValue(buf, attr.Value)
}

func appendValue(buf []byte, v slog.Value) []byte {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return appendEscaped(buf, v.String())
	case slog.KindInt64:
		return strconv.AppendInt(buf, v.Int64(), 10)
	case slog.KindUint64:
		return strconv.AppendUint(buf, v.Uint64(), 10)
	case slog.KindBool:
		return strconv.AppendBool(buf, v.Bool())
	case slog.KindTime:
		return v.Time().AppendFormat(buf, timeFormat)
	case slog.KindDuration:
		return append(buf, v.Duration().String()...)
	default:
		switch x := v.Any().(type) {
		case *big.Int:
			if x == nil {
				return append(buf, "<nil>"...)
			}
			return append(buf, x.String()...)
		case *uint256.Int:
			if x == nil {
				return append(buf, "<nil>"...)
			}
			return append(buf, x.Dec()...)
		case error:
			if x == nil {
				return append(buf, "<nil>"...)
			}
			return appendEscaped(buf, x.Error())
		case fmt.Stringer:
			return appendEscaped(buf, x.String())
		case time.Time:
			return x.AppendFormat(buf, timeFormat)
		default:
			return appendEscaped(buf, fmt.Sprintf("%+v", x))
		}
	}
}

// appendEscaped quotes values containing spaces or quotes.
func appendEscaped(buf []byte, s string) []byte {
	needsQuoting := len(s) == 0
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' {
			needsQuoting = true
			break
		}
	}
	if needsQuoting {
		return strconv.AppendQuote(buf, s)
	}
	return append(buf, s...)
}

func (h *TerminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.lvl.Level()
}

func (h *TerminalHandler) WithGroup(string) slog.Handler {
	panic("not implemented")
}

func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TerminalHandler{
		wr:       h.wr,
		lvl:      h.lvl,
		useColor: h.useColor,
		attrs:    append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...),
	}
}
