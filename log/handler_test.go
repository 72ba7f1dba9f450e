// Copyright (c) 2024 The RNT StakeLedger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"log/slog"
	"math/big"
	"os"
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

func TestTerminalHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	h := NewTerminalHandler(&buf, false)
	l := slog.New(h)

	l.Info("hello", "n", 42, "big", big.NewInt(1e18), "s", "plain", "quoted", "a b")

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "[INFO] ["))
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "n=42")
	assert.Contains(t, out, "big=1000000000000000000")
	assert.Contains(t, out, "s=plain")
	assert.Contains(t, out, `quoted="a b"`)
}

func TestTerminalHandlerLevel(t *testing.T) {
	var buf bytes.Buffer
	var lvl slog.LevelVar
	lvl.Set(LevelWarn)
	l := slog.New(NewTerminalHandlerWithLevel(&buf, &lvl, false))

	l.Info("dropped")
	l.Warn("kept")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "kept")
}

func TestTerminalHandlerUint256(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewTerminalHandler(&buf, false))

	l.Info("x", "v", uint256.NewInt(12345))
	assert.Contains(t, buf.String(), "v=12345")
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(NewTerminalHandler(&buf, false))
	defer SetDefault(NewTerminalHandler(os.Stderr, false))

	WithContext("pkg", "test").Info("msg", "k", "v")

	out := buf.String()
	assert.Contains(t, out, "pkg=test")
	assert.Contains(t, out, "k=v")
}
