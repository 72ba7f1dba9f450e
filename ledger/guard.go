// Copyright (c) 2024 The RNT StakeLedger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"bytes"
	"math/big"
	"runtime"
	"strconv"
	"sync/atomic"

	"github.com/rnt-network/stakeledger/rnt"
)

// reentryGuard detects calls re-entering the ledger from within an
// asset-port call. It is armed around port calls with the identity of the
// executing goroutine, so independent concurrent callers never trip it and
// serialize on the ledger lock instead.
type reentryGuard struct {
	gid atomic.Int64
}

// arm marks the current goroutine as executing an asset-port call.
// The returned func disarms.
func (g *reentryGuard) arm() func() {
	g.gid.Store(goroutineID())
	return func() { g.gid.Store(0) }
}

// reentered reports whether the current goroutine is inside an armed
// asset-port call.
func (g *reentryGuard) reentered() bool {
	id := g.gid.Load()
	return id != 0 && id == goroutineID()
}

// goroutineID extracts the goroutine id from the stack header
// "goroutine N [running]:".
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := bytes.Fields(buf[:n])
	if len(fields) < 2 {
		return 0
	}
	id, err := strconv.ParseInt(string(fields[1]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// guardedCustody arms the guard around each outgoing port call.
type guardedCustody struct {
	guard *reentryGuard
	port  Custody
}

func (c *guardedCustody) Pull(from rnt.Address, amount *big.Int) error {
	defer c.guard.arm()()
	return c.port.Pull(from, amount)
}

func (c *guardedCustody) Push(to rnt.Address, amount *big.Int) error {
	defer c.guard.arm()()
	return c.port.Push(to, amount)
}

// guardedIssuer extends guardedCustody over an Issuer port.
type guardedIssuer struct {
	guardedCustody
	port Issuer
}

func (i *guardedIssuer) Mint(to rnt.Address, amount *big.Int) error {
	defer i.guard.arm()()
	return i.port.Mint(to, amount)
}

func (i *guardedIssuer) Burn(from rnt.Address, amount *big.Int) error {
	defer i.guard.arm()()
	return i.port.Burn(from, amount)
}
