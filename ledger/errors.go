// Copyright (c) 2024 The RNT StakeLedger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import "github.com/pkg/errors"

// Errors reported by ledger operations. Every failure path leaves the
// ledger state and both asset ledgers untouched.
var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientStake   = errors.New("insufficient stake")
	ErrInsufficientReserve = errors.New("insufficient reserve")
	ErrNoReward            = errors.New("no reward to claim")
	ErrNoLockActive        = errors.New("no active lock")
	ErrLockAlreadyActive   = errors.New("lock already active")
	ErrNotAuthorized       = errors.New("not authorized")
	ErrReentrantCall       = errors.New("reentrant call")
)
