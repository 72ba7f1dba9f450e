// Copyright (c) 2024 The RNT StakeLedger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rnt

import "math/big"

// Constants of the staking ledger. Fixed for the lifetime of a ledger instance.
const (
	// SecondsPerDay the accrual time base.
	SecondsPerDay uint64 = 24 * 60 * 60

	// LockDuration vesting lock maturity, in seconds.
	LockDuration uint64 = 30 * SecondsPerDay
)

var (
	// E18 the shared fixed-point scale of both assets (18 fractional decimals).
	E18 = big.NewInt(1e18)

	// RewardRate reward accrued per staked unit per day, in E18 fixed point.
	// 1e18 means exactly 1 RNU per staked RNT per day.
	RewardRate = big.NewInt(1e18)
)
