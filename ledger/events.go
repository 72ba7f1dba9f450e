// Copyright (c) 2024 The RNT StakeLedger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/rnt-network/stakeledger/rnt"
)

// EventType names a successful ledger operation.
type EventType string

// Event types, one per mutating operation.
const (
	EventStake            EventType = "stake"
	EventUnstake          EventType = "unstake"
	EventRewardClaimed    EventType = "reward_claimed"
	EventTokenLocked      EventType = "token_locked"
	EventTokenUnlocked    EventType = "token_unlocked"
	EventReserveDeposited EventType = "reserve_deposited"
)

// Event records the outcome of a successful mutating operation.
// Payout and Penalty are set for token_unlocked only.
type Event struct {
	Time    uint64
	Type    EventType
	Account rnt.Address
	Amount  *big.Int
	Payout  *big.Int
	Penalty *big.Int
}

// EventWriter sinks domain events for audit/monitoring collaborators.
type EventWriter interface {
	Write(*Event) error
}
