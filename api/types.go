// Copyright (c) 2024 The RNT StakeLedger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/rnt-network/stakeledger/ledger"
	"github.com/rnt-network/stakeledger/rnt"
)

// LedgerStatus the global ledger figures.
type LedgerStatus struct {
	TotalStaked  *math.HexOrDecimal256 `json:"totalStaked"`
	Reserve      *math.HexOrDecimal256 `json:"reserve"`
	RewardRate   *math.HexOrDecimal256 `json:"rewardRate"`
	LockDuration uint64                `json:"lockDuration"`
}

// AccountStatus the staking record of one address.
type AccountStatus struct {
	Staked     *math.HexOrDecimal256 `json:"staked"`
	Pending    *math.HexOrDecimal256 `json:"pending"`
	LastUpdate uint64                `json:"lastUpdate"`
}

// LockStatus the outstanding vesting lock of one address.
type LockStatus struct {
	Amount     *math.HexOrDecimal256 `json:"amount"`
	StartTime  uint64                `json:"startTime"`
	MatureTime uint64                `json:"matureTime"`
}

// AmountRequest a mutating call carrying caller identity and an amount.
type AmountRequest struct {
	Caller string                `json:"caller"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// CallerRequest a mutating call carrying caller identity only.
type CallerRequest struct {
	Caller string `json:"caller"`
}

// TransferRequest a token transfer call.
type TransferRequest struct {
	Caller string                `json:"caller"`
	To     string                `json:"to"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// Event a persisted ledger event.
type Event struct {
	Seq     uint64                `json:"seq"`
	Time    uint64                `json:"time"`
	Type    ledger.EventType      `json:"type"`
	Account rnt.Address           `json:"account"`
	Amount  *math.HexOrDecimal256 `json:"amount"`
	Payout  *math.HexOrDecimal256 `json:"payout,omitempty"`
	Penalty *math.HexOrDecimal256 `json:"penalty,omitempty"`
}

func hexOrDecimal(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		return nil
	}
	return (*math.HexOrDecimal256)(v)
}

func toAmount(v *math.HexOrDecimal256) *big.Int {
	if v == nil {
		return &big.Int{}
	}
	return (*big.Int)(v)
}
