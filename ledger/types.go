// Copyright (c) 2024 The RNT StakeLedger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/rnt-network/stakeledger/rnt"
	"github.com/rnt-network/stakeledger/state"
)

var (
	totalStakedKey = crypto.Keccak256([]byte("total-staked"))
	reserveKey     = crypto.Keccak256([]byte("reserve"))

	secondsPerDay = new(big.Int).SetUint64(rnt.SecondsPerDay)
	lockDuration  = new(big.Int).SetUint64(rnt.LockDuration)
)

func accountKey(addr rnt.Address) []byte {
	return append([]byte("a"), addr.Bytes()...)
}

func lockKey(addr rnt.Address) []byte {
	return append([]byte("l"), addr.Bytes()...)
}

type (
	// Account per-address staking record.
	Account struct {
		Staked     *big.Int // base asset currently staked
		Unclaimed  *big.Int // reward asset accrued but not claimed
		LastUpdate uint64   // accrual snapshot timestamp
	}

	// Lock the outstanding vesting lock of an address, at most one.
	// A zero Amount means no active lock.
	Lock struct {
		Amount    *big.Int
		StartTime uint64
	}
)

var (
	_ state.StorageEncoder = (*Account)(nil)
	_ state.StorageDecoder = (*Account)(nil)

	_ state.StorageEncoder = (*Lock)(nil)
	_ state.StorageDecoder = (*Lock)(nil)
)

func (a *Account) Encode() ([]byte, error) {
	if a.Staked.Sign() == 0 &&
		a.Unclaimed.Sign() == 0 &&
		a.LastUpdate == 0 {
		return nil, nil
	}
	return rlp.EncodeToBytes(a)
}

func (a *Account) Decode(data []byte) error {
	if len(data) == 0 {
		*a = Account{&big.Int{}, &big.Int{}, 0}
		return nil
	}
	return rlp.DecodeBytes(data, a)
}

// PendingAt returns unclaimed rewards including accrual up to now,
// without mutating the record.
func (a *Account) PendingAt(now uint64) *big.Int {
	if a.Staked.Sign() == 0 {
		return a.Unclaimed
	}
	if now <= a.LastUpdate {
		// time never goes back in real env.
		return a.Unclaimed
	}

	x := new(big.Int).SetUint64(now - a.LastUpdate)
	x.Mul(x, a.Staked)
	x.Mul(x, rnt.RewardRate)
	x.Div(x, rnt.E18)
	x.Div(x, secondsPerDay)
	return x.Add(x, a.Unclaimed)
}

// checkpoint commits accrual up to now and resets the snapshot.
// Calling twice at the same now accrues zero the second time.
func (a *Account) checkpoint(now uint64) {
	a.Unclaimed = a.PendingAt(now)
	a.LastUpdate = now
}

func (l *Lock) Encode() ([]byte, error) {
	if l.Amount.Sign() == 0 {
		return nil, nil
	}
	return rlp.EncodeToBytes(l)
}

func (l *Lock) Decode(data []byte) error {
	if len(data) == 0 {
		*l = Lock{&big.Int{}, 0}
		return nil
	}
	return rlp.DecodeBytes(data, l)
}

// Active returns whether the lock holds any amount.
func (l *Lock) Active() bool {
	return l.Amount.Sign() > 0
}

// MatureTime returns the timestamp at which the lock pays out in full.
func (l *Lock) MatureTime() uint64 {
	return l.StartTime + rnt.LockDuration
}

// PayoutAt computes the base-asset payout and the destroyed penalty for an
// exit at now. Before maturity the penalty decays linearly with remaining
// lock time, truncating toward zero.
func (l *Lock) PayoutAt(now uint64) (payout, penalty *big.Int) {
	var elapsed uint64
	if now > l.StartTime {
		elapsed = now - l.StartTime
	}
	if elapsed >= rnt.LockDuration {
		return new(big.Int).Set(l.Amount), &big.Int{}
	}

	remaining := new(big.Int).SetUint64(rnt.LockDuration - elapsed)
	penalty = remaining.Mul(remaining, l.Amount)
	penalty.Div(penalty, lockDuration)
	payout = new(big.Int).Sub(l.Amount, penalty)
	return payout, penalty
}
