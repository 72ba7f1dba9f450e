// Copyright (c) 2024 The RNT StakeLedger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rnt-network/stakeledger/rnt"
)

func e18(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), rnt.E18)
}

func TestAccrualLinearity(t *testing.T) {
	acc := Account{Staked: e18(100), Unclaimed: &big.Int{}, LastUpdate: 1000}

	// 1 reward unit per staked unit per day
	assert.Equal(t, e18(100), acc.PendingAt(1000+rnt.SecondsPerDay))
	assert.Equal(t, e18(200), acc.PendingAt(1000+2*rnt.SecondsPerDay))
	assert.Equal(t, e18(50), acc.PendingAt(1000+rnt.SecondsPerDay/2))
}

func TestAccrualZeroCases(t *testing.T) {
	acc := Account{Staked: &big.Int{}, Unclaimed: e18(3), LastUpdate: 1000}
	// nothing staked, nothing accrues
	assert.Equal(t, e18(3), acc.PendingAt(999999))

	acc = Account{Staked: e18(10), Unclaimed: &big.Int{}, LastUpdate: 1000}
	assert.Equal(t, &big.Int{}, acc.PendingAt(1000))
	assert.Equal(t, &big.Int{}, acc.PendingAt(999))
}

func TestCheckpointSplitEquivalence(t *testing.T) {
	// 8640e18 staked accrues exactly 1e17 per second, so any checkpoint
	// split is truncation-free and must sum to the whole interval.
	const t0 = uint64(5000)

	single := Account{Staked: e18(8640), Unclaimed: &big.Int{}, LastUpdate: t0}
	want := single.PendingAt(t0 + 100)

	split := Account{Staked: e18(8640), Unclaimed: &big.Int{}, LastUpdate: t0}
	split.checkpoint(t0 + 17)
	split.checkpoint(t0 + 17) // same instant accrues zero
	split.checkpoint(t0 + 63)
	split.checkpoint(t0 + 100)

	assert.Equal(t, want, split.Unclaimed)
	assert.Equal(t, t0+100, split.LastUpdate)
}

func TestLockPayoutAtMaturity(t *testing.T) {
	lock := Lock{Amount: e18(50), StartTime: 1000}

	payout, penalty := lock.PayoutAt(1000 + rnt.LockDuration)
	assert.Equal(t, e18(50), payout)
	assert.Equal(t, &big.Int{}, penalty)

	// well past maturity pays the same
	payout, penalty = lock.PayoutAt(1000 + 10*rnt.LockDuration)
	assert.Equal(t, e18(50), payout)
	assert.Equal(t, &big.Int{}, penalty)
}

func TestLockPayoutEarlyExit(t *testing.T) {
	lock := Lock{Amount: e18(50), StartTime: 1000}

	tests := []struct {
		elapsed         uint64
		payout, penalty *big.Int
	}{
		{0, &big.Int{}, e18(50)},
		{rnt.LockDuration / 2, e18(25), e18(25)},
		{rnt.LockDuration / 5, e18(10), e18(40)},
		{rnt.LockDuration * 3 / 4, new(big.Int).Add(e18(37), big.NewInt(5e17)), new(big.Int).Add(e18(12), big.NewInt(5e17))},
	}
	for _, tt := range tests {
		payout, penalty := lock.PayoutAt(1000 + tt.elapsed)
		assert.Equal(t, tt.payout, payout, "elapsed=%v", tt.elapsed)
		assert.Equal(t, tt.penalty, penalty, "elapsed=%v", tt.elapsed)
		assert.Equal(t, e18(50), new(big.Int).Add(payout, penalty))
	}
}

func TestLockPayoutTruncates(t *testing.T) {
	// penalty = amount * remaining / duration truncates toward zero
	lock := Lock{Amount: big.NewInt(100), StartTime: 0}
	payout, penalty := lock.PayoutAt(rnt.LockDuration / 3)
	assert.Equal(t, big.NewInt(100), new(big.Int).Add(payout, penalty))
	assert.Equal(t, big.NewInt(34), payout)
	assert.Equal(t, big.NewInt(66), penalty)
}

func TestAccountRoundtrip(t *testing.T) {
	acc := Account{Staked: e18(5), Unclaimed: big.NewInt(77), LastUpdate: 12345}
	data, err := acc.Encode()
	assert.Nil(t, err)

	var loaded Account
	assert.Nil(t, loaded.Decode(data))
	assert.Equal(t, acc, loaded)

	// zero-valued account encodes to nothing
	empty := Account{&big.Int{}, &big.Int{}, 0}
	data, err = empty.Encode()
	assert.Nil(t, err)
	assert.Nil(t, data)
}
