// Copyright (c) 2024 The RNT StakeLedger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rnt-network/stakeledger/ledger"
	"github.com/rnt-network/stakeledger/rnt"
)

func newTestDB(t *testing.T) *EventDB {
	db, err := NewMem()
	assert.Nil(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func writeTestEvents(t *testing.T, db *EventDB) (alice, bob rnt.Address) {
	alice = rnt.BytesToAddress([]byte("alice"))
	bob = rnt.BytesToAddress([]byte("bob"))

	events := []*ledger.Event{
		{Time: 100, Type: ledger.EventStake, Account: alice, Amount: big.NewInt(10)},
		{Time: 200, Type: ledger.EventStake, Account: bob, Amount: big.NewInt(20)},
		{Time: 300, Type: ledger.EventRewardClaimed, Account: alice, Amount: big.NewInt(5)},
		{Time: 400, Type: ledger.EventTokenUnlocked, Account: alice, Amount: big.NewInt(50),
			Payout: big.NewInt(25), Penalty: big.NewInt(25)},
	}
	for _, ev := range events {
		assert.Nil(t, db.Write(ev))
	}
	return alice, bob
}

func TestWriteAndFilterAll(t *testing.T) {
	db := newTestDB(t)
	writeTestEvents(t, db)

	events, err := db.Filter(context.Background(), nil)
	assert.Nil(t, err)
	assert.Len(t, events, 4)
	assert.Equal(t, uint64(1), events[0].Seq)
	assert.Equal(t, ledger.EventStake, events[0].Type)
	assert.Equal(t, big.NewInt(10), events[0].Amount)
	assert.Nil(t, events[0].Payout)

	unlocked := events[3]
	assert.Equal(t, big.NewInt(25), unlocked.Payout)
	assert.Equal(t, big.NewInt(25), unlocked.Penalty)
}

func TestFilterByAccount(t *testing.T) {
	db := newTestDB(t)
	alice, bob := writeTestEvents(t, db)

	events, err := db.Filter(context.Background(), &Filter{Account: &alice})
	assert.Nil(t, err)
	assert.Len(t, events, 3)

	events, err = db.Filter(context.Background(), &Filter{Account: &bob})
	assert.Nil(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, big.NewInt(20), events[0].Amount)
}

func TestFilterByTypeRangeOrder(t *testing.T) {
	db := newTestDB(t)
	alice, _ := writeTestEvents(t, db)

	events, err := db.Filter(context.Background(), &Filter{
		Types: []ledger.EventType{ledger.EventStake, ledger.EventRewardClaimed},
	})
	assert.Nil(t, err)
	assert.Len(t, events, 3)

	events, err = db.Filter(context.Background(), &Filter{
		Range: &TimeRange{From: 200, To: 300},
	})
	assert.Nil(t, err)
	assert.Len(t, events, 2)

	events, err = db.Filter(context.Background(), &Filter{
		Account: &alice,
		Order:   DESC,
		Options: &Options{Offset: 0, Limit: 2},
	})
	assert.Nil(t, err)
	assert.Len(t, events, 2)
	assert.Equal(t, ledger.EventTokenUnlocked, events[0].Type)
}
