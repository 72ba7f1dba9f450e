// Copyright (c) 2024 The RNT StakeLedger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rnt-network/stakeledger/api/restutil"
	"github.com/rnt-network/stakeledger/asset"
	"github.com/rnt-network/stakeledger/eventdb"
	"github.com/rnt-network/stakeledger/kv"
	"github.com/rnt-network/stakeledger/ledger"
	"github.com/rnt-network/stakeledger/rnt"
	"github.com/rnt-network/stakeledger/state"
)

var (
	custodian = rnt.BytesToAddress([]byte("custody"))
	admin     = rnt.BytesToAddress([]byte("admin"))
	alice     = rnt.BytesToAddress([]byte("alice"))
)

type testServer struct {
	now    uint64
	base   *asset.Token
	reward *asset.Token
	ledger *ledger.Ledger
	ts     *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	store, err := kv.NewMem()
	require.Nil(t, err)
	t.Cleanup(func() { store.Close() })

	eventDB, err := eventdb.NewMem()
	require.Nil(t, err)
	t.Cleanup(func() { eventDB.Close() })

	st := state.New(store)
	srv := &testServer{
		now:    1_000_000,
		base:   asset.New(st, "RNT", custodian),
		reward: asset.New(st, "RNU", custodian),
	}
	srv.ledger = ledger.New(st, srv.base, srv.reward, custodian, admin, ledger.Options{
		Now:    func() uint64 { return srv.now },
		Events: eventDB,
	})

	handler := New(srv.ledger, srv.base, srv.reward, eventDB, Options{
		AllowedOrigins: "*",
		EventsLimit:    100,
	})
	srv.ts = httptest.NewServer(handler)
	t.Cleanup(srv.ts.Close)
	return srv
}

func (srv *testServer) pass(d uint64) {
	srv.now += d
}

func (srv *testServer) get(t *testing.T, path string, out any) int {
	res, err := http.Get(srv.ts.URL + path)
	require.Nil(t, err)
	defer res.Body.Close()
	if out != nil && res.StatusCode == http.StatusOK {
		require.Nil(t, json.NewDecoder(res.Body).Decode(out))
	} else {
		io.Copy(io.Discard, res.Body)
	}
	return res.StatusCode
}

func (srv *testServer) post(t *testing.T, path string, body any) int {
	data, err := json.Marshal(body)
	require.Nil(t, err)
	res, err := http.Post(srv.ts.URL+path, "application/json", bytes.NewReader(data))
	require.Nil(t, err)
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)
	return res.StatusCode
}

func e18(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), rnt.E18)
}

func amountBody(caller rnt.Address, amount *big.Int) restutil.M {
	return restutil.M{"caller": caller.String(), "amount": amount.String()}
}

func TestLedgerStatus(t *testing.T) {
	srv := newTestServer(t)

	var status LedgerStatus
	assert.Equal(t, http.StatusOK, srv.get(t, "/ledger", &status))
	assert.Equal(t, big.NewInt(0), (*big.Int)(status.TotalStaked))
	assert.Equal(t, rnt.E18, (*big.Int)(status.RewardRate))
	assert.Equal(t, rnt.LockDuration, status.LockDuration)
}

func TestStakeFlow(t *testing.T) {
	srv := newTestServer(t)
	require.Nil(t, srv.base.Mint(alice, e18(100)))

	// allowance first, then stake
	assert.Equal(t, http.StatusConflict, srv.post(t, "/stake", amountBody(alice, e18(100))))
	assert.Equal(t, http.StatusOK, srv.post(t, "/tokens/rnt/approve",
		restutil.M{"caller": alice.String(), "to": custodian.String(), "amount": e18(100).String()}))
	assert.Equal(t, http.StatusOK, srv.post(t, "/stake", amountBody(alice, e18(100))))

	var acc AccountStatus
	assert.Equal(t, http.StatusOK, srv.get(t, "/accounts/"+alice.String(), &acc))
	assert.Equal(t, e18(100), (*big.Int)(acc.Staked))
	assert.Equal(t, big.NewInt(0), (*big.Int)(acc.Pending))

	srv.pass(rnt.SecondsPerDay)
	var pending struct {
		Pending *math.HexOrDecimal256 `json:"pending"`
	}
	assert.Equal(t, http.StatusOK, srv.get(t, "/accounts/"+alice.String()+"/pending", &pending))
	assert.Equal(t, e18(100), (*big.Int)(pending.Pending))

	var share struct {
		Share *math.HexOrDecimal256 `json:"share"`
	}
	assert.Equal(t, http.StatusOK, srv.get(t, "/accounts/"+alice.String()+"/share", &share))
	assert.Equal(t, rnt.E18, (*big.Int)(share.Share))

	assert.Equal(t, http.StatusOK, srv.post(t, "/unstake", amountBody(alice, e18(100))))
	assert.Equal(t, e18(100), srv.base.BalanceOf(alice))
}

func TestClaimLockUnlockFlow(t *testing.T) {
	srv := newTestServer(t)
	require.Nil(t, srv.base.Mint(alice, e18(100)))
	require.Nil(t, srv.base.Approve(alice, custodian, e18(100)))
	require.Nil(t, srv.ledger.Stake(alice, e18(100)))
	srv.pass(rnt.SecondsPerDay)

	assert.Equal(t, http.StatusOK, srv.post(t, "/claim", restutil.M{"caller": alice.String()}))
	assert.Equal(t, e18(100), srv.reward.BalanceOf(alice))

	assert.Equal(t, http.StatusOK, srv.post(t, "/tokens/rnu/approve",
		restutil.M{"caller": alice.String(), "to": custodian.String(), "amount": e18(100).String()}))
	assert.Equal(t, http.StatusOK, srv.post(t, "/lock", amountBody(alice, e18(100))))

	var lock LockStatus
	assert.Equal(t, http.StatusOK, srv.get(t, "/accounts/"+alice.String()+"/lock", &lock))
	assert.Equal(t, e18(100), (*big.Int)(lock.Amount))
	assert.Equal(t, srv.now, lock.StartTime)
	assert.Equal(t, srv.now+rnt.LockDuration, lock.MatureTime)

	// reserve must cover the payout
	srv.pass(rnt.LockDuration)
	assert.Equal(t, http.StatusConflict, srv.post(t, "/unlock", restutil.M{"caller": alice.String()}))

	require.Nil(t, srv.base.Mint(admin, e18(100)))
	require.Nil(t, srv.base.Approve(admin, custodian, e18(100)))
	assert.Equal(t, http.StatusOK, srv.post(t, "/reserve", amountBody(admin, e18(100))))
	assert.Equal(t, http.StatusOK, srv.post(t, "/unlock", restutil.M{"caller": alice.String()}))
	assert.Equal(t, e18(100), srv.base.BalanceOf(alice))
}

func TestErrorMapping(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, srv.post(t, "/stake", amountBody(alice, big.NewInt(0))))
	assert.Equal(t, http.StatusBadRequest, srv.post(t, "/stake", restutil.M{"caller": "nonsense", "amount": "1"}))
	assert.Equal(t, http.StatusBadRequest, srv.post(t, "/stake", restutil.M{"caller": alice.String(), "amount": "1", "extra": true}))
	assert.Equal(t, http.StatusUnauthorized, srv.post(t, "/reserve", amountBody(alice, e18(1))))
	assert.Equal(t, http.StatusConflict, srv.post(t, "/unlock", restutil.M{"caller": alice.String()}))
	assert.Equal(t, http.StatusConflict, srv.post(t, "/claim", restutil.M{"caller": alice.String()}))
	assert.Equal(t, http.StatusBadRequest, srv.get(t, "/accounts/nonsense", nil))
	assert.Equal(t, http.StatusBadRequest, srv.get(t, "/tokens/xyz/accounts/"+alice.String(), nil))
}

func TestTokenEndpoints(t *testing.T) {
	srv := newTestServer(t)
	bob := rnt.BytesToAddress([]byte("bob"))
	require.Nil(t, srv.base.Mint(alice, e18(10)))

	var info struct {
		Symbol      string                `json:"symbol"`
		TotalSupply *math.HexOrDecimal256 `json:"totalSupply"`
	}
	assert.Equal(t, http.StatusOK, srv.get(t, "/tokens/rnt", &info))
	assert.Equal(t, "RNT", info.Symbol)
	assert.Equal(t, e18(10), (*big.Int)(info.TotalSupply))

	assert.Equal(t, http.StatusOK, srv.post(t, "/tokens/rnt/transfer",
		restutil.M{"caller": alice.String(), "to": bob.String(), "amount": e18(4).String()}))

	var bal struct {
		Balance *math.HexOrDecimal256 `json:"balance"`
	}
	assert.Equal(t, http.StatusOK, srv.get(t, "/tokens/rnt/accounts/"+bob.String(), &bal))
	assert.Equal(t, e18(4), (*big.Int)(bal.Balance))

	// transfer beyond balance moves nothing
	assert.Equal(t, http.StatusConflict, srv.post(t, "/tokens/rnt/transfer",
		restutil.M{"caller": bob.String(), "to": alice.String(), "amount": e18(5).String()}))
	assert.Equal(t, http.StatusOK, srv.get(t, "/tokens/rnt/accounts/"+bob.String(), &bal))
	assert.Equal(t, e18(4), (*big.Int)(bal.Balance))
}

func TestEventsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	require.Nil(t, srv.base.Mint(alice, e18(10)))
	require.Nil(t, srv.base.Approve(alice, custodian, e18(10)))
	require.Nil(t, srv.ledger.Stake(alice, e18(10)))
	srv.pass(10)
	require.Nil(t, srv.ledger.Unstake(alice, e18(10)))

	var events []*Event
	assert.Equal(t, http.StatusOK, srv.get(t, "/events", &events))
	require.Len(t, events, 2)
	assert.Equal(t, ledger.EventStake, events[0].Type)
	assert.Equal(t, ledger.EventUnstake, events[1].Type)
	assert.Equal(t, alice, events[0].Account)

	assert.Equal(t, http.StatusOK, srv.get(t, fmt.Sprintf("/events?type=unstake&account=%s", alice), &events))
	require.Len(t, events, 1)
	assert.Equal(t, ledger.EventUnstake, events[0].Type)

	assert.Equal(t, http.StatusOK, srv.get(t, "/events?order=desc&limit=1", &events))
	require.Len(t, events, 1)
	assert.Equal(t, ledger.EventUnstake, events[0].Type)

	assert.Equal(t, http.StatusBadRequest, srv.get(t, "/events?type=bogus", nil))
	assert.Equal(t, http.StatusBadRequest, srv.get(t, "/events?order=sideways", nil))
	assert.Equal(t, http.StatusBadRequest, srv.get(t, "/events?from=abc", nil))
}
