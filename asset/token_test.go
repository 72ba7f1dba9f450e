// Copyright (c) 2024 The RNT StakeLedger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package asset

import (
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/rnt-network/stakeledger/kv"
	"github.com/rnt-network/stakeledger/rnt"
	"github.com/rnt-network/stakeledger/state"
)

func newTestToken(t *testing.T) *Token {
	store, err := kv.NewMem()
	assert.Nil(t, err)
	t.Cleanup(func() { store.Close() })
	return New(state.New(store), "RNT", rnt.BytesToAddress([]byte("custody")))
}

func TestTokenMintTransferBurn(t *testing.T) {
	tok := newTestToken(t)
	a1 := rnt.BytesToAddress([]byte("a1"))
	a2 := rnt.BytesToAddress([]byte("a2"))

	assert.Nil(t, tok.Mint(a1, big.NewInt(100)))
	assert.Equal(t, big.NewInt(100), tok.BalanceOf(a1))
	assert.Equal(t, big.NewInt(100), tok.TotalSupply())

	assert.Nil(t, tok.Transfer(a1, a2, big.NewInt(30)))
	assert.Equal(t, big.NewInt(70), tok.BalanceOf(a1))
	assert.Equal(t, big.NewInt(30), tok.BalanceOf(a2))

	err := tok.Transfer(a1, a2, big.NewInt(71))
	assert.Equal(t, ErrInsufficientBalance, errors.Cause(err))

	assert.Nil(t, tok.Burn(a2, big.NewInt(30)))
	assert.Equal(t, &big.Int{}, tok.BalanceOf(a2))
	assert.Equal(t, big.NewInt(70), tok.TotalSupply())

	err = tok.Burn(a2, big.NewInt(1))
	assert.Equal(t, ErrInsufficientBalance, errors.Cause(err))
}

func TestTokenPullRequiresAllowance(t *testing.T) {
	tok := newTestToken(t)
	a1 := rnt.BytesToAddress([]byte("a1"))

	assert.Nil(t, tok.Mint(a1, big.NewInt(100)))

	err := tok.Pull(a1, big.NewInt(10))
	assert.Equal(t, ErrInsufficientAllowance, errors.Cause(err))
	assert.Equal(t, big.NewInt(100), tok.BalanceOf(a1))

	assert.Nil(t, tok.Approve(a1, tok.Custodian(), big.NewInt(40)))
	assert.Nil(t, tok.Pull(a1, big.NewInt(10)))
	assert.Equal(t, big.NewInt(90), tok.BalanceOf(a1))
	assert.Equal(t, big.NewInt(10), tok.BalanceOf(tok.Custodian()))
	assert.Equal(t, big.NewInt(30), tok.Allowance(a1, tok.Custodian()))

	// allowance covers it but balance doesn't
	assert.Nil(t, tok.Approve(a1, tok.Custodian(), big.NewInt(1000)))
	err = tok.Pull(a1, big.NewInt(500))
	assert.Equal(t, ErrInsufficientBalance, errors.Cause(err))
}

func TestTokenPush(t *testing.T) {
	tok := newTestToken(t)
	a1 := rnt.BytesToAddress([]byte("a1"))

	assert.Nil(t, tok.Mint(tok.Custodian(), big.NewInt(50)))
	assert.Nil(t, tok.Push(a1, big.NewInt(20)))
	assert.Equal(t, big.NewInt(20), tok.BalanceOf(a1))

	err := tok.Push(a1, big.NewInt(31))
	assert.Equal(t, ErrInsufficientBalance, errors.Cause(err))
}

func TestTwoTokensShareState(t *testing.T) {
	store, _ := kv.NewMem()
	defer store.Close()
	st := state.New(store)

	custody := rnt.BytesToAddress([]byte("custody"))
	base := New(st, "RNT", custody)
	reward := New(st, "RNU", custody)
	a1 := rnt.BytesToAddress([]byte("a1"))

	assert.Nil(t, base.Mint(a1, big.NewInt(7)))
	assert.Equal(t, &big.Int{}, reward.BalanceOf(a1))
	assert.Equal(t, big.NewInt(7), base.BalanceOf(a1))
}
