// Copyright (c) 2024 The RNT StakeLedger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package asset

import (
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/rnt-network/stakeledger/rnt"
	"github.com/rnt-network/stakeledger/state"
)

var (
	// ErrInsufficientBalance holder's balance can't cover the move.
	ErrInsufficientBalance = errors.New("insufficient asset balance")
	// ErrInsufficientAllowance holder hasn't authorized the custodian for the amount.
	ErrInsufficientAllowance = errors.New("insufficient asset allowance")
	// ErrNegativeAmount amounts must never go below zero.
	ErrNegativeAmount = errors.New("negative asset amount")
)

// Token is a fungible asset ledger stored in ledger state.
//
// Balances, allowances and total supply live under keccak-derived keys
// prefixed by the token symbol, so any number of tokens can share one state.
// Pull/Push move value between holders and the configured custodian address;
// Mint/Burn are privileged issuance, gated by handle possession: only the
// component constructed with the token may call them.
type Token struct {
	state     *state.State
	symbol    string
	custodian rnt.Address
}

// New creates a token ledger handle.
// custodian is the address value moved into by Pull and out of by Push.
func New(st *state.State, symbol string, custodian rnt.Address) *Token {
	return &Token{st, symbol, custodian}
}

func (t *Token) balanceKey(addr rnt.Address) []byte {
	h := crypto.Keccak256Hash([]byte(t.symbol), []byte("balance"), addr.Bytes())
	return h.Bytes()
}

func (t *Token) allowanceKey(owner, spender rnt.Address) []byte {
	h := crypto.Keccak256Hash([]byte(t.symbol), []byte("allowance"), owner.Bytes(), spender.Bytes())
	return h.Bytes()
}

func (t *Token) supplyKey() []byte {
	h := crypto.Keccak256Hash([]byte(t.symbol), []byte("supply"))
	return h.Bytes()
}

// Symbol returns the token symbol.
func (t *Token) Symbol() string {
	return t.symbol
}

// Custodian returns the custody address of the token.
func (t *Token) Custodian() rnt.Address {
	return t.custodian
}

// BalanceOf returns the balance of addr.
func (t *Token) BalanceOf(addr rnt.Address) *big.Int {
	return t.state.GetBigInt(t.balanceKey(addr))
}

// TotalSupply returns the total minted supply.
func (t *Token) TotalSupply() *big.Int {
	return t.state.GetBigInt(t.supplyKey())
}

// Allowance returns the amount spender may pull from owner.
func (t *Token) Allowance(owner, spender rnt.Address) *big.Int {
	return t.state.GetBigInt(t.allowanceKey(owner, spender))
}

// Approve authorizes spender to pull up to amount from owner.
func (t *Token) Approve(owner, spender rnt.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.WithStack(ErrNegativeAmount)
	}
	t.state.SetBigInt(t.allowanceKey(owner, spender), amount)
	return t.state.Err()
}

// Transfer moves amount from one holder to another.
func (t *Token) Transfer(from, to rnt.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.WithStack(ErrNegativeAmount)
	}
	fromKey := t.balanceKey(from)
	bal := t.state.GetBigInt(fromKey)
	if bal.Cmp(amount) < 0 {
		return errors.WithStack(ErrInsufficientBalance)
	}
	t.state.SetBigInt(fromKey, new(big.Int).Sub(bal, amount))

	toKey := t.balanceKey(to)
	t.state.SetBigInt(toKey, new(big.Int).Add(t.state.GetBigInt(toKey), amount))
	return t.state.Err()
}

// Pull moves amount from the holder into custody, consuming allowance.
func (t *Token) Pull(from rnt.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.WithStack(ErrNegativeAmount)
	}
	allowKey := t.allowanceKey(from, t.custodian)
	allowance := t.state.GetBigInt(allowKey)
	if allowance.Cmp(amount) < 0 {
		return errors.WithStack(ErrInsufficientAllowance)
	}
	if err := t.Transfer(from, t.custodian, amount); err != nil {
		return err
	}
	t.state.SetBigInt(allowKey, new(big.Int).Sub(allowance, amount))
	return t.state.Err()
}

// Push moves amount out of custody to the holder.
func (t *Token) Push(to rnt.Address, amount *big.Int) error {
	return t.Transfer(t.custodian, to, amount)
}

// Mint issues amount to addr, growing total supply.
func (t *Token) Mint(to rnt.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.WithStack(ErrNegativeAmount)
	}
	toKey := t.balanceKey(to)
	t.state.SetBigInt(toKey, new(big.Int).Add(t.state.GetBigInt(toKey), amount))
	t.state.SetBigInt(t.supplyKey(), new(big.Int).Add(t.TotalSupply(), amount))
	return t.state.Err()
}

// Burn destroys amount held by addr, shrinking total supply.
func (t *Token) Burn(from rnt.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.WithStack(ErrNegativeAmount)
	}
	fromKey := t.balanceKey(from)
	bal := t.state.GetBigInt(fromKey)
	if bal.Cmp(amount) < 0 {
		return errors.WithStack(ErrInsufficientBalance)
	}
	t.state.SetBigInt(fromKey, new(big.Int).Sub(bal, amount))
	t.state.SetBigInt(t.supplyKey(), new(big.Int).Sub(t.TotalSupply(), amount))
	return t.state.Err()
}
