// Copyright (c) 2024 The RNT StakeLedger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/rnt-network/stakeledger/log"
	"github.com/rnt-network/stakeledger/rnt"
	"github.com/rnt-network/stakeledger/state"
)

var logger = log.WithContext("pkg", "ledger")

// Custody is the fungible-asset port the ledger needs for the base asset.
// Pull moves amount from the holder into ledger custody, subject to an
// allowance the holder must have pre-authorized; Push moves amount out of
// custody to the holder. Both are atomic and fail without moving anything.
type Custody interface {
	Pull(from rnt.Address, amount *big.Int) error
	Push(to rnt.Address, amount *big.Int) error
}

// Issuer extends Custody with privileged issuance, used for the reward asset.
type Issuer interface {
	Custody
	Mint(to rnt.Address, amount *big.Int) error
	Burn(from rnt.Address, amount *big.Int) error
}

// Options optional ledger settings.
type Options struct {
	// Now supplies the current unix time in seconds. Defaults to wall clock.
	Now func() uint64
	// Events receives one event per successful mutating operation.
	Events EventWriter
}

// Ledger is the time-weighted staking ledger.
//
// Accounts stake the base asset and accrue the reward asset continuously in
// proportion to stake-duration. Accrued rewards can be claimed, and claimed
// rewards can be locked into a fixed-duration vesting schedule that converts
// back to the base asset: in full at maturity, linearly discounted on early
// exit. Payouts are bounded by an admin-funded reserve.
//
// Every mutating operation is transactional: internal state and all asset
// moves commit together or not at all. Concurrent callers serialize on an
// internal lock; only true re-entry from within an asset-port call is
// rejected, with ErrReentrantCall.
type Ledger struct {
	state     *state.State
	base      Custody
	reward    Issuer
	custodian rnt.Address
	admin     rnt.Address
	now       func() uint64
	events    EventWriter

	mu    sync.RWMutex
	guard reentryGuard
}

// New creates a ledger.
// custodian is the custody address of both asset ports, admin the only
// address allowed to fund the reserve.
func New(st *state.State, base Custody, reward Issuer, custodian, admin rnt.Address, opts Options) *Ledger {
	now := opts.Now
	if now == nil {
		now = func() uint64 { return uint64(time.Now().Unix()) }
	}
	l := &Ledger{
		state:     st,
		custodian: custodian,
		admin:     admin,
		now:       now,
		events:    opts.Events,
	}
	l.base = &guardedCustody{&l.guard, base}
	l.reward = &guardedIssuer{guardedCustody{&l.guard, reward}, reward}
	return l
}

func (l *Ledger) getAccount(addr rnt.Address) *Account {
	var acc Account
	l.state.GetStructed(accountKey(addr), &acc)
	return &acc
}

func (l *Ledger) setAccount(addr rnt.Address, acc *Account) {
	l.state.SetStructed(accountKey(addr), acc)
}

func (l *Ledger) getLock(addr rnt.Address) *Lock {
	var lock Lock
	l.state.GetStructed(lockKey(addr), &lock)
	return &lock
}

func (l *Ledger) setLock(addr rnt.Address, lock *Lock) {
	l.state.SetStructed(lockKey(addr), lock)
}

// run executes a mutating operation under the ledger lock, inside a state
// checkpoint. Independent concurrent callers queue on the lock; re-entry
// from within an asset-port call is rejected with ErrReentrantCall before
// it can deadlock. On failure the checkpoint is reverted, so no state or
// asset movement survives.
func (l *Ledger) run(op string, fn func(now uint64) (*Event, error)) (err error) {
	defer func() { countOp(op, err) }()

	if l.guard.reentered() {
		return errors.WithStack(ErrReentrantCall)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cp := l.state.NewCheckpoint()
	ev, err := fn(now)
	if err == nil {
		err = l.state.Err()
	}
	if err != nil {
		l.state.RevertTo(cp)
		return err
	}
	if err = l.state.Commit(); err != nil {
		return err
	}
	gaugeAmount(metricTotalStaked, l.state.GetBigInt(totalStakedKey))
	gaugeAmount(metricReserve, l.state.GetBigInt(reserveKey))
	l.emit(ev)
	return nil
}

// emit hands the event to the configured writer.
// Event delivery is best-effort: the operation has already committed.
func (l *Ledger) emit(ev *Event) {
	if l.events == nil || ev == nil {
		return
	}
	if err := l.events.Write(ev); err != nil {
		metricEventWriteFailed().Add(1)
		logger.Warn("failed to write event", "type", ev.Type, "err", err)
	}
}

// Stake moves amount of the base asset from the caller into the ledger and
// starts accruing rewards on it.
func (l *Ledger) Stake(caller rnt.Address, amount *big.Int) error {
	return l.run("stake", func(now uint64) (*Event, error) {
		acc := l.getAccount(caller)
		acc.checkpoint(now)
		if amount == nil || amount.Sign() <= 0 {
			return nil, errors.WithStack(ErrInvalidAmount)
		}

		acc.Staked = new(big.Int).Add(acc.Staked, amount)
		l.setAccount(caller, acc)
		l.state.SetBigInt(totalStakedKey, new(big.Int).Add(l.state.GetBigInt(totalStakedKey), amount))

		if err := l.base.Pull(caller, amount); err != nil {
			return nil, err
		}
		return &Event{Time: now, Type: EventStake, Account: caller, Amount: amount}, nil
	})
}

// Unstake returns amount of staked base asset to the caller.
func (l *Ledger) Unstake(caller rnt.Address, amount *big.Int) error {
	return l.run("unstake", func(now uint64) (*Event, error) {
		acc := l.getAccount(caller)
		acc.checkpoint(now)
		if amount == nil || amount.Sign() <= 0 {
			return nil, errors.WithStack(ErrInvalidAmount)
		}
		if acc.Staked.Cmp(amount) < 0 {
			return nil, errors.WithStack(ErrInsufficientStake)
		}

		acc.Staked = new(big.Int).Sub(acc.Staked, amount)
		l.setAccount(caller, acc)
		l.state.SetBigInt(totalStakedKey, new(big.Int).Sub(l.state.GetBigInt(totalStakedKey), amount))

		if err := l.base.Push(caller, amount); err != nil {
			return nil, err
		}
		return &Event{Time: now, Type: EventUnstake, Account: caller, Amount: amount}, nil
	})
}

// ClaimReward mints all accrued rewards to the caller and resets the
// unclaimed balance. This is the only mint site of the reward asset.
func (l *Ledger) ClaimReward(caller rnt.Address) error {
	return l.run("claim_reward", func(now uint64) (*Event, error) {
		acc := l.getAccount(caller)
		acc.checkpoint(now)
		if acc.Unclaimed.Sign() == 0 {
			return nil, errors.WithStack(ErrNoReward)
		}

		reward := acc.Unclaimed
		acc.Unclaimed = &big.Int{}
		l.setAccount(caller, acc)

		if err := l.reward.Mint(caller, reward); err != nil {
			return nil, err
		}
		return &Event{Time: now, Type: EventRewardClaimed, Account: caller, Amount: reward}, nil
	})
}

// LockTokens moves amount of the caller's reward asset into a one-shot
// vesting lock starting now. At most one lock per account.
//
// The lock operates on the reward asset only, so the stake-accrual
// checkpoint is deliberately not run here.
func (l *Ledger) LockTokens(caller rnt.Address, amount *big.Int) error {
	return l.run("lock_tokens", func(now uint64) (*Event, error) {
		if amount == nil || amount.Sign() <= 0 {
			return nil, errors.WithStack(ErrInvalidAmount)
		}
		if l.getLock(caller).Active() {
			return nil, errors.WithStack(ErrLockAlreadyActive)
		}

		if err := l.reward.Pull(caller, amount); err != nil {
			return nil, err
		}
		l.setLock(caller, &Lock{Amount: amount, StartTime: now})
		return &Event{Time: now, Type: EventTokenLocked, Account: caller, Amount: amount}, nil
	})
}

// UnlockTokens consumes the caller's lock, paying out the base asset from
// the reserve. At or after maturity the full locked amount is paid; before
// maturity a linear share of the remaining lock time is destroyed instead.
//
// The whole call fails with ErrInsufficientReserve when the computed payout
// exceeds the reserve; the lock survives and can be retried later.
func (l *Ledger) UnlockTokens(caller rnt.Address) error {
	return l.run("unlock_tokens", func(now uint64) (*Event, error) {
		lock := l.getLock(caller)
		if !lock.Active() {
			return nil, errors.WithStack(ErrNoLockActive)
		}

		payout, penalty := lock.PayoutAt(now)
		reserve := l.state.GetBigInt(reserveKey)
		if payout.Cmp(reserve) > 0 {
			return nil, errors.WithStack(ErrInsufficientReserve)
		}

		l.setLock(caller, &Lock{Amount: &big.Int{}})
		l.state.SetBigInt(reserveKey, new(big.Int).Sub(reserve, payout))

		if penalty.Sign() > 0 {
			if err := l.reward.Burn(l.custodian, penalty); err != nil {
				return nil, err
			}
		}
		if err := l.base.Push(caller, payout); err != nil {
			return nil, err
		}
		return &Event{Time: now, Type: EventTokenUnlocked, Account: caller, Amount: lock.Amount, Payout: payout, Penalty: penalty}, nil
	})
}

// DepositReserve pulls amount of the base asset from the caller into the
// reserve backing unlock payouts. Admin only.
func (l *Ledger) DepositReserve(caller rnt.Address, amount *big.Int) error {
	return l.run("deposit_reserve", func(now uint64) (*Event, error) {
		if amount == nil || amount.Sign() <= 0 {
			return nil, errors.WithStack(ErrInvalidAmount)
		}
		if caller != l.admin {
			return nil, errors.WithStack(ErrNotAuthorized)
		}

		if err := l.base.Pull(caller, amount); err != nil {
			return nil, err
		}
		l.state.SetBigInt(reserveKey, new(big.Int).Add(l.state.GetBigInt(reserveKey), amount))
		return &Event{Time: now, Type: EventReserveDeposited, Account: caller, Amount: amount}, nil
	})
}

// Transact runs fn against the ledger's backing state, serialized with the
// ledger's own operations and with the same all-or-nothing commit. It exists
// for collaborators that share the state, like the asset endpoints.
func (l *Ledger) Transact(fn func() error) error {
	return l.run("transact", func(uint64) (*Event, error) {
		return nil, fn()
	})
}

// PendingReward returns the caller's claimable rewards as of now, including
// accrual not yet checkpointed. It never mutates state.
func (l *Ledger) PendingReward(addr rnt.Address) (*big.Int, error) {
	if l.guard.reentered() {
		return nil, errors.WithStack(ErrReentrantCall)
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	pending := l.getAccount(addr).PendingAt(l.now())
	return pending, l.state.Err()
}

// UserShare returns the rate-scaled proportional-stake metric
// staked * RewardRate / totalStaked, zero when nothing is staked.
func (l *Ledger) UserShare(addr rnt.Address) (*big.Int, error) {
	if l.guard.reentered() {
		return nil, errors.WithStack(ErrReentrantCall)
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := l.state.GetBigInt(totalStakedKey)
	if total.Sign() == 0 {
		return &big.Int{}, l.state.Err()
	}
	share := new(big.Int).Mul(l.getAccount(addr).Staked, rnt.RewardRate)
	share.Div(share, total)
	return share, l.state.Err()
}

// GetAccount returns a copy of the staking record of addr.
func (l *Ledger) GetAccount(addr rnt.Address) (*Account, error) {
	if l.guard.reentered() {
		return nil, errors.WithStack(ErrReentrantCall)
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	acc := l.getAccount(addr)
	return acc, l.state.Err()
}

// GetLock returns a copy of the outstanding lock of addr, if any.
func (l *Ledger) GetLock(addr rnt.Address) (*Lock, error) {
	if l.guard.reentered() {
		return nil, errors.WithStack(ErrReentrantCall)
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	lock := l.getLock(addr)
	return lock, l.state.Err()
}

// TotalStaked returns the sum of all staked amounts.
func (l *Ledger) TotalStaked() (*big.Int, error) {
	if l.guard.reentered() {
		return nil, errors.WithStack(ErrReentrantCall)
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.state.GetBigInt(totalStakedKey), l.state.Err()
}

// Reserve returns the base-asset reserve available to back unlock payouts.
func (l *Ledger) Reserve() (*big.Int, error) {
	if l.guard.reentered() {
		return nil, errors.WithStack(ErrReentrantCall)
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.state.GetBigInt(reserveKey), l.state.Err()
}
