// Copyright (c) 2024 The RNT StakeLedger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/rnt-network/stakeledger/api/restutil"
	"github.com/rnt-network/stakeledger/asset"
	"github.com/rnt-network/stakeledger/ledger"
	"github.com/rnt-network/stakeledger/rnt"
)

// Ledger exposes the staking ledger over REST.
type Ledger struct {
	ledger *ledger.Ledger
}

// NewLedger creates the ledger api.
func NewLedger(led *ledger.Ledger) *Ledger {
	return &Ledger{led}
}

// convertLedgerError maps domain errors to http statuses. Precondition and
// capacity failures are conflicts: the request was well-formed, the ledger
// state just does not allow it right now.
func convertLedgerError(err error) error {
	switch errors.Cause(err) {
	case nil:
		return nil
	case ledger.ErrInvalidAmount, asset.ErrNegativeAmount:
		return restutil.BadRequest(err)
	case ledger.ErrNotAuthorized:
		return restutil.HTTPError(err, http.StatusUnauthorized)
	case ledger.ErrReentrantCall:
		return restutil.Forbidden(err)
	case ledger.ErrInsufficientStake,
		ledger.ErrInsufficientReserve,
		ledger.ErrNoReward,
		ledger.ErrNoLockActive,
		ledger.ErrLockAlreadyActive,
		asset.ErrInsufficientBalance,
		asset.ErrInsufficientAllowance:
		return restutil.HTTPError(err, http.StatusConflict)
	default:
		return err
	}
}

func rntAddress(s, name string) (rnt.Address, error) {
	addr, err := rnt.ParseAddress(s)
	if err != nil {
		return rnt.Address{}, restutil.BadRequest(errors.WithMessage(err, name))
	}
	return addr, nil
}

func parseCaller(s string) (rnt.Address, error) {
	return rntAddress(s, "caller")
}

func parseAddressVar(req *http.Request) (rnt.Address, error) {
	addr, err := rnt.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return rnt.Address{}, restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	return addr, nil
}

func (l *Ledger) handleGetStatus(w http.ResponseWriter, _ *http.Request) error {
	total, err := l.ledger.TotalStaked()
	if err != nil {
		return err
	}
	reserve, err := l.ledger.Reserve()
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &LedgerStatus{
		TotalStaked:  hexOrDecimal(total),
		Reserve:      hexOrDecimal(reserve),
		RewardRate:   hexOrDecimal(rnt.RewardRate),
		LockDuration: rnt.LockDuration,
	})
}

func (l *Ledger) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddressVar(req)
	if err != nil {
		return err
	}
	acc, err := l.ledger.GetAccount(addr)
	if err != nil {
		return err
	}
	pending, err := l.ledger.PendingReward(addr)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &AccountStatus{
		Staked:     hexOrDecimal(acc.Staked),
		Pending:    hexOrDecimal(pending),
		LastUpdate: acc.LastUpdate,
	})
}

func (l *Ledger) handleGetPending(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddressVar(req)
	if err != nil {
		return err
	}
	pending, err := l.ledger.PendingReward(addr)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"pending": hexOrDecimal(pending)})
}

func (l *Ledger) handleGetShare(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddressVar(req)
	if err != nil {
		return err
	}
	share, err := l.ledger.UserShare(addr)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"share": hexOrDecimal(share)})
}

func (l *Ledger) handleGetLock(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddressVar(req)
	if err != nil {
		return err
	}
	lock, err := l.ledger.GetLock(addr)
	if err != nil {
		return err
	}
	status := &LockStatus{Amount: hexOrDecimal(lock.Amount)}
	if lock.Active() {
		status.StartTime = lock.StartTime
		status.MatureTime = lock.MatureTime()
	}
	return restutil.WriteJSON(w, status)
}

// handleAmountOp decodes an {caller, amount} body and runs op.
func (l *Ledger) handleAmountOp(op func(rnt.Address, *big.Int) error) restutil.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		var body AmountRequest
		if err := restutil.ParseJSON(req.Body, &body); err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "body"))
		}
		caller, err := parseCaller(body.Caller)
		if err != nil {
			return err
		}
		if err := convertLedgerError(op(caller, toAmount(body.Amount))); err != nil {
			return err
		}
		return restutil.WriteJSON(w, restutil.M{"ok": true})
	}
}

// handleCallerOp decodes a {caller} body and runs op.
func (l *Ledger) handleCallerOp(op func(rnt.Address) error) restutil.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		var body CallerRequest
		if err := restutil.ParseJSON(req.Body, &body); err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "body"))
		}
		caller, err := parseCaller(body.Caller)
		if err != nil {
			return err
		}
		if err := convertLedgerError(op(caller)); err != nil {
			return err
		}
		return restutil.WriteJSON(w, restutil.M{"ok": true})
	}
}

// Mount mounts the ledger api to the given router.
func (l *Ledger) Mount(router *mux.Router, pathPrefix string) {
	sub := router.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/ledger").
		Methods(http.MethodGet).
		HandlerFunc(restutil.WrapHandlerFunc(l.handleGetStatus))
	sub.Path("/accounts/{address}").
		Methods(http.MethodGet).
		HandlerFunc(restutil.WrapHandlerFunc(l.handleGetAccount))
	sub.Path("/accounts/{address}/pending").
		Methods(http.MethodGet).
		HandlerFunc(restutil.WrapHandlerFunc(l.handleGetPending))
	sub.Path("/accounts/{address}/share").
		Methods(http.MethodGet).
		HandlerFunc(restutil.WrapHandlerFunc(l.handleGetShare))
	sub.Path("/accounts/{address}/lock").
		Methods(http.MethodGet).
		HandlerFunc(restutil.WrapHandlerFunc(l.handleGetLock))

	sub.Path("/stake").
		Methods(http.MethodPost).
		HandlerFunc(restutil.WrapHandlerFunc(l.handleAmountOp(l.ledger.Stake)))
	sub.Path("/unstake").
		Methods(http.MethodPost).
		HandlerFunc(restutil.WrapHandlerFunc(l.handleAmountOp(l.ledger.Unstake)))
	sub.Path("/claim").
		Methods(http.MethodPost).
		HandlerFunc(restutil.WrapHandlerFunc(l.handleCallerOp(l.ledger.ClaimReward)))
	sub.Path("/lock").
		Methods(http.MethodPost).
		HandlerFunc(restutil.WrapHandlerFunc(l.handleAmountOp(l.ledger.LockTokens)))
	sub.Path("/unlock").
		Methods(http.MethodPost).
		HandlerFunc(restutil.WrapHandlerFunc(l.handleCallerOp(l.ledger.UnlockTokens)))
	sub.Path("/reserve").
		Methods(http.MethodPost).
		HandlerFunc(restutil.WrapHandlerFunc(l.handleAmountOp(l.ledger.DepositReserve)))
}
