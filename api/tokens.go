// Copyright (c) 2024 The RNT StakeLedger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/rnt-network/stakeledger/api/restutil"
	"github.com/rnt-network/stakeledger/asset"
	"github.com/rnt-network/stakeledger/ledger"
)

// Tokens exposes the two asset ledgers. Mutating calls are serialized with
// ledger operations through ledger.Transact.
type Tokens struct {
	ledger *ledger.Ledger
	tokens map[string]*asset.Token
}

// NewTokens creates the tokens api.
func NewTokens(led *ledger.Ledger, tokens ...*asset.Token) *Tokens {
	bySymbol := make(map[string]*asset.Token, len(tokens))
	for _, t := range tokens {
		bySymbol[strings.ToLower(t.Symbol())] = t
	}
	return &Tokens{led, bySymbol}
}

func (t *Tokens) tokenVar(req *http.Request) (*asset.Token, error) {
	symbol := mux.Vars(req)["symbol"]
	token, ok := t.tokens[strings.ToLower(symbol)]
	if !ok {
		return nil, restutil.BadRequest(errors.Errorf("symbol: unknown token %q", symbol))
	}
	return token, nil
}

func (t *Tokens) handleGetToken(w http.ResponseWriter, req *http.Request) error {
	token, err := t.tokenVar(req)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{
		"symbol":      token.Symbol(),
		"totalSupply": hexOrDecimal(token.TotalSupply()),
		"custodian":   token.Custodian(),
	})
}

func (t *Tokens) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	token, err := t.tokenVar(req)
	if err != nil {
		return err
	}
	addr, err := parseAddressVar(req)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{
		"balance":   hexOrDecimal(token.BalanceOf(addr)),
		"allowance": hexOrDecimal(token.Allowance(addr, token.Custodian())),
	})
}

// handleApprove approves spending of the caller's balance. The "to" address
// is the spender, normally the ledger custodian.
func (t *Tokens) handleApprove(w http.ResponseWriter, req *http.Request) error {
	token, err := t.tokenVar(req)
	if err != nil {
		return err
	}
	var body TransferRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	caller, err := parseCaller(body.Caller)
	if err != nil {
		return err
	}
	spender, err := rntAddress(body.To, "to")
	if err != nil {
		return err
	}
	err = t.ledger.Transact(func() error {
		return token.Approve(caller, spender, toAmount(body.Amount))
	})
	if err := convertLedgerError(err); err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"ok": true})
}

func (t *Tokens) handleTransfer(w http.ResponseWriter, req *http.Request) error {
	token, err := t.tokenVar(req)
	if err != nil {
		return err
	}
	var body TransferRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	caller, err := parseCaller(body.Caller)
	if err != nil {
		return err
	}
	to, err := rntAddress(body.To, "to")
	if err != nil {
		return err
	}
	err = t.ledger.Transact(func() error {
		return token.Transfer(caller, to, toAmount(body.Amount))
	})
	if err := convertLedgerError(err); err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"ok": true})
}

// Mount mounts the tokens api to the given router.
func (t *Tokens) Mount(router *mux.Router, pathPrefix string) {
	sub := router.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{symbol}").
		Methods(http.MethodGet).
		HandlerFunc(restutil.WrapHandlerFunc(t.handleGetToken))
	sub.Path("/{symbol}/accounts/{address}").
		Methods(http.MethodGet).
		HandlerFunc(restutil.WrapHandlerFunc(t.handleGetBalance))
	sub.Path("/{symbol}/approve").
		Methods(http.MethodPost).
		HandlerFunc(restutil.WrapHandlerFunc(t.handleApprove))
	sub.Path("/{symbol}/transfer").
		Methods(http.MethodPost).
		HandlerFunc(restutil.WrapHandlerFunc(t.handleTransfer))
}
