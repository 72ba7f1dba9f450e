// Copyright (c) 2024 The RNT StakeLedger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package client provides an HTTP client to interact with a StakeLedger service.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/rnt-network/stakeledger/api"
	"github.com/rnt-network/stakeledger/ledger"
	"github.com/rnt-network/stakeledger/rnt"
)

// ErrUnexpectedStatus is returned when the service responds with a non-200
// status. The response body is attached as context.
var ErrUnexpectedStatus = errors.New("unexpected status code")

// Client talks to a StakeLedger service over HTTP.
type Client struct {
	url string
	c   *http.Client
}

// New creates a client for the service at url.
func New(url string) *Client {
	return NewWithHTTP(url, http.DefaultClient)
}

// NewWithHTTP creates a client using the given http.Client.
func NewWithHTTP(url string, c *http.Client) *Client {
	return &Client{url: url, c: c}
}

func (c *Client) httpGET(url string, out any) error {
	res, err := c.c.Get(url)
	if err != nil {
		return errors.WithMessage(err, "http get")
	}
	return decodeResponse(res, out)
}

func (c *Client) httpPOST(url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return errors.WithMessage(err, "marshal request")
	}
	res, err := c.c.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		return errors.WithMessage(err, "http post")
	}
	return decodeResponse(res, out)
}

func decodeResponse(res *http.Response, out any) error {
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return errors.WithMessage(ErrUnexpectedStatus, fmt.Sprintf("%d: %s", res.StatusCode, bytes.TrimSpace(msg)))
	}
	if out == nil {
		io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return errors.WithMessage(err, "unmarshal response")
	}
	return nil
}

func amountBody(caller rnt.Address, amount *big.Int) map[string]any {
	return map[string]any{
		"caller": caller.String(),
		"amount": (*math.HexOrDecimal256)(amount),
	}
}

// LedgerStatus retrieves the global ledger figures.
func (c *Client) LedgerStatus() (*api.LedgerStatus, error) {
	var status api.LedgerStatus
	if err := c.httpGET(c.url+"/ledger", &status); err != nil {
		return nil, errors.WithMessage(err, "retrieve ledger status")
	}
	return &status, nil
}

// Account retrieves the staking record of addr.
func (c *Client) Account(addr rnt.Address) (*api.AccountStatus, error) {
	var acc api.AccountStatus
	if err := c.httpGET(c.url+"/accounts/"+addr.String(), &acc); err != nil {
		return nil, errors.WithMessage(err, "retrieve account")
	}
	return &acc, nil
}

// PendingReward retrieves the claimable rewards of addr.
func (c *Client) PendingReward(addr rnt.Address) (*big.Int, error) {
	var out struct {
		Pending *math.HexOrDecimal256 `json:"pending"`
	}
	if err := c.httpGET(c.url+"/accounts/"+addr.String()+"/pending", &out); err != nil {
		return nil, errors.WithMessage(err, "retrieve pending reward")
	}
	return (*big.Int)(out.Pending), nil
}

// UserShare retrieves the proportional-stake metric of addr.
func (c *Client) UserShare(addr rnt.Address) (*big.Int, error) {
	var out struct {
		Share *math.HexOrDecimal256 `json:"share"`
	}
	if err := c.httpGET(c.url+"/accounts/"+addr.String()+"/share", &out); err != nil {
		return nil, errors.WithMessage(err, "retrieve user share")
	}
	return (*big.Int)(out.Share), nil
}

// Lock retrieves the outstanding vesting lock of addr.
func (c *Client) Lock(addr rnt.Address) (*api.LockStatus, error) {
	var lock api.LockStatus
	if err := c.httpGET(c.url+"/accounts/"+addr.String()+"/lock", &lock); err != nil {
		return nil, errors.WithMessage(err, "retrieve lock")
	}
	return &lock, nil
}

// Stake stakes amount of the base asset for caller.
func (c *Client) Stake(caller rnt.Address, amount *big.Int) error {
	return c.httpPOST(c.url+"/stake", amountBody(caller, amount), nil)
}

// Unstake returns amount of staked base asset to caller.
func (c *Client) Unstake(caller rnt.Address, amount *big.Int) error {
	return c.httpPOST(c.url+"/unstake", amountBody(caller, amount), nil)
}

// ClaimReward claims all accrued rewards of caller.
func (c *Client) ClaimReward(caller rnt.Address) error {
	return c.httpPOST(c.url+"/claim", map[string]any{"caller": caller.String()}, nil)
}

// LockTokens locks amount of caller's reward asset into vesting.
func (c *Client) LockTokens(caller rnt.Address, amount *big.Int) error {
	return c.httpPOST(c.url+"/lock", amountBody(caller, amount), nil)
}

// UnlockTokens consumes caller's vesting lock.
func (c *Client) UnlockTokens(caller rnt.Address) error {
	return c.httpPOST(c.url+"/unlock", map[string]any{"caller": caller.String()}, nil)
}

// DepositReserve funds the unlock reserve. Admin only.
func (c *Client) DepositReserve(caller rnt.Address, amount *big.Int) error {
	return c.httpPOST(c.url+"/reserve", amountBody(caller, amount), nil)
}

// Balance retrieves the balance and custody allowance of addr on the token
// named by symbol.
func (c *Client) Balance(symbol string, addr rnt.Address) (balance, allowance *big.Int, err error) {
	var out struct {
		Balance   *math.HexOrDecimal256 `json:"balance"`
		Allowance *math.HexOrDecimal256 `json:"allowance"`
	}
	if err := c.httpGET(c.url+"/tokens/"+url.PathEscape(symbol)+"/accounts/"+addr.String(), &out); err != nil {
		return nil, nil, errors.WithMessage(err, "retrieve balance")
	}
	return (*big.Int)(out.Balance), (*big.Int)(out.Allowance), nil
}

// Approve authorizes spender to spend amount of caller's tokens.
func (c *Client) Approve(symbol string, caller, spender rnt.Address, amount *big.Int) error {
	body := amountBody(caller, amount)
	body["to"] = spender.String()
	return c.httpPOST(c.url+"/tokens/"+url.PathEscape(symbol)+"/approve", body, nil)
}

// Transfer moves amount of caller's tokens to the given address.
func (c *Client) Transfer(symbol string, caller, to rnt.Address, amount *big.Int) error {
	body := amountBody(caller, amount)
	body["to"] = to.String()
	return c.httpPOST(c.url+"/tokens/"+url.PathEscape(symbol)+"/transfer", body, nil)
}

// EventFilter narrows an Events query. Zero value means no filtering.
type EventFilter struct {
	Account *rnt.Address
	Types   []ledger.EventType
	From    *uint64
	To      *uint64
	Desc    bool
	Offset  uint64
	Limit   uint64
}

// Events retrieves persisted ledger events matching the filter.
func (c *Client) Events(filter *EventFilter) ([]*api.Event, error) {
	query := url.Values{}
	if filter != nil {
		if filter.Account != nil {
			query.Set("account", filter.Account.String())
		}
		for _, t := range filter.Types {
			query.Add("type", string(t))
		}
		if filter.From != nil {
			query.Set("from", strconv.FormatUint(*filter.From, 10))
		}
		if filter.To != nil {
			query.Set("to", strconv.FormatUint(*filter.To, 10))
		}
		if filter.Desc {
			query.Set("order", "desc")
		}
		if filter.Offset > 0 {
			query.Set("offset", strconv.FormatUint(filter.Offset, 10))
		}
		if filter.Limit > 0 {
			query.Set("limit", strconv.FormatUint(filter.Limit, 10))
		}
	}
	u := c.url + "/events"
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var events []*api.Event
	if err := c.httpGET(u, &events); err != nil {
		return nil, errors.WithMessage(err, "retrieve events")
	}
	return events, nil
}
