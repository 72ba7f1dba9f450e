// Copyright (c) 2024 The RNT StakeLedger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/rnt-network/stakeledger/api/restutil"
	"github.com/rnt-network/stakeledger/eventdb"
	"github.com/rnt-network/stakeledger/ledger"
	"github.com/rnt-network/stakeledger/rnt"
)

// Events exposes the persisted ledger event history.
type Events struct {
	db    *eventdb.EventDB
	limit uint64
}

// NewEvents creates the events api. limit caps the page size of one query.
func NewEvents(db *eventdb.EventDB, limit uint64) *Events {
	return &Events{db, limit}
}

func parseUint(query map[string][]string, name string) (uint64, bool, error) {
	vals := query[name]
	if len(vals) == 0 {
		return 0, false, nil
	}
	v, err := strconv.ParseUint(vals[0], 10, 64)
	if err != nil {
		return 0, false, restutil.BadRequest(errors.WithMessage(err, name))
	}
	return v, true, nil
}

// parseFilter builds an event filter from query params: account, type
// (repeatable), from, to, order, offset, limit.
func (e *Events) parseFilter(req *http.Request) (*eventdb.Filter, error) {
	query := req.URL.Query()
	var filter eventdb.Filter

	if s := query.Get("account"); s != "" {
		addr, err := rnt.ParseAddress(s)
		if err != nil {
			return nil, restutil.BadRequest(errors.WithMessage(err, "account"))
		}
		filter.Account = &addr
	}
	for _, t := range query["type"] {
		et := ledger.EventType(t)
		switch et {
		case ledger.EventStake, ledger.EventUnstake, ledger.EventRewardClaimed,
			ledger.EventTokenLocked, ledger.EventTokenUnlocked, ledger.EventReserveDeposited:
		default:
			return nil, restutil.BadRequest(errors.Errorf("type: unknown event type %q", t))
		}
		filter.Types = append(filter.Types, et)
	}

	from, hasFrom, err := parseUint(query, "from")
	if err != nil {
		return nil, err
	}
	to, hasTo, err := parseUint(query, "to")
	if err != nil {
		return nil, err
	}
	switch {
	case hasTo:
		filter.Range = &eventdb.TimeRange{From: from, To: to}
	case hasFrom && from > 0:
		// To below From means no upper bound
		filter.Range = &eventdb.TimeRange{From: from, To: from - 1}
	}

	switch query.Get("order") {
	case "", string(eventdb.ASC):
		filter.Order = eventdb.ASC
	case string(eventdb.DESC):
		filter.Order = eventdb.DESC
	default:
		return nil, restutil.BadRequest(errors.New("order: expected asc or desc"))
	}

	offset, _, err := parseUint(query, "offset")
	if err != nil {
		return nil, err
	}
	limit, hasLimit, err := parseUint(query, "limit")
	if err != nil {
		return nil, err
	}
	if !hasLimit || limit > e.limit {
		limit = e.limit
	}
	filter.Options = &eventdb.Options{Offset: offset, Limit: limit}
	return &filter, nil
}

func (e *Events) handleGetEvents(w http.ResponseWriter, req *http.Request) error {
	filter, err := e.parseFilter(req)
	if err != nil {
		return err
	}
	events, err := e.db.Filter(req.Context(), filter)
	if err != nil {
		return err
	}
	out := make([]*Event, 0, len(events))
	for _, ev := range events {
		out = append(out, &Event{
			Seq:     ev.Seq,
			Time:    ev.Time,
			Type:    ev.Type,
			Account: ev.Account,
			Amount:  hexOrDecimal(ev.Amount),
			Payout:  hexOrDecimal(ev.Payout),
			Penalty: hexOrDecimal(ev.Penalty),
		})
	}
	return restutil.WriteJSON(w, out)
}

// Mount mounts the events api to the given router.
func (e *Events) Mount(router *mux.Router, pathPrefix string) {
	sub := router.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		HandlerFunc(restutil.WrapHandlerFunc(e.handleGetEvents))
}
