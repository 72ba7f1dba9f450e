// Copyright (c) 2024 The RNT StakeLedger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"context"
	"database/sql"
	"math/big"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/rnt-network/stakeledger/ledger"
	"github.com/rnt-network/stakeledger/rnt"
)

const eventTableSchema = `CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	ts INTEGER NOT NULL,
	type TEXT NOT NULL,
	account BLOB NOT NULL,
	amount TEXT NOT NULL,
	payout TEXT,
	penalty TEXT
);
CREATE INDEX IF NOT EXISTS event_i1 ON event(account);
CREATE INDEX IF NOT EXISTS event_i2 ON event(ts);`

// Event is a persisted ledger event with its assigned sequence number.
type Event struct {
	Seq uint64
	ledger.Event
}

// Order of filtered output by sequence.
type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// TimeRange filters events by [From, To] timestamps. To below From means
// "no upper bound".
type TimeRange struct {
	From uint64
	To   uint64
}

// Options paging options.
type Options struct {
	Offset uint64
	Limit  uint64
}

// Filter criteria for querying events.
type Filter struct {
	Account *rnt.Address
	Types   []ledger.EventType
	Range   *TimeRange
	Order   Order
	Options *Options
}

// EventDB is an append-only store of ledger events backed by sqlite.
type EventDB struct {
	path string
	db   *sql.DB
}

// New creates or opens an event db at the given path.
func New(path string) (*EventDB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open event db")
	}
	if _, err := db.Exec(eventTableSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "init event db schema")
	}
	return &EventDB{path, db}, nil
}

// NewMem creates an event db in ram, for testing.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

// Close closes the event db.
func (db *EventDB) Close() error {
	return db.db.Close()
}

// Path returns the db file path.
func (db *EventDB) Path() string {
	return db.path
}

// Write appends one event. It implements ledger.EventWriter.
func (db *EventDB) Write(ev *ledger.Event) error {
	_, err := db.db.Exec(
		"INSERT INTO event(ts, type, account, amount, payout, penalty) VALUES(?,?,?,?,?,?)",
		ev.Time,
		string(ev.Type),
		ev.Account.Bytes(),
		bigText(ev.Amount),
		bigText(ev.Payout),
		bigText(ev.Penalty),
	)
	if err != nil {
		return errors.Wrap(err, "write event")
	}
	metricEventWritten().AddWithLabel(1, map[string]string{"type": string(ev.Type)})
	return nil
}

// Filter queries events matching the given criteria.
func (db *EventDB) Filter(ctx context.Context, filter *Filter) ([]*Event, error) {
	stmt := "SELECT seq, ts, type, account, amount, payout, penalty FROM event WHERE 1"
	var args []any

	if filter == nil {
		filter = &Filter{}
	}
	if filter.Account != nil {
		stmt += " AND account = ?"
		args = append(args, filter.Account.Bytes())
	}
	if len(filter.Types) > 0 {
		stmt += " AND type IN (?"
		args = append(args, string(filter.Types[0]))
		for _, t := range filter.Types[1:] {
			stmt += ",?"
			args = append(args, string(t))
		}
		stmt += ")"
	}
	if filter.Range != nil {
		stmt += " AND ts >= ?"
		args = append(args, filter.Range.From)
		if filter.Range.To >= filter.Range.From {
			stmt += " AND ts <= ?"
			args = append(args, filter.Range.To)
		}
	}
	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}
	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}

	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query events")
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			ev                      Event
			evType                  string
			account                 []byte
			amount, payout, penalty sql.NullString
		)
		if err := rows.Scan(&ev.Seq, &ev.Time, &evType, &account, &amount, &payout, &penalty); err != nil {
			return nil, errors.Wrap(err, "scan event")
		}
		ev.Type = ledger.EventType(evType)
		ev.Account = rnt.BytesToAddress(account)
		if ev.Amount, err = parseBigText(amount); err != nil {
			return nil, err
		}
		if ev.Payout, err = parseBigText(payout); err != nil {
			return nil, err
		}
		if ev.Penalty, err = parseBigText(penalty); err != nil {
			return nil, err
		}
		events = append(events, &ev)
	}
	return events, rows.Err()
}

func bigText(v *big.Int) any {
	if v == nil {
		return nil
	}
	return v.String()
}

func parseBigText(v sql.NullString) (*big.Int, error) {
	if !v.Valid {
		return nil, nil
	}
	x, ok := new(big.Int).SetString(v.String, 10)
	if !ok {
		return nil, errors.Errorf("bad amount text %q", v.String)
	}
	return x, nil
}
