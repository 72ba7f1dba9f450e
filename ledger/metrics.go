// Copyright (c) 2024 The RNT StakeLedger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/rnt-network/stakeledger/metrics"
	"github.com/rnt-network/stakeledger/rnt"
)

var (
	metricOpCounter        = metrics.LazyLoadCounterVec("ledger_op_count", []string{"op", "status"})
	metricEventWriteFailed = metrics.LazyLoadCounter("ledger_event_write_failed_count")
	metricTotalStaked      = metrics.LazyLoadGauge("ledger_total_staked_tokens")
	metricReserve          = metrics.LazyLoadGauge("ledger_reserve_tokens")
)

func countOp(op string, err error) {
	status := "ok"
	if err != nil {
		status = "failed"
	}
	metricOpCounter().AddWithLabel(1, map[string]string{"op": op, "status": status})
}

// gaugeAmount reports in whole tokens; gauges are indicative, the state
// holds the exact figures.
func gaugeAmount(g func() metrics.GaugeMeter, v *big.Int) {
	whole := new(big.Int).Div(v, rnt.E18)
	if whole.IsInt64() {
		g().Set(whole.Int64())
	}
}
