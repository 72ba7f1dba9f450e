// Copyright (c) 2024 The RNT StakeLedger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import "github.com/rnt-network/stakeledger/metrics"

var metricEventWritten = metrics.LazyLoadCounterVec("eventdb_event_written_count", []string{"type"})
