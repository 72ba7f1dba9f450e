// Copyright (c) 2024 The RNT StakeLedger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/rnt-network/stakeledger/asset"
	"github.com/rnt-network/stakeledger/eventdb"
	"github.com/rnt-network/stakeledger/ledger"
	"github.com/rnt-network/stakeledger/log"
	"github.com/rnt-network/stakeledger/metrics"
)

var logger = log.WithContext("pkg", "api")

// Options api switches.
type Options struct {
	AllowedOrigins  string
	EventsLimit     uint64
	EnableMetrics   bool
	EnableReqLogger bool
}

// New returns the api router.
func New(
	led *ledger.Ledger,
	base *asset.Token,
	reward *asset.Token,
	eventDB *eventdb.EventDB,
	opts Options,
) http.HandlerFunc {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	NewLedger(led).
		Mount(router, "/")
	NewTokens(led, base, reward).
		Mount(router, "/tokens")
	if eventDB != nil {
		NewEvents(eventDB, opts.EventsLimit).
			Mount(router, "/events")
	}

	if opts.EnableMetrics {
		router.Path("/metrics").Handler(metrics.HTTPHandler())
		router.Use(metricsHandler)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	if opts.EnableReqLogger {
		handler = requestLoggerHandler(handler)
	}
	return handler.ServeHTTP
}

// requestLoggerHandler logs one line per request.
func requestLoggerHandler(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()

		mrw := newMetricsResponseWriter(w)
		handler.ServeHTTP(mrw, r)

		logger.Info("handled request",
			"method", r.Method,
			"uri", r.URL.String(),
			"code", mrw.statusCode,
			"elapsed", time.Since(started),
		)
	})
}
