// Copyright (c) 2024 The RNT StakeLedger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/rnt-network/stakeledger/api"
	"github.com/rnt-network/stakeledger/asset"
	"github.com/rnt-network/stakeledger/co"
	"github.com/rnt-network/stakeledger/ledger"
	"github.com/rnt-network/stakeledger/log"
	"github.com/rnt-network/stakeledger/metrics"
	"github.com/rnt-network/stakeledger/state"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("StakeLedger/%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "StakeLedger",
		Usage:     "Time-weighted staking ledger service of the RNT network",
		Copyright: "2024 The RNT StakeLedger developers",
		Flags: []cli.Flag{
			dataDirFlag,
			memFlag,
			adminFlag,
			initialSupplyFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiEventsLimitFlag,
			enableMetricsFlag,
			enableAPILogsFlag,
			verbosityFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	initLogger(ctx)

	admin, err := parseAdmin(ctx)
	if err != nil {
		return err
	}

	dataDir := ctx.String(dataDirFlag.Name)
	if !ctx.Bool(memFlag.Name) {
		if err := os.MkdirAll(dataDir, 0700); err != nil {
			return err
		}
	} else {
		dataDir = "Memory"
	}

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	mainDB, err := openMainDB(ctx, dataDir)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()

	eventDB, err := openEventDB(ctx, dataDir)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing event database..."); eventDB.Close() }()

	st := state.New(mainDB)
	base := asset.New(st, "RNT", custodianAddress)
	reward := asset.New(st, "RNU", custodianAddress)
	led := ledger.New(st, base, reward, custodianAddress, admin, ledger.Options{
		Events: eventDB,
	})

	if err := seedInitialSupply(ctx, led, base, admin); err != nil {
		return err
	}

	handler := api.New(led, base, reward, eventDB, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		EventsLimit:     ctx.Uint64(apiEventsLimitFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
	})

	var goes co.Goes
	apiSrv, apiURL, err := startAPIServer(ctx, &goes, handler)
	if err != nil {
		return err
	}
	defer func() {
		logger.Info("stopping API server...")
		apiSrv.Shutdown(context.Background())
		goes.Wait()
	}()

	printStartupMessage(dataDir, admin, apiURL)

	<-handleExitSignal().Done()
	return nil
}
