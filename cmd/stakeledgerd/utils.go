// Copyright (c) 2024 The RNT StakeLedger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"net"
	"net/http"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"syscall"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/rnt-network/stakeledger/asset"
	"github.com/rnt-network/stakeledger/co"
	"github.com/rnt-network/stakeledger/eventdb"
	"github.com/rnt-network/stakeledger/kv"
	"github.com/rnt-network/stakeledger/ledger"
	"github.com/rnt-network/stakeledger/log"
	"github.com/rnt-network/stakeledger/rnt"
)

// custodianAddress holds staked and locked assets. No key exists for it.
var custodianAddress = rnt.BytesToAddress(crypto.Keccak256([]byte("stakeledger.custodian"))[12:])

func defaultDataDir() string {
	// try to get HOME directory
	if usr, err := user.Current(); err == nil {
		return filepath.Join(usr.HomeDir, ".stakeledger")
	}
	return ""
}

func initLogger(ctx *cli.Context) {
	level := log.FromLegacyLevel(ctx.Int(verbosityFlag.Name))
	useColor := isatty.IsTerminal(os.Stderr.Fd()) && os.Getenv("TERM") != "dumb"

	var lvl slog.LevelVar
	lvl.Set(level)
	log.SetDefault(log.NewTerminalHandlerWithLevel(os.Stderr, &lvl, useColor))
}

func parseAdmin(ctx *cli.Context) (rnt.Address, error) {
	s := ctx.String(adminFlag.Name)
	if s == "" {
		return rnt.Address{}, errors.New("the --admin flag is required")
	}
	admin, err := rnt.ParseAddress(s)
	if err != nil {
		return rnt.Address{}, errors.WithMessage(err, "--admin")
	}
	return admin, nil
}

func openMainDB(ctx *cli.Context, dataDir string) (kv.Store, error) {
	if ctx.Bool(memFlag.Name) {
		return kv.NewMem()
	}
	dir := filepath.Join(dataDir, "main.db")
	db, err := kv.New(dir, kv.Options{})
	if err != nil {
		return nil, errors.WithMessage(err, "open main database "+dir)
	}
	return db, nil
}

func openEventDB(ctx *cli.Context, dataDir string) (*eventdb.EventDB, error) {
	if ctx.Bool(memFlag.Name) {
		return eventdb.NewMem()
	}
	path := filepath.Join(dataDir, "events.db")
	db, err := eventdb.New(path)
	if err != nil {
		return nil, errors.WithMessage(err, "open event database "+path)
	}
	return db, nil
}

// seedInitialSupply mints the initial base supply to the admin, once.
func seedInitialSupply(ctx *cli.Context, led *ledger.Ledger, base *asset.Token, admin rnt.Address) error {
	supply := ctx.Uint64(initialSupplyFlag.Name)
	if supply == 0 {
		return nil
	}
	return led.Transact(func() error {
		if base.TotalSupply().Sign() != 0 {
			return nil
		}
		amount := new(big.Int).Mul(new(big.Int).SetUint64(supply), rnt.E18)
		if err := base.Mint(admin, amount); err != nil {
			return err
		}
		logger.Info("seeded initial supply", "admin", admin, "amount", amount)
		return nil
	})
}

func startAPIServer(ctx *cli.Context, goes *co.Goes, handler http.HandlerFunc) (srv *http.Server, url string, err error) {
	addr := ctx.String(apiAddrFlag.Name)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, "", errors.WithMessage(err, "listen API addr "+addr)
	}
	srv = &http.Server{Handler: handler}
	goes.Go(func() {
		if err := srv.Serve(listener); err != http.ErrServerClosed {
			logger.Error("API server stopped", "err", err)
		}
	})
	return srv, "http://" + listener.Addr().String() + "/", nil
}

// handleExitSignal returns a context canceled on interrupt or termination.
func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func printStartupMessage(dataDir string, admin rnt.Address, apiURL string) {
	fmt.Printf(`Starting %v
    Data dir    [ %v ]
    Custodian   [ %v ]
    Admin       [ %v ]
    API portal  [ %v ]
`,
		fullVersion(),
		dataDir,
		custodianAddress,
		admin,
		apiURL,
	)
}
