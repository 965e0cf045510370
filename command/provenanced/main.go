// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/provenanced/background"
	"github.com/bitmark-inc/provenanced/counter"
	"github.com/bitmark-inc/provenanced/event"
	"github.com/bitmark-inc/provenanced/ledger"
	"github.com/bitmark-inc/provenanced/messagebus"
	"github.com/bitmark-inc/provenanced/metrics"
	"github.com/bitmark-inc/provenanced/ownership"
	"github.com/bitmark-inc/provenanced/publish"
	"github.com/bitmark-inc/provenanced/rpc/certificate"
	"github.com/bitmark-inc/provenanced/rpc/listeners"
	"github.com/bitmark-inc/provenanced/rpc/server"
	"github.com/bitmark-inc/provenanced/storage"
	"github.com/bitmark-inc/provenanced/store"
	"github.com/bitmark-inc/provenanced/verifier"
	"github.com/bitmark-inc/provenanced/workflow"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		processSetupCommand(program, []string{"version"})
		return
	}

	if len(options["help"]) > 0 {
		processSetupCommand(program, []string{"help"})
		return
	}

	// these commands do not require the configuration and
	// process data needed for initial setup
	if len(arguments) > 0 && processSetupCommand(program, arguments) {
		return
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	theConfiguration, err := getConfiguration(configurationFile, map[string]string{
		"version": version,
	})
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	// these commands require the configuration and
	// perform enquiries on the configuration
	if len(arguments) > 0 && processConfigCommand(arguments, theConfiguration) {
		return
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)
	log.Debugf("theConfiguration: %v", theConfiguration)

	// ------------------
	// start of real main
	// ------------------

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != theConfiguration.PidFile {
		lockFile, err := os.OpenFile(theConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
		if nil != err {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, theConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(theConfiguration.PidFile)
	}

	// connection info
	log.Infof("database: %q  type: %s", theConfiguration.Database.Name, theConfiguration.Database.Type)
	log.Debugf("%s = %#v", "ClientRPC", theConfiguration.ClientRPC)
	log.Debugf("%s = %#v", "Publishing", theConfiguration.Publishing)
	log.Debugf("%s = %#v", "Metrics", theConfiguration.Metrics)

	// start the data storage
	log.Info("initialise storage")
	var theLedger ledger.Ledger
	switch theConfiguration.Database.Type {
	case databaseMemory:
		log.Warn("records are held in memory and will be lost on exit")
		theLedger = ledger.NewMemory()
	default:
		db, err := storage.Open(theConfiguration.Database.Name, logger.New("storage"))
		if nil != err {
			log.Criticalf("storage initialise error: %s", err)
			exitwithstatus.Message("storage initialise error: %s", err)
		}
		defer db.Close()
		theLedger = db
	}

	theMetrics := metrics.New()

	// events are only queued when something will drain them
	queue := messagebus.New(theConfiguration.QueueSize)
	notifier := event.Discard
	processes := background.Processes{}
	if len(theConfiguration.Publishing.Broadcast) > 0 {
		log.Info("initialise publish")
		broadcaster, err := publish.NewBroadcaster(logger.New("publish"), queue, theConfiguration.Publishing.Broadcast)
		if nil != err {
			log.Criticalf("publish initialise error: %s", err)
			exitwithstatus.Message("publish initialise error: %s", err)
		}
		processes = append(processes, broadcaster)
		notifier = queue
	}

	// the engine
	log.Info("initialise engine")
	theVerifier := verifier.New(logger.New("verifier"))
	theStore, err := store.New(logger.New("store"), theLedger, theVerifier, notifier, theMetrics)
	if nil != err {
		log.Criticalf("store initialise error: %s", err)
		exitwithstatus.Message("store initialise error: %s", err)
	}
	theWorkflow := workflow.New(logger.New("workflow"), theStore, theVerifier, notifier, theMetrics)
	theOwnership := ownership.New(logger.New("ownership"), theStore, notifier, theMetrics)

	bg := background.Start(processes, nil)
	defer bg.Stop()

	// start up the rpc background processes
	rpcCount := counter.Counter(0)
	if theConfiguration.ClientRPC.MaximumConnections > 0 && len(theConfiguration.ClientRPC.Listen) > 0 {
		log.Info("initialise rpc")
		rpcLog := logger.New("rpc")
		tlsConfig, fingerprint, err := certificate.Load(
			rpcLog,
			"client_rpc",
			theConfiguration.ClientRPC.Certificate,
			theConfiguration.ClientRPC.PrivateKey,
		)
		if nil != err {
			log.Criticalf("rpc certificate error: %s", err)
			exitwithstatus.Message("rpc certificate error: %s", err)
		}

		rpcServer := server.Create(rpcLog, version, &rpcCount, theStore, theWorkflow, theOwnership)
		listener, err := listeners.NewRPC(&theConfiguration.ClientRPC, rpcLog, &rpcCount, rpcServer, tlsConfig, fingerprint)
		if nil != err {
			log.Criticalf("rpc initialise error: %s", err)
			exitwithstatus.Message("rpc initialise error: %s", err)
		}
		if err := listener.Serve(); nil != err {
			log.Criticalf("rpc listen error: %s", err)
			exitwithstatus.Message("rpc listen error: %s", err)
		}
		defer listener.Close()
	} else {
		log.Warn("client rpc disabled")
	}

	// scrape endpoint
	if "" != theConfiguration.Metrics.Listen {
		registerGauges(log, theMetrics, theStore, queue, &rpcCount)

		mux := http.NewServeMux()
		mux.Handle("/metrics", theMetrics.Handler())
		metricsServer := &http.Server{
			Addr:         theConfiguration.Metrics.Listen,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		go func() {
			log.Infof("metrics listener on: %s", theConfiguration.Metrics.Listen)
			err := metricsServer.ListenAndServe()
			if http.ErrServerClosed != err {
				log.Errorf("metrics listener error: %s", err)
			}
		}()
		defer metricsServer.Close()
	}

	// wait for CTRL-C before shutting down to allow manual testing
	if 0 == len(options["quiet"]) {
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	if 0 == len(options["quiet"]) {
		fmt.Printf("\nreceived signal: %v\n", sig)
		fmt.Printf("\nshutting down…\n")
	}

	log.Info("shutting down…")
}

func registerGauges(log *logger.L, m *metrics.Metrics, s *store.Store, queue *messagebus.Queue, rpcCount *counter.Counter) {
	gauges := []struct {
		name string
		help string
		f    func() float64
	}{
		{"records", "Number of records held", func() float64 { return float64(s.Count()) }},
		{"events_dropped_total", "Events dropped because the publish queue was full", func() float64 { return float64(queue.Dropped()) }},
		{"rpc_connections", "Open client RPC connections", func() float64 { return float64(rpcCount.Uint64()) }},
	}
	for _, g := range gauges {
		if err := m.RegisterGauge(g.name, g.help, g.f); nil != err {
			log.Errorf("metrics gauge: %s  error: %s", g.name, err)
		}
	}
}
