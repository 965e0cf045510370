// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package listeners

import (
	"crypto/tls"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"strings"
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/provenanced/counter"
	"github.com/bitmark-inc/provenanced/fault"
	"github.com/bitmark-inc/provenanced/fingerprint"
)

const (
	logName            = "client_rpc"
	minConnectionCount = 1
)

// Listener - a started network service
type Listener interface {
	Serve() error
	Addresses() []string
	Close() error
}

// RPCConfiguration - configuration file data for RPC setup
type RPCConfiguration struct {
	MaximumConnections uint64   `gluamapper:"maximum_connections" json:"maximum_connections"`
	Listen             []string `gluamapper:"listen" json:"listen"`
	Certificate        string   `gluamapper:"certificate" json:"certificate"`
	PrivateKey         string   `gluamapper:"private_key" json:"private_key"`
}

type rpcListener struct {
	sync.Mutex
	log             *logger.L
	listeners       []net.Listener
	count           *counter.Counter
	server          *rpc.Server
	maxConnections  uint64
	tlsConfig       *tls.Config
	ipType          []string
	listenIPAndPort []string
}

// NewRPC - validate the configuration and prepare a TLS JSON-RPC listener
func NewRPC(
	configuration *RPCConfiguration,
	log *logger.L,
	count *counter.Counter,
	server *rpc.Server,
	tlsConfig *tls.Config,
	certificateFingerprint fingerprint.Digest,
) (Listener, error) {
	if configuration.MaximumConnections < minConnectionCount {
		log.Errorf("invalid %s maximum connection limit: %d", logName, configuration.MaximumConnections)
		return nil, fault.MissingParameters
	}

	if 0 == len(configuration.Listen) {
		log.Errorf("missing %s listen", logName)
		return nil, fault.MissingParameters
	}

	if nil == tlsConfig || nil == server || nil == count {
		log.Errorf("missing %s server setup", logName)
		return nil, fault.MissingParameters
	}

	listen := make([]string, len(configuration.Listen))
	copy(listen, configuration.Listen)

	ipType, err := parseListenAddress(listen, log)
	if nil != err {
		return nil, err
	}

	log.Infof("%s: SHA3-256 fingerprint: %s", logName, certificateFingerprint)

	return &rpcListener{
		log:             log,
		maxConnections:  configuration.MaximumConnections,
		listenIPAndPort: listen,
		ipType:          ipType,
		server:          server,
		count:           count,
		tlsConfig:       tlsConfig,
	}, nil
}

// Serve - bind every listen address and accept connections in background
func (r *rpcListener) Serve() error {
	r.Lock()
	defer r.Unlock()

	for i, listen := range r.listenIPAndPort {
		r.log.Infof("starting RPC server: %s", listen)
		l, err := tls.Listen(r.ipType[i], listen, r.tlsConfig)
		if nil != err {
			r.log.Errorf("rpc server listen error: %s", err)
			for _, bound := range r.listeners {
				_ = bound.Close()
			}
			r.listeners = nil
			return err
		}
		r.listeners = append(r.listeners, l)

		go doServeRPC(l, r.server, r.maxConnections, r.log, r.count)
	}
	return nil
}

// Addresses - the bound addresses, resolving any zero port
func (r *rpcListener) Addresses() []string {
	r.Lock()
	defer r.Unlock()

	addresses := make([]string, 0, len(r.listeners))
	for _, l := range r.listeners {
		addresses = append(addresses, l.Addr().String())
	}
	return addresses
}

// Close - stop accepting connections
func (r *rpcListener) Close() error {
	r.Lock()
	defer r.Unlock()

	var err error
	for _, l := range r.listeners {
		if e := l.Close(); nil != e && nil == err {
			err = e
		}
	}
	r.listeners = nil
	return err
}

func doServeRPC(listen net.Listener, server *rpc.Server, maximumConnections uint64, log *logger.L, count *counter.Counter) {
	for {
		conn, err := listen.Accept()
		if nil != err {
			log.Infof("rpc server: accept terminated: %s", err)
			break
		}
		if count.Increment() <= maximumConnections {
			go func() {
				server.ServeCodec(jsonrpc.NewServerCodec(conn))
				_ = conn.Close()
				count.Decrement()
			}()
		} else {
			count.Decrement()
			log.Warnf("rpc server: connection limit: %d reached", maximumConnections)
			_ = conn.Close()
		}
	}
	_ = listen.Close()
}

// convert the listen addresses to network types
// "*:PORT" listens on both tcp4 and tcp6
func parseListenAddress(addrs []string, log *logger.L) ([]string, error) {
	parsed := make([]string, len(addrs))
	for i, listen := range addrs {
		host, port, err := net.SplitHostPort(listen)
		if nil != err {
			log.Errorf("rpc server listen: %q error: %s", listen, err)
			return nil, fault.InvalidIpAddress
		}

		switch {
		case "*" == host:
			addrs[i] = net.JoinHostPort("::", port)
			host = "::"
			parsed[i] = "tcp"
		case strings.Contains(host, ":"):
			parsed[i] = "tcp6"
		default:
			parsed[i] = "tcp4"
		}

		if ip := net.ParseIP(host); nil == ip {
			log.Errorf("rpc server listen: %q error: %s", listen, fault.InvalidIpAddress)
			return nil, fault.InvalidIpAddress
		}
	}

	return parsed, nil
}
