// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/provenanced/configuration"
	"github.com/bitmark-inc/provenanced/fault"
	"github.com/bitmark-inc/provenanced/publish"
	"github.com/bitmark-inc/provenanced/rpc/listeners"
	"github.com/bitmark-inc/provenanced/util"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultKeyFile         = "rpc.key"
	defaultCertificateFile = "rpc.crt"

	databaseLevelDB = "leveldb"
	databaseMemory  = "memory"

	defaultLevelDBDirectory = "data"
	defaultDatabaseName     = "provenance.leveldb"

	defaultLogDirectory = "log"
	defaultLogFile      = "provenanced.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size

	defaultRPCClients = 10
	defaultQueueSize  = 1000
)

// to hold log levels
type LoglevelMap map[string]string

// path expanded or calculated defaults
var (
	defaultLogLevels = LoglevelMap{
		logger.DefaultTag: "critical",
	}
)

// DatabaseType - which ledger to use and where it lives
type DatabaseType struct {
	Type      string `gluamapper:"type" json:"type"`
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
}

// MetricsType - prometheus scrape endpoint; blank disables
type MetricsType struct {
	Listen string `gluamapper:"listen" json:"listen"`
}

// Configuration - contents of the Lua configuration file
type Configuration struct {
	DataDirectory string `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string `gluamapper:"pidfile" json:"pidfile"`
	QueueSize     int    `gluamapper:"queue_size" json:"queue_size"`

	Database   DatabaseType               `gluamapper:"database" json:"database"`
	ClientRPC  listeners.RPCConfiguration `gluamapper:"client_rpc" json:"client_rpc"`
	Publishing publish.Configuration      `gluamapper:"publishing" json:"publishing"`
	Metrics    MetricsType                `gluamapper:"metrics" json:"metrics"`
	Logging    logger.Configuration       `gluamapper:"logging" json:"logging"`
}

// will read decode and verify the configuration
func getConfiguration(configurationFileName string, variables map[string]string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default
		QueueSize:     defaultQueueSize,

		Database: DatabaseType{
			Type:      databaseLevelDB,
			Directory: defaultLevelDBDirectory,
			Name:      defaultDatabaseName,
		},

		ClientRPC: listeners.RPCConfiguration{
			MaximumConnections: defaultRPCClients,
			Certificate:        defaultCertificateFile,
			PrivateKey:         defaultKeyFile,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := configuration.ParseConfigurationFile(configurationFileName, options, variables); nil != err {
		return nil, err
	}

	options.Database.Type = strings.ToLower(options.Database.Type)
	switch options.Database.Type {
	case databaseLevelDB, databaseMemory:
	default:
		return nil, fault.InvalidDatabaseType
	}

	if options.QueueSize <= 0 {
		options.QueueSize = defaultQueueSize
	}

	// ensure absolute data directory
	switch options.DataDirectory {
	case "", "~":
		return nil, fmt.Errorf("Path: %q is not a valid directory", options.DataDirectory)
	case ".":
		options.DataDirectory = dataDirectory // same directory as the configuration file
	}

	// this directory must exist - i.e. must be created prior to running
	options.DataDirectory, err = util.EnsureDirectory(options.DataDirectory)
	if nil != err {
		return nil, err
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	mustBeAbsolute := []*string{
		&options.Database.Directory,
		&options.ClientRPC.Certificate,
		&options.ClientRPC.PrivateKey,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		*f = util.EnsureAbsolute(options.DataDirectory, *f)
	}

	// optional absolute paths i.e. blank or an absolute path
	optionalAbsolute := []*string{
		&options.PidFile,
	}
	for _, f := range optionalAbsolute {
		if "" != *f {
			*f = util.EnsureAbsolute(options.DataDirectory, *f)
		}
	}

	// fail if any of these are not simple file names then add the
	// correct directory prefix, file item is first and corresponding
	// directory is second (or nil if no prefix can be added)
	mustNotBePaths := [][2]*string{
		{&options.Database.Name, &options.Database.Directory},
		{&options.Logging.File, nil},
	}
	for _, f := range mustNotBePaths {
		if err := util.PlainFileName(*f[0]); nil != err {
			return nil, fmt.Errorf("Files: %q is not plain name", *f[0])
		}
		if nil != f[1] {
			*f[0] = util.EnsureAbsolute(*f[1], *f[0])
		}
	}

	// create directories if they do not already exist
	directories := []string{options.Logging.Directory}
	if databaseLevelDB == options.Database.Type {
		directories = append(directories, options.Database.Directory)
	}
	for _, d := range directories {
		if err := os.MkdirAll(d, 0700); nil != err {
			return nil, err
		}
	}

	// done
	return options, nil
}
