// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/provenanced/fault"
)

// for database version
var versionKey = []byte{0x00, 'V', 'E', 'R', 'S', 'I', 'O', 'N'}

const (
	currentDBVersion = 0x101
)

// pool prefixes
const (
	recordPrefix = 'R'
	ownerPrefix  = 'O'
)

// Ledger - a ledger held in a LevelDB database
type Ledger struct {
	sync.RWMutex

	log      *logger.L
	database *leveldb.DB
	records  *poolHandle
	owners   *poolHandle
	cache    *recordCache
	count    uint64
}

// Open - open or create the database at path
func Open(path string, log *logger.L) (*Ledger, error) {

	db, version, err := getDB(path)
	if nil != err {
		log.Errorf("open database: %q  error: %s", path, err)
		return nil, err
	}

	// ensure no database downgrade
	if version > currentDBVersion {
		db.Close()
		log.Criticalf("database version: %d > current version: %d", version, currentDBVersion)
		return nil, fault.DatabaseIsNewer
	}

	// older record layouts are not readable
	if 0 != version && version < currentDBVersion {
		db.Close()
		log.Criticalf("database version: %d < current version: %d", version, currentDBVersion)
		return nil, fault.DatabaseIsOlder
	}

	if 0 == version {
		// database was empty so tag as current version
		err = putVersion(db, currentDBVersion)
		if nil != err {
			db.Close()
			return nil, err
		}
	}

	l := &Ledger{
		log:      log,
		database: db,
		records:  newPool(db, recordPrefix),
		owners:   newPool(db, ownerPrefix),
		cache:    newRecordCache(),
	}

	// ids are dense so the last key gives the count
	last, err := l.records.lastKey()
	if nil != err {
		db.Close()
		return nil, err
	}
	if nil != last {
		if 8 != len(last) {
			db.Close()
			log.Criticalf("corrupt record key: %x", last)
			return nil, fault.NotRecord
		}
		l.count = binary.BigEndian.Uint64(last) + 1
	}

	log.Infof("opened: %q  version: %d  records: %d", path, currentDBVersion, l.count)
	return l, nil
}

// Close - close the database
func (l *Ledger) Close() error {
	l.Lock()
	defer l.Unlock()

	if nil == l.database {
		return fault.NotInitialised
	}
	err := l.database.Close()
	l.database = nil
	l.cache.clear()
	l.log.Info("closed")
	return err
}

// return:
//   database handle
//   version number
func getDB(name string) (*leveldb.DB, int, error) {
	opt := &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: false,
	}

	db, err := leveldb.OpenFile(name, opt)
	if nil != err {
		return nil, 0, err
	}

	versionValue, err := db.Get(versionKey, nil)
	if leveldb.ErrNotFound == err {
		return db, 0, nil
	} else if nil != err {
		db.Close()
		return nil, 0, err
	}

	if 4 != len(versionValue) {
		db.Close()
		return nil, 0, fmt.Errorf("incompatible database version length: expected: %d  actual: %d", 4, len(versionValue))
	}

	version := int(binary.BigEndian.Uint32(versionValue))
	return db, version, nil
}

func putVersion(db *leveldb.DB, version int) error {
	currentVersion := make([]byte, 4)
	binary.BigEndian.PutUint32(currentVersion, uint32(version))

	return db.Put(versionKey, currentVersion, nil)
}
