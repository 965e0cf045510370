// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/provenanced/fault"
	"github.com/bitmark-inc/provenanced/util"
)

func TestEnsureAbsolute(t *testing.T) {
	assert.Equal(t, "/var/lib/data/file.db", util.EnsureAbsolute("/var/lib/data", "file.db"), "relative")
	assert.Equal(t, "/tmp/file.db", util.EnsureAbsolute("/var/lib/data", "/tmp/file.db"), "absolute")
	assert.Equal(t, "/var/lib/file.db", util.EnsureAbsolute("/var/lib/data", "../file.db"), "cleaned")
}

func TestEnsureDirectory(t *testing.T) {
	dir, err := ioutil.TempDir("", "util-paths")
	assert.Nil(t, err, "temp dir")
	defer os.RemoveAll(dir)

	d, err := util.EnsureDirectory(dir)
	assert.Nil(t, err, "existing directory")
	assert.Equal(t, filepath.Clean(dir), d, "directory")

	_, err = util.EnsureDirectory("relative/path")
	assert.Equal(t, fault.NotAbsolutePath, err, "relative path")

	fileName := filepath.Join(dir, "file")
	assert.Nil(t, ioutil.WriteFile(fileName, []byte("x"), 0600), "write file")
	assert.True(t, util.EnsureFileExists(fileName), "file exists")
	assert.False(t, util.EnsureFileExists(filepath.Join(dir, "missing")), "file missing")

	_, err = util.EnsureDirectory(fileName)
	assert.Equal(t, fault.NotADirectory, err, "plain file")
}

func TestPlainFileName(t *testing.T) {
	assert.Nil(t, util.PlainFileName("provenanced.pid"), "plain")
	assert.Equal(t, fault.NotPlainFileName, util.PlainFileName("a/b"), "directory component")
	assert.Equal(t, fault.NotPlainFileName, util.PlainFileName(""), "empty")
	assert.Equal(t, fault.NotPlainFileName, util.PlainFileName(".."), "parent")
}
