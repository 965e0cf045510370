// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/provenanced/configuration"
	"github.com/bitmark-inc/provenanced/fault"
)

type databaseType struct {
	Type string `gluamapper:"type"`
	Name string `gluamapper:"name"`
}

type testConfiguration struct {
	DataDirectory string            `gluamapper:"data_directory"`
	Database      databaseType      `gluamapper:"database"`
	Listen        []string          `gluamapper:"listen"`
	Maximum       int               `gluamapper:"maximum"`
	Console       bool              `gluamapper:"console"`
	Levels        map[string]string `gluamapper:"levels"`
}

const script = `
local M = {}

M.data_directory = arg["home"] .. "/provenance"

M.database = {
    type = "leveldb",
    name = "records",
}

M.listen = {
    "127.0.0.1:2130",
    "[::1]:2130",
}

M.maximum = 25
M.console = true

M.levels = {
    DEFAULT = "info",
    store = "debug",
}

return M
`

func writeFile(t *testing.T, content string) (string, func()) {
	dir, err := ioutil.TempDir("", "provenanced-configuration")
	if nil != err {
		t.Fatalf("temp dir error: %s", err)
	}
	name := filepath.Join(dir, "test.conf")
	err = ioutil.WriteFile(name, []byte(content), 0600)
	if nil != err {
		t.Fatalf("write error: %s", err)
	}
	return name, func() { _ = os.RemoveAll(dir) }
}

func TestParseConfigurationFile(t *testing.T) {
	name, cleanup := writeFile(t, script)
	defer cleanup()

	var c testConfiguration
	err := configuration.ParseConfigurationFile(name, &c, map[string]string{"home": "/var/lib"})
	assert.Nil(t, err, "parse error")

	assert.Equal(t, "/var/lib/provenance", c.DataDirectory, "wrong data directory")
	assert.Equal(t, "leveldb", c.Database.Type, "wrong database type")
	assert.Equal(t, "records", c.Database.Name, "wrong database name")
	assert.Equal(t, []string{"127.0.0.1:2130", "[::1]:2130"}, c.Listen, "wrong listen")
	assert.Equal(t, 25, c.Maximum, "wrong maximum")
	assert.True(t, c.Console, "wrong console")
	assert.Equal(t, "debug", c.Levels["store"], "wrong level")
}

func TestParseErrors(t *testing.T) {
	name, cleanup := writeFile(t, "return 42\n")
	defer cleanup()

	var c testConfiguration
	err := configuration.ParseConfigurationFile(name, &c, nil)
	assert.Equal(t, fault.InvalidConfiguration, err, "non-table result accepted")

	err = configuration.ParseConfigurationFile(name, c, nil)
	assert.Equal(t, fault.InvalidConfiguration, err, "non-pointer accepted")

	bad, cleanupBad := writeFile(t, "this is not lua")
	defer cleanupBad()
	err = configuration.ParseConfigurationFile(bad, &c, nil)
	assert.NotNil(t, err, "syntax error accepted")

	err = configuration.ParseConfigurationFile("/nonexistent/file.conf", &c, nil)
	assert.NotNil(t, err, "missing file accepted")
}
