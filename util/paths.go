// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"os"
	"path/filepath"

	"github.com/bitmark-inc/provenanced/fault"
)

// EnsureAbsolute - ensure the path is absolute
// if not, prepend the directory to make absolute path
func EnsureAbsolute(directory string, filePath string) string {
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(directory, filePath)
	}
	return filepath.Clean(filePath)
}

// EnsureFileExists - check if file exists
func EnsureFileExists(name string) bool {
	_, err := os.Stat(name)
	return nil == err
}

// EnsureDirectory - absolute path to an existing directory
func EnsureDirectory(directory string) (string, error) {
	if !filepath.IsAbs(directory) {
		return "", fault.NotAbsolutePath
	}
	info, err := os.Stat(directory)
	if nil != err {
		return "", err
	}
	if !info.IsDir() {
		return "", fault.NotADirectory
	}
	return filepath.Clean(directory), nil
}

// PlainFileName - reject names carrying a directory component
func PlainFileName(name string) error {
	if "" == name || filepath.Base(name) != name || "." == name || ".." == name {
		return fault.NotPlainFileName
	}
	return nil
}
