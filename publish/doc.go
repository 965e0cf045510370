// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package publish - send engine events to external subscribers
//
// each event becomes a three part ZeroMQ message:
//
//   kind | id (8 byte big endian) | packed record
//
// delivery is at-least-once so a subscriber should filter with an
// Observer
package publish
