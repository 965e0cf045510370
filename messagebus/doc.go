// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package messagebus - a bounded queue carrying engine events to the
// publisher
//
// senders never block: when the queue is full the message is dropped
// and counted
package messagebus
