// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"time"
)

// SetClock - replace the clock for tests
func SetClock(s *Store, now func() time.Time) {
	s.now = now
}
