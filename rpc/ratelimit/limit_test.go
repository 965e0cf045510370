// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ratelimit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/provenanced/fault"
	"github.com/bitmark-inc/provenanced/rpc/ratelimit"
)

func TestLimit(t *testing.T) {
	limiter := rate.NewLimiter(100, 10)
	for i := 0; i < 10; i += 1 {
		assert.Nil(t, ratelimit.Limit(limiter), "wrong limit")
	}
}

func TestLimitN(t *testing.T) {
	limiter := rate.NewLimiter(100, 10)

	assert.Nil(t, ratelimit.LimitN(limiter, 5, 10), "wrong limit")
	assert.Equal(t, fault.InvalidCount, ratelimit.LimitN(limiter, 0, 10), "zero count")
	assert.Equal(t, fault.InvalidCount, ratelimit.LimitN(limiter, 11, 10), "count over maximum")
}

func TestLimitNExceedsBurst(t *testing.T) {
	limiter := rate.NewLimiter(100, 10)

	assert.Equal(t, fault.RateLimiting, ratelimit.LimitN(limiter, 20, 50), "burst exceeded")
}
