// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

// Varint64MaximumBytes - maximum possible number of bytes in Varint64
const Varint64MaximumBytes = 9

// ToVarint64 - convert a 64 bit unsigned integer to Varint64
//
// seven bits per byte, least significant group first, top bit set
// on every byte except the last; the ninth byte carries a full 8 bits
func ToVarint64(value uint64) []byte {
	result := make([]byte, 0, Varint64MaximumBytes)
	if value < 0x80 {
		return append(result, byte(value))
	}

	for i := 0; i < Varint64MaximumBytes && value != 0; i += 1 {
		ext := uint64(0x80)
		if value < 0x80 {
			ext = 0x00
		}
		result = append(result, byte(value|ext))
		value >>= 7
	}
	return result
}

// FromVarint64 - convert an array of up to Varint64MaximumBytes to a uint64
//
// also return the number of bytes used as second value
// returns 0, 0 if varint64 buffer is truncated
func FromVarint64(buffer []byte) (uint64, int) {
	result := uint64(0)
	shift := uint(0)

	for count := 0; count < len(buffer); {
		b := uint64(buffer[count])
		count += 1
		if count == Varint64MaximumBytes {
			return result | b<<shift, count
		}
		result |= b & 0x7f << shift
		if 0 == b&0x80 {
			return result, count
		}
		shift += 7
	}
	return 0, 0
}

// AppendVarBytes - append a varint length prefix followed by the data
func AppendVarBytes(buffer []byte, data []byte) []byte {
	buffer = append(buffer, ToVarint64(uint64(len(data)))...)
	return append(buffer, data...)
}

// ReadVarBytes - read a length prefixed item from the start of buffer
//
// returns a copy of the item and the total number of bytes consumed
// returns nil, 0 if the buffer is truncated
func ReadVarBytes(buffer []byte) ([]byte, int) {
	length, n := FromVarint64(buffer)
	if 0 == n {
		return nil, 0
	}
	end := uint64(n) + length
	if end < uint64(n) || end > uint64(len(buffer)) {
		return nil, 0
	}
	data := make([]byte, length)
	copy(data, buffer[n:end])
	return data, int(end)
}
