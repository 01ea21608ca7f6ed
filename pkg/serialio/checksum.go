// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package serialio

// Checksum computes the frame checksum: the length byte XORed with every
// payload byte.
func Checksum(length byte, payload []byte) byte {
	cs := length
	for _, b := range payload {
		cs ^= b
	}
	return cs
}
