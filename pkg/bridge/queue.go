// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

import "github.com/Thermoquad/kspio/pkg/serialio"

// InputQueue hands whole panel snapshots from the receive goroutine to the
// tick. It holds at most size snapshots; pushing into a full queue evicts
// the oldest. One writer, one reader.
type InputQueue struct {
	ch chan serialio.RawInputState
}

// NewInputQueue creates a queue holding up to size snapshots (minimum 1).
func NewInputQueue(size int) *InputQueue {
	if size < 1 {
		size = 1
	}
	return &InputQueue{ch: make(chan serialio.RawInputState, size)}
}

// Push adds a snapshot and reports whether an older one was dropped to
// make room.
func (q *InputQueue) Push(s serialio.RawInputState) bool {
	dropped := false
	for {
		select {
		case q.ch <- s:
			return dropped
		default:
		}

		select {
		case <-q.ch:
			dropped = true
		default:
		}
	}
}

// Latest drains the queue and returns the newest snapshot and how many were
// drained. With n == 0 the snapshot is the zero value.
func (q *InputQueue) Latest() (latest serialio.RawInputState, n int) {
	for {
		select {
		case s := <-q.ch:
			latest = s
			n++
		default:
			return latest, n
		}
	}
}

// Len returns the number of queued snapshots.
func (q *InputQueue) Len() int {
	return len(q.ch)
}
