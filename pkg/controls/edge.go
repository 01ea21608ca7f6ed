// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package controls

import "github.com/Thermoquad/kspio/pkg/serialio"

// EdgeState is the button snapshot from the previous tick.
type EdgeState [serialio.ButtonCount]bool

// Edge is a button transition between two snapshots.
type Edge struct {
	Index int
	Down  bool // true = pressed, false = released
}

// Edges returns one edge per slot that differs between prev and cur, in
// ascending index order.
func Edges(prev EdgeState, cur [serialio.ButtonCount]bool) []Edge {
	var edges []Edge
	for i := range prev {
		if prev[i] != cur[i] {
			edges = append(edges, Edge{Index: i, Down: cur[i]})
		}
	}
	return edges
}

// Detector keeps the previous snapshot and reports transitions.
type Detector struct {
	prev EdgeState
}

// Update returns the edges from the last snapshot to cur and commits cur.
func (d *Detector) Update(cur [serialio.ButtonCount]bool) []Edge {
	edges := Edges(d.prev, cur)
	d.prev = cur
	return edges
}

// Previous returns the committed snapshot.
func (d *Detector) Previous() EdgeState {
	return d.prev
}
