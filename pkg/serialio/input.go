// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package serialio

import (
	"strconv"
	"strings"
)

// RawInputState is one complete panel report: held buttons and the raw
// joystick readings before dead zone handling.
type RawInputState struct {
	Buttons [ButtonCount]bool
	X       int
	Y       int
}

// Pressed returns the indices of held buttons in ascending order.
func (s *RawInputState) Pressed() []int {
	pressed := make([]int, 0, 8)
	for i, down := range s.Buttons {
		if down {
			pressed = append(pressed, i)
		}
	}
	return pressed
}

// Held reports whether button i is held. Out of range indices are not held.
func (s *RawInputState) Held(i int) bool {
	return i >= 0 && i < ButtonCount && s.Buttons[i]
}

// ParseInputLine decodes a panel report of the form
//
//	"<button> <button> ... <x> <y>"
//
// The last two tokens are the axis readings, every preceding token is the
// index of a held button. Buttons in InvertedButtons are flipped after
// decoding. A malformed line returns a *ParseError and a zero state; callers
// keep their previous state.
func ParseInputLine(line string) (RawInputState, error) {
	var state RawInputState

	parts := strings.Fields(line)
	if len(parts) < 2 {
		return RawInputState{}, &ParseError{Line: line, Reason: "expected at least two axis values"}
	}

	x, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil {
		return RawInputState{}, &ParseError{Line: line, Token: parts[len(parts)-2], Reason: "invalid x axis"}
	}
	y, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return RawInputState{}, &ParseError{Line: line, Token: parts[len(parts)-1], Reason: "invalid y axis"}
	}
	state.X = x
	state.Y = y

	for _, tok := range parts[:len(parts)-2] {
		index, err := strconv.Atoi(tok)
		if err != nil {
			return RawInputState{}, &ParseError{Line: line, Token: tok, Reason: "invalid button index"}
		}
		if index < 0 || index >= ButtonCount {
			return RawInputState{}, &ParseError{Line: line, Token: tok, Reason: "button index out of range"}
		}
		state.Buttons[index] = true
	}

	for _, index := range InvertedButtons {
		state.Buttons[index] = !state.Buttons[index]
	}

	return state, nil
}

// FormatInputLine renders state as the panel would report it, undoing the
// inversion applied by ParseInputLine. The result has no trailing newline.
func FormatInputLine(state RawInputState) string {
	wire := state.Buttons
	for _, index := range InvertedButtons {
		wire[index] = !wire[index]
	}

	parts := make([]string, 0, 10)
	for i, down := range wire {
		if down {
			parts = append(parts, strconv.Itoa(i))
		}
	}
	parts = append(parts, strconv.Itoa(state.X), strconv.Itoa(state.Y))

	return strings.Join(parts, " ")
}
