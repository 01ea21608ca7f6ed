// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package serialio

import (
	"fmt"
	"strconv"
	"strings"
)

// StatusLine is a report from the display firmware: "KSP;<id>;<fields...>".
type StatusLine struct {
	MessageID int
	Fields    []string
}

// DisplayFound reports whether the line announces a display.
func (s StatusLine) DisplayFound() bool {
	return s.MessageID == StatusDisplayFound
}

// ParseStatusLine parses a firmware status line.
func ParseStatusLine(line string) (StatusLine, error) {
	parts := strings.Split(strings.TrimSpace(line), StatusSeparator)
	if len(parts) < 2 || parts[0] != StatusPrefix {
		return StatusLine{}, fmt.Errorf("%w: %q", ErrNotStatusLine, line)
	}

	id, err := strconv.Atoi(parts[1])
	if err != nil {
		return StatusLine{}, fmt.Errorf("%w: invalid message id %q", ErrNotStatusLine, parts[1])
	}

	return StatusLine{MessageID: id, Fields: parts[2:]}, nil
}
