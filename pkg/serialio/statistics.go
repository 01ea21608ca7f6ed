// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package serialio

import (
	"errors"
	"fmt"
	"time"
)

// Statistics tracks link traffic and error rates
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalReports   uint64
	ValidReports   uint64
	ParseErrors    uint64
	LineErrors     uint64
	ChecksumErrors uint64
	FramesSent     uint64

	// Rates (calculated)
	ReportRate float64 // reports/sec
	ErrorRate  float64 // errors/sec

	lastReports uint64
	lastErrors  uint64
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update records the outcome of one inbound report or frame
func (s *Statistics) Update(err error) {
	s.TotalReports++

	if err == nil {
		s.ValidReports++
		return
	}

	var parseErr *ParseError
	var lineErr *LineReadError
	switch {
	case errors.As(err, &parseErr):
		s.ParseErrors++
	case errors.As(err, &lineErr), errors.Is(err, ErrLineTooLong):
		s.LineErrors++
	case errors.Is(err, ErrChecksum):
		s.ChecksumErrors++
	default:
		s.LineErrors++
	}
}

// RecordSent counts an outbound frame
func (s *Statistics) RecordSent() {
	s.FramesSent++
}

// TotalErrors returns the sum of all error counters
func (s *Statistics) TotalErrors() uint64 {
	return s.ParseErrors + s.LineErrors + s.ChecksumErrors
}

// CalculateRates updates rates from the counters since the last call
func (s *Statistics) CalculateRates() {
	now := time.Now()
	elapsed := now.Sub(s.LastUpdateTime).Seconds()
	if elapsed <= 0 {
		return
	}

	errs := s.TotalErrors()
	s.ReportRate = float64(s.TotalReports-s.lastReports) / elapsed
	s.ErrorRate = float64(errs-s.lastErrors) / elapsed

	s.lastReports = s.TotalReports
	s.lastErrors = errs
	s.LastUpdateTime = now
}

// String returns a one-line summary
func (s *Statistics) String() string {
	return fmt.Sprintf("reports=%d valid=%d parse_errors=%d line_errors=%d checksum_errors=%d sent=%d uptime=%s",
		s.TotalReports, s.ValidReports, s.ParseErrors, s.LineErrors, s.ChecksumErrors, s.FramesSent,
		time.Since(s.StartTime).Truncate(time.Second))
}
