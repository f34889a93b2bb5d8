// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package clock is the monotonic time source used by the motion tracker.
package clock

import (
	"sync"
	"time"
)

// Clock returns the current time. Readings from Real carry Go's monotonic
// reading, so differences between them are immune to wall-clock steps.
type Clock interface {
	Now() time.Time
}

// Real implements Clock with time.Now.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Mock is a manually driven clock for tests.
type Mock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMock returns a Mock set to t.
func NewMock(t time.Time) *Mock {
	return &Mock{now: t}
}

func (c *Mock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t, which may be in the past.
func (c *Mock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock by d. Negative d moves it backwards.
func (c *Mock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
