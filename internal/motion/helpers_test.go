// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"testing"
	"time"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/motion_tracker/internal/clock"
	"github.com/relabs-tech/motion_tracker/internal/imu"
	"github.com/relabs-tech/motion_tracker/internal/logging"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const tick = 100 * time.Millisecond

func accel(x, y, z float64) imu.Sample {
	return imu.Sample{Accel: r3.Vector{X: x, Y: y, Z: z}}
}

func repeat(s imu.Sample, n int) []imu.Sample {
	out := make([]imu.Sample, n)
	for i := range out {
		out[i] = s
	}
	return out
}

// newTracker returns a begun tracker over a replay device and a mock clock.
func newTracker(t *testing.T, samples ...imu.Sample) (*Tracker, *imu.SimDevice, *clock.Mock) {
	t.Helper()
	dev := imu.NewSimDevice(samples...)
	clk := clock.NewMock(epoch)
	tr := New(dev, WithClock(clk), WithLogger(logging.Discard()))
	require.NoError(t, tr.Begin())
	return tr, dev, clk
}

// advance moves the clock by d and runs one Update.
func advance(tr *Tracker, clk *clock.Mock, d time.Duration) bool {
	clk.Advance(d)
	return tr.Update()
}
