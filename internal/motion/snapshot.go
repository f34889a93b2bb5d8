// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"time"

	"github.com/golang/geo/r3"
)

// Measurement summarizes motion since the last ResetMeasurement.
type Measurement struct {
	DeltaDistance   float64 // cm
	AvgSpeed        float64 // cm/s
	AvgAcceleration float64 // m/s²
	DeltaTime       float64 // s
}

type snapshotState struct {
	reference r3.Vector // displacement at last reset
	lastReset time.Time

	speedSum float64
	accelSum float64
	samples  int
}

// Measurement returns the summary of the current window without changing it.
// Averages are zero when no integration step landed in the window, which is
// also the case when Update is not being called. An uninitialized or closed
// tracker reports a zero Measurement.
func (t *Tracker) Measurement() Measurement {
	var m Measurement
	if !t.initialized() {
		return m
	}

	if !t.snapshot.lastReset.IsZero() {
		m.DeltaTime = t.clock.Now().Sub(t.snapshot.lastReset).Seconds()
	}
	m.DeltaDistance = t.integration.displacement.Distance(t.snapshot.reference) * 100

	if t.snapshot.samples > 0 {
		n := float64(t.snapshot.samples)
		m.AvgSpeed = t.snapshot.speedSum / n * 100
		m.AvgAcceleration = t.snapshot.accelSum / n
	}
	return m
}

// ResetMeasurement starts a new window at the current displacement and time.
func (t *Tracker) ResetMeasurement() {
	t.snapshot = snapshotState{
		reference: t.integration.displacement,
		lastReset: t.clock.Now(),
	}
}
