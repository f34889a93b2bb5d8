// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"time"

	"github.com/golang/geo/r3"
)

// MaxStep is the largest gap between samples that is still integrated.
const MaxStep = time.Second

type integrationState struct {
	velocity     r3.Vector // m/s
	displacement r3.Vector // m, since ResetDisplacement
	lastUpdate   time.Time
}

// Update polls the device and, if a new sample arrived, advances velocity and
// displacement by one explicit Euler step. It reports whether a step was
// applied.
//
// A gap of zero, a negative gap or a gap of MaxStep or more is a glitch or a
// stall: the step is dropped without touching velocity, displacement or the
// measurement sums. The timestamp is still re-anchored to now so a single
// stall does not block every following tick.
//
// No drift correction is done. Call ResetDisplacement whenever an external
// position fix is available.
func (t *Tracker) Update() bool {
	if !t.initialized() {
		return false
	}

	ok, err := t.dev.Poll()
	if err != nil {
		t.log.Warnf("IMU read error: %v", err)
		return false
	}
	if !ok {
		return false
	}
	t.sample = t.dev.Sample()

	now := t.clock.Now()
	gap := now.Sub(t.integration.lastUpdate)
	t.integration.lastUpdate = now
	if gap <= 0 || gap >= MaxStep {
		t.log.Debugf("skipping integration step, dt=%v", gap)
		return false
	}

	t.step(t.sample.Accel, gap.Seconds())
	return true
}

// step integrates accel over dt. Displacement uses the velocity just updated,
// which amplifies drift compared to using the previous velocity.
func (t *Tracker) step(accel r3.Vector, dt float64) {
	t.integration.velocity = t.integration.velocity.Add(accel.Mul(dt))
	t.integration.displacement = t.integration.displacement.Add(t.integration.velocity.Mul(dt))

	t.snapshot.speedSum += t.integration.velocity.Norm()
	t.snapshot.accelSum += accel.Norm()
	t.snapshot.samples++
}

// Velocity is the integrated velocity in m/s.
func (t *Tracker) Velocity() r3.Vector {
	if !t.initialized() {
		return r3.Vector{}
	}
	return t.integration.velocity
}

// Speed is the magnitude of Velocity.
func (t *Tracker) Speed() float64 {
	return t.Velocity().Norm()
}

// Displacement is the integrated position in m since the last
// ResetDisplacement.
func (t *Tracker) Displacement() r3.Vector {
	if !t.initialized() {
		return r3.Vector{}
	}
	return t.integration.displacement
}

// AccelMagnitude is the norm of the last raw acceleration sample.
func (t *Tracker) AccelMagnitude() float64 {
	return t.Accel().Norm()
}

// ResetDisplacement zeroes velocity and displacement. The measurement window
// is left alone.
func (t *Tracker) ResetDisplacement() {
	t.integration.velocity = r3.Vector{}
	t.integration.displacement = r3.Vector{}
}
