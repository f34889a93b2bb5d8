// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"math"

	"github.com/golang/geo/r3"
)

const (
	// GravityMagnitude is the nominal magnitude at rest in m/s².
	GravityMagnitude = 9.81
	// MotionThreshold is how far from GravityMagnitude the acceleration
	// magnitude must be to count as moving, in m/s².
	MotionThreshold = 0.1
)

// IsMoving classifies the last raw acceleration sample. It does not depend
// on the integration state and is false while uninitialized.
func (t *Tracker) IsMoving() bool {
	if !t.initialized() {
		return false
	}
	return Moving(t.sample.Accel)
}

// Moving reports whether |‖accel‖ − g| exceeds MotionThreshold.
//
// Gravity is removed from the scalar magnitude, not from a gravity-aligned
// vector, so a change of tilt can read as motion.
// TODO(motion): revisit once tilt-compensated detection is tested on the robot.
func Moving(accel r3.Vector) bool {
	net := math.Abs(accel.Norm() - GravityMagnitude)
	return net > MotionThreshold
}
