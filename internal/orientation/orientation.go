// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"

	"github.com/golang/geo/r3"
)

const radToDeg = 180.0 / math.Pi

// Pose is the Euler attitude reported alongside each sample, in degrees.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Quaternion is a rotation in (w, x, y, z) order.
type Quaternion struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Identity is the zero rotation.
var Identity = Quaternion{W: 1}

// Norm returns the quaternion length.
func (q Quaternion) Norm() float64 {
	return math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
}

// ComputePoseFromAccel computes roll and pitch from accelerometer data only.
// Yaw is set to 0.
//
// Uses simple tilt formulas:
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
func ComputePoseFromAccel(ax, ay, az float64) Pose {
	rollRad := math.Atan2(ay, az)
	pitchRad := math.Atan2(-ax, math.Sqrt(ay*ay+az*az))

	return Pose{
		Roll:  rollRad * radToDeg,
		Pitch: pitchRad * radToDeg,
	}
}

// ComputePose derives roll/pitch from gravity and a tilt-compensated magnetic
// heading for yaw. A zero magnetic field leaves yaw at 0.
func ComputePose(accel, mag r3.Vector) Pose {
	pose := ComputePoseFromAccel(accel.X, accel.Y, accel.Z)
	if mag.Norm() == 0 {
		return pose
	}

	roll := pose.Roll / radToDeg
	pitch := pose.Pitch / radToDeg
	sr, cr := math.Sincos(roll)
	sp, cp := math.Sincos(pitch)

	xh := mag.X*cp + mag.Y*sr*sp + mag.Z*cr*sp
	yh := mag.Y*cr - mag.Z*sr
	pose.Yaw = math.Atan2(-yh, xh) * radToDeg
	return pose
}

// Quaternion converts the pose (ZYX convention) to a unit quaternion.
func (p Pose) Quaternion() Quaternion {
	sr, cr := math.Sincos(p.Roll / radToDeg / 2)
	sp, cp := math.Sincos(p.Pitch / radToDeg / 2)
	sy, cy := math.Sincos(p.Yaw / radToDeg / 2)

	return Quaternion{
		W: cr*cp*cy + sr*sp*sy,
		X: sr*cp*cy - cr*sp*sy,
		Y: cr*sp*cy + sr*cp*sy,
		Z: cr*cp*sy - sr*sp*cy,
	}
}
