// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"time"

	"github.com/golang/geo/r3"

	"github.com/relabs-tech/motion_tracker/internal/orientation"
)

// Sample is one fused reading from the IMU.
type Sample struct {
	Time time.Time

	Accel r3.Vector // m/s², gravity included
	Gyro  r3.Vector // deg/s
	Mag   r3.Vector // µT

	Pose        orientation.Pose // deg
	Quaternion  orientation.Quaternion
	Temperature float64 // °C
}

// Device is a single 9-axis IMU with its own attitude output. Calibration
// calls block until the device is done.
type Device interface {
	Setup() error
	// Poll fetches a new sample if one is ready.
	Poll() (bool, error)
	// Sample returns the most recent sample fetched by Poll.
	Sample() Sample
	CalibrateAccelGyro() error
	CalibrateMag() error
	Close() error
}
