// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import "fmt"

// Status is the calibration gate. It only moves forward within a session.
type Status int

const (
	Uninitialized Status = iota
	Ready
	FullyCalibrated
)

func (s Status) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case FullyCalibrated:
		return "calibrated"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Status reports the calibration gate.
func (t *Tracker) Status() Status {
	return t.status
}

// IsCalibrated reports whether magnetometer calibration has completed.
// Accel/gyro calibration alone does not set it.
func (t *Tracker) IsCalibrated() bool {
	return t.status == FullyCalibrated
}

// CalibrateAccelGyro runs the device's accelerometer and gyroscope
// calibration. The sensor must be kept still. It blocks until done.
func (t *Tracker) CalibrateAccelGyro() error {
	if !t.initialized() {
		return ErrNotInitialized
	}

	t.log.Infof("calibrating accel & gyro, keep the sensor still")
	if err := t.dev.CalibrateAccelGyro(); err != nil {
		t.log.Errorf("accel & gyro calibration failed: %v", err)
		return fmt.Errorf("motion: accel/gyro calibration: %w", err)
	}
	t.log.Infof("accel & gyro calibration complete")
	return nil
}

// CalibrateMag runs the device's magnetometer calibration while the sensor
// is waved in a figure eight. It blocks until done and, on success, marks the
// tracker fully calibrated.
func (t *Tracker) CalibrateMag() error {
	if !t.initialized() {
		return ErrNotInitialized
	}

	t.log.Infof("calibrating magnetometer, wave the sensor in a figure 8")
	if err := t.dev.CalibrateMag(); err != nil {
		t.log.Errorf("magnetometer calibration failed: %v", err)
		return fmt.Errorf("motion: magnetometer calibration: %w", err)
	}
	t.log.Infof("magnetometer calibration complete")
	t.status = FullyCalibrated
	return nil
}
