// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"time"

	"github.com/golang/geo/r3"

	"github.com/relabs-tech/motion_tracker/internal/imu"
	"github.com/relabs-tech/motion_tracker/internal/motion"
	"github.com/relabs-tech/motion_tracker/internal/orientation"
)

// Vec3 is the wire form of a 3-vector.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func vec3(v r3.Vector) Vec3 {
	return Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

// MotionState is published on TOPIC_MOTION_STATE every tick.
type MotionState struct {
	Time           string  `json:"time"`
	Velocity       Vec3    `json:"velocity"`     // m/s
	Speed          float64 `json:"speed"`        // m/s
	Displacement   Vec3    `json:"displacement"` // m
	AccelMagnitude float64 `json:"accel_magnitude"`
	Moving         bool    `json:"moving"`
	Status         string  `json:"status"`
	Calibrated     bool    `json:"calibrated"`
}

func newMotionState(t time.Time, s motion.State) MotionState {
	return MotionState{
		Time:           t.Format(time.RFC3339Nano),
		Velocity:       vec3(s.Velocity),
		Speed:          s.Speed,
		Displacement:   vec3(s.Displacement),
		AccelMagnitude: s.AccelMagnitude,
		Moving:         s.Moving,
		Status:         s.Status.String(),
		Calibrated:     s.Status == motion.FullyCalibrated,
	}
}

// MotionSnapshot is one measurement window, published on
// TOPIC_MOTION_SNAPSHOT.
type MotionSnapshot struct {
	Time            string  `json:"time"`
	DeltaDistance   float64 `json:"delta_distance_cm"`
	AvgSpeed        float64 `json:"avg_speed_cm_s"`
	AvgAcceleration float64 `json:"avg_acceleration"`
	DeltaTime       float64 `json:"delta_time_s"`
}

func newMotionSnapshot(t time.Time, m motion.Measurement) MotionSnapshot {
	return MotionSnapshot{
		Time:            t.Format(time.RFC3339Nano),
		DeltaDistance:   m.DeltaDistance,
		AvgSpeed:        m.AvgSpeed,
		AvgAcceleration: m.AvgAcceleration,
		DeltaTime:       m.DeltaTime,
	}
}

// IMUSample is the fused sample in physical units, published on
// TOPIC_IMU_SAMPLE.
type IMUSample struct {
	Time        string                 `json:"time"`
	Accel       Vec3                   `json:"accel"` // m/s²
	Gyro        Vec3                   `json:"gyro"`  // deg/s
	Mag         Vec3                   `json:"mag"`   // µT
	Pose        orientation.Pose       `json:"pose"`
	Quaternion  orientation.Quaternion `json:"quaternion"`
	Temperature float64                `json:"temperature"`
}

func newIMUSample(s imu.Sample) IMUSample {
	return IMUSample{
		Time:        s.Time.Format(time.RFC3339Nano),
		Accel:       vec3(s.Accel),
		Gyro:        vec3(s.Gyro),
		Mag:         vec3(s.Mag),
		Pose:        s.Pose,
		Quaternion:  s.Quaternion,
		Temperature: s.Temperature,
	}
}
