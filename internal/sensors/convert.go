// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"math"

	"github.com/golang/geo/r3"
)

// StandardGravity converts g to m/s².
const StandardGravity = 9.80665

// Magnetometer sensitivity in 16-bit mode.
const magMicroTeslaPerLSB = 4912.0 / 32760.0

// ErrInsufficientMotion is returned when a magnetometer sweep did not cover
// every axis.
var ErrInsufficientMotion = errors.New("sensors: magnetometer sweep did not move on every axis")

// accelScale is m/s² per LSB for the ACCEL_FS_SEL value r.
func accelScale(r byte) float64 {
	return StandardGravity / (16384.0 / float64(int(1)<<(r&3)))
}

// gyroScale is deg/s per LSB for the GYRO_FS_SEL value r.
func gyroScale(r byte) float64 {
	return 1 / (131.0 / float64(int(1)<<(r&3)))
}

func scaleRaw(x, y, z int16, scale float64) r3.Vector {
	return r3.Vector{X: float64(x) * scale, Y: float64(y) * scale, Z: float64(z) * scale}
}

// dieTemperature converts TEMP_OUT to °C.
func dieTemperature(raw int16) float64 {
	return float64(raw)/333.87 + 21.0
}

// sensitivityAdjustment applies the AK8963 fuse ROM formula to one ASA byte.
func sensitivityAdjustment(asa byte) float64 {
	return (float64(asa)-128)/256 + 1
}

// MagCalibration removes hard-iron offset and rescales each axis so the
// sweep envelope becomes a sphere.
type MagCalibration struct {
	Offset r3.Vector
	Scale  r3.Vector
}

// identityMagCalibration leaves readings untouched.
var identityMagCalibration = MagCalibration{Scale: r3.Vector{X: 1, Y: 1, Z: 1}}

// Apply corrects a reading in µT.
func (c MagCalibration) Apply(v r3.Vector) r3.Vector {
	d := v.Sub(c.Offset)
	return r3.Vector{X: d.X * c.Scale.X, Y: d.Y * c.Scale.Y, Z: d.Z * c.Scale.Z}
}

// magCalibrationFromExtremes derives a calibration from the per-axis min and
// max observed while the sensor was swept through every orientation.
func magCalibrationFromExtremes(lo, hi r3.Vector) (MagCalibration, error) {
	span := hi.Sub(lo)
	if span.X <= 0 || span.Y <= 0 || span.Z <= 0 {
		return identityMagCalibration, ErrInsufficientMotion
	}
	avg := (span.X + span.Y + span.Z) / 3
	return MagCalibration{
		Offset: hi.Add(lo).Mul(0.5),
		Scale:  r3.Vector{X: avg / span.X, Y: avg / span.Y, Z: avg / span.Z},
	}, nil
}

// extremes tracks per-axis bounds of a stream of readings.
type extremes struct {
	lo, hi r3.Vector
	n      int
}

func (e *extremes) add(v r3.Vector) {
	if e.n == 0 {
		e.lo, e.hi = v, v
	} else {
		e.lo = r3.Vector{X: math.Min(e.lo.X, v.X), Y: math.Min(e.lo.Y, v.Y), Z: math.Min(e.lo.Z, v.Z)}
		e.hi = r3.Vector{X: math.Max(e.hi.X, v.X), Y: math.Max(e.hi.Y, v.Y), Z: math.Max(e.hi.Z, v.Z)}
	}
	e.n++
}
