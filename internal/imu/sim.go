// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/golang/geo/r3"

	"github.com/relabs-tech/motion_tracker/internal/orientation"
)

// ErrDeviceClosed is returned by a SimDevice after Close.
var ErrDeviceClosed = errors.New("imu: device closed")

// SimDevice is an in-memory Device. It either replays Samples in order or, when
// Generate is set, produces one sample per Poll from it.
type SimDevice struct {
	mu sync.Mutex

	Samples  []Sample
	Generate func(n int) Sample

	SetupErr       error
	PollErr        error
	CalibrationErr error

	next    int
	current Sample
	closed  bool

	AccelGyroCalibrations int
	MagCalibrations       int
}

// NewSimDevice returns a device that replays samples.
func NewSimDevice(samples ...Sample) *SimDevice {
	return &SimDevice{Samples: samples}
}

// NewWaveDevice returns a device that produces a slow back-and-forth push
// along X with the robot level.
func NewWaveDevice() *SimDevice {
	start := time.Now()
	return &SimDevice{Generate: func(n int) Sample {
		elapsed := time.Since(start).Seconds()
		return NewSample(r3.Vector{X: 0.5 * math.Sin(elapsed), Z: 9.81}, r3.Vector{Z: 10 * math.Cos(elapsed)}, r3.Vector{X: 22, Z: -42})
	}}
}

// NewSample builds a sample whose attitude is derived from accel and mag.
func NewSample(accel, gyro, mag r3.Vector) Sample {
	pose := orientation.ComputePose(accel, mag)
	return Sample{
		Time:        time.Now(),
		Accel:       accel,
		Gyro:        gyro,
		Mag:         mag,
		Pose:        pose,
		Quaternion:  pose.Quaternion(),
		Temperature: 25,
	}
}

func (d *SimDevice) Setup() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.SetupErr
}

// Poll reports false once a replayed sequence is exhausted.
func (d *SimDevice) Poll() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return false, ErrDeviceClosed
	}
	if d.PollErr != nil {
		return false, d.PollErr
	}
	if d.Generate != nil {
		d.current = d.Generate(d.next)
		d.next++
		return true, nil
	}
	if d.next >= len(d.Samples) {
		return false, nil
	}
	d.current = d.Samples[d.next]
	d.next++
	return true, nil
}

func (d *SimDevice) Sample() Sample {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

func (d *SimDevice) CalibrateAccelGyro() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.AccelGyroCalibrations++
	return d.CalibrationErr
}

func (d *SimDevice) CalibrateMag() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.MagCalibrations++
	return d.CalibrationErr
}

func (d *SimDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// Closed reports whether Close was called.
func (d *SimDevice) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}
