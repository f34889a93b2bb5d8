// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package motion turns fused IMU samples into dead-reckoned velocity and
// displacement, a moving/still classification and windowed motion summaries.
//
// A Tracker is not safe for concurrent use. It owns no goroutines or timers;
// the caller drives Update at a fixed cadence and serializes every call.
package motion

import (
	"errors"
	"fmt"

	"github.com/golang/geo/r3"

	"github.com/relabs-tech/motion_tracker/internal/clock"
	"github.com/relabs-tech/motion_tracker/internal/imu"
	"github.com/relabs-tech/motion_tracker/internal/orientation"
)

var (
	// ErrNotInitialized is returned by operations that need a device that
	// was set up successfully.
	ErrNotInitialized = errors.New("motion: tracker not initialized")
	// ErrClosed is returned by Begin after Close.
	ErrClosed = errors.New("motion: tracker closed")
)

// Logger receives the tracker's diagnostics, one method per severity.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces the real monotonic clock.
func WithClock(c clock.Clock) Option {
	return func(t *Tracker) { t.clock = c }
}

// WithLogger sets the diagnostics sink. Without it the tracker is silent.
func WithLogger(l Logger) Option {
	return func(t *Tracker) { t.log = l }
}

// Tracker is the motion overlay for one IMU. It exclusively owns the device
// and releases it on Close.
type Tracker struct {
	dev    imu.Device
	clock  clock.Clock
	log    Logger
	status Status
	closed bool

	sample      imu.Sample
	integration integrationState
	snapshot    snapshotState
}

// New returns an uninitialized tracker over dev. Call Begin before use.
func New(dev imu.Device, opts ...Option) *Tracker {
	t := &Tracker{
		dev:   dev,
		clock: clock.Real{},
		log:   nopLogger{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Begin sets up the device. On failure the tracker stays uninitialized and
// every query returns its default; Begin may be called again.
func (t *Tracker) Begin() error {
	if t.closed {
		return ErrClosed
	}
	if err := t.dev.Setup(); err != nil {
		t.log.Errorf("IMU connection failed: %v", err)
		return fmt.Errorf("motion: device setup: %w", err)
	}

	t.log.Infof("IMU initialized successfully")
	if t.status == Uninitialized {
		t.status = Ready
	}
	now := t.clock.Now()
	t.integration.lastUpdate = now
	t.snapshot.lastReset = now
	return nil
}

// Close releases the device. The tracker reports defaults afterwards.
func (t *Tracker) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	if err := t.dev.Close(); err != nil {
		return fmt.Errorf("motion: device close: %w", err)
	}
	return nil
}

func (t *Tracker) initialized() bool {
	return t.status != Uninitialized && !t.closed
}

// Sample returns the last fused sample, or a zero sample with an identity
// quaternion when uninitialized.
func (t *Tracker) Sample() imu.Sample {
	if !t.initialized() {
		return imu.Sample{Quaternion: orientation.Identity}
	}
	return t.sample
}

// Accel is the raw acceleration of the last sample in m/s².
func (t *Tracker) Accel() r3.Vector { return t.Sample().Accel }

// Gyro is the angular rate of the last sample in deg/s.
func (t *Tracker) Gyro() r3.Vector { return t.Sample().Gyro }

// Mag is the magnetic field of the last sample in µT.
func (t *Tracker) Mag() r3.Vector { return t.Sample().Mag }

// Orientation is the device-reported Euler attitude in degrees.
func (t *Tracker) Orientation() orientation.Pose { return t.Sample().Pose }

// Quaternion is the device-reported attitude.
func (t *Tracker) Quaternion() orientation.Quaternion { return t.Sample().Quaternion }

// Temperature is the die temperature in °C.
func (t *Tracker) Temperature() float64 { return t.Sample().Temperature }

// State is a point-in-time view of the tracker.
type State struct {
	Velocity       r3.Vector
	Speed          float64
	Displacement   r3.Vector
	AccelMagnitude float64
	Moving         bool
	Status         Status
}

// State gathers the instantaneous queries in one call.
func (t *Tracker) State() State {
	return State{
		Velocity:       t.Velocity(),
		Speed:          t.Speed(),
		Displacement:   t.Displacement(),
		AccelMagnitude: t.AccelMagnitude(),
		Moving:         t.IsMoving(),
		Status:         t.Status(),
	}
}
