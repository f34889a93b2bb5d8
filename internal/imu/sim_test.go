// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"errors"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimDevice_Replay(t *testing.T) {
	a := Sample{Accel: r3.Vector{X: 1}}
	b := Sample{Accel: r3.Vector{X: 2}}
	dev := NewSimDevice(a, b)

	for _, want := range []Sample{a, b} {
		ok, err := dev.Poll()
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, want, dev.Sample())
	}

	ok, err := dev.Poll()
	require.NoError(t, err)
	assert.False(t, ok, "exhausted sequence reports no new sample")
	assert.Equal(t, b, dev.Sample(), "last sample is retained")
}

func TestSimDevice_Generate(t *testing.T) {
	dev := &SimDevice{Generate: func(n int) Sample {
		return Sample{Temperature: float64(n)}
	}}

	for i := 0; i < 3; i++ {
		ok, err := dev.Poll()
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, float64(i), dev.Sample().Temperature)
	}
}

func TestSimDevice_Errors(t *testing.T) {
	boom := errors.New("boom")
	dev := &SimDevice{SetupErr: boom, PollErr: boom}
	assert.ErrorIs(t, dev.Setup(), boom)

	ok, err := dev.Poll()
	assert.False(t, ok)
	assert.ErrorIs(t, err, boom)

	require.NoError(t, dev.Close())
	assert.True(t, dev.Closed())
	dev.PollErr = nil
	_, err = dev.Poll()
	assert.ErrorIs(t, err, ErrDeviceClosed)
}

func TestSimDevice_CountsCalibrations(t *testing.T) {
	dev := NewSimDevice()
	require.NoError(t, dev.CalibrateAccelGyro())
	require.NoError(t, dev.CalibrateMag())
	require.NoError(t, dev.CalibrateMag())
	assert.Equal(t, 1, dev.AccelGyroCalibrations)
	assert.Equal(t, 2, dev.MagCalibrations)
}

func TestNewSample_DerivesAttitude(t *testing.T) {
	s := NewSample(r3.Vector{Z: 9.81}, r3.Vector{}, r3.Vector{})
	assert.InDelta(t, 0, s.Pose.Roll, 1e-9)
	assert.InDelta(t, 1, s.Quaternion.W, 1e-9)
}
