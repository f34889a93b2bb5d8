// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/motion_tracker/internal/clock"
	"github.com/relabs-tech/motion_tracker/internal/imu"
	"github.com/relabs-tech/motion_tracker/internal/logging"
	"github.com/relabs-tech/motion_tracker/internal/motion"
)

func TestCalibrationWS_DeviceFailure(t *testing.T) {
	dev := imu.NewSimDevice()
	dev.CalibrationErr = errors.New("magnetometer not responding")
	tracker := motion.New(dev, motion.WithClock(clock.NewMock(epoch)), motion.WithLogger(logging.Discard()))
	require.NoError(t, tracker.Begin())
	t.Cleanup(func() { tracker.Close() })

	svc := NewMotionService(tracker, &fakePublisher{}, testConfig(), logging.Discard())
	srv := newTestServer(t, svc)
	conn := dialCalibration(t, srv)
	readResponse(t, conn)

	require.NoError(t, conn.WriteJSON(WSMessage{Action: "mag"}))
	assert.Equal(t, "started", readResponse(t, conn).Type)
	resp := readResponse(t, conn)
	assert.Equal(t, "error", resp.Type)
	assert.Contains(t, resp.Message, "magnetometer not responding")
	assert.False(t, resp.Calibrated)
	assert.Equal(t, "ready", resp.Status)
}

func TestCalibrationWS_Uninitialized(t *testing.T) {
	dev := imu.NewSimDevice()
	dev.SetupErr = errors.New("no ack at 0x68")
	tracker := motion.New(dev, motion.WithLogger(logging.Discard()))
	require.Error(t, tracker.Begin())

	svc := NewMotionService(tracker, &fakePublisher{}, testConfig(), logging.Discard())
	srv := newTestServer(t, svc)
	conn := dialCalibration(t, srv)

	hello := readResponse(t, conn)
	assert.Equal(t, "uninitialized", hello.Status)

	require.NoError(t, conn.WriteJSON(WSMessage{Action: "accel_gyro"}))
	readResponse(t, conn)
	resp := readResponse(t, conn)
	assert.Equal(t, "error", resp.Type)
	assert.Contains(t, resp.Message, motion.ErrNotInitialized.Error())
}
