// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

const mpuAddr = 0x68

func mpuInitOps(whoAmI byte) []i2ctest.IO {
	return []i2ctest.IO{
		{Addr: mpuAddr, W: []byte{regPwrMgmt1, pwrMgmt1Reset}},
		{Addr: mpuAddr, W: []byte{regWhoAmI}, R: []byte{whoAmI}},
	}
}

func TestNewI2CCore(t *testing.T) {
	ops := append(mpuInitOps(0x71),
		i2ctest.IO{Addr: mpuAddr, W: []byte{regPwrMgmt1, pwrMgmt1AutoClock}},
		i2ctest.IO{Addr: mpuAddr, W: []byte{regConfig, configDLPF41Hz}},
		i2ctest.IO{Addr: mpuAddr, W: []byte{regSmplrtDiv, smplrtDiv200Hz}},
		i2ctest.IO{Addr: mpuAddr, W: []byte{regGyroConfig, 1 << 3}},
		i2ctest.IO{Addr: mpuAddr, W: []byte{regAccelConfig, 2 << 3}},
		i2ctest.IO{Addr: mpuAddr, W: []byte{regIntEnable, intEnableRawRdy}},
		// ready, then one burst: az = 4096 (1g at ±8g), temp 0, gx = 131, gy = -131
		i2ctest.IO{Addr: mpuAddr, W: []byte{regIntStatus}, R: []byte{intStatusRawRdy}},
		i2ctest.IO{Addr: mpuAddr, W: []byte{regAccelXoutH}, R: []byte{
			0x00, 0x00, 0x00, 0x00, 0x10, 0x00,
			0x00, 0x00,
			0x00, 0x83, 0xFF, 0x7D, 0x00, 0x00,
		}},
		i2ctest.IO{Addr: mpuAddr, W: []byte{regIntStatus}, R: []byte{0x00}},
		i2ctest.IO{Addr: mpuAddr, W: []byte{regIntPinCfg, intPinCfgBypassEn}},
	)
	bus := &i2ctest.Playback{Ops: ops}

	core, name, err := newI2CCore(bus, mpuAddr, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, "MPU9250", name)

	ready, err := core.ready()
	require.NoError(t, err)
	assert.True(t, ready)

	m, err := core.read()
	require.NoError(t, err)
	assert.Equal(t, [3]int16{0, 0, 4096}, m.accel)
	assert.Equal(t, [3]int16{131, -131, 0}, m.gyro)
	assert.True(t, m.hasTemp)

	ready, err = core.ready()
	require.NoError(t, err)
	assert.False(t, ready)

	require.NoError(t, core.enableBypass())
	require.NoError(t, bus.Close())
}

func TestNewI2CCore_WrongDevice(t *testing.T) {
	bus := &i2ctest.Playback{Ops: mpuInitOps(0x68)}
	_, _, err := newI2CCore(bus, mpuAddr, 0, 0)
	assert.ErrorContains(t, err, "unexpected WHO_AM_I 0x68")
}

func TestDecodeMotion(t *testing.T) {
	m := decodeMotion([]byte{
		0x40, 0x00, 0xC0, 0x00, 0x00, 0x01,
		0x01, 0x4E,
		0x7F, 0xFF, 0x80, 0x00, 0xFF, 0xFF,
	})
	assert.Equal(t, [3]int16{16384, -16384, 1}, m.accel)
	assert.Equal(t, int16(334), m.temp)
	assert.Equal(t, [3]int16{32767, -32768, -1}, m.gyro)
}

func TestMotionSums_Bias(t *testing.T) {
	var s motionSums
	s.add(rawMotion{accel: [3]int16{10, -20, 16400}, gyro: [3]int16{5, 0, -3}})
	s.add(rawMotion{accel: [3]int16{30, -40, 16420}, gyro: [3]int16{7, 2, -5}})

	accel, gyro := s.bias(accelLSBPerG(0))
	assert.Equal(t, [3]int32{20, -30, 26}, accel)
	assert.Equal(t, [3]int32{6, 1, -4}, gyro)

	var empty motionSums
	accel, gyro = empty.bias(accelLSBPerG(0))
	assert.Zero(t, accel)
	assert.Zero(t, gyro)
}

func TestI2CCore_SubtractsBias(t *testing.T) {
	bus := &i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: mpuAddr, W: []byte{regAccelXoutH}, R: []byte{
			0x00, 0x14, 0x00, 0x00, 0x40, 0x1A,
			0x00, 0x00,
			0x00, 0x06, 0x00, 0x00, 0x00, 0x00,
		}},
	}}
	c := &i2cCore{
		dev:       &i2c.Dev{Bus: bus, Addr: mpuAddr},
		accelBias: [3]int32{20, 0, 26},
		gyroBias:  [3]int32{6, 0, 0},
	}

	m, err := c.read()
	require.NoError(t, err)
	assert.Equal(t, [3]int16{0, 0, 16384}, m.accel)
	assert.Equal(t, [3]int16{0, 0, 0}, m.gyro)
}

func TestClampInt16(t *testing.T) {
	assert.Equal(t, int16(32767), clampInt16(40000))
	assert.Equal(t, int16(-32768), clampInt16(-40000))
	assert.Equal(t, int16(-5), clampInt16(-5))
}

func TestAccelLSBPerG(t *testing.T) {
	assert.Equal(t, int32(16384), accelLSBPerG(0))
	assert.Equal(t, int32(2048), accelLSBPerG(3))
}
