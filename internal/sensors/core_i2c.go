// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"encoding/binary"
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
)

// biasSamples is how many readings the I2C bias calibration averages.
const biasSamples = 200

// i2cCore talks to the MPU registers directly. Bias calibration is kept in
// software and subtracted from every reading.
type i2cCore struct {
	dev        *i2c.Dev
	accelRange byte

	accelBias [3]int32
	gyroBias  [3]int32
}

func newI2CCore(bus i2c.Bus, addr uint16, accelRange, gyroRange byte) (*i2cCore, string, error) {
	c := &i2cCore{dev: &i2c.Dev{Bus: bus, Addr: addr}, accelRange: accelRange & 3}

	if err := c.writeReg(regPwrMgmt1, pwrMgmt1Reset); err != nil {
		return nil, "", err
	}
	time.Sleep(100 * time.Millisecond)

	id, err := c.readRegs(regWhoAmI, 1)
	if err != nil {
		return nil, "", err
	}
	name, ok := mpuDeviceIDs[id[0]]
	if !ok {
		return nil, "", fmt.Errorf("IMU: unexpected WHO_AM_I 0x%02X at 0x%02X", id[0], addr)
	}

	for _, w := range [][2]byte{
		{regPwrMgmt1, pwrMgmt1AutoClock},
		{regConfig, configDLPF41Hz},
		{regSmplrtDiv, smplrtDiv200Hz},
		{regGyroConfig, (gyroRange & 3) << 3},
		{regAccelConfig, (accelRange & 3) << 3},
		{regIntEnable, intEnableRawRdy},
	} {
		if err := c.writeReg(w[0], w[1]); err != nil {
			return nil, "", err
		}
	}
	time.Sleep(10 * time.Millisecond)
	return c, name, nil
}

func (c *i2cCore) writeReg(reg, value byte) error {
	if _, err := c.dev.Write([]byte{reg, value}); err != nil {
		return fmt.Errorf("IMU write 0x%02X: %w", reg, err)
	}
	return nil
}

func (c *i2cCore) readRegs(reg byte, n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := c.dev.Tx([]byte{reg}, buf); err != nil {
		return nil, fmt.Errorf("IMU read 0x%02X: %w", reg, err)
	}
	return buf, nil
}

// enableBypass exposes the AK8963 on the host bus.
func (c *i2cCore) enableBypass() error {
	return c.writeReg(regIntPinCfg, intPinCfgBypassEn)
}

func (c *i2cCore) ready() (bool, error) {
	status, err := c.readRegs(regIntStatus, 1)
	if err != nil {
		return false, err
	}
	return status[0]&intStatusRawRdy != 0, nil
}

func (c *i2cCore) readRaw() (rawMotion, error) {
	buf, err := c.readRegs(regAccelXoutH, 14)
	if err != nil {
		return rawMotion{}, err
	}
	return decodeMotion(buf), nil
}

func (c *i2cCore) read() (rawMotion, error) {
	m, err := c.readRaw()
	if err != nil {
		return m, err
	}
	for i := range 3 {
		m.accel[i] = clampInt16(int32(m.accel[i]) - c.accelBias[i])
		m.gyro[i] = clampInt16(int32(m.gyro[i]) - c.gyroBias[i])
	}
	return m, nil
}

// calibrate averages readings at rest. The sensor must lie level with Z up.
func (c *i2cCore) calibrate() error {
	var sums motionSums
	for sums.n < biasSamples {
		m, err := c.readRaw()
		if err != nil {
			return err
		}
		sums.add(m)
		time.Sleep(5 * time.Millisecond)
	}
	c.accelBias, c.gyroBias = sums.bias(accelLSBPerG(c.accelRange))
	return nil
}

func (c *i2cCore) close() error { return nil }

// decodeMotion splits the 14-byte big-endian burst starting at ACCEL_XOUT_H.
func decodeMotion(b []byte) rawMotion {
	word := func(i int) int16 { return int16(binary.BigEndian.Uint16(b[i : i+2])) }
	return rawMotion{
		accel:   [3]int16{word(0), word(2), word(4)},
		temp:    word(6),
		gyro:    [3]int16{word(8), word(10), word(12)},
		hasTemp: true,
	}
}

type motionSums struct {
	accel [3]int64
	gyro  [3]int64
	n     int64
}

func (s *motionSums) add(m rawMotion) {
	for i := range 3 {
		s.accel[i] += int64(m.accel[i])
		s.gyro[i] += int64(m.gyro[i])
	}
	s.n++
}

// bias returns the mean offsets with one g removed from Z.
func (s *motionSums) bias(lsbPerG int32) (accel, gyro [3]int32) {
	if s.n == 0 {
		return accel, gyro
	}
	for i := range 3 {
		accel[i] = int32(s.accel[i] / s.n)
		gyro[i] = int32(s.gyro[i] / s.n)
	}
	accel[2] -= lsbPerG
	return accel, gyro
}

func accelLSBPerG(r byte) int32 {
	return 16384 >> (r & 3)
}

func clampInt16(v int32) int16 {
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	}
	return int16(v)
}
