// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"

	"github.com/relabs-tech/motion_tracker/internal/logging"
)

// inertialCore is the accelerometer and gyroscope half of the chip. Raw
// readings are in LSB at the configured full-scale range.
type inertialCore interface {
	// ready reports whether a new conversion is available.
	ready() (bool, error)
	read() (rawMotion, error)
	calibrate() error
	close() error
}

type rawMotion struct {
	accel   [3]int16
	gyro    [3]int16
	temp    int16
	hasTemp bool
}

// spiCore drives the chip through the periph mpu9250 driver.
type spiCore struct {
	imu *mpu9250.MPU9250
	cs  gpio.PinIO
}

func newSPICore(opts Options, log *logging.Logger) (*spiCore, error) {
	cs := gpioreg.ByName(opts.CSPin)
	if cs == nil {
		return nil, fmt.Errorf("IMU: CS pin %q not found", opts.CSPin)
	}

	tr, err := mpu9250.NewSpiTransport(opts.SPIDevice, cs)
	if err != nil {
		return nil, fmt.Errorf("IMU: SPI transport (%s): %w", opts.SPIDevice, err)
	}

	dev, err := mpu9250.New(*tr)
	if err != nil {
		return nil, fmt.Errorf("IMU: device creation: %w", err)
	}
	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("IMU: initialization: %w", err)
	}
	if err := dev.SetAccelRange(opts.AccelRange); err != nil {
		return nil, fmt.Errorf("IMU: set accel range: %w", err)
	}
	if err := dev.SetGyroRange(opts.GyroRange); err != nil {
		return nil, fmt.Errorf("IMU: set gyro range: %w", err)
	}

	if res, err := dev.SelfTest(); err != nil {
		log.Warnf("self-test failed: %v", err)
	} else {
		log.Infof("self-test passed: accel deviation X=%.2f%% Y=%.2f%% Z=%.2f%%, gyro deviation X=%.2f%% Y=%.2f%% Z=%.2f%%",
			res.AccelDeviation.X, res.AccelDeviation.Y, res.AccelDeviation.Z,
			res.GyroDeviation.X, res.GyroDeviation.Y, res.GyroDeviation.Z)
	}
	return &spiCore{imu: dev, cs: cs}, nil
}

func (c *spiCore) ready() (bool, error) { return true, nil }

func (c *spiCore) read() (rawMotion, error) {
	var m rawMotion
	var err error
	if m.accel[0], err = c.imu.GetAccelerationX(); err != nil {
		return m, fmt.Errorf("IMU accel X: %w", err)
	}
	if m.accel[1], err = c.imu.GetAccelerationY(); err != nil {
		return m, fmt.Errorf("IMU accel Y: %w", err)
	}
	if m.accel[2], err = c.imu.GetAccelerationZ(); err != nil {
		return m, fmt.Errorf("IMU accel Z: %w", err)
	}
	if m.gyro[0], err = c.imu.GetRotationX(); err != nil {
		return m, fmt.Errorf("IMU gyro X: %w", err)
	}
	if m.gyro[1], err = c.imu.GetRotationY(); err != nil {
		return m, fmt.Errorf("IMU gyro Y: %w", err)
	}
	if m.gyro[2], err = c.imu.GetRotationZ(); err != nil {
		return m, fmt.Errorf("IMU gyro Z: %w", err)
	}
	return m, nil
}

// calibrate uses the driver's bias calibration, which writes the offset
// registers on the chip.
func (c *spiCore) calibrate() error {
	return c.imu.Calibrate()
}

// close deselects the chip.
func (c *spiCore) close() error {
	if err := c.cs.Out(gpio.High); err != nil {
		return fmt.Errorf("deselect CS: %w", err)
	}
	return nil
}
