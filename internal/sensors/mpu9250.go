// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang/geo/r3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/motion_tracker/internal/clock"
	"github.com/relabs-tech/motion_tracker/internal/config"
	"github.com/relabs-tech/motion_tracker/internal/imu"
	"github.com/relabs-tech/motion_tracker/internal/logging"
	"github.com/relabs-tech/motion_tracker/internal/orientation"
)

var (
	// ErrNoMagnetometer is returned by CalibrateMag when the AK8963 is not
	// reachable, which is always the case over SPI.
	ErrNoMagnetometer = errors.New("sensors: magnetometer not available")
	// ErrNotSetUp is returned before Setup succeeds and after Close.
	ErrNotSetUp = errors.New("sensors: IMU not set up")
)

// Options selects the bus and ranges of an MPU9250.
type Options struct {
	Bus        string // config.BusI2C or config.BusSPI
	I2CBus     string
	I2CAddr    uint16
	SPIDevice  string
	CSPin      string
	AccelRange byte
	GyroRange  byte

	// MagSweep is how long CalibrateMag samples the field.
	MagSweep time.Duration
}

// OptionsFromConfig maps the IMU keys of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Bus:        cfg.IMUBus,
		I2CBus:     cfg.IMUI2CBus,
		I2CAddr:    cfg.IMUI2CAddr,
		SPIDevice:  cfg.IMUSPIDevice,
		CSPin:      cfg.IMUCSPin,
		AccelRange: cfg.IMUAccelRange,
		GyroRange:  cfg.IMUGyroRange,
		MagSweep:   time.Duration(cfg.MagCalibrationSeconds) * time.Second,
	}
}

// MPU9250 is an imu.Device backed by real hardware. Orientation is derived
// from accelerometer tilt and tilt-compensated magnetic heading.
type MPU9250 struct {
	mu    sync.Mutex
	opts  Options
	log   *logging.Logger
	clock clock.Clock

	core   inertialCore
	bus    i2c.BusCloser // nil on SPI
	mag    *ak8963       // nil when unavailable
	magCal MagCalibration

	accelScale float64
	gyroScale  float64
	lastMag    r3.Vector
	current    imu.Sample
}

// NewMPU9250 returns an unopened device; Setup talks to the hardware.
func NewMPU9250(opts Options, log *logging.Logger) *MPU9250 {
	if log == nil {
		log = logging.Discard()
	}
	return &MPU9250{
		opts:       opts,
		log:        log,
		clock:      clock.Real{},
		magCal:     identityMagCalibration,
		accelScale: accelScale(opts.AccelRange),
		gyroScale:  gyroScale(opts.GyroRange),
	}
}

// Setup opens the bus, applies ranges and starts the magnetometer. A missing
// magnetometer is not fatal.
func (d *MPU9250) Setup() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("IMU: periph host init: %w", err)
	}

	switch d.opts.Bus {
	case config.BusSPI:
		core, err := newSPICore(d.opts, d.log)
		if err != nil {
			return err
		}
		d.core = core
		d.log.Infof("MPU9250 on %s, magnetometer not available over SPI", d.opts.SPIDevice)

	default:
		if err := d.setupI2C(); err != nil {
			return err
		}
	}

	d.log.Infof("accelerometer range set to %d (±%dg)", d.opts.AccelRange, accelRangeG[d.opts.AccelRange&3])
	d.log.Infof("gyroscope range set to %d (±%d°/s)", d.opts.GyroRange, gyroRangeDegS[d.opts.GyroRange&3])
	return nil
}

func (d *MPU9250) setupI2C() error {
	bus, err := i2creg.Open(d.opts.I2CBus)
	if err != nil {
		return fmt.Errorf("IMU: open i2c bus %q: %w", d.opts.I2CBus, err)
	}

	core, name, err := newI2CCore(bus, d.opts.I2CAddr, d.opts.AccelRange, d.opts.GyroRange)
	if err != nil {
		bus.Close()
		return err
	}
	d.core = core
	d.bus = bus
	d.log.Infof("%s at 0x%02X on %s", name, d.opts.I2CAddr, bus)

	if err := core.enableBypass(); err != nil {
		d.log.Warnf("magnetometer bypass failed (will continue without mag): %v", err)
		return nil
	}
	mag, err := newAK8963(bus)
	if err != nil {
		d.log.Warnf("magnetometer initialization failed (will continue without mag): %v", err)
		return nil
	}
	d.mag = mag
	d.log.Infof("magnetometer sensitivity adj: X=%.4f Y=%.4f Z=%.4f", mag.adj.X, mag.adj.Y, mag.adj.Z)
	return nil
}

// Poll reads accel, gyro, field and temperature. It reports false until the
// chip flags a new conversion.
func (d *MPU9250) Poll() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.core == nil {
		return false, ErrNotSetUp
	}

	ready, err := d.core.ready()
	if err != nil {
		return false, err
	}
	if !ready {
		return false, nil
	}

	raw, err := d.core.read()
	if err != nil {
		return false, err
	}

	if d.mag != nil {
		field, ok, err := d.mag.read()
		if err != nil {
			d.log.Warnf("magnetometer read error: %v", err)
		} else if ok {
			d.lastMag = d.magCal.Apply(field)
		}
	}

	d.current = d.fuse(raw)
	return true, nil
}

// fuse converts a raw reading to physical units and attaches the attitude.
func (d *MPU9250) fuse(raw rawMotion) imu.Sample {
	temp := d.current.Temperature
	if raw.hasTemp {
		temp = dieTemperature(raw.temp)
	}

	accel := scaleRaw(raw.accel[0], raw.accel[1], raw.accel[2], d.accelScale)
	pose := orientation.ComputePose(accel, d.lastMag)
	return imu.Sample{
		Time:        d.clock.Now(),
		Accel:       accel,
		Gyro:        scaleRaw(raw.gyro[0], raw.gyro[1], raw.gyro[2], d.gyroScale),
		Mag:         d.lastMag,
		Pose:        pose,
		Quaternion:  pose.Quaternion(),
		Temperature: temp,
	}
}

func (d *MPU9250) Sample() imu.Sample {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// CalibrateAccelGyro measures accelerometer and gyroscope bias. The robot
// must be still and level.
func (d *MPU9250) CalibrateAccelGyro() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.core == nil {
		return ErrNotSetUp
	}
	d.log.Infof("accel/gyro calibration started, keep the robot still")
	if err := d.core.calibrate(); err != nil {
		return fmt.Errorf("IMU: accel/gyro calibration: %w", err)
	}
	d.log.Infof("accel/gyro calibration complete")
	return nil
}

// CalibrateMag samples the field for the configured sweep while the robot
// is waved in a figure eight, then stores hard and soft iron corrections.
func (d *MPU9250) CalibrateMag() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.mag == nil {
		return ErrNoMagnetometer
	}

	d.log.Infof("magnetometer calibration started, wave the robot in a figure eight for %s", d.opts.MagSweep)
	var ext extremes
	deadline := time.Now().Add(d.opts.MagSweep)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for now := range ticker.C {
		if now.After(deadline) {
			break
		}
		field, ok, err := d.mag.read()
		if err != nil {
			return fmt.Errorf("IMU: magnetometer calibration: %w", err)
		}
		if ok {
			ext.add(field)
		}
	}

	cal, err := magCalibrationFromExtremes(ext.lo, ext.hi)
	if err != nil {
		return fmt.Errorf("IMU: magnetometer calibration over %d readings: %w", ext.n, err)
	}
	d.magCal = cal
	d.log.Infof("magnetometer calibration complete: offset X=%.2f Y=%.2f Z=%.2f µT, scale X=%.3f Y=%.3f Z=%.3f",
		cal.Offset.X, cal.Offset.Y, cal.Offset.Z, cal.Scale.X, cal.Scale.Y, cal.Scale.Z)
	return nil
}

// Close powers down the magnetometer, deselects the SPI chip and releases
// the I2C bus.
func (d *MPU9250) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var errs []error
	if d.mag != nil {
		if err := d.mag.powerDown(); err != nil {
			errs = append(errs, err)
		}
		d.mag = nil
	}
	if d.core != nil {
		if err := d.core.close(); err != nil {
			errs = append(errs, err)
		}
		d.core = nil
	}
	if d.bus != nil {
		if err := d.bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close i2c bus: %w", err))
		}
		d.bus = nil
	}
	return errors.Join(errs...)
}
