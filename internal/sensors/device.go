// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"github.com/relabs-tech/motion_tracker/internal/config"
	"github.com/relabs-tech/motion_tracker/internal/imu"
	"github.com/relabs-tech/motion_tracker/internal/logging"
)

// NewDevice returns the IMU selected by IMU_BUS. The sim bus needs no
// hardware.
func NewDevice(cfg *config.Config, log *logging.Logger) imu.Device {
	if cfg.IMUBus == config.BusSim {
		log.Infof("using simulated IMU")
		return imu.NewWaveDevice()
	}
	log.Infof("using MPU9250 over %s", cfg.IMUBus)
	return NewMPU9250(OptionsFromConfig(cfg), log)
}
