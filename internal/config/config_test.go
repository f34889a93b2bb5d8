// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "motion_config.txt")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Full(t *testing.T) {
	path := writeConfig(t, `
# broker
MQTT_BROKER=tcp://pi.local:1883
ROBOT_NUMBER = 3
IMU_BUS=SPI
IMU_SPI_DEVICE=/dev/spidev0.0
IMU_CS_PIN=8
IMU_ACCEL_RANGE=2
IMU_GYRO_RANGE=1
IMU_SAMPLE_INTERVAL=10
SNAPSHOT_INTERVAL=500
RESET_ON_GPS_FIX=false
DISPLAY_I2C_ADDR=0x3D
TOPIC_GPS=fleet/gps
LOG_LEVEL=debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tcp://pi.local:1883", cfg.MQTTBroker)
	assert.Equal(t, 3, cfg.RobotNumber)
	assert.Equal(t, BusSPI, cfg.IMUBus)
	assert.Equal(t, "/dev/spidev0.0", cfg.IMUSPIDevice)
	assert.Equal(t, byte(2), cfg.IMUAccelRange)
	assert.Equal(t, byte(1), cfg.IMUGyroRange)
	assert.Equal(t, 10, cfg.IMUSampleInterval)
	assert.Equal(t, 500, cfg.SnapshotInterval)
	assert.False(t, cfg.ResetOnGPSFix)
	assert.Equal(t, uint16(0x3D), cfg.DisplayI2CAddr)
	assert.Equal(t, "debug", cfg.LogLevel)

	assert.Equal(t, "robot/3/motion/state", cfg.TopicMotionState)
	assert.Equal(t, "robot/3/motion/snapshot", cfg.TopicMotionSnapshot)
	assert.Equal(t, "robot/3/imu", cfg.TopicIMUSample)
	assert.Equal(t, "fleet/gps", cfg.TopicGPS)
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load(writeConfig(t, "# nothing\n"))
	require.NoError(t, err)

	assert.Equal(t, BusI2C, cfg.IMUBus)
	assert.Equal(t, uint16(0x68), cfg.IMUI2CAddr)
	assert.Equal(t, "robot/1/motion/state", cfg.TopicMotionState)
	assert.True(t, cfg.ResetOnGPSFix)
}

func TestLoad_ExplicitDefaultsMatchDefault(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
MQTT_BROKER=tcp://localhost:1883
ROBOT_NUMBER=1
IMU_BUS=i2c
IMU_I2C_ADDR=0x68
IMU_SAMPLE_INTERVAL=20
SNAPSHOT_INTERVAL=1000
DISPLAY_I2C_ADDR=60
`))
	require.NoError(t, err)

	want := Default()
	want.applyTopicDefaults()
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown key":          "NOPE=1\n",
		"missing equals":       "MQTT_BROKER\n",
		"robot out of range":   "ROBOT_NUMBER=9\n",
		"bad accel range":      "IMU_ACCEL_RANGE=4\n",
		"bad gyro range":       "IMU_GYRO_RANGE=x\n",
		"bad bus":              "IMU_BUS=can\n",
		"spi without device":   "IMU_BUS=spi\n",
		"interval beyond step": "IMU_SAMPLE_INTERVAL=1000\n",
		"empty broker":         "MQTT_BROKER=\n",
		"bad bool":             "RESET_ON_GPS_FIX=maybe\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestInitGlobal(t *testing.T) {
	require.NoError(t, InitGlobal(writeConfig(t, "ROBOT_NUMBER=5\n")))
	require.NotNil(t, Get())
	assert.Equal(t, 5, Get().RobotNumber)
}
