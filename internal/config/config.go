// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Robot numbers are limited to the range the fleet firmware supports.
const (
	MinRobotNumber = 1
	MaxRobotNumber = 8
)

// IMU bus selections.
const (
	BusI2C = "i2c"
	BusSPI = "spi"
	BusSim = "sim"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDGPS      string
	MQTTClientIDConsole  string
	MQTTClientIDDisplay  string

	// Robot identity, used in topic names
	RobotNumber int

	// Topics (default to robot/<n>/...)
	TopicMotionState    string
	TopicMotionSnapshot string
	TopicIMUSample      string
	TopicGPS            string

	// IMU Hardware
	IMUBus       string // i2c, spi or sim
	IMUI2CBus    string // "" picks the first bus
	IMUI2CAddr   uint16
	IMUSPIDevice string
	IMUCSPin     string

	// IMU Sensor Ranges
	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	IMUAccelRange byte
	// Gyroscope: 0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s
	IMUGyroRange byte

	MagCalibrationSeconds int

	// Timing
	IMUSampleInterval int // milliseconds
	SnapshotInterval  int // milliseconds
	ResetOnGPSFix     bool

	// GPS
	GPSSerialPort string
	GPSBaudRate   int

	// Web Server
	WebServerPort int

	// Display
	DisplayI2CAddr        uint16
	DisplayUpdateInterval int // milliseconds

	LogLevel string
}

var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns the configuration used for keys missing from the file.
func Default() *Config {
	return &Config{
		MQTTBroker:            "tcp://localhost:1883",
		MQTTClientIDProducer:  "motion-producer",
		MQTTClientIDGPS:       "motion-gps-producer",
		MQTTClientIDConsole:   "motion-console",
		MQTTClientIDDisplay:   "motion-display",
		RobotNumber:           MinRobotNumber,
		IMUBus:                BusI2C,
		IMUI2CAddr:            0x68,
		MagCalibrationSeconds: 15,
		IMUSampleInterval:     20,
		SnapshotInterval:      1000,
		ResetOnGPSFix:         true,
		GPSSerialPort:         "/dev/serial0",
		GPSBaudRate:           9600,
		WebServerPort:         8080,
		DisplayI2CAddr:        0x3C,
		DisplayUpdateInterval: 250,
		LogLevel:              "info",
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg.applyTopicDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_GPS":
		c.MQTTClientIDGPS = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	case "ROBOT_NUMBER":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid ROBOT_NUMBER %q: %w", value, err)
		}
		if n < MinRobotNumber || n > MaxRobotNumber {
			return fmt.Errorf("ROBOT_NUMBER must be %d-%d, got %d", MinRobotNumber, MaxRobotNumber, n)
		}
		c.RobotNumber = n

	// Topics
	case "TOPIC_MOTION_STATE":
		c.TopicMotionState = value
	case "TOPIC_MOTION_SNAPSHOT":
		c.TopicMotionSnapshot = value
	case "TOPIC_IMU_SAMPLE":
		c.TopicIMUSample = value
	case "TOPIC_GPS":
		c.TopicGPS = value

	// IMU Hardware
	case "IMU_BUS":
		switch strings.ToLower(value) {
		case BusI2C, BusSPI, BusSim:
			c.IMUBus = strings.ToLower(value)
		default:
			return fmt.Errorf("IMU_BUS must be i2c, spi or sim, got %q", value)
		}
	case "IMU_I2C_BUS":
		c.IMUI2CBus = value
	case "IMU_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid IMU_I2C_ADDR %q: %w", value, err)
		}
		c.IMUI2CAddr = uint16(addr)
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value

	// IMU Sensor Ranges
	case "IMU_ACCEL_RANGE":
		rangeVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_ACCEL_RANGE %q: %w", value, err)
		}
		if rangeVal < 0 || rangeVal > 3 {
			return fmt.Errorf("IMU_ACCEL_RANGE must be 0-3 (0=±2g, 1=±4g, 2=±8g, 3=±16g), got %d", rangeVal)
		}
		c.IMUAccelRange = byte(rangeVal)
	case "IMU_GYRO_RANGE":
		rangeVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_GYRO_RANGE %q: %w", value, err)
		}
		if rangeVal < 0 || rangeVal > 3 {
			return fmt.Errorf("IMU_GYRO_RANGE must be 0-3 (0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s), got %d", rangeVal)
		}
		c.IMUGyroRange = byte(rangeVal)
	case "MAG_CALIBRATION_SECONDS":
		secs, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid MAG_CALIBRATION_SECONDS %q: %w", value, err)
		}
		c.MagCalibrationSeconds = secs

	// Timing
	case "IMU_SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_SAMPLE_INTERVAL %q: %w", value, err)
		}
		c.IMUSampleInterval = interval
	case "SNAPSHOT_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SNAPSHOT_INTERVAL %q: %w", value, err)
		}
		c.SnapshotInterval = interval
	case "RESET_ON_GPS_FIX":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid RESET_ON_GPS_FIX %q: %w", value, err)
		}
		c.ResetOnGPSFix = b

	// GPS
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_BAUD_RATE %q: %w", value, err)
		}
		c.GPSBaudRate = rate

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	// Display
	case "DISPLAY_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_I2C_ADDR %q: %w", value, err)
		}
		c.DisplayI2CAddr = uint16(addr)
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		c.DisplayUpdateInterval = interval

	case "LOG_LEVEL":
		c.LogLevel = value

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// applyTopicDefaults fills unset topics under robot/<n>/.
func (c *Config) applyTopicDefaults() {
	prefix := fmt.Sprintf("robot/%d", c.RobotNumber)
	if c.TopicMotionState == "" {
		c.TopicMotionState = prefix + "/motion/state"
	}
	if c.TopicMotionSnapshot == "" {
		c.TopicMotionSnapshot = prefix + "/motion/snapshot"
	}
	if c.TopicIMUSample == "" {
		c.TopicIMUSample = prefix + "/imu"
	}
	if c.TopicGPS == "" {
		c.TopicGPS = prefix + "/gps"
	}
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.IMUBus == BusSPI && (c.IMUSPIDevice == "" || c.IMUCSPin == "") {
		return fmt.Errorf("IMU_SPI_DEVICE and IMU_CS_PIN are required when IMU_BUS=spi")
	}
	// Ticks of a second or more would all be dropped by the integrator.
	if c.IMUSampleInterval <= 0 || c.IMUSampleInterval >= 1000 {
		return fmt.Errorf("IMU_SAMPLE_INTERVAL must be 1-999 ms, got %d", c.IMUSampleInterval)
	}
	if c.SnapshotInterval <= 0 {
		return fmt.Errorf("SNAPSHOT_INTERVAL is required")
	}
	if c.MagCalibrationSeconds <= 0 {
		return fmt.Errorf("MAG_CALIBRATION_SECONDS must be positive")
	}
	if c.GPSBaudRate == 0 {
		return fmt.Errorf("GPS_BAUD_RATE is required")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
