// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/relabs-tech/motion_tracker/internal/config"
	"github.com/relabs-tech/motion_tracker/internal/logging"
	"github.com/relabs-tech/motion_tracker/internal/motion"
	"github.com/relabs-tech/motion_tracker/internal/sensors"
)

const verifyDuration = 3 * time.Second

func main() {
	in := bufio.NewReader(os.Stdin)

	// Parse command-line flags
	configPath := flag.String("config", "motion_config.txt", "Path to configuration file")
	flag.Parse()

	fmt.Println("=== Guided Calibration (Accel/Gyro + Mag) ===")
	fmt.Println("Calibration lives in the IMU for this power cycle only.")
	fmt.Println()

	if err := config.InitGlobal(*configPath); err != nil {
		fatal(fmt.Errorf("failed to load config from %s: %w", *configPath, err))
	}
	cfg := config.Get()

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		fatal(err)
	}
	logger := logging.Std(level, "calibrate")

	tracker := motion.New(sensors.NewDevice(cfg, logger.With("imu")), motion.WithLogger(logger.With("motion")))
	defer tracker.Close()

	if err := tracker.Begin(); err != nil {
		tracker.Close()
		fatal(err)
	}
	fmt.Printf("Status: %s\n\n", tracker.Status())

	// ---------------- Accel/gyro ----------------
	fmt.Println("Step 1/3 - Accelerometer and gyroscope bias")
	fmt.Println("Place the robot level on a stable surface and do not touch it.")
	waitEnter(in, "Press ENTER to start...")
	if err := tracker.CalibrateAccelGyro(); err != nil {
		tracker.Close()
		fatal(err)
	}
	fmt.Println("Accel/gyro calibration complete.")
	fmt.Println()

	// ---------------- Magnetometer ----------------
	fmt.Println("Step 2/3 - Magnetometer")
	fmt.Printf("Wave the robot slowly in a figure eight for %ds after pressing ENTER.\n", cfg.MagCalibrationSeconds)
	waitEnter(in, "Press ENTER to start...")
	if err := tracker.CalibrateMag(); err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: magnetometer calibration failed: %v\n", err)
	} else {
		fmt.Println("Magnetometer calibration complete.")
	}
	fmt.Println()

	// ---------------- Verify ----------------
	fmt.Println("Step 3/3 - Verify")
	fmt.Println("Put the robot down and leave it still.")
	waitEnter(in, "Press ENTER to start a short stillness check...")
	verify(tracker, cfg)

	fmt.Printf("\nFinal status: %s (calibrated=%t)\n", tracker.Status(), tracker.IsCalibrated())
}

// verify samples at the configured rate and reports how often the robot
// was classified as moving while it should be still.
func verify(tracker *motion.Tracker, cfg *config.Config) {
	ticker := time.NewTicker(time.Duration(cfg.IMUSampleInterval) * time.Millisecond)
	defer ticker.Stop()

	deadline := time.Now().Add(verifyDuration)
	var mags []float64
	moving := 0
	for now := range ticker.C {
		if now.After(deadline) {
			break
		}
		tracker.Update()
		mags = append(mags, tracker.Accel().Norm())
		if tracker.IsMoving() {
			moving++
		}
	}
	if len(mags) == 0 {
		return
	}

	mean, std := stat.MeanStdDev(mags, nil)
	fmt.Printf("Moving in %d of %d samples, |a| %.3f ± %.3f m/s² (gravity %.2f)\n",
		moving, len(mags), mean, std, motion.GravityMagnitude)
	if moving > len(mags)/10 {
		fmt.Println("WARNING: readings are noisy at rest; consider recalibrating.")
	}
}

// ---------- Console helpers ----------

func waitEnter(in *bufio.Reader, prompt string) {
	fmt.Print(prompt)
	_, _ = in.ReadString('\n')
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	os.Exit(1)
}
