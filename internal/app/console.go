// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relabs-tech/motion_tracker/internal/imu"
	"github.com/relabs-tech/motion_tracker/internal/logging"
	"github.com/relabs-tech/motion_tracker/internal/motion"
)

// RunConsole runs the tracker against the simulated IMU and prints state
// without a broker or hardware.
func RunConsole() error {
	tracker := motion.New(imu.NewWaveDevice(), motion.WithLogger(logging.Std(logging.Info, "console")))
	defer tracker.Close()
	if err := tracker.Begin(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runConsole(ctx, tracker, os.Stdout, 100*time.Millisecond, time.Second)
	return nil
}

func runConsole(ctx context.Context, tracker *motion.Tracker, out io.Writer, tick, snapshotEvery time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	snapshots := time.NewTicker(snapshotEvery)
	defer snapshots.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			tracker.Update()
			fmt.Fprintln(out, formatState(newMotionState(t, tracker.State())))
		case t := <-snapshots.C:
			fmt.Fprintln(out, formatSnapshot(newMotionSnapshot(t, tracker.Measurement())))
			tracker.ResetMeasurement()
		}
	}
}
