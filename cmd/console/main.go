// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"log"

	"github.com/relabs-tech/motion_tracker/internal/app"
)

func main() {
	log.Println("starting motion-tracker (offline console, simulated IMU)")

	if err := app.RunConsole(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
