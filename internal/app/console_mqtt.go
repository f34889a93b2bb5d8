// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/motion_tracker/internal/config"
	"github.com/relabs-tech/motion_tracker/internal/gps"
)

func formatState(s MotionState) string {
	moving := "still"
	if s.Moving {
		moving = "MOVING"
	}
	return fmt.Sprintf(
		"[MOTION] v=(%6.3f %6.3f %6.3f) m/s |v|=%6.3f  d=(%7.3f %7.3f %7.3f) m  |a|=%5.2f  %-6s %s",
		s.Velocity.X, s.Velocity.Y, s.Velocity.Z, s.Speed,
		s.Displacement.X, s.Displacement.Y, s.Displacement.Z,
		s.AccelMagnitude, moving, s.Status,
	)
}

func formatSnapshot(s MotionSnapshot) string {
	return fmt.Sprintf(
		"[SNAP]   dist=%7.1f cm  avg speed=%6.1f cm/s  avg accel=%5.2f m/s²  dt=%5.2f s",
		s.DeltaDistance, s.AvgSpeed, s.AvgAcceleration, s.DeltaTime,
	)
}

func formatFix(f gps.Fix) string {
	return fmt.Sprintf(
		"[GPS ]   time=%s date=%s lat=%.6f lon=%.6f speed=%.1fkn course=%.1f° validity=%s",
		f.Time, f.Date, f.Latitude, f.Longitude, f.SpeedKnots, f.CourseDeg, f.Validity,
	)
}

// subscribePrint subscribes to topic and prints each payload decoded into T.
func subscribePrint[T any](client mqtt.Client, topic string, format func(T) string) error {
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var v T
		if err := json.Unmarshal(msg.Payload(), &v); err != nil {
			log.Printf("console: %s unmarshal error: %v", topic, err)
			return
		}
		fmt.Println(format(v))
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", topic, token.Error())
	}
	log.Printf("console: subscribed to %s", topic)
	return nil
}

// RunConsoleMQTT prints the producer's motion telemetry and GPS fixes.
func RunConsoleMQTT() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	if err := subscribePrint(client, cfg.TopicMotionState, formatState); err != nil {
		return err
	}
	if err := subscribePrint(client, cfg.TopicMotionSnapshot, formatSnapshot); err != nil {
		return err
	}
	if err := subscribePrint(client, cfg.TopicGPS, formatFix); err != nil {
		return err
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
