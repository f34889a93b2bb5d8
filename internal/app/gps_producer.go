// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/motion_tracker/internal/config"
	"github.com/relabs-tech/motion_tracker/internal/gps"
	"github.com/relabs-tech/motion_tracker/internal/logging"
)

// RunGPSProducer opens the GPS serial port, parses NMEA sentences, and
// publishes every RMC fix as JSON on TOPIC_GPS.
func RunGPSProducer() error {
	cfg := config.Get()
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log := logging.Std(level, "gps")

	// ---- 1) Connect to MQTT broker ----
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDGPS)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT connect: %w", token.Error())
	}
	defer client.Disconnect(250)
	log.Infof("connected to MQTT broker at %s", cfg.MQTTBroker)

	// ---- 2) Open GPS serial port ----
	serialOpts := serial.OpenOptions{
		PortName:              cfg.GPSSerialPort,
		BaudRate:              uint(cfg.GPSBaudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return fmt.Errorf("open %s: %w", cfg.GPSSerialPort, err)
	}
	defer port.Close()
	log.Infof("serial port opened on %s at %d baud", serialOpts.PortName, serialOpts.BaudRate)

	return publishFixes(port, mqttPublisher{client: client}, cfg.TopicGPS, log)
}

// publishFixes reads NMEA lines from r until EOF and publishes one message
// per RMC sentence.
func publishFixes(r io.Reader, pub Publisher, topic string, log *logging.Logger) error {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			publishFix(line, pub, topic, log)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("GPS read: %w", err)
		}
	}
}

func publishFix(line string, pub Publisher, topic string, log *logging.Logger) {
	fix, ok := gps.ParseSentence(line)
	if !ok {
		// noisy GPS or sentence types other than RMC
		return
	}

	payload, err := json.Marshal(fix)
	if err != nil {
		log.Errorf("JSON marshal error: %v", err)
		return
	}
	if err := pub.Publish(topic, payload); err != nil {
		log.Warnf("publish error: %v", err)
		return
	}
	log.Debugf("published GPS fix: %+v", fix)
}
