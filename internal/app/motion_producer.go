// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/motion_tracker/internal/clock"
	"github.com/relabs-tech/motion_tracker/internal/config"
	"github.com/relabs-tech/motion_tracker/internal/gps"
	"github.com/relabs-tech/motion_tracker/internal/logging"
	"github.com/relabs-tech/motion_tracker/internal/motion"
	"github.com/relabs-tech/motion_tracker/internal/sensors"
)

// Publisher sends one retained telemetry message.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

type mqttPublisher struct {
	client mqtt.Client
}

func (p mqttPublisher) Publish(topic string, payload []byte) error {
	token := p.client.Publish(topic, 0, true, payload)
	token.Wait()
	return token.Error()
}

// MotionService owns the tracker for the producer. Every tracker call goes
// through mu, so the ticker, MQTT callbacks and HTTP handlers can share it.
type MotionService struct {
	mu      sync.Mutex
	tracker *motion.Tracker

	pub   Publisher
	clock clock.Clock
	log   *logging.Logger

	topicState    string
	topicSnapshot string
	topicSample   string
	resetOnFix    bool
}

// NewMotionService wires tracker to pub using the topics in cfg. The tracker
// must already have been started with Begin.
func NewMotionService(tracker *motion.Tracker, pub Publisher, cfg *config.Config, log *logging.Logger) *MotionService {
	return &MotionService{
		tracker:       tracker,
		pub:           pub,
		clock:         clock.Real{},
		log:           log,
		topicState:    cfg.TopicMotionState,
		topicSnapshot: cfg.TopicMotionSnapshot,
		topicSample:   cfg.TopicIMUSample,
		resetOnFix:    cfg.ResetOnGPSFix,
	}
}

func (s *MotionService) publishJSON(topic string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		s.log.Errorf("json marshal error (%s): %v", topic, err)
		return
	}
	if err := s.pub.Publish(topic, payload); err != nil {
		s.log.Warnf("MQTT publish error (%s): %v", topic, err)
	}
}

// Tick advances the integrator once and publishes the motion state. The
// fused sample is published only when it was integrated.
func (s *MotionService) Tick() {
	s.mu.Lock()
	fresh := s.tracker.Update()
	state := s.tracker.State()
	sample := s.tracker.Sample()
	s.mu.Unlock()

	s.publishJSON(s.topicState, newMotionState(s.clock.Now(), state))
	if fresh {
		s.publishJSON(s.topicSample, newIMUSample(sample))
	}
}

// Snapshot closes the current measurement window: it publishes the
// summary and starts a new window.
func (s *MotionService) Snapshot() MotionSnapshot {
	s.mu.Lock()
	m := s.tracker.Measurement()
	s.tracker.ResetMeasurement()
	s.mu.Unlock()

	snap := newMotionSnapshot(s.clock.Now(), m)
	s.publishJSON(s.topicSnapshot, snap)
	s.log.Debugf("snapshot: %.1f cm in %.2f s, avg %.1f cm/s", snap.DeltaDistance, snap.DeltaTime, snap.AvgSpeed)
	return snap
}

// State is the current motion state without advancing the integrator.
func (s *MotionService) State() MotionState {
	s.mu.Lock()
	state := s.tracker.State()
	s.mu.Unlock()
	return newMotionState(s.clock.Now(), state)
}

// PeekMeasurement reads the open window without resetting it.
func (s *MotionService) PeekMeasurement() MotionSnapshot {
	s.mu.Lock()
	m := s.tracker.Measurement()
	s.mu.Unlock()
	return newMotionSnapshot(s.clock.Now(), m)
}

func (s *MotionService) ResetDisplacement() {
	s.mu.Lock()
	s.tracker.ResetDisplacement()
	s.mu.Unlock()
}

func (s *MotionService) ResetMeasurement() {
	s.mu.Lock()
	s.tracker.ResetMeasurement()
	s.mu.Unlock()
}

// CalibrateAccelGyro blocks ticks until the device is done. The first tick
// afterwards sees a long gap and is skipped by the integrator.
func (s *MotionService) CalibrateAccelGyro() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.CalibrateAccelGyro()
}

func (s *MotionService) CalibrateMag() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.CalibrateMag()
}

func (s *MotionService) Status() motion.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Status()
}

// HandleGPSFix treats a valid position lock as ground truth and zeroes the
// dead-reckoned velocity and displacement.
func (s *MotionService) HandleGPSFix(payload []byte) {
	var f gps.Fix
	if err := json.Unmarshal(payload, &f); err != nil {
		s.log.Warnf("gps unmarshal error: %v", err)
		return
	}
	if !f.Valid() {
		s.log.Debugf("ignoring GPS fix with validity %q", f.Validity)
		return
	}
	if !s.resetOnFix {
		return
	}
	s.ResetDisplacement()
	s.log.Infof("displacement reset on GPS fix lat=%.6f lon=%.6f", f.Latitude, f.Longitude)
}

// Run drives Tick and Snapshot until ctx is done.
func (s *MotionService) Run(ctx context.Context, sampleEvery, snapshotEvery time.Duration) {
	ticker := time.NewTicker(sampleEvery)
	defer ticker.Stop()
	snapshots := time.NewTicker(snapshotEvery)
	defer snapshots.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		case <-snapshots.C:
			s.Snapshot()
		}
	}
}

// RunMotionProducer starts the tracker on the configured IMU and publishes
// motion telemetry to MQTT until interrupted.
func RunMotionProducer() error {
	cfg := config.Get()
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log := logging.Std(level, "producer")
	log.Infof("starting motion producer for robot %d", cfg.RobotNumber)

	dev := sensors.NewDevice(cfg, log.With("imu"))
	tracker := motion.New(dev, motion.WithLogger(log.With("motion")))
	defer func() {
		if err := tracker.Close(); err != nil {
			log.Warnf("close tracker: %v", err)
		}
	}()
	if err := tracker.Begin(); err != nil {
		return err
	}

	// --- connect to MQTT ---
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT connect: %w", token.Error())
	}
	defer client.Disconnect(250)
	log.Infof("connected to MQTT broker at %s", cfg.MQTTBroker)

	svc := NewMotionService(tracker, mqttPublisher{client: client}, cfg, log)

	token := client.Subscribe(cfg.TopicGPS, 0, func(_ mqtt.Client, msg mqtt.Message) {
		svc.HandleGPSFix(msg.Payload())
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", cfg.TopicGPS, token.Error())
	}
	log.Infof("subscribed to %s", cfg.TopicGPS)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.WebServerPort),
		Handler: NewHandler(svc, log.With("web")),
	}
	go func() {
		log.Infof("web server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("web server: %v", err)
			stop()
		}
	}()

	log.Infof("starting publish loop")
	svc.Run(ctx,
		time.Duration(cfg.IMUSampleInterval)*time.Millisecond,
		time.Duration(cfg.SnapshotInterval)*time.Millisecond)

	log.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
