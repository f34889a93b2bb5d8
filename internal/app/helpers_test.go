// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/motion_tracker/internal/clock"
	"github.com/relabs-tech/motion_tracker/internal/config"
	"github.com/relabs-tech/motion_tracker/internal/imu"
	"github.com/relabs-tech/motion_tracker/internal/logging"
	"github.com/relabs-tech/motion_tracker/internal/motion"
)

const (
	topicState    = "robot/1/motion/state"
	topicSnapshot = "robot/1/motion/snapshot"
	topicSample   = "robot/1/imu"
	topicGPS      = "robot/1/gps"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type published struct {
	topic   string
	payload []byte
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (p *fakePublisher) Publish(topic string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, published{topic: topic, payload: payload})
	return nil
}

func (p *fakePublisher) on(topic string) [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out [][]byte
	for _, m := range p.msgs {
		if m.topic == topic {
			out = append(out, m.payload)
		}
	}
	return out
}

func decode[T any](t *testing.T, payload []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(payload, &v))
	return v
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.TopicMotionState = topicState
	cfg.TopicMotionSnapshot = topicSnapshot
	cfg.TopicIMUSample = topicSample
	cfg.TopicGPS = topicGPS
	return cfg
}

func accelSample(x, y, z float64) imu.Sample {
	return imu.NewSample(r3.Vector{X: x, Y: y, Z: z}, r3.Vector{}, r3.Vector{X: 22, Z: -42})
}

func repeatSample(s imu.Sample, n int) []imu.Sample {
	out := make([]imu.Sample, n)
	for i := range out {
		out[i] = s
	}
	return out
}

// newService returns a service over a begun tracker with a mock clock.
func newService(t *testing.T, cfg *config.Config, samples ...imu.Sample) (*MotionService, *fakePublisher, *clock.Mock) {
	t.Helper()
	clk := clock.NewMock(epoch)
	tracker := motion.New(imu.NewSimDevice(samples...), motion.WithClock(clk), motion.WithLogger(logging.Discard()))
	require.NoError(t, tracker.Begin())
	t.Cleanup(func() { tracker.Close() })

	pub := &fakePublisher{}
	svc := NewMotionService(tracker, pub, cfg, logging.Discard())
	svc.clock = clk
	return svc, pub, clk
}
