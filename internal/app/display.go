// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"math"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/motion_tracker/internal/config"
)

// DisplayData holds the latest telemetry for the OLED.
type DisplayData struct {
	mu sync.RWMutex

	state     MotionState
	haveState bool

	snapshot     MotionSnapshot
	haveSnapshot bool
}

func (d *DisplayData) setState(s MotionState) {
	d.mu.Lock()
	d.state = s
	d.haveState = true
	d.mu.Unlock()
}

func (d *DisplayData) setSnapshot(s MotionSnapshot) {
	d.mu.Lock()
	d.snapshot = s
	d.haveSnapshot = true
	d.mu.Unlock()
}

// copy reads the data without copying the mutex.
func (d *DisplayData) copy() displayFrame {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return displayFrame{
		state:        d.state,
		haveState:    d.haveState,
		snapshot:     d.snapshot,
		haveSnapshot: d.haveSnapshot,
	}
}

type displayFrame struct {
	state        MotionState
	haveState    bool
	snapshot     MotionSnapshot
	haveSnapshot bool
}

// addrBus sends every transaction to addr. The ssd1306 driver always talks
// to 0x3C.
type addrBus struct {
	i2c.Bus
	addr uint16
}

func (b addrBus) Tx(_ uint16, w, r []byte) error {
	return b.Bus.Tx(b.addr, w, r)
}

// RunDisplay shows speed, distance and calibration state on an SSD1306.
func RunDisplay() error {
	cfg := config.Get()

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// Open I2C bus
	bus, err := i2creg.Open("")
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(addrBus{Bus: bus, addr: cfg.DisplayI2CAddr}, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Printf("display: initialized at 0x%02X", cfg.DisplayI2CAddr)

	if err := dev.Draw(dev.Bounds(), renderSplash(cfg.RobotNumber), image.Point{}); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	data := &DisplayData{}

	// Connect to MQTT
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDDisplay)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	if err := subscribeDisplay(client, cfg.TopicMotionState, data.setState); err != nil {
		return err
	}
	if err := subscribeDisplay(client, cfg.TopicMotionSnapshot, data.setSnapshot); err != nil {
		return err
	}

	// Display update loop
	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for range ticker.C {
		if err := dev.Draw(dev.Bounds(), renderMotion(data.copy()), image.Point{}); err != nil {
			log.Printf("display: error updating display: %v", err)
		}
	}

	return nil
}

func subscribeDisplay[T any](client mqtt.Client, topic string, set func(T)) error {
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var v T
		if err := json.Unmarshal(msg.Payload(), &v); err != nil {
			log.Printf("display: %s unmarshal error: %v", topic, err)
			return
		}
		set(v)
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", topic, token.Error())
	}
	log.Printf("display: subscribed to %s", topic)
	return nil
}

func newCanvas() (*image1bit.VerticalLSB, *font.Drawer) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	return img, drawer
}

func drawLine(d *font.Drawer, x, y int, text string) {
	d.Dot = fixed.P(x, y)
	d.DrawString(text)
}

// renderMotion lays out four 13px rows: speed, distance from the last reset,
// the last window's average speed, and the moving/calibration flags.
func renderMotion(f displayFrame) *image1bit.VerticalLSB {
	img, drawer := newCanvas()

	if !f.haveState {
		drawLine(drawer, 0, 26, "Motion")
		drawLine(drawer, 0, 39, "Waiting...")
		return img
	}

	s := f.state
	dist := math.Sqrt(s.Displacement.X*s.Displacement.X + s.Displacement.Y*s.Displacement.Y + s.Displacement.Z*s.Displacement.Z)
	drawLine(drawer, 0, 13, fmt.Sprintf("V: %6.1f cm/s", s.Speed*100))
	drawLine(drawer, 0, 26, fmt.Sprintf("D: %6.2f m", dist))
	if f.haveSnapshot {
		drawLine(drawer, 0, 39, fmt.Sprintf("Avg:%5.1f cm/s", f.snapshot.AvgSpeed))
	}

	flags := "still"
	if s.Moving {
		flags = "MOVING"
	}
	if s.Calibrated {
		flags += " CAL"
	} else {
		flags += " " + s.Status
	}
	drawLine(drawer, 0, 52, flags)
	return img
}

func renderSplash(robot int) *image1bit.VerticalLSB {
	img, drawer := newCanvas()
	drawLine(drawer, 10, 26, "Motion Tracker")
	drawLine(drawer, 25, 43, fmt.Sprintf("Robot %d", robot))
	return img
}
