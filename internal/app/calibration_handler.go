// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/motion_tracker/internal/logging"
	"github.com/relabs-tech/motion_tracker/internal/motion"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// Calibration websocket actions.
const (
	actionStatus    = "status"
	actionAccelGyro = "accel_gyro"
	actionMag       = "mag"
	actionCancel    = "cancel"
)

// WSMessage is a request from the calibration client.
type WSMessage struct {
	Action string `json:"action"` // status, accel_gyro, mag, cancel
}

// WSResponse is sent for every request. Calibrations send "started" before
// blocking and "complete" or "error" afterwards.
type WSResponse struct {
	Type       string `json:"type"` // session, started, status, complete, error
	Session    string `json:"session"`
	Action     string `json:"action,omitempty"`
	Status     string `json:"status,omitempty"`
	Calibrated bool   `json:"calibrated"`
	Message    string `json:"message,omitempty"`
}

type calibrationHandler struct {
	svc *MotionService
	log *logging.Logger
}

// CalibrationSession is one websocket client driving calibration.
type CalibrationSession struct {
	ID   string
	Conn *websocket.Conn
	svc  *MotionService
	log  *logging.Logger
}

func (h *calibrationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("calibration: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	session := &CalibrationSession{
		ID:   uuid.NewString(),
		Conn: conn,
		svc:  h.svc,
		log:  h.log,
	}
	h.log.Infof("calibration: session %s opened from %s", session.ID, r.RemoteAddr)
	session.send(WSResponse{Type: "session"})

	// Main message loop
	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			h.log.Debugf("calibration: session %s read error: %v", session.ID, err)
			return
		}

		switch msg.Action {
		case actionStatus:
			session.send(WSResponse{Type: "status"})
		case actionAccelGyro:
			session.run(msg.Action, session.svc.CalibrateAccelGyro)
		case actionMag:
			session.run(msg.Action, session.svc.CalibrateMag)
		case actionCancel:
			h.log.Infof("calibration: session %s closed by client", session.ID)
			return
		default:
			session.send(WSResponse{Type: "error", Action: msg.Action, Message: "unknown action"})
		}
	}
}

func (s *CalibrationSession) run(action string, calibrate func() error) {
	s.send(WSResponse{Type: "started", Action: action})
	s.log.Infof("calibration: session %s running %s", s.ID, action)

	if err := calibrate(); err != nil {
		s.log.Warnf("calibration: session %s %s failed: %v", s.ID, action, err)
		s.send(WSResponse{Type: "error", Action: action, Message: err.Error()})
		return
	}
	s.send(WSResponse{Type: "complete", Action: action})
}

// send fills in the session and calibration fields and writes resp.
func (s *CalibrationSession) send(resp WSResponse) {
	status := s.svc.Status()
	resp.Session = s.ID
	resp.Status = status.String()
	resp.Calibrated = status == motion.FullyCalibrated
	if err := s.Conn.WriteJSON(resp); err != nil {
		s.log.Warnf("calibration: session %s write error: %v", s.ID, err)
	}
}
