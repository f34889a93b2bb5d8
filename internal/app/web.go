// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/relabs-tech/motion_tracker/internal/logging"
	"github.com/relabs-tech/motion_tracker/internal/training"
)

type errorResponse struct {
	Error string `json:"error"`
}

type trainingStatus struct {
	Training           bool `json:"training"`
	HasLearnedBehavior bool `json:"has_learned_behavior"`
}

// NewHandler serves the producer's HTTP API:
//
//	GET  /api/motion              current motion state
//	GET  /api/measurement         open measurement window, not reset
//	POST /api/reset/displacement  zero velocity and displacement
//	POST /api/reset/measurement   start a new measurement window
//	GET  /api/training            learning status
//	POST /api/training/start      start learning (not implemented)
//	GET  /ws/calibration          calibration websocket
func NewHandler(svc *MotionService, log *logging.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/motion", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.State(), log)
	})

	mux.HandleFunc("GET /api/measurement", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.PeekMeasurement(), log)
	})

	mux.HandleFunc("POST /api/reset/displacement", func(w http.ResponseWriter, r *http.Request) {
		svc.ResetDisplacement()
		log.Infof("displacement reset by %s", r.RemoteAddr)
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /api/reset/measurement", func(w http.ResponseWriter, r *http.Request) {
		svc.ResetMeasurement()
		log.Infof("measurement reset by %s", r.RemoteAddr)
		w.WriteHeader(http.StatusNoContent)
	})

	var trainer training.Trainer
	mux.HandleFunc("GET /api/training", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, trainingStatus{
			Training:           trainer.IsTraining(),
			HasLearnedBehavior: trainer.HasLearnedBehavior(),
		}, log)
	})

	mux.HandleFunc("POST /api/training/start", func(w http.ResponseWriter, r *http.Request) {
		if err := trainer.Start(); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, training.ErrNotImplemented) {
				status = http.StatusNotImplemented
			}
			writeJSON(w, status, errorResponse{Error: err.Error()}, log)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	mux.Handle("GET /ws/calibration", &calibrationHandler{svc: svc, log: log})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any, log *logging.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("json encode error: %v", err)
	}
}
