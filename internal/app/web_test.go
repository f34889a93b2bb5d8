// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/motion_tracker/internal/logging"
	"github.com/relabs-tech/motion_tracker/internal/training"
)

func newTestServer(t *testing.T, svc *MotionService) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewHandler(svc, logging.Discard()))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON[T any](t *testing.T, url string) (int, T) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return resp.StatusCode, v
}

func post(t *testing.T, url string) int {
	t.Helper()
	resp, err := http.Post(url, "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestAPI_MotionAndMeasurement(t *testing.T) {
	svc, _, clk := newService(t, testConfig(), repeatSample(accelSample(1, 0, 0), 2)...)
	srv := newTestServer(t, svc)

	for range 2 {
		clk.Advance(100 * time.Millisecond)
		svc.Tick()
	}

	code, state := getJSON[MotionState](t, srv.URL+"/api/motion")
	assert.Equal(t, http.StatusOK, code)
	assert.InDelta(t, 0.2, state.Speed, 1e-9)
	assert.Equal(t, "ready", state.Status)

	code, m := getJSON[MotionSnapshot](t, srv.URL+"/api/measurement")
	assert.Equal(t, http.StatusOK, code)
	assert.InDelta(t, 3.0, m.DeltaDistance, 1e-9)

	// Peeking twice reads the same window.
	_, again := getJSON[MotionSnapshot](t, srv.URL+"/api/measurement")
	assert.Equal(t, m.DeltaDistance, again.DeltaDistance)
}

func TestAPI_Resets(t *testing.T) {
	svc, _, clk := newService(t, testConfig(), repeatSample(accelSample(1, 0, 0), 2)...)
	srv := newTestServer(t, svc)

	for range 2 {
		clk.Advance(100 * time.Millisecond)
		svc.Tick()
	}

	assert.Equal(t, http.StatusNoContent, post(t, srv.URL+"/api/reset/measurement"))
	m := svc.PeekMeasurement()
	assert.Zero(t, m.DeltaDistance)
	assert.Zero(t, m.AvgSpeed)
	assert.InDelta(t, 0.2, svc.State().Speed, 1e-9)

	assert.Equal(t, http.StatusNoContent, post(t, srv.URL+"/api/reset/displacement"))
	assert.Zero(t, svc.State().Speed)
	assert.Equal(t, Vec3{}, svc.State().Displacement)
}

func TestAPI_MethodNotAllowed(t *testing.T) {
	svc, _, _ := newService(t, testConfig())
	srv := newTestServer(t, svc)

	resp, err := http.Get(srv.URL + "/api/reset/displacement")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestAPI_TrainingStatus(t *testing.T) {
	svc, _, _ := newService(t, testConfig())
	srv := newTestServer(t, svc)

	code, body := getJSON[trainingStatus](t, srv.URL+"/api/training")
	assert.Equal(t, http.StatusOK, code)
	assert.False(t, body.Training)
	assert.False(t, body.HasLearnedBehavior)
}

func TestAPI_TrainingStartNotImplemented(t *testing.T) {
	svc, _, _ := newService(t, testConfig())
	srv := newTestServer(t, svc)

	resp, err := http.Post(srv.URL+"/api/training/start", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)

	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, training.ErrNotImplemented.Error(), body.Error)

	resp, err = http.Get(srv.URL + "/api/training/start")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func dialCalibration(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/calibration"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readResponse(t *testing.T, conn *websocket.Conn) WSResponse {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var resp WSResponse
	require.NoError(t, conn.ReadJSON(&resp))
	return resp
}

func TestCalibrationWS_Workflow(t *testing.T) {
	svc, _, _ := newService(t, testConfig())
	srv := newTestServer(t, svc)
	conn := dialCalibration(t, srv)

	hello := readResponse(t, conn)
	assert.Equal(t, "session", hello.Type)
	_, err := uuid.Parse(hello.Session)
	require.NoError(t, err)
	assert.Equal(t, "ready", hello.Status)

	require.NoError(t, conn.WriteJSON(WSMessage{Action: "status"}))
	status := readResponse(t, conn)
	assert.Equal(t, "status", status.Type)
	assert.Equal(t, hello.Session, status.Session)
	assert.False(t, status.Calibrated)

	require.NoError(t, conn.WriteJSON(WSMessage{Action: "accel_gyro"}))
	assert.Equal(t, "started", readResponse(t, conn).Type)
	done := readResponse(t, conn)
	assert.Equal(t, "complete", done.Type)
	assert.Equal(t, "accel_gyro", done.Action)
	// Accel/gyro alone never marks the tracker calibrated.
	assert.False(t, done.Calibrated)

	require.NoError(t, conn.WriteJSON(WSMessage{Action: "mag"}))
	assert.Equal(t, "started", readResponse(t, conn).Type)
	done = readResponse(t, conn)
	assert.Equal(t, "complete", done.Type)
	assert.True(t, done.Calibrated)
	assert.Equal(t, "calibrated", done.Status)
}

func TestCalibrationWS_UnknownAction(t *testing.T) {
	svc, _, _ := newService(t, testConfig())
	srv := newTestServer(t, svc)
	conn := dialCalibration(t, srv)
	readResponse(t, conn)

	require.NoError(t, conn.WriteJSON(WSMessage{Action: "spin"}))
	resp := readResponse(t, conn)
	assert.Equal(t, "error", resp.Type)
	assert.Equal(t, "spin", resp.Action)
}

func TestCalibrationWS_SessionsAreDistinct(t *testing.T) {
	svc, _, _ := newService(t, testConfig())
	srv := newTestServer(t, svc)

	a := readResponse(t, dialCalibration(t, srv))
	b := readResponse(t, dialCalibration(t, srv))
	assert.NotEqual(t, a.Session, b.Session)
}
