// internal/handlers/room_http_test.go
package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *RoomServer {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewRoomServer(logger)
}

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthHandler()(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestGetRoomHandler(t *testing.T) {
	rs := newTestServer()
	room := rs.Store.CreateRoom()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/rooms/"+room.Code, nil)
	GetRoomHandler(rs)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, room.Code, body["code"])
	assert.Equal(t, "LOBBY", body["status"])
	assert.Equal(t, true, body["joinable"])
	assert.EqualValues(t, 6, body["maxSeats"])
}

func TestGetRoomHandlerLowercaseCode(t *testing.T) {
	rs := newTestServer()
	room := rs.Store.CreateRoom()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/rooms/"+strings.ToLower(room.Code), nil)
	GetRoomHandler(rs)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, "join codes are case-insensitive")
}

func TestGetRoomHandlerNotFound(t *testing.T) {
	rs := newTestServer()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/rooms/ZZZZZ", nil)
	GetRoomHandler(rs)(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRoomHandlerRejectsWrongMethod(t *testing.T) {
	rs := newTestServer()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/rooms/ABCDE", nil)
	GetRoomHandler(rs)(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMatchHistoryHandlerDisabled(t *testing.T) {
	rs := newTestServer()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/rooms/ABCDE/history", nil)
	MatchHistoryHandler(rs)(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateRoomHandlerRejectsGet(t *testing.T) {
	rs := newTestServer()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
	CreateRoomHandler(rs)(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
