package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
	"github.com/joshkonopka69/fitness-sub000/internal/service"
	appErrors "github.com/joshkonopka69/fitness-sub000/pkg/errors"
)

type fakeSessions struct {
	filter models.SessionFilter
	req    service.SessionRequest
}

func (f *fakeSessions) List(_ context.Context, filter models.SessionFilter) ([]models.TrainingSession, error) {
	f.filter = filter
	return []models.TrainingSession{}, nil
}

func (f *fakeSessions) Get(context.Context, string, string) (*models.TrainingSession, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
}

func (f *fakeSessions) Create(_ context.Context, coachID string, req service.SessionRequest) (*models.TrainingSession, error) {
	f.req = req
	return &models.TrainingSession{ID: "s1", CoachID: coachID, Title: req.Title}, nil
}

func (f *fakeSessions) Update(context.Context, string, string, service.SessionRequest) (*models.TrainingSession, error) {
	return &models.TrainingSession{}, nil
}

func (f *fakeSessions) Delete(context.Context, string, string) error { return nil }

type fakeAttendance struct {
	present  map[string]bool
	replaced []string
}

func (f *fakeAttendance) ToggleAttendance(_ context.Context, _, _, clientID string) (bool, error) {
	f.present[clientID] = !f.present[clientID]
	return f.present[clientID], nil
}

func (f *fakeAttendance) SetAttendance(_ context.Context, _, _ string, clientIDs []string) ([]models.Attendee, error) {
	f.replaced = clientIDs
	out := make([]models.Attendee, 0, len(clientIDs))
	for _, id := range clientIDs {
		out = append(out, models.Attendee{ClientID: id, Present: true})
	}
	return out, nil
}

func (f *fakeAttendance) ListAttendees(context.Context, string, string) ([]models.Attendee, error) {
	return []models.Attendee{}, nil
}

func TestSessionHandlerListRange(t *testing.T) {
	sessions := &fakeSessions{}
	h := NewSessionHandler(sessions, nil)

	c, rec := newCoachContext(http.MethodGet, "/sessions?from=2024-10-01&to=2024-10-31", "")
	h.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "coach-1", sessions.filter.CoachID)
	assert.Equal(t, "2024-10-31", sessions.filter.To.Format(dateLayout))
}

func TestSessionHandlerCreate(t *testing.T) {
	sessions := &fakeSessions{}
	h := NewSessionHandler(sessions, nil)

	c, rec := newCoachContext(http.MethodPost, "/sessions", `{"title":"Boxing","session_date":"2024-10-05","start_time":"18:00","end_time":"19:00"}`)
	h.Create(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "2024-10-05", sessions.req.Date)
	assert.Equal(t, "18:00", sessions.req.StartTime)
}

func TestSessionHandlerGetNotFound(t *testing.T) {
	h := NewSessionHandler(&fakeSessions{}, nil)
	c, rec := newCoachContext(http.MethodGet, "/sessions/nope", "")
	c.AddParam("id", testMissingID)
	h.Get(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionHandlerAttendance(t *testing.T) {
	attendance := &fakeAttendance{present: map[string]bool{}}
	h := NewSessionHandler(nil, attendance)

	c, rec := newCoachContext(http.MethodPost, "/sessions/s1/attendance/c1/toggle", "")
	c.AddParam("id", testSessionID)
	c.AddParam("clientId", testClientID)
	h.ToggleAttendance(c)
	require.Equal(t, http.StatusOK, rec.Code)

	var got presence
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &got))
	assert.Equal(t, presence{SessionID: testSessionID, ClientID: testClientID, Present: true}, got)

	c, rec = newCoachContext(http.MethodPut, "/sessions/s1/attendance", `{"client_ids":["c1","c2"]}`)
	c.AddParam("id", testSessionID)
	h.SetAttendance(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"c1", "c2"}, attendance.replaced)
}
