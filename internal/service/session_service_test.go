package service

import (
	"context"
	"database/sql"
	"net/http"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
	appErrors "github.com/joshkonopka69/fitness-sub000/pkg/errors"
)

type fakeSessionRepo struct {
	sessions map[string]*models.TrainingSession
}

func newFakeSessionRepo(sessions ...models.TrainingSession) *fakeSessionRepo {
	repo := &fakeSessionRepo{sessions: map[string]*models.TrainingSession{}}
	for i := range sessions {
		s := sessions[i]
		repo.sessions[s.ID] = &s
	}
	return repo
}

func (f *fakeSessionRepo) List(_ context.Context, filter models.SessionFilter) ([]models.TrainingSession, error) {
	var out []models.TrainingSession
	for _, s := range f.sessions {
		if s.CoachID == filter.CoachID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) FindByID(_ context.Context, coachID, id string) (*models.TrainingSession, error) {
	s, ok := f.sessions[id]
	if !ok || s.CoachID != coachID {
		return nil, sql.ErrNoRows
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSessionRepo) Create(_ context.Context, session *models.TrainingSession) error {
	session.ID = "session-new"
	copied := *session
	f.sessions[session.ID] = &copied
	return nil
}

func (f *fakeSessionRepo) Update(_ context.Context, session *models.TrainingSession) error {
	copied := *session
	f.sessions[session.ID] = &copied
	return nil
}

func (f *fakeSessionRepo) Delete(_ context.Context, coachID, id string) error {
	s, ok := f.sessions[id]
	if !ok || s.CoachID != coachID {
		return sql.ErrNoRows
	}
	delete(f.sessions, id)
	return nil
}

type fakeAttendanceRepo struct {
	present map[string]map[string]bool
	roster  []string
}

func newFakeAttendanceRepo(roster ...string) *fakeAttendanceRepo {
	return &fakeAttendanceRepo{present: map[string]map[string]bool{}, roster: roster}
}

func (f *fakeAttendanceRepo) Toggle(_ context.Context, sessionID, clientID string) (bool, error) {
	set := f.present[sessionID]
	if set == nil {
		set = map[string]bool{}
		f.present[sessionID] = set
	}
	if set[clientID] {
		delete(set, clientID)
		return false, nil
	}
	set[clientID] = true
	return true, nil
}

func (f *fakeAttendanceRepo) Replace(_ context.Context, sessionID string, clientIDs []string) error {
	set := map[string]bool{}
	for _, id := range clientIDs {
		set[id] = true
	}
	f.present[sessionID] = set
	return nil
}

func (f *fakeAttendanceRepo) ListAttendees(_ context.Context, _ string, sessionID string) ([]models.Attendee, error) {
	var out []models.Attendee
	for _, id := range f.roster {
		out = append(out, models.Attendee{ClientID: id, Name: id, Present: f.present[sessionID][id]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeAttendanceRepo) ClientStats(_ context.Context, _ string, clientID string, from, to time.Time) (int, int, error) {
	attended := 0
	for _, set := range f.present {
		if set[clientID] {
			attended++
		}
	}
	return attended, len(f.present), nil
}

func TestSessionCreateValidation(t *testing.T) {
	svc := NewSessionService(newFakeSessionRepo(), nil, nil)
	ctx := context.Background()

	session, err := svc.Create(ctx, "coach-1", SessionRequest{Title: " Boxing ", Date: "2026-10-20", StartTime: "18:00", EndTime: "19:30"})
	require.NoError(t, err)
	assert.Equal(t, "Boxing", session.Title)
	assert.Equal(t, defaultSessionColor, session.Color)
	assert.Equal(t, 20, session.SessionDate.Day())

	_, err = svc.Create(ctx, "coach-1", SessionRequest{Title: "Late", Date: "2026-10-20", StartTime: "19:00", EndTime: "18:00"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(ctx, "coach-1", SessionRequest{Title: "Bad date", Date: "20/10/2026", StartTime: "18:00", EndTime: "19:00"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSessionUpdateAndDelete(t *testing.T) {
	repo := newFakeSessionRepo(models.TrainingSession{ID: "s1", CoachID: "coach-1", Title: "Old"})
	svc := NewSessionService(repo, nil, nil)
	ctx := context.Background()

	updated, err := svc.Update(ctx, "coach-1", "s1", SessionRequest{Title: "New", Date: "2026-11-02", StartTime: "07:00", EndTime: "08:00", Color: "#FF0000"})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "#FF0000", repo.sessions["s1"].Color)

	_, err = svc.Update(ctx, "coach-2", "s1", SessionRequest{Title: "Steal", Date: "2026-11-02", StartTime: "07:00", EndTime: "08:00"})
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)

	require.NoError(t, svc.Delete(ctx, "coach-1", "s1"))
	err = svc.Delete(ctx, "coach-1", "s1")
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestSessionListRange(t *testing.T) {
	svc := NewSessionService(newFakeSessionRepo(), nil, nil)
	from := time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -1)

	_, err := svc.List(context.Background(), models.SessionFilter{CoachID: "coach-1", From: &from, To: &to})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	to = from.AddDate(0, 1, 0)
	sessions, err := svc.List(context.Background(), models.SessionFilter{CoachID: "coach-1", From: &from, To: &to})
	require.NoError(t, err)
	assert.NotNil(t, sessions)
}

func TestAttendanceToggleAndSet(t *testing.T) {
	sessions := newFakeSessionRepo(models.TrainingSession{ID: "s1", CoachID: "coach-1"})
	repo := newFakeAttendanceRepo("anna", "bart", "celina")
	clients := fakeClientLookup{"anna": "coach-1", "bart": "coach-1", "celina": "coach-1"}
	svc := NewAttendanceService(repo, sessions, clients, nil)
	ctx := context.Background()

	present, err := svc.ToggleAttendance(ctx, "coach-1", "s1", "anna")
	require.NoError(t, err)
	assert.True(t, present)
	present, err = svc.ToggleAttendance(ctx, "coach-1", "s1", "anna")
	require.NoError(t, err)
	assert.False(t, present)

	attendees, err := svc.SetAttendance(ctx, "coach-1", "s1", []string{"bart", "celina", "bart"})
	require.NoError(t, err)
	require.Len(t, attendees, 3)
	assert.False(t, attendees[0].Present)
	assert.True(t, attendees[1].Present)
	assert.True(t, attendees[2].Present)

	_, err = svc.SetAttendance(ctx, "coach-1", "s1", []string{"stranger"})
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)

	_, err = svc.ToggleAttendance(ctx, "coach-2", "s1", "anna")
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestClientAttendanceStats(t *testing.T) {
	sessions := newFakeSessionRepo(models.TrainingSession{ID: "s1", CoachID: "coach-1"})
	repo := newFakeAttendanceRepo("anna")
	svc := NewAttendanceService(repo, sessions, fakeClientLookup{"anna": "coach-1"}, nil)
	ctx := context.Background()

	_, err := svc.ToggleAttendance(ctx, "coach-1", "s1", "anna")
	require.NoError(t, err)

	stats, err := svc.ClientAttendanceStats(ctx, "coach-1", "anna", 2026, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Attended)
	assert.Equal(t, 1, stats.Sessions)

	_, err = svc.ClientAttendanceStats(ctx, "coach-1", "anna", 2026, 13)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
