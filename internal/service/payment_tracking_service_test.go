package service

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
	appErrors "github.com/joshkonopka69/fitness-sub000/pkg/errors"
)

type monthKey struct {
	clientID    string
	year, month int
}

type fakeTrackingRepo struct {
	clients  map[string]string // client id to owning coach
	flags    map[monthKey]models.MonthlyPaymentStatus
	lastFrom time.Time
	lastTo   time.Time
}

func newFakeTrackingRepo(clientIDs ...string) *fakeTrackingRepo {
	repo := &fakeTrackingRepo{clients: map[string]string{}, flags: map[monthKey]models.MonthlyPaymentStatus{}}
	for _, id := range clientIDs {
		repo.clients[id] = "coach-1"
	}
	return repo
}

func (f *fakeTrackingRepo) HasPaid(_ context.Context, coachID, clientID string, year, month int) (bool, error) {
	if f.clients[clientID] != coachID {
		return false, sql.ErrNoRows
	}
	return f.flags[monthKey{clientID, year, month}].HasPaid, nil
}

func (f *fakeTrackingRepo) Upsert(_ context.Context, status *models.MonthlyPaymentStatus) error {
	if f.clients[status.ClientID] != status.CoachID {
		return sql.ErrNoRows
	}
	f.flags[monthKey{status.ClientID, status.Year, status.Month}] = *status
	return nil
}

func (f *fakeTrackingRepo) StatsByCategory(context.Context, string, int, int) ([]models.CategoryPaymentStats, error) {
	return nil, nil
}

func (f *fakeTrackingRepo) StatsBySubcategory(context.Context, string, string, int, int) ([]models.CategoryPaymentStats, error) {
	return []models.CategoryPaymentStats{{CategoryID: "sub-1", TotalClients: 2, PaidClients: 1, UnpaidClients: 1}}, nil
}

func (f *fakeTrackingRepo) UnpaidInCategory(_ context.Context, _ string, _ string, _ bool, year, month int) ([]models.UnpaidClient, error) {
	return f.unpaid(year, month), nil
}

func (f *fakeTrackingRepo) Unpaid(_ context.Context, _ string, year, month int) ([]models.UnpaidClient, error) {
	return f.unpaid(year, month), nil
}

func (f *fakeTrackingRepo) unpaid(year, month int) []models.UnpaidClient {
	var out []models.UnpaidClient
	for id := range f.clients {
		if !f.flags[monthKey{id, year, month}].HasPaid {
			out = append(out, models.UnpaidClient{ID: id})
		}
	}
	return out
}

func (f *fakeTrackingRepo) History(_ context.Context, _ string, _ string, from, to time.Time) ([]models.MonthlyHistoryEntry, error) {
	f.lastFrom, f.lastTo = from, to
	return nil, nil
}

func newTestTracker(repo *fakeTrackingRepo) (*PaymentTrackingService, *recordingQueue) {
	queue := &recordingQueue{}
	svc := NewPaymentTrackingService(repo, NewEventService(queue, nil, nil), nil, time.UTC, nil)
	svc.clock.now = func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) }
	return svc, queue
}

func TestToggleClientPaymentStatusTwiceRestores(t *testing.T) {
	repo := newFakeTrackingRepo("client-1")
	svc, queue := newTestTracker(repo)
	ctx := context.Background()

	original, err := svc.GetClientPaymentStatus(ctx, "coach-1", "client-1")
	require.NoError(t, err)
	assert.False(t, original)

	first, err := svc.ToggleClientPaymentStatus(ctx, "coach-1", "client-1", original)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := svc.ToggleClientPaymentStatus(ctx, "coach-1", "client-1", first)
	require.NoError(t, err)
	assert.Equal(t, original, second)

	current, err := svc.GetClientPaymentStatus(ctx, "coach-1", "client-1")
	require.NoError(t, err)
	assert.Equal(t, original, current)

	require.Len(t, queue.jobs, 2)
	assert.Equal(t, string(models.EventMonthPaid), queue.jobs[0].Type)
	assert.Equal(t, string(models.EventMonthUnpaid), queue.jobs[1].Type)
}

func TestMarkClientAsPaidIsIdempotent(t *testing.T) {
	repo := newFakeTrackingRepo("client-1")
	svc, _ := newTestTracker(repo)
	ctx := context.Background()

	require.NoError(t, svc.MarkClientAsPaid(ctx, "coach-1", "client-1", " cash "))
	require.NoError(t, svc.MarkClientAsPaid(ctx, "coach-1", "client-1", ""))

	assert.Len(t, repo.flags, 1)
	flag := repo.flags[monthKey{"client-1", 2026, 3}]
	assert.True(t, flag.HasPaid)
	require.NotNil(t, flag.PaidAt)
}

func TestMarkUnknownClient(t *testing.T) {
	svc, _ := newTestTracker(newFakeTrackingRepo())
	err := svc.MarkClientAsPaid(context.Background(), "coach-1", "ghost", "")
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestMarkClientOfAnotherCoach(t *testing.T) {
	repo := newFakeTrackingRepo()
	repo.clients["client-b"] = "coach-2"
	svc, _ := newTestTracker(repo)

	err := svc.MarkClientAsPaid(context.Background(), "coach-1", "client-b", "")
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
	assert.Empty(t, repo.flags)

	_, err = svc.ToggleClientPaymentStatus(context.Background(), "coach-1", "client-b", false)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
	assert.Empty(t, repo.flags)
}

func TestUnpaidClientsCurrentMonth(t *testing.T) {
	repo := newFakeTrackingRepo("client-1", "client-2")
	svc, _ := newTestTracker(repo)
	ctx := context.Background()

	require.NoError(t, svc.MarkClientAsPaid(ctx, "coach-1", "client-1", ""))
	unpaid, err := svc.GetUnpaidClientsCurrentMonth(ctx, "coach-1")
	require.NoError(t, err)
	require.Len(t, unpaid, 1)
	assert.Equal(t, "client-2", unpaid[0].ID)

	require.NoError(t, svc.MarkClientAsPaid(ctx, "coach-1", "client-2", ""))
	unpaid, err = svc.GetUnpaidClientsInCategory(ctx, "coach-1", "cat-1", true)
	require.NoError(t, err)
	assert.NotNil(t, unpaid)
	assert.Empty(t, unpaid)
}

func TestCategoryStatsNeverNil(t *testing.T) {
	svc, _ := newTestTracker(newFakeTrackingRepo())
	stats, err := svc.GetPaymentStatsByCategory(context.Background(), "coach-1")
	require.NoError(t, err)
	assert.NotNil(t, stats)

	subs, err := svc.GetPaymentStatsBySubcategory(context.Background(), "coach-1", "cat-1")
	require.NoError(t, err)
	assert.Equal(t, 1, subs[0].UnpaidClients)
}

func TestMonthlyHistoryWindow(t *testing.T) {
	repo := newFakeTrackingRepo("client-1")
	svc, _ := newTestTracker(repo)

	history, err := svc.GetMonthlyHistory(context.Background(), "coach-1", "client-1", 0)
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), repo.lastTo)
	assert.Equal(t, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), repo.lastFrom)

	_, err = svc.GetMonthlyHistory(context.Background(), "coach-1", "client-1", 48)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
