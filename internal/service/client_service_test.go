package service

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
	appErrors "github.com/joshkonopka69/fitness-sub000/pkg/errors"
	"github.com/joshkonopka69/fitness-sub000/pkg/money"
)

type fakeClientRepo struct {
	clients    map[string]*models.Client
	lastFilter models.ClientFilter
	createErr  error
}

func newFakeClientRepo(clients ...models.Client) *fakeClientRepo {
	repo := &fakeClientRepo{clients: map[string]*models.Client{}}
	for i := range clients {
		c := clients[i]
		repo.clients[c.ID] = &c
	}
	return repo
}

func (f *fakeClientRepo) List(_ context.Context, filter models.ClientFilter) ([]models.Client, int, error) {
	f.lastFilter = filter
	var out []models.Client
	for _, c := range f.clients {
		if c.CoachID == filter.CoachID {
			out = append(out, *c)
		}
	}
	return out, len(out), nil
}

func (f *fakeClientRepo) FindByID(_ context.Context, coachID, id string) (*models.Client, error) {
	c, ok := f.clients[id]
	if !ok || c.CoachID != coachID {
		return nil, sql.ErrNoRows
	}
	copied := *c
	return &copied, nil
}

func (f *fakeClientRepo) Create(_ context.Context, client *models.Client) error {
	if f.createErr != nil {
		return f.createErr
	}
	client.ID = "client-new"
	copied := *client
	f.clients[client.ID] = &copied
	return nil
}

func (f *fakeClientRepo) Update(_ context.Context, client *models.Client) error {
	stored := f.clients[client.ID]
	balance := stored.BalanceOwed
	copied := *client
	copied.BalanceOwed = balance
	f.clients[client.ID] = &copied
	return nil
}

func (f *fakeClientRepo) Deactivate(_ context.Context, _ string, id string) error {
	f.clients[id].Active = false
	return nil
}

func (f *fakeClientRepo) Delete(_ context.Context, _ string, id string) error {
	delete(f.clients, id)
	return nil
}

type stubClientPayments []models.Payment

func (s stubClientPayments) ListByClient(context.Context, string, string, int) ([]models.Payment, error) {
	return s, nil
}

type stubClientCategories struct {
	categories []models.Category
	err        error
}

func (s stubClientCategories) ListByClient(context.Context, string, string) ([]models.Category, error) {
	return s.categories, s.err
}

type stubStatusReader bool

func (s stubStatusReader) GetClientPaymentStatus(context.Context, string, string) (bool, error) {
	return bool(s), nil
}

func TestClientCreateOpeningBalance(t *testing.T) {
	repo := newFakeClientRepo()
	svc := NewClientService(ClientServiceParams{Repo: repo})
	ctx := context.Background()

	client, err := svc.Create(ctx, "coach-1", CreateClientRequest{Name: " Ola ", OpeningBalance: money.Input("120,50")})
	require.NoError(t, err)
	assert.Equal(t, "Ola", client.Name)
	assert.True(t, client.Active)
	assert.True(t, decimal.RequireFromString("120.5").Equal(client.BalanceOwed))
	assert.False(t, client.MonthlyFee.Valid)

	client, err = svc.Create(ctx, "coach-1", CreateClientRequest{Name: "Zero"})
	require.NoError(t, err)
	assert.True(t, client.BalanceOwed.IsZero())

	_, err = svc.Create(ctx, "coach-1", CreateClientRequest{Name: "Negative", OpeningBalance: money.Input("-5")})
	assert.Equal(t, appErrors.ErrInvalidAmount.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(ctx, "coach-1", CreateClientRequest{Name: "Bad mail", Email: strPtr("nope")})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestClientCreateRepositoryError(t *testing.T) {
	repo := newFakeClientRepo()
	repo.createErr = errors.New("insert failed")
	svc := NewClientService(ClientServiceParams{Repo: repo})

	_, err := svc.Create(context.Background(), "coach-1", CreateClientRequest{Name: "Ola"})
	assert.Equal(t, http.StatusInternalServerError, appErrors.FromError(err).Status)
}

func TestClientGetDetail(t *testing.T) {
	repo := newFakeClientRepo(models.Client{ID: "client-1", CoachID: "coach-1", Name: "Ola", BalanceOwed: decimal.NewFromInt(50)})
	svc := NewClientService(ClientServiceParams{
		Repo:       repo,
		Payments:   stubClientPayments{{ID: "pay-1"}},
		Categories: stubClientCategories{categories: []models.Category{{ID: "cat-1"}}},
		Tracker:    stubStatusReader(true),
	})

	detail, err := svc.Get(context.Background(), "coach-1", "client-1")
	require.NoError(t, err)
	assert.True(t, detail.HasPaidThisMonth)
	assert.Len(t, detail.Categories, 1)
	assert.Len(t, detail.RecentPayments, 1)

	_, err = svc.Get(context.Background(), "coach-2", "client-1")
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestClientGetDetailPropagatesErrors(t *testing.T) {
	repo := newFakeClientRepo(models.Client{ID: "client-1", CoachID: "coach-1"})
	svc := NewClientService(ClientServiceParams{
		Repo:       repo,
		Categories: stubClientCategories{err: errors.New("db down")},
	})

	_, err := svc.Get(context.Background(), "coach-1", "client-1")
	assert.Equal(t, http.StatusInternalServerError, appErrors.FromError(err).Status)
}

func TestClientUpdateKeepsBalance(t *testing.T) {
	repo := newFakeClientRepo(models.Client{ID: "client-1", CoachID: "coach-1", Name: "Ola", Active: true, BalanceOwed: decimal.NewFromInt(80)})
	svc := NewClientService(ClientServiceParams{Repo: repo})
	inactive := false
	fee := money.Input("150")

	updated, err := svc.Update(context.Background(), "coach-1", "client-1", UpdateClientRequest{Name: "Ola K", Active: &inactive, MonthlyFee: &fee})
	require.NoError(t, err)
	assert.Equal(t, "Ola K", updated.Name)
	assert.False(t, updated.Active)
	assert.True(t, updated.MonthlyFee.Valid)
	assert.True(t, decimal.NewFromInt(80).Equal(repo.clients["client-1"].BalanceOwed))
}

func TestClientDeactivateAndDelete(t *testing.T) {
	repo := newFakeClientRepo(models.Client{ID: "client-1", CoachID: "coach-1", Active: true})
	svc := NewClientService(ClientServiceParams{Repo: repo})
	ctx := context.Background()

	require.NoError(t, svc.Deactivate(ctx, "coach-1", "client-1"))
	assert.False(t, repo.clients["client-1"].Active)

	require.NoError(t, svc.Delete(ctx, "coach-1", "client-1"))
	assert.Empty(t, repo.clients)

	err := svc.Delete(ctx, "coach-1", "client-1")
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestClientListDefaults(t *testing.T) {
	repo := newFakeClientRepo(models.Client{ID: "client-1", CoachID: "coach-1"})
	svc := NewClientService(ClientServiceParams{Repo: repo})

	clients, pagination, err := svc.List(context.Background(), models.ClientFilter{CoachID: "coach-1", PageSize: 1000})
	require.NoError(t, err)
	assert.Len(t, clients, 1)
	assert.Equal(t, 50, pagination.PageSize)
	assert.Equal(t, 1, repo.lastFilter.Page)
}
