package service

import (
	"context"
	"database/sql"
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
	appErrors "github.com/joshkonopka69/fitness-sub000/pkg/errors"
)

type fakeCoachRepo struct {
	coaches map[string]models.Coach
}

func (f *fakeCoachRepo) Ensure(_ context.Context, coach *models.Coach) error {
	existing, ok := f.coaches[coach.ID]
	if ok && coach.FullName == "" {
		coach.FullName = existing.FullName
	}
	f.coaches[coach.ID] = *coach
	return nil
}

func (f *fakeCoachRepo) FindByID(_ context.Context, id string) (*models.Coach, error) {
	coach, ok := f.coaches[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &coach, nil
}

func TestCoachEnsureAndMe(t *testing.T) {
	repo := &fakeCoachRepo{coaches: map[string]models.Coach{}}
	svc := NewCoachService(repo, nil)
	ctx := context.Background()
	claims := &models.JWTClaims{Email: "coach@example.com", RegisteredClaims: jwt.RegisteredClaims{Subject: "coach-1"}}

	_, err := svc.Me(ctx, "coach-1")
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)

	coach, err := svc.Ensure(ctx, claims, "Kasia")
	require.NoError(t, err)
	assert.Equal(t, "Kasia", coach.FullName)

	coach, err = svc.Ensure(ctx, claims, "")
	require.NoError(t, err)
	assert.Equal(t, "Kasia", coach.FullName)

	_, err = svc.Ensure(ctx, nil, "")
	assert.Equal(t, http.StatusUnauthorized, appErrors.FromError(err).Status)
}
