package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshkonopka69/fitness-sub000/internal/dto"
	"github.com/joshkonopka69/fitness-sub000/internal/middleware"
	"github.com/joshkonopka69/fitness-sub000/internal/models"
	appErrors "github.com/joshkonopka69/fitness-sub000/pkg/errors"
)

type fakeReports struct {
	days     int
	path     []string
	hit      bool
	drillErr error
}

func (f *fakeReports) RevenueByDay(_ context.Context, _ string, days int) (*dto.RevenueReport, error) {
	f.days = days
	return &dto.RevenueReport{Currency: "PLN"}, nil
}

func (f *fakeReports) OverdueTotal(context.Context, string) (*models.OverdueSummary, error) {
	return &models.OverdueSummary{}, nil
}

func (f *fakeReports) Drilldown(_ context.Context, _ string, path []string) (*dto.DrilldownResponse, error) {
	f.path = path
	if f.drillErr != nil {
		return nil, f.drillErr
	}
	return &dto.DrilldownResponse{}, nil
}

func (f *fakeReports) Dashboard(_ context.Context, coachID string) (*dto.DashboardResponse, bool, error) {
	return &dto.DashboardResponse{CoachID: coachID}, f.hit, nil
}

func TestReportHandlerRevenueDays(t *testing.T) {
	reports := &fakeReports{}
	h := NewReportHandler(reports)

	c, rec := newCoachContext(http.MethodGet, "/reports/revenue?days=30", "")
	h.Revenue(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 30, reports.days)

	c, _ = newCoachContext(http.MethodGet, "/reports/revenue?days=lots", "")
	h.Revenue(c)
	assert.Equal(t, 0, reports.days)
}

func TestReportHandlerDrilldownPath(t *testing.T) {
	reports := &fakeReports{}
	h := NewReportHandler(reports)

	c, rec := newCoachContext(http.MethodGet, "/reports/drilldown?path=cat-1,%20sub-2,", "")
	h.Drilldown(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"cat-1", "sub-2"}, reports.path)
	assert.Nil(t, splitPath(""))
}

func TestReportHandlerDrilldownInvalid(t *testing.T) {
	h := NewReportHandler(&fakeReports{drillErr: appErrors.Clone(appErrors.ErrDrilldownInvalid, "too deep")})
	c, rec := newCoachContext(http.MethodGet, "/reports/drilldown?path=a,b,c", "")
	h.Drilldown(c)
	assert.Equal(t, appErrors.ErrDrilldownInvalid.Status, rec.Code)
}

func TestReportHandlerDashboardCacheMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewReportHandler(&fakeReports{hit: true})

	c, rec := newCoachContext(http.MethodGet, "/reports/dashboard", "")
	middleware.WithResponseMeta()(c)
	h.Dashboard(c)

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Contains(t, envelope.Meta, "processing_time_ms")
	assert.Contains(t, string(envelope.Data), `"coach-1"`)
}
