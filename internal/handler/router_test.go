package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	appErrors "github.com/joshkonopka69/fitness-sub000/pkg/errors"
	"github.com/joshkonopka69/fitness-sub000/pkg/response"
)

func denyAll(c *gin.Context) {
	response.Error(c, appErrors.ErrUnauthorized)
	c.Abort()
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r.Group("/api/v1"), denyAll, Handlers{
		Coach:        NewCoachHandler(nil),
		Clients:      NewClientHandler(nil, nil, nil, nil, nil),
		Payments:     NewPaymentHandler(nil),
		Tracking:     NewTrackingHandler(nil),
		Categories:   NewCategoryHandler(nil),
		Reports:      NewReportHandler(nil),
		Sessions:     NewSessionHandler(nil, nil),
		Subscription: NewSubscriptionHandler(nil),
		Exports:      NewExportHandler(&fakeDownloader{resolveErr: appErrors.Clone(appErrors.ErrNotFound, "download link not found")}),
		System:       NewMetricsHandler(nil, nil),
	})
	return r
}

func TestRoutesRequireAuth(t *testing.T) {
	r := newTestRouter()
	cases := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/clients"},
		{http.MethodPost, "/api/v1/payments"},
		{http.MethodPatch, "/api/v1/payments/p1/status"},
		{http.MethodGet, "/api/v1/categories/tree"},
		{http.MethodPost, "/api/v1/tracking/clients/c1/toggle"},
		{http.MethodGet, "/api/v1/reports/dashboard"},
		{http.MethodPut, "/api/v1/sessions/s1/attendance"},
		{http.MethodGet, "/api/v1/subscription/trial"},
		{http.MethodGet, "/api/v1/me"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.method+" "+tc.path)
	}
}

func TestExportDownloadIsPublic(t *testing.T) {
	r := newTestRouter()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/exports/some-token", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "download link not found")
}
