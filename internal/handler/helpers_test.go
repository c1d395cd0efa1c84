package handler

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/joshkonopka69/fitness-sub000/internal/middleware"
	"github.com/joshkonopka69/fitness-sub000/internal/models"
)

const (
	testClientID   = "7b0c3c1e-5a44-4d8e-9a51-0f2d6c1e9a01"
	testSessionID  = "2f6d1b8a-93c4-4b7e-8d0a-5e4c3b2a1f02"
	testPaymentID  = "c4a9e2d7-1b3f-4e6a-9c8d-7f5e4d3c2b03"
	testCategoryID = "9e8d7c6b-5a4f-4e3d-8c2b-1a0f9e8d7c04"
	testMissingID  = "00000000-0000-4000-8000-000000000000"
)

type responseEnvelope struct {
	Data       json.RawMessage                 `json:"data"`
	Error      *struct{ Code, Message string } `json:"error"`
	Pagination *models.Pagination              `json:"pagination"`
	Meta       map[string]interface{}          `json:"meta"`
}

func newCoachContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	c.Request = httptest.NewRequest(method, target, reader)
	if body != "" {
		c.Request.Header.Set("Content-Type", "application/json")
	}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "coach-1"}})
	return c, rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}
