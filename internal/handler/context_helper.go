package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joshkonopka69/fitness-sub000/internal/middleware"
	"github.com/joshkonopka69/fitness-sub000/internal/models"
	appErrors "github.com/joshkonopka69/fitness-sub000/pkg/errors"
	"github.com/joshkonopka69/fitness-sub000/pkg/response"
)

const dateLayout = "2006-01-02"

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.Claims(c)
}

// coachID resolves the authenticated coach or writes a 401 and reports false.
func coachID(c *gin.Context) (string, bool) {
	claims := claimsFromContext(c)
	if claims == nil || claims.CoachID() == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	return claims.CoachID(), true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid payload"))
		return false
	}
	return true
}

// pathID reads a UUID path parameter. A malformed id cannot name a stored row, so it
// answers 404 without reaching the database.
func pathID(c *gin.Context, name string) (string, bool) {
	raw := strings.TrimSpace(c.Param(name))
	if _, err := uuid.Parse(raw); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "resource not found"))
		return "", false
	}
	return raw, true
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func queryBool(c *gin.Context, key string) *bool {
	switch strings.ToLower(strings.TrimSpace(c.Query(key))) {
	case "true", "1":
		v := true
		return &v
	case "false", "0":
		v := false
		return &v
	}
	return nil
}

// queryDate parses an optional YYYY-MM-DD query value.
func queryDate(c *gin.Context, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid "+key+" format, expected YYYY-MM-DD")
	}
	return &parsed, nil
}
