package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
	"github.com/joshkonopka69/fitness-sub000/internal/service"
	"github.com/joshkonopka69/fitness-sub000/pkg/response"
)

type sessionService interface {
	List(ctx context.Context, filter models.SessionFilter) ([]models.TrainingSession, error)
	Get(ctx context.Context, coachID, id string) (*models.TrainingSession, error)
	Create(ctx context.Context, coachID string, req service.SessionRequest) (*models.TrainingSession, error)
	Update(ctx context.Context, coachID, id string, req service.SessionRequest) (*models.TrainingSession, error)
	Delete(ctx context.Context, coachID, id string) error
}

type attendanceService interface {
	ToggleAttendance(ctx context.Context, coachID, sessionID, clientID string) (bool, error)
	SetAttendance(ctx context.Context, coachID, sessionID string, clientIDs []string) ([]models.Attendee, error)
	ListAttendees(ctx context.Context, coachID, sessionID string) ([]models.Attendee, error)
}

type presence struct {
	SessionID string `json:"session_id"`
	ClientID  string `json:"client_id"`
	Present   bool   `json:"present"`
}

// SessionHandler exposes the training calendar and attendance endpoints.
type SessionHandler struct {
	sessions   sessionService
	attendance attendanceService
}

// NewSessionHandler constructs SessionHandler.
func NewSessionHandler(sessions sessionService, attendance attendanceService) *SessionHandler {
	return &SessionHandler{sessions: sessions, attendance: attendance}
}

// List godoc
// @Summary List training sessions
// @Tags Sessions
// @Produce json
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	from, err := queryDate(c, "from")
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := queryDate(c, "to")
	if err != nil {
		response.Error(c, err)
		return
	}
	sessions, err := h.sessions.List(c.Request.Context(), models.SessionFilter{CoachID: coach, From: from, To: to})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// Get godoc
// @Summary Get training session
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	session, err := h.sessions.Get(c.Request.Context(), coach, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Create godoc
// @Summary Create training session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body service.SessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	var req service.SessionRequest
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.sessions.Create(c.Request.Context(), coach, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Update godoc
// @Summary Update training session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body service.SessionRequest true "Session payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /sessions/{id} [put]
func (h *SessionHandler) Update(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	var req service.SessionRequest
	if !bindJSON(c, &req) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	session, err := h.sessions.Update(c.Request.Context(), coach, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Delete godoc
// @Summary Delete training session
// @Tags Sessions
// @Param id path string true "Session ID"
// @Success 204
// @Security BearerAuth
// @Router /sessions/{id} [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.sessions.Delete(c.Request.Context(), coach, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Attendees godoc
// @Summary List clients present at a session
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /sessions/{id}/attendance [get]
func (h *SessionHandler) Attendees(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	attendees, err := h.attendance.ListAttendees(c.Request.Context(), coach, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, attendees, nil)
}

// SetAttendance godoc
// @Summary Replace the attendee list of a session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body service.SetAttendanceRequest true "Present client ids"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /sessions/{id}/attendance [put]
func (h *SessionHandler) SetAttendance(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	var req service.SetAttendanceRequest
	if !bindJSON(c, &req) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	attendees, err := h.attendance.SetAttendance(c.Request.Context(), coach, id, req.ClientIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, attendees, nil)
}

// ToggleAttendance godoc
// @Summary Flip one client's presence at a session
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Param clientId path string true "Client ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /sessions/{id}/attendance/{clientId}/toggle [post]
func (h *SessionHandler) ToggleAttendance(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	clientID, ok := pathID(c, "clientId")
	if !ok {
		return
	}
	present, err := h.attendance.ToggleAttendance(c.Request.Context(), coach, sessionID, clientID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, presence{SessionID: sessionID, ClientID: clientID, Present: present}, nil)
}
