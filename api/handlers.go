package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nemopss/expense-tracker/backend/auth"
	"github.com/nemopss/expense-tracker/backend/db"
	"github.com/nemopss/expense-tracker/backend/events"
	"github.com/nemopss/expense-tracker/backend/logger"
	"github.com/nemopss/expense-tracker/backend/models"
)

const userKey = "user"

type Handler struct {
	storage   *db.Storage
	verifier  *auth.Verifier
	publisher events.Publisher
	now       func() time.Time
}

func NewHandler(s *db.Storage, v *auth.Verifier, p events.Publisher) *Handler {
	if p == nil {
		p = events.Noop{}
	}
	return &Handler{storage: s, verifier: v, publisher: p, now: time.Now}
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, models.DataResponse{Data: data})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{Error: message})
}

// handleError maps an error to its status code. Anything unexpected is logged
// and hidden behind a generic message.
func handleError(c *gin.Context, op string, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		fail(c, http.StatusBadRequest, verr.Message)
	case errors.Is(err, db.ErrNotFound):
		fail(c, http.StatusNotFound, "not found")
	case errors.Is(err, db.ErrInvalidSort):
		fail(c, http.StatusBadRequest, err.Error())
	default:
		logger.FromContext(c.Request.Context()).Error("Request failed",
			logger.FieldOperation, op,
			logger.FieldError, err)
		fail(c, http.StatusInternalServerError, "internal server error")
	}
}

func currentUser(c *gin.Context) *models.User {
	return c.MustGet(userKey).(*models.User)
}

// paramID reads the :id path parameter. A malformed id can never match a
// record, so it is reported as not found.
func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		fail(c, http.StatusNotFound, "not found")
		return 0, false
	}
	return id, true
}

// bindJSON decodes the request body and answers 400 on failure. A category_id
// of the wrong JSON type gets the same message as any other bad category id.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field == "category_id" {
		fail(c, http.StatusBadRequest, "Invalid category_id")
		return false
	}
	fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
	return false
}

// publish announces a change. A broker failure never fails the request.
func (h *Handler) publish(ctx context.Context, t events.Type, entity events.Entity, id, userID int64) {
	if err := h.publisher.Publish(ctx, events.New(t, entity, id, userID)); err != nil {
		logger.Component(logger.FromContext(ctx), logger.ComponentEvents).Warn("Failed to publish event",
			logger.FieldEntity, string(entity),
			logger.FieldEntityID, id,
			slog.String("type", string(t)),
			logger.FieldError, err)
	}
}

// Health godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} models.DataResponse{data=models.HealthResponse}
// @Failure 503 {object} models.ErrorResponse
// @Router /healthz [get]
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.storage.Ping(ctx); err != nil {
		logger.FromContext(c.Request.Context()).Error("Database ping failed", logger.FieldError, err)
		fail(c, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	respond(c, http.StatusOK, models.HealthResponse{Status: "ok"})
}

// GetUser godoc
// @Summary Current user profile
// @Description Returns the authenticated user together with their categories
// @Tags user
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.DataResponse{data=models.ProfileResponse}
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /user [get]
func (h *Handler) GetUser(c *gin.Context) {
	user := currentUser(c)
	categories, err := h.storage.GetCategories(c.Request.Context(), user.ID)
	if err != nil {
		handleError(c, logger.OpRead, err)
		return
	}
	respond(c, http.StatusOK, models.ProfileResponse{User: *user, Categories: categories})
}
