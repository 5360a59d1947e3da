package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mongo-user-api/internal/usecase/user"
	apperrors "mongo-user-api/pkg/errors"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc    user.Usecase
	store Pinger
	log   *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, store Pinger, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:    uc,
		store: store,
		log:   log,
	}
}

// CreateUserRequest represents the HTTP request body for creating a user.
// Age is a pointer so a missing field is distinguishable from zero. Any
// client-supplied id field is ignored.
type CreateUserRequest struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Age   *int    `json:"age"`
	City  *string `json:"city"`
}

// UpdateUserRequest represents the HTTP request body for a partial update.
// Decoding tracks which fields the payload actually supplied: a field that
// is absent stays untouched, while "city": null clears the stored city.
type UpdateUserRequest struct {
	Name    *string
	Email   *string
	Age     *int
	City    *string
	CitySet bool
}

// UnmarshalJSON records field presence instead of relying on zero values.
// Null values for non-nullable fields are treated as not supplied; city is
// the one nullable field, so its presence is tracked separately.
func (r *UpdateUserRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if v, ok := raw["name"]; ok {
		if err := json.Unmarshal(v, &r.Name); err != nil {
			return err
		}
	}
	if v, ok := raw["email"]; ok {
		if err := json.Unmarshal(v, &r.Email); err != nil {
			return err
		}
	}
	if v, ok := raw["age"]; ok {
		if err := json.Unmarshal(v, &r.Age); err != nil {
			return err
		}
	}
	if v, ok := raw["city"]; ok {
		r.CitySet = true
		if err := json.Unmarshal(v, &r.City); err != nil {
			return err
		}
	}

	return nil
}

// UserResponse represents the HTTP response for user data. City serializes
// as null when absent.
type UserResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Age   int     `json:"age"`
	City  *string `json:"city"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Fields  []apperrors.FieldError `json:"fields,omitempty"`
}

// Root handles GET /
func (h *UserHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to Mongo User REST API",
	})
}

// Health handles GET /health. It pings the store and reports 503 when the
// store is unreachable.
func (h *UserHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log.Error("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
			"error":    "database ping failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
	})
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid create user request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_body",
			Message: "request body must be valid JSON",
		})
		return
	}

	resp, err := h.uc.CreateUser(c.Request.Context(), user.CreateUserRequest{
		Name:  req.Name,
		Email: req.Email,
		Age:   req.Age,
		City:  req.City,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(resp))
}

// GetUser handles GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	resp, err := h.uc.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(resp))
}

// ListUsers handles GET /users with skip/limit pagination. Unparseable
// offsets fall back to the defaults.
func (h *UserHandler) ListUsers(c *gin.Context) {
	skip, err := strconv.ParseInt(c.DefaultQuery("skip", "0"), 10, 64)
	if err != nil || skip < 0 {
		skip = 0
	}

	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "100"), 10, 64)
	if err != nil || limit < 0 {
		limit = 100
	}

	resp, err := h.uc.ListUsers(c.Request.Context(), user.ListUsersRequest{
		Skip:  skip,
		Limit: limit,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	users := make([]UserResponse, len(resp))
	for i := range resp {
		users[i] = *toUserResponse(&resp[i])
	}

	c.JSON(http.StatusOK, users)
}

// UpdateUser handles PUT /users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid update user request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_body",
			Message: "request body must be valid JSON",
		})
		return
	}

	resp, err := h.uc.UpdateUser(c.Request.Context(), c.Param("id"), user.UpdateUserRequest{
		Name:    req.Name,
		Email:   req.Email,
		Age:     req.Age,
		City:    req.City,
		CitySet: req.CitySet,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(resp))
}

// DeleteUser handles DELETE /users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if _, err := h.uc.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted successfully",
	})
}

// CountUsers handles GET /users/count
func (h *UserHandler) CountUsers(c *gin.Context) {
	resp, err := h.uc.CountUsers(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": resp.Count,
	})
}

// handleError renders a classified usecase error. Unclassified errors never
// leak internals: they become a generic 500.
func (h *UserHandler) handleError(c *gin.Context, err error) {
	var httpErr apperrors.HTTPStatuser
	if errors.As(err, &httpErr) {
		resp := ErrorResponse{
			Error:   httpErr.Code(),
			Message: httpErr.Error(),
		}
		if httpErr.HTTPStatus() >= http.StatusInternalServerError {
			h.log.Error("request failed", zap.Error(err))
			resp.Message = "an internal error occurred"
		}

		var validation *apperrors.ValidationError
		if errors.As(err, &validation) {
			resp.Fields = validation.Fields
		}

		c.JSON(httpErr.HTTPStatus(), resp)
		return
	}

	h.log.Error("unclassified error reached the handler", zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "an internal error occurred",
	})
}

func toUserResponse(u *user.UserResponse) *UserResponse {
	return &UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Age:   u.Age,
		City:  u.City,
	}
}
