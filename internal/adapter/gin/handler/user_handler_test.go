package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"mongo-user-api/internal/usecase/user"
	apperrors "mongo-user-api/pkg/errors"
)

// MockUsecase is a mock implementation of the user.Usecase interface.
type MockUsecase struct {
	mock.Mock
}

func (m *MockUsecase) CreateUser(ctx context.Context, in user.CreateUserRequest) (*user.UserResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.UserResponse), args.Error(1)
}

func (m *MockUsecase) GetUser(ctx context.Context, id string) (*user.UserResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.UserResponse), args.Error(1)
}

func (m *MockUsecase) ListUsers(ctx context.Context, in user.ListUsersRequest) ([]user.UserResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]user.UserResponse), args.Error(1)
}

func (m *MockUsecase) UpdateUser(ctx context.Context, id string, in user.UpdateUserRequest) (*user.UserResponse, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.UserResponse), args.Error(1)
}

func (m *MockUsecase) DeleteUser(ctx context.Context, id string) (*user.DeleteUserResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.DeleteUserResponse), args.Error(1)
}

func (m *MockUsecase) CountUsers(ctx context.Context) (*user.CountUsersResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.CountUsersResponse), args.Error(1)
}

// MockPinger is a mock implementation of the Pinger interface.
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func setupTestRouter(t *testing.T) (*gin.Engine, *MockUsecase, *MockPinger) {
	gin.SetMode(gin.TestMode)

	mockUC := new(MockUsecase)
	mockPinger := new(MockPinger)
	h := NewUserHandler(mockUC, mockPinger, zaptest.NewLogger(t))

	r := gin.New()
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	users := r.Group("/users")
	{
		users.POST("", h.CreateUser)
		users.GET("", h.ListUsers)
		users.GET("/count", h.CountUsers)
		users.GET("/:id", h.GetUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
	}

	return r, mockUC, mockPinger
}

func performRequest(r *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const testID = "507f1f77bcf86cd799439011"

func sampleResponse() *user.UserResponse {
	return &user.UserResponse{
		ID:    testID,
		Name:  "John Doe",
		Email: "john@example.com",
		Age:   30,
	}
}

// ==================== ROOT / HEALTH TESTS ====================

func TestRoot(t *testing.T) {
	r, _, _ := setupTestRouter(t)

	w := performRequest(r, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Welcome")
}

func TestHealth_Healthy(t *testing.T) {
	r, _, mockPinger := setupTestRouter(t)

	mockPinger.On("Ping", mock.Anything).Return(nil)

	w := performRequest(r, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "connected", body["database"])
}

func TestHealth_Unhealthy(t *testing.T) {
	r, _, mockPinger := setupTestRouter(t)

	mockPinger.On("Ping", mock.Anything).Return(errors.New("connection refused"))

	w := performRequest(r, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body["status"])
	// the raw driver error stays server-side
	assert.NotContains(t, w.Body.String(), "connection refused")
}

// ==================== CREATE USER TESTS ====================

func TestCreateUser_Created(t *testing.T) {
	r, mockUC, _ := setupTestRouter(t)

	mockUC.On("CreateUser", mock.Anything, mock.MatchedBy(func(in user.CreateUserRequest) bool {
		return in.Name == "John Doe" && in.Email == "john@example.com" && in.Age != nil && *in.Age == 30
	})).Return(sampleResponse(), nil)

	body := []byte(`{"name": "John Doe", "email": "john@example.com", "age": 30}`)
	w := performRequest(r, http.MethodPost, "/users", body)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, testID, resp.ID)
	assert.Equal(t, "John Doe", resp.Name)

	// absent city renders as an explicit null
	assert.Contains(t, w.Body.String(), `"city":null`)

	mockUC.AssertExpectations(t)
}

func TestCreateUser_MalformedBody(t *testing.T) {
	r, mockUC, _ := setupTestRouter(t)

	w := performRequest(r, http.MethodPost, "/users", []byte(`{"name": `))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_body")

	mockUC.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestCreateUser_ValidationError(t *testing.T) {
	r, mockUC, _ := setupTestRouter(t)

	mockUC.On("CreateUser", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewValidationError(
			apperrors.FieldError{Field: "name", Reason: "name is required"},
			apperrors.FieldError{Field: "email", Reason: "email must be a valid email address"},
		))

	body := []byte(`{"name": "", "email": "bad", "age": 30}`)
	w := performRequest(r, http.MethodPost, "/users", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "validation_error", resp.Error)
	assert.Len(t, resp.Fields, 2)
}

func TestCreateUser_Conflict(t *testing.T) {
	r, mockUC, _ := setupTestRouter(t)

	mockUC.On("CreateUser", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewConflictError("user", "email already exists"))

	body := []byte(`{"name": "John Doe", "email": "john@example.com", "age": 30}`)
	w := performRequest(r, http.MethodPost, "/users", body)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "conflict")
}

func TestCreateUser_InternalErrorIsGeneric(t *testing.T) {
	r, mockUC, _ := setupTestRouter(t)

	mockUC.On("CreateUser", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewInternalError("insert failed", errors.New("socket closed at 10.0.0.5")))

	body := []byte(`{"name": "John Doe", "email": "john@example.com", "age": 30}`)
	w := performRequest(r, http.MethodPost, "/users", body)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "an internal error occurred")
	assert.NotContains(t, w.Body.String(), "socket closed")
}

// ==================== GET USER TESTS ====================

func TestGetUser_OK(t *testing.T) {
	r, mockUC, _ := setupTestRouter(t)

	mockUC.On("GetUser", mock.Anything, testID).Return(sampleResponse(), nil)

	w := performRequest(r, http.MethodGet, "/users/"+testID, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, testID, resp.ID)

	mockUC.AssertExpectations(t)
}

func TestGetUser_InvalidID(t *testing.T) {
	r, mockUC, _ := setupTestRouter(t)

	mockUC.On("GetUser", mock.Anything, "abc").
		Return(nil, apperrors.NewInvalidIDError("abc"))

	w := performRequest(r, http.MethodGet, "/users/abc", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_id")
}

func TestGetUser_NotFound(t *testing.T) {
	r, mockUC, _ := setupTestRouter(t)

	mockUC.On("GetUser", mock.Anything, testID).
		Return(nil, apperrors.NewNotFoundError("user", "user not found"))

	w := performRequest(r, http.MethodGet, "/users/"+testID, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not_found")
}

// ==================== LIST USERS TESTS ====================

func TestListUsers_DefaultPagination(t *testing.T) {
	r, mockUC, _ := setupTestRouter(t)

	mockUC.On("ListUsers", mock.Anything, user.ListUsersRequest{Skip: 0, Limit: 100}).
		Return([]user.UserResponse{*sampleResponse()}, nil)

	w := performRequest(r, http.MethodGet, "/users", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, testID, resp[0].ID)

	mockUC.AssertExpectations(t)
}

func TestListUsers_QueryParams(t *testing.T) {
	r, mockUC, _ := setupTestRouter(t)

	mockUC.On("ListUsers", mock.Anything, user.ListUsersRequest{Skip: 10, Limit: 5}).
		Return([]user.UserResponse{}, nil)

	w := performRequest(r, http.MethodGet, "/users?skip=10&limit=5", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())

	mockUC.AssertExpectations(t)
}

func TestListUsers_UnparseableParamsFallBack(t *testing.T) {
	r, mockUC, _ := setupTestRouter(t)

	mockUC.On("ListUsers", mock.Anything, user.ListUsersRequest{Skip: 0, Limit: 100}).
		Return([]user.UserResponse{}, nil)

	w := performRequest(r, http.MethodGet, "/users?skip=abc&limit=-3", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	mockUC.AssertExpectations(t)
}

// ==================== UPDATE USER TESTS ====================

func TestUpdateUser_OK(t *testing.T) {
	r, mockUC, _ := setupTestRouter(t)

	updated := sampleResponse()
	updated.Name = "John Updated"

	mockUC.On("UpdateUser", mock.Anything, testID, mock.MatchedBy(func(in user.UpdateUserRequest) bool {
		return in.Name != nil && *in.Name == "John Updated" && in.Email == nil && !in.CitySet
	})).Return(updated, nil)

	body := []byte(`{"name": "John Updated"}`)
	w := performRequest(r, http.MethodPut, "/users/"+testID, body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "John Updated")

	mockUC.AssertExpectations(t)
}

func TestUpdateUser_NullCityClears(t *testing.T) {
	r, mockUC, _ := setupTestRouter(t)

	mockUC.On("UpdateUser", mock.Anything, testID, mock.MatchedBy(func(in user.UpdateUserRequest) bool {
		return in.CitySet && in.City == nil && in.Name == nil
	})).Return(sampleResponse(), nil)

	body := []byte(`{"city": null}`)
	w := performRequest(r, http.MethodPut, "/users/"+testID, body)

	assert.Equal(t, http.StatusOK, w.Code)

	mockUC.AssertExpectations(t)
}

func TestUpdateUser_EmptyPayload(t *testing.T) {
	r, mockUC, _ := setupTestRouter(t)

	mockUC.On("UpdateUser", mock.Anything, testID, mock.MatchedBy(func(in user.UpdateUserRequest) bool {
		return in.Name == nil && in.Email == nil && in.Age == nil && !in.CitySet
	})).Return(nil, apperrors.NewEmptyUpdateError())

	w := performRequest(r, http.MethodPut, "/users/"+testID, []byte(`{}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no fields to update")

	mockUC.AssertExpectations(t)
}

func TestUpdateUser_NotFound(t *testing.T) {
	r, mockUC, _ := setupTestRouter(t)

	mockUC.On("UpdateUser", mock.Anything, testID, mock.Anything).
		Return(nil, apperrors.NewNotFoundError("user", "user not found"))

	body := []byte(`{"name": "John Updated"}`)
	w := performRequest(r, http.MethodPut, "/users/"+testID, body)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ==================== DELETE USER TESTS ====================

func TestDeleteUser_OK(t *testing.T) {
	r, mockUC, _ := setupTestRouter(t)

	mockUC.On("DeleteUser", mock.Anything, testID).
		Return(&user.DeleteUserResponse{ID: testID}, nil)

	w := performRequest(r, http.MethodDelete, "/users/"+testID, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "User deleted successfully")

	mockUC.AssertExpectations(t)
}

func TestDeleteUser_NotFound(t *testing.T) {
	r, mockUC, _ := setupTestRouter(t)

	mockUC.On("DeleteUser", mock.Anything, testID).
		Return(nil, apperrors.NewNotFoundError("user", "user not found"))

	w := performRequest(r, http.MethodDelete, "/users/"+testID, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ==================== COUNT USERS TESTS ====================

func TestCountUsers_OK(t *testing.T) {
	r, mockUC, _ := setupTestRouter(t)

	mockUC.On("CountUsers", mock.Anything).
		Return(&user.CountUsersResponse{Count: 7}, nil)

	w := performRequest(r, http.MethodGet, "/users/count", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count": 7}`, w.Body.String())

	mockUC.AssertExpectations(t)
}

// ==================== UPDATE REQUEST DECODING TESTS ====================

func TestUpdateUserRequest_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		check   func(t *testing.T, r UpdateUserRequest)
	}{
		{
			name:    "all fields",
			payload: `{"name": "Jane", "email": "jane@example.com", "age": 25, "city": "Bandung"}`,
			check: func(t *testing.T, r UpdateUserRequest) {
				require.NotNil(t, r.Name)
				assert.Equal(t, "Jane", *r.Name)
				require.NotNil(t, r.Age)
				assert.Equal(t, 25, *r.Age)
				assert.True(t, r.CitySet)
				require.NotNil(t, r.City)
				assert.Equal(t, "Bandung", *r.City)
			},
		},
		{
			name:    "city absent",
			payload: `{"name": "Jane"}`,
			check: func(t *testing.T, r UpdateUserRequest) {
				assert.False(t, r.CitySet)
				assert.Nil(t, r.City)
			},
		},
		{
			name:    "city null",
			payload: `{"city": null}`,
			check: func(t *testing.T, r UpdateUserRequest) {
				assert.True(t, r.CitySet)
				assert.Nil(t, r.City)
				assert.Nil(t, r.Name)
			},
		},
		{
			name:    "null name treated as absent",
			payload: `{"name": null, "age": 40}`,
			check: func(t *testing.T, r UpdateUserRequest) {
				assert.Nil(t, r.Name)
				require.NotNil(t, r.Age)
				assert.Equal(t, 40, *r.Age)
			},
		},
		{
			name:    "unknown fields ignored",
			payload: `{"id": "ignored", "name": "Jane"}`,
			check: func(t *testing.T, r UpdateUserRequest) {
				require.NotNil(t, r.Name)
				assert.Equal(t, "Jane", *r.Name)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r UpdateUserRequest
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &r))
			tt.check(t, r)
		})
	}
}

func TestUpdateUserRequest_UnmarshalJSON_WrongType(t *testing.T) {
	var r UpdateUserRequest
	err := json.Unmarshal([]byte(`{"age": "thirty"}`), &r)
	assert.Error(t, err)
}
