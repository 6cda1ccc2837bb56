package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bobasi/bursary/internal/app/auth"
	"github.com/bobasi/bursary/internal/app/models"
	"github.com/bobasi/bursary/internal/app/models/dto"
	"github.com/bobasi/bursary/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestErrorResponse_Mapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   dto.ErrorCode
	}{
		{"unauthorized", apperrors.NewCustomError(apperrors.ErrUnauthorized, "student 4 does not own application 9"), http.StatusForbidden, dto.ErrorCodeUnauthorized},
		{"authentication", apperrors.NewAuthenticationError("invalid email or password"), http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{"disabled", apperrors.NewCustomError(apperrors.ErrAccountDisabled, "account is not active"), http.StatusUnauthorized, dto.ErrorCodeAccountDisabled},
		{"expired", apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken},
		{"invalid token", apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
		{"not found", apperrors.NewNotFoundError("application not found"), http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"invalid input", apperrors.NewInvalidInputError("amount is required"), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"invalid state", apperrors.NewInvalidStateError("application is not approved"), http.StatusUnprocessableEntity, dto.ErrorCodeInvalidState},
		{"conflict", apperrors.NewConflictError("email already registered"), http.StatusConflict, dto.ErrorCodeConflict},
		{"wrapped", fmt.Errorf("outer: %w", apperrors.NewNotFoundError("user not found")), http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, detail := errorResponse(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, detail.Code)
		})
	}
}

func TestErrorResponse_GenericAccessDenied(t *testing.T) {
	_, detail := errorResponse(apperrors.NewCustomError(apperrors.ErrUnauthorized, "student 4 does not own application 9").
		WithDetails(map[string]interface{}{"applicationId": 9}))
	assert.Equal(t, "access denied", detail.Message)
	assert.Nil(t, detail.Details)
}

func TestErrorResponse_KeepsServiceMessage(t *testing.T) {
	_, detail := errorResponse(apperrors.NewInvalidStateError("application is not approved"))
	assert.Equal(t, "application is not approved", detail.Message)

	_, detail = errorResponse(errors.New("pq: relation does not exist"))
	assert.Equal(t, "Internal server error", detail.Message)
}

type stubAuthenticator struct {
	actor auth.Actor
	err   error
	token string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (auth.Actor, error) {
	s.token = token
	return s.actor, s.err
}

func newAuthRouter(authenticator Authenticator, op auth.Operation) *gin.Engine {
	m := NewAuthMiddleware(authenticator)
	r := gin.New()
	r.GET("/protected", m.JWTAuth(), m.RolesRequired(op), func(c *gin.Context) {
		actor, _ := ActorFrom(c)
		c.JSON(http.StatusOK, dto.APIResponse{Data: actor.Email})
	})
	return r
}

func serve(r *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, dto.APIResponse) {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var body dto.APIResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestJWTAuth(t *testing.T) {
	finance := auth.Actor{UserID: 3, Email: "finance@bobasi.go.ke", Role: models.RoleFinanceOfficer}

	t.Run("missing header", func(t *testing.T) {
		rec, body := serve(newAuthRouter(&stubAuthenticator{actor: finance}, auth.OpDisburse),
			httptest.NewRequest(http.MethodGet, "/protected", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		require.NotNil(t, body.Error)
		assert.Equal(t, dto.ErrorCodeAuthRequired, body.Error.Code)
	})

	t.Run("allowed role", func(t *testing.T) {
		stub := &stubAuthenticator{actor: finance}
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer abc.def.ghi")
		rec, body := serve(newAuthRouter(stub, auth.OpDisburse), req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "finance@bobasi.go.ke", body.Data)
		assert.Equal(t, "abc.def.ghi", stub.token)
	})

	t.Run("forbidden role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer abc.def.ghi")
		rec, body := serve(newAuthRouter(&stubAuthenticator{actor: finance}, auth.OpRecordReview), req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		require.NotNil(t, body.Error)
		assert.Equal(t, "access denied", body.Error.Message)
	})

	t.Run("expired token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer abc.def.ghi")
		rec, body := serve(newAuthRouter(&stubAuthenticator{err: apperrors.ErrTokenExpired}, auth.OpDisburse), req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		require.NotNil(t, body.Error)
		assert.Equal(t, dto.ErrorCodeExpiredToken, body.Error.Code)
	})
}

func TestRateLimiter_PerClient(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "other clients keep their own bucket")
}

func TestRateLimiter_Handler(t *testing.T) {
	rl := NewRateLimiter(0.5, 1)
	r := gin.New()
	r.GET("/track", rl.Handler(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec, _ := serve(r, httptest.NewRequest(http.MethodGet, "/track", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, body := serve(r, httptest.NewRequest(http.MethodGet, "/track", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	require.NotNil(t, body.Error)
	assert.Equal(t, dto.ErrorCodeRateLimited, body.Error.Code)
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(zerolog.Nop()))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec, _ := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec, _ = serve(r, req)
	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
}

func TestRegisterValidators_KenyanPhone(t *testing.T) {
	require.NoError(t, RegisterValidators())

	type form struct {
		Phone string `json:"phone" binding:"required,kephone"`
	}
	r := gin.New()
	r.POST("/p", func(c *gin.Context) {
		var f form
		if !BindJSON(c, &f) {
			return
		}
		c.Status(http.StatusNoContent)
	})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/p", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec, _ := serve(r, req)
		return rec
	}
	assert.Equal(t, http.StatusNoContent, post(`{"phone":"0712345678"}`).Code)
	assert.Equal(t, http.StatusNoContent, post(`{"phone":"+254 712 345 678"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(`{"phone":"12345"}`).Code)
}
