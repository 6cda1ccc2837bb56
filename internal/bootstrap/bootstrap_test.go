package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bobasi/bursary/internal/app/models/dto"
	"github.com/bobasi/bursary/internal/app/repositories/memory"
	"github.com/bobasi/bursary/internal/config"
	"github.com/bobasi/bursary/internal/seed"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Data  json.RawMessage  `json:"data"`
	Error *dto.ErrorDetail `json:"error"`
}

type apiHarness struct {
	t      *testing.T
	router *gin.Engine
	store  *memory.Store
}

func newHarness(t *testing.T, extraYAML string) *apiHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	t.Chdir(dir)
	body := fmt.Sprintf(`
jwt:
  secret: http-test-secret
  access_token_expiration: 1h
storage:
  path: %q
  max_upload_bytes: 1048576
%s`, filepath.Join(dir, "uploads"), extraYAML)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))

	cfg, err := config.LoadConfig(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)

	store := memory.NewStore()
	_, err = seed.CreateDefaultData(context.Background(), store.Repos(), cfg.Bursary.DefaultStaffPassword, zerolog.Nop())
	require.NoError(t, err)

	deps, err := BuildDependencies(cfg, store.Repos(), store, zerolog.Nop())
	require.NoError(t, err)

	return &apiHarness{t: t, router: SetupRouter(cfg, deps, zerolog.Nop()), store: store}
}

func (h *apiHarness) do(method, path, token string, body any) (int, envelope) {
	h.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func (h *apiHarness) login(email, password string) string {
	h.t.Helper()
	status, env := h.do(http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: email, Password: password})
	require.Equal(h.t, http.StatusOK, status, "login %s: %+v", email, env.Error)
	var token dto.TokenResponse
	require.NoError(h.t, json.Unmarshal(env.Data, &token))
	return token.AccessToken
}

func (h *apiHarness) registerStudent(name, email string) string {
	h.t.Helper()
	status, env := h.do(http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"name":         name,
		"email":        email,
		"password":     "secret123",
		"phone":        "0712345678",
		"institution":  "Kisii University",
		"course":       "BSc. Nursing",
		"levelOfStudy": "university",
	})
	require.Equal(h.t, http.StatusCreated, status, "register: %+v", env.Error)
	var token dto.TokenResponse
	require.NoError(h.t, json.Unmarshal(env.Data, &token))
	return token.AccessToken
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestAPI_SubmitApproveDisburseTrack(t *testing.T) {
	h := newHarness(t, "")
	student := h.registerStudent("Jane Moraa", "jane@example.com")
	admin := h.login("admin@bobasi.go.ke", "Admin@1234")
	finance := h.login("finance@bobasi.go.ke", "Admin@1234")

	status, env := h.do(http.MethodPost, "/api/v1/applications", student, map[string]any{
		"requestedAmount": "15000",
		"institution":     "Kisii University",
		"course":          "BSc. Nursing",
		"purpose":         "Tuition fees balance",
	})
	require.Equal(t, http.StatusCreated, status, "%+v", env.Error)
	app := decode[dto.ApplicationResponse](t, env.Data)
	assert.Regexp(t, `^BOB\d{4}\d{5}$`, app.ApplicationNumber)
	assert.Equal(t, "pending", string(app.Status))

	status, env = h.do(http.MethodPatch, fmt.Sprintf("/api/v1/applications/%d/status", app.ID), admin, map[string]any{
		"status":         "approved",
		"approvedAmount": 12000,
	})
	require.Equal(t, http.StatusOK, status, "%+v", env.Error)
	approved := decode[dto.ApplicationResponse](t, env.Data)
	require.NotNil(t, approved.ApprovedAmount)
	assert.Equal(t, "12000", approved.ApprovedAmount.String())

	status, env = h.do(http.MethodPost, "/api/v1/disbursements", finance, map[string]any{
		"applicationId": app.ID,
		"amount":        12000,
		"paymentMethod": "mpesa",
	})
	require.Equal(t, http.StatusCreated, status, "%+v", env.Error)
	result := decode[dto.DisbursementResultResponse](t, env.Data)
	assert.Regexp(t, `^BOB-DISB-\d{8}-[0-9A-F]{6}$`, result.Disbursement.ReferenceNumber)
	require.NotNil(t, result.Grant)

	status, env = h.do(http.MethodPost, "/api/v1/disbursements", finance, map[string]any{
		"applicationId": app.ID,
		"amount":        12000,
		"paymentMethod": "mpesa",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrorCodeInvalidState, env.Error.Code)

	status, env = h.do(http.MethodGet, "/api/v1/track/%20"+strings.ToLower(app.ApplicationNumber)+"%20", "", nil)
	require.Equal(t, http.StatusOK, status)
	tracked := decode[dto.TrackResponse](t, env.Data)
	assert.Equal(t, app.ApplicationNumber, tracked.ApplicationNumber)
	assert.Equal(t, "disbursed", string(tracked.Status))

	status, env = h.do(http.MethodGet, "/api/v1/notifications?unread=true", student, nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[dto.NotificationListResponse](t, env.Data)
	assert.Equal(t, int64(2), list.UnreadCount)

	status, env = h.do(http.MethodPost, "/api/v1/notifications/mark-read", student, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(2), decode[dto.MarkReadResponse](t, env.Data).Updated)

	status, env = h.do(http.MethodGet, "/api/v1/stats", admin, nil)
	require.Equal(t, http.StatusOK, status)
	stats := decode[dto.StatsResponse](t, env.Data)
	assert.Equal(t, int64(1), stats.TotalApplications)
	assert.Equal(t, int64(1), stats.DisbursementCount)
	assert.Equal(t, "12000", stats.TotalDisbursed.String())
}

func TestAPI_AuthenticationAndAuthorizationErrors(t *testing.T) {
	h := newHarness(t, "")
	student := h.registerStudent("Jane Moraa", "jane@example.com")

	status, env := h.do(http.MethodGet, "/api/v1/applications/mine", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrorCodeAuthRequired, env.Error.Code)

	status, env = h.do(http.MethodGet, "/api/v1/applications/mine", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrorCodeInvalidToken, env.Error.Code)

	status, env = h.do(http.MethodGet, "/api/v1/disbursements", student, nil)
	assert.Equal(t, http.StatusForbidden, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrorCodeUnauthorized, env.Error.Code)
	assert.Equal(t, "access denied", env.Error.Message)

	status, env = h.do(http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: "jane@example.com", Password: "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrorCodeInvalidCredentials, env.Error.Code)

	status, env = h.do(http.MethodGet, "/api/v1/auth/me", student, nil)
	require.Equal(t, http.StatusOK, status)
	profile := decode[dto.ProfileResponse](t, env.Data)
	assert.Equal(t, "jane@example.com", profile.User.Email)
	require.NotNil(t, profile.Student)
	assert.Equal(t, "Kisii University", profile.Student.Institution)
}

func TestAPI_ValidationErrors(t *testing.T) {
	h := newHarness(t, "")

	status, env := h.do(http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"name":     "Jane",
		"email":    "not-an-email",
		"password": "secret123",
		"phone":    "12345",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrorCodeValidationFailed, env.Error.Code)

	student := h.registerStudent("Jane Moraa", "jane@example.com")
	status, env = h.do(http.MethodPost, "/api/v1/applications", student, map[string]any{
		"requestedAmount": "abc",
		"institution":     "Kisii University",
		"course":          "BSc. Nursing",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "requested amount: amount must be a number", env.Error.Message)

	status, env = h.do(http.MethodGet, "/api/v1/applications/abc", student, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrorCodeInvalidRequest, env.Error.Code)
}

func TestAPI_DocumentUpload(t *testing.T) {
	h := newHarness(t, "")
	student := h.registerStudent("Jane Moraa", "jane@example.com")

	status, env := h.do(http.MethodPost, "/api/v1/applications", student, map[string]any{
		"requestedAmount": 15000,
		"institution":     "Kisii University",
		"course":          "BSc. Nursing",
	})
	require.Equal(t, http.StatusCreated, status)
	app := decode[dto.ApplicationResponse](t, env.Data)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	require.NoError(t, form.WriteField("documentType", "fee_structure"))
	part, err := form.CreateFormFile("file", "fees.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 fee structure"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/applications/%d/documents", app.ID), &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+student)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	status, env = h.do(http.MethodGet, fmt.Sprintf("/api/v1/applications/%d/documents", app.ID), student, nil)
	require.Equal(t, http.StatusOK, status)
	docs := decode[[]dto.DocumentResponse](t, env.Data)
	require.Len(t, docs, 1)
	assert.Equal(t, "fees.pdf", docs[0].DocumentName)
	assert.Equal(t, "pending", string(docs[0].Status))
}

func TestAPI_TrackIsRateLimited(t *testing.T) {
	h := newHarness(t, `
rate_limit:
  track_rps: 0.001
  track_burst: 2
`)

	for i := 0; i < 2; i++ {
		status, _ := h.do(http.MethodGet, "/api/v1/track/BOB202500999", "", nil)
		assert.Equal(t, http.StatusNotFound, status)
	}

	status, env := h.do(http.MethodGet, "/api/v1/track/BOB202500999", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrorCodeRateLimited, env.Error.Code)
}

func TestAPI_PingAndMetrics(t *testing.T) {
	h := newHarness(t, "")

	status, _ := h.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, status)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bobasi_http_requests_total")
}

func TestAPI_ChangePassword(t *testing.T) {
	h := newHarness(t, "")
	student := h.registerStudent("Jane Moraa", "jane@example.com")

	status, env := h.do(http.MethodPost, "/api/v1/auth/change-password", student, dto.ChangePasswordRequest{
		CurrentPassword: "wrong-pass", NewPassword: "newsecret", ConfirmPassword: "newsecret",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrorCodeValidationFailed, env.Error.Code)
	assert.Equal(t, "current password is incorrect", env.Error.Message)

	status, env = h.do(http.MethodPost, "/api/v1/auth/change-password", student, dto.ChangePasswordRequest{
		CurrentPassword: "secret123", NewPassword: "newsecret", ConfirmPassword: "newsecret",
	})
	require.Equal(t, http.StatusOK, status, "%+v", env.Error)

	h.login("jane@example.com", "newsecret")

	status, _ = h.do(http.MethodPost, "/api/v1/auth/change-password", "", dto.ChangePasswordRequest{})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAPI_StaffListingsAndReport(t *testing.T) {
	h := newHarness(t, "")
	student := h.registerStudent("Jane Moraa", "jane@example.com")
	admin := h.login("admin@bobasi.go.ke", "Admin@1234")
	committee := h.login("review@bobasi.go.ke", "Admin@1234")
	finance := h.login("finance@bobasi.go.ke", "Admin@1234")

	status, env := h.do(http.MethodPost, "/api/v1/applications", student, map[string]any{
		"requestedAmount": "15000",
		"purpose":         "Tuition fees balance",
	})
	require.Equal(t, http.StatusCreated, status, "%+v", env.Error)

	status, env = h.do(http.MethodGet, "/api/v1/admin/users?role=student", admin, nil)
	require.Equal(t, http.StatusOK, status, "%+v", env.Error)
	users := decode[struct {
		Items      []dto.UserResponse `json:"items"`
		Pagination dto.PaginationInfo `json:"pagination"`
	}](t, env.Data)
	require.Len(t, users.Items, 1)
	assert.Equal(t, "jane@example.com", users.Items[0].Email)
	assert.Equal(t, int64(1), users.Pagination.TotalItems)

	status, _ = h.do(http.MethodGet, "/api/v1/admin/users", committee, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = h.do(http.MethodGet, "/api/v1/students?search=moraa", committee, nil)
	require.Equal(t, http.StatusOK, status, "%+v", env.Error)
	students := decode[struct {
		Items []struct {
			ID       int64  `json:"id"`
			FullName string `json:"fullName"`
		} `json:"items"`
	}](t, env.Data)
	require.Len(t, students.Items, 1)
	assert.Equal(t, "Jane Moraa", students.Items[0].FullName)

	status, env = h.do(http.MethodGet, fmt.Sprintf("/api/v1/students/%d", students.Items[0].ID), admin, nil)
	require.Equal(t, http.StatusOK, status, "%+v", env.Error)
	detail := decode[dto.StudentDetailResponse](t, env.Data)
	require.Len(t, detail.Applications, 1)
	assert.Equal(t, "Kisii University", detail.Applications[0].Institution)

	status, _ = h.do(http.MethodGet, "/api/v1/students", finance, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = h.do(http.MethodGet, "/api/v1/reports", committee, nil)
	require.Equal(t, http.StatusOK, status, "%+v", env.Error)
	report := decode[dto.ReportResponse](t, env.Data)
	require.Len(t, report.BySubCounty, 1)
	assert.Equal(t, "Unspecified", report.BySubCounty[0].Name)
	assert.Equal(t, int64(1), report.BySubCounty[0].Applications)
	require.Len(t, report.TopInstitutions, 1)
	assert.Equal(t, "Kisii University", report.TopInstitutions[0].Name)
	assert.Equal(t, int64(1), report.ByStatus["pending"])

	status, _ = h.do(http.MethodGet, "/api/v1/reports", student, nil)
	assert.Equal(t, http.StatusForbidden, status)
}
