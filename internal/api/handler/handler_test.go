package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soundofguitara/parma/internal/dto"
	"github.com/soundofguitara/parma/internal/service"
	apperrors "github.com/soundofguitara/parma/pkg/errors"
	"github.com/soundofguitara/parma/pkg/jwt"
	"github.com/soundofguitara/parma/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult   *dto.TokenResponse
	loginErr      error
	refreshResult *dto.TokenResponse
	refreshErr    error
	refreshToken  string
	logoutErr     error
	logoutCalls   int
	meResult      *dto.UserResponse
	meErr         error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Refresh(_ context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	m.refreshToken = req.RefreshToken
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, _ *jwt.Claims, _ string) error {
	m.logoutCalls++
	return m.logoutErr
}
func (m *mockAuthService) Me(_ context.Context, _ string) (*dto.UserResponse, error) {
	return m.meResult, m.meErr
}

// ── Mock UserService ──

type mockUserService struct {
	setRoleErr error
}

func (m *mockUserService) Create(_ context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	return &dto.UserResponse{ID: "user-9", Email: req.Email, Name: req.Name, Role: "user"}, nil
}
func (m *mockUserService) GetByID(_ context.Context, id string) (*dto.UserResponse, error) {
	return &dto.UserResponse{ID: id}, nil
}
func (m *mockUserService) List(_ context.Context, _ *dto.PaginationRequest) ([]dto.UserResponse, int64, error) {
	return []dto.UserResponse{{ID: "user-1"}}, 1, nil
}
func (m *mockUserService) SetRole(_ context.Context, _ string, _ *dto.UpdateRoleRequest, _ string) error {
	return m.setRoleErr
}

// ── Mock BatchService ──

type mockBatchService struct {
	result *dto.BatchResponse
	err    error
}

func (m *mockBatchService) List(_ context.Context) ([]dto.BatchResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []dto.BatchResponse{*m.result}, nil
}
func (m *mockBatchService) GetByID(_ context.Context, _ string) (*dto.BatchResponse, error) {
	return m.result, m.err
}
func (m *mockBatchService) Create(_ context.Context, _ *dto.CreateBatchRequest, _ string) (*dto.BatchResponse, error) {
	return m.result, m.err
}
func (m *mockBatchService) Update(_ context.Context, _ string, _ *dto.UpdateBatchRequest, _ string) (*dto.BatchResponse, error) {
	return m.result, m.err
}
func (m *mockBatchService) Delete(_ context.Context, _ string) error {
	return m.err
}

// ── Mock AnomalyService ──

type mockAnomalyService struct {
	stats     *dto.AnomalyStatsResponse
	statsErr  error
	file      *service.ExportFile
	exportErr error
}

func (m *mockAnomalyService) List(_ context.Context, _ *dto.AnomalyListRequest) ([]dto.AnomalyResponse, error) {
	return nil, nil
}
func (m *mockAnomalyService) GetByID(_ context.Context, _ string) (*dto.AnomalyResponse, error) {
	return nil, service.ErrAnomalyNotFound
}
func (m *mockAnomalyService) Create(_ context.Context, _ *dto.CreateAnomalyRequest, _ string) (*dto.AnomalyResponse, error) {
	return nil, apperrors.Invalid("quantity", "La quantité ne peut pas dépasser %d boîtes.", 40)
}
func (m *mockAnomalyService) Update(_ context.Context, _ string, _ *dto.UpdateAnomalyRequest, _ string) (*dto.AnomalyResponse, error) {
	return nil, nil
}
func (m *mockAnomalyService) Stats(_ context.Context, _ string) (*dto.AnomalyStatsResponse, error) {
	return m.stats, m.statsErr
}
func (m *mockAnomalyService) Export(_ context.Context, _ *dto.AnomalyMonthRequest) (*service.ExportFile, error) {
	return m.file, m.exportErr
}

// ── Mock PlanningService ──

type mockPlanningService struct {
	calendar []byte
}

func (m *mockPlanningService) List(_ context.Context) ([]dto.PlanningResponse, error) {
	return nil, nil
}
func (m *mockPlanningService) Create(_ context.Context, _ *dto.CreatePlanningRequest, _ string) (*dto.PlanningResponse, error) {
	return nil, apperrors.Invalid("priority", "La priorité doit être comprise entre 1 et 3.")
}
func (m *mockPlanningService) Update(_ context.Context, _ string, _ *dto.UpdatePlanningRequest, _ string) (*dto.PlanningResponse, error) {
	return nil, service.ErrPlanningNotFound
}
func (m *mockPlanningService) Delete(_ context.Context, _ string) error {
	return nil
}
func (m *mockPlanningService) Calendar(_ context.Context) ([]byte, error) {
	return m.calendar, nil
}

// ── Mock ReportService ──

type mockReportService struct {
	file    *service.ExportFile
	preview *service.ReportResult
	err     error
	lastReq *dto.ReportRequest
}

func (m *mockReportService) Generate(_ context.Context, req *dto.ReportRequest) (*service.ExportFile, error) {
	m.lastReq = req
	return m.file, m.err
}
func (m *mockReportService) Preview(_ context.Context, req *dto.ReportRequest) (*service.ReportResult, error) {
	m.lastReq = req
	return m.preview, m.err
}

// ── Mock DashboardService ──

type mockDashboardService struct {
	err error
}

func (m *mockDashboardService) Get(_ context.Context) (*dto.DashboardResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &dto.DashboardResponse{TotalBatches: 3, ActiveBatches: 1}, nil
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setAuth(c *gin.Context) {
	c.Set("user_id", "test-user-id")
	c.Set("role", "admin")
	c.Set("claims", &jwt.Claims{UserID: "test-user-id", Role: "admin", TokenType: "access"})
}

func withAuth(h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		setAuth(c)
		h(c)
	}
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func serve(r *gin.Engine, method, path string, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{
			AccessToken:  "test-access-token",
			RefreshToken: "test-refresh-token",
			ExpiresIn:    900,
		},
	}
	h := NewAuthHandler(mock, nil)

	r := gin.New()
	r.POST("/auth/login", h.Login)
	w := serve(r, "POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "chef@atelier.fr",
		Password: "motdepasse",
	}))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
	found := false
	for _, c := range w.Result().Cookies() {
		if c.Name == "refresh_token" {
			found = true
			if c.Value != "test-refresh-token" || !c.HttpOnly {
				t.Errorf("unexpected cookie %+v", c)
			}
		}
	}
	if !found {
		t.Error("expected refresh_token cookie to be set")
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, nil)

	r := gin.New()
	r.POST("/auth/login", h.Login)
	w := serve(r, "POST", "/auth/login", strings.NewReader("invalid json"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials}, nil)

	r := gin.New()
	r.POST("/auth/login", h.Login)
	w := serve(r, "POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "chef@atelier.fr",
		Password: "faux",
	}))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 11001 {
		t.Errorf("expected error code 11001, got %d", resp.Code)
	}
}

func TestAuthHandler_Refresh_FromCookie(t *testing.T) {
	mock := &mockAuthService{
		refreshResult: &dto.TokenResponse{AccessToken: "new-access", RefreshToken: "new-refresh", ExpiresIn: 900},
	}
	h := NewAuthHandler(mock, nil)

	r := gin.New()
	r.POST("/auth/refresh", h.Refresh)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "cookie-refresh"})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.refreshToken != "cookie-refresh" {
		t.Errorf("expected cookie token to be used, got %q", mock.refreshToken)
	}
}

func TestAuthHandler_Refresh_MissingToken(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, nil)

	r := gin.New()
	r.POST("/auth/refresh", h.Refresh)
	w := serve(r, "POST", "/auth/refresh", jsonBody(map[string]string{}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Refresh_Revoked(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{refreshErr: service.ErrTokenRevoked}, nil)

	r := gin.New()
	r.POST("/auth/refresh", h.Refresh)
	w := serve(r, "POST", "/auth/refresh", jsonBody(dto.RefreshTokenRequest{RefreshToken: "old"}))

	if w.Code != http.StatusUnauthorized || parseResponse(w).Code != 11003 {
		t.Errorf("expected 401/11003, got %d/%d", w.Code, parseResponse(w).Code)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock, nil)

	r := gin.New()
	r.POST("/auth/logout", withAuth(h.Logout))
	w := serve(r, "POST", "/auth/logout", nil)

	if w.Code != http.StatusOK || mock.logoutCalls != 1 {
		t.Errorf("expected 200 and one logout, got %d / %d", w.Code, mock.logoutCalls)
	}
}

func TestAuthHandler_Logout_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, nil)

	r := gin.New()
	r.POST("/auth/logout", h.Logout)
	w := serve(r, "POST", "/auth/logout", nil)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// UserHandler Tests
// ═══════════════════════════════════════════════════════════

func TestUserHandler_SetRole_Self(t *testing.T) {
	h := NewUserHandler(&mockUserService{setRoleErr: service.ErrUserSelfRoleChange})

	r := gin.New()
	r.PUT("/users/:id/role", withAuth(h.SetRole))
	w := serve(r, "PUT", "/users/test-user-id/role", jsonBody(dto.UpdateRoleRequest{Role: "user"}))

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestUserHandler_SetRole_InvalidRole(t *testing.T) {
	h := NewUserHandler(&mockUserService{})

	r := gin.New()
	r.PUT("/users/:id/role", withAuth(h.SetRole))
	w := serve(r, "PUT", "/users/u2/role", jsonBody(dto.UpdateRoleRequest{Role: "superuser"}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestUserHandler_ListUsers_Paginated(t *testing.T) {
	h := NewUserHandler(&mockUserService{})

	r := gin.New()
	r.GET("/users", withAuth(h.ListUsers))
	w := serve(r, "GET", "/users?page=1&page_size=10", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Data response.PageData `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data.Pagination.Total != 1 {
		t.Errorf("expected total 1, got %+v", resp.Data.Pagination)
	}
}

// ═══════════════════════════════════════════════════════════
// BatchHandler Tests
// ═══════════════════════════════════════════════════════════

func TestBatchHandler_Get(t *testing.T) {
	h := NewBatchHandler(&mockBatchService{result: &dto.BatchResponse{ID: "b-1", Code: "LOT-A", Status: "in-progress"}})

	r := gin.New()
	r.GET("/batches/:id", withAuth(h.GetBatch))
	w := serve(r, "GET", "/batches/b-1", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestBatchHandler_NotFound(t *testing.T) {
	h := NewBatchHandler(&mockBatchService{err: service.ErrBatchNotFound})

	r := gin.New()
	r.GET("/batches/:id", withAuth(h.GetBatch))
	w := serve(r, "GET", "/batches/missing", nil)

	if w.Code != http.StatusNotFound || parseResponse(w).Code != 20001 {
		t.Errorf("expected 404/20001, got %d/%d", w.Code, parseResponse(w).Code)
	}
}

func TestBatchHandler_StoreFailure(t *testing.T) {
	h := NewBatchHandler(&mockBatchService{err: apperrors.Store("list batches", errors.New("dial tcp: refused"))})

	r := gin.New()
	r.GET("/batches", withAuth(h.ListBatches))
	w := serve(r, "GET", "/batches", nil)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "refused") {
		t.Error("store error detail must not leak to the client")
	}
}

func TestBatchHandler_CreateValidation(t *testing.T) {
	h := NewBatchHandler(&mockBatchService{
		err: apperrors.Invalid("expected_completion_date", "La date de fin prévue ne peut pas précéder la date de réception."),
	})

	r := gin.New()
	r.POST("/batches", withAuth(h.CreateBatch))
	now := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	w := serve(r, "POST", "/batches", jsonBody(dto.CreateBatchRequest{
		Code:                   "LOT-A",
		MedicationName:         "Doliprane",
		TotalBoxes:             10,
		ReceivedDate:           now,
		ExpectedCompletionDate: now.AddDate(0, 0, -1),
	}))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Message != "La date de fin prévue ne peut pas précéder la date de réception." || resp.Details != "expected_completion_date" {
		t.Errorf("unexpected response %+v", resp)
	}
}

// ═══════════════════════════════════════════════════════════
// AnomalyHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAnomalyHandler_CreateOverAvailable(t *testing.T) {
	h := NewAnomalyHandler(&mockAnomalyService{})

	r := gin.New()
	r.POST("/anomalies", withAuth(h.CreateAnomaly))
	w := serve(r, "POST", "/anomalies", jsonBody(dto.CreateAnomalyRequest{BatchID: "b-1", OperatorID: "op-1", Type: "damaged", Quantity: 50}))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if msg := parseResponse(w).Message; msg != "La quantité ne peut pas dépasser 40 boîtes." {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestAnomalyHandler_Stats(t *testing.T) {
	h := NewAnomalyHandler(&mockAnomalyService{stats: &dto.AnomalyStatsResponse{TotalAnomalies: 4}})

	r := gin.New()
	r.GET("/anomalies/stats", withAuth(h.Stats))
	w := serve(r, "GET", "/anomalies/stats?month=2026-10", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAnomalyHandler_ExportFile(t *testing.T) {
	h := NewAnomalyHandler(&mockAnomalyService{file: &service.ExportFile{
		Filename:    "anomalies_2026-10.csv",
		ContentType: "text/csv; charset=windows-1252",
		Body:        []byte("a;b\r\n"),
	}})

	r := gin.New()
	r.GET("/anomalies/export", withAuth(h.Export))
	w := serve(r, "GET", "/anomalies/export?month=2026-10&format=csv", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "anomalies_2026-10.csv") {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}
	if w.Body.String() != "a;b\r\n" {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}

func TestAnomalyHandler_ExportEmptyMonth(t *testing.T) {
	h := NewAnomalyHandler(&mockAnomalyService{exportErr: service.ErrNoAnomaliesToExport})

	r := gin.New()
	r.GET("/anomalies/export", withAuth(h.Export))
	w := serve(r, "GET", "/anomalies/export?month=2026-09", nil)

	if w.Code != http.StatusNotFound || parseResponse(w).Code != 23002 {
		t.Errorf("expected 404/23002, got %d/%d", w.Code, parseResponse(w).Code)
	}
}

func TestAnomalyHandler_GetNotFound(t *testing.T) {
	h := NewAnomalyHandler(&mockAnomalyService{})

	r := gin.New()
	r.GET("/anomalies/:id", withAuth(h.GetAnomaly))
	w := serve(r, "GET", "/anomalies/x", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// PlanningHandler Tests
// ═══════════════════════════════════════════════════════════

func TestPlanningHandler_Calendar(t *testing.T) {
	h := NewPlanningHandler(&mockPlanningService{calendar: []byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n")})

	r := gin.New()
	r.GET("/planning/calendar.ics", withAuth(h.Calendar))
	w := serve(r, "GET", "/planning/calendar.ics", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("unexpected content type %q", ct)
	}
}

func TestPlanningHandler_Errors(t *testing.T) {
	h := NewPlanningHandler(&mockPlanningService{})

	r := gin.New()
	r.POST("/planning", withAuth(h.CreatePlanning))
	r.PUT("/planning/:id", withAuth(h.UpdatePlanning))

	w := serve(r, "POST", "/planning", jsonBody(map[string]interface{}{
		"batch_id":           "b-1",
		"priority":           1,
		"required_operators": 1,
		"planned_start_date": "2026-10-20T00:00:00Z",
		"planned_end_date":   "2026-10-21T00:00:00Z",
	}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("create: expected 400, got %d", w.Code)
	}

	w = serve(r, "PUT", "/planning/p-1", jsonBody(map[string]interface{}{}))
	if w.Code != http.StatusNotFound || parseResponse(w).Code != 24001 {
		t.Errorf("update: expected 404/24001, got %d/%d", w.Code, parseResponse(w).Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ReportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestReportHandler_Generate(t *testing.T) {
	mock := &mockReportService{file: &service.ExportFile{
		Filename:    "rapport_batches_2026-10-01_2026-10-19.pdf",
		ContentType: "application/pdf",
		Body:        []byte("%PDF-1.3"),
		ArchivedAs:  "2026/10/19/rapport_batches_2026-10-01_2026-10-19.pdf",
	}}
	h := NewReportHandler(mock)

	r := gin.New()
	r.POST("/reports", withAuth(h.Generate))
	w := serve(r, "POST", "/reports", jsonBody(map[string]string{
		"type":      "batches",
		"format":    "pdf",
		"date_from": "2026-10-01",
		"date_to":   "2026-10-19",
	}))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w.Header().Get("Content-Type") != "application/pdf" {
		t.Errorf("unexpected content type %q", w.Header().Get("Content-Type"))
	}
	if w.Header().Get("X-Report-Archive") == "" {
		t.Error("expected archive header")
	}
	if mock.lastReq.Type != "batches" || mock.lastReq.DateTo.Day() != 19 {
		t.Errorf("request not bound: %+v", mock.lastReq)
	}
}

func TestReportHandler_GenerateBodyDates(t *testing.T) {
	tests := []struct {
		name     string
		dateFrom string
		wantCode int
	}{
		{"calendar day", "2026-10-01", http.StatusOK},
		{"rfc3339 keeps the day", "2026-10-01T22:30:00+02:00", http.StatusOK},
		{"day first", "01/10/2026", http.StatusBadRequest},
		{"missing", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockReportService{file: &service.ExportFile{
				Filename: "rapport.json", ContentType: "application/json", Body: []byte("{}"),
			}}
			h := NewReportHandler(mock)

			r := gin.New()
			r.POST("/reports", withAuth(h.Generate))
			w := serve(r, "POST", "/reports", jsonBody(map[string]string{
				"type":      "operators",
				"format":    "json",
				"date_from": tt.dateFrom,
				"date_to":   "2026-10-19",
			}))

			if w.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}
			if tt.wantCode == http.StatusOK && mock.lastReq.DateFrom.Format("2006-01-02") != "2026-10-01" {
				t.Errorf("date_from not parsed: %v", mock.lastReq.DateFrom)
			}
		})
	}
}

func TestReportHandler_GenerateRejectsUnknownType(t *testing.T) {
	h := NewReportHandler(&mockReportService{})

	r := gin.New()
	r.POST("/reports", withAuth(h.Generate))
	w := serve(r, "POST", "/reports", jsonBody(map[string]string{
		"type":      "stock",
		"date_from": "2026-10-01",
		"date_to":   "2026-10-19",
	}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestReportHandler_PreviewQueryDates(t *testing.T) {
	mock := &mockReportService{preview: &service.ReportResult{Type: service.ReportOperators, Title: "Rapport des opérateurs"}}
	h := NewReportHandler(mock)

	r := gin.New()
	r.GET("/reports/preview", withAuth(h.Preview))
	w := serve(r, "GET", "/reports/preview?type=operators&date_from=2026-10-01&date_to=2026-10-19", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if mock.lastReq.DateFrom.Format("2006-01-02") != "2026-10-01" {
		t.Errorf("date_from not parsed: %v", mock.lastReq.DateFrom)
	}
}

func TestReportHandler_EncodeFailure(t *testing.T) {
	h := NewReportHandler(&mockReportService{err: service.ErrReportEncode})

	r := gin.New()
	r.GET("/reports/preview", withAuth(h.Preview))
	w := serve(r, "GET", "/reports/preview?type=operators&date_from=2026-10-01&date_to=2026-10-19", nil)

	if w.Code != http.StatusInternalServerError || parseResponse(w).Code != 25003 {
		t.Errorf("expected 500/25003, got %d/%d", w.Code, parseResponse(w).Code)
	}
}

// ═══════════════════════════════════════════════════════════
// DashboardHandler Tests
// ═══════════════════════════════════════════════════════════

func TestDashboardHandler(t *testing.T) {
	h := NewDashboardHandler(&mockDashboardService{})

	r := gin.New()
	r.GET("/dashboard", withAuth(h.GetDashboard))
	w := serve(r, "GET", "/dashboard", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	h = NewDashboardHandler(&mockDashboardService{err: apperrors.Store("dashboard", errors.New("timeout"))})
	r = gin.New()
	r.GET("/dashboard", withAuth(h.GetDashboard))
	if w := serve(r, "GET", "/dashboard", nil); w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}
