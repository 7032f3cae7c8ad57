package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jmrodillon/portfolio-backend/errors"
	"github.com/jmrodillon/portfolio-backend/logger"
	"github.com/jmrodillon/portfolio-backend/middleware"
	"github.com/jmrodillon/portfolio-backend/services"
	"github.com/jmrodillon/portfolio-backend/types"
)

// MockTestimonialService implements TestimonialServiceInterface for handler tests.
type MockTestimonialService struct {
	mock.Mock
}

func (m *MockTestimonialService) Submit(ctx context.Context, draft types.TestimonialDraft, clientIP string) (*services.SubmitResult, error) {
	args := m.Called(ctx, draft, clientIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SubmitResult), args.Error(1)
}

func (m *MockTestimonialService) Moderate(ctx context.Context, id, action string) error {
	args := m.Called(ctx, id, action)
	return args.Error(0)
}

func (m *MockTestimonialService) ListApproved(ctx context.Context) ([]types.ApprovedEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.ApprovedEntry), args.Error(1)
}

func (m *MockTestimonialService) ListPending(ctx context.Context) ([]types.PendingEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.PendingEntry), args.Error(1)
}

func (m *MockTestimonialService) DeleteApproved(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// compile-time check
var _ TestimonialServiceInterface = (*MockTestimonialService)(nil)

// buildTestimonialRouter wraps a handler in a Gin router with the error
// handler middleware, matching the production setup so c.Error() calls
// produce the correct HTTP status.
func buildTestimonialRouter(method, path string, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger.IsTest = true

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.Handle(method, path, handler)
	return r
}

func TestListApproved(t *testing.T) {
	svc := new(MockTestimonialService)
	h := NewTestimonialHandler(svc)
	r := buildTestimonialRouter("GET", "/api/testimonials", h.ListApproved)

	svc.On("ListApproved", mock.Anything).Return([]types.ApprovedEntry{
		{ID: "a1", Name: "Ana", Message: "Great", CreatedAt: "2025-01-01T00:00:00Z", ApprovedAt: "2025-01-02T00:00:00Z"},
	}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/testimonials", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"ok": true,
		"testimonials": [
			{"id":"a1","name":"Ana","message":"Great","createdAt":"2025-01-01T00:00:00Z","approvedAt":"2025-01-02T00:00:00Z"}
		]
	}`, w.Body.String())
	svc.AssertExpectations(t)
}

func TestListApprovedEmptyIsArray(t *testing.T) {
	svc := new(MockTestimonialService)
	h := NewTestimonialHandler(svc)
	r := buildTestimonialRouter("GET", "/api/testimonials", h.ListApproved)

	svc.On("ListApproved", mock.Anything).Return([]types.ApprovedEntry{}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/testimonials", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"testimonials":[]}`, w.Body.String())
}

func TestSubmitJSON(t *testing.T) {
	svc := new(MockTestimonialService)
	h := NewTestimonialHandler(svc)
	r := buildTestimonialRouter("POST", "/api/testimonials/submit", h.Submit)

	svc.On("Submit", mock.Anything, mock.MatchedBy(func(d types.TestimonialDraft) bool {
		return d.Name == "Ana" && d.Message == "Great work"
	}), "203.0.113.7").Return(&services.SubmitResult{ID: "new-id"}, nil)

	body := `{"name":"Ana","message":"Great work"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/testimonials/submit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Real-IP", "203.0.113.7")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"id":"new-id"}`, w.Body.String())
	svc.AssertExpectations(t)
}

func TestSubmitFormURLEncoded(t *testing.T) {
	svc := new(MockTestimonialService)
	h := NewTestimonialHandler(svc)
	r := buildTestimonialRouter("POST", "/api/testimonials/submit", h.Submit)

	svc.On("Submit", mock.Anything, mock.MatchedBy(func(d types.TestimonialDraft) bool {
		return d.Name == "Ben" && d.Message == "Nice" && d.BotField == ""
	}), "").Return(&services.SubmitResult{ID: "form-id"}, nil)

	form := url.Values{}
	form.Set("name", "Ben")
	form.Set("message", "Nice")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/testimonials/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"id":"form-id"}`, w.Body.String())
	svc.AssertExpectations(t)
}

func TestSubmitMultipart(t *testing.T) {
	svc := new(MockTestimonialService)
	h := NewTestimonialHandler(svc)
	r := buildTestimonialRouter("POST", "/api/testimonials/submit", h.Submit)

	svc.On("Submit", mock.Anything, mock.MatchedBy(func(d types.TestimonialDraft) bool {
		return d.Name == "Cara" && d.BotField == "filled"
	}), "").Return(&services.SubmitResult{Deflected: true}, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "Cara"))
	require.NoError(t, mw.WriteField("message", "Hello"))
	require.NoError(t, mw.WriteField("bot-field", "filled"))
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/testimonials/submit", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)

	// Honeypot deflection: plain success without an id.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	svc.AssertExpectations(t)
}

func TestSubmitInvalidBody(t *testing.T) {
	svc := new(MockTestimonialService)
	h := NewTestimonialHandler(svc)
	r := buildTestimonialRouter("POST", "/api/testimonials/submit", h.Submit)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/testimonials/submit", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"ok":false,"error":"Invalid request body"}`, w.Body.String())
	svc.AssertNotCalled(t, "Submit")
}

func TestSubmitValidationErrorPropagates(t *testing.T) {
	svc := new(MockTestimonialService)
	h := NewTestimonialHandler(svc)
	r := buildTestimonialRouter("POST", "/api/testimonials/submit", h.Submit)

	svc.On("Submit", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.ValidationFailed("Name is required", ""))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/testimonials/submit", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"ok":false,"error":"Name is required"}`, w.Body.String())
}

func TestSubmitRateLimitedIs400(t *testing.T) {
	svc := new(MockTestimonialService)
	h := NewTestimonialHandler(svc)
	r := buildTestimonialRouter("POST", "/api/testimonials/submit", h.Submit)

	svc.On("Submit", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.RateLimited())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/testimonials/submit", strings.NewReader(`{"name":"A","message":"B"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"ok":false,"error":"Too many submissions. Please try again later."}`, w.Body.String())
}

func TestListPending(t *testing.T) {
	svc := new(MockTestimonialService)
	h := NewTestimonialHandler(svc)
	r := buildTestimonialRouter("GET", "/api/testimonials/pending", h.ListPending)

	svc.On("ListPending", mock.Anything).Return([]types.PendingEntry{
		{ID: "p1", Name: "Ana", Email: "ana@example.com", Message: "First", CreatedAt: "2025-05-01T00:00:00Z"},
	}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/testimonials/pending", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"ok": true,
		"pending": [
			{"id":"p1","name":"Ana","email":"ana@example.com","message":"First","createdAt":"2025-05-01T00:00:00Z"}
		]
	}`, w.Body.String())
}

func TestListPendingStorageCorrupted(t *testing.T) {
	svc := new(MockTestimonialService)
	h := NewTestimonialHandler(svc)
	r := buildTestimonialRouter("GET", "/api/testimonials/pending", h.ListPending)

	svc.On("ListPending", mock.Anything).Return(nil, apperrors.StorageCorrupted("pending"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/testimonials/pending", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"ok":false,"error":"Storage corrupted (pending)"}`, w.Body.String())
}

func TestModerate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(*MockTestimonialService)
		wantStatus int
		wantBody   string
	}{
		{
			name: "approve succeeds",
			body: `{"id":"p1","action":"approve"}`,
			setupMock: func(svc *MockTestimonialService) {
				svc.On("Moderate", mock.Anything, "p1", "approve").Return(nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"ok":true}`,
		},
		{
			name:       "missing id",
			body:       `{"action":"approve"}`,
			setupMock:  func(svc *MockTestimonialService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"ok":false,"error":"Missing id"}`,
		},
		{
			name: "invalid action",
			body: `{"id":"p1","action":"publish"}`,
			setupMock: func(svc *MockTestimonialService) {
				svc.On("Moderate", mock.Anything, "p1", "publish").Return(apperrors.InvalidAction("publish"))
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"ok":false,"error":"Invalid action"}`,
		},
		{
			name: "unknown id",
			body: `{"id":"ghost","action":"approve"}`,
			setupMock: func(svc *MockTestimonialService) {
				svc.On("Moderate", mock.Anything, "ghost", "approve").Return(apperrors.NotFound("Testimonial", "ghost"))
			},
			wantStatus: http.StatusNotFound,
			wantBody:   `{"ok":false,"error":"Not found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockTestimonialService)
			h := NewTestimonialHandler(svc)
			r := buildTestimonialRouter("POST", "/api/testimonials/moderate", h.Moderate)
			tt.setupMock(svc)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("POST", "/api/testimonials/moderate", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

func TestDeleteApproved(t *testing.T) {
	svc := new(MockTestimonialService)
	h := NewTestimonialHandler(svc)
	r := buildTestimonialRouter("POST", "/api/testimonials/delete", h.DeleteApproved)

	svc.On("DeleteApproved", mock.Anything, "a1").Return(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/testimonials/delete", strings.NewReader(`{"id":"a1"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	svc.AssertExpectations(t)
}

func TestDeleteApprovedMissingID(t *testing.T) {
	svc := new(MockTestimonialService)
	h := NewTestimonialHandler(svc)
	r := buildTestimonialRouter("POST", "/api/testimonials/delete", h.DeleteApproved)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/testimonials/delete", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"ok":false,"error":"Missing id"}`, w.Body.String())
	svc.AssertNotCalled(t, "DeleteApproved")
}

func TestClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name          string
		xRealIP       string
		xForwardedFor string
		expectedIP    string
	}{
		{
			name:       "uses X-Real-IP first",
			xRealIP:    "203.0.113.7",
			expectedIP: "203.0.113.7",
		},
		{
			name:          "prefers X-Real-IP over X-Forwarded-For",
			xRealIP:       "203.0.113.7",
			xForwardedFor: "10.0.0.1, 10.0.0.2",
			expectedIP:    "203.0.113.7",
		},
		{
			name:          "uses first X-Forwarded-For entry",
			xForwardedFor: "10.0.0.1, 10.0.0.2, 10.0.0.3",
			expectedIP:    "10.0.0.1",
		},
		{
			name:       "empty when no proxy headers",
			expectedIP: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			req, _ := http.NewRequest("GET", "/test", nil)
			req.RemoteAddr = "192.168.1.1:1234"
			if tt.xRealIP != "" {
				req.Header.Set("X-Real-IP", tt.xRealIP)
			}
			if tt.xForwardedFor != "" {
				req.Header.Set("X-Forwarded-For", tt.xForwardedFor)
			}
			c.Request = req

			assert.Equal(t, tt.expectedIP, clientIP(c))
		})
	}
}
