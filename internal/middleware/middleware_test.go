package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	authz "github.com/yigit/learnhub/internal/app/auth"
	"github.com/yigit/learnhub/internal/app/models"
	"github.com/yigit/learnhub/internal/app/models/dto"
	"github.com/yigit/learnhub/internal/pkg/apperrors"
	"github.com/yigit/learnhub/internal/pkg/auth"
	"github.com/yigit/learnhub/internal/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memoryDenylist struct {
	mu      sync.Mutex
	revoked map[string]bool
	err     error
}

func (d *memoryDenylist) Revoke(_ context.Context, _ int64, tokenID string, _ time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.revoked == nil {
		d.revoked = map[string]bool{}
	}
	d.revoked[tokenID] = true
	return nil
}

func (d *memoryDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.revoked[tokenID], d.err
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestErrorResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		status  int
		message string
		errors  []string
	}{
		{"validation", apperrors.NewValidationError("The name field is required."), 422, "validation error", []string{"The name field is required."}},
		{"wrapped validation", fmt.Errorf("register: %w", apperrors.NewValidationError("x")), 422, "validation error", []string{"x"}},
		{"credentials", apperrors.ErrInvalidCredentials, 401, "invalid credentials", []string{}},
		{"missing token", apperrors.ErrTokenNotFound, 401, "token not found", []string{"token not found"}},
		{"invalid token", fmt.Errorf("parse: %w", apperrors.ErrTokenInvalid), 401, "token is invalid", []string{"token is invalid"}},
		{"revoked token", apperrors.ErrTokenRevoked, 401, "token is invalid", []string{"token is invalid"}},
		{"expired token", apperrors.ErrTokenExpired, 401, "token has expired", []string{"token has expired"}},
		{"already enrolled", apperrors.ErrAlreadyEnrolled, 401, "user already enrolled", []string{}},
		{"not enrolled", apperrors.ErrNotEnrolled, 401, "user not enrolled", []string{}},
		{"forbidden", apperrors.ErrPermissionDenied, 403, "this action is unauthorized", []string{}},
		{"course not found", apperrors.NewCourseNotFoundError("go-101"), 404, "course not found", []string{"course go-101 not found"}},
		{"unknown", errors.New("connection reset"), 500, "internal server error", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			status, body := errorResponse(tt.err)
			if status != tt.status || body.Message != tt.message || !slices.Equal(body.Errors, tt.errors) {
				t.Errorf("errorResponse() = %d %+v, want %d %q %q", status, body, tt.status, tt.message, tt.errors)
			}
		})
	}
}

func newGatedRouter(t *testing.T, jwtService *auth.JWTService, denylist auth.Denylist) *gin.Engine {
	t.Helper()

	m := NewAuthMiddleware(jwtService, denylist, authz.NewPolicy())
	router := gin.New()
	handler := func(c *gin.Context) {
		identity, _ := auth.IdentityFromContext(c.Request.Context())
		c.JSON(http.StatusOK, dto.NewSuccessResponse("ok", gin.H{"user_id": identity.UserID}))
	}
	router.GET("/courses", append(m.Gate(authz.RouteCourseList), handler)...)
	router.POST("/courses", append(m.Gate(authz.RouteCourseStore), handler)...)
	router.POST("/login", append(m.Gate(authz.RouteLogin), func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewSuccessResponse("open", nil))
	})...)
	return router
}

func TestAuthGate(t *testing.T) {
	t.Parallel()

	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "secret", AccessTokenExp: time.Hour, TokenIssuer: "learnhub.test"})
	denylist := &memoryDenylist{}
	router := newGatedRouter(t, jwtService, denylist)

	studentToken, _ := jwtService.GenerateAccessToken(&models.User{ID: 3, Email: "s@x.com", RoleType: models.RoleStudent})
	adminToken, _ := jwtService.GenerateAccessToken(&models.User{ID: 1, Email: "a@x.com", RoleType: models.RoleAdmin})
	revokedToken, _ := jwtService.GenerateAccessToken(&models.User{ID: 3, Email: "s@x.com", RoleType: models.RoleStudent})
	_ = denylist.Revoke(t.Context(), 3, revokedToken.TokenID, revokedToken.ExpiresAt)

	expiredService := auth.NewJWTService(auth.JWTConfig{SecretKey: "secret", AccessTokenExp: -time.Minute, TokenIssuer: "learnhub.test"})
	expiredToken, _ := expiredService.GenerateAccessToken(&models.User{ID: 3, Email: "s@x.com", RoleType: models.RoleStudent})

	tests := []struct {
		name    string
		method  string
		path    string
		header  string
		status  int
		message string
	}{
		{"exempt route", http.MethodPost, "/login", "", 200, "open"},
		{"missing token", http.MethodGet, "/courses", "", 401, "token not found"},
		{"wrong scheme", http.MethodGet, "/courses", "Basic abc", 401, "token not found"},
		{"garbage token", http.MethodGet, "/courses", "Bearer abc.def.ghi", 401, "token is invalid"},
		{"expired token", http.MethodGet, "/courses", "Bearer " + expiredToken.AccessToken, 401, "token has expired"},
		{"revoked token", http.MethodGet, "/courses", "Bearer " + revokedToken.AccessToken, 401, "token is invalid"},
		{"student reads", http.MethodGet, "/courses", "Bearer " + studentToken.AccessToken, 200, "ok"},
		{"student writes", http.MethodPost, "/courses", "Bearer " + studentToken.AccessToken, 403, "this action is unauthorized"},
		{"admin writes", http.MethodPost, "/courses", "Bearer " + adminToken.AccessToken, 200, "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			var body struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Message != tt.message {
				t.Errorf("message = %q, want %q (%v)", body.Message, tt.message, err)
			}
		})
	}
}

func TestAuthGateDenylistFailure(t *testing.T) {
	t.Parallel()

	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "secret", AccessTokenExp: time.Hour, TokenIssuer: "learnhub.test"})
	router := newGatedRouter(t, jwtService, &memoryDenylist{err: errors.New("store down")})
	token, _ := jwtService.GenerateAccessToken(&models.User{ID: 3, Email: "s@x.com", RoleType: models.RoleStudent})

	req := httptest.NewRequest(http.MethodGet, "/courses", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError || strings.Contains(rec.Body.String(), "store down") {
		t.Errorf("got %d %s", rec.Code, rec.Body.String())
	}
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	rules := validation.RuleSet{Name: "test", Fields: []validation.Field{
		{Name: "title", Rules: []validation.Rule{validation.Required(), validation.String()}},
	}}
	router := gin.New()
	router.POST("/", ValidateRequest(rules), func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewSuccessResponse("ok", ValidatedPayload(c)))
	})

	for name, body := range map[string]string{
		"empty body": "",
		"array body": `["title"]`,
		"bad json":   `{"title":`,
		"blank":      `{"title":"   "}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d", rec.Code)
			}
			got := decodeError(t, rec)
			if got.Message != "validation error" || !slices.Equal(got.Errors, []string{"The title field is required."}) {
				t.Errorf("body = %+v", got)
			}
		})
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"  Go  ","extra":1}`)))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"data":{"title":"Go"}`) {
		t.Errorf("got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRequestIDRecoveryAndNoRoute(t *testing.T) {
	t.Parallel()

	router := gin.New()
	router.Use(RequestID(), Recovery(zerolog.Nop()), SecurityHeaders(), RequestLogger(zerolog.Nop()), Metrics())
	router.GET("/panic", func(*gin.Context) { panic("boom") })
	router.NoRoute(NoRoute())

	t.Run("request id is echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
			t.Errorf("request id = %q", got)
		}
		if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
			t.Error("missing security headers")
		}
		body := decodeError(t, rec)
		if rec.Code != http.StatusNotFound || body.Message != "route not found" ||
			!slices.Equal(body.Errors, []string{"route GET /nowhere not found"}) {
			t.Errorf("got %d %+v", rec.Code, body)
		}
	})

	t.Run("request id is generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
		if rec.Header().Get(RequestIDHeader) == "" {
			t.Error("no request id generated")
		}
	})

	t.Run("panic becomes 500 envelope", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
		body := decodeError(t, rec)
		if rec.Code != http.StatusInternalServerError || body.Message != "internal server error" || len(body.Errors) != 0 {
			t.Errorf("got %d %+v", rec.Code, body)
		}
	})
}
