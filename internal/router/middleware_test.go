package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chestno/chestno-api/internal/config"
	"github.com/chestno/chestno-api/internal/http/response"
	"github.com/chestno/chestno-api/internal/models"
	"github.com/chestno/chestno-api/internal/repository"
	"github.com/chestno/chestno-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupSessionAuth(t *testing.T) (*service.UserAuthService, config.SessionConfig) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Session{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	sessionCfg := config.SessionConfig{CookieName: "chestno_session", TTLHours: 1}
	cfg := &config.Config{
		Session: sessionCfg,
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{MinLength: 8},
		},
	}
	return service.NewUserAuthService(cfg, repository.NewUserRepository(db), repository.NewSessionRepository(db)), sessionCfg
}

func sessionTestEngine(authSvc *service.UserAuthService, sessionCfg config.SessionConfig, optional bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	mw := SessionAuthMiddleware(sessionCfg, authSvc)
	if optional {
		mw = OptionalSessionMiddleware(sessionCfg, authSvc)
	}
	engine.GET("/probe", mw, func(c *gin.Context) {
		userID, _ := c.Get(ContextUserID)
		response.Success(c, gin.H{"user_id": userID})
	})
	return engine
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body failed: %v", err)
	}
	return body
}

func TestSessionAuthRejectsMissingCookie(t *testing.T) {
	authSvc, sessionCfg := setupSessionAuth(t)
	engine := sessionTestEngine(authSvc, sessionCfg, false)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/probe", nil))

	if body := decodeEnvelope(t, rec); body.StatusCode != response.CodeUnauthorized {
		t.Fatalf("expected unauthorized envelope, got %d (%s)", body.StatusCode, body.Msg)
	}
}

func TestSessionAuthAcceptsValidCookie(t *testing.T) {
	authSvc, sessionCfg := setupSessionAuth(t)
	engine := sessionTestEngine(authSvc, sessionCfg, false)

	if _, err := authSvc.Register(service.RegisterInput{Email: "user@example.com", Password: "Password1"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	user, session, err := authSvc.Login("user@example.com", "Password1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.AddCookie(&http.Cookie{Name: sessionCfg.CookieName, Value: session.Token})
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	body := decodeEnvelope(t, rec)
	if body.StatusCode != 0 {
		t.Fatalf("expected success, got %d (%s)", body.StatusCode, body.Msg)
	}
	data, ok := body.Data.(map[string]interface{})
	if !ok || uint(data["user_id"].(float64)) != user.ID {
		t.Fatalf("unexpected payload: %v", body.Data)
	}
}

func TestSessionAuthRejectsStaleToken(t *testing.T) {
	authSvc, sessionCfg := setupSessionAuth(t)
	engine := sessionTestEngine(authSvc, sessionCfg, false)

	if _, err := authSvc.Register(service.RegisterInput{Email: "user@example.com", Password: "Password1"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	_, session, err := authSvc.Login("user@example.com", "Password1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := authSvc.Logout(session.Token); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.AddCookie(&http.Cookie{Name: sessionCfg.CookieName, Value: session.Token})
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if body := decodeEnvelope(t, rec); body.StatusCode != response.CodeUnauthorized {
		t.Fatalf("expected unauthorized envelope, got %d (%s)", body.StatusCode, body.Msg)
	}
}

func TestOptionalSessionLetsAnonymousThrough(t *testing.T) {
	authSvc, sessionCfg := setupSessionAuth(t)
	engine := sessionTestEngine(authSvc, sessionCfg, true)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/probe", nil))

	body := decodeEnvelope(t, rec)
	if body.StatusCode != 0 {
		t.Fatalf("anonymous request must pass, got %d (%s)", body.StatusCode, body.Msg)
	}
	data, ok := body.Data.(map[string]interface{})
	if !ok || data["user_id"] != nil {
		t.Fatalf("anonymous request must carry no user: %v", body.Data)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestIDMiddleware())
	engine.GET("/probe", func(c *gin.Context) {
		c.String(http.StatusOK, getRequestID(c))
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/probe", nil))
	if rec.Header().Get(requestIDHeader) == "" || rec.Body.String() == "" {
		t.Fatalf("expected a generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Body.String() != "req-123" {
		t.Fatalf("inbound request id must be honored, got %q", rec.Body.String())
	}
}
