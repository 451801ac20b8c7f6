package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap/zaptest"
)

func withViperValues(t *testing.T, values map[string]any) {
	t.Helper()
	viper.Reset()
	for key, value := range values {
		viper.Set(key, value)
	}
	t.Cleanup(viper.Reset)
}

func TestLoadServerConfigRequiresSigningKey(t *testing.T) {
	withViperValues(t, map[string]any{
		"access_ttl":  2 * time.Minute,
		"refresh_ttl": 24 * time.Hour,
	})

	_, err := LoadServerConfig()
	if err == nil || !strings.Contains(err.Error(), configCodeMissingJWTSigningKey) {
		t.Fatalf("expected missing signing key error, got %v", err)
	}
}

func TestLoadServerConfigRejectsNonPositiveTTLs(t *testing.T) {
	withViperValues(t, map[string]any{
		"jwt_signing_key": "secret",
		"access_ttl":      time.Duration(0),
		"refresh_ttl":     24 * time.Hour,
	})
	if _, err := LoadServerConfig(); err == nil || !strings.Contains(err.Error(), configCodeInvalidAccessTTL) {
		t.Fatalf("expected invalid access_ttl error, got %v", err)
	}

	withViperValues(t, map[string]any{
		"jwt_signing_key": "secret",
		"access_ttl":      2 * time.Minute,
		"refresh_ttl":     -time.Hour,
	})
	if _, err := LoadServerConfig(); err == nil || !strings.Contains(err.Error(), configCodeInvalidRefreshTTL) {
		t.Fatalf("expected invalid refresh_ttl error, got %v", err)
	}
}

func TestLoadServerConfigCarriesIssuerAndCost(t *testing.T) {
	withViperValues(t, map[string]any{
		"jwt_signing_key": "secret",
		"access_ttl":      2 * time.Minute,
		"refresh_ttl":     24 * time.Hour,
		"bcrypt_cost":     12,
	})

	serverConfig, err := LoadServerConfig()
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if string(serverConfig.AccessJWTSigningKey) != "secret" {
		t.Fatalf("unexpected signing key")
	}
	if serverConfig.AccessJWTIssuer != accessTokenIssuer {
		t.Fatalf("expected issuer %q, got %q", accessTokenIssuer, serverConfig.AccessJWTIssuer)
	}
	if serverConfig.AccessTTL != 2*time.Minute || serverConfig.RefreshTTL != 24*time.Hour {
		t.Fatalf("unexpected TTLs: %v / %v", serverConfig.AccessTTL, serverConfig.RefreshTTL)
	}
	if serverConfig.BcryptCost != 12 {
		t.Fatalf("unexpected bcrypt cost %d", serverConfig.BcryptCost)
	}
}

func TestRunServerRequiresPreparedConfig(t *testing.T) {
	withViperValues(t, nil)

	command := &cobra.Command{}
	err := runServer(command, nil)
	if err == nil || !strings.Contains(err.Error(), configCodeUninitializedServer) {
		t.Fatalf("expected uninitialized server config error, got %v", err)
	}
}

func TestRunServerStartsAndServes(t *testing.T) {
	withViperValues(t, map[string]any{
		"jwt_signing_key": "secret",
		"access_ttl":      2 * time.Minute,
		"refresh_ttl":     24 * time.Hour,
		"bcrypt_cost":     10,
		"listen_addr":     "127.0.0.1:0",
	})

	originalServe := serveHTTP
	t.Cleanup(func() { serveHTTP = originalServe })

	var captured *http.Server
	serveHTTP = func(server *http.Server) error {
		captured = server
		return http.ErrServerClosed
	}

	command := newRootCommand()
	command.SetArgs([]string{})
	if err := command.Execute(); err != nil {
		t.Fatalf("execute error: %v", err)
	}
	if captured == nil {
		t.Fatalf("expected the HTTP server to be constructed")
	}

	// The handler is fully wired even though nothing listened.
	recorder := httptest.NewRecorder()
	captured.Handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", recorder.Code)
	}

	recorder = httptest.NewRecorder()
	captured.Handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/auth/whoami", nil))
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 from unauthenticated whoami, got %d", recorder.Code)
	}
}

func TestZapLoggerMiddlewareLetsRequestsThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(zapLoggerMiddleware(zaptest.NewLogger(t)))
	router.GET("/ping", func(contextGin *gin.Context) {
		contextGin.String(http.StatusOK, "pong")
	})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if recorder.Code != http.StatusOK || recorder.Body.String() != "pong" {
		t.Fatalf("expected pong, got %d %q", recorder.Code, recorder.Body.String())
	}
}
