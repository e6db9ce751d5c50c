package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func TestZapLoggerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	logger, err := zap.NewProduction()
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	router := gin.New()
	router.Use(zapLoggerMiddleware(logger))
	router.GET("/ping", func(contextGin *gin.Context) {
		contextGin.Status(http.StatusNoContent)
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", recorder.Code)
	}
}

func TestRunServerMissingConfig(t *testing.T) {
	gin.SetMode(gin.TestMode)

	viper.Reset()
	defer viper.Reset()

	err := runServer(&cobra.Command{}, nil)
	if err == nil {
		t.Fatalf("expected configuration error")
	}

	expectedMessage := "config.uninitialized_server_config: server configuration not prepared; PreRunE must execute before RunE"
	if err.Error() != expectedMessage {
		t.Fatalf("expected error %q, got %q", expectedMessage, err.Error())
	}
}

func TestLoadServerConfigRequiresSigningKey(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("token_issuer", "hrms-mock")
	viper.Set("access_ttl", time.Minute)
	viper.Set("refresh_ttl", time.Hour)

	if _, err := LoadServerConfig(); err == nil {
		t.Fatalf("expected error when jwt_signing_key is empty")
	}
}

func TestLoadServerConfigRejectsNonPositiveTTLs(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("jwt_signing_key", "secret")
	viper.Set("token_issuer", "hrms-mock")
	viper.Set("access_ttl", time.Duration(0))
	viper.Set("refresh_ttl", time.Hour)

	if _, err := LoadServerConfig(); err == nil {
		t.Fatalf("expected error for zero access_ttl")
	}

	viper.Set("access_ttl", time.Minute)
	viper.Set("refresh_ttl", -time.Hour)
	if _, err := LoadServerConfig(); err == nil {
		t.Fatalf("expected error for negative refresh_ttl")
	}
}

func TestLoadServerConfigBuildsIssuerConfig(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("jwt_signing_key", "secret")
	viper.Set("token_issuer", "hrms-mock")
	viper.Set("access_ttl", 15*time.Minute)
	viper.Set("refresh_ttl", 24*time.Hour)

	serverConfig, err := LoadServerConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(serverConfig.SigningKey) != "secret" || serverConfig.TokenIssuer != "hrms-mock" {
		t.Fatalf("unexpected config: %#v", serverConfig)
	}
	if serverConfig.AccessTTL != 15*time.Minute || serverConfig.RefreshTTL != 24*time.Hour {
		t.Fatalf("unexpected TTLs: %#v", serverConfig)
	}
	if validateErr := serverConfig.Validate(); validateErr != nil {
		t.Fatalf("expected loaded config to validate: %v", validateErr)
	}
}
