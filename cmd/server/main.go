package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tyemirov/cauth/internal/authkit"
	"github.com/tyemirov/cauth/internal/authkitpg"
	"github.com/tyemirov/cauth/internal/web"
	"go.uber.org/zap"
)

var serveHTTP = func(server *http.Server) error {
	return server.ListenAndServe()
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "cauth",
		Short:   "Auth service with password credentials, JWT access tokens, and rotating refresh tokens",
		PreRunE: prepareServerConfig,
		RunE:    runServer,
	}

	rootCmd.Flags().String("listen_addr", ":8080", "HTTP listen address")
	rootCmd.Flags().String("jwt_signing_key", "", "HS256 signing secret for access JWT")
	rootCmd.Flags().Duration("access_ttl", 2*time.Minute, "Access token TTL")
	rootCmd.Flags().Duration("refresh_ttl", 24*time.Hour, "Refresh token TTL")
	rootCmd.Flags().Int("bcrypt_cost", authkit.MinBcryptCost, "Password hashing cost factor")
	rootCmd.Flags().String("database_url", "", "Database URL for users and refresh tokens (postgres:// or sqlite://; leave empty for in-memory stores)")
	rootCmd.Flags().Bool("pgx_native", false, "Back the stores with pgx directly instead of GORM (requires a postgres:// database_url)")
	rootCmd.Flags().Bool("enable_cors", false, "Enable CORS for cross-origin clients")
	rootCmd.Flags().StringSlice("cors_allowed_origins", []string{}, "Allowed origins when CORS is enabled (required if enable_cors is true)")

	_ = viper.BindPFlag("listen_addr", rootCmd.Flags().Lookup("listen_addr"))
	_ = viper.BindPFlag("jwt_signing_key", rootCmd.Flags().Lookup("jwt_signing_key"))
	_ = viper.BindPFlag("access_ttl", rootCmd.Flags().Lookup("access_ttl"))
	_ = viper.BindPFlag("refresh_ttl", rootCmd.Flags().Lookup("refresh_ttl"))
	_ = viper.BindPFlag("bcrypt_cost", rootCmd.Flags().Lookup("bcrypt_cost"))
	_ = viper.BindPFlag("database_url", rootCmd.Flags().Lookup("database_url"))
	_ = viper.BindPFlag("pgx_native", rootCmd.Flags().Lookup("pgx_native"))
	_ = viper.BindPFlag("enable_cors", rootCmd.Flags().Lookup("enable_cors"))
	_ = viper.BindPFlag("cors_allowed_origins", rootCmd.Flags().Lookup("cors_allowed_origins"))

	viper.SetEnvPrefix("APP")
	viper.AutomaticEnv()

	return rootCmd
}

const (
	accessTokenIssuer = "cauth"

	configCodeMissingJWTSigningKey = "config.missing_jwt_signing_key"
	configCodeInvalidAccessTTL     = "config.invalid_access_ttl"
	configCodeInvalidRefreshTTL    = "config.invalid_refresh_ttl"
	configCodeUninitializedServer  = "config.uninitialized_server_config"
)

type contextKey string

const serverConfigContextKey contextKey = "serverConfig"

func prepareServerConfig(command *cobra.Command, arguments []string) error {
	serverConfig, loadErr := LoadServerConfig()
	if loadErr != nil {
		return loadErr
	}
	existingContext := command.Context()
	if existingContext == nil {
		existingContext = context.Background()
	}
	command.SetContext(context.WithValue(existingContext, serverConfigContextKey, serverConfig))
	return nil
}

func configError(code, message string) error {
	return fmt.Errorf("%s: %s", code, message)
}

// LoadServerConfig reads and validates the viper-bound configuration.
func LoadServerConfig() (authkit.ServerConfig, error) {
	jwtSigningKey := viper.GetString("jwt_signing_key")
	if jwtSigningKey == "" {
		return authkit.ServerConfig{}, configError(configCodeMissingJWTSigningKey, "jwt_signing_key must be provided")
	}

	accessTTL := viper.GetDuration("access_ttl")
	if accessTTL <= 0 {
		return authkit.ServerConfig{}, configError(configCodeInvalidAccessTTL, "access_ttl must be greater than zero")
	}

	refreshTTL := viper.GetDuration("refresh_ttl")
	if refreshTTL <= 0 {
		return authkit.ServerConfig{}, configError(configCodeInvalidRefreshTTL, "refresh_ttl must be greater than zero")
	}

	return authkit.ServerConfig{
		AccessJWTSigningKey: []byte(jwtSigningKey),
		AccessJWTIssuer:     accessTokenIssuer,
		AccessTTL:           accessTTL,
		RefreshTTL:          refreshTTL,
		BcryptCost:          viper.GetInt("bcrypt_cost"),
	}, nil
}

func runServer(command *cobra.Command, arguments []string) error {
	logger, loggerErr := zap.NewProduction()
	if loggerErr != nil {
		return loggerErr
	}
	defer func() { _ = logger.Sync() }()

	commandContext := command.Context()
	var contextValue any
	if commandContext != nil {
		contextValue = commandContext.Value(serverConfigContextKey)
	}
	serverConfig, ok := contextValue.(authkit.ServerConfig)
	if !ok {
		return configError(configCodeUninitializedServer, "server configuration not prepared; PreRunE must execute before RunE")
	}

	listenAddr := viper.GetString("listen_addr")
	databaseURL := viper.GetString("database_url")
	enableCORS := viper.GetBool("enable_cors")
	corsAllowedOrigins := viper.GetStringSlice("cors_allowed_origins")

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(zapLoggerMiddleware(logger))

	if enableCORS {
		corsMiddleware, corsErr := web.ConfigureCORS(logger, corsAllowedOrigins)
		if corsErr != nil {
			return corsErr
		}
		router.Use(corsMiddleware)
	}

	var userStore authkit.UserStore
	var refreshStore authkit.RefreshTokenStore

	switch {
	case databaseURL != "" && viper.GetBool("pgx_native"):
		pool, poolErr := authkitpg.BuildPool(command.Context(), databaseURL)
		if poolErr != nil {
			return poolErr
		}
		defer pool.Close()
		if schemaErr := authkitpg.EnsureSchema(command.Context(), pool); schemaErr != nil {
			return schemaErr
		}
		userStore = authkitpg.NewPostgresUserStore(pool)
		refreshStore = authkitpg.NewPostgresRefreshTokenStore(pool)
		logger.Info("using pgx-native stores")
	case databaseURL != "":
		database, databaseErr := authkit.OpenDatabase(command.Context(), databaseURL)
		if databaseErr != nil {
			return databaseErr
		}
		userStore = authkit.NewDatabaseUserStore(database)
		refreshStore = authkit.NewDatabaseRefreshTokenStore(database)
		logger.Info("using persistent stores", zap.String("driver", database.Driver()))
	default:
		userStore = authkit.NewMemoryUserStore()
		refreshStore = authkit.NewMemoryRefreshTokenStore()
		logger.Info("using in-memory stores")
	}

	metricsRecorder := authkit.NewCounterMetrics()

	authkit.MountAuthRoutes(router.Group("/api/v1/auth"), serverConfig, authkit.Dependencies{
		Users:         userStore,
		RefreshTokens: refreshStore,
		Hasher:        authkit.NewPasswordHasher(serverConfig.BcryptCost),
		Logger:        logger,
		Metrics:       metricsRecorder,
		Clock:         authkit.NewSystemClock(),
	})

	router.GET("/metrics", func(contextGin *gin.Context) {
		contextGin.JSON(http.StatusOK, metricsRecorder.Snapshot())
	})

	server := &http.Server{
		Addr:              listenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())
	defer shutdownCancel()

	go func() {
		stopSignals := make(chan os.Signal, 1)
		signal.Notify(stopSignals, syscall.SIGINT, syscall.SIGTERM)
		<-stopSignals
		graceCtx, graceCancel := context.WithTimeout(shutdownCtx, 10*time.Second)
		defer graceCancel()
		if err := server.Shutdown(graceCtx); err != nil {
			logger.Error("server shutdown error", zap.Error(err))
		}
	}()

	logger.Info("listening", zap.String("addr", listenAddr))
	if err := serveHTTP(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen error: %w", err)
	}
	return nil
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(contextGin *gin.Context) {
		startTime := time.Now()
		contextGin.Next()
		duration := time.Since(startTime)
		logger.Info("http",
			zap.String("method", contextGin.Request.Method),
			zap.String("path", contextGin.Request.URL.Path),
			zap.Int("status", contextGin.Writer.Status()),
			zap.String("ip", contextGin.ClientIP()),
			zap.Duration("elapsed", duration),
		)
	}
}
