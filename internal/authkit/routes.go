package authkit

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dependencies carries the collaborators the auth routes operate on.
type Dependencies struct {
	Users         UserStore
	RefreshTokens RefreshTokenStore
	Hasher        *PasswordHasher
	Logger        *zap.Logger
	Metrics       MetricsRecorder
	Clock         Clock
}

func (deps *Dependencies) normalize() {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = NewCounterMetrics()
	}
	deps.Clock = orSystemClock(deps.Clock)
}

// MountAuthRoutes registers the register, login, refresh, whoami, and user
// listing endpoints on the router.
func MountAuthRoutes(router gin.IRouter, configuration ServerConfig, deps Dependencies) {
	deps.normalize()

	authenticator := NewAuthenticator(deps.Users, deps.Hasher)
	requireIdentity := RequireAuth(deps.Logger, deps.Metrics,
		&BearerScheme{Configuration: configuration, Users: deps.Users, Clock: deps.Clock},
		&BasicScheme{Authenticator: authenticator},
	)

	router.GET("", handleListUsers(deps))
	router.POST("/register", handleRegister(deps))
	router.POST("/token", handleLogin(configuration, authenticator, deps))
	router.POST("/token/refresh", handleRefresh(configuration, deps))
	router.GET("/whoami", requireIdentity, handleWhoami())
}

func handleRegister(deps Dependencies) gin.HandlerFunc {
	return func(contextGin *gin.Context) {
		var inbound struct {
			Email     string `json:"email" binding:"required,email"`
			FirstName string `json:"first_name" binding:"required,min=3,max=50"`
			LastName  string `json:"last_name" binding:"required,min=3,max=50"`
			Password  string `json:"password" binding:"required"`
		}
		if err := contextGin.BindJSON(&inbound); err != nil {
			contextGin.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
			return
		}

		passwordHash, hashErr := deps.Hasher.Hash(inbound.Password)
		if hashErr != nil {
			deps.Logger.Error("password hashing failed",
				zap.String("code", "register.hash_failed"), zap.Error(hashErr))
			contextGin.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal"})
			return
		}

		user, registerErr := deps.Users.Register(contextGin, User{
			ID:           uuid.NewString(),
			Email:        inbound.Email,
			PasswordHash: passwordHash,
			FirstName:    inbound.FirstName,
			LastName:     inbound.LastName,
		})
		if registerErr != nil {
			if errors.Is(registerErr, ErrDuplicateEmail) {
				deps.Metrics.Increment(MetricRegisterDuplicate)
				contextGin.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "duplicate_email"})
				return
			}
			deps.Logger.Error("user registration failed",
				zap.String("code", "register.store_failed"), zap.Error(registerErr))
			contextGin.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal"})
			return
		}

		deps.Metrics.Increment(MetricRegisterSuccess)
		contextGin.JSON(http.StatusCreated, user.Profile())
	}
}

func handleLogin(configuration ServerConfig, authenticator *Authenticator, deps Dependencies) gin.HandlerFunc {
	return func(contextGin *gin.Context) {
		var inbound struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}
		if err := contextGin.BindJSON(&inbound); err != nil {
			contextGin.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
			return
		}

		user, verifyErr := authenticator.VerifyCredentials(contextGin, inbound.Email, inbound.Password)
		if verifyErr != nil {
			if errors.Is(verifyErr, ErrInvalidCredentials) {
				deps.Metrics.Increment(MetricLoginFailure)
				contextGin.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
				return
			}
			deps.Logger.Error("credential verification failed",
				zap.String("code", "login.verify_failed"), zap.Error(verifyErr))
			contextGin.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal"})
			return
		}

		issueTokenPair(contextGin, configuration, deps, user, MetricLoginSuccess)
	}
}

func handleRefresh(configuration ServerConfig, deps Dependencies) gin.HandlerFunc {
	return func(contextGin *gin.Context) {
		var inbound struct {
			RefreshToken string `json:"refresh_token" binding:"required"`
		}
		if err := contextGin.BindJSON(&inbound); err != nil {
			contextGin.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
			return
		}

		userID, consumeErr := deps.RefreshTokens.Consume(contextGin, inbound.RefreshToken)
		if consumeErr != nil {
			switch {
			case errors.Is(consumeErr, ErrRefreshTokenNotFound), errors.Is(consumeErr, ErrRefreshTokenEmptyOpaque):
				deps.Metrics.Increment(MetricRefreshNotFound)
				contextGin.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "token_not_found"})
			case errors.Is(consumeErr, ErrRefreshTokenExpired):
				deps.Metrics.Increment(MetricRefreshExpired)
				contextGin.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "token_expired"})
			default:
				deps.Logger.Error("refresh token consumption failed",
					zap.String("code", "refresh.consume_failed"), zap.Error(consumeErr))
				contextGin.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal"})
			}
			return
		}

		user, findErr := deps.Users.FindByID(contextGin, userID)
		if findErr != nil {
			if errors.Is(findErr, ErrUserNotFound) {
				contextGin.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
				return
			}
			deps.Logger.Error("refresh owner lookup failed",
				zap.String("code", "refresh.owner_lookup_failed"), zap.Error(findErr))
			contextGin.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal"})
			return
		}

		issueTokenPair(contextGin, configuration, deps, user, MetricRefreshSuccess)
	}
}

// issueTokenPair mints a fresh access token and a fresh refresh token for the
// user. Both login and a successful rotation end here.
func issueTokenPair(contextGin *gin.Context, configuration ServerConfig, deps Dependencies, user User, successMetric string) {
	accessToken, accessExpiresAt, mintErr := MintAccessToken(user.ID, user.Email,
		configuration.AccessJWTIssuer, configuration.AccessJWTSigningKey, configuration.AccessTTL, deps.Clock)
	if mintErr != nil {
		deps.Logger.Error("access token mint failed",
			zap.String("code", "token.mint_failed"), zap.Error(mintErr))
		contextGin.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	refreshExpiresAt := deps.Clock.Now().Add(configuration.RefreshTTL)
	refreshToken, issueErr := deps.RefreshTokens.Issue(contextGin, user.ID, refreshExpiresAt.Unix())
	if issueErr != nil {
		deps.Logger.Error("refresh token issue failed",
			zap.String("code", "token.issue_failed"), zap.Error(issueErr))
		contextGin.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	deps.Metrics.Increment(successMetric)
	contextGin.JSON(http.StatusOK, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"expires":       accessExpiresAt,
	})
}

func handleWhoami() gin.HandlerFunc {
	return func(contextGin *gin.Context) {
		user, ok := ResolvedUser(contextGin)
		if !ok {
			contextGin.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}
		contextGin.JSON(http.StatusOK, user.Profile())
	}
}

func handleListUsers(deps Dependencies) gin.HandlerFunc {
	return func(contextGin *gin.Context) {
		users, listErr := deps.Users.List(contextGin)
		if listErr != nil {
			deps.Logger.Error("user listing failed",
				zap.String("code", "users.list_failed"), zap.Error(listErr))
			contextGin.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal"})
			return
		}
		profiles := make([]Profile, 0, len(users))
		for _, user := range users {
			profiles = append(profiles, user.Profile())
		}
		contextGin.JSON(http.StatusOK, profiles)
	}
}
