package authkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthUserContextKey is where RequireAuth stores the resolved user on the gin context.
const AuthUserContextKey = "auth_user"

// RequireAuth tries the schemes in the given order and injects the first
// resolved user. The response is a bare 401 when every scheme fails; the
// specific cause stays in the logs.
func RequireAuth(logger *zap.Logger, metrics MetricsRecorder, schemes ...CredentialScheme) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(schemes) == 0 {
		panic("at least one credential scheme is required")
	}
	return func(contextGin *gin.Context) {
		for _, scheme := range schemes {
			user, authErr := scheme.Authenticate(contextGin, contextGin.Request)
			if authErr == nil {
				contextGin.Set(AuthUserContextKey, user)
				contextGin.Next()
				return
			}
		}
		if metrics != nil {
			metrics.Increment(MetricAuthRejected)
		}
		logger.Warn("request rejected by all credential schemes",
			zap.String("code", "auth.all_schemes_failed"),
			zap.String("path", contextGin.Request.URL.Path))
		contextGin.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
	}
}

// ResolvedUser extracts the user stored by RequireAuth.
func ResolvedUser(contextGin *gin.Context) (User, bool) {
	value, found := contextGin.Get(AuthUserContextKey)
	if !found {
		return User{}, false
	}
	user, ok := value.(User)
	return user, ok
}
