package issuer

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hrmskit/sessiond/internal/credstore"
	"github.com/hrmskit/sessiond/pkg/tokenclaims"
)

const bearerPrefix = "Bearer "

// MountAuthRoutes registers /auth/login, /auth/me, and /auth/logout.
func MountAuthRoutes(router gin.IRouter, configuration ServerConfig, users credstore.Store, clock Clock, logger *zap.Logger, metrics MetricsRecorder) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewCounterMetrics()
	}

	router.POST("/auth/login", func(contextGin *gin.Context) {
		var inbound struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if bindErr := contextGin.BindJSON(&inbound); bindErr != nil || inbound.Email == "" || inbound.Password == "" {
			metrics.Increment(EventLoginBadRequest)
			contextGin.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
			return
		}

		record, findErr := users.FindByCredentials(contextGin, inbound.Email, inbound.Password)
		if findErr != nil {
			if errors.Is(findErr, credstore.ErrUserNotFound) {
				metrics.Increment(EventLoginInvalid)
				logger.Info("login rejected",
					zap.String("code", "issuer.login.invalid_credentials"),
					zap.String("email", inbound.Email))
				contextGin.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
				return
			}
			metrics.Increment(EventLoginFailure)
			logger.Error("credential lookup failed",
				zap.String("code", "issuer.login.store_failure"),
				zap.Error(findErr))
			contextGin.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}

		accessToken, _, mintErr := MintAccessToken(clock, record, configuration.TokenIssuer, configuration.SigningKey, configuration.AccessTTL)
		if mintErr != nil {
			metrics.Increment(EventLoginFailure)
			logger.Error("access token minting failed",
				zap.String("code", "issuer.login.mint_failure"),
				zap.Error(mintErr))
			contextGin.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}

		refreshToken, refreshErr := newRefreshOpaque()
		if refreshErr != nil {
			metrics.Increment(EventLoginFailure)
			logger.Error("refresh token minting failed",
				zap.String("code", "issuer.login.refresh_failure"),
				zap.Error(refreshErr))
			contextGin.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}

		metrics.Increment(EventLoginSuccess)
		contextGin.JSON(http.StatusOK, gin.H{
			// token mirrors accessToken for clients predating the pair shape.
			"token":        accessToken,
			"accessToken":  accessToken,
			"refreshToken": refreshToken,
			"user": gin.H{
				"id":          record.ID,
				"email":       record.Email,
				"name":        record.Name,
				"role":        record.Role,
				"permissions": record.Permissions,
			},
		})
	})

	// The bearer check here is prefix-presence only: the token contents are
	// not validated and the returned profile is not cross-checked against
	// the token identity. That is intentional mock behavior.
	router.GET("/auth/me", func(contextGin *gin.Context) {
		authorizationHeader := contextGin.GetHeader("Authorization")
		if !strings.HasPrefix(authorizationHeader, bearerPrefix) || strings.TrimSpace(strings.TrimPrefix(authorizationHeader, bearerPrefix)) == "" {
			metrics.Increment(EventMeUnauthorized)
			contextGin.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authorization header missing or malformed"})
			return
		}

		bearerToken := strings.TrimSpace(strings.TrimPrefix(authorizationHeader, bearerPrefix))
		record := lookupProfile(contextGin, users, bearerToken)

		metrics.Increment(EventMeServed)
		contextGin.JSON(http.StatusOK, gin.H{
			"id":          record.ID,
			"email":       record.Email,
			"name":        record.Name,
			"role":        record.Role,
			"permissions": record.Permissions,
		})
	})

	router.POST("/auth/logout", func(contextGin *gin.Context) {
		// Stateless: the refresh token reference is accepted and ignored.
		if refreshToken := contextGin.Query("refreshToken"); refreshToken != "" {
			logger.Debug("logout received refresh token reference",
				zap.String("code", "issuer.logout.refresh_reference"))
		}
		metrics.Increment(EventLogout)
		contextGin.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
	})
}

// lookupProfile resolves a profile for /auth/me: a best-effort decode of the
// bearer token locates the account by email, and the canned admin profile
// stands in when nothing matches.
func lookupProfile(contextGin *gin.Context, users credstore.Store, bearerToken string) credstore.UserRecord {
	if claims, decodeErr := tokenclaims.Decode(bearerToken); decodeErr == nil {
		if email := claims.EmailAddress(); email != "" {
			if record, findErr := users.FindByEmail(contextGin, email); findErr == nil {
				return record
			}
		}
	}
	canned := credstore.DefaultRecords()[0]
	canned.ID = "canned-admin"
	canned.Password = ""
	return canned
}
