package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"accountsvc/internal/config"
	"accountsvc/internal/models"
	"accountsvc/internal/services"
)

// PrincipalKey is the Gin context key holding the resolved services.Principal.
const PrincipalKey = "principal"

// getJWTKey returns the JWT key from configuration
func getJWTKey() []byte {
	return []byte(config.Get().JWTSecret)
}

// JWTClaims represents the claims in the JWT
type JWTClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateToken generates a signed JWT access token for a user. Roles are
// deliberately not embedded: they are re-read from the store on every
// request so grants and revocations take effect immediately.
func GenerateToken(user *models.User) (string, error) {
	cfg := config.Get()
	claims := &JWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(cfg.JWTExpirationDur)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "accountsvc",
			Subject:   fmt.Sprintf("%d", user.ID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(getJWTKey())
}

// AuthMiddleware verifies the JWT token, resolves the caller against the
// user store, and sets the Principal in the context. Locked accounts are
// rejected even if their token is still valid.
func AuthMiddleware(users services.UserServicer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return getJWTKey(), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		user, err := users.GetByEmail(claims.Email)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}
		if user.Locked {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User account is locked"})
			c.Abort()
			return
		}

		roles := make([]models.RoleName, 0, len(user.Roles))
		for _, r := range user.Roles {
			roles = append(roles, r.Name)
		}
		c.Set(PrincipalKey, services.Principal{Email: user.Email, Roles: roles})
		c.Next()
	}
}

// GetPrincipal extracts the resolved Principal from the Gin context.
// The zero Principal is returned for unauthenticated requests.
func GetPrincipal(c *gin.Context) services.Principal {
	if v, exists := c.Get(PrincipalKey); exists {
		if p, ok := v.(services.Principal); ok {
			return p
		}
	}
	return services.Principal{}
}
