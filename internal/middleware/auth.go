package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"terroir/internal/config"
	"terroir/internal/domain"
)

const (
	ContextKeyActor  = "actor"
	ContextKeyClaims = "claims"
)

// Claims are the JWT claims accepted on mutating import routes. The subject
// names the operator recorded in the import audit log.
type Claims struct {
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for subject, valid for ttl.
func IssueToken(cfg config.AuthConfig, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a bearer token.
func ValidateToken(cfg config.AuthConfig, tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

// AuthMiddleware returns Gin middleware that validates bearer tokens and
// injects the actor into the context.
func AuthMiddleware(cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "missing or invalid authorization header"},
			})
			return
		}

		claims, err := ValidateToken(cfg, strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			msg := "invalid or expired token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": msg},
			})
			return
		}

		c.Set(ContextKeyActor, claims.Subject)
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// GetActor extracts the authenticated operator from the Gin context.
func GetActor(c *gin.Context) (string, error) {
	val, exists := c.Get(ContextKeyActor)
	if !exists {
		return "", domain.ErrUnauthorized
	}
	return val.(string), nil
}
