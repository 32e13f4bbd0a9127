package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"success-mcp/internal/apikey"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// APIKeyHeader carries a per-request success.co API key on the HTTP transport.
const APIKeyHeader = "X-Success-Api-Key"

// Claims identify a logged-in operator. Subject is the username.
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Sign issues an HS256 token for username valid for ttl.
func Sign(secret []byte, username, name string, ttl time.Duration) (string, time.Time, error) {
	if len(secret) == 0 {
		return "", time.Time{}, errors.New("jwt secret is not configured")
	}
	exp := time.Now().Add(ttl)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}).SignedString(secret)
	return token, exp, err
}

func Parse(secret []byte, raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// JWTAuth requires a bearer token signed with secret. Tokens with less than
// a day left are renewed through the X-New-Token header.
func JWTAuth(secret []byte, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		claims, err := Parse(secret, auth[7:])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set("operator", claims.Subject)
		c.Set("operator_name", claims.Name)

		if claims.ExpiresAt != nil && time.Until(claims.ExpiresAt.Time) < 24*time.Hour {
			if renewed, _, err := Sign(secret, claims.Subject, claims.Name, ttl); err == nil {
				c.Header("X-New-Token", renewed)
			}
		}

		c.Next()
	}
}

// APIKey moves the API key header into the request context and marks the
// request as remote.
func APIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := apikey.WithRemote(c.Request.Context())
		c.Request = c.Request.WithContext(apikey.WithKey(ctx, c.GetHeader(APIKeyHeader)))
		c.Next()
	}
}
