// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements bearer authentication. A valid HS256 JWT yields a
// domain.Principal which is stored in the Gin context together with the plain
// user id (key "userID") used by the rate limiter and the access log.
//
// Accepted claims:
//   - userId (preferred) or sub: principal id
//   - email
//   - role: "ADMIN" or "USER" (anything else is treated as USER)
//
// For local development AllowHeader lets callers identify themselves with
// X-User-ID (and optionally X-User-Role) instead of a token. Never enable it
// in production.
package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/tbourn/go-diet-backend/internal/domain"
)

const (
	ctxKeyPrincipal = "principal"
	ctxKeyUserID    = "userID"

	// HeaderUserID and HeaderUserRole carry the development identity.
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

// AuthOptions configures Auth.
type AuthOptions struct {
	// Secret is the HMAC key for HS256 tokens. Empty disables token auth.
	Secret []byte
	// AllowHeader accepts X-User-ID when no bearer token is present.
	AllowHeader bool
}

// Claims is the JWT payload issued to API clients.
type Claims struct {
	UserID string `json:"userId,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Auth authenticates the caller and aborts with 401 when no identity can be
// established.
func Auth(opts AuthOptions) gin.HandlerFunc {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)

	return func(c *gin.Context) {
		if raw, ok := bearerToken(c.GetHeader("Authorization")); ok {
			p, err := parsePrincipal(parser, opts.Secret, raw)
			if err != nil {
				unauthorized(c, "invalid token")
				return
			}
			SetPrincipal(c, p)
			c.Next()
			return
		}

		if opts.AllowHeader {
			if id := strings.TrimSpace(c.GetHeader(HeaderUserID)); id != "" {
				SetPrincipal(c, domain.Principal{ID: id, Role: roleOf(c.GetHeader(HeaderUserRole))})
				c.Next()
				return
			}
		}
		unauthorized(c, "authentication required")
	}
}

// SetPrincipal stores p in the request context.
func SetPrincipal(c *gin.Context, p domain.Principal) {
	c.Set(ctxKeyPrincipal, p)
	c.Set(ctxKeyUserID, p.ID)
}

// PrincipalFrom returns the principal stored by Auth.
func PrincipalFrom(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(ctxKeyPrincipal)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok
}

// IssueToken signs an HS256 token for p valid for ttl.
func IssueToken(secret []byte, p domain.Principal, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("empty signing secret")
	}
	now := time.Now()
	claims := Claims{
		UserID: p.ID,
		Email:  p.Email,
		Role:   string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func parsePrincipal(parser *jwt.Parser, secret []byte, raw string) (domain.Principal, error) {
	if len(secret) == 0 {
		return domain.Principal{}, errors.New("token auth disabled")
	}
	var claims Claims
	tok, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		return domain.Principal{}, err
	}
	if !tok.Valid {
		return domain.Principal{}, errors.New("invalid token")
	}
	id := claims.UserID
	if id == "" {
		id = claims.Subject
	}
	if id == "" {
		return domain.Principal{}, errors.New("token has no subject")
	}
	return domain.Principal{ID: id, Email: claims.Email, Role: roleOf(claims.Role)}, nil
}

func bearerToken(h string) (string, bool) {
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	tok := strings.TrimSpace(h[len(prefix):])
	return tok, tok != ""
}

func roleOf(s string) domain.Role {
	if strings.EqualFold(strings.TrimSpace(s), string(domain.RoleAdmin)) {
		return domain.RoleAdmin
	}
	return domain.RoleUser
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       "unauthorized",
		"message":    msg,
	})
}
