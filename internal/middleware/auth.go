package middleware

import (
	"net/http"
	"strings"

	"github.com/Saloni021-kashyap/Tripkart/internal/domain"
	"github.com/wb-go/wbf/ginext"
)

const identityKey = "identity"

type TokenParser interface {
	Parse(token string) (*domain.Identity, error)
}

// Authenticate resolves a Bearer token into an identity when one is sent.
// Requests without an Authorization header pass through anonymously; a
// malformed or invalid token is rejected.
func Authenticate(parser TokenParser) ginext.HandlerFunc {
	return func(c *ginext.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			unauthorized(c, "missing bearer token")
			return
		}

		id, err := parser.Parse(raw)
		if err != nil {
			unauthorized(c, "invalid token")
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

func RequireUser() ginext.HandlerFunc {
	return func(c *ginext.Context) {
		if _, ok := CurrentIdentity(c); !ok {
			unauthorized(c, domain.ErrUnauthorized.Error())
			return
		}
		c.Next()
	}
}

func RequireAdmin() ginext.HandlerFunc {
	return func(c *ginext.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			unauthorized(c, domain.ErrUnauthorized.Error())
			return
		}
		if !id.IsAdmin() {
			c.Set("error", domain.ErrForbidden.Error())
			c.AbortWithStatusJSON(http.StatusForbidden, ginext.H{"error": domain.ErrForbidden.Error()})
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the caller set by Authenticate.
func CurrentIdentity(c *ginext.Context) (*domain.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(*domain.Identity)
	return id, ok && id != nil
}

func unauthorized(c *ginext.Context, msg string) {
	c.Set("error", msg)
	c.AbortWithStatusJSON(http.StatusUnauthorized, ginext.H{"error": msg})
}
