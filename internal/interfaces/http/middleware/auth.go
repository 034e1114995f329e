// Package middleware contains the gin middleware chain: API-key auth,
// request logging, rate limiting, and metrics.
package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veriflowhq/veriflow/internal/infrastructure/monitoring/logging"
	"github.com/veriflowhq/veriflow/pkg/errors"
)

// HeaderAPIKey carries the client's key; HeaderClientID names the client.
const (
	HeaderAPIKey   = "X-API-Key"
	HeaderClientID = "X-Client-ID"
)

const clientIDKey = "client_id"

// ClientID returns the authenticated client ID for the request, empty when
// auth is disabled or the request is unauthenticated.
func ClientID(c *gin.Context) string {
	return c.GetString(clientIDKey)
}

// AuthMiddleware authenticates requests by client ID and API key.
type AuthMiddleware struct {
	// keyHashes maps client IDs to the SHA-256 of their key, so raw keys
	// never sit in memory longer than configuration load.
	keyHashes map[string][32]byte
	disabled  bool
	logger    logging.Logger
}

// NewAuthMiddleware creates the middleware from the configured client keys.
func NewAuthMiddleware(apiKeys map[string]string, disabled bool, log logging.Logger) *AuthMiddleware {
	hashes := make(map[string][32]byte, len(apiKeys))
	for clientID, key := range apiKeys {
		hashes[clientID] = sha256.Sum256([]byte(key))
	}
	return &AuthMiddleware{keyHashes: hashes, disabled: disabled, logger: log}
}

// Handler rejects requests without a valid client ID / API key pair.
func (m *AuthMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.disabled {
			c.Next()
			return
		}

		clientID := c.GetHeader(HeaderClientID)
		apiKey := c.GetHeader(HeaderAPIKey)
		if clientID == "" || apiKey == "" {
			unauthorized(c, "missing API credentials")
			return
		}

		expected, ok := m.keyHashes[clientID]
		if !ok {
			// Hash anyway so unknown client IDs cost the same as bad keys.
			_ = sha256.Sum256([]byte(apiKey))
			unauthorized(c, "invalid API credentials")
			return
		}

		got := sha256.Sum256([]byte(apiKey))
		if subtle.ConstantTimeCompare(got[:], expected[:]) != 1 {
			m.logger.Warn("rejected API key", logging.String("client_id", clientID))
			unauthorized(c, "invalid API credentials")
			return
		}

		c.Set(clientIDKey, clientID)
		c.Next()
	}
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    string(errors.CodeUnauthorized),
			"message": message,
		},
	})
}
