package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
)

// ContextUserKey is the gin context key the middleware stores the
// authenticated user ID under.
const ContextUserKey = "uid"

// Verifier checks a bearer token and returns the user it belongs to.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (uid string, err error)
}

type firebaseVerifier struct {
	client *auth.Client
}

// NewFirebaseVerifier builds a Verifier on Firebase Auth.
func NewFirebaseVerifier(ctx context.Context, app *firebase.App) (Verifier, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}
	return &firebaseVerifier{client: client}, nil
}

func (v *firebaseVerifier) Verify(ctx context.Context, idToken string) (string, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", fmt.Errorf("verify id token: %w", err)
	}
	return token.UID, nil
}

// Middleware rejects requests without a valid Bearer token and stores the
// user ID in the request context for handlers.
func Middleware(verifier Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		uid, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ContextUserKey, uid)
		c.Next()
	}
}

// UserID reads the authenticated user ID the middleware stored.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserKey)
}
