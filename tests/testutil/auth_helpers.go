package testutil

import (
	"strings"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/formalwear-orders-api/middleware"
)

// MockValidatedClaims creates a mock ValidatedClaims for testing
func MockValidatedClaims(subject, issuer, role string, scopes []string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  issuer,
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{
			Scope: strings.Join(scopes, " "),
			Role:  role,
		},
	}
}

// SetMockAuthContext sets up a mock authenticated context for testing,
// the same keys the real EnsureValidToken middleware sets
func SetMockAuthContext(c *gin.Context, userID, role string) {
	claims := MockValidatedClaims(userID, "https://test.auth0.com/", role, nil)
	c.Set(middleware.ContextUserID, userID)
	c.Set(middleware.ContextClaims, claims)
	c.Set(middleware.ContextCustomClaims, claims.CustomClaims)
	c.Set(middleware.ContextAccessToken, "mock-token")
}

// MockAuthMiddleware authenticates every request as userID with role
func MockAuthMiddleware(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetMockAuthContext(c, userID, role)
		c.Next()
	}
}

// CreateTestContext creates a test Gin context
func CreateTestContext() (*gin.Context, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	c, engine := gin.CreateTestContext(nil)
	return c, engine
}
