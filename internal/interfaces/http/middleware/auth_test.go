package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lottery-ledger.backend/pkg/jwt"
)

func newAuthRouter(svc *jwt.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(svc))
	r.GET("/me", func(c *gin.Context) {
		id, _ := GetUserID(c)
		role, _ := GetUserRole(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "role": role})
	})
	r.GET("/admin", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func TestAuthMiddleware(t *testing.T) {
	svc := jwt.NewJWTService("test-secret", time.Minute)
	r := newAuthRouter(svc)
	userID := uuid.New()
	token, err := svc.IssueAccessToken(userID, jwt.RoleUser)
	require.NoError(t, err)
	expired, err := jwt.NewJWTService("test-secret", -time.Minute).IssueAccessToken(userID, jwt.RoleUser)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{name: "missing header", status: http.StatusUnauthorized, body: "Authorization header is required"},
		{name: "not bearer", header: "Basic abc", status: http.StatusUnauthorized, body: "Invalid authorization format"},
		{name: "garbage token", header: "Bearer nope", status: http.StatusUnauthorized, body: "Invalid token"},
		{name: "expired", header: "Bearer " + expired, status: http.StatusUnauthorized, body: "Token has expired"},
		{name: "valid", header: "Bearer " + token, status: http.StatusOK, body: userID.String()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set(AuthorizationHeader, tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Body.String(), tc.body)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	svc := jwt.NewJWTService("test-secret", time.Minute)
	r := newAuthRouter(svc)

	userToken, err := svc.IssueAccessToken(uuid.New(), jwt.RoleUser)
	require.NoError(t, err)
	adminToken, err := svc.IssueAccessToken(uuid.New(), jwt.RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(AuthorizationHeader, "Bearer "+userToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(AuthorizationHeader, "Bearer "+adminToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequireRole_WithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RequireRole(jwt.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
