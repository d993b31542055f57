package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"lottery-ledger.backend/internal/interfaces/http/middleware"
)

var testUserID = uuid.MustParse("0b6f7c1e-3a2d-4c5b-8e9f-a1b2c3d4e5f6")

// newRouter builds a router whose requests are authenticated as testUserID
// unless anonymous is set
func newRouter(anonymous bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if !anonymous {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.UserIDKey, testUserID)
			c.Next()
		})
	}
	return r
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
