package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"taskup/internal/middleware"
	"taskup/internal/model"
	"taskup/internal/validation"
)

var (
	testUserID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	testOrgID  = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

// newRouter создает gin в тестовом режиме с подставленной сессией вместо JWT
func newRouter(t *testing.T, role model.MemberRole) (*gin.Engine, *gin.RouterGroup) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validation.Register())

	r := gin.New()
	api := r.Group("/", func(c *gin.Context) {
		c.Set(middleware.UserIDKey, testUserID)
		c.Set(middleware.OrgIDKey, testOrgID)
		c.Set(middleware.RoleKey, role)
		c.Next()
	})
	return r, api
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func errorMessage(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body["error"]
}
