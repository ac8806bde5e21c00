package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-admin/internal/models"
	"github.com/noah-isme/course-admin/internal/service"
)

func newProtectedRouter(tokens *service.TokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/courses", JWT(tokens), RequireRoles(models.RoleInstructor, models.RoleAdmin), func(c *gin.Context) {
		claims, _ := CurrentUser(c)
		c.String(http.StatusCreated, claims.UserID)
	})
	return router
}

func TestJWTAndRoles(t *testing.T) {
	tokens := service.NewTokenService(service.TokenConfig{Secret: "secret", Issuer: "course-api", Expiry: time.Hour})
	router := newProtectedRouter(tokens)

	instructor, err := tokens.Issue(1001, models.RoleInstructor)
	require.NoError(t, err)
	student, err := tokens.Issue(2002, models.RoleStudent)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized},
		{"student", "Bearer " + student, http.StatusForbidden},
		{"instructor", "Bearer " + instructor, http.StatusCreated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/courses", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusCreated {
				assert.Equal(t, "1001", w.Body.String())
			}
		})
	}
}

func TestRequireRolesWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.DELETE("/courses/:id", RequireRoles(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/courses/1", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMetricsMiddlewareRecordsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	router := gin.New()
	router.Use(Metrics(metrics, "/metrics"))
	router.GET("/courses/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, target := range []string{"/courses/7", "/courses/8", "/nowhere", "/metrics"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	count, err := testutil.GatherAndCount(metrics.Registry(), "course_api_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	expected := `
# HELP course_api_http_requests_total Total number of HTTP requests
# TYPE course_api_http_requests_total counter
course_api_http_requests_total{method="GET",path="/courses/:id",status="200"} 2
course_api_http_requests_total{method="GET",path="unmatched",status="404"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(expected), "course_api_http_requests_total"))
}
