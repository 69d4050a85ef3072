package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/class-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/class-enrollment-api/pkg/errors"
)

type fakeTokens map[string]*models.JWTClaims

func (f fakeTokens) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := f[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

type observation struct {
	method string
	path   string
	status int
}

type recordingObserver struct {
	seen []observation
}

func (r *recordingObserver) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	r.seen = append(r.seen, observation{method: method, path: path, status: status})
}

func newProtectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	tokens := fakeTokens{
		"student": {UserID: "stu-1", Role: models.RoleStudent},
		"admin":   {UserID: "adm-1", Role: models.RoleAdmin},
	}
	router := gin.New()
	group := router.Group("/students/:id", JWT(tokens), RBAC(string(models.RoleAdmin), Self))
	group.GET("/plan", func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).UserID)
	})
	return router
}

func serve(router http.Handler, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestJWTAndRBAC(t *testing.T) {
	router := newProtectedRouter()

	cases := []struct {
		name   string
		path   string
		auth   string
		status int
	}{
		{"missing header", "/students/stu-1/plan", "", http.StatusUnauthorized},
		{"wrong scheme", "/students/stu-1/plan", "Basic student", http.StatusUnauthorized},
		{"invalid token", "/students/stu-1/plan", "Bearer nope", http.StatusUnauthorized},
		{"own plan", "/students/stu-1/plan", "Bearer student", http.StatusOK},
		{"other student", "/students/stu-2/plan", "bearer student", http.StatusForbidden},
		{"admin", "/students/stu-2/plan", "Bearer admin", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(router, tc.path, tc.auth)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestRBACWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/shifts", RequireRoles(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	rec := serve(router, "/shifts", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &recordingObserver{}
	router := gin.New()
	router.Use(Metrics(observer))
	router.GET("/classes/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	serve(router, "/classes/CS101-A", "")
	serve(router, "/nowhere", "")

	if assert.Len(t, observer.seen, 2) {
		assert.Equal(t, observation{http.MethodGet, "/classes/:id", http.StatusOK}, observer.seen[0])
		assert.Equal(t, observation{http.MethodGet, "unmatched", http.StatusNotFound}, observer.seen[1])
	}
}
