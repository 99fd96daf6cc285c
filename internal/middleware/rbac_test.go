package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/elevateforhumanity/workforce-api/internal/models"
)

func rbacRouter(handler gin.HandlerFunc, claims *models.JWTClaims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/intakes/:id/pathway",
		func(c *gin.Context) {
			if claims != nil {
				c.Set(ContextUserKey, claims)
			}
		},
		handler,
		func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestRequireRolesRejectsStudent(t *testing.T) {
	r := rbacRouter(RequireRoles(models.RoleAdmin, models.RoleSuperAdmin),
		&models.JWTClaims{UserID: "u1", Role: models.RoleStudent})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/intakes/i1/pathway", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRolesAllowsAdmin(t *testing.T) {
	r := rbacRouter(RequireRoles(models.RoleAdmin, models.RoleSuperAdmin),
		&models.JWTClaims{UserID: "a1", Role: models.RoleAdmin})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/intakes/i1/pathway", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRolesWithoutClaims(t *testing.T) {
	r := rbacRouter(RequireRoles(models.RoleAdmin), nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/intakes/i1/pathway", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRBACSelfScope(t *testing.T) {
	r := rbacRouter(RBAC("ADMIN", "SELF"),
		&models.JWTClaims{UserID: "i1", Role: models.RoleStudent})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/intakes/i1/pathway", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
