package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicpulse-be/models"
	authUtils "civicpulse-be/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func authTestRouter() *gin.Engine {
	r := gin.New()
	r.GET("/whoami", AuthMiddleware(), func(c *gin.Context) {
		principal, ok := CurrentPrincipal(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no principal"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"userId": principal.UserID, "role": string(principal.Role)})
	})
	r.GET("/government", AuthMiddleware(), RequireRole(models.Government), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	return r
}

func get(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := authTestRouter()

	userID := primitive.NewObjectID().Hex()
	token, err := authUtils.GenerateAndSetToken(userID, models.Citizen)
	require.NoError(t, err)

	w := get(r, "/whoami", token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), userID)
	require.Contains(t, w.Body.String(), "citizen")
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := authTestRouter()

	w := get(r, "/whoami", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareGarbageToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := authTestRouter()

	w := get(r, "/whoami", "not-a-jwt")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "other-secret")
	token, err := authUtils.GenerateAndSetToken(primitive.NewObjectID().Hex(), models.Citizen)
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "test-secret")
	r := authTestRouter()

	w := get(r, "/whoami", token)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRoleGate(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := authTestRouter()

	citizenToken, err := authUtils.GenerateAndSetToken(primitive.NewObjectID().Hex(), models.Citizen)
	require.NoError(t, err)

	w := get(r, "/government", citizenToken)
	require.Equal(t, http.StatusForbidden, w.Code)

	governmentToken, err := authUtils.GenerateAndSetToken(primitive.NewObjectID().Hex(), models.Government)
	require.NoError(t, err)

	w = get(r, "/government", governmentToken)
	require.Equal(t, http.StatusOK, w.Code)
}
