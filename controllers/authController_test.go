package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"civicpulse-be/stores"
)

func newAuthRouter(users *stores.MemoryUserStore) *gin.Engine {
	h := NewAuthController(users, zap.NewNop().Sugar())

	r := gin.New()
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", h.RegisterUser)
		auth.POST("/login", h.LoginUser)
	}
	return r
}

func TestRegisterAndLogin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	users := stores.NewMemoryUserStore()
	r := newAuthRouter(users)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", gin.H{
		"username": "asha",
		"email":    "asha@example.com",
		"password": "secret123",
		"role":     "citizen",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var registered struct {
		Token string `json:"token"`
		User  struct {
			Role string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))
	require.NotEmpty(t, registered.Token)
	require.Equal(t, "citizen", registered.User.Role)

	// Stored password is hashed, never the plaintext.
	stored, err := users.GetByEmail(context.Background(), "asha@example.com")
	require.NoError(t, err)
	require.NotEqual(t, "secret123", stored.Password)

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "asha@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "asha@example.com",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := newAuthRouter(stores.NewMemoryUserStore())

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", gin.H{
		"username": "asha",
		"email":    "asha@example.com",
		"password": "secret123",
		"role":     "admin",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := newAuthRouter(stores.NewMemoryUserStore())

	payload := gin.H{
		"username": "asha",
		"email":    "asha@example.com",
		"password": "secret123",
		"role":     "citizen",
	}
	w := doJSON(t, r, http.MethodPost, "/api/auth/register", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	payload["username"] = "asha2"
	w = doJSON(t, r, http.MethodPost, "/api/auth/register", payload)
	require.Equal(t, http.StatusConflict, w.Code)
}
