package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"trosc-backend/internal/config"
	"trosc-backend/internal/logger"
	"trosc-backend/internal/user/model"
	appErrors "trosc-backend/pkg/errors"
	"trosc-backend/pkg/utils"
)

func TestMain(m *testing.M) {
	if err := logger.Init("production"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeLoader struct {
	user *model.User
	err  error
}

func (f *fakeLoader) GetByID(_ context.Context, userID primitive.ObjectID) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.user != nil && f.user.ID == userID {
		return f.user, nil
	}
	return nil, appErrors.ErrUserNotFound
}

func authTestSetup(t *testing.T, loader *fakeLoader) (*gin.Engine, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{JWT: config.JWTConfig{Secret: "test-secret", ExpiresDays: 7}}

	router := gin.New()
	router.GET("/protected", AuthMiddleware(cfg, loader), func(c *gin.Context) {
		userID, _ := c.Get(ContextUserIDKey)
		c.JSON(http.StatusOK, gin.H{"user_id": userID.(primitive.ObjectID).Hex()})
	})
	return router, cfg
}

func issueToken(t *testing.T, cfg *config.Config, user *model.User) string {
	t.Helper()
	token, err := utils.GenerateToken(user.ID.Hex(), user.Email, user.Role, cfg.JWT.Secret, cfg.JWT.ExpiresDays)
	require.NoError(t, err)
	return token
}

func activeUser() *model.User {
	return &model.User{
		ID:     primitive.NewObjectID(),
		Email:  "ada@example.com",
		Role:   model.RoleUser,
		Active: true,
	}
}

func TestAuthMiddleware_BearerHeader(t *testing.T) {
	user := activeUser()
	router, cfg := authTestSetup(t, &fakeLoader{user: user})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, cfg, user))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), user.ID.Hex())
}

func TestAuthMiddleware_Cookie(t *testing.T) {
	user := activeUser()
	router, cfg := authTestSetup(t, &fakeLoader{user: user})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: jwtCookieName, Value: issueToken(t, cfg, user)})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware_NonBearerHeaderFallsBackToCookie(t *testing.T) {
	user := activeUser()
	router, cfg := authTestSetup(t, &fakeLoader{user: user})

	// A proxy-injected non-Bearer header must not shadow a valid cookie.
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token something-else")
	req.AddCookie(&http.Cookie{Name: jwtCookieName, Value: issueToken(t, cfg, user)})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware_StoreFailure(t *testing.T) {
	user := activeUser()
	router, cfg := authTestSetup(t, &fakeLoader{
		user: user,
		err:  errors.New("connection reset"),
	})

	// A transient store fault is a server error, not an invalid token.
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, cfg, user))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAuthMiddleware_UnknownUser(t *testing.T) {
	user := activeUser()
	router, cfg := authTestSetup(t, &fakeLoader{})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, cfg, user))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "no longer exists")
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	router, _ := authTestSetup(t, &fakeLoader{user: activeUser()})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_BadToken(t *testing.T) {
	router, _ := authTestSetup(t, &fakeLoader{user: activeUser()})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_StaleToken(t *testing.T) {
	user := activeUser()
	router, cfg := authTestSetup(t, &fakeLoader{user: user})

	token := issueToken(t, cfg, user)
	// Password changed after the token was minted: signature still verifies
	// but the token must be rejected.
	user.PasswordChangedAt = time.Now().Add(time.Minute)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "recently changed password")
}

func TestAuthMiddleware_DeactivatedUser(t *testing.T) {
	user := activeUser()
	user.Active = false
	router, cfg := authTestSetup(t, &fakeLoader{user: user})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, cfg, user))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoleMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/admin",
		func(c *gin.Context) { c.Set(ContextRoleKey, "user") },
		AdminOnly(),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)
	router.GET("/admin-ok",
		func(c *gin.Context) { c.Set(ContextRoleKey, "admin") },
		AdminOnly(),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin-ok", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
