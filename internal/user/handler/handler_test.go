package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"trosc-backend/internal/config"
	"trosc-backend/internal/logger"
	"trosc-backend/internal/user/model"
	"trosc-backend/internal/user/service"
	appErrors "trosc-backend/pkg/errors"
)

func TestMain(m *testing.M) {
	if err := logger.Init("production"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// memRepo implements just enough of service.Repository for handler tests.
type memRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*model.User
}

func newMemRepo() *memRepo {
	return &memRepo{users: make(map[primitive.ObjectID]*model.User)}
}

func (r *memRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return appErrors.ErrUserAlreadyExists
		}
	}
	user.ID = primitive.NewObjectID()
	user.Active = true
	user.CreatedAt = time.Now()
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, appErrors.ErrUserNotFound
}

func (r *memRepo) GetByID(_ context.Context, userID primitive.ObjectID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, appErrors.ErrUserNotFound
}

func (r *memRepo) GetAll(context.Context) ([]*model.User, error) { return nil, nil }

func (r *memRepo) Update(context.Context, primitive.ObjectID, bson.M) (*model.User, error) {
	return nil, appErrors.ErrUserNotFound
}

func (r *memRepo) UpdatePassword(context.Context, primitive.ObjectID, string, time.Time) error {
	return nil
}

func (r *memRepo) UpdateLastLogin(context.Context, primitive.ObjectID) error { return nil }

func (r *memRepo) SetResetToken(context.Context, primitive.ObjectID, string, time.Time) error {
	return nil
}

func (r *memRepo) ClearResetToken(context.Context, primitive.ObjectID) error { return nil }

func (r *memRepo) ConsumeResetToken(context.Context, string, string, time.Time) (*model.User, error) {
	return nil, appErrors.ErrResetTokenInvalid
}

func (r *memRepo) Deactivate(context.Context, primitive.ObjectID) error { return nil }
func (r *memRepo) Delete(context.Context, primitive.ObjectID) error     { return nil }

type noopMailer struct{}

func (noopMailer) SendWelcome(string, string) error               { return nil }
func (noopMailer) SendPasswordReset(string, string, string) error { return nil }

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWT:      config.JWTConfig{Secret: "test-secret", ExpiresDays: 7, CookieExpiresDays: 7},
		Reset:    config.ResetConfig{TokenTTLMinutes: 10},
		Password: config.PasswordConfig{BcryptCost: bcrypt.MinCost},
	}

	svc := service.NewService(newMemRepo(), noopMailer{}, cfg)
	h := NewHandler(svc, cfg)

	router := gin.New()
	v1 := router.Group("/api/v1")
	h.RegisterRoutes(v1)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSignUpEndpoint(t *testing.T) {
	router := newTestRouter()

	rec := postJSON(t, router, "/api/v1/auth/signup", gin.H{
		"name":             "Ada",
		"email":            "ada@example.com",
		"password":         "LongPass1",
		"password_confirm": "LongPass1",
	})

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			User  map[string]any `json:"user"`
			Token string         `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "success", resp.Status)
	assert.NotEmpty(t, resp.Data.Token)
	assert.Equal(t, "ada@example.com", resp.Data.User["email"])

	// The credential must never be serialized outward.
	assert.NotContains(t, resp.Data.User, "password")
	assert.NotContains(t, rec.Body.String(), "LongPass1")

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "jwt", cookies[0].Name)
	assert.Equal(t, resp.Data.Token, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestSignUpEndpoint_ConfirmMismatch(t *testing.T) {
	router := newTestRouter()

	rec := postJSON(t, router, "/api/v1/auth/signup", gin.H{
		"name":             "Ada",
		"email":            "ada@example.com",
		"password":         "LongPass1",
		"password_confirm": "different",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginEndpoint_UniformError(t *testing.T) {
	router := newTestRouter()

	rec := postJSON(t, router, "/api/v1/auth/signup", gin.H{
		"name":             "Ada",
		"email":            "ada@example.com",
		"password":         "LongPass1",
		"password_confirm": "LongPass1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	unknown := postJSON(t, router, "/api/v1/auth/login", gin.H{
		"email":    "missing@example.com",
		"password": "LongPass1",
	})
	wrongPass := postJSON(t, router, "/api/v1/auth/login", gin.H{
		"email":    "ada@example.com",
		"password": "WrongPass1",
	})

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	assert.Equal(t, unknown.Body.String(), wrongPass.Body.String())
}

func TestForgotPasswordEndpoint_UnknownEmail(t *testing.T) {
	router := newTestRouter()

	rec := postJSON(t, router, "/api/v1/auth/forgot-password", gin.H{
		"email": "missing@example.com",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogoutEndpoint(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/logout", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "jwt", cookies[0].Name)
	assert.Equal(t, "loggedout", cookies[0].Value)
}
