package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/storefront/internal/auth/application"
	"github.com/wyfcoding/storefront/internal/auth/infrastructure/security"
	authhttp "github.com/wyfcoding/storefront/internal/auth/interfaces/http"
	userapp "github.com/wyfcoding/storefront/internal/user/application"
	userdomain "github.com/wyfcoding/storefront/internal/user/domain"
	usermysql "github.com/wyfcoding/storefront/internal/user/infrastructure/persistence/mysql"
	"github.com/wyfcoding/storefront/pkg/db/dbtest"
	"github.com/wyfcoding/storefront/pkg/outbox"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database := dbtest.New(t, &userdomain.User{}, &outbox.Message{})
	users := userapp.NewUserService(usermysql.NewUserRepository(database.DB), outbox.NewManager(database.DB), database)
	svc := application.NewAuthService(
		users,
		security.NewBcryptHasher(security.MinBcryptCost),
		security.NewJWTManager("0123456789abcdef0123456789abcdef", "storefront", time.Hour),
		nil,
	)

	r := gin.New()
	authhttp.NewHandler(svc).RegisterRoutes(r.Group("/api"))
	return r
}

func do(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterLoginMe(t *testing.T) {
	r := newRouter(t)

	w := do(r, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "rest@example.com", "password": "secret-pw", "name": "Rest",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(r, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "rest@example.com", "password": "secret-pw", "name": "Rest",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "rest@example.com", "password": "secret-pw",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	assert.Equal(t, "CLIENT", login.User.Role)

	w = do(r, http.MethodGet, "/api/v1/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "rest@example.com")
}

func TestMeRequiresValidToken(t *testing.T) {
	r := newRouter(t)

	w := do(r, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/api/v1/auth/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHENTICATED")
}
