package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"taskhub/internal/model"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func newGuardedEcho(jwtService *JWTService, userRepo *MockUserRepository) *echo.Echo {
	e := echo.New()
	tasks := e.Group("/tasks", VerifyCredential(jwtService), BindIdentity(userRepo))
	tasks.GET("", func(c echo.Context) error {
		ident, ok := IdentityFromContext(c)
		if !ok {
			return c.String(http.StatusInternalServerError, "identity not bound")
		}
		return c.String(http.StatusOK, ident.Username)
	})
	return e
}

func doRequest(e *echo.Echo, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestGuard_MissingCredential(t *testing.T) {
	jwtService := NewJWTService("test-secret", time.Hour)
	userRepo := new(MockUserRepository)
	e := newGuardedEcho(jwtService, userRepo)

	rec := doRequest(e, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "MISSING_CREDENTIAL")
	userRepo.AssertNotCalled(t, "FindByID")
}

func TestGuard_MalformedCredential(t *testing.T) {
	jwtService := NewJWTService("test-secret", time.Hour)
	userRepo := new(MockUserRepository)
	e := newGuardedEcho(jwtService, userRepo)

	rec := doRequest(e, "Bearer not-a-token")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "MALFORMED_CREDENTIAL")
	userRepo.AssertNotCalled(t, "FindByID")
}

func TestGuard_BadSignature(t *testing.T) {
	issuer := NewJWTService("other-secret", time.Hour)
	verifier := NewJWTService("test-secret", time.Hour)
	userRepo := new(MockUserRepository)
	e := newGuardedEcho(verifier, userRepo)

	token, err := issuer.GenerateToken(uuid.New(), "alice")
	assert.NoError(t, err)

	rec := doRequest(e, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "MALFORMED_CREDENTIAL")
	userRepo.AssertNotCalled(t, "FindByID")
}

func TestGuard_ExpiredCredentialNeverReachesStore(t *testing.T) {
	issuer := &JWTService{secret: []byte("test-secret"), ttl: -time.Minute}
	verifier := NewJWTService("test-secret", time.Hour)
	userRepo := new(MockUserRepository)
	e := newGuardedEcho(verifier, userRepo)

	token, err := issuer.GenerateToken(uuid.New(), "alice")
	assert.NoError(t, err)

	rec := doRequest(e, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "EXPIRED_CREDENTIAL")
	userRepo.AssertNotCalled(t, "FindByID")
}

func TestGuard_UnknownIdentity(t *testing.T) {
	jwtService := NewJWTService("test-secret", time.Hour)
	userRepo := new(MockUserRepository)
	userID := uuid.New()
	userRepo.On("FindByID", mock.Anything, userID).Return(nil, gorm.ErrRecordNotFound)
	e := newGuardedEcho(jwtService, userRepo)

	token, err := jwtService.GenerateToken(userID, "ghost")
	assert.NoError(t, err)

	rec := doRequest(e, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNKNOWN_IDENTITY")
	userRepo.AssertExpectations(t)
}

func TestGuard_BindsIdentity(t *testing.T) {
	jwtService := NewJWTService("test-secret", time.Hour)
	userRepo := new(MockUserRepository)
	userID := uuid.New()
	userRepo.On("FindByID", mock.Anything, userID).Return(&model.User{ID: userID, Username: "alice"}, nil)
	e := newGuardedEcho(jwtService, userRepo)

	token, err := jwtService.GenerateToken(userID, "alice")
	assert.NoError(t, err)

	rec := doRequest(e, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())
	userRepo.AssertExpectations(t)
}
