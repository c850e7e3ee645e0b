package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/prepview/prepview-api/internal/dto"
	"github.com/prepview/prepview-api/internal/models"
	"github.com/prepview/prepview-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func setupServiceDB(t *testing.T, name string) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Interview{},
		&models.Question{},
		&models.Answer{},
		&models.Evaluation{},
	))

	return db
}

func newAuthService(t *testing.T, name string) AuthService {
	t.Helper()

	db := setupServiceDB(t, name)
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewAuthService(repository.NewUserRepository(db), validate, AuthConfig{JWTSecret: "test-secret"}, testLogger())
}

func TestAuthRegisterAndLogin(t *testing.T) {
	svc := newAuthService(t, "auth_register_login")

	user, err := svc.Register(context.Background(), dto.RegisterRequest{
		Username: "jordan",
		Email:    "jordan@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.Equal(t, "jordan", user.Username)

	token, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "jordan",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	require.Equal(t, "bearer", token.TokenType)
	require.NotEmpty(t, token.AccessToken)

	parsed, err := jwt.Parse(token.AccessToken, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	require.Equal(t, float64(user.ID), claims["sub"])
	require.Equal(t, "jordan", claims["username"])
}

func TestAuthRegisterRejectsDuplicates(t *testing.T) {
	svc := newAuthService(t, "auth_duplicates")

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Username: "casey",
		Email:    "casey@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), dto.RegisterRequest{
		Username: "casey",
		Email:    "other@example.com",
		Password: "s3cret-pass",
	})
	require.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.Register(context.Background(), dto.RegisterRequest{
		Username: "other",
		Email:    "casey@example.com",
		Password: "s3cret-pass",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthRegisterValidatesPayload(t *testing.T) {
	svc := newAuthService(t, "auth_validation")

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Username: "ab",
		Email:    "not-an-email",
		Password: "short",
	})
	require.Error(t, err)

	var validationErrors validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrors)
}

func TestAuthLoginRejectsBadCredentials(t *testing.T) {
	svc := newAuthService(t, "auth_bad_credentials")

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Username: "riley",
		Email:    "riley@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "riley", Password: "wrong-pass"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "nobody", Password: "wrong-pass"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthCurrentUser(t *testing.T) {
	svc := newAuthService(t, "auth_current_user")

	registered, err := svc.Register(context.Background(), dto.RegisterRequest{
		Username: "sam",
		Email:    "sam@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	user, err := svc.CurrentUser(context.Background(), registered.ID)
	require.NoError(t, err)
	require.Equal(t, "sam@example.com", user.Email)

	_, err = svc.CurrentUser(context.Background(), 9999)
	require.ErrorIs(t, err, ErrUserNotFound)
}
