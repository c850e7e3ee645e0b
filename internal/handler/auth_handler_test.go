package handler_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/prepview/prepview-api/internal/config"
	"github.com/prepview/prepview-api/internal/dto"
	"github.com/prepview/prepview-api/internal/handler"
	"github.com/prepview/prepview-api/internal/middleware"
	"github.com/prepview/prepview-api/internal/models"
	"github.com/prepview/prepview-api/internal/repository"
	"github.com/prepview/prepview-api/internal/router"
	"github.com/prepview/prepview-api/internal/service"
)

func setupAuthApp(t *testing.T, name string) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := testLogger()

	authService := service.NewAuthService(repository.NewUserRepository(db), validate, service.AuthConfig{JWTSecret: "secret"}, logger)
	authHandler := handler.NewAuthHandler(authService, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		AuthHandler:   authHandler,
		JWTMiddleware: middleware.JWTProtected("secret"),
	})

	return app
}

func TestAuthRegisterLoginAndProfile(t *testing.T) {
	app := setupAuthApp(t, "auth_handler_roundtrip")

	registerResp := postJSON(t, app, "/api/auth/register", dto.RegisterRequest{
		Username: "jordan",
		Email:    "jordan@example.com",
		Password: "s3cret-pass",
	})
	require.Equal(t, fiber.StatusCreated, registerResp.StatusCode)

	loginResp := postJSON(t, app, "/api/auth/login", dto.LoginRequest{
		Username: "jordan",
		Password: "s3cret-pass",
	})
	require.Equal(t, fiber.StatusOK, loginResp.StatusCode)

	var login struct {
		Data dto.TokenResponse `json:"data"`
	}
	decode(t, loginResp, &login)
	require.NotEmpty(t, login.Data.AccessToken)
	require.Equal(t, "bearer", login.Data.TokenType)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Data.AccessToken)
	meResp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, meResp.StatusCode)

	var me struct {
		Data dto.UserResponse `json:"data"`
	}
	decode(t, meResp, &me)
	require.Equal(t, "jordan", me.Data.Username)
	require.Equal(t, "jordan@example.com", me.Data.Email)
}

func TestAuthProfileRequiresToken(t *testing.T) {
	app := setupAuthApp(t, "auth_handler_no_token")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthRegisterConflicts(t *testing.T) {
	app := setupAuthApp(t, "auth_handler_conflict")

	payload := dto.RegisterRequest{Username: "casey", Email: "casey@example.com", Password: "s3cret-pass"}
	resp := postJSON(t, app, "/api/auth/register", payload)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = postJSON(t, app, "/api/auth/register", payload)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestAuthLoginRejectsWrongPassword(t *testing.T) {
	app := setupAuthApp(t, "auth_handler_wrong_password")

	resp := postJSON(t, app, "/api/auth/register", dto.RegisterRequest{
		Username: "riley",
		Email:    "riley@example.com",
		Password: "s3cret-pass",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = postJSON(t, app, "/api/auth/login", dto.LoginRequest{Username: "riley", Password: "wrong"})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
