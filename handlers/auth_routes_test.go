package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"quiz-learning-system/models"
	"quiz-learning-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.QuizLevel{},
		&models.QuizQuestion{},
		&models.Mission{},
		&models.Achievement{},
		&models.UserQuizProgress{},
		&models.UserMissionProgress{},
		&models.UserAchievementProgress{},
		&models.LevelStreak{},
	))
	return db
}

type stubIdentity struct {
	id          string
	signUpErr   error
	signInErr   error
	updateErr   error
	sessionUser string
	updateCalls int
	signOutRuns int
}

func (s *stubIdentity) SignUp(ctx context.Context, email, password string) (string, error) {
	if s.signUpErr != nil {
		return "", s.signUpErr
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	return s.id, nil
}

func (s *stubIdentity) SignInWithPassword(ctx context.Context, email, password string) (*services.Session, error) {
	if s.signInErr != nil {
		return nil, s.signInErr
	}
	return &services.Session{AccessToken: "session-token", ExpiresIn: 3600}, nil
}

func (s *stubIdentity) ResetPasswordForEmail(ctx context.Context, email string) error { return nil }

func (s *stubIdentity) UpdatePassword(ctx context.Context, accessToken, newPassword string) error {
	s.updateCalls++
	return s.updateErr
}

func (s *stubIdentity) SignOut(ctx context.Context, accessToken string) error {
	s.signOutRuns++
	return nil
}

func (s *stubIdentity) GetUser(ctx context.Context, accessToken string) (string, error) {
	return s.sessionUser, nil
}

func postForm(t *testing.T, app *fiber.App, path string, form url.Values) (int, *url.URL) {
	t.Helper()

	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	return resp.StatusCode, loc
}

func newAuthApp(t *testing.T, identity *stubIdentity) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	app := fiber.New()
	SetupAuthRoutes(app, services.NewBootstrapService(db, identity), identity)
	return app, db
}

func TestSignUpRedirectsHome(t *testing.T) {
	app, db := newAuthApp(t, &stubIdentity{})

	status, loc := postForm(t, app, "/auth/sign-up", url.Values{
		"email":    {"hal@example.com"},
		"username": {"hal"},
		"password": {"pw"},
	})
	assert.Equal(t, fiber.StatusSeeOther, status)
	assert.Equal(t, "/home", loc.Path)
	assert.Empty(t, loc.RawQuery, "success carries no banner")

	var users int64
	db.Model(&models.User{}).Count(&users)
	assert.Equal(t, int64(1), users)
}

func TestSignUpFailureCarriesBanner(t *testing.T) {
	app, _ := newAuthApp(t, &stubIdentity{signUpErr: errors.New("Email address invalid")})

	status, loc := postForm(t, app, "/auth/sign-up", url.Values{
		"email":    {"broken"},
		"username": {"hal"},
		"password": {"pw"},
	})
	assert.Equal(t, fiber.StatusSeeOther, status)
	assert.Equal(t, "/sign-up", loc.Path)
	assert.Equal(t, "Email address invalid", loc.Query().Get("error"))
}

func TestSignUpMissingFields(t *testing.T) {
	identity := &stubIdentity{}
	app, _ := newAuthApp(t, identity)

	_, loc := postForm(t, app, "/auth/sign-up", url.Values{"email": {"x@y.z"}})
	assert.Equal(t, "/sign-up", loc.Path)
	assert.Equal(t, "Email, username and password are required", loc.Query().Get("error"))
}

func TestSignInSetsSessionCookie(t *testing.T) {
	app, _ := newAuthApp(t, &stubIdentity{})

	req := httptest.NewRequest("POST", "/auth/sign-in",
		strings.NewReader(url.Values{"email": {"a@b.c"}, "password": {"pw"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/home", resp.Header.Get("Location"))
	assert.Contains(t, resp.Header.Get("Set-Cookie"), "access_token=session-token")
}

func TestSignInInvalidCredentials(t *testing.T) {
	app, _ := newAuthApp(t, &stubIdentity{signInErr: errors.New("Invalid login credentials")})

	_, loc := postForm(t, app, "/auth/sign-in", url.Values{
		"email": {"a@b.c"}, "password": {"wrong"},
	})
	assert.Equal(t, "/sign-in", loc.Path)
	assert.Equal(t, "Invalid login credentials", loc.Query().Get("error"))
}

func TestResetPasswordMismatchNeverReachesIdentity(t *testing.T) {
	identity := &stubIdentity{}
	app, _ := newAuthApp(t, identity)

	_, loc := postForm(t, app, "/auth/reset-password", url.Values{
		"password":        {"newpw"},
		"confirmPassword": {"different"},
	})
	assert.Equal(t, "/protected/reset-password", loc.Path)
	assert.Equal(t, "Passwords do not match", loc.Query().Get("error"))
	assert.Zero(t, identity.updateCalls, "mismatch must not trigger a credential update")
}

func TestResetPasswordSuccess(t *testing.T) {
	identity := &stubIdentity{}
	app, _ := newAuthApp(t, identity)

	_, loc := postForm(t, app, "/auth/reset-password", url.Values{
		"password":        {"newpw"},
		"confirmPassword": {"newpw"},
	})
	assert.Equal(t, "/protected/reset-password", loc.Path)
	assert.Equal(t, "Password updated", loc.Query().Get("success"))
	assert.Equal(t, 1, identity.updateCalls)
}

func TestForgotPasswordSuccessBanner(t *testing.T) {
	app, _ := newAuthApp(t, &stubIdentity{})

	_, loc := postForm(t, app, "/auth/forgot-password", url.Values{"email": {"a@b.c"}})
	assert.Equal(t, "/forgot-password", loc.Path)
	assert.Equal(t, "Check your email for a link to reset your password.", loc.Query().Get("success"))
}

func TestForgotPasswordCallbackPassthrough(t *testing.T) {
	app, _ := newAuthApp(t, &stubIdentity{})

	_, loc := postForm(t, app, "/auth/forgot-password", url.Values{
		"email":       {"a@b.c"},
		"callbackUrl": {"/somewhere"},
	})
	assert.Equal(t, "/somewhere", loc.Path)
}

func TestSignOutRedirectsToSignIn(t *testing.T) {
	identity := &stubIdentity{}
	app, _ := newAuthApp(t, identity)

	req := httptest.NewRequest("POST", "/auth/sign-out", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/sign-in", resp.Header.Get("Location"))
	assert.Equal(t, 1, identity.signOutRuns)
}
