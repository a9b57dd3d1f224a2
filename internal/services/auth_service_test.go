// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldserve/fieldserve-backend/internal/models"
	"github.com/fieldserve/fieldserve-backend/internal/utils"
)

func TestRegisterCreatesEngineerOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testConfig())

	user, validationErrs, err := svc.Register(RegisterInput{
		Username: "jdoe",
		Email:    "jdoe@fieldserve.local",
		Password: "Password123",
	})
	require.NoError(t, err)
	require.Empty(t, validationErrs)

	// Self-registration never yields a staff account.
	assert.Equal(t, models.UserTypeEngineer, user.UserType)
	assert.True(t, user.IsActive)
	assert.NoError(t, user.CheckPassword("Password123"))
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testConfig())

	_, validationErrs, err := svc.Register(RegisterInput{
		Username: "jdoe",
		Email:    "jdoe@fieldserve.local",
		Password: "password",
	})
	require.NoError(t, err)
	require.NotEmpty(t, validationErrs)
	assert.Equal(t, "password", validationErrs[0].Field)
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testConfig())

	createUser(t, db, "jdoe", models.UserTypeEngineer)

	_, validationErrs, err := svc.Register(RegisterInput{
		Username: "jdoe",
		Email:    "other@fieldserve.local",
		Password: "Password123",
	})
	require.NoError(t, err)
	require.Len(t, validationErrs, 1)
	assert.Equal(t, "username", validationErrs[0].Field)
	assert.Equal(t, "unique", validationErrs[0].Tag)
}

func TestLoginIssuesUsableTokens(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	utils.SetJWTSecret(cfg.JWT.SecretKey)
	svc := NewAuthService(db, cfg)

	user := createUser(t, db, "jdoe", models.UserTypeEngineer)

	tokens, err := svc.Login(LoginInput{Username: "jdoe", Password: "Password123"})
	require.NoError(t, err)
	require.NotNil(t, tokens)

	claims, err := utils.ValidateJWT(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, "jdoe", claims.Username)
	assert.Equal(t, string(models.UserTypeEngineer), claims.UserType)

	var loaded models.User
	require.NoError(t, db.First(&loaded, "id = ?", user.ID).Error)
	assert.NotNil(t, loaded.LastLoginAt)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	utils.SetJWTSecret(cfg.JWT.SecretKey)
	svc := NewAuthService(db, cfg)

	createUser(t, db, "jdoe", models.UserTypeEngineer)

	_, err := svc.Login(LoginInput{Username: "jdoe", Password: "WrongPass1"})
	assert.Error(t, err)

	_, err = svc.Login(LoginInput{Username: "ghost", Password: "Password123"})
	assert.Error(t, err)
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	utils.SetJWTSecret(cfg.JWT.SecretKey)
	svc := NewAuthService(db, cfg)

	user := createUser(t, db, "jdoe", models.UserTypeEngineer)
	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	_, err := svc.Login(LoginInput{Username: "jdoe", Password: "Password123"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
}

func TestRefreshTokenRotation(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	utils.SetJWTSecret(cfg.JWT.SecretKey)
	svc := NewAuthService(db, cfg)

	createUser(t, db, "jdoe", models.UserTypeEngineer)

	tokens, err := svc.Login(LoginInput{Username: "jdoe", Password: "Password123"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.RefreshToken("not-a-token")
	assert.Error(t, err)
}
