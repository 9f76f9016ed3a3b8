package handlers

import (
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentlink/backend/internal/models"
)

func (suite *HandlersTestSuite) TestRegisterAndLogin() {
	w := suite.request(http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"email":        "drsmith@example.com",
		"username":     "drsmith",
		"display_name": "Dr. Smith",
		"password":     "correct-horse-battery",
		"credential":   "DDS",
		"specialty":    "orthodontics",
	})
	require.Equal(suite.T(), http.StatusCreated, w.Code)
	resp := suite.decode(w)
	assert.NotEmpty(suite.T(), resp["token"])

	w = suite.request(http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    "drsmith@example.com",
		"password": "correct-horse-battery",
	})
	require.Equal(suite.T(), http.StatusOK, w.Code)
	resp = suite.decode(w)
	assert.NotEmpty(suite.T(), resp["token"])
}

func (suite *HandlersTestSuite) TestRegisterDuplicateEmail() {
	body := map[string]interface{}{
		"email":        "drsmith@example.com",
		"username":     "drsmith",
		"display_name": "Dr. Smith",
		"password":     "correct-horse-battery",
	}
	w := suite.request(http.MethodPost, "/api/v1/auth/register", "", body)
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	body["username"] = "drsmith2"
	w = suite.request(http.MethodPost, "/api/v1/auth/register", "", body)
	assert.Equal(suite.T(), http.StatusConflict, w.Code)
}

func (suite *HandlersTestSuite) TestLoginWrongPassword() {
	suite.request(http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"email":        "drsmith@example.com",
		"username":     "drsmith",
		"display_name": "Dr. Smith",
		"password":     "correct-horse-battery",
	})

	w := suite.request(http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    "drsmith@example.com",
		"password": "wrong-password",
	})
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *HandlersTestSuite) TestPasswordResetFlow() {
	suite.request(http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"email":        "drsmith@example.com",
		"username":     "drsmith",
		"display_name": "Dr. Smith",
		"password":     "correct-horse-battery",
	})

	w := suite.request(http.MethodPost, "/api/v1/auth/password-reset", "", map[string]interface{}{
		"email": "drsmith@example.com",
	})
	require.Equal(suite.T(), http.StatusAccepted, w.Code)

	var reset models.PasswordReset
	require.NoError(suite.T(), suite.db.First(&reset).Error)
	require.NotEmpty(suite.T(), reset.Token)

	w = suite.request(http.MethodPost, "/api/v1/auth/password-reset/confirm", "", map[string]interface{}{
		"token":        reset.Token,
		"new_password": "new-horse-battery",
	})
	require.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.request(http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    "drsmith@example.com",
		"password": "correct-horse-battery",
	})
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)

	w = suite.request(http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    "drsmith@example.com",
		"password": "new-horse-battery",
	})
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *HandlersTestSuite) TestPasswordResetUnknownEmail() {
	w := suite.request(http.MethodPost, "/api/v1/auth/password-reset", "", map[string]interface{}{
		"email": "nobody@example.com",
	})
	assert.Equal(suite.T(), http.StatusAccepted, w.Code)

	var count int64
	require.NoError(suite.T(), suite.db.Model(&models.PasswordReset{}).Count(&count).Error)
	assert.Zero(suite.T(), count)
}

func (suite *HandlersTestSuite) TestPasswordResetTokenSingleUse() {
	suite.request(http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"email":        "drsmith@example.com",
		"username":     "drsmith",
		"display_name": "Dr. Smith",
		"password":     "correct-horse-battery",
	})
	suite.request(http.MethodPost, "/api/v1/auth/password-reset", "", map[string]interface{}{
		"email": "drsmith@example.com",
	})

	var reset models.PasswordReset
	require.NoError(suite.T(), suite.db.First(&reset).Error)

	w := suite.request(http.MethodPost, "/api/v1/auth/password-reset/confirm", "", map[string]interface{}{
		"token":        reset.Token,
		"new_password": "new-horse-battery",
	})
	require.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.request(http.MethodPost, "/api/v1/auth/password-reset/confirm", "", map[string]interface{}{
		"token":        reset.Token,
		"new_password": "another-password",
	})
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
}

func (suite *HandlersTestSuite) TestPasswordResetBadToken() {
	w := suite.request(http.MethodPost, "/api/v1/auth/password-reset/confirm", "", map[string]interface{}{
		"token":        "not-a-real-token",
		"new_password": "new-horse-battery",
	})
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
}

func (suite *HandlersTestSuite) TestGetMeRequiresAuth() {
	w := suite.request(http.MethodGet, "/api/v1/me", "", nil)
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}
