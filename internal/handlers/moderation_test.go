package handlers

import (
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentlink/backend/internal/models"
)

func (suite *HandlersTestSuite) TestCreateReport() {
	author := suite.createUser("drsmith")
	reporter := suite.createUser("drjones")
	clinicalCase := suite.createCase(author.ID, "Questionable case", true)

	w := suite.request(http.MethodPost, "/api/v1/reports", reporter.ID, map[string]interface{}{
		"target_type": "case",
		"target_id":   clinicalCase.ID,
		"reason":      "patient_privacy",
		"description": "Patient face visible without masking",
	})

	require.Equal(suite.T(), http.StatusCreated, w.Code)
	resp := suite.decode(w)
	report := resp["report"].(map[string]interface{})
	assert.Equal(suite.T(), "pending", report["status"])
	assert.Equal(suite.T(), author.ID, report["target_user_id"])
}

func (suite *HandlersTestSuite) TestCreateReportUnknownReason() {
	author := suite.createUser("drsmith")
	reporter := suite.createUser("drjones")
	clinicalCase := suite.createCase(author.ID, "Fine case", true)

	w := suite.request(http.MethodPost, "/api/v1/reports", reporter.ID, map[string]interface{}{
		"target_type": "case",
		"target_id":   clinicalCase.ID,
		"reason":      "i_just_dislike_it",
	})
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
}

func (suite *HandlersTestSuite) TestCreateReportMissingTarget() {
	reporter := suite.createUser("drjones")

	w := suite.request(http.MethodPost, "/api/v1/reports", reporter.ID, map[string]interface{}{
		"target_type": "case",
		"target_id":   "no-such-case",
		"reason":      "spam",
	})
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
}

func (suite *HandlersTestSuite) TestListReportsAdminOnly() {
	user := suite.createUser("drsmith")
	admin := suite.createAdmin("mod")

	w := suite.request(http.MethodGet, "/api/v1/admin/reports", user.ID, nil)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	w = suite.request(http.MethodGet, "/api/v1/admin/reports", admin.ID, nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *HandlersTestSuite) TestResolveReportNotifiesTarget() {
	author := suite.createUser("drsmith")
	reporter := suite.createUser("drjones")
	admin := suite.createAdmin("mod")
	clinicalCase := suite.createCase(author.ID, "Reported case", true)

	w := suite.request(http.MethodPost, "/api/v1/reports", reporter.ID, map[string]interface{}{
		"target_type": "case",
		"target_id":   clinicalCase.ID,
		"reason":      "patient_privacy",
	})
	require.Equal(suite.T(), http.StatusCreated, w.Code)
	reportID := suite.decode(w)["report"].(map[string]interface{})["id"].(string)

	w = suite.request(http.MethodPut, "/api/v1/admin/reports/"+reportID, admin.ID, map[string]interface{}{
		"status":       "resolved",
		"action_taken": "case hidden pending consent documentation",
	})
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var report models.Report
	require.NoError(suite.T(), suite.db.First(&report, "id = ?", reportID).Error)
	assert.Equal(suite.T(), models.ReportStatusResolved, report.Status)
	require.NotNil(suite.T(), report.ModeratorID)
	assert.Equal(suite.T(), admin.ID, *report.ModeratorID)

	var notifications []models.Notification
	require.NoError(suite.T(), suite.db.
		Where("user_id = ? AND type = ?", author.ID, models.NotificationModeration).
		Find(&notifications).Error)
	assert.Len(suite.T(), notifications, 1)
}

func (suite *HandlersTestSuite) TestNotificationLifecycle() {
	author := suite.createUser("drsmith")
	actor := suite.createUser("drjones")
	clinicalCase := suite.createCase(author.ID, "Case", true)

	suite.request(http.MethodPost, "/api/v1/cases/"+clinicalCase.ID+"/save", actor.ID, nil)
	suite.request(http.MethodPost, "/api/v1/users/"+author.ID+"/follow", actor.ID, nil)

	w := suite.request(http.MethodGet, "/api/v1/notifications/unread-count", author.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), float64(2), suite.decode(w)["unread_count"])

	w = suite.request(http.MethodGet, "/api/v1/notifications?unread=true", author.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	notifications := suite.decode(w)["notifications"].([]interface{})
	require.Len(suite.T(), notifications, 2)
	firstID := notifications[0].(map[string]interface{})["id"].(string)

	w = suite.request(http.MethodPost, "/api/v1/notifications/"+firstID+"/read", author.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.request(http.MethodGet, "/api/v1/notifications/unread-count", author.ID, nil)
	assert.Equal(suite.T(), float64(1), suite.decode(w)["unread_count"])

	w = suite.request(http.MethodPost, "/api/v1/notifications/read-all", author.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.request(http.MethodGet, "/api/v1/notifications/unread-count", author.ID, nil)
	assert.Equal(suite.T(), float64(0), suite.decode(w)["unread_count"])
}

func (suite *HandlersTestSuite) TestNotificationsScopedToRecipient() {
	author := suite.createUser("drsmith")
	actor := suite.createUser("drjones")
	clinicalCase := suite.createCase(author.ID, "Case", true)

	suite.request(http.MethodPost, "/api/v1/cases/"+clinicalCase.ID+"/save", actor.ID, nil)

	// The actor cannot see or mark the author's notifications
	w := suite.request(http.MethodGet, "/api/v1/notifications", actor.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Empty(suite.T(), suite.decode(w)["notifications"])

	var notification models.Notification
	require.NoError(suite.T(), suite.db.First(&notification, "user_id = ?", author.ID).Error)

	w = suite.request(http.MethodPost, "/api/v1/notifications/"+notification.ID+"/read", actor.ID, nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}
