package handlers

import (
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentlink/backend/internal/models"
)

func (suite *HandlersTestSuite) TestCreateCase() {
	author := suite.createUser("drsmith")

	w := suite.request(http.MethodPost, "/api/v1/cases", author.ID, map[string]interface{}{
		"title":           "Molar implant with sinus lift",
		"description":     "Single implant placement in the upper left quadrant",
		"procedure_type":  "implant",
		"tooth_notation":  "26",
		"materials":       []string{"titanium", "bio-oss"},
		"duration_weeks":  16,
		"patient_consent": true,
	})

	require.Equal(suite.T(), http.StatusCreated, w.Code)
	resp := suite.decode(w)
	created := resp["case"].(map[string]interface{})
	assert.Equal(suite.T(), "Molar implant with sinus lift", created["title"])
	assert.Equal(suite.T(), author.ID, created["author_id"])
	assert.Equal(suite.T(), true, created["patient_consent"])

	// Author counter is bumped
	var user models.User
	require.NoError(suite.T(), suite.db.First(&user, "id = ?", author.ID).Error)
	assert.Equal(suite.T(), 1, user.CaseCount)
}

func (suite *HandlersTestSuite) TestCreateCaseRequiresTitle() {
	author := suite.createUser("drsmith")

	w := suite.request(http.MethodPost, "/api/v1/cases", author.ID, map[string]interface{}{
		"procedure_type": "implant",
	})

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestGetCaseHiddenWithoutConsent() {
	author := suite.createUser("drsmith")
	viewer := suite.createUser("drjones")
	unconsented := suite.createCase(author.ID, "No consent yet", false)

	// Other users get a 404, never a hint that the case exists
	w := suite.request(http.MethodGet, "/api/v1/cases/"+unconsented.ID, viewer.ID, nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	// The author still sees their own draft
	w = suite.request(http.MethodGet, "/api/v1/cases/"+unconsented.ID, author.ID, nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *HandlersTestSuite) TestGetCaseIncrementsViews() {
	author := suite.createUser("drsmith")
	viewer := suite.createUser("drjones")
	clinicalCase := suite.createCase(author.ID, "Veneer case", true)

	w := suite.request(http.MethodGet, "/api/v1/cases/"+clinicalCase.ID, viewer.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	// The counter is updated off the request path
	landed := suite.waitForAsyncCounter(func() bool {
		var reloaded models.Case
		if err := suite.db.First(&reloaded, "id = ?", clinicalCase.ID).Error; err != nil {
			return false
		}
		return reloaded.ViewsCount == 1
	})
	assert.True(suite.T(), landed, "view count was never incremented")
}

func (suite *HandlersTestSuite) TestListCasesFiltersUnconsented() {
	author := suite.createUser("drsmith")
	viewer := suite.createUser("drjones")
	suite.createCase(author.ID, "Visible case", true)
	suite.createCase(author.ID, "Hidden case", false)

	w := suite.request(http.MethodGet, "/api/v1/cases", viewer.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	resp := suite.decode(w)
	cases := resp["cases"].([]interface{})
	require.Len(suite.T(), cases, 1)
	assert.Equal(suite.T(), "Visible case", cases[0].(map[string]interface{})["title"])
}

func (suite *HandlersTestSuite) TestListCasesOwnAuthorSeesDrafts() {
	author := suite.createUser("drsmith")
	suite.createCase(author.ID, "Visible case", true)
	suite.createCase(author.ID, "Hidden case", false)

	w := suite.request(http.MethodGet, "/api/v1/cases?author_id="+author.ID, author.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	resp := suite.decode(w)
	assert.Len(suite.T(), resp["cases"].([]interface{}), 2)
}

func (suite *HandlersTestSuite) TestUpdateCaseOnlyAuthor() {
	author := suite.createUser("drsmith")
	other := suite.createUser("drjones")
	clinicalCase := suite.createCase(author.ID, "Original title", true)

	w := suite.request(http.MethodPut, "/api/v1/cases/"+clinicalCase.ID, other.ID, map[string]interface{}{
		"title": "Hijacked title",
	})
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	w = suite.request(http.MethodPut, "/api/v1/cases/"+clinicalCase.ID, author.ID, map[string]interface{}{
		"title": "Updated title",
	})
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var reloaded models.Case
	require.NoError(suite.T(), suite.db.First(&reloaded, "id = ?", clinicalCase.ID).Error)
	assert.Equal(suite.T(), "Updated title", reloaded.Title)
}

func (suite *HandlersTestSuite) TestSaveCase() {
	author := suite.createUser("drsmith")
	saver := suite.createUser("drjones")
	clinicalCase := suite.createCase(author.ID, "Saveable case", true)

	w := suite.request(http.MethodPost, "/api/v1/cases/"+clinicalCase.ID+"/save", saver.ID, nil)
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	var reloaded models.Case
	require.NoError(suite.T(), suite.db.First(&reloaded, "id = ?", clinicalCase.ID).Error)
	assert.Equal(suite.T(), 1, reloaded.SavesCount)

	// The author hears about the save
	var notifications []models.Notification
	require.NoError(suite.T(), suite.db.Where("user_id = ?", author.ID).Find(&notifications).Error)
	require.Len(suite.T(), notifications, 1)
	assert.Equal(suite.T(), models.NotificationCaseSave, notifications[0].Type)
	assert.Equal(suite.T(), saver.ID, notifications[0].ActorID)
}

func (suite *HandlersTestSuite) TestSaveCaseTwiceConflicts() {
	author := suite.createUser("drsmith")
	saver := suite.createUser("drjones")
	clinicalCase := suite.createCase(author.ID, "Saveable case", true)

	w := suite.request(http.MethodPost, "/api/v1/cases/"+clinicalCase.ID+"/save", saver.ID, nil)
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	w = suite.request(http.MethodPost, "/api/v1/cases/"+clinicalCase.ID+"/save", saver.ID, nil)
	assert.Equal(suite.T(), http.StatusConflict, w.Code)
}

func (suite *HandlersTestSuite) TestUnsaveCase() {
	author := suite.createUser("drsmith")
	saver := suite.createUser("drjones")
	clinicalCase := suite.createCase(author.ID, "Saveable case", true)

	suite.request(http.MethodPost, "/api/v1/cases/"+clinicalCase.ID+"/save", saver.ID, nil)

	w := suite.request(http.MethodDelete, "/api/v1/cases/"+clinicalCase.ID+"/save", saver.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.request(http.MethodDelete, "/api/v1/cases/"+clinicalCase.ID+"/save", saver.ID, nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestListSavedCases() {
	author := suite.createUser("drsmith")
	saver := suite.createUser("drjones")
	first := suite.createCase(author.ID, "First case", true)
	second := suite.createCase(author.ID, "Second case", true)

	suite.request(http.MethodPost, "/api/v1/cases/"+first.ID+"/save", saver.ID, nil)
	suite.request(http.MethodPost, "/api/v1/cases/"+second.ID+"/save", saver.ID, nil)

	w := suite.request(http.MethodGet, "/api/v1/me/saved-cases", saver.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	resp := suite.decode(w)
	assert.Len(suite.T(), resp["saved_cases"].([]interface{}), 2)
}

func (suite *HandlersTestSuite) TestDeleteCase() {
	author := suite.createUser("drsmith")
	clinicalCase := suite.createCase(author.ID, "Doomed case", true)

	w := suite.request(http.MethodDelete, "/api/v1/cases/"+clinicalCase.ID, author.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.request(http.MethodGet, "/api/v1/cases/"+clinicalCase.ID, author.ID, nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestAttachCaseImage() {
	author := suite.createUser("drsmith")
	other := suite.createUser("drjones")
	clinicalCase := suite.createCase(author.ID, "Gallery case", true)

	w := suite.request(http.MethodPost, "/api/v1/cases/"+clinicalCase.ID+"/images", other.ID, map[string]interface{}{
		"url": "https://cdn.example.com/cases/1.jpg",
	})
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	w = suite.request(http.MethodPost, "/api/v1/cases/"+clinicalCase.ID+"/images", author.ID, map[string]interface{}{
		"url":     "https://cdn.example.com/cases/1.jpg",
		"caption": "Post-op radiograph",
	})
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	w = suite.request(http.MethodGet, "/api/v1/cases/"+clinicalCase.ID, author.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	resp := suite.decode(w)
	caseBody := resp["case"].(map[string]interface{})
	images := caseBody["images"].([]interface{})
	require.Len(suite.T(), images, 1)
	assert.Equal(suite.T(), "Post-op radiograph", images[0].(map[string]interface{})["caption"])
}
