package handlers

import (
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentlink/backend/internal/models"
)

func (suite *HandlersTestSuite) TestGetFeedReturnsVisibleContent() {
	viewer := suite.createUser("drsmith")
	author := suite.createUser("drjones")
	suite.createCase(author.ID, "Consented case", true)
	suite.createCase(author.ID, "Draft case", false)
	suite.createThread(author.ID, "Open question")

	w := suite.request(http.MethodGet, "/api/v1/feed", viewer.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	resp := suite.decode(w)
	items := resp["items"].([]interface{})
	require.Len(suite.T(), items, 3) // case + thread + one suggested professional

	meta := resp["meta"].(map[string]interface{})
	assert.Equal(suite.T(), "all", meta["filter"])
	assert.Equal(suite.T(), "latest", meta["sort"])
}

func (suite *HandlersTestSuite) TestGetFeedRejectsUnknownFilter() {
	viewer := suite.createUser("drsmith")

	w := suite.request(http.MethodGet, "/api/v1/feed?filter=bogus", viewer.ID, nil)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestGetFeedRejectsNonIntegerPaging() {
	viewer := suite.createUser("drsmith")

	w := suite.request(http.MethodGet, "/api/v1/feed?limit=abc", viewer.ID, nil)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodGet, "/api/v1/feed?offset=xyz", viewer.ID, nil)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestGetFeedUsesSavedPreferences() {
	viewer := suite.createUser("drsmith")
	author := suite.createUser("drjones")
	suite.createCase(author.ID, "Consented case", true)
	suite.createThread(author.ID, "Open question")

	w := suite.request(http.MethodPut, "/api/v1/feed/preferences", viewer.ID, map[string]interface{}{
		"default_filter": "cases",
		"default_sort":   "trending",
	})
	require.Equal(suite.T(), http.StatusOK, w.Code)

	// Without query params the saved defaults apply
	w = suite.request(http.MethodGet, "/api/v1/feed", viewer.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	resp := suite.decode(w)
	meta := resp["meta"].(map[string]interface{})
	assert.Equal(suite.T(), "cases", meta["filter"])
	assert.Equal(suite.T(), "trending", meta["sort"])
	items := resp["items"].([]interface{})
	require.Len(suite.T(), items, 1)
	assert.Equal(suite.T(), "case", items[0].(map[string]interface{})["type"])

	// Explicit query params still win over the defaults
	w = suite.request(http.MethodGet, "/api/v1/feed?filter=threads", viewer.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	resp = suite.decode(w)
	assert.Equal(suite.T(), "threads", resp["meta"].(map[string]interface{})["filter"])
}

func (suite *HandlersTestSuite) TestUpdateFeedPreferencesRejectsUnknownValues() {
	viewer := suite.createUser("drsmith")

	w := suite.request(http.MethodPut, "/api/v1/feed/preferences", viewer.ID, map[string]interface{}{
		"default_sort": "chronological",
	})
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
}

func (suite *HandlersTestSuite) TestGetFeedSidebar() {
	viewer := suite.createUser("drsmith")
	author := suite.createUser("drjones")
	suite.createCase(author.ID, "Consented case", true)
	suite.createThread(author.ID, "Discussion")

	w := suite.request(http.MethodGet, "/api/v1/feed/sidebar", viewer.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	resp := suite.decode(w)
	assert.Contains(suite.T(), resp, "suggested_professionals")
	assert.Contains(suite.T(), resp, "trending_procedures")
	assert.Contains(suite.T(), resp, "active_discussions")
	assert.Contains(suite.T(), resp, "recent_clinic_activity")

	suggested := resp["suggested_professionals"].([]interface{})
	require.Len(suite.T(), suggested, 1)
	assert.Equal(suite.T(), "drjones", suggested[0].(map[string]interface{})["username"])
}

func (suite *HandlersTestSuite) TestGetFeedMyNetworkEmpty() {
	viewer := suite.createUser("drsmith")
	author := suite.createUser("drjones")
	suite.createCase(author.ID, "Consented case", true)

	w := suite.request(http.MethodGet, "/api/v1/feed?sort=my_network", viewer.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	resp := suite.decode(w)
	assert.Empty(suite.T(), resp["items"])
}

func (suite *HandlersTestSuite) TestGetFeedMyNetworkScoped() {
	viewer := suite.createUser("drsmith")
	followed := suite.createUser("drjones")
	other := suite.createUser("drbrown")
	suite.createCase(followed.ID, "Followed case", true)
	suite.createCase(other.ID, "Stranger case", true)

	require.NoError(suite.T(), suite.db.Create(&models.Follow{
		FollowerID: viewer.ID, FollowingID: followed.ID,
	}).Error)

	w := suite.request(http.MethodGet, "/api/v1/feed?sort=my_network&filter=cases", viewer.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	resp := suite.decode(w)
	items := resp["items"].([]interface{})
	require.Len(suite.T(), items, 1)
	payload := items[0].(map[string]interface{})["payload"].(map[string]interface{})
	assert.Equal(suite.T(), "Followed case", payload["title"])
}
