package handlers

import (
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentlink/backend/internal/models"
)

func (suite *HandlersTestSuite) TestFollowUser() {
	follower := suite.createUser("drsmith")
	target := suite.createUser("drjones")

	w := suite.request(http.MethodPost, "/api/v1/users/"+target.ID+"/follow", follower.ID, nil)
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	var edgeCount int64
	suite.db.Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", follower.ID, target.ID).
		Count(&edgeCount)
	assert.Equal(suite.T(), int64(1), edgeCount)

	var reloadedTarget, reloadedFollower models.User
	require.NoError(suite.T(), suite.db.First(&reloadedTarget, "id = ?", target.ID).Error)
	require.NoError(suite.T(), suite.db.First(&reloadedFollower, "id = ?", follower.ID).Error)
	assert.Equal(suite.T(), 1, reloadedTarget.FollowerCount)
	assert.Equal(suite.T(), 1, reloadedFollower.FollowingCount)

	var notifications []models.Notification
	require.NoError(suite.T(), suite.db.Where("user_id = ?", target.ID).Find(&notifications).Error)
	require.Len(suite.T(), notifications, 1)
	assert.Equal(suite.T(), models.NotificationFollow, notifications[0].Type)
}

func (suite *HandlersTestSuite) TestFollowSelfRejected() {
	user := suite.createUser("drsmith")

	w := suite.request(http.MethodPost, "/api/v1/users/"+user.ID+"/follow", user.ID, nil)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestFollowTwiceConflicts() {
	follower := suite.createUser("drsmith")
	target := suite.createUser("drjones")

	w := suite.request(http.MethodPost, "/api/v1/users/"+target.ID+"/follow", follower.ID, nil)
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	w = suite.request(http.MethodPost, "/api/v1/users/"+target.ID+"/follow", follower.ID, nil)
	assert.Equal(suite.T(), http.StatusConflict, w.Code)
}

func (suite *HandlersTestSuite) TestUnfollowUser() {
	follower := suite.createUser("drsmith")
	target := suite.createUser("drjones")

	suite.request(http.MethodPost, "/api/v1/users/"+target.ID+"/follow", follower.ID, nil)

	w := suite.request(http.MethodDelete, "/api/v1/users/"+target.ID+"/follow", follower.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var reloadedTarget models.User
	require.NoError(suite.T(), suite.db.First(&reloadedTarget, "id = ?", target.ID).Error)
	assert.Equal(suite.T(), 0, reloadedTarget.FollowerCount)

	// Unfollowing again is a 404, not a silent success
	w = suite.request(http.MethodDelete, "/api/v1/users/"+target.ID+"/follow", follower.ID, nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestListFollowersAndFollowing() {
	a := suite.createUser("dr_a")
	b := suite.createUser("dr_b")
	c := suite.createUser("dr_c")

	suite.request(http.MethodPost, "/api/v1/users/"+a.ID+"/follow", b.ID, nil)
	suite.request(http.MethodPost, "/api/v1/users/"+a.ID+"/follow", c.ID, nil)
	suite.request(http.MethodPost, "/api/v1/users/"+b.ID+"/follow", a.ID, nil)

	w := suite.request(http.MethodGet, "/api/v1/users/"+a.ID+"/followers", a.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	resp := suite.decode(w)
	assert.Len(suite.T(), resp["users"].([]interface{}), 2)

	w = suite.request(http.MethodGet, "/api/v1/users/"+a.ID+"/following", a.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	resp = suite.decode(w)
	users := resp["users"].([]interface{})
	require.Len(suite.T(), users, 1)
	assert.Equal(suite.T(), "dr_b", users[0].(map[string]interface{})["username"])
}

func (suite *HandlersTestSuite) TestGetUserProfileShowsFollowState() {
	viewer := suite.createUser("drsmith")
	target := suite.createUser("drjones")

	w := suite.request(http.MethodGet, "/api/v1/users/"+target.ID, viewer.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	resp := suite.decode(w)
	assert.Equal(suite.T(), false, resp["is_following"])

	suite.request(http.MethodPost, "/api/v1/users/"+target.ID+"/follow", viewer.ID, nil)

	w = suite.request(http.MethodGet, "/api/v1/users/"+target.ID, viewer.ID, nil)
	resp = suite.decode(w)
	assert.Equal(suite.T(), true, resp["is_following"])
}

func (suite *HandlersTestSuite) TestSearchUsers() {
	suite.createUser("implant_ivan")
	endodontist := suite.createUser("root_canal_rita")
	require.NoError(suite.T(), suite.db.Model(endodontist).
		UpdateColumn("specialty", "endodontics").Error)
	viewer := suite.createUser("drsmith")

	w := suite.request(http.MethodGet, "/api/v1/users/search?q=ivan", viewer.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	resp := suite.decode(w)
	require.Len(suite.T(), resp["users"].([]interface{}), 1)

	w = suite.request(http.MethodGet, "/api/v1/users/search?specialty=endodontics", viewer.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	resp = suite.decode(w)
	users := resp["users"].([]interface{})
	require.Len(suite.T(), users, 1)
	assert.Equal(suite.T(), "root_canal_rita", users[0].(map[string]interface{})["username"])
}

func (suite *HandlersTestSuite) TestUpdateProfile() {
	user := suite.createUser("drsmith")

	w := suite.request(http.MethodPut, "/api/v1/me", user.ID, map[string]interface{}{
		"headline":   "Implantologist at Smile Clinic",
		"specialty":  "implantology",
		"procedures": []string{"implant", "sinus_lift"},
	})
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var reloaded models.User
	require.NoError(suite.T(), suite.db.First(&reloaded, "id = ?", user.ID).Error)
	assert.Equal(suite.T(), "Implantologist at Smile Clinic", reloaded.Headline)
	assert.Equal(suite.T(), "implantology", reloaded.Specialty)
	assert.Equal(suite.T(), models.StringArray{"implant", "sinus_lift"}, reloaded.Procedures)
}
