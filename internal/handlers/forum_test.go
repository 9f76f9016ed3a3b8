package handlers

import (
	"net/http"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentlink/backend/internal/models"
)

func (suite *HandlersTestSuite) TestCreateThread() {
	author := suite.createUser("drsmith")

	w := suite.request(http.MethodPost, "/api/v1/forum/threads", author.ID, map[string]interface{}{
		"title":    "Best cement for zirconia crowns?",
		"body":     "Looking for recommendations on resin cements.",
		"category": "clinical",
	})

	require.Equal(suite.T(), http.StatusCreated, w.Code)
	resp := suite.decode(w)
	thread := resp["thread"].(map[string]interface{})
	assert.Equal(suite.T(), "clinical", thread["category"])
	assert.NotEmpty(suite.T(), thread["last_activity_at"])
}

func (suite *HandlersTestSuite) TestCreateReplyBumpsThread() {
	author := suite.createUser("drsmith")
	replier := suite.createUser("drjones")
	thread := suite.createThread(author.ID, "Cement question")

	// Age the thread so the bump is observable
	staleTime := time.Now().UTC().Add(-time.Hour)
	require.NoError(suite.T(), suite.db.Model(thread).
		UpdateColumn("last_activity_at", staleTime).Error)

	w := suite.request(http.MethodPost, "/api/v1/forum/threads/"+thread.ID+"/replies", replier.ID,
		map[string]interface{}{"body": "RelyX works well for me."})
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	var reloaded models.ForumThread
	require.NoError(suite.T(), suite.db.First(&reloaded, "id = ?", thread.ID).Error)
	assert.Equal(suite.T(), 1, reloaded.RepliesCount)
	assert.True(suite.T(), reloaded.LastActivityAt.After(staleTime))

	// The thread author is notified
	var notifications []models.Notification
	require.NoError(suite.T(), suite.db.Where("user_id = ?", author.ID).Find(&notifications).Error)
	require.Len(suite.T(), notifications, 1)
	assert.Equal(suite.T(), models.NotificationReply, notifications[0].Type)
}

func (suite *HandlersTestSuite) TestCreateReplyLockedThread() {
	author := suite.createUser("drsmith")
	replier := suite.createUser("drjones")
	thread := suite.createThread(author.ID, "Locked thread")
	require.NoError(suite.T(), suite.db.Model(thread).UpdateColumn("is_locked", true).Error)

	w := suite.request(http.MethodPost, "/api/v1/forum/threads/"+thread.ID+"/replies", replier.ID,
		map[string]interface{}{"body": "Too late."})
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *HandlersTestSuite) TestReplyNestingFlattened() {
	author := suite.createUser("drsmith")
	thread := suite.createThread(author.ID, "Nesting thread")

	w := suite.request(http.MethodPost, "/api/v1/forum/threads/"+thread.ID+"/replies", author.ID,
		map[string]interface{}{"body": "top level"})
	require.Equal(suite.T(), http.StatusCreated, w.Code)
	topID := suite.decode(w)["reply"].(map[string]interface{})["id"].(string)

	w = suite.request(http.MethodPost, "/api/v1/forum/threads/"+thread.ID+"/replies", author.ID,
		map[string]interface{}{"body": "child", "parent_id": topID})
	require.Equal(suite.T(), http.StatusCreated, w.Code)
	childID := suite.decode(w)["reply"].(map[string]interface{})["id"].(string)

	// A reply to the child is re-parented onto the top-level reply
	w = suite.request(http.MethodPost, "/api/v1/forum/threads/"+thread.ID+"/replies", author.ID,
		map[string]interface{}{"body": "grandchild", "parent_id": childID})
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	grandchild := suite.decode(w)["reply"].(map[string]interface{})
	assert.Equal(suite.T(), topID, grandchild["parent_id"])
}

func (suite *HandlersTestSuite) TestListThreadsPinnedFirst() {
	author := suite.createUser("drsmith")
	suite.createThread(author.ID, "Ordinary thread")
	pinned := suite.createThread(author.ID, "Pinned thread")
	require.NoError(suite.T(), suite.db.Model(pinned).UpdateColumn("is_pinned", true).Error)

	w := suite.request(http.MethodGet, "/api/v1/forum/threads", author.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	resp := suite.decode(w)
	threads := resp["threads"].([]interface{})
	require.Len(suite.T(), threads, 2)
	assert.Equal(suite.T(), "Pinned thread", threads[0].(map[string]interface{})["title"])
}

func (suite *HandlersTestSuite) TestDeleteReplySoftRemoves() {
	author := suite.createUser("drsmith")
	thread := suite.createThread(author.ID, "Thread")

	w := suite.request(http.MethodPost, "/api/v1/forum/threads/"+thread.ID+"/replies", author.ID,
		map[string]interface{}{"body": "regrettable take"})
	require.Equal(suite.T(), http.StatusCreated, w.Code)
	replyID := suite.decode(w)["reply"].(map[string]interface{})["id"].(string)

	w = suite.request(http.MethodDelete, "/api/v1/forum/replies/"+replyID, author.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	// The reply row survives but its content is gone from listings
	w = suite.request(http.MethodGet, "/api/v1/forum/threads/"+thread.ID+"/replies", author.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	replies := suite.decode(w)["replies"].([]interface{})
	require.Len(suite.T(), replies, 1)
	reply := replies[0].(map[string]interface{})
	assert.Equal(suite.T(), true, reply["is_deleted"])
	assert.Equal(suite.T(), "", reply["body"])
}

func (suite *HandlersTestSuite) TestDeleteReplyRequiresAuthorOrAdmin() {
	author := suite.createUser("drsmith")
	stranger := suite.createUser("drjones")
	admin := suite.createAdmin("mod")
	thread := suite.createThread(author.ID, "Thread")

	w := suite.request(http.MethodPost, "/api/v1/forum/threads/"+thread.ID+"/replies", author.ID,
		map[string]interface{}{"body": "hello"})
	require.Equal(suite.T(), http.StatusCreated, w.Code)
	replyID := suite.decode(w)["reply"].(map[string]interface{})["id"].(string)

	w = suite.request(http.MethodDelete, "/api/v1/forum/replies/"+replyID, stranger.ID, nil)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	w = suite.request(http.MethodDelete, "/api/v1/forum/replies/"+replyID, admin.ID, nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}
