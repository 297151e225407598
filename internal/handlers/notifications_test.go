package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/task-analytics-api/internal/dto"
	"github.com/yukikurage/task-analytics-api/internal/models"
)

func (suite *HandlerTestSuite) inbox(cookies []*http.Cookie, query string) dto.NotificationListResponse {
	w := suite.request(http.MethodGet, "/api/notifications"+query, nil, cookies)
	suite.Require().Equal(http.StatusOK, w.Code)

	var resp dto.NotificationListResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (suite *HandlerTestSuite) TestNotifications_ListAndMarkRead() {
	admin := suite.signup("Root", "root@acme.io", true)
	ann := suite.signup("Ann", "ann@acme.io", false)
	suite.createTask(*admin, "First", nil, ann.ID)
	suite.createTask(*admin, "Second", nil, ann.ID)
	suite.createTask(*admin, "Third", nil, ann.ID)
	cookies := suite.login(ann.Email)

	inbox := suite.inbox(cookies, "")
	suite.Require().Len(inbox.Notifications, 3)
	assert.Equal(suite.T(), int64(3), inbox.UnreadCount)
	assert.Equal(suite.T(), int64(3), inbox.Pagination.Total)
	assert.Equal(suite.T(), models.NotificationTaskAssigned, inbox.Notifications[0].Type)

	page := suite.inbox(cookies, "?page=2&limit=2")
	assert.Len(suite.T(), page.Notifications, 1)
	assert.Equal(suite.T(), 2, page.Pagination.TotalPages)

	id := strconv.FormatUint(inbox.Notifications[0].ID, 10)
	w := suite.request(http.MethodPatch, "/api/notifications/"+id+"/read", nil, cookies)
	suite.Require().Equal(http.StatusOK, w.Code)
	assert.Equal(suite.T(), int64(2), suite.inbox(cookies, "").UnreadCount)

	w = suite.request(http.MethodPost, "/api/notifications/read-all", nil, cookies)
	suite.Require().Equal(http.StatusOK, w.Code)

	var body struct {
		Updated int64 `json:"updated"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(suite.T(), int64(2), body.Updated)
	assert.Equal(suite.T(), int64(0), suite.inbox(cookies, "").UnreadCount)
}

func (suite *HandlerTestSuite) TestNotifications_MarkReadOwnership() {
	admin := suite.signup("Root", "root@acme.io", true)
	ann := suite.signup("Ann", "ann@acme.io", false)
	suite.signup("Bob", "bob@acme.io", false)
	suite.createTask(*admin, "First", nil, ann.ID)

	inbox := suite.inbox(suite.login(ann.Email), "")
	suite.Require().Len(inbox.Notifications, 1)
	id := strconv.FormatUint(inbox.Notifications[0].ID, 10)

	w := suite.request(http.MethodPatch, "/api/notifications/"+id+"/read", nil, suite.login("bob@acme.io"))
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	w = suite.request(http.MethodPatch, "/api/notifications/abc/read", nil, suite.login("bob@acme.io"))
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}
