package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/task-analytics-api/internal/reminder"
)

func (suite *HandlerTestSuite) triggerScan() reminder.ScanResult {
	admin := suite.login("root@acme.io")
	w := suite.request(http.MethodPost, "/api/reminders/trigger", nil, admin)
	suite.Require().Equal(http.StatusOK, w.Code)

	var result reminder.ScanResult
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &result))
	return result
}

func (suite *HandlerTestSuite) TestTriggerScan_RemindsOnce() {
	admin := suite.signup("Root", "root@acme.io", true)
	ann := suite.signup("Ann", "ann@acme.io", false)
	bob := suite.signup("Bob", "bob@acme.io", false)
	soon := time.Now().UTC().Add(2 * time.Hour)
	later := time.Now().UTC().Add(72 * time.Hour)
	suite.createTask(*admin, "Soon", &soon, ann.ID, bob.ID)
	suite.createTask(*admin, "Later", &later, ann.ID)

	first := suite.triggerScan()
	assert.NotEmpty(suite.T(), first.RunID)
	assert.Equal(suite.T(), 1, first.TasksScanned)
	assert.Equal(suite.T(), 1, first.TasksProcessed)
	assert.Equal(suite.T(), 2, first.EmailsSent)
	assert.Equal(suite.T(), 2, suite.mailer.count())

	second := suite.triggerScan()
	assert.Equal(suite.T(), 0, second.TasksScanned)
	assert.Equal(suite.T(), 0, second.TasksProcessed)
	assert.Equal(suite.T(), 2, suite.mailer.count())
}

func (suite *HandlerTestSuite) TestTriggerScan_RetriesAfterFailedDelivery() {
	admin := suite.signup("Root", "root@acme.io", true)
	ann := suite.signup("Ann", "ann@acme.io", false)
	soon := time.Now().UTC().Add(time.Hour)
	suite.createTask(*admin, "Soon", &soon, ann.ID)

	suite.mailer.fail = true
	failed := suite.triggerScan()
	assert.Equal(suite.T(), 1, failed.TasksScanned)
	assert.Equal(suite.T(), 0, failed.TasksProcessed)
	assert.Equal(suite.T(), 1, failed.EmailsFailed)

	suite.mailer.fail = false
	retried := suite.triggerScan()
	assert.Equal(suite.T(), 1, retried.TasksProcessed)
	assert.Equal(suite.T(), 1, suite.mailer.count())
}

func (suite *HandlerTestSuite) TestTriggerScan_AdminOnly() {
	suite.signup("Ann", "ann@acme.io", false)

	w := suite.request(http.MethodPost, "/api/reminders/trigger", nil, suite.login("ann@acme.io"))
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}
