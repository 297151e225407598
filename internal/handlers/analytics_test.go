package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/task-analytics-api/internal/models"
	"github.com/yukikurage/task-analytics-api/internal/services"
)

type statsResponse struct {
	Score          int `json:"productivity_score"`
	TotalTasks     int `json:"total_tasks"`
	CompletedTasks int `json:"completed_tasks"`
	CompletionRate int `json:"completion_rate"`
	PeriodDays     int `json:"period_days"`
}

func (suite *HandlerTestSuite) completeTask(actor models.User, taskID uint64) {
	status := models.TaskStatusCompleted
	_, err := suite.tasks.UpdateTask(context.Background(), taskID, actor, services.UpdateTaskInput{Status: &status})
	suite.Require().NoError(err)
}

func (suite *HandlerTestSuite) TestGetMyStats() {
	admin := suite.signup("Root", "root@acme.io", true)
	ann := suite.signup("Ann", "ann@acme.io", false)
	done := suite.createTask(*admin, "Done", nil, ann.ID)
	suite.createTask(*admin, "Open", nil, ann.ID)
	suite.completeTask(*ann, done.ID)
	cookies := suite.login(ann.Email)

	w := suite.request(http.MethodGet, "/api/analytics/me", nil, cookies)
	suite.Require().Equal(http.StatusOK, w.Code)

	var stats statsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(suite.T(), 2, stats.TotalTasks)
	assert.Equal(suite.T(), 1, stats.CompletedTasks)
	assert.Equal(suite.T(), 50, stats.CompletionRate)
	assert.Equal(suite.T(), 30, stats.PeriodDays)
	assert.Greater(suite.T(), stats.Score, 0)

	w = suite.request(http.MethodGet, "/api/analytics/me?period_days=7", nil, cookies)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(suite.T(), 7, stats.PeriodDays)
}

func (suite *HandlerTestSuite) TestGetMyStats_EmptyHistory() {
	suite.signup("Ann", "ann@acme.io", false)

	w := suite.request(http.MethodGet, "/api/analytics/me", nil, suite.login("ann@acme.io"))
	suite.Require().Equal(http.StatusOK, w.Code)

	var stats statsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(suite.T(), 0, stats.TotalTasks)
	assert.Equal(suite.T(), 0, stats.Score)
}

func (suite *HandlerTestSuite) TestGetMyStats_InvalidPeriod() {
	suite.signup("Ann", "ann@acme.io", false)
	cookies := suite.login("ann@acme.io")

	for _, q := range []string{"abc", "-3"} {
		w := suite.request(http.MethodGet, "/api/analytics/me?period_days="+q, nil, cookies)
		assert.Equal(suite.T(), http.StatusBadRequest, w.Code, q)
	}
}

func (suite *HandlerTestSuite) TestGetTeamStats() {
	admin := suite.signup("Root", "root@acme.io", true)
	ann := suite.signup("Ann", "ann@acme.io", false)
	bob := suite.signup("Bob", "bob@acme.io", false)
	suite.signup("Zed", "zed@other.io", false)
	done := suite.createTask(*admin, "Done", nil, ann.ID)
	suite.createTask(*admin, "Open", nil, bob.ID)
	suite.completeTask(*ann, done.ID)

	w := suite.request(http.MethodGet, "/api/analytics/team", nil, suite.login(admin.Email))
	suite.Require().Equal(http.StatusOK, w.Code)

	var report struct {
		Members []struct {
			Rank   int    `json:"rank"`
			UserID uint64 `json:"user_id"`
			Stats  struct {
				Score int `json:"productivity_score"`
			} `json:"stats"`
		} `json:"members"`
		MemberCount int `json:"member_count"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &report))
	suite.Require().Equal(2, report.MemberCount)
	suite.Require().Len(report.Members, 2)
	assert.Equal(suite.T(), ann.ID, report.Members[0].UserID)
	assert.Equal(suite.T(), 1, report.Members[0].Rank)
	assert.Equal(suite.T(), bob.ID, report.Members[1].UserID)
	assert.GreaterOrEqual(suite.T(), report.Members[0].Stats.Score, report.Members[1].Stats.Score)
}

func (suite *HandlerTestSuite) TestGetTeamStats_AdminOnly() {
	suite.signup("Ann", "ann@acme.io", false)

	w := suite.request(http.MethodGet, "/api/analytics/team", nil, suite.login("ann@acme.io"))
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}
