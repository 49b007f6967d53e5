// Package mocks provides a testify mock of db.Client for handler and
// service tests.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/appvote/portal/internal/db"
	"github.com/appvote/portal/internal/models"
)

type Client struct {
	mock.Mock
}

func (m *Client) GetContestWeeks() ([]models.ContestWeek, error) {
	ret := m.Called()

	var r0 []models.ContestWeek
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.ContestWeek)
	}

	return r0, ret.Error(1)
}

func (m *Client) GetContestWeek(id int64) (models.ContestWeek, error) {
	ret := m.Called(id)
	return ret.Get(0).(models.ContestWeek), ret.Error(1)
}

func (m *Client) AddContestWeeks(weeks []models.ContestWeek) error {
	ret := m.Called(weeks)
	return ret.Error(0)
}

func (m *Client) UpdateWeekStatus(id int64, status string, startDate, endDate *time.Time) error {
	ret := m.Called(id, status, startDate, endDate)
	return ret.Error(0)
}

func (m *Client) ActivateWeek(id int64, now time.Time) error {
	ret := m.Called(id, now)
	return ret.Error(0)
}

func (m *Client) GetWinners() ([]models.Winner, error) {
	ret := m.Called()

	var r0 []models.Winner
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.Winner)
	}

	return r0, ret.Error(1)
}

func (m *Client) AddWinner(winner models.Winner) (models.Winner, error) {
	ret := m.Called(winner)
	return ret.Get(0).(models.Winner), ret.Error(1)
}

func (m *Client) UpdateWinnerApp(id string, appID string) error {
	ret := m.Called(id, appID)
	return ret.Error(0)
}

func (m *Client) CountWinners(weekID int64) (int, error) {
	ret := m.Called(weekID)
	return ret.Int(0), ret.Error(1)
}

func (m *Client) AddApp(newApp models.App) (models.App, error) {
	ret := m.Called(newApp)
	return ret.Get(0).(models.App), ret.Error(1)
}

func (m *Client) GetApps(filter []db.Filter, sort db.Sort) ([]models.App, error) {
	ret := m.Called(filter, sort)

	var r0 []models.App
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.App)
	}

	return r0, ret.Error(1)
}

func (m *Client) GetAppsByWeek(weekID int64) ([]models.App, error) {
	ret := m.Called(weekID)

	var r0 []models.App
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.App)
	}

	return r0, ret.Error(1)
}

func (m *Client) AddVote(vote models.Vote) error {
	ret := m.Called(vote)
	return ret.Error(0)
}

func (m *Client) DeleteVote(userID, appID string) error {
	ret := m.Called(userID, appID)
	return ret.Error(0)
}

func (m *Client) GetVotesByUser(userID string, weekID int64) ([]models.Vote, error) {
	ret := m.Called(userID, weekID)

	var r0 []models.Vote
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.Vote)
	}

	return r0, ret.Error(1)
}

func (m *Client) GetVoteCounts(weekID int64) (map[string]int, error) {
	ret := m.Called(weekID)

	var r0 map[string]int
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(map[string]int)
	}

	return r0, ret.Error(1)
}

func (m *Client) AddProfile(profile models.Profile) (models.Profile, error) {
	ret := m.Called(profile)
	return ret.Get(0).(models.Profile), ret.Error(1)
}

func (m *Client) GetProfile(id string) (models.Profile, error) {
	ret := m.Called(id)
	return ret.Get(0).(models.Profile), ret.Error(1)
}

func (m *Client) ProbeContestSchema() error {
	ret := m.Called()
	return ret.Error(0)
}

func (m *Client) CreateContestSchema() error {
	ret := m.Called()
	return ret.Error(0)
}

func (m *Client) Subscribe(ctx context.Context) (<-chan db.Notification, error) {
	ret := m.Called(ctx)

	var r0 <-chan db.Notification
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(<-chan db.Notification)
	}

	return r0, ret.Error(1)
}
