package app

import (
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/appvote/portal/internal/errors"
	"github.com/appvote/portal/internal/models"
)

func TestSubmitApp(t *testing.T) {
	input := models.App{Name: "Pomodoro Pal", Link: "https://example.com/pomodoro"}

	t.Run("Stamps id, submitter, and current week", func(t *testing.T) {
		myMock := stateDb([]models.ContestWeek{weekActive}, nil)
		myMock.On("AddApp", mock.MatchedBy(func(a models.App) bool {
			return a.ID != "" && a.UserID == userToken.ID &&
				a.ContestWeekID != nil && *a.ContestWeekID == weekActive.ID
		})).Return(models.App{ID: "created"}, nil).Once()

		cs := initService(t, myMock)

		created, err := cs.SubmitApp(userToken, input)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if created.ID != "created" {
			t.Errorf("Expected the stored app back, got %v", created)
		}

		myMock.AssertExpectations(t)
	})

	t.Run("Closed outside active week", func(t *testing.T) {
		myMock := stateDb([]models.ContestWeek{weekUpcoming, weekEnded}, nil)
		cs := initService(t, myMock)

		_, err := cs.SubmitApp(userToken, input)
		if errors.Kind(err) != errors.KindBadRequest {
			t.Errorf("Expected KindBadRequest, got %v", errors.Kind(err))
		}

		myMock.AssertNotCalled(t, "AddApp", mock.Anything)
	})

	t.Run("Missing fields", func(t *testing.T) {
		myMock := stateDb([]models.ContestWeek{weekActive}, nil)
		cs := initService(t, myMock)

		_, err := cs.SubmitApp(userToken, models.App{Name: "No Link"})
		if errors.Kind(err) != errors.KindBadRequest {
			t.Errorf("Expected KindBadRequest, got %v", errors.Kind(err))
		}
	})

	t.Run("Anonymous", func(t *testing.T) {
		myMock := stateDb([]models.ContestWeek{weekActive}, nil)
		cs := initService(t, myMock)

		_, err := cs.SubmitApp(models.UserToken{}, input)
		if errors.Kind(err) != errors.KindUnauthenticated {
			t.Errorf("Expected KindUnauthenticated, got %v", errors.Kind(err))
		}
	})
}

func TestListApps(t *testing.T) {
	weekID := int64(2)
	testApps := []models.App{
		{ID: "a1", Name: "Pomodoro Pal", ContestWeekID: &weekID},
		{ID: "a2", Name: "Recipe Radar", ContestWeekID: &weekID},
	}

	myMock := stateDb([]models.ContestWeek{weekActive}, nil)
	myMock.On("GetApps", mock.AnythingOfType("[]db.Filter"), mock.AnythingOfType("db.Sort")).Return(testApps, nil).Once()

	cs := initService(t, myMock)

	apps, err := cs.ListApps(NewOptions().ForWeek(weekID))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(apps) != len(testApps) {
		t.Errorf("Expected %d apps, got %d", len(testApps), len(apps))
	}

	myMock.AssertExpectations(t)
}
