package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/appvote/portal/internal/db"
	"github.com/appvote/portal/internal/db/mocks"
	"github.com/appvote/portal/internal/errors"
	"github.com/appvote/portal/internal/models"
)

var testStart = time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
var testEnd = time.Date(2026, time.March, 8, 0, 0, 0, 0, time.UTC)
var laterEndDate = time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

var weekUpcoming = models.ContestWeek{ID: 1, Name: "Week 1", Status: models.StatusUpcoming}
var weekActive = models.ContestWeek{ID: 2, Name: "Week 2", Status: models.StatusActive, StartDate: &testStart}
var weekEnded = models.ContestWeek{ID: 3, Name: "Week 3", Status: models.StatusEnded, EndDate: &testEnd}

var adminToken = models.UserToken{ID: "admin-id", Nickname: "porter", Role: models.RoleAdmin}
var userToken = models.UserToken{ID: "user-id", Nickname: "dev", Role: models.RoleUser}

func notifications() chan db.Notification {
	return make(chan db.Notification, 4)
}

func stateDb(weeks []models.ContestWeek, winners []models.Winner) *mocks.Client {
	myMock := &mocks.Client{}
	myMock.On("GetContestWeeks").Return(weeks, nil)
	myMock.On("GetWinners").Return(winners, nil)
	myMock.On("Subscribe", mock.Anything).Return((<-chan db.Notification)(notifications()), nil)
	return myMock
}

func initService(t *testing.T, myMock *mocks.Client) *ContestService {
	t.Helper()

	cs := NewContestService(myMock)
	if err := cs.Initialize(context.Background()); err != nil {
		t.Fatalf("initializing contest service: %v", err)
	}
	return cs
}

func TestDeriveCurrentWeek(t *testing.T) {
	endedEarly := models.ContestWeek{ID: 1, Status: models.StatusEnded, EndDate: &testEnd}
	completedLate := models.ContestWeek{ID: 2, Status: models.StatusCompleted, EndDate: &laterEndDate}

	tests := []struct {
		name     string
		weeks    []models.ContestWeek
		expected *models.ContestWeek
	}{
		{
			name:     "No weeks",
			weeks:    nil,
			expected: nil,
		},
		{
			name:     "Active week wins",
			weeks:    []models.ContestWeek{weekUpcoming, weekActive, weekEnded},
			expected: &weekActive,
		},
		{
			name:     "Earliest upcoming when nothing active",
			weeks:    []models.ContestWeek{endedEarly, completedLate, {ID: 3, Status: models.StatusUpcoming}, {ID: 4, Status: models.StatusUpcoming}},
			expected: &models.ContestWeek{ID: 3, Status: models.StatusUpcoming},
		},
		{
			name:     "Most recently ended when contest is over",
			weeks:    []models.ContestWeek{endedEarly, completedLate},
			expected: &completedLate,
		},
		{
			name:     "Later end date beats lower id ordering",
			weeks:    []models.ContestWeek{{ID: 1, Status: models.StatusEnded, EndDate: &laterEndDate}, {ID: 2, Status: models.StatusEnded, EndDate: &testEnd}},
			expected: &models.ContestWeek{ID: 1, Status: models.StatusEnded, EndDate: &laterEndDate},
		},
		{
			name:     "First week as last resort",
			weeks:    []models.ContestWeek{{ID: 7, Status: "unknown"}, {ID: 8, Status: "unknown"}},
			expected: &models.ContestWeek{ID: 7, Status: "unknown"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := deriveCurrentWeek(test.weeks)

			if (got == nil) != (test.expected == nil) {
				t.Fatalf("Expected %v, got %v", test.expected, got)
			}

			if got != nil && got.ID != test.expected.ID {
				t.Errorf("Expected week %d, got %d", test.expected.ID, got.ID)
			}
		})
	}
}

func TestSelectWinnerGuards(t *testing.T) {
	tests := []struct {
		name         string
		user         models.UserToken
		weekID       int64
		position     int
		expectedKind errors.Code
	}{
		{
			name:         "Anonymous",
			user:         models.UserToken{},
			weekID:       3,
			position:     1,
			expectedKind: errors.KindUnauthenticated,
		},
		{
			name:         "Non-admin",
			user:         userToken,
			weekID:       3,
			position:     1,
			expectedKind: errors.KindUnauthorized,
		},
		{
			name:         "Position zero",
			user:         adminToken,
			weekID:       3,
			position:     0,
			expectedKind: errors.KindBadRequest,
		},
		{
			name:         "Position above maximum",
			user:         adminToken,
			weekID:       3,
			position:     4,
			expectedKind: errors.KindBadRequest,
		},
		{
			name:         "Unknown week",
			user:         adminToken,
			weekID:       42,
			position:     1,
			expectedKind: errors.KindNotFound,
		},
		{
			name:         "Upcoming week",
			user:         adminToken,
			weekID:       1,
			position:     1,
			expectedKind: errors.KindBadRequest,
		},
		{
			name:         "Active week",
			user:         adminToken,
			weekID:       2,
			position:     1,
			expectedKind: errors.KindBadRequest,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			myMock := stateDb([]models.ContestWeek{weekUpcoming, weekActive, weekEnded}, nil)
			cs := initService(t, myMock)

			err := cs.SelectWinner(test.user, test.weekID, "app-1", test.position)
			if err == nil {
				t.Fatal("Expected error and didn't get one")
			}

			if errors.Kind(err) != test.expectedKind {
				t.Errorf("Expected kind %v, got %v", test.expectedKind, errors.Kind(err))
			}

			myMock.AssertNotCalled(t, "AddWinner", mock.Anything)
			myMock.AssertNotCalled(t, "UpdateWinnerApp", mock.Anything, mock.Anything)
			myMock.AssertNotCalled(t, "UpdateWeekStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSelectWinnerInsertsNewPosition(t *testing.T) {
	myMock := stateDb([]models.ContestWeek{weekEnded}, nil)
	myMock.On("AddWinner", mock.AnythingOfType("models.Winner")).Return(models.Winner{}, nil).Once()

	cs := initService(t, myMock)

	if err := cs.SelectWinner(adminToken, 3, "app-1", 1); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	myMock.AssertExpectations(t)
	myMock.AssertNotCalled(t, "UpdateWinnerApp", mock.Anything, mock.Anything)
	myMock.AssertNotCalled(t, "CountWinners", mock.Anything)
}

func TestSelectWinnerReplacesExisting(t *testing.T) {
	existing := models.Winner{ID: "w-1", ContestWeekID: 3, AppID: "app-1", Position: 1}

	myMock := stateDb([]models.ContestWeek{weekEnded}, []models.Winner{existing})
	myMock.On("UpdateWinnerApp", "w-1", "app-2").Return(nil).Once()

	cs := initService(t, myMock)

	if err := cs.SelectWinner(adminToken, 3, "app-2", 1); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	myMock.AssertExpectations(t)
	myMock.AssertNotCalled(t, "AddWinner", mock.Anything)
}

func TestSelectWinnerCompletesWeek(t *testing.T) {
	held := []models.Winner{
		{ID: "w-1", ContestWeekID: 3, AppID: "app-1", Position: 1},
		{ID: "w-2", ContestWeekID: 3, AppID: "app-2", Position: 2},
	}

	myMock := stateDb([]models.ContestWeek{weekEnded}, held)
	myMock.On("AddWinner", mock.AnythingOfType("models.Winner")).Return(models.Winner{}, nil).Once()
	myMock.On("CountWinners", int64(3)).Return(models.MaxWinnerPositions, nil).Once()
	myMock.On("UpdateWeekStatus", int64(3), models.StatusCompleted, (*time.Time)(nil), mock.AnythingOfType("*time.Time")).Return(nil).Once()

	cs := initService(t, myMock)

	if err := cs.SelectWinner(adminToken, 3, "app-3", 3); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	myMock.AssertExpectations(t)
}

// Filling positions one and two never triggers the completion check;
// only a write to the last position does.
func TestSelectWinnerNoCompletionBeforeLastPosition(t *testing.T) {
	held := []models.Winner{
		{ID: "w-2", ContestWeekID: 3, AppID: "app-2", Position: 2},
		{ID: "w-3", ContestWeekID: 3, AppID: "app-3", Position: 3},
	}

	myMock := stateDb([]models.ContestWeek{weekEnded}, held)
	myMock.On("AddWinner", mock.AnythingOfType("models.Winner")).Return(models.Winner{}, nil).Once()

	cs := initService(t, myMock)

	if err := cs.SelectWinner(adminToken, 3, "app-1", 1); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	myMock.AssertNotCalled(t, "CountWinners", mock.Anything)
	myMock.AssertNotCalled(t, "UpdateWeekStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSelectWinnerIncompleteOnLastPosition(t *testing.T) {
	myMock := stateDb([]models.ContestWeek{weekEnded}, nil)
	myMock.On("AddWinner", mock.AnythingOfType("models.Winner")).Return(models.Winner{}, nil).Once()
	myMock.On("CountWinners", int64(3)).Return(1, nil).Once()

	cs := initService(t, myMock)

	if err := cs.SelectWinner(adminToken, 3, "app-3", 3); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	myMock.AssertExpectations(t)
	myMock.AssertNotCalled(t, "UpdateWeekStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateContestStatus(t *testing.T) {
	t.Run("Activation is delegated to the transactional path", func(t *testing.T) {
		myMock := stateDb([]models.ContestWeek{weekUpcoming, weekActive}, nil)
		myMock.On("ActivateWeek", int64(1), mock.AnythingOfType("time.Time")).Return(nil).Once()

		cs := initService(t, myMock)

		if err := cs.UpdateContestStatus(adminToken, 1, models.StatusActive); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		myMock.AssertExpectations(t)
		myMock.AssertNotCalled(t, "UpdateWeekStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Ending stamps the end date", func(t *testing.T) {
		myMock := stateDb([]models.ContestWeek{weekActive}, nil)
		myMock.On("UpdateWeekStatus", int64(2), models.StatusEnded, (*time.Time)(nil), mock.MatchedBy(func(d *time.Time) bool {
			return d != nil
		})).Return(nil).Once()

		cs := initService(t, myMock)

		if err := cs.UpdateContestStatus(adminToken, 2, models.StatusEnded); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		myMock.AssertExpectations(t)
	})

	t.Run("Invalid status", func(t *testing.T) {
		myMock := stateDb([]models.ContestWeek{weekActive}, nil)
		cs := initService(t, myMock)

		err := cs.UpdateContestStatus(adminToken, 2, "paused")
		if errors.Kind(err) != errors.KindBadRequest {
			t.Errorf("Expected KindBadRequest, got %v", errors.Kind(err))
		}
	})

	t.Run("Non-admin", func(t *testing.T) {
		myMock := stateDb([]models.ContestWeek{weekActive}, nil)
		cs := initService(t, myMock)

		err := cs.UpdateContestStatus(userToken, 2, models.StatusEnded)
		if errors.Kind(err) != errors.KindUnauthorized {
			t.Errorf("Expected KindUnauthorized, got %v", errors.Kind(err))
		}

		myMock.AssertNotCalled(t, "UpdateWeekStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSwitchWeekIsViewOnly(t *testing.T) {
	myMock := stateDb([]models.ContestWeek{weekUpcoming, weekActive, weekEnded}, nil)
	cs := initService(t, myMock)

	if !cs.SwitchWeek(3) {
		t.Fatal("Expected SwitchWeek to find week 3")
	}

	if got := cs.SelectedWeek(); got == nil || got.ID != 3 {
		t.Errorf("Expected selected week 3, got %v", got)
	}

	// The authoritative current week and the eligibility gates are
	// unaffected by the display selection.
	if got := cs.CurrentWeek(); got == nil || got.ID != 2 {
		t.Errorf("Expected current week 2, got %v", got)
	}

	if !cs.CanVote() || !cs.CanSubmitApps() {
		t.Error("Eligibility should still follow the active current week")
	}

	if cs.SwitchWeek(99) {
		t.Error("Expected SwitchWeek to reject an unknown week")
	}
}

func TestSelectedWeekFallsBackToCurrent(t *testing.T) {
	myMock := stateDb([]models.ContestWeek{weekActive}, nil)
	cs := initService(t, myMock)

	if got := cs.SelectedWeek(); got == nil || got.ID != weekActive.ID {
		t.Errorf("Expected fallback to current week %d, got %v", weekActive.ID, got)
	}
}

func TestReadinessGating(t *testing.T) {
	myMock := &mocks.Client{}
	myMock.On("GetContestWeeks").Return(nil, errors.E(errors.KindSchemaAbsent))
	myMock.On("GetWinners").Return(nil, errors.E(errors.KindSchemaAbsent))
	myMock.On("Subscribe", mock.Anything).Return((<-chan db.Notification)(notifications()), nil)

	cs := initService(t, myMock)

	if cs.HasValidContestStructure() {
		t.Error("Expected contest structure to be reported absent")
	}

	if cs.CanSubmitApps() || cs.CanVote() {
		t.Error("Submissions and voting must be closed without the contest schema")
	}

	if cs.CurrentWeek() != nil {
		t.Error("Expected no current week without the contest schema")
	}

	if cs.Loading() {
		t.Error("Initialization finished; loading should be false")
	}

	// The missing schema is a downgrade, not a seed trigger.
	myMock.AssertNotCalled(t, "AddContestWeeks", mock.Anything)
}

func TestWatchReloadsOnNotification(t *testing.T) {
	events := notifications()

	myMock := &mocks.Client{}
	myMock.On("GetContestWeeks").Return([]models.ContestWeek{weekUpcoming, weekActive}, nil).Once()
	myMock.On("GetContestWeeks").Return([]models.ContestWeek{weekUpcoming, weekEnded}, nil)
	myMock.On("GetWinners").Return(nil, nil)
	myMock.On("Subscribe", mock.Anything).Return((<-chan db.Notification)(events), nil)

	cs := initService(t, myMock)

	if got := cs.CurrentWeek(); got == nil || got.ID != 2 {
		t.Fatalf("Expected current week 2 before notification, got %v", got)
	}

	events <- db.Notification{Table: db.TableContestWeeks}

	deadline := time.After(2 * time.Second)
	for {
		if got := cs.CurrentWeek(); got != nil && got.ID == 1 {
			break
		}

		select {
		case <-deadline:
			t.Fatal("Timed out waiting for notification-driven reload")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestVotingClosesWhenWeeksDisappear(t *testing.T) {
	myMock := &mocks.Client{}
	myMock.On("GetContestWeeks").Return([]models.ContestWeek{weekActive}, nil).Once()
	myMock.On("GetContestWeeks").Return([]models.ContestWeek{}, nil)
	myMock.On("GetWinners").Return(nil, nil)
	myMock.On("Subscribe", mock.Anything).Return((<-chan db.Notification)(notifications()), nil)

	cs := initService(t, myMock)

	// An admin emptied the weeks table; the next reload leaves the
	// store ready but with no current week.
	if err := cs.reloadWeeks(); err != nil {
		t.Fatalf("Unexpected reload error: %v", err)
	}

	err := cs.AddVote(userToken, "app-1")
	if errors.Kind(err) != errors.KindBadRequest {
		t.Errorf("Expected KindBadRequest adding a vote with no current week, got %v", errors.Kind(err))
	}

	_, err = cs.SubmitApp(userToken, models.App{Name: "Flicker", Link: "https://example.com/flicker"})
	if errors.Kind(err) != errors.KindBadRequest {
		t.Errorf("Expected KindBadRequest submitting with no current week, got %v", errors.Kind(err))
	}

	myMock.AssertNotCalled(t, "AddVote", mock.Anything)
	myMock.AssertNotCalled(t, "AddApp", mock.Anything)
	myMock.AssertNotCalled(t, "GetVotesByUser", mock.Anything, mock.Anything)
}

func TestEligibilityHoldsDuringReload(t *testing.T) {
	weekID := int64(2)
	myMock := &mocks.Client{}

	// Initialization consumes the first snapshot; the churn loop below
	// then alternates between an open week and no weeks at all.
	const flips = 200
	myMock.On("GetContestWeeks").Return([]models.ContestWeek{weekActive}, nil).Once()
	for i := 0; i < flips; i++ {
		myMock.On("GetContestWeeks").Return([]models.ContestWeek{}, nil).Once()
		myMock.On("GetContestWeeks").Return([]models.ContestWeek{weekActive}, nil).Once()
	}
	myMock.On("GetContestWeeks").Return([]models.ContestWeek{weekActive}, nil)
	myMock.On("GetWinners").Return(nil, nil)
	myMock.On("Subscribe", mock.Anything).Return((<-chan db.Notification)(notifications()), nil)

	// Any write that slips through while the snapshot is empty would
	// carry the wrong week id and miss these expectations.
	myMock.On("GetVotesByUser", userToken.ID, weekID).Return(nil, nil)
	myMock.On("AddVote", models.Vote{UserID: userToken.ID, AppID: "app-1", ContestWeekID: &weekID}).Return(nil)
	myMock.On("AddApp", mock.MatchedBy(func(a models.App) bool {
		return a.ContestWeekID != nil && *a.ContestWeekID == weekID
	})).Return(models.App{}, nil)

	cs := initService(t, myMock)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 2*flips; i++ {
			_ = cs.reloadWeeks()
		}
	}()

	submission := models.App{Name: "Flicker", Link: "https://example.com/flicker"}
	for i := 0; ; i++ {
		select {
		case <-done:
			return
		default:
		}

		var err error
		if i%2 == 0 {
			err = cs.AddVote(userToken, "app-1")
		} else {
			_, err = cs.SubmitApp(userToken, submission)
		}

		// Closed-window rejections are expected; anything else means a
		// torn read between the eligibility check and the week.
		if err != nil && errors.Kind(err) != errors.KindBadRequest {
			t.Fatalf("Unexpected error during snapshot churn: %v", err)
		}
	}
}
