package db

import (
	"context"
	"time"

	"github.com/appvote/portal/internal/models"
)

// Client is the store surface consumed by the contest service.  Any
// relational backend satisfies it; errors carry a machine-checkable
// Kind so callers can distinguish "relation does not exist"
// (errors.KindSchemaAbsent) from generic failures.
type Client interface {
	// Contest weeks, ordered by id ascending.  A missing contest_weeks
	// relation is reported as KindSchemaAbsent.
	GetContestWeeks() ([]models.ContestWeek, error)
	GetContestWeek(id int64) (models.ContestWeek, error)
	AddContestWeeks(weeks []models.ContestWeek) error
	UpdateWeekStatus(id int64, status string, startDate, endDate *time.Time) error

	// ActivateWeek transitions week id to active and any other active
	// week to ended in a single transaction, stamping start_date on the
	// target and end_date on the displaced week.
	ActivateWeek(id int64, now time.Time) error

	// Winners, joined with their app and the app's submitter profile,
	// ordered by position ascending.
	GetWinners() ([]models.Winner, error)
	AddWinner(winner models.Winner) (models.Winner, error)
	UpdateWinnerApp(id string, appID string) error
	CountWinners(weekID int64) (int, error)

	AddApp(newApp models.App) (app models.App, err error)
	GetApps(filter []Filter, sort Sort) ([]models.App, error)
	GetAppsByWeek(weekID int64) ([]models.App, error)

	AddVote(vote models.Vote) error
	DeleteVote(userID, appID string) error
	GetVotesByUser(userID string, weekID int64) ([]models.Vote, error)
	GetVoteCounts(weekID int64) (map[string]int, error)

	AddProfile(profile models.Profile) (models.Profile, error)
	GetProfile(id string) (models.Profile, error)

	// ProbeContestSchema performs a bounded read against each contest
	// table and returns KindSchemaAbsent if any is missing.
	ProbeContestSchema() error

	// CreateContestSchema applies the contest DDL.  Diagnostic use only;
	// never called from the normal startup path.
	CreateContestSchema() error

	// Subscribe emits a Notification for every insert/update/delete on
	// the contest tables until ctx is cancelled.
	Subscribe(ctx context.Context) (<-chan Notification, error)
}

// Notification reports a row change on a watched table.
type Notification struct {
	Table string
}

// Watched table names carried in Notifications.
const (
	TableContestWeeks   = "contest_weeks"
	TableContestWinners = "contest_winners"
	TableApps           = "apps"
	TableVotes          = "votes"
)

type Filter struct {
	Field    string
	Operator string
	Value    interface{}
}

type Sort struct {
	Field string
	Asc   bool
}
