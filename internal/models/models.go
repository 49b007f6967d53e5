package models

import "time"

type VersionInfo struct {
	// example: v1.0.0
	Version string `json:"version"`
}

// ContestWeek statuses.  Exactly one week may be StatusActive at a time.
const (
	StatusUpcoming  = "upcoming"
	StatusActive    = "active"
	StatusEnded     = "ended"
	StatusCompleted = "completed"
)

// ValidStatus reports whether s is one of the four contest week statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusUpcoming, StatusActive, StatusEnded, StatusCompleted:
		return true
	}
	return false
}

// Roles assigned to profiles and carried in JWT claims.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// MaxVotesPerWeek is the number of concurrent votes a user may hold
// within one contest week.
const MaxVotesPerWeek = 5

// Winner positions run 1..MaxWinnerPositions.
const MaxWinnerPositions = 3

type ContestWeek struct {
	// example: 1
	ID int64 `json:"id"`
	// example: Week 1
	Name        string `json:"name"`
	Description string `json:"description"`
	// example: upcoming
	Status    string     `json:"status"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

type App struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Link     string `json:"link"`
	ImageURL string `json:"image_url"`
	UserID   string `json:"user_id"`
	// Nil when the contest schema was absent at submission time.
	ContestWeekID *int64    `json:"contest_week_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	Submitter     *Profile  `json:"submitter,omitempty"`
}

type Vote struct {
	UserID        string `json:"user_id"`
	AppID         string `json:"app_id"`
	ContestWeekID *int64 `json:"contest_week_id,omitempty"`
}

type Winner struct {
	ID            string `json:"id"`
	ContestWeekID int64  `json:"contest_week_id"`
	AppID         string `json:"app_id"`
	// example: 1
	Position int  `json:"position"`
	App      *App `json:"app,omitempty"`
}

// VoteTotal is a per-app tally for one contest week.
type VoteTotal struct {
	AppID   string `json:"app_id"`
	AppName string `json:"app_name"`
	Votes   int    `json:"votes"`
}

type Profile struct {
	ID                 string `json:"id"`
	Username           string `json:"username"`
	RegistrationNumber string `json:"registration_number,omitempty"`
	// example: user
	Role string `json:"role"`
}

/* Information stored in the jwt credentials for a user, allowing
various properties/permissions to be determined without grabbing
their Profile model from the database.

The semantics here are that a handler function can always grab a UserToken
from a Context (but it may be the "zero" UserToken) and no UserToken methods
access the database.  The zero UserToken represents a request without credentials (anonymous user).
*/
type UserToken struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	// example: admin
	Role string `json:"role"`
}

func (u UserToken) LoggedIn() bool {
	return u.ID != ""
}

// IsAdmin is the single authorization predicate used by every
// admin-only operation.
func (u UserToken) IsAdmin() bool {
	return u.Role == RoleAdmin
}
