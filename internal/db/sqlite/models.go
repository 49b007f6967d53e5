package sqlite

import (
	"time"

	"github.com/appvote/portal/internal/models"
)

type contestWeek struct {
	ID          int64      `db:"id"`
	Name        string     `db:"name"`
	Description string     `db:"description"`
	Status      string     `db:"status"`
	StartDate   *time.Time `db:"start_date"`
	EndDate     *time.Time `db:"end_date"`
}

func (w *contestWeek) fromContract(cw models.ContestWeek) {
	w.ID = cw.ID
	w.Name = cw.Name
	w.Description = cw.Description
	w.Status = cw.Status
	w.StartDate = cw.StartDate
	w.EndDate = cw.EndDate
}

func (w *contestWeek) toContract() models.ContestWeek {
	return models.ContestWeek{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		Status:      w.Status,
		StartDate:   w.StartDate,
		EndDate:     w.EndDate,
	}
}

type app struct {
	ID            string    `db:"id"`
	Name          string    `db:"name"`
	Link          string    `db:"link"`
	ImageURL      string    `db:"image_url"`
	UserID        string    `db:"user_id"`
	ContestWeekID *int64    `db:"contest_week_id"`
	CreatedAt     time.Time `db:"created_at"`
}

func (a *app) fromContract(ca models.App) {
	a.ID = ca.ID
	a.Name = ca.Name
	a.Link = ca.Link
	a.ImageURL = ca.ImageURL
	a.UserID = ca.UserID
	a.ContestWeekID = ca.ContestWeekID
	a.CreatedAt = ca.CreatedAt
}

func (a *app) toContract() models.App {
	return models.App{
		ID:            a.ID,
		Name:          a.Name,
		Link:          a.Link,
		ImageURL:      a.ImageURL,
		UserID:        a.UserID,
		ContestWeekID: a.ContestWeekID,
		CreatedAt:     a.CreatedAt,
	}
}

type vote struct {
	UserID        string `db:"user_id"`
	AppID         string `db:"app_id"`
	ContestWeekID *int64 `db:"contest_week_id"`
}

func (v *vote) toContract() models.Vote {
	return models.Vote{
		UserID:        v.UserID,
		AppID:         v.AppID,
		ContestWeekID: v.ContestWeekID,
	}
}

type profile struct {
	ID                 string `db:"id"`
	Username           string `db:"username"`
	RegistrationNumber string `db:"registration_number"`
	Role               string `db:"role"`
}

func (p *profile) fromContract(cp models.Profile) {
	p.ID = cp.ID
	p.Username = cp.Username
	p.RegistrationNumber = cp.RegistrationNumber
	p.Role = cp.Role
}

func (p *profile) toContract() models.Profile {
	return models.Profile{
		ID:                 p.ID,
		Username:           p.Username,
		RegistrationNumber: p.RegistrationNumber,
		Role:               p.Role,
	}
}

type winnerRow struct {
	ID            string    `db:"id"`
	ContestWeekID int64     `db:"contest_week_id"`
	AppID         string    `db:"app_id"`
	Position      int       `db:"position"`
	AppName       string    `db:"app_name"`
	AppLink       string    `db:"app_link"`
	AppImageURL   string    `db:"app_image_url"`
	AppUserID     string    `db:"app_user_id"`
	AppCreatedAt  time.Time `db:"app_created_at"`
	Username      string    `db:"username"`
	RegNumber     string    `db:"registration_number"`
}

func (w *winnerRow) toContract() models.Winner {
	return models.Winner{
		ID:            w.ID,
		ContestWeekID: w.ContestWeekID,
		AppID:         w.AppID,
		Position:      w.Position,
		App: &models.App{
			ID:            w.AppID,
			Name:          w.AppName,
			Link:          w.AppLink,
			ImageURL:      w.AppImageURL,
			UserID:        w.AppUserID,
			ContestWeekID: &w.ContestWeekID,
			CreatedAt:     w.AppCreatedAt,
			Submitter: &models.Profile{
				ID:                 w.AppUserID,
				Username:           w.Username,
				RegistrationNumber: w.RegNumber,
			},
		},
	}
}
