package postgres

import (
	"fmt"
	"strings"

	"github.com/appvote/portal/internal/db"
	"github.com/appvote/portal/internal/errors"
	"github.com/appvote/portal/internal/models"
)

// Columns that Filter/Sort options may reference on the apps table.
var appColumns = map[string]string{
	"Name":          "name",
	"UserID":        "user_id",
	"ContestWeekID": "contest_week_id",
	"CreatedAt":     "created_at",
}

const appSelect = "SELECT id, name, link, image_url, user_id, contest_week_id, created_at FROM apps"

func (c *Client) AddApp(newApp models.App) (models.App, error) {
	const op errors.Op = "postgres.AddApp"
	var a app
	a.fromContract(newApp)

	err := c.db.Get(&a, `INSERT INTO apps (id, name, link, image_url, user_id, contest_week_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, link, image_url, user_id, contest_week_id, created_at`,
		a.ID, a.Name, a.Link, a.ImageURL, a.UserID, a.ContestWeekID)
	if err != nil {
		return models.App{}, errors.E(op, err, "error inserting app", kindOf(err))
	}

	return a.toContract(), nil
}

func (c *Client) GetApps(filter []db.Filter, sort db.Sort) ([]models.App, error) {
	const op errors.Op = "postgres.GetApps"

	query := appSelect
	args := make([]interface{}, 0, len(filter))
	clauses := make([]string, 0, len(filter))

	for _, f := range filter {
		col, ok := appColumns[f.Field]
		if !ok {
			return nil, errors.E(op, fmt.Errorf("unknown filter field %q", f.Field), errors.KindBadRequest)
		}
		args = append(args, f.Value)
		clauses = append(clauses, fmt.Sprintf("%s %s $%d", col, f.Operator, len(args)))
	}

	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	if sort.Field != "" {
		col, ok := appColumns[sort.Field]
		if !ok {
			return nil, errors.E(op, fmt.Errorf("unknown sort field %q", sort.Field), errors.KindBadRequest)
		}
		dir := "DESC"
		if sort.Asc {
			dir = "ASC"
		}
		query += fmt.Sprintf(" ORDER BY %s %s", col, dir)
	}

	var as []app
	if err := c.db.Select(&as, query, args...); err != nil {
		return nil, errors.E(op, err, "error retrieving apps", kindOf(err))
	}

	cs := make([]models.App, len(as))
	for i := range as {
		cs[i] = as[i].toContract()
	}

	return cs, nil
}

func (c *Client) GetAppsByWeek(weekID int64) ([]models.App, error) {
	const op errors.Op = "postgres.GetAppsByWeek"
	var as []app

	err := c.db.Select(&as, appSelect+" WHERE contest_week_id = $1 ORDER BY created_at DESC", weekID)
	if err != nil {
		return nil, errors.E(op, err, "error retrieving apps for week", kindOf(err))
	}

	cs := make([]models.App, len(as))
	for i := range as {
		cs[i] = as[i].toContract()
	}

	return cs, nil
}

func (c *Client) AddVote(v models.Vote) error {
	const op errors.Op = "postgres.AddVote"

	_, err := c.db.Exec("INSERT INTO votes (user_id, app_id, contest_week_id) VALUES ($1, $2, $3)",
		v.UserID, v.AppID, v.ContestWeekID)
	if err != nil {
		return errors.E(op, err, "error inserting vote", kindOf(err))
	}

	return nil
}

func (c *Client) DeleteVote(userID, appID string) error {
	const op errors.Op = "postgres.DeleteVote"

	res, err := c.db.Exec("DELETE FROM votes WHERE user_id = $1 AND app_id = $2", userID, appID)
	if err != nil {
		return errors.E(op, err, "error deleting vote", kindOf(err))
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.E(op, fmt.Errorf("no vote by %s for app %s", userID, appID), errors.KindNotFound)
	}

	return nil
}

func (c *Client) GetVotesByUser(userID string, weekID int64) ([]models.Vote, error) {
	const op errors.Op = "postgres.GetVotesByUser"
	var vs []vote

	err := c.db.Select(&vs, "SELECT user_id, app_id, contest_week_id FROM votes WHERE user_id = $1 AND contest_week_id = $2", userID, weekID)
	if err != nil {
		return nil, errors.E(op, err, "error retrieving user votes", kindOf(err))
	}

	cs := make([]models.Vote, len(vs))
	for i := range vs {
		cs[i] = vs[i].toContract()
	}

	return cs, nil
}

func (c *Client) GetVoteCounts(weekID int64) (map[string]int, error) {
	const op errors.Op = "postgres.GetVoteCounts"

	rows, err := c.db.Queryx("SELECT app_id, COUNT(*) FROM votes WHERE contest_week_id = $1 GROUP BY app_id", weekID)
	if err != nil {
		return nil, errors.E(op, err, "error counting votes", kindOf(err))
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var appID string
		var n int
		if err := rows.Scan(&appID, &n); err != nil {
			return nil, errors.E(op, err, "error scanning vote count", errors.KindDatabaseError)
		}
		counts[appID] = n
	}

	if err := rows.Err(); err != nil {
		return nil, errors.E(op, err, "error iterating vote counts", errors.KindDatabaseError)
	}

	return counts, nil
}

func (c *Client) AddProfile(p models.Profile) (models.Profile, error) {
	const op errors.Op = "postgres.AddProfile"
	var row profile
	row.fromContract(p)

	_, err := c.db.Exec("INSERT INTO profiles (id, username, registration_number, role) VALUES ($1, $2, $3, $4)",
		row.ID, row.Username, row.RegistrationNumber, row.Role)
	if err != nil {
		return models.Profile{}, errors.E(op, err, "error inserting profile", kindOf(err))
	}

	return row.toContract(), nil
}

func (c *Client) GetProfile(id string) (models.Profile, error) {
	const op errors.Op = "postgres.GetProfile"
	var row profile

	err := c.db.Get(&row, "SELECT id, username, registration_number, role FROM profiles WHERE id = $1", id)
	if err != nil {
		return models.Profile{}, errors.E(op, err, "error retrieving profile", kindOf(err))
	}

	return row.toContract(), nil
}
