package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/appvote/portal/internal/errors"
	"github.com/appvote/portal/internal/models"
)

type Client struct {
	db  *sqlx.DB
	dsn string
}

func NewClient(dsn string) (*Client, error) {
	const op errors.Op = "postgres.NewClient"

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, errors.E(op, err, "could not open postgres connection", errors.KindDatabaseError)
	}

	if err := db.Ping(); err != nil {
		return nil, errors.E(op, err, "could not reach postgres", errors.KindServiceUnavailable)
	}

	return &Client{db: db, dsn: dsn}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

// kindOf maps driver errors onto our error taxonomy.  The SQLSTATE
// classes matter: 42P01/42703 gate readiness handling, 23505 marks a
// benign uniqueness race.
func kindOf(err error) errors.Code {
	if err == sql.ErrNoRows {
		return errors.KindNotFound
	}

	pqErr, ok := err.(*pq.Error)
	if !ok {
		return errors.KindDatabaseError
	}

	switch pqErr.Code {
	case "42P01", "42703": // undefined_table, undefined_column
		return errors.KindSchemaAbsent
	case "23505": // unique_violation
		return errors.KindConflict
	case "23503": // foreign_key_violation
		return errors.KindBadRequest
	default:
		return errors.KindDatabaseError
	}
}

func (c *Client) GetContestWeeks() ([]models.ContestWeek, error) {
	const op errors.Op = "postgres.GetContestWeeks"
	var ws []contestWeek

	err := c.db.Select(&ws, "SELECT id, name, description, status, start_date, end_date FROM contest_weeks ORDER BY id ASC")
	if err != nil {
		return nil, errors.E(op, err, "error retrieving contest weeks", kindOf(err))
	}

	cs := make([]models.ContestWeek, len(ws))
	for i := range ws {
		cs[i] = ws[i].toContract()
	}

	return cs, nil
}

func (c *Client) GetContestWeek(id int64) (models.ContestWeek, error) {
	const op errors.Op = "postgres.GetContestWeek"
	var w contestWeek

	err := c.db.Get(&w, "SELECT id, name, description, status, start_date, end_date FROM contest_weeks WHERE id = $1", id)
	if err != nil {
		return models.ContestWeek{}, errors.E(op, err, "error retrieving contest week", kindOf(err))
	}

	return w.toContract(), nil
}

func (c *Client) AddContestWeeks(weeks []models.ContestWeek) error {
	const op errors.Op = "postgres.AddContestWeeks"

	tx, err := c.db.Beginx()
	if err != nil {
		return errors.E(op, err, "error creating transaction", errors.KindDatabaseError)
	}

	for _, cw := range weeks {
		var w contestWeek
		w.fromContract(cw)

		_, err = tx.Exec("INSERT INTO contest_weeks (id, name, description, status) VALUES ($1, $2, $3, $4)",
			w.ID, w.Name, w.Description, w.Status)
		if err != nil {
			_ = tx.Rollback()
			return errors.E(op, err, "error inserting contest week", kindOf(err))
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.E(op, err, "error committing transaction", errors.KindDatabaseError)
	}

	return nil
}

func (c *Client) UpdateWeekStatus(id int64, status string, startDate, endDate *time.Time) error {
	const op errors.Op = "postgres.UpdateWeekStatus"

	res, err := c.db.Exec(`UPDATE contest_weeks
		SET status = $1,
		    start_date = COALESCE($2, start_date),
		    end_date = COALESCE($3, end_date),
		    updated_at = NOW()
		WHERE id = $4`,
		status, startDate, endDate, id)
	if err != nil {
		return errors.E(op, err, "error updating contest week status", kindOf(err))
	}

	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return errors.E(op, fmt.Errorf("no contest week with id %d", id), errors.KindNotFound)
	}

	return nil
}

func (c *Client) ActivateWeek(id int64, now time.Time) error {
	const op errors.Op = "postgres.ActivateWeek"

	tx, err := c.db.Beginx()
	if err != nil {
		return errors.E(op, err, "error creating transaction", errors.KindDatabaseError)
	}

	// Displace any other active week inside the same transaction so the
	// single-active invariant can't be observed broken.
	_, err = tx.Exec(`UPDATE contest_weeks SET status = $1, end_date = $2, updated_at = NOW()
		WHERE status = $3 AND id <> $4`,
		models.StatusEnded, now, models.StatusActive, id)
	if err != nil {
		_ = tx.Rollback()
		return errors.E(op, err, "error ending previously active week", kindOf(err))
	}

	res, err := tx.Exec(`UPDATE contest_weeks SET status = $1, start_date = $2, updated_at = NOW()
		WHERE id = $3`,
		models.StatusActive, now, id)
	if err != nil {
		_ = tx.Rollback()
		return errors.E(op, err, "error activating contest week", kindOf(err))
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		_ = tx.Rollback()
		return errors.E(op, fmt.Errorf("no contest week with id %d", id), errors.KindNotFound)
	}

	if err = tx.Commit(); err != nil {
		return errors.E(op, err, "error committing transaction", errors.KindDatabaseError)
	}

	return nil
}

const winnerSelect = `SELECT w.id, w.contest_week_id, w.app_id, w.position,
	a.name AS app_name, a.link AS app_link, a.image_url AS app_image_url,
	a.user_id AS app_user_id, a.created_at AS app_created_at,
	p.username, p.registration_number
	FROM contest_winners w
	JOIN apps a ON a.id = w.app_id
	JOIN profiles p ON p.id = a.user_id`

func (c *Client) GetWinners() ([]models.Winner, error) {
	const op errors.Op = "postgres.GetWinners"
	var rows []winnerRow

	err := c.db.Select(&rows, winnerSelect+" ORDER BY w.position ASC")
	if err != nil {
		return nil, errors.E(op, err, "error retrieving winners", kindOf(err))
	}

	ws := make([]models.Winner, len(rows))
	for i := range rows {
		ws[i] = rows[i].toContract()
	}

	return ws, nil
}

func (c *Client) AddWinner(winner models.Winner) (models.Winner, error) {
	const op errors.Op = "postgres.AddWinner"

	_, err := c.db.Exec("INSERT INTO contest_winners (id, contest_week_id, app_id, position) VALUES ($1, $2, $3, $4)",
		winner.ID, winner.ContestWeekID, winner.AppID, winner.Position)
	if err != nil {
		return models.Winner{}, errors.E(op, err, "error inserting winner", kindOf(err))
	}

	return winner, nil
}

func (c *Client) UpdateWinnerApp(id string, appID string) error {
	const op errors.Op = "postgres.UpdateWinnerApp"

	res, err := c.db.Exec("UPDATE contest_winners SET app_id = $1, updated_at = NOW() WHERE id = $2", appID, id)
	if err != nil {
		return errors.E(op, err, "error updating winner", kindOf(err))
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.E(op, fmt.Errorf("no winner row %s", id), errors.KindNotFound)
	}

	return nil
}

func (c *Client) CountWinners(weekID int64) (int, error) {
	const op errors.Op = "postgres.CountWinners"
	var n int

	err := c.db.Get(&n, "SELECT COUNT(*) FROM contest_winners WHERE contest_week_id = $1", weekID)
	if err != nil {
		return 0, errors.E(op, err, "error counting winners", kindOf(err))
	}

	return n, nil
}
