package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/appvote/portal/internal/db"
	"github.com/appvote/portal/internal/errors"
	"github.com/appvote/portal/internal/models"
)

// Client is an sqlite-backed store used by tests and by contestctl when
// pointed at a local file.  Because sqlite has no server-side
// notification channel, the client fans out its own change events to
// subscribers after every successful write.
type Client struct {
	db *sqlx.DB

	mu   sync.Mutex
	subs map[int]chan db.Notification
	next int
}

func NewClient(filename string) (*Client, error) {
	const op errors.Op = "sqlite.NewClient"

	conn, err := sqlx.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on", filename))
	if err != nil {
		return nil, errors.E("could not open sqlite db", err, op, errors.KindDatabaseError)
	}

	// Readers and writers share one connection so in-memory databases
	// see a single schema.
	conn.SetMaxOpenConns(1)

	return &Client{db: conn, subs: make(map[int]chan db.Notification)}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func kindOf(err error) errors.Code {
	if err == sql.ErrNoRows {
		return errors.KindNotFound
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "no such table"), strings.Contains(msg, "no such column"):
		return errors.KindSchemaAbsent
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return errors.KindConflict
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return errors.KindBadRequest
	default:
		return errors.KindDatabaseError
	}
}

func (c *Client) notify(table string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- db.Notification{Table: table}:
		default:
			// Subscriber not keeping up; it reloads whole snapshots on
			// any event so dropped duplicates are harmless.
		}
	}
}

func (c *Client) Subscribe(ctx context.Context) (<-chan db.Notification, error) {
	ch := make(chan db.Notification, 16)

	c.mu.Lock()
	id := c.next
	c.next++
	c.subs[id] = ch
	c.mu.Unlock()

	go func() {
		<-ctx.Done()
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}

func (c *Client) GetContestWeeks() ([]models.ContestWeek, error) {
	const op errors.Op = "sqlite.GetContestWeeks"
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
	const op errors.Op = "sqlite.GetContestWeek"
	var w contestWeek

	err := c.db.Get(&w, "SELECT id, name, description, status, start_date, end_date FROM contest_weeks WHERE id = ?", id)
	if err != nil {
		return models.ContestWeek{}, errors.E(op, err, "error retrieving contest week", kindOf(err))
	}

	return w.toContract(), nil
}

func (c *Client) AddContestWeeks(weeks []models.ContestWeek) error {
	const op errors.Op = "sqlite.AddContestWeeks"

	tx, err := c.db.Beginx()
	if err != nil {
		return errors.E(op, err, "error creating transaction", errors.KindDatabaseError)
	}

	for _, cw := range weeks {
		var w contestWeek
		w.fromContract(cw)

		_, err = tx.Exec("INSERT INTO contest_weeks (id, name, description, status) VALUES (?, ?, ?, ?)",
			w.ID, w.Name, w.Description, w.Status)
		if err != nil {
			_ = tx.Rollback()
			return errors.E(op, err, "error inserting contest week", kindOf(err))
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.E(op, err, "error committing transaction", errors.KindDatabaseError)
	}

	c.notify(db.TableContestWeeks)
	return nil
}

func (c *Client) UpdateWeekStatus(id int64, status string, startDate, endDate *time.Time) error {
	const op errors.Op = "sqlite.UpdateWeekStatus"

	res, err := c.db.Exec(`UPDATE contest_weeks
		SET status = ?,
		    start_date = COALESCE(?, start_date),
		    end_date = COALESCE(?, end_date)
		WHERE id = ?`,
		status, startDate, endDate, id)
	if err != nil {
		return errors.E(op, err, "error updating contest week status", kindOf(err))
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.E(op, fmt.Errorf("no contest week with id %d", id), errors.KindNotFound)
	}

	c.notify(db.TableContestWeeks)
	return nil
}

func (c *Client) ActivateWeek(id int64, now time.Time) error {
	const op errors.Op = "sqlite.ActivateWeek"

	tx, err := c.db.Beginx()
	if err != nil {
		return errors.E(op, err, "error creating transaction", errors.KindDatabaseError)
	}

	_, err = tx.Exec("UPDATE contest_weeks SET status = ?, end_date = ? WHERE status = ? AND id <> ?",
		models.StatusEnded, now, models.StatusActive, id)
	if err != nil {
		_ = tx.Rollback()
		return errors.E(op, err, "error ending previously active week", kindOf(err))
	}

	res, err := tx.Exec("UPDATE contest_weeks SET status = ?, start_date = ? WHERE id = ?",
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

	c.notify(db.TableContestWeeks)
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
	const op errors.Op = "sqlite.GetWinners"
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
	const op errors.Op = "sqlite.AddWinner"

	_, err := c.db.Exec("INSERT INTO contest_winners (id, contest_week_id, app_id, position) VALUES (?, ?, ?, ?)",
		winner.ID, winner.ContestWeekID, winner.AppID, winner.Position)
	if err != nil {
		return models.Winner{}, errors.E(op, err, "error inserting winner", kindOf(err))
	}

	c.notify(db.TableContestWinners)
	return winner, nil
}

func (c *Client) UpdateWinnerApp(id string, appID string) error {
	const op errors.Op = "sqlite.UpdateWinnerApp"

	res, err := c.db.Exec("UPDATE contest_winners SET app_id = ? WHERE id = ?", appID, id)
	if err != nil {
		return errors.E(op, err, "error updating winner", kindOf(err))
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.E(op, fmt.Errorf("no winner row %s", id), errors.KindNotFound)
	}

	c.notify(db.TableContestWinners)
	return nil
}

func (c *Client) CountWinners(weekID int64) (int, error) {
	const op errors.Op = "sqlite.CountWinners"
	var n int

	err := c.db.Get(&n, "SELECT COUNT(*) FROM contest_winners WHERE contest_week_id = ?", weekID)
	if err != nil {
		return 0, errors.E(op, err, "error counting winners", kindOf(err))
	}

	return n, nil
}

var appColumns = map[string]string{
	"Name":          "name",
	"UserID":        "user_id",
	"ContestWeekID": "contest_week_id",
	"CreatedAt":     "created_at",
}

const appSelect = "SELECT id, name, link, image_url, user_id, contest_week_id, created_at FROM apps"

func (c *Client) AddApp(newApp models.App) (models.App, error) {
	const op errors.Op = "sqlite.AddApp"
	var a app
	a.fromContract(newApp)

	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	_, err := c.db.Exec("INSERT INTO apps (id, name, link, image_url, user_id, contest_week_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		a.ID, a.Name, a.Link, a.ImageURL, a.UserID, a.ContestWeekID, a.CreatedAt)
	if err != nil {
		return models.App{}, errors.E(op, err, "error inserting app", kindOf(err))
	}

	c.notify(db.TableApps)
	return a.toContract(), nil
}

func (c *Client) GetApps(filter []db.Filter, sort db.Sort) ([]models.App, error) {
	const op errors.Op = "sqlite.GetApps"

	query := appSelect
	args := make([]interface{}, 0, len(filter))
	clauses := make([]string, 0, len(filter))

	for _, f := range filter {
		col, ok := appColumns[f.Field]
		if !ok {
			return nil, errors.E(op, fmt.Errorf("unknown filter field %q", f.Field), errors.KindBadRequest)
		}
		args = append(args, f.Value)
		clauses = append(clauses, fmt.Sprintf("%s %s ?", col, f.Operator))
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
	const op errors.Op = "sqlite.GetAppsByWeek"
	var as []app

	err := c.db.Select(&as, appSelect+" WHERE contest_week_id = ? ORDER BY created_at DESC", weekID)
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
	const op errors.Op = "sqlite.AddVote"

	_, err := c.db.Exec("INSERT INTO votes (user_id, app_id, contest_week_id) VALUES (?, ?, ?)",
		v.UserID, v.AppID, v.ContestWeekID)
	if err != nil {
		return errors.E(op, err, "error inserting vote", kindOf(err))
	}

	c.notify(db.TableVotes)
	return nil
}

func (c *Client) DeleteVote(userID, appID string) error {
	const op errors.Op = "sqlite.DeleteVote"

	res, err := c.db.Exec("DELETE FROM votes WHERE user_id = ? AND app_id = ?", userID, appID)
	if err != nil {
		return errors.E(op, err, "error deleting vote", kindOf(err))
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.E(op, fmt.Errorf("no vote by %s for app %s", userID, appID), errors.KindNotFound)
	}

	c.notify(db.TableVotes)
	return nil
}

func (c *Client) GetVotesByUser(userID string, weekID int64) ([]models.Vote, error) {
	const op errors.Op = "sqlite.GetVotesByUser"
	var vs []vote

	err := c.db.Select(&vs, "SELECT user_id, app_id, contest_week_id FROM votes WHERE user_id = ? AND contest_week_id = ?", userID, weekID)
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
	const op errors.Op = "sqlite.GetVoteCounts"

	rows, err := c.db.Queryx("SELECT app_id, COUNT(*) FROM votes WHERE contest_week_id = ? GROUP BY app_id", weekID)
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
	const op errors.Op = "sqlite.AddProfile"
	var row profile
	row.fromContract(p)

	_, err := c.db.Exec("INSERT INTO profiles (id, username, registration_number, role) VALUES (?, ?, ?, ?)",
		row.ID, row.Username, row.RegistrationNumber, row.Role)
	if err != nil {
		return models.Profile{}, errors.E(op, err, "error inserting profile", kindOf(err))
	}

	return row.toContract(), nil
}

func (c *Client) GetProfile(id string) (models.Profile, error) {
	const op errors.Op = "sqlite.GetProfile"
	var row profile

	err := c.db.Get(&row, "SELECT id, username, registration_number, role FROM profiles WHERE id = ?", id)
	if err != nil {
		return models.Profile{}, errors.E(op, err, "error retrieving profile", kindOf(err))
	}

	return row.toContract(), nil
}

func (c *Client) ProbeContestSchema() error {
	const op errors.Op = "sqlite.ProbeContestSchema"

	probes := []string{
		"SELECT id FROM contest_weeks LIMIT 1",
		"SELECT id FROM contest_winners LIMIT 1",
		"SELECT contest_week_id FROM apps LIMIT 1",
		"SELECT contest_week_id FROM votes LIMIT 1",
	}

	for _, q := range probes {
		rows, err := c.db.Query(q)
		if err != nil {
			return errors.E(op, err, "contest schema probe failed", kindOf(err))
		}
		rows.Close()
	}

	return nil
}

func (c *Client) CreateContestSchema() error {
	const op errors.Op = "sqlite.CreateContestSchema"

	if _, err := c.db.Exec(schema); err != nil {
		return errors.E(op, err, "error applying contest schema", kindOf(err))
	}

	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL,
    registration_number TEXT NOT NULL DEFAULT '',
    role TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS contest_weeks (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    start_date TIMESTAMP,
    end_date TIMESTAMP,
    status TEXT DEFAULT 'upcoming' CHECK (status IN ('upcoming', 'active', 'ended', 'completed')),
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS apps (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    link TEXT NOT NULL,
    image_url TEXT NOT NULL DEFAULT '',
    user_id TEXT NOT NULL REFERENCES profiles(id),
    contest_week_id INTEGER REFERENCES contest_weeks(id),
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS votes (
    user_id TEXT NOT NULL REFERENCES profiles(id),
    app_id TEXT NOT NULL REFERENCES apps(id),
    contest_week_id INTEGER REFERENCES contest_weeks(id),
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (user_id, app_id)
);

CREATE TABLE IF NOT EXISTS contest_winners (
    id TEXT PRIMARY KEY,
    contest_week_id INTEGER NOT NULL REFERENCES contest_weeks(id),
    app_id TEXT NOT NULL REFERENCES apps(id),
    position INTEGER NOT NULL CHECK (position BETWEEN 1 AND 3),
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (contest_week_id, position)
);
`
