package postgres

import (
	"github.com/appvote/portal/internal/errors"
)

// ProbeContestSchema runs a bounded read against each contest relation.
// A missing table or column surfaces as KindSchemaAbsent so callers can
// downgrade the contest feature instead of failing.
func (c *Client) ProbeContestSchema() error {
	const op errors.Op = "postgres.ProbeContestSchema"

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

// CreateContestSchema applies the contest DDL, including the notify
// triggers the subscription channel relies on.  Manual/diagnostic use
// only.
func (c *Client) CreateContestSchema() error {
	const op errors.Op = "postgres.CreateContestSchema"

	if _, err := c.db.Exec(schema); err != nil {
		return errors.E(op, err, "error applying contest schema", kindOf(err))
	}

	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
    id UUID PRIMARY KEY,
    username TEXT NOT NULL,
    registration_number TEXT NOT NULL DEFAULT '',
    role TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
    created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS apps (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    link TEXT NOT NULL,
    image_url TEXT NOT NULL DEFAULT '',
    user_id UUID NOT NULL REFERENCES profiles(id),
    created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS votes (
    user_id UUID NOT NULL REFERENCES profiles(id),
    app_id UUID NOT NULL REFERENCES apps(id),
    created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
    PRIMARY KEY (user_id, app_id)
);

CREATE TABLE IF NOT EXISTS contest_weeks (
    id INT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    start_date TIMESTAMP WITH TIME ZONE,
    end_date TIMESTAMP WITH TIME ZONE,
    status TEXT DEFAULT 'upcoming' CHECK (status IN ('upcoming', 'active', 'ended', 'completed')),
    created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);

ALTER TABLE apps ADD COLUMN IF NOT EXISTS contest_week_id INT REFERENCES contest_weeks(id);
ALTER TABLE votes ADD COLUMN IF NOT EXISTS contest_week_id INT REFERENCES contest_weeks(id);

CREATE TABLE IF NOT EXISTS contest_winners (
    id UUID PRIMARY KEY,
    contest_week_id INT NOT NULL REFERENCES contest_weeks(id),
    app_id UUID NOT NULL REFERENCES apps(id),
    position INT NOT NULL CHECK (position BETWEEN 1 AND 3),
    created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
    UNIQUE (contest_week_id, position)
);

CREATE OR REPLACE FUNCTION notify_contest_change() RETURNS trigger AS $$
BEGIN
    PERFORM pg_notify('contest_changes', TG_TABLE_NAME);
    RETURN NULL;
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS contest_weeks_notify ON contest_weeks;
CREATE TRIGGER contest_weeks_notify
    AFTER INSERT OR UPDATE OR DELETE ON contest_weeks
    FOR EACH STATEMENT EXECUTE FUNCTION notify_contest_change();

DROP TRIGGER IF EXISTS contest_winners_notify ON contest_winners;
CREATE TRIGGER contest_winners_notify
    AFTER INSERT OR UPDATE OR DELETE ON contest_winners
    FOR EACH STATEMENT EXECUTE FUNCTION notify_contest_change();

DROP TRIGGER IF EXISTS apps_notify ON apps;
CREATE TRIGGER apps_notify
    AFTER INSERT OR UPDATE OR DELETE ON apps
    FOR EACH STATEMENT EXECUTE FUNCTION notify_contest_change();

DROP TRIGGER IF EXISTS votes_notify ON votes;
CREATE TRIGGER votes_notify
    AFTER INSERT OR UPDATE OR DELETE ON votes
    FOR EACH STATEMENT EXECUTE FUNCTION notify_contest_change();
`
