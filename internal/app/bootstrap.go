package app

import (
	"log"

	"github.com/appvote/portal/internal/errors"
	"github.com/appvote/portal/internal/models"
)

// defaultWeeks are the four weeks seeded into an empty contest_weeks
// table.  Ids are caller-supplied sequential integers, matching the
// reference deployment.
func defaultWeeks() []models.ContestWeek {
	return []models.ContestWeek{
		{ID: 1, Name: "Week 1", Description: "First week of the app contest", Status: models.StatusUpcoming},
		{ID: 2, Name: "Week 2", Description: "Second week of the app contest", Status: models.StatusUpcoming},
		{ID: 3, Name: "Week 3", Description: "Third week of the app contest", Status: models.StatusUpcoming},
		{ID: 4, Name: "Week 4", Description: "Final week of the app contest", Status: models.StatusUpcoming},
	}
}

// seedIfEmpty inserts the default weeks when the table exists but holds
// no rows.  A uniqueness violation means a concurrent initializer got
// there first and is treated as success.
func (cs *ContestService) seedIfEmpty() error {
	const op errors.Op = "app.seedIfEmpty"

	cs.mu.RLock()
	ready := cs.ready
	empty := len(cs.weeks) == 0
	cs.mu.RUnlock()

	if !ready || !empty {
		return nil
	}

	err := cs.Db.AddContestWeeks(defaultWeeks())
	if err != nil && errors.Kind(err) != errors.KindConflict {
		return errors.E(op, err, "error seeding contest weeks")
	}
	if errors.Kind(err) == errors.KindConflict {
		log.Println("contest weeks already seeded by a concurrent initializer")
	}

	return cs.reloadWeeks()
}

// ApplyContestSchema applies the contest DDL and seeds the default
// weeks.  Diagnostic path, admin only; the normal startup never creates
// tables, it only probes and downgrades.
func (cs *ContestService) ApplyContestSchema(user models.UserToken) error {
	const op errors.Op = "app.ApplyContestSchema"

	if err := requireAdmin(op, user); err != nil {
		return err
	}

	if err := cs.Db.CreateContestSchema(); err != nil {
		return errors.E(op, err, "error creating contest schema")
	}

	if err := cs.reloadWeeks(); err != nil {
		return errors.E(op, err, "schema created but state reload failed")
	}

	if err := cs.seedIfEmpty(); err != nil {
		return errors.E(op, err)
	}

	return cs.reloadWinners()
}

// ProbeContestSchema re-checks the store for the contest tables and
// refreshes readiness accordingly.
func (cs *ContestService) ProbeContestSchema() error {
	const op errors.Op = "app.ProbeContestSchema"

	if err := cs.Db.ProbeContestSchema(); err != nil {
		if errors.Kind(err) == errors.KindSchemaAbsent {
			cs.mu.Lock()
			cs.ready = false
			cs.mu.Unlock()
		}
		return errors.E(op, err)
	}

	return cs.reloadWeeks()
}
