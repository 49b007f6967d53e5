package app

import (
	"github.com/google/uuid"

	"github.com/appvote/portal/internal/errors"
	"github.com/appvote/portal/internal/metrics"
	"github.com/appvote/portal/internal/models"
)

// SubmitApp records a submission for the current active week.  The
// contest week id is stamped server-side from the derived current week.
func (cs *ContestService) SubmitApp(user models.UserToken, newApp models.App) (models.App, error) {
	const op errors.Op = "app.SubmitApp"

	if !user.LoggedIn() {
		return models.App{}, errors.E(op, errors.KindUnauthenticated)
	}

	if newApp.Name == "" || newApp.Link == "" {
		return models.App{}, errors.E(op, errors.KindBadRequest, "app name and link are required")
	}

	current, open := cs.votingWeek()
	if !open {
		return models.App{}, errors.E(op, errors.KindBadRequest, "submissions are only open during an active contest week")
	}

	newApp.ID = uuid.NewString()
	newApp.UserID = user.ID
	newApp.ContestWeekID = &current.ID
	newApp.Submitter = nil

	created, err := cs.Db.AddApp(newApp)
	if err != nil {
		return models.App{}, errors.E(op, err, "error adding app to db")
	}

	metrics.AppsSubmitted.Inc()
	return created, nil
}

// ListApps returns submissions matching opts, newest first by default.
func (cs *ContestService) ListApps(opts Options) ([]models.App, error) {
	const op errors.Op = "app.ListApps"

	apps, err := cs.Db.GetApps(opts.unpack())
	if err != nil {
		return nil, errors.E(op, err, "error retrieving apps from db")
	}

	return apps, nil
}
