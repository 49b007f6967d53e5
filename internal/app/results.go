package app

import (
	"sort"

	"github.com/appvote/portal/internal/errors"
	"github.com/appvote/portal/internal/models"
)

type totalsSlice []models.VoteTotal

func (ts totalsSlice) Len() int {
	return len(ts)
}

func (ts totalsSlice) Less(i, j int) bool {
	if ts[i].Votes == ts[j].Votes {
		return ts[i].AppName < ts[j].AppName
	}

	return ts[i].Votes > ts[j].Votes
}

func (ts totalsSlice) Swap(i, j int) {
	ts[i], ts[j] = ts[j], ts[i]
}

// WeekResults tallies votes per app for one week, most votes first.
// Apps with zero votes are included so the admin dashboard shows the
// full field.
func (cs *ContestService) WeekResults(weekID int64) ([]models.VoteTotal, error) {
	const op errors.Op = "app.WeekResults"

	cs.mu.RLock()
	week := findWeek(cs.weeks, weekID)
	cs.mu.RUnlock()

	if week == nil {
		return nil, errors.E(op, errors.KindNotFound, "contest week not found")
	}

	apps, err := cs.Db.GetAppsByWeek(weekID)
	if err != nil {
		return nil, errors.E(op, err, "error retrieving apps for week")
	}

	counts, err := cs.Db.GetVoteCounts(weekID)
	if err != nil {
		return nil, errors.E(op, err, "error retrieving vote counts")
	}

	totals := make(totalsSlice, 0, len(apps))
	for _, a := range apps {
		totals = append(totals, models.VoteTotal{
			AppID:   a.ID,
			AppName: a.Name,
			Votes:   counts[a.ID],
		})
	}

	sort.Sort(totals)

	return []models.VoteTotal(totals), nil
}
