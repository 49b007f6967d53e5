package app

import (
	"fmt"

	"github.com/appvote/portal/internal/errors"
	"github.com/appvote/portal/internal/metrics"
	"github.com/appvote/portal/internal/models"
)

// AddVote records a vote by user for appID within the current active
// week.  The vote cap is checked before the insert; a duplicate vote
// surfaces as a conflict from the store's uniqueness constraint.
func (cs *ContestService) AddVote(user models.UserToken, appID string) error {
	const op errors.Op = "app.AddVote"

	if !user.LoggedIn() {
		return errors.E(op, errors.KindUnauthenticated)
	}

	current, open := cs.votingWeek()
	if !open {
		return errors.E(op, errors.KindBadRequest, "voting is only open during an active contest week")
	}

	held, err := cs.Db.GetVotesByUser(user.ID, current.ID)
	if err != nil {
		return errors.E(op, err, "error retrieving existing votes")
	}

	if len(held) >= models.MaxVotesPerWeek {
		return errors.E(op, errors.KindBadRequest,
			fmt.Sprintf("you can only vote for up to %d apps; remove a vote to add a new one", models.MaxVotesPerWeek))
	}

	for _, v := range held {
		if v.AppID == appID {
			return errors.E(op, errors.KindConflict, "you have already voted for this app")
		}
	}

	vote := models.Vote{
		UserID:        user.ID,
		AppID:         appID,
		ContestWeekID: &current.ID,
	}

	if err := cs.Db.AddVote(vote); err != nil {
		return errors.E(op, err, "error adding vote to db")
	}

	metrics.VotesCast.Inc()
	return nil
}

// RemoveVote withdraws the caller's vote for appID.
func (cs *ContestService) RemoveVote(user models.UserToken, appID string) error {
	const op errors.Op = "app.RemoveVote"

	if !user.LoggedIn() {
		return errors.E(op, errors.KindUnauthenticated)
	}

	if err := cs.Db.DeleteVote(user.ID, appID); err != nil {
		return errors.E(op, err, "error removing vote")
	}

	metrics.VotesRemoved.Inc()
	return nil
}

// ListUserVotes returns the caller's votes for the current week, or an
// empty slice when no week is current.
func (cs *ContestService) ListUserVotes(user models.UserToken) ([]models.Vote, error) {
	const op errors.Op = "app.ListUserVotes"

	if !user.LoggedIn() {
		return nil, errors.E(op, errors.KindUnauthenticated)
	}

	current := cs.CurrentWeek()
	if current == nil {
		return []models.Vote{}, nil
	}

	votes, err := cs.Db.GetVotesByUser(user.ID, current.ID)
	if err != nil {
		return nil, errors.E(op, err, "error retrieving votes from db")
	}

	return votes, nil
}
