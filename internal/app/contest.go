package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/appvote/portal/internal/db"
	"github.com/appvote/portal/internal/errors"
	"github.com/appvote/portal/internal/metrics"
	"github.com/appvote/portal/internal/models"
)

/*
ContestService owns the in-memory contest state and mediates every
transition against the store.  It holds the ordered week collection, the
winners grouped by week, the derived "current week" pointer, and a
readiness flag saying whether the contest tables exist at all.

All mutating operations work against the store first and then swap in a
complete fresh snapshot under the write lock; held state is never
patched incrementally, so readers always observe a consistent view.
*/
type ContestService struct {
	Db db.Client

	// Admins lists usernames promoted to the admin role when their
	// profile is first created.
	Admins []string

	mu       sync.RWMutex
	weeks    []models.ContestWeek
	winners  map[int64][]models.Winner
	current  *models.ContestWeek
	selected *models.ContestWeek
	ready    bool
	loading  bool
}

func NewContestService(client db.Client) *ContestService {
	return &ContestService{
		Db:      client,
		winners: make(map[int64][]models.Winner),
		loading: true,
	}
}

// requireAdmin is the one authorization guard for admin-only operations.
func requireAdmin(op errors.Op, user models.UserToken) error {
	if !user.LoggedIn() {
		return errors.E(op, errors.KindUnauthenticated)
	}

	if !user.IsAdmin() {
		return errors.E(op, errors.KindUnauthorized, "only admins can perform this operation")
	}

	return nil
}

// Initialize loads the full contest snapshot, seeds the default weeks
// when the table exists but is empty, and starts the change-notification
// watcher.  A missing contest schema is not an error: the service comes
// up with ready=false and the feature downgraded.
func (cs *ContestService) Initialize(ctx context.Context) error {
	const op errors.Op = "app.Initialize"

	defer func() {
		cs.mu.Lock()
		cs.loading = false
		cs.mu.Unlock()
	}()

	if err := cs.reloadWeeks(); err != nil {
		if errors.Kind(err) == errors.KindSchemaAbsent {
			log.Println("contest tables missing; contest feature disabled")
		} else {
			return errors.E(op, err, "error loading contest weeks")
		}
	}

	if err := cs.seedIfEmpty(); err != nil {
		return errors.E(op, err, "error seeding default contest weeks")
	}

	if err := cs.reloadWinners(); err != nil && errors.Kind(err) != errors.KindSchemaAbsent {
		return errors.E(op, err, "error loading contest winners")
	}

	events, err := cs.Db.Subscribe(ctx)
	if err != nil {
		return errors.E(op, err, "error subscribing to store notifications")
	}

	go cs.watch(events)

	return nil
}

// watch consumes change notifications and re-fetches whole snapshots.
// Full reload over incremental patching: volumes are small and contest
// state changes are rare, admin-only events.
func (cs *ContestService) watch(events <-chan db.Notification) {
	for n := range events {
		metrics.StateReloads.WithLabelValues(n.Table).Inc()

		switch n.Table {
		case db.TableContestWeeks:
			if err := cs.reloadWeeks(); err != nil {
				log.Printf("reload after %s change: %v", n.Table, err)
			}
		case db.TableContestWinners:
			if err := cs.reloadWinners(); err != nil {
				log.Printf("reload after %s change: %v", n.Table, err)
			}
		default:
			// Apps and votes are not part of the held snapshot.
		}
	}
}

// reloadWeeks fetches the week collection, recomputes readiness and the
// derived current week, and swaps everything in atomically.  On error
// the held state is left untouched.
func (cs *ContestService) reloadWeeks() error {
	const op errors.Op = "app.reloadWeeks"

	weeks, err := cs.Db.GetContestWeeks()
	if err != nil {
		if errors.Kind(err) == errors.KindSchemaAbsent {
			cs.mu.Lock()
			cs.ready = false
			cs.weeks = nil
			cs.current = nil
			cs.selected = nil
			cs.mu.Unlock()
		}
		return errors.E(op, err)
	}

	current := deriveCurrentWeek(weeks)

	cs.mu.Lock()
	cs.weeks = weeks
	cs.ready = true
	cs.current = current
	if cs.selected != nil {
		cs.selected = findWeek(weeks, cs.selected.ID)
	}
	cs.mu.Unlock()

	return nil
}

func (cs *ContestService) reloadWinners() error {
	const op errors.Op = "app.reloadWinners"

	all, err := cs.Db.GetWinners()
	if err != nil {
		return errors.E(op, err)
	}

	grouped := make(map[int64][]models.Winner)
	for _, w := range all {
		grouped[w.ContestWeekID] = append(grouped[w.ContestWeekID], w)
	}

	cs.mu.Lock()
	cs.winners = grouped
	cs.mu.Unlock()

	return nil
}

/*
deriveCurrentWeek implements the current-week rule: the unique active
week if one exists, else the earliest upcoming week, else the most
recently ended or completed week by end date, else the first week.
Weeks arrive ordered by id ascending.
*/
func deriveCurrentWeek(weeks []models.ContestWeek) *models.ContestWeek {
	if len(weeks) == 0 {
		return nil
	}

	for i := range weeks {
		if weeks[i].Status == models.StatusActive {
			w := weeks[i]
			return &w
		}
	}

	for i := range weeks {
		if weeks[i].Status == models.StatusUpcoming {
			w := weeks[i]
			return &w
		}
	}

	var recent *models.ContestWeek
	for i := range weeks {
		if weeks[i].Status != models.StatusEnded && weeks[i].Status != models.StatusCompleted {
			continue
		}
		if recent == nil {
			w := weeks[i]
			recent = &w
			continue
		}
		if laterEnd(weeks[i].EndDate, recent.EndDate) {
			w := weeks[i]
			recent = &w
		}
	}
	if recent != nil {
		return recent
	}

	w := weeks[0]
	return &w
}

func laterEnd(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.After(*b)
}

func findWeek(weeks []models.ContestWeek, id int64) *models.ContestWeek {
	for i := range weeks {
		if weeks[i].ID == id {
			w := weeks[i]
			return &w
		}
	}
	return nil
}

// SwitchWeek points the display-selected week at the week matching
// weekID.  Pure view selection: no persistence effect, and no effect on
// the authoritative current-week pointer used for eligibility checks.
func (cs *ContestService) SwitchWeek(weekID int64) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	w := findWeek(cs.weeks, weekID)
	if w == nil {
		return false
	}

	cs.selected = w
	return true
}

// UpdateContestStatus transitions a contest week.  Admin only.
// Activation displaces any other active week transactionally; entering
// ended or completed stamps the end date, entering active stamps the
// start date.
func (cs *ContestService) UpdateContestStatus(user models.UserToken, weekID int64, status string) error {
	const op errors.Op = "app.UpdateContestStatus"

	if err := requireAdmin(op, user); err != nil {
		return err
	}

	if !models.ValidStatus(status) {
		return errors.E(op, errors.KindBadRequest, fmt.Sprintf("invalid contest status %q", status))
	}

	now := time.Now().UTC()

	var err error
	if status == models.StatusActive {
		err = cs.Db.ActivateWeek(weekID, now)
	} else {
		var endDate *time.Time
		if status == models.StatusEnded || status == models.StatusCompleted {
			endDate = &now
		}
		err = cs.Db.UpdateWeekStatus(weekID, status, nil, endDate)
	}
	if err != nil {
		return errors.E(op, err, "error updating contest status")
	}

	metrics.StatusTransitions.WithLabelValues(status).Inc()

	if err := cs.reloadWeeks(); err != nil {
		return errors.E(op, err, "status updated but state reload failed")
	}

	return nil
}

// SelectWinner upserts the winner for one of the three positions of an
// ended week.  Admin only.  Once all three positions are filled the
// week advances to completed; the completion check intentionally runs
// only after a position-3 write, matching the portal's long-standing
// behavior.
func (cs *ContestService) SelectWinner(user models.UserToken, weekID int64, appID string, position int) error {
	const op errors.Op = "app.SelectWinner"

	if err := requireAdmin(op, user); err != nil {
		return err
	}

	if position < 1 || position > models.MaxWinnerPositions {
		return errors.E(op, errors.KindBadRequest, fmt.Sprintf("position must be between 1 and %d", models.MaxWinnerPositions))
	}

	cs.mu.RLock()
	week := findWeek(cs.weeks, weekID)
	var existing *models.Winner
	for i, w := range cs.winners[weekID] {
		if w.Position == position {
			existing = &cs.winners[weekID][i]
			break
		}
	}
	cs.mu.RUnlock()

	if week == nil {
		return errors.E(op, errors.KindNotFound, "contest week not found")
	}

	if week.Status != models.StatusEnded {
		return errors.E(op, errors.KindBadRequest, "winners can only be selected after a contest week has ended")
	}

	if existing != nil {
		if err := cs.Db.UpdateWinnerApp(existing.ID, appID); err != nil {
			return errors.E(op, err, "error updating winner")
		}
	} else {
		winner := models.Winner{
			ID:            uuid.NewString(),
			ContestWeekID: weekID,
			AppID:         appID,
			Position:      position,
		}
		if _, err := cs.Db.AddWinner(winner); err != nil {
			return errors.E(op, err, "error inserting winner")
		}
	}

	metrics.WinnerSelections.Inc()

	if position == models.MaxWinnerPositions {
		count, err := cs.Db.CountWinners(weekID)
		if err != nil {
			return errors.E(op, err, "winner recorded but completion check failed")
		}

		if count == models.MaxWinnerPositions {
			now := time.Now().UTC()
			if err := cs.Db.UpdateWeekStatus(weekID, models.StatusCompleted, nil, &now); err != nil {
				return errors.E(op, err, "winner recorded but completion transition failed")
			}
			metrics.StatusTransitions.WithLabelValues(models.StatusCompleted).Inc()

			if err := cs.reloadWeeks(); err != nil {
				return errors.E(op, err, "week completed but state reload failed")
			}
		}
	}

	if err := cs.reloadWinners(); err != nil {
		return errors.E(op, err, "winner recorded but winners reload failed")
	}

	return nil
}

// GetWinnersForWeek returns the winners for a week ordered by position,
// or an empty slice.  Served from held state.
func (cs *ContestService) GetWinnersForWeek(weekID int64) []models.Winner {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	ws := cs.winners[weekID]
	out := make([]models.Winner, len(ws))
	copy(out, ws)
	return out
}

func (cs *ContestService) GetAllWeeks() []models.ContestWeek {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	out := make([]models.ContestWeek, len(cs.weeks))
	copy(out, cs.weeks)
	return out
}

// GetWeek returns one week from held state by id.
func (cs *ContestService) GetWeek(weekID int64) (models.ContestWeek, error) {
	const op errors.Op = "app.GetWeek"

	cs.mu.RLock()
	defer cs.mu.RUnlock()

	w := findWeek(cs.weeks, weekID)
	if w == nil {
		return models.ContestWeek{}, errors.E(op, errors.KindNotFound, "contest week not found")
	}
	return *w, nil
}

// GetActiveWeek returns the unique active week, or nil.
func (cs *ContestService) GetActiveWeek() *models.ContestWeek {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	for i := range cs.weeks {
		if cs.weeks[i].Status == models.StatusActive {
			w := cs.weeks[i]
			return &w
		}
	}
	return nil
}

// CurrentWeek returns the derived current week, or nil when no weeks
// exist or the schema is absent.
func (cs *ContestService) CurrentWeek() *models.ContestWeek {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	if cs.current == nil {
		return nil
	}
	w := *cs.current
	return &w
}

// SelectedWeek returns the display-selected week, falling back to the
// derived current week.
func (cs *ContestService) SelectedWeek() *models.ContestWeek {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	if cs.selected != nil {
		w := *cs.selected
		return &w
	}
	if cs.current != nil {
		w := *cs.current
		return &w
	}
	return nil
}

// HasValidContestStructure reports whether the contest tables exist in
// the store.
func (cs *ContestService) HasValidContestStructure() bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.ready
}

func (cs *ContestService) Loading() bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.loading
}

// CanSubmitApps reports whether submissions are open: the contest
// structure exists and the current week is active.
func (cs *ContestService) CanSubmitApps() bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.ready && cs.current != nil && cs.current.Status == models.StatusActive
}

// CanVote reports whether voting is open.  Same gate as submissions.
func (cs *ContestService) CanVote() bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.ready && cs.current != nil && cs.current.Status == models.StatusActive
}

// votingWeek returns a copy of the current week when submissions and
// voting are open.  The eligibility check and the week read share one
// lock acquisition so a concurrent snapshot reload cannot separate
// them.
func (cs *ContestService) votingWeek() (models.ContestWeek, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	if !cs.ready || cs.current == nil || cs.current.Status != models.StatusActive {
		return models.ContestWeek{}, false
	}
	return *cs.current, true
}
