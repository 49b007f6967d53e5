package app

import (
	"github.com/appvote/portal/internal/db"
)

type Options struct {
	filters []db.Filter
	sort    db.Sort
}

func NewOptions() Options {
	opt := Options{
		filters: make([]db.Filter, 0),
		// Newest submissions first unless a caller overrides.
		sort: db.Sort{Field: "CreatedAt", Asc: false},
	}

	return opt
}

func (opt Options) unpack() ([]db.Filter, db.Sort) {
	return opt.filters, opt.sort
}

func (opt Options) ForWeek(weekID int64) Options {
	opt.filters = append(opt.filters, db.Filter{Field: "ContestWeekID", Operator: "=", Value: weekID})
	return opt
}

func (opt Options) ByUser(userID string) Options {
	opt.filters = append(opt.filters, db.Filter{Field: "UserID", Operator: "=", Value: userID})
	return opt
}

func (opt Options) OldestFirst() Options {
	opt.sort = db.Sort{Field: "CreatedAt", Asc: true}
	return opt
}
