package app

import (
	"github.com/appvote/portal/internal/errors"
	"github.com/appvote/portal/internal/models"
)

// EnsureProfile returns the profile for an externally verified
// identity, creating it with base permissions on first sight.  Names on
// the service's admin list are promoted to the admin role at creation.
func (cs *ContestService) EnsureProfile(id, username, registrationNumber string) (models.Profile, bool, error) {
	const op errors.Op = "app.EnsureProfile"

	profile, err := cs.Db.GetProfile(id)
	if err == nil {
		return profile, false, nil
	}

	if errors.Kind(err) != errors.KindNotFound {
		return models.Profile{}, false, errors.E(op, err, "error retrieving profile from db")
	}

	newProfile := models.Profile{
		ID:                 id,
		Username:           username,
		RegistrationNumber: registrationNumber,
		Role:               models.RoleUser,
	}

	for _, admin := range cs.Admins {
		if username == admin {
			newProfile.Role = models.RoleAdmin
		}
	}

	created, err := cs.Db.AddProfile(newProfile)
	if err != nil {
		// A concurrent session exchange may have created the row.
		if errors.Kind(err) == errors.KindConflict {
			profile, err = cs.Db.GetProfile(id)
			if err == nil {
				return profile, false, nil
			}
		}
		return models.Profile{}, false, errors.E(op, err, "error adding profile to db")
	}

	return created, true, nil
}

// GetProfile fetches a profile by id.
func (cs *ContestService) GetProfile(id string) (models.Profile, error) {
	const op errors.Op = "app.GetProfile"

	profile, err := cs.Db.GetProfile(id)
	if err != nil {
		return models.Profile{}, errors.E(op, err, "error retrieving profile from db")
	}

	return profile, nil
}
