package docs

import "github.com/appvote/portal/internal/models"

// swagger:route GET /v1/weeks weeks list-weeks
// Retrieve all contest weeks, ordered by id.
// responses:
//   200: weeksResponse
//   500: unexpectedError

// Unexpected error.
// swagger:response unexpectedError
type unexpectedError struct{}

// Bad request.
// swagger:response badRequestError
type badRequestError struct{}

// Caller is not authenticated.
// swagger:response unauthorizedError
type unauthorizedError struct{}

// Caller lacks the admin role.
// swagger:response forbiddenError
type forbiddenError struct{}

// Conflict with existing state.
// swagger:response conflictError
type conflictError struct{}

// Service unavailable.
// swagger:response serviceUnavailableError
type serviceUnavailableError struct{}

// List of contest weeks.
// swagger:response weeksResponse
type weeksResponseWrapper struct {
	// in: body
	Body []models.ContestWeek
}

// swagger:route GET /v1/weeks/current weeks current-week
// Retrieve the derived current week together with contest readiness and
// eligibility flags.
// responses:
//   200: currentWeekResponse

// Current contest state.
// swagger:response currentWeekResponse
type currentWeekResponseWrapper struct {
	// in: body
	Body struct {
		CurrentWeek              *models.ContestWeek `json:"current_week"`
		SelectedWeek             *models.ContestWeek `json:"selected_week"`
		ActiveWeek               *models.ContestWeek `json:"active_week"`
		HasValidContestStructure bool                `json:"has_valid_contest_structure"`
		CanSubmitApps            bool                `json:"can_submit_apps"`
		CanVote                  bool                `json:"can_vote"`
		Loading                  bool                `json:"loading"`
	}
}

// swagger:operation GET /v1/weeks/{weekId} weeks get-week
// Retrieve a contest week by id.
// ---
// parameters:
// - name: weekId
//   in: path
//   type: integer
//   format: int64
//   required: true
// responses:
//   "200":
//     "$ref": "#/responses/weekResponse"
//     description: A successful request.
//   "400":
//     description: Unable to parse weekId parameter.
//   "404":
//     description: Contest week not found.
//   "5xx":
//     description: Unexpected error.

// Contest week object.
// swagger:response weekResponse
type weekResponseWrapper struct {
	// in: body
	Body models.ContestWeek
}

// swagger:operation POST /v1/weeks/{weekId}/switch weeks switch-week
// Point the display selection at another week.  View state only; the
// derived current week is unaffected.
// ---
// parameters:
// - name: weekId
//   in: path
//   type: integer
//   format: int64
//   required: true
// responses:
//   "200":
//     "$ref": "#/responses/weekResponse"
//     description: The newly selected week.
//   "404":
//     description: Contest week not found.

// swagger:operation PUT /v1/weeks/{weekId}/status weeks update-week-status
// Transition a contest week to a new status.  Admin only.  Activating a
// week displaces any currently active week.
// ---
// security:
// - api_key: []
// parameters:
// - name: weekId
//   in: path
//   type: integer
//   format: int64
//   required: true
// - name: body
//   in: body
//   schema:
//     type: object
//     properties:
//       status:
//         type: string
//         enum: [upcoming, active, ended, completed]
// responses:
//   "200":
//     "$ref": "#/responses/weekResponse"
//     description: The week after the transition.
//   "400":
//     description: Invalid status value.
//   "401":
//     description: Not authenticated.
//   "403":
//     description: Caller is not an admin.
//   "404":
//     description: Contest week not found.

// swagger:operation GET /v1/weeks/{weekId}/winners weeks week-winners
// Retrieve the winners of a contest week, ordered by position.
// ---
// parameters:
// - name: weekId
//   in: path
//   type: integer
//   format: int64
//   required: true
// responses:
//   "200":
//     "$ref": "#/responses/winnersResponse"
//     description: A successful request.

// Winners with joined app details.
// swagger:response winnersResponse
type winnersResponseWrapper struct {
	// in: body
	Body []models.Winner
}

// swagger:operation PUT /v1/weeks/{weekId}/winners/{position} weeks select-winner
// Select or replace the winner at a podium position.  Admin only; the
// week must have ended.  Filling the last position completes the week.
// ---
// security:
// - api_key: []
// parameters:
// - name: weekId
//   in: path
//   type: integer
//   format: int64
//   required: true
// - name: position
//   in: path
//   type: integer
//   minimum: 1
//   maximum: 3
//   required: true
// - name: body
//   in: body
//   schema:
//     type: object
//     properties:
//       app_id:
//         type: string
// responses:
//   "200":
//     "$ref": "#/responses/winnersResponse"
//     description: The winners after the write.
//   "400":
//     description: Week has not ended, or invalid payload.
//   "401":
//     description: Not authenticated.
//   "403":
//     description: Caller is not an admin.
//   "404":
//     description: Contest week not found.

// swagger:operation GET /v1/weeks/{weekId}/results weeks week-results
// Retrieve per-app vote tallies for a week, most votes first.  Apps
// without votes are included with a zero count.
// ---
// parameters:
// - name: weekId
//   in: path
//   type: integer
//   format: int64
//   required: true
// responses:
//   "200":
//     "$ref": "#/responses/resultsResponse"
//     description: A successful request.
//   "404":
//     description: Contest week not found.

// Vote tallies.
// swagger:response resultsResponse
type resultsResponseWrapper struct {
	// in: body
	Body []models.VoteTotal
}
