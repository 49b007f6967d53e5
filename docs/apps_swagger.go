package docs

import "github.com/appvote/portal/internal/models"

// swagger:route GET /v1/apps apps list-apps
// Retrieve submitted apps, newest first.  Optional week and user query
// parameters filter the listing.
// responses:
//   200: appsResponse
//   400: badRequestError
//   500: unexpectedError

// List of apps.
// swagger:response appsResponse
type appsResponseWrapper struct {
	// in: body
	Body []models.App
}

// swagger:route POST /v1/apps apps submit-app
// Submit an app to the current active contest week.  The contest week
// is stamped server-side.
// security:
//   api_key: []
// responses:
//   201: appCreated
//   400: badRequestError
//   401: unauthorizedError
//   500: unexpectedError

// The created app.
// swagger:response appCreated
type appCreatedResponse struct {
	// in: body
	Body models.App
}

// swagger:parameters submit-app
type submitAppParameters struct {
	// App to be submitted.  id, user_id, and contest_week_id fields
	// are ignored, if present.
	// in: body
	Body models.App
}

// swagger:route GET /v1/votes votes my-votes
// Retrieve the caller's votes for the current week.
// security:
//   api_key: []
// responses:
//   200: votesResponse
//   401: unauthorizedError
//   500: unexpectedError

// List of votes.
// swagger:response votesResponse
type votesResponseWrapper struct {
	// in: body
	Body []models.Vote
}

// swagger:route POST /v1/votes votes add-vote
// Vote for an app in the current active week.  A caller holds at most
// five votes per week, one per app.
// security:
//   api_key: []
// responses:
//   201: voteCreated
//   400: badRequestError
//   401: unauthorizedError
//   409: conflictError
//   500: unexpectedError

// Vote recorded.
// swagger:response voteCreated
type voteCreatedResponse struct{}

// swagger:parameters add-vote
type addVoteParameters struct {
	// in: body
	Body struct {
		AppID string `json:"app_id"`
	}
}

// swagger:operation DELETE /v1/votes/{appId} votes remove-vote
// Withdraw the caller's vote for an app.
// ---
// security:
// - api_key: []
// parameters:
// - name: appId
//   in: path
//   type: string
//   required: true
// responses:
//   "200":
//     description: Vote removed.
//   "401":
//     description: Not authenticated.
//   "404":
//     description: No such vote.
