package docs

import "github.com/appvote/portal/internal/models"

// swagger:route POST /v1/sessions auth new-session
// Request a new session from the server.
//
// Bearer token should be an access token issued by the configured
// identity provider.  The portal exchanges it for its own JWT; a
// profile is created on first sight.
// responses:
//   200: sessionResponse
//   201: sessionCreatedResponse
//   400: badRequestError
//   401: unauthorizedError
//   500: unexpectedError
//   503: serviceUnavailableError

// swagger:response sessionResponse
type sessionResponse struct {
	// in: body
	Body struct {
		// example: dev
		Nickname string `json:"nickname"`
		// example: user
		Role string `json:"role"`
		// example: eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9.eyJzdWIiOiJ1c2VyLWlkIiwibmFtZSI6ImRldiIsInJvbGUiOiJ1c2VyIn0.sig
		Token string `json:"token"`
	}
}

// Same payload as sessionResponse; the Location header points at the
// newly created profile.
// swagger:response sessionCreatedResponse
type sessionCreatedResponse struct {
	// in: body
	Body struct {
		Nickname string `json:"nickname"`
		Role     string `json:"role"`
		Token    string `json:"token"`
	}
	// in: header
	Location string
}

// swagger:parameters new-session
type newSessionParameters struct {
	// in: header
	Authorization string
}

// swagger:operation GET /v1/profiles/{profileId} auth get-profile
// Retrieve a profile by id.
// ---
// parameters:
// - name: profileId
//   in: path
//   type: string
//   required: true
// responses:
//   "200":
//     "$ref": "#/responses/profileResponse"
//     description: A successful request.
//   "404":
//     description: Profile not found.
//   "5xx":
//     description: Unexpected error.

// Profile object.
// swagger:response profileResponse
type profileResponse struct {
	// in: body
	Body models.Profile
}
