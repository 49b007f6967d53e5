// Package mocks provides a canned auth.Client for handler tests.  The
// verifier and authenticator middlewares are no-ops; the token returned
// from a context is whatever the test sets on the mock.
package mocks

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/appvote/portal/internal/models"
)

type AuthClient struct {
	Token models.UserToken
	// JWT and Err control CreateJWT's return values.
	JWT string
	Err error
}

func passthrough(next http.Handler) http.Handler {
	return next
}

func (m *AuthClient) Verifier() func(http.Handler) http.Handler {
	return passthrough
}

func (m *AuthClient) Authenticator(ignoredRoutes []*mux.Route) func(http.Handler) http.Handler {
	return passthrough
}

func (m *AuthClient) CreateJWT(p models.Profile) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if m.JWT != "" {
		return m.JWT, nil
	}
	return "test-jwt", nil
}

func (m *AuthClient) UserTokenFromCtx(ctx context.Context) models.UserToken {
	return m.Token
}
