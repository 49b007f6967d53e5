package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/appvote/portal/internal/errors"
)

var accessToken = "This is the token"

func TestIdentityClient_IdentityFromToken(t *testing.T) {
	goodResponse := map[string]string{
		"sub":                 "user-id",
		"username":            "dev",
		"registration_number": "RA12345",
	}
	badResponse := map[string]string{"foo": "bar"}

	tests := []struct {
		description   string
		expectedCode  int
		errorExpected bool
		expectedKind  errors.Code
		response      interface{}
	}{
		{
			description:   "Positive test",
			expectedCode:  http.StatusOK,
			errorExpected: false,
			response:      goodResponse,
		},
		{
			description:   "Provider down",
			expectedCode:  http.StatusServiceUnavailable,
			errorExpected: true,
			expectedKind:  errors.KindServiceUnavailable,
		},
		{
			description:   "Bad token",
			expectedCode:  http.StatusUnauthorized,
			errorExpected: true,
			expectedKind:  errors.KindAuthError,
		},
		{
			description:   "Missing subject",
			expectedCode:  http.StatusOK,
			errorExpected: true,
			response:      badResponse,
		},
	}

	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			ts := httptest.NewServer(fakeIdentityHandler(t, test.expectedCode, test.response))
			defer ts.Close()

			client := NewIdentityClient(ts.URL)
			identity, err := client.IdentityFromToken(accessToken)
			if test.errorExpected && err == nil {
				t.Errorf("Expected error and didn't get one")
			}

			if test.errorExpected && test.expectedKind != errors.KindUnexpected && errors.Kind(err) != test.expectedKind {
				t.Errorf("Wrong kind of error")
			}

			if !test.errorExpected && err != nil {
				t.Errorf("Unexpected error: %v", err.Error())
			}

			if !test.errorExpected {
				if identity.ID != "user-id" || identity.Username != "dev" || identity.RegistrationNumber != "RA12345" {
					t.Errorf("Received wrong identity: %v", identity)
				}
			}
		})
	}
}

func fakeIdentityHandler(t *testing.T, status int, response interface{}) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth != "Bearer "+accessToken {
			t.Errorf("IdentityFromToken didn't properly send along Authorization header")
		}

		w.WriteHeader(status)
		if response != nil {
			err := json.NewEncoder(w).Encode(response)
			if err != nil {
				t.Errorf("Error encoding json: %v", err.Error())
			}
		}
	}

	return http.HandlerFunc(fn)
}
