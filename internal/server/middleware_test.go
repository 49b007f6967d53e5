package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
)

func TestSelectiveMiddleware(t *testing.T) {
	inner := okHandler()
	router := mux.NewRouter()

	// Both paths share the handler; only /bar gets the middleware.
	ignoredRoute := router.HandleFunc("/foo", inner)
	router.HandleFunc("/bar", inner)

	router.Use(SelectiveMiddleware(badRequestWare, []*mux.Route{ignoredRoute}))

	ts := httptest.NewServer(router)
	defer ts.Close()

	tests := []struct {
		description  string
		path         string
		expectedCode int
	}{
		{
			description:  "No Match",
			path:         "/bar",
			expectedCode: http.StatusBadRequest,
		},
		{
			description:  "Match",
			path:         "/foo",
			expectedCode: http.StatusOK,
		},
	}

	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			resp, err := http.Get(ts.URL + test.path)
			if err != nil {
				t.Fatalf("unexpected error from http.Get: %v", err.Error())
			}
			defer resp.Body.Close()

			if resp.StatusCode != test.expectedCode {
				t.Errorf("Expected status code: %v, received: %v", test.expectedCode, resp.StatusCode)
			}
		})
	}
}

// Middleware that returns http.StatusBadRequest every time
func badRequestWare(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}
}

// Handler that always returns StatusOK
func okHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
}
