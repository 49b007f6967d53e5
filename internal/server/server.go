package server

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/appvote/portal/internal/app"
	"github.com/appvote/portal/internal/auth"
	"github.com/appvote/portal/internal/errors"
)

/*
Server is a type that holds state for the server, along with routers and handlers.
*/
type Server struct {
	App            *app.ContestService
	AuthClient     auth.Client
	IdentityClient IdentityClient
	router         *mux.Router
	host           string
}

func NewServer() *Server {
	srv := Server{}
	srv.Routes()

	return &srv
}

func (s *Server) SetHost(host string) {
	s.host = host
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		err := json.NewEncoder(w).Encode(data)
		if err != nil {
			log.Printf("json encode: %s", err)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// respondError maps the error's Kind onto an HTTP status and carries
// the message through as the human-readable side channel.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var status int

	switch errors.Kind(err) {
	case errors.KindUnauthenticated:
		status = http.StatusUnauthorized
	case errors.KindUnauthorized:
		status = http.StatusForbidden
	case errors.KindNotFound:
		status = http.StatusNotFound
	case errors.KindBadRequest:
		status = http.StatusBadRequest
	case errors.KindConflict:
		status = http.StatusConflict
	case errors.KindSchemaAbsent, errors.KindServiceUnavailable:
		status = http.StatusServiceUnavailable
	default:
		log.Println(err.Error())
		status = http.StatusInternalServerError
	}

	s.respond(w, r, errorResponse{Error: err.Error()}, status)
}

const maxRequestSize = 1 << 20 // 1 MB

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxRequestSize)).Decode(&v)
}

func (s Server) version() string {
	return "v0.1.0"
}
