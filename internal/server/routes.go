package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/appvote/portal/internal/app"
	"github.com/appvote/portal/internal/errors"
	"github.com/appvote/portal/internal/models"
)

const v1 = "/v1"

func (s *Server) Routes() {
	s.router = mux.NewRouter()
	// API Health & Version
	s.router.HandleFunc(fmt.Sprintf("%s/ping", v1), s.handlePing()).Methods(http.MethodGet)
	s.router.HandleFunc("/metrics", promhttp.Handler().ServeHTTP).Methods(http.MethodGet)

	// Contest weeks
	s.router.HandleFunc(fmt.Sprintf("%s/weeks", v1), s.handleListWeeks()).Methods(http.MethodGet)
	s.router.HandleFunc(fmt.Sprintf("%s/weeks/current", v1), s.handleCurrentWeek()).Methods(http.MethodGet)
	s.router.HandleFunc(fmt.Sprintf("%s/weeks/{id:[0-9]+}", v1), s.handleGetWeek()).Methods(http.MethodGet).Name("week")
	s.router.HandleFunc(fmt.Sprintf("%s/weeks/{id:[0-9]+}/switch", v1), s.handleSwitchWeek()).Methods(http.MethodPost)
	s.router.HandleFunc(fmt.Sprintf("%s/weeks/{id:[0-9]+}/status", v1), s.handleUpdateWeekStatus()).Methods(http.MethodPut)
	s.router.HandleFunc(fmt.Sprintf("%s/weeks/{id:[0-9]+}/winners", v1), s.handleWeekWinners()).Methods(http.MethodGet)
	s.router.HandleFunc(fmt.Sprintf("%s/weeks/{id:[0-9]+}/winners/{position:[1-3]}", v1), s.handleSelectWinner()).Methods(http.MethodPut)
	s.router.HandleFunc(fmt.Sprintf("%s/weeks/{id:[0-9]+}/results", v1), s.handleWeekResults()).Methods(http.MethodGet)

	// Apps
	s.router.HandleFunc(fmt.Sprintf("%s/apps", v1), s.handleSubmitApp()).Methods(http.MethodPost)
	s.router.HandleFunc(fmt.Sprintf("%s/apps", v1), s.handleListApps()).Methods(http.MethodGet)

	// Votes
	s.router.HandleFunc(fmt.Sprintf("%s/votes", v1), s.handleAddVote()).Methods(http.MethodPost)
	s.router.HandleFunc(fmt.Sprintf("%s/votes", v1), s.handleMyVotes()).Methods(http.MethodGet)
	s.router.HandleFunc(fmt.Sprintf("%s/votes/{appId}", v1), s.handleRemoveVote()).Methods(http.MethodDelete)

	// Profiles
	s.router.HandleFunc(fmt.Sprintf("%s/profiles/{id}", v1), s.handleGetProfile()).Methods(http.MethodGet).Name("profile")
}

func (s *Server) AuthRoutes() {
	newSession := s.router.HandleFunc(fmt.Sprintf("%s/sessions", v1), s.handleNewSession()).Methods(http.MethodPost)

	s.router.Use(s.AuthClient.Verifier())
	s.router.Use(SelectiveMiddleware(func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			s.AuthClient.Authenticator(nil)(next).ServeHTTP(w, r)
		}
	}, []*mux.Route{newSession}))
}

func (s *Server) handlePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version := models.VersionInfo{
			Version: s.version(),
		}
		s.respond(w, r, version, http.StatusOK)
		return
	}
}

func weekID(r *http.Request) (int64, error) {
	vars := mux.Vars(r)
	return strconv.ParseInt(vars["id"], 10, 64)
}

func (s *Server) handleListWeeks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.respond(w, r, s.App.GetAllWeeks(), http.StatusOK)
		return
	}
}

// currentWeekResponse mirrors the contest state the portal UI binds to.
type currentWeekResponse struct {
	CurrentWeek              *models.ContestWeek `json:"current_week"`
	SelectedWeek             *models.ContestWeek `json:"selected_week"`
	ActiveWeek               *models.ContestWeek `json:"active_week"`
	HasValidContestStructure bool                `json:"has_valid_contest_structure"`
	CanSubmitApps            bool                `json:"can_submit_apps"`
	CanVote                  bool                `json:"can_vote"`
	Loading                  bool                `json:"loading"`
}

func (s *Server) handleCurrentWeek() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := currentWeekResponse{
			CurrentWeek:              s.App.CurrentWeek(),
			SelectedWeek:             s.App.SelectedWeek(),
			ActiveWeek:               s.App.GetActiveWeek(),
			HasValidContestStructure: s.App.HasValidContestStructure(),
			CanSubmitApps:            s.App.CanSubmitApps(),
			CanVote:                  s.App.CanVote(),
			Loading:                  s.App.Loading(),
		}

		s.respond(w, r, resp, http.StatusOK)
		return
	}
}

func (s *Server) handleGetWeek() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := weekID(r)
		if err != nil {
			s.respond(w, r, nil, http.StatusBadRequest)
			return
		}

		week, err := s.App.GetWeek(id)
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		s.respond(w, r, week, http.StatusOK)
		return
	}
}

func (s *Server) handleSwitchWeek() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := weekID(r)
		if err != nil {
			s.respond(w, r, nil, http.StatusBadRequest)
			return
		}

		if !s.App.SwitchWeek(id) {
			s.respond(w, r, errorResponse{Error: "contest week not found"}, http.StatusNotFound)
			return
		}

		s.respond(w, r, s.App.SelectedWeek(), http.StatusOK)
		return
	}
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleUpdateWeekStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := s.AuthClient.UserTokenFromCtx(r.Context())

		id, err := weekID(r)
		if err != nil {
			s.respond(w, r, nil, http.StatusBadRequest)
			return
		}

		var req updateStatusRequest
		if err := s.decode(w, r, &req); err != nil {
			s.respond(w, r, nil, http.StatusBadRequest)
			return
		}

		if err := s.App.UpdateContestStatus(token, id, req.Status); err != nil {
			s.respondError(w, r, err)
			return
		}

		week, err := s.App.GetWeek(id)
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		s.respond(w, r, week, http.StatusOK)
		return
	}
}

func (s *Server) handleWeekWinners() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := weekID(r)
		if err != nil {
			s.respond(w, r, nil, http.StatusBadRequest)
			return
		}

		s.respond(w, r, s.App.GetWinnersForWeek(id), http.StatusOK)
		return
	}
}

type selectWinnerRequest struct {
	AppID string `json:"app_id"`
}

func (s *Server) handleSelectWinner() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := s.AuthClient.UserTokenFromCtx(r.Context())
		vars := mux.Vars(r)

		id, err := weekID(r)
		if err != nil {
			s.respond(w, r, nil, http.StatusBadRequest)
			return
		}

		position, err := strconv.Atoi(vars["position"])
		if err != nil {
			s.respond(w, r, nil, http.StatusBadRequest)
			return
		}

		var req selectWinnerRequest
		if err := s.decode(w, r, &req); err != nil || req.AppID == "" {
			s.respond(w, r, nil, http.StatusBadRequest)
			return
		}

		if err := s.App.SelectWinner(token, id, req.AppID, position); err != nil {
			s.respondError(w, r, err)
			return
		}

		s.respond(w, r, s.App.GetWinnersForWeek(id), http.StatusOK)
		return
	}
}

func (s *Server) handleWeekResults() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := weekID(r)
		if err != nil {
			s.respond(w, r, nil, http.StatusBadRequest)
			return
		}

		totals, err := s.App.WeekResults(id)
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		s.respond(w, r, totals, http.StatusOK)
		return
	}
}

func (s *Server) handleSubmitApp() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := s.AuthClient.UserTokenFromCtx(r.Context())

		var newApp models.App
		if err := s.decode(w, r, &newApp); err != nil {
			s.respond(w, r, nil, http.StatusBadRequest)
			return
		}

		created, err := s.App.SubmitApp(token, newApp)
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		s.respond(w, r, created, http.StatusCreated)
		return
	}
}

func (s *Server) handleListApps() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := app.NewOptions()

		if weekParam := r.URL.Query().Get("week"); weekParam != "" {
			id, err := strconv.ParseInt(weekParam, 10, 64)
			if err != nil {
				s.respond(w, r, nil, http.StatusBadRequest)
				return
			}
			opts = opts.ForWeek(id)
		}

		if userParam := r.URL.Query().Get("user"); userParam != "" {
			opts = opts.ByUser(userParam)
		}

		apps, err := s.App.ListApps(opts)
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		s.respond(w, r, apps, http.StatusOK)
		return
	}
}

type addVoteRequest struct {
	AppID string `json:"app_id"`
}

func (s *Server) handleAddVote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := s.AuthClient.UserTokenFromCtx(r.Context())

		var req addVoteRequest
		if err := s.decode(w, r, &req); err != nil || req.AppID == "" {
			s.respond(w, r, nil, http.StatusBadRequest)
			return
		}

		if err := s.App.AddVote(token, req.AppID); err != nil {
			s.respondError(w, r, err)
			return
		}

		s.respond(w, r, nil, http.StatusCreated)
		return
	}
}

func (s *Server) handleMyVotes() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := s.AuthClient.UserTokenFromCtx(r.Context())

		votes, err := s.App.ListUserVotes(token)
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		s.respond(w, r, votes, http.StatusOK)
		return
	}
}

func (s *Server) handleRemoveVote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := s.AuthClient.UserTokenFromCtx(r.Context())
		vars := mux.Vars(r)

		if err := s.App.RemoveVote(token, vars["appId"]); err != nil {
			s.respondError(w, r, err)
			return
		}

		s.respond(w, r, nil, http.StatusOK)
		return
	}
}

func (s *Server) handleGetProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)

		profile, err := s.App.GetProfile(vars["id"])
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		s.respond(w, r, profile, http.StatusOK)
		return
	}
}

func (s *Server) handleNewSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")

		splitHeader := strings.Split(authHeader, "Bearer")
		if len(splitHeader) != 2 { // Bearer token not in proper format
			s.respond(w, r, nil, http.StatusBadRequest)
			return
		}

		accessToken := strings.TrimSpace(splitHeader[1])

		identity, err := s.IdentityClient.IdentityFromToken(accessToken)
		if err != nil {
			if errors.Kind(err) == errors.KindAuthError {
				s.respond(w, r, nil, http.StatusUnauthorized) // provider rejected the token
				return
			} else if errors.Kind(err) == errors.KindServiceUnavailable {
				s.respond(w, r, nil, http.StatusServiceUnavailable) // provider may be down
				return
			} else {
				s.respond(w, r, nil, http.StatusInternalServerError)
				return
			}
		}

		profile, created, err := s.App.EnsureProfile(identity.ID, identity.Username, identity.RegistrationNumber)
		if err != nil {
			s.respond(w, r, nil, http.StatusInternalServerError)
			return
		}

		token, err := s.AuthClient.CreateJWT(profile)
		if err != nil {
			s.respond(w, r, nil, http.StatusInternalServerError)
			return
		}

		payload := struct {
			Nickname string `json:"nickname"`
			Role     string `json:"role"`
			Token    string `json:"token"`
		}{
			Nickname: profile.Username,
			Role:     profile.Role,
			Token:    token,
		}

		var status = http.StatusOK
		if created {
			status = http.StatusCreated

			url, err := s.router.Get("profile").URLPath("id", profile.ID)
			if err != nil {
				s.respond(w, r, nil, http.StatusInternalServerError)
				return
			}

			w.Header().Set("Location", fmt.Sprintf("%s%s", s.host, url))
		}
		s.respond(w, r, payload, status)
		return
	}
}
