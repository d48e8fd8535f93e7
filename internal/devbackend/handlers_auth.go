package devbackend

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/academy-admin/auth"
	"github.com/jrsteele09/academy-admin/internal/validation"
	"github.com/jrsteele09/academy-admin/users"
	"github.com/rs/zerolog/log"
)

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.LoginRequest
		if !decodeBody(w, r, &req) {
			return
		}
		req.Email = strings.TrimSpace(req.Email)
		if err := validation.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "Please provide a valid email and password", "")
			return
		}

		user, err := s.users.GetByEmail(req.Email)
		if err != nil || user == nil || !users.CheckPasswordHash(req.Password, user.PasswordHash) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password", "")
			return
		}

		resp, err := s.issue(user)
		if err != nil {
			log.Err(err).Msg("unable to issue tokens")
			writeError(w, http.StatusInternalServerError, "Unable to log in", "")
			return
		}
		s.logins.Add(1)
		writeData(w, http.StatusOK, resp)
	}
}

func (s *Server) issue(user *users.User) (*auth.LoginResponse, error) {
	access, err := s.tokens.CreateAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.CreateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &auth.LoginResponse{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.RefreshToken == "" {
			writeError(w, http.StatusBadRequest, "Refresh token is required", "")
			return
		}

		userID, ok := s.tokens.LookupRefreshToken(req.RefreshToken)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Invalid refresh token", CodeSessionInvalid)
			return
		}
		user, err := s.users.GetByID(userID)
		if err != nil {
			s.tokens.RevokeRefreshToken(req.RefreshToken)
			writeError(w, http.StatusUnauthorized, "Invalid refresh token", CodeSessionInvalid)
			return
		}

		access, err := s.tokens.CreateAccessToken(user)
		if err != nil {
			log.Err(err).Msg("unable to issue access token")
			writeError(w, http.StatusInternalServerError, "Unable to refresh token", "")
			return
		}
		resp := auth.RefreshResponse{AccessToken: access}
		if s.rotateRefreshTokens {
			if resp.RefreshToken, err = s.tokens.CreateRefreshToken(user.ID); err != nil {
				log.Err(err).Msg("unable to rotate refresh token")
				writeError(w, http.StatusInternalServerError, "Unable to refresh token", "")
				return
			}
		}
		s.refreshes.Add(1)
		writeData(w, http.StatusOK, resp)
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.tokens.RevokeUser(userFromContext(r.Context()).ID)
		writeData(w, http.StatusOK, map[string]string{"message": "Logged out"})
	}
}

func (s *Server) CurrentUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, auth.CurrentUserResponse{User: userFromContext(r.Context())})
	}
}

func (s *Server) ListUsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var role users.RoleType
		if raw := r.URL.Query().Get("role"); raw != "" {
			parsed, err := users.ParseRole(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error(), "")
				return
			}
			role = parsed
		}
		list, err := s.users.List(role)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Unable to list users", "")
			return
		}
		writeData(w, http.StatusOK, list)
	}
}

// GetUserHandler serves /users/{id} and /users/stats.
func (s *Server) GetUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if id == "stats" {
			s.userStats(w)
			return
		}
		user, err := s.users.GetByID(id)
		if err != nil {
			writeError(w, http.StatusNotFound, "User not found", "")
			return
		}
		writeData(w, http.StatusOK, user)
	}
}

func (s *Server) userStats(w http.ResponseWriter) {
	list, err := s.users.List("")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Unable to count users", "")
		return
	}
	byRole := map[string]int{}
	for _, u := range list {
		byRole[string(u.Role)]++
	}
	writeData(w, http.StatusOK, map[string]any{"total": len(list), "byRole": byRole})
}
