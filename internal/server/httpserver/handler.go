package httpserver

import (
	"net/http"

	"github.com/dmitrijs2005/gigbook/internal/api"
	"github.com/dmitrijs2005/gigbook/internal/common"
	"github.com/dmitrijs2005/gigbook/internal/server/models"
	"github.com/dmitrijs2005/gigbook/internal/server/services"
	"github.com/dmitrijs2005/gigbook/internal/validation"
)

// fail answers with the status for err. Server errors are logged and their
// details withheld from the client.
func (s *HTTPServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	switch status {
	case http.StatusInternalServerError:
		s.logger.Error(r.Context(), err.Error(), "path", r.URL.Path)
		msg = "internal error"
	case http.StatusBadRequest:
		msg = validation.Message(err)
	}
	writeError(w, status, msg)
}

func (s *HTTPServer) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

func (s *HTTPServer) signUp(w http.ResponseWriter, r *http.Request) {
	var req api.SignUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	req.Email = common.NormalizeEmail(req.Email)
	if err := s.validate.Struct(req); err != nil {
		s.fail(w, r, err)
		return
	}

	user, pair, err := s.users.SignUp(r.Context(), req.Email, req.Password, req.Username)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, authResponse(user, pair))
}

func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	req.Email = common.NormalizeEmail(req.Email)
	if err := s.validate.Struct(req); err != nil {
		s.fail(w, r, err)
		return
	}

	user, pair, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse(user, pair))
}

func (s *HTTPServer) refresh(w http.ResponseWriter, r *http.Request) {
	var req api.RefreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.fail(w, r, err)
		return
	}

	pair, err := s.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.TokenPair{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

// logout always succeeds for a well-formed body; an unknown refresh token
// has nothing left to revoke.
func (s *HTTPServer) logout(w http.ResponseWriter, r *http.Request) {
	var req api.LogoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.users.Logout(r.Context(), req.RefreshToken); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) me(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetUser(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		if statusFor(err) == http.StatusNotFound {
			writeError(w, http.StatusUnauthorized, "unknown user")
			return
		}
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.User{ID: user.ID, Email: user.Email, Username: user.Username})
}

func (s *HTTPServer) createLog(w http.ResponseWriter, r *http.Request) {
	var req api.LogRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.fail(w, r, err)
		return
	}

	l, err := s.logs.Save(r.Context(), userIDFrom(r.Context()), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAPILog(l))
}

func (s *HTTPServer) listLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.logs.List(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	out := make([]api.Log, 0, len(logs))
	for i := range logs {
		out = append(out, toAPILog(&logs[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func authResponse(u *models.User, pair *services.TokenPair) api.AuthResponse {
	return api.AuthResponse{
		User:         api.User{ID: u.ID, Email: u.Email, Username: u.Username},
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}
}

func toAPILog(l *models.Log) api.Log {
	return api.Log{
		ID:     l.ID,
		UserID: l.UserID,
		LogRequest: api.LogRequest{
			ArtistName: l.ArtistName,
			VenueName:  l.VenueName,
			City:       l.City,
			Date:       l.Date,
			TourName:   l.TourName,
			Rating:     l.Rating,
			Note:       l.Note,
		},
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}
