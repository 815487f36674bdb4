package httpapi

import (
	"net/http"
	"strconv"
)

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request, userID int64) {
	var err error
	var users interface{}

	if term := r.URL.Query().Get("email"); term != "" {
		users, err = s.social.SearchByEmail(r.Context(), userID, term)
	} else {
		users, err = s.social.ListOthers(r.Context(), userID)
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

type followRequest struct {
	FolloweeID int64 `json:"followee_id"`
}

func (s *Server) follow(w http.ResponseWriter, r *http.Request, userID int64) {
	var req followRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	followed, err := s.social.Follow(r.Context(), userID, req.FolloweeID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if !followed {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cannot follow user"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"following": true})
}

func (s *Server) unfollow(w http.ResponseWriter, r *http.Request, userID int64) {
	followeeID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return
	}

	removed, err := s.social.Unfollow(r.Context(), userID, followeeID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if !removed {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not following user"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
