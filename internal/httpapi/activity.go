package httpapi

import (
	"net/http"
	"strconv"
)

func (s *Server) playSong(w http.ResponseWriter, r *http.Request, userID int64) {
	var req songRefRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	logged, err := s.activity.PlaySong(r.Context(), userID, req.SongID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if !logged {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "song not found"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"logged": true})
}

func (s *Server) playCollection(w http.ResponseWriter, r *http.Request, userID int64) {
	title := r.PathValue("title")

	logged, err := s.activity.PlayCollection(r.Context(), userID, title)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"logged": logged})
}

type rateRequest struct {
	SongID int64 `json:"song_id"`
	Rating int   `json:"rating"`
}

func (s *Server) rateSong(w http.ResponseWriter, r *http.Request, userID int64) {
	var req rateRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	rated, err := s.activity.Rate(r.Context(), userID, req.SongID, req.Rating)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if !rated {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "rating rejected"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"rated": true})
}

func (s *Server) topSongs(w http.ResponseWriter, r *http.Request, _ int64) {
	windowDays := 0
	if raw := r.URL.Query().Get("window_days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid window_days"})
			return
		}
		windowDays = n
	}

	songs, err := s.activity.TopSongs(r.Context(), windowDays)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, songs)
}

func (s *Server) topSongsFollowed(w http.ResponseWriter, r *http.Request, userID int64) {
	songs, err := s.activity.TopSongsFollowed(r.Context(), userID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, songs)
}

func (s *Server) topGenres(w http.ResponseWriter, r *http.Request, _ int64) {
	genres, err := s.activity.TopGenres(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, genres)
}
