package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"tunecrate/internal/store"
)

func (s *Server) searchSongs(w http.ResponseWriter, r *http.Request, userID int64) {
	q := r.URL.Query()

	results, err := s.catalog.Search(r.Context(), userID, store.SearchQuery{
		Term:      q.Get("term"),
		Type:      q.Get("type"),
		SortBy:    q.Get("sort"),
		SortOrder: q.Get("order"),
	})
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) getSong(w http.ResponseWriter, r *http.Request, _ int64) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid song id"})
		return
	}

	song, err := s.catalog.Song(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrSongNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "song not found"})
			return
		}
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, song)
}

func (s *Server) listAlbumSongs(w http.ResponseWriter, r *http.Request, _ int64) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid album id"})
		return
	}

	songs, err := s.catalog.AlbumSongs(r.Context(), id)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, songs)
}
