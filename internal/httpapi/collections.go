package httpapi

import (
	"net/http"
	"strconv"
)

func (s *Server) listCollections(w http.ResponseWriter, r *http.Request, userID int64) {
	summaries, err := s.collections.List(r.Context(), userID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

type createCollectionRequest struct {
	Title string `json:"title"`
}

func (s *Server) createCollection(w http.ResponseWriter, r *http.Request, userID int64) {
	var req createCollectionRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	created, err := s.collections.Create(r.Context(), userID, req.Title)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if !created {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "collection not created"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"title": req.Title})
}

func (s *Server) collectionDetails(w http.ResponseWriter, r *http.Request, userID int64) {
	title := r.PathValue("title")

	detail, err := s.collections.Details(r.Context(), userID, title)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if detail == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "collection not found"})
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

type renameCollectionRequest struct {
	NewTitle string `json:"new_title"`
}

func (s *Server) renameCollection(w http.ResponseWriter, r *http.Request, userID int64) {
	title := r.PathValue("title")

	var req renameCollectionRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	renamed, err := s.collections.Rename(r.Context(), userID, title, req.NewTitle)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if !renamed {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "collection not renamed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"title": req.NewTitle})
}

func (s *Server) deleteCollection(w http.ResponseWriter, r *http.Request, userID int64) {
	title := r.PathValue("title")

	deleted, err := s.collections.Delete(r.Context(), userID, title)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "collection not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type songRefRequest struct {
	SongID int64 `json:"song_id"`
}

func (s *Server) addSong(w http.ResponseWriter, r *http.Request, userID int64) {
	title := r.PathValue("title")

	var req songRefRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	added, err := s.collections.AddSong(r.Context(), userID, title, req.SongID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if !added {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "song not added"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"added": true})
}

type albumRefRequest struct {
	AlbumID int64 `json:"album_id"`
}

func (s *Server) addAlbum(w http.ResponseWriter, r *http.Request, userID int64) {
	title := r.PathValue("title")

	var req albumRefRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	added, err := s.collections.AddAlbum(r.Context(), userID, title, req.AlbumID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"added": added})
}

func (s *Server) removeSong(w http.ResponseWriter, r *http.Request, userID int64) {
	title := r.PathValue("title")
	songID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid song id"})
		return
	}

	removed, err := s.collections.RemoveSong(r.Context(), userID, title, songID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if !removed {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "song not in collection"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
