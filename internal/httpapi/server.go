package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"tunecrate/internal/auth"
	"tunecrate/internal/store"
)

// UserService captures the account operations needed by the HTTP handlers.
type UserService interface {
	Register(ctx context.Context, u store.NewUser) (int64, error)
	Login(ctx context.Context, username, password string) (*store.UserSummary, error)
}

// CollectionService coordinates collection CRUD and membership changes.
type CollectionService interface {
	List(ctx context.Context, userID int64) ([]store.CollectionSummary, error)
	Create(ctx context.Context, userID int64, title string) (bool, error)
	Details(ctx context.Context, userID int64, title string) (*store.CollectionDetail, error)
	Rename(ctx context.Context, userID int64, oldTitle, newTitle string) (bool, error)
	Delete(ctx context.Context, userID int64, title string) (bool, error)
	AddSong(ctx context.Context, userID int64, title string, songID int64) (bool, error)
	AddAlbum(ctx context.Context, userID int64, title string, albumID int64) (int, error)
	RemoveSong(ctx context.Context, userID int64, title string, songID int64) (bool, error)
}

// CatalogService exposes search and song lookups.
type CatalogService interface {
	Search(ctx context.Context, viewerID int64, q store.SearchQuery) ([]store.SongResult, error)
	Song(ctx context.Context, id int64) (store.Song, error)
	AlbumSongs(ctx context.Context, albumID int64) ([]store.Song, error)
}

// ActivityService exposes play logging, ratings, and popularity rollups.
type ActivityService interface {
	PlaySong(ctx context.Context, userID, songID int64) (bool, error)
	PlayCollection(ctx context.Context, userID int64, title string) (int, error)
	Rate(ctx context.Context, userID, songID int64, rating int) (bool, error)
	TopSongs(ctx context.Context, windowDays int) ([]store.PopularSong, error)
	TopSongsFollowed(ctx context.Context, userID int64) ([]store.PopularSong, error)
	TopGenres(ctx context.Context) ([]store.PopularGenre, error)
}

// SocialService exposes the follow graph and user discovery.
type SocialService interface {
	Follow(ctx context.Context, followerID, followeeID int64) (bool, error)
	Unfollow(ctx context.Context, followerID, followeeID int64) (bool, error)
	ListOthers(ctx context.Context, viewerID int64) ([]store.UserListing, error)
	SearchByEmail(ctx context.Context, viewerID int64, term string) ([]store.UserListing, error)
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users       UserService
	collections CollectionService
	catalog     CatalogService
	activity    ActivityService
	social      SocialService
	tokens      *auth.TokenManager
	logger      zerolog.Logger
}

// New configures a Server with the given services.
func New(
	users UserService,
	collections CollectionService,
	catalog CatalogService,
	activity ActivityService,
	social SocialService,
	tokens *auth.TokenManager,
	logger zerolog.Logger,
) *Server {
	return &Server{
		users:       users,
		collections: collections,
		catalog:     catalog,
		activity:    activity,
		social:      social,
		tokens:      tokens,
		logger:      logger,
	}
}

// Routes exposes the HTTP handlers.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /api/v1/auth/signup", s.handleSignup)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)

	mux.HandleFunc("GET /api/v1/collections", s.withUser(s.listCollections))
	mux.HandleFunc("POST /api/v1/collections", s.withUser(s.createCollection))
	mux.HandleFunc("GET /api/v1/collections/{title}", s.withUser(s.collectionDetails))
	mux.HandleFunc("DELETE /api/v1/collections/{title}", s.withUser(s.deleteCollection))
	mux.HandleFunc("POST /api/v1/collections/{title}/rename", s.withUser(s.renameCollection))
	mux.HandleFunc("POST /api/v1/collections/{title}/songs", s.withUser(s.addSong))
	mux.HandleFunc("DELETE /api/v1/collections/{title}/songs/{id}", s.withUser(s.removeSong))
	mux.HandleFunc("POST /api/v1/collections/{title}/albums", s.withUser(s.addAlbum))
	mux.HandleFunc("POST /api/v1/collections/{title}/play", s.withUser(s.playCollection))

	mux.HandleFunc("GET /api/v1/search", s.withUser(s.searchSongs))
	mux.HandleFunc("GET /api/v1/songs/{id}", s.withUser(s.getSong))
	mux.HandleFunc("GET /api/v1/albums/{id}/songs", s.withUser(s.listAlbumSongs))

	mux.HandleFunc("POST /api/v1/plays", s.withUser(s.playSong))
	mux.HandleFunc("POST /api/v1/ratings", s.withUser(s.rateSong))
	mux.HandleFunc("GET /api/v1/top/songs", s.withUser(s.topSongs))
	mux.HandleFunc("GET /api/v1/top/songs/followed", s.withUser(s.topSongsFollowed))
	mux.HandleFunc("GET /api/v1/top/genres", s.withUser(s.topGenres))

	mux.HandleFunc("GET /api/v1/users", s.withUser(s.listUsers))
	mux.HandleFunc("POST /api/v1/follows", s.withUser(s.follow))
	mux.HandleFunc("DELETE /api/v1/follows/{id}", s.withUser(s.unfollow))

	return s.requestLogging(s.recovery(mux))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// serverError logs the underlying failure and returns a generic message so
// query text and credentials never reach the client.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}
