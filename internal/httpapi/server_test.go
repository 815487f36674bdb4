package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tunecrate/internal/auth"
	"tunecrate/internal/store"
)

type stubUserService struct {
	registerID  int64
	registerErr error

	loginUser *store.UserSummary
	loginErr  error

	lastRegistered store.NewUser
	lastUsername   string
}

func (s *stubUserService) Register(ctx context.Context, u store.NewUser) (int64, error) {
	s.lastRegistered = u
	if s.registerErr != nil {
		return 0, s.registerErr
	}
	return s.registerID, nil
}

func (s *stubUserService) Login(ctx context.Context, username, password string) (*store.UserSummary, error) {
	s.lastUsername = username
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return s.loginUser, nil
}

type stubCollectionService struct {
	summaries []store.CollectionSummary
	detail    *store.CollectionDetail

	createOK bool
	renameOK bool
	deleteOK bool
	addOK    bool
	removeOK bool
	added    int
	err      error

	lastTitle    string
	lastNewTitle string
	lastSongID   int64
	lastAlbumID  int64
}

func (s *stubCollectionService) List(ctx context.Context, userID int64) ([]store.CollectionSummary, error) {
	return s.summaries, s.err
}

func (s *stubCollectionService) Create(ctx context.Context, userID int64, title string) (bool, error) {
	s.lastTitle = title
	return s.createOK, s.err
}

func (s *stubCollectionService) Details(ctx context.Context, userID int64, title string) (*store.CollectionDetail, error) {
	s.lastTitle = title
	return s.detail, s.err
}

func (s *stubCollectionService) Rename(ctx context.Context, userID int64, oldTitle, newTitle string) (bool, error) {
	s.lastTitle = oldTitle
	s.lastNewTitle = newTitle
	return s.renameOK, s.err
}

func (s *stubCollectionService) Delete(ctx context.Context, userID int64, title string) (bool, error) {
	s.lastTitle = title
	return s.deleteOK, s.err
}

func (s *stubCollectionService) AddSong(ctx context.Context, userID int64, title string, songID int64) (bool, error) {
	s.lastTitle = title
	s.lastSongID = songID
	return s.addOK, s.err
}

func (s *stubCollectionService) AddAlbum(ctx context.Context, userID int64, title string, albumID int64) (int, error) {
	s.lastTitle = title
	s.lastAlbumID = albumID
	return s.added, s.err
}

func (s *stubCollectionService) RemoveSong(ctx context.Context, userID int64, title string, songID int64) (bool, error) {
	s.lastTitle = title
	s.lastSongID = songID
	return s.removeOK, s.err
}

type stubCatalogService struct {
	results []store.SongResult
	song    store.Song
	songs   []store.Song
	err     error

	lastQuery    store.SearchQuery
	lastViewerID int64
}

func (s *stubCatalogService) Search(ctx context.Context, viewerID int64, q store.SearchQuery) ([]store.SongResult, error) {
	s.lastViewerID = viewerID
	s.lastQuery = q
	return s.results, s.err
}

func (s *stubCatalogService) Song(ctx context.Context, id int64) (store.Song, error) {
	return s.song, s.err
}

func (s *stubCatalogService) AlbumSongs(ctx context.Context, albumID int64) ([]store.Song, error) {
	return s.songs, s.err
}

type stubActivityService struct {
	playOK     bool
	playCount  int
	rateOK     bool
	topSongs   []store.PopularSong
	topGenres  []store.PopularGenre
	err        error
	lastWindow int
	lastRating int
}

func (s *stubActivityService) PlaySong(ctx context.Context, userID, songID int64) (bool, error) {
	return s.playOK, s.err
}

func (s *stubActivityService) PlayCollection(ctx context.Context, userID int64, title string) (int, error) {
	return s.playCount, s.err
}

func (s *stubActivityService) Rate(ctx context.Context, userID, songID int64, rating int) (bool, error) {
	s.lastRating = rating
	return s.rateOK, s.err
}

func (s *stubActivityService) TopSongs(ctx context.Context, windowDays int) ([]store.PopularSong, error) {
	s.lastWindow = windowDays
	return s.topSongs, s.err
}

func (s *stubActivityService) TopSongsFollowed(ctx context.Context, userID int64) ([]store.PopularSong, error) {
	return s.topSongs, s.err
}

func (s *stubActivityService) TopGenres(ctx context.Context) ([]store.PopularGenre, error) {
	return s.topGenres, s.err
}

type stubSocialService struct {
	followOK   bool
	unfollowOK bool
	users      []store.UserListing
	err        error

	lastFolloweeID int64
	lastTerm       string
}

func (s *stubSocialService) Follow(ctx context.Context, followerID, followeeID int64) (bool, error) {
	s.lastFolloweeID = followeeID
	return s.followOK, s.err
}

func (s *stubSocialService) Unfollow(ctx context.Context, followerID, followeeID int64) (bool, error) {
	s.lastFolloweeID = followeeID
	return s.unfollowOK, s.err
}

func (s *stubSocialService) ListOthers(ctx context.Context, viewerID int64) ([]store.UserListing, error) {
	return s.users, s.err
}

func (s *stubSocialService) SearchByEmail(ctx context.Context, viewerID int64, term string) ([]store.UserListing, error) {
	s.lastTerm = term
	return s.users, s.err
}

type testServices struct {
	users       *stubUserService
	collections *stubCollectionService
	catalog     *stubCatalogService
	activity    *stubActivityService
	social      *stubSocialService
}

func newTestServer(t *testing.T, svc testServices) (*Server, string) {
	t.Helper()
	if svc.users == nil {
		svc.users = &stubUserService{}
	}
	if svc.collections == nil {
		svc.collections = &stubCollectionService{}
	}
	if svc.catalog == nil {
		svc.catalog = &stubCatalogService{}
	}
	if svc.activity == nil {
		svc.activity = &stubActivityService{}
	}
	if svc.social == nil {
		svc.social = &stubSocialService{}
	}

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	token, err := tokens.Generate(21)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	server := New(svc.users, svc.collections, svc.catalog, svc.activity, svc.social, tokens, zerolog.Nop())
	return server, token
}

func TestSignupCreated(t *testing.T) {
	users := &stubUserService{registerID: 7}
	server, _ := newTestServer(t, testServices{users: users})

	body, _ := json.Marshal(signupRequest{
		Username: "alice",
		Password: "hunter2",
		Email:    "alice@example.com",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}
	if users.lastRegistered.Username != "alice" {
		t.Fatalf("unexpected registered user: %#v", users.lastRegistered)
	}
	var payload struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.ID != 7 {
		t.Fatalf("expected id 7, got %d", payload.ID)
	}
}

func TestSignupConflict(t *testing.T) {
	server, _ := newTestServer(t, testServices{users: &stubUserService{registerErr: store.ErrUserExists}})

	body, _ := json.Marshal(signupRequest{Username: "alice", Password: "x", Email: "a@b.c"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rr.Code)
	}
}

func TestSignupMissingFields(t *testing.T) {
	server, _ := newTestServer(t, testServices{users: &stubUserService{registerErr: store.ErrInvalidUser}})

	body, _ := json.Marshal(signupRequest{Username: "alice"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestLoginSuccessReturnsToken(t *testing.T) {
	users := &stubUserService{
		loginUser: &store.UserSummary{ID: 21, Username: "alice", Email: "alice@example.com"},
	}
	server, _ := newTestServer(t, testServices{users: users})

	body, _ := json.Marshal(loginRequest{Username: "alice", Password: "hunter2"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var payload loginResponse
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Token == "" {
		t.Fatal("expected token in response")
	}
	if payload.User == nil || payload.User.ID != 21 {
		t.Fatalf("unexpected user payload: %#v", payload.User)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	server, _ := newTestServer(t, testServices{users: &stubUserService{loginUser: nil}})

	body, _ := json.Marshal(loginRequest{Username: "alice", Password: "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
}

func TestCollectionsMissingToken(t *testing.T) {
	server, _ := newTestServer(t, testServices{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/collections", nil)
	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
}

func TestCollectionsBadToken(t *testing.T) {
	server, _ := newTestServer(t, testServices{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/collections", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
}

func TestListCollections(t *testing.T) {
	collections := &stubCollectionService{
		summaries: []store.CollectionSummary{
			{Title: "Road Trip", SongCount: 12, TotalLength: 2900},
		},
	}
	server, token := newTestServer(t, testServices{collections: collections})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/collections", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var payload []store.CollectionSummary
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload) != 1 || payload[0].SongCount != 12 {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

func TestCreateCollectionConflict(t *testing.T) {
	server, token := newTestServer(t, testServices{collections: &stubCollectionService{createOK: false}})

	body, _ := json.Marshal(createCollectionRequest{Title: "Road Trip"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/collections", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rr.Code)
	}
}

func TestCollectionDetailsNotFound(t *testing.T) {
	server, token := newTestServer(t, testServices{collections: &stubCollectionService{detail: nil}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/collections/Missing", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestAddSongToCollection(t *testing.T) {
	collections := &stubCollectionService{addOK: true}
	server, token := newTestServer(t, testServices{collections: collections})

	body, _ := json.Marshal(songRefRequest{SongID: 42})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/collections/Road%20Trip/songs", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if collections.lastTitle != "Road Trip" || collections.lastSongID != 42 {
		t.Fatalf("unexpected call: title=%q songID=%d", collections.lastTitle, collections.lastSongID)
	}
}

func TestRemoveSongNotInCollection(t *testing.T) {
	server, token := newTestServer(t, testServices{collections: &stubCollectionService{removeOK: false}})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/collections/Road%20Trip/songs/42", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestSearchPassesQuery(t *testing.T) {
	catalog := &stubCatalogService{results: []store.SongResult{}}
	server, token := newTestServer(t, testServices{catalog: catalog})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?term=blue&type=artist&sort=release_date&order=desc", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	want := store.SearchQuery{Term: "blue", Type: "artist", SortBy: "release_date", SortOrder: "desc"}
	if catalog.lastQuery != want {
		t.Fatalf("unexpected query: %#v", catalog.lastQuery)
	}
	if catalog.lastViewerID != 21 {
		t.Fatalf("expected viewer 21, got %d", catalog.lastViewerID)
	}
}

func TestGetSongNotFound(t *testing.T) {
	server, token := newTestServer(t, testServices{catalog: &stubCatalogService{err: store.ErrSongNotFound}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/songs/999", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestPlaySongUnknown(t *testing.T) {
	server, token := newTestServer(t, testServices{activity: &stubActivityService{playOK: false}})

	body, _ := json.Marshal(songRefRequest{SongID: 999})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/plays", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestRateSongRejected(t *testing.T) {
	activity := &stubActivityService{rateOK: false}
	server, token := newTestServer(t, testServices{activity: activity})

	body, _ := json.Marshal(rateRequest{SongID: 4, Rating: 9})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ratings", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	if activity.lastRating != 9 {
		t.Fatalf("expected rating 9 forwarded, got %d", activity.lastRating)
	}
}

func TestTopSongsWindow(t *testing.T) {
	activity := &stubActivityService{topSongs: []store.PopularSong{{ID: 1, Title: "Song", PlayCount: 10}}}
	server, token := newTestServer(t, testServices{activity: activity})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/top/songs?window_days=7", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if activity.lastWindow != 7 {
		t.Fatalf("expected window 7, got %d", activity.lastWindow)
	}
}

func TestTopSongsBadWindow(t *testing.T) {
	server, token := newTestServer(t, testServices{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/top/songs?window_days=nope", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestFollowSelfRejected(t *testing.T) {
	social := &stubSocialService{followOK: false}
	server, token := newTestServer(t, testServices{social: social})

	body, _ := json.Marshal(followRequest{FolloweeID: 21})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/follows", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestUsersSearchByEmail(t *testing.T) {
	social := &stubSocialService{users: []store.UserListing{{ID: 3, Username: "bob", Following: true}}}
	server, token := newTestServer(t, testServices{social: social})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users?email=example.com", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if social.lastTerm != "example.com" {
		t.Fatalf("expected term 'example.com', got %q", social.lastTerm)
	}
}

func TestStorageErrorHidden(t *testing.T) {
	server, token := newTestServer(t, testServices{collections: &stubCollectionService{err: errors.New("pq: syntax error near SELECT")}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/collections", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
	if bytes.Contains(rr.Body.Bytes(), []byte("syntax error")) {
		t.Fatalf("storage error leaked to client: %s", rr.Body.String())
	}
}
