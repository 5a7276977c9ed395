package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/crescendo-app/crescendo/internal/cache"
	"github.com/crescendo-app/crescendo/internal/config"
	"github.com/crescendo-app/crescendo/internal/docstore"
	"github.com/crescendo-app/crescendo/internal/session"
)

const (
	waitFor = 2 * time.Second
	tick    = 10 * time.Millisecond
)

// newTestSession builds a fully started synchronizer over an in-memory
// SQLite store with the in-process notifier and cache, seeded and ready.
func newTestSession(t *testing.T) *session.Synchronizer {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	store := docstore.New(db, docstore.NewMemoryNotifier())
	require.NoError(t, store.EnsureSchema(context.Background()))

	s := session.New(store, cache.NewMemoryCache())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, s.Start(ctx))
	t.Cleanup(s.Close)

	wctx, wcancel := context.WithTimeout(ctx, waitFor)
	defer wcancel()
	require.NoError(t, s.WaitReady(wctx))
	require.Eventually(t, func() bool {
		return len(s.Songs()) > 0 && len(s.Concerts()) > 0
	}, waitFor, tick)
	return s
}

func testConfig() config.Config {
	return config.Config{
		JWTSecret:    "test-secret",
		AccessTTLMin: 15,
		BcryptCost:   bcrypt.MinCost,
	}
}

// doJSON runs a handler against a synthetic request and returns the recorder.
func doJSON(t *testing.T, h echo.HandlerFunc, method, target, body string, mutate func(echo.Context)) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if mutate != nil {
		mutate(c)
	}
	require.NoError(t, h(c))
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func TestRegisterFirstUserBecomesDirector(t *testing.T) {
	s := newTestSession(t)
	h := NewAuthHandler(testConfig(), s)

	rec := doJSON(t, h.Register, http.MethodPost, "/v1/auth/register",
		`{"name":"Ada","email":"Ada@Example.com","password":"pw"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		User struct {
			ID       string `json:"id"`
			Role     string `json:"role"`
			Email    string `json:"email"`
			Password string `json:"password"`
		} `json:"user"`
		Access struct {
			Token string `json:"token"`
		} `json:"access"`
	}
	decodeBody(t, rec, &resp)
	require.Equal(t, "Director", resp.User.Role)
	require.Equal(t, "ada@example.com", resp.User.Email, "email is lowercased")
	require.Empty(t, resp.User.Password)
	require.NotEmpty(t, resp.Access.Token)

	// The new record reaches the mirror through the watch.
	require.Eventually(t, func() bool { return len(s.Users()) == 1 }, waitFor, tick)

	// Second registration gets Musician.
	rec = doJSON(t, h.Register, http.MethodPost, "/v1/auth/register",
		`{"email":"second@example.com","password":"pw"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	decodeBody(t, rec, &resp)
	require.Equal(t, "Musician", resp.User.Role)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	s := newTestSession(t)
	h := NewAuthHandler(testConfig(), s)

	rec := doJSON(t, h.Register, http.MethodPost, "/v1/auth/register",
		`{"email":"dup@example.com","password":"pw"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Eventually(t, func() bool { return len(s.Users()) == 1 }, waitFor, tick)

	rec = doJSON(t, h.Register, http.MethodPost, "/v1/auth/register",
		`{"email":"DUP@example.com","password":"pw"}`, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	h := NewAuthHandler(testConfig(), newTestSession(t))

	rec := doJSON(t, h.Register, http.MethodPost, "/v1/auth/register",
		`{"email":"","password":"pw"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h.Register, http.MethodPost, "/v1/auth/register",
		`{"email":"no-at-sign","password":"pw"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin(t *testing.T) {
	s := newTestSession(t)
	h := NewAuthHandler(testConfig(), s)

	rec := doJSON(t, h.Register, http.MethodPost, "/v1/auth/register",
		`{"email":"who@example.com","password":"right"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Eventually(t, func() bool { return len(s.Users()) == 1 }, waitFor, tick)

	rec = doJSON(t, h.Login, http.MethodPost, "/v1/auth/login",
		`{"email":"who@example.com","password":"right"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h.Login, http.MethodPost, "/v1/auth/login",
		`{"email":"who@example.com","password":"wrong"}`, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h.Login, http.MethodPost, "/v1/auth/login",
		`{"email":"nobody@example.com","password":"right"}`, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeFallsBackToProfileForFreshSignup(t *testing.T) {
	s := newTestSession(t)
	h := NewAuthHandler(testConfig(), s)

	rec := doJSON(t, h.Register, http.MethodPost, "/v1/auth/register",
		`{"email":"fresh@example.com","password":"pw"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	decodeBody(t, rec, &resp)

	// Even before the users snapshot lands, /me answers from the adopted
	// profile.
	rec = doJSON(t, h.Me, http.MethodGet, "/v1/me", "", func(c echo.Context) {
		c.Set("user_id", resp.User.ID)
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateConcertLockedReturnsConflict(t *testing.T) {
	s := newTestSession(t)
	h := NewConcertHandler(s)

	var lockedID string
	for _, c := range s.Concerts() {
		if c.IsLocked {
			lockedID = c.ID
		}
	}
	require.NotEmpty(t, lockedID)

	rec := doJSON(t, h.UpdateConcert, http.MethodPatch, "/v1/concerts/"+lockedID,
		`{"name":"Renamed"}`, func(c echo.Context) {
			c.SetParamNames("id")
			c.SetParamValues(lockedID)
		})
	require.Equal(t, http.StatusConflict, rec.Code)

	// Toggling the lock off is allowed on the same concert.
	rec = doJSON(t, h.UpdateConcert, http.MethodPatch, "/v1/concerts/"+lockedID,
		`{"isLocked":false}`, func(c echo.Context) {
			c.SetParamNames("id")
			c.SetParamValues(lockedID)
		})
	require.Equal(t, http.StatusOK, rec.Code)

	// An unlocked concert whose date has passed is frozen the same way.
	var pastID string
	for _, c := range s.Concerts() {
		if !c.IsLocked && c.Date.Before(time.Now()) {
			pastID = c.ID
		}
	}
	require.NotEmpty(t, pastID)
	rec = doJSON(t, h.UpdateConcert, http.MethodPatch, "/v1/concerts/"+pastID,
		`{"name":"Renamed"}`, func(c echo.Context) {
			c.SetParamNames("id")
			c.SetParamValues(pastID)
		})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateConcertNotFoundAndBadDate(t *testing.T) {
	s := newTestSession(t)
	h := NewConcertHandler(s)

	rec := doJSON(t, h.UpdateConcert, http.MethodPatch, "/v1/concerts/ghost",
		`{"name":"x"}`, func(c echo.Context) {
			c.SetParamNames("id")
			c.SetParamValues("ghost")
		})
	require.Equal(t, http.StatusNotFound, rec.Code)

	id := s.Concerts()[0].ID
	rec = doJSON(t, h.UpdateConcert, http.MethodPatch, "/v1/concerts/"+id,
		`{"date":"tomorrow"}`, func(c echo.Context) {
			c.SetParamNames("id")
			c.SetParamValues(id)
		})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddSongValidation(t *testing.T) {
	s := newTestSession(t)
	h := NewLibraryHandler(s)

	rec := doJSON(t, h.AddSong, http.MethodPost, "/v1/songs", `{"title":"  "}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h.AddSong, http.MethodPost, "/v1/songs",
		`{"title":"Bolero","quantity":-1}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	before := len(s.Songs())
	rec = doJSON(t, h.AddSong, http.MethodPost, "/v1/songs", `{"title":"Bolero"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Eventually(t, func() bool { return len(s.Songs()) == before+1 }, waitFor, tick)
}

func TestSetTypesRejectsDuplicatesCaseInsensitively(t *testing.T) {
	s := newTestSession(t)
	h := NewTaxonomyHandler(s)

	rec := doJSON(t, h.SetTypes, http.MethodPut, "/v1/taxonomy/types",
		`{"items":["Choral","choral"]}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h.SetTypes, http.MethodPut, "/v1/taxonomy/types",
		`{"items":["Choral",""]}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h.SetTypes, http.MethodPut, "/v1/taxonomy/types",
		`{"items":[" Jazz ","Choral"]}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Eventually(t, func() bool {
		tax := s.Taxonomy()
		return len(tax.Types) == 2 && tax.Types[0] == "Jazz"
	}, waitFor, tick)
}

func TestSetSubtypesAllowsCaseVariants(t *testing.T) {
	s := newTestSession(t)
	h := NewTaxonomyHandler(s)

	// Subtypes deduplicate on the exact string only.
	rec := doJSON(t, h.SetSubtypes, http.MethodPut, "/v1/taxonomy/subtypes",
		`{"items":["Baroque","baroque"]}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCopyrightLookupUnconfigured(t *testing.T) {
	h := NewCopyrightHandler(nil)

	rec := doJSON(t, h.Lookup, http.MethodPost, "/v1/copyright/lookup",
		`{"title":"Bolero"}`, nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestImportHistoryRequiresLibrary(t *testing.T) {
	s := newTestSession(t)
	s.SetSongs(context.Background(), nil)
	require.Eventually(t, func() bool { return len(s.Songs()) == 0 }, waitFor, tick)

	h := NewImportHandler(s)
	rec := doJSON(t, h.ImportHistory, http.MethodPost, "/v1/import/history",
		"Song,Performed\nMessiah,Spring 2024\n", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
