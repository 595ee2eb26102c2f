package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/meets/meets-go/internal/model"
	"github.com/meets/meets-go/internal/repository"
	"github.com/meets/meets-go/internal/service"
	"github.com/meets/meets-go/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	db := testutil.NewDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return NewRouter(ctx, RouterConfig{
		Auth:        service.NewAuthService(repository.NewUserRepository(db), testSecret, time.Hour),
		Events:      service.NewEventService(repository.NewEventRepository(db)),
		JWTSecret:   testSecret,
		CORSOrigins: []string{"http://localhost:3000"},
		AuthRPS:     1000,
		AuthBurst:   1000,
	})
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func signupToken(t *testing.T, h http.Handler, username string) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/v1/auth/signup", "", model.SignupRequest{
		Email:    username + "@example.com",
		Username: username,
		Password: "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[model.AuthResponse](t, rec).Token
}

func createMeet(t *testing.T, h http.Handler, token, name string) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/v1/meets", token, model.CreateEventRequest{
		Name:        name,
		Description: "a meet",
		Location:    "Town square",
		Date:        "2026-09-01T18:00:00Z",
		Type:        "IN_PERSON",
		Tags:        []string{"outdoors"},
		Images:      []string{"https://img.example.com/1.png"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[model.CreateEventResponse](t, rec).ID
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestAuthFlow(t *testing.T) {
	h := newTestServer(t)

	token := signupToken(t, h, "alice")

	rec := do(t, h, http.MethodPost, "/api/v1/auth/signup", "", model.SignupRequest{
		Email: "alice@example.com", Username: "alice-two", Password: "password123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/auth/signup", "", model.SignupRequest{Email: "bad"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorBody](t, rec)
	assert.Equal(t, "validation failed", body.Error)
	assert.Contains(t, body.Fields, "email")
	assert.Contains(t, body.Fields, "username")
	assert.Contains(t, body.Fields, "password")

	rec = do(t, h, http.MethodPost, "/api/v1/auth/login", "", model.LoginRequest{Username: "alice@example.com", Password: "password123"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[model.AuthResponse](t, rec).Token)

	wrong := do(t, h, http.MethodPost, "/api/v1/auth/login", "", model.LoginRequest{Username: "alice", Password: "nope-nope"})
	unknown := do(t, h, http.MethodPost, "/api/v1/auth/login", "", model.LoginRequest{Username: "mallory", Password: "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())

	rec = do(t, h, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", decode[model.UserResponse](t, rec).Name)

	rec = do(t, h, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInvalidJSONBody(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", decode[errorBody](t, rec).Error)
}

func TestMeetsFeedAndRegistration(t *testing.T) {
	h := newTestServer(t)

	coord := signupToken(t, h, "coord")
	user := signupToken(t, h, "user")
	other := signupToken(t, h, "other")

	first := createMeet(t, h, coord, "first")
	second := createMeet(t, h, coord, "second")

	rec := do(t, h, http.MethodGet, "/api/v1/meets?limit=1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page := decode[model.EventPage](t, rec)
	require.Len(t, page.Data, 1)
	assert.True(t, page.HasMore)
	require.NotNil(t, page.Cursor)
	assert.Nil(t, page.Data[0].Registered)

	rec = do(t, h, http.MethodGet, "/api/v1/meets?limit=1&cursor="+*page.Cursor, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	next := decode[model.EventPage](t, rec)
	require.Len(t, next.Data, 1)
	assert.False(t, next.HasMore)
	assert.Nil(t, next.Cursor)
	assert.ElementsMatch(t, []string{first, second}, []string{page.Data[0].ID, next.Data[0].ID})

	rec = do(t, h, http.MethodPost, "/api/v1/meets/"+first+"/register", user, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true\n", rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/v1/meets/"+first+"/register", user, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/meets?registered=true", user, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decode[model.EventPage](t, rec)
	require.Len(t, mine.Data, 1)
	assert.Equal(t, first, mine.Data[0].ID)
	assert.Equal(t, 1, mine.Data[0].NumAttendees)
	require.NotNil(t, mine.Data[0].Registered)
	assert.True(t, *mine.Data[0].Registered)

	rec = do(t, h, http.MethodGet, "/api/v1/meets?registered=true", other, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[model.EventPage](t, rec).Data)

	rec = do(t, h, http.MethodGet, "/api/v1/meets?registered=true", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeetsErrors(t *testing.T) {
	h := newTestServer(t)
	token := signupToken(t, h, "coord")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		status int
	}{
		{"limit too large", http.MethodGet, "/api/v1/meets?limit=101", "", nil, http.StatusBadRequest},
		{"limit zero", http.MethodGet, "/api/v1/meets?limit=0", "", nil, http.StatusBadRequest},
		{"limit not a number", http.MethodGet, "/api/v1/meets?limit=ten", "", nil, http.StatusBadRequest},
		{"unknown sort", http.MethodGet, "/api/v1/meets?sortBy=RANDOM", "", nil, http.StatusBadRequest},
		{"bad registered flag", http.MethodGet, "/api/v1/meets?registered=maybe", "", nil, http.StatusBadRequest},
		{"forged token on feed", http.MethodGet, "/api/v1/meets", "forged", nil, http.StatusUnauthorized},
		{"create anonymous", http.MethodPost, "/api/v1/meets", "", model.CreateEventRequest{}, http.StatusUnauthorized},
		{"create invalid", http.MethodPost, "/api/v1/meets", token, model.CreateEventRequest{Name: "x"}, http.StatusBadRequest},
		{"register anonymous", http.MethodPost, "/api/v1/meets/abc/register", "", nil, http.StatusUnauthorized},
		{"register missing event", http.MethodPost, "/api/v1/meets/6f1c1d8e-2d7c-4bb0-9a55-3f0c1a3f7b21/register", token, nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}
