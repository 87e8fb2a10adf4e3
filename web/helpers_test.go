package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/RezaEskandarii/cronfire/client"
	"github.com/RezaEskandarii/cronfire/client/test/mocks"
	"github.com/RezaEskandarii/cronfire/internal/auth"
	"github.com/RezaEskandarii/cronfire/internal/store"
	"github.com/RezaEskandarii/cronfire/pgk/parser"
	"github.com/RezaEskandarii/cronfire/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memoryUsers struct {
	mu    sync.Mutex
	users []types.User
}

func (m *memoryUsers) Create(_ context.Context, username, email, passwordHash string) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username || u.Email == email {
			return nil, store.ErrConflict
		}
	}
	u := types.User{ID: int64(len(m.users) + 1), Username: username, Email: email, PasswordHash: passwordHash, CreatedAt: time.Now()}
	m.users = append(m.users, u)
	return &u, nil
}

func (m *memoryUsers) FindByUsername(_ context.Context, username string) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memoryUsers) FindByID(_ context.Context, id int64) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

// newMemoryJobs returns a job store mock backed by a slice. Each created job
// is one second newer than the previous one.
func newMemoryJobs(users *memoryUsers) *mocks.MockCronJobStore {
	var mu sync.Mutex
	var jobs []types.CronJob
	clock := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	return &mocks.MockCronJobStore{
		CreateFunc: func(ctx context.Context, ownerID int64, message, schedule string) (*types.CronJob, error) {
			if err := parser.Validate(schedule); err != nil {
				return nil, store.ErrInvalidSchedule
			}
			if _, err := users.FindByID(ctx, ownerID); err != nil {
				return nil, store.ErrOwnerNotFound
			}
			mu.Lock()
			defer mu.Unlock()
			clock = clock.Add(time.Second)
			job := types.CronJob{ID: int64(len(jobs) + 1), UserID: ownerID, Message: message, Schedule: strings.TrimSpace(schedule), CreatedAt: clock}
			jobs = append(jobs, job)
			return &job, nil
		},
		ListByOwnerFunc: func(ctx context.Context, ownerID int64) ([]types.CronJob, error) {
			mu.Lock()
			defer mu.Unlock()
			out := []types.CronJob{}
			for _, j := range jobs {
				if j.UserID == ownerID {
					out = append(out, j)
				}
			}
			sort.Slice(out, func(a, b int) bool {
				if out[a].CreatedAt.Equal(out[b].CreatedAt) {
					return out[a].ID > out[b].ID
				}
				return out[a].CreatedAt.After(out[b].CreatedAt)
			})
			return out, nil
		},
	}
}

type testServer struct {
	handler http.Handler
	tokens  *auth.TokenAuthority
	users   *memoryUsers
}

func newTestServer(t *testing.T, cfg RouteConfig) *testServer {
	t.Helper()
	tokens, err := auth.NewTokenAuthority("test-secret")
	require.NoError(t, err)

	users := &memoryUsers{}
	authenticator, err := auth.NewAuthenticator(users, tokens, auth.WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)

	jobStore := newMemoryJobs(users)
	executor := client.NewExecutor(jobStore, &mocks.MockNotifier{}, time.Second)
	engine := client.NewCronJobManager(jobStore, &mocks.MockDistributedLockManager{}, executor, time.Minute, 1)
	jobs := client.NewJobManager(jobStore, engine, zerolog.Nop())

	cfg.Logger = zerolog.Nop()
	return &testServer{
		handler: NewRouteHandler(authenticator, tokens, jobs, cfg).Router(),
		tokens:  tokens,
		users:   users,
	}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func tokenCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == "token" {
			return c
		}
	}
	return nil
}
