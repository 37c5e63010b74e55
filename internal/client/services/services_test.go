package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/dmitrijs2005/gigbook/internal/api"
	"github.com/dmitrijs2005/gigbook/internal/client/client"
	"github.com/dmitrijs2005/gigbook/internal/client/store"
	"github.com/dmitrijs2005/gigbook/internal/client/testutil"
	"github.com/dmitrijs2005/gigbook/internal/common"
	"github.com/dmitrijs2005/gigbook/internal/logging"
)

/*************
 * Fake credential store
 *************/

type memStore struct {
	mu sync.Mutex
	m  map[string]string
}

func newMemStore() *memStore {
	return &memStore{m: map[string]string{}}
}

func (s *memStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[key], nil
}

func (s *memStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

func (s *memStore) get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[key]
}

/*************
 * Fake remote API
 *************/

type remoteAccount struct {
	id, email, password, username string
}

// fakeAPI behaves like the server while online and fails every call with
// common.ErrUnavailable while offline.
type fakeAPI struct {
	mu       sync.Mutex
	online   bool
	accounts map[string]remoteAccount
	nextID   int
	calls    map[string]int
	logs     []api.LogRequest
	logErr   error
}

func newFakeAPI(online bool) *fakeAPI {
	return &fakeAPI{online: online, accounts: map[string]remoteAccount{}, calls: map[string]int{}}
}

func (f *fakeAPI) setOnline(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.online = v
}

// register adds an account as if it had been created on another device.
func (f *fakeAPI) register(email, password string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("srv-%d", f.nextID)
	f.accounts[email] = remoteAccount{id: id, email: email, password: password}
	return id
}

func (f *fakeAPI) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeAPI) enter(op string) error {
	f.calls[op]++
	if !f.online {
		return fmt.Errorf("%w: dial tcp: connection refused", common.ErrUnavailable)
	}
	return nil
}

func (f *fakeAPI) issue(acc remoteAccount) *api.AuthResponse {
	return &api.AuthResponse{
		User:         api.User{ID: acc.id, Email: acc.email, Username: acc.username},
		AccessToken:  "access-" + acc.id,
		RefreshToken: "refresh-" + acc.id,
	}
}

func (f *fakeAPI) SignUp(_ context.Context, req api.SignUpRequest) (*api.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("signup"); err != nil {
		return nil, err
	}
	if _, ok := f.accounts[req.Email]; ok {
		return nil, &client.APIError{StatusCode: http.StatusConflict, Message: "email already registered"}
	}
	f.nextID++
	acc := remoteAccount{id: fmt.Sprintf("srv-%d", f.nextID), email: req.Email, password: req.Password, username: req.Username}
	f.accounts[req.Email] = acc
	return f.issue(acc), nil
}

func (f *fakeAPI) Login(_ context.Context, req api.LoginRequest) (*api.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("login"); err != nil {
		return nil, err
	}
	acc, ok := f.accounts[req.Email]
	if !ok || acc.password != req.Password {
		return nil, &client.APIError{StatusCode: http.StatusUnauthorized, Message: "invalid credentials"}
	}
	return f.issue(acc), nil
}

func (f *fakeAPI) Refresh(_ context.Context, _ string) (*api.TokenPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("refresh"); err != nil {
		return nil, err
	}
	return &api.TokenPair{AccessToken: "a", RefreshToken: "r"}, nil
}

func (f *fakeAPI) Logout(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enter("logout")
}

func (f *fakeAPI) Me(_ context.Context) (*api.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("me"); err != nil {
		return nil, err
	}
	return nil, &client.APIError{StatusCode: http.StatusNotFound}
}

func (f *fakeAPI) Ping(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enter("ping")
}

func (f *fakeAPI) CreateLog(_ context.Context, req api.LogRequest) (*api.Log, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("createLog"); err != nil {
		return nil, err
	}
	if f.logErr != nil {
		return nil, f.logErr
	}
	f.logs = append(f.logs, req)
	return &api.Log{ID: fmt.Sprint(len(f.logs)), LogRequest: req}, nil
}

func (f *fakeAPI) ListLogs(_ context.Context) ([]api.Log, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("listLogs"); err != nil {
		return nil, err
	}
	return nil, nil
}

/*************
 * Fixtures
 *************/

type fixture struct {
	engine  *store.Engine
	creds   *memStore
	api     *fakeAPI
	session *Session
}

func newFixture(t *testing.T, online bool) *fixture {
	t.Helper()
	f := &fixture{
		engine: testutil.NewEngine(t),
		creds:  newMemStore(),
		api:    newFakeAPI(online),
	}
	f.session = NewSession(f.engine, f.creds, f.api, logging.Discard())
	return f
}

// restart builds a new Session over the same storage, as after an app relaunch.
func (f *fixture) restart() *Session {
	f.session = NewSession(f.engine, f.creds, f.api, logging.Discard())
	return f.session
}

// failingDB is a Database whose Open always fails.
type failingDB struct{}

func (failingDB) Open(context.Context) (*sql.DB, error) {
	return nil, fmt.Errorf("%w: disk full", common.ErrStorage)
}

func (failingDB) Reset(context.Context) error { return errors.New("nothing to reset") }
