package service

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/hisab/internal/auth"
	"github.com/mmynk/hisab/internal/events"
	"github.com/mmynk/hisab/internal/middleware"
	"github.com/mmynk/hisab/internal/storage"
	"github.com/mmynk/hisab/internal/storage/sqlite"
	"github.com/mmynk/hisab/pkg/api"
)

// testNow is the fixed clock of every test server: mid January 2024.
var testNow = time.Date(2024, time.January, 20, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	store  storage.Store
	auth   *api.AuthServiceClient
	groups *api.GroupServiceClient
	ledger *api.LedgerServiceClient
	inbox  *api.NotificationServiceClient
	cash   *api.CashBookServiceClient
}

type testUser struct {
	id    string
	name  string
	token string
}

// setupTestServer serves every service over a temp SQLite database.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
	notifier := events.NewNotifier(store, nil, nil)
	requireAuth := connect.WithInterceptors(middleware.RequireAuth(jwtManager))

	mux := http.NewServeMux()
	mux.Handle(api.NewAuthServiceHandler(
		NewAuthService(authenticator, jwtManager, store, nil),
		connect.WithInterceptors(middleware.OptionalAuth(jwtManager)),
	))
	mux.Handle(api.NewGroupServiceHandler(NewGroupService(store, notifier), requireAuth))
	mux.Handle(api.NewLedgerServiceHandler(
		NewLedgerService(store, notifier, WithClock(func() time.Time { return testNow })),
		requireAuth,
	))
	mux.Handle(api.NewNotificationServiceHandler(NewNotificationService(store, notifier), requireAuth))
	mux.Handle(api.NewCashBookServiceHandler(NewCashBookService(store), requireAuth))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testEnv{
		store:  store,
		auth:   api.NewAuthServiceClient(http.DefaultClient, server.URL),
		groups: api.NewGroupServiceClient(http.DefaultClient, server.URL),
		ledger: api.NewLedgerServiceClient(http.DefaultClient, server.URL),
		inbox:  api.NewNotificationServiceClient(http.DefaultClient, server.URL),
		cash:   api.NewCashBookServiceClient(http.DefaultClient, server.URL),
	}
}

func (e *testEnv) register(t *testing.T, name string) testUser {
	t.Helper()
	resp, err := e.auth.Register(t.Context(), connect.NewRequest(&api.RegisterRequest{
		Email:       strings.ToLower(name) + "@example.com",
		DisplayName: name,
		Password:    "password123",
	}))
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", name, err)
	}
	return testUser{id: resp.Msg.User.ID, name: name, token: resp.Msg.Token}
}

// createGroup registers a manager and the given members and puts them all
// in one group.
func (e *testEnv) createGroup(t *testing.T, groupType string, manager testUser, members ...testUser) string {
	t.Helper()
	resp, err := e.groups.CreateGroup(t.Context(), as(manager, &api.CreateGroupRequest{
		DisplayName: "Mess " + manager.name,
		UniqueName:  "mess-" + strings.ToLower(manager.name),
		Type:        groupType,
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	for _, m := range members {
		_, err := e.groups.JoinGroup(t.Context(), as(m, &api.JoinGroupRequest{UniqueName: resp.Msg.Group.UniqueName}))
		if err != nil {
			t.Fatalf("JoinGroup(%s) failed: %v", m.name, err)
		}
	}
	return resp.Msg.Group.ID
}

// as builds a request authenticated as u.
func as[T any](u testUser, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+u.token)
	return req
}

func wantCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", code)
	}
	if got := connect.CodeOf(err); got != code {
		t.Fatalf("expected %v, got %v (%v)", code, got, err)
	}
}
