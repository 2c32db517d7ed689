package identityclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	gocmd "github.com/goliatone/go-command"

	identitycommand "github.com/goliatone/go-identity-client/command"
	"github.com/goliatone/go-identity-client/core"
	identityquery "github.com/goliatone/go-identity-client/query"
)

type stubService struct {
	validateTokenFn func(ctx context.Context, token string) (core.CachedUser, error)
	addUserFn       func(ctx context.Context, in core.AddUserInput) (core.UserRecord, error)
}

func (s stubService) ValidateToken(ctx context.Context, token string) (core.CachedUser, error) {
	if s.validateTokenFn != nil {
		return s.validateTokenFn(ctx, token)
	}
	return core.CachedUser{}, nil
}

func (s stubService) GetUser(context.Context, core.GetUserInput) (core.UserRecord, error) {
	return core.UserRecord{}, nil
}

func (s stubService) GetUsers(context.Context, string) ([]core.UserRecord, error) {
	return nil, nil
}

func (s stubService) SearchUsers(context.Context, core.SearchUsersInput) ([]core.UserRecord, error) {
	return nil, nil
}

func (s stubService) GetAccountMetadata(context.Context, core.AccountMetadataInput) (map[string]any, error) {
	return nil, nil
}

func (s stubService) CheckScopeID(context.Context, core.CheckScopeInput) (core.ScopeCheck, error) {
	return core.ScopeCheck{}, nil
}

func (s stubService) RetrieveTempData(context.Context, string) (map[string]any, error) {
	return nil, nil
}

func (s stubService) AddUser(ctx context.Context, in core.AddUserInput) (core.UserRecord, error) {
	if s.addUserFn != nil {
		return s.addUserFn(ctx, in)
	}
	return core.UserRecord{}, nil
}

func (s stubService) SetUserMetadata(context.Context, core.SetUserMetadataInput) error {
	return nil
}

func (s stubService) SetAccountMetadata(context.Context, core.SetAccountMetadataInput) (map[string]any, error) {
	return nil, nil
}

func (s stubService) AddScope(context.Context, core.AddScopeInput) error {
	return nil
}

func (s stubService) GrantScopeRoles(context.Context, core.ScopeRolesInput) (core.ScopeGrant, error) {
	return core.ScopeGrant{}, nil
}

func (s stubService) RevokeScopeRoles(context.Context, core.ScopeRolesInput) (core.ScopeGrant, error) {
	return core.ScopeGrant{}, nil
}

func (s stubService) ModifyScopeLimit(context.Context, core.ModifyScopeLimitInput) (map[string]any, error) {
	return nil, nil
}

func (s stubService) GetAuthorizationCode(context.Context, core.AuthorizationCodeInput) (string, error) {
	return "", nil
}

func (s stubService) GetTempToken(context.Context, core.TempTokenInput) (string, error) {
	return "", nil
}

func (s stubService) RefreshServiceToken(context.Context) (core.Credential, error) {
	return core.Credential{}, nil
}

func (s stubService) ClearCachedUser(context.Context, string) error {
	return nil
}

var _ CommandQueryService = stubService{}

func TestNewFacadeRequiresService(t *testing.T) {
	if _, err := NewFacade(nil); err == nil {
		t.Fatal("expected an error without a service")
	}
}

func TestFacadeQueryDispatch(t *testing.T) {
	svc := stubService{
		validateTokenFn: func(_ context.Context, token string) (core.CachedUser, error) {
			if token != "bearer-1" {
				t.Fatalf("unexpected token %q", token)
			}
			return core.CachedUser{UserID: "u1"}, nil
		},
	}
	facade, err := NewFacade(svc)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	user, err := facade.Queries().ValidateToken.Query(context.Background(), identityquery.ValidateTokenMessage{Token: "bearer-1"})
	if err != nil {
		t.Fatalf("validate token query: %v", err)
	}
	if user.UserID != "u1" {
		t.Fatalf("unexpected user %#v", user)
	}
}

func TestFacadeCommandDispatch(t *testing.T) {
	svc := stubService{
		addUserFn: func(_ context.Context, in core.AddUserInput) (core.UserRecord, error) {
			return core.UserRecord{ID: "u1", Login: in.Login}, nil
		},
	}
	facade, err := NewFacade(svc)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	collector := gocmd.NewResult[core.UserRecord]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)
	err = facade.Commands().AddUser.Execute(ctx, identitycommand.AddUserMessage{Input: core.AddUserInput{
		Login: "alice@example.com",
		Email: "alice@example.com",
	}})
	if err != nil {
		t.Fatalf("add user command: %v", err)
	}
	record, ok := collector.Load()
	if !ok {
		t.Fatal("expected a stored record")
	}
	if record.Login != "alice@example.com" {
		t.Fatalf("unexpected record %#v", record)
	}
}

func TestClientEndToEndValidateToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/get_service_token":
			_ = json.NewEncoder(w).Encode(map[string]any{"service_token": "svc-1"})
		case "/valid_token":
			if r.Header.Get("Authorization") != "Bearer svc-1" {
				t.Errorf("unexpected authorization %q", r.Header.Get("Authorization"))
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"user": map[string]any{"id": "u1", "login": "alice"},
			})
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client, err := New(core.Config{
		Server:       server.URL,
		ClientID:     "client-1",
		ClientSecret: "secret-1",
		Scope:        "acme",
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()

	user, err := client.Queries().ValidateToken.Query(context.Background(), identityquery.ValidateTokenMessage{Token: "bearer-1"})
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if user.UserID != "u1" || user.Login != "alice" {
		t.Fatalf("unexpected user %#v", user)
	}

	// The cached entry serves the second validation without another call.
	again, err := client.Core().ValidateToken(context.Background(), "bearer-1")
	if err != nil {
		t.Fatalf("second validate: %v", err)
	}
	if again.UserID != "u1" {
		t.Fatalf("unexpected cached user %#v", again)
	}
}
