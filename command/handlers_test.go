package command

import (
	"context"
	"testing"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-identity-client/core"
)

type stubMutatingService struct {
	addUserFn         func(ctx context.Context, in core.AddUserInput) (core.UserRecord, error)
	setUserMetaFn     func(ctx context.Context, in core.SetUserMetadataInput) error
	setAccountMetaFn  func(ctx context.Context, in core.SetAccountMetadataInput) (map[string]any, error)
	addScopeFn        func(ctx context.Context, in core.AddScopeInput) error
	grantRolesFn      func(ctx context.Context, in core.ScopeRolesInput) (core.ScopeGrant, error)
	revokeRolesFn     func(ctx context.Context, in core.ScopeRolesInput) (core.ScopeGrant, error)
	modifyLimitFn     func(ctx context.Context, in core.ModifyScopeLimitInput) (map[string]any, error)
	authCodeFn        func(ctx context.Context, in core.AuthorizationCodeInput) (string, error)
	tempTokenFn       func(ctx context.Context, in core.TempTokenInput) (string, error)
	refreshFn         func(ctx context.Context) (core.Credential, error)
	clearCachedUserFn func(ctx context.Context, token string) error
}

func (s stubMutatingService) AddUser(ctx context.Context, in core.AddUserInput) (core.UserRecord, error) {
	return s.addUserFn(ctx, in)
}

func (s stubMutatingService) SetUserMetadata(ctx context.Context, in core.SetUserMetadataInput) error {
	return s.setUserMetaFn(ctx, in)
}

func (s stubMutatingService) SetAccountMetadata(ctx context.Context, in core.SetAccountMetadataInput) (map[string]any, error) {
	return s.setAccountMetaFn(ctx, in)
}

func (s stubMutatingService) AddScope(ctx context.Context, in core.AddScopeInput) error {
	return s.addScopeFn(ctx, in)
}

func (s stubMutatingService) GrantScopeRoles(ctx context.Context, in core.ScopeRolesInput) (core.ScopeGrant, error) {
	return s.grantRolesFn(ctx, in)
}

func (s stubMutatingService) RevokeScopeRoles(ctx context.Context, in core.ScopeRolesInput) (core.ScopeGrant, error) {
	return s.revokeRolesFn(ctx, in)
}

func (s stubMutatingService) ModifyScopeLimit(ctx context.Context, in core.ModifyScopeLimitInput) (map[string]any, error) {
	return s.modifyLimitFn(ctx, in)
}

func (s stubMutatingService) GetAuthorizationCode(ctx context.Context, in core.AuthorizationCodeInput) (string, error) {
	return s.authCodeFn(ctx, in)
}

func (s stubMutatingService) GetTempToken(ctx context.Context, in core.TempTokenInput) (string, error) {
	return s.tempTokenFn(ctx, in)
}

func (s stubMutatingService) RefreshServiceToken(ctx context.Context) (core.Credential, error) {
	return s.refreshFn(ctx)
}

func (s stubMutatingService) ClearCachedUser(ctx context.Context, token string) error {
	return s.clearCachedUserFn(ctx, token)
}

func TestAddUserCommandExecuteDelegatesAndStoresResult(t *testing.T) {
	expected := core.UserRecord{ID: "u1", Login: "alice@example.com"}
	called := false

	svc := stubMutatingService{
		addUserFn: func(_ context.Context, in core.AddUserInput) (core.UserRecord, error) {
			called = true
			if in.Login != "alice@example.com" {
				t.Fatalf("unexpected login %q", in.Login)
			}
			return expected, nil
		},
	}

	cmd := NewAddUserCommand(svc)
	collector := gocmd.NewResult[core.UserRecord]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := cmd.Execute(ctx, AddUserMessage{Input: core.AddUserInput{
		Login: "alice@example.com",
		Email: "alice@example.com",
	}})
	if err != nil {
		t.Fatalf("execute add user: %v", err)
	}
	if !called {
		t.Fatal("expected service invocation")
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatal("expected result to be stored")
	}
	if result.ID != expected.ID {
		t.Fatalf("unexpected result %#v", result)
	}
}

func TestGrantScopeRolesCommandStoresGrant(t *testing.T) {
	svc := stubMutatingService{
		grantRolesFn: func(_ context.Context, in core.ScopeRolesInput) (core.ScopeGrant, error) {
			return core.ScopeGrant{ScopeID: "acme", PrincipalID: in.PrincipalID, Roles: in.Roles}, nil
		},
	}

	cmd := NewGrantScopeRolesCommand(svc)
	collector := gocmd.NewResult[core.ScopeGrant]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := cmd.Execute(ctx, GrantScopeRolesMessage{Input: core.ScopeRolesInput{
		PrincipalID: "bob",
		Roles:       []string{"reader"},
	}})
	if err != nil {
		t.Fatalf("execute grant: %v", err)
	}
	grant, ok := collector.Load()
	if !ok {
		t.Fatal("expected a stored grant")
	}
	if grant.PrincipalID != "bob" || len(grant.Roles) != 1 {
		t.Fatalf("unexpected grant %#v", grant)
	}
}

func TestRefreshServiceTokenCommandStoresCredential(t *testing.T) {
	svc := stubMutatingService{
		refreshFn: func(context.Context) (core.Credential, error) {
			return core.Credential{Kind: core.CredentialKindService, Token: "svc-1"}, nil
		},
	}

	cmd := NewRefreshServiceTokenCommand(svc)
	collector := gocmd.NewResult[core.Credential]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	if err := cmd.Execute(ctx, RefreshServiceTokenMessage{}); err != nil {
		t.Fatalf("execute refresh: %v", err)
	}
	cred, ok := collector.Load()
	if !ok {
		t.Fatal("expected a stored credential")
	}
	if cred.Token != "svc-1" {
		t.Fatalf("unexpected credential %#v", cred)
	}
}

func TestClearCachedUserCommandDelegates(t *testing.T) {
	var cleared string
	svc := stubMutatingService{
		clearCachedUserFn: func(_ context.Context, token string) error {
			cleared = token
			return nil
		},
	}

	cmd := NewClearCachedUserCommand(svc)
	if err := cmd.Execute(context.Background(), ClearCachedUserMessage{Token: "bearer-1"}); err != nil {
		t.Fatalf("execute clear: %v", err)
	}
	if cleared != "bearer-1" {
		t.Fatalf("unexpected token %q", cleared)
	}
}

func TestCommandMessagesValidate(t *testing.T) {
	if err := (AddUserMessage{}).Validate(); err == nil {
		t.Fatal("add user without login must fail validation")
	}
	if err := (AddScopeMessage{Input: core.AddScopeInput{Scope: "acme"}}).Validate(); err == nil {
		t.Fatal("add scope without admin user must fail validation")
	}
	if err := (GrantScopeRolesMessage{}).Validate(); err == nil {
		t.Fatal("grant without principal must fail validation")
	}
	if err := (ModifyScopeLimitMessage{}).Validate(); err == nil {
		t.Fatal("modify limit without name must fail validation")
	}
	if err := (ClearCachedUserMessage{}).Validate(); err == nil {
		t.Fatal("clear without token must fail validation")
	}
	ok := AddUserMessage{Input: core.AddUserInput{Login: "a", Email: "a@example.com"}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid message rejected: %v", err)
	}
}

func TestCommandsGuardMissingService(t *testing.T) {
	if err := (&AddUserCommand{}).Execute(context.Background(), AddUserMessage{}); err == nil {
		t.Fatal("expected a dependency error")
	}
	if err := (&RefreshServiceTokenCommand{}).Execute(context.Background(), RefreshServiceTokenMessage{}); err == nil {
		t.Fatal("expected a dependency error")
	}
}
