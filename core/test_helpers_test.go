package core

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type stubLogger struct{}

func (stubLogger) Trace(string, ...any) {}
func (stubLogger) Debug(string, ...any) {}
func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Warn(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Fatal(string, ...any) {}
func (s stubLogger) WithContext(context.Context) Logger {
	return s
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start.UTC()}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// fakeGateway lets each test script the remote behavior per method and
// inspect call counts afterward.
type fakeGateway struct {
	validateTokenFn func(ctx context.Context, req ValidateTokenRequest) (UserRecord, error)
	getUserFn       func(ctx context.Context, req GetUserRequest) (UserRecord, error)
	getUsersFn      func(ctx context.Context, req GetUsersRequest) ([]UserRecord, error)
	searchUsersFn   func(ctx context.Context, req SearchUsersRequest) ([]UserRecord, error)
	addUserFn       func(ctx context.Context, req AddUserRequest) (UserRecord, error)
	setUserMetaFn   func(ctx context.Context, req SetUserMetadataRequest) error
	getAccountFn    func(ctx context.Context, req AccountMetadataRequest) (map[string]any, error)
	setAccountFn    func(ctx context.Context, req SetAccountMetadataRequest) (map[string]any, error)
	addScopeFn      func(ctx context.Context, req AddScopeRequest) error
	checkScopeFn    func(ctx context.Context, req CheckScopeIDRequest) (ScopeCheck, error)
	grantRolesFn    func(ctx context.Context, req ScopeRolesRequest) (ScopeGrant, error)
	revokeRolesFn   func(ctx context.Context, req ScopeRolesRequest) (ScopeGrant, error)
	modifyLimitFn   func(ctx context.Context, req ModifyScopeLimitRequest) (map[string]any, error)
	authCodeFn      func(ctx context.Context, req AuthorizationCodeRequest) (string, error)
	tempTokenFn     func(ctx context.Context, req TempTokenRequest) (string, error)
	tempDataFn      func(ctx context.Context, req RetrieveTempDataRequest) (map[string]any, error)
	refreshFn       func(ctx context.Context, req RefreshServiceTokenRequest) (ServiceToken, error)

	validateCalls int64
	refreshCalls  int64
}

var _ Gateway = (*fakeGateway)(nil)

func (g *fakeGateway) ValidateToken(ctx context.Context, req ValidateTokenRequest) (UserRecord, error) {
	atomic.AddInt64(&g.validateCalls, 1)
	if g.validateTokenFn != nil {
		return g.validateTokenFn(ctx, req)
	}
	return UserRecord{ID: "u1", Login: "user@example.com"}, nil
}

func (g *fakeGateway) GetUser(ctx context.Context, req GetUserRequest) (UserRecord, error) {
	if g.getUserFn != nil {
		return g.getUserFn(ctx, req)
	}
	return UserRecord{ID: req.Login, Login: req.Login}, nil
}

func (g *fakeGateway) GetUsers(ctx context.Context, req GetUsersRequest) ([]UserRecord, error) {
	if g.getUsersFn != nil {
		return g.getUsersFn(ctx, req)
	}
	return nil, nil
}

func (g *fakeGateway) SearchUsers(ctx context.Context, req SearchUsersRequest) ([]UserRecord, error) {
	if g.searchUsersFn != nil {
		return g.searchUsersFn(ctx, req)
	}
	return nil, nil
}

func (g *fakeGateway) AddUser(ctx context.Context, req AddUserRequest) (UserRecord, error) {
	if g.addUserFn != nil {
		return g.addUserFn(ctx, req)
	}
	return UserRecord{Login: req.Login}, nil
}

func (g *fakeGateway) SetUserMetadata(ctx context.Context, req SetUserMetadataRequest) error {
	if g.setUserMetaFn != nil {
		return g.setUserMetaFn(ctx, req)
	}
	return nil
}

func (g *fakeGateway) GetAccountMetadata(ctx context.Context, req AccountMetadataRequest) (map[string]any, error) {
	if g.getAccountFn != nil {
		return g.getAccountFn(ctx, req)
	}
	return map[string]any{}, nil
}

func (g *fakeGateway) SetAccountMetadata(ctx context.Context, req SetAccountMetadataRequest) (map[string]any, error) {
	if g.setAccountFn != nil {
		return g.setAccountFn(ctx, req)
	}
	return map[string]any{}, nil
}

func (g *fakeGateway) AddScope(ctx context.Context, req AddScopeRequest) error {
	if g.addScopeFn != nil {
		return g.addScopeFn(ctx, req)
	}
	return nil
}

func (g *fakeGateway) CheckScopeID(ctx context.Context, req CheckScopeIDRequest) (ScopeCheck, error) {
	if g.checkScopeFn != nil {
		return g.checkScopeFn(ctx, req)
	}
	return ScopeCheck{ScopeID: req.ScopeID, Exists: true}, nil
}

func (g *fakeGateway) GrantScopeRoles(ctx context.Context, req ScopeRolesRequest) (ScopeGrant, error) {
	if g.grantRolesFn != nil {
		return g.grantRolesFn(ctx, req)
	}
	return ScopeGrant{ScopeID: req.Scope, PrincipalID: req.PrincipalID, Roles: req.Roles}, nil
}

func (g *fakeGateway) RevokeScopeRoles(ctx context.Context, req ScopeRolesRequest) (ScopeGrant, error) {
	if g.revokeRolesFn != nil {
		return g.revokeRolesFn(ctx, req)
	}
	return ScopeGrant{ScopeID: req.Scope, PrincipalID: req.PrincipalID}, nil
}

func (g *fakeGateway) ModifyScopeLimit(ctx context.Context, req ModifyScopeLimitRequest) (map[string]any, error) {
	if g.modifyLimitFn != nil {
		return g.modifyLimitFn(ctx, req)
	}
	return map[string]any{}, nil
}

func (g *fakeGateway) GetAuthorizationCode(ctx context.Context, req AuthorizationCodeRequest) (string, error) {
	if g.authCodeFn != nil {
		return g.authCodeFn(ctx, req)
	}
	return "auth-code", nil
}

func (g *fakeGateway) GetTempToken(ctx context.Context, req TempTokenRequest) (string, error) {
	if g.tempTokenFn != nil {
		return g.tempTokenFn(ctx, req)
	}
	return "temp-token", nil
}

func (g *fakeGateway) RetrieveTempData(ctx context.Context, req RetrieveTempDataRequest) (map[string]any, error) {
	if g.tempDataFn != nil {
		return g.tempDataFn(ctx, req)
	}
	return map[string]any{}, nil
}

func (g *fakeGateway) RefreshServiceToken(ctx context.Context, req RefreshServiceTokenRequest) (ServiceToken, error) {
	atomic.AddInt64(&g.refreshCalls, 1)
	if g.refreshFn != nil {
		return g.refreshFn(ctx, req)
	}
	return ServiceToken{
		Credential: Credential{Kind: CredentialKindService, Token: "service-token"},
	}, nil
}

func testConfig() Config {
	return Config{
		Server:       "https://identity.example.com",
		ClientID:     "client-1",
		ClientSecret: "secret-1",
		Scope:        "acme",
	}
}

func fastRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
	}
}

func newTestService(t interface{ Fatalf(string, ...any) }, gateway Gateway, options ...Option) *Service {
	base := []Option{
		WithGateway(gateway),
		WithLogger(stubLogger{}),
		WithRetryPolicy(fastRetryPolicy()),
	}
	svc, err := NewService(testConfig(), append(base, options...)...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}
