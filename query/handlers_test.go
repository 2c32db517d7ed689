package query

import (
	"context"
	"testing"

	"github.com/goliatone/go-identity-client/core"
)

type stubReaders struct {
	validateTokenFn func(ctx context.Context, token string) (core.CachedUser, error)
	getUserFn       func(ctx context.Context, in core.GetUserInput) (core.UserRecord, error)
	getUsersFn      func(ctx context.Context, scope string) ([]core.UserRecord, error)
	searchUsersFn   func(ctx context.Context, in core.SearchUsersInput) ([]core.UserRecord, error)
	accountMetaFn   func(ctx context.Context, in core.AccountMetadataInput) (map[string]any, error)
	checkScopeFn    func(ctx context.Context, in core.CheckScopeInput) (core.ScopeCheck, error)
	tempDataFn      func(ctx context.Context, token string) (map[string]any, error)
}

func (s stubReaders) ValidateToken(ctx context.Context, token string) (core.CachedUser, error) {
	return s.validateTokenFn(ctx, token)
}

func (s stubReaders) GetUser(ctx context.Context, in core.GetUserInput) (core.UserRecord, error) {
	return s.getUserFn(ctx, in)
}

func (s stubReaders) GetUsers(ctx context.Context, scope string) ([]core.UserRecord, error) {
	return s.getUsersFn(ctx, scope)
}

func (s stubReaders) SearchUsers(ctx context.Context, in core.SearchUsersInput) ([]core.UserRecord, error) {
	return s.searchUsersFn(ctx, in)
}

func (s stubReaders) GetAccountMetadata(ctx context.Context, in core.AccountMetadataInput) (map[string]any, error) {
	return s.accountMetaFn(ctx, in)
}

func (s stubReaders) CheckScopeID(ctx context.Context, in core.CheckScopeInput) (core.ScopeCheck, error) {
	return s.checkScopeFn(ctx, in)
}

func (s stubReaders) RetrieveTempData(ctx context.Context, token string) (map[string]any, error) {
	return s.tempDataFn(ctx, token)
}

func TestValidateTokenQueryDelegates(t *testing.T) {
	reader := stubReaders{
		validateTokenFn: func(_ context.Context, token string) (core.CachedUser, error) {
			if token != "bearer-1" {
				t.Fatalf("unexpected token %q", token)
			}
			return core.CachedUser{UserID: "u1"}, nil
		},
	}

	q := NewValidateTokenQuery(reader)
	user, err := q.Query(context.Background(), ValidateTokenMessage{Token: "bearer-1"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if user.UserID != "u1" {
		t.Fatalf("unexpected user %#v", user)
	}
}

func TestSearchUsersQueryDelegates(t *testing.T) {
	reader := stubReaders{
		searchUsersFn: func(_ context.Context, in core.SearchUsersInput) ([]core.UserRecord, error) {
			if in.Term != "ali" {
				t.Fatalf("unexpected term %q", in.Term)
			}
			return []core.UserRecord{{ID: "u1"}}, nil
		},
	}

	q := NewSearchUsersQuery(reader)
	records, err := q.Query(context.Background(), SearchUsersMessage{Input: core.SearchUsersInput{Term: "ali"}})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("unexpected records %#v", records)
	}
}

func TestCheckScopeIDQueryDelegates(t *testing.T) {
	reader := stubReaders{
		checkScopeFn: func(_ context.Context, in core.CheckScopeInput) (core.ScopeCheck, error) {
			return core.ScopeCheck{ScopeID: in.ScopeID, Exists: true}, nil
		},
	}

	q := NewCheckScopeIDQuery(reader)
	check, err := q.Query(context.Background(), CheckScopeIDMessage{Input: core.CheckScopeInput{ScopeID: "acme"}})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if !check.Exists || check.ScopeID != "acme" {
		t.Fatalf("unexpected check %#v", check)
	}
}

func TestQueryMessagesValidate(t *testing.T) {
	if err := (ValidateTokenMessage{}).Validate(); err == nil {
		t.Fatal("validate token without token must fail")
	}
	if err := (GetUserMessage{}).Validate(); err == nil {
		t.Fatal("get user without login must fail")
	}
	if err := (SearchUsersMessage{}).Validate(); err == nil {
		t.Fatal("search without term must fail")
	}
	if err := (CheckScopeIDMessage{}).Validate(); err == nil {
		t.Fatal("check scope without id must fail")
	}
	if err := (RetrieveTempDataMessage{}).Validate(); err == nil {
		t.Fatal("retrieve temp data without token must fail")
	}
	if err := (ListUsersMessage{}).Validate(); err != nil {
		t.Fatalf("list users must not require a scope: %v", err)
	}
}

func TestQueriesGuardMissingReader(t *testing.T) {
	if _, err := (&ValidateTokenQuery{}).Query(context.Background(), ValidateTokenMessage{Token: "x"}); err == nil {
		t.Fatal("expected a dependency error")
	}
	if _, err := (&RetrieveTempDataQuery{}).Query(context.Background(), RetrieveTempDataMessage{Token: "x"}); err == nil {
		t.Fatal("expected a dependency error")
	}
}
