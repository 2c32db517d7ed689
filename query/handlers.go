package query

import (
	"context"

	"github.com/goliatone/go-identity-client/core"
)

type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (core.CachedUser, error)
}

type UserReader interface {
	GetUser(ctx context.Context, in core.GetUserInput) (core.UserRecord, error)
	GetUsers(ctx context.Context, scope string) ([]core.UserRecord, error)
	SearchUsers(ctx context.Context, in core.SearchUsersInput) ([]core.UserRecord, error)
}

type AccountReader interface {
	GetAccountMetadata(ctx context.Context, in core.AccountMetadataInput) (map[string]any, error)
	CheckScopeID(ctx context.Context, in core.CheckScopeInput) (core.ScopeCheck, error)
}

type TempDataReader interface {
	RetrieveTempData(ctx context.Context, token string) (map[string]any, error)
}

type ValidateTokenQuery struct {
	validator TokenValidator
}

func NewValidateTokenQuery(validator TokenValidator) *ValidateTokenQuery {
	return &ValidateTokenQuery{validator: validator}
}

func (q *ValidateTokenQuery) Query(ctx context.Context, msg ValidateTokenMessage) (core.CachedUser, error) {
	if q == nil || q.validator == nil {
		return core.CachedUser{}, queryDependencyError("query: token validator is required")
	}
	return q.validator.ValidateToken(ctx, msg.Token)
}

type GetUserQuery struct {
	reader UserReader
}

func NewGetUserQuery(reader UserReader) *GetUserQuery {
	return &GetUserQuery{reader: reader}
}

func (q *GetUserQuery) Query(ctx context.Context, msg GetUserMessage) (core.UserRecord, error) {
	if q == nil || q.reader == nil {
		return core.UserRecord{}, queryDependencyError("query: user reader is required")
	}
	return q.reader.GetUser(ctx, msg.Input)
}

type ListUsersQuery struct {
	reader UserReader
}

func NewListUsersQuery(reader UserReader) *ListUsersQuery {
	return &ListUsersQuery{reader: reader}
}

func (q *ListUsersQuery) Query(ctx context.Context, msg ListUsersMessage) ([]core.UserRecord, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: user reader is required")
	}
	return q.reader.GetUsers(ctx, msg.Scope)
}

type SearchUsersQuery struct {
	reader UserReader
}

func NewSearchUsersQuery(reader UserReader) *SearchUsersQuery {
	return &SearchUsersQuery{reader: reader}
}

func (q *SearchUsersQuery) Query(ctx context.Context, msg SearchUsersMessage) ([]core.UserRecord, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: user reader is required")
	}
	return q.reader.SearchUsers(ctx, msg.Input)
}

type GetAccountMetadataQuery struct {
	reader AccountReader
}

func NewGetAccountMetadataQuery(reader AccountReader) *GetAccountMetadataQuery {
	return &GetAccountMetadataQuery{reader: reader}
}

func (q *GetAccountMetadataQuery) Query(ctx context.Context, msg GetAccountMetadataMessage) (map[string]any, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: account reader is required")
	}
	return q.reader.GetAccountMetadata(ctx, msg.Input)
}

type CheckScopeIDQuery struct {
	reader AccountReader
}

func NewCheckScopeIDQuery(reader AccountReader) *CheckScopeIDQuery {
	return &CheckScopeIDQuery{reader: reader}
}

func (q *CheckScopeIDQuery) Query(ctx context.Context, msg CheckScopeIDMessage) (core.ScopeCheck, error) {
	if q == nil || q.reader == nil {
		return core.ScopeCheck{}, queryDependencyError("query: account reader is required")
	}
	return q.reader.CheckScopeID(ctx, msg.Input)
}

type RetrieveTempDataQuery struct {
	reader TempDataReader
}

func NewRetrieveTempDataQuery(reader TempDataReader) *RetrieveTempDataQuery {
	return &RetrieveTempDataQuery{reader: reader}
}

func (q *RetrieveTempDataQuery) Query(ctx context.Context, msg RetrieveTempDataMessage) (map[string]any, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: temp data reader is required")
	}
	return q.reader.RetrieveTempData(ctx, msg.Token)
}
