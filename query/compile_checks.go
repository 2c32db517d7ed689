package query

import (
	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-identity-client/core"
)

var (
	_ gocmd.Querier[ValidateTokenMessage, core.CachedUser]     = (*ValidateTokenQuery)(nil)
	_ gocmd.Querier[GetUserMessage, core.UserRecord]           = (*GetUserQuery)(nil)
	_ gocmd.Querier[ListUsersMessage, []core.UserRecord]       = (*ListUsersQuery)(nil)
	_ gocmd.Querier[SearchUsersMessage, []core.UserRecord]     = (*SearchUsersQuery)(nil)
	_ gocmd.Querier[GetAccountMetadataMessage, map[string]any] = (*GetAccountMetadataQuery)(nil)
	_ gocmd.Querier[CheckScopeIDMessage, core.ScopeCheck]      = (*CheckScopeIDQuery)(nil)
	_ gocmd.Querier[RetrieveTempDataMessage, map[string]any]   = (*RetrieveTempDataQuery)(nil)
)
