package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[AddUserMessage]             = (*AddUserCommand)(nil)
	_ gocmd.Commander[SetUserMetadataMessage]     = (*SetUserMetadataCommand)(nil)
	_ gocmd.Commander[SetAccountMetadataMessage]  = (*SetAccountMetadataCommand)(nil)
	_ gocmd.Commander[AddScopeMessage]            = (*AddScopeCommand)(nil)
	_ gocmd.Commander[GrantScopeRolesMessage]     = (*GrantScopeRolesCommand)(nil)
	_ gocmd.Commander[RevokeScopeRolesMessage]    = (*RevokeScopeRolesCommand)(nil)
	_ gocmd.Commander[ModifyScopeLimitMessage]    = (*ModifyScopeLimitCommand)(nil)
	_ gocmd.Commander[AuthorizationCodeMessage]   = (*AuthorizationCodeCommand)(nil)
	_ gocmd.Commander[TempTokenMessage]           = (*TempTokenCommand)(nil)
	_ gocmd.Commander[RefreshServiceTokenMessage] = (*RefreshServiceTokenCommand)(nil)
	_ gocmd.Commander[ClearCachedUserMessage]     = (*ClearCachedUserCommand)(nil)
)
