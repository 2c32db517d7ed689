package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-identity-client/core"
)

// MutatingService is the slice of the identity service the command
// handlers need.
type MutatingService interface {
	AddUser(ctx context.Context, in core.AddUserInput) (core.UserRecord, error)
	SetUserMetadata(ctx context.Context, in core.SetUserMetadataInput) error
	SetAccountMetadata(ctx context.Context, in core.SetAccountMetadataInput) (map[string]any, error)
	AddScope(ctx context.Context, in core.AddScopeInput) error
	GrantScopeRoles(ctx context.Context, in core.ScopeRolesInput) (core.ScopeGrant, error)
	RevokeScopeRoles(ctx context.Context, in core.ScopeRolesInput) (core.ScopeGrant, error)
	ModifyScopeLimit(ctx context.Context, in core.ModifyScopeLimitInput) (map[string]any, error)
	GetAuthorizationCode(ctx context.Context, in core.AuthorizationCodeInput) (string, error)
	GetTempToken(ctx context.Context, in core.TempTokenInput) (string, error)
	RefreshServiceToken(ctx context.Context) (core.Credential, error)
	ClearCachedUser(ctx context.Context, token string) error
}

type AddUserCommand struct {
	service MutatingService
}

func NewAddUserCommand(service MutatingService) *AddUserCommand {
	return &AddUserCommand{service: service}
}

func (c *AddUserCommand) Execute(ctx context.Context, msg AddUserMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: add user service is required")
	}
	out, err := c.service.AddUser(ctx, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type SetUserMetadataCommand struct {
	service MutatingService
}

func NewSetUserMetadataCommand(service MutatingService) *SetUserMetadataCommand {
	return &SetUserMetadataCommand{service: service}
}

func (c *SetUserMetadataCommand) Execute(ctx context.Context, msg SetUserMetadataMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: set user metadata service is required")
	}
	return c.service.SetUserMetadata(ctx, msg.Input)
}

type SetAccountMetadataCommand struct {
	service MutatingService
}

func NewSetAccountMetadataCommand(service MutatingService) *SetAccountMetadataCommand {
	return &SetAccountMetadataCommand{service: service}
}

func (c *SetAccountMetadataCommand) Execute(ctx context.Context, msg SetAccountMetadataMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: set account metadata service is required")
	}
	out, err := c.service.SetAccountMetadata(ctx, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type AddScopeCommand struct {
	service MutatingService
}

func NewAddScopeCommand(service MutatingService) *AddScopeCommand {
	return &AddScopeCommand{service: service}
}

func (c *AddScopeCommand) Execute(ctx context.Context, msg AddScopeMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: add scope service is required")
	}
	return c.service.AddScope(ctx, msg.Input)
}

type GrantScopeRolesCommand struct {
	service MutatingService
}

func NewGrantScopeRolesCommand(service MutatingService) *GrantScopeRolesCommand {
	return &GrantScopeRolesCommand{service: service}
}

func (c *GrantScopeRolesCommand) Execute(ctx context.Context, msg GrantScopeRolesMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: grant scope roles service is required")
	}
	out, err := c.service.GrantScopeRoles(ctx, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type RevokeScopeRolesCommand struct {
	service MutatingService
}

func NewRevokeScopeRolesCommand(service MutatingService) *RevokeScopeRolesCommand {
	return &RevokeScopeRolesCommand{service: service}
}

func (c *RevokeScopeRolesCommand) Execute(ctx context.Context, msg RevokeScopeRolesMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: revoke scope roles service is required")
	}
	out, err := c.service.RevokeScopeRoles(ctx, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ModifyScopeLimitCommand struct {
	service MutatingService
}

func NewModifyScopeLimitCommand(service MutatingService) *ModifyScopeLimitCommand {
	return &ModifyScopeLimitCommand{service: service}
}

func (c *ModifyScopeLimitCommand) Execute(ctx context.Context, msg ModifyScopeLimitMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: modify scope limit service is required")
	}
	out, err := c.service.ModifyScopeLimit(ctx, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type AuthorizationCodeCommand struct {
	service MutatingService
}

func NewAuthorizationCodeCommand(service MutatingService) *AuthorizationCodeCommand {
	return &AuthorizationCodeCommand{service: service}
}

func (c *AuthorizationCodeCommand) Execute(ctx context.Context, msg AuthorizationCodeMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: authorization code service is required")
	}
	out, err := c.service.GetAuthorizationCode(ctx, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type TempTokenCommand struct {
	service MutatingService
}

func NewTempTokenCommand(service MutatingService) *TempTokenCommand {
	return &TempTokenCommand{service: service}
}

func (c *TempTokenCommand) Execute(ctx context.Context, msg TempTokenMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: temp token service is required")
	}
	out, err := c.service.GetTempToken(ctx, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type RefreshServiceTokenCommand struct {
	service MutatingService
}

func NewRefreshServiceTokenCommand(service MutatingService) *RefreshServiceTokenCommand {
	return &RefreshServiceTokenCommand{service: service}
}

func (c *RefreshServiceTokenCommand) Execute(ctx context.Context, _ RefreshServiceTokenMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: refresh service token service is required")
	}
	out, err := c.service.RefreshServiceToken(ctx)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ClearCachedUserCommand struct {
	service MutatingService
}

func NewClearCachedUserCommand(service MutatingService) *ClearCachedUserCommand {
	return &ClearCachedUserCommand{service: service}
}

func (c *ClearCachedUserCommand) Execute(ctx context.Context, msg ClearCachedUserMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: clear cached user service is required")
	}
	return c.service.ClearCachedUser(ctx, msg.Token)
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
