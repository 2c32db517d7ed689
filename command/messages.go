package command

import (
	"strings"

	"github.com/goliatone/go-identity-client/core"
)

const (
	TypeAddUser             = "identity.command.user.add"
	TypeSetUserMetadata     = "identity.command.user.set_metadata"
	TypeSetAccountMetadata  = "identity.command.account.set_metadata"
	TypeAddScope            = "identity.command.scope.add"
	TypeGrantScopeRoles     = "identity.command.scope.grant_roles"
	TypeRevokeScopeRoles    = "identity.command.scope.revoke_roles"
	TypeModifyScopeLimit    = "identity.command.scope.modify_limit"
	TypeAuthorizationCode   = "identity.command.authorization_code.issue"
	TypeTempToken           = "identity.command.temp_token.issue"
	TypeRefreshServiceToken = "identity.command.service_token.refresh"
	TypeClearCachedUser     = "identity.command.user_cache.clear"
)

type AddUserMessage struct {
	Input core.AddUserInput
}

func (AddUserMessage) Type() string { return TypeAddUser }

func (m AddUserMessage) Validate() error {
	if strings.TrimSpace(m.Input.Login) == "" {
		return commandValidationError("login", "login is required")
	}
	if strings.TrimSpace(m.Input.Email) == "" {
		return commandValidationError("email", "email is required")
	}
	return nil
}

type SetUserMetadataMessage struct {
	Input core.SetUserMetadataInput
}

func (SetUserMetadataMessage) Type() string { return TypeSetUserMetadata }

func (m SetUserMetadataMessage) Validate() error {
	if len(m.Input.Data) == 0 && len(m.Input.EnsureFields) == 0 {
		return commandValidationError("data", "metadata payload is required")
	}
	return nil
}

type SetAccountMetadataMessage struct {
	Input core.SetAccountMetadataInput
}

func (SetAccountMetadataMessage) Type() string { return TypeSetAccountMetadata }

func (m SetAccountMetadataMessage) Validate() error {
	if len(m.Input.Payload) == 0 {
		return commandValidationError("payload", "metadata payload is required")
	}
	return nil
}

type AddScopeMessage struct {
	Input core.AddScopeInput
}

func (AddScopeMessage) Type() string { return TypeAddScope }

func (m AddScopeMessage) Validate() error {
	if strings.TrimSpace(m.Input.Scope) == "" {
		return commandValidationError("scope", "scope is required")
	}
	if strings.TrimSpace(m.Input.AdminUser) == "" {
		return commandValidationError("admin_user", "admin user is required")
	}
	return nil
}

type GrantScopeRolesMessage struct {
	Input core.ScopeRolesInput
}

func (GrantScopeRolesMessage) Type() string { return TypeGrantScopeRoles }

func (m GrantScopeRolesMessage) Validate() error {
	return validateScopeRoles(m.Input)
}

type RevokeScopeRolesMessage struct {
	Input core.ScopeRolesInput
}

func (RevokeScopeRolesMessage) Type() string { return TypeRevokeScopeRoles }

func (m RevokeScopeRolesMessage) Validate() error {
	return validateScopeRoles(m.Input)
}

func validateScopeRoles(in core.ScopeRolesInput) error {
	if strings.TrimSpace(in.PrincipalID) == "" {
		return commandValidationError("principal_id", "principal id is required")
	}
	return nil
}

type ModifyScopeLimitMessage struct {
	Input core.ModifyScopeLimitInput
}

func (ModifyScopeLimitMessage) Type() string { return TypeModifyScopeLimit }

func (m ModifyScopeLimitMessage) Validate() error {
	if strings.TrimSpace(m.Input.Name) == "" {
		return commandValidationError("name", "limit name is required")
	}
	return nil
}

type AuthorizationCodeMessage struct {
	Input core.AuthorizationCodeInput
}

func (AuthorizationCodeMessage) Type() string { return TypeAuthorizationCode }

func (m AuthorizationCodeMessage) Validate() error {
	if len(m.Input.Scopes) == 0 {
		return commandValidationError("scopes", "at least one scope is required")
	}
	return nil
}

type TempTokenMessage struct {
	Input core.TempTokenInput
}

func (TempTokenMessage) Type() string { return TypeTempToken }

func (TempTokenMessage) Validate() error { return nil }

type RefreshServiceTokenMessage struct{}

func (RefreshServiceTokenMessage) Type() string { return TypeRefreshServiceToken }

func (RefreshServiceTokenMessage) Validate() error { return nil }

type ClearCachedUserMessage struct {
	Token string
}

func (ClearCachedUserMessage) Type() string { return TypeClearCachedUser }

func (m ClearCachedUserMessage) Validate() error {
	if strings.TrimSpace(m.Token) == "" {
		return commandValidationError("token", "token is required")
	}
	return nil
}
