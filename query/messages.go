package query

import (
	"strings"

	"github.com/goliatone/go-identity-client/core"
)

const (
	TypeValidateToken      = "identity.query.token.validate"
	TypeGetUser            = "identity.query.user.get"
	TypeListUsers          = "identity.query.user.list"
	TypeSearchUsers        = "identity.query.user.search"
	TypeGetAccountMetadata = "identity.query.account.metadata"
	TypeCheckScopeID       = "identity.query.scope.check_id"
	TypeRetrieveTempData   = "identity.query.temp_token.data"
)

type ValidateTokenMessage struct {
	Token string
}

func (ValidateTokenMessage) Type() string { return TypeValidateToken }

func (m ValidateTokenMessage) Validate() error {
	if strings.TrimSpace(m.Token) == "" {
		return queryValidationError("token", "token is required")
	}
	return nil
}

type GetUserMessage struct {
	Input core.GetUserInput
}

func (GetUserMessage) Type() string { return TypeGetUser }

func (m GetUserMessage) Validate() error {
	if strings.TrimSpace(m.Input.Login) == "" {
		return queryValidationError("login", "login is required")
	}
	return nil
}

type ListUsersMessage struct {
	Scope string
}

func (ListUsersMessage) Type() string { return TypeListUsers }

func (ListUsersMessage) Validate() error { return nil }

type SearchUsersMessage struct {
	Input core.SearchUsersInput
}

func (SearchUsersMessage) Type() string { return TypeSearchUsers }

func (m SearchUsersMessage) Validate() error {
	if strings.TrimSpace(m.Input.Term) == "" {
		return queryValidationError("term", "search term is required")
	}
	return nil
}

type GetAccountMetadataMessage struct {
	Input core.AccountMetadataInput
}

func (GetAccountMetadataMessage) Type() string { return TypeGetAccountMetadata }

func (GetAccountMetadataMessage) Validate() error { return nil }

type CheckScopeIDMessage struct {
	Input core.CheckScopeInput
}

func (CheckScopeIDMessage) Type() string { return TypeCheckScopeID }

func (m CheckScopeIDMessage) Validate() error {
	if strings.TrimSpace(m.Input.ScopeID) == "" {
		return queryValidationError("scope_id", "scope id is required")
	}
	return nil
}

type RetrieveTempDataMessage struct {
	Token string
}

func (RetrieveTempDataMessage) Type() string { return TypeRetrieveTempData }

func (m RetrieveTempDataMessage) Validate() error {
	if strings.TrimSpace(m.Token) == "" {
		return queryValidationError("token", "token is required")
	}
	return nil
}
