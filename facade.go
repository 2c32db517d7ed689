package identityclient

import (
	"fmt"

	identitycommand "github.com/goliatone/go-identity-client/command"
	"github.com/goliatone/go-identity-client/core"
	identityquery "github.com/goliatone/go-identity-client/query"
)

// CommandQueryService is everything the facade needs from the identity
// service: every mutation the command handlers dispatch plus every read
// the query handlers serve. *core.Service satisfies it.
type CommandQueryService interface {
	identitycommand.MutatingService
	identityquery.TokenValidator
	identityquery.UserReader
	identityquery.AccountReader
	identityquery.TempDataReader
}

type Commands struct {
	AddUser             *identitycommand.AddUserCommand
	SetUserMetadata     *identitycommand.SetUserMetadataCommand
	SetAccountMetadata  *identitycommand.SetAccountMetadataCommand
	AddScope            *identitycommand.AddScopeCommand
	GrantScopeRoles     *identitycommand.GrantScopeRolesCommand
	RevokeScopeRoles    *identitycommand.RevokeScopeRolesCommand
	ModifyScopeLimit    *identitycommand.ModifyScopeLimitCommand
	AuthorizationCode   *identitycommand.AuthorizationCodeCommand
	TempToken           *identitycommand.TempTokenCommand
	RefreshServiceToken *identitycommand.RefreshServiceTokenCommand
	ClearCachedUser     *identitycommand.ClearCachedUserCommand
}

type Queries struct {
	ValidateToken      *identityquery.ValidateTokenQuery
	GetUser            *identityquery.GetUserQuery
	ListUsers          *identityquery.ListUsersQuery
	SearchUsers        *identityquery.SearchUsersQuery
	GetAccountMetadata *identityquery.GetAccountMetadataQuery
	CheckScopeID       *identityquery.CheckScopeIDQuery
	RetrieveTempData   *identityquery.RetrieveTempDataQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

func NewFacade(service CommandQueryService) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("identityclient: command/query service is required")
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		AddUser:             identitycommand.NewAddUserCommand(service),
		SetUserMetadata:     identitycommand.NewSetUserMetadataCommand(service),
		SetAccountMetadata:  identitycommand.NewSetAccountMetadataCommand(service),
		AddScope:            identitycommand.NewAddScopeCommand(service),
		GrantScopeRoles:     identitycommand.NewGrantScopeRolesCommand(service),
		RevokeScopeRoles:    identitycommand.NewRevokeScopeRolesCommand(service),
		ModifyScopeLimit:    identitycommand.NewModifyScopeLimitCommand(service),
		AuthorizationCode:   identitycommand.NewAuthorizationCodeCommand(service),
		TempToken:           identitycommand.NewTempTokenCommand(service),
		RefreshServiceToken: identitycommand.NewRefreshServiceTokenCommand(service),
		ClearCachedUser:     identitycommand.NewClearCachedUserCommand(service),
	}
	facade.queries = Queries{
		ValidateToken:      identityquery.NewValidateTokenQuery(service),
		GetUser:            identityquery.NewGetUserQuery(service),
		ListUsers:          identityquery.NewListUsersQuery(service),
		SearchUsers:        identityquery.NewSearchUsersQuery(service),
		GetAccountMetadata: identityquery.NewGetAccountMetadataQuery(service),
		CheckScopeID:       identityquery.NewCheckScopeIDQuery(service),
		RetrieveTempData:   identityquery.NewRetrieveTempDataQuery(service),
	}
	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

var _ CommandQueryService = (*core.Service)(nil)
