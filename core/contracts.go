package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// BearerValidator verifies a caller bearer token locally, before any
// remote call. Implementations reject expired or malformed tokens with an
// authentication-failed error.
type BearerValidator interface {
	Validate(ctx context.Context, raw string) (BearerClaims, error)
}

// Gateway is the typed facade over the identity service's HTTP endpoints.
// One method per remote capability; network I/O only. No caching and no
// retry happen here. The supplied credential travels as a bearer
// authorization header, never as a query parameter.
type Gateway interface {
	ValidateToken(ctx context.Context, req ValidateTokenRequest) (UserRecord, error)
	GetUser(ctx context.Context, req GetUserRequest) (UserRecord, error)
	GetUsers(ctx context.Context, req GetUsersRequest) ([]UserRecord, error)
	SearchUsers(ctx context.Context, req SearchUsersRequest) ([]UserRecord, error)
	AddUser(ctx context.Context, req AddUserRequest) (UserRecord, error)
	SetUserMetadata(ctx context.Context, req SetUserMetadataRequest) error
	GetAccountMetadata(ctx context.Context, req AccountMetadataRequest) (map[string]any, error)
	SetAccountMetadata(ctx context.Context, req SetAccountMetadataRequest) (map[string]any, error)
	AddScope(ctx context.Context, req AddScopeRequest) error
	CheckScopeID(ctx context.Context, req CheckScopeIDRequest) (ScopeCheck, error)
	GrantScopeRoles(ctx context.Context, req ScopeRolesRequest) (ScopeGrant, error)
	RevokeScopeRoles(ctx context.Context, req ScopeRolesRequest) (ScopeGrant, error)
	ModifyScopeLimit(ctx context.Context, req ModifyScopeLimitRequest) (map[string]any, error)
	GetAuthorizationCode(ctx context.Context, req AuthorizationCodeRequest) (string, error)
	GetTempToken(ctx context.Context, req TempTokenRequest) (string, error)
	RetrieveTempData(ctx context.Context, req RetrieveTempDataRequest) (map[string]any, error)
	RefreshServiceToken(ctx context.Context, req RefreshServiceTokenRequest) (ServiceToken, error)
}

type ValidateTokenRequest struct {
	Credential Credential
	Token      string
	Scope      string
}

type GetUserRequest struct {
	Credential Credential
	Login      string
	Scope      string
	Service    bool
}

type GetUsersRequest struct {
	Credential Credential
	Scope      string
}

type SearchUsersRequest struct {
	Credential Credential
	Scope      string
	Term       string
	Attributes []string
	ExactMatch bool
	Page       int
	PageSize   int
}

type AddUserRequest struct {
	Credential    Credential
	Login         string
	Email         string
	FirstName     string
	LastName      string
	Password      string
	ClientID      string
	Scope         string
	Roles         []string
	Data          map[string]any
	SendEmail     bool
	ResetPassword bool
}

type SetUserMetadataRequest struct {
	Credential Credential
	ClientID   string
	Data       map[string]any
}

type AccountMetadataRequest struct {
	Credential Credential
	Scope      string
	ClientID   string
	Service    bool
}

type SetAccountMetadataRequest struct {
	Credential Credential
	Scope      string
	ClientID   string
	Payload    map[string]any
	Service    bool
}

type AddScopeRequest struct {
	Credential Credential
	Scope      string
	AdminUser  string
	URLs       map[string]any
}

type CheckScopeIDRequest struct {
	Credential Credential
	ScopeID    string
	Service    bool
}

type ScopeRolesRequest struct {
	Credential  Credential
	Scope       string
	PrincipalID string
	Roles       []string
}

type ModifyScopeLimitRequest struct {
	Credential Credential
	Scope      string
	Name       string
	Value      any
	ClientID   string
	Service    bool
}

type AuthorizationCodeRequest struct {
	Credential Credential
	ClientID   string
	Scopes     []string
}

type TempTokenRequest struct {
	Credential Credential
	Scope      string
	ClientID   string
	Payload    map[string]any
	TTL        time.Duration
	Clear      bool
	// Authorization, when set, is sent verbatim instead of the bearer
	// credential. Used for websocket upgrades where the caller already
	// holds the header value.
	Authorization string
}

type RetrieveTempDataRequest struct {
	Credential Credential
	Token      string
}

type RefreshServiceTokenRequest struct {
	ClientID     string
	ClientSecret string
}
