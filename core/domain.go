package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidCredentialKind = errors.New("core: invalid credential kind")
	ErrEmptyCredential       = errors.New("core: credential token is empty")
)

// CredentialKind tags the provenance of a bearer credential.
type CredentialKind string

const (
	CredentialKindUser      CredentialKind = "user"
	CredentialKindService   CredentialKind = "service"
	CredentialKindTemporary CredentialKind = "temporary"
	CredentialKindWebsocket CredentialKind = "websocket"
)

// Credential is an opaque bearer token plus its kind. Credentials are
// immutable once issued; renewal replaces them, never mutates them.
type Credential struct {
	Kind  CredentialKind
	Token string
}

func (c Credential) Validate() error {
	kind := CredentialKind(strings.TrimSpace(strings.ToLower(string(c.Kind))))
	switch kind {
	case CredentialKindUser, CredentialKindService, CredentialKindTemporary, CredentialKindWebsocket:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCredentialKind, c.Kind)
	}
	if strings.TrimSpace(c.Token) == "" {
		return ErrEmptyCredential
	}
	return nil
}

func (c Credential) IsZero() bool {
	return strings.TrimSpace(c.Token) == ""
}

// ServiceToken is the process-wide service credential. At most one live
// instance exists per manager; a renewal supersedes it atomically.
type ServiceToken struct {
	Credential Credential
	ExpiresAt  *time.Time
	IssuedAt   time.Time
}

// UserRecord is the identity service's view of a user.
type UserRecord struct {
	ID          string
	Login       string
	Name        string
	Roles       []string
	Groups      []string
	Permissions []string
	Attributes  map[string]any
}

// CachedUser is a validated user bound to the bearer token that produced
// it. Entries are keyed by the raw token, not the user id: several tokens
// may validate distinct sessions for the same user, and the identity
// service owns the token-to-identity binding.
type CachedUser struct {
	UserID      string
	Login       string
	Name        string
	Roles       []string
	Groups      []string
	Permissions []string
	Attributes  map[string]any
	CachedAt    time.Time
}

// ScopeGrant records the roles a principal holds on a scope. Grants are
// never cached locally; scope mutations must be immediately consistent.
type ScopeGrant struct {
	ScopeID     string
	PrincipalID string
	Roles       []string
}

// ScopeCheck is the outcome of a check-scope-id read.
type ScopeCheck struct {
	ScopeID  string
	Exists   bool
	Metadata map[string]any
}

// BearerClaims carries the locally verified claims of a caller token.
type BearerClaims struct {
	Login string
	Name  string
	Token string
}

func cachedUserFromRecord(record UserRecord, cachedAt time.Time) CachedUser {
	return CachedUser{
		UserID:      strings.TrimSpace(record.ID),
		Login:       strings.TrimSpace(record.Login),
		Name:        strings.TrimSpace(record.Name),
		Roles:       append([]string(nil), record.Roles...),
		Groups:      append([]string(nil), record.Groups...),
		Permissions: append([]string(nil), record.Permissions...),
		Attributes:  copyAnyMap(record.Attributes),
		CachedAt:    cachedAt.UTC(),
	}
}

func cloneCachedUser(user CachedUser) CachedUser {
	cloned := user
	cloned.Roles = append([]string(nil), user.Roles...)
	cloned.Groups = append([]string(nil), user.Groups...)
	cloned.Permissions = append([]string(nil), user.Permissions...)
	cloned.Attributes = copyAnyMap(user.Attributes)
	return cloned
}

func copyAnyMap(input map[string]any) map[string]any {
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}

func cloneTimePointer(input *time.Time) *time.Time {
	if input == nil {
		return nil
	}
	value := input.UTC()
	return &value
}
