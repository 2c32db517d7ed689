package core

import (
	"context"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// Service composes the gateway, retry executor, service-token manager and
// user validation cache behind the public operations. All mutable state
// (the service token, the cache) is owned by the Service instance and
// torn down with it; nothing is process-global.
type Service struct {
	config          Config
	logger          Logger
	metricsRecorder MetricsRecorder
	errorMapper     ErrorMapper
	gateway         Gateway
	executor        *RetryExecutor
	tokenManager    *ServiceTokenManager
	userCache       *UserValidationCache
	bearerValidator BearerValidator
	now             func() time.Time
}

func NewService(cfg Config, options ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("identity", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("identity"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.now == nil {
		builder.now = func() time.Time { return time.Now().UTC() }
	}
	if builder.gateway == nil {
		return nil, newInternalError("core: gateway is required")
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, builder.errorMapper(err)
	}
	resolved, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, builder.errorMapper(err)
	}

	policy := resolved.retryPolicy()
	if builder.retryPolicy != nil {
		policy = *builder.retryPolicy
	}
	executor := NewRetryExecutor(policy, builder.scheduler, logger)

	service := &Service{
		config:          resolved,
		logger:          logger,
		metricsRecorder: builder.metricsRecorder,
		errorMapper:     builder.errorMapper,
		gateway:         builder.gateway,
		executor:        executor,
		bearerValidator: builder.bearerValidator,
		now:             builder.now,
	}

	tokenManager, err := NewServiceTokenManager(ServiceTokenManagerConfig{
		Renew:      service.renewServiceToken,
		RenewLead:  resolved.TokenRenewLead,
		DefaultTTL: resolved.ServiceTokenTTL,
		Now:        builder.now,
		Logger:     logger,
	})
	if err != nil {
		return nil, builder.errorMapper(err)
	}
	service.tokenManager = tokenManager

	userCache, err := NewUserValidationCache(UserValidationCacheConfig{
		Fetch: service.fetchValidatedUser,
		TTL:   resolved.UserCacheTTL,
		Now:   builder.now,
	})
	if err != nil {
		return nil, builder.errorMapper(err)
	}
	service.userCache = userCache

	return service, nil
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	if mapped := s.errorMapper(err); mapped != nil {
		return mapped
	}
	return err
}

// ValidateToken resolves the user bound to a bearer token. Local JWT
// verification (when configured) rejects expired tokens without remote
// I/O; otherwise the validation cache and its per-token single flight
// decide whether a remote call happens. A token revoked out-of-band may
// still be served from cache for at most the configured TTL; callers
// needing immediate invalidation use ClearCachedUser.
func (s *Service) ValidateToken(ctx context.Context, token string) (CachedUser, error) {
	if s == nil {
		return CachedUser{}, newInternalError("core: service is nil")
	}
	startedAt := time.Now()
	token = strings.TrimSpace(token)

	user, err := s.validateToken(ctx, token)
	s.observeOperation(ctx, startedAt, "validate_token", err, map[string]any{
		"scope": s.config.Scope,
	})
	if err != nil {
		return CachedUser{}, s.mapError(err)
	}
	return user, nil
}

func (s *Service) validateToken(ctx context.Context, token string) (CachedUser, error) {
	if token == "" {
		return CachedUser{}, NewAuthenticationFailed("bearer token is required")
	}
	if s.bearerValidator != nil {
		if _, err := s.bearerValidator.Validate(ctx, token); err != nil {
			return CachedUser{}, err
		}
	}
	return s.userCache.Validate(ctx, token)
}

// fetchValidatedUser is the cache's remote path: service credential,
// retry-wrapped validate-token call, then the cache entry.
func (s *Service) fetchValidatedUser(ctx context.Context, token string) (CachedUser, error) {
	subject := token
	if s.bearerValidator != nil {
		claims, err := s.bearerValidator.Validate(ctx, token)
		if err != nil {
			return CachedUser{}, err
		}
		if strings.TrimSpace(claims.Token) != "" {
			subject = strings.TrimSpace(claims.Token)
		}
	}

	cred, err := s.tokenManager.Token(ctx, false)
	if err != nil {
		return CachedUser{}, err
	}
	record, err := ExecuteWithRetry(ctx, s.executor, "validate_token", func(ctx context.Context) (UserRecord, error) {
		return s.gateway.ValidateToken(ctx, ValidateTokenRequest{
			Credential: cred,
			Token:      subject,
			Scope:      s.config.Scope,
		})
	})
	if err != nil {
		return CachedUser{}, err
	}
	return cachedUserFromRecord(record, s.now()), nil
}

// ClearCachedUser drops the cached validation for a token, forcing the
// next validate to hit the identity service.
func (s *Service) ClearCachedUser(_ context.Context, token string) error {
	if s == nil {
		return newInternalError("core: service is nil")
	}
	s.userCache.Clear(token)
	return nil
}

// RefreshServiceToken forces a renewal and returns the fresh credential.
func (s *Service) RefreshServiceToken(ctx context.Context) (Credential, error) {
	if s == nil {
		return Credential{}, newInternalError("core: service is nil")
	}
	startedAt := time.Now()
	cred, err := s.tokenManager.Token(ctx, true)
	s.observeOperation(ctx, startedAt, "refresh_service_token", err, nil)
	if err != nil {
		return Credential{}, s.mapError(err)
	}
	return cred, nil
}

func (s *Service) renewServiceToken(ctx context.Context) (ServiceToken, error) {
	return ExecuteWithRetry(ctx, s.executor, "refresh_service_token", func(ctx context.Context) (ServiceToken, error) {
		return s.gateway.RefreshServiceToken(ctx, RefreshServiceTokenRequest{
			ClientID:     s.config.ClientID,
			ClientSecret: s.config.ClientSecret,
		})
	})
}

// serviceCall resolves the service credential, runs the retry-wrapped
// operation, and on an authentication failure treats the credential as
// rejected: invalidate, force one renewal, replay once.
func serviceCall[T any](
	ctx context.Context,
	s *Service,
	operation string,
	fn func(ctx context.Context, cred Credential) (T, error),
) (T, error) {
	var zero T
	if s == nil {
		return zero, newInternalError("core: service is nil")
	}
	cred, err := s.tokenManager.Token(ctx, false)
	if err != nil {
		return zero, err
	}

	attempt := func(cred Credential) (T, error) {
		return ExecuteWithRetry(ctx, s.executor, operation, func(ctx context.Context) (T, error) {
			return fn(ctx, cred)
		})
	}

	out, err := attempt(cred)
	if err == nil || !IsAuthenticationFailed(err) {
		return out, err
	}

	s.tokenManager.Invalidate(cred.Token)
	renewed, renewErr := s.tokenManager.Token(ctx, true)
	if renewErr != nil {
		return zero, renewErr
	}
	return attempt(renewed)
}

type GetUserInput struct {
	Login   string
	Scope   string
	Service bool
}

func (s *Service) GetUser(ctx context.Context, in GetUserInput) (UserRecord, error) {
	if s == nil {
		return UserRecord{}, newInternalError("core: service is nil")
	}
	startedAt := time.Now()
	login := strings.TrimSpace(in.Login)
	scope := s.scopeOrDefault(in.Scope)

	record, err := func() (UserRecord, error) {
		if login == "" {
			return UserRecord{}, NewBadRequest("core: login is required")
		}
		return serviceCall(ctx, s, "get_user", func(ctx context.Context, cred Credential) (UserRecord, error) {
			return s.gateway.GetUser(ctx, GetUserRequest{
				Credential: cred,
				Login:      login,
				Scope:      scope,
				Service:    in.Service,
			})
		})
	}()
	s.observeOperation(ctx, startedAt, "get_user", err, map[string]any{
		"scope": scope,
		"login": login,
	})
	if err != nil {
		return UserRecord{}, s.mapError(err)
	}
	return record, nil
}

func (s *Service) GetUsers(ctx context.Context, scope string) ([]UserRecord, error) {
	if s == nil {
		return nil, newInternalError("core: service is nil")
	}
	startedAt := time.Now()
	scope = s.scopeOrDefault(scope)

	records, err := serviceCall(ctx, s, "get_users", func(ctx context.Context, cred Credential) ([]UserRecord, error) {
		return s.gateway.GetUsers(ctx, GetUsersRequest{
			Credential: cred,
			Scope:      scope,
		})
	})
	s.observeOperation(ctx, startedAt, "get_users", err, map[string]any{"scope": scope})
	if err != nil {
		return nil, s.mapError(err)
	}
	return records, nil
}

type SearchUsersInput struct {
	Scope      string
	Term       string
	Attributes []string
	ExactMatch bool
	Page       int
	PageSize   int
}

// SearchUsers composes the attribute filters into a single remote query.
// Results are never cached.
func (s *Service) SearchUsers(ctx context.Context, in SearchUsersInput) ([]UserRecord, error) {
	if s == nil {
		return nil, newInternalError("core: service is nil")
	}
	startedAt := time.Now()
	scope := s.scopeOrDefault(in.Scope)
	attributes := normalizeAttributes(in.Attributes)
	if len(attributes) == 0 {
		attributes = []string{s.attrID()}
	}
	pageSize := in.PageSize
	if pageSize <= 0 {
		pageSize = 30
	}

	records, err := serviceCall(ctx, s, "search_users", func(ctx context.Context, cred Credential) ([]UserRecord, error) {
		return s.gateway.SearchUsers(ctx, SearchUsersRequest{
			Credential: cred,
			Scope:      scope,
			Term:       strings.TrimSpace(in.Term),
			Attributes: attributes,
			ExactMatch: in.ExactMatch,
			Page:       in.Page,
			PageSize:   pageSize,
		})
	})
	s.observeOperation(ctx, startedAt, "search_users", err, map[string]any{"scope": scope})
	if err != nil {
		return nil, s.mapError(err)
	}
	return records, nil
}

type AddUserInput struct {
	Login         string
	Email         string
	FirstName     string
	LastName      string
	Password      string
	Scope         string
	Roles         []string
	Data          map[string]any
	SendEmail     bool
	ResetPassword bool
}

func (s *Service) AddUser(ctx context.Context, in AddUserInput) (UserRecord, error) {
	if s == nil {
		return UserRecord{}, newInternalError("core: service is nil")
	}
	startedAt := time.Now()
	login := strings.TrimSpace(in.Login)
	scope := s.scopeOrDefault(in.Scope)

	record, err := func() (UserRecord, error) {
		if login == "" {
			return UserRecord{}, NewBadRequest("core: login is required")
		}
		if strings.TrimSpace(in.Email) == "" {
			return UserRecord{}, NewBadRequest("core: email is required")
		}
		return serviceCall(ctx, s, "add_user", func(ctx context.Context, cred Credential) (UserRecord, error) {
			return s.gateway.AddUser(ctx, AddUserRequest{
				Credential:    cred,
				Login:         login,
				Email:         strings.TrimSpace(in.Email),
				FirstName:     strings.TrimSpace(in.FirstName),
				LastName:      strings.TrimSpace(in.LastName),
				Password:      in.Password,
				ClientID:      s.config.ClientID,
				Scope:         scope,
				Roles:         append([]string(nil), in.Roles...),
				Data:          copyAnyMap(in.Data),
				SendEmail:     in.SendEmail,
				ResetPassword: in.ResetPassword,
			})
		})
	}()
	s.observeOperation(ctx, startedAt, "add_user", err, map[string]any{
		"scope": scope,
		"login": login,
	})
	if err != nil {
		return UserRecord{}, s.mapError(err)
	}
	return record, nil
}

type SetUserMetadataInput struct {
	ClientID string
	Data     map[string]any
	// EnsureFields lists attribute keys the upstream schema requires to
	// exist. Absent keys are sent with an explicit empty value rather
	// than omitted.
	EnsureFields []string
}

func (s *Service) SetUserMetadata(ctx context.Context, in SetUserMetadataInput) error {
	if s == nil {
		return newInternalError("core: service is nil")
	}
	startedAt := time.Now()
	clientID := strings.TrimSpace(in.ClientID)
	if clientID == "" {
		clientID = s.config.ClientID
	}

	data := copyAnyMap(in.Data)
	for key, value := range data {
		if value == nil {
			data[key] = ""
		}
	}
	for _, field := range in.EnsureFields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if _, ok := data[field]; !ok {
			data[field] = ""
		}
	}

	_, err := serviceCall(ctx, s, "set_user_metadata", func(ctx context.Context, cred Credential) (struct{}, error) {
		return struct{}{}, s.gateway.SetUserMetadata(ctx, SetUserMetadataRequest{
			Credential: cred,
			ClientID:   clientID,
			Data:       data,
		})
	})
	s.observeOperation(ctx, startedAt, "set_user_metadata", err, map[string]any{"client_id": clientID})
	return s.mapError(err)
}

type AccountMetadataInput struct {
	Scope    string
	ClientID string
	Service  bool
}

func (s *Service) GetAccountMetadata(ctx context.Context, in AccountMetadataInput) (map[string]any, error) {
	if s == nil {
		return nil, newInternalError("core: service is nil")
	}
	startedAt := time.Now()
	scope := s.scopeOrDefault(in.Scope)

	metadata, err := serviceCall(ctx, s, "get_account_metadata", func(ctx context.Context, cred Credential) (map[string]any, error) {
		return s.gateway.GetAccountMetadata(ctx, AccountMetadataRequest{
			Credential: cred,
			Scope:      scope,
			ClientID:   s.clientIDOrDefault(in.ClientID),
			Service:    in.Service,
		})
	})
	s.observeOperation(ctx, startedAt, "get_account_metadata", err, map[string]any{"scope": scope})
	if err != nil {
		return nil, s.mapError(err)
	}
	return metadata, nil
}

type SetAccountMetadataInput struct {
	Scope    string
	ClientID string
	Payload  map[string]any
	Service  bool
}

func (s *Service) SetAccountMetadata(ctx context.Context, in SetAccountMetadataInput) (map[string]any, error) {
	if s == nil {
		return nil, newInternalError("core: service is nil")
	}
	startedAt := time.Now()
	scope := s.scopeOrDefault(in.Scope)

	metadata, err := serviceCall(ctx, s, "set_account_metadata", func(ctx context.Context, cred Credential) (map[string]any, error) {
		return s.gateway.SetAccountMetadata(ctx, SetAccountMetadataRequest{
			Credential: cred,
			Scope:      scope,
			ClientID:   s.clientIDOrDefault(in.ClientID),
			Payload:    copyAnyMap(in.Payload),
			Service:    in.Service,
		})
	})
	s.observeOperation(ctx, startedAt, "set_account_metadata", err, map[string]any{"scope": scope})
	if err != nil {
		return nil, s.mapError(err)
	}
	return metadata, nil
}

type AddScopeInput struct {
	Scope     string
	AdminUser string
	URLs      map[string]any
}

func (s *Service) AddScope(ctx context.Context, in AddScopeInput) error {
	if s == nil {
		return newInternalError("core: service is nil")
	}
	startedAt := time.Now()
	scope := strings.TrimSpace(in.Scope)

	_, err := func() (struct{}, error) {
		if scope == "" {
			return struct{}{}, NewBadRequest("core: scope is required")
		}
		if strings.TrimSpace(in.AdminUser) == "" {
			return struct{}{}, NewBadRequest("core: admin user is required")
		}
		return serviceCall(ctx, s, "add_scope", func(ctx context.Context, cred Credential) (struct{}, error) {
			return struct{}{}, s.gateway.AddScope(ctx, AddScopeRequest{
				Credential: cred,
				Scope:      scope,
				AdminUser:  strings.TrimSpace(in.AdminUser),
				URLs:       copyAnyMap(in.URLs),
			})
		})
	}()
	s.observeOperation(ctx, startedAt, "add_scope", err, map[string]any{"scope": scope})
	return s.mapError(err)
}

type CheckScopeInput struct {
	ScopeID string
	Service bool
}

func (s *Service) CheckScopeID(ctx context.Context, in CheckScopeInput) (ScopeCheck, error) {
	if s == nil {
		return ScopeCheck{}, newInternalError("core: service is nil")
	}
	startedAt := time.Now()
	scopeID := strings.TrimSpace(in.ScopeID)

	check, err := func() (ScopeCheck, error) {
		if scopeID == "" {
			return ScopeCheck{}, NewBadRequest("core: scope id is required")
		}
		return serviceCall(ctx, s, "check_scope_id", func(ctx context.Context, cred Credential) (ScopeCheck, error) {
			return s.gateway.CheckScopeID(ctx, CheckScopeIDRequest{
				Credential: cred,
				ScopeID:    scopeID,
				Service:    in.Service,
			})
		})
	}()
	s.observeOperation(ctx, startedAt, "check_scope_id", err, map[string]any{"scope": scopeID})
	if err != nil {
		return ScopeCheck{}, s.mapError(err)
	}
	return check, nil
}

type ScopeRolesInput struct {
	Scope       string
	PrincipalID string
	Roles       []string
}

func (in ScopeRolesInput) validate() error {
	if strings.TrimSpace(in.PrincipalID) == "" {
		return NewBadRequest("core: principal id is required")
	}
	return nil
}

func (s *Service) GrantScopeRoles(ctx context.Context, in ScopeRolesInput) (ScopeGrant, error) {
	return s.scopeRolesCall(ctx, "grant_scope_roles", in, s.gatewayGrantScopeRoles)
}

func (s *Service) RevokeScopeRoles(ctx context.Context, in ScopeRolesInput) (ScopeGrant, error) {
	return s.scopeRolesCall(ctx, "revoke_scope_roles", in, s.gatewayRevokeScopeRoles)
}

func (s *Service) gatewayGrantScopeRoles(ctx context.Context, req ScopeRolesRequest) (ScopeGrant, error) {
	return s.gateway.GrantScopeRoles(ctx, req)
}

func (s *Service) gatewayRevokeScopeRoles(ctx context.Context, req ScopeRolesRequest) (ScopeGrant, error) {
	return s.gateway.RevokeScopeRoles(ctx, req)
}

func (s *Service) scopeRolesCall(
	ctx context.Context,
	operation string,
	in ScopeRolesInput,
	call func(ctx context.Context, req ScopeRolesRequest) (ScopeGrant, error),
) (ScopeGrant, error) {
	if s == nil {
		return ScopeGrant{}, newInternalError("core: service is nil")
	}
	startedAt := time.Now()
	scope := s.scopeOrDefault(in.Scope)

	grant, err := func() (ScopeGrant, error) {
		if err := in.validate(); err != nil {
			return ScopeGrant{}, err
		}
		return serviceCall(ctx, s, operation, func(ctx context.Context, cred Credential) (ScopeGrant, error) {
			return call(ctx, ScopeRolesRequest{
				Credential:  cred,
				Scope:       scope,
				PrincipalID: strings.TrimSpace(in.PrincipalID),
				Roles:       append([]string(nil), in.Roles...),
			})
		})
	}()
	s.observeOperation(ctx, startedAt, operation, err, map[string]any{
		"scope": scope,
		"login": in.PrincipalID,
	})
	if err != nil {
		return ScopeGrant{}, s.mapError(err)
	}
	return grant, nil
}

type ModifyScopeLimitInput struct {
	Scope    string
	Name     string
	Value    any
	ClientID string
	Service  bool
}

func (s *Service) ModifyScopeLimit(ctx context.Context, in ModifyScopeLimitInput) (map[string]any, error) {
	if s == nil {
		return nil, newInternalError("core: service is nil")
	}
	startedAt := time.Now()
	scope := s.scopeOrDefault(in.Scope)

	out, err := func() (map[string]any, error) {
		if strings.TrimSpace(in.Name) == "" {
			return nil, NewBadRequest("core: limit name is required")
		}
		return serviceCall(ctx, s, "modify_scope_limit", func(ctx context.Context, cred Credential) (map[string]any, error) {
			return s.gateway.ModifyScopeLimit(ctx, ModifyScopeLimitRequest{
				Credential: cred,
				Scope:      scope,
				Name:       strings.TrimSpace(in.Name),
				Value:      in.Value,
				ClientID:   s.clientIDOrDefault(in.ClientID),
				Service:    in.Service,
			})
		})
	}()
	s.observeOperation(ctx, startedAt, "modify_scope_limit", err, map[string]any{"scope": scope})
	if err != nil {
		return nil, s.mapError(err)
	}
	return out, nil
}

type AuthorizationCodeInput struct {
	ClientID string
	Scopes   []string
}

func (s *Service) GetAuthorizationCode(ctx context.Context, in AuthorizationCodeInput) (string, error) {
	if s == nil {
		return "", newInternalError("core: service is nil")
	}
	startedAt := time.Now()

	code, err := serviceCall(ctx, s, "get_authorization_code", func(ctx context.Context, cred Credential) (string, error) {
		return s.gateway.GetAuthorizationCode(ctx, AuthorizationCodeRequest{
			Credential: cred,
			ClientID:   s.clientIDOrDefault(in.ClientID),
			Scopes:     append([]string(nil), in.Scopes...),
		})
	})
	s.observeOperation(ctx, startedAt, "get_authorization_code", err, nil)
	if err != nil {
		return "", s.mapError(err)
	}
	return code, nil
}

type TempTokenInput struct {
	Scope         string
	Payload       map[string]any
	TTL           time.Duration
	Clear         bool
	Authorization string
}

func (s *Service) GetTempToken(ctx context.Context, in TempTokenInput) (string, error) {
	if s == nil {
		return "", newInternalError("core: service is nil")
	}
	startedAt := time.Now()
	scope := s.scopeOrDefault(in.Scope)

	token, err := serviceCall(ctx, s, "get_temp_token", func(ctx context.Context, cred Credential) (string, error) {
		return s.gateway.GetTempToken(ctx, TempTokenRequest{
			Credential:    cred,
			Scope:         scope,
			ClientID:      s.config.ClientID,
			Payload:       copyAnyMap(in.Payload),
			TTL:           in.TTL,
			Clear:         in.Clear,
			Authorization: strings.TrimSpace(in.Authorization),
		})
	})
	s.observeOperation(ctx, startedAt, "get_temp_token", err, map[string]any{"scope": scope})
	if err != nil {
		return "", s.mapError(err)
	}
	return token, nil
}

func (s *Service) RetrieveTempData(ctx context.Context, token string) (map[string]any, error) {
	if s == nil {
		return nil, newInternalError("core: service is nil")
	}
	startedAt := time.Now()
	token = strings.TrimSpace(token)

	data, err := func() (map[string]any, error) {
		if token == "" {
			return nil, NewBadRequest("core: temp token is required")
		}
		return serviceCall(ctx, s, "retrieve_temp_data", func(ctx context.Context, cred Credential) (map[string]any, error) {
			return s.gateway.RetrieveTempData(ctx, RetrieveTempDataRequest{
				Credential: cred,
				Token:      token,
			})
		})
	}()
	s.observeOperation(ctx, startedAt, "retrieve_temp_data", err, nil)
	if err != nil {
		return nil, s.mapError(err)
	}
	return data, nil
}

func (s *Service) scopeOrDefault(scope string) string {
	scope = strings.TrimSpace(scope)
	if scope != "" {
		return scope
	}
	return strings.TrimSpace(s.config.Scope)
}

func (s *Service) clientIDOrDefault(clientID string) string {
	clientID = strings.TrimSpace(clientID)
	if clientID != "" {
		return clientID
	}
	return s.config.ClientID
}

func (s *Service) attrID() string {
	attr := strings.TrimSpace(s.config.AttrID)
	if attr == "" {
		return DefaultAttrID
	}
	return attr
}

func normalizeAttributes(attributes []string) []string {
	out := make([]string, 0, len(attributes))
	seen := map[string]struct{}{}
	for _, attr := range attributes {
		attr = strings.TrimSpace(attr)
		if attr == "" {
			continue
		}
		if _, ok := seen[attr]; ok {
			continue
		}
		seen[attr] = struct{}{}
		out = append(out, attr)
	}
	return out
}
