package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-identity-client/core"
)

const defaultClientTimeout = 30 * time.Second

// Response bodies are capped; the identity service never returns more
// than a page of users.
const maxResponseBodyBytes int64 = 1 << 20

// Identity service endpoints.
const (
	endpointValidToken          = "valid_token"
	endpointServiceToken        = "get_service_token"
	endpointGetUser             = "get_user"
	endpointServiceGetUser      = "service_get_user"
	endpointGetUsers            = "get_users"
	endpointSearchUser          = "search_user"
	endpointAddUser             = "add_user"
	endpointEditUser            = "edit_user"
	endpointGetMetadata         = "get_metadata"
	endpointGetMetadataService  = "get_metadata_by_service"
	endpointSetAccountMeta      = "set_account_metadata"
	endpointSetAccountMetaSvc   = "service_set_account_metadata"
	endpointAddScope            = "add_scope"
	endpointCheckScopeID        = "check_scope_id"
	endpointGrantScopeRoles     = "grant_scope_roles"
	endpointDenyScopeRoles      = "deny_scope_roles"
	endpointModifyScopeLimit    = "modify_scope_limit"
	endpointModifyScopeLimitSvc = "service_modify_scope_limit"
	endpointAuthorizationCode   = "get_authorization_code"
	endpointGetTempToken        = "get_temp_token"
	endpointRetrieveTempData    = "retrieve_temp_data"
)

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	// BaseURL is the identity service root, e.g. https://auth.example.com.
	BaseURL string
	// Timeout bounds each remote call. Zero means the default 30s.
	Timeout time.Duration
	// AttrID names the user attribute that carries the identity when a
	// payload has no explicit id. Empty means the default attribute.
	AttrID     string
	HTTPClient HTTPDoer
	Logger     core.Logger
}

// HTTPGateway is the JSON-over-HTTP implementation of core.Gateway.
// It performs network I/O only: no caching, no retries, no credential
// management. Credentials always travel in the Authorization header.
type HTTPGateway struct {
	baseURL *url.URL
	timeout time.Duration
	attrID  string
	client  HTTPDoer
	logger  core.Logger
}

var _ core.Gateway = (*HTTPGateway)(nil)

func NewHTTPGateway(cfg Config) (*HTTPGateway, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, core.NewBadRequest("transport: base url is required")
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, core.WrapBadRequest(err, "transport: invalid base url")
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, core.NewBadRequest("transport: base url must be absolute")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}
	attrID := strings.TrimSpace(cfg.AttrID)
	if attrID == "" {
		attrID = core.DefaultAttrID
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPGateway{
		baseURL: parsed,
		timeout: timeout,
		attrID:  attrID,
		client:  client,
		logger:  cfg.Logger,
	}, nil
}

func (g *HTTPGateway) ValidateToken(ctx context.Context, req core.ValidateTokenRequest) (core.UserRecord, error) {
	if strings.TrimSpace(req.Token) == "" {
		return core.UserRecord{}, core.NewBadRequest("transport: token is required")
	}
	var payload map[string]any
	err := g.doJSON(ctx, call{
		method:     http.MethodPost,
		endpoint:   endpointValidToken,
		credential: req.Credential,
		body: map[string]any{
			"token": req.Token,
			"scope": req.Scope,
		},
	}, &payload)
	if err != nil {
		return core.UserRecord{}, err
	}
	if nested, ok := payload["user"].(map[string]any); ok {
		payload = nested
	}
	if len(payload) == 0 {
		return core.UserRecord{}, core.NewAuthenticationFailed("transport: token rejected by identity service")
	}
	return decodeUserRecord(payload, g.attrID), nil
}

func (g *HTTPGateway) GetUser(ctx context.Context, req core.GetUserRequest) (core.UserRecord, error) {
	endpoint := endpointGetUser
	if req.Service {
		endpoint = endpointServiceGetUser
	}
	var payload map[string]any
	err := g.doJSON(ctx, call{
		method:     http.MethodPost,
		endpoint:   endpoint,
		credential: req.Credential,
		body: map[string]any{
			"user":       req.Login,
			"scope":      req.Scope,
			"photo_size": "false",
		},
	}, &payload)
	if err != nil {
		return core.UserRecord{}, err
	}
	return decodeUserRecord(payload, g.attrID), nil
}

func (g *HTTPGateway) GetUsers(ctx context.Context, req core.GetUsersRequest) ([]core.UserRecord, error) {
	var payload []map[string]any
	err := g.doJSON(ctx, call{
		method:     http.MethodPost,
		endpoint:   endpointGetUsers,
		credential: req.Credential,
		body: map[string]any{
			"scope":      req.Scope,
			"photo_size": "false",
		},
	}, &payload)
	if err != nil {
		return nil, err
	}
	return decodeUserRecords(payload, g.attrID), nil
}

func (g *HTTPGateway) SearchUsers(ctx context.Context, req core.SearchUsersRequest) ([]core.UserRecord, error) {
	criteria := map[string]string{}
	for _, attr := range req.Attributes {
		criteria[attr] = req.Term
	}
	criteriaJSON, err := json.Marshal(criteria)
	if err != nil {
		return nil, core.WrapBadRequest(err, "transport: encode search criteria")
	}
	attrsJSON, err := json.Marshal(req.Attributes)
	if err != nil {
		return nil, core.WrapBadRequest(err, "transport: encode search attributes")
	}

	var payload []map[string]any
	err = g.doJSON(ctx, call{
		method:     http.MethodPost,
		endpoint:   endpointSearchUser,
		credential: req.Credential,
		body: map[string]any{
			"criteria":    string(criteriaJSON),
			"attrs":       string(attrsJSON),
			"exact_match": req.ExactMatch,
			"page":        req.Page,
			"num_x_page":  req.PageSize,
			"scope":       req.Scope,
		},
	}, &payload)
	if err != nil {
		return nil, err
	}
	return decodeUserRecords(payload, g.attrID), nil
}

func (g *HTTPGateway) AddUser(ctx context.Context, req core.AddUserRequest) (core.UserRecord, error) {
	body := map[string]any{
		"user":           req.Login,
		"email":          req.Email,
		"cn":             req.FirstName,
		"sn":             req.LastName,
		"password":       req.Password,
		"client_id":      req.ClientID,
		"scope":          req.Scope,
		"data":           req.Data,
		"send-email":     req.SendEmail,
		"reset-password": req.ResetPassword,
	}
	if len(req.Roles) > 0 {
		body["roles"] = req.Roles
	}
	var payload map[string]any
	err := g.doJSON(ctx, call{
		method:     http.MethodPost,
		endpoint:   endpointAddUser,
		credential: req.Credential,
		body:       body,
	}, &payload)
	if err != nil {
		return core.UserRecord{}, err
	}
	record := decodeUserRecord(payload, g.attrID)
	if record.Login == "" {
		record.Login = req.Login
	}
	return record, nil
}

func (g *HTTPGateway) SetUserMetadata(ctx context.Context, req core.SetUserMetadataRequest) error {
	return g.doJSON(ctx, call{
		method:     http.MethodPost,
		endpoint:   endpointEditUser,
		credential: req.Credential,
		body: map[string]any{
			"client_id": req.ClientID,
			"info":      map[string]any{"data": req.Data},
		},
	}, nil)
}

func (g *HTTPGateway) GetAccountMetadata(ctx context.Context, req core.AccountMetadataRequest) (map[string]any, error) {
	endpoint := endpointGetMetadata
	if req.Service {
		endpoint = endpointGetMetadataService
	}
	var payload map[string]any
	err := g.doJSON(ctx, call{
		method:     http.MethodPost,
		endpoint:   endpoint,
		credential: req.Credential,
		body: map[string]any{
			"scope":     req.Scope,
			"client_id": req.ClientID,
		},
	}, &payload)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (g *HTTPGateway) SetAccountMetadata(ctx context.Context, req core.SetAccountMetadataRequest) (map[string]any, error) {
	endpoint := endpointSetAccountMeta
	if req.Service {
		endpoint = endpointSetAccountMetaSvc
	}
	var payload map[string]any
	err := g.doJSON(ctx, call{
		method:     http.MethodPost,
		endpoint:   endpoint,
		credential: req.Credential,
		body: map[string]any{
			"scope":     req.Scope,
			"payload":   req.Payload,
			"client_id": req.ClientID,
		},
	}, &payload)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (g *HTTPGateway) AddScope(ctx context.Context, req core.AddScopeRequest) error {
	urls := req.URLs
	if urls == nil {
		urls = map[string]any{}
	}
	return g.doJSON(ctx, call{
		method:     http.MethodPost,
		endpoint:   endpointAddScope,
		credential: req.Credential,
		body: map[string]any{
			"scope":      req.Scope,
			"admin_user": req.AdminUser,
			"urls":       urls,
		},
	}, nil)
}

func (g *HTTPGateway) CheckScopeID(ctx context.Context, req core.CheckScopeIDRequest) (core.ScopeCheck, error) {
	var payload map[string]any
	err := g.doJSON(ctx, call{
		method:     http.MethodGet,
		endpoint:   endpointCheckScopeID,
		credential: req.Credential,
		query:      url.Values{"id": []string{req.ScopeID}},
	}, &payload)
	if err != nil {
		if core.IsNotFound(err) {
			return core.ScopeCheck{ScopeID: req.ScopeID}, nil
		}
		return core.ScopeCheck{}, err
	}
	return core.ScopeCheck{
		ScopeID:  req.ScopeID,
		Exists:   true,
		Metadata: payload,
	}, nil
}

func (g *HTTPGateway) GrantScopeRoles(ctx context.Context, req core.ScopeRolesRequest) (core.ScopeGrant, error) {
	return g.scopeRoles(ctx, endpointGrantScopeRoles, req)
}

func (g *HTTPGateway) RevokeScopeRoles(ctx context.Context, req core.ScopeRolesRequest) (core.ScopeGrant, error) {
	return g.scopeRoles(ctx, endpointDenyScopeRoles, req)
}

func (g *HTTPGateway) scopeRoles(ctx context.Context, endpoint string, req core.ScopeRolesRequest) (core.ScopeGrant, error) {
	roles := req.Roles
	if roles == nil {
		roles = []string{}
	}
	var payload map[string]any
	err := g.doJSON(ctx, call{
		method:     http.MethodPost,
		endpoint:   endpoint,
		credential: req.Credential,
		body: map[string]any{
			"scope": req.Scope,
			"user":  req.PrincipalID,
			"roles": roles,
		},
	}, &payload)
	if err != nil {
		return core.ScopeGrant{}, err
	}
	grant := core.ScopeGrant{
		ScopeID:     req.Scope,
		PrincipalID: req.PrincipalID,
		Roles:       append([]string(nil), req.Roles...),
	}
	if granted := decodeStringSlice(payload["roles"]); len(granted) > 0 {
		grant.Roles = granted
	}
	return grant, nil
}

func (g *HTTPGateway) ModifyScopeLimit(ctx context.Context, req core.ModifyScopeLimitRequest) (map[string]any, error) {
	endpoint := endpointModifyScopeLimit
	if req.Service {
		endpoint = endpointModifyScopeLimitSvc
	}
	var payload map[string]any
	err := g.doJSON(ctx, call{
		method:     http.MethodPost,
		endpoint:   endpoint,
		credential: req.Credential,
		body: map[string]any{
			"scope":     req.Scope,
			"name":      req.Name,
			"value":     req.Value,
			"client_id": req.ClientID,
		},
	}, &payload)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (g *HTTPGateway) GetAuthorizationCode(ctx context.Context, req core.AuthorizationCodeRequest) (string, error) {
	var payload struct {
		AuthCode string `json:"auth_code"`
	}
	err := g.doJSON(ctx, call{
		method:     http.MethodPost,
		endpoint:   endpointAuthorizationCode,
		credential: req.Credential,
		body: map[string]any{
			"client_id":     req.ClientID,
			"scopes":        req.Scopes,
			"response_type": "code",
		},
	}, &payload)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(payload.AuthCode) == "" {
		return "", core.NewBadRequest("transport: identity service returned no authorization code")
	}
	return payload.AuthCode, nil
}

// GetTempToken returns the raw token; the endpoint answers with a plain
// text body, not JSON.
func (g *HTTPGateway) GetTempToken(ctx context.Context, req core.TempTokenRequest) (string, error) {
	body := map[string]any{
		"payload":   req.Payload,
		"scope":     req.Scope,
		"client_id": req.ClientID,
		"clear":     req.Clear,
	}
	if req.Payload == nil {
		body["payload"] = map[string]any{}
	}
	if req.TTL > 0 {
		body["ttl"] = int64(req.TTL / time.Second)
	}
	raw, err := g.doRaw(ctx, call{
		method:        http.MethodPost,
		endpoint:      endpointGetTempToken,
		credential:    req.Credential,
		authorization: req.Authorization,
		body:          body,
	})
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", core.NewBadRequest("transport: identity service returned an empty temp token")
	}
	return token, nil
}

func (g *HTTPGateway) RetrieveTempData(ctx context.Context, req core.RetrieveTempDataRequest) (map[string]any, error) {
	var payload map[string]any
	err := g.doJSON(ctx, call{
		method:     http.MethodGet,
		endpoint:   endpointRetrieveTempData,
		credential: req.Credential,
		query:      url.Values{"token": []string{req.Token}},
	}, &payload)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (g *HTTPGateway) RefreshServiceToken(ctx context.Context, req core.RefreshServiceTokenRequest) (core.ServiceToken, error) {
	if strings.TrimSpace(req.ClientID) == "" || strings.TrimSpace(req.ClientSecret) == "" {
		return core.ServiceToken{}, core.NewBadRequest("transport: client id and secret are required")
	}
	var payload struct {
		ServiceToken string `json:"service_token"`
		Exp          int64  `json:"exp"`
	}
	err := g.doJSON(ctx, call{
		method:   http.MethodPost,
		endpoint: endpointServiceToken,
		// Credential issuance authenticates with the client secret, not
		// a bearer token.
		anonymous: true,
		body: map[string]any{
			"client_id":     req.ClientID,
			"client_secret": req.ClientSecret,
			"grant_type":    "service",
		},
	}, &payload)
	if err != nil {
		return core.ServiceToken{}, err
	}
	if strings.TrimSpace(payload.ServiceToken) == "" {
		return core.ServiceToken{}, core.NewBadRequest("transport: identity service returned no service token")
	}
	token := core.ServiceToken{
		Credential: core.Credential{
			Kind:  core.CredentialKindService,
			Token: payload.ServiceToken,
		},
	}
	if payload.Exp > 0 {
		expiresAt := time.Unix(payload.Exp, 0).UTC()
		token.ExpiresAt = &expiresAt
	}
	return token, nil
}

// call describes one request to the identity service.
type call struct {
	method   string
	endpoint string
	// credential is attached as the bearer authorization unless the call
	// is anonymous or carries a verbatim authorization override.
	credential    core.Credential
	authorization string
	anonymous     bool
	query         url.Values
	body          map[string]any
}

func (g *HTTPGateway) doJSON(ctx context.Context, c call, out any) error {
	raw, err := g.doRaw(ctx, c)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return core.WrapBadRequest(err, fmt.Sprintf("transport: decode %s response", c.endpoint))
	}
	return nil
}

func (g *HTTPGateway) doRaw(ctx context.Context, c call) ([]byte, error) {
	if g == nil || g.client == nil {
		return nil, core.NewBadRequest("transport: gateway is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	authorization := strings.TrimSpace(c.authorization)
	if authorization == "" && !c.anonymous {
		if err := c.credential.Validate(); err != nil {
			return nil, core.NewAuthenticationFailed("transport: a credential is required for " + c.endpoint)
		}
		authorization = "Bearer " + c.credential.Token
	}

	target := g.baseURL.JoinPath(c.endpoint)
	if len(c.query) > 0 {
		target.RawQuery = c.query.Encode()
	}

	var bodyReader io.Reader
	if c.body != nil {
		encoded, err := json.Marshal(c.body)
		if err != nil {
			return nil, core.WrapBadRequest(err, fmt.Sprintf("transport: encode %s request", c.endpoint))
		}
		bodyReader = bytes.NewReader(encoded)
	}

	requestCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(requestCtx, c.method, target.String(), bodyReader)
	if err != nil {
		return nil, core.WrapBadRequest(err, fmt.Sprintf("transport: create %s request", c.endpoint))
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json, text/plain")
	httpReq.Header.Set("X-Request-Id", requestID)
	if c.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if authorization != "" {
		httpReq.Header.Set("Authorization", authorization)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		if ctxErr := requestCtx.Err(); ctxErr != nil && ctx.Err() != nil {
			return nil, core.NewCancelled(ctx.Err())
		}
		if errors.Is(err, context.DeadlineExceeded) || requestCtx.Err() != nil {
			return nil, core.NewTransportError(err, fmt.Sprintf("transport: %s timed out", c.endpoint))
		}
		return nil, core.NewTransportError(err, fmt.Sprintf("transport: %s request failed", c.endpoint))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes+1))
	if err != nil {
		return nil, core.NewTransportError(err, fmt.Sprintf("transport: read %s response", c.endpoint))
	}
	if int64(len(raw)) > maxResponseBodyBytes {
		return nil, core.NewBadRequest("transport: response body exceeds " + strconv.FormatInt(maxResponseBodyBytes, 10) + " bytes")
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}

	detail := strings.TrimSpace(string(raw))
	if g.logger != nil {
		g.logger.Warn("identity service returned an error",
			"endpoint", c.endpoint,
			"status", resp.StatusCode,
			"request_id", requestID,
		)
	}
	return nil, statusError(c.endpoint, resp.StatusCode, detail)
}

func statusError(endpoint string, status int, detail string) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return core.NewAuthenticationFailed(fmt.Sprintf("transport: %s rejected the credential", endpoint))
	case status == http.StatusNotFound:
		return core.NewNotFound(fmt.Sprintf("transport: %s: not found", endpoint))
	case status >= 400 && status < 500:
		msg := fmt.Sprintf("transport: %s failed with status %d", endpoint, status)
		if detail != "" {
			msg += ": " + truncateDetail(detail)
		}
		return core.NewBadRequest(msg)
	default:
		return core.NewServiceUnavailable(fmt.Sprintf("transport: %s failed with status %d", endpoint, status))
	}
}

func truncateDetail(detail string) string {
	const max = 512
	if len(detail) <= max {
		return detail
	}
	return detail[:max] + "..."
}
