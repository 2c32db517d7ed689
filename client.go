package identityclient

import (
	"context"
	"strings"

	"github.com/goliatone/go-identity-client/auth"
	"github.com/goliatone/go-identity-client/core"
	"github.com/goliatone/go-identity-client/transport"
)

// Client bundles the engine and the command/query facade behind one
// constructor. Callers who need custom wiring use core.NewService and
// NewFacade directly.
type Client struct {
	service *core.Service
	facade  *Facade
	stop    func()
}

// New builds a ready client: HTTP gateway against cfg.Server, local JWT
// validation when cfg.JWTSecret is set, and the credential engine on
// top. Extra options run after the defaults, so WithGateway or
// WithBearerValidator can replace either piece.
func New(cfg core.Config, options ...core.Option) (*Client, error) {
	defaults := core.DefaultConfig()

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaults.RequestTimeout
	}
	gateway, err := transport.NewHTTPGateway(transport.Config{
		BaseURL: cfg.Server,
		Timeout: timeout,
		AttrID:  cfg.AttrID,
	})
	if err != nil {
		return nil, err
	}

	wired := []core.Option{core.WithGateway(gateway)}
	if strings.TrimSpace(cfg.JWTSecret) != "" {
		validator, err := auth.NewJWTValidator(cfg.JWTSecret, cfg.JWTAlgorithm)
		if err != nil {
			return nil, err
		}
		wired = append(wired, core.WithBearerValidator(validator))
	}
	wired = append(wired, options...)

	service, err := core.NewService(cfg, wired...)
	if err != nil {
		return nil, err
	}
	facade, err := NewFacade(service)
	if err != nil {
		return nil, err
	}
	client := &Client{service: service, facade: facade, stop: func() {}}
	if service.Config().AutoRenewToken {
		client.stop = service.StartAutoRenew(context.Background())
	}
	return client, nil
}

// Close stops the auto-renewal loop when one is running.
func (c *Client) Close() {
	if c == nil || c.stop == nil {
		return
	}
	c.stop()
}

func (c *Client) Core() *core.Service {
	if c == nil {
		return nil
	}
	return c.service
}

func (c *Client) Commands() Commands {
	if c == nil {
		return Commands{}
	}
	return c.facade.Commands()
}

func (c *Client) Queries() Queries {
	if c == nil {
		return Queries{}
	}
	return c.facade.Queries()
}

func (c *Client) Facade() *Facade {
	if c == nil {
		return nil
	}
	return c.facade
}

// StartAutoRenew proxies to the engine's renewal loop.
func (c *Client) StartAutoRenew(ctx context.Context) (stop func()) {
	if c == nil {
		return func() {}
	}
	return c.service.StartAutoRenew(ctx)
}
