// Package lock es el punto de entrada público del SDK: descarga las connections
// del tenant, resuelve la configuración de login y arma los flujos de
// autorización web.
//
// Uso:
//
//	cfg, _ := config.Load("lock.yaml")
//	c, err := lock.New(cfg)
//	ac, err := c.Resolve(ctx)
//	p, err := c.StartLogin(ctx, "github")
//	// el host entrega el redirect con p.Authorize(ctx, result)
package lock

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/dropDatabas3/hellojohn-lock/internal/authconfig"
	"github.com/dropDatabas3/hellojohn-lock/internal/cache"
	"github.com/dropDatabas3/hellojohn-lock/internal/config"
	"github.com/dropDatabas3/hellojohn-lock/internal/connection"
	"github.com/dropDatabas3/hellojohn-lock/internal/enterprise"
	"github.com/dropDatabas3/hellojohn-lock/internal/metrics"
	"github.com/dropDatabas3/hellojohn-lock/internal/oauth/webflow"
	"github.com/dropDatabas3/hellojohn-lock/internal/observability/logger"
	"github.com/dropDatabas3/hellojohn-lock/internal/providers"
	"github.com/dropDatabas3/hellojohn-lock/internal/tenant"
	"github.com/dropDatabas3/hellojohn-lock/internal/util"
)

// Tipos re-exportados para los hosts.
type (
	AuthConfig     = authconfig.AuthConfig
	Overrides      = authconfig.Overrides
	Connection     = connection.Connection
	Catalog        = connection.Catalog
	Descriptor     = connection.Descriptor
	Account        = webflow.Account
	WebOptions     = webflow.Options
	RedirectResult = webflow.RedirectResult
	Outcome        = webflow.Outcome
	Launcher       = webflow.Launcher
	Provider       = providers.Provider
)

var (
	ErrNoConfig           = errors.New("lock: config is required")
	ErrMissingClientID    = errors.New("lock: account.client_id is required")
	ErrConnectionNotFound = errors.New("lock: connection not found")
)

// Option configura el Client.
type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithCache reemplaza el cache construido desde la config.
func WithCache(cc cache.Client) Option { return func(c *Client) { c.cache = cc } }

// WithDescriptor usa un descriptor fijo en lugar de descargarlo.
func WithDescriptor(d *connection.Descriptor) Option { return func(c *Client) { c.static = d } }

func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.log = l } }

// WithRegisterer registra las métricas del SDK en reg.
func WithRegisterer(reg prometheus.Registerer) Option { return func(c *Client) { c.reg = reg } }

// WithBrowser / WithSurface definen los launchers por defecto de los flujos web.
func WithBrowser(l webflow.Launcher) Option { return func(c *Client) { c.browser = l } }
func WithSurface(l webflow.Launcher) Option { return func(c *Client) { c.surface = l } }

// Client es seguro para uso concurrente. Cada login crea su propio Provider.
type Client struct {
	cfg     *config.Config
	account webflow.Account

	http    *http.Client
	cache   cache.Client
	static  *connection.Descriptor
	log     *zap.Logger
	reg     prometheus.Registerer
	browser webflow.Launcher
	surface webflow.Launcher

	fetcher  *tenant.Fetcher
	registry *providers.Registry
}

// New es el composition root: cache, fetcher, registry de providers y métricas.
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrNoConfig
	}
	c := &Client{cfg: cfg}
	for _, o := range opts {
		o(c)
	}
	if c.static == nil && cfg.Account.ClientID == "" {
		return nil, ErrMissingClientID
	}

	if c.log == nil {
		logger.Init(logger.Config{
			Env:         cfg.App.Env,
			Level:       cfg.Log.Level,
			Disabled:    cfg.Log.Disabled,
			ServiceName: "lock",
		})
		c.log = logger.L()
	}
	if c.reg != nil {
		if err := metrics.Register(c.reg); err != nil {
			return nil, fmt.Errorf("lock: register metrics: %w", err)
		}
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: cfg.FetchTimeout()}
	}
	if c.cache == nil && c.static == nil {
		cc, err := cache.New(cache.Config{
			Driver:     cfg.Cache.Kind,
			Addr:       cfg.Cache.Redis.Addr,
			Password:   cfg.Cache.Redis.Password,
			DB:         cfg.Cache.Redis.DB,
			Prefix:     cfg.Cache.Redis.Prefix,
			DefaultTTL: cfg.CacheTTL(),
		})
		if err != nil {
			return nil, fmt.Errorf("lock: cache: %w", err)
		}
		c.cache = cc
	}
	if c.browser == nil {
		c.browser = webflow.BrowserLauncher{}
	}

	c.account = webflow.Account{
		ClientID:     cfg.Account.ClientID,
		Domain:       cfg.DomainURL(),
		AuthorizeURL: cfg.Account.AuthorizeURL,
		RedirectURI:  cfg.Account.RedirectURI,
		PackageID:    cfg.Account.PackageID,
		ClientInfo:   cfg.Account.ClientInfo,
	}
	c.fetcher = &tenant.Fetcher{
		ConfigurationURL: cfg.Account.ConfigurationURL,
		ClientID:         cfg.Account.ClientID,
		HTTP:             c.http,
		Cache:            c.cache,
		TTL:              cfg.CacheTTL(),
	}
	c.registry = providers.NewRegistry()
	c.registry.SetFallback(func(connection.Connection) (providers.Provider, error) {
		return c.NewWebAuthorization(c.WebOptions()), nil
	})

	c.log.Debug("lock client ready",
		logger.ClientID(c.account.ClientID),
		zap.String("cache", cfg.Cache.Kind),
		zap.Bool("static_descriptor", c.static != nil),
	)
	return c, nil
}

func (c *Client) ctx(ctx context.Context) context.Context {
	return logger.ToContext(ctx, c.log)
}

// Account es la aplicación configurada.
func (c *Client) Account() webflow.Account { return c.account }

// Providers expone el registry para registrar providers nativos por connection.
func (c *Client) Providers() *providers.Registry { return c.registry }

// Descriptor retorna el descriptor del tenant (fijo, cacheado o descargado).
func (c *Client) Descriptor(ctx context.Context) (*connection.Descriptor, error) {
	if c.static != nil {
		return c.static, nil
	}
	return c.fetcher.Fetch(c.ctx(ctx))
}

// DescriptorJSON retorna el JSON crudo para guardarlo como snapshot.
func (c *Client) DescriptorJSON(ctx context.Context) ([]byte, error) {
	if c.static != nil {
		return nil, errors.New("lock: static descriptor has no raw form")
	}
	return c.fetcher.FetchRaw(c.ctx(ctx))
}

// Connections retorna el catálogo completo, sin filtrar.
func (c *Client) Connections(ctx context.Context) (*connection.Catalog, error) {
	d, err := c.Descriptor(ctx)
	if err != nil {
		return nil, err
	}
	return d.Catalog()
}

// Resolve aplica las opciones de la config al catálogo del tenant.
func (c *Client) Resolve(ctx context.Context) (*authconfig.AuthConfig, error) {
	return c.ResolveWith(ctx, c.cfg.Options.ToOverrides())
}

// ResolveWith es Resolve con overrides explícitos.
func (c *Client) ResolveWith(ctx context.Context, o authconfig.Overrides) (*authconfig.AuthConfig, error) {
	cat, err := c.Connections(ctx)
	if err != nil {
		return nil, err
	}
	ac := authconfig.Resolve(cat, o)
	c.log.Debug("configuration resolved",
		logger.Count(ac.ConnectionCount()),
		logger.Mode(ac.InitialMode().String()),
	)
	return ac, nil
}

// MatchEnterprise busca la connection enterprise habilitada para el email.
func (c *Client) MatchEnterprise(ctx context.Context, email string) (connection.Connection, bool, error) {
	ac, err := c.Resolve(ctx)
	if err != nil {
		return connection.Connection{}, false, err
	}
	conn, ok := enterprise.NewMatcher(ac.EnterpriseConnections).Match(email)
	c.log.Debug("enterprise match",
		zap.String("email", util.MaskEmail(email)),
		zap.Bool("matched", ok),
		logger.Connection(conn.Name()),
	)
	return conn, ok, nil
}

// WebOptions son las opciones de flujo web que salen de la config.
func (c *Client) WebOptions() webflow.Options {
	return webflow.Options{
		UseBrowser: c.cfg.Options.BrowserEnabled(),
		Browser:    c.browser,
		Surface:    c.surface,
		Parameters: c.cfg.Options.AuthParameters(),
	}
}

// NewWebAuthorization crea un Controller nuevo. Los launchers y parámetros
// que falten en opts salen del Client.
func (c *Client) NewWebAuthorization(opts webflow.Options) *webflow.Controller {
	if opts.Browser == nil {
		opts.Browser = c.browser
	}
	if opts.Surface == nil {
		opts.Surface = c.surface
	}
	if opts.Parameters == nil {
		opts.Parameters = c.cfg.Options.AuthParameters()
	}
	return webflow.New(c.account, opts)
}

// StartLogin busca la connection habilitada, resuelve su provider y lo arranca.
func (c *Client) StartLogin(ctx context.Context, name string) (providers.Provider, error) {
	ac, err := c.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	conn, ok := findConnection(ac, name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrConnectionNotFound, name)
	}
	p, err := c.registry.Resolve(conn)
	if err != nil {
		return nil, err
	}
	if err := p.Start(c.ctx(ctx), conn); err != nil {
		return p, err
	}
	return p, nil
}

// Close libera el cache.
func (c *Client) Close() error {
	if c.cache != nil {
		return c.cache.Close()
	}
	return nil
}

func findConnection(ac *authconfig.AuthConfig, name string) (connection.Connection, bool) {
	for _, list := range [][]connection.Connection{
		ac.SocialConnections, ac.EnterpriseConnections, ac.DatabaseConnections, ac.PasswordlessConnections,
	} {
		for _, conn := range list {
			if conn.Name() == name {
				return conn, true
			}
		}
	}
	return connection.Connection{}, false
}
