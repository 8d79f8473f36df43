package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/hellojohn-lock/internal/authconfig"
)

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda vacío.
	App struct {
		// dev | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Log struct {
		Level    string `yaml:"level"`
		Disabled bool   `yaml:"disabled"`
	} `yaml:"log"`

	// Account es la aplicación registrada en el tenant.
	Account struct {
		Domain           string `yaml:"domain"`
		ClientID         string `yaml:"client_id"`
		AuthorizeURL     string `yaml:"authorize_url"`
		ConfigurationURL string `yaml:"configuration_url"`
		RedirectURI      string `yaml:"redirect_uri"`
		PackageID        string `yaml:"package_id"`
		ClientInfo       string `yaml:"client_info"`
	} `yaml:"account"`

	Options Options `yaml:"options"`

	Cache struct {
		Kind  string `yaml:"kind"`
		TTL   string `yaml:"ttl"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	Tenant struct {
		FetchTimeout string `yaml:"fetch_timeout"`
	} `yaml:"tenant"`
}

// Options son los overrides de la aplicación sobre lo que publica el tenant.
type Options struct {
	// AllowedConnections: ausente => sin filtro; [] => ninguna.
	AllowedConnections        []string `yaml:"allowed_connections"`
	DefaultDatabaseConnection string   `yaml:"default_database_connection"`
	UseCodePasswordless       *bool    `yaml:"use_code_passwordless"`

	AllowLogIn          *bool `yaml:"allow_log_in"`
	AllowSignUp         *bool `yaml:"allow_sign_up"`
	AllowForgotPassword *bool `yaml:"allow_forgot_password"`
	AllowShowPassword   *bool `yaml:"allow_show_password"`
	LoginAfterSignUp    *bool `yaml:"login_after_sign_up"`

	MustAcceptTerms bool   `yaml:"must_accept_terms"`
	UsernameStyle   string `yaml:"username_style"`
	InitialScreen   string `yaml:"initial_screen"`

	TermsURL   string `yaml:"terms_url"`
	PrivacyURL string `yaml:"privacy_url"`
	SupportURL string `yaml:"support_url"`

	CustomFields                      []authconfig.CustomField `yaml:"custom_fields"`
	EnterpriseConnectionsUsingWebForm []string                 `yaml:"enterprise_connections_using_web_form"`

	// Web flow
	UseBrowser *bool             `yaml:"use_browser"`
	AuthParams map[string]string `yaml:"auth_params"`
}

// Load lee el YAML (path vacío => solo defaults + env), aplica defaults,
// variables LOCK_* y valida.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}

	c.applyEnvOverrides()
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// sane defaults
func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.TTL == "" {
		c.Cache.TTL = "10m"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "lock"
	}
	if c.Tenant.FetchTimeout == "" {
		c.Tenant.FetchTimeout = "10s"
	}
	if d := c.DomainURL(); d != "" {
		if c.Account.AuthorizeURL == "" {
			c.Account.AuthorizeURL = d + "/authorize"
		}
		if c.Account.ConfigurationURL == "" {
			c.Account.ConfigurationURL = d
		}
	}
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}

// getEnvCSV: variable definida pero vacía => lista vacía (no nil).
func getEnvCSV(key string) ([]string, bool) {
	s, ok := os.LookupEnv(key)
	if !ok {
		return nil, false
	}
	if strings.TrimSpace(s) == "" {
		return []string{}, true
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out, true
}

func boolPtr(b bool) *bool { return &b }

// applyEnvOverrides: pisa el YAML con variables LOCK_*.
func (c *Config) applyEnvOverrides() {
	// APP / LOG
	if v, ok := getEnvStr("LOCK_APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOCK_LOG_LEVEL"); ok {
		c.Log.Level = strings.ToLower(v)
	}
	if v, ok := getEnvBool("LOCK_LOG_DISABLED"); ok {
		c.Log.Disabled = v
	}

	// ACCOUNT
	if v, ok := getEnvStr("LOCK_DOMAIN"); ok {
		c.Account.Domain = v
	}
	if v, ok := getEnvStr("LOCK_CLIENT_ID"); ok {
		c.Account.ClientID = v
	}
	if v, ok := getEnvStr("LOCK_AUTHORIZE_URL"); ok {
		c.Account.AuthorizeURL = v
	}
	if v, ok := getEnvStr("LOCK_CONFIGURATION_URL"); ok {
		c.Account.ConfigurationURL = v
	}
	if v, ok := getEnvStr("LOCK_REDIRECT_URI"); ok {
		c.Account.RedirectURI = v
	}
	if v, ok := getEnvStr("LOCK_PACKAGE_ID"); ok {
		c.Account.PackageID = v
	}
	if v, ok := getEnvStr("LOCK_CLIENT_INFO"); ok {
		c.Account.ClientInfo = v
	}

	// OPTIONS
	if v, ok := getEnvCSV("LOCK_ALLOWED_CONNECTIONS"); ok {
		c.Options.AllowedConnections = v
	}
	if v, ok := getEnvStr("LOCK_DEFAULT_DATABASE_CONNECTION"); ok {
		c.Options.DefaultDatabaseConnection = v
	}
	if v, ok := getEnvBool("LOCK_USE_CODE_PASSWORDLESS"); ok {
		c.Options.UseCodePasswordless = boolPtr(v)
	}
	if v, ok := getEnvBool("LOCK_ALLOW_LOG_IN"); ok {
		c.Options.AllowLogIn = boolPtr(v)
	}
	if v, ok := getEnvBool("LOCK_ALLOW_SIGN_UP"); ok {
		c.Options.AllowSignUp = boolPtr(v)
	}
	if v, ok := getEnvBool("LOCK_ALLOW_FORGOT_PASSWORD"); ok {
		c.Options.AllowForgotPassword = boolPtr(v)
	}
	if v, ok := getEnvBool("LOCK_MUST_ACCEPT_TERMS"); ok {
		c.Options.MustAcceptTerms = v
	}
	if v, ok := getEnvStr("LOCK_USERNAME_STYLE"); ok {
		c.Options.UsernameStyle = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOCK_INITIAL_SCREEN"); ok {
		c.Options.InitialScreen = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOCK_TERMS_URL"); ok {
		c.Options.TermsURL = v
	}
	if v, ok := getEnvStr("LOCK_PRIVACY_URL"); ok {
		c.Options.PrivacyURL = v
	}
	if v, ok := getEnvStr("LOCK_SUPPORT_URL"); ok {
		c.Options.SupportURL = v
	}
	if v, ok := getEnvCSV("LOCK_WEBFORM_CONNECTIONS"); ok {
		c.Options.EnterpriseConnectionsUsingWebForm = v
	}
	if v, ok := getEnvBool("LOCK_USE_BROWSER"); ok {
		c.Options.UseBrowser = boolPtr(v)
	}
	if v, ok := getEnvKVList("LOCK_AUTH_PARAMS", ";"); ok {
		c.Options.AuthParams = v
	}

	// CACHE
	if v, ok := getEnvStr("LOCK_CACHE_KIND"); ok {
		c.Cache.Kind = strings.ToLower(v)
	}
	if v, ok := getEnvDur("LOCK_CACHE_TTL"); ok {
		c.Cache.TTL = v.String()
	}
	if v, ok := getEnvStr("LOCK_REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("LOCK_REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("LOCK_REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("LOCK_REDIS_PREFIX"); ok {
		c.Cache.Redis.Prefix = v
	}

	// TENANT
	if v, ok := getEnvDur("LOCK_TENANT_FETCH_TIMEOUT"); ok {
		c.Tenant.FetchTimeout = v.String()
	}
}

// Validate chequea valores que después no se pueden interpretar.
func (c *Config) Validate() error {
	switch c.Cache.Kind {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: cache.kind %q (memory|redis)", c.Cache.Kind)
	}
	if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
		return fmt.Errorf("config: cache.ttl: %w", err)
	}
	if _, err := time.ParseDuration(c.Tenant.FetchTimeout); err != nil {
		return fmt.Errorf("config: tenant.fetch_timeout: %w", err)
	}
	switch authconfig.UsernameStyle(c.Options.UsernameStyle) {
	case authconfig.UsernameStyleDefault, authconfig.UsernameStyleUsername, authconfig.UsernameStyleEmail:
	default:
		return fmt.Errorf("config: options.username_style %q", c.Options.UsernameStyle)
	}
	switch authconfig.InitialScreen(c.Options.InitialScreen) {
	case "", authconfig.ScreenLogIn, authconfig.ScreenSignUp, authconfig.ScreenForgotPassword:
	default:
		return fmt.Errorf("config: options.initial_screen %q", c.Options.InitialScreen)
	}
	return nil
}

// DomainURL normaliza account.domain con esquema y sin "/" final.
func (c *Config) DomainURL() string {
	d := strings.TrimRight(strings.TrimSpace(c.Account.Domain), "/")
	if d == "" {
		return ""
	}
	if !strings.Contains(d, "://") {
		d = "https://" + d
	}
	return d
}

func (c *Config) CacheTTL() time.Duration {
	d, _ := time.ParseDuration(c.Cache.TTL)
	return d
}

func (c *Config) FetchTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Tenant.FetchTimeout)
	return d
}

// ToOverrides traduce las opciones al formato del resolver.
func (o Options) ToOverrides() authconfig.Overrides {
	return authconfig.Overrides{
		AllowedConnections:                o.AllowedConnections,
		DefaultDatabaseConnection:         o.DefaultDatabaseConnection,
		UseCodePasswordless:               o.UseCodePasswordless,
		AllowLogIn:                        o.AllowLogIn,
		AllowSignUp:                       o.AllowSignUp,
		AllowForgotPassword:               o.AllowForgotPassword,
		AllowShowPassword:                 o.AllowShowPassword,
		LoginAfterSignUp:                  o.LoginAfterSignUp,
		MustAcceptTerms:                   o.MustAcceptTerms,
		UsernameStyle:                     authconfig.UsernameStyle(o.UsernameStyle),
		InitialScreen:                     authconfig.InitialScreen(o.InitialScreen),
		TermsURL:                          o.TermsURL,
		PrivacyURL:                        o.PrivacyURL,
		SupportURL:                        o.SupportURL,
		CustomFields:                      o.CustomFields,
		EnterpriseConnectionsUsingWebForm: o.EnterpriseConnectionsUsingWebForm,
	}
}

// AuthParameters son los parámetros extra de /authorize.
func (o Options) AuthParameters() map[string]any {
	out := make(map[string]any, len(o.AuthParams))
	for k, v := range o.AuthParams {
		out[k] = v
	}
	return out
}

// BrowserEnabled: default true.
func (o Options) BrowserEnabled() bool {
	return o.UseBrowser == nil || *o.UseBrowser
}

// parse env of form "k1=v1<sep>k2=v2" into map
func parseKVList(s, sep string) map[string]string {
	s = strings.TrimSpace(s)
	if s == "" {
		return map[string]string{}
	}
	items := strings.Split(s, sep)
	out := make(map[string]string, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		// split at first '='
		if i := strings.IndexRune(it, '='); i > 0 {
			k := strings.TrimSpace(it[:i])
			v := strings.TrimSpace(it[i+1:])
			if k != "" && v != "" {
				out[k] = v
			}
		}
	}
	return out
}

func getEnvKVList(key, sep string) (map[string]string, bool) {
	if s, ok := getEnvStr(key); ok {
		return parseKVList(s, sep), true
	}
	return nil, false
}
