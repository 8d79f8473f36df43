// Package authconfig combina el catálogo de connections del tenant con las
// opciones de la aplicación y produce una configuración única y consistente.
package authconfig

import "github.com/dropDatabas3/hellojohn-lock/internal/connection"

const (
	// DefaultDatabaseName es la connection database que se prefiere cuando hay varias.
	DefaultDatabaseName = "Username-Password-Authentication"

	DefaultTermsURL   = "https://auth0.com/terms"
	DefaultPrivacyURL = "https://auth0.com/privacy"
)

// Overrides son las opciones que provee la aplicación. Los *bool nil toman el default.
type Overrides struct {
	// AllowedConnections: nil = sin filtro; slice vacío no-nil = ninguna connection.
	AllowedConnections        []string
	DefaultDatabaseConnection string
	// UseCodePasswordless: nil = code.
	UseCodePasswordless *bool

	AllowLogIn          *bool
	AllowSignUp         *bool
	AllowForgotPassword *bool
	AllowShowPassword   *bool
	LoginAfterSignUp    *bool

	MustAcceptTerms bool
	UsernameStyle   UsernameStyle
	InitialScreen   InitialScreen

	TermsURL   string
	PrivacyURL string
	SupportURL string

	CustomFields []CustomField

	// EnterpriseConnectionsUsingWebForm fuerza el flujo web aunque la strategy
	// admita login nativo.
	EnterpriseConnectionsUsingWebForm []string
}

// AuthConfig es la configuración resuelta. No se modifica después de Resolve.
type AuthConfig struct {
	DatabaseConnections     []connection.Connection
	SocialConnections       []connection.Connection
	EnterpriseConnections   []connection.Connection
	PasswordlessConnections []connection.Connection

	// DefaultDatabase es nil si no quedó ninguna database connection.
	DefaultDatabase *connection.Connection
	// PasswordlessConnection es nil cuando PasswordlessMode es disabled.
	PasswordlessConnection *connection.Connection
	PasswordlessMode       PasswordlessMode

	AllowLogIn          bool
	AllowSignUp         bool
	AllowForgotPassword bool
	AllowShowPassword   bool
	LoginAfterSignUp    bool
	InitialScreen       InitialScreen

	UsernameRequired  bool
	UsernameStyle     UsernameStyle
	MinUsernameLength int
	MaxUsernameLength int
	PasswordPolicy    connection.PasswordStrength

	MustAcceptTerms bool
	TermsURL        string
	PrivacyURL      string
	SupportURL      string

	CustomFields []CustomField

	webForm map[string]bool
}

// HasClassicConnections: hay algo para mostrar en el modo clásico.
func (c *AuthConfig) HasClassicConnections() bool {
	return c.DefaultDatabase != nil || len(c.SocialConnections) > 0 || len(c.EnterpriseConnections) > 0
}

// HasPasswordlessConnections: el modo passwordless también muestra los botones sociales.
func (c *AuthConfig) HasPasswordlessConnections() bool {
	return len(c.PasswordlessConnections) > 0 || len(c.SocialConnections) > 0
}

func (c *AuthConfig) InitialMode() Mode {
	switch {
	case c.HasClassicConnections():
		return ModeClassic
	case c.HasPasswordlessConnections():
		return ModePasswordless
	default:
		return ModeNone
	}
}

// UsesNativeAuthentication indica si la connection enterprise se autentica con
// usuario/password nativo en lugar del flujo web.
func (c *AuthConfig) UsesNativeAuthentication(conn connection.Connection) bool {
	if conn.Type() != connection.Enterprise || !conn.IsActiveFlowEnabled() {
		return false
	}
	return !c.webForm[conn.Name()]
}

// ConnectionCount es el total de connections habilitadas.
func (c *AuthConfig) ConnectionCount() int {
	return len(c.DatabaseConnections) + len(c.SocialConnections) +
		len(c.EnterpriseConnections) + len(c.PasswordlessConnections)
}
