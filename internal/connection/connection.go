package connection

import (
	"errors"
	"strings"
)

// Metadata keys consumed from the tenant descriptor.
const (
	KeyName             = "name"
	KeyDomain           = "domain"
	KeyDomainAliases    = "domain_aliases"
	KeyValidation       = "validation"
	KeyRequiresUsername = "requires_username"
	KeyShowSignUp       = "showSignup"
	KeyShowForgot       = "showForgot"
	KeyPasswordPolicy   = "passwordPolicy"
)

// Username length defaults when the connection does not define valid bounds.
const (
	DefaultMinUsernameLength = 1
	DefaultMaxUsernameLength = 15
)

var ErrMissingName = errors.New("connection: name is required")

// Connection es un endpoint de autenticación dentro de una strategy.
// Inmutable después de New.
type Connection struct {
	name     string
	strategy string
	values   Values

	minUsername int
	maxUsername int
}

// New crea una connection a partir de la metadata del descriptor. El "name"
// se saca de values; el map recibido no se modifica.
func New(strategy string, values map[string]any) (Connection, error) {
	name, _ := values[KeyName].(string)
	if strings.TrimSpace(name) == "" {
		return Connection{}, ErrMissingName
	}
	rest := make(map[string]any, len(values))
	for k, v := range values {
		if k != KeyName {
			rest[k] = v
		}
	}
	c := Connection{
		name:     name,
		strategy: strategy,
		values:   Values{m: rest},
	}
	c.minUsername, c.maxUsername = parseUsernameLength(c.values)
	return c, nil
}

// MustNew es New para tests y fixtures.
func MustNew(strategy string, values map[string]any) Connection {
	c, err := New(strategy, values)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Connection) Name() string     { return c.name }
func (c Connection) Strategy() string { return c.strategy }
func (c Connection) Type() Type       { return TypeForStrategy(c.strategy) }
func (c Connection) Values() Values   { return c.values }
func (c Connection) IsZero() bool     { return c.name == "" }

// Domain es el dominio principal de una connection enterprise.
func (c Connection) Domain() string { return c.values.String(KeyDomain) }

func (c Connection) DomainAliases() []string { return c.values.Strings(KeyDomainAliases) }

// DomainSet retorna dominio + aliases en minúsculas; los aliases cuentan aunque no haya dominio principal.
func (c Connection) DomainSet() map[string]struct{} {
	out := map[string]struct{}{}
	if d := c.Domain(); d != "" {
		out[strings.ToLower(d)] = struct{}{}
	}
	for _, a := range c.DomainAliases() {
		if a != "" {
			out[strings.ToLower(a)] = struct{}{}
		}
	}
	return out
}

func (c Connection) RequiresUsername() bool {
	b, _ := c.values.Bool(KeyRequiresUsername)
	return b
}

// ShowSignUp retorna (valor, presente).
func (c Connection) ShowSignUp() (bool, bool) { return c.values.Bool(KeyShowSignUp) }

// ShowForgot retorna (valor, presente).
func (c Connection) ShowForgot() (bool, bool) { return c.values.Bool(KeyShowForgot) }

func (c Connection) PasswordPolicy() PasswordStrength {
	return ParsePasswordStrength(c.values.String(KeyPasswordPolicy))
}

// UsernameLength retorna los límites ya validados.
func (c Connection) UsernameLength() (min, max int) {
	return c.minUsername, c.maxUsername
}

// IsActiveFlowEnabled: la strategy admite login nativo con usuario/password.
func (c Connection) IsActiveFlowEnabled() bool {
	return activeFlowStrategies[c.strategy]
}

// parseUsernameLength lee validation.username.{min,max}. Cualquier cosa
// ausente, no positiva o con max < min cae a los defaults.
func parseUsernameLength(v Values) (int, int) {
	validation, ok := v.Map(KeyValidation)
	if !ok {
		return DefaultMinUsernameLength, DefaultMaxUsernameLength
	}
	username, ok := validation.Map("username")
	if !ok {
		return DefaultMinUsernameLength, DefaultMaxUsernameLength
	}
	min, okMin := username.Int("min")
	max, okMax := username.Int("max")
	if !okMin || !okMax || min < 1 || max < min {
		return DefaultMinUsernameLength, DefaultMaxUsernameLength
	}
	return min, max
}
