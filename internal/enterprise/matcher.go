// Package enterprise resuelve qué connection enterprise corresponde a un email
// según el dominio registrado (domain + domain_aliases).
package enterprise

import (
	"strings"

	"github.com/dropDatabas3/hellojohn-lock/internal/connection"
)

// Matcher es inmutable y seguro para uso concurrente.
type Matcher struct {
	conns   []connection.Connection
	domains []map[string]struct{}
}

// NewMatcher se queda solo con las connections Enterprise. Nil o vacío => no matchea nada.
func NewMatcher(conns []connection.Connection) *Matcher {
	m := &Matcher{}
	for _, c := range conns {
		if c.Type() != connection.Enterprise {
			continue
		}
		m.conns = append(m.conns, c)
		m.domains = append(m.domains, c.DomainSet())
	}
	return m
}

// Match retorna la primera connection (orden de entrada) cuyo dominio o alias
// coincide con el dominio del email, sin distinguir mayúsculas.
func (m *Matcher) Match(email string) (connection.Connection, bool) {
	if m == nil {
		return connection.Connection{}, false
	}
	domain, ok := domainOf(email)
	if !ok {
		return connection.Connection{}, false
	}
	domain = strings.ToLower(domain)
	for i, set := range m.domains {
		if _, hit := set[domain]; hit {
			return m.conns[i], true
		}
	}
	return connection.Connection{}, false
}

// Connections retorna las connections enterprise conocidas.
func (m *Matcher) Connections() []connection.Connection {
	if m == nil {
		return nil
	}
	out := make([]connection.Connection, len(m.conns))
	copy(out, m.conns)
	return out
}

// ExtractUsername retorna la parte local del email (antes del primer @).
func ExtractUsername(email string) (string, bool) {
	i := strings.IndexByte(email, '@')
	if i < 0 {
		return "", false
	}
	return email[:i], true
}

// DomainFor es el dominio principal de la connection ("" si no tiene).
func DomainFor(c connection.Connection) string {
	return c.Domain()
}

func domainOf(email string) (string, bool) {
	i := strings.IndexByte(email, '@')
	if i < 0 || i == len(email)-1 {
		return "", false
	}
	return email[i+1:], true
}
