// Package providers resuelve qué identity provider atiende cada connection.
//
// El Registry se arma una vez en el composition root (pkg/lock) y se pasa por
// referencia; no hay estado global. Cada Resolve crea una instancia nueva, así
// dos intentos concurrentes nunca comparten state.
package providers

import (
	"context"

	"github.com/dropDatabas3/hellojohn-lock/internal/connection"
	"github.com/dropDatabas3/hellojohn-lock/internal/oauth/webflow"
)

// Provider ejecuta un intento de autenticación contra una connection.
type Provider interface {
	Start(ctx context.Context, conn connection.Connection) error
	Authorize(ctx context.Context, r webflow.RedirectResult) (webflow.Outcome, error)
	Stop()
	ClearSession()
}

var _ Provider = (*webflow.Controller)(nil)

// Factory crea un Provider para la connection pedida.
type Factory func(conn connection.Connection) (Provider, error)

// WebFactory crea un webflow.Controller por intento.
func WebFactory(account webflow.Account, opts webflow.Options) Factory {
	return func(connection.Connection) (Provider, error) {
		return webflow.New(account, opts), nil
	}
}
