// Package webflow maneja un intento de autorización OAuth por redirect:
// arma el request, lo delega a un navegador o vista embebida y valida el
// redirect de vuelta.
package webflow

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/dropDatabas3/hellojohn-lock/internal/connection"
	"github.com/dropDatabas3/hellojohn-lock/internal/metrics"
	"github.com/dropDatabas3/hellojohn-lock/internal/oauth/callback"
	"github.com/dropDatabas3/hellojohn-lock/internal/oauth/state"
	"github.com/dropDatabas3/hellojohn-lock/internal/observability/logger"
	"github.com/dropDatabas3/hellojohn-lock/internal/token"
	"github.com/dropDatabas3/hellojohn-lock/internal/util"
)

// Status del intento. Succeeded y Failed son finales hasta Reset.
type Status int

const (
	StatusIdle Status = iota
	StatusAwaitingRedirect
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusAwaitingRedirect:
		return "awaiting_redirect"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

func (s Status) Terminal() bool { return s == StatusSucceeded || s == StatusFailed }

// Account describe la aplicación registrada en el tenant.
type Account struct {
	ClientID     string
	Domain       string
	AuthorizeURL string
	// RedirectURI explícita; si está vacía se arma con Domain y PackageID.
	RedirectURI string
	PackageID   string
	// ClientInfo es la telemetría del SDK (auth0Client), ya codificada.
	ClientInfo string
}

func (a Account) CallbackURI() string {
	if a.RedirectURI != "" {
		return a.RedirectURI
	}
	return callback.BuildRedirectURI(a.Domain, a.PackageID)
}

// Options elige el delegate. UseBrowser=true usa Browser; si no, Surface.
type Options struct {
	UseBrowser bool
	Browser    Launcher
	Surface    Launcher
	Parameters map[string]any
}

// RedirectResult es una entrega del redirect, etiquetada con el intento.
type RedirectResult struct {
	AttemptID string
	URI       *url.URL
	Canceled  bool
}

// Outcome es lo que produce Authorize. Handled=false significa que la entrega
// no era para este intento (o estaba vacía) y el estado no cambió.
type Outcome struct {
	Handled bool
	Status  Status
	Token   *token.Token
	Err     error
}

// Controller ejecuta un intento por vez. No lanza goroutines; Authorize no bloquea.
type Controller struct {
	// OnResult se llama una vez por intento al llegar a un estado final,
	// fuera del lock.
	OnResult func(Outcome)

	account Account
	opts    Options
	guard   *state.Guard

	mu       sync.Mutex
	status   Status
	attempt  state.Attempt
	conn     connection.Connection
	launcher Launcher
	outcome  Outcome
	done     chan struct{}
}

func New(account Account, opts Options) *Controller {
	c := &Controller{
		account: account,
		opts:    opts,
		guard:   state.NewGuard(),
		done:    make(chan struct{}),
	}
	c.opts.Parameters = copyParams(opts.Parameters)
	return c
}

// SetParameters reemplaza los parámetros extra de /authorize para el próximo Start.
func (c *Controller) SetParameters(p map[string]any) {
	c.mu.Lock()
	c.opts.Parameters = copyParams(p)
	c.mu.Unlock()
}

// Start emite un state, arma la URI y la entrega al launcher. Si el tenant no
// tiene authorize URL el intento termina en Failed sin abrir nada.
func (c *Controller) Start(ctx context.Context, conn connection.Connection) error {
	log := logger.From(ctx).With(
		logger.Layer("webflow"),
		logger.Op("Start"),
		logger.Connection(conn.Name()),
		logger.Strategy(conn.Strategy()),
	)

	c.mu.Lock()
	if c.status != StatusIdle {
		c.mu.Unlock()
		return ErrAttemptInProgress
	}
	c.conn = conn

	if strings.TrimSpace(c.account.AuthorizeURL) == "" {
		res := c.failLocked(newAuthError(KindInvalidAuthorizeURL, "authorize url not configured", nil))
		c.mu.Unlock()
		log.Warn("authorize url missing")
		c.notify(res)
		return res.Err
	}

	attempt, err := state.NewAttempt(c.guard)
	if err != nil {
		res := c.failLocked(newAuthError(KindLaunchFailed, "", err))
		c.mu.Unlock()
		log.Error("state issue failed", logger.Err(err))
		c.notify(res)
		return res.Err
	}

	uri, err := callback.BuildAuthorizationURI(c.account.AuthorizeURL, callback.AuthorizeParams{
		Connection:  conn.Name(),
		State:       attempt.State,
		ClientID:    c.account.ClientID,
		RedirectURI: c.account.CallbackURI(),
		ClientInfo:  c.account.ClientInfo,
		Extra:       c.opts.Parameters,
	})
	if err != nil {
		c.guard.Validate("")
		res := c.failLocked(newAuthError(KindInvalidAuthorizeURL, "", err))
		c.mu.Unlock()
		log.Warn("authorize url invalid", logger.Err(err))
		c.notify(res)
		return res.Err
	}

	launcher := c.opts.Surface
	if c.opts.UseBrowser {
		launcher = c.opts.Browser
	}
	if launcher == nil {
		c.guard.Validate("")
		res := c.failLocked(newAuthError(KindLaunchFailed, "", ErrNoLauncher))
		c.mu.Unlock()
		log.Error("no launcher", zap.Bool("use_browser", c.opts.UseBrowser))
		c.notify(res)
		return res.Err
	}

	c.attempt = attempt
	c.launcher = launcher
	c.status = StatusAwaitingRedirect
	c.mu.Unlock()

	metrics.AuthorizeStarted.WithLabelValues(conn.Type().String()).Inc()
	log = log.With(logger.AttemptID(attempt.ID))
	log.Debug("launching authorize", zap.String("state", util.MaskToken(attempt.State)), zap.Bool("use_browser", c.opts.UseBrowser))

	// El launcher puede entregar el redirect de forma sincrónica (Authorize
	// toma el lock), por eso se llama sin el lock.
	req := LaunchRequest{
		AttemptID:   attempt.ID,
		Connection:  conn.Name(),
		URI:         uri,
		RedirectURI: c.account.CallbackURI(),
	}
	if err := launcher.Launch(ctx, req); err != nil {
		c.mu.Lock()
		if c.status != StatusAwaitingRedirect || c.attempt.ID != attempt.ID {
			c.mu.Unlock()
			return nil
		}
		c.guard.Validate("")
		res := c.failLocked(newAuthError(KindLaunchFailed, "", err))
		c.mu.Unlock()
		log.Warn("launch failed", logger.Err(err))
		c.notify(res)
		return res.Err
	}
	return nil
}

// Authorize procesa una entrega del redirect. Solo retorna error ante uso
// incorrecto (ErrNotStarted); los fallos del protocolo van en Outcome.Err.
func (c *Controller) Authorize(ctx context.Context, r RedirectResult) (Outcome, error) {
	log := logger.From(ctx).With(logger.Layer("webflow"), logger.Op("Authorize"), logger.AttemptID(r.AttemptID))

	c.mu.Lock()
	if c.status == StatusIdle {
		c.mu.Unlock()
		return Outcome{Status: StatusIdle}, ErrNotStarted
	}
	if c.status.Terminal() || r.AttemptID != c.attempt.ID {
		st := c.status
		c.mu.Unlock()
		metrics.AuthorizeResults.WithLabelValues(metrics.OutcomeNotHandled).Inc()
		log.Debug("redirect not for this attempt", logger.Status(st.String()))
		return Outcome{Status: st}, nil
	}
	if r.Canceled {
		c.mu.Unlock()
		metrics.AuthorizeResults.WithLabelValues(metrics.OutcomeNotHandled).Inc()
		log.Debug("delegate canceled")
		return Outcome{Status: StatusAwaitingRedirect}, nil
	}

	values := callback.ParseCallback(r.URI)

	if values.Has(callback.KeyError) {
		kind := KindProviderError
		if strings.EqualFold(values.Get(callback.KeyError), string(KindAccessDenied)) {
			kind = KindAccessDenied
		}
		c.guard.Validate("")
		res := c.failLocked(newAuthError(kind, values.Get(callback.KeyErrorDesc), nil))
		c.mu.Unlock()
		log.Info("authorization failed", zap.String("kind", string(kind)))
		c.notify(res)
		return res, nil
	}

	if len(values) == 0 {
		c.mu.Unlock()
		metrics.AuthorizeResults.WithLabelValues(metrics.OutcomeNotHandled).Inc()
		log.Debug("empty redirect ignored")
		return Outcome{Status: StatusAwaitingRedirect}, nil
	}

	// Un state ausente cuenta como distinto: el intento siempre se emite con uno.
	if !c.guard.Validate(values.Get(callback.KeyState)) {
		res := c.failLocked(newAuthError(KindInvalidState, "", nil))
		c.mu.Unlock()
		log.Warn("state mismatch",
			zap.Bool("state_present", values.Has(callback.KeyState)),
			zap.String("received", util.MaskToken(values.Get(callback.KeyState))),
		)
		c.notify(res)
		return res, nil
	}

	name := c.conn.Name()
	res := c.finishLocked(Outcome{
		Handled: true,
		Status:  StatusSucceeded,
		Token:   token.FromValues(values.Get),
	})
	c.mu.Unlock()
	log.Info("authenticated using web flow", logger.Connection(name))
	c.notify(res)
	return res, nil
}

// Stop cancela el delegate si se puede. No cambia el estado: si el delegate
// ya devolvió un resultado, Authorize lo sigue procesando.
func (c *Controller) Stop() {
	c.mu.Lock()
	l := c.launcher
	c.mu.Unlock()
	if l != nil {
		l.Cancel()
	}
}

// ClearSession cancela el delegate y le pide borrar su sesión si la tiene.
func (c *Controller) ClearSession() {
	c.Stop()
	for _, l := range []Launcher{c.opts.Browser, c.opts.Surface} {
		if sc, ok := l.(SessionClearer); ok {
			sc.ClearSession()
		}
	}
}

// Reset vuelve a Idle para un intento nuevo. El state pendiente se descarta.
func (c *Controller) Reset() {
	c.mu.Lock()
	l := c.launcher
	awaiting := c.status == StatusAwaitingRedirect
	terminal := c.status.Terminal()
	c.guard.Validate("")
	c.status = StatusIdle
	c.attempt = state.Attempt{}
	c.conn = connection.Connection{}
	c.launcher = nil
	c.outcome = Outcome{}
	// en estado final finishLocked ya lo cerró
	if !terminal {
		close(c.done)
	}
	c.done = make(chan struct{})
	c.mu.Unlock()
	if awaiting && l != nil {
		l.Cancel()
	}
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Attempt del intento en curso (zero value en Idle). Incluye el state: no loguear.
func (c *Controller) Attempt() state.Attempt {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempt
}

// Done se cierra cuando el intento actual llega a un estado final o con Reset.
// Después de Reset hay que pedir el canal de nuevo.
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Outcome final del intento; ok=false mientras no terminó.
func (c *Controller) Outcome() (Outcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcome, c.status.Terminal()
}

func (c *Controller) failLocked(err *AuthError) Outcome {
	return c.finishLocked(Outcome{Handled: true, Status: StatusFailed, Err: err})
}

func (c *Controller) finishLocked(o Outcome) Outcome {
	c.status = o.Status
	c.outcome = o
	c.launcher = nil
	close(c.done)
	return o
}

func (c *Controller) notify(o Outcome) {
	label := metrics.OutcomeSucceeded
	if o.Err != nil {
		label = string(KindOf(o.Err))
	}
	metrics.AuthorizeResults.WithLabelValues(label).Inc()
	if c.OnResult != nil {
		c.OnResult(o)
	}
}

func copyParams(p map[string]any) map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
