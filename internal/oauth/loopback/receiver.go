// Package loopback recibe el redirect de /authorize en una dirección local, para
// hosts de escritorio o CLI que abren el navegador del sistema.
package loopback

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dropDatabas3/hellojohn-lock/internal/oauth/webflow"
	"github.com/dropDatabas3/hellojohn-lock/internal/observability/logger"
)

const DefaultPath = "/callback"

// El navegador no manda el fragment al servidor: la página lo reenvía como query a /relay.
var relayPage = template.Must(template.New("relay").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>Login</title></head>
<body>
<p id="msg">Completing login...</p>
<script>
(function () {
  var h = window.location.hash;
  var target = {{.RelayPath}} + (h && h.length > 1 ? "?" + h.substring(1) : "");
  window.location.replace(target);
})();
</script>
</body></html>`))

var donePage = template.Must(template.New("done").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>Login</title></head>
<body><p>{{.}}</p></body></html>`))

// Receiver es un http.Handler. Cada request con query se entrega a Deliver
// etiquetado con el intento actual; nunca bloquea esperando al Controller.
type Receiver struct {
	path    string
	deliver func(webflow.RedirectResult)
	router  chi.Router

	mu        sync.RWMutex
	attemptID string
}

func New(path string, deliver func(webflow.RedirectResult)) *Receiver {
	if path == "" {
		path = DefaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	rc := &Receiver{path: strings.TrimRight(path, "/"), deliver: deliver}
	if rc.path == "" {
		rc.path = DefaultPath
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)
	r.Get(rc.path, rc.handleCallback)
	r.Get(rc.path+"/relay", rc.handleRelay)
	rc.router = r
	return rc
}

// SetAttempt asocia las próximas entregas a un intento.
func (rc *Receiver) SetAttempt(id string) {
	rc.mu.Lock()
	rc.attemptID = id
	rc.mu.Unlock()
}

func (rc *Receiver) Path() string { return rc.path }

func (rc *Receiver) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rc.router.ServeHTTP(w, r)
}

func (rc *Receiver) handleCallback(w http.ResponseWriter, r *http.Request) {
	if r.URL.RawQuery != "" {
		rc.deliverRequest(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := relayPage.Execute(w, struct{ RelayPath string }{rc.path + "/relay"}); err != nil {
		logger.From(r.Context()).Warn("relay page", logger.Layer("loopback"), logger.Err(err))
	}
}

// Un relay sin fragment no trae respuesta del servidor: no se entrega nada.
func (rc *Receiver) handleRelay(w http.ResponseWriter, r *http.Request) {
	if r.URL.RawQuery == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = donePage.Execute(w, "Waiting for the login response...")
		return
	}
	rc.deliverRequest(w, r)
}

func (rc *Receiver) deliverRequest(w http.ResponseWriter, r *http.Request) {
	rc.mu.RLock()
	id := rc.attemptID
	rc.mu.RUnlock()

	res := webflow.RedirectResult{
		AttemptID: id,
		URI:       &url.URL{Path: r.URL.Path, RawQuery: r.URL.RawQuery},
	}
	logger.From(r.Context()).Debug("redirect received",
		logger.Layer("loopback"),
		logger.AttemptID(id),
		logger.Count(len(r.URL.Query())),
	)
	if rc.deliver != nil {
		rc.deliver(res)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = donePage.Execute(w, "Login finished. You can close this window.")
}

// Server levanta el Receiver en 127.0.0.1.
type Server struct {
	srv *http.Server
	ln  net.Listener
	rc  *Receiver
}

// Listen abre addr (ej "127.0.0.1:0") y sirve en background hasta Shutdown.
func Listen(addr string, rc *Receiver) (*Server, error) {
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("loopback: listen %s: %w", addr, err)
	}
	s := &Server{
		srv: &http.Server{Handler: rc, ReadHeaderTimeout: 5 * time.Second},
		ln:  ln,
		rc:  rc,
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Warn("loopback serve", logger.Layer("loopback"), logger.Err(err))
		}
	}()
	return s, nil
}

// RedirectURI es la URL que hay que registrar como callback de la aplicación.
func (s *Server) RedirectURI() string {
	return "http://" + s.ln.Addr().String() + s.rc.Path()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
