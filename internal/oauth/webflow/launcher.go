package webflow

import (
	"context"
	"net/url"

	"github.com/pkg/browser"
)

// LaunchRequest es lo que recibe el delegate que muestra /authorize al usuario.
type LaunchRequest struct {
	AttemptID   string
	Connection  string
	URI         *url.URL
	RedirectURI string
}

// Launcher abre la URI de autorización. Launch no debe bloquear hasta que el
// usuario termine: el resultado vuelve por Controller.Authorize.
type Launcher interface {
	Launch(ctx context.Context, req LaunchRequest) error
	Cancel()
}

// SessionClearer lo implementan los launchers que guardan cookies propias.
type SessionClearer interface {
	ClearSession()
}

// BrowserLauncher abre el navegador del sistema.
type BrowserLauncher struct {
	// OpenURL por defecto es browser.OpenURL.
	OpenURL func(string) error
}

func (b BrowserLauncher) Launch(ctx context.Context, req LaunchRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	open := b.OpenURL
	if open == nil {
		open = browser.OpenURL
	}
	return open(req.URI.String())
}

// Cancel no hace nada: el navegador externo no se puede cerrar desde acá.
func (BrowserLauncher) Cancel() {}

// Surface es una vista web embebida que provee el host.
type Surface interface {
	Open(ctx context.Context, req LaunchRequest) error
	Close()
}

// SurfaceLauncher adapta una Surface del host a Launcher.
type SurfaceLauncher struct {
	Surface Surface
}

func (s SurfaceLauncher) Launch(ctx context.Context, req LaunchRequest) error {
	if s.Surface == nil {
		return ErrNoLauncher
	}
	return s.Surface.Open(ctx, req)
}

func (s SurfaceLauncher) Cancel() {
	if s.Surface != nil {
		s.Surface.Close()
	}
}

func (s SurfaceLauncher) ClearSession() {
	if c, ok := s.Surface.(SessionClearer); ok {
		c.ClearSession()
	}
}
